package harness

// TraceEvent is one dispatched action as seen by the engine's recorder.
type TraceEvent struct {
	Seq     int64          `json:"seq"`
	Action  string         `json:"action"`
	Changed bool           `json:"changed"`
	Payload map[string]any `json:"payload,omitempty"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass is true when every step behaved as expected and every assertion held.
	Pass bool `json:"pass"`

	// Trace lists every dispatch in seq order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains step and assertion failure messages.
	Errors []string `json:"errors,omitempty"`

	// State is the canonical snapshot of the final store state.
	State map[string]any `json:"state,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
		State:  make(map[string]any),
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
