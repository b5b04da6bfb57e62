package harness

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for trace assertions
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, event := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s %v\n", event.Seq, event.Action, event.Payload)
		}
	}
	return buf.String()
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertStatus:
			err = assertStatus(result.State, a)
		case AssertIDs:
			err = assertIDs(result.State, a)
		case AssertCount:
			err = assertCount(result.State, a)
		case AssertEntity:
			err = assertEntity(result.State, a)
		case AssertTraceContains:
			err = assertTraceContains(result.Trace, a)
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, a)
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, a)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, a.Type)
		}
		if err != nil {
			errs = append(errs, err.Error())
		}
	}
	return errs
}

func collection(state map[string]any, name string) (map[string]any, error) {
	c, ok := state[name].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("unknown collection %q", name)
	}
	return c, nil
}

func assertStatus(state map[string]any, a Assertion) error {
	c, err := collection(state, a.Collection)
	if err != nil {
		return err
	}
	if c["status"] != a.Expect {
		return &AssertionError{
			Type:     AssertStatus,
			Expected: fmt.Sprintf("%s status %v", a.Collection, a.Expect),
			Actual:   fmt.Sprintf("%v", c["status"]),
		}
	}
	return nil
}

func assertIDs(state map[string]any, a Assertion) error {
	c, err := collection(state, a.Collection)
	if err != nil {
		return err
	}
	ids, _ := c["ids"].([]string)
	if !slices.Equal(ids, a.IDs) {
		return &AssertionError{
			Type:     AssertIDs,
			Expected: fmt.Sprintf("%s ids %v", a.Collection, a.IDs),
			Actual:   fmt.Sprintf("%v", ids),
		}
	}
	return nil
}

func assertCount(state map[string]any, a Assertion) error {
	c, err := collection(state, a.Collection)
	if err != nil {
		return err
	}
	ids, _ := c["ids"].([]string)
	if len(ids) != a.Count {
		return &AssertionError{
			Type:     AssertCount,
			Expected: fmt.Sprintf("%d %s", a.Count, a.Collection),
			Actual:   fmt.Sprintf("%d", len(ids)),
		}
	}
	return nil
}

func assertEntity(state map[string]any, a Assertion) error {
	c, err := collection(state, a.Collection)
	if err != nil {
		return err
	}
	entities, _ := c["entities"].(map[string]any)
	rec, ok := entities[a.ID]
	if !ok {
		return &AssertionError{
			Type:     AssertEntity,
			Expected: fmt.Sprintf("%s record %q", a.Collection, a.ID),
			Actual:   "record not found",
		}
	}
	if !matchSubset(rec, a.Expect) {
		return &AssertionError{
			Type:     AssertEntity,
			Expected: fmt.Sprintf("%s %q matching %v", a.Collection, a.ID, a.Expect),
			Actual:   fmt.Sprintf("%v", rec),
		}
	}
	return nil
}

// assertTraceContains checks if the trace contains a dispatch matching the
// action type and payload (subset match).
func assertTraceContains(trace []TraceEvent, a Assertion) error {
	for _, event := range trace {
		if event.Action == a.Action && matchSubset(event.Payload, a.Args) {
			return nil
		}
	}
	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: fmt.Sprintf("action %s with payload %v", a.Action, a.Args),
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertTraceOrder checks that the first occurrences of the listed actions
// appear in order. Intervening actions are allowed.
func assertTraceOrder(trace []TraceEvent, a Assertion) error {
	positions := make(map[string]int)
	for i, event := range trace {
		if _, seen := positions[event.Action]; !seen {
			positions[event.Action] = i + 1 // 1-indexed for readability
		}
	}

	for _, name := range a.Actions {
		if positions[name] == 0 {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("all actions present: %v", a.Actions),
				Actual:   fmt.Sprintf("missing action: %s", name),
				Trace:    trace,
			}
		}
	}

	for i := 1; i < len(a.Actions); i++ {
		prev, curr := a.Actions[i-1], a.Actions[i]
		if positions[prev] >= positions[curr] {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("actions in order: %v", a.Actions),
				Actual: fmt.Sprintf("%s (pos %d) should be before %s (pos %d)",
					prev, positions[prev], curr, positions[curr]),
				Trace: trace,
			}
		}
	}
	return nil
}

// assertTraceCount checks the action was dispatched exactly Count times.
func assertTraceCount(trace []TraceEvent, a Assertion) error {
	count := 0
	for _, event := range trace {
		if event.Action == a.Action {
			count++
		}
	}
	if count != a.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%d occurrences of %s", a.Count, a.Action),
			Actual:   fmt.Sprintf("%d occurrences", count),
			Trace:    trace,
		}
	}
	return nil
}

// matchSubset reports whether actual contains expected. Maps match when
// every expected key matches recursively; extra keys in actual are ignored.
// Other values compare after number and slice normalization.
func matchSubset(actual, expected any) bool {
	if expected == nil {
		return true
	}
	if exp, ok := expected.(map[string]any); ok {
		act, ok := actual.(map[string]any)
		if !ok {
			return false
		}
		for key, ev := range exp {
			av, exists := act[key]
			if !exists || !matchSubset(av, ev) {
				return false
			}
		}
		return true
	}
	return reflect.DeepEqual(normalize(actual), normalize(expected))
}

// normalize maps YAML and JSON decoded values onto one representation:
// integers become int64 and string slices become []any.
func normalize(v any) any {
	switch val := v.(type) {
	case int:
		return int64(val)
	case int32:
		return int64(val)
	case uint64:
		return int64(val)
	case float64:
		if val == float64(int64(val)) {
			return int64(val)
		}
		return val
	case []string:
		out := make([]any, len(val))
		for i, s := range val {
			out[i] = s
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalize(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = normalize(item)
		}
		return out
	}
	return v
}
