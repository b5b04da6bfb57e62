package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/bulletin/internal/action"
)

// Scenario is a scripted session against the store: canned server
// responses, a flow of steps and assertions on the outcome.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// RequestIDs are handed out to fetches in order. Once exhausted, ids
	// continue as "req-N".
	RequestIDs []string `yaml:"request_ids,omitempty"`

	// Responses script the server.
	Responses []ResponseStep `yaml:"responses,omitempty"`

	// Flow is executed step by step.
	Flow []FlowStep `yaml:"flow"`

	// Assertions validate the final trace and state.
	Assertions []Assertion `yaml:"assertions"`
}

// ResponseStep is one canned server reply.
type ResponseStep struct {
	Method string `yaml:"method"`
	Path   string `yaml:"path"`

	// Since builds the query string for the notifications endpoint.
	Since string `yaml:"since,omitempty"`

	// Body is encoded as the JSON response.
	Body map[string]any `yaml:"body,omitempty"`

	// Status, when non-zero, answers with that HTTP status instead.
	Status int `yaml:"status,omitempty"`

	// Error, when set, fails the request at the transport level.
	Error string `yaml:"error,omitempty"`
}

// FlowStep is exactly one of: a dispatch, a fetch, or a create.
type FlowStep struct {
	// Dispatch is an action type name, e.g. "posts/reactionAdded".
	Dispatch string `yaml:"dispatch,omitempty"`

	// Args is the action payload for Dispatch.
	Args map[string]any `yaml:"args,omitempty"`

	// Fetch is one of posts, posts_if_idle, users, notifications.
	Fetch string `yaml:"fetch,omitempty"`

	// Create submits a draft post.
	Create *DraftStep `yaml:"create,omitempty"`

	// ExpectError marks a step whose workflow is expected to fail.
	ExpectError bool `yaml:"expect_error,omitempty"`
}

// DraftStep is the body of a create step.
type DraftStep struct {
	Title   string `yaml:"title"`
	Content string `yaml:"content"`
	User    string `yaml:"user"`
}

// Assertion validates trace or final state.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Collection is posts, users or notifications (state assertions).
	Collection string `yaml:"collection,omitempty"`

	// ID selects the record for entity assertions.
	ID string `yaml:"id,omitempty"`

	// Expect is the expected status name (status) or field subset (entity).
	Expect any `yaml:"expect,omitempty"`

	// IDs is the expected ordered id list (ids).
	IDs []string `yaml:"ids,omitempty"`

	// Action is the action type (trace_contains, trace_count).
	Action string `yaml:"action,omitempty"`

	// Args is the expected payload subset (trace_contains).
	Args map[string]any `yaml:"args,omitempty"`

	// Actions is the expected order (trace_order).
	Actions []string `yaml:"actions,omitempty"`

	// Count is the expected number (count, trace_count).
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertStatus        = "status"
	AssertIDs           = "ids"
	AssertCount         = "count"
	AssertEntity        = "entity"
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
)

// Fetch step names.
const (
	FetchPosts         = "posts"
	FetchPostsIfIdle   = "posts_if_idle"
	FetchUsers         = "users"
	FetchNotifications = "notifications"
)

var collections = map[string]bool{
	"posts":         true,
	"users":         true,
	"notifications": true,
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML with strict field checking.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // catches typos like "assertion:" vs "assertions:"
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, r := range s.Responses {
		if r.Method != "GET" && r.Method != "POST" {
			return fmt.Errorf("responses[%d]: method must be GET or POST, got %q", i, r.Method)
		}
		if r.Path == "" {
			return fmt.Errorf("responses[%d]: path is required", i)
		}
	}

	for i, step := range s.Flow {
		if err := validateStep(i, step); err != nil {
			return err
		}
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(index int, step FlowStep) error {
	kinds := 0
	if step.Dispatch != "" {
		kinds++
		if _, err := action.Decode(step.Dispatch, step.Args); err != nil {
			return fmt.Errorf("flow[%d]: %w", index, err)
		}
	}
	if step.Fetch != "" {
		kinds++
		switch step.Fetch {
		case FetchPosts, FetchPostsIfIdle, FetchUsers, FetchNotifications:
		default:
			return fmt.Errorf("flow[%d]: unknown fetch %q", index, step.Fetch)
		}
	}
	if step.Create != nil {
		kinds++
	}
	if kinds != 1 {
		return fmt.Errorf("flow[%d]: exactly one of dispatch, fetch, create is required", index)
	}
	if step.Args != nil && step.Dispatch == "" {
		return fmt.Errorf("flow[%d]: args only apply to dispatch", index)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertStatus, AssertIDs, AssertCount, AssertEntity:
		if !collections[a.Collection] {
			return fmt.Errorf("assertions[%d]: collection must be posts, users or notifications for %s, got %q", index, a.Type, a.Collection)
		}
	}

	switch a.Type {
	case AssertStatus:
		if _, ok := a.Expect.(string); !ok {
			return fmt.Errorf("assertions[%d]: expect must be a status name for status", index)
		}
	case AssertIDs:
		if a.IDs == nil {
			return fmt.Errorf("assertions[%d]: ids list is required for ids (use [] for empty)", index)
		}
	case AssertCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
	case AssertEntity:
		if a.ID == "" {
			return fmt.Errorf("assertions[%d]: id is required for entity", index)
		}
		if _, ok := a.Expect.(map[string]any); !ok {
			return fmt.Errorf("assertions[%d]: expect must be a field map for entity", index)
		}
	case AssertTraceContains:
		if a.Action == "" {
			return fmt.Errorf("assertions[%d]: action is required for trace_contains", index)
		}
	case AssertTraceOrder:
		if len(a.Actions) == 0 {
			return fmt.Errorf("assertions[%d]: actions list is required for trace_order", index)
		}
	case AssertTraceCount:
		if a.Action == "" {
			return fmt.Errorf("assertions[%d]: action is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
