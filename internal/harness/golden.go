package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/bulletin/internal/model"
)

// GoldenDir holds golden files relative to the test's package directory.
const GoldenDir = "testdata/scenarios/golden"

// SnapshotJSON renders a result as canonical JSON: the scenario name, the
// full trace and the final state. Identical runs produce identical bytes.
func SnapshotJSON(scenarioName string, result *Result) ([]byte, error) {
	trace := make([]any, len(result.Trace))
	for i, event := range result.Trace {
		payload := event.Payload
		if payload == nil {
			payload = map[string]any{}
		}
		trace[i] = map[string]any{
			"seq":     event.Seq,
			"action":  event.Action,
			"changed": event.Changed,
			"payload": payload,
		}
	}

	return model.MarshalCanonical(map[string]any{
		"scenario": scenarioName,
		"trace":    trace,
		"state":    result.State,
	})
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/scenarios/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against its golden file.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := SnapshotJSON(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir(GoldenDir),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)
	return nil
}
