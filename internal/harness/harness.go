package harness

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/bulletin/internal/action"
	"github.com/roach88/bulletin/internal/api"
	"github.com/roach88/bulletin/internal/engine"
	"github.com/roach88/bulletin/internal/fetch"
	"github.com/roach88/bulletin/internal/lifecycle"
	"github.com/roach88/bulletin/internal/model"
	"github.com/roach88/bulletin/internal/testutil"
)

// Harness is one scenario execution: a fresh engine wired to a scripted
// server, with a recorder building the trace.
type Harness struct {
	engine *engine.Engine
	client *testutil.ScriptedClient
	result *Result
}

// Run executes a scenario and returns the result.
//
// Execution flow:
//  1. Script the server from scenario.Responses
//  2. Create an engine with fixed request ids and a trace recorder
//  3. Execute flow steps in order
//  4. Snapshot the final state and evaluate assertions
//
// A step that fails when not expected to (or succeeds when expected to fail)
// marks the result failed; the flow continues so the trace stays complete.
func Run(scenario *Scenario) (*Result, error) {
	client, err := scriptClient(scenario.Responses)
	if err != nil {
		return nil, err
	}

	result := NewResult()
	h := &Harness{client: client, result: result}
	h.engine = engine.New(
		engine.WithRequestIDs(lifecycle.NewFixedGenerator(scenario.RequestIDs...)),
		engine.WithRecorder(engine.RecorderFunc(h.record)),
	)

	ctx := context.Background()
	for i, step := range scenario.Flow {
		if err := h.executeStep(ctx, i, step); err != nil {
			return nil, err
		}
	}

	state, err := Snapshot(h.engine.State())
	if err != nil {
		return nil, fmt.Errorf("snapshot final state: %w", err)
	}
	result.State = state

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

func (h *Harness) record(seq int64, a action.Action, changed bool) {
	h.result.Trace = append(h.result.Trace, TraceEvent{
		Seq:     seq,
		Action:  a.Type(),
		Changed: changed,
		Payload: action.Describe(a),
	})
}

// executeStep returns an error only for harness faults; workflow failures
// are compared against the step's expect_error.
func (h *Harness) executeStep(ctx context.Context, index int, step FlowStep) error {
	var err error
	switch {
	case step.Dispatch != "":
		a, derr := action.Decode(step.Dispatch, step.Args)
		if derr != nil {
			return fmt.Errorf("flow[%d]: %w", index, derr)
		}
		err = h.engine.Dispatch(a)
	case step.Fetch != "":
		err = h.runFetch(ctx, step.Fetch)
	case step.Create != nil:
		draft := model.Draft{Title: step.Create.Title, Content: step.Create.Content, User: step.Create.User}
		_, err = fetch.CreatePost(ctx, h.engine, h.client, draft)
	default:
		return fmt.Errorf("flow[%d]: empty step", index)
	}

	switch {
	case err != nil && !step.ExpectError:
		h.result.AddError(fmt.Sprintf("flow[%d]: unexpected error: %v", index, err))
	case err == nil && step.ExpectError:
		h.result.AddError(fmt.Sprintf("flow[%d]: expected an error, step succeeded", index))
	}
	return nil
}

func (h *Harness) runFetch(ctx context.Context, name string) error {
	switch name {
	case FetchPosts:
		return fetch.Posts(ctx, h.engine, h.client)
	case FetchPostsIfIdle:
		_, err := fetch.PostsIfIdle(ctx, h.engine, h.client)
		return err
	case FetchUsers:
		return fetch.Users(ctx, h.engine, h.client)
	case FetchNotifications:
		return fetch.Notifications(ctx, h.engine, h.client)
	}
	return fmt.Errorf("unknown fetch %q", name)
}

func scriptClient(responses []ResponseStep) (*testutil.ScriptedClient, error) {
	client := testutil.NewScriptedClient()
	for i, r := range responses {
		path := r.Path
		if path == api.PathNotifications {
			path = api.NotificationsPath(r.Since)
		} else if r.Since != "" {
			return nil, fmt.Errorf("responses[%d]: since only applies to %s", i, api.PathNotifications)
		}

		resp := testutil.Response{Status: r.Status}
		switch {
		case r.Error != "":
			resp.Err = errors.New(r.Error)
		case r.Body != nil:
			resp.Body = r.Body
		}
		client.On(r.Method, path, resp)
	}
	return client, nil
}
