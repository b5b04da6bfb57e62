package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/roach88/bulletin/internal/api"
)

// Response is one canned reply of a ScriptedClient.
//
// Exactly one of Body, Raw, Err or Status should describe the outcome:
// Body is JSON-encoded, Raw is returned verbatim, Err is returned as the
// transport error and a non-zero Status produces an *api.Error.
type Response struct {
	Body   any
	Raw    string
	Err    error
	Status int

	// Hold, when set, blocks the reply until it is closed or ctx is done.
	Hold <-chan struct{}
}

// Call records one request received by a ScriptedClient.
type Call struct {
	Method string
	Path   string
	Body   any
}

// ScriptedClient is an api.Client replaying canned responses.
//
// Responses are keyed by method and path (including the query string) and
// consumed in order. The last response for a key is repeated once the
// script runs out. A request with no script fails.
//
// Thread-safety: ScriptedClient is safe for concurrent use.
type ScriptedClient struct {
	mu     sync.Mutex
	script map[string][]Response
	calls  []Call
}

var _ api.Client = (*ScriptedClient)(nil)

// NewScriptedClient creates a client with an empty script.
func NewScriptedClient() *ScriptedClient {
	return &ScriptedClient{script: make(map[string][]Response)}
}

// On appends responses for method and path. Returns the client for chaining.
func (c *ScriptedClient) On(method, path string, responses ...Response) *ScriptedClient {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := method + " " + path
	c.script[key] = append(c.script[key], responses...)
	return c
}

// Calls returns the requests received so far, in arrival order.
func (c *ScriptedClient) Calls() []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Call, len(c.calls))
	copy(out, c.calls)
	return out
}

// Get implements api.Client.
func (c *ScriptedClient) Get(ctx context.Context, path string, out any) error {
	return c.exchange(ctx, "GET", path, nil, out)
}

// Post implements api.Client.
func (c *ScriptedClient) Post(ctx context.Context, path string, body, out any) error {
	return c.exchange(ctx, "POST", path, body, out)
}

func (c *ScriptedClient) next(method, path string, body any) (Response, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, Call{Method: method, Path: path, Body: body})

	key := method + " " + path
	queue := c.script[key]
	if len(queue) == 0 {
		return Response{}, false
	}
	resp := queue[0]
	if len(queue) > 1 {
		c.script[key] = queue[1:]
	}
	return resp, true
}

func (c *ScriptedClient) exchange(ctx context.Context, method, path string, body, out any) error {
	resp, ok := c.next(method, path, body)
	if !ok {
		return fmt.Errorf("no scripted response for %s %s", method, path)
	}

	if resp.Hold != nil {
		select {
		case <-resp.Hold:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	switch {
	case resp.Err != nil:
		return resp.Err
	case resp.Status != 0:
		return &api.Error{Method: method, Path: path, StatusCode: resp.Status, Message: resp.Raw}
	}

	raw := []byte(resp.Raw)
	if resp.Body != nil {
		var err error
		if raw, err = json.Marshal(resp.Body); err != nil {
			return fmt.Errorf("scripted %s %s: %w", method, path, err)
		}
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}
