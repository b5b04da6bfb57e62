package engine

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/roach88/bulletin/internal/action"
	"github.com/roach88/bulletin/internal/lifecycle"
)

// Recorder observes every dispatch in seq order.
//
// Record is called while the dispatch lock is held, so it must not call
// back into the Engine.
type Recorder interface {
	Record(seq int64, a action.Action, changed bool)
}

// RecorderFunc adapts a function to the Recorder interface.
type RecorderFunc func(seq int64, a action.Action, changed bool)

// Record calls f.
func (f RecorderFunc) Record(seq int64, a action.Action, changed bool) {
	f(seq, a, changed)
}

// Listener is notified with the snapshot produced by a changing dispatch.
type Listener func(*State)

// Engine owns the current root State and serializes every change to it.
//
// Thread-safety model:
//   - Dispatch(): safe from any goroutine; reducers run one at a time
//   - State(): safe from any goroutine; never blocks on Dispatch
//   - Subscribe(): safe from any goroutine
//
// INVARIANTS:
//   - the published snapshot only changes inside Dispatch
//   - a dispatch that changes nothing keeps the published pointer
//   - listeners run outside the dispatch lock and may dispatch
type Engine struct {
	mu       sync.Mutex // serializes reducers
	state    atomic.Pointer[State]
	clock    *Clock
	reqIDs   lifecycle.RequestIDGenerator
	recorder Recorder

	lmu          sync.Mutex
	listeners    []subscription
	nextListener int
}

type subscription struct {
	id int
	fn Listener
}

// Option configures an Engine.
type Option func(*Engine)

// WithRecorder installs a Recorder that observes every dispatch.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) {
		e.recorder = r
	}
}

// WithRequestIDs sets the request-id generator used by NewRequestID.
//
// Default: lifecycle.UUIDv7Generator
// Use lifecycle.NewFixedGenerator in tests for reproducible traces.
func WithRequestIDs(gen lifecycle.RequestIDGenerator) Option {
	return func(e *Engine) {
		e.reqIDs = gen
	}
}

// WithClock replaces the logical clock.
func WithClock(c *Clock) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithState seeds the engine with an initial snapshot instead of Initial().
func WithState(s *State) Option {
	return func(e *Engine) {
		e.state.Store(s)
	}
}

// New creates an Engine holding the initial root state.
func New(opts ...Option) *Engine {
	e := &Engine{
		clock:  NewClock(),
		reqIDs: lifecycle.UUIDv7Generator{},
	}
	e.state.Store(Initial())

	for _, opt := range opts {
		opt(e)
	}
	return e
}

// State returns the current snapshot. Treat it as read-only.
func (e *Engine) State() *State {
	return e.state.Load()
}

// Seq returns the seq of the last dispatched action.
func (e *Engine) Seq() int64 {
	return e.clock.Current()
}

// NewRequestID returns a correlation id for a request about to be issued.
func (e *Engine) NewRequestID() string {
	return e.reqIDs.Generate()
}

// Dispatch applies a to the current state.
//
// Dispatch is synchronous: when it returns, State() reflects a. A refused
// action (for example a completion with no pending request) leaves the state
// untouched and returns a *DispatchError.
func (e *Engine) Dispatch(a action.Action) error {
	if a == nil {
		return &DispatchError{Code: ErrCodeNilAction, Err: errNilAction}
	}

	e.mu.Lock()
	seq := e.clock.Next()
	prev := e.state.Load()
	next, err := Reduce(prev, a)
	changed := err == nil && next != prev
	if changed {
		e.state.Store(next)
	}
	if e.recorder != nil {
		e.recorder.Record(seq, a, changed)
	}
	e.mu.Unlock()

	if err != nil {
		slog.Warn("dispatch refused",
			"seq", seq,
			"type", a.Type(),
			"error", err,
		)
		return newDispatchError(seq, a.Type(), err)
	}

	logDispatch(seq, a, changed)

	if changed {
		e.notify(next)
	}
	return nil
}

func logDispatch(seq int64, a action.Action, changed bool) {
	switch a := a.(type) {
	case action.PostsFetchRejected:
		slog.Warn("fetch rejected", "seq", seq, "type", a.Type(), "request_id", a.RequestID, "error", a.Error)
	case action.UsersFetchRejected:
		slog.Warn("fetch rejected", "seq", seq, "type", a.Type(), "request_id", a.RequestID, "error", a.Error)
	case action.NotificationsFetchRejected:
		slog.Warn("fetch rejected", "seq", seq, "type", a.Type(), "request_id", a.RequestID, "error", a.Error)
	default:
		slog.Debug("dispatched",
			"seq", seq,
			"type", a.Type(),
			"changed", changed,
		)
	}
}

// Subscribe registers fn to be called after every dispatch that produced a
// new snapshot. The returned function removes the subscription; calling it
// more than once is harmless.
//
// Listeners are called in registration order, outside the dispatch lock.
// Concurrent dispatches may deliver snapshots to a listener out of seq
// order; compare with State() when that matters.
func (e *Engine) Subscribe(fn Listener) (unsubscribe func()) {
	e.lmu.Lock()
	defer e.lmu.Unlock()

	e.nextListener++
	id := e.nextListener
	e.listeners = append(e.listeners, subscription{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			e.lmu.Lock()
			defer e.lmu.Unlock()
			for i, sub := range e.listeners {
				if sub.id == id {
					e.listeners = append(e.listeners[:i:i], e.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

func (e *Engine) notify(s *State) {
	e.lmu.Lock()
	subs := make([]subscription, len(e.listeners))
	copy(subs, e.listeners)
	e.lmu.Unlock()

	for _, sub := range subs {
		sub.fn(s)
	}
}
