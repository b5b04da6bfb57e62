package engine

import "sync/atomic"

// Clock is a monotonic logical clock stamping dispatched actions.
//
// Ordering in traces and logs comes from seq, never from wall-clock time.
//
// Thread-safety: Clock is safe for concurrent use (atomic operations).
// Dispatch already serializes callers, so contention is rare.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock whose next seq is start+1.
// Used by the harness to number traces that continue an earlier run.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next increments the clock and returns the new seq.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last issued seq without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
