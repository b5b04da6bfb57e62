package testutil

import (
	"sync"
	"time"
)

// Timestamps hands out strictly increasing RFC 3339 dates for fixtures.
//
// Records ordered by date need distinct, predictable timestamps; Timestamps
// produces the same sequence on every run.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type Timestamps struct {
	mu   sync.Mutex
	next time.Time
	step time.Duration
}

// DefaultEpoch is the first timestamp issued by NewTimestamps.
var DefaultEpoch = time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)

// NewTimestamps creates a sequence starting at DefaultEpoch advancing one
// minute per call.
func NewTimestamps() *Timestamps {
	return NewTimestampsFrom(DefaultEpoch, time.Minute)
}

// NewTimestampsFrom creates a sequence starting at start advancing by step.
func NewTimestampsFrom(start time.Time, step time.Duration) *Timestamps {
	return &Timestamps{next: start.UTC(), step: step}
}

// Next returns the next timestamp.
func (ts *Timestamps) Next() string {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	out := ts.next.Format(time.RFC3339)
	ts.next = ts.next.Add(ts.step)
	return out
}

// Reset rewinds the sequence to start.
func (ts *Timestamps) Reset(start time.Time) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.next = start.UTC()
}
