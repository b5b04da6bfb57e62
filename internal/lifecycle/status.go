// Package lifecycle tracks the request status of one collection's fetches.
//
// States and transitions:
//
//	idle ──Begin──▶ loading ──Succeed──▶ succeeded
//	                   │  ▲                  │
//	                   │  └──────Begin───────┤
//	                   └──Fail──▶ failed ────┘
//
// succeeded and failed never revert to idle on their own; a new Begin
// re-enters loading. A Tracker is a plain value: transitions return a new
// Tracker and never mutate the receiver.
package lifecycle

import "fmt"

// Status is the request status of a collection.
type Status int

const (
	// Idle means no request has been issued yet.
	Idle Status = iota
	// Loading means a request is outstanding.
	Loading
	// Succeeded means the last completed request delivered data.
	Succeeded
	// Failed means the last completed request errored.
	Failed
)

var statusNames = map[Status]string{
	Idle:      "idle",
	Loading:   "loading",
	Succeeded: "succeeded",
	Failed:    "failed",
}

// String returns the lowercase status name.
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// ParseStatus converts a status name back to a Status.
func ParseStatus(name string) (Status, error) {
	for s, n := range statusNames {
		if n == name {
			return s, nil
		}
	}
	return Idle, fmt.Errorf("unknown status %q: must be one of idle, loading, succeeded, failed", name)
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
