package lifecycle

import (
	"errors"
	"fmt"
)

// ErrNoPendingRequest is returned when a completion arrives for a collection
// with no outstanding request.
var ErrNoPendingRequest = errors.New("no pending request")

// TransitionError reports an illegal lifecycle transition.
type TransitionError struct {
	From      Status
	To        Status
	RequestID string
	Err       error
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("illegal transition %s -> %s (request=%s): %v", e.From, e.To, e.RequestID, e.Err)
}

func (e *TransitionError) Unwrap() error {
	return e.Err
}

// IsTransitionError returns true if err is (or wraps) a *TransitionError.
func IsTransitionError(err error) bool {
	var te *TransitionError
	return errors.As(err, &te)
}

// Tracker records the request status of one collection.
//
// Pending counts requests issued with Begin that have not completed yet.
// RequestID is the most recently issued request. Responses are applied
// last-write-wins: a completion for an older request still moves the
// status, there is no cancellation.
type Tracker struct {
	Status    Status `json:"status"`
	Error     string `json:"error,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	Pending   int    `json:"pending"`
}

// Begin enters loading for a newly issued request.
// Legal from every state.
func (t Tracker) Begin(requestID string) Tracker {
	return Tracker{
		Status:    Loading,
		Error:     t.Error,
		RequestID: requestID,
		Pending:   t.Pending + 1,
	}
}

// Succeed completes a request with data.
// The error message from an earlier failure is cleared.
func (t Tracker) Succeed(requestID string) (Tracker, error) {
	if t.Pending == 0 {
		return t, &TransitionError{From: t.Status, To: Succeeded, RequestID: requestID, Err: ErrNoPendingRequest}
	}
	return Tracker{
		Status:    Succeeded,
		RequestID: t.RequestID,
		Pending:   t.Pending - 1,
	}, nil
}

// Fail completes a request with an error message.
func (t Tracker) Fail(requestID, message string) (Tracker, error) {
	if t.Pending == 0 {
		return t, &TransitionError{From: t.Status, To: Failed, RequestID: requestID, Err: ErrNoPendingRequest}
	}
	return Tracker{
		Status:    Failed,
		Error:     message,
		RequestID: t.RequestID,
		Pending:   t.Pending - 1,
	}, nil
}

// Superseded reports whether requestID is not the most recently issued request.
func (t Tracker) Superseded(requestID string) bool {
	return t.RequestID != "" && requestID != t.RequestID
}

// IsIdle reports whether no request has ever been issued.
func (t Tracker) IsIdle() bool {
	return t.Status == Idle
}
