package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/bulletin/internal/lifecycle"
)

// DispatchError reports an action the store refused to apply.
//
// The state is left exactly as it was before the dispatch.
type DispatchError struct {
	// Code identifies the error category.
	Code DispatchErrorCode

	// Seq is the clock stamp assigned to the refused action.
	Seq int64

	// ActionType is the refused action's Type().
	ActionType string

	// Err is the underlying cause.
	Err error
}

// DispatchErrorCode categorizes dispatch errors.
type DispatchErrorCode string

const (
	// ErrCodeNilAction indicates Dispatch was called with a nil action.
	ErrCodeNilAction DispatchErrorCode = "NIL_ACTION"

	// ErrCodeIllegalTransition indicates a completion without a paired pending.
	ErrCodeIllegalTransition DispatchErrorCode = "ILLEGAL_TRANSITION"

	// ErrCodeReduceFailed indicates any other reducer error.
	ErrCodeReduceFailed DispatchErrorCode = "REDUCE_FAILED"
)

// Error implements the error interface.
func (e *DispatchError) Error() string {
	if e.ActionType != "" {
		return fmt.Sprintf("%s: %s (seq=%d): %v", e.Code, e.ActionType, e.Seq, e.Err)
	}
	return fmt.Sprintf("%s (seq=%d): %v", e.Code, e.Seq, e.Err)
}

func (e *DispatchError) Unwrap() error {
	return e.Err
}

// IsIllegalTransition returns true if err is a dispatch refused because of
// an illegal lifecycle transition. Uses errors.As to handle wrapped errors.
func IsIllegalTransition(err error) bool {
	var de *DispatchError
	if errors.As(err, &de) {
		return de.Code == ErrCodeIllegalTransition
	}
	return false
}

var errNilAction = errors.New("nil action")

func newDispatchError(seq int64, actionType string, err error) *DispatchError {
	code := ErrCodeReduceFailed
	if lifecycle.IsTransitionError(err) {
		code = ErrCodeIllegalTransition
	}
	return &DispatchError{Code: code, Seq: seq, ActionType: actionType, Err: err}
}
