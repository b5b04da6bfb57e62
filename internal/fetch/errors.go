package fetch

import (
	"errors"
	"fmt"

	"github.com/roach88/bulletin/internal/model"
)

// Error reports a failed fetch. The same failure has already been
// dispatched as a rejected action, so the store shows status failed.
type Error struct {
	// Op names the collection: "posts", "users" or "notifications".
	Op string

	// RequestID correlates the error with its pending/rejected actions.
	RequestID string

	// Err is the transport or shape-validation cause.
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("fetch %s (request=%s): %v", e.Op, e.RequestID, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// SubmitError reports a failed post creation. The store is unchanged.
type SubmitError struct {
	Draft model.Draft
	Err   error
}

func (e *SubmitError) Error() string {
	return fmt.Sprintf("create post %q: %v", e.Draft.Title, e.Err)
}

func (e *SubmitError) Unwrap() error {
	return e.Err
}

// IsSubmitError returns true if err is (or wraps) a *SubmitError.
func IsSubmitError(err error) bool {
	var se *SubmitError
	return errors.As(err, &se)
}
