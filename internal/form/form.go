// Package form holds the local state of the add-post form.
//
// The form is not part of the shared store: only its own submit status
// gates the save action. A successful submit clears the fields; a failed
// one keeps them so the user can retry.
package form

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/roach88/bulletin/internal/api"
	"github.com/roach88/bulletin/internal/fetch"
	"github.com/roach88/bulletin/internal/model"
)

// SubmitStatus is the form's local request status.
type SubmitStatus string

const (
	// StatusIdle means no submit is in flight; the form may be saved.
	StatusIdle SubmitStatus = "idle"

	// StatusPending means a submit is in flight; saving is refused.
	StatusPending SubmitStatus = "pending"
)

// ErrCannotSave is returned by Submit when CanSave is false.
var ErrCannotSave = errors.New("form is incomplete or already submitting")

// AddPost is the add-post form.
//
// Thread-safety: AddPost is safe for concurrent use. At most one Submit is
// in flight at a time.
type AddPost struct {
	mu     sync.Mutex
	draft  model.Draft
	status SubmitStatus
}

// NewAddPost creates an empty, idle form.
func NewAddPost() *AddPost {
	return &AddPost{status: StatusIdle}
}

// SetTitle sets the title field.
func (f *AddPost) SetTitle(title string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.draft.Title = title
}

// SetContent sets the content field.
func (f *AddPost) SetContent(content string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.draft.Content = content
}

// SetAuthor sets the author user id.
func (f *AddPost) SetAuthor(userID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.draft.User = userID
}

// Draft returns the current field values.
func (f *AddPost) Draft() model.Draft {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draft
}

// Status returns the submit status.
func (f *AddPost) Status() SubmitStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

// CanSave reports whether every field is filled and no submit is running.
func (f *AddPost) CanSave() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.canSaveLocked()
}

func (f *AddPost) canSaveLocked() bool {
	d := f.draft
	return strings.TrimSpace(d.Title) != "" &&
		strings.TrimSpace(d.Content) != "" &&
		d.User != "" &&
		f.status == StatusIdle
}

// Submit creates the post. The form is pending for the duration of the
// call and idle again afterwards, whatever the outcome.
func (f *AddPost) Submit(ctx context.Context, st fetch.Store, c api.Client) (*model.Post, error) {
	f.mu.Lock()
	if !f.canSaveLocked() {
		f.mu.Unlock()
		return nil, ErrCannotSave
	}
	draft := f.draft
	f.status = StatusPending
	f.mu.Unlock()

	post, err := fetch.CreatePost(ctx, st, c, draft)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = StatusIdle
	if err != nil {
		return nil, err
	}
	f.draft = model.Draft{}
	return post, nil
}
