// Package fetch runs the asynchronous workflows that feed the store.
//
// Each fetch follows the same shape:
//  1. dispatch the pending action with a fresh request id
//  2. call the server, holding no lock
//  3. validate the response shape
//  4. dispatch fulfilled (records merged, status succeeded) or rejected
//
// There is no cancellation. A slow response that arrives after a newer one
// still merges; overlapping ids take the last value written.
package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/roach88/bulletin/internal/action"
	"github.com/roach88/bulletin/internal/api"
	"github.com/roach88/bulletin/internal/engine"
	"github.com/roach88/bulletin/internal/lifecycle"
	"github.com/roach88/bulletin/internal/model"
	"github.com/roach88/bulletin/internal/notifications"
	"github.com/roach88/bulletin/internal/posts"
)

// Store is the part of *engine.Engine the workflows need.
type Store interface {
	Dispatch(a action.Action) error
	State() *engine.State
	NewRequestID() string
}

var _ Store = (*engine.Engine)(nil)

// request describes one collection fetch.
type request struct {
	op       string
	path     string
	tracker  func(*engine.State) lifecycle.Tracker
	pending  func(id string) action.Action
	call     func(ctx context.Context, c api.Client, path, id string) (action.Action, int, error)
	rejected func(id, msg string) action.Action
}

func run(ctx context.Context, st Store, c api.Client, r request) error {
	id := st.NewRequestID()
	if err := st.Dispatch(r.pending(id)); err != nil {
		return err
	}

	start := time.Now()
	slog.Debug("fetch started", "op", r.op, "request_id", id, "path", r.path)

	fulfilled, count, err := r.call(ctx, c, r.path, id)
	if err != nil {
		fe := &Error{Op: r.op, RequestID: id, Err: err}
		if derr := st.Dispatch(r.rejected(id, err.Error())); derr != nil {
			return fmt.Errorf("%w (dispatch rejected: %v)", fe, derr)
		}
		return fe
	}

	if r.tracker(st.State()).Superseded(id) {
		slog.Info("applying superseded response",
			"op", r.op,
			"request_id", id,
			"latest_request_id", r.tracker(st.State()).RequestID,
		)
	}
	if err := st.Dispatch(fulfilled); err != nil {
		return err
	}

	slog.Debug("fetch completed",
		"op", r.op,
		"request_id", id,
		"count", count,
		"elapsed", time.Since(start),
	)
	return nil
}

// Posts fetches every post and merges it into the store.
func Posts(ctx context.Context, st Store, c api.Client) error {
	return run(ctx, st, c, request{
		op:   "posts",
		path: api.PathPosts,
		tracker: func(s *engine.State) lifecycle.Tracker {
			return s.Posts.Request
		},
		pending: func(id string) action.Action {
			return action.PostsFetchPending{RequestID: id}
		},
		call: func(ctx context.Context, c api.Client, path, id string) (action.Action, int, error) {
			var resp api.PostsResponse
			if err := c.Get(ctx, path, &resp); err != nil {
				return nil, 0, err
			}
			if err := model.ValidateAll(resp.Posts); err != nil {
				return nil, 0, err
			}
			return action.PostsFetchFulfilled{RequestID: id, Posts: resp.Posts}, len(resp.Posts), nil
		},
		rejected: func(id, msg string) action.Action {
			return action.PostsFetchRejected{RequestID: id, Error: msg}
		},
	})
}

// PostsIfIdle fetches posts only when no posts request was ever issued.
// started reports whether a fetch ran.
//
// The check and the pending dispatch are separate steps, so two concurrent
// callers can both start a fetch. Both responses merge harmlessly.
func PostsIfIdle(ctx context.Context, st Store, c api.Client) (started bool, err error) {
	if !posts.ShouldFetch(st.State().Posts) {
		return false, nil
	}
	return true, Posts(ctx, st, c)
}

// Users fetches the full author list, replacing the cached one.
func Users(ctx context.Context, st Store, c api.Client) error {
	return run(ctx, st, c, request{
		op:   "users",
		path: api.PathUsers,
		tracker: func(s *engine.State) lifecycle.Tracker {
			return s.Users.Request
		},
		pending: func(id string) action.Action {
			return action.UsersFetchPending{RequestID: id}
		},
		call: func(ctx context.Context, c api.Client, path, id string) (action.Action, int, error) {
			var resp api.UsersResponse
			if err := c.Get(ctx, path, &resp); err != nil {
				return nil, 0, err
			}
			if err := model.ValidateAll(resp.Users); err != nil {
				return nil, 0, err
			}
			return action.UsersFetchFulfilled{RequestID: id, Users: resp.Users}, len(resp.Users), nil
		},
		rejected: func(id, msg string) action.Action {
			return action.UsersFetchRejected{RequestID: id, Error: msg}
		},
	})
}

// Notifications fetches entries newer than the newest cached one.
// The cursor is read when the fetch starts.
func Notifications(ctx context.Context, st Store, c api.Client) error {
	since := notifications.LatestDate(st.State().Notifications)
	return run(ctx, st, c, request{
		op:   "notifications",
		path: api.NotificationsPath(since),
		tracker: func(s *engine.State) lifecycle.Tracker {
			return s.Notifications.Request
		},
		pending: func(id string) action.Action {
			return action.NotificationsFetchPending{RequestID: id, Since: since}
		},
		call: func(ctx context.Context, c api.Client, path, id string) (action.Action, int, error) {
			var resp api.NotificationsResponse
			if err := c.Get(ctx, path, &resp); err != nil {
				return nil, 0, err
			}
			if err := model.ValidateAll(resp.Notifications); err != nil {
				return nil, 0, err
			}
			return action.NotificationsFetchFulfilled{RequestID: id, Notifications: resp.Notifications}, len(resp.Notifications), nil
		},
		rejected: func(id, msg string) action.Action {
			return action.NotificationsFetchRejected{RequestID: id, Error: msg}
		},
	})
}

// CreatePost submits draft and adds the server's record to the store.
//
// Creation has no shared status: on failure the store is untouched and the
// error, a *SubmitError, is the only signal.
func CreatePost(ctx context.Context, st Store, c api.Client, draft model.Draft) (*model.Post, error) {
	if err := draft.Validate(); err != nil {
		return nil, &SubmitError{Draft: draft, Err: err}
	}

	var resp api.PostResponse
	if err := c.Post(ctx, api.PathPosts, api.CreatePostRequest{Post: draft}, &resp); err != nil {
		return nil, &SubmitError{Draft: draft, Err: err}
	}
	if err := resp.Post.Validate(); err != nil {
		return nil, &SubmitError{Draft: draft, Err: err}
	}

	if err := st.Dispatch(action.PostCreated{Post: resp.Post}); err != nil {
		return nil, &SubmitError{Draft: draft, Err: err}
	}
	slog.Info("post created", "id", resp.Post.ID, "user", resp.Post.User)

	post := resp.Post
	return &post, nil
}

// MarkAllRead marks every cached notification read. Safe to call when
// nothing is unread: the store does not change.
func MarkAllRead(st Store) error {
	return st.Dispatch(action.AllNotificationsRead{})
}
