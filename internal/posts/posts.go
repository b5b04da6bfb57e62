// Package posts holds the posts collection and its request status.
//
// Posts are kept newest first by date. A fetch result is merged into the
// collection in the same reducer step that flips the status to succeeded,
// so no snapshot shows succeeded with stale records.
package posts

import (
	"github.com/roach88/bulletin/internal/action"
	"github.com/roach88/bulletin/internal/entity"
	"github.com/roach88/bulletin/internal/lifecycle"
	"github.com/roach88/bulletin/internal/model"
)

// Adapter configures the posts collection.
var Adapter = entity.NewAdapter(model.PostID, model.EqualPosts,
	entity.WithSortComparer(model.NewestFirst),
	entity.WithMerge(model.MergePost),
)

// State is the posts slice. Treat it as immutable.
type State struct {
	Items   *entity.Collection[model.Post]
	Request lifecycle.Tracker
}

// Initial returns an empty, idle slice.
func Initial() *State {
	return &State{Items: Adapter.Empty()}
}

// with returns s when nothing changed, otherwise a new State.
func (s *State) with(items *entity.Collection[model.Post], req lifecycle.Tracker) *State {
	if items == s.Items && req == s.Request {
		return s
	}
	return &State{Items: items, Request: req}
}

// Reduce applies a to s. Actions that do not concern posts, and logical
// no-ops such as a reaction on an unknown post, return s itself.
// An illegal lifecycle transition returns s and the error.
func Reduce(s *State, a action.Action) (*State, error) {
	switch a := a.(type) {
	case action.PostsFetchPending:
		return s.with(s.Items, s.Request.Begin(a.RequestID)), nil

	case action.PostsFetchFulfilled:
		req, err := s.Request.Succeed(a.RequestID)
		if err != nil {
			return s, err
		}
		return s.with(s.Items.UpsertMany(a.Posts), req), nil

	case action.PostsFetchRejected:
		req, err := s.Request.Fail(a.RequestID, a.Error)
		if err != nil {
			return s, err
		}
		return s.with(s.Items, req), nil

	case action.PostCreated:
		return s.with(s.Items.AddOne(a.Post), s.Request), nil

	case action.PostUpdated:
		items := s.Items.MapOne(a.ID, func(p model.Post) model.Post {
			p.Title = a.Title
			p.Content = a.Content
			return p
		})
		return s.with(items, s.Request), nil

	case action.ReactionAdded:
		if !a.Reaction.Valid() {
			return s, nil
		}
		items := s.Items.MapOne(a.PostID, func(p model.Post) model.Post {
			reactions := p.Reactions.Clone()
			if reactions == nil {
				reactions = model.NewReactions()
			}
			reactions[a.Reaction]++
			p.Reactions = reactions
			return p
		})
		return s.with(items, s.Request), nil
	}
	return s, nil
}

// SelectAll returns every post, newest first.
func SelectAll(s *State) []*model.Post {
	return s.Items.SelectAll()
}

// SelectByID returns the post with the given id.
func SelectByID(s *State, id string) (*model.Post, bool) {
	return s.Items.SelectByID(id)
}

// Status returns the request status of the posts collection.
func Status(s *State) lifecycle.Status {
	return s.Request.Status
}

// ShouldFetch reports whether a caller that only loads posts once should
// issue a fetch now.
func ShouldFetch(s *State) bool {
	return s.Request.IsIdle()
}
