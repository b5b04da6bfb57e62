// Package users holds the author directory.
//
// The server always returns the full list, so a fetch replaces the
// collection wholesale. Users keep the order the server sent them in.
package users

import (
	"github.com/roach88/bulletin/internal/action"
	"github.com/roach88/bulletin/internal/entity"
	"github.com/roach88/bulletin/internal/lifecycle"
	"github.com/roach88/bulletin/internal/model"
)

// Adapter configures the users collection.
var Adapter = entity.NewAdapter(model.UserID, model.EqualUsers,
	entity.WithMerge(model.MergeUser),
)

// State is the users slice.
type State struct {
	Items   *entity.Collection[model.User]
	Request lifecycle.Tracker
}

// Initial returns an empty, idle slice.
func Initial() *State {
	return &State{Items: Adapter.Empty()}
}

// Reduce applies a to s, returning s itself when nothing changed.
func Reduce(s *State, a action.Action) (*State, error) {
	var (
		items = s.Items
		req   = s.Request
		err   error
	)
	switch a := a.(type) {
	case action.UsersFetchPending:
		req = req.Begin(a.RequestID)
	case action.UsersFetchFulfilled:
		if req, err = req.Succeed(a.RequestID); err != nil {
			return s, err
		}
		items = items.SetAll(a.Users)
	case action.UsersFetchRejected:
		if req, err = req.Fail(a.RequestID, a.Error); err != nil {
			return s, err
		}
	default:
		return s, nil
	}
	if items == s.Items && req == s.Request {
		return s, nil
	}
	return &State{Items: items, Request: req}, nil
}

// SelectAll returns every user in server order.
func SelectAll(s *State) []*model.User {
	return s.Items.SelectAll()
}

// SelectByID returns the user with the given id.
func SelectByID(s *State, id string) (*model.User, bool) {
	return s.Items.SelectByID(id)
}
