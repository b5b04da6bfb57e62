package engine

import (
	"github.com/roach88/bulletin/internal/action"
	"github.com/roach88/bulletin/internal/notifications"
	"github.com/roach88/bulletin/internal/posts"
	"github.com/roach88/bulletin/internal/users"
)

// State is one immutable snapshot of the whole store.
type State struct {
	Posts         *posts.State
	Users         *users.State
	Notifications *notifications.State
}

// Initial returns the empty root state.
func Initial() *State {
	return &State{
		Posts:         posts.Initial(),
		Users:         users.Initial(),
		Notifications: notifications.Initial(),
	}
}

// Reduce routes a to every slice and assembles the next root state.
// When no slice changed, s itself is returned. On error the state is
// returned unchanged.
func Reduce(s *State, a action.Action) (*State, error) {
	p, err := posts.Reduce(s.Posts, a)
	if err != nil {
		return s, err
	}
	u, err := users.Reduce(s.Users, a)
	if err != nil {
		return s, err
	}
	n, err := notifications.Reduce(s.Notifications, a)
	if err != nil {
		return s, err
	}
	if p == s.Posts && u == s.Users && n == s.Notifications {
		return s, nil
	}
	return &State{Posts: p, Users: u, Notifications: n}, nil
}
