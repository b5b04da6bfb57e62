// Package notifications holds the activity feed and its read flags.
//
// Read is set locally by AllNotificationsRead. IsNew is recomputed on each
// fetch completion: every notification already in the feed gets
// IsNew = !Read before the new batch is merged, so an entry read during the
// previous cycle is no longer new. The flip always happens before the merge,
// within one reducer step.
package notifications

import (
	"github.com/roach88/bulletin/internal/action"
	"github.com/roach88/bulletin/internal/entity"
	"github.com/roach88/bulletin/internal/lifecycle"
	"github.com/roach88/bulletin/internal/model"
)

// Adapter configures the notifications collection.
var Adapter = entity.NewAdapter(model.NotificationID, model.EqualNotifications,
	entity.WithSortComparer(model.NewestNotificationFirst),
	entity.WithMerge(model.MergeNotification),
)

// State is the notifications slice.
type State struct {
	Items   *entity.Collection[model.Notification]
	Request lifecycle.Tracker
}

// Initial returns an empty, idle slice.
func Initial() *State {
	return &State{Items: Adapter.Empty()}
}

func (s *State) with(items *entity.Collection[model.Notification], req lifecycle.Tracker) *State {
	if items == s.Items && req == s.Request {
		return s
	}
	return &State{Items: items, Request: req}
}

// Reduce applies a to s, returning s itself when nothing changed.
func Reduce(s *State, a action.Action) (*State, error) {
	switch a := a.(type) {
	case action.NotificationsFetchPending:
		return s.with(s.Items, s.Request.Begin(a.RequestID)), nil

	case action.NotificationsFetchFulfilled:
		req, err := s.Request.Succeed(a.RequestID)
		if err != nil {
			return s, err
		}
		items := s.Items.MapAll(flipNew).UpsertMany(a.Notifications)
		return s.with(items, req), nil

	case action.NotificationsFetchRejected:
		req, err := s.Request.Fail(a.RequestID, a.Error)
		if err != nil {
			return s, err
		}
		return s.with(s.Items, req), nil

	case action.AllNotificationsRead:
		return s.with(s.Items.MapAll(markRead), s.Request), nil
	}
	return s, nil
}

func flipNew(n model.Notification) model.Notification {
	n.IsNew = !n.Read
	return n
}

func markRead(n model.Notification) model.Notification {
	n.Read = true
	return n
}

// SelectAll returns the feed, newest first.
func SelectAll(s *State) []*model.Notification {
	return s.Items.SelectAll()
}

// SelectByID returns the notification with the given id.
func SelectByID(s *State, id string) (*model.Notification, bool) {
	return s.Items.SelectByID(id)
}

// LatestDate returns the date of the newest notification, or "" for an
// empty feed. It is the since cursor for the next fetch.
func LatestDate(s *State) string {
	all := s.Items.SelectAll()
	if len(all) == 0 {
		return ""
	}
	return all[0].Date
}

// Unread counts notifications not yet marked read.
func Unread(s *State) int {
	n := 0
	for _, rec := range s.Items.SelectAll() {
		if !rec.Read {
			n++
		}
	}
	return n
}
