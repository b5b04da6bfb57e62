// Package view derives display data from root snapshots.
//
// Each Views value owns its memo caches; build one per consumer. Results
// are cached against collection pointers, so a dispatch that leaves a
// collection untouched returns the previous result by identity.
package view

import (
	"github.com/roach88/bulletin/internal/engine"
	"github.com/roach88/bulletin/internal/entity"
	"github.com/roach88/bulletin/internal/model"
	"github.com/roach88/bulletin/internal/query"
)

// Fallback display names for dangling user references.
const (
	UnknownAuthor = "Unknown author"
	UnknownUser   = "Unknown User"
)

// FeedEntry is a notification joined with its author's display name.
type FeedEntry struct {
	Notification *model.Notification
	Author       string
}

// Views holds the memoized selectors over engine.State.
//
// Thread-safety: Views is safe for concurrent use.
type Views struct {
	postsByUser *query.Selector[*engine.State, string, []*model.Post]
	feed        *query.Selector[*engine.State, struct{}, []FeedEntry]
	unread      *query.Selector[*engine.State, struct{}, int]
}

func postItems[P any](s *engine.State, _ P) *entity.Collection[model.Post] {
	return s.Posts.Items
}

func userItems[P any](s *engine.State, _ P) *entity.Collection[model.User] {
	return s.Users.Items
}

func notificationItems[P any](s *engine.State, _ P) *entity.Collection[model.Notification] {
	return s.Notifications.Items
}

// New builds a fresh set of views with empty caches.
func New() *Views {
	return &Views{
		postsByUser: query.Select2(postItems[string], query.Param[*engine.State, string], filterByUser),
		feed:        query.Select2(notificationItems[struct{}], userItems[struct{}], joinFeed),
		unread:      query.Select1(notificationItems[struct{}], countUnread),
	}
}

func filterByUser(posts *entity.Collection[model.Post], userID string) []*model.Post {
	out := []*model.Post{}
	for _, p := range posts.SelectAll() {
		if p.User == userID {
			out = append(out, p)
		}
	}
	return out
}

func joinFeed(notes *entity.Collection[model.Notification], users *entity.Collection[model.User]) []FeedEntry {
	all := notes.SelectAll()
	out := make([]FeedEntry, len(all))
	for i, n := range all {
		out[i] = FeedEntry{Notification: n, Author: nameOr(users, n.User, UnknownUser)}
	}
	return out
}

func countUnread(notes *entity.Collection[model.Notification]) int {
	n := 0
	for _, rec := range notes.SelectAll() {
		if !rec.Read {
			n++
		}
	}
	return n
}

func nameOr(users *entity.Collection[model.User], id, fallback string) string {
	if u, ok := users.SelectByID(id); ok && u.Name != "" {
		return u.Name
	}
	return fallback
}

// PostsByUser returns the posts written by userID, newest first.
// The slice is shared between calls with unchanged inputs.
func (v *Views) PostsByUser(s *engine.State, userID string) []*model.Post {
	return v.postsByUser.Get(s, userID)
}

// NotificationFeed returns every notification, newest first, with the
// author name resolved.
func (v *Views) NotificationFeed(s *engine.State) []FeedEntry {
	return v.feed.Get(s, struct{}{})
}

// UnreadCount returns how many notifications are not read yet.
func (v *Views) UnreadCount(s *engine.State) int {
	return v.unread.Get(s, struct{}{})
}

// PostIDs returns the ordered post ids.
func PostIDs(s *engine.State) []string {
	return s.Posts.Items.SelectIDs()
}

// PostByID returns a single post.
func PostByID(s *engine.State, id string) (*model.Post, bool) {
	return s.Posts.Items.SelectByID(id)
}

// AuthorName resolves a post author, falling back to UnknownAuthor for a
// dangling or empty reference.
func AuthorName(s *engine.State, userID string) string {
	return nameOr(s.Users.Items, userID, UnknownAuthor)
}

// ReactionTotal sums every reaction counter on p.
func ReactionTotal(p *model.Post) int {
	if p == nil {
		return 0
	}
	return p.Reactions.Total()
}
