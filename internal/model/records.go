package model

import (
	"maps"
	"strings"
)

// Reaction names one of the fixed reaction counters carried by a post.
type Reaction string

// The closed set of reactions a post can receive.
const (
	ReactionThumbsUp Reaction = "thumbsUp"
	ReactionHooray   Reaction = "hooray"
	ReactionHeart    Reaction = "heart"
	ReactionRocket   Reaction = "rocket"
	ReactionEyes     Reaction = "eyes"
)

// AllReactions lists every valid reaction in display order.
var AllReactions = []Reaction{
	ReactionThumbsUp,
	ReactionHooray,
	ReactionHeart,
	ReactionRocket,
	ReactionEyes,
}

// Valid reports whether r is one of AllReactions.
func (r Reaction) Valid() bool {
	switch r {
	case ReactionThumbsUp, ReactionHooray, ReactionHeart, ReactionRocket, ReactionEyes:
		return true
	}
	return false
}

// Reactions maps each reaction to a non-negative counter.
type Reactions map[Reaction]int

// NewReactions returns a counter set with every reaction at zero.
func NewReactions() Reactions {
	r := make(Reactions, len(AllReactions))
	for _, name := range AllReactions {
		r[name] = 0
	}
	return r
}

// Clone returns an independent copy. A nil receiver yields nil.
func (r Reactions) Clone() Reactions {
	if r == nil {
		return nil
	}
	return maps.Clone(r)
}

// Total sums all counters.
func (r Reactions) Total() int {
	n := 0
	for _, v := range r {
		n += v
	}
	return n
}

// Post is a blog post as served by GET /posts.
type Post struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	User      string    `json:"user"`
	Date      string    `json:"date"`
	Reactions Reactions `json:"reactions,omitempty"`
}

// PostID returns the post's key.
func PostID(p Post) string { return p.ID }

// EqualPosts compares two posts field by field, including reaction counters.
func EqualPosts(a, b Post) bool {
	return a.ID == b.ID &&
		a.Title == b.Title &&
		a.Content == b.Content &&
		a.User == b.User &&
		a.Date == b.Date &&
		maps.Equal(a.Reactions, b.Reactions)
}

// MergePost shallow-merges patch into existing.
// Empty strings and a nil reaction map in patch count as absent fields.
func MergePost(existing, patch Post) Post {
	merged := existing
	if patch.Title != "" {
		merged.Title = patch.Title
	}
	if patch.Content != "" {
		merged.Content = patch.Content
	}
	if patch.User != "" {
		merged.User = patch.User
	}
	if patch.Date != "" {
		merged.Date = patch.Date
	}
	if patch.Reactions != nil {
		merged.Reactions = patch.Reactions.Clone()
	}
	return merged
}

// NewestFirst orders posts by date, newest at the front.
func NewestFirst(a, b Post) bool {
	return strings.Compare(a.Date, b.Date) > 0
}

// User is an author as served by GET /users.
type User struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// UserID returns the user's key.
func UserID(u User) string { return u.ID }

// EqualUsers reports whether a and b carry the same fields.
func EqualUsers(a, b User) bool { return a == b }

// MergeUser overrides the name when patch carries one.
func MergeUser(existing, patch User) User {
	if patch.Name != "" {
		existing.Name = patch.Name
	}
	return existing
}

// Notification is an activity entry as served by GET /notifications.
//
// Read is set by the client when the user views the feed.
// IsNew is derived by the client on each fetch as !Read of the previous cycle.
type Notification struct {
	ID      string `json:"id"`
	Date    string `json:"date"`
	Message string `json:"message"`
	User    string `json:"user"`
	Read    bool   `json:"read"`
	IsNew   bool   `json:"isNew"`
}

// NotificationID returns the notification's key.
func NotificationID(n Notification) string { return n.ID }

// EqualNotifications reports whether a and b carry the same fields.
func EqualNotifications(a, b Notification) bool { return a == b }

// MergeNotification merges a server copy into the cached one.
// Read is sticky once set locally and IsNew stays client-owned.
func MergeNotification(existing, patch Notification) Notification {
	merged := existing
	if patch.Date != "" {
		merged.Date = patch.Date
	}
	if patch.Message != "" {
		merged.Message = patch.Message
	}
	if patch.User != "" {
		merged.User = patch.User
	}
	merged.Read = existing.Read || patch.Read
	return merged
}

// NewestNotificationFirst orders notifications by date, newest at the front.
func NewestNotificationFirst(a, b Notification) bool {
	return strings.Compare(a.Date, b.Date) > 0
}

// Draft is the client-side payload for POST /posts.
// The server assigns id, date and reactions.
type Draft struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	User    string `json:"user"`
}
