// Package action defines the closed set of commands accepted by the store.
//
// Every state change goes through one of these values. The set is sealed
// by an unexported marker method, so reducers can switch over it
// exhaustively and a new command cannot be added outside this package.
package action

import "github.com/roach88/bulletin/internal/model"

// Action is a command dispatched to the store.
type Action interface {
	// Type returns the stable wire name, e.g. "posts/fetch/pending".
	Type() string

	// actionMarker restricts implementers to this package.
	actionMarker()
}

// Type names. These appear in traces, logs and scenario files.
const (
	TypePostsFetchPending           = "posts/fetch/pending"
	TypePostsFetchFulfilled         = "posts/fetch/fulfilled"
	TypePostsFetchRejected          = "posts/fetch/rejected"
	TypePostCreated                 = "posts/created"
	TypePostUpdated                 = "posts/updated"
	TypeReactionAdded               = "posts/reactionAdded"
	TypeUsersFetchPending           = "users/fetch/pending"
	TypeUsersFetchFulfilled         = "users/fetch/fulfilled"
	TypeUsersFetchRejected          = "users/fetch/rejected"
	TypeNotificationsFetchPending   = "notifications/fetch/pending"
	TypeNotificationsFetchFulfilled = "notifications/fetch/fulfilled"
	TypeNotificationsFetchRejected  = "notifications/fetch/rejected"
	TypeAllNotificationsRead        = "notifications/allRead"
)

// PostsFetchPending marks a posts fetch as issued.
type PostsFetchPending struct {
	RequestID string `json:"requestId"`
}

// PostsFetchFulfilled delivers a successful posts fetch.
type PostsFetchFulfilled struct {
	RequestID string       `json:"requestId"`
	Posts     []model.Post `json:"posts"`
}

// PostsFetchRejected reports a failed posts fetch.
type PostsFetchRejected struct {
	RequestID string `json:"requestId"`
	Error     string `json:"error"`
}

// PostCreated adds a post returned by the server after a create.
type PostCreated struct {
	Post model.Post `json:"post"`
}

// PostUpdated edits the title and content of an existing post.
type PostUpdated struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// ReactionAdded increments one reaction counter on a post.
type ReactionAdded struct {
	PostID   string         `json:"postId"`
	Reaction model.Reaction `json:"reaction"`
}

// UsersFetchPending marks a users fetch as issued.
type UsersFetchPending struct {
	RequestID string `json:"requestId"`
}

// UsersFetchFulfilled delivers the full user list.
type UsersFetchFulfilled struct {
	RequestID string       `json:"requestId"`
	Users     []model.User `json:"users"`
}

// UsersFetchRejected reports a failed users fetch.
type UsersFetchRejected struct {
	RequestID string `json:"requestId"`
	Error     string `json:"error"`
}

// NotificationsFetchPending marks a notifications fetch as issued.
type NotificationsFetchPending struct {
	RequestID string `json:"requestId"`
	Since     string `json:"since,omitempty"`
}

// NotificationsFetchFulfilled delivers notifications newer than the cursor.
type NotificationsFetchFulfilled struct {
	RequestID     string               `json:"requestId"`
	Notifications []model.Notification `json:"notifications"`
}

// NotificationsFetchRejected reports a failed notifications fetch.
type NotificationsFetchRejected struct {
	RequestID string `json:"requestId"`
	Error     string `json:"error"`
}

// AllNotificationsRead marks every stored notification as read.
type AllNotificationsRead struct{}

func (PostsFetchPending) Type() string           { return TypePostsFetchPending }
func (PostsFetchFulfilled) Type() string         { return TypePostsFetchFulfilled }
func (PostsFetchRejected) Type() string          { return TypePostsFetchRejected }
func (PostCreated) Type() string                 { return TypePostCreated }
func (PostUpdated) Type() string                 { return TypePostUpdated }
func (ReactionAdded) Type() string               { return TypeReactionAdded }
func (UsersFetchPending) Type() string           { return TypeUsersFetchPending }
func (UsersFetchFulfilled) Type() string         { return TypeUsersFetchFulfilled }
func (UsersFetchRejected) Type() string          { return TypeUsersFetchRejected }
func (NotificationsFetchPending) Type() string   { return TypeNotificationsFetchPending }
func (NotificationsFetchFulfilled) Type() string { return TypeNotificationsFetchFulfilled }
func (NotificationsFetchRejected) Type() string  { return TypeNotificationsFetchRejected }
func (AllNotificationsRead) Type() string        { return TypeAllNotificationsRead }

func (PostsFetchPending) actionMarker()           {}
func (PostsFetchFulfilled) actionMarker()         {}
func (PostsFetchRejected) actionMarker()          {}
func (PostCreated) actionMarker()                 {}
func (PostUpdated) actionMarker()                 {}
func (ReactionAdded) actionMarker()               {}
func (UsersFetchPending) actionMarker()           {}
func (UsersFetchFulfilled) actionMarker()         {}
func (UsersFetchRejected) actionMarker()          {}
func (NotificationsFetchPending) actionMarker()   {}
func (NotificationsFetchFulfilled) actionMarker() {}
func (NotificationsFetchRejected) actionMarker()  {}
func (AllNotificationsRead) actionMarker()        {}
