package action

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/roach88/bulletin/internal/model"
)

var constructors = map[string]func() Action{
	TypePostsFetchPending:           func() Action { return &PostsFetchPending{} },
	TypePostsFetchFulfilled:         func() Action { return &PostsFetchFulfilled{} },
	TypePostsFetchRejected:          func() Action { return &PostsFetchRejected{} },
	TypePostCreated:                 func() Action { return &PostCreated{} },
	TypePostUpdated:                 func() Action { return &PostUpdated{} },
	TypeReactionAdded:               func() Action { return &ReactionAdded{} },
	TypeUsersFetchPending:           func() Action { return &UsersFetchPending{} },
	TypeUsersFetchFulfilled:         func() Action { return &UsersFetchFulfilled{} },
	TypeUsersFetchRejected:          func() Action { return &UsersFetchRejected{} },
	TypeNotificationsFetchPending:   func() Action { return &NotificationsFetchPending{} },
	TypeNotificationsFetchFulfilled: func() Action { return &NotificationsFetchFulfilled{} },
	TypeNotificationsFetchRejected:  func() Action { return &NotificationsFetchRejected{} },
	TypeAllNotificationsRead:        func() Action { return &AllNotificationsRead{} },
}

// Types returns every known action type name, sorted.
func Types() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Decode builds an action from its type name and a loosely typed payload,
// as read from a scenario file. Unknown types and unknown payload fields are
// rejected.
func Decode(typ string, payload map[string]any) (Action, error) {
	ctor, ok := constructors[typ]
	if !ok {
		return nil, fmt.Errorf("unknown action type %q", typ)
	}
	ptr := ctor()
	if len(payload) > 0 {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("action %s: encode payload: %w", typ, err)
		}
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.DisallowUnknownFields()
		if err := dec.Decode(ptr); err != nil {
			return nil, fmt.Errorf("action %s: decode payload: %w", typ, err)
		}
	}
	return deref(ptr), nil
}

// deref turns the pointer built by a constructor into the value type that
// reducers switch on.
func deref(a Action) Action {
	switch v := a.(type) {
	case *PostsFetchPending:
		return *v
	case *PostsFetchFulfilled:
		return *v
	case *PostsFetchRejected:
		return *v
	case *PostCreated:
		return *v
	case *PostUpdated:
		return *v
	case *ReactionAdded:
		return *v
	case *UsersFetchPending:
		return *v
	case *UsersFetchFulfilled:
		return *v
	case *UsersFetchRejected:
		return *v
	case *NotificationsFetchPending:
		return *v
	case *NotificationsFetchFulfilled:
		return *v
	case *NotificationsFetchRejected:
		return *v
	case *AllNotificationsRead:
		return *v
	}
	return a
}

// Describe flattens an action's payload for traces and structured logs.
// Record lists are reduced to their ids.
func Describe(a Action) map[string]any {
	switch v := a.(type) {
	case PostsFetchFulfilled:
		return map[string]any{"requestId": v.RequestID, "ids": ids(v.Posts, model.PostID)}
	case UsersFetchFulfilled:
		return map[string]any{"requestId": v.RequestID, "ids": ids(v.Users, model.UserID)}
	case NotificationsFetchFulfilled:
		return map[string]any{"requestId": v.RequestID, "ids": ids(v.Notifications, model.NotificationID)}
	}
	m, err := model.ToMap(a)
	if err != nil {
		return map[string]any{"error": err.Error()}
	}
	return m
}

func ids[T any](records []T, id func(T) string) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = id(r)
	}
	return out
}
