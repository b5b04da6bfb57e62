// Package api is the network collaborator of the store: a small JSON
// request/response contract over the bulletin server's endpoints.
//
// The store never sees transport details. Workflows call Client with a path
// and an envelope type and receive either a decoded envelope or an error.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/roach88/bulletin/internal/model"
)

// Endpoint paths, relative to the server base URL.
const (
	PathPosts         = "/posts"
	PathUsers         = "/users"
	PathNotifications = "/notifications"
)

// NotificationsPath returns the notifications path with the since cursor.
// An empty since asks for the whole feed.
func NotificationsPath(since string) string {
	return PathNotifications + "?since=" + url.QueryEscape(since)
}

// PostsResponse is the body of GET /posts.
type PostsResponse struct {
	Posts []model.Post `json:"posts"`
}

// CreatePostRequest is the body of POST /posts.
type CreatePostRequest struct {
	Post model.Draft `json:"post"`
}

// PostResponse is the body returned by POST /posts.
type PostResponse struct {
	Post model.Post `json:"post"`
}

// UsersResponse is the body of GET /users.
type UsersResponse struct {
	Users []model.User `json:"users"`
}

// NotificationsResponse is the body of GET /notifications.
type NotificationsResponse struct {
	Notifications []model.Notification `json:"notifications"`
}

// Client issues JSON requests against the bulletin server.
//
// out is a pointer to the response envelope. Implementations must honor ctx
// cancellation and be safe for concurrent use.
type Client interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, body, out any) error
}

// ClientFunc adapts a raw exchange function to Client. The function returns
// the response body, which is then decoded into out.
type ClientFunc func(ctx context.Context, method, path string, body any) ([]byte, error)

// Get implements Client.
func (f ClientFunc) Get(ctx context.Context, path string, out any) error {
	return f.exchange(ctx, "GET", path, nil, out)
}

// Post implements Client.
func (f ClientFunc) Post(ctx context.Context, path string, body, out any) error {
	return f.exchange(ctx, "POST", path, body, out)
}

func (f ClientFunc) exchange(ctx context.Context, method, path string, body, out any) error {
	raw, err := f(ctx, method, path, body)
	if err != nil {
		return err
	}
	return decode(method, path, raw, out)
}

func decode(method, path string, raw []byte, out any) error {
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}
