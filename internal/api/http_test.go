package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/bulletin/internal/model"
)

func newServer(t *testing.T, h http.HandlerFunc) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewHTTPClient(srv.URL + "/api/")
}

func TestHTTPClient_Get(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/posts", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"posts":[{"id":"p1","title":"Hi","content":"x","user":"u1","date":"2026-03-01T00:00:00Z","reactions":{"heart":2}}]}`)
	})

	var resp PostsResponse
	require.NoError(t, c.Get(context.Background(), PathPosts, &resp))
	require.Len(t, resp.Posts, 1)
	assert.Equal(t, "p1", resp.Posts[0].ID)
	assert.Equal(t, 2, resp.Posts[0].Reactions[model.ReactionHeart])
}

func TestHTTPClient_NotificationsSince(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/notifications", r.URL.Path)
		assert.Equal(t, "2026-03-01T00:00:00+02:00", r.URL.Query().Get("since"))
		_, _ = io.WriteString(w, `{"notifications":[]}`)
	})

	var resp NotificationsResponse
	require.NoError(t, c.Get(context.Background(), NotificationsPath("2026-03-01T00:00:00+02:00"), &resp))
	assert.Empty(t, resp.Notifications)
}

func TestHTTPClient_Post(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req CreatePostRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, model.Draft{Title: "T", Content: "C", User: "u1"}, req.Post)

		_, _ = io.WriteString(w, `{"post":{"id":"p9","title":"T","content":"C","user":"u1","date":"2026-03-05T00:00:00Z"}}`)
	})

	var resp PostResponse
	err := c.Post(context.Background(), PathPosts, CreatePostRequest{Post: model.Draft{Title: "T", Content: "C", User: "u1"}}, &resp)
	require.NoError(t, err)
	assert.Equal(t, "p9", resp.Post.ID)
}

func TestHTTPClient_StatusError(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	err := c.Get(context.Background(), PathUsers, &UsersResponse{})
	require.Error(t, err)

	var ae *Error
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, http.StatusInternalServerError, ae.StatusCode)
	assert.Equal(t, "boom", ae.Message)
	assert.Equal(t, "GET", ae.Method)
	assert.Equal(t, PathUsers, ae.Path)
	assert.Equal(t, http.StatusInternalServerError, StatusCode(err))
}

func TestHTTPClient_MalformedBody(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"users":`)
	})

	err := c.Get(context.Background(), PathUsers, &UsersResponse{})
	assert.ErrorContains(t, err, "decode response")
	assert.Equal(t, 0, StatusCode(err))
}

func TestHTTPClient_ContextCancelled(t *testing.T) {
	release := make(chan struct{})
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := c.Get(ctx, PathPosts, &PostsResponse{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClientFunc(t *testing.T) {
	var gotMethod, gotPath string
	c := ClientFunc(func(_ context.Context, method, path string, _ any) ([]byte, error) {
		gotMethod, gotPath = method, path
		return []byte(`{"users":[{"id":"u1","name":"Ann"}]}`), nil
	})

	var resp UsersResponse
	require.NoError(t, c.Get(context.Background(), PathUsers, &resp))
	assert.Equal(t, "GET", gotMethod)
	assert.Equal(t, PathUsers, gotPath)
	assert.Equal(t, []model.User{{ID: "u1", Name: "Ann"}}, resp.Users)
}
