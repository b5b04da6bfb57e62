package form

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/bulletin/internal/api"
	"github.com/roach88/bulletin/internal/engine"
	"github.com/roach88/bulletin/internal/fetch"
	"github.com/roach88/bulletin/internal/model"
	"github.com/roach88/bulletin/internal/testutil"
)

func filled() *AddPost {
	f := NewAddPost()
	f.SetTitle("Hello")
	f.SetContent("World")
	f.SetAuthor("u1")
	return f
}

func created() model.Post {
	return model.Post{ID: "p1", Title: "Hello", Content: "World", User: "u1", Date: "2026-03-01T00:00:00Z"}
}

func TestCanSave(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*AddPost)
		want  bool
	}{
		{"all fields", func(*AddPost) {}, true},
		{"missing title", func(f *AddPost) { f.SetTitle("") }, false},
		{"blank content", func(f *AddPost) { f.SetContent("   ") }, false},
		{"missing author", func(f *AddPost) { f.SetAuthor("") }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := filled()
			tt.setup(f)
			assert.Equal(t, tt.want, f.CanSave())
		})
	}
}

func TestSubmit_SuccessResetsFields(t *testing.T) {
	c := testutil.NewScriptedClient().On("POST", api.PathPosts, testutil.Response{Body: api.PostResponse{Post: created()}})
	e := engine.New()
	f := filled()

	post, err := f.Submit(context.Background(), e, c)
	require.NoError(t, err)
	assert.Equal(t, "p1", post.ID)
	assert.Equal(t, model.Draft{}, f.Draft())
	assert.Equal(t, StatusIdle, f.Status())
	assert.False(t, f.CanSave())

	_, ok := e.State().Posts.Items.SelectByID("p1")
	assert.True(t, ok)
}

func TestSubmit_FailureKeepsFields(t *testing.T) {
	c := testutil.NewScriptedClient().On("POST", api.PathPosts, testutil.Response{Status: 500, Raw: "down"})
	e := engine.New()
	f := filled()

	_, err := f.Submit(context.Background(), e, c)
	require.Error(t, err)
	assert.True(t, fetch.IsSubmitError(err))
	assert.Equal(t, "Hello", f.Draft().Title)
	assert.Equal(t, StatusIdle, f.Status())
	assert.True(t, f.CanSave(), "the user can retry")
}

func TestSubmit_PendingBlocksSecondSubmit(t *testing.T) {
	hold := make(chan struct{})
	c := testutil.NewScriptedClient().On("POST", api.PathPosts, testutil.Response{Body: api.PostResponse{Post: created()}, Hold: hold})
	e := engine.New()
	f := filled()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := f.Submit(context.Background(), e, c)
		assert.NoError(t, err)
	}()

	require.Eventually(t, func() bool { return f.Status() == StatusPending }, time.Second, time.Millisecond)
	assert.False(t, f.CanSave())
	_, err := f.Submit(context.Background(), e, c)
	assert.ErrorIs(t, err, ErrCannotSave)

	close(hold)
	wg.Wait()
	assert.Len(t, c.Calls(), 1)
}

func TestSubmit_Incomplete(t *testing.T) {
	f := NewAddPost()
	_, err := f.Submit(context.Background(), engine.New(), testutil.NewScriptedClient())
	assert.ErrorIs(t, err, ErrCannotSave)
}
