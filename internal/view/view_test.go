package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/bulletin/internal/action"
	"github.com/roach88/bulletin/internal/engine"
	"github.com/roach88/bulletin/internal/lifecycle"
	"github.com/roach88/bulletin/internal/model"
)

func seeded(t *testing.T) *engine.Engine {
	t.Helper()
	e := engine.New(engine.WithRequestIDs(lifecycle.NewFixedGenerator()))
	steps := []action.Action{
		action.UsersFetchPending{RequestID: "u"},
		action.UsersFetchFulfilled{RequestID: "u", Users: []model.User{{ID: "u1", Name: "Ann"}, {ID: "u2", Name: "Bo"}}},
		action.PostsFetchPending{RequestID: "p"},
		action.PostsFetchFulfilled{RequestID: "p", Posts: []model.Post{
			{ID: "p1", User: "u1", Date: "2026-03-01T00:00:00Z", Reactions: model.NewReactions()},
			{ID: "p2", User: "u2", Date: "2026-03-02T00:00:00Z", Reactions: model.NewReactions()},
			{ID: "p3", User: "u1", Date: "2026-03-03T00:00:00Z", Reactions: model.NewReactions()},
		}},
		action.NotificationsFetchPending{RequestID: "n"},
		action.NotificationsFetchFulfilled{RequestID: "n", Notifications: []model.Notification{
			{ID: "n1", Date: "2026-03-01T00:00:00Z", User: "u2", Message: "hi", IsNew: true},
			{ID: "n2", Date: "2026-03-02T00:00:00Z", User: "ghost", Message: "boo", IsNew: true},
		}},
	}
	for _, a := range steps {
		require.NoError(t, e.Dispatch(a))
	}
	return e
}

func ids(posts []*model.Post) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.ID
	}
	return out
}

func TestPostsByUser_Memoized(t *testing.T) {
	e := seeded(t)
	v := New()

	first := v.PostsByUser(e.State(), "u1")
	assert.Equal(t, []string{"p3", "p1"}, ids(first))

	// Reading notifications does not touch posts: same result by identity.
	require.NoError(t, e.Dispatch(action.AllNotificationsRead{}))
	second := v.PostsByUser(e.State(), "u1")
	assert.Same(t, &first[0], &second[0])
	assert.Equal(t, 1, v.postsByUser.Recomputations())

	// A reaction replaces a post record: recompute.
	require.NoError(t, e.Dispatch(action.ReactionAdded{PostID: "p1", Reaction: model.ReactionHooray}))
	third := v.PostsByUser(e.State(), "u1")
	assert.Equal(t, 2, v.postsByUser.Recomputations())
	assert.Equal(t, 1, third[1].Reactions[model.ReactionHooray])

	assert.Empty(t, v.PostsByUser(e.State(), "nobody"))
}

func TestNotificationFeed_FallbackName(t *testing.T) {
	e := seeded(t)
	v := New()

	feed := v.NotificationFeed(e.State())
	require.Len(t, feed, 2)
	assert.Equal(t, "n2", feed[0].Notification.ID)
	assert.Equal(t, UnknownUser, feed[0].Author)
	assert.Equal(t, "Bo", feed[1].Author)

	again := v.NotificationFeed(e.State())
	assert.Same(t, &feed[0], &again[0])
}

func TestNotificationFeed_RecomputesOnUsersChange(t *testing.T) {
	e := seeded(t)
	v := New()
	v.NotificationFeed(e.State())

	require.NoError(t, e.Dispatch(action.UsersFetchPending{RequestID: "u2"}))
	v.NotificationFeed(e.State())
	assert.Equal(t, 1, v.feed.Recomputations(), "a status flip leaves the users collection untouched")

	require.NoError(t, e.Dispatch(action.UsersFetchFulfilled{RequestID: "u2", Users: []model.User{{ID: "ghost", Name: "Casper"}}}))
	feed := v.NotificationFeed(e.State())
	assert.Equal(t, 2, v.feed.Recomputations())
	assert.Equal(t, "Casper", feed[0].Author)
	assert.Equal(t, UnknownUser, feed[1].Author)
}

func TestUnreadCount(t *testing.T) {
	e := seeded(t)
	v := New()

	assert.Equal(t, 2, v.UnreadCount(e.State()))
	require.NoError(t, e.Dispatch(action.AllNotificationsRead{}))
	assert.Equal(t, 0, v.UnreadCount(e.State()))

	// Repeated mark-all-read changes nothing, so nothing recomputes.
	require.NoError(t, e.Dispatch(action.AllNotificationsRead{}))
	assert.Equal(t, 0, v.UnreadCount(e.State()))
	assert.Equal(t, 2, v.unread.Recomputations())
}

func TestAuthorName(t *testing.T) {
	e := seeded(t)
	s := e.State()

	assert.Equal(t, "Ann", AuthorName(s, "u1"))
	assert.Equal(t, UnknownAuthor, AuthorName(s, "ghost"))
	assert.Equal(t, UnknownAuthor, AuthorName(s, ""))
}

func TestPostByIDAndTotals(t *testing.T) {
	e := seeded(t)
	require.NoError(t, e.Dispatch(action.ReactionAdded{PostID: "p2", Reaction: model.ReactionHeart}))
	require.NoError(t, e.Dispatch(action.ReactionAdded{PostID: "p2", Reaction: model.ReactionEyes}))

	p, ok := PostByID(e.State(), "p2")
	require.True(t, ok)
	assert.Equal(t, 2, ReactionTotal(p))
	assert.Equal(t, 0, ReactionTotal(nil))

	_, ok = PostByID(e.State(), "missing")
	assert.False(t, ok)
	assert.Equal(t, []string{"p3", "p2", "p1"}, PostIDs(e.State()))
}
