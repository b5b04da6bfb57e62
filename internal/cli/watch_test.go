package cli

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/roach88/bulletin/internal/api"
	"github.com/roach88/bulletin/internal/model"
	"github.com/roach88/bulletin/internal/testutil"
)

func notes(ns ...model.Notification) testutil.Response {
	return testutil.Response{Body: api.NotificationsResponse{Notifications: ns}}
}

func TestWatch_PrintsEachEntryOnce(t *testing.T) {
	defer goleak.VerifyNone(t)

	first := model.Notification{ID: "n1", Date: "2026-03-01T09:00:00Z", Message: "first", User: "u1", IsNew: true}
	second := model.Notification{ID: "n2", Date: "2026-03-01T09:05:00Z", Message: "second", User: "u2", IsNew: true}
	client := testutil.NewScriptedClient().
		On("GET", api.PathUsers, testutil.Response{Body: api.UsersResponse{Users: []model.User{{ID: "u1", Name: "Alice"}, {ID: "u2", Name: "Bob"}}}}).
		On("GET", api.NotificationsPath(""), notes(first)).
		On("GET", api.NotificationsPath(first.Date), notes(second)).
		On("GET", api.NotificationsPath(second.Date), notes())

	stdout, _, err := execute(t, context.Background(), &RootOptions{Client: client},
		"watch", "--interval", "1ms", "--count", "3")
	require.NoError(t, err)

	assert.Contains(t, stdout, "Watching notifications every 1ms")
	assert.Equal(t, 1, strings.Count(stdout, "Alice: first"))
	assert.Equal(t, 1, strings.Count(stdout, "Bob: second"))
	assert.Less(t, strings.Index(stdout, "Alice: first"), strings.Index(stdout, "Bob: second"))

	var paths []string
	for _, c := range client.Calls() {
		paths = append(paths, c.Path)
	}
	assert.Equal(t, []string{
		api.PathUsers,
		api.NotificationsPath(""),
		api.NotificationsPath(first.Date),
		api.NotificationsPath(second.Date),
	}, paths)
}

func TestWatch_FailedPollIsRetried(t *testing.T) {
	defer goleak.VerifyNone(t)

	entry := model.Notification{ID: "n1", Date: "2026-03-01T09:00:00Z", Message: "back", User: "u1", IsNew: true}
	client := testutil.NewScriptedClient().
		On("GET", api.PathUsers, testutil.Response{Status: 502}).
		On("GET", api.NotificationsPath(""), testutil.Response{Status: 503}, notes(entry))

	stdout, stderr, err := execute(t, context.Background(), &RootOptions{Client: client},
		"watch", "--interval", "1ms", "--count", "2")
	require.NoError(t, err)

	assert.Contains(t, stderr, "users fetch failed")
	assert.Contains(t, stderr, "notifications poll failed")
	assert.Contains(t, stdout, "* 2026-03-01T09:00:00Z  Unknown User: back")
}

func TestWatch_StopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	hold := make(chan struct{})
	client := testutil.NewScriptedClient().
		On("GET", api.PathUsers, testutil.Response{Body: api.UsersResponse{}}).
		On("GET", api.NotificationsPath(""), testutil.Response{Hold: hold})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		_, _, err := execute(t, ctx, &RootOptions{Client: client}, "watch", "--interval", "1h")
		done <- err
	}()

	require.Eventually(t, func() bool {
		return len(client.Calls()) == 2
	}, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}

func TestWatch_InvalidFlags(t *testing.T) {
	for _, args := range [][]string{
		{"watch", "--interval", "-1s"},
		{"watch", "--count", "-2"},
	} {
		client := board()
		_, _, err := execute(t, context.Background(), &RootOptions{Client: client}, args...)
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
		assert.Empty(t, client.Calls())
	}
}
