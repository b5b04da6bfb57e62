package harness

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_Scenarios(t *testing.T) {
	files, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, file := range files {
		name := strings.TrimSuffix(filepath.Base(file), ".yaml")
		t.Run(name, func(t *testing.T) {
			s, err := LoadScenario(file)
			require.NoError(t, err)

			result, err := Run(s)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestRun_IsDeterministic(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/notification_read_flags.yaml")
	require.NoError(t, err)

	first, err := Run(s)
	require.NoError(t, err)
	second, err := Run(s)
	require.NoError(t, err)

	a, err := SnapshotJSON(s.Name, first)
	require.NoError(t, err)
	b, err := SnapshotJSON(s.Name, second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestRun_TraceRecordsEveryDispatch(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/fetch_failure_retry.yaml")
	require.NoError(t, err)

	result, err := Run(s)
	require.NoError(t, err)

	var got []string
	for _, ev := range result.Trace {
		got = append(got, ev.Action)
	}
	assert.Equal(t, []string{
		"posts/fetch/pending",
		"posts/fetch/rejected",
		"posts/fetch/pending",
		"posts/fetch/fulfilled",
		"users/fetch/pending",
		"users/fetch/rejected",
	}, got)
	for i, ev := range result.Trace {
		assert.Equal(t, int64(i+1), ev.Seq)
		assert.True(t, ev.Changed)
	}
}

func TestRun_FailingAssertions(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: failing
description: "every assertion is wrong"
flow:
  - dispatch: notifications/allRead
assertions:
  - type: status
    collection: posts
    expect: succeeded
  - type: ids
    collection: posts
    ids: [p1]
  - type: count
    collection: users
    count: 3
  - type: entity
    collection: posts
    id: p1
    expect: { title: x }
  - type: trace_count
    action: notifications/allRead
    count: 2
  - type: trace_contains
    action: posts/updated
`))
	require.NoError(t, err)

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 6)
	assert.Contains(t, result.Errors[0], "Assertion failed: status")
	assert.Contains(t, result.Errors[3], "record not found")
	assert.Contains(t, result.Errors[4], "1 occurrences")
}

func TestRun_StepExpectations(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: step_expectations
description: "unexpected failures and unexpected successes both fail the run"
responses:
  - method: GET
    path: /users
    body: { users: [] }
flow:
  - fetch: posts
  - fetch: users
    expect_error: true
assertions:
  - type: count
    collection: users
    count: 0
`))
	require.NoError(t, err)

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "flow[0]: unexpected error: ")
	assert.Contains(t, result.Errors[0], "no scripted response for GET /posts")
	assert.Contains(t, result.Errors[1], "flow[1]: expected an error")
}

func TestRun_SinceOnlyForNotifications(t *testing.T) {
	s := &Scenario{
		Name:        "bad_since",
		Description: "since on posts",
		Responses:   []ResponseStep{{Method: "GET", Path: "/posts", Since: "x"}},
		Flow:        []FlowStep{{Fetch: FetchPosts}},
		Assertions:  []Assertion{{Type: AssertCount, Collection: "posts"}},
	}
	_, err := Run(s)
	assert.ErrorContains(t, err, "since only applies")
}

func TestMatchSubset(t *testing.T) {
	actual := map[string]any{
		"id":        "p1",
		"reactions": map[string]any{"heart": int64(2), "eyes": int64(0)},
		"ids":       []string{"a", "b"},
	}
	assert.True(t, matchSubset(actual, map[string]any{"reactions": map[string]any{"heart": 2}}))
	assert.True(t, matchSubset(actual, map[string]any{"ids": []any{"a", "b"}}))
	assert.False(t, matchSubset(actual, map[string]any{"ids": []any{"b", "a"}}))
	assert.False(t, matchSubset(actual, map[string]any{"missing": 1}))
	assert.False(t, matchSubset("p1", map[string]any{"id": "p1"}))
}
