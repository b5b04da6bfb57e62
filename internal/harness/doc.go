// Package harness runs YAML scenarios against a real engine and checks the
// resulting trace and final state.
//
// # Scenario Format
//
//	name: reaction_counts
//	description: "Reactions increment one counter and keep ordering"
//	responses:
//	  - method: GET
//	    path: /posts
//	    body: { posts: [ ... ] }
//	flow:
//	  - fetch: posts
//	  - dispatch: posts/reactionAdded
//	    args: { postId: p1, reaction: thumbsUp }
//	  - create: { title: Hi, content: Body, user: u1 }
//	    expect_error: true
//	assertions:
//	  - type: status
//	    collection: posts
//	    expect: succeeded
//	  - type: entity
//	    collection: posts
//	    id: p1
//	    expect: { reactions: { thumbsUp: 1 } }
//
// Responses feed a testutil.ScriptedClient. For the notifications endpoint
// the since field builds the query string, so scenario files never spell
// URL escapes.
//
// # Assertion Types
//
//   - status: request status of a collection
//   - ids: exact ordered id list of a collection
//   - count: number of records in a collection
//   - entity: subset match on one record's JSON fields
//   - trace_contains: an action with matching payload was dispatched
//   - trace_order: actions were dispatched in the given order
//   - trace_count: an action was dispatched exactly N times
//
// # Deterministic Testing
//
// Every run uses a fresh engine, a fixed request-id generator and steps
// executed one at a time, so the trace is identical across runs and can be
// compared against golden files.
package harness
