// Package engine holds the root state of the bulletin store and the single
// entry point through which it changes.
//
// ARCHITECTURE:
//
// Single Dispatch Path:
// Every change is an action.Action passed to Engine.Dispatch. Dispatch runs
// the slice reducers synchronously under one mutex, so no two mutations
// interleave and each dispatch is one atomic step:
//  1. The action is stamped with the next seq from the logical Clock
//  2. Reduce computes the next root State from the current one
//  3. The new snapshot is published (atomic pointer swap)
//  4. The Recorder, if any, sees (seq, action, changed)
//  5. Subscribers are notified after the lock is released
//
// Asynchronous work (network fetches) lives outside the engine. A fetch
// dispatches a pending action, waits for the network without holding any
// lock, then dispatches the fulfilled or rejected action.
//
// Snapshots are immutable. A dispatch that changes nothing publishes no new
// snapshot, so callers comparing State pointers can skip work.
//
// SEQUENCING:
//
// The Clock stamps dispatches with a strictly increasing seq, also for
// no-op dispatches. Traces built from the Recorder are therefore totally
// ordered and reproducible under a fixed request-id generator.
package engine
