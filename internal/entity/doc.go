// Package entity implements normalized, copy-on-write record collections.
//
// A Collection holds records of one kind in the shape {ids, entities}:
//   - ids: ordered id sequence, unique, maintained on every mutation
//   - entities: id -> record
//
// Every id in ids has exactly one entity and every entity is reachable from ids.
//
// # Copy-on-Write
//
// Collections are immutable values. Each mutating operation returns a new
// *Collection only when some record actually changed; otherwise it returns
// the receiver itself. Unchanged records keep their pointer identity across
// versions. Downstream consumers (memoized queries, subscribers) rely on
// this to detect "nothing changed" with a pointer comparison.
//
// Records returned by read accessors are shared with the collection and
// must be treated as read-only.
//
// # Ordering
//
// With a sort comparer, ids stay sorted by it (stable: ties keep their
// arrival order). Without one, new ids are appended and existing ids keep
// their position.
package entity
