package entity

import (
	"fmt"
	"maps"
	"slices"
	"sort"
)

// Collection is an immutable normalized set of records.
//
// INVARIANTS:
//   - ids contains no duplicates
//   - len(ids) == len(entities) and every id keys an entity
//   - entities[id] has adapter id == id
//   - with a comparator, ids are sorted by it
type Collection[T any] struct {
	adapter  *Adapter[T]
	ids      []string
	entities map[string]*T
	all      []*T // records in ids order, built once per version
}

func newCollection[T any](a *Adapter[T], ids []string, entities map[string]*T) *Collection[T] {
	all := make([]*T, len(ids))
	for i, id := range ids {
		all[i] = entities[id]
	}
	return &Collection[T]{
		adapter:  a,
		ids:      ids,
		entities: entities,
		all:      all,
	}
}

// Adapter returns the adapter this collection was built with.
func (c *Collection[T]) Adapter() *Adapter[T] {
	return c.adapter
}

// Len returns the number of records.
func (c *Collection[T]) Len() int {
	return len(c.ids)
}

// SelectIDs returns the ordered id sequence. The slice is shared; do not modify it.
func (c *Collection[T]) SelectIDs() []string {
	return c.ids
}

// SelectAll returns every record in id order.
// The same slice is returned for every call on the same collection version.
func (c *Collection[T]) SelectAll() []*T {
	return c.all
}

// SelectByID returns the record stored under id.
// When no record exists, found is false.
func (c *Collection[T]) SelectByID(id string) (record *T, found bool) {
	record, found = c.entities[id]
	return record, found
}

// SetAll replaces the whole collection with records.
// A repeated id keeps its first position and its last value.
// Records equal to the current version keep their pointer identity, and the
// receiver is returned when the result is identical.
func (c *Collection[T]) SetAll(records []T) *Collection[T] {
	a := c.adapter
	ids := make([]string, 0, len(records))
	entities := make(map[string]*T, len(records))

	for _, r := range records {
		id := a.id(r)
		if _, seen := entities[id]; !seen {
			ids = append(ids, id)
		}
		if existing, ok := c.entities[id]; ok && a.equal(*existing, r) {
			entities[id] = existing
			continue
		}
		rec := r
		entities[id] = &rec
	}

	if a.less != nil {
		slices.SortStableFunc(ids, func(x, y string) int {
			return a.compare(entities[x], entities[y])
		})
	}

	if slices.Equal(ids, c.ids) && samePointers(entities, c.entities) {
		return c
	}
	return newCollection(a, c.keepIDs(ids), entities)
}

// AddOne inserts record, overwriting any record with the same id, and
// re-places its id by the comparator.
func (c *Collection[T]) AddOne(record T) *Collection[T] {
	a := c.adapter
	id := a.id(record)

	existing, found := c.entities[id]
	if found && a.equal(*existing, record) {
		return c
	}

	entities := maps.Clone(c.entities)
	rec := record
	entities[id] = &rec

	var ids []string
	switch {
	case a.less != nil:
		ids = c.keepIDs(a.place(c.ids, entities, id, found))
	case found:
		ids = c.ids
	default:
		ids = append(slices.Clip(c.ids), id)
	}
	return newCollection(a, ids, entities)
}

// UpsertMany merges each record into the existing one with the same id,
// or inserts it when absent, then re-sorts the ids.
//
// Applying the same batch twice yields the same collection as applying it
// once: the second application returns its receiver.
func (c *Collection[T]) UpsertMany(records []T) *Collection[T] {
	a := c.adapter
	var (
		entities map[string]*T
		ids      []string
	)
	lookup := c.entities

	for _, r := range records {
		id := a.id(r)
		var next T
		existing, found := lookup[id]
		if found {
			next = a.merge(*existing, r)
			if a.equal(next, *existing) {
				continue
			}
		} else {
			next = r
		}

		// First change: detach from the current version.
		if entities == nil {
			entities = maps.Clone(c.entities)
			ids = slices.Clone(c.ids)
			lookup = entities
		}
		rec := next
		entities[id] = &rec
		if !found {
			ids = append(ids, id)
		}
	}

	if entities == nil {
		return c
	}
	if a.less != nil {
		slices.SortStableFunc(ids, func(x, y string) int {
			return a.compare(entities[x], entities[y])
		})
	}
	return newCollection(a, c.keepIDs(ids), entities)
}

// UpdateOne merges patch into the record stored under id.
// An absent id is not an error: the receiver is returned unchanged.
func (c *Collection[T]) UpdateOne(id string, patch T) *Collection[T] {
	merge := c.adapter.merge
	return c.MapOne(id, func(existing T) T {
		return merge(existing, patch)
	})
}

// MapOne replaces the record under id with fn(record).
//
// fn receives a shallow copy; it must not mutate maps or slices reachable
// from the record in place. An absent id, or fn producing an equal record,
// returns the receiver unchanged.
func (c *Collection[T]) MapOne(id string, fn func(T) T) *Collection[T] {
	a := c.adapter
	existing, found := c.entities[id]
	if !found {
		return c
	}

	next := fn(*existing)
	if a.equal(next, *existing) {
		return c
	}

	entities := maps.Clone(c.entities)
	entities[id] = &next

	ids := c.ids
	if a.less != nil {
		ids = c.keepIDs(a.place(c.ids, entities, id, true))
	}
	return newCollection(a, ids, entities)
}

// MapAll applies fn to every record in id order.
// Records for which fn produces an equal value keep their identity; when no
// record changes the receiver is returned.
func (c *Collection[T]) MapAll(fn func(T) T) *Collection[T] {
	a := c.adapter
	var entities map[string]*T

	for _, id := range c.ids {
		existing := c.entities[id]
		next := fn(*existing)
		if a.equal(next, *existing) {
			continue
		}
		if entities == nil {
			entities = maps.Clone(c.entities)
		}
		rec := next
		entities[id] = &rec
	}

	if entities == nil {
		return c
	}

	ids := c.ids
	if a.less != nil {
		ids = slices.Clone(c.ids)
		slices.SortStableFunc(ids, func(x, y string) int {
			return a.compare(entities[x], entities[y])
		})
		ids = c.keepIDs(ids)
	}
	return newCollection(a, ids, entities)
}

// CheckInvariants verifies the ids/entities consistency and ordering rules.
// Returns the first violation found.
func (c *Collection[T]) CheckInvariants() error {
	a := c.adapter
	if len(c.ids) != len(c.entities) {
		return fmt.Errorf("ids has %d entries but entities has %d", len(c.ids), len(c.entities))
	}

	seen := make(map[string]bool, len(c.ids))
	for i, id := range c.ids {
		if seen[id] {
			return fmt.Errorf("ids[%d]: duplicate id %q", i, id)
		}
		seen[id] = true

		rec, ok := c.entities[id]
		if !ok {
			return fmt.Errorf("ids[%d]: id %q has no entity", i, id)
		}
		if got := a.id(*rec); got != id {
			return fmt.Errorf("entities[%q]: record carries id %q", id, got)
		}
		if c.all[i] != rec {
			return fmt.Errorf("all[%d]: out of sync with ids", i)
		}
		if a.less != nil && i > 0 && a.less(*rec, *c.entities[c.ids[i-1]]) {
			return fmt.Errorf("ids[%d]: %q sorts before %q", i, id, c.ids[i-1])
		}
	}
	return nil
}

// keepIDs returns the current id slice when ids holds the same sequence,
// so an order-preserving change keeps SelectIDs referentially stable.
func (c *Collection[T]) keepIDs(ids []string) []string {
	if slices.Equal(ids, c.ids) {
		return c.ids
	}
	return ids
}

// place returns a new id slice with id positioned by the comparator.
// When present is true, the old occurrence of id is removed first.
// Ties place id after records that compare equal to it.
func (a *Adapter[T]) place(ids []string, entities map[string]*T, id string, present bool) []string {
	out := make([]string, 0, len(ids)+1)
	for _, other := range ids {
		if present && other == id {
			continue
		}
		out = append(out, other)
	}

	rec := entities[id]
	pos := sort.Search(len(out), func(i int) bool {
		return a.less(*rec, *entities[out[i]])
	})
	return slices.Insert(out, pos, id)
}

// samePointers reports whether both maps hold identical keys and pointers.
func samePointers[T any](x, y map[string]*T) bool {
	if len(x) != len(y) {
		return false
	}
	for k, p := range x {
		if y[k] != p {
			return false
		}
	}
	return true
}
