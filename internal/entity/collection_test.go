package entity

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID     string
	Date   string
	Author string
	Title  string
}

func itemID(i item) string {
	return i.ID
}

func itemEqual(a, b item) bool {
	return a == b
}

func newestFirst(a, b item) bool {
	return strings.Compare(a.Date, b.Date) > 0
}

func mergeItem(e, p item) item {
	if p.Date != "" {
		e.Date = p.Date
	}
	if p.Author != "" {
		e.Author = p.Author
	}
	if p.Title != "" {
		e.Title = p.Title
	}
	return e
}

func sortedAdapter() *Adapter[item] {
	return NewAdapter(itemID, itemEqual, WithSortComparer(newestFirst), WithMerge(mergeItem))
}

func insertionAdapter() *Adapter[item] {
	return NewAdapter(itemID, itemEqual, WithMerge(mergeItem))
}

func TestEmpty(t *testing.T) {
	c := sortedAdapter().Empty()
	assert.Equal(t, 0, c.Len())
	assert.Empty(t, c.SelectIDs())
	assert.Empty(t, c.SelectAll())
	_, found := c.SelectByID("missing")
	assert.False(t, found)
	require.NoError(t, c.CheckInvariants())
}

func TestNewAdapter_RequiresFunctions(t *testing.T) {
	assert.Panics(t, func() { NewAdapter[item](nil, itemEqual) })
	assert.Panics(t, func() { NewAdapter(itemID, nil) })
}

func TestSetAll_ReplacesWholesale(t *testing.T) {
	c := insertionAdapter().Empty().
		SetAll([]item{{ID: "a"}, {ID: "b"}})

	c = c.SetAll([]item{{ID: "c", Title: "only"}})

	assert.Equal(t, []string{"c"}, c.SelectIDs())
	_, found := c.SelectByID("a")
	assert.False(t, found, "setAll must not merge with previous state")
	require.NoError(t, c.CheckInvariants())
}

func TestSetAll_DuplicateIDsLastValueWins(t *testing.T) {
	c := insertionAdapter().Empty().
		SetAll([]item{{ID: "a", Title: "one"}, {ID: "b"}, {ID: "a", Title: "two"}})

	assert.Equal(t, []string{"a", "b"}, c.SelectIDs())
	rec, _ := c.SelectByID("a")
	assert.Equal(t, "two", rec.Title)
	require.NoError(t, c.CheckInvariants())
}

func TestSetAll_IdenticalReturnsReceiver(t *testing.T) {
	records := []item{{ID: "a", Title: "x"}, {ID: "b", Title: "y"}}
	c := insertionAdapter().Empty().SetAll(records)

	again := c.SetAll([]item{{ID: "a", Title: "x"}, {ID: "b", Title: "y"}})
	assert.Same(t, c, again)
}

func TestSetAll_KeepsIdentityOfUnchangedRecords(t *testing.T) {
	c := insertionAdapter().Empty().SetAll([]item{{ID: "a"}, {ID: "b"}})
	before, _ := c.SelectByID("a")

	next := c.SetAll([]item{{ID: "a"}, {ID: "b", Title: "changed"}})
	require.NotSame(t, c, next)

	after, _ := next.SelectByID("a")
	assert.Same(t, before, after)
}

func TestSetAll_Sorted(t *testing.T) {
	c := sortedAdapter().Empty().
		SetAll([]item{{ID: "1", Date: "t1"}, {ID: "3", Date: "t3"}, {ID: "2", Date: "t2"}})
	assert.Equal(t, []string{"3", "2", "1"}, c.SelectIDs())
}

func TestAddOne_PlacesByComparator(t *testing.T) {
	c := sortedAdapter().Empty().
		SetAll([]item{{ID: "1", Date: "t2"}, {ID: "2", Date: "t1"}})

	c = c.AddOne(item{ID: "3", Date: "t3", Author: "5"})
	assert.Equal(t, []string{"3", "1", "2"}, c.SelectIDs())

	c = c.AddOne(item{ID: "4", Date: "t0"})
	assert.Equal(t, []string{"3", "1", "2", "4"}, c.SelectIDs())

	c = c.AddOne(item{ID: "5", Date: "t2"})
	assert.Equal(t, []string{"3", "1", "5", "2", "4"}, c.SelectIDs(), "ties go after existing equal dates")
	require.NoError(t, c.CheckInvariants())
}

func TestAddOne_OverwriteRepositions(t *testing.T) {
	c := sortedAdapter().Empty().
		SetAll([]item{{ID: "1", Date: "t3", Title: "keep?"}, {ID: "2", Date: "t2"}})

	// Overwrite moves id 1 to the back and drops its title (no merge).
	c = c.AddOne(item{ID: "1", Date: "t1"})

	assert.Equal(t, []string{"2", "1"}, c.SelectIDs())
	rec, _ := c.SelectByID("1")
	assert.Equal(t, "", rec.Title)
	require.NoError(t, c.CheckInvariants())
}

func TestAddOne_InsertionOrder(t *testing.T) {
	c := insertionAdapter().Empty().
		AddOne(item{ID: "b"}).
		AddOne(item{ID: "a"}).
		AddOne(item{ID: "b", Title: "updated"})

	assert.Equal(t, []string{"b", "a"}, c.SelectIDs())
	rec, _ := c.SelectByID("b")
	assert.Equal(t, "updated", rec.Title)
}

func TestAddOne_EqualRecordReturnsReceiver(t *testing.T) {
	c := sortedAdapter().Empty().AddOne(item{ID: "1", Date: "t1"})
	assert.Same(t, c, c.AddOne(item{ID: "1", Date: "t1"}))
}

func TestAddOne_DoesNotAliasPreviousVersion(t *testing.T) {
	base := insertionAdapter().Empty().AddOne(item{ID: "a"})
	v1 := base.AddOne(item{ID: "b"})
	v2 := base.AddOne(item{ID: "c"})

	assert.Equal(t, []string{"a"}, base.SelectIDs())
	assert.Equal(t, []string{"a", "b"}, v1.SelectIDs())
	assert.Equal(t, []string{"a", "c"}, v2.SelectIDs())
}

func TestUpsertMany_MergesAndInserts(t *testing.T) {
	c := sortedAdapter().Empty().
		SetAll([]item{{ID: "1", Date: "t1", Title: "old", Author: "0"}})

	c = c.UpsertMany([]item{
		{ID: "1", Title: "new"},
		{ID: "2", Date: "t2", Author: "1"},
	})

	assert.Equal(t, []string{"2", "1"}, c.SelectIDs())
	rec, _ := c.SelectByID("1")
	assert.Equal(t, item{ID: "1", Date: "t1", Title: "new", Author: "0"}, *rec, "absent fields are preserved")
	require.NoError(t, c.CheckInvariants())
}

func TestUpsertMany_Idempotent(t *testing.T) {
	batch := []item{
		{ID: "1", Date: "t1", Title: "a"},
		{ID: "2", Date: "t3"},
		{ID: "1", Author: "7"},
	}
	c := sortedAdapter().Empty().AddOne(item{ID: "0", Date: "t2"})

	once := c.UpsertMany(batch)
	twice := once.UpsertMany(batch)

	assert.Same(t, once, twice, "a repeated batch must not produce a new version")
	assert.Equal(t, []string{"2", "0", "1"}, twice.SelectIDs())
}

func TestUpsertMany_NoChangesReturnsReceiver(t *testing.T) {
	c := sortedAdapter().Empty().SetAll([]item{{ID: "1", Date: "t1", Title: "x"}})
	assert.Same(t, c, c.UpsertMany([]item{{ID: "1", Title: "x"}}))
	assert.Same(t, c, c.UpsertMany(nil))
}

func TestUpsertMany_KeepsIdentityOfUntouchedRecords(t *testing.T) {
	c := sortedAdapter().Empty().SetAll([]item{{ID: "1", Date: "t1"}, {ID: "2", Date: "t2"}})
	keep, _ := c.SelectByID("1")

	next := c.UpsertMany([]item{{ID: "2", Title: "changed"}})

	got, _ := next.SelectByID("1")
	assert.Same(t, keep, got)
}

func TestUpsertMany_ResortsOnDateChange(t *testing.T) {
	c := sortedAdapter().Empty().SetAll([]item{{ID: "1", Date: "t2"}, {ID: "2", Date: "t1"}})
	c = c.UpsertMany([]item{{ID: "2", Date: "t9"}})
	assert.Equal(t, []string{"2", "1"}, c.SelectIDs())
}

func TestUpdateOne(t *testing.T) {
	c := sortedAdapter().Empty().SetAll([]item{{ID: "1", Date: "t1", Title: "a", Author: "0"}})

	c = c.UpdateOne("1", item{Title: "b"})

	rec, _ := c.SelectByID("1")
	assert.Equal(t, "b", rec.Title)
	assert.Equal(t, "0", rec.Author)
	assert.Equal(t, "1", rec.ID)
}

func TestUpdateOne_MissingIDIsNoOp(t *testing.T) {
	c := sortedAdapter().Empty().SetAll([]item{{ID: "1", Date: "t1"}})
	assert.Same(t, c, c.UpdateOne("nope", item{Title: "x"}))
}

func TestMapOne_ReplacesByComparator(t *testing.T) {
	c := sortedAdapter().Empty().SetAll([]item{{ID: "1", Date: "t3"}, {ID: "2", Date: "t2"}, {ID: "3", Date: "t1"}})

	c = c.MapOne("1", func(i item) item {
		i.Date = "t0"
		return i
	})

	assert.Equal(t, []string{"2", "3", "1"}, c.SelectIDs())
	require.NoError(t, c.CheckInvariants())
}

func TestMapOne_UnchangedReturnsReceiver(t *testing.T) {
	c := sortedAdapter().Empty().SetAll([]item{{ID: "1", Date: "t1"}})
	assert.Same(t, c, c.MapOne("1", func(i item) item { return i }))
	assert.Same(t, c, c.MapOne("2", func(i item) item {
		i.Title = "x"
		return i
	}))
}

func TestMapAll(t *testing.T) {
	c := insertionAdapter().Empty().SetAll([]item{{ID: "a", Title: "x"}, {ID: "b"}})
	untouched, _ := c.SelectByID("a")

	c = c.MapAll(func(i item) item {
		i.Title = "x"
		return i
	})

	for _, rec := range c.SelectAll() {
		assert.Equal(t, "x", rec.Title)
	}
	got, _ := c.SelectByID("a")
	assert.Same(t, untouched, got)

	assert.Same(t, c, c.MapAll(func(i item) item { return i }))
}

func TestSelectIDs_StableWhenOrderUnchanged(t *testing.T) {
	seed := []item{{ID: "1", Date: "t3"}, {ID: "2", Date: "t2"}, {ID: "3", Date: "t1"}}
	retitle := func(i item) item {
		i.Title = "edited"
		return i
	}

	tests := []struct {
		name   string
		adapt  func() *Adapter[item]
		mutate func(*Collection[item]) *Collection[item]
	}{
		{"MapOne", sortedAdapter, func(c *Collection[item]) *Collection[item] { return c.MapOne("2", retitle) }},
		{"MapAll", sortedAdapter, func(c *Collection[item]) *Collection[item] { return c.MapAll(retitle) }},
		{"UpdateOne", sortedAdapter, func(c *Collection[item]) *Collection[item] { return c.UpdateOne("1", item{Author: "9"}) }},
		{"UpsertMany", sortedAdapter, func(c *Collection[item]) *Collection[item] {
			return c.UpsertMany([]item{{ID: "3", Title: "x"}, {ID: "1", Author: "4"}})
		}},
		{"AddOne overwrite", sortedAdapter, func(c *Collection[item]) *Collection[item] {
			return c.AddOne(item{ID: "2", Date: "t2", Title: "new"})
		}},
		{"SetAll same ids", sortedAdapter, func(c *Collection[item]) *Collection[item] {
			return c.SetAll([]item{{ID: "1", Date: "t3"}, {ID: "2", Date: "t2", Title: "y"}, {ID: "3", Date: "t1"}})
		}},
		{"UpsertMany insertion order", insertionAdapter, func(c *Collection[item]) *Collection[item] {
			return c.UpsertMany([]item{{ID: "2", Title: "x"}})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.adapt().Empty().SetAll(seed)
			before := c.SelectIDs()

			next := tt.mutate(c)

			require.NotSame(t, c, next, "a record changed")
			after := next.SelectIDs()
			assert.Equal(t, before, after)
			assert.Same(t, &before[0], &after[0], "ids must keep their backing array")
			require.NoError(t, next.CheckInvariants())
		})
	}
}

func TestSelectIDs_NewSliceWhenOrderChanges(t *testing.T) {
	c := sortedAdapter().Empty().SetAll([]item{{ID: "1", Date: "t2"}, {ID: "2", Date: "t1"}})
	before := c.SelectIDs()

	next := c.MapOne("2", func(i item) item {
		i.Date = "t9"
		return i
	})

	assert.Equal(t, []string{"1", "2"}, before, "previous version untouched")
	assert.Equal(t, []string{"2", "1"}, next.SelectIDs())
}

func TestSelectAll_StablePerVersion(t *testing.T) {
	c := sortedAdapter().Empty().SetAll([]item{{ID: "1", Date: "t1"}, {ID: "2", Date: "t2"}})

	first := c.SelectAll()
	second := c.SelectAll()
	require.Len(t, first, 2)
	assert.Same(t, first[0], second[0])
	assert.Equal(t, "2", first[0].ID)
}

func TestCheckInvariants_DetectsCorruption(t *testing.T) {
	c := sortedAdapter().Empty().SetAll([]item{{ID: "1", Date: "t1"}, {ID: "2", Date: "t2"}})

	broken := newCollection(c.adapter, []string{"1", "2"}, c.entities)
	assert.ErrorContains(t, broken.CheckInvariants(), "sorts before")

	dup := newCollection(c.adapter, []string{"2", "2"}, c.entities)
	assert.ErrorContains(t, dup.CheckInvariants(), "duplicate id")

	orphan := newCollection(c.adapter, []string{"2"}, c.entities)
	assert.ErrorContains(t, orphan.CheckInvariants(), "ids has 1 entries")
}

// TestRandomOperations_PreserveInvariants drives a long random sequence of
// mutations and checks the ids/entities invariant and date ordering after
// every step.
func TestRandomOperations_PreserveInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	randomItem := func() item {
		return item{
			ID:    fmt.Sprintf("%d", rng.Intn(12)),
			Date:  fmt.Sprintf("t%02d", rng.Intn(20)),
			Title: fmt.Sprintf("title-%d", rng.Intn(3)),
		}
	}

	for _, adapter := range []*Adapter[item]{sortedAdapter(), insertionAdapter()} {
		c := adapter.Empty()
		for step := 0; step < 500; step++ {
			switch rng.Intn(5) {
			case 0:
				c = c.AddOne(randomItem())
			case 1:
				batch := make([]item, rng.Intn(4))
				for i := range batch {
					batch[i] = randomItem()
				}
				c = c.UpsertMany(batch)
			case 2:
				c = c.UpdateOne(randomItem().ID, item{Date: randomItem().Date})
			case 3:
				c = c.MapAll(func(i item) item {
					if rng.Intn(4) == 0 {
						i.Title = "mapped"
					}
					return i
				})
			case 4:
				if rng.Intn(10) == 0 {
					c = c.SetAll([]item{randomItem(), randomItem()})
				}
			}
			require.NoError(t, c.CheckInvariants(), "step %d", step)
		}
	}
}
