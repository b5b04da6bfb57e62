package entity

// Adapter carries the per-collection behavior shared by every version of a
// Collection: how to key, compare, order and merge records.
type Adapter[T any] struct {
	id    func(T) string
	equal func(a, b T) bool
	less  func(a, b T) bool
	merge func(existing, patch T) T
}

// AdapterOption configures optional adapter behavior.
type AdapterOption[T any] func(*Adapter[T])

// WithSortComparer keeps ids ordered by less.
//
// Default: insertion order.
func WithSortComparer[T any](less func(a, b T) bool) AdapterOption[T] {
	return func(a *Adapter[T]) {
		a.less = less
	}
}

// WithMerge sets the shallow-merge used by UpsertMany and UpdateOne.
// merge must be idempotent: merge(merge(e, p), p) == merge(e, p).
//
// Default: the patch replaces the existing record.
func WithMerge[T any](merge func(existing, patch T) T) AdapterOption[T] {
	return func(a *Adapter[T]) {
		a.merge = merge
	}
}

// NewAdapter creates an adapter keyed by id, with equal used for change
// detection. Both functions are required.
func NewAdapter[T any](id func(T) string, equal func(a, b T) bool, opts ...AdapterOption[T]) *Adapter[T] {
	if id == nil {
		panic("entity: NewAdapter requires an id function")
	}
	if equal == nil {
		panic("entity: NewAdapter requires an equal function")
	}

	a := &Adapter[T]{
		id:    id,
		equal: equal,
		merge: func(_, patch T) T { return patch },
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Empty returns a collection with no records.
func (a *Adapter[T]) Empty() *Collection[T] {
	return newCollection(a, []string{}, map[string]*T{})
}

// Sorted reports whether the adapter maintains a comparator order.
func (a *Adapter[T]) Sorted() bool {
	return a.less != nil
}

// compare adapts less to a three-way comparison for slices.SortStableFunc.
func (a *Adapter[T]) compare(x, y *T) int {
	switch {
	case a.less(*x, *y):
		return -1
	case a.less(*y, *x):
		return 1
	default:
		return 0
	}
}
