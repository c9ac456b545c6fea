package txn

import "slices"

// CursorResult is a materialized, read-only result set.
type CursorResult[T any] struct {
	items []T
}

// NewCursorResult takes ownership of items; callers must not modify them afterwards.
func NewCursorResult[T any](items []T) *CursorResult[T] {
	return &CursorResult[T]{items: items}
}

func (r *CursorResult[T]) Len() int {
	if r == nil {
		return 0
	}
	return len(r.items)
}

func (r *CursorResult[T]) Empty() bool {
	return r.Len() == 0
}

func (r *CursorResult[T]) At(i int) T {
	return r.items[i]
}

func (r *CursorResult[T]) First() (T, bool) {
	if r.Empty() {
		return *new(T), false
	}
	return r.items[0], true
}

// Items returns a copy of the rows.
func (r *CursorResult[T]) Items() []T {
	if r == nil {
		return nil
	}
	return slices.Clone(r.items)
}
