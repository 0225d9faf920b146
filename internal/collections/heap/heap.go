// Package heap implements a 4-ary min-heap over a fixed-length slot slice
// that doubles when it fills up. Percolation is iterative and does not go
// through container/heap, so no interface boxing happens per operation.
package heap

import (
	"cmp"
	"fmt"
	"reflect"

	apperrors "github.com/Adithya-Monish-Kumar-K/relevance-engine/pkg/errors"
)

const (
	arity           = 4
	initialCapacity = 10
)

// Heap is a min-heap ordered by its comparator.
type Heap[T any] struct {
	items   []T
	size    int
	compare func(a, b T) int
}

// New returns a heap ordered by the natural ordering of T.
func New[T cmp.Ordered]() *Heap[T] {
	return NewFunc(cmp.Compare[T])
}

// NewFunc returns a heap ordered by compare, which must return a negative
// number when a sorts before b.
func NewFunc[T any](compare func(a, b T) int) *Heap[T] {
	return &Heap[T]{
		items:   make([]T, initialCapacity),
		compare: compare,
	}
}

// Len returns the number of stored items.
func (h *Heap[T]) Len() int {
	return h.size
}

// Insert adds item. Nil pointers, maps, slices, channels, funcs and
// interfaces are rejected.
func (h *Heap[T]) Insert(item T) error {
	if isNil(item) {
		return fmt.Errorf("insert nil item: %w", apperrors.ErrInvalidArgument)
	}
	if h.size+1 >= len(h.items) {
		h.grow()
	}
	h.items[h.size] = item
	h.size++
	h.up(h.size - 1)
	return nil
}

// PeekMin returns the smallest item without removing it.
func (h *Heap[T]) PeekMin() (T, error) {
	if h.size == 0 {
		var zero T
		return zero, fmt.Errorf("peek empty heap: %w", apperrors.ErrEmptyContainer)
	}
	return h.items[0], nil
}

// RemoveMin removes and returns the smallest item.
func (h *Heap[T]) RemoveMin() (T, error) {
	var zero T
	if h.size == 0 {
		return zero, fmt.Errorf("remove from empty heap: %w", apperrors.ErrEmptyContainer)
	}
	root := h.items[0]
	h.size--
	h.items[0] = h.items[h.size]
	h.items[h.size] = zero
	h.down(0)
	return root, nil
}

func (h *Heap[T]) grow() {
	items := make([]T, 2*len(h.items))
	copy(items, h.items[:h.size])
	h.items = items
}

// up moves the item at i toward the root while it is strictly smaller than
// its parent.
func (h *Heap[T]) up(i int) {
	for i > 0 {
		parent := (i - 1) / arity
		if h.compare(h.items[i], h.items[parent]) >= 0 {
			return
		}
		h.items[i], h.items[parent] = h.items[parent], h.items[i]
		i = parent
	}
}

// down moves the item at i toward the leaves, swapping with the smallest
// child. Ties go to the lowest child index.
func (h *Heap[T]) down(i int) {
	for {
		smallest := i
		first := arity*i + 1
		for c := first; c < first+arity && c < h.size; c++ {
			if h.compare(h.items[c], h.items[smallest]) < 0 {
				smallest = c
			}
		}
		if smallest == i {
			return
		}
		h.items[i], h.items[smallest] = h.items[smallest], h.items[i]
		i = smallest
	}
}

func isNil(item any) bool {
	if item == nil {
		return true
	}
	v := reflect.ValueOf(item)
	switch v.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Pointer, reflect.Slice:
		return v.IsNil()
	}
	return false
}
