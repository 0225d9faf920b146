// Package list provides a doubly linked, indexable sequence. Nodes live in an
// arena slice and reference each other by slot index, so splicing is O(1)
// and index lookups walk from whichever end of the list is closer.
package list

import (
	"fmt"
	"iter"

	apperrors "github.com/Adithya-Monish-Kumar-K/relevance-engine/pkg/errors"
)

const none = -1

type node[T any] struct {
	value T
	prev  int
	next  int
}

// List is a doubly linked sequence. The zero value is an empty list ready
// to use.
type List[T comparable] struct {
	nodes []node[T]
	free  []int
	front int
	back  int
	size  int
}

// New returns an empty list.
func New[T comparable]() *List[T] {
	return &List[T]{front: none, back: none}
}

// Of returns a list holding items in order.
func Of[T comparable](items ...T) *List[T] {
	l := New[T]()
	for _, item := range items {
		l.Add(item)
	}
	return l
}

func (l *List[T]) init() {
	if l.nodes == nil && l.size == 0 {
		l.front, l.back = none, none
	}
}

// Len returns the number of items.
func (l *List[T]) Len() int {
	return l.size
}

// Add appends item to the back.
func (l *List[T]) Add(item T) {
	l.init()
	idx := l.alloc(item, l.back, none)
	if l.back == none {
		l.front = idx
	} else {
		l.nodes[l.back].next = idx
	}
	l.back = idx
	l.size++
}

// Insert places item so that it ends up at index. Valid indexes are
// 0 through Len() inclusive.
func (l *List[T]) Insert(index int, item T) error {
	if index < 0 || index > l.size {
		return outOfRange(index, l.size+1)
	}
	if index == l.size {
		l.Add(item)
		return nil
	}
	at := l.nodeAt(index)
	prev := l.nodes[at].prev
	idx := l.alloc(item, prev, at)
	l.nodes[at].prev = idx
	if prev == none {
		l.front = idx
	} else {
		l.nodes[prev].next = idx
	}
	l.size++
	return nil
}

// Get returns the item at index.
func (l *List[T]) Get(index int) (T, error) {
	if index < 0 || index >= l.size {
		var zero T
		return zero, outOfRange(index, l.size)
	}
	return l.nodes[l.nodeAt(index)].value, nil
}

// Set replaces the item at index.
func (l *List[T]) Set(index int, item T) error {
	if index < 0 || index >= l.size {
		return outOfRange(index, l.size)
	}
	l.nodes[l.nodeAt(index)].value = item
	return nil
}

// Delete removes and returns the item at index.
func (l *List[T]) Delete(index int) (T, error) {
	if index < 0 || index >= l.size {
		var zero T
		return zero, outOfRange(index, l.size)
	}
	return l.unlink(l.nodeAt(index)), nil
}

// Remove pops the last item.
func (l *List[T]) Remove() (T, error) {
	if l.size == 0 {
		var zero T
		return zero, fmt.Errorf("remove from empty list: %w", apperrors.ErrEmptyContainer)
	}
	return l.unlink(l.back), nil
}

// IndexOf returns the index of the first item equal to item, or -1.
func (l *List[T]) IndexOf(item T) int {
	for i, v := range l.All() {
		if v == item {
			return i
		}
	}
	return -1
}

// Contains reports whether item is in the list.
func (l *List[T]) Contains(item T) bool {
	return l.IndexOf(item) != -1
}

// All yields index/item pairs from front to back.
func (l *List[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		if l.size == 0 {
			return
		}
		i := 0
		for cur := l.front; cur != none; cur = l.nodes[cur].next {
			if !yield(i, l.nodes[cur].value) {
				return
			}
			i++
		}
	}
}

// Values yields items from front to back.
func (l *List[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, v := range l.All() {
			if !yield(v) {
				return
			}
		}
	}
}

// Backward yields index/item pairs from back to front.
func (l *List[T]) Backward() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		if l.size == 0 {
			return
		}
		i := l.size - 1
		for cur := l.back; cur != none; cur = l.nodes[cur].prev {
			if !yield(i, l.nodes[cur].value) {
				return
			}
			i--
		}
	}
}

// Slice copies the items into a new slice, front to back.
func (l *List[T]) Slice() []T {
	out := make([]T, 0, l.size)
	for v := range l.Values() {
		out = append(out, v)
	}
	return out
}

// nodeAt returns the slot holding index, walking min(index, size-1-index)
// hops. index must be in range.
func (l *List[T]) nodeAt(index int) int {
	if fromBack := l.size - 1 - index; fromBack < index {
		cur := l.back
		for ; fromBack > 0; fromBack-- {
			cur = l.nodes[cur].prev
		}
		return cur
	}
	cur := l.front
	for ; index > 0; index-- {
		cur = l.nodes[cur].next
	}
	return cur
}

func (l *List[T]) alloc(item T, prev, next int) int {
	n := node[T]{value: item, prev: prev, next: next}
	if k := len(l.free); k > 0 {
		idx := l.free[k-1]
		l.free = l.free[:k-1]
		l.nodes[idx] = n
		return idx
	}
	l.nodes = append(l.nodes, n)
	return len(l.nodes) - 1
}

func (l *List[T]) unlink(idx int) T {
	n := l.nodes[idx]
	if n.prev == none {
		l.front = n.next
	} else {
		l.nodes[n.prev].next = n.next
	}
	if n.next == none {
		l.back = n.prev
	} else {
		l.nodes[n.next].prev = n.prev
	}
	l.nodes[idx] = node[T]{prev: none, next: none}
	l.size--
	if l.size == 0 {
		l.nodes = l.nodes[:0]
		l.free = l.free[:0]
		l.front, l.back = none, none
	} else {
		l.free = append(l.free, idx)
	}
	return n.value
}

func outOfRange(index, limit int) error {
	return fmt.Errorf("index %d not in [0, %d): %w", index, limit, apperrors.ErrIndexOutOfRange)
}
