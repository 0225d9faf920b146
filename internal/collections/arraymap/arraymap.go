// Package arraymap provides a small map backed by a slice of key/value pairs
// with linear-scan lookups. It is the bucket payload of hashmap and is meant
// for a handful of entries, not general use.
package arraymap

import (
	"fmt"
	"iter"

	apperrors "github.com/Adithya-Monish-Kumar-K/relevance-engine/pkg/errors"
)

const initialCapacity = 10

// Pair is a single key/value entry.
type Pair[K comparable, V any] struct {
	Key   K
	Value V
}

// Map stores pairs contiguously in pairs[0:len(pairs)]. Removal swaps the
// last pair into the freed slot, so iteration order is not stable across
// removals.
type Map[K comparable, V any] struct {
	pairs []Pair[K, V]
}

// New returns an empty map.
func New[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{pairs: make([]Pair[K, V], 0, initialCapacity)}
}

// Len returns the number of pairs.
func (m *Map[K, V]) Len() int {
	return len(m.pairs)
}

// Get returns the value stored under key.
func (m *Map[K, V]) Get(key K) (V, error) {
	i := m.indexOf(key)
	if i < 0 {
		var zero V
		return zero, fmt.Errorf("get %v: %w", key, apperrors.ErrNoSuchKey)
	}
	return m.pairs[i].Value, nil
}

// Lookup returns the value stored under key and whether it was present.
func (m *Map[K, V]) Lookup(key K) (V, bool) {
	if i := m.indexOf(key); i >= 0 {
		return m.pairs[i].Value, true
	}
	var zero V
	return zero, false
}

// Put stores value under key, replacing any previous value.
func (m *Map[K, V]) Put(key K, value V) {
	if i := m.indexOf(key); i >= 0 {
		m.pairs[i].Value = value
		return
	}
	if len(m.pairs) == cap(m.pairs) {
		m.grow()
	}
	m.pairs = append(m.pairs, Pair[K, V]{Key: key, Value: value})
}

// Remove deletes key and returns its value.
func (m *Map[K, V]) Remove(key K) (V, error) {
	i := m.indexOf(key)
	if i < 0 {
		var zero V
		return zero, fmt.Errorf("remove %v: %w", key, apperrors.ErrNoSuchKey)
	}
	value := m.pairs[i].Value
	last := len(m.pairs) - 1
	m.pairs[i] = m.pairs[last]
	m.pairs[last] = Pair[K, V]{}
	m.pairs = m.pairs[:last]
	return value, nil
}

// ContainsKey reports whether key is present.
func (m *Map[K, V]) ContainsKey(key K) bool {
	return m.indexOf(key) >= 0
}

// All yields the pairs in slot order.
func (m *Map[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for _, p := range m.pairs {
			if !yield(p.Key, p.Value) {
				return
			}
		}
	}
}

func (m *Map[K, V]) indexOf(key K) int {
	for i := range m.pairs {
		if m.pairs[i].Key == key {
			return i
		}
	}
	return -1
}

func (m *Map[K, V]) grow() {
	c := 2 * cap(m.pairs)
	if c == 0 {
		c = initialCapacity
	}
	pairs := make([]Pair[K, V], len(m.pairs), c)
	copy(pairs, m.pairs)
	m.pairs = pairs
}
