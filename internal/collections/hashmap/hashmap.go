// Package hashmap implements a separately chained hash map whose buckets are
// arraymap instances. Buckets are created lazily and the table grows by a
// factor of four, rehashing every pair, once the load factor passes three.
package hashmap

import (
	"fmt"
	"iter"

	"github.com/Adithya-Monish-Kumar-K/relevance-engine/internal/collections/arraymap"
	apperrors "github.com/Adithya-Monish-Kumar-K/relevance-engine/pkg/errors"
)

const (
	initialBuckets = 10
	maxLoadFactor  = 3
	growthFactor   = 4
)

// Map is a chained hash map. A nil bucket is an empty slot.
type Map[K comparable, V any] struct {
	buckets []*arraymap.Map[K, V]
	size    int
	hash    Hasher[K]
}

// New returns an empty map using DefaultHash.
func New[K comparable, V any]() *Map[K, V] {
	return NewWithHasher[K, V](DefaultHash[K])
}

// NewWithHasher returns an empty map that buckets keys with hash.
func NewWithHasher[K comparable, V any](hash Hasher[K]) *Map[K, V] {
	return &Map[K, V]{
		buckets: make([]*arraymap.Map[K, V], initialBuckets),
		hash:    hash,
	}
}

// Len returns the number of stored pairs.
func (m *Map[K, V]) Len() int {
	return m.size
}

// Buckets returns the current bucket count.
func (m *Map[K, V]) Buckets() int {
	return len(m.buckets)
}

// Get returns the value stored under key.
func (m *Map[K, V]) Get(key K) (V, error) {
	if v, ok := m.Lookup(key); ok {
		return v, nil
	}
	var zero V
	return zero, fmt.Errorf("get %v: %w", key, apperrors.ErrNoSuchKey)
}

// Lookup returns the value stored under key and whether it was present.
func (m *Map[K, V]) Lookup(key K) (V, bool) {
	if b := m.buckets[m.index(key)]; b != nil {
		return b.Lookup(key)
	}
	var zero V
	return zero, false
}

// Put stores value under key, replacing any previous value.
func (m *Map[K, V]) Put(key K, value V) {
	if m.size > maxLoadFactor*len(m.buckets) {
		m.rehash()
	}
	i := m.index(key)
	b := m.buckets[i]
	if b == nil {
		b = arraymap.New[K, V]()
		m.buckets[i] = b
	}
	before := b.Len()
	b.Put(key, value)
	m.size += b.Len() - before
}

// Remove deletes key and returns its value.
func (m *Map[K, V]) Remove(key K) (V, error) {
	if b := m.buckets[m.index(key)]; b != nil {
		if v, err := b.Remove(key); err == nil {
			m.size--
			return v, nil
		}
	}
	var zero V
	return zero, fmt.Errorf("remove %v: %w", key, apperrors.ErrNoSuchKey)
}

// ContainsKey reports whether key is present.
func (m *Map[K, V]) ContainsKey(key K) bool {
	_, ok := m.Lookup(key)
	return ok
}

// All yields every pair, bucket by bucket in index order.
func (m *Map[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for _, b := range m.buckets {
			if b == nil {
				continue
			}
			for k, v := range b.All() {
				if !yield(k, v) {
					return
				}
			}
		}
	}
}

// Keys yields every key in the same order as All.
func (m *Map[K, V]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		for k := range m.All() {
			if !yield(k) {
				return
			}
		}
	}
}

func (m *Map[K, V]) index(key K) int {
	if any(key) == nil {
		return 0
	}
	return int(m.hash(key) % uint64(len(m.buckets)))
}

// rehash moves every pair into a table four times larger by re-inserting
// through Put, since bucket assignment depends on the table length.
func (m *Map[K, V]) rehash() {
	old := m.buckets
	m.buckets = make([]*arraymap.Map[K, V], len(old)*growthFactor)
	m.size = 0
	for _, b := range old {
		if b == nil {
			continue
		}
		for k, v := range b.All() {
			m.Put(k, v)
		}
	}
}
