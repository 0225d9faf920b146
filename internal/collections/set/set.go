// Package set provides a hash set built on hashmap.
package set

import (
	"fmt"
	"iter"

	"github.com/Adithya-Monish-Kumar-K/relevance-engine/internal/collections/hashmap"
	apperrors "github.com/Adithya-Monish-Kumar-K/relevance-engine/pkg/errors"
)

type Set[T comparable] struct {
	m *hashmap.Map[T, struct{}]
}

func New[T comparable]() *Set[T] {
	return &Set[T]{m: hashmap.New[T, struct{}]()}
}

// Of returns a set holding the distinct items.
func Of[T comparable](items ...T) *Set[T] {
	s := New[T]()
	for _, item := range items {
		s.Add(item)
	}
	return s
}

// Add inserts item and reports whether it was newly added.
func (s *Set[T]) Add(item T) bool {
	if s.m.ContainsKey(item) {
		return false
	}
	s.m.Put(item, struct{}{})
	return true
}

func (s *Set[T]) Remove(item T) error {
	if _, err := s.m.Remove(item); err != nil {
		return fmt.Errorf("set remove: %w", apperrors.ErrNoSuchKey)
	}
	return nil
}

func (s *Set[T]) Contains(item T) bool {
	return s.m.ContainsKey(item)
}

func (s *Set[T]) Len() int {
	return s.m.Len()
}

func (s *Set[T]) All() iter.Seq[T] {
	return s.m.Keys()
}
