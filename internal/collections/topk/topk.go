// Package topk selects the k largest elements of a list with a bounded
// min-heap and returns them in ascending order.
package topk

import (
	"cmp"
	"fmt"

	"github.com/Adithya-Monish-Kumar-K/relevance-engine/internal/collections/heap"
	"github.com/Adithya-Monish-Kumar-K/relevance-engine/internal/collections/list"
	apperrors "github.com/Adithya-Monish-Kumar-K/relevance-engine/pkg/errors"
)

// Sort returns the k largest elements of input in ascending order, or all
// of them sorted when input holds fewer than k. input is not modified.
func Sort[T cmp.Ordered](k int, input *list.List[T]) (*list.List[T], error) {
	return SortFunc(k, input, cmp.Compare[T])
}

// SortFunc is Sort with a caller supplied ordering. An element only displaces
// the current minimum when it compares strictly greater, so among equal
// boundary values the first seen is kept.
func SortFunc[T comparable](k int, input *list.List[T], compare func(a, b T) int) (*list.List[T], error) {
	if k < 0 {
		return nil, fmt.Errorf("top-k with k=%d: %w", k, apperrors.ErrInvalidArgument)
	}
	result := list.New[T]()
	if k == 0 || input == nil {
		return result, nil
	}

	h := heap.NewFunc(compare)
	for item := range input.Values() {
		if h.Len() < k {
			if err := h.Insert(item); err != nil {
				return nil, fmt.Errorf("top-k insert: %w", err)
			}
			continue
		}
		floor, err := h.PeekMin()
		if err != nil {
			return nil, err
		}
		if compare(item, floor) > 0 {
			if _, err := h.RemoveMin(); err != nil {
				return nil, err
			}
			if err := h.Insert(item); err != nil {
				return nil, fmt.Errorf("top-k insert: %w", err)
			}
		}
	}

	for h.Len() > 0 {
		item, err := h.RemoveMin()
		if err != nil {
			return nil, err
		}
		result.Add(item)
	}
	return result, nil
}
