package heap

import (
	"math/rand"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Adithya-Monish-Kumar-K/relevance-engine/pkg/errors"
)

func assertHeapOrder[T any](t *testing.T, h *Heap[T]) {
	t.Helper()
	assert.GreaterOrEqual(t, len(h.items), h.size+1, "capacity must exceed size")
	for i := 1; i < h.size; i++ {
		parent := (i - 1) / arity
		assert.GreaterOrEqual(t, h.compare(h.items[i], h.items[parent]), 0,
			"item %d smaller than parent %d", i, parent)
	}
}

func TestInsertSingle(t *testing.T) {
	h := New[int]()
	require.NoError(t, h.Insert(3))
	assert.Equal(t, 1, h.Len())
	assert.Equal(t, 3, h.items[0])

	got, err := h.PeekMin()
	require.NoError(t, err)
	assert.Equal(t, 3, got)
	assert.Equal(t, 1, h.Len())
}

func TestEmptyHeap(t *testing.T) {
	h := New[string]()
	_, err := h.PeekMin()
	assert.ErrorIs(t, err, apperrors.ErrEmptyContainer)
	_, err = h.RemoveMin()
	assert.ErrorIs(t, err, apperrors.ErrEmptyContainer)

	require.NoError(t, h.Insert("a"))
	_, err = h.RemoveMin()
	require.NoError(t, err)
	_, err = h.RemoveMin()
	assert.ErrorIs(t, err, apperrors.ErrEmptyContainer)
}

func TestInsertNil(t *testing.T) {
	h := NewFunc(func(a, b *int) int { return *a - *b })
	assert.ErrorIs(t, h.Insert(nil), apperrors.ErrInvalidArgument)
	assert.Equal(t, 0, h.Len())

	v := 4
	require.NoError(t, h.Insert(&v))
	assert.Equal(t, 1, h.Len())
}

func TestPercolateUpToRoot(t *testing.T) {
	h := New[int]()
	for _, v := range []int{10, 9, 8, 7, 6, 5} {
		require.NoError(t, h.Insert(v))
		assertHeapOrder(t, h)
	}
	assert.Equal(t, 5, h.items[0])
	// 5 was inserted at slot 5 whose parent is slot 1
	assert.Equal(t, 6, h.items[1])
}

func TestGrowsPastInitialCapacity(t *testing.T) {
	h := New[int]()
	for i := 100; i > 0; i-- {
		require.NoError(t, h.Insert(i))
		assertHeapOrder(t, h)
	}
	assert.Equal(t, 100, h.Len())
	assert.Equal(t, 160, len(h.items))
}

func TestRemoveMinSorted(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	h := New[int]()
	want := make([]int, 0, 500)
	for i := 0; i < 500; i++ {
		v := r.Intn(200) - 100
		want = append(want, v)
		require.NoError(t, h.Insert(v))
	}
	sort.Ints(want)

	for i, w := range want {
		got, err := h.RemoveMin()
		require.NoError(t, err)
		assert.Equal(t, w, got, "position %d", i)
		assertHeapOrder(t, h)
	}
	assert.Equal(t, 0, h.Len())
}

func TestInterleavedOperations(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	h := New[float64]()
	var shadow []float64
	for i := 0; i < 2000; i++ {
		if len(shadow) > 0 && r.Intn(3) == 0 {
			sort.Float64s(shadow)
			got, err := h.RemoveMin()
			require.NoError(t, err)
			assert.Equal(t, shadow[0], got)
			shadow = shadow[1:]
		} else {
			v := r.Float64()
			shadow = append(shadow, v)
			require.NoError(t, h.Insert(v))
		}
		assertHeapOrder(t, h)
	}
	assert.Equal(t, len(shadow), h.Len())
}

func TestDuplicates(t *testing.T) {
	h := New[int]()
	for i := 0; i < 20; i++ {
		require.NoError(t, h.Insert(6))
	}
	require.NoError(t, h.Insert(1))
	got, _ := h.RemoveMin()
	assert.Equal(t, 1, got)
	for h.Len() > 0 {
		got, _ := h.RemoveMin()
		assert.Equal(t, 6, got)
	}
}

func TestCustomComparator(t *testing.T) {
	h := NewFunc(func(a, b string) int {
		return len(a) - len(b)
	})
	for _, w := range []string{"ccc", "a", "dddd", "bb"} {
		require.NoError(t, h.Insert(w))
	}
	var out []string
	for h.Len() > 0 {
		w, _ := h.RemoveMin()
		out = append(out, w)
	}
	assert.Equal(t, "a bb ccc dddd", strings.Join(out, " "))
}
