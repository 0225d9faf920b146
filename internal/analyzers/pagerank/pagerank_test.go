package pagerank

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/relevance-engine/internal/page"
	apperrors "github.com/Adithya-Monish-Kumar-K/relevance-engine/pkg/errors"
)

const tolerance = 1e-9

var defaults = Params{Decay: 0.85, Epsilon: 0.0001, Limit: 100}

func linked(uri page.URI, links ...page.URI) page.Webpage {
	return page.New(uri, nil, links)
}

func rankOf(t *testing.T, a *Analyzer, uri page.URI) float64 {
	t.Helper()
	r, err := a.PageRank(uri)
	require.NoError(t, err)
	return r
}

func TestTwoPageCycle(t *testing.T) {
	a, err := New([]page.Webpage{
		linked("a", "b"),
		linked("b", "a"),
	}, Params{Decay: 0.85, Epsilon: 0.0001, Limit: 50})
	require.NoError(t, err)

	assert.InDelta(t, 0.5, rankOf(t, a, "a"), tolerance)
	assert.InDelta(t, 0.5, rankOf(t, a, "b"), tolerance)
	assert.True(t, a.Converged())
	assert.Equal(t, 1, a.Iterations())
}

func TestThreePageCycle(t *testing.T) {
	a, err := New([]page.Webpage{
		linked("a", "b"),
		linked("b", "c"),
		linked("c", "a"),
	}, defaults)
	require.NoError(t, err)
	for _, uri := range []page.URI{"a", "b", "c"} {
		assert.InDelta(t, 1.0/3, rankOf(t, a, uri), tolerance)
	}
}

func TestDanglingPageSpreadsMass(t *testing.T) {
	a, err := New([]page.Webpage{
		linked("a", "b"),
		linked("b"),
	}, Params{Decay: 0.85, Epsilon: 0, Limit: 1})
	require.NoError(t, err)

	assert.InDelta(t, 0.2875, rankOf(t, a, "a"), tolerance)
	assert.InDelta(t, 0.7125, rankOf(t, a, "b"), tolerance)
	assert.False(t, a.Converged())
	assert.Equal(t, 1, a.Iterations())
}

func TestConvergenceKeepsStartingVector(t *testing.T) {
	// The first step moves each page by 0.2125, inside epsilon.
	a, err := New([]page.Webpage{
		linked("a", "b"),
		linked("b"),
	}, Params{Decay: 0.85, Epsilon: 0.5, Limit: 10})
	require.NoError(t, err)

	assert.True(t, a.Converged())
	assert.Equal(t, 1, a.Iterations())
	assert.InDelta(t, 0.5, rankOf(t, a, "a"), tolerance)
	assert.InDelta(t, 0.5, rankOf(t, a, "b"), tolerance)
}

func TestZeroLimitKeepsInitialRanks(t *testing.T) {
	a, err := New([]page.Webpage{
		linked("a", "b"),
		linked("b", "c"),
		linked("c"),
		linked("d", "a"),
	}, Params{Decay: 0.85, Epsilon: 0.0001, Limit: 0})
	require.NoError(t, err)

	assert.False(t, a.Converged())
	assert.Equal(t, 0, a.Iterations())
	for uri, r := range a.All() {
		assert.InDelta(t, 0.25, r, tolerance, "uri %s", uri)
	}
}

func TestSelfAndExternalLinksIgnored(t *testing.T) {
	a, err := New([]page.Webpage{
		linked("a", "a", "https://elsewhere.example", "b"),
		linked("b", "a", "b"),
	}, defaults)
	require.NoError(t, err)

	assert.InDelta(t, 0.5, rankOf(t, a, "a"), tolerance)
	assert.InDelta(t, 0.5, rankOf(t, a, "b"), tolerance)
	assert.Equal(t, 2, a.Len())
}

func TestHubOutranksSpokes(t *testing.T) {
	pages := []page.Webpage{linked("hub")}
	for i := 0; i < 5; i++ {
		pages = append(pages, linked(page.URI(fmt.Sprintf("spoke-%d", i)), "hub"))
	}
	a, err := New(pages, defaults)
	require.NoError(t, err)

	hub := rankOf(t, a, "hub")
	for i := 0; i < 5; i++ {
		assert.Greater(t, hub, rankOf(t, a, page.URI(fmt.Sprintf("spoke-%d", i))))
	}
}

func TestRanksSumToOne(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	const n = 60
	uris := make([]page.URI, n)
	for i := range uris {
		uris[i] = page.URI(fmt.Sprintf("p%02d", i))
	}
	pages := make([]page.Webpage, 0, n)
	for _, uri := range uris {
		// Roughly one page in five has no outgoing links at all.
		var links []page.URI
		if r.Intn(5) > 0 {
			for j := r.Intn(6); j >= 0; j-- {
				links = append(links, uris[r.Intn(n)])
			}
		}
		pages = append(pages, linked(uri, links...))
	}

	for _, limit := range []int{1, 5, 100} {
		a, err := New(pages, Params{Decay: 0.85, Epsilon: 1e-6, Limit: limit})
		require.NoError(t, err)

		var sum float64
		for _, rank := range a.All() {
			assert.Greater(t, rank, 0.0)
			sum += rank
		}
		assert.InDelta(t, 1.0, sum, 1e-6, "limit %d", limit)
		assert.LessOrEqual(t, a.Iterations(), limit)
	}
}

func TestEmptyCorpus(t *testing.T) {
	a, err := New(nil, defaults)
	require.NoError(t, err)
	assert.Equal(t, 0, a.Len())
	assert.True(t, a.Converged())
	assert.Equal(t, 0, a.Iterations())
}

func TestUnknownURI(t *testing.T) {
	a, err := New([]page.Webpage{linked("a")}, defaults)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, rankOf(t, a, "a"), tolerance)

	_, err = a.PageRank("missing")
	assert.ErrorIs(t, err, apperrors.ErrNoSuchKey)
}

func TestInvalidParams(t *testing.T) {
	tests := []struct {
		name   string
		params Params
	}{
		{"decay above one", Params{Decay: 1.5, Epsilon: 0.1, Limit: 10}},
		{"negative decay", Params{Decay: -0.1, Epsilon: 0.1, Limit: 10}},
		{"negative epsilon", Params{Decay: 0.85, Epsilon: -1, Limit: 10}},
		{"negative limit", Params{Decay: 0.85, Epsilon: 0.1, Limit: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New([]page.Webpage{linked("a")}, tt.params)
			assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
		})
	}
}

func BenchmarkNew(b *testing.B) {
	r := rand.New(rand.NewSource(5))
	const n = 500
	pages := make([]page.Webpage, 0, n)
	for i := 0; i < n; i++ {
		links := make([]page.URI, 0, 8)
		for j := 0; j < 8; j++ {
			links = append(links, page.URI(fmt.Sprintf("p%d", r.Intn(n))))
		}
		pages = append(pages, linked(page.URI(fmt.Sprintf("p%d", i)), links...))
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = New(pages, defaults)
	}
}
