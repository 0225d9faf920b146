package tfidf

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/relevance-engine/internal/page"
	apperrors "github.com/Adithya-Monish-Kumar-K/relevance-engine/pkg/errors"
)

const tolerance = 1e-9

func corpus(docs map[page.URI][]string) []page.Webpage {
	out := make([]page.Webpage, 0, len(docs))
	for uri, words := range docs {
		out = append(out, page.New(uri, words, nil))
	}
	return out
}

func TestIDFCountsOncePerDocument(t *testing.T) {
	a := New(corpus(map[page.URI][]string{
		"a": {"x", "x", "x"},
		"b": {"y"},
	}))
	assert.InDelta(t, math.Log(2), a.IDF("x"), tolerance)
	assert.InDelta(t, math.Log(2), a.IDF("y"), tolerance)
	assert.Equal(t, 0.0, a.IDF("missing"))
}

func TestSingleDocumentHasZeroRelevance(t *testing.T) {
	a := New(corpus(map[page.URI][]string{
		"only": {"go", "go", "rank"},
	}))
	assert.Equal(t, 0.0, a.IDF("go"))

	got, err := a.Relevance([]string{"go"}, "only")
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)
}

func TestDocumentWeights(t *testing.T) {
	a := New(corpus(map[page.URI][]string{
		"d1": {"apple", "banana", "banana", "apple"},
		"d2": {"apple", "cherry"},
	}))
	w, err := a.Weight("d1", "banana")
	require.NoError(t, err)
	assert.InDelta(t, 0.5*math.Log(2), w, tolerance)

	w, err = a.Weight("d1", "apple")
	require.NoError(t, err)
	assert.Equal(t, 0.0, w)

	_, err = a.Weight("d3", "apple")
	assert.ErrorIs(t, err, apperrors.ErrNoSuchKey)
}

func TestRelevance(t *testing.T) {
	a := New(corpus(map[page.URI][]string{
		"d1": {"apple", "banana"},
		"d2": {"apple", "cherry"},
	}))

	tests := []struct {
		name  string
		query []string
		uri   page.URI
		want  float64
	}{
		{"exact direction", []string{"banana"}, "d1", 1},
		{"repeated query word", []string{"banana", "banana"}, "d1", 1},
		{"disjoint", []string{"cherry"}, "d1", 0},
		{"half overlap", []string{"banana", "cherry"}, "d1", 1 / math.Sqrt2},
		{"common word only", []string{"apple"}, "d2", 0},
		{"unknown word", []string{"durian"}, "d2", 0},
		{"empty query", nil, "d2", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := a.Relevance(tt.query, tt.uri)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, tolerance)
		})
	}
}

func TestRelevanceUnknownURI(t *testing.T) {
	a := New(corpus(map[page.URI][]string{"d1": {"a"}}))
	_, err := a.Relevance([]string{"a"}, "nope")
	assert.ErrorIs(t, err, apperrors.ErrNoSuchKey)
}

func TestRelevanceWithinUnitInterval(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	vocab := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	docs := make(map[page.URI][]string)
	for i := 0; i < 25; i++ {
		n := 1 + r.Intn(30)
		words := make([]string, n)
		for j := range words {
			words[j] = vocab[r.Intn(len(vocab))]
		}
		docs[page.URI(fmt.Sprintf("doc-%d", i))] = words
	}
	a := New(corpus(docs))
	require.Equal(t, 25, a.Len())

	for trial := 0; trial < 100; trial++ {
		q := []string{vocab[r.Intn(len(vocab))], vocab[r.Intn(len(vocab))], "zzz"}
		uri := page.URI(fmt.Sprintf("doc-%d", r.Intn(25)))
		got, err := a.Relevance(q, uri)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, got, 0.0)
		assert.LessOrEqual(t, got, 1.0+tolerance)
	}
}

func BenchmarkRelevance(b *testing.B) {
	docs := make(map[page.URI][]string)
	for i := 0; i < 200; i++ {
		words := make([]string, 0, 100)
		for j := 0; j < 100; j++ {
			words = append(words, fmt.Sprintf("w%d", (i*7+j)%500))
		}
		docs[page.URI(fmt.Sprintf("doc-%d", i))] = words
	}
	a := New(corpus(docs))
	query := []string{"w1", "w42", "w300"}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = a.Relevance(query, "doc-17")
	}
}
