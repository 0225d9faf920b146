// Package tfidf scores how relevant a document is to a query using the
// cosine similarity of TF-IDF vectors. Document vectors and their norms are
// computed once, when the Analyzer is built.
package tfidf

import (
	"fmt"
	"math"

	"github.com/Adithya-Monish-Kumar-K/relevance-engine/internal/collections/hashmap"
	"github.com/Adithya-Monish-Kumar-K/relevance-engine/internal/collections/set"
	"github.com/Adithya-Monish-Kumar-K/relevance-engine/internal/page"
	apperrors "github.com/Adithya-Monish-Kumar-K/relevance-engine/pkg/errors"
)

type docVector struct {
	weights *hashmap.Map[string, float64]
	norm    float64
}

// Analyzer holds the corpus IDF table and one TF-IDF vector per document.
// It is read-only once New returns.
type Analyzer struct {
	idf     *hashmap.Map[string, float64]
	vectors *hashmap.Map[page.URI, docVector]
}

// New builds the analyzer for pages, whose URIs must be distinct.
func New(pages []page.Webpage) *Analyzer {
	a := &Analyzer{
		idf:     computeIDF(pages),
		vectors: hashmap.New[page.URI, docVector](),
	}
	for _, p := range pages {
		a.vectors.Put(p.URI(), a.vectorize(p.Words()))
	}
	return a
}

// Len returns the number of documents.
func (a *Analyzer) Len() int {
	return a.vectors.Len()
}

// IDF returns ln(N/df) for word, or 0 when no document contains it.
func (a *Analyzer) IDF(word string) float64 {
	v, _ := a.idf.Lookup(word)
	return v
}

// Weight returns the TF-IDF weight of word in the document at uri.
func (a *Analyzer) Weight(uri page.URI, word string) (float64, error) {
	doc, err := a.vectors.Get(uri)
	if err != nil {
		return 0, fmt.Errorf("tfidf weight: %w", err)
	}
	w, _ := doc.weights.Lookup(word)
	return w, nil
}

// Relevance returns the cosine similarity between the query's TF-IDF vector
// and the document at uri. Query words missing from the corpus weigh 0, and
// a zero norm on either side yields 0.
func (a *Analyzer) Relevance(query []string, uri page.URI) (float64, error) {
	doc, ok := a.vectors.Lookup(uri)
	if !ok {
		return 0, fmt.Errorf("tfidf relevance for %q: %w", uri, apperrors.ErrNoSuchKey)
	}
	q := a.vectorize(query)

	var dot float64
	for word, qw := range q.weights.All() {
		if dw, ok := doc.weights.Lookup(word); ok {
			dot += dw * qw
		}
	}
	denom := doc.norm * q.norm
	if denom == 0 {
		return 0, nil
	}
	return dot / denom, nil
}

// vectorize weighs each distinct word by tf * idf using the corpus table.
func (a *Analyzer) vectorize(words []string) docVector {
	weights := hashmap.New[string, float64]()
	var sumSquares float64
	for word, tf := range termFrequencies(words).All() {
		w := tf * a.IDF(word)
		weights.Put(word, w)
		sumSquares += w * w
	}
	return docVector{weights: weights, norm: math.Sqrt(sumSquares)}
}

func computeIDF(pages []page.Webpage) *hashmap.Map[string, float64] {
	df := hashmap.New[string, int]()
	for _, p := range pages {
		distinct := set.New[string]()
		for _, w := range p.Words() {
			if distinct.Add(w) {
				n, _ := df.Lookup(w)
				df.Put(w, n+1)
			}
		}
	}

	total := float64(len(pages))
	idf := hashmap.New[string, float64]()
	for word, n := range df.All() {
		idf.Put(word, math.Log(total/float64(n)))
	}
	return idf
}

func termFrequencies(words []string) *hashmap.Map[string, float64] {
	counts := hashmap.New[string, int]()
	for _, w := range words {
		n, _ := counts.Lookup(w)
		counts.Put(w, n+1)
	}
	tf := hashmap.New[string, float64]()
	total := float64(len(words))
	for w, n := range counts.All() {
		tf.Put(w, float64(n)/total)
	}
	return tf
}
