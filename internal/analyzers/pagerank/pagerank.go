// Package pagerank computes link-graph PageRank for a self-contained corpus
// by power iteration with uniform teleportation. Dangling pages spread their
// forwarded mass over every page so the ranks keep summing to one.
package pagerank

import (
	"fmt"
	"iter"
	"math"

	"github.com/Adithya-Monish-Kumar-K/relevance-engine/internal/collections/hashmap"
	"github.com/Adithya-Monish-Kumar-K/relevance-engine/internal/collections/set"
	"github.com/Adithya-Monish-Kumar-K/relevance-engine/internal/page"
	apperrors "github.com/Adithya-Monish-Kumar-K/relevance-engine/pkg/errors"
)

// Params controls the iteration.
type Params struct {
	// Decay is the share of a page's rank forwarded along its links.
	Decay float64
	// Epsilon is the largest per-page change still treated as converged.
	Epsilon float64
	// Limit caps the number of iterations.
	Limit int
}

func (p Params) validate() error {
	if math.IsNaN(p.Decay) || p.Decay < 0 || p.Decay > 1 {
		return fmt.Errorf("decay %v outside [0, 1]: %w", p.Decay, apperrors.ErrInvalidArgument)
	}
	if math.IsNaN(p.Epsilon) || p.Epsilon < 0 {
		return fmt.Errorf("epsilon %v is negative: %w", p.Epsilon, apperrors.ErrInvalidArgument)
	}
	if p.Limit < 0 {
		return fmt.Errorf("limit %d is negative: %w", p.Limit, apperrors.ErrInvalidArgument)
	}
	return nil
}

type graph = hashmap.Map[page.URI, *set.Set[page.URI]]
type ranks = hashmap.Map[page.URI, float64]

// Analyzer holds the precomputed rank of every page.
type Analyzer struct {
	ranks      *ranks
	iterations int
	converged  bool
}

// New builds the link graph of pages and iterates PageRank over it. Page
// URIs must be distinct.
func New(pages []page.Webpage, params Params) (*Analyzer, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}
	a := &Analyzer{}
	a.ranks = a.iterate(makeGraph(pages), params)
	return a, nil
}

// PageRank returns the rank of the page at uri.
func (a *Analyzer) PageRank(uri page.URI) (float64, error) {
	r, ok := a.ranks.Lookup(uri)
	if !ok {
		return 0, fmt.Errorf("pagerank for %q: %w", uri, apperrors.ErrNoSuchKey)
	}
	return r, nil
}

// Len returns the number of ranked pages.
func (a *Analyzer) Len() int { return a.ranks.Len() }

// Iterations returns how many update steps ran.
func (a *Analyzer) Iterations() int { return a.iterations }

// Converged reports whether the iteration stopped on epsilon rather than
// on the limit.
func (a *Analyzer) Converged() bool { return a.converged }

// All yields every page with its rank.
func (a *Analyzer) All() iter.Seq2[page.URI, float64] {
	return a.ranks.All()
}

// makeGraph maps each page to the set of corpus pages it links to. Links
// leaving the corpus and self links are dropped.
func makeGraph(pages []page.Webpage) *graph {
	known := set.New[page.URI]()
	for _, p := range pages {
		known.Add(p.URI())
	}
	g := hashmap.New[page.URI, *set.Set[page.URI]]()
	for _, p := range pages {
		out := set.New[page.URI]()
		for _, link := range p.Links() {
			if link != p.URI() && known.Contains(link) {
				out.Add(link)
			}
		}
		g.Put(p.URI(), out)
	}
	return g
}

// iterate runs at most params.Limit update steps. When every page moved by
// no more than epsilon, the vector the step started from is kept.
func (a *Analyzer) iterate(g *graph, params Params) *ranks {
	rank := hashmap.New[page.URI, float64]()
	n := g.Len()
	if n == 0 {
		a.converged = true
		return rank
	}
	total := float64(n)
	for uri := range g.Keys() {
		rank.Put(uri, 1/total)
	}

	for a.iterations < params.Limit {
		a.iterations++
		next := step(g, rank, params.Decay, total)
		if maxDelta(rank, next) <= params.Epsilon {
			a.converged = true
			return rank
		}
		rank = next
	}
	return rank
}

func step(g *graph, rank *ranks, decay, total float64) *ranks {
	next := hashmap.New[page.URI, float64]()
	for uri := range g.Keys() {
		next.Put(uri, 0)
	}

	var dangling float64
	for uri, out := range g.All() {
		old, _ := rank.Lookup(uri)
		if out.Len() == 0 {
			dangling += decay * old
			continue
		}
		share := decay * old / float64(out.Len())
		for target := range out.All() {
			cur, _ := next.Lookup(target)
			next.Put(target, cur+share)
		}
	}

	base := dangling/total + (1-decay)/total
	for uri := range g.Keys() {
		v, _ := next.Lookup(uri)
		next.Put(uri, v+base)
	}
	return next
}

func maxDelta(prev, next *ranks) float64 {
	var worst float64
	for uri, old := range prev.All() {
		cur, _ := next.Lookup(uri)
		if d := math.Abs(cur - old); d > worst {
			worst = d
		}
	}
	return worst
}
