// Package search combines TF-IDF relevance with PageRank over an immutable
// corpus snapshot. Reloads build a complete new snapshot and swap it in
// atomically; searches never observe a half-built one.
package search

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/Adithya-Monish-Kumar-K/relevance-engine/internal/analyzers/pagerank"
	"github.com/Adithya-Monish-Kumar-K/relevance-engine/internal/analyzers/tfidf"
	"github.com/Adithya-Monish-Kumar-K/relevance-engine/internal/collections/list"
	"github.com/Adithya-Monish-Kumar-K/relevance-engine/internal/collections/topk"
	"github.com/Adithya-Monish-Kumar-K/relevance-engine/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/relevance-engine/internal/page"
	"github.com/Adithya-Monish-Kumar-K/relevance-engine/internal/tokenizer"
	apperrors "github.com/Adithya-Monish-Kumar-K/relevance-engine/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/relevance-engine/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/relevance-engine/pkg/resilience"
	"github.com/Adithya-Monish-Kumar-K/relevance-engine/pkg/tracing"
)

// Hit is one scored page. Score is Relevance * PageRank.
type Hit struct {
	URI       page.URI `json:"uri"`
	Relevance float64  `json:"relevance"`
	PageRank  float64  `json:"pagerank"`
	Score     float64  `json:"score"`
}

// Result is the answer to one query.
type Result struct {
	Query           string   `json:"query"`
	Terms           []string `json:"terms"`
	Hits            []Hit    `json:"hits"`
	TotalHits       int      `json:"total_hits"`
	SnapshotVersion int64    `json:"snapshot_version"`
}

// Snapshot is one fully built, read-only view of the corpus.
type Snapshot struct {
	Version  int64
	BuiltAt  time.Time
	URIs     []page.URI
	TFIDF    *tfidf.Analyzer
	PageRank *pagerank.Analyzer
}

// Stats summarises the active snapshot.
type Stats struct {
	Pages              int       `json:"pages"`
	Version            int64     `json:"version"`
	BuiltAt            time.Time `json:"built_at"`
	PageRankIterations int       `json:"pagerank_iterations"`
	PageRankConverged  bool      `json:"pagerank_converged"`
}

// Options tune an Engine. Metrics may be nil.
type Options struct {
	Rank          pagerank.Params
	ReloadTimeout time.Duration
	Metrics       *metrics.Metrics
}

type Engine struct {
	source  corpus.Source
	opts    Options
	current atomic.Pointer[Snapshot]
	version atomic.Int64
	reloads singleflight.Group
	logger  *slog.Logger
}

func NewEngine(source corpus.Source, opts Options) *Engine {
	return &Engine{
		source: source,
		opts:   opts,
		logger: slog.Default().With("component", "search-engine"),
	}
}

// Reload loads the corpus and rebuilds both analyzers. Concurrent calls
// share one rebuild, which is bounded by ReloadTimeout rather than by any
// one caller's context. On failure the previous snapshot stays active.
func (e *Engine) Reload(ctx context.Context) (*Snapshot, error) {
	v, err, shared := e.reloads.Do("reload", func() (any, error) {
		ctx, span := tracing.Start(context.WithoutCancel(ctx), "corpus.reload")
		defer span.Log(ctx, e.logger)
		defer span.End()

		var snap *Snapshot
		err := resilience.WithTimeout(ctx, e.opts.ReloadTimeout, "corpus reload", func(ctx context.Context) error {
			var err error
			snap, err = e.build(ctx)
			return err
		})
		if err != nil {
			span.SetAttr("error", err.Error())
			e.observeReload("failure")
			return nil, err
		}
		e.current.Store(snap)
		span.SetAttr("version", snap.Version)
		e.observeReload("success")
		e.logger.Info("snapshot activated",
			"version", snap.Version,
			"pages", len(snap.URIs),
			"pagerank_iterations", snap.PageRank.Iterations(),
			"pagerank_converged", snap.PageRank.Converged(),
		)
		return snap, nil
	})
	if err != nil {
		return nil, fmt.Errorf("reloading corpus: %w", err)
	}
	if shared {
		e.logger.Debug("joined in-flight reload")
	}
	return v.(*Snapshot), nil
}

func (e *Engine) build(ctx context.Context) (*Snapshot, error) {
	_, loadSpan := tracing.Start(ctx, "corpus.load")
	pages, err := e.source.Load(ctx)
	loadSpan.End()
	if err != nil {
		return nil, err
	}
	loadSpan.SetAttr("pages", len(pages))
	snap := &Snapshot{URIs: make([]page.URI, len(pages))}
	for i, p := range pages {
		snap.URIs[i] = p.URI()
	}

	var g errgroup.Group
	g.Go(func() error {
		_, span := tracing.Start(ctx, "analyzer.tfidf")
		defer e.observeBuild("tfidf", span)
		snap.TFIDF = tfidf.New(pages)
		return nil
	})
	g.Go(func() error {
		_, span := tracing.Start(ctx, "analyzer.pagerank")
		defer e.observeBuild("pagerank", span)
		pr, err := pagerank.New(pages, e.opts.Rank)
		if err != nil {
			return err
		}
		span.SetAttr("iterations", pr.Iterations())
		snap.PageRank = pr
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	snap.Version = e.version.Add(1)
	snap.BuiltAt = time.Now().UTC()
	return snap, nil
}

// Snapshot returns the active snapshot, or ErrCorpusUnavailable before the
// first successful Reload.
func (e *Engine) Snapshot() (*Snapshot, error) {
	snap := e.current.Load()
	if snap == nil {
		return nil, fmt.Errorf("no corpus snapshot loaded: %w", apperrors.ErrCorpusUnavailable)
	}
	return snap, nil
}

// Search returns the k best pages for query, highest score first with ties
// broken by ascending URI. Pages with zero relevance are never returned.
func (e *Engine) Search(ctx context.Context, query string, k int) (*Result, error) {
	if k < 0 {
		return nil, fmt.Errorf("search limit %d: %w", k, apperrors.ErrInvalidInput)
	}
	snap, err := e.Snapshot()
	if err != nil {
		return nil, err
	}
	start := time.Now()
	terms := tokenizer.Words(query)
	result := &Result{
		Query:           query,
		Terms:           terms,
		Hits:            []Hit{},
		SnapshotVersion: snap.Version,
	}
	if len(terms) == 0 {
		return result, nil
	}

	candidates := list.New[Hit]()
	for i, uri := range snap.URIs {
		if i%256 == 0 && ctx.Err() != nil {
			return nil, fmt.Errorf("search %q: %w", query, ctx.Err())
		}
		rel, err := snap.TFIDF.Relevance(terms, uri)
		if err != nil {
			return nil, err
		}
		if rel <= 0 {
			continue
		}
		pr, err := snap.PageRank.PageRank(uri)
		if err != nil {
			return nil, err
		}
		candidates.Add(Hit{URI: uri, Relevance: rel, PageRank: pr, Score: rel * pr})
	}
	result.TotalHits = candidates.Len()

	best, err := topk.SortFunc(k, candidates, compareHits)
	if err != nil {
		return nil, err
	}
	for _, hit := range best.Backward() {
		result.Hits = append(result.Hits, hit)
	}
	if m := e.opts.Metrics; m != nil {
		m.SearchResultsCount.Observe(float64(len(result.Hits)))
	}
	e.logger.Debug("search scored", "terms", len(terms), "candidates", result.TotalHits, "elapsed", time.Since(start))
	return result, nil
}

// PageRank returns the rank of uri in the active snapshot.
func (e *Engine) PageRank(uri page.URI) (float64, error) {
	snap, err := e.Snapshot()
	if err != nil {
		return 0, err
	}
	return snap.PageRank.PageRank(uri)
}

// TopRanked returns the k pages with the highest PageRank, best first.
func (e *Engine) TopRanked(k int) ([]Hit, error) {
	snap, err := e.Snapshot()
	if err != nil {
		return nil, err
	}
	all := list.New[Hit]()
	for uri, pr := range snap.PageRank.All() {
		all.Add(Hit{URI: uri, PageRank: pr, Score: pr})
	}
	best, err := topk.SortFunc(k, all, compareHits)
	if err != nil {
		return nil, fmt.Errorf("top ranked: %w", err)
	}
	hits := make([]Hit, 0, best.Len())
	for _, hit := range best.Backward() {
		hits = append(hits, hit)
	}
	return hits, nil
}

func (e *Engine) Stats() (Stats, error) {
	snap, err := e.Snapshot()
	if err != nil {
		return Stats{}, err
	}
	return Stats{
		Pages:              len(snap.URIs),
		Version:            snap.Version,
		BuiltAt:            snap.BuiltAt,
		PageRankIterations: snap.PageRank.Iterations(),
		PageRankConverged:  snap.PageRank.Converged(),
	}, nil
}

// compareHits orders by score and then by reverse URI, so that a larger
// hit ranks earlier once the ascending top-k output is reversed.
func compareHits(a, b Hit) int {
	if c := cmp.Compare(a.Score, b.Score); c != 0 {
		return c
	}
	return -strings.Compare(string(a.URI), string(b.URI))
}

func (e *Engine) observeBuild(analyzer string, span *tracing.Span) {
	span.End()
	if e.opts.Metrics != nil {
		e.opts.Metrics.AnalyzerBuildSeconds.WithLabelValues(analyzer).Observe(span.Duration.Seconds())
	}
}

func (e *Engine) observeReload(status string) {
	m := e.opts.Metrics
	if m == nil {
		return
	}
	m.SnapshotReloadsTotal.WithLabelValues(status).Inc()
	if status != "success" {
		return
	}
	snap := e.current.Load()
	m.CorpusPages.Set(float64(len(snap.URIs)))
	m.PageRankIterations.Set(float64(snap.PageRank.Iterations()))
	if snap.PageRank.Converged() {
		m.PageRankConverged.Set(1)
	} else {
		m.PageRankConverged.Set(0)
	}
}
