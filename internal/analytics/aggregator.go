package analytics

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/Adithya-Monish-Kumar-K/relevance-engine/internal/collections/hashmap"
	"github.com/Adithya-Monish-Kumar-K/relevance-engine/internal/collections/list"
	"github.com/Adithya-Monish-Kumar-K/relevance-engine/internal/collections/topk"
	"github.com/Adithya-Monish-Kumar-K/relevance-engine/pkg/kafka"
)

// maxLatencySamples bounds the window percentiles are computed over.
const maxLatencySamples = 10000

type AggregatedStats struct {
	TotalSearches     int64        `json:"total_searches"`
	CacheHits         int64        `json:"cache_hits"`
	CacheMisses       int64        `json:"cache_misses"`
	ZeroResultCount   int64        `json:"zero_result_count"`
	AvgLatencyMs      float64      `json:"avg_latency_ms"`
	P50LatencyMs      int64        `json:"p50_latency_ms"`
	P95LatencyMs      int64        `json:"p95_latency_ms"`
	P99LatencyMs      int64        `json:"p99_latency_ms"`
	TopQueries        []QueryCount `json:"top_queries"`
	ZeroResultQueries []QueryCount `json:"zero_result_queries"`
	QueriesPerMinute  float64      `json:"queries_per_minute"`
}

type QueryCount struct {
	Query string `json:"query"`
	Count int64  `json:"count"`
}

// Aggregator folds SearchEvents into running statistics. Queries are
// counted by their normalized terms so "Gophers" and "gopher" collapse.
type Aggregator struct {
	mu          sync.Mutex
	total       int64
	cacheHits   int64
	cacheMisses int64
	zeroResults int64
	latencies   []int64
	next        int
	queries     *hashmap.Map[string, int64]
	zeroQueries *hashmap.Map[string, int64]
	startTime   time.Time
	logger      *slog.Logger
}

func NewAggregator() *Aggregator {
	return &Aggregator{
		latencies:   make([]int64, 0, 1024),
		queries:     hashmap.New[string, int64](),
		zeroQueries: hashmap.New[string, int64](),
		startTime:   time.Now(),
		logger:      slog.Default().With("component", "analytics-aggregator"),
	}
}

// HandleEvent decodes search events from Kafka. Undecodable messages are
// logged and committed so they are not redelivered forever.
func (a *Aggregator) HandleEvent() kafka.MessageHandler {
	return func(ctx context.Context, key []byte, value []byte) error {
		ev, err := kafka.DecodeJSON[SearchEvent](value)
		if err != nil {
			a.logger.Error("failed to decode search event", "error", err)
			return nil
		}
		a.Record(ev)
		return nil
	}
}

func (a *Aggregator) Record(ev SearchEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.total++
	if ev.CacheHit {
		a.cacheHits++
	} else {
		a.cacheMisses++
	}
	if len(a.latencies) < maxLatencySamples {
		a.latencies = append(a.latencies, ev.LatencyMs)
	} else {
		a.latencies[a.next] = ev.LatencyMs
		a.next = (a.next + 1) % maxLatencySamples
	}

	if ev.TotalHits == 0 {
		a.zeroResults++
	}
	q := normalize(ev)
	if q == "" {
		return
	}
	n, _ := a.queries.Lookup(q)
	a.queries.Put(q, n+1)
	if ev.TotalHits == 0 {
		n, _ := a.zeroQueries.Lookup(q)
		a.zeroQueries.Put(q, n+1)
	}
}

// DefaultTopQueries is how many queries Stats lists per ranking.
const DefaultTopQueries = 10

func (a *Aggregator) Stats() AggregatedStats {
	return a.Summary(DefaultTopQueries)
}

// Summary is Stats with the top query lists cut to top entries.
func (a *Aggregator) Summary(top int) AggregatedStats {
	a.mu.Lock()
	defer a.mu.Unlock()

	stats := AggregatedStats{
		TotalSearches:     a.total,
		CacheHits:         a.cacheHits,
		CacheMisses:       a.cacheMisses,
		ZeroResultCount:   a.zeroResults,
		TopQueries:        topQueries(a.queries, top),
		ZeroResultQueries: topQueries(a.zeroQueries, top),
	}
	if len(a.latencies) > 0 {
		sorted := slices.Clone(a.latencies)
		slices.Sort(sorted)
		var sum int64
		for _, l := range sorted {
			sum += l
		}
		stats.AvgLatencyMs = float64(sum) / float64(len(sorted))
		stats.P50LatencyMs = percentile(sorted, 50)
		stats.P95LatencyMs = percentile(sorted, 95)
		stats.P99LatencyMs = percentile(sorted, 99)
	}
	if elapsed := time.Since(a.startTime).Minutes(); elapsed > 0 {
		stats.QueriesPerMinute = float64(stats.TotalSearches) / elapsed
	}
	return stats
}

func normalize(ev SearchEvent) string {
	if len(ev.Terms) > 0 {
		return strings.Join(ev.Terms, " ")
	}
	return strings.TrimSpace(strings.ToLower(ev.Query))
}

func percentile(sorted []int64, pct int) int64 {
	idx := min(pct*len(sorted)/100, len(sorted)-1)
	return sorted[idx]
}

// topQueries returns the n most frequent queries, most frequent first and
// alphabetical among equal counts.
func topQueries(counts *hashmap.Map[string, int64], n int) []QueryCount {
	all := list.New[QueryCount]()
	for q, c := range counts.All() {
		all.Add(QueryCount{Query: q, Count: c})
	}
	best, err := topk.SortFunc(n, all, func(a, b QueryCount) int {
		if c := cmp.Compare(a.Count, b.Count); c != 0 {
			return c
		}
		return strings.Compare(b.Query, a.Query)
	})
	out := make([]QueryCount, 0, n)
	if err != nil {
		return out
	}
	for _, qc := range best.Backward() {
		out = append(out, qc)
	}
	return out
}
