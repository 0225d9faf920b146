// Package handler exposes the search engine over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Adithya-Monish-Kumar-K/relevance-engine/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/relevance-engine/internal/page"
	"github.com/Adithya-Monish-Kumar-K/relevance-engine/internal/search"
	"github.com/Adithya-Monish-Kumar-K/relevance-engine/internal/search/cache"
	apperrors "github.com/Adithya-Monish-Kumar-K/relevance-engine/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/relevance-engine/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/relevance-engine/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/relevance-engine/pkg/middleware"
)

// Engine is the part of search.Engine the handlers use.
type Engine interface {
	Search(ctx context.Context, query string, k int) (*search.Result, error)
	PageRank(uri page.URI) (float64, error)
	TopRanked(k int) ([]search.Hit, error)
	Stats() (search.Stats, error)
	Reload(ctx context.Context) (*search.Snapshot, error)
}

// Tracker receives one event per answered search.
type Tracker interface {
	Track(ev analytics.SearchEvent)
}

type Config struct {
	DefaultLimit int
	MaxResults   int
}

// Handler serves the search API. cache, tracker and metrics are optional.
type Handler struct {
	engine  Engine
	cache   *cache.QueryCache
	tracker Tracker
	metrics *metrics.Metrics
	cfg     Config
	logger  *slog.Logger
}

func New(engine Engine, queryCache *cache.QueryCache, tracker Tracker, m *metrics.Metrics, cfg Config) *Handler {
	return &Handler{
		engine:  engine,
		cache:   queryCache,
		tracker: tracker,
		metrics: m,
		cfg:     cfg,
		logger:  slog.Default().With("component", "search-handler"),
	}
}

// Register mounts every route on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("GET /api/v1/pagerank", h.PageRank)
	mux.HandleFunc("GET /api/v1/pagerank/top", h.TopRanked)
	mux.HandleFunc("GET /api/v1/corpus/stats", h.CorpusStats)
	mux.HandleFunc("POST /api/v1/corpus/reload", h.Reload)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	query := r.URL.Query().Get("q")
	if query == "" {
		h.writeError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}
	limit, ok := h.parseLimit(w, r, "limit")
	if !ok {
		return
	}

	var (
		result   *search.Result
		cacheHit bool
		err      error
	)
	if h.cache != nil {
		result, cacheHit, err = h.cache.GetOrCompute(ctx, query, limit, func() (*search.Result, error) {
			return h.engine.Search(ctx, query, limit)
		})
	} else {
		result, err = h.engine.Search(ctx, query, limit)
	}
	if err != nil {
		h.countQuery("error")
		log.Error("search failed", "query", query, "error", err)
		h.writeAppError(w, err)
		return
	}

	// Cached results may come from an equivalent query with other wording.
	out := *result
	out.Query = query
	latency := time.Since(start)
	h.observe(&out, cacheHit, latency)
	log.Info("search completed",
		"query", query,
		"total_hits", out.TotalHits,
		"returned", len(out.Hits),
		"cache_hit", cacheHit,
		"latency_ms", latency.Milliseconds(),
	)
	if h.tracker != nil {
		h.tracker.Track(analytics.SearchEvent{
			Type:            analytics.Classify(out.TotalHits, cacheHit),
			Query:           query,
			Terms:           out.Terms,
			TotalHits:       out.TotalHits,
			Returned:        len(out.Hits),
			LatencyMs:       latency.Milliseconds(),
			CacheHit:        cacheHit,
			SnapshotVersion: out.SnapshotVersion,
			Timestamp:       time.Now().UTC(),
			RequestID:       middleware.GetRequestID(ctx),
		})
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *Handler) PageRank(w http.ResponseWriter, r *http.Request) {
	uri := r.URL.Query().Get("uri")
	if uri == "" {
		h.writeError(w, http.StatusBadRequest, "query parameter 'uri' is required")
		return
	}
	rank, err := h.engine.PageRank(page.URI(uri))
	if err != nil {
		h.writeAppError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"uri": uri, "pagerank": rank})
}

// TopRanked lists the pages with the highest PageRank, independent of any
// query.
func (h *Handler) TopRanked(w http.ResponseWriter, r *http.Request) {
	n, ok := h.parseLimit(w, r, "n")
	if !ok {
		return
	}
	hits, err := h.engine.TopRanked(n)
	if err != nil {
		h.writeAppError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"pages": hits})
}

// parseLimit reads a positive count from param, clamped to MaxResults. It
// writes the 400 itself when the value is malformed.
func (h *Handler) parseLimit(w http.ResponseWriter, r *http.Request, param string) (int, bool) {
	raw := r.URL.Query().Get(param)
	if raw == "" {
		return h.cfg.DefaultLimit, true
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed < 1 {
		h.writeError(w, http.StatusBadRequest, param+" must be a positive integer")
		return 0, false
	}
	return min(parsed, h.cfg.MaxResults), true
}

func (h *Handler) CorpusStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.engine.Stats()
	if err != nil {
		h.writeAppError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, stats)
}

// Reload rebuilds the snapshot and, once it is live, drops cached results.
func (h *Handler) Reload(w http.ResponseWriter, r *http.Request) {
	snap, err := h.engine.Reload(r.Context())
	if err != nil {
		logger.FromContext(r.Context()).Error("corpus reload failed", "error", err)
		h.writeAppError(w, err)
		return
	}
	if h.cache != nil {
		if _, err := h.cache.Invalidate(r.Context()); err != nil {
			h.logger.Warn("cache invalidation after reload failed", "error", err)
		}
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"status":  "reloaded",
		"version": snap.Version,
		"pages":   len(snap.URIs),
	})
}

func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}
	hits, misses := h.cache.Stats()
	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":     hits,
		"misses":   misses,
		"total":    total,
		"hit_rate": fmt.Sprintf("%.1f%%", hitRate),
	})
}

func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeError(w, http.StatusServiceUnavailable, "caching is disabled")
		return
	}
	deleted, err := h.cache.Invalidate(r.Context())
	if err != nil {
		h.logger.Error("cache invalidation failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "cache invalidation failed")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"status": "invalidated", "keys_deleted": deleted})
}

func (h *Handler) observe(res *search.Result, cacheHit bool, latency time.Duration) {
	if h.metrics == nil {
		return
	}
	status := "miss"
	if cacheHit {
		status = "hit"
	}
	h.metrics.SearchLatency.WithLabelValues(status).Observe(latency.Seconds())
	if res.TotalHits == 0 {
		h.countQuery("zero_result")
	} else {
		h.countQuery("hit")
	}
}

func (h *Handler) countQuery(resultType string) {
	if h.metrics != nil {
		h.metrics.SearchQueriesTotal.WithLabelValues(resultType).Inc()
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

// writeAppError maps err onto a status. Server-side failures get a generic
// message.
func (h *Handler) writeAppError(w http.ResponseWriter, err error) {
	status := apperrors.HTTPStatusCode(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	h.writeError(w, status, msg)
}
