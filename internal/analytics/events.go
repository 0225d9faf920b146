// Package analytics publishes one event per search to Kafka and folds
// consumed events into in-memory query statistics.
package analytics

import "time"

type EventType string

const (
	EventCacheHit   EventType = "cache_hit"
	EventCacheMiss  EventType = "cache_miss"
	EventZeroResult EventType = "zero_result"
)

// SearchEvent describes one answered query.
type SearchEvent struct {
	Type            EventType `json:"type"`
	Query           string    `json:"query"`
	Terms           []string  `json:"terms"`
	TotalHits       int       `json:"total_hits"`
	Returned        int       `json:"returned"`
	LatencyMs       int64     `json:"latency_ms"`
	CacheHit        bool      `json:"cache_hit"`
	SnapshotVersion int64     `json:"snapshot_version"`
	Timestamp       time.Time `json:"timestamp"`
	RequestID       string    `json:"request_id,omitempty"`
}

// Classify picks the event type from the hit count and cache outcome.
func Classify(totalHits int, cacheHit bool) EventType {
	switch {
	case totalHits == 0:
		return EventZeroResult
	case cacheHit:
		return EventCacheHit
	default:
		return EventCacheMiss
	}
}
