package handler

import (
	"context"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/relevance-engine/internal/search/cache"
	"github.com/Adithya-Monish-Kumar-K/relevance-engine/pkg/kafka"
)

// ReloadRequest is the optional payload of a corpus reload message.
type ReloadRequest struct {
	Reason string `json:"reason"`
}

// ReloadOnMessage returns a Kafka handler that rebuilds the snapshot for
// every message and then invalidates queryCache, which may be nil. A failed
// rebuild is returned so the message stays uncommitted.
func ReloadOnMessage(engine Engine, queryCache *cache.QueryCache) kafka.MessageHandler {
	log := slog.Default().With("component", "reload-consumer")
	return func(ctx context.Context, key []byte, value []byte) error {
		var req ReloadRequest
		if len(value) > 0 {
			decoded, err := kafka.DecodeJSON[ReloadRequest](value)
			if err != nil {
				log.Warn("reload message without a readable payload", "error", err)
			} else {
				req = decoded
			}
		}
		snap, err := engine.Reload(ctx)
		if err != nil {
			return err
		}
		if queryCache != nil {
			if _, err := queryCache.Invalidate(ctx); err != nil {
				log.Warn("cache invalidation after reload failed", "error", err)
			}
		}
		log.Info("corpus reloaded from message", "reason", req.Reason, "version", snap.Version, "pages", len(snap.URIs))
		return nil
	}
}
