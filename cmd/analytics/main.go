// Command analytics consumes the search events the searcher publishes,
// aggregates them in memory (query counts, zero-result queries, latency
// percentiles, cache hit rate) and serves them at GET /api/v1/analytics.
//
// Usage:
//
//	go run ./cmd/analytics [-config analytics.yaml] [-port 8081]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/relevance-engine/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/relevance-engine/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/relevance-engine/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/relevance-engine/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/relevance-engine/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/relevance-engine/pkg/middleware"
)

func main() {
	configPath := flag.String("config", "", "path to config file (defaults only when empty)")
	port := flag.Int("port", 8081, "HTTP port")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	if len(cfg.Kafka.Brokers) == 0 {
		slog.Error("analytics needs kafka.brokers")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	aggregator := analytics.NewAggregator()
	consumerCfg := cfg.Kafka
	consumerCfg.ConsumerGroup = cfg.Kafka.ConsumerGroup + "-analytics"
	consumer := kafka.NewConsumer(consumerCfg, cfg.Kafka.Topics.SearchEvents, aggregator.HandleEvent())

	checker := health.NewChecker()
	mux := http.NewServeMux()
	analytics.NewHandler(aggregator).Register(mux)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      middleware.RequestID(mux),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("analytics consumer started", "topic", cfg.Kafka.Topics.SearchEvents)
		return consumer.Start(ctx)
	})
	g.Go(func() error {
		slog.Info("analytics service listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		slog.Error("analytics service failed", "error", err)
		os.Exit(1)
	}
	slog.Info("analytics service stopped")
}
