// Command searcher serves relevance-ranked search over a corpus snapshot.
//
// On start it loads the corpus, builds the TF-IDF and PageRank analyzers
// and serves the HTTP API. With Redis configured, results are cached; with
// Kafka configured, search events are published and corpus-reload messages
// trigger a rebuild.
//
// Usage:
//
//	go run ./cmd/searcher [-config searcher.yaml]
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
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/relevance-engine/internal/analyzers/pagerank"
	"github.com/Adithya-Monish-Kumar-K/relevance-engine/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/relevance-engine/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/relevance-engine/internal/search"
	"github.com/Adithya-Monish-Kumar-K/relevance-engine/internal/search/cache"
	"github.com/Adithya-Monish-Kumar-K/relevance-engine/internal/search/handler"
	"github.com/Adithya-Monish-Kumar-K/relevance-engine/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/relevance-engine/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/relevance-engine/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/relevance-engine/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/relevance-engine/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/relevance-engine/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/relevance-engine/pkg/postgres"
	"github.com/Adithya-Monish-Kumar-K/relevance-engine/pkg/ratelimit"
	pkgredis "github.com/Adithya-Monish-Kumar-K/relevance-engine/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/relevance-engine/pkg/resilience"
)

func main() {
	configPath := flag.String("config", "", "path to config file (defaults only when empty)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	if err := run(cfg); err != nil {
		slog.Error("searcher exited", "error", err)
		os.Exit(1)
	}
	slog.Info("searcher stopped")
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New(nil)
	checker := health.NewChecker()

	source, closeSource, err := openSource(ctx, cfg, checker)
	if err != nil {
		return err
	}
	defer closeSource()

	engine := search.NewEngine(source, search.Options{
		Rank: pagerank.Params{
			Decay:   cfg.Rank.Decay,
			Epsilon: cfg.Rank.Epsilon,
			Limit:   cfg.Rank.Limit,
		},
		ReloadTimeout: cfg.Corpus.ReloadTimeout,
		Metrics:       m,
	})
	if _, err := engine.Reload(ctx); err != nil {
		return fmt.Errorf("initial corpus load: %w", err)
	}
	checker.Register("snapshot", health.Ping(func(context.Context) error {
		_, err := engine.Snapshot()
		return err
	}, true))

	var queryCache *cache.QueryCache
	if cfg.Redis.Addr != "" {
		redisClient, err := pkgredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			slog.Warn("redis unavailable, search caching disabled", "error", err)
		} else {
			defer redisClient.Close()
			queryCache = cache.New(redisClient, cfg.Redis.CacheTTL, m)
			checker.Register("redis", health.Ping(redisClient.Ping, false))
			slog.Info("search cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
		}
	}

	g, ctx := errgroup.WithContext(ctx)

	var tracker handler.Tracker
	if len(cfg.Kafka.Brokers) > 0 {
		producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.SearchEvents)
		defer producer.Close()
		collector := analytics.NewCollector(producer, 10000, 100, 0)
		collector.Start(ctx)
		defer collector.Close()
		tracker = collector

		// Every replica rebuilds on a reload message, so each needs its own group.
		reloadCfg := cfg.Kafka
		reloadCfg.ConsumerGroup = fmt.Sprintf("%s-reload-%s", cfg.Kafka.ConsumerGroup, hostname())
		consumer := kafka.NewConsumer(reloadCfg, cfg.Kafka.Topics.CorpusReload, handler.ReloadOnMessage(engine, queryCache))
		g.Go(func() error { return consumer.Start(ctx) })
		slog.Info("kafka enabled",
			"brokers", cfg.Kafka.Brokers,
			"events_topic", cfg.Kafka.Topics.SearchEvents,
			"reload_topic", cfg.Kafka.Topics.CorpusReload,
		)
	}

	h := handler.New(engine, queryCache, tracker, m, handler.Config{
		DefaultLimit: cfg.Search.DefaultLimit,
		MaxResults:   cfg.Search.MaxResults,
	})
	mux := http.NewServeMux()
	h.Register(mux)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var limiter *ratelimit.Limiter
	if cfg.Server.RateLimit > 0 {
		limiter = ratelimit.New(cfg.Server.RateLimit, time.Minute)
		defer limiter.Stop()
	}

	server := &http.Server{
		Addr: fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: middleware.Chain(mux,
			middleware.RequestID,
			middleware.Metrics(m),
			middleware.CORS(middleware.DefaultCORSConfig(cfg.Server.CORSOrigins)),
			middleware.RateLimit(limiter),
			middleware.Timeout(cfg.Server.RequestTimeout),
		),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	if cfg.Metrics.Enabled {
		metricsServer := metrics.NewServer(fmt.Sprintf(":%d", cfg.Metrics.Port), nil)
		g.Go(func() error { return metrics.Serve(ctx, metricsServer, cfg.Server.ShutdownTimeout) })
	}

	g.Go(func() error {
		slog.Info("search service listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// openSource builds the configured corpus source and registers its health
// check. The returned func releases its resources.
func openSource(ctx context.Context, cfg *config.Config, checker *health.Checker) (corpus.Source, func(), error) {
	switch cfg.Corpus.Source {
	case config.SourcePostgres:
		client, err := postgres.New(ctx, cfg.Postgres)
		if err != nil {
			return nil, nil, err
		}
		checker.Register("postgres", health.Ping(client.Ping, false))
		return corpus.NewPostgresSource(client, resilience.RetryConfig{MaxAttempts: 4}), func() { client.Close() }, nil
	case config.SourceBolt:
		return corpus.NewBoltSource(cfg.Corpus.BoltPath), func() {}, nil
	default:
		return corpus.NewDirSource(cfg.Corpus.Dir), func() {}, nil
	}
}

func hostname() string {
	name, err := os.Hostname()
	if err != nil || name == "" {
		return "local"
	}
	return name
}
