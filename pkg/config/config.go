// Package config loads the relevance engine configuration from a YAML file
// with RE_* environment-variable overrides, then validates it.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	apperrors "github.com/Adithya-Monish-Kumar-K/relevance-engine/pkg/errors"
)

// Corpus source kinds.
const (
	SourceDir      = "dir"
	SourcePostgres = "postgres"
	SourceBolt     = "bolt"
)

// Config is the top-level application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Postgres PostgresConfig `yaml:"postgres"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Redis    RedisConfig    `yaml:"redis"`
	Corpus   CorpusConfig   `yaml:"corpus"`
	Rank     RankConfig     `yaml:"rank"`
	Search   SearchConfig   `yaml:"search"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
	RequestTimeout  time.Duration `yaml:"requestTimeout"`
	// RateLimit is requests per minute per client address; 0 disables it.
	RateLimit   int      `yaml:"rateLimit"`
	CORSOrigins []string `yaml:"corsOrigins"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Database        string        `yaml:"database"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"sslMode"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
}

// DSN returns a lib/pq-compatible data source name.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// KafkaConfig holds Kafka broker and topic settings. Empty Brokers turns
// the Kafka integration off.
type KafkaConfig struct {
	Brokers       []string    `yaml:"brokers"`
	ConsumerGroup string      `yaml:"consumerGroup"`
	Topics        KafkaTopics `yaml:"topics"`
}

type KafkaTopics struct {
	CorpusReload string `yaml:"corpusReload"`
	SearchEvents string `yaml:"searchEvents"`
}

// RedisConfig holds Redis connection and caching parameters. Empty Addr
// disables the query cache.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	PoolSize int           `yaml:"poolSize"`
	CacheTTL time.Duration `yaml:"cacheTTL"`
}

// CorpusConfig selects where pages are loaded from.
type CorpusConfig struct {
	Source        string        `yaml:"source"`
	Dir           string        `yaml:"dir"`
	BoltPath      string        `yaml:"boltPath"`
	ReloadTimeout time.Duration `yaml:"reloadTimeout"`
}

// RankConfig holds the PageRank iteration parameters.
type RankConfig struct {
	Decay   float64 `yaml:"decay"`
	Epsilon float64 `yaml:"epsilon"`
	Limit   int     `yaml:"limit"`
}

// SearchConfig bounds result counts.
type SearchConfig struct {
	MaxResults   int `yaml:"maxResults"`
	DefaultLimit int `yaml:"defaultLimit"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus metrics server.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// Load reads a YAML config file (if provided), applies environment-variable
// overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration used for local development.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			RequestTimeout:  10 * time.Second,
		},
		Postgres: PostgresConfig{
			Host:            "localhost",
			Port:            5432,
			Database:        "relevance",
			User:            "relevance",
			Password:        "localdev",
			SSLMode:         "disable",
			MaxOpenConns:    10,
			MaxIdleConns:    2,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Kafka: KafkaConfig{
			ConsumerGroup: "relevance-engine",
			Topics: KafkaTopics{
				CorpusReload: "corpus-reload",
				SearchEvents: "search-events",
			},
		},
		Redis: RedisConfig{
			PoolSize: 10,
			CacheTTL: 60 * time.Second,
		},
		Corpus: CorpusConfig{
			Source:        SourceDir,
			Dir:           "./corpus",
			ReloadTimeout: 2 * time.Minute,
		},
		Rank: RankConfig{
			Decay:   0.85,
			Epsilon: 0.0001,
			Limit:   100,
		},
		Search: SearchConfig{
			MaxResults:   100,
			DefaultLimit: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9090,
		},
	}
}

// Validate rejects settings the engine cannot run with.
func (c *Config) Validate() error {
	var problems []string
	switch c.Corpus.Source {
	case SourceDir:
		if c.Corpus.Dir == "" {
			problems = append(problems, "corpus.dir is required for the dir source")
		}
	case SourceBolt:
		if c.Corpus.BoltPath == "" {
			problems = append(problems, "corpus.boltPath is required for the bolt source")
		}
	case SourcePostgres:
	default:
		problems = append(problems, fmt.Sprintf("corpus.source %q is not one of dir, bolt, postgres", c.Corpus.Source))
	}
	if c.Rank.Decay < 0 || c.Rank.Decay > 1 {
		problems = append(problems, fmt.Sprintf("rank.decay %v outside [0, 1]", c.Rank.Decay))
	}
	if c.Rank.Epsilon < 0 {
		problems = append(problems, "rank.epsilon must not be negative")
	}
	if c.Rank.Limit < 0 {
		problems = append(problems, "rank.limit must not be negative")
	}
	if c.Search.DefaultLimit <= 0 || c.Search.MaxResults <= 0 {
		problems = append(problems, "search limits must be positive")
	} else if c.Search.DefaultLimit > c.Search.MaxResults {
		problems = append(problems, "search.defaultLimit exceeds search.maxResults")
	}
	if c.Server.Port <= 0 {
		problems = append(problems, "server.port must be positive")
	}
	if c.Server.RateLimit < 0 {
		problems = append(problems, "server.rateLimit must not be negative")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s: %w", strings.Join(problems, "; "), apperrors.ErrInvalidArgument)
	}
	return nil
}

// applyEnvOverrides reads RE_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	setInt("RE_SERVER_PORT", &cfg.Server.Port)
	setInt("RE_SERVER_RATE_LIMIT", &cfg.Server.RateLimit)
	setString("RE_POSTGRES_HOST", &cfg.Postgres.Host)
	setInt("RE_POSTGRES_PORT", &cfg.Postgres.Port)
	setString("RE_POSTGRES_DATABASE", &cfg.Postgres.Database)
	setString("RE_POSTGRES_USER", &cfg.Postgres.User)
	setString("RE_POSTGRES_PASSWORD", &cfg.Postgres.Password)
	setString("RE_POSTGRES_SSLMODE", &cfg.Postgres.SSLMode)
	if v := os.Getenv("RE_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	setString("RE_REDIS_ADDR", &cfg.Redis.Addr)
	setString("RE_REDIS_PASSWORD", &cfg.Redis.Password)
	setString("RE_CORPUS_SOURCE", &cfg.Corpus.Source)
	setString("RE_CORPUS_DIR", &cfg.Corpus.Dir)
	setString("RE_CORPUS_BOLT_PATH", &cfg.Corpus.BoltPath)
	setFloat("RE_RANK_DECAY", &cfg.Rank.Decay)
	setFloat("RE_RANK_EPSILON", &cfg.Rank.Epsilon)
	setInt("RE_RANK_LIMIT", &cfg.Rank.Limit)
	setString("RE_LOGGING_LEVEL", &cfg.Logging.Level)
	setString("RE_LOGGING_FORMAT", &cfg.Logging.Format)
	setInt("RE_METRICS_PORT", &cfg.Metrics.Port)
}

func setString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Unparseable numbers are ignored and the previous value kept.
func setInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat(key string, dst *float64) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}
