package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Adithya-Monish-Kumar-K/relevance-engine/pkg/errors"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, SourceDir, cfg.Corpus.Source)
	assert.Equal(t, 0.85, cfg.Rank.Decay)
	assert.Equal(t, 0.0001, cfg.Rank.Epsilon)
	assert.Equal(t, 100, cfg.Rank.Limit)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Empty(t, cfg.Redis.Addr)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9000
  requestTimeout: 3s
corpus:
  source: postgres
rank:
  decay: 0.5
  limit: 20
redis:
  addr: cache:6379
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 3*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, SourcePostgres, cfg.Corpus.Source)
	assert.Equal(t, 0.5, cfg.Rank.Decay)
	assert.Equal(t, 20, cfg.Rank.Limit)
	assert.Equal(t, 0.0001, cfg.Rank.Epsilon, "unset keys keep defaults")
	assert.Equal(t, "cache:6379", cfg.Redis.Addr)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("RE_SERVER_PORT", "7070")
	t.Setenv("RE_KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("RE_RANK_DECAY", "0.9")
	t.Setenv("RE_RANK_LIMIT", "not-a-number")
	t.Setenv("RE_CORPUS_DIR", "/srv/pages")
	t.Setenv("RE_SERVER_RATE_LIMIT", "120")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 0.9, cfg.Rank.Decay)
	assert.Equal(t, 100, cfg.Rank.Limit)
	assert.Equal(t, "/srv/pages", cfg.Corpus.Dir)
	assert.Equal(t, 120, cfg.Server.RateLimit)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown source", func(c *Config) { c.Corpus.Source = "s3" }},
		{"dir source without dir", func(c *Config) { c.Corpus.Dir = "" }},
		{"bolt source without path", func(c *Config) { c.Corpus.Source = SourceBolt }},
		{"decay above one", func(c *Config) { c.Rank.Decay = 1.2 }},
		{"negative epsilon", func(c *Config) { c.Rank.Epsilon = -0.1 }},
		{"negative limit", func(c *Config) { c.Rank.Limit = -1 }},
		{"default above max", func(c *Config) { c.Search.DefaultLimit = 500 }},
		{"zero port", func(c *Config) { c.Server.Port = 0 }},
		{"negative rate limit", func(c *Config) { c.Server.RateLimit = -5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), apperrors.ErrInvalidArgument)
		})
	}
	assert.NoError(t, Default().Validate())
}

func TestDSN(t *testing.T) {
	p := Default().Postgres
	assert.Equal(t,
		"host=localhost port=5432 user=relevance password=localdev dbname=relevance sslmode=disable",
		p.DSN())
}
