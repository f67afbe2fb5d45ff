package infra

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/betpool/tracker/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		PoolMode:        "bankroll",
		StoreDriver:     StoreDriverMemory,
		PGMaxConns:      4,
		OutboxBatchSize: 10,
		JWTSecret:       "0123456789abcdef0123456789abcdef",
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 3100, cfg.APIPort)
	assert.Equal(t, StoreDriverPostgres, cfg.StoreDriver)
	assert.Equal(t, 5*time.Minute, cfg.BoardCacheTTL)
	assert.Equal(t, 500*time.Millisecond, cfg.OutboxPollInterval)
	assert.Equal(t, 8*time.Hour, cfg.JWTAdminExpiry)
	assert.Equal(t, 120, cfg.AdminRateLimit)
	assert.Equal(t, 3, cfg.CacheBreakerThreshold)
	assert.Equal(t, 30*time.Second, cfg.CacheBreakerReset)
}

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Setenv("POOL_MODE", "pool")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("BOARD_CACHE_TTL", "30s")
	t.Setenv("OUTBOX_BATCH_SIZE", "25")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, domain.ModePool, cfg.Mode())
	assert.Equal(t, StoreDriverMemory, cfg.StoreDriver)
	assert.Equal(t, 30*time.Second, cfg.BoardCacheTTL)
	assert.Equal(t, 25, cfg.OutboxBatchSize)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"unknown mode", func(c *Config) { c.PoolMode = "casino" }, "POOL_MODE"},
		{"unknown driver", func(c *Config) { c.StoreDriver = "sqlite" }, "STORE_DRIVER"},
		{"zero batch", func(c *Config) { c.OutboxBatchSize = 0 }, "OUTBOX_BATCH_SIZE"},
		{"zero conns", func(c *Config) { c.PGMaxConns = 0 }, "PG_MAX_CONNS"},
		{"negative rate limit", func(c *Config) { c.AdminRateLimit = -1 }, "ADMIN_RATE_LIMIT"},
		{"insecure secret", func(c *Config) { c.JWTSecret = insecureJWTSecret }, "insecure default"},
		{"short secret", func(c *Config) { c.JWTSecret = "short" }, "too short"},
		{"insecure allowed", func(c *Config) {
			c.JWTSecret = insecureJWTSecret
			c.AllowInsecureDefaults = true
		}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateRelay(t *testing.T) {
	relayConfig := func() *Config {
		c := validConfig()
		c.StoreDriver = StoreDriverPostgres
		c.OutboxPollInterval = time.Second
		c.KafkaEnabled = true
		c.KafkaBrokers = "kafka:9092"
		c.JWTSecret = ""
		return c
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid without a jwt secret", func(c *Config) {}, ""},
		{"unknown driver", func(c *Config) { c.StoreDriver = "sqlite" }, "STORE_DRIVER"},
		{"memory driver", func(c *Config) { c.StoreDriver = StoreDriverMemory }, "STORE_DRIVER=postgres"},
		{"zero conns", func(c *Config) { c.PGMaxConns = 0 }, "PG_MAX_CONNS"},
		{"zero batch", func(c *Config) { c.OutboxBatchSize = 0 }, "OUTBOX_BATCH_SIZE"},
		{"zero interval", func(c *Config) { c.OutboxPollInterval = 0 }, "OUTBOX_POLL_INTERVAL"},
		{"kafka disabled", func(c *Config) { c.KafkaEnabled = false }, "KAFKA_ENABLED"},
		{"no brokers", func(c *Config) { c.KafkaBrokers = " " }, "KAFKA_BROKERS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := relayConfig()
			tt.mutate(cfg)
			err := cfg.ValidateRelay()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDSN(t *testing.T) {
	cfg := &Config{PGUser: "u", PGPassword: "p", PGHost: "db", PGPort: 5433, PGDatabase: "pool"}
	assert.Equal(t, "postgres://u:p@db:5433/pool?sslmode=disable", cfg.DSN())

	cfg.DatabaseURL = "postgres://override"
	assert.Equal(t, "postgres://override", cfg.DSN())
}

func TestSlogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		cfg := &Config{LogLevel: in}
		assert.Equal(t, want, cfg.SlogLevel(), "level %q", in)
	}
}

func TestSearchUp(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "db", "migrations"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "cmd", "api"), 0o755))

	assert.Equal(t, root+"/db/migrations", searchUp(root+"/cmd/api", "db/migrations"))
	assert.Equal(t, "nowhere", searchUp(root+"/cmd/api", "nowhere"))
}
