package infra

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/betpool/tracker/internal/domain"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const insecureJWTSecret = "change-me-in-production"

// Store drivers.
const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// Config holds all application configuration parsed from environment variables.
type Config struct {
	// Database
	DatabaseURL   string `env:"DATABASE_URL"`
	PGHost        string `env:"PGHOST" envDefault:"localhost"`
	PGPort        int    `env:"PGPORT" envDefault:"5432"`
	PGUser        string `env:"PGUSER" envDefault:"betpool"`
	PGPassword    string `env:"PGPASSWORD" envDefault:"betpool"`
	PGDatabase    string `env:"PGDATABASE" envDefault:"betpool"`
	PGMaxConns    int    `env:"PG_MAX_CONNS" envDefault:"8"`
	RunMigrations bool   `env:"RUN_MIGRATIONS" envDefault:"true"`
	MigrationsDir string `env:"MIGRATIONS_DIR"`

	// Ledger
	PoolMode    string `env:"POOL_MODE" envDefault:"bankroll"`
	StoreDriver string `env:"STORE_DRIVER" envDefault:"postgres"`

	// Redis (empty keeps the board cache in process)
	RedisURL      string        `env:"REDIS_URL"`
	BoardCacheTTL time.Duration `env:"BOARD_CACHE_TTL" envDefault:"5m"`

	// JWT
	JWTSecret      string        `env:"JWT_SECRET" envDefault:"change-me-in-production"`
	JWTAdminExpiry time.Duration `env:"JWT_ADMIN_EXPIRY" envDefault:"8h"`

	// Server
	APIPort    int    `env:"API_PORT" envDefault:"3100"`
	CORSOrigin string `env:"CORS_ORIGIN" envDefault:"*"`

	// Guards (ADMIN_RATE_LIMIT=0 disables limiting)
	AdminRateLimit        int           `env:"ADMIN_RATE_LIMIT" envDefault:"120"`
	AdminRateWindow       time.Duration `env:"ADMIN_RATE_WINDOW" envDefault:"1m"`
	IdempotencyTTL        time.Duration `env:"IDEMPOTENCY_TTL" envDefault:"24h"`
	CacheBreakerThreshold int           `env:"CACHE_BREAKER_THRESHOLD" envDefault:"3"`
	CacheBreakerReset     time.Duration `env:"CACHE_BREAKER_RESET" envDefault:"30s"`

	// Kafka
	KafkaBrokers       string        `env:"KAFKA_BROKERS" envDefault:"localhost:9092"`
	KafkaEnabled       bool          `env:"KAFKA_ENABLED" envDefault:"false"`
	OutboxPollInterval time.Duration `env:"OUTBOX_POLL_INTERVAL" envDefault:"500ms"`
	OutboxBatchSize    int           `env:"OUTBOX_BATCH_SIZE" envDefault:"100"`

	// Logging
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Dev
	AllowInsecureDefaults bool `env:"ALLOW_INSECURE_DEFAULTS" envDefault:"false"`
}

// LoadConfig reads an optional .env file and parses environment variables into a Config.
// Variables already set in the environment win over the file.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Validate rejects unknown modes and drivers, and insecure configuration that
// must not run in production. Set ALLOW_INSECURE_DEFAULTS=true to bypass the
// JWT checks (local dev only).
func (c *Config) Validate() error {
	if _, err := domain.ParsePoolMode(c.PoolMode); err != nil {
		return fmt.Errorf("POOL_MODE: %w", err)
	}
	if err := c.validateStore(); err != nil {
		return err
	}
	if c.AdminRateLimit < 0 {
		return fmt.Errorf("ADMIN_RATE_LIMIT must not be negative, got %d", c.AdminRateLimit)
	}

	if c.AllowInsecureDefaults {
		return nil
	}
	if c.JWTSecret == insecureJWTSecret {
		return fmt.Errorf("JWT_SECRET is set to the insecure default; set a strong secret or set ALLOW_INSECURE_DEFAULTS=true for local dev")
	}
	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET is too short (%d chars); minimum 32 characters required", len(c.JWTSecret))
	}
	return nil
}

// ValidateRelay checks what the outbox relay needs. Rows are deleted once
// delivered, so the relay refuses to start without a Kafka producer.
func (c *Config) ValidateRelay() error {
	if err := c.validateStore(); err != nil {
		return err
	}
	if c.StoreDriver != StoreDriverPostgres {
		return fmt.Errorf("outbox relay needs STORE_DRIVER=%s, got %q", StoreDriverPostgres, c.StoreDriver)
	}
	if c.OutboxPollInterval <= 0 {
		return fmt.Errorf("OUTBOX_POLL_INTERVAL must be positive, got %s", c.OutboxPollInterval)
	}
	if !c.KafkaEnabled || strings.TrimSpace(c.KafkaBrokers) == "" {
		return fmt.Errorf("outbox relay needs KAFKA_ENABLED=true and KAFKA_BROKERS")
	}
	return nil
}

func (c *Config) validateStore() error {
	switch c.StoreDriver {
	case StoreDriverPostgres, StoreDriverMemory:
	default:
		return fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", StoreDriverPostgres, StoreDriverMemory, c.StoreDriver)
	}
	if c.PGMaxConns <= 0 {
		return fmt.Errorf("PG_MAX_CONNS must be positive, got %d", c.PGMaxConns)
	}
	if c.OutboxBatchSize <= 0 {
		return fmt.Errorf("OUTBOX_BATCH_SIZE must be positive, got %d", c.OutboxBatchSize)
	}
	return nil
}

// Mode returns the validated pool mode.
func (c *Config) Mode() domain.PoolMode {
	mode, _ := domain.ParsePoolMode(c.PoolMode)
	return mode
}

// DSN returns the PostgreSQL connection string, preferring DATABASE_URL if set.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.PGUser, c.PGPassword, c.PGHost, c.PGPort, c.PGDatabase)
}

// SlogLevel maps LOG_LEVEL onto a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger builds the JSON logger every binary uses.
func NewLogger(cfg *Config) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
}
