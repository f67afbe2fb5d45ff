package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/betpool/tracker/internal/app"
	"github.com/betpool/tracker/internal/auth"
	"github.com/betpool/tracker/internal/guard"
	"github.com/betpool/tracker/internal/handler"
	"github.com/betpool/tracker/internal/infra"
	"github.com/betpool/tracker/internal/ledger"
	"github.com/betpool/tracker/internal/projection"
	"github.com/betpool/tracker/internal/repository"
	"github.com/betpool/tracker/internal/service"
)

const (
	boardCacheSize  = 64
	idempotencyKeys = 4096
)

func main() {
	cfg, err := infra.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(1)
	}

	logger := infra.NewLogger(cfg)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *infra.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	checks := map[string]handler.HealthChecker{}

	// Record store
	var store repository.Store
	switch cfg.StoreDriver {
	case infra.StoreDriverMemory:
		mem := repository.NewMemoryStore()
		checks["store"] = mem
		store = mem
		logger.Warn("using in-memory store; state is lost on restart")
	default:
		if cfg.RunMigrations {
			if err := infra.RunMigrations(cfg, logger); err != nil {
				return fmt.Errorf("run migrations: %w", err)
			}
		}
		pool, err := infra.NewPostgresPool(ctx, cfg)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pool.Close()
		logger.Info("connected to postgres")

		pg := repository.NewPostgresStore(pool)
		checks["store"] = pg
		store = pg
	}

	// Board projection cache
	var cache projection.Store
	if cfg.RedisURL != "" {
		client, err := projection.ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer client.Close()
		rs := projection.NewRedisStore(client, "betpool:")
		checks["cache"] = rs
		cache = rs
		logger.Info("board cache using redis")
	} else {
		cache = projection.NewInMemoryStore(boardCacheSize, cfg.BoardCacheTTL)
	}

	// Ledger engine
	policy, err := ledger.NewPolicy(cfg.Mode())
	if err != nil {
		return err
	}
	engine := ledger.NewEngine(store, policy, logger)
	if err := engine.Refresh(ctx); err != nil {
		return fmt.Errorf("initial snapshot: %w", err)
	}

	board := service.NewBoardService(engine, cache, cfg.BoardCacheTTL, logger).
		WithBreaker(guard.NewCircuitBreaker(cfg.CacheBreakerThreshold, cfg.CacheBreakerReset))
	engine.OnCommit(board.Invalidate)

	jwtMgr := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTAdminExpiry)

	r := app.NewRouter(app.RouterDeps{
		Engine:       engine,
		Board:        board,
		JWTMgr:       jwtMgr,
		Logger:       logger,
		CORSOrigin:   cfg.CORSOrigin,
		Checks:       checks,
		AdminLimiter: guard.NewRateLimiter(cfg.AdminRateLimit, cfg.AdminRateWindow),
		Idempotency:  guard.NewIdempotencyGuard(idempotencyKeys, cfg.IdempotencyTTL),
	})

	// Start server
	addr := fmt.Sprintf(":%d", cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		logger.Info("api server starting", "addr", addr, "mode", cfg.Mode(), "store", cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	logger.Info("server stopped gracefully")
	return nil
}
