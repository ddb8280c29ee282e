package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/iho/balancesheet/internal/adapter/http"
	"github.com/iho/balancesheet/internal/adapter/http/handler"
	"github.com/iho/balancesheet/internal/adapter/http/middleware"
	memoryRepo "github.com/iho/balancesheet/internal/adapter/repository/memory"
	postgresRepo "github.com/iho/balancesheet/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/balancesheet/internal/adapter/repository/redis"
	"github.com/iho/balancesheet/internal/infrastructure/config"
	"github.com/iho/balancesheet/internal/infrastructure/logger"
	"github.com/iho/balancesheet/internal/infrastructure/metrics"
	"github.com/iho/balancesheet/internal/infrastructure/postgres"
	"github.com/iho/balancesheet/internal/infrastructure/redis"
	"github.com/iho/balancesheet/internal/usecase"
)

const (
	memoryCleanupInterval = time.Minute
	limiterCleanupEvery   = 10 * time.Minute
	limiterMaxIdle        = time.Hour
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	log.Logger = appLogger
	zerolog.DefaultContextLogger = &appLogger

	if err := run(cfg, appLogger); err != nil {
		appLogger.Fatal().Err(err).Msg("server failed")
	}
}

func run(cfg *config.Config, appLogger zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.MigrateOnStart {
		if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseTimeout,
	})
	if err != nil {
		return err
	}
	defer pool.Close()
	appLogger.Info().Msg("connected to postgres")

	caps, err := postgresRepo.LoadSchemaCapabilities(ctx, pool)
	if err != nil {
		return err
	}
	if !caps.LineOverrides {
		appLogger.Warn().Uint("schema_version", caps.Version).Msg("schema predates line overrides; overrides are disabled")
	}

	stores, err := newStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer stores.close()

	m := metrics.New()

	txManager := postgresRepo.NewTxManager(pool)
	itemRepo := postgresRepo.NewItemRepository(pool)
	lineRepo := postgresRepo.NewScheduleLineRepository(pool, caps)
	ledgerRepo := postgresRepo.NewLedgerBalanceRepository(pool)
	auditRepo := postgresRepo.NewAuditRepository(pool)
	retrier := postgresRepo.NewRetrier().WithErrorCounter(m.DBErrors)

	scheduleUC := usecase.NewScheduleUseCase(txManager, itemRepo, lineRepo, auditRepo, postgresRepo.NewULIDGenerator(), nil, stores.cache, retrier, m)
	reconUC := usecase.NewReconciliationUseCase(itemRepo, lineRepo, ledgerRepo, stores.cache, cfg.GridCacheTTL, m)

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).WithHitCounter(m.RateLimitHits)
	go rateLimiter.RunCleanup(ctx, limiterCleanupEvery, limiterMaxIdle)

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		ItemHandler:           handler.NewItemHandler(scheduleUC),
		ReconciliationHandler: handler.NewReconciliationHandler(reconUC),
		HealthHandler: handler.NewHealthHandler(map[string]handler.Check{
			"postgres": pool.Ping,
			"redis":    stores.ping,
		}),
		IdempotencyStore: stores.idempotency,
		IdempotencyTTL:   cfg.IdempotencyTTL,
		RateLimiter:      rateLimiter,
		Logger:           &appLogger,
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		RequestTimeout:   cfg.HTTPWriteTimeout,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		appLogger.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	appLogger.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	appLogger.Info().Msg("server stopped")
	return nil
}

// stores holds the grid cache and idempotency store, backed by Redis when
// REDIS_URL is set and by process memory otherwise.
type stores struct {
	cache       usecase.Cache
	idempotency usecase.IdempotencyStore
	ping        handler.Check
	close       func()
}

func newStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	if cfg.RedisURL == "" {
		log.Info().Msg("REDIS_URL not set, using in-process cache")
		return &stores{
			cache:       memoryRepo.NewCache(memoryCleanupInterval),
			idempotency: memoryRepo.NewIdempotencyStore(memoryCleanupInterval),
			close:       func() {},
		}, nil
	}

	client, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	log.Info().Msg("connected to redis")

	return &stores{
		cache:       redisRepo.NewCache(client),
		idempotency: redisRepo.NewIdempotencyStore(client),
		ping:        redis.HealthCheck(client),
		close:       func() { _ = client.Close() },
	}, nil
}
