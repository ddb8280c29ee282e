package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/balancesheet/internal/adapter/http/handler"
	"github.com/iho/balancesheet/internal/adapter/http/middleware"
	"github.com/iho/balancesheet/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	ItemHandler           *handler.ItemHandler
	ReconciliationHandler *handler.ReconciliationHandler
	HealthHandler         *handler.HealthHandler
	IdempotencyStore      usecase.IdempotencyStore
	IdempotencyTTL        time.Duration
	RateLimiter           *middleware.RateLimiter
	Logger                *zerolog.Logger
	AllowedOrigins        []string
	RequestTimeout        time.Duration
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	if cfg.Logger != nil {
		r.Use(middleware.NewLoggingMiddleware(*cfg.Logger).Wrap)
	}
	r.Use(middleware.Recovery)
	r.Use(middleware.Metrics)
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{
				"Accept",
				"Content-Type",
				middleware.IdempotencyKeyHeader,
				middleware.PreparerHeader,
				chimiddleware.RequestIDHeader,
			},
			ExposedHeaders: []string{chimiddleware.RequestIDHeader, middleware.IdempotencyReplayHeader},
			MaxAge:         300,
		}))
	}
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.RequestTimeout > 0 {
			r.Use(chimiddleware.Timeout(cfg.RequestTimeout))
		}
		if cfg.IdempotencyStore != nil {
			r.Use(middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL).Wrap)
		}

		r.Post("/schedules/preview", cfg.ItemHandler.Preview)

		r.Route("/items", func(r chi.Router) {
			r.Post("/", cfg.ItemHandler.Create)
			r.Get("/", cfg.ItemHandler.List)
			r.Get("/{id}", cfg.ItemHandler.Get)
			r.Delete("/{id}", cfg.ItemHandler.Delete)
			r.Post("/{id}/cancel", cfg.ItemHandler.Cancel)
			r.Get("/{id}/history", cfg.ItemHandler.History)
			r.Put("/{id}/lines/{monthEnd}", cfg.ItemHandler.Override)
		})

		r.Route("/accounts/{clientID}/{accountID}", func(r chi.Router) {
			r.Get("/grid", cfg.ReconciliationHandler.Grid)
			r.Get("/variance", cfg.ReconciliationHandler.Variance)
			r.Post("/recognise", cfg.ItemHandler.Recognise)
			r.Put("/ledger-balances/{periodEnd}", cfg.ReconciliationHandler.RecordBalance)
			r.Get("/ledger-balances/{periodEnd}", cfg.ReconciliationHandler.GetBalance)
		})

		r.Post("/reconciliations/compare", cfg.ReconciliationHandler.Compare)
	})

	return r
}
