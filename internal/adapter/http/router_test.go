package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/balancesheet/internal/adapter/http/handler"
	apimiddleware "github.com/iho/balancesheet/internal/adapter/http/middleware"
	"github.com/iho/balancesheet/internal/domain"
	"github.com/iho/balancesheet/internal/usecase"
)

func TestNewRouter_HealthEndpointAvailable(t *testing.T) {
	router := NewRouter(newRouterConfig())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected /health to return 200, got %d", rec.Code)
	}
}

func TestNewRouter_MetricsEndpointAvailable(t *testing.T) {
	router := NewRouter(newRouterConfig())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected /metrics to return 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "http_requests_in_flight") {
		t.Fatalf("expected HTTP metrics to be exported")
	}
}

func TestNewRouter_RateLimiterBlocksExcessRequests(t *testing.T) {
	rl := apimiddleware.NewRateLimiter(1, 1)
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.RateLimiter = rl
	}))

	req1 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req1.RemoteAddr = "1.2.3.4:1234"
	rec1 := httptest.NewRecorder()
	router.ServeHTTP(rec1, req1)
	if rec1.Code != http.StatusOK {
		t.Fatalf("expected first request to succeed, got %d", rec1.Code)
	}

	req2 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req2.RemoteAddr = "1.2.3.4:1234"
	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, req2)
	if rec2.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be throttled, got %d", rec2.Code)
	}
}

func TestNewRouter_IdempotencyMiddlewareInvokesStore(t *testing.T) {
	store := &stubIdempotencyStore{}
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.IdempotencyStore = store
	}))

	body := `{"start_date":"2026-01-01","end_date":"2026-03-31","total_amount":"300.00"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/schedules/preview", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(apimiddleware.IdempotencyKeyHeader, "key-123")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if !store.checkCalled {
		t.Fatalf("expected idempotency store to be used")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected preview to succeed, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestNewRouter_CORSPreflight(t *testing.T) {
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.AllowedOrigins = []string{"https://workbench.example.com"}
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/items/", nil)
	req.Header.Set("Origin", "https://workbench.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://workbench.example.com" {
		t.Fatalf("expected allowed origin to be echoed, got %q", got)
	}
}

func TestNewRouter_RegistersKeyRoutes(t *testing.T) {
	router := NewRouter(newRouterConfig())

	chiRoutes, ok := router.(chi.Router)
	if !ok {
		t.Fatal("router does not implement chi.Routes")
	}

	seen := map[string]bool{}
	if err := chi.Walk(chiRoutes, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		seen[method+" "+route] = true
		return nil
	}); err != nil {
		t.Fatalf("walk failed: %v", err)
	}

	expected := []string{
		"GET /health",
		"GET /ready",
		"POST /api/v1/schedules/preview",
		"POST /api/v1/items/",
		"GET /api/v1/items/",
		"GET /api/v1/items/{id}",
		"DELETE /api/v1/items/{id}",
		"POST /api/v1/items/{id}/cancel",
		"PUT /api/v1/items/{id}/lines/{monthEnd}",
		"GET /api/v1/accounts/{clientID}/{accountID}/grid",
		"PUT /api/v1/accounts/{clientID}/{accountID}/ledger-balances/{periodEnd}",
		"POST /api/v1/reconciliations/compare",
	}

	for _, route := range expected {
		if !seen[route] {
			t.Fatalf("expected route %s to be registered", route)
		}
	}
}

func newRouterConfig(opts ...func(*RouterConfig)) RouterConfig {
	cfg := RouterConfig{
		HealthHandler:         handler.NewHealthHandler(nil),
		ItemHandler:           handler.NewItemHandler(stubScheduleService{}),
		ReconciliationHandler: handler.NewReconciliationHandler(stubReconciliationService{}),
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

type stubScheduleService struct{}

func (stubScheduleService) Preview(start, end time.Time, total decimal.Decimal, method domain.SpreadMethod) ([]domain.ScheduleLine, error) {
	return []domain.ScheduleLine{}, nil
}

func (stubScheduleService) CreateItem(ctx context.Context, input usecase.CreateItemInput) (*domain.ItemSchedule, error) {
	return &domain.ItemSchedule{Item: &domain.Item{ID: "item"}}, nil
}

func (stubScheduleService) GetSchedule(ctx context.Context, id string) (*domain.ItemSchedule, error) {
	return &domain.ItemSchedule{Item: &domain.Item{ID: id}}, nil
}

func (stubScheduleService) ListItems(ctx context.Context, filter domain.ItemFilter) ([]*domain.Item, error) {
	return []*domain.Item{}, nil
}

func (stubScheduleService) OverrideLine(ctx context.Context, input usecase.OverrideLineInput) (*domain.ItemSchedule, error) {
	return &domain.ItemSchedule{Item: &domain.Item{ID: input.ItemID}}, nil
}

func (stubScheduleService) CancelItem(ctx context.Context, id string) (*domain.Item, error) {
	return &domain.Item{ID: id, Status: domain.ItemStatusCancelled}, nil
}

func (stubScheduleService) DeleteItem(ctx context.Context, id string) error {
	return nil
}

func (stubScheduleService) MarkFullyRecognised(ctx context.Context, clientID, accountID string, periodEnd time.Time) ([]*domain.Item, error) {
	return []*domain.Item{}, nil
}

func (stubScheduleService) History(ctx context.Context, id string, limit, offset int) ([]*domain.AuditLog, error) {
	return []*domain.AuditLog{}, nil
}

type stubReconciliationService struct{}

func (stubReconciliationService) BuildGrid(ctx context.Context, clientID, accountID string, viewing time.Time) (*usecase.GridReport, error) {
	return &usecase.GridReport{ClientID: clientID, AccountID: accountID}, nil
}

func (stubReconciliationService) CheckScheduleVariance(ctx context.Context, clientID, accountID string, periodEnd time.Time) (*domain.VarianceResult, error) {
	return &domain.VarianceResult{}, nil
}

func (stubReconciliationService) CompareTotal(ctx context.Context, input usecase.CompareTotalInput) (*domain.VarianceResult, error) {
	return &domain.VarianceResult{}, nil
}

func (stubReconciliationService) RecordLedgerBalance(ctx context.Context, input usecase.RecordLedgerBalanceInput) (*domain.LedgerBalance, error) {
	return &domain.LedgerBalance{ClientID: input.ClientID, AccountID: input.AccountID}, nil
}

func (stubReconciliationService) GetLedgerBalance(ctx context.Context, clientID, accountID string, periodEnd time.Time) (*domain.LedgerBalance, error) {
	return &domain.LedgerBalance{ClientID: clientID, AccountID: accountID}, nil
}

type stubIdempotencyStore struct {
	checkCalled bool
}

func (s *stubIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	s.checkCalled = true
	return false, nil, nil
}

func (s *stubIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	return nil
}

func (s *stubIdempotencyStore) Release(ctx context.Context, key string) error {
	return nil
}
