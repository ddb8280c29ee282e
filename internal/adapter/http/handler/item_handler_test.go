package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/balancesheet/internal/adapter/http/dto"
	"github.com/iho/balancesheet/internal/domain"
	"github.com/iho/balancesheet/internal/usecase"
)

type scheduleServiceStub struct {
	previewFn   func(start, end time.Time, total decimal.Decimal, method domain.SpreadMethod) ([]domain.ScheduleLine, error)
	createFn    func(ctx context.Context, input usecase.CreateItemInput) (*domain.ItemSchedule, error)
	getFn       func(ctx context.Context, id string) (*domain.ItemSchedule, error)
	listFn      func(ctx context.Context, filter domain.ItemFilter) ([]*domain.Item, error)
	overrideFn  func(ctx context.Context, input usecase.OverrideLineInput) (*domain.ItemSchedule, error)
	cancelFn    func(ctx context.Context, id string) (*domain.Item, error)
	deleteFn    func(ctx context.Context, id string) error
	recogniseFn func(ctx context.Context, clientID, accountID string, periodEnd time.Time) ([]*domain.Item, error)
	historyFn   func(ctx context.Context, id string, limit, offset int) ([]*domain.AuditLog, error)
}

func (s *scheduleServiceStub) Preview(start, end time.Time, total decimal.Decimal, method domain.SpreadMethod) ([]domain.ScheduleLine, error) {
	return s.previewFn(start, end, total, method)
}

func (s *scheduleServiceStub) CreateItem(ctx context.Context, input usecase.CreateItemInput) (*domain.ItemSchedule, error) {
	return s.createFn(ctx, input)
}

func (s *scheduleServiceStub) GetSchedule(ctx context.Context, id string) (*domain.ItemSchedule, error) {
	return s.getFn(ctx, id)
}

func (s *scheduleServiceStub) ListItems(ctx context.Context, filter domain.ItemFilter) ([]*domain.Item, error) {
	return s.listFn(ctx, filter)
}

func (s *scheduleServiceStub) OverrideLine(ctx context.Context, input usecase.OverrideLineInput) (*domain.ItemSchedule, error) {
	return s.overrideFn(ctx, input)
}

func (s *scheduleServiceStub) CancelItem(ctx context.Context, id string) (*domain.Item, error) {
	return s.cancelFn(ctx, id)
}

func (s *scheduleServiceStub) DeleteItem(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}

func (s *scheduleServiceStub) MarkFullyRecognised(ctx context.Context, clientID, accountID string, periodEnd time.Time) ([]*domain.Item, error) {
	return s.recogniseFn(ctx, clientID, accountID, periodEnd)
}

func (s *scheduleServiceStub) History(ctx context.Context, id string, limit, offset int) ([]*domain.AuditLog, error) {
	return s.historyFn(ctx, id, limit, offset)
}

func withURLParams(req *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sampleSchedule() *domain.ItemSchedule {
	item := &domain.Item{
		ID:           "01J0ITEM",
		ClientID:     "acme",
		AccountID:    "1400",
		Role:         domain.RolePrepayment,
		Description:  "Annual insurance",
		StartDate:    day(2026, time.January, 1),
		EndDate:      day(2026, time.February, 28),
		TotalAmount:  decimal.RequireFromString("200.00"),
		SpreadMethod: domain.SpreadEqual,
		Status:       domain.ItemStatusActive,
	}
	return &domain.ItemSchedule{
		Item: item,
		Lines: []domain.ScheduleLine{
			{
				MonthEndDate:   day(2026, time.January, 31),
				OpeningBalance: decimal.RequireFromString("200"),
				MonthlyAmount:  decimal.RequireFromString("100"),
				ClosingBalance: decimal.RequireFromString("100"),
				OriginalAmount: decimal.RequireFromString("100"),
			},
			{
				MonthEndDate:   day(2026, time.February, 28),
				OpeningBalance: decimal.RequireFromString("100"),
				MonthlyAmount:  decimal.RequireFromString("100"),
				ClosingBalance: decimal.Zero,
				OriginalAmount: decimal.RequireFromString("100"),
			},
		},
	}
}

func TestItemHandler_Create_Success(t *testing.T) {
	var captured usecase.CreateItemInput
	h := NewItemHandler(&scheduleServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateItemInput) (*domain.ItemSchedule, error) {
			captured = input
			return sampleSchedule(), nil
		},
	})

	body, _ := json.Marshal(dto.CreateItemRequest{
		ClientID:    "acme",
		AccountID:   "1400",
		Role:        "prepayment",
		Description: "Annual insurance",
		StartDate:   "2026-01-01",
		EndDate:     "2026-02-28",
		TotalAmount: "200.00",
	})

	rec := httptest.NewRecorder()
	h.Create(rec, httptest.NewRequest(http.MethodPost, "/items", bytes.NewReader(body)))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.SpreadMethod != domain.SpreadEqual {
		t.Fatalf("expected spread method to default to equal, got %q", captured.SpreadMethod)
	}
	if !captured.StartDate.Equal(day(2026, time.January, 1)) || !captured.TotalAmount.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("expected input to match request, got %+v", captured)
	}

	var resp dto.ScheduleResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Item.AmountLabel != "expensed" || resp.Item.NumberOfMonths != 2 {
		t.Fatalf("unexpected item %+v", resp.Item)
	}
	if len(resp.Lines) != 2 || resp.Lines[1].ClosingBalance != "0.00" {
		t.Fatalf("unexpected lines %+v", resp.Lines)
	}
}

func TestItemHandler_Create_InvalidInput(t *testing.T) {
	h := NewItemHandler(&scheduleServiceStub{})

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"client_id":`},
		{"unknown field", `{"client_id":"acme","currency":"USD"}`},
		{"bad date", `{"start_date":"2026-13-01","end_date":"2026-12-31","total_amount":"1"}`},
		{"bad amount", `{"start_date":"2026-01-01","end_date":"2026-12-31","total_amount":"1,200"}`},
		{"missing amount", `{"start_date":"2026-01-01","end_date":"2026-12-31"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.Create(rec, httptest.NewRequest(http.MethodPost, "/items", strings.NewReader(tt.body)))
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestItemHandler_Create_ValidationFromUseCase(t *testing.T) {
	h := NewItemHandler(&scheduleServiceStub{
		createFn: func(context.Context, usecase.CreateItemInput) (*domain.ItemSchedule, error) {
			return nil, domain.ErrEndNotAfterStart
		},
	})

	body := `{"client_id":"acme","account_id":"1400","role":"prepayment","start_date":"2026-03-01","end_date":"2026-03-01","total_amount":"10"}`
	rec := httptest.NewRecorder()
	h.Create(rec, httptest.NewRequest(http.MethodPost, "/items", strings.NewReader(body)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestItemHandler_Preview(t *testing.T) {
	var gotMethod domain.SpreadMethod
	h := NewItemHandler(&scheduleServiceStub{
		previewFn: func(start, end time.Time, total decimal.Decimal, method domain.SpreadMethod) ([]domain.ScheduleLine, error) {
			gotMethod = method
			return sampleSchedule().Lines, nil
		},
	})

	body := `{"start_date":"2026-01-01","end_date":"2026-02-28","total_amount":"200.00","spread_method":"half_month"}`
	rec := httptest.NewRecorder()
	h.Preview(rec, httptest.NewRequest(http.MethodPost, "/schedules/preview", strings.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotMethod != domain.SpreadHalfMonth {
		t.Fatalf("expected half_month, got %q", gotMethod)
	}

	var resp dto.PreviewResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Total != "200.00" {
		t.Fatalf("expected total 200.00, got %s", resp.Total)
	}
}

func TestItemHandler_Get_NotFound(t *testing.T) {
	h := NewItemHandler(&scheduleServiceStub{
		getFn: func(context.Context, string) (*domain.ItemSchedule, error) {
			return nil, domain.ErrItemNotFound
		},
	})

	req := withURLParams(httptest.NewRequest(http.MethodGet, "/items/missing", nil), map[string]string{"id": "missing"})
	rec := httptest.NewRecorder()
	h.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestItemHandler_Get_MissingID(t *testing.T) {
	h := NewItemHandler(&scheduleServiceStub{})

	rec := httptest.NewRecorder()
	h.Get(rec, httptest.NewRequest(http.MethodGet, "/items/", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestItemHandler_List_PassesFilter(t *testing.T) {
	var captured domain.ItemFilter
	h := NewItemHandler(&scheduleServiceStub{
		listFn: func(ctx context.Context, filter domain.ItemFilter) ([]*domain.Item, error) {
			captured = filter
			return []*domain.Item{sampleSchedule().Item}, nil
		},
	})

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/items?client_id=acme&account_id=1400&status=active&limit=10&offset=20", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.ClientID != "acme" || captured.AccountID != "1400" || captured.Status != domain.ItemStatusActive {
		t.Fatalf("unexpected filter %+v", captured)
	}
	if captured.Limit != 10 || captured.Offset != 20 {
		t.Fatalf("expected limit=10 offset=20, got %d/%d", captured.Limit, captured.Offset)
	}

	var resp dto.ItemListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Items) != 1 || resp.Limit != 10 {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestItemHandler_List_InvalidPagination(t *testing.T) {
	h := NewItemHandler(&scheduleServiceStub{})

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/items?limit=5000", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestItemHandler_Override(t *testing.T) {
	var captured usecase.OverrideLineInput
	h := NewItemHandler(&scheduleServiceStub{
		overrideFn: func(ctx context.Context, input usecase.OverrideLineInput) (*domain.ItemSchedule, error) {
			captured = input
			return sampleSchedule(), nil
		},
	})

	req := httptest.NewRequest(http.MethodPut, "/items/01J0ITEM/lines/2026-01-31", strings.NewReader(`{"amount":"150.00","note":"invoice received late"}`))
	req = withURLParams(req, map[string]string{"id": "01J0ITEM", "monthEnd": "2026-01-31"})
	rec := httptest.NewRecorder()
	h.Override(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.ItemID != "01J0ITEM" || !captured.MonthEnd.Equal(day(2026, time.January, 31)) {
		t.Fatalf("unexpected input %+v", captured)
	}
	if !captured.Amount.Equal(decimal.NewFromInt(150)) || captured.Note != "invoice received late" {
		t.Fatalf("unexpected input %+v", captured)
	}
}

func TestItemHandler_Override_Errors(t *testing.T) {
	tests := []struct {
		name     string
		month    string
		err      error
		expected int
	}{
		{"bad month", "31-01-2026", nil, http.StatusBadRequest},
		{"line not found", "2027-01-31", domain.ErrLineNotFound, http.StatusNotFound},
		{"item cancelled", "2026-01-31", domain.ErrItemNotActive, http.StatusConflict},
		{"last line must close", "2026-02-28", domain.ErrLastLineMustClose, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewItemHandler(&scheduleServiceStub{
				overrideFn: func(context.Context, usecase.OverrideLineInput) (*domain.ItemSchedule, error) {
					return nil, tt.err
				},
			})

			req := httptest.NewRequest(http.MethodPut, "/items/x/lines/"+tt.month, strings.NewReader(`{"amount":"1.00"}`))
			req = withURLParams(req, map[string]string{"id": "x", "monthEnd": tt.month})
			rec := httptest.NewRecorder()
			h.Override(rec, req)

			if rec.Code != tt.expected {
				t.Fatalf("expected %d, got %d: %s", tt.expected, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestItemHandler_CancelAndDelete(t *testing.T) {
	cancelled := sampleSchedule().Item
	cancelled.Status = domain.ItemStatusCancelled

	var deleted string
	h := NewItemHandler(&scheduleServiceStub{
		cancelFn: func(context.Context, string) (*domain.Item, error) { return cancelled, nil },
		deleteFn: func(ctx context.Context, id string) error {
			deleted = id
			return nil
		},
	})

	rec := httptest.NewRecorder()
	h.Cancel(rec, withURLParams(httptest.NewRequest(http.MethodPost, "/items/01J0ITEM/cancel", nil), map[string]string{"id": "01J0ITEM"}))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"status":"cancelled"`) {
		t.Fatalf("unexpected cancel response %d: %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	h.Delete(rec, withURLParams(httptest.NewRequest(http.MethodDelete, "/items/01J0ITEM", nil), map[string]string{"id": "01J0ITEM"}))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if deleted != "01J0ITEM" {
		t.Fatalf("expected item to be deleted, got %q", deleted)
	}
}

func TestItemHandler_History(t *testing.T) {
	var gotLimit, gotOffset int
	h := NewItemHandler(&scheduleServiceStub{
		historyFn: func(ctx context.Context, id string, limit, offset int) ([]*domain.AuditLog, error) {
			gotLimit, gotOffset = limit, offset
			return []*domain.AuditLog{{
				ID:           "a1",
				UserID:       "preparer-7",
				Action:       domain.AuditActionScheduleOverride,
				ResourceType: domain.AuditResourceSchedule,
				ResourceID:   id,
				Note:         "late invoice",
			}}, nil
		},
	})

	req := withURLParams(httptest.NewRequest(http.MethodGet, "/items/01J0ITEM/history?limit=5", nil), map[string]string{"id": "01J0ITEM"})
	rec := httptest.NewRecorder()
	h.History(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotLimit != 5 || gotOffset != 0 {
		t.Fatalf("expected limit=5 offset=0, got %d/%d", gotLimit, gotOffset)
	}

	var resp []dto.AuditLogResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp) != 1 || resp[0].Action != "schedule.override" || resp[0].ResourceID != "01J0ITEM" {
		t.Fatalf("unexpected history %+v", resp)
	}
}

func TestItemHandler_Recognise(t *testing.T) {
	var gotPeriod time.Time
	var gotAccount string
	h := NewItemHandler(&scheduleServiceStub{
		recogniseFn: func(ctx context.Context, clientID, accountID string, periodEnd time.Time) ([]*domain.Item, error) {
			gotAccount = clientID + "/" + accountID
			gotPeriod = periodEnd
			return nil, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/accounts/acme/1400/recognise", strings.NewReader(`{"period_end":"2026-03-31"}`))
	req = withURLParams(req, map[string]string{"clientID": "acme", "accountID": "1400"})
	rec := httptest.NewRecorder()
	h.Recognise(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotAccount != "acme/1400" || !gotPeriod.Equal(day(2026, time.March, 31)) {
		t.Fatalf("unexpected call %s %s", gotAccount, gotPeriod)
	}
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Fatalf("expected empty list, got %s", rec.Body.String())
	}
}
