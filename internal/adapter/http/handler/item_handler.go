package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/balancesheet/internal/adapter/http/dto"
	"github.com/iho/balancesheet/internal/domain"
	"github.com/iho/balancesheet/internal/usecase"
)

// ScheduleService defines the behavior needed by ItemHandler.
type ScheduleService interface {
	Preview(start, end time.Time, total decimal.Decimal, method domain.SpreadMethod) ([]domain.ScheduleLine, error)
	CreateItem(ctx context.Context, input usecase.CreateItemInput) (*domain.ItemSchedule, error)
	GetSchedule(ctx context.Context, itemID string) (*domain.ItemSchedule, error)
	ListItems(ctx context.Context, filter domain.ItemFilter) ([]*domain.Item, error)
	OverrideLine(ctx context.Context, input usecase.OverrideLineInput) (*domain.ItemSchedule, error)
	CancelItem(ctx context.Context, itemID string) (*domain.Item, error)
	DeleteItem(ctx context.Context, itemID string) error
	MarkFullyRecognised(ctx context.Context, clientID, accountID string, periodEnd time.Time) ([]*domain.Item, error)
	History(ctx context.Context, itemID string, limit, offset int) ([]*domain.AuditLog, error)
}

// ItemHandler handles item and schedule HTTP requests.
type ItemHandler struct {
	scheduleUC ScheduleService
}

// NewItemHandler creates a new ItemHandler.
func NewItemHandler(scheduleUC ScheduleService) *ItemHandler {
	return &ItemHandler{scheduleUC: scheduleUC}
}

// Preview generates a schedule without storing it.
func (h *ItemHandler) Preview(w http.ResponseWriter, r *http.Request) {
	var req dto.PreviewRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	in, err := req.Parse()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	lines, err := h.scheduleUC.Preview(in.StartDate, in.EndDate, in.TotalAmount, in.SpreadMethod)
	if err != nil {
		writeDomainError(w, r, "failed to generate schedule", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.PreviewFromDomain(lines))
}

// Create creates an item and its schedule.
func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	schedule, err := h.scheduleUC.CreateItem(r.Context(), input)
	if err != nil {
		writeDomainError(w, r, "failed to create item", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.ScheduleFromDomain(schedule))
}

// Get retrieves an item with its schedule.
func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing item ID", "")
		return
	}

	schedule, err := h.scheduleUC.GetSchedule(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, "failed to get item", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ScheduleFromDomain(schedule))
}

// List lists items filtered by client, account, role and status.
func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, offset, err := domain.ValidatePagination(parseIntQuery(r, "limit", 0), parseIntQuery(r, "offset", 0))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid pagination", err.Error())
		return
	}

	items, err := h.scheduleUC.ListItems(r.Context(), domain.ItemFilter{
		ClientID:  q.Get("client_id"),
		AccountID: q.Get("account_id"),
		Role:      domain.Role(q.Get("role")),
		Status:    domain.ItemStatus(q.Get("status")),
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		writeDomainError(w, r, "failed to list items", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ItemListResponse{
		Items:  dto.ItemsFromDomain(items),
		Limit:  limit,
		Offset: offset,
	})
}

// Override sets the amount of one month and re-spreads the months after it.
func (h *ItemHandler) Override(w http.ResponseWriter, r *http.Request) {
	var req dto.OverrideLineRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput(chi.URLParam(r, "id"), chi.URLParam(r, "monthEnd"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	schedule, err := h.scheduleUC.OverrideLine(r.Context(), input)
	if err != nil {
		writeDomainError(w, r, "failed to override schedule line", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ScheduleFromDomain(schedule))
}

// Cancel soft-deletes an item.
func (h *ItemHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	item, err := h.scheduleUC.CancelItem(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, "failed to cancel item", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ItemFromDomain(item))
}

// Delete removes an item and its schedule.
func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.scheduleUC.DeleteItem(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, r, "failed to delete item", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// History returns the audit trail of an item.
func (h *ItemHandler) History(w http.ResponseWriter, r *http.Request) {
	logs, err := h.scheduleUC.History(
		r.Context(),
		chi.URLParam(r, "id"),
		parseIntQuery(r, "limit", 0),
		parseIntQuery(r, "offset", 0),
	)
	if err != nil {
		writeDomainError(w, r, "failed to get item history", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AuditLogsFromDomain(logs))
}

// Recognise marks the account's ended items as fully recognised.
func (h *ItemHandler) Recognise(w http.ResponseWriter, r *http.Request) {
	var req dto.RecogniseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	periodEnd, err := dto.ParseDate("period_end", req.PeriodEnd)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	items, err := h.scheduleUC.MarkFullyRecognised(r.Context(), chi.URLParam(r, "clientID"), chi.URLParam(r, "accountID"), periodEnd)
	if err != nil {
		writeDomainError(w, r, "failed to recognise items", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ItemsFromDomain(items))
}
