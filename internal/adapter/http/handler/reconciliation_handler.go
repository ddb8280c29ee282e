package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iho/balancesheet/internal/adapter/http/dto"
	"github.com/iho/balancesheet/internal/domain"
	"github.com/iho/balancesheet/internal/usecase"
)

// ReconciliationService defines the behavior needed by ReconciliationHandler.
type ReconciliationService interface {
	BuildGrid(ctx context.Context, clientID, accountID string, viewing time.Time) (*usecase.GridReport, error)
	CheckScheduleVariance(ctx context.Context, clientID, accountID string, periodEnd time.Time) (*domain.VarianceResult, error)
	CompareTotal(ctx context.Context, input usecase.CompareTotalInput) (*domain.VarianceResult, error)
	RecordLedgerBalance(ctx context.Context, input usecase.RecordLedgerBalanceInput) (*domain.LedgerBalance, error)
	GetLedgerBalance(ctx context.Context, clientID, accountID string, periodEnd time.Time) (*domain.LedgerBalance, error)
}

// ReconciliationHandler handles grid, variance and ledger balance requests.
type ReconciliationHandler struct {
	reconUC ReconciliationService
	now     func() time.Time
}

// NewReconciliationHandler creates a new ReconciliationHandler.
func NewReconciliationHandler(reconUC ReconciliationService) *ReconciliationHandler {
	return &ReconciliationHandler{reconUC: reconUC, now: time.Now}
}

// Grid returns the amortisation grid of an account. The viewing period
// defaults to the current month.
func (h *ReconciliationHandler) Grid(w http.ResponseWriter, r *http.Request) {
	viewing := domain.DateOf(h.now())
	if v := r.URL.Query().Get("period"); v != "" {
		parsed, err := dto.ParseDate("period", v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid period", err.Error())
			return
		}
		viewing = parsed
	}

	report, err := h.reconUC.BuildGrid(r.Context(), chi.URLParam(r, "clientID"), chi.URLParam(r, "accountID"), viewing)
	if err != nil {
		writeDomainError(w, r, "failed to build grid", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.GridFromReport(report))
}

// Variance compares the account's schedules with its recorded ledger
// balance at period_end.
func (h *ReconciliationHandler) Variance(w http.ResponseWriter, r *http.Request) {
	periodEnd, err := dto.ParseDate("period_end", r.URL.Query().Get("period_end"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid period_end", err.Error())
		return
	}

	result, err := h.reconUC.CheckScheduleVariance(r.Context(), chi.URLParam(r, "clientID"), chi.URLParam(r, "accountID"), periodEnd)
	if err != nil {
		writeDomainError(w, r, "failed to check variance", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.VarianceFromDomain(result))
}

// Compare checks an external total against a ledger balance.
func (h *ReconciliationHandler) Compare(w http.ResponseWriter, r *http.Request) {
	var req dto.CompareTotalRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	result, err := h.reconUC.CompareTotal(r.Context(), input)
	if err != nil {
		writeDomainError(w, r, "failed to compare totals", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.VarianceFromDomain(result))
}

// RecordBalance stores the ledger balance of a period.
func (h *ReconciliationHandler) RecordBalance(w http.ResponseWriter, r *http.Request) {
	var req dto.RecordLedgerBalanceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput(chi.URLParam(r, "clientID"), chi.URLParam(r, "accountID"), chi.URLParam(r, "periodEnd"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	balance, err := h.reconUC.RecordLedgerBalance(r.Context(), input)
	if err != nil {
		writeDomainError(w, r, "failed to record ledger balance", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.LedgerBalanceFromDomain(balance))
}

// GetBalance returns the recorded ledger balance of a period.
func (h *ReconciliationHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	periodEnd, err := dto.ParseDate("period_end", chi.URLParam(r, "periodEnd"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid period_end", err.Error())
		return
	}

	balance, err := h.reconUC.GetLedgerBalance(r.Context(), chi.URLParam(r, "clientID"), chi.URLParam(r, "accountID"), periodEnd)
	if err != nil {
		writeDomainError(w, r, "failed to get ledger balance", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.LedgerBalanceFromDomain(balance))
}
