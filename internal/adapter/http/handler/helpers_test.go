package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/iho/balancesheet/internal/adapter/http/dto"
	"github.com/iho/balancesheet/internal/domain"
)

func TestParseIntQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/items?limit=50", nil)
	if got := parseIntQuery(req, "limit", 10); got != 50 {
		t.Fatalf("expected limit=50, got %d", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/items?limit=invalid", nil)
	if got := parseIntQuery(req, "limit", 10); got != 10 {
		t.Fatalf("expected fallback to default, got %d", got)
	}

	req.URL = &url.URL{RawQuery: ""}
	if got := parseIntQuery(req, "limit", 25); got != 25 {
		t.Fatalf("expected default when missing, got %d", got)
	}
}

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"item not found", domain.ErrItemNotFound, http.StatusNotFound},
		{"line not found", domain.ErrLineNotFound, http.StatusNotFound},
		{"ledger balance not found", domain.ErrLedgerBalanceNotFound, http.StatusNotFound},
		{"item not active", domain.ErrItemNotActive, http.StatusConflict},
		{"end before start", domain.ErrEndNotAfterStart, http.StatusBadRequest},
		{"negative override", domain.ErrNegativeOverride, http.StatusBadRequest},
		{"wrapped validation", fmt.Errorf("start_date: %w", domain.ErrValidation), http.StatusBadRequest},
		{"invariant violation", domain.ErrInvariantViolation, http.StatusInternalServerError},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mapDomainError(tt.err); got != tt.expected {
				t.Fatalf("expected %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestWriteDomainError_HidesServerErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/items/x", nil)

	writeDomainError(rec, req, "failed to get item", errors.New("pq: password authentication failed"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}

	var resp dto.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Message != "" {
		t.Fatalf("expected internal details to be withheld, got %q", resp.Message)
	}
}

func TestWriteDomainError_SurfacesInvariantViolations(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/items/x/lines/2026-02-28", nil)

	err := fmt.Errorf("%w: closing balance of last line is 0.01", domain.ErrInvariantViolation)
	writeDomainError(rec, req, "failed to override line", err)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}

	var resp dto.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Message != err.Error() {
		t.Fatalf("expected %q, got %q", err.Error(), resp.Message)
	}
}

func TestWriteJSON(t *testing.T) {
	rr := httptest.NewRecorder()
	payload := map[string]string{"status": "ok"}

	writeJSON(rr, http.StatusCreated, payload)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content type %s", ct)
	}

	var decoded map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if decoded["status"] != "ok" {
		t.Fatalf("unexpected payload %+v", decoded)
	}
}
