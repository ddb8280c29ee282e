package dto

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/balancesheet/internal/domain"
)

func TestCreateItemRequest_ToUseCaseInput(t *testing.T) {
	req := CreateItemRequest{
		ClientID:     " acme ",
		AccountID:    "1400",
		Role:         "deferred_income",
		Description:  "Annual support contract",
		StartDate:    "2026-01-09",
		EndDate:      "2027-01-08",
		TotalAmount:  "12000.00",
		SpreadMethod: "daily_proration",
	}

	in, err := req.ToUseCaseInput()
	require.NoError(t, err)

	assert.Equal(t, "acme", in.ClientID)
	assert.Equal(t, domain.RoleDeferredIncome, in.Role)
	assert.Equal(t, domain.SpreadDailyProration, in.SpreadMethod)
	assert.True(t, in.StartDate.Equal(time.Date(2026, time.January, 9, 0, 0, 0, 0, time.UTC)))
	assert.True(t, in.TotalAmount.Equal(decimal.NewFromInt(12000)))
}

func TestCreateItemRequest_Invalid(t *testing.T) {
	tests := []struct {
		name string
		req  CreateItemRequest
	}{
		{"missing start", CreateItemRequest{EndDate: "2026-12-31", TotalAmount: "1"}},
		{"bad end", CreateItemRequest{StartDate: "2026-01-01", EndDate: "31/12/2026", TotalAmount: "1"}},
		{"bad amount", CreateItemRequest{StartDate: "2026-01-01", EndDate: "2026-12-31", TotalAmount: "ten"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.req.ToUseCaseInput()
			assert.True(t, errors.Is(err, domain.ErrValidation), "expected validation error, got %v", err)
		})
	}
}

func TestParseAmount_KeepsPrecision(t *testing.T) {
	d, err := parseAmount("amount", "10.005")
	require.NoError(t, err)
	assert.Equal(t, "10.005", d.String())
}

func TestCompareTotalRequest_ToUseCaseInput(t *testing.T) {
	balance := "500.00"

	in, err := (&CompareTotalRequest{LedgerBalance: &balance, ComparisonTotal: "499.99", Tolerance: "exact_match"}).ToUseCaseInput()
	require.NoError(t, err)
	require.NotNil(t, in.LedgerBalance)
	assert.True(t, in.LedgerBalance.Equal(decimal.NewFromInt(500)))
	assert.True(t, in.PeriodEnd.IsZero())

	in, err = (&CompareTotalRequest{ClientID: "acme", AccountID: "1100", PeriodEnd: "2026-06-30", ComparisonTotal: "10", Tolerance: "schedule_variance"}).ToUseCaseInput()
	require.NoError(t, err)
	assert.Nil(t, in.LedgerBalance)
	assert.Equal(t, "2026-06-30", in.PeriodEnd.Format(domain.DateLayout))
}

func TestOverrideLineRequest_ToUseCaseInput(t *testing.T) {
	in, err := (&OverrideLineRequest{Amount: "250.00", Note: "catch-up"}).ToUseCaseInput("item-1", "2026-02-28")
	require.NoError(t, err)
	assert.Equal(t, "item-1", in.ItemID)
	assert.Equal(t, "catch-up", in.Note)

	_, err = (&OverrideLineRequest{}).ToUseCaseInput("item-1", "2026-02-28")
	assert.ErrorIs(t, err, domain.ErrValidation)
}
