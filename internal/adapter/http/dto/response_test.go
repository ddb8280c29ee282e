package dto

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/balancesheet/internal/amortisation"
	"github.com/iho/balancesheet/internal/domain"
	"github.com/iho/balancesheet/internal/usecase"
)

func TestLinesFromDomain_FormatsMoneyAndOverrides(t *testing.T) {
	override := decimal.RequireFromString("150")
	note := "late invoice"

	lines := LinesFromDomain([]domain.ScheduleLine{{
		MonthEndDate:   time.Date(2026, time.January, 31, 0, 0, 0, 0, time.UTC),
		OpeningBalance: decimal.RequireFromString("300"),
		MonthlyAmount:  override,
		ClosingBalance: decimal.RequireFromString("150"),
		OriginalAmount: decimal.RequireFromString("100"),
		OverrideAmount: &override,
		IsOverridden:   true,
		AuditNote:      &note,
	}})

	require.Len(t, lines, 1)
	l := lines[0]
	assert.Equal(t, "2026-01-31", l.MonthEnd)
	assert.Equal(t, "300.00", l.OpeningBalance)
	assert.Equal(t, "100.00", l.OriginalAmount)
	require.NotNil(t, l.OverrideAmount)
	assert.Equal(t, "150.00", *l.OverrideAmount)
	assert.Equal(t, &note, l.AuditNote)
}

func TestGridFromReport_AlignsVariancesWithColumns(t *testing.T) {
	jan := time.Date(2026, time.January, 31, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2026, time.February, 28, 0, 0, 0, 0, time.UTC)

	report := &usecase.GridReport{
		ClientID:  "acme",
		AccountID: "1400",
		Grid: amortisation.Grid{
			ViewingPeriod: jan,
			Columns: []amortisation.Column{
				{MonthEnd: jan, TotalRecognised: decimal.NewFromInt(100), ClosingBalance: decimal.NewFromInt(100)},
				{MonthEnd: feb, TotalRecognised: decimal.NewFromInt(100), ClosingBalance: decimal.Zero},
			},
		},
		Variances: []*domain.VarianceResult{
			nil,
			{LedgerBalance: decimal.Zero, ComparisonTotal: decimal.Zero, VarianceAmount: decimal.Zero, Tolerance: domain.ToleranceScheduleVariance, IsReconciled: true},
		},
	}

	resp := GridFromReport(report)

	require.Len(t, resp.Columns, 2)
	assert.Equal(t, "2026-01-31", resp.ViewingPeriod)
	assert.Nil(t, resp.Columns[0].Variance)
	require.NotNil(t, resp.Columns[1].Variance)
	assert.True(t, resp.Columns[1].Variance.IsReconciled)
	assert.Equal(t, "0.00", resp.Columns[1].ClosingBalance)
}
