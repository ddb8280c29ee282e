// Package amortisation turns lump-sum items into month-by-month recognition
// schedules, re-partitions schedules after manual overrides and projects
// many schedules onto a shared grid of month-end columns.
package amortisation

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/balancesheet/internal/domain"
)

// Generator builds schedules using a registry of spread strategies.
type Generator struct {
	spreaders map[domain.SpreadMethod]Spreader
}

// NewGenerator creates a Generator with the Equal, DailyProration and
// HalfMonth strategies registered.
func NewGenerator() *Generator {
	g := &Generator{spreaders: make(map[domain.SpreadMethod]Spreader)}
	g.Register(EqualSpreader{})
	g.Register(DailyProrationSpreader{})
	g.Register(HalfMonthSpreader{})
	return g
}

// Register adds or replaces the strategy for s.Method().
func (g *Generator) Register(s Spreader) {
	g.spreaders[s.Method()] = s
}

// Generate produces one line per calendar month touched by [start, end].
// Every month except the last gets the strategy's amount; the last month
// takes the remaining balance so the schedule closes at exactly zero.
func (g *Generator) Generate(start, end time.Time, total decimal.Decimal, method domain.SpreadMethod) ([]domain.ScheduleLine, error) {
	start, end = domain.DateOf(start), domain.DateOf(end)

	if err := domain.ValidateScheduleTerms(start, end, total, method); err != nil {
		return nil, err
	}

	spreader, ok := g.spreaders[method]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownSpreadMethod, string(method))
	}

	months := domain.InclusiveMonthSpan(start, end)
	amounts := spreader.Allocate(start, end, total, months)

	lines := walk(domain.MonthEndOf(start), total, amounts)

	if err := domain.CheckInvariants(total, lines); err != nil {
		return nil, fmt.Errorf("%s spread: %w", method, err)
	}

	return lines, nil
}

// walk chains opening and closing balances month by month from firstMonthEnd.
func walk(firstMonthEnd time.Time, opening decimal.Decimal, amounts []decimal.Decimal) []domain.ScheduleLine {
	lines := make([]domain.ScheduleLine, len(amounts))

	for i, amount := range amounts {
		if i == len(amounts)-1 {
			amount = opening.Truncate(domain.MoneyPlaces)
		}

		closing := domain.Round2(opening.Sub(amount))
		lines[i] = domain.ScheduleLine{
			MonthEndDate:   domain.AddMonths(firstMonthEnd, i),
			OpeningBalance: opening,
			MonthlyAmount:  amount,
			ClosingBalance: closing,
			OriginalAmount: amount,
		}
		opening = closing
	}

	return lines
}
