package amortisation

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/balancesheet/internal/domain"
)

// Spreader computes the formula amount for each month of a schedule.
// The generator ignores the value for the final month, which always takes
// whatever balance remains.
type Spreader interface {
	Method() domain.SpreadMethod
	Allocate(start, end time.Time, total decimal.Decimal, months int) []decimal.Decimal
}

// EqualSpreader gives every month the same share regardless of how many
// days of the month the item covers.
type EqualSpreader struct{}

func (EqualSpreader) Method() domain.SpreadMethod { return domain.SpreadEqual }

func (EqualSpreader) Allocate(_, _ time.Time, total decimal.Decimal, months int) []decimal.Decimal {
	perMonth := domain.Round2(total.Div(decimal.NewFromInt(int64(months))))

	amounts := make([]decimal.Decimal, months)
	for i := range amounts {
		amounts[i] = perMonth
	}
	return amounts
}

// DailyProrationSpreader weights each month by the calendar days it covers.
type DailyProrationSpreader struct{}

func (DailyProrationSpreader) Method() domain.SpreadMethod { return domain.SpreadDailyProration }

func (DailyProrationSpreader) Allocate(start, end time.Time, total decimal.Decimal, months int) []decimal.Decimal {
	days := CoveredDays(start, end, months)

	totalDays := 0
	for _, d := range days {
		totalDays += d
	}

	amounts := make([]decimal.Decimal, months)
	if totalDays == 0 {
		return amounts
	}

	divisor := decimal.NewFromInt(int64(totalDays))
	for i, d := range days {
		amounts[i] = domain.Round2(total.Mul(decimal.NewFromInt(int64(d))).Div(divisor))
	}
	return amounts
}

// CoveredDays returns, for each month of the span, the number of calendar
// days of that month falling inside [start, end].
func CoveredDays(start, end time.Time, months int) []int {
	days := make([]int, months)

	if months == 1 {
		days[0] = end.Day() - start.Day() + 1
		return days
	}

	for i := range days {
		monthEnd := domain.AddMonths(start, i)
		switch i {
		case 0:
			days[i] = monthEnd.Day() - start.Day() + 1
		case months - 1:
			days[i] = end.Day()
		default:
			days[i] = monthEnd.Day()
		}
	}
	return days
}

var (
	fullMonthWeight    = decimal.NewFromInt(1)
	partialMonthWeight = decimal.RequireFromString("0.5")
)

// HalfMonthSpreader counts a partially covered first or last month as half
// a month.
type HalfMonthSpreader struct{}

func (HalfMonthSpreader) Method() domain.SpreadMethod { return domain.SpreadHalfMonth }

func (HalfMonthSpreader) Allocate(start, end time.Time, total decimal.Decimal, months int) []decimal.Decimal {
	weights := MonthWeights(start, end, months)

	effectiveMonths := decimal.Zero
	for _, w := range weights {
		effectiveMonths = effectiveMonths.Add(w)
	}

	perUnit := total.Div(effectiveMonths)

	amounts := make([]decimal.Decimal, months)
	for i, w := range weights {
		amounts[i] = domain.Round2(perUnit.Mul(w))
	}
	return amounts
}

// MonthWeights returns 0.5 for a partial first or last month and 1 otherwise.
// The last month is only considered partial when it differs from the first.
func MonthWeights(start, end time.Time, months int) []decimal.Decimal {
	weights := make([]decimal.Decimal, months)
	for i := range weights {
		weights[i] = fullMonthWeight
	}

	if start.Day() > 1 {
		weights[0] = partialMonthWeight
	}

	if months > 1 && end.Day() < domain.DaysInMonth(end.Year(), end.Month()) {
		weights[months-1] = partialMonthWeight
	}

	return weights
}
