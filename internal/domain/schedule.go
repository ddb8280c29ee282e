package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ScheduleLine is one calendar month of an item's schedule.
type ScheduleLine struct {
	MonthEndDate   time.Time
	OpeningBalance decimal.Decimal
	MonthlyAmount  decimal.Decimal
	ClosingBalance decimal.Decimal
	OriginalAmount decimal.Decimal
	OverrideAmount *decimal.Decimal
	IsOverridden   bool
	AuditNote      *string
}

// ItemSchedule pairs an item with its ordered schedule lines.
type ItemSchedule struct {
	Item  *Item
	Lines []ScheduleLine
}

// ScheduleTotal sums the monthly amounts of lines.
func ScheduleTotal(lines []ScheduleLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.MonthlyAmount)
	}
	return total
}

// CloneLines returns a deep copy of lines.
func CloneLines(lines []ScheduleLine) []ScheduleLine {
	out := make([]ScheduleLine, len(lines))
	for i, l := range lines {
		out[i] = l
		if l.OverrideAmount != nil {
			v := *l.OverrideAmount
			out[i].OverrideAmount = &v
		}
		if l.AuditNote != nil {
			v := *l.AuditNote
			out[i].AuditNote = &v
		}
	}
	return out
}

// CheckInvariants verifies that lines form a complete schedule for total.
// A failure means the generator or override engine is wrong; it is never
// corrected here.
func CheckInvariants(total decimal.Decimal, lines []ScheduleLine) error {
	if len(lines) == 0 {
		return fmt.Errorf("%w: schedule has no lines", ErrInvariantViolation)
	}

	if !lines[0].OpeningBalance.Equal(total) {
		return fmt.Errorf("%w: first opening balance %s does not equal total %s",
			ErrInvariantViolation, lines[0].OpeningBalance.StringFixed(2), total.StringFixed(2))
	}

	for i, l := range lines {
		if i > 0 {
			prev := lines[i-1]
			if !l.OpeningBalance.Equal(prev.ClosingBalance) {
				return fmt.Errorf("%w: line %d opening %s does not chain from closing %s",
					ErrInvariantViolation, i, l.OpeningBalance.StringFixed(2), prev.ClosingBalance.StringFixed(2))
			}
			if !l.MonthEndDate.After(prev.MonthEndDate) {
				return fmt.Errorf("%w: line %d month %s is not after %s",
					ErrInvariantViolation, i, l.MonthEndDate.Format(DateLayout), prev.MonthEndDate.Format(DateLayout))
			}
		}

		want := Round2(l.OpeningBalance.Sub(l.MonthlyAmount))
		if !l.ClosingBalance.Equal(want) {
			return fmt.Errorf("%w: line %d closing %s, expected %s",
				ErrInvariantViolation, i, l.ClosingBalance.StringFixed(2), want.StringFixed(2))
		}
	}

	if last := lines[len(lines)-1]; !last.ClosingBalance.IsZero() {
		return fmt.Errorf("%w: final closing balance is %s", ErrInvariantViolation, last.ClosingBalance.StringFixed(2))
	}

	if sum := ScheduleTotal(lines); !sum.Equal(total) {
		return fmt.Errorf("%w: schedule sums to %s, expected %s",
			ErrInvariantViolation, sum.StringFixed(2), total.StringFixed(2))
	}

	return nil
}
