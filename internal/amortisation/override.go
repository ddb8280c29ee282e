package amortisation

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/balancesheet/internal/domain"
)

// OverrideInput describes a manual change to one month of a schedule.
type OverrideInput struct {
	LineIndex int
	Amount    decimal.Decimal
	Note      string
}

// Override returns a copy of lines with line k set to the supplied amount
// and every later line re-spread evenly over what is left of total.
//
// The tail is always re-spread with the equal convention, whatever method
// produced the schedule. Later lines lose any earlier override because
// their amounts are recomputed. An override on the final line must equal
// that line's opening balance, otherwise the schedule could not close.
func Override(total decimal.Decimal, lines []domain.ScheduleLine, in OverrideInput) ([]domain.ScheduleLine, error) {
	if err := domain.ValidateOverrideAmount(in.Amount); err != nil {
		return nil, err
	}

	if in.LineIndex < 0 || in.LineIndex >= len(lines) {
		return nil, fmt.Errorf("%w: index %d of %d", domain.ErrLineNotFound, in.LineIndex, len(lines))
	}

	if err := domain.ValidateText("note", in.Note, domain.MaxAuditNoteLength); err != nil {
		return nil, err
	}

	k := in.LineIndex
	last := len(lines) - 1

	if k == last && !in.Amount.Equal(lines[k].OpeningBalance) {
		return nil, fmt.Errorf("%w: opening balance is %s, got %s",
			domain.ErrLastLineMustClose, lines[k].OpeningBalance.StringFixed(2), in.Amount.StringFixed(2))
	}

	out := domain.CloneLines(lines)

	recognisedBefore := domain.ScheduleTotal(out[:k])

	amount := in.Amount
	target := &out[k]
	target.MonthlyAmount = amount
	target.OverrideAmount = &amount
	target.IsOverridden = true
	target.AuditNote = nil
	if in.Note != "" {
		note := in.Note
		target.AuditNote = &note
	}
	target.ClosingBalance = domain.Round2(target.OpeningBalance.Sub(amount))

	remainingMonths := last - k
	if remainingMonths > 0 {
		remainingAmount := total.Sub(recognisedBefore).Sub(amount)
		perMonth := domain.Round2(remainingAmount.Div(decimal.NewFromInt(int64(remainingMonths))))

		for j := k + 1; j <= last; j++ {
			line := &out[j]
			line.OpeningBalance = out[j-1].ClosingBalance

			line.MonthlyAmount = perMonth
			if j == last {
				line.MonthlyAmount = line.OpeningBalance.Truncate(domain.MoneyPlaces)
			}

			line.ClosingBalance = domain.Round2(line.OpeningBalance.Sub(line.MonthlyAmount))
			line.IsOverridden = false
			line.OverrideAmount = nil
			line.AuditNote = nil
		}
	}

	if err := domain.CheckInvariants(total, out); err != nil {
		return nil, fmt.Errorf("override line %d: %w", k, err)
	}

	return out, nil
}

// IndexOfMonth returns the index of the line for monthEnd.
func IndexOfMonth(lines []domain.ScheduleLine, monthEnd time.Time) (int, error) {
	monthEnd = domain.MonthEndOf(monthEnd)
	for i, l := range lines {
		if l.MonthEndDate.Equal(monthEnd) {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: no line for %s", domain.ErrLineNotFound, monthEnd.Format(domain.DateLayout))
}
