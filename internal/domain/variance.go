package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ToleranceClass names how close two balances must be to count as reconciled.
type ToleranceClass string

const (
	// ToleranceScheduleVariance absorbs rounding noise when comparing a
	// schedule or sub-ledger total with a ledger balance.
	ToleranceScheduleVariance ToleranceClass = "schedule_variance"
	// ToleranceExactMatch is used where only sub-cent rounding is acceptable,
	// such as a submitted bank-statement balance.
	ToleranceExactMatch ToleranceClass = "exact_match"
)

var (
	scheduleVarianceTolerance = decimal.RequireFromString("0.01")
	exactMatchTolerance       = decimal.RequireFromString("0.005")
)

// Threshold returns the strict upper bound on |difference| for the class.
func (c ToleranceClass) Threshold() (decimal.Decimal, error) {
	switch c {
	case ToleranceScheduleVariance:
		return scheduleVarianceTolerance, nil
	case ToleranceExactMatch:
		return exactMatchTolerance, nil
	default:
		return decimal.Zero, fmt.Errorf("%w: %q", ErrUnknownTolerance, string(c))
	}
}

// VarianceResult is the outcome of comparing a balance with a reference.
type VarianceResult struct {
	LedgerBalance   decimal.Decimal
	ComparisonTotal decimal.Decimal
	VarianceAmount  decimal.Decimal
	Tolerance       ToleranceClass
	IsReconciled    bool
}

// Variance compares comparisonTotal against ledgerBalance.
// The reported amount is rounded to cents; reconciliation is decided on the
// unrounded difference so that a half-cent gap is not promoted to a full cent.
func Variance(ledgerBalance, comparisonTotal decimal.Decimal, tolerance ToleranceClass) (VarianceResult, error) {
	threshold, err := tolerance.Threshold()
	if err != nil {
		return VarianceResult{}, err
	}

	diff := ledgerBalance.Sub(comparisonTotal)

	return VarianceResult{
		LedgerBalance:   ledgerBalance,
		ComparisonTotal: comparisonTotal,
		VarianceAmount:  Round2(diff),
		Tolerance:       tolerance,
		IsReconciled:    diff.Abs().LessThan(threshold),
	}, nil
}
