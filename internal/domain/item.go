package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SpreadMethod is the convention used to divide an item's total across months.
type SpreadMethod string

const (
	SpreadEqual          SpreadMethod = "equal"
	SpreadDailyProration SpreadMethod = "daily_proration"
	SpreadHalfMonth      SpreadMethod = "half_month"
)

// Valid reports whether m is a known spread method.
func (m SpreadMethod) Valid() bool {
	switch m {
	case SpreadEqual, SpreadDailyProration, SpreadHalfMonth:
		return true
	}
	return false
}

// Role labels what an item's schedule represents. It only affects display.
type Role string

const (
	RolePrepayment     Role = "prepayment"
	RoleDeferredIncome Role = "deferred_income"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RolePrepayment || r == RoleDeferredIncome
}

// Label returns the column heading used for the monthly amount.
func (r Role) Label() string {
	if r == RoleDeferredIncome {
		return "recognised"
	}
	return "expensed"
}

// ItemStatus tracks an item through its lifecycle.
type ItemStatus string

const (
	ItemStatusActive          ItemStatus = "active"
	ItemStatusFullyRecognised ItemStatus = "fully_recognised"
	ItemStatusCancelled       ItemStatus = "cancelled"
)

// Item is a lump-sum financial event amortised over the months it covers:
// a vendor bill paid in advance or a customer receipt not yet earned.
type Item struct {
	ID           string
	ClientID     string
	AccountID    string
	Role         Role
	Description  string
	Counterparty string
	Reference    string
	StartDate    time.Time
	EndDate      time.Time
	TotalAmount  decimal.Decimal
	SpreadMethod SpreadMethod
	Status       ItemStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NumberOfMonths returns the number of schedule lines the item produces.
func (i *Item) NumberOfMonths() int {
	return InclusiveMonthSpan(i.StartDate, i.EndDate)
}

// LastMonthEnd returns the month-end of the item's final schedule line.
func (i *Item) LastMonthEnd() time.Time {
	return MonthEndOf(i.EndDate)
}

// IsActive reports whether the item takes part in aggregations and edits.
func (i *Item) IsActive() bool {
	return i.Status == ItemStatusActive
}

// Cancel soft-deletes the item.
func (i *Item) Cancel(at time.Time) error {
	if i.Status == ItemStatusCancelled {
		return ErrItemNotActive
	}
	i.Status = ItemStatusCancelled
	i.UpdatedAt = at
	return nil
}

// MarkFullyRecognised moves an active item whose schedule ended on or
// before periodEnd to FullyRecognised. It reports whether the status changed.
func (i *Item) MarkFullyRecognised(periodEnd, at time.Time) bool {
	if i.Status != ItemStatusActive || i.LastMonthEnd().After(periodEnd) {
		return false
	}
	i.Status = ItemStatusFullyRecognised
	i.UpdatedAt = at
	return true
}

// ItemFilter narrows item listings. Empty fields match everything.
type ItemFilter struct {
	ClientID  string
	AccountID string
	Role      Role
	Status    ItemStatus
	Limit     int
	Offset    int
}
