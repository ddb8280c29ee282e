package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerBalance is the balance the accounting system reports for an
// account at a period end.
type LedgerBalance struct {
	ClientID   string
	AccountID  string
	PeriodEnd  time.Time
	Balance    decimal.Decimal
	Source     string
	RecordedAt time.Time
}
