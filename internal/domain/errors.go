package domain

import (
	"errors"
	"fmt"
)

// Error classes. Every specific error below wraps exactly one of these so
// callers can branch on the class with errors.Is.
var (
	ErrValidation         = errors.New("validation error")
	ErrNotFound           = errors.New("not found")
	ErrInvariantViolation = errors.New("schedule invariant violated")
)

var (
	// Item errors
	ErrEndNotAfterStart    = fmt.Errorf("%w: end date must be after start date", ErrValidation)
	ErrNonPositiveTotal    = fmt.Errorf("%w: total amount must be positive", ErrValidation)
	ErrUnknownSpreadMethod = fmt.Errorf("%w: unknown spread method", ErrValidation)
	ErrUnknownRole         = fmt.Errorf("%w: unknown schedule role", ErrValidation)
	ErrItemNotFound        = fmt.Errorf("%w: item", ErrNotFound)
	ErrItemNotActive       = fmt.Errorf("%w: item is not active", ErrValidation)

	// Schedule line errors
	ErrNegativeOverride  = fmt.Errorf("%w: override amount must not be negative", ErrValidation)
	ErrLastLineMustClose = fmt.Errorf("%w: override on the final month must equal its opening balance", ErrValidation)
	ErrLineNotFound      = fmt.Errorf("%w: schedule line", ErrNotFound)

	// Ledger errors
	ErrLedgerBalanceNotFound = fmt.Errorf("%w: ledger balance", ErrNotFound)
	ErrUnknownTolerance      = fmt.Errorf("%w: unknown tolerance class", ErrValidation)
)

// IsValidation reports whether err belongs to the validation class.
func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }

// IsNotFound reports whether err belongs to the not-found class.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
