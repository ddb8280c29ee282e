package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Validation errors
var (
	ErrInvalidIdentifier = fmt.Errorf("%w: invalid identifier", ErrValidation)
	ErrTextTooLong       = fmt.Errorf("%w: text exceeds maximum length", ErrValidation)
	ErrAmountTooLarge    = fmt.Errorf("%w: amount exceeds maximum allowed", ErrValidation)
	ErrAmountPrecision   = fmt.Errorf("%w: amount has more than two decimal places", ErrValidation)
)

// Validation constants
const (
	MaxIdentifierLength  = 64
	MaxDescriptionLength = 500
	MaxAuditNoteLength   = 1000
	MaxScheduleAmount    = "1000000000000" // 1 trillion
	MaxScheduleMonths    = 600             // 50 years
)

var identifierRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._:-]*$`)

// ValidateIdentifier validates client and account identifiers.
func ValidateIdentifier(field, value string) error {
	value = strings.TrimSpace(value)

	if value == "" {
		return fmt.Errorf("%w: %s cannot be empty", ErrInvalidIdentifier, field)
	}

	if len(value) > MaxIdentifierLength {
		return fmt.Errorf("%w: %s exceeds %d characters", ErrInvalidIdentifier, field, MaxIdentifierLength)
	}

	if !identifierRegex.MatchString(value) {
		return fmt.Errorf("%w: %s contains forbidden characters", ErrInvalidIdentifier, field)
	}

	return nil
}

// ValidateText validates free-text fields such as descriptions and notes.
func ValidateText(field, value string, maxLen int) error {
	if len(value) > maxLen {
		return fmt.Errorf("%w: %s exceeds %d characters", ErrTextTooLong, field, maxLen)
	}
	return nil
}

// ValidateScheduleTerms checks the inputs to schedule generation. It runs
// before anything is generated or stored.
func ValidateScheduleTerms(start, end time.Time, total decimal.Decimal, method SpreadMethod) error {
	if !method.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownSpreadMethod, string(method))
	}

	if !DateOf(end).After(DateOf(start)) {
		return fmt.Errorf("%w: start %s, end %s", ErrEndNotAfterStart, start.Format(DateLayout), end.Format(DateLayout))
	}

	if total.LessThanOrEqual(decimal.Zero) {
		return ErrNonPositiveTotal
	}

	if !total.Equal(Round2(total)) {
		return ErrAmountPrecision
	}

	maxAmount, _ := decimal.NewFromString(MaxScheduleAmount)
	if total.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrAmountTooLarge, MaxScheduleAmount)
	}

	if n := InclusiveMonthSpan(start, end); n > MaxScheduleMonths {
		return fmt.Errorf("%w: schedule spans %d months, maximum is %d", ErrValidation, n, MaxScheduleMonths)
	}

	return nil
}

// ValidateOverrideAmount checks a user-supplied monthly override.
func ValidateOverrideAmount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrNegativeOverride
	}
	if !amount.Equal(Round2(amount)) {
		return ErrAmountPrecision
	}
	return nil
}

// ValidatePagination validates and limits pagination parameters
func ValidatePagination(limit, offset int) (int, int, error) {
	const MaxPageSize = 1000
	const DefaultPageSize = 50

	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset, nil
}
