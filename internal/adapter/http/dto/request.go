package dto

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/balancesheet/internal/domain"
	"github.com/iho/balancesheet/internal/usecase"
)

// CreateItemRequest represents a request to create an item and its schedule.
type CreateItemRequest struct {
	ClientID     string `json:"client_id"`
	AccountID    string `json:"account_id"`
	Role         string `json:"role"`
	Description  string `json:"description"`
	Counterparty string `json:"counterparty,omitempty"`
	Reference    string `json:"reference,omitempty"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	TotalAmount  string `json:"total_amount"`
	SpreadMethod string `json:"spread_method"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateItemRequest) ToUseCaseInput() (usecase.CreateItemInput, error) {
	terms, err := parseTerms(r.StartDate, r.EndDate, r.TotalAmount)
	if err != nil {
		return usecase.CreateItemInput{}, err
	}

	return usecase.CreateItemInput{
		ClientID:     strings.TrimSpace(r.ClientID),
		AccountID:    strings.TrimSpace(r.AccountID),
		Role:         domain.Role(r.Role),
		Description:  r.Description,
		Counterparty: r.Counterparty,
		Reference:    r.Reference,
		StartDate:    terms.start,
		EndDate:      terms.end,
		TotalAmount:  terms.total,
		SpreadMethod: spreadMethodOrDefault(r.SpreadMethod),
	}, nil
}

// PreviewRequest asks for a schedule without storing it.
type PreviewRequest struct {
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	TotalAmount  string `json:"total_amount"`
	SpreadMethod string `json:"spread_method"`
}

// PreviewInput is a parsed PreviewRequest.
type PreviewInput struct {
	StartDate    time.Time
	EndDate      time.Time
	TotalAmount  decimal.Decimal
	SpreadMethod domain.SpreadMethod
}

// Parse converts the request to typed values.
func (r *PreviewRequest) Parse() (PreviewInput, error) {
	terms, err := parseTerms(r.StartDate, r.EndDate, r.TotalAmount)
	if err != nil {
		return PreviewInput{}, err
	}
	return PreviewInput{
		StartDate:    terms.start,
		EndDate:      terms.end,
		TotalAmount:  terms.total,
		SpreadMethod: spreadMethodOrDefault(r.SpreadMethod),
	}, nil
}

// OverrideLineRequest sets the amount of one schedule month.
type OverrideLineRequest struct {
	Amount string `json:"amount"`
	Note   string `json:"note,omitempty"`
}

// ToUseCaseInput converts to use case input for the item and month in the URL.
func (r *OverrideLineRequest) ToUseCaseInput(itemID, monthEnd string) (usecase.OverrideLineInput, error) {
	month, err := parseDate("month_end", monthEnd)
	if err != nil {
		return usecase.OverrideLineInput{}, err
	}
	amount, err := parseAmount("amount", r.Amount)
	if err != nil {
		return usecase.OverrideLineInput{}, err
	}
	return usecase.OverrideLineInput{
		ItemID:   itemID,
		MonthEnd: month,
		Amount:   amount,
		Note:     r.Note,
	}, nil
}

// RecordLedgerBalanceRequest records the ledger balance of a period.
type RecordLedgerBalanceRequest struct {
	Balance string `json:"balance"`
	Source  string `json:"source,omitempty"`
}

// ToUseCaseInput converts to use case input for the account and period in the URL.
func (r *RecordLedgerBalanceRequest) ToUseCaseInput(clientID, accountID, periodEnd string) (usecase.RecordLedgerBalanceInput, error) {
	period, err := parseDate("period_end", periodEnd)
	if err != nil {
		return usecase.RecordLedgerBalanceInput{}, err
	}
	balance, err := parseAmount("balance", r.Balance)
	if err != nil {
		return usecase.RecordLedgerBalanceInput{}, err
	}
	return usecase.RecordLedgerBalanceInput{
		ClientID:  clientID,
		AccountID: accountID,
		PeriodEnd: period,
		Balance:   balance,
		Source:    r.Source,
	}, nil
}

// CompareTotalRequest compares an external total with a ledger balance.
// When ledger_balance is omitted the recorded balance of the period is used.
type CompareTotalRequest struct {
	ClientID        string  `json:"client_id,omitempty"`
	AccountID       string  `json:"account_id,omitempty"`
	PeriodEnd       string  `json:"period_end,omitempty"`
	LedgerBalance   *string `json:"ledger_balance,omitempty"`
	ComparisonTotal string  `json:"comparison_total"`
	Tolerance       string  `json:"tolerance"`
}

// ToUseCaseInput converts to use case input.
func (r *CompareTotalRequest) ToUseCaseInput() (usecase.CompareTotalInput, error) {
	total, err := parseAmount("comparison_total", r.ComparisonTotal)
	if err != nil {
		return usecase.CompareTotalInput{}, err
	}

	input := usecase.CompareTotalInput{
		ClientID:        r.ClientID,
		AccountID:       r.AccountID,
		ComparisonTotal: total,
		Tolerance:       domain.ToleranceClass(r.Tolerance),
	}

	if r.LedgerBalance != nil {
		balance, err := parseAmount("ledger_balance", *r.LedgerBalance)
		if err != nil {
			return usecase.CompareTotalInput{}, err
		}
		input.LedgerBalance = &balance
		return input, nil
	}

	period, err := parseDate("period_end", r.PeriodEnd)
	if err != nil {
		return usecase.CompareTotalInput{}, err
	}
	input.PeriodEnd = period

	return input, nil
}

// RecogniseRequest moves ended items of an account to fully recognised.
type RecogniseRequest struct {
	PeriodEnd string `json:"period_end"`
}

type scheduleTerms struct {
	start time.Time
	end   time.Time
	total decimal.Decimal
}

func parseTerms(start, end, total string) (scheduleTerms, error) {
	var (
		t   scheduleTerms
		err error
	)
	if t.start, err = parseDate("start_date", start); err != nil {
		return t, err
	}
	if t.end, err = parseDate("end_date", end); err != nil {
		return t, err
	}
	if t.total, err = parseAmount("total_amount", total); err != nil {
		return t, err
	}
	return t, nil
}

func spreadMethodOrDefault(s string) domain.SpreadMethod {
	if s == "" {
		return domain.SpreadEqual
	}
	return domain.SpreadMethod(s)
}

// ParseDate parses a YYYY-MM-DD value from a request field.
func ParseDate(field, value string) (time.Time, error) {
	return parseDate(field, value)
}

func parseDate(field, value string) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return time.Time{}, fmt.Errorf("%w: %s is required", domain.ErrValidation, field)
	}
	t, err := domain.ParseDate(strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", field, err)
	}
	return t, nil
}

// parseAmount parses a decimal without rounding, so precision errors
// surface from validation instead of being silently absorbed.
func parseAmount(field, value string) (decimal.Decimal, error) {
	if strings.TrimSpace(value) == "" {
		return decimal.Zero, fmt.Errorf("%w: %s is required", domain.ErrValidation, field)
	}
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s is not a decimal: %q", domain.ErrValidation, field, value)
	}
	return d, nil
}
