package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/balancesheet/internal/amortisation"
	"github.com/iho/balancesheet/internal/domain"
	"github.com/iho/balancesheet/internal/usecase"
)

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// ItemResponse represents an item in API responses.
type ItemResponse struct {
	ID             string    `json:"id"`
	ClientID       string    `json:"client_id"`
	AccountID      string    `json:"account_id"`
	Role           string    `json:"role"`
	AmountLabel    string    `json:"amount_label"`
	Description    string    `json:"description"`
	Counterparty   string    `json:"counterparty,omitempty"`
	Reference      string    `json:"reference,omitempty"`
	StartDate      string    `json:"start_date"`
	EndDate        string    `json:"end_date"`
	TotalAmount    string    `json:"total_amount"`
	SpreadMethod   string    `json:"spread_method"`
	Status         string    `json:"status"`
	NumberOfMonths int       `json:"number_of_months"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ItemFromDomain converts a domain item to a response.
func ItemFromDomain(i *domain.Item) *ItemResponse {
	return &ItemResponse{
		ID:             i.ID,
		ClientID:       i.ClientID,
		AccountID:      i.AccountID,
		Role:           string(i.Role),
		AmountLabel:    i.Role.Label(),
		Description:    i.Description,
		Counterparty:   i.Counterparty,
		Reference:      i.Reference,
		StartDate:      formatDate(i.StartDate),
		EndDate:        formatDate(i.EndDate),
		TotalAmount:    money(i.TotalAmount),
		SpreadMethod:   string(i.SpreadMethod),
		Status:         string(i.Status),
		NumberOfMonths: i.NumberOfMonths(),
		CreatedAt:      i.CreatedAt,
		UpdatedAt:      i.UpdatedAt,
	}
}

// ItemsFromDomain converts domain items to responses.
func ItemsFromDomain(items []*domain.Item) []*ItemResponse {
	result := make([]*ItemResponse, len(items))
	for i, item := range items {
		result[i] = ItemFromDomain(item)
	}
	return result
}

// ItemListResponse is a page of items.
type ItemListResponse struct {
	Items  []*ItemResponse `json:"items"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

// ScheduleLineResponse represents one month of a schedule.
type ScheduleLineResponse struct {
	MonthEnd       string  `json:"month_end"`
	OpeningBalance string  `json:"opening_balance"`
	MonthlyAmount  string  `json:"monthly_amount"`
	ClosingBalance string  `json:"closing_balance"`
	OriginalAmount string  `json:"original_amount"`
	OverrideAmount *string `json:"override_amount,omitempty"`
	IsOverridden   bool    `json:"is_overridden"`
	AuditNote      *string `json:"audit_note,omitempty"`
}

// LinesFromDomain converts schedule lines to responses.
func LinesFromDomain(lines []domain.ScheduleLine) []ScheduleLineResponse {
	result := make([]ScheduleLineResponse, len(lines))
	for i, l := range lines {
		result[i] = ScheduleLineResponse{
			MonthEnd:       formatDate(l.MonthEndDate),
			OpeningBalance: money(l.OpeningBalance),
			MonthlyAmount:  money(l.MonthlyAmount),
			ClosingBalance: money(l.ClosingBalance),
			OriginalAmount: money(l.OriginalAmount),
			IsOverridden:   l.IsOverridden,
			AuditNote:      l.AuditNote,
		}
		if l.OverrideAmount != nil {
			v := money(*l.OverrideAmount)
			result[i].OverrideAmount = &v
		}
	}
	return result
}

// ScheduleResponse is an item with its schedule.
type ScheduleResponse struct {
	Item  *ItemResponse          `json:"item"`
	Lines []ScheduleLineResponse `json:"lines"`
}

// ScheduleFromDomain converts an item schedule to a response.
func ScheduleFromDomain(s *domain.ItemSchedule) *ScheduleResponse {
	return &ScheduleResponse{
		Item:  ItemFromDomain(s.Item),
		Lines: LinesFromDomain(s.Lines),
	}
}

// PreviewResponse is a generated but unsaved schedule.
type PreviewResponse struct {
	Total string                 `json:"total"`
	Lines []ScheduleLineResponse `json:"lines"`
}

// PreviewFromDomain converts generated lines to a preview.
func PreviewFromDomain(lines []domain.ScheduleLine) *PreviewResponse {
	return &PreviewResponse{
		Total: money(domain.ScheduleTotal(lines)),
		Lines: LinesFromDomain(lines),
	}
}

// VarianceResponse represents a variance calculation.
type VarianceResponse struct {
	LedgerBalance   string `json:"ledger_balance"`
	ComparisonTotal string `json:"comparison_total"`
	VarianceAmount  string `json:"variance_amount"`
	Tolerance       string `json:"tolerance"`
	IsReconciled    bool   `json:"is_reconciled"`
}

// VarianceFromDomain converts a variance result to a response.
func VarianceFromDomain(v *domain.VarianceResult) *VarianceResponse {
	if v == nil {
		return nil
	}
	return &VarianceResponse{
		LedgerBalance:   money(v.LedgerBalance),
		ComparisonTotal: money(v.ComparisonTotal),
		VarianceAmount:  money(v.VarianceAmount),
		Tolerance:       string(v.Tolerance),
		IsReconciled:    v.IsReconciled,
	}
}

// GridColumnResponse is one month-end column of the grid.
type GridColumnResponse struct {
	MonthEnd        string            `json:"month_end"`
	TotalRecognised string            `json:"total_recognised"`
	ClosingBalance  string            `json:"closing_balance"`
	Variance        *VarianceResponse `json:"variance,omitempty"`
}

// GridCellResponse is one item's values in one column.
type GridCellResponse struct {
	MonthlyAmount  string `json:"monthly_amount"`
	ClosingBalance string `json:"closing_balance"`
	InSchedule     bool   `json:"in_schedule"`
}

// GridRowResponse is one item's row of the grid.
type GridRowResponse struct {
	Item  *ItemResponse      `json:"item"`
	Cells []GridCellResponse `json:"cells"`
}

// GridResponse is the amortisation grid of an account.
type GridResponse struct {
	ClientID      string               `json:"client_id"`
	AccountID     string               `json:"account_id"`
	ViewingPeriod string               `json:"viewing_period"`
	Columns       []GridColumnResponse `json:"columns"`
	Rows          []GridRowResponse    `json:"rows"`
	GeneratedAt   time.Time            `json:"generated_at"`
}

// GridFromReport converts a grid report to a response.
func GridFromReport(r *usecase.GridReport) *GridResponse {
	resp := &GridResponse{
		ClientID:      r.ClientID,
		AccountID:     r.AccountID,
		ViewingPeriod: formatDate(r.Grid.ViewingPeriod),
		Columns:       make([]GridColumnResponse, len(r.Grid.Columns)),
		Rows:          make([]GridRowResponse, len(r.Grid.Rows)),
		GeneratedAt:   r.GeneratedAt,
	}

	for i, c := range r.Grid.Columns {
		resp.Columns[i] = GridColumnResponse{
			MonthEnd:        formatDate(c.MonthEnd),
			TotalRecognised: money(c.TotalRecognised),
			ClosingBalance:  money(c.ClosingBalance),
		}
		if i < len(r.Variances) {
			resp.Columns[i].Variance = VarianceFromDomain(r.Variances[i])
		}
	}

	for i, row := range r.Grid.Rows {
		resp.Rows[i] = GridRowResponse{Cells: cellsFromGrid(row.Cells)}
		if i < len(r.Items) && r.Items[i] != nil {
			resp.Rows[i].Item = ItemFromDomain(r.Items[i])
		}
	}

	return resp
}

func cellsFromGrid(cells []amortisation.Cell) []GridCellResponse {
	result := make([]GridCellResponse, len(cells))
	for i, c := range cells {
		result[i] = GridCellResponse{
			MonthlyAmount:  money(c.MonthlyAmount),
			ClosingBalance: money(c.ClosingBalance),
			InSchedule:     c.InSchedule,
		}
	}
	return result
}

// LedgerBalanceResponse represents a recorded ledger balance.
type LedgerBalanceResponse struct {
	ClientID   string    `json:"client_id"`
	AccountID  string    `json:"account_id"`
	PeriodEnd  string    `json:"period_end"`
	Balance    string    `json:"balance"`
	Source     string    `json:"source,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}

// LedgerBalanceFromDomain converts a ledger balance to a response.
func LedgerBalanceFromDomain(b *domain.LedgerBalance) *LedgerBalanceResponse {
	return &LedgerBalanceResponse{
		ClientID:   b.ClientID,
		AccountID:  b.AccountID,
		PeriodEnd:  formatDate(b.PeriodEnd),
		Balance:    money(b.Balance),
		Source:     b.Source,
		RecordedAt: b.RecordedAt,
	}
}

// AuditLogResponse represents an audit trail entry.
type AuditLogResponse struct {
	ID           string         `json:"id"`
	UserID       string         `json:"user_id"`
	Action       string         `json:"action"`
	ResourceType string         `json:"resource_type"`
	ResourceID   string         `json:"resource_id"`
	RequestID    string         `json:"request_id,omitempty"`
	BeforeState  map[string]any `json:"before_state,omitempty"`
	AfterState   map[string]any `json:"after_state,omitempty"`
	Note         string         `json:"note,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

// AuditLogsFromDomain converts audit logs to responses.
func AuditLogsFromDomain(logs []*domain.AuditLog) []*AuditLogResponse {
	result := make([]*AuditLogResponse, len(logs))
	for i, l := range logs {
		result[i] = &AuditLogResponse{
			ID:           l.ID,
			UserID:       l.UserID,
			Action:       string(l.Action),
			ResourceType: l.ResourceType,
			ResourceID:   l.ResourceID,
			RequestID:    l.RequestID,
			BeforeState:  l.BeforeState,
			AfterState:   l.AfterState,
			Note:         l.Note,
			CreatedAt:    l.CreatedAt,
		}
	}
	return result
}

func money(d decimal.Decimal) string {
	return d.StringFixed(domain.MoneyPlaces)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(domain.DateLayout)
}
