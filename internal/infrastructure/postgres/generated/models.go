package generated

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type AuditLog struct {
	ID           pgtype.UUID        `json:"id"`
	UserID       string             `json:"user_id"`
	Action       string             `json:"action"`
	ResourceType string             `json:"resource_type"`
	ResourceID   string             `json:"resource_id"`
	RequestID    string             `json:"request_id"`
	BeforeState  []byte             `json:"before_state"`
	AfterState   []byte             `json:"after_state"`
	Note         string             `json:"note"`
	CreatedAt    pgtype.Timestamptz `json:"created_at"`
}

type Item struct {
	ID           string             `json:"id"`
	ClientID     string             `json:"client_id"`
	AccountID    string             `json:"account_id"`
	Role         string             `json:"role"`
	Description  string             `json:"description"`
	Counterparty string             `json:"counterparty"`
	Reference    string             `json:"reference"`
	StartDate    pgtype.Date        `json:"start_date"`
	EndDate      pgtype.Date        `json:"end_date"`
	TotalAmount  pgtype.Numeric     `json:"total_amount"`
	SpreadMethod string             `json:"spread_method"`
	Status       string             `json:"status"`
	CreatedAt    pgtype.Timestamptz `json:"created_at"`
	UpdatedAt    pgtype.Timestamptz `json:"updated_at"`
}

type LedgerBalance struct {
	ClientID   string             `json:"client_id"`
	AccountID  string             `json:"account_id"`
	PeriodEnd  pgtype.Date        `json:"period_end"`
	Balance    pgtype.Numeric     `json:"balance"`
	Source     string             `json:"source"`
	RecordedAt pgtype.Timestamptz `json:"recorded_at"`
}

type ScheduleLine struct {
	ItemID         string         `json:"item_id"`
	MonthEndDate   pgtype.Date    `json:"month_end_date"`
	OpeningBalance pgtype.Numeric `json:"opening_balance"`
	MonthlyAmount  pgtype.Numeric `json:"monthly_amount"`
	ClosingBalance pgtype.Numeric `json:"closing_balance"`
	OriginalAmount pgtype.Numeric `json:"original_amount"`
	OverrideAmount pgtype.Numeric `json:"override_amount"`
	IsOverridden   bool           `json:"is_overridden"`
	AuditNote      pgtype.Text    `json:"audit_note"`
}
