package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const deleteScheduleLinesByItem = `-- name: DeleteScheduleLinesByItem :exec
DELETE FROM schedule_lines WHERE item_id = $1
`

func (q *Queries) DeleteScheduleLinesByItem(ctx context.Context, itemID string) error {
	_, err := q.db.Exec(ctx, deleteScheduleLinesByItem, itemID)
	return err
}

type InsertScheduleLinesParams struct {
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

type InsertScheduleLinesBaseParams struct {
	ItemID         string         `json:"item_id"`
	MonthEndDate   pgtype.Date    `json:"month_end_date"`
	OpeningBalance pgtype.Numeric `json:"opening_balance"`
	MonthlyAmount  pgtype.Numeric `json:"monthly_amount"`
	ClosingBalance pgtype.Numeric `json:"closing_balance"`
	OriginalAmount pgtype.Numeric `json:"original_amount"`
}

const listScheduleLinesByItem = `-- name: ListScheduleLinesByItem :many
SELECT item_id, month_end_date, opening_balance, monthly_amount, closing_balance, original_amount, override_amount, is_overridden, audit_note FROM schedule_lines WHERE item_id = $1 ORDER BY month_end_date
`

func (q *Queries) ListScheduleLinesByItem(ctx context.Context, itemID string) ([]ScheduleLine, error) {
	rows, err := q.db.Query(ctx, listScheduleLinesByItem, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ScheduleLine
	for rows.Next() {
		var i ScheduleLine
		if err := rows.Scan(
			&i.ItemID,
			&i.MonthEndDate,
			&i.OpeningBalance,
			&i.MonthlyAmount,
			&i.ClosingBalance,
			&i.OriginalAmount,
			&i.OverrideAmount,
			&i.IsOverridden,
			&i.AuditNote,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listScheduleLinesByItemBase = `-- name: ListScheduleLinesByItemBase :many
SELECT item_id, month_end_date, opening_balance, monthly_amount, closing_balance, original_amount
FROM schedule_lines WHERE item_id = $1 ORDER BY month_end_date
`

type ListScheduleLinesByItemBaseRow struct {
	ItemID         string         `json:"item_id"`
	MonthEndDate   pgtype.Date    `json:"month_end_date"`
	OpeningBalance pgtype.Numeric `json:"opening_balance"`
	MonthlyAmount  pgtype.Numeric `json:"monthly_amount"`
	ClosingBalance pgtype.Numeric `json:"closing_balance"`
	OriginalAmount pgtype.Numeric `json:"original_amount"`
}

func (q *Queries) ListScheduleLinesByItemBase(ctx context.Context, itemID string) ([]ListScheduleLinesByItemBaseRow, error) {
	rows, err := q.db.Query(ctx, listScheduleLinesByItemBase, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListScheduleLinesByItemBaseRow
	for rows.Next() {
		var i ListScheduleLinesByItemBaseRow
		if err := rows.Scan(
			&i.ItemID,
			&i.MonthEndDate,
			&i.OpeningBalance,
			&i.MonthlyAmount,
			&i.ClosingBalance,
			&i.OriginalAmount,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listScheduleLinesByItems = `-- name: ListScheduleLinesByItems :many
SELECT item_id, month_end_date, opening_balance, monthly_amount, closing_balance, original_amount, override_amount, is_overridden, audit_note FROM schedule_lines WHERE item_id = ANY($1::varchar[]) ORDER BY item_id, month_end_date
`

func (q *Queries) ListScheduleLinesByItems(ctx context.Context, dollar_1 []string) ([]ScheduleLine, error) {
	rows, err := q.db.Query(ctx, listScheduleLinesByItems, dollar_1)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ScheduleLine
	for rows.Next() {
		var i ScheduleLine
		if err := rows.Scan(
			&i.ItemID,
			&i.MonthEndDate,
			&i.OpeningBalance,
			&i.MonthlyAmount,
			&i.ClosingBalance,
			&i.OriginalAmount,
			&i.OverrideAmount,
			&i.IsOverridden,
			&i.AuditNote,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listScheduleLinesByItemsBase = `-- name: ListScheduleLinesByItemsBase :many
SELECT item_id, month_end_date, opening_balance, monthly_amount, closing_balance, original_amount
FROM schedule_lines WHERE item_id = ANY($1::varchar[]) ORDER BY item_id, month_end_date
`

type ListScheduleLinesByItemsBaseRow struct {
	ItemID         string         `json:"item_id"`
	MonthEndDate   pgtype.Date    `json:"month_end_date"`
	OpeningBalance pgtype.Numeric `json:"opening_balance"`
	MonthlyAmount  pgtype.Numeric `json:"monthly_amount"`
	ClosingBalance pgtype.Numeric `json:"closing_balance"`
	OriginalAmount pgtype.Numeric `json:"original_amount"`
}

func (q *Queries) ListScheduleLinesByItemsBase(ctx context.Context, dollar_1 []string) ([]ListScheduleLinesByItemsBaseRow, error) {
	rows, err := q.db.Query(ctx, listScheduleLinesByItemsBase, dollar_1)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListScheduleLinesByItemsBaseRow
	for rows.Next() {
		var i ListScheduleLinesByItemsBaseRow
		if err := rows.Scan(
			&i.ItemID,
			&i.MonthEndDate,
			&i.OpeningBalance,
			&i.MonthlyAmount,
			&i.ClosingBalance,
			&i.OriginalAmount,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
