package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createItem = `-- name: CreateItem :exec
INSERT INTO items (
    id, client_id, account_id, role, description, counterparty, reference,
    start_date, end_date, total_amount, spread_method, status, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
`

type CreateItemParams struct {
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

func (q *Queries) CreateItem(ctx context.Context, arg CreateItemParams) error {
	_, err := q.db.Exec(ctx, createItem,
		arg.ID,
		arg.ClientID,
		arg.AccountID,
		arg.Role,
		arg.Description,
		arg.Counterparty,
		arg.Reference,
		arg.StartDate,
		arg.EndDate,
		arg.TotalAmount,
		arg.SpreadMethod,
		arg.Status,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const deleteItem = `-- name: DeleteItem :execrows
DELETE FROM items WHERE id = $1
`

func (q *Queries) DeleteItem(ctx context.Context, id string) (int64, error) {
	result, err := q.db.Exec(ctx, deleteItem, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const getItemByID = `-- name: GetItemByID :one
SELECT id, client_id, account_id, role, description, counterparty, reference, start_date, end_date, total_amount, spread_method, status, created_at, updated_at FROM items WHERE id = $1
`

func (q *Queries) GetItemByID(ctx context.Context, id string) (Item, error) {
	row := q.db.QueryRow(ctx, getItemByID, id)
	var i Item
	err := row.Scan(
		&i.ID,
		&i.ClientID,
		&i.AccountID,
		&i.Role,
		&i.Description,
		&i.Counterparty,
		&i.Reference,
		&i.StartDate,
		&i.EndDate,
		&i.TotalAmount,
		&i.SpreadMethod,
		&i.Status,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getItemByIDForUpdate = `-- name: GetItemByIDForUpdate :one
SELECT id, client_id, account_id, role, description, counterparty, reference, start_date, end_date, total_amount, spread_method, status, created_at, updated_at FROM items WHERE id = $1 FOR UPDATE
`

func (q *Queries) GetItemByIDForUpdate(ctx context.Context, id string) (Item, error) {
	row := q.db.QueryRow(ctx, getItemByIDForUpdate, id)
	var i Item
	err := row.Scan(
		&i.ID,
		&i.ClientID,
		&i.AccountID,
		&i.Role,
		&i.Description,
		&i.Counterparty,
		&i.Reference,
		&i.StartDate,
		&i.EndDate,
		&i.TotalAmount,
		&i.SpreadMethod,
		&i.Status,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listItems = `-- name: ListItems :many
SELECT id, client_id, account_id, role, description, counterparty, reference, start_date, end_date, total_amount, spread_method, status, created_at, updated_at FROM items
WHERE ($1::varchar IS NULL OR client_id = $1)
  AND ($2::varchar IS NULL OR account_id = $2)
  AND ($3::varchar IS NULL OR role = $3)
  AND ($4::varchar IS NULL OR status = $4)
ORDER BY start_date, id
LIMIT $5 OFFSET $6
`

type ListItemsParams struct {
	ClientID  pgtype.Text `json:"client_id"`
	AccountID pgtype.Text `json:"account_id"`
	Role      pgtype.Text `json:"role"`
	Status    pgtype.Text `json:"status"`
	Limit     int32       `json:"limit"`
	Offset    int32       `json:"offset"`
}

func (q *Queries) ListItems(ctx context.Context, arg ListItemsParams) ([]Item, error) {
	rows, err := q.db.Query(ctx, listItems,
		arg.ClientID,
		arg.AccountID,
		arg.Role,
		arg.Status,
		arg.Limit,
		arg.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Item
	for rows.Next() {
		var i Item
		if err := rows.Scan(
			&i.ID,
			&i.ClientID,
			&i.AccountID,
			&i.Role,
			&i.Description,
			&i.Counterparty,
			&i.Reference,
			&i.StartDate,
			&i.EndDate,
			&i.TotalAmount,
			&i.SpreadMethod,
			&i.Status,
			&i.CreatedAt,
			&i.UpdatedAt,
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

const updateItemStatus = `-- name: UpdateItemStatus :execrows
UPDATE items SET status = $2, updated_at = $3 WHERE id = $1
`

type UpdateItemStatusParams struct {
	ID        string             `json:"id"`
	Status    string             `json:"status"`
	UpdatedAt pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) UpdateItemStatus(ctx context.Context, arg UpdateItemStatusParams) (int64, error) {
	result, err := q.db.Exec(ctx, updateItemStatus, arg.ID, arg.Status, arg.UpdatedAt)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
