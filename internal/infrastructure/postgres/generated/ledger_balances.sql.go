package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const getLedgerBalance = `-- name: GetLedgerBalance :one
SELECT client_id, account_id, period_end, balance, source, recorded_at FROM ledger_balances WHERE client_id = $1 AND account_id = $2 AND period_end = $3
`

type GetLedgerBalanceParams struct {
	ClientID  string      `json:"client_id"`
	AccountID string      `json:"account_id"`
	PeriodEnd pgtype.Date `json:"period_end"`
}

func (q *Queries) GetLedgerBalance(ctx context.Context, arg GetLedgerBalanceParams) (LedgerBalance, error) {
	row := q.db.QueryRow(ctx, getLedgerBalance, arg.ClientID, arg.AccountID, arg.PeriodEnd)
	var i LedgerBalance
	err := row.Scan(
		&i.ClientID,
		&i.AccountID,
		&i.PeriodEnd,
		&i.Balance,
		&i.Source,
		&i.RecordedAt,
	)
	return i, err
}

const listLedgerBalancesFrom = `-- name: ListLedgerBalancesFrom :many
SELECT client_id, account_id, period_end, balance, source, recorded_at FROM ledger_balances
WHERE client_id = $1 AND account_id = $2 AND period_end >= $3
ORDER BY period_end
`

type ListLedgerBalancesFromParams struct {
	ClientID  string      `json:"client_id"`
	AccountID string      `json:"account_id"`
	PeriodEnd pgtype.Date `json:"period_end"`
}

func (q *Queries) ListLedgerBalancesFrom(ctx context.Context, arg ListLedgerBalancesFromParams) ([]LedgerBalance, error) {
	rows, err := q.db.Query(ctx, listLedgerBalancesFrom, arg.ClientID, arg.AccountID, arg.PeriodEnd)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []LedgerBalance
	for rows.Next() {
		var i LedgerBalance
		if err := rows.Scan(
			&i.ClientID,
			&i.AccountID,
			&i.PeriodEnd,
			&i.Balance,
			&i.Source,
			&i.RecordedAt,
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

const upsertLedgerBalance = `-- name: UpsertLedgerBalance :exec
INSERT INTO ledger_balances (client_id, account_id, period_end, balance, source, recorded_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (client_id, account_id, period_end)
DO UPDATE SET balance = EXCLUDED.balance, source = EXCLUDED.source, recorded_at = EXCLUDED.recorded_at
`

type UpsertLedgerBalanceParams struct {
	ClientID   string             `json:"client_id"`
	AccountID  string             `json:"account_id"`
	PeriodEnd  pgtype.Date        `json:"period_end"`
	Balance    pgtype.Numeric     `json:"balance"`
	Source     string             `json:"source"`
	RecordedAt pgtype.Timestamptz `json:"recorded_at"`
}

func (q *Queries) UpsertLedgerBalance(ctx context.Context, arg UpsertLedgerBalanceParams) error {
	_, err := q.db.Exec(ctx, upsertLedgerBalance,
		arg.ClientID,
		arg.AccountID,
		arg.PeriodEnd,
		arg.Balance,
		arg.Source,
		arg.RecordedAt,
	)
	return err
}
