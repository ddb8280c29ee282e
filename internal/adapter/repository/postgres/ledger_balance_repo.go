package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/balancesheet/internal/domain"
	"github.com/iho/balancesheet/internal/infrastructure/postgres/generated"
)

// LedgerBalanceRepository implements usecase.LedgerBalanceRepository.
type LedgerBalanceRepository struct {
	queries *generated.Queries
}

// NewLedgerBalanceRepository creates a new LedgerBalanceRepository.
func NewLedgerBalanceRepository(pool *pgxpool.Pool) *LedgerBalanceRepository {
	return newLedgerBalanceRepository(pool)
}

func newLedgerBalanceRepository(db generated.DBTX) *LedgerBalanceRepository {
	return &LedgerBalanceRepository{queries: generated.New(db)}
}

// Upsert records the balance, replacing any earlier one for the period.
func (r *LedgerBalanceRepository) Upsert(ctx context.Context, balance *domain.LedgerBalance) error {
	return r.queries.UpsertLedgerBalance(ctx, generated.UpsertLedgerBalanceParams{
		ClientID:   balance.ClientID,
		AccountID:  balance.AccountID,
		PeriodEnd:  timeToPgDate(balance.PeriodEnd),
		Balance:    decimalToNumeric(balance.Balance),
		Source:     balance.Source,
		RecordedAt: timeToPgTimestamptz(balance.RecordedAt),
	})
}

// Get retrieves the balance recorded for a period end.
func (r *LedgerBalanceRepository) Get(ctx context.Context, clientID, accountID string, periodEnd time.Time) (*domain.LedgerBalance, error) {
	row, err := r.queries.GetLedgerBalance(ctx, generated.GetLedgerBalanceParams{
		ClientID:  clientID,
		AccountID: accountID,
		PeriodEnd: timeToPgDate(periodEnd),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLedgerBalanceNotFound
		}

		return nil, err
	}

	return rowToLedgerBalance(row), nil
}

// ListFrom retrieves balances for period ends on or after from.
func (r *LedgerBalanceRepository) ListFrom(ctx context.Context, clientID, accountID string, from time.Time) ([]*domain.LedgerBalance, error) {
	rows, err := r.queries.ListLedgerBalancesFrom(ctx, generated.ListLedgerBalancesFromParams{
		ClientID:  clientID,
		AccountID: accountID,
		PeriodEnd: timeToPgDate(from),
	})
	if err != nil {
		return nil, err
	}

	balances := make([]*domain.LedgerBalance, len(rows))
	for i, row := range rows {
		balances[i] = rowToLedgerBalance(row)
	}

	return balances, nil
}

func rowToLedgerBalance(row generated.LedgerBalance) *domain.LedgerBalance {
	return &domain.LedgerBalance{
		ClientID:   row.ClientID,
		AccountID:  row.AccountID,
		PeriodEnd:  pgDateToTime(row.PeriodEnd),
		Balance:    numericToDecimal(row.Balance),
		Source:     row.Source,
		RecordedAt: row.RecordedAt.Time,
	}
}
