package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/iho/balancesheet/internal/domain"
)

// ErrCacheMiss is returned by Cache.Get when the key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

// ItemRepository defines data access for schedulable items.
type ItemRepository interface {
	Create(ctx context.Context, tx Transaction, item *domain.Item) error
	GetByID(ctx context.Context, id string) (*domain.Item, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Item, error)
	UpdateStatus(ctx context.Context, tx Transaction, id string, status domain.ItemStatus, updatedAt time.Time) error
	Delete(ctx context.Context, tx Transaction, id string) error
	List(ctx context.Context, filter domain.ItemFilter) ([]*domain.Item, error)
}

// ScheduleLineRepository defines data access for schedule lines.
type ScheduleLineRepository interface {
	// Insert stores the lines of a freshly generated schedule.
	Insert(ctx context.Context, tx Transaction, itemID string, lines []domain.ScheduleLine) error
	// Replace overwrites every line of the item's schedule.
	Replace(ctx context.Context, tx Transaction, itemID string, lines []domain.ScheduleLine) error
	ListByItem(ctx context.Context, itemID string) ([]domain.ScheduleLine, error)
	ListByItemTx(ctx context.Context, tx Transaction, itemID string) ([]domain.ScheduleLine, error)
	ListByItems(ctx context.Context, itemIDs []string) (map[string][]domain.ScheduleLine, error)
}

// LedgerBalanceRepository defines data access for recorded ledger balances.
type LedgerBalanceRepository interface {
	Upsert(ctx context.Context, balance *domain.LedgerBalance) error
	Get(ctx context.Context, clientID, accountID string, periodEnd time.Time) (*domain.LedgerBalance, error)
	ListFrom(ctx context.Context, clientID, accountID string, from time.Time) ([]*domain.LedgerBalance, error)
}

// AuditRepository defines data access for audit logs.
type AuditRepository interface {
	CreateTx(ctx context.Context, tx Transaction, log *domain.AuditLog) error
	List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error)
	GetByResourceID(ctx context.Context, resourceType, resourceID string) ([]*domain.AuditLog, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs an operation that failed with a transient storage error.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache defines caching operations.
type Cache interface {
	// Get returns ErrCacheMiss when the key is not present.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// DeletePrefix removes every key starting with prefix.
	DeletePrefix(ctx context.Context, prefix string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a claimed key so the request can be retried.
	Release(ctx context.Context, key string) error
}
