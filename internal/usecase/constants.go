package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	// This prevents long-running transactions from blocking tables
	DefaultTransactionTimeout = 10 * time.Second

	// DefaultGridCacheTTL is how long a projected grid stays cached
	DefaultGridCacheTTL = 5 * time.Minute

	// ItemPageSize is how many items a grid or recognition run loads per query
	ItemPageSize = 500

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// SystemUserID is recorded on audit logs when no preparer is known
	SystemUserID = "system"
)
