package usecase

import "time"

const (
	// DefaultTransactionTimeout bounds a single atomic unit.
	DefaultTransactionTimeout = 10 * time.Second

	// DefaultReconcileLimit caps the candidates fetched by one reconciliation run.
	DefaultReconcileLimit = 1000

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour
)
