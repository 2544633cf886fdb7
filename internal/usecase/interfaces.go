package usecase

import (
	"context"
	"time"

	"github.com/iho/rentledger/internal/domain"
)

// WalletRepository defines data access for wallets.
type WalletRepository interface {
	// Create inserts a new wallet. Returns domain.ErrWalletAlreadyExists when
	// the user already owns one.
	Create(ctx context.Context, wallet *domain.Wallet) error
	// CreateIfNotExists inserts the wallet inside tx unless one exists for
	// the user. Reports whether a row was inserted.
	CreateIfNotExists(ctx context.Context, tx Transaction, wallet *domain.Wallet) (bool, error)
	GetByUserID(ctx context.Context, userID string) (*domain.Wallet, error)
	GetByUserIDForUpdate(ctx context.Context, tx Transaction, userID string) (*domain.Wallet, error)
	UpdateBalances(ctx context.Context, tx Transaction, wallet *domain.Wallet) error
}

// WalletTransactionRepository defines data access for the append-only ledger.
type WalletTransactionRepository interface {
	Create(ctx context.Context, tx Transaction, txn *domain.WalletTransaction) error
	ListByWallet(ctx context.Context, walletID string, limit, offset int) ([]*domain.WalletTransaction, error)
}

// ListingRepository reads and stamps the listing fields the ledger owns.
type ListingRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Listing, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Listing, error)
	SetCommissionAmount(ctx context.Context, tx Transaction, id string, amount domain.Money, updatedAt time.Time) error
	AddImageSlots(ctx context.Context, tx Transaction, id string, count int, updatedAt time.Time) (int, error)
	ListUncredited(ctx context.Context, limit int) ([]*domain.Listing, error)
}

// SettingsRepository defines data access for the system settings store.
type SettingsRepository interface {
	Get(ctx context.Context, key string) (*domain.Setting, error)
	Upsert(ctx context.Context, setting *domain.Setting) error
}

// LedgerConsistency summarises invariant violations across all wallets.
type LedgerConsistency struct {
	WalletCount           int64
	TransactionCount      int64
	DriftedWallets        int64
	NegativeWallets       int64
	InvalidSnapshots      int64
	TotalBalance          domain.Money
	TotalEarnedMinusSpent domain.Money
}

// LedgerRepository defines data access for ledger-wide checks.
type LedgerRepository interface {
	CheckConsistency(ctx context.Context) (*LedgerConsistency, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// AuditRepository defines data access for audit logs.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
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

// Retrier re-runs a whole atomic unit on transient storage conflicts.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// WalletCache caches wallet summaries for read paths only.
type WalletCache interface {
	// Get returns nil, nil on a miss.
	Get(ctx context.Context, userID string) (*domain.Wallet, error)
	// Set keeps the cached entry when it has a higher Revision than wallet.
	Set(ctx context.Context, wallet *domain.Wallet) error
	Invalidate(ctx context.Context, userID string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops an in-flight key so the request can be retried.
	Release(ctx context.Context, key string) error
}

// LedgerMetrics receives counters from the engines.
type LedgerMetrics interface {
	RecordCredit(amount domain.Money)
	RecordDebit(amount domain.Money, slots int)
	RecordInsufficientFunds()
	RecordReconciliation(credited, skipped, errors int, duration time.Duration)
}

type nopMetrics struct{}

func (nopMetrics) RecordCredit(domain.Money) {}
func (nopMetrics) RecordDebit(domain.Money, int) {}
func (nopMetrics) RecordInsufficientFunds() {}
func (nopMetrics) RecordReconciliation(int, int, int, time.Duration) {}

type noRetry struct{}

func (noRetry) Retry(_ context.Context, operation func() error) error {
	return operation()
}
