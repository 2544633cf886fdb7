package postgres

import (
	"context"

	"github.com/iho/rentledger/internal/domain"
	"github.com/iho/rentledger/internal/usecase"
)

const checkConsistencyQuery = `
SELECT
	(SELECT COUNT(*) FROM wallets),
	(SELECT COUNT(*) FROM wallet_transactions),
	(SELECT COUNT(*) FROM wallets WHERE balance <> total_earned - total_spent),
	(SELECT COUNT(*) FROM wallets WHERE balance < 0),
	(SELECT COUNT(*) FROM wallet_transactions
	  WHERE (type = 'CREDIT' AND balance_after <> balance_before + amount)
	     OR (type = 'DEBIT' AND balance_after <> balance_before - amount)),
	(SELECT COALESCE(SUM(balance), 0)::BIGINT FROM wallets),
	(SELECT COALESCE(SUM(total_earned - total_spent), 0)::BIGINT FROM wallets)
`

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	db DB
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(db DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// CheckConsistency counts invariant violations in one snapshot.
func (r *LedgerRepository) CheckConsistency(ctx context.Context) (*usecase.LedgerConsistency, error) {
	var (
		report             usecase.LedgerConsistency
		totalBalance, diff int64
	)

	err := r.db.QueryRow(ctx, checkConsistencyQuery).Scan(
		&report.WalletCount,
		&report.TransactionCount,
		&report.DriftedWallets,
		&report.NegativeWallets,
		&report.InvalidSnapshots,
		&totalBalance,
		&diff,
	)
	if err != nil {
		return nil, err
	}

	report.TotalBalance = domain.Money(totalBalance)
	report.TotalEarnedMinusSpent = domain.Money(diff)

	return &report, nil
}
