package usecase

import (
	"context"
	"errors"
)

var (
	// ErrInconsistentLedger is returned when a wallet or ledger entry breaks an invariant.
	ErrInconsistentLedger = errors.New("ledger is inconsistent: wallet totals or transaction snapshots do not add up")
)

// LedgerUseCase handles ledger-wide operations.
type LedgerUseCase struct {
	ledgerRepo LedgerRepository
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(ledgerRepo LedgerRepository) *LedgerUseCase {
	return &LedgerUseCase{
		ledgerRepo: ledgerRepo,
	}
}

// CheckConsistency counts wallets and transactions that break the ledger
// invariants. The report is returned together with ErrInconsistentLedger
// when any count is non-zero.
func (uc *LedgerUseCase) CheckConsistency(ctx context.Context) (*LedgerConsistency, error) {
	report, err := uc.ledgerRepo.CheckConsistency(ctx)
	if err != nil {
		return nil, storageErr("ledger.check", err)
	}

	// 1. balance == totalEarned - totalSpent for every wallet, never negative
	if report.DriftedWallets > 0 || report.NegativeWallets > 0 {
		return report, ErrInconsistentLedger
	}

	// 2. balanceAfter == balanceBefore +/- amount for every transaction
	if report.InvalidSnapshots > 0 {
		return report, ErrInconsistentLedger
	}

	// 3. The per-wallet rule must also hold in aggregate
	if report.TotalBalance != report.TotalEarnedMinusSpent {
		return report, ErrInconsistentLedger
	}

	return report, nil
}
