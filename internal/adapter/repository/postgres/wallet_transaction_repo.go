package postgres

import (
	"context"

	"github.com/iho/rentledger/internal/domain"
	"github.com/iho/rentledger/internal/usecase"
)

// WalletTransactionRepository implements usecase.WalletTransactionRepository.
type WalletTransactionRepository struct {
	db DB
}

// NewWalletTransactionRepository creates a new WalletTransactionRepository.
func NewWalletTransactionRepository(db DB) *WalletTransactionRepository {
	return &WalletTransactionRepository{db: db}
}

// Create appends a ledger entry within a transaction.
func (r *WalletTransactionRepository) Create(ctx context.Context, tx usecase.Transaction, txn *domain.WalletTransaction) error {
	db, err := pgxTx(tx)
	if err != nil {
		return err
	}

	_, err = db.Exec(ctx, `
		INSERT INTO wallet_transactions (
			id, wallet_id, type, amount, balance_before, balance_after,
			reference_type, reference_id, description, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		txn.ID,
		txn.WalletID,
		string(txn.Type),
		int64(txn.Amount),
		int64(txn.BalanceBefore),
		int64(txn.BalanceAfter),
		string(txn.ReferenceType),
		txn.ReferenceID,
		txn.Description,
		txn.CreatedAt,
	)

	return err
}

// ListByWallet returns a page of ledger entries, newest first.
func (r *WalletTransactionRepository) ListByWallet(ctx context.Context, walletID string, limit, offset int) ([]*domain.WalletTransaction, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, wallet_id, type, amount, balance_before, balance_after,
		       reference_type, reference_id, description, created_at
		FROM wallet_transactions
		WHERE wallet_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`, walletID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	txns := make([]*domain.WalletTransaction, 0, limit)
	for rows.Next() {
		var (
			t                     domain.WalletTransaction
			txnType, refType      string
			amount, before, after int64
		)

		if err := rows.Scan(
			&t.ID,
			&t.WalletID,
			&txnType,
			&amount,
			&before,
			&after,
			&refType,
			&t.ReferenceID,
			&t.Description,
			&t.CreatedAt,
		); err != nil {
			return nil, err
		}

		t.Type = domain.TransactionType(txnType)
		t.ReferenceType = domain.ReferenceType(refType)
		t.Amount = domain.Money(amount)
		t.BalanceBefore = domain.Money(before)
		t.BalanceAfter = domain.Money(after)

		txns = append(txns, &t)
	}

	return txns, rows.Err()
}
