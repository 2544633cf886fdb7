package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/iho/rentledger/internal/domain"
	"github.com/iho/rentledger/internal/usecase"
)

const walletColumns = `id, user_id, balance, total_earned, total_spent, created_at, updated_at`

// WalletRepository implements usecase.WalletRepository.
type WalletRepository struct {
	db DB
}

// NewWalletRepository creates a new WalletRepository.
func NewWalletRepository(db DB) *WalletRepository {
	return &WalletRepository{db: db}
}

// Create inserts a wallet outside any unit of work.
func (r *WalletRepository) Create(ctx context.Context, wallet *domain.Wallet) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO wallets (`+walletColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		wallet.ID,
		wallet.UserID,
		int64(wallet.Balance),
		int64(wallet.TotalEarned),
		int64(wallet.TotalSpent),
		wallet.CreatedAt,
		wallet.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return domain.ErrWalletAlreadyExists
	}

	return err
}

// CreateIfNotExists inserts the wallet unless the user already has one.
// A concurrent insert for the same user blocks on the unique index until
// the other unit finishes.
func (r *WalletRepository) CreateIfNotExists(ctx context.Context, tx usecase.Transaction, wallet *domain.Wallet) (bool, error) {
	db, err := pgxTx(tx)
	if err != nil {
		return false, err
	}

	tag, err := db.Exec(ctx, `
		INSERT INTO wallets (`+walletColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id) DO NOTHING
	`,
		wallet.ID,
		wallet.UserID,
		int64(wallet.Balance),
		int64(wallet.TotalEarned),
		int64(wallet.TotalSpent),
		wallet.CreatedAt,
		wallet.UpdatedAt,
	)
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() == 1, nil
}

// GetByUserID retrieves the committed wallet of a user.
func (r *WalletRepository) GetByUserID(ctx context.Context, userID string) (*domain.Wallet, error) {
	row := r.db.QueryRow(ctx, `SELECT `+walletColumns+` FROM wallets WHERE user_id = $1`, userID)
	return scanWallet(row)
}

// GetByUserIDForUpdate retrieves the wallet with a FOR UPDATE lock.
func (r *WalletRepository) GetByUserIDForUpdate(ctx context.Context, tx usecase.Transaction, userID string) (*domain.Wallet, error) {
	db, err := pgxTx(tx)
	if err != nil {
		return nil, err
	}

	row := db.QueryRow(ctx, `SELECT `+walletColumns+` FROM wallets WHERE user_id = $1 FOR UPDATE`, userID)
	return scanWallet(row)
}

// UpdateBalances writes balance, total_earned and total_spent together.
func (r *WalletRepository) UpdateBalances(ctx context.Context, tx usecase.Transaction, wallet *domain.Wallet) error {
	db, err := pgxTx(tx)
	if err != nil {
		return err
	}

	tag, err := db.Exec(ctx, `
		UPDATE wallets
		SET balance = $2, total_earned = $3, total_spent = $4, updated_at = $5
		WHERE id = $1
	`,
		wallet.ID,
		int64(wallet.Balance),
		int64(wallet.TotalEarned),
		int64(wallet.TotalSpent),
		wallet.UpdatedAt,
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrWalletNotFound
	}

	return nil
}

func scanWallet(row pgx.Row) (*domain.Wallet, error) {
	var (
		w                      domain.Wallet
		balance, earned, spent int64
		createdAt, updatedAt   time.Time
	)

	err := row.Scan(&w.ID, &w.UserID, &balance, &earned, &spent, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrWalletNotFound
		}

		return nil, err
	}

	w.Balance = domain.Money(balance)
	w.TotalEarned = domain.Money(earned)
	w.TotalSpent = domain.Money(spent)
	w.CreatedAt = createdAt
	w.UpdatedAt = updatedAt

	return &w, nil
}
