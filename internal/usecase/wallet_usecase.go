package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/rentledger/internal/domain"
)

// WalletUseCase owns get-or-create access to wallets and their history.
type WalletUseCase struct {
	walletRepo WalletRepository
	txnRepo    WalletTransactionRepository
	idGen      IDGenerator
	cache      WalletCache
	logger     zerolog.Logger
}

// NewWalletUseCase creates a new WalletUseCase.
func NewWalletUseCase(
	walletRepo WalletRepository,
	txnRepo WalletTransactionRepository,
	idGen IDGenerator,
) *WalletUseCase {
	return &WalletUseCase{
		walletRepo: walletRepo,
		txnRepo:    txnRepo,
		idGen:      idGen,
		logger:     zerolog.Nop(),
	}
}

// WithCache enables the read-through wallet summary cache.
func (uc *WalletUseCase) WithCache(cache WalletCache) *WalletUseCase {
	uc.cache = cache
	return uc
}

// WithLogger sets the logger.
func (uc *WalletUseCase) WithLogger(logger zerolog.Logger) *WalletUseCase {
	uc.logger = logger
	return uc
}

// GetOrCreateWallet returns the user's wallet, creating a zeroed one on
// first access. A concurrent create by the same user is resolved by
// re-fetching the winner's row.
func (uc *WalletUseCase) GetOrCreateWallet(ctx context.Context, userID string) (*domain.Wallet, error) {
	if err := domain.ValidateID(userID); err != nil {
		return nil, err
	}

	if cached := uc.fromCache(ctx, userID); cached != nil {
		return cached, nil
	}

	wallet, err := uc.walletRepo.GetByUserID(ctx, userID)
	if err == nil {
		uc.toCache(ctx, wallet)
		return wallet, nil
	}

	if !errors.Is(err, domain.ErrWalletNotFound) {
		return nil, storageErr("wallet.get", err)
	}

	wallet = domain.NewWallet(uc.idGen.Generate(), userID, time.Now().UTC())

	err = uc.walletRepo.Create(ctx, wallet)
	if errors.Is(err, domain.ErrWalletAlreadyExists) {
		wallet, err = uc.walletRepo.GetByUserID(ctx, userID)
		if err != nil {
			return nil, storageErr("wallet.refetch", err)
		}
	} else if err != nil {
		return nil, storageErr("wallet.create", err)
	} else {
		uc.logger.Info().Str("user_id", userID).Str("wallet_id", wallet.ID).Msg("wallet created")
	}

	uc.toCache(ctx, wallet)

	return wallet, nil
}

// ListTransactionsInput represents input for listing wallet history.
type ListTransactionsInput struct {
	UserID string
	Limit  int
	Offset int
}

// ListTransactions returns the caller's wallet history, newest first.
func (uc *WalletUseCase) ListTransactions(ctx context.Context, input ListTransactionsInput) ([]*domain.WalletTransaction, error) {
	limit, offset, err := domain.ValidatePagination(input.Limit, input.Offset)
	if err != nil {
		return nil, err
	}

	wallet, err := uc.GetOrCreateWallet(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	txns, err := uc.txnRepo.ListByWallet(ctx, wallet.ID, limit, offset)
	if err != nil {
		return nil, storageErr("wallet_transaction.list", err)
	}

	return txns, nil
}

func (uc *WalletUseCase) fromCache(ctx context.Context, userID string) *domain.Wallet {
	if uc.cache == nil {
		return nil
	}

	wallet, err := uc.cache.Get(ctx, userID)
	if err != nil {
		uc.logger.Warn().Err(err).Str("user_id", userID).Msg("wallet cache read failed")
		return nil
	}

	return wallet
}

func (uc *WalletUseCase) toCache(ctx context.Context, wallet *domain.Wallet) {
	if uc.cache == nil {
		return
	}

	if err := uc.cache.Set(ctx, wallet); err != nil {
		uc.logger.Warn().Err(err).Str("user_id", wallet.UserID).Msg("wallet cache write failed")
	}
}

// lockWallet gets or creates the user's wallet inside tx and returns it
// locked for the rest of the unit.
func lockWallet(
	ctx context.Context,
	tx Transaction,
	walletRepo WalletRepository,
	idGen IDGenerator,
	userID string,
	now time.Time,
) (*domain.Wallet, error) {
	if _, err := walletRepo.CreateIfNotExists(ctx, tx, domain.NewWallet(idGen.Generate(), userID, now)); err != nil {
		return nil, storageErr("wallet.create", err)
	}

	wallet, err := walletRepo.GetByUserIDForUpdate(ctx, tx, userID)
	if err != nil {
		return nil, storageErr("wallet.lock", err)
	}

	return wallet, nil
}

// refreshWallet stores a just-committed wallet snapshot. If the write fails
// the entry is dropped instead so readers fall back to the database.
func refreshWallet(ctx context.Context, cache WalletCache, logger zerolog.Logger, wallet *domain.Wallet) {
	if cache == nil || wallet == nil {
		return
	}

	err := cache.Set(ctx, wallet)
	if err == nil {
		return
	}

	logger.Warn().Err(err).Str("user_id", wallet.UserID).Msg("wallet cache refresh failed")

	if err := cache.Invalidate(ctx, wallet.UserID); err != nil {
		logger.Warn().Err(err).Str("user_id", wallet.UserID).Msg("wallet cache invalidation failed")
	}
}
