package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/rentledger/internal/domain"
)

// RateResolver resolves the commission percentage for one operation.
type RateResolver interface {
	GetCommissionRate(ctx context.Context) (decimal.Decimal, error)
}

// CreditStatus is the outcome of a commission credit attempt.
type CreditStatus string

const (
	CreditStatusCredited        CreditStatus = "credited"
	CreditStatusAlreadyCredited CreditStatus = "already_credited"
)

// CreditResult describes a commission credit.
type CreditResult struct {
	Status        CreditStatus
	ListingID     string
	OwnerID       string
	WalletID      string
	TransactionID string
	Amount        domain.Money
	BalanceAfter  domain.Money

	wallet *domain.Wallet
}

// CommissionUseCase credits listing owners when a listing fee is paid.
type CommissionUseCase struct {
	txManager   TransactionManager
	retrier     Retrier
	walletRepo  WalletRepository
	txnRepo     WalletTransactionRepository
	listingRepo ListingRepository
	outboxRepo  OutboxRepository
	rates       RateResolver
	idGen       IDGenerator
	cache       WalletCache
	metrics     LedgerMetrics
	logger      zerolog.Logger
}

// NewCommissionUseCase creates a new CommissionUseCase.
func NewCommissionUseCase(
	txManager TransactionManager,
	retrier Retrier,
	walletRepo WalletRepository,
	txnRepo WalletTransactionRepository,
	listingRepo ListingRepository,
	outboxRepo OutboxRepository,
	rates RateResolver,
	idGen IDGenerator,
) *CommissionUseCase {
	if retrier == nil {
		retrier = noRetry{}
	}

	return &CommissionUseCase{
		txManager:   txManager,
		retrier:     retrier,
		walletRepo:  walletRepo,
		txnRepo:     txnRepo,
		listingRepo: listingRepo,
		outboxRepo:  outboxRepo,
		rates:       rates,
		idGen:       idGen,
		metrics:     nopMetrics{},
		logger:      zerolog.Nop(),
	}
}

// WithCache sets the wallet cache refreshed after each credit.
func (uc *CommissionUseCase) WithCache(cache WalletCache) *CommissionUseCase {
	uc.cache = cache
	return uc
}

// WithMetrics sets the metrics recorder.
func (uc *CommissionUseCase) WithMetrics(metrics LedgerMetrics) *CommissionUseCase {
	if metrics != nil {
		uc.metrics = metrics
	}
	return uc
}

// WithLogger sets the logger.
func (uc *CommissionUseCase) WithLogger(logger zerolog.Logger) *CommissionUseCase {
	uc.logger = logger
	return uc
}

// CreditCommission resolves the current rate and credits the listing owner.
func (uc *CommissionUseCase) CreditCommission(ctx context.Context, listingID string) (*CreditResult, error) {
	rate, err := uc.rates.GetCommissionRate(ctx)
	if err != nil {
		return nil, err
	}

	return uc.CreditCommissionAtRate(ctx, listingID, rate)
}

// CreditCommissionAtRate credits listingPrice * rate / 100 to the listing
// owner's wallet. The listing row lock, the already-credited check, the
// wallet update, the ledger entry and the listing stamp form one unit. A
// listing credited earlier returns Status already_credited and no error.
func (uc *CommissionUseCase) CreditCommissionAtRate(ctx context.Context, listingID string, rate decimal.Decimal) (*CreditResult, error) {
	if err := domain.ValidateID(listingID); err != nil {
		return nil, err
	}

	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(100)) {
		return nil, domain.ErrInvalidCommissionRate
	}

	var result *CreditResult
	err := uc.retrier.Retry(ctx, func() error {
		var err error
		result, err = uc.credit(ctx, listingID, rate)
		return err
	})

	if errors.Is(err, domain.ErrAlreadyCredited) {
		uc.logger.Debug().Str("listing_id", listingID).Msg("commission already credited")
		return &CreditResult{Status: CreditStatusAlreadyCredited, ListingID: listingID}, nil
	}
	if err != nil {
		return nil, err
	}

	refreshWallet(ctx, uc.cache, uc.logger, result.wallet)
	uc.metrics.RecordCredit(result.Amount)

	uc.logger.Info().
		Str("listing_id", listingID).
		Str("owner_id", result.OwnerID).
		Str("amount", result.Amount.String()).
		Str("rate", rate.String()).
		Msg("commission credited")

	return result, nil
}

func (uc *CommissionUseCase) credit(ctx context.Context, listingID string, rate decimal.Decimal) (*CreditResult, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, storageErr("tx.begin", err)
	}
	defer tx.Rollback(ctx)

	// 1. Lock the listing and re-check the idempotency guard
	listing, err := uc.listingRepo.GetByIDForUpdate(ctx, tx, listingID)
	if err != nil {
		return nil, storageErr("listing.lock", err)
	}

	if err := listing.ValidateCreditable(); err != nil {
		return nil, err
	}

	amount := domain.ComputeCommission(*listing.ListingPrice, rate)
	now := time.Now().UTC()

	result := &CreditResult{
		Status:    CreditStatusCredited,
		ListingID: listingID,
		OwnerID:   listing.OwnerID,
		Amount:    amount,
	}

	// 2. Credit the owner's wallet and append the ledger entry
	if amount.IsPositive() {
		wallet, err := lockWallet(ctx, tx, uc.walletRepo, uc.idGen, listing.OwnerID, now)
		if err != nil {
			return nil, err
		}

		before, after := wallet.ApplyCredit(amount, now)

		txn := &domain.WalletTransaction{
			ID:            uc.idGen.Generate(),
			WalletID:      wallet.ID,
			Type:          domain.TransactionTypeCredit,
			Amount:        amount,
			BalanceBefore: before,
			BalanceAfter:  after,
			ReferenceType: domain.ReferenceTypeListing,
			ReferenceID:   listingID,
			Description:   "Listing commission",
			CreatedAt:     now,
		}

		if err := txn.Validate(); err != nil {
			return nil, err
		}

		if err := uc.txnRepo.Create(ctx, tx, txn); err != nil {
			return nil, storageErr("wallet_transaction.create", err)
		}

		if err := uc.walletRepo.UpdateBalances(ctx, tx, wallet); err != nil {
			return nil, storageErr("wallet.update", err)
		}

		event := &domain.OutboxEvent{
			ID:            uc.idGen.Generate(),
			AggregateID:   wallet.ID,
			AggregateType: domain.AggregateTypeWallet,
			EventType:     domain.EventTypeWalletCredited,
			Payload: domain.MarshalState(domain.WalletCreditedEvent{
				WalletID:      wallet.ID,
				UserID:        wallet.UserID,
				TransactionID: txn.ID,
				ListingID:     listingID,
				Amount:        int64(amount),
				BalanceAfter:  int64(after),
				EventAt:       now.Format(time.RFC3339Nano),
			}),
			CreatedAt: now,
		}

		if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
			return nil, storageErr("outbox.create", err)
		}

		result.WalletID = wallet.ID
		result.TransactionID = txn.ID
		result.BalanceAfter = after
		result.wallet = wallet
	}

	// 3. Stamp the listing so it is never credited again
	if err := uc.listingRepo.SetCommissionAmount(ctx, tx, listingID, amount, now); err != nil {
		return nil, storageErr("listing.stamp", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, storageErr("tx.commit", err)
	}

	return result, nil
}
