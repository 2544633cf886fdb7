package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/rentledger/internal/domain"
)

// PurchasePhotoSlotsInput represents a photo-slot purchase request.
type PurchasePhotoSlotsInput struct {
	UserID    string
	Role      domain.Role
	ListingID string
	Count     int
}

// DebitResult describes a completed purchase.
type DebitResult struct {
	ListingID     string
	WalletID      string
	TransactionID string
	Count         int
	UnitPrice     domain.Money
	Cost          domain.Money
	NewBalance    domain.Money
	MaxImageSlots int

	wallet *domain.Wallet
}

// PhotoSlotUseCase debits wallets for extra listing image slots.
type PhotoSlotUseCase struct {
	txManager   TransactionManager
	retrier     Retrier
	walletRepo  WalletRepository
	txnRepo     WalletTransactionRepository
	listingRepo ListingRepository
	outboxRepo  OutboxRepository
	idGen       IDGenerator
	unitPrice   domain.Money
	cache       WalletCache
	metrics     LedgerMetrics
	logger      zerolog.Logger
}

// NewPhotoSlotUseCase creates a new PhotoSlotUseCase.
func NewPhotoSlotUseCase(
	txManager TransactionManager,
	retrier Retrier,
	walletRepo WalletRepository,
	txnRepo WalletTransactionRepository,
	listingRepo ListingRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	unitPrice domain.Money,
) *PhotoSlotUseCase {
	if retrier == nil {
		retrier = noRetry{}
	}

	return &PhotoSlotUseCase{
		txManager:   txManager,
		retrier:     retrier,
		walletRepo:  walletRepo,
		txnRepo:     txnRepo,
		listingRepo: listingRepo,
		outboxRepo:  outboxRepo,
		idGen:       idGen,
		unitPrice:   unitPrice,
		metrics:     nopMetrics{},
		logger:      zerolog.Nop(),
	}
}

// WithCache sets the wallet cache refreshed after each purchase.
func (uc *PhotoSlotUseCase) WithCache(cache WalletCache) *PhotoSlotUseCase {
	uc.cache = cache
	return uc
}

// WithMetrics sets the metrics recorder.
func (uc *PhotoSlotUseCase) WithMetrics(metrics LedgerMetrics) *PhotoSlotUseCase {
	if metrics != nil {
		uc.metrics = metrics
	}
	return uc
}

// WithLogger sets the logger.
func (uc *PhotoSlotUseCase) WithLogger(logger zerolog.Logger) *PhotoSlotUseCase {
	uc.logger = logger
	return uc
}

// PurchasePhotoSlots charges count * unitPrice to the caller's wallet and
// adds count image slots to the listing. The balance is read under the
// wallet row lock so concurrent purchases cannot both pass the funds check.
func (uc *PhotoSlotUseCase) PurchasePhotoSlots(ctx context.Context, input PurchasePhotoSlotsInput) (*DebitResult, error) {
	if err := domain.ValidateID(input.UserID); err != nil {
		return nil, domain.ErrUnauthorized
	}

	if err := domain.ValidateID(input.ListingID); err != nil {
		return nil, err
	}

	cost, err := domain.PhotoSlotCost(input.Count, uc.unitPrice)
	if err != nil {
		return nil, err
	}

	var result *DebitResult
	err = uc.retrier.Retry(ctx, func() error {
		var err error
		result, err = uc.purchase(ctx, input, cost)
		return err
	})
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientFunds) {
			uc.metrics.RecordInsufficientFunds()
			uc.logger.Debug().
				Err(err).
				Str("user_id", input.UserID).
				Str("listing_id", input.ListingID).
				Msg("photo slot purchase rejected")
		}

		return nil, err
	}

	refreshWallet(ctx, uc.cache, uc.logger, result.wallet)
	uc.metrics.RecordDebit(cost, input.Count)

	uc.logger.Info().
		Str("user_id", input.UserID).
		Str("listing_id", input.ListingID).
		Int("count", input.Count).
		Str("cost", cost.String()).
		Msg("photo slots purchased")

	return result, nil
}

func (uc *PhotoSlotUseCase) purchase(ctx context.Context, input PurchasePhotoSlotsInput, cost domain.Money) (*DebitResult, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, storageErr("tx.begin", err)
	}
	defer tx.Rollback(ctx)

	// 1. Lock the listing (same order as the credit path: listing, then wallet)
	listing, err := uc.listingRepo.GetByIDForUpdate(ctx, tx, input.ListingID)
	if err != nil {
		return nil, storageErr("listing.lock", err)
	}

	if !domain.CanManageListing(input.UserID, input.Role, listing) {
		return nil, domain.ErrForbidden
	}

	// 2. Lock the wallet and check funds against the locked balance
	now := time.Now().UTC()

	wallet, err := lockWallet(ctx, tx, uc.walletRepo, uc.idGen, input.UserID, now)
	if err != nil {
		return nil, err
	}

	if err := wallet.ValidateDebit(cost); err != nil {
		return nil, err
	}

	before, after := wallet.ApplyDebit(cost, now)

	txn := &domain.WalletTransaction{
		ID:            uc.idGen.Generate(),
		WalletID:      wallet.ID,
		Type:          domain.TransactionTypeDebit,
		Amount:        cost,
		BalanceBefore: before,
		BalanceAfter:  after,
		ReferenceType: domain.ReferenceTypeListing,
		ReferenceID:   input.ListingID,
		Description:   "Photo slot purchase",
		CreatedAt:     now,
	}

	if err := txn.Validate(); err != nil {
		return nil, err
	}

	// 3. Persist wallet, ledger entry and slot count together
	if err := uc.txnRepo.Create(ctx, tx, txn); err != nil {
		return nil, storageErr("wallet_transaction.create", err)
	}

	if err := uc.walletRepo.UpdateBalances(ctx, tx, wallet); err != nil {
		return nil, storageErr("wallet.update", err)
	}

	slots, err := uc.listingRepo.AddImageSlots(ctx, tx, input.ListingID, input.Count, now)
	if err != nil {
		return nil, storageErr("listing.add_slots", err)
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   wallet.ID,
		AggregateType: domain.AggregateTypeWallet,
		EventType:     domain.EventTypeWalletDebited,
		Payload: domain.MarshalState(domain.WalletDebitedEvent{
			WalletID:      wallet.ID,
			UserID:        wallet.UserID,
			TransactionID: txn.ID,
			ListingID:     input.ListingID,
			Amount:        int64(cost),
			BalanceAfter:  int64(after),
			SlotsAdded:    input.Count,
			EventAt:       now.Format(time.RFC3339Nano),
		}),
		CreatedAt: now,
	}

	if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
		return nil, storageErr("outbox.create", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, storageErr("tx.commit", err)
	}

	return &DebitResult{
		ListingID:     input.ListingID,
		WalletID:      wallet.ID,
		TransactionID: txn.ID,
		Count:         input.Count,
		UnitPrice:     uc.unitPrice,
		Cost:          cost,
		NewBalance:    after,
		MaxImageSlots: slots,
		wallet:        wallet,
	}, nil
}
