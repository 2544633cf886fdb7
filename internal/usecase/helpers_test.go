package usecase_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/rentledger/internal/domain"
	"github.com/iho/rentledger/internal/usecase"
	"github.com/iho/rentledger/internal/usecase/mocks"
)

type fixture struct {
	store      *mocks.Store
	settings   *mocks.SettingsRepo
	idGen      *mocks.SequentialIDGenerator
	wallets    *usecase.WalletUseCase
	settingsUC *usecase.SettingsUseCase
	commission *usecase.CommissionUseCase
	photoSlots *usecase.PhotoSlotUseCase
}

func newFixture(t *testing.T, unitPrice domain.Money) *fixture {
	t.Helper()

	store := mocks.NewStore()
	settings := mocks.NewSettingsRepo()
	idGen := &mocks.SequentialIDGenerator{Prefix: "id"}

	settingsUC := usecase.NewSettingsUseCase(settings, nil, domain.DefaultCommissionRate)

	return &fixture{
		store:      store,
		settings:   settings,
		idGen:      idGen,
		wallets:    usecase.NewWalletUseCase(store.Wallets(), store.Ledger(), idGen),
		settingsUC: settingsUC,
		commission: usecase.NewCommissionUseCase(
			store.TxManager(), nil, store.Wallets(), store.Ledger(), store.Listings(), store.Outbox(), settingsUC, idGen,
		),
		photoSlots: usecase.NewPhotoSlotUseCase(
			store.TxManager(), nil, store.Wallets(), store.Ledger(), store.Listings(), store.Outbox(), idGen, unitPrice,
		),
	}
}

func money(v int64) *domain.Money {
	m := domain.Money(v)
	return &m
}

func paidListing(id, ownerID string, price int64) *domain.Listing {
	return &domain.Listing{
		ID:            id,
		OwnerID:       ownerID,
		ListingPrice:  money(price),
		PaymentStatus: domain.PaymentStatusPaid,
		MaxImageSlots: 5,
	}
}

func fundedWallet(id, userID string, balance int64) *domain.Wallet {
	return &domain.Wallet{
		ID:          id,
		UserID:      userID,
		Balance:     domain.Money(balance),
		TotalEarned: domain.Money(balance),
	}
}

func assertConsistent(t *testing.T, store *mocks.Store, userIDs ...string) {
	t.Helper()

	for _, userID := range userIDs {
		w := store.Wallet(userID)
		if w == nil {
			continue
		}
		if !w.IsConsistent() {
			t.Fatalf("wallet of %s is inconsistent: %+v", userID, w)
		}
	}

	for _, txn := range store.AllTransactions() {
		if err := txn.Validate(); err != nil {
			t.Fatalf("transaction %s has invalid snapshot: %v", txn.ID, err)
		}
	}
}

var tenPercent = decimal.NewFromInt(10)
