package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iho/rentledger/internal/domain"
	"github.com/iho/rentledger/internal/usecase"
	"github.com/iho/rentledger/internal/usecase/mocks"
)

func TestReconciliationUseCase_CreditsOnlyUncredited(t *testing.T) {
	f := newFixture(t, 5)

	credited := paidListing("listing-1", "owner-1", 1000)
	credited.CommissionAmount = money(100)
	f.store.SeedListing(credited)
	f.store.SeedListing(paidListing("listing-2", "owner-2", 1000))

	uc := usecase.NewReconciliationUseCase(f.store.Listings(), f.commission, f.settingsUC, nil, 0)

	report, err := uc.ReconcileUncreditedListings(context.Background(), "admin-1")
	require.NoError(t, err)

	assert.Equal(t, 1, report.Processed)
	assert.Equal(t, 1, report.Credited)
	assert.Equal(t, 0, report.Errors)
	assert.Equal(t, 0, report.Skipped)

	assert.Nil(t, f.store.Wallet("owner-1"))
	assert.Equal(t, domain.Money(100), f.store.Wallet("owner-2").Balance)
	assert.Equal(t, domain.Money(100), *f.store.Listing("listing-2").CommissionAmount)
}

func TestReconciliationUseCase_ToleratesPerItemFailure(t *testing.T) {
	f := newFixture(t, 5)
	f.store.SeedListing(paidListing("listing-1", "owner-1", 1000))
	f.store.SeedListing(paidListing("listing-2", "owner-2", 1000))
	f.store.SeedListing(paidListing("listing-3", "owner-3", 1000))

	crediter := &flakyCrediter{
		next: f.commission,
		fail: map[string]error{"listing-2": &domain.StorageError{Op: "wallet.update", Err: errors.New("timeout")}},
	}

	uc := usecase.NewReconciliationUseCase(f.store.Listings(), crediter, f.settingsUC, nil, 0)

	report, err := uc.ReconcileUncreditedListings(context.Background(), "admin-1")
	require.NoError(t, err)

	assert.Equal(t, 3, report.Processed)
	assert.Equal(t, 2, report.Credited)
	assert.Equal(t, 1, report.Errors)
	require.Len(t, report.Results, 3)
	assert.Equal(t, usecase.ItemOutcomeFailed, report.Results[1].Outcome)
	assert.ErrorIs(t, report.Results[1].Err, domain.ErrStorage)

	// Listings before and after the failing one stay credited.
	assert.Equal(t, domain.Money(100), f.store.Wallet("owner-1").Balance)
	assert.Nil(t, f.store.Wallet("owner-2"))
	assert.Equal(t, domain.Money(100), f.store.Wallet("owner-3").Balance)
	assert.Nil(t, f.store.Listing("listing-2").CommissionAmount)
}

func TestReconciliationUseCase_CountsConcurrentCreditAsSkipped(t *testing.T) {
	f := newFixture(t, 5)
	f.store.SeedListing(paidListing("listing-1", "owner-1", 1000))

	crediter := &flakyCrediter{
		next: f.commission,
		before: func(listingID string) {
			// Another caller credits the listing between selection and processing.
			_, err := f.commission.CreditCommission(context.Background(), listingID)
			require.NoError(t, err)
		},
	}

	uc := usecase.NewReconciliationUseCase(f.store.Listings(), crediter, f.settingsUC, nil, 0)

	report, err := uc.ReconcileUncreditedListings(context.Background(), "admin-1")
	require.NoError(t, err)

	assert.Equal(t, 1, report.Processed)
	assert.Equal(t, 0, report.Credited)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, domain.Money(100), f.store.Wallet("owner-1").Balance)
}

func TestReconciliationUseCase_RespectsLimit(t *testing.T) {
	f := newFixture(t, 5)
	f.store.SeedListing(paidListing("listing-1", "owner-1", 1000))
	f.store.SeedListing(paidListing("listing-2", "owner-1", 1000))
	f.store.SeedListing(paidListing("listing-3", "owner-1", 1000))

	uc := usecase.NewReconciliationUseCase(f.store.Listings(), f.commission, f.settingsUC, nil, 2)

	report, err := uc.ReconcileUncreditedListings(context.Background(), "admin-1")
	require.NoError(t, err)
	assert.Equal(t, 2, report.Processed)

	report, err = uc.ReconcileUncreditedListings(context.Background(), "admin-1")
	require.NoError(t, err)
	assert.Equal(t, 1, report.Processed)
	assert.Equal(t, domain.Money(300), f.store.Wallet("owner-1").Balance)
}

func TestReconciliationUseCase_AuditsRun(t *testing.T) {
	ctrl := gomock.NewController(t)
	audit := mocks.NewMockAuditRepository(ctrl)
	metrics := mocks.NewMockLedgerMetrics(ctrl)

	audit.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, log *domain.AuditLog) error {
			assert.Equal(t, "admin-1", log.UserID)
			assert.Equal(t, string(domain.AuditActionCommissionReconcile), log.Action)
			assert.Equal(t, string(domain.AuditStatusSuccess), log.Status)
			assert.Equal(t, 1, log.AfterState["credited"])
			return nil
		},
	)
	metrics.EXPECT().RecordReconciliation(1, 0, 0, gomock.Any())

	f := newFixture(t, 5)
	f.store.SeedListing(paidListing("listing-1", "owner-1", 1000))

	uc := usecase.NewReconciliationUseCase(f.store.Listings(), f.commission, f.settingsUC, audit, 0).WithMetrics(metrics)

	_, err := uc.ReconcileUncreditedListings(context.Background(), "admin-1")
	require.NoError(t, err)
}

func TestReconciliationUseCase_CandidateQueryFailure(t *testing.T) {
	f := newFixture(t, 5)
	f.store.FailOn("listing.list_uncredited", errors.New("relation does not exist"))

	uc := usecase.NewReconciliationUseCase(f.store.Listings(), f.commission, f.settingsUC, nil, 0)

	_, err := uc.ReconcileUncreditedListings(context.Background(), "admin-1")
	require.ErrorIs(t, err, domain.ErrStorage)
}

func TestReconciliationUseCase_MalformedRateAbortsBeforeCrediting(t *testing.T) {
	f := newFixture(t, 5)
	require.NoError(t, f.settings.Upsert(context.Background(), &domain.Setting{Key: domain.CommissionRateKey, Value: "lots"}))
	f.store.SeedListing(paidListing("listing-1", "owner-1", 1000))

	uc := usecase.NewReconciliationUseCase(f.store.Listings(), f.commission, f.settingsUC, nil, 0)

	_, err := uc.ReconcileUncreditedListings(context.Background(), "admin-1")
	require.ErrorIs(t, err, domain.ErrInvalidCommissionRate)
	assert.Nil(t, f.store.Wallet("owner-1"))
}

type flakyCrediter struct {
	next   usecase.Crediter
	fail   map[string]error
	before func(listingID string)
}

func (c *flakyCrediter) CreditCommissionAtRate(ctx context.Context, listingID string, rate decimal.Decimal) (*usecase.CreditResult, error) {
	if c.before != nil {
		c.before(listingID)
	}
	if err, ok := c.fail[listingID]; ok {
		return nil, err
	}
	return c.next.CreditCommissionAtRate(ctx, listingID, rate)
}
