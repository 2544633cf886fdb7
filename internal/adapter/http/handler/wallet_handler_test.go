package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/rentledger/internal/adapter/http/dto"
	"github.com/iho/rentledger/internal/domain"
	"github.com/iho/rentledger/internal/usecase"
)

type walletServiceStub struct {
	getFn  func(ctx context.Context, userID string) (*domain.Wallet, error)
	listFn func(ctx context.Context, input usecase.ListTransactionsInput) ([]*domain.WalletTransaction, error)
}

func (s *walletServiceStub) GetOrCreateWallet(ctx context.Context, userID string) (*domain.Wallet, error) {
	return s.getFn(ctx, userID)
}

func (s *walletServiceStub) ListTransactions(ctx context.Context, input usecase.ListTransactionsInput) ([]*domain.WalletTransaction, error) {
	return s.listFn(ctx, input)
}

func TestWalletHandler_Get(t *testing.T) {
	var requested string
	h := NewWalletHandler(&walletServiceStub{
		getFn: func(ctx context.Context, userID string) (*domain.Wallet, error) {
			requested = userID
			return &domain.Wallet{ID: "w1", UserID: userID, Balance: 100, TotalEarned: 100}, nil
		},
	})

	req := withUser(httptest.NewRequest(http.MethodGet, "/api/v1/wallet", nil), "owner-1", domain.RoleOwner)
	rec := httptest.NewRecorder()
	h.Get(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "owner-1", requested)

	var resp dto.WalletResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(100), resp.Balance)
	assert.Equal(t, int64(100), resp.TotalEarned)
	assert.Equal(t, int64(0), resp.TotalSpent)
	assert.Equal(t, "1.00", resp.BalanceDisplay)
}

func TestWalletHandler_GetRequiresUser(t *testing.T) {
	h := NewWalletHandler(&walletServiceStub{})

	rec := httptest.NewRecorder()
	h.Get(rec, httptest.NewRequest(http.MethodGet, "/api/v1/wallet", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestWalletHandler_ListTransactions(t *testing.T) {
	var captured usecase.ListTransactionsInput
	h := NewWalletHandler(&walletServiceStub{
		listFn: func(ctx context.Context, input usecase.ListTransactionsInput) ([]*domain.WalletTransaction, error) {
			captured = input
			return []*domain.WalletTransaction{{
				ID:            "t1",
				WalletID:      "w1",
				Type:          domain.TransactionTypeDebit,
				Amount:        50,
				BalanceBefore: 100,
				BalanceAfter:  50,
				ReferenceType: domain.ReferenceTypeListing,
				ReferenceID:   "l1",
			}}, nil
		},
	})

	req := withUser(httptest.NewRequest(http.MethodGet, "/api/v1/wallet/transactions?limit=500&offset=10", nil), "owner-1", domain.RoleOwner)
	rec := httptest.NewRecorder()
	h.ListTransactions(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, usecase.ListTransactionsInput{UserID: "owner-1", Limit: 500, Offset: 10}, captured)

	var resp dto.TransactionListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Transactions, 1)
	assert.Equal(t, "DEBIT", resp.Transactions[0].Type)
	assert.Equal(t, int64(50), resp.Transactions[0].BalanceAfter)
	assert.Equal(t, domain.MaxPageSize, resp.Limit)
	assert.Equal(t, 10, resp.Offset)
}

func TestWalletHandler_ListTransactionsInvalidLimit(t *testing.T) {
	h := NewWalletHandler(&walletServiceStub{})

	req := withUser(httptest.NewRequest(http.MethodGet, "/api/v1/wallet/transactions?limit=ten", nil), "owner-1", domain.RoleOwner)
	rec := httptest.NewRecorder()
	h.ListTransactions(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
