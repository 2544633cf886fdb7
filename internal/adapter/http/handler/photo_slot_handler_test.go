package handler

import (
	"bytes"
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

type photoSlotServiceStub struct {
	purchaseFn func(ctx context.Context, input usecase.PurchasePhotoSlotsInput) (*usecase.DebitResult, error)
}

func (s *photoSlotServiceStub) PurchasePhotoSlots(ctx context.Context, input usecase.PurchasePhotoSlotsInput) (*usecase.DebitResult, error) {
	return s.purchaseFn(ctx, input)
}

func purchaseRequest(t *testing.T, body any) *http.Request {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/wallet/purchase-photo-slots", bytes.NewReader(payload))
	return withUser(req, "owner-1", domain.RoleOwner)
}

func TestPhotoSlotHandler_PurchaseSuccess(t *testing.T) {
	var captured usecase.PurchasePhotoSlotsInput
	h := NewPhotoSlotHandler(&photoSlotServiceStub{
		purchaseFn: func(ctx context.Context, input usecase.PurchasePhotoSlotsInput) (*usecase.DebitResult, error) {
			captured = input
			return &usecase.DebitResult{
				ListingID:     input.ListingID,
				TransactionID: "t1",
				Count:         input.Count,
				Cost:          50,
				NewBalance:    50,
				MaxImageSlots: 20,
			}, nil
		},
	})

	rec := httptest.NewRecorder()
	h.Purchase(rec, purchaseRequest(t, dto.PurchasePhotoSlotsRequest{ListingID: "l1", Count: 10}))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, usecase.PurchasePhotoSlotsInput{UserID: "owner-1", Role: domain.RoleOwner, ListingID: "l1", Count: 10}, captured)

	var resp dto.PhotoSlotPurchaseResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(50), resp.Cost)
	assert.Equal(t, int64(50), resp.NewBalance)
	assert.Equal(t, 20, resp.MaxImageSlots)
}

func TestPhotoSlotHandler_PurchaseErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"insufficient funds", &domain.InsufficientFundsError{Needed: 50, Available: 40}, http.StatusPaymentRequired},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden},
		{"listing missing", domain.ErrListingNotFound, http.StatusNotFound},
		{"storage", &domain.StorageError{Op: "tx.begin", Err: context.DeadlineExceeded}, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewPhotoSlotHandler(&photoSlotServiceStub{
				purchaseFn: func(ctx context.Context, input usecase.PurchasePhotoSlotsInput) (*usecase.DebitResult, error) {
					return nil, tt.err
				},
			})

			rec := httptest.NewRecorder()
			h.Purchase(rec, purchaseRequest(t, dto.PurchasePhotoSlotsRequest{ListingID: "l1", Count: 10}))

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestPhotoSlotHandler_InsufficientFundsBody(t *testing.T) {
	h := NewPhotoSlotHandler(&photoSlotServiceStub{
		purchaseFn: func(ctx context.Context, input usecase.PurchasePhotoSlotsInput) (*usecase.DebitResult, error) {
			return nil, &domain.InsufficientFundsError{Needed: 50, Available: 40}
		},
	})

	rec := httptest.NewRecorder()
	h.Purchase(rec, purchaseRequest(t, dto.PurchasePhotoSlotsRequest{ListingID: "l1", Count: 10}))

	resp := decodeError(t, rec)
	require.NotNil(t, resp.Needed)
	assert.Equal(t, int64(50), *resp.Needed)
	assert.Equal(t, int64(40), *resp.Available)
}

func TestPhotoSlotHandler_RejectsInvalidBody(t *testing.T) {
	h := NewPhotoSlotHandler(&photoSlotServiceStub{
		purchaseFn: func(ctx context.Context, input usecase.PurchasePhotoSlotsInput) (*usecase.DebitResult, error) {
			t.Fatalf("engine should not be called")
			return nil, nil
		},
	})

	rec := httptest.NewRecorder()
	h.Purchase(rec, purchaseRequest(t, dto.PurchasePhotoSlotsRequest{ListingID: "l1", Count: 0}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := withUser(httptest.NewRequest(http.MethodPost, "/api/v1/wallet/purchase-photo-slots", bytes.NewBufferString("{")), "owner-1", domain.RoleOwner)
	rec = httptest.NewRecorder()
	h.Purchase(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
