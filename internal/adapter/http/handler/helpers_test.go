package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/rentledger/internal/adapter/http/dto"
	"github.com/iho/rentledger/internal/adapter/http/middleware"
	"github.com/iho/rentledger/internal/domain"
)

func withUser(r *http.Request, id string, role domain.Role) *http.Request {
	return r.WithContext(middleware.WithUser(r.Context(), &domain.User{ID: id, Role: role}))
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()

	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestParseIntQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/wallet/transactions?limit=50", nil)
	got, err := parseIntQuery(req, "limit", 10)
	require.NoError(t, err)
	assert.Equal(t, 50, got)

	got, err = parseIntQuery(req, "offset", 7)
	require.NoError(t, err)
	assert.Equal(t, 7, got)

	req = httptest.NewRequest(http.MethodGet, "/wallet/transactions?limit=abc", nil)
	_, err = parseIntQuery(req, "limit", 10)
	assert.ErrorIs(t, err, domain.ErrInvalidPageParam)
}

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"listing not found", domain.ErrListingNotFound, http.StatusNotFound},
		{"wallet not found", domain.ErrWalletNotFound, http.StatusNotFound},
		{"setting not found", domain.ErrSettingNotFound, http.StatusNotFound},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden},
		{"unauthorized", domain.ErrUnauthorized, http.StatusUnauthorized},
		{"insufficient funds", &domain.InsufficientFundsError{Needed: 50, Available: 40}, http.StatusPaymentRequired},
		{"not paid", domain.ErrListingNotPaid, http.StatusConflict},
		{"slot count", fmt.Errorf("%w: count must be at least 1", domain.ErrInvalidSlotCount), http.StatusBadRequest},
		{"rate", domain.ErrInvalidCommissionRate, http.StatusBadRequest},
		{"storage", &domain.StorageError{Op: "wallet.update", Err: errors.New("conn reset")}, http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, mapDomainError(tt.err))
		})
	}
}

func TestWriteDomainErrorInsufficientFundsCarriesAmounts(t *testing.T) {
	rec := httptest.NewRecorder()

	writeDomainError(rec, "failed", &domain.InsufficientFundsError{Needed: 5000, Available: 4000})

	require.Equal(t, http.StatusPaymentRequired, rec.Code)
	resp := decodeError(t, rec)
	require.NotNil(t, resp.Needed)
	require.NotNil(t, resp.Available)
	assert.Equal(t, int64(5000), *resp.Needed)
	assert.Equal(t, int64(4000), *resp.Available)
	assert.Contains(t, resp.Message, "needed 50.00, available 40.00")
}

func TestWriteDomainErrorHidesStorageDetails(t *testing.T) {
	rec := httptest.NewRecorder()

	writeDomainError(rec, "failed to get wallet", &domain.StorageError{Op: "wallet.get", Err: errors.New("dial tcp 10.0.0.5:5432")})

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, "failed to get wallet", resp.Error)
	assert.Empty(t, resp.Message)
}
