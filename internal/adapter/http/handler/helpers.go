package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/iho/rentledger/internal/adapter/http/dto"
	"github.com/iho/rentledger/internal/adapter/http/middleware"
	"github.com/iho/rentledger/internal/domain"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// writeDomainError maps err to a status and writes it. Insufficient funds
// responses carry the needed and available amounts.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	status := mapDomainError(err)

	var insufficient *domain.InsufficientFundsError
	if errors.As(err, &insufficient) {
		needed := int64(insufficient.Needed)
		available := int64(insufficient.Available)
		writeJSON(w, status, dto.ErrorResponse{
			Error:     message,
			Message:   err.Error(),
			Needed:    &needed,
			Available: &available,
		})
		return
	}

	details := err.Error()
	if status >= http.StatusInternalServerError {
		// Driver errors stay in the logs.
		details = ""
	}

	writeError(w, status, message, details)
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrWalletNotFound),
		errors.Is(err, domain.ErrListingNotFound),
		errors.Is(err, domain.ErrSettingNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrForbidden), errors.Is(err, domain.ErrInsufficientRole):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrInsufficientFunds):
		return http.StatusPaymentRequired
	case errors.Is(err, domain.ErrListingNotPaid),
		errors.Is(err, domain.ErrListingPriceMissing):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidSlotCount),
		errors.Is(err, domain.ErrInvalidCommissionRate),
		errors.Is(err, domain.ErrInvalidSetting),
		errors.Is(err, domain.ErrInvalidIDFormat),
		errors.Is(err, domain.ErrAmountTooLarge),
		errors.Is(err, domain.ErrInvalidPageParam):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrStorage):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// parseIntQuery parses an integer query parameter, using defaultValue when absent.
func parseIntQuery(r *http.Request, key string, defaultValue int) (int, error) {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue, nil
	}

	i, err := strconv.Atoi(val)
	if err != nil {
		return 0, domain.ErrInvalidPageParam
	}

	return i, nil
}

// currentUser returns the authenticated caller or writes 401.
func currentUser(w http.ResponseWriter, r *http.Request) (*domain.User, bool) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return nil, false
	}

	return user, true
}
