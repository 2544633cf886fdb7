package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/rentledger/internal/adapter/http/dto"
	"github.com/iho/rentledger/internal/domain"
	"github.com/iho/rentledger/internal/usecase"
)

// CommissionService defines the behavior needed by CommissionHandler.
type CommissionService interface {
	CreditCommission(ctx context.Context, listingID string) (*usecase.CreditResult, error)
}

// CommissionHandler is the trigger used by the payment confirmation flow.
type CommissionHandler struct {
	commissionUC CommissionService
}

// NewCommissionHandler creates a new CommissionHandler.
func NewCommissionHandler(commissionUC CommissionService) *CommissionHandler {
	return &CommissionHandler{commissionUC: commissionUC}
}

// Credit credits the listing owner's wallet. A repeat call answers 200 with
// status already_credited.
func (h *CommissionHandler) Credit(w http.ResponseWriter, r *http.Request) {
	listingID := chi.URLParam(r, "id")
	if err := domain.ValidateID(listingID); err != nil {
		writeDomainError(w, "invalid listing ID", err)
		return
	}

	result, err := h.commissionUC.CreditCommission(r.Context(), listingID)
	if err != nil {
		writeDomainError(w, "failed to credit commission", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.CreditFromResult(result))
}
