package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/iho/rentledger/internal/adapter/http/dto"
	"github.com/iho/rentledger/internal/usecase"
)

// PhotoSlotService defines the behavior needed by PhotoSlotHandler.
type PhotoSlotService interface {
	PurchasePhotoSlots(ctx context.Context, input usecase.PurchasePhotoSlotsInput) (*usecase.DebitResult, error)
}

// PhotoSlotHandler handles photo slot purchases.
type PhotoSlotHandler struct {
	photoSlotUC PhotoSlotService
}

// NewPhotoSlotHandler creates a new PhotoSlotHandler.
func NewPhotoSlotHandler(photoSlotUC PhotoSlotService) *PhotoSlotHandler {
	return &PhotoSlotHandler{photoSlotUC: photoSlotUC}
}

// Purchase debits the caller's wallet for extra image slots on a listing.
func (h *PhotoSlotHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req dto.PurchasePhotoSlotsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := req.Validate(); err != nil {
		writeDomainError(w, "invalid request", err)
		return
	}

	result, err := h.photoSlotUC.PurchasePhotoSlots(r.Context(), req.ToUseCaseInput(user))
	if err != nil {
		writeDomainError(w, "failed to purchase photo slots", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.PhotoSlotPurchaseFromResult(result))
}
