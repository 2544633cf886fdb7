package dto

import (
	"github.com/iho/rentledger/internal/domain"
	"github.com/iho/rentledger/internal/usecase"
)

// PurchasePhotoSlotsRequest represents a request to buy extra image slots.
type PurchasePhotoSlotsRequest struct {
	ListingID string `json:"listing_id"`
	Count     int    `json:"count"`
}

// Validate checks the request shape before it reaches the engine.
func (r *PurchasePhotoSlotsRequest) Validate() error {
	if err := domain.ValidateID(r.ListingID); err != nil {
		return err
	}

	return domain.ValidateSlotCount(r.Count)
}

// ToUseCaseInput converts to use case input for the given caller.
func (r *PurchasePhotoSlotsRequest) ToUseCaseInput(user *domain.User) usecase.PurchasePhotoSlotsInput {
	return usecase.PurchasePhotoSlotsInput{
		UserID:    user.ID,
		Role:      user.Role,
		ListingID: r.ListingID,
		Count:     r.Count,
	}
}

// UpdateSettingRequest represents a request to change a system setting.
type UpdateSettingRequest struct {
	Value string `json:"value"`
}
