package domain

import (
	"errors"
	"fmt"
)

// Validation errors
var (
	ErrInvalidSetting   = errors.New("invalid setting")
	ErrInvalidIDFormat  = errors.New("invalid ID format")
	ErrAmountTooLarge   = errors.New("amount exceeds maximum allowed")
	ErrInvalidPageParam = errors.New("invalid pagination parameter")
)

// Validation constants
const (
	MaxSlotsPerPurchase   = 100
	MaxSettingValueLength = 1024
	MaxIDLength           = 64
	DefaultPageSize       = 20
	MaxPageSize           = 100
)

// ValidateSlotCount validates the number of photo slots in one purchase.
func ValidateSlotCount(count int) error {
	if count < 1 {
		return fmt.Errorf("%w: count must be at least 1", ErrInvalidSlotCount)
	}

	if count > MaxSlotsPerPurchase {
		return fmt.Errorf("%w: count exceeds %d", ErrInvalidSlotCount, MaxSlotsPerPurchase)
	}

	return nil
}

// ValidateID rejects empty or oversized identifiers.
func ValidateID(id string) error {
	if id == "" || len(id) > MaxIDLength {
		return ErrInvalidIDFormat
	}

	return nil
}

// PhotoSlotCost returns count * unitPrice, refusing results that overflow.
func PhotoSlotCost(count int, unitPrice Money) (Money, error) {
	if err := ValidateSlotCount(count); err != nil {
		return 0, err
	}

	if !unitPrice.IsPositive() {
		return 0, ErrInvalidAmount
	}

	cost := Money(count) * unitPrice
	if cost/Money(count) != unitPrice {
		return 0, ErrAmountTooLarge
	}

	return cost, nil
}

// ValidatePagination validates and limits pagination parameters
func ValidatePagination(limit, offset int) (int, int, error) {
	if limit < 0 || offset < 0 {
		return 0, 0, ErrInvalidPageParam
	}

	if limit == 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	return limit, offset, nil
}
