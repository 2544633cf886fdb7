package domain

import (
	"errors"
	"fmt"
)

var (
	// Wallet errors
	ErrWalletNotFound      = errors.New("wallet not found")
	ErrWalletAlreadyExists = errors.New("wallet already exists")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrInvalidAmount       = errors.New("amount must be positive")

	// Listing errors
	ErrListingNotFound     = errors.New("listing not found")
	ErrListingNotPaid      = errors.New("listing payment is not confirmed")
	ErrListingPriceMissing = errors.New("listing has no price")
	ErrAlreadyCredited     = errors.New("commission already credited for listing")
	ErrInvalidSlotCount    = errors.New("invalid photo slot count")

	// Settings errors
	ErrSettingNotFound       = errors.New("setting not found")
	ErrInvalidCommissionRate = errors.New("invalid commission rate")

	// Infrastructure
	ErrStorage = errors.New("storage failure")
)

// InsufficientFundsError carries the amounts of a rejected debit.
type InsufficientFundsError struct {
	Needed    Money
	Available Money
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: needed %s, available %s", e.Needed, e.Available)
}

// Is lets errors.Is match ErrInsufficientFunds.
func (e *InsufficientFundsError) Is(target error) bool {
	return target == ErrInsufficientFunds
}

// StorageError wraps a failure of the persistence layer. The whole
// operation that produced it is safe to retry.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrStorage, e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match ErrStorage.
func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

// IsBusinessError reports whether err is one of the expected domain
// conditions rather than an infrastructure failure.
func IsBusinessError(err error) bool {
	for _, target := range []error{
		ErrWalletNotFound,
		ErrInsufficientFunds,
		ErrInvalidAmount,
		ErrListingNotFound,
		ErrListingNotPaid,
		ErrListingPriceMissing,
		ErrAlreadyCredited,
		ErrInvalidSlotCount,
		ErrSettingNotFound,
		ErrInvalidCommissionRate,
		ErrUnauthorized,
		ErrForbidden,
	} {
		if errors.Is(err, target) {
			return true
		}
	}

	return false
}
