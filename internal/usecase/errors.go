package usecase

import (
	"errors"

	"github.com/iho/rentledger/internal/domain"
)

// storageErr wraps infrastructure failures in a *domain.StorageError and
// passes domain conditions through untouched.
func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}

	if domain.IsBusinessError(err) ||
		errors.Is(err, domain.ErrStorage) ||
		errors.Is(err, domain.ErrWalletAlreadyExists) {
		return err
	}

	return &domain.StorageError{Op: op, Err: err}
}
