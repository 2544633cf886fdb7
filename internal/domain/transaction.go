package domain

import (
	"errors"
	"time"
)

// TransactionType is the direction of a wallet mutation.
type TransactionType string

const (
	TransactionTypeCredit TransactionType = "CREDIT"
	TransactionTypeDebit  TransactionType = "DEBIT"
)

// ReferenceType names the kind of entity that caused a transaction.
type ReferenceType string

const (
	ReferenceTypeListing ReferenceType = "LISTING"
)

var ErrInvalidSnapshot = errors.New("transaction balance snapshot does not match amount")

// WalletTransaction is an append-only record of one balance mutation.
type WalletTransaction struct {
	ID            string
	WalletID      string
	Type          TransactionType
	Amount        Money
	BalanceBefore Money
	BalanceAfter  Money
	ReferenceType ReferenceType
	ReferenceID   string
	Description   string
	CreatedAt     time.Time
}

// Validate checks the amount and the before/after snapshot.
func (t *WalletTransaction) Validate() error {
	if !t.Amount.IsPositive() {
		return ErrInvalidAmount
	}

	var expected Money
	switch t.Type {
	case TransactionTypeCredit:
		expected = t.BalanceBefore + t.Amount
	case TransactionTypeDebit:
		expected = t.BalanceBefore - t.Amount
	default:
		return errors.New("unknown transaction type: " + string(t.Type))
	}

	if t.BalanceAfter != expected {
		return ErrInvalidSnapshot
	}

	return nil
}
