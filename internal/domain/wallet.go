package domain

import "time"

// Wallet is the per-user balance account. One row per user.
type Wallet struct {
	ID          string
	UserID      string
	Balance     Money
	TotalEarned Money
	TotalSpent  Money
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewWallet returns a zeroed wallet for userID.
func NewWallet(id, userID string, now time.Time) *Wallet {
	return &Wallet{
		ID:        id,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ValidateDebit checks that the wallet can pay amount.
func (w *Wallet) ValidateDebit(amount Money) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}

	if w.Balance < amount {
		return &InsufficientFundsError{Needed: amount, Available: w.Balance}
	}

	return nil
}

// ApplyCredit adds amount to balance and totalEarned and returns the
// balance before and after.
func (w *Wallet) ApplyCredit(amount Money, now time.Time) (before, after Money) {
	before = w.Balance
	w.Balance += amount
	w.TotalEarned += amount
	w.UpdatedAt = now

	return before, w.Balance
}

// ApplyDebit subtracts amount from balance, adds it to totalSpent and
// returns the balance before and after. Call ValidateDebit first.
func (w *Wallet) ApplyDebit(amount Money, now time.Time) (before, after Money) {
	before = w.Balance
	w.Balance -= amount
	w.TotalSpent += amount
	w.UpdatedAt = now

	return before, w.Balance
}

// IsConsistent reports whether balance == totalEarned - totalSpent and the
// balance is non-negative.
func (w *Wallet) IsConsistent() bool {
	return w.Balance >= 0 && w.Balance == w.TotalEarned-w.TotalSpent
}

// Revision grows with every committed credit or debit, so a higher value
// is always the newer snapshot of the same wallet.
func (w *Wallet) Revision() int64 {
	return int64(w.TotalEarned + w.TotalSpent)
}
