package domain

import (
	"errors"
	"testing"
	"time"
)

func TestWalletCreditAndDebit(t *testing.T) {
	t.Parallel()

	now := time.Now()
	w := NewWallet("w1", "u1", now)

	before, after := w.ApplyCredit(100, now)
	if before != 0 || after != 100 {
		t.Fatalf("expected credit 0 -> 100, got %d -> %d", before, after)
	}

	if err := w.ValidateDebit(50); err != nil {
		t.Fatalf("expected debit to be allowed, got %v", err)
	}

	before, after = w.ApplyDebit(50, now)
	if before != 100 || after != 50 {
		t.Fatalf("expected debit 100 -> 50, got %d -> %d", before, after)
	}

	if w.TotalEarned != 100 || w.TotalSpent != 50 {
		t.Fatalf("unexpected totals: earned=%d spent=%d", w.TotalEarned, w.TotalSpent)
	}

	if !w.IsConsistent() {
		t.Fatal("expected wallet to be consistent")
	}
}

func TestWalletValidateDebitInsufficientFunds(t *testing.T) {
	t.Parallel()

	w := &Wallet{Balance: 40, TotalEarned: 40}

	err := w.ValidateDebit(50)
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}

	var insufficient *InsufficientFundsError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected *InsufficientFundsError, got %T", err)
	}
	if insufficient.Needed != 50 || insufficient.Available != 40 {
		t.Fatalf("unexpected amounts: %+v", insufficient)
	}
	if got := err.Error(); got != "insufficient funds: needed 0.50, available 0.40" {
		t.Fatalf("unexpected message %q", got)
	}

	if err := w.ValidateDebit(0); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestWalletIsConsistent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		wallet Wallet
		want   bool
	}{
		{"zero", Wallet{}, true},
		{"balanced", Wallet{Balance: 50, TotalEarned: 100, TotalSpent: 50}, true},
		{"drifted", Wallet{Balance: 60, TotalEarned: 100, TotalSpent: 50}, false},
		{"negative", Wallet{Balance: -10, TotalEarned: 0, TotalSpent: 10}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.wallet.IsConsistent(); got != tt.want {
				t.Fatalf("IsConsistent() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWalletTransactionValidate(t *testing.T) {
	t.Parallel()

	credit := &WalletTransaction{Type: TransactionTypeCredit, Amount: 100, BalanceBefore: 0, BalanceAfter: 100}
	if err := credit.Validate(); err != nil {
		t.Fatalf("expected valid credit, got %v", err)
	}

	debit := &WalletTransaction{Type: TransactionTypeDebit, Amount: 50, BalanceBefore: 100, BalanceAfter: 50}
	if err := debit.Validate(); err != nil {
		t.Fatalf("expected valid debit, got %v", err)
	}

	bad := &WalletTransaction{Type: TransactionTypeDebit, Amount: 50, BalanceBefore: 100, BalanceAfter: 150}
	if err := bad.Validate(); !errors.Is(err, ErrInvalidSnapshot) {
		t.Fatalf("expected ErrInvalidSnapshot, got %v", err)
	}

	zero := &WalletTransaction{Type: TransactionTypeCredit}
	if err := zero.Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestListingValidateCreditable(t *testing.T) {
	t.Parallel()

	price := Money(1000)
	credited := Money(100)

	tests := []struct {
		name    string
		listing Listing
		wantErr error
	}{
		{"creditable", Listing{PaymentStatus: PaymentStatusPaid, ListingPrice: &price}, nil},
		{"already credited", Listing{PaymentStatus: PaymentStatusPaid, ListingPrice: &price, CommissionAmount: &credited}, ErrAlreadyCredited},
		{"not paid", Listing{PaymentStatus: PaymentStatusPending, ListingPrice: &price}, ErrListingNotPaid},
		{"no price", Listing{PaymentStatus: PaymentStatusPaid}, ErrListingPriceMissing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.listing.ValidateCreditable()
			if tt.wantErr == nil && err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestStorageError(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection reset")
	err := &StorageError{Op: "wallet.update", Err: cause}

	if !errors.Is(err, ErrStorage) {
		t.Fatal("expected errors.Is(err, ErrStorage)")
	}
	if !errors.Is(err, cause) {
		t.Fatal("expected StorageError to unwrap to its cause")
	}
	if IsBusinessError(err) {
		t.Fatal("storage failure must not be classified as a business error")
	}
	if !IsBusinessError(&InsufficientFundsError{Needed: 1}) {
		t.Fatal("insufficient funds must be a business error")
	}
}

func TestWalletRevisionGrowsWithEveryMovement(t *testing.T) {
	t.Parallel()

	now := time.Now()
	w := NewWallet("w1", "u1", now)
	if w.Revision() != 0 {
		t.Fatalf("expected revision 0 for a new wallet, got %d", w.Revision())
	}

	w.ApplyCredit(100, now)
	afterCredit := w.Revision()

	w.ApplyDebit(100, now)
	afterDebit := w.Revision()

	if afterCredit <= 0 || afterDebit <= afterCredit {
		t.Fatalf("expected strictly growing revisions, got %d then %d", afterCredit, afterDebit)
	}

	// Balance is back to zero but the snapshot is still newer.
	if w.Balance != 0 {
		t.Fatalf("expected zero balance, got %d", w.Balance)
	}
}
