package dto

import (
	"errors"
	"testing"
	"time"

	"github.com/iho/rentledger/internal/domain"
	"github.com/iho/rentledger/internal/usecase"
)

func TestPurchasePhotoSlotsRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     PurchasePhotoSlotsRequest
		wantErr error
	}{
		{"valid", PurchasePhotoSlotsRequest{ListingID: "l1", Count: 3}, nil},
		{"missing listing", PurchasePhotoSlotsRequest{Count: 3}, domain.ErrInvalidIDFormat},
		{"zero count", PurchasePhotoSlotsRequest{ListingID: "l1", Count: 0}, domain.ErrInvalidSlotCount},
		{"too many", PurchasePhotoSlotsRequest{ListingID: "l1", Count: domain.MaxSlotsPerPurchase + 1}, domain.ErrInvalidSlotCount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr == nil && err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestPurchasePhotoSlotsRequestToUseCaseInput(t *testing.T) {
	req := PurchasePhotoSlotsRequest{ListingID: "l1", Count: 2}
	input := req.ToUseCaseInput(&domain.User{ID: "owner-1", Role: domain.RoleOwner})

	if input.UserID != "owner-1" || input.Role != domain.RoleOwner || input.ListingID != "l1" || input.Count != 2 {
		t.Fatalf("unexpected input: %+v", input)
	}
}

func TestWalletFromDomain(t *testing.T) {
	resp := WalletFromDomain(&domain.Wallet{ID: "w1", UserID: "u1", Balance: 1050, TotalEarned: 1550, TotalSpent: 500})

	if resp.Balance != 1050 || resp.BalanceDisplay != "10.50" || resp.TotalSpentDisplay != "5.00" {
		t.Fatalf("unexpected wallet response: %+v", resp)
	}
}

func TestConsistencyFromReport(t *testing.T) {
	resp := ConsistencyFromReport(&usecase.LedgerConsistency{WalletCount: 2, DriftedWallets: 1}, false)

	if resp.Status != "inconsistent" || resp.Consistent || resp.DriftedWallets != 1 {
		t.Fatalf("unexpected consistency response: %+v", resp)
	}
}

func TestSettingFromDomainOmitsZeroTime(t *testing.T) {
	resp := SettingFromDomain(&domain.Setting{Key: domain.CommissionRateKey, Value: "10"})
	if resp.UpdatedAt != nil {
		t.Fatalf("expected nil updated_at for default setting, got %v", resp.UpdatedAt)
	}

	now := time.Now()
	resp = SettingFromDomain(&domain.Setting{Key: "k", Value: "v", UpdatedAt: now})
	if resp.UpdatedAt == nil || !resp.UpdatedAt.Equal(now) {
		t.Fatalf("expected updated_at to be set, got %v", resp.UpdatedAt)
	}
}
