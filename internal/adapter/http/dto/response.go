package dto

import (
	"time"

	"github.com/iho/rentledger/internal/domain"
	"github.com/iho/rentledger/internal/usecase"
)

// Amounts are integer minor units; the *_display fields carry the same
// value formatted with two decimals.

// WalletResponse represents a wallet in API responses.
type WalletResponse struct {
	ID                 string    `json:"id"`
	UserID             string    `json:"user_id"`
	Balance            int64     `json:"balance"`
	TotalEarned        int64     `json:"total_earned"`
	TotalSpent         int64     `json:"total_spent"`
	BalanceDisplay     string    `json:"balance_display"`
	TotalEarnedDisplay string    `json:"total_earned_display"`
	TotalSpentDisplay  string    `json:"total_spent_display"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// WalletFromDomain converts domain wallet to response.
func WalletFromDomain(w *domain.Wallet) *WalletResponse {
	return &WalletResponse{
		ID:                 w.ID,
		UserID:             w.UserID,
		Balance:            int64(w.Balance),
		TotalEarned:        int64(w.TotalEarned),
		TotalSpent:         int64(w.TotalSpent),
		BalanceDisplay:     w.Balance.String(),
		TotalEarnedDisplay: w.TotalEarned.String(),
		TotalSpentDisplay:  w.TotalSpent.String(),
		CreatedAt:          w.CreatedAt,
		UpdatedAt:          w.UpdatedAt,
	}
}

// TransactionResponse represents a wallet transaction in API responses.
type TransactionResponse struct {
	ID            string    `json:"id"`
	WalletID      string    `json:"wallet_id"`
	Type          string    `json:"type"`
	Amount        int64     `json:"amount"`
	BalanceBefore int64     `json:"balance_before"`
	BalanceAfter  int64     `json:"balance_after"`
	ReferenceType string    `json:"reference_type"`
	ReferenceID   string    `json:"reference_id"`
	Description   string    `json:"description"`
	CreatedAt     time.Time `json:"created_at"`
}

// TransactionFromDomain converts a domain transaction to response.
func TransactionFromDomain(t *domain.WalletTransaction) *TransactionResponse {
	return &TransactionResponse{
		ID:            t.ID,
		WalletID:      t.WalletID,
		Type:          string(t.Type),
		Amount:        int64(t.Amount),
		BalanceBefore: int64(t.BalanceBefore),
		BalanceAfter:  int64(t.BalanceAfter),
		ReferenceType: string(t.ReferenceType),
		ReferenceID:   t.ReferenceID,
		Description:   t.Description,
		CreatedAt:     t.CreatedAt,
	}
}

// TransactionsFromDomain converts domain transactions to responses.
func TransactionsFromDomain(txns []*domain.WalletTransaction) []*TransactionResponse {
	result := make([]*TransactionResponse, len(txns))
	for i, t := range txns {
		result[i] = TransactionFromDomain(t)
	}
	return result
}

// TransactionListResponse is a page of transactions.
type TransactionListResponse struct {
	Transactions []*TransactionResponse `json:"transactions"`
	Limit        int                    `json:"limit"`
	Offset       int                    `json:"offset"`
}

// PhotoSlotPurchaseResponse is returned after a successful debit.
type PhotoSlotPurchaseResponse struct {
	ListingID     string `json:"listing_id"`
	TransactionID string `json:"transaction_id"`
	Count         int    `json:"count"`
	UnitPrice     int64  `json:"unit_price"`
	Cost          int64  `json:"cost"`
	NewBalance    int64  `json:"new_balance"`
	MaxImageSlots int    `json:"max_image_slots"`
}

// PhotoSlotPurchaseFromResult converts a debit result to response.
func PhotoSlotPurchaseFromResult(r *usecase.DebitResult) *PhotoSlotPurchaseResponse {
	return &PhotoSlotPurchaseResponse{
		ListingID:     r.ListingID,
		TransactionID: r.TransactionID,
		Count:         r.Count,
		UnitPrice:     int64(r.UnitPrice),
		Cost:          int64(r.Cost),
		NewBalance:    int64(r.NewBalance),
		MaxImageSlots: r.MaxImageSlots,
	}
}

// CreditResponse is returned by the commission credit trigger.
type CreditResponse struct {
	Status        string `json:"status"`
	ListingID     string `json:"listing_id"`
	Amount        int64  `json:"amount"`
	BalanceAfter  int64  `json:"balance_after"`
	TransactionID string `json:"transaction_id,omitempty"`
}

// CreditFromResult converts a credit result to response.
func CreditFromResult(r *usecase.CreditResult) *CreditResponse {
	return &CreditResponse{
		Status:        string(r.Status),
		ListingID:     r.ListingID,
		Amount:        int64(r.Amount),
		BalanceAfter:  int64(r.BalanceAfter),
		TransactionID: r.TransactionID,
	}
}

// ReconcileResponse carries aggregate counts only.
type ReconcileResponse struct {
	Processed int `json:"processed"`
	Credited  int `json:"credited"`
	Skipped   int `json:"skipped"`
	Errors    int `json:"errors"`
}

// ReconcileFromReport converts a reconciliation report to response.
func ReconcileFromReport(r *usecase.ReconciliationReport) *ReconcileResponse {
	return &ReconcileResponse{
		Processed: r.Processed,
		Credited:  r.Credited,
		Skipped:   r.Skipped,
		Errors:    r.Errors,
	}
}

// SettingResponse represents a system setting.
type SettingResponse struct {
	Key       string     `json:"key"`
	Value     string     `json:"value"`
	UpdatedBy string     `json:"updated_by,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// SettingFromDomain converts a domain setting to response.
func SettingFromDomain(s *domain.Setting) *SettingResponse {
	resp := &SettingResponse{
		Key:       s.Key,
		Value:     s.Value,
		UpdatedBy: s.UpdatedBy,
	}
	if !s.UpdatedAt.IsZero() {
		updatedAt := s.UpdatedAt
		resp.UpdatedAt = &updatedAt
	}
	return resp
}

// ConsistencyResponse reports ledger invariant violations.
type ConsistencyResponse struct {
	Status                string `json:"status"`
	Consistent            bool   `json:"consistent"`
	WalletCount           int64  `json:"wallet_count"`
	TransactionCount      int64  `json:"transaction_count"`
	DriftedWallets        int64  `json:"drifted_wallets"`
	NegativeWallets       int64  `json:"negative_wallets"`
	InvalidSnapshots      int64  `json:"invalid_snapshots"`
	TotalBalance          int64  `json:"total_balance"`
	TotalEarnedMinusSpent int64  `json:"total_earned_minus_spent"`
}

// ConsistencyFromReport converts a consistency report to response.
func ConsistencyFromReport(r *usecase.LedgerConsistency, consistent bool) *ConsistencyResponse {
	status := "consistent"
	if !consistent {
		status = "inconsistent"
	}

	return &ConsistencyResponse{
		Status:                status,
		Consistent:            consistent,
		WalletCount:           r.WalletCount,
		TransactionCount:      r.TransactionCount,
		DriftedWallets:        r.DriftedWallets,
		NegativeWallets:       r.NegativeWallets,
		InvalidSnapshots:      r.InvalidSnapshots,
		TotalBalance:          int64(r.TotalBalance),
		TotalEarnedMinusSpent: int64(r.TotalEarnedMinusSpent),
	}
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message,omitempty"`
	Needed    *int64 `json:"needed,omitempty"`
	Available *int64 `json:"available,omitempty"`
}
