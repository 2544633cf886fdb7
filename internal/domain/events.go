package domain

import "time"

// Event types
const (
	EventTypeWalletCredited = "wallet.credited"
	EventTypeWalletDebited  = "wallet.debited"
)

// Aggregate types
const (
	AggregateTypeWallet = "wallet"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// WalletCreditedEvent payload
type WalletCreditedEvent struct {
	WalletID      string `json:"wallet_id"`
	UserID        string `json:"user_id"`
	TransactionID string `json:"transaction_id"`
	ListingID     string `json:"listing_id"`
	Amount        int64  `json:"amount"`
	BalanceAfter  int64  `json:"balance_after"`
	EventAt       string `json:"event_at"`
}

// WalletDebitedEvent payload
type WalletDebitedEvent struct {
	WalletID      string `json:"wallet_id"`
	UserID        string `json:"user_id"`
	TransactionID string `json:"transaction_id"`
	ListingID     string `json:"listing_id"`
	Amount        int64  `json:"amount"`
	BalanceAfter  int64  `json:"balance_after"`
	SlotsAdded    int    `json:"slots_added"`
	EventAt       string `json:"event_at"`
}
