package domain

import "time"

// PaymentStatus of a listing fee, set by the payment collaborator.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// Listing holds the property-listing fields the wallet ledger reads and
// writes. The listing itself is owned by the property module.
type Listing struct {
	ID               string
	OwnerID          string
	ListingPrice     *Money
	CommissionAmount *Money
	PaymentStatus    PaymentStatus
	MaxImageSlots    int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// IsCredited reports whether a commission was already stamped on the listing.
func (l *Listing) IsCredited() bool {
	return l.CommissionAmount != nil
}

// ValidateCreditable checks the commission preconditions.
func (l *Listing) ValidateCreditable() error {
	if l.IsCredited() {
		return ErrAlreadyCredited
	}

	if l.PaymentStatus != PaymentStatusPaid {
		return ErrListingNotPaid
	}

	if l.ListingPrice == nil {
		return ErrListingPriceMissing
	}

	return nil
}
