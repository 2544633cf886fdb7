package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/iho/rentledger/internal/domain"
	"github.com/iho/rentledger/internal/usecase"
)

const listingColumns = `id, owner_id, listing_price, commission_amount, payment_status, max_image_slots, created_at, updated_at`

// ListingRepository implements usecase.ListingRepository over the listings
// table owned by the property module.
type ListingRepository struct {
	db DB
}

// NewListingRepository creates a new ListingRepository.
func NewListingRepository(db DB) *ListingRepository {
	return &ListingRepository{db: db}
}

// GetByID retrieves a listing.
func (r *ListingRepository) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	row := r.db.QueryRow(ctx, `SELECT `+listingColumns+` FROM listings WHERE id = $1`, id)
	return scanListing(row)
}

// GetByIDForUpdate retrieves a listing with a FOR UPDATE lock.
func (r *ListingRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Listing, error) {
	db, err := pgxTx(tx)
	if err != nil {
		return nil, err
	}

	row := db.QueryRow(ctx, `SELECT `+listingColumns+` FROM listings WHERE id = $1 FOR UPDATE`, id)
	return scanListing(row)
}

// SetCommissionAmount stamps the credited commission. The update only
// matches an unstamped row.
func (r *ListingRepository) SetCommissionAmount(ctx context.Context, tx usecase.Transaction, id string, amount domain.Money, updatedAt time.Time) error {
	db, err := pgxTx(tx)
	if err != nil {
		return err
	}

	tag, err := db.Exec(ctx, `
		UPDATE listings
		SET commission_amount = $2, updated_at = $3
		WHERE id = $1 AND commission_amount IS NULL
	`, id, int64(amount), updatedAt)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrAlreadyCredited
	}

	return nil
}

// AddImageSlots increments max_image_slots and returns the new value.
func (r *ListingRepository) AddImageSlots(ctx context.Context, tx usecase.Transaction, id string, count int, updatedAt time.Time) (int, error) {
	db, err := pgxTx(tx)
	if err != nil {
		return 0, err
	}

	var slots int32
	err = db.QueryRow(ctx, `
		UPDATE listings
		SET max_image_slots = max_image_slots + $2, updated_at = $3
		WHERE id = $1
		RETURNING max_image_slots
	`, id, int32(count), updatedAt).Scan(&slots)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrListingNotFound
		}

		return 0, err
	}

	return int(slots), nil
}

// ListUncredited returns paid, priced listings without a commission stamp,
// oldest first.
func (r *ListingRepository) ListUncredited(ctx context.Context, limit int) ([]*domain.Listing, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+listingColumns+`
		FROM listings
		WHERE payment_status = $1
		  AND listing_price IS NOT NULL
		  AND commission_amount IS NULL
		ORDER BY created_at, id
		LIMIT $2
	`, string(domain.PaymentStatusPaid), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var listings []*domain.Listing
	for rows.Next() {
		listing, err := scanListing(rows)
		if err != nil {
			return nil, err
		}

		listings = append(listings, listing)
	}

	return listings, rows.Err()
}

func scanListing(row pgx.Row) (*domain.Listing, error) {
	var (
		l               domain.Listing
		price, credited *int64
		status          string
		slots           int32
	)

	err := row.Scan(&l.ID, &l.OwnerID, &price, &credited, &status, &slots, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrListingNotFound
		}

		return nil, err
	}

	if price != nil {
		p := domain.Money(*price)
		l.ListingPrice = &p
	}

	if credited != nil {
		c := domain.Money(*credited)
		l.CommissionAmount = &c
	}

	l.PaymentStatus = domain.PaymentStatus(status)
	l.MaxImageSlots = int(slots)

	return &l, nil
}
