package postgres

import (
	"github.com/oklog/ulid/v2"
)

// ULIDGenerator issues wallet, transaction and outbox IDs. IDs made in the
// same process sort in creation order, which the history and outbox
// queries use as a tie-breaker on equal timestamps.
type ULIDGenerator struct{}

// NewULIDGenerator creates a new ULIDGenerator.
func NewULIDGenerator() *ULIDGenerator {
	return &ULIDGenerator{}
}

// Generate returns a new monotonic ULID string.
func (g *ULIDGenerator) Generate() string {
	return ulid.Make().String()
}
