package domain

import (
	"errors"
	"time"
)

// User is the authenticated caller as seen by the ledger. Accounts are
// issued by the identity collaborator; only the id and role matter here.
type User struct {
	ID        string
	Email     string
	Name      string
	Role      Role
	CreatedAt time.Time
}

// Role represents a user's access level
type Role string

const (
	// RoleAdmin may reconcile, credit and manage settings
	RoleAdmin Role = "admin"

	// RoleOwner lists properties and spends wallet credit on them
	RoleOwner Role = "owner"
)

var validRoles = map[Role]bool{
	RoleAdmin: true,
	RoleOwner: true,
}

// IsValid checks if the role is a valid role
func (r Role) IsValid() bool {
	return validRoles[r]
}

// IsAdmin reports whether the role has administrative access.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// CanManageListing reports whether a caller may spend on a listing.
func CanManageListing(callerID string, role Role, listing *Listing) bool {
	return role.IsAdmin() || listing.OwnerID == callerID
}

// Authentication errors
var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrForbidden        = errors.New("forbidden")
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInsufficientRole = errors.New("insufficient role for this operation")
)
