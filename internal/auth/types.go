package auth

import (
	"regexp"
	"time"
)

// emailPattern is a pragmatic email format check; full RFC 5322 validation
// is deliberately not attempted.
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// maxEmailLength is the maximum allowed email length.
const maxEmailLength = 254

// IsValidEmail checks if an email address meets format requirements.
func IsValidEmail(email string) bool {
	return len(email) <= maxEmailLength && emailPattern.MatchString(email)
}

// User represents an authenticated human account.
// Accounts are identified by email; there is no separate username.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PhoneNumber  string    `json:"phone_number"`
	PasswordHash string    `json:"-"` // never serialised
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Identity is the result of verifying a bearer token.
// A zero Identity is not meaningful; use Anonymous() or Authenticated().
type Identity struct {
	UserID    int64
	Anonymous bool
}

// Anonymous returns the identity used for unverifiable tokens.
func AnonymousIdentity() Identity {
	return Identity{Anonymous: true}
}

// Authenticated returns the identity for a confirmed user.
func AuthenticatedIdentity(userID int64) Identity {
	return Identity{UserID: userID}
}
