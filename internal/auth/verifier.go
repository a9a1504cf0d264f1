package auth

import (
	"context"
)

// Verifier resolves an opaque bearer token to a user identity.
//
// Verification is two-phase: the JWT signature and expiry are checked
// without touching storage, and only then is the subject resolved to a
// confirmed-existing user record. Anything that goes wrong at either phase
// yields Anonymous — the Verifier never returns an error past this boundary.
type Verifier struct {
	users  UserRepository
	secret string
}

// NewVerifier creates a Verifier backed by the given user repository.
func NewVerifier(users UserRepository, secret string) *Verifier {
	return &Verifier{users: users, secret: secret}
}

// Verify validates a bearer token and resolves it to an Identity.
//
// The success path performs exactly one storage read (the user lookup).
// Inactive accounts verify as Anonymous: a disabled user keeps a valid
// token until it expires, but must not keep access.
func (v *Verifier) Verify(ctx context.Context, token string) Identity {
	if token == "" {
		return AnonymousIdentity()
	}

	claims, err := ParseToken(token, v.secret, TokenTypeAccess)
	if err != nil {
		return AnonymousIdentity()
	}

	userID, err := claims.UserID()
	if err != nil {
		return AnonymousIdentity()
	}

	user, err := v.users.GetByID(ctx, userID)
	if err != nil || !user.IsActive {
		return AnonymousIdentity()
	}

	return AuthenticatedIdentity(user.ID)
}
