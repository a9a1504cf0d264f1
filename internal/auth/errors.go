package auth

import "errors"

// Domain errors for the auth package.
//
// These errors can be checked using errors.Is():
//
//	if errors.Is(err, auth.ErrUserNotFound) {
//	    // handle not found case
//	}
var (
	// ErrUserNotFound is returned when a user ID or email does not exist.
	ErrUserNotFound = errors.New("auth: user not found")

	// ErrEmailExists is returned when registering with an email already in use.
	ErrEmailExists = errors.New("auth: email already registered")

	// ErrInvalidEmail is returned when an email fails format validation.
	ErrInvalidEmail = errors.New("auth: invalid email address")

	// ErrInvalidCredentials is returned when email/password verification fails.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")

	// ErrTokenInvalid is returned when a JWT fails signature, expiry, or
	// claim validation.
	ErrTokenInvalid = errors.New("auth: token invalid")

	// ErrWrongTokenType is returned when an access token is presented where
	// a refresh token is required, or vice versa.
	ErrWrongTokenType = errors.New("auth: wrong token type")
)
