// Package auth provides authentication for Home Electronics Core.
//
// It implements:
//   - Argon2id password hashing (OWASP 2025 recommendation)
//   - JWT HS256 access and refresh tokens (email login, integer user IDs)
//   - A credential Verifier that resolves an opaque bearer token to a
//     confirmed user identity or Anonymous
//
// The Verifier is deliberately forgiving: any decode failure, bad
// signature, expiry, or unknown user resolves to Anonymous rather than an
// error, so transport handlers can treat "cannot prove who you are" as a
// single case.
package auth
