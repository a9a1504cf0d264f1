package auth

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token type values carried in the "typ" claim. Refresh tokens cannot be
// used as access tokens and vice versa.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// CustomClaims extends JWT standard claims with the token type.
type CustomClaims struct {
	jwt.RegisteredClaims
	TokenType string `json:"typ"`
}

// UserID returns the subject claim parsed as an integer user ID.
func (c *CustomClaims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: non-numeric subject", ErrTokenInvalid)
	}
	return id, nil
}

// GenerateAccessToken creates a signed JWT access token for a user.
// Access tokens are short-lived and validated by signature only (no DB hit
// for the signature itself).
func GenerateAccessToken(userID int64, secret string, ttlMinutes int) (string, error) {
	if ttlMinutes <= 0 {
		ttlMinutes = 30 //nolint:mnd // default 30-minute access token TTL
	}
	return generateToken(userID, secret, ttlMinutes, TokenTypeAccess)
}

// GenerateRefreshToken creates a signed JWT refresh token for a user.
// Refresh tokens are long-lived and only accepted by the refresh endpoint.
func GenerateRefreshToken(userID int64, secret string, ttlMinutes int) (string, error) {
	if ttlMinutes <= 0 {
		ttlMinutes = 1440 //nolint:mnd // default 24-hour refresh token TTL
	}
	return generateToken(userID, secret, ttlMinutes, TokenTypeRefresh)
}

func generateToken(userID int64, secret string, ttlMinutes int, tokenType string) (string, error) {
	now := time.Now()
	claims := CustomClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(ttlMinutes) * time.Minute)),
			ID:        uuid.NewString(),
		},
		TokenType: tokenType,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("signing %s token: %w", tokenType, err)
	}
	return signed, nil
}

// ParseToken validates and parses a JWT, returning the custom claims.
// It checks the signature, expiry, and required fields, and that the token
// carries the expected type.
func ParseToken(tokenString, secret, expectedType string) (*CustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{}, func(_ *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrTokenInvalid)
	}

	if claims.TokenType != expectedType {
		return nil, fmt.Errorf("%w: got %q, want %q", ErrWrongTokenType, claims.TokenType, expectedType)
	}

	return claims, nil
}
