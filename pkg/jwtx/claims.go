package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultAccessTokenTTL is the default lifetime for access tokens.
// Short-lived for security - typical range is 15m to 1h.
const DefaultAccessTokenTTL = 30 * time.Minute

// Claims are the access-token claims. The subject is the account id; once
// issued a token stays valid for its full TTL, there is no revocation list.
type Claims struct {
	jwt.RegisteredClaims

	// Username for the authenticated account.
	Username string `json:"username,omitempty"`
}

// NewAccessClaims builds minimally-correct claims for an access token.
func NewAccessClaims(
	subject, username, issuer string,
	ttl time.Duration,
	now time.Time,
) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		Username: username,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// ValidateIssuer checks if the issuer matches expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil // nothing to enforce
	}

	if c.Issuer != expected {
		return ErrIssuer
	}

	return nil
}

// ValidateExpiry ensures the token hasn't expired (exp) and isn't before nbf.
func (c *Claims) ValidateExpiry() error {
	return c.ValidateExpiryAt(time.Now().UTC())
}

// ValidateExpiryAt is ValidateExpiry against an explicit clock, for tests.
func (c *Claims) ValidateExpiryAt(now time.Time) error {
	// A token is invalid from the instant exp is reached.
	if c.ExpiresAt != nil && !now.Before(c.ExpiresAt.Time) {
		return ErrExpired
	}

	if c.NotBefore != nil && now.Before(c.NotBefore.Time) {
		return ErrNotYetValid
	}

	return nil
}
