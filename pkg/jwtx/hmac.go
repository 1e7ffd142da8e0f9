// Package jwtx issues and verifies HMAC-signed JWT access tokens using a
// single process-wide secret key configured at startup.
package jwtx

import (
	"errors"
	"fmt"
	"slices"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformed   = errors.New("jwtx: malformed token")
	ErrAlgMismatch = errors.New("jwtx: algorithm mismatch")
	ErrInvalidSig  = errors.New("jwtx: invalid signature")

	ErrIssuer      = errors.New("jwtx: issuer mismatch")
	ErrExpired     = errors.New("jwtx: token expired")
	ErrNotYetValid = errors.New("jwtx: token not yet valid")
)

// hmacAlgorithms are the signing algorithms an HMAC signer accepts.
var hmacAlgorithms = []string{"HS256", "HS384", "HS512"}

// Signer mints signed tokens from claims.
type Signer interface {
	Alg() string
	Sign(Claims) (string, error)
}

// Verifier validates a JWT and gives you back the claims if it's legit.
// Expiry is left to the caller via Claims.ValidateExpiry, so middleware can
// distinguish "expired" from "forged".
type Verifier interface {
	Verify(token string) (Claims, error)
}

// HMACSigner signs tokens with a shared secret (HS256/HS384/HS512).
type HMACSigner struct {
	alg    string
	secret []byte
}

// NewHMACSigner builds a signer for the given algorithm and secret.
func NewHMACSigner(alg string, secret []byte) (*HMACSigner, error) {
	if !slices.Contains(hmacAlgorithms, alg) {
		return nil, fmt.Errorf("jwtx: unsupported HMAC algorithm %q", alg)
	}
	if len(secret) == 0 {
		return nil, errors.New("jwtx: empty signing secret")
	}
	return &HMACSigner{alg: alg, secret: secret}, nil
}

func (s *HMACSigner) Alg() string { return s.alg }

func (s *HMACSigner) Sign(claims Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.GetSigningMethod(s.alg), claims)
	return token.SignedString(s.secret)
}

// HMACVerifier verifies tokens signed with the shared secret. The accepted
// algorithm is pinned to the configured one; a token carrying a different
// "alg" header fails even if its signature would check out.
type HMACVerifier struct {
	alg    string
	secret []byte
	issuer string
}

// NewHMACVerifier builds a verifier for the given algorithm, secret and
// expected issuer. An empty issuer disables the issuer check.
func NewHMACVerifier(alg string, secret []byte, issuer string) (*HMACVerifier, error) {
	if !slices.Contains(hmacAlgorithms, alg) {
		return nil, fmt.Errorf("jwtx: unsupported HMAC algorithm %q", alg)
	}
	if len(secret) == 0 {
		return nil, errors.New("jwtx: empty signing secret")
	}
	return &HMACVerifier{alg: alg, secret: secret, issuer: issuer}, nil
}

func (v *HMACVerifier) Verify(raw string) (Claims, error) {
	var claims Claims

	_, err := jwt.ParseWithClaims(raw, &claims,
		func(t *jwt.Token) (any, error) {
			if t.Method.Alg() != v.alg {
				return nil, ErrAlgMismatch
			}
			return v.secret, nil
		},
		jwt.WithValidMethods(hmacAlgorithms),
		// Expiry is validated separately via Claims.ValidateExpiry.
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return Claims{}, mapParseError(err)
	}

	if err := claims.ValidateIssuer(v.issuer); err != nil {
		return Claims{}, err
	}

	return claims, nil
}

func mapParseError(err error) error {
	switch {
	case errors.Is(err, ErrAlgMismatch):
		return ErrAlgMismatch
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrInvalidSig
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformed
	default:
		return fmt.Errorf("jwtx: verify: %w", err)
	}
}
