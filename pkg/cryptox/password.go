// Package cryptox provides password hashing for stored account secrets.
package cryptox

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/argon2"
)

// Default Argon2id parameters. The cost here is the intentional slow step
// bounding offline brute force; do not lower it to shave request latency.
const (
	defaultMemory      = 64 * 1024 // KiB
	defaultIterations  = 3
	defaultParallelism = 2
	saltLength         = 16
	keyLength          = 32
)

// Hasher produces and verifies Argon2id password hashes in PHC string form.
// The parameters are embedded in every hash it emits, so stored hashes stay
// verifiable if the configured cost changes later.
type Hasher struct {
	memory      uint32
	iterations  uint32
	parallelism uint8
}

// NewHasher returns a Hasher with the default cost parameters.
func NewHasher() *Hasher {
	return &Hasher{
		memory:      defaultMemory,
		iterations:  defaultIterations,
		parallelism: defaultParallelism,
	}
}

// Hash generates a PHC-format Argon2id hash string including a random salt
// and the cost parameters.
func (h *Hasher) Hash(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	digest := argon2.IDKey(
		[]byte(password),
		salt,
		h.iterations,
		h.memory,
		h.parallelism,
		keyLength,
	)

	b64Salt := base64.RawStdEncoding.EncodeToString(salt)
	b64Digest := base64.RawStdEncoding.EncodeToString(digest)

	return fmt.Sprintf(
		"$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		h.memory,
		h.iterations,
		h.parallelism,
		b64Salt,
		b64Digest,
	), nil
}

// Verify reports whether password matches the PHC-encoded hash. It fails
// closed: a malformed or truncated stored hash yields false, and the caller
// cannot tell a parse failure apart from a plain mismatch.
func (h *Hasher) Verify(password, encodedHash string) bool {
	salt, expected, iters, mem, par, ok := parsePHC(encodedHash)
	if !ok {
		return false
	}

	computed := argon2.IDKey(
		[]byte(password),
		salt,
		iters,
		mem,
		par,
		uint32(len(expected)), // #nosec G115 - digest lengths are bounded by the PHC string
	)

	return subtle.ConstantTimeCompare(computed, expected) == 1
}

// parsePHC decomposes "$argon2id$v=19$m=X,t=Y,p=Z$salt$hash".
func parsePHC(encoded string) (salt, digest []byte, iters, mem uint32, par uint8, ok bool) {
	parts := make([]string, 0, 6)
	start := 0
	for i := range len(encoded) {
		if encoded[i] == '$' {
			parts = append(parts, encoded[start:i])
			start = i + 1
		}
	}
	parts = append(parts, encoded[start:])

	// Expected structure: ["", "argon2id", "v=19", "m=X,t=Y,p=Z", salt, hash]
	if len(parts) != 6 || parts[1] != "argon2id" || parts[2] != "v=19" {
		return nil, nil, 0, 0, 0, false
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &mem, &iters, &par); err != nil {
		return nil, nil, 0, 0, 0, false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return nil, nil, 0, 0, 0, false
	}
	digest, err = base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(digest) == 0 {
		return nil, nil, 0, 0, 0, false
	}

	return salt, digest, iters, mem, par, true
}
