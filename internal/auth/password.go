package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2id cost parameters. Memory-hard enough to slow offline guessing
// of leaked hashes while keeping registration fast on the small servers
// this typically runs on.
const (
	hashIterations  = 3
	hashMemoryKiB   = 64 * 1024 // 64 MiB
	hashParallelism = 1
	hashLength      = 32
	saltLength      = 16
)

var errMalformedHash = errors.New("malformed password hash")

// HashPassword derives an Argon2id hash of the password and encodes it
// in the PHC string format VerifyPassword understands:
//
//	$argon2id$v=19$m=65536,t=3,p=1$<salt>$<digest>
//
// Cost parameters travel inside the string, so they can be raised later
// without invalidating stored hashes.
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}

	digest := argon2.IDKey([]byte(password), salt,
		hashIterations, hashMemoryKiB, hashParallelism, hashLength)

	encoded := fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		hashMemoryKiB, hashIterations, hashParallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(digest),
	)
	return encoded, nil
}

// VerifyPassword reports whether the password matches a stored hash.
// The digest comparison is constant time.
func VerifyPassword(password, stored string) (bool, error) {
	salt, want, costs, err := parseHash(stored)
	if err != nil {
		return false, err
	}

	got := argon2.IDKey([]byte(password), salt,
		costs.iterations, costs.memoryKiB, costs.parallelism,
		uint32(len(want))) //nolint:gosec // G115: digest length always fits uint32

	return subtle.ConstantTimeCompare(want, got) == 1, nil
}

// hashCosts are the Argon2id parameters recovered from a stored hash.
type hashCosts struct {
	iterations  uint32
	memoryKiB   uint32
	parallelism uint8
}

// parseHash splits a PHC-encoded hash into salt, digest and costs.
func parseHash(stored string) (salt, digest []byte, costs hashCosts, err error) {
	fields := strings.Split(stored, "$")
	if len(fields) != 6 { //nolint:mnd // PHC format has exactly 6 $-delimited fields
		return nil, nil, costs, errMalformedHash
	}
	if fields[1] != "argon2id" {
		return nil, nil, costs, fmt.Errorf("%w: unsupported algorithm %q", errMalformedHash, fields[1])
	}

	var version int
	if _, scanErr := fmt.Sscanf(fields[2], "v=%d", &version); scanErr != nil {
		return nil, nil, costs, fmt.Errorf("%w: version field", errMalformedHash)
	}
	if _, scanErr := fmt.Sscanf(fields[3], "m=%d,t=%d,p=%d",
		&costs.memoryKiB, &costs.iterations, &costs.parallelism); scanErr != nil {
		return nil, nil, costs, fmt.Errorf("%w: cost field", errMalformedHash)
	}

	salt, err = base64.RawStdEncoding.DecodeString(fields[4])
	if err != nil {
		return nil, nil, costs, fmt.Errorf("%w: salt not base64", errMalformedHash)
	}
	digest, err = base64.RawStdEncoding.DecodeString(fields[5])
	if err != nil {
		return nil, nil, costs, fmt.Errorf("%w: digest not base64", errMalformedHash)
	}

	return salt, digest, costs, nil
}
