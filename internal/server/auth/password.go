// Package auth holds the security-sensitive core of authkeeper: password
// hashing, access token issuance and verification, and the request guard
// that turns a bearer credential into a stored identity.
package auth

import (
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"golang.org/x/crypto/argon2"
)

// Default argon2id parameters (OWASP baseline).
const (
	argon2Time    = 1
	argon2Memory  = 64 * 1024 // KiB
	argon2Threads = 4
	argon2SaltLen = 16
	argon2KeyLen  = 32

	maxArgon2Memory = 4 * 1024 * 1024 // KiB
)

// PasswordHasher hashes passwords for storage and checks candidates against
// stored hashes.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encodedHash string) bool
}

// Argon2idHasher implements PasswordHasher with argon2id, encoding results in
// the PHC string format:
//
//	$argon2id$v=19$m=65536,t=1,p=4$<salt>$<hash>
type Argon2idHasher struct {
	time    uint32
	memory  uint32
	threads uint8
}

func NewArgon2idHasher() *Argon2idHasher {
	return &Argon2idHasher{time: argon2Time, memory: argon2Memory, threads: argon2Threads}
}

// NewArgon2idHasherWithParams builds a hasher with custom cost parameters.
// Verification always uses the parameters stored in the hash, so hashes made
// with other parameters keep verifying.
func NewArgon2idHasherWithParams(time, memory uint32, threads uint8) *Argon2idHasher {
	return &Argon2idHasher{time: time, memory: memory, threads: threads}
}

// Hash derives a fresh-salted argon2id hash. Any string, including the empty
// one, is accepted.
func (h *Argon2idHasher) Hash(password string) (string, error) {
	salt := common.GenerateRandByteArray(argon2SaltLen)
	key := argon2.IDKey([]byte(password), salt, h.time, h.memory, h.threads, argon2KeyLen)

	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.memory,
		h.time,
		h.threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify reports whether password matches encodedHash. Malformed hashes
// never match.
func (h *Argon2idHasher) Verify(password, encodedHash string) bool {
	p, salt, expected, ok := decodeHash(encodedHash)
	if !ok {
		return false
	}

	computed := argon2.IDKey([]byte(password), salt, p.time, p.memory, p.threads, uint32(len(expected)))

	return subtle.ConstantTimeCompare(computed, expected) == 1
}

type hashParams struct {
	time    uint32
	memory  uint32
	threads uint8
}

func decodeHash(encoded string) (hashParams, []byte, []byte, bool) {
	var p hashParams

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return p, nil, nil, false
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return p, nil, nil, false
	}

	var threads uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.memory, &p.time, &threads); err != nil {
		return p, nil, nil, false
	}
	// argon2.IDKey panics on zero time or threads
	if p.time == 0 || threads == 0 || threads > 255 || p.memory > maxArgon2Memory {
		return p, nil, nil, false
	}
	p.threads = uint8(threads)

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return p, nil, nil, false
	}

	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 || len(key) > 1024 {
		return p, nil, nil, false
	}

	return p, salt, key, true
}
