package vault

import (
	"crypto/sha256"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

// DeriveKey stretches a master password into a 32-byte key with
// PBKDF2-HMAC-SHA256. Deterministic for the same inputs; the iteration
// count is the only brute-force defense, so it must stay high.
func DeriveKey(password string, salt []byte, iterations int) ([]byte, error) {
	if len(salt) != SaltLen {
		return nil, fmt.Errorf("%w: salt must be %d bytes, got %d", ErrInvalidInput, SaltLen, len(salt))
	}
	if iterations < 1 {
		return nil, fmt.Errorf("%w: iterations must be >= 1", ErrInvalidInput)
	}
	return pbkdf2.Key([]byte(password), salt, iterations, KeyLen, sha256.New), nil
}
