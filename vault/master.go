package vault

import (
	"crypto/subtle"
	"fmt"
	"os"
)

// MasterSecret owns the verifier file: Salt(16) || DerivedKey(32), raw
// bytes, no header. It authenticates the master password and hands out the
// derived key; it never touches the credential store.
type MasterSecret struct {
	path       string
	iterations int
}

func NewMasterSecret(path string) *MasterSecret {
	return &MasterSecret{path: path, iterations: DefaultIterations}
}

// Configured reports whether a verifier file exists, i.e. whether a master
// password has been set up.
func (m *MasterSecret) Configured() bool {
	_, err := os.Stat(m.path)
	return err == nil
}

// Setup generates a fresh salt, derives the key from password and writes the
// verifier file. Called on first run and as the final step of Rotate; it
// overwrites any existing verifier.
func (m *MasterSecret) Setup(password string) error {
	salt, err := randBytes(SaltLen)
	if err != nil {
		return err
	}
	key, err := DeriveKey(password, salt, m.iterations)
	if err != nil {
		return err
	}
	rec := make([]byte, 0, VerifierLen)
	rec = append(rec, salt...)
	rec = append(rec, key...)
	if err := atomicWriteFile(m.path, rec, 0600); err != nil {
		return fmt.Errorf("%w: writing verifier: %v", ErrStorage, err)
	}
	return nil
}

func (m *MasterSecret) read() (salt, stored []byte, err error) {
	raw, err := os.ReadFile(m.path)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: reading verifier: %v", ErrStorage, err)
	}
	if len(raw) != VerifierLen {
		return nil, nil, fmt.Errorf("%w: verifier is %d bytes, want %d", ErrStorage, len(raw), VerifierLen)
	}
	return raw[:SaltLen], raw[SaltLen:], nil
}

// Unlock recomputes the derived key from password and the stored salt and
// compares it against the stored verifier in constant time. On a match it
// returns the key, which doubles as the vault working key; on a mismatch it
// returns ok=false with no error. The single derivation serves both
// authentication and encryption.
func (m *MasterSecret) Unlock(password string) (key []byte, ok bool, err error) {
	salt, stored, err := m.read()
	if err != nil {
		return nil, false, err
	}
	key, err = DeriveKey(password, salt, m.iterations)
	if err != nil {
		return nil, false, err
	}
	if subtle.ConstantTimeCompare(key, stored) != 1 {
		zero(key)
		return nil, false, nil
	}
	return key, true, nil
}

// Verify reports whether password matches the stored master password.
func (m *MasterSecret) Verify(password string) (bool, error) {
	key, ok, err := m.Unlock(password)
	if key != nil {
		zero(key)
	}
	return ok, err
}

// Rotate verifies oldPassword, then rewrites the verifier with a fresh salt
// derived from newPassword and returns the new key. The caller must decrypt
// all records under the old key before calling and re-encrypt under the
// returned key after; until that re-encryption persists, the old store
// ciphertext is unreadable with the new verifier.
func (m *MasterSecret) Rotate(oldPassword, newPassword string) ([]byte, error) {
	ok, err := m.Verify(oldPassword)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrAuthFailed
	}
	if err := m.Setup(newPassword); err != nil {
		return nil, err
	}
	key, ok, err := m.Unlock(newPassword)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: verifier does not match freshly set password", ErrStorage)
	}
	return key, nil
}
