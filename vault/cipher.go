package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"
)

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// Zero wipes key material from a byte slice.
func Zero(b []byte) { zero(b) }

func randBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return nil, err
	}
	return b, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != KeyLen {
		return nil, fmt.Errorf("%w: key must be %d bytes, got %d", ErrInvalidInput, KeyLen, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Encrypt seals plaintext with AES-256-GCM under key and returns
// nonce || ciphertext || tag. A fresh random nonce is drawn on every call;
// nonce reuse under the same key breaks GCM entirely.
func Encrypt(plaintext, key []byte) ([]byte, error) {
	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	nonce, err := randBytes(NonceLen)
	if err != nil {
		return nil, err
	}
	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Decrypt opens a nonce || ciphertext || tag blob produced by Encrypt.
// Returns ErrAuthFailed when the tag does not verify (wrong key, corrupted
// data, or tampering) without distinguishing which.
func Decrypt(blob, key []byte) ([]byte, error) {
	if len(blob) < NonceLen+TagLen {
		return nil, fmt.Errorf("%w: ciphertext shorter than %d bytes", ErrCorrupt, NonceLen+TagLen)
	}
	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	plaintext, err := aead.Open(nil, blob[:NonceLen], blob[NonceLen:], nil)
	if err != nil {
		return nil, ErrAuthFailed
	}
	return plaintext, nil
}
