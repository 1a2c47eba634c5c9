package vault

import "errors"

const (
	SaltLen     = 16
	KeyLen      = 32
	NonceLen    = 12
	TagLen      = 16
	VerifierLen = SaltLen + KeyLen

	// DefaultIterations is the PBKDF2 work factor. Changing it invalidates
	// every existing verifier file.
	DefaultIterations = 100_000
)

// Sentinel errors for the vault core. Callers should match with errors.Is.
var (
	ErrInvalidInput = errors.New("vault: invalid input")
	ErrAuthFailed   = errors.New("vault: authentication failed")
	ErrCorrupt      = errors.New("vault: corrupt data")
	ErrStorage      = errors.New("vault: storage error")
	ErrNotFound     = errors.New("vault: not found")
)

// Credential is a decrypted record as handed to callers. Identity is the
// (Service, Username) pair.
type Credential struct {
	Service  string
	Username string
	Password string
	Date     string
}

// storedRecord is the at-rest form inside the encrypted store blob. Password
// holds base64(nonce || ciphertext || tag) of the password encrypted on its
// own under the vault key.
type storedRecord struct {
	Service  string `json:"service"`
	Username string `json:"username"`
	Password string `json:"password"`
	Date     string `json:"date"`
}

func recordKey(service, username string) string {
	return service + "_" + username
}
