package vault

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"
)

// Vault holds the in-memory record set and persists it as one encrypted
// blob: Nonce(12) || AES-GCM ciphertext+tag of the JSON-encoded record map.
// Every mutation re-encrypts and rewrites the whole file. One open Vault
// owns the file for the process; concurrent processes are out of scope.
type Vault struct {
	path    string
	key     []byte
	records map[string]storedRecord
	now     func() time.Time
}

// Open reads the store file at path and decrypts it with key. An absent or
// zero-length file yields an empty vault; a decryption failure is fatal and
// never masked as an empty vault, since that would silently hide existing
// data behind a wrong key.
func Open(path string, key []byte) (*Vault, error) {
	v := &Vault{
		path:    path,
		key:     append([]byte(nil), key...),
		records: make(map[string]storedRecord),
		now:     time.Now,
	}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return v, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading store: %v", ErrStorage, err)
	}
	if len(raw) == 0 {
		return v, nil
	}

	plaintext, err := Decrypt(raw, key)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	if err := json.Unmarshal(plaintext, &v.records); err != nil {
		return nil, fmt.Errorf("%w: decoding store: %v", ErrCorrupt, err)
	}
	return v, nil
}

// Len returns the number of stored credentials.
func (v *Vault) Len() int { return len(v.records) }

// Add encrypts password on its own under the vault key and upserts the
// record; a colliding (service, username) pair overwrites. The whole set is
// persisted before Add returns.
func (v *Vault) Add(service, username, password string) error {
	if service == "" || username == "" {
		return fmt.Errorf("%w: service and username must not be empty", ErrInvalidInput)
	}
	blob, err := Encrypt([]byte(password), v.key)
	if err != nil {
		return err
	}
	v.records[recordKey(service, username)] = storedRecord{
		Service:  service,
		Username: username,
		Password: base64.StdEncoding.EncodeToString(blob),
		Date:     v.now().Format("2006-01-02"),
	}
	return v.persist()
}

// Get returns the decrypted credential for the (service, username) pair, or
// ErrNotFound.
func (v *Vault) Get(service, username string) (Credential, error) {
	rec, ok := v.records[recordKey(service, username)]
	if !ok {
		return Credential{}, ErrNotFound
	}
	return v.decryptRecord(rec)
}

// All returns every credential with its password decrypted, sorted by
// service then username. Plaintext is never cached across calls.
func (v *Vault) All() ([]Credential, error) {
	return v.collect(func(storedRecord) bool { return true })
}

// Search returns credentials whose service name contains substr,
// case-insensitively, in the same order as All.
func (v *Vault) Search(substr string) ([]Credential, error) {
	q := strings.ToLower(substr)
	return v.collect(func(rec storedRecord) bool {
		return strings.Contains(strings.ToLower(rec.Service), q)
	})
}

// Delete removes the record for the (service, username) pair and persists
// the remaining set. Returns false when no such record exists.
func (v *Vault) Delete(service, username string) (bool, error) {
	id := recordKey(service, username)
	if _, ok := v.records[id]; !ok {
		return false, nil
	}
	delete(v.records, id)
	if err := v.persist(); err != nil {
		return false, err
	}
	return true, nil
}

// Rekey decrypts every stored password under the current key, re-encrypts
// under newKey and persists the set. Nothing is persisted if any record
// fails to decrypt, so a bad current key cannot half-convert the store.
func (v *Vault) Rekey(newKey []byte) error {
	rekeyed := make(map[string]storedRecord, len(v.records))
	for id, rec := range v.records {
		plain, err := v.decryptPassword(rec)
		if err != nil {
			return fmt.Errorf("rekeying %q: %w", rec.Service, err)
		}
		blob, err := Encrypt([]byte(plain), newKey)
		if err != nil {
			return err
		}
		rec.Password = base64.StdEncoding.EncodeToString(blob)
		rekeyed[id] = rec
	}

	oldKey, oldRecords := v.key, v.records
	v.key, v.records = append([]byte(nil), newKey...), rekeyed
	if err := v.persist(); err != nil {
		v.key, v.records = oldKey, oldRecords
		return err
	}
	zero(oldKey)
	return nil
}

// persist serializes the record map, encrypts it whole and atomically
// replaces the store file. On any error the previous on-disk state is left
// intact.
func (v *Vault) persist() error {
	plaintext, err := json.Marshal(v.records)
	if err != nil {
		return fmt.Errorf("%w: encoding store: %v", ErrCorrupt, err)
	}
	blob, err := Encrypt(plaintext, v.key)
	if err != nil {
		return err
	}
	if err := atomicWriteFile(v.path, blob, 0600); err != nil {
		return fmt.Errorf("%w: writing store: %v", ErrStorage, err)
	}
	return nil
}

func (v *Vault) collect(match func(storedRecord) bool) ([]Credential, error) {
	var out []Credential
	for _, rec := range v.records {
		if !match(rec) {
			continue
		}
		cred, err := v.decryptRecord(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, cred)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Service != out[j].Service {
			return out[i].Service < out[j].Service
		}
		return out[i].Username < out[j].Username
	})
	return out, nil
}

func (v *Vault) decryptRecord(rec storedRecord) (Credential, error) {
	plain, err := v.decryptPassword(rec)
	if err != nil {
		return Credential{}, err
	}
	return Credential{
		Service:  rec.Service,
		Username: rec.Username,
		Password: plain,
		Date:     rec.Date,
	}, nil
}

func (v *Vault) decryptPassword(rec storedRecord) (string, error) {
	blob, err := base64.StdEncoding.DecodeString(rec.Password)
	if err != nil {
		return "", fmt.Errorf("%w: record %q: %v", ErrCorrupt, rec.Service, err)
	}
	plain, err := Decrypt(blob, v.key)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

// Close wipes the vault key from memory. The vault must not be used after.
func (v *Vault) Close() {
	zero(v.key)
	v.records = nil
}
