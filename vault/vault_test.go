package vault

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestVault(t *testing.T) (*Vault, string, []byte) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "passwords.db")
	key := testKey(0x42)
	v, err := Open(path, key)
	require.NoError(t, err)
	return v, path, key
}

func TestOpen_MissingFileIsEmptyVault(t *testing.T) {
	v, _, _ := newTestVault(t)
	assert.Equal(t, 0, v.Len())

	creds, err := v.All()
	require.NoError(t, err)
	assert.Empty(t, creds)
}

func TestOpen_ZeroLengthFileIsEmptyVault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "passwords.db")
	require.NoError(t, os.WriteFile(path, nil, 0600))

	v, err := Open(path, testKey(0x42))
	require.NoError(t, err)
	assert.Equal(t, 0, v.Len())
}

func TestOpen_WrongKeyFailsLoudly(t *testing.T) {
	v, path, _ := newTestVault(t)
	require.NoError(t, v.Add("github", "me", "secret123"))

	_, err := Open(path, testKey(0x43))
	assert.ErrorIs(t, err, ErrAuthFailed, "wrong key must never yield an empty vault")
}

func TestOpen_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "passwords.db")
	require.NoError(t, os.WriteFile(path, []byte("short"), 0600))

	_, err := Open(path, testKey(0x42))
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestVault_AddAndGet(t *testing.T) {
	v, _, _ := newTestVault(t)
	require.NoError(t, v.Add("github", "me", "secret123"))

	cred, err := v.Get("github", "me")
	require.NoError(t, err)
	assert.Equal(t, "github", cred.Service)
	assert.Equal(t, "me", cred.Username)
	assert.Equal(t, "secret123", cred.Password)
	assert.NotEmpty(t, cred.Date)

	_, err = v.Get("github", "someone-else")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestVault_AddUpsertsByPair(t *testing.T) {
	v, _, _ := newTestVault(t)
	require.NoError(t, v.Add("github", "me", "first"))
	require.NoError(t, v.Add("github", "me", "second"))

	assert.Equal(t, 1, v.Len())
	cred, err := v.Get("github", "me")
	require.NoError(t, err)
	assert.Equal(t, "second", cred.Password)
}

func TestVault_PasswordStoredEncrypted(t *testing.T) {
	v, _, _ := newTestVault(t)
	require.NoError(t, v.Add("github", "me", "secret123"))

	rec := v.records[recordKey("github", "me")]
	assert.NotContains(t, rec.Password, "secret123")
}

func TestVault_Delete(t *testing.T) {
	v, _, _ := newTestVault(t)
	require.NoError(t, v.Add("github", "me", "secret123"))

	ok, err := v.Delete("github", "me")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = v.Delete("github", "me")
	require.NoError(t, err)
	assert.False(t, ok, "second delete must report not found")
}

func TestVault_Search(t *testing.T) {
	v, _, _ := newTestVault(t)
	require.NoError(t, v.Add("GitHub", "me", "a"))
	require.NoError(t, v.Add("gitlab", "me", "b"))
	require.NoError(t, v.Add("mail", "me", "c"))

	got, err := v.Search("GIT")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "GitHub", got[0].Service)
	assert.Equal(t, "gitlab", got[1].Service)

	got, err = v.Search("nothing-matches")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestVault_AllSortedByServiceThenUsername(t *testing.T) {
	v, _, _ := newTestVault(t)
	require.NoError(t, v.Add("mail", "zoe", "a"))
	require.NoError(t, v.Add("bank", "amy", "b"))
	require.NoError(t, v.Add("bank", "zoe", "c"))

	got, err := v.All()
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"bank", "bank", "mail"}, []string{got[0].Service, got[1].Service, got[2].Service})
	assert.Equal(t, "amy", got[0].Username)
	assert.Equal(t, "zoe", got[1].Username)
}

func TestVault_PersistsAcrossReopen(t *testing.T) {
	v, path, key := newTestVault(t)
	require.NoError(t, v.Add("github", "me", "secret123"))
	v.Close()

	reopened, err := Open(path, key)
	require.NoError(t, err)
	cred, err := reopened.Get("github", "me")
	require.NoError(t, err)
	assert.Equal(t, "secret123", cred.Password)
}

func TestVault_AddRejectsEmptyIdentity(t *testing.T) {
	v, _, _ := newTestVault(t)
	assert.ErrorIs(t, v.Add("", "me", "x"), ErrInvalidInput)
	assert.ErrorIs(t, v.Add("github", "", "x"), ErrInvalidInput)
}

func TestVault_Rekey(t *testing.T) {
	v, path, _ := newTestVault(t)
	require.NoError(t, v.Add("github", "me", "secret123"))
	require.NoError(t, v.Add("mail", "me", "hunter2"))

	newKey := testKey(0x99)
	require.NoError(t, v.Rekey(newKey))

	// Old key must no longer open the store.
	_, err := Open(path, testKey(0x42))
	assert.ErrorIs(t, err, ErrAuthFailed)

	reopened, err := Open(path, newKey)
	require.NoError(t, err)
	cred, err := reopened.Get("github", "me")
	require.NoError(t, err)
	assert.Equal(t, "secret123", cred.Password)
	cred, err = reopened.Get("mail", "me")
	require.NoError(t, err)
	assert.Equal(t, "hunter2", cred.Password)
}

// Full rotation flow: verifier rewrite via MasterSecret, store re-encryption
// via Rekey, then reopen with the new password end to end.
func TestRotation_Integrity(t *testing.T) {
	dir := t.TempDir()
	m := NewMasterSecret(filepath.Join(dir, "master.key"))
	m.iterations = testIterations
	require.NoError(t, m.Setup("old-password"))

	oldKey, ok, err := m.Unlock("old-password")
	require.NoError(t, err)
	require.True(t, ok)

	storePath := filepath.Join(dir, "passwords.db")
	v, err := Open(storePath, oldKey)
	require.NoError(t, err)
	want := map[string]string{"github": "gh-pass", "mail": "mail-pass", "bank": "bank-pass"}
	for service, password := range want {
		require.NoError(t, v.Add(service, "me", password))
	}

	newKey, err := m.Rotate("old-password", "new-password")
	require.NoError(t, err)
	require.NoError(t, v.Rekey(newKey))

	// Old password neither verifies nor opens the store.
	ok, err = m.Verify("old-password")
	require.NoError(t, err)
	assert.False(t, ok)
	_, err = Open(storePath, oldKey)
	assert.ErrorIs(t, err, ErrAuthFailed)

	key, ok, err := m.Unlock("new-password")
	require.NoError(t, err)
	require.True(t, ok)
	reopened, err := Open(storePath, key)
	require.NoError(t, err)
	require.Equal(t, len(want), reopened.Len())
	for service, password := range want {
		cred, err := reopened.Get(service, "me")
		require.NoError(t, err)
		assert.Equal(t, password, cred.Password)
	}
}
