package auth

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerRoundTrip(t *testing.T) {
	manager, store := NewMockManager()

	require.NoError(t, manager.Store(&Token{BearerToken: "AAAA-bearer-token-1234"}))
	assert.Equal(t, 1, store.Count())

	token, err := manager.Retrieve("")
	require.NoError(t, err)
	assert.Equal(t, DefaultName, token.Name)
	assert.Equal(t, "AAAA-bearer-token-1234", token.BearerToken)
	assert.False(t, token.LastModified.IsZero())

	require.NoError(t, manager.Delete(DefaultName))
	assert.Equal(t, 0, store.Count())

	_, err = manager.Retrieve(DefaultName)
	assert.ErrorIs(t, err, ErrTokenNotFound)
	assert.ErrorIs(t, manager.Delete(DefaultName), ErrTokenNotFound)
}

func TestManagerRejectsEmptyToken(t *testing.T) {
	manager, _ := NewMockManager()
	assert.ErrorIs(t, manager.Store(&Token{Name: "work"}), ErrInvalidToken)
	assert.ErrorIs(t, manager.Store(nil), ErrInvalidToken)
}

func TestManagerFallsBackAcrossStores(t *testing.T) {
	broken := NewMockStore()
	broken.StoreError = errors.New("keychain locked")
	broken.RetrieveError = errors.New("keychain locked")
	backup := NewMockStore()
	manager := NewManagerWithStores(broken, backup)

	require.NoError(t, manager.Store(&Token{Name: "work", BearerToken: "secret-token"}))
	assert.True(t, backup.Exists("work"))

	token, err := manager.Retrieve("work")
	require.NoError(t, err)
	assert.Equal(t, "secret-token", token.BearerToken)

	backup.StoreError = errors.New("disk full")
	err = manager.Store(&Token{Name: "other", BearerToken: "x"})
	assert.ErrorContains(t, err, "disk full")
}

func TestRetrieveDefaultPicksNewest(t *testing.T) {
	store := NewMockStore()
	now := time.Now()
	require.NoError(t, store.Store(&Token{Name: "old", BearerToken: "a", LastModified: now.Add(-time.Hour)}))
	require.NoError(t, store.Store(&Token{Name: "new", BearerToken: "b", LastModified: now}))
	manager := NewManagerWithStores(store)

	token, err := manager.RetrieveDefault()
	require.NoError(t, err)
	assert.Equal(t, "new", token.Name)

	names := []string{}
	tokens, err := manager.List()
	require.NoError(t, err)
	for _, tk := range tokens {
		names = append(names, tk.Name)
	}
	assert.Equal(t, []string{"new", "old"}, names)
}

func TestRetrieveDefaultEmpty(t *testing.T) {
	manager, _ := NewMockManager()
	_, err := manager.RetrieveDefault()
	assert.ErrorIs(t, err, ErrTokenNotFound)
}

func TestEnvironmentStore(t *testing.T) {
	t.Setenv(EnvBearerToken, "")
	env := NewEnvironmentStore()
	_, err := env.Retrieve("")
	assert.ErrorIs(t, err, ErrTokenNotFound)
	assert.False(t, env.Exists(""))

	t.Setenv(EnvBearerToken, "from-env")
	token, err := env.Retrieve("")
	require.NoError(t, err)
	assert.Equal(t, "from-env", token.BearerToken)
	assert.Equal(t, DefaultName, token.Name)
	assert.ErrorIs(t, env.Store(token), ErrStoreUnavailable)

	manager := NewManagerWithStores(NewMockStore(), env)
	token, err = manager.RetrieveDefault()
	require.NoError(t, err)
	assert.Equal(t, "from-env", token.BearerToken)
}

func TestEncryptedFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.enc")
	store := NewEncryptedFileStoreWithPassphrase(path, "correct horse")

	require.NoError(t, store.Store(&Token{Name: "work", BearerToken: "bearer-work"}))
	require.NoError(t, store.Store(&Token{Name: "home", BearerToken: "bearer-home"}))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(content), "bearer-work")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	reopened := NewEncryptedFileStoreWithPassphrase(path, "correct horse")
	token, err := reopened.Retrieve("work")
	require.NoError(t, err)
	assert.Equal(t, "bearer-work", token.BearerToken)

	tokens, err := reopened.List()
	require.NoError(t, err)
	assert.Len(t, tokens, 2)

	wrong := NewEncryptedFileStoreWithPassphrase(path, "wrong")
	_, err = wrong.Retrieve("work")
	assert.ErrorContains(t, err, "decrypt")

	require.NoError(t, reopened.Delete("work"))
	require.NoError(t, reopened.Delete("home"))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
	assert.ErrorIs(t, reopened.Delete("home"), ErrTokenNotFound)
}

func TestEncryptedFileStoreGeneratesPassphrase(t *testing.T) {
	t.Setenv(EnvPassphrase, "")
	dir := t.TempDir()

	store, err := NewEncryptedFileStore(filepath.Join(dir, "tokens.enc"))
	require.NoError(t, err)
	require.NoError(t, store.Store(&Token{Name: "default", BearerToken: "t"}))

	_, err = os.Stat(filepath.Join(dir, ".passphrase"))
	require.NoError(t, err)

	again, err := NewEncryptedFileStore(filepath.Join(dir, "tokens.enc"))
	require.NoError(t, err)
	assert.True(t, again.Exists("default"))
}

func TestMask(t *testing.T) {
	assert.Equal(t, "********", Mask("short"))
	assert.Equal(t, "AAAA...wxyz", Mask("AAAAbcdefghijklmnopqrstuvwxyz"))
}
