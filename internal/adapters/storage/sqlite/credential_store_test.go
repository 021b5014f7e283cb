package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/lorekeeper/internal/adapters/storage/sqlite"
	"github.com/PabloGalante/lorekeeper/internal/domain"
)

func openStore(t *testing.T, path string) *sqlite.CredentialStore {
	t.Helper()
	store, err := sqlite.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestCredentialStorePersistsAcrossOpens(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "creds.db")

	creds := domain.Credentials{ApplicationKey: "k", AuthToken: "t", WorldID: "w"}

	first := openStore(t, path)
	require.NoError(t, first.SaveCredentials(ctx, "default", creds))
	require.NoError(t, first.Close())

	second := openStore(t, path)
	got, err := second.LoadCredentials(ctx, "default")
	require.NoError(t, err)
	assert.Equal(t, creds, got)
}

func TestCredentialStoreOverwriteAndDelete(t *testing.T) {
	ctx := context.Background()
	store := openStore(t, filepath.Join(t.TempDir(), "creds.db"))

	require.NoError(t, store.SaveCredentials(ctx, "default", domain.Credentials{ApplicationKey: "k1", AuthToken: "t1", WorldID: "w1"}))
	require.NoError(t, store.SaveCredentials(ctx, "default", domain.Credentials{ApplicationKey: "k2", AuthToken: "t2", WorldID: "w2"}))
	require.NoError(t, store.SaveCredentials(ctx, "other", domain.Credentials{ApplicationKey: "k3", AuthToken: "t3", WorldID: "w3"}))

	got, err := store.LoadCredentials(ctx, "default")
	require.NoError(t, err)
	assert.Equal(t, "w2", got.WorldID)

	require.NoError(t, store.DeleteCredentials(ctx, "default"))
	_, err = store.LoadCredentials(ctx, "default")
	assert.ErrorIs(t, err, domain.ErrCredentialsNotFound)

	other, err := store.LoadCredentials(ctx, "other")
	require.NoError(t, err)
	assert.Equal(t, "w3", other.WorldID)
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := sqlite.Open("  ")
	assert.Error(t, err)
}
