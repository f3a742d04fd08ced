package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aguaralabs/facturante-cli/internal/core/domain"
)

func newTestStore(t *testing.T) *CredentialStore {
	t.Helper()
	store, err := NewCredentialStore(filepath.Join(t.TempDir(), "issuers.json"))
	require.NoError(t, err)
	return store
}

func TestCredentialStore_SaveAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	err := store.Save(ctx, domain.Credential{
		Issuer:      "20111111112",
		ClaveFiscal: "secreta123",
		Category:    domain.CategoryMonotributo,
	})
	require.NoError(t, err)

	cred, err := store.Get(ctx, "20111111112")
	require.NoError(t, err)
	assert.Equal(t, "secreta123", cred.ClaveFiscal)
	assert.Equal(t, domain.CategoryMonotributo, cred.Category)
	assert.False(t, cred.CreatedAt.IsZero())
	assert.False(t, cred.UpdatedAt.IsZero())
}

func TestCredentialStore_GetMissing(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Get(context.Background(), "20999999990")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCredentialNotFound)
}

func TestCredentialStore_SaveRejectsIncomplete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	err := store.Save(ctx, domain.Credential{Issuer: "123", ClaveFiscal: "x"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	err = store.Save(ctx, domain.Credential{Issuer: "20111111112"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCredentialStore_UpdatePreservesCreatedAt(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domain.Credential{Issuer: "20111111112", ClaveFiscal: "vieja"}))
	original, err := store.Get(ctx, "20111111112")
	require.NoError(t, err)

	require.NoError(t, store.Save(ctx, domain.Credential{Issuer: "20111111112", ClaveFiscal: "nueva"}))
	updated, err := store.Get(ctx, "20111111112")
	require.NoError(t, err)

	assert.Equal(t, "nueva", updated.ClaveFiscal)
	assert.Equal(t, original.CreatedAt, updated.CreatedAt)
	assert.False(t, updated.UpdatedAt.Before(original.UpdatedAt))
}

func TestCredentialStore_Delete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domain.Credential{Issuer: "20111111112", ClaveFiscal: "x"}))
	require.NoError(t, store.Delete(ctx, "20111111112"))

	_, err := store.Get(ctx, "20111111112")
	assert.ErrorIs(t, err, domain.ErrCredentialNotFound)

	err = store.Delete(ctx, "20111111112")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCredentialStore_ListOrdered(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, issuer := range []string{"30333333334", "20111111112", "20222222223"} {
		require.NoError(t, store.Save(ctx, domain.Credential{Issuer: domain.TaxID(issuer), ClaveFiscal: "x"}))
	}

	creds, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, creds, 3)
	assert.Equal(t, domain.TaxID("20111111112"), creds[0].Issuer)
	assert.Equal(t, domain.TaxID("20222222223"), creds[1].Issuer)
	assert.Equal(t, domain.TaxID("30333333334"), creds[2].Issuer)
}

func TestCredentialStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "issuers.json")
	ctx := context.Background()

	store, err := NewCredentialStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, domain.Credential{Issuer: "20111111112", ClaveFiscal: "secreta"}))

	reopened, err := NewCredentialStore(path)
	require.NoError(t, err)
	cred, err := reopened.Get(ctx, "20111111112")
	require.NoError(t, err)
	assert.Equal(t, "secreta", cred.ClaveFiscal)
}

func TestCredentialStore_FilePermissions(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save(context.Background(), domain.Credential{Issuer: "20111111112", ClaveFiscal: "x"}))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestCredentialStore_RejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "issuers.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	_, err := NewCredentialStore(path)
	require.Error(t, err)
}
