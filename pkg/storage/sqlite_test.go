package storage_test

import (
	"path/filepath"
	"testing"

	"github.com/goliatone/go-state/pkg/storage"
	"github.com/stretchr/testify/require"
)

func openSQLite(t *testing.T) *storage.SQLite {
	t.Helper()
	store, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteRoundTrip(t *testing.T) {
	store := openSQLite(t)
	require.True(t, store.Available())

	_, ok, err := store.Read("app")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, store.Write("app", `{"n":1}`))

	payload, ok, err := store.Read("app")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, `{"n":1}`, payload)
}

func TestSQLiteUpsert(t *testing.T) {
	store := openSQLite(t)

	require.NoError(t, store.Write("app", "first"))
	require.NoError(t, store.Write("app", "second"))

	payload, ok, err := store.Read("app")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "second", payload)
}

func TestSQLiteReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")

	store, err := storage.OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, store.Write("app", "durable"))
	require.NoError(t, store.Close())
	require.False(t, store.Available())

	reopened, err := storage.OpenSQLite(path)
	require.NoError(t, err)
	defer reopened.Close()

	payload, ok, err := reopened.Read("app")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "durable", payload)
}

func TestSQLiteClosedStoreNoops(t *testing.T) {
	store := openSQLite(t)
	require.NoError(t, store.Close())

	// Unavailable stores degrade to silent no-ops, matching the engine's
	// storage-absence contract.
	_, ok, err := store.Read("app")
	require.NoError(t, err)
	require.False(t, ok)
	require.NoError(t, store.Write("app", "x"))
}
