package storage_test

import (
	"path/filepath"
	"testing"

	"github.com/goliatone/go-state/pkg/storage"
	"github.com/stretchr/testify/require"
)

func TestFileRoundTrip(t *testing.T) {
	store, err := storage.NewFile(t.TempDir())
	require.NoError(t, err)
	require.True(t, store.Available())

	_, ok, err := store.Read("app")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, store.Write("app", `{"k":"v"}`))

	payload, ok, err := store.Read("app")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, `{"k":"v"}`, payload)
}

func TestFileCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "state")
	store, err := storage.NewFile(dir)
	require.NoError(t, err)
	require.True(t, store.Available())
}

func TestFileRejectsEmptyDirectory(t *testing.T) {
	_, err := storage.NewFile("  ")
	require.Error(t, err)
}

func TestFileRejectsTraversalSlots(t *testing.T) {
	store, err := storage.NewFile(t.TempDir())
	require.NoError(t, err)

	for _, slot := range []string{"", "..", "a/b", `a\b`} {
		_, _, err := store.Read(slot)
		require.Error(t, err, "slot %q", slot)
		require.Error(t, store.Write(slot, "x"), "slot %q", slot)
	}
}

func TestFileSlotsAreIndependent(t *testing.T) {
	store, err := storage.NewFile(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Write("a", "1"))
	require.NoError(t, store.Write("b", "2"))

	payload, ok, err := store.Read("a")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "1", payload)
}
