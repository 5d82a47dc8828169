package storage

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ Store = (*DiskStore)(nil)
var _ Store = (*MemoryStore)(nil)

var keyPattern = regexp.MustCompile(`^\d+-scan\.pdf$`)

func TestDiskStoreSave(t *testing.T) {
	dir := t.TempDir()
	store, err := NewDiskStore(dir)
	require.NoError(t, err)

	key, err := store.Save(context.Background(), []byte("content"), "scan.pdf")
	require.NoError(t, err)
	assert.Regexp(t, keyPattern, key)

	data, err := os.ReadFile(filepath.Join(dir, key))
	require.NoError(t, err)
	assert.Equal(t, "content", string(data))
}

func TestDiskStoreSaveStripsDirectoryComponents(t *testing.T) {
	dir := t.TempDir()
	store, err := NewDiskStore(dir)
	require.NoError(t, err)

	key, err := store.Save(context.Background(), []byte("x"), "../../etc/passwd")
	require.NoError(t, err)
	assert.NotContains(t, key, "/")

	_, err = os.Stat(filepath.Join(dir, key))
	assert.NoError(t, err)
}

func TestDiskStoreSaveRequiresName(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Save(context.Background(), []byte("x"), "")
	assert.ErrorIs(t, err, ErrMissingFileName)
}

func TestDiskStoreRemove(t *testing.T) {
	dir := t.TempDir()
	store, err := NewDiskStore(dir)
	require.NoError(t, err)

	key, err := store.Save(context.Background(), []byte("content"), "scan.pdf")
	require.NoError(t, err)

	require.NoError(t, store.Remove(context.Background(), key))
	_, err = os.Stat(filepath.Join(dir, key))
	assert.True(t, os.IsNotExist(err))

	// A second remove reports the missing blob.
	assert.ErrorIs(t, store.Remove(context.Background(), key), ErrBlobNotFound)
}

func TestDiskStoreCreatesUploadsDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "uploads")
	_, err := NewDiskStore(dir)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()

	key, err := store.Save(context.Background(), []byte("content"), "scan.pdf")
	require.NoError(t, err)

	data, ok := store.Get(key)
	require.True(t, ok)
	assert.Equal(t, "content", string(data))

	require.NoError(t, store.Remove(context.Background(), key))
	assert.ErrorIs(t, store.Remove(context.Background(), key), ErrBlobNotFound)
	assert.Equal(t, 0, store.Len())
}

func TestMemoryStoreKeysAreUnique(t *testing.T) {
	store := NewMemoryStore()

	a, err := store.Save(context.Background(), []byte("a"), "same.pdf")
	require.NoError(t, err)
	b, err := store.Save(context.Background(), []byte("b"), "same.pdf")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.Equal(t, 2, store.Len())
}
