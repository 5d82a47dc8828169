package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// DiskStore writes blobs under a fixed uploads directory. Keys take the form
// "<epoch-millis>-<original-filename>" relative to that directory, which is
// also the public download path served statically.
type DiskStore struct {
	dir string
}

// NewDiskStore creates the uploads directory if needed and returns a store
// rooted there.
func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating uploads dir: %w", err)
	}
	return &DiskStore{dir: dir}, nil
}

// Save writes the bytes to disk and returns the generated key.
func (s *DiskStore) Save(_ context.Context, data []byte, originalName string) (string, error) {
	if originalName == "" {
		return "", ErrMissingFileName
	}

	// Strip any client-supplied directory components.
	name := filepath.Base(originalName)
	key := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), name)

	if err := os.WriteFile(filepath.Join(s.dir, key), data, 0o644); err != nil {
		return "", fmt.Errorf("writing blob %s: %w", key, err)
	}
	return key, nil
}

// Remove deletes the blob for the key. A missing file yields ErrBlobNotFound.
func (s *DiskStore) Remove(_ context.Context, key string) error {
	err := os.Remove(filepath.Join(s.dir, filepath.Base(key)))
	if errors.Is(err, fs.ErrNotExist) {
		return ErrBlobNotFound
	}
	return err
}
