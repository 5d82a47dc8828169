// Package storage provides blob storage for uploaded report files. It defines
// the Store interface, a disk-backed implementation whose keys double as
// public download paths, and a thread-safe in-memory implementation for
// testing and development.
package storage

import (
	"context"
	"errors"
)

var (
	// ErrBlobNotFound is returned by Remove when no blob exists for the key.
	ErrBlobNotFound = errors.New("blob not found")

	// ErrMissingFileName is returned by Save when no original name is given.
	ErrMissingFileName = errors.New("file name is required")
)

// Store is the contract for report file storage backends. Save generates a
// collision-resistant key for the raw bytes; the key is opaque to callers and
// stable for the lifetime of the blob. Remove is idempotent at this layer:
// removing an unknown key reports ErrBlobNotFound rather than failing hard,
// and callers decide whether that matters.
type Store interface {
	Save(ctx context.Context, data []byte, originalName string) (string, error)
	Remove(ctx context.Context, key string) error
}
