package storage

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryStore is a thread-safe, in-memory Store for testing/dev.
type MemoryStore struct {
	mu    sync.RWMutex
	seq   int64
	blobs map[string][]byte
}

// NewMemoryStore returns a ready-to-use MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

func (s *MemoryStore) Save(_ context.Context, data []byte, originalName string) (string, error) {
	if originalName == "" {
		return "", ErrMissingFileName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// The sequence number keeps keys unique when two saves land in the same
	// millisecond, which the disk layout avoids only by clock resolution.
	s.seq++
	key := fmt.Sprintf("%d-%d-%s", time.Now().UnixMilli(), s.seq, originalName)

	cp := make([]byte, len(data))
	copy(cp, data)
	s.blobs[key] = cp
	return key, nil
}

func (s *MemoryStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.blobs[key]; !ok {
		return ErrBlobNotFound
	}
	delete(s.blobs, key)
	return nil
}

// Get returns the stored bytes for a key. Test helper.
func (s *MemoryStore) Get(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.blobs[key]
	return data, ok
}

// Len reports the number of stored blobs. Test helper.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}
