// Package memory provides an in-process blob store. Contents are lost when
// the process exits; it backs tests and ephemeral sessions.
package memory

import (
	"context"
	"sync"

	"nebenkosten/internal/core/apperror"
	"nebenkosten/internal/domain/calculation"
)

// Compile-time check that Store implements calculation.BlobStore.
var _ calculation.BlobStore = (*Store)(nil)

// Store keeps blobs in a map guarded by a mutex.
type Store struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// New returns an empty Store.
func New() *Store {
	return &Store{blobs: make(map[string][]byte)}
}

// Get returns a copy of the blob stored under key.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	blob, ok := s.blobs[key]
	if !ok {
		return nil, apperror.NewNotFound("blob", key)
	}
	return append([]byte(nil), blob...), nil
}

// Put stores a copy of blob under key.
func (s *Store) Put(_ context.Context, key string, blob []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.blobs[key] = append([]byte(nil), blob...)
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.blobs, key)
	return nil
}
