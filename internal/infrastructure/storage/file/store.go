// Package file provides a blob store that keeps one file per key in a directory.
package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"nebenkosten/internal/core/apperror"
	"nebenkosten/internal/domain/calculation"
)

// Compile-time check that Store implements calculation.BlobStore.
var _ calculation.BlobStore = (*Store)(nil)

var keyRE = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// Store persists each key as <dir>/<key>.json.
type Store struct {
	dir string
	mu  sync.Mutex
}

// New returns a Store rooted at dir, creating the directory if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the root directory.
func (s *Store) Dir() string {
	return s.dir
}

// Get reads the blob for key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, apperror.NewNotFound("blob", key)
	}
	if err != nil {
		return nil, apperror.NewStorage("read", err)
	}
	return b, nil
}

// Put writes blob via a temp file, then atomically replaces the target.
func (s *Store) Put(ctx context.Context, key string, blob []byte) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := writeFile(path, blob, 0o600); err != nil {
		return apperror.NewStorage("write", err)
	}
	return nil
}

// Delete removes the file for key. A missing file is not an error.
func (s *Store) Delete(_ context.Context, key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return apperror.NewStorage("delete", err)
	}
	return nil
}

func (s *Store) path(key string) (string, error) {
	if !keyRE.MatchString(key) {
		return "", apperror.NewInvalidInput("invalid storage key").WithDetail("key", key)
	}
	return filepath.Join(s.dir, key+".json"), nil
}

// writeFile writes bytes via a temp file, then atomically replaces the target.
func writeFile(path string, b []byte, mode os.FileMode) error {
	f, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()

	// Best-effort cleanup if anything fails before rename.
	defer func() { _ = os.Remove(tmp) }()

	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Chmod(mode); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
