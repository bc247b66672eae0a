// Package storage provides the key-value persistence layer backing the
// desktop settings record and the hidden-apps set. Values are stored as
// JSON documents, one file per key, under a state directory.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ErrClosed is returned by stores that have been shut down.
var ErrClosed = errors.New("storage: store is closed")

// Store is a minimal key-value store. Get reports whether the key was
// present; a missing key is not an error.
type Store interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	Delete(key string) error
}

// FileStore persists each key as a JSON file under a state directory.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileStore creates a file-backed store rooted at dir, creating the
// directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the state directory backing the store.
func (s *FileStore) Dir() string {
	return s.dir
}

// PathForKey returns the file that backs the given key.
func (s *FileStore) PathForKey(key string) string {
	return filepath.Join(s.dir, sanitizeKey(key)+".json")
}

// Get reads the value stored under key.
func (s *FileStore) Get(key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.PathForKey(key))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %q: %w", key, err)
	}
	return data, true, nil
}

// Set writes value under key. The write is atomic: a temporary file is
// written and renamed over the target.
func (s *FileStore) Set(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.PathForKey(key)
	tmpPath := path + ".tmp"

	if err := os.WriteFile(tmpPath, value, 0600); err != nil {
		return fmt.Errorf("failed to write %q: %w", key, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save %q: %w", key, err)
	}
	return nil
}

// Delete removes the value stored under key. Deleting a missing key is
// not an error.
func (s *FileStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.PathForKey(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete %q: %w", key, err)
	}
	return nil
}

// sanitizeKey makes a storage key safe for use as a file name.
func sanitizeKey(key string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
	)
	safe := replacer.Replace(strings.TrimSpace(key))
	if safe == "" {
		safe = "_empty"
	}
	return safe
}

// MemStore is an in-memory Store for tests. WriteErr and ReadErr, when
// set, are returned by Set and Get to simulate storage failures.
type MemStore struct {
	mu       sync.Mutex
	data     map[string][]byte
	WriteErr error
	ReadErr  error
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{data: make(map[string][]byte)}
}

// Get reads the value stored under key.
func (s *MemStore) Get(key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ReadErr != nil {
		return nil, false, s.ReadErr
	}
	data, ok := s.data[key]
	if !ok {
		return nil, false, nil
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, true, nil
}

// Set writes value under key.
func (s *MemStore) Set(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.WriteErr != nil {
		return s.WriteErr
	}
	cp := make([]byte, len(value))
	copy(cp, value)
	s.data[key] = cp
	return nil
}

// Delete removes the value stored under key.
func (s *MemStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, key)
	return nil
}

// SetRaw stores a value without going through error injection. Test
// helper for seeding corrupt or legacy data.
func (s *MemStore) SetRaw(key string, value []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
}
