// Package local keeps device-local state: the user's saved plants and their
// cookie consent. Every key holds a whole JSON document that is read and
// rewritten in full. There is no cross-process coordination, so two writers
// racing on the same key resolve as last write wins.
package local

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Storage is an opaque key-value document store.
type Storage interface {
	// Load returns the document under key and whether it exists.
	Load(key string) ([]byte, bool, error)
	// Save replaces the document under key.
	Save(key string, data []byte) error
}

// FileStorage stores one file per key in a directory.
type FileStorage struct {
	dir string
}

// NewFileStorage creates dir if needed.
func NewFileStorage(dir string) (*FileStorage, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}
	return &FileStorage{dir: dir}, nil
}

func (s *FileStorage) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(s.dir, key+".json"), nil
}

func (s *FileStorage) Load(key string) ([]byte, bool, error) {
	p, err := s.path(key)
	if err != nil {
		return nil, false, err
	}

	data, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading %s: %w", key, err)
	}
	return data, true, nil
}

// Save writes to a temporary file and renames it over the old document.
func (s *FileStorage) Save(key string, data []byte) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return fmt.Errorf("replacing %s: %w", key, err)
	}
	return nil
}

// MemoryStorage keeps documents in memory. Use in tests.
type MemoryStorage struct {
	mu   sync.Mutex
	docs map[string][]byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{docs: make(map[string][]byte)}
}

func (s *MemoryStorage) Load(key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.docs[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), data...), true, nil
}

func (s *MemoryStorage) Save(key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.docs[key] = append([]byte(nil), data...)
	return nil
}
