package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// FileStore is a TokenStore persisted as a small JSON object on disk.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore returns a FileStore backed by path. The file is created on first write.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultTokenPath returns ~/.daybook/session.json, or a file in the working
// directory if the home directory is unknown.
func DefaultTokenPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "daybook-session.json"
	}
	return filepath.Join(home, ".daybook", "session.json")
}

func (s *FileStore) load() (map[string]string, error) {
	items := map[string]string{}
	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return items, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(b, &items); err != nil {
		return nil, fmt.Errorf("corrupt token file %s: %w", s.path, err)
	}
	return items, nil
}

func (s *FileStore) save(items map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	b, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, b, 0o600)
}

func (s *FileStore) SetItem(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load()
	if err != nil {
		return err
	}
	items[key] = value
	return s.save(items)
}

// GetItem returns "" for a missing key.
func (s *FileStore) GetItem(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load()
	if err != nil {
		return "", err
	}
	return items[key], nil
}

func (s *FileStore) RemoveItem(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := items[key]; !ok {
		return nil
	}
	delete(items, key)
	return s.save(items)
}
