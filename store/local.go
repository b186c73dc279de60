package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// LocalStore keeps blobs on the filesystem under a root directory, one
// subdirectory per container. It backs local runs and tests where no object
// store is available.
type LocalStore struct {
	root string
}

func NewLocalStore(root string) (*LocalStore, error) {
	if root == "" {
		return nil, fmt.Errorf("local store root: %w", ErrConfig)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create store root: %w", err)
	}
	return &LocalStore{root: root}, nil
}

// Path returns the filesystem path a blob is stored under.
func (s *LocalStore) Path(container, key string) string {
	return filepath.Join(s.root, container, key)
}

func (s *LocalStore) Put(_ context.Context, container, key string, data []byte) error {
	path := s.Path(container, key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create container dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write blob %s/%s: %w", container, key, err)
	}
	return nil
}

func (s *LocalStore) Get(_ context.Context, container, key string) ([]byte, error) {
	data, err := os.ReadFile(s.Path(container, key))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%s/%s: %w", container, key, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read blob %s/%s: %w", container, key, err)
	}
	return data, nil
}

func (s *LocalStore) EnsureContainer(_ context.Context, container string) error {
	return os.MkdirAll(filepath.Join(s.root, container), 0o755)
}
