package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore keeps each collection in <dir>/<key>.json.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create json data directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) Path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

func (s *FileStore) Read(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(s.Path(key))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to read JSON file: %w", err)
	}
	return data, nil
}

// Write goes through a temp file in the same directory and renames it over
// the target, so readers see either the old or the new file.
func (s *FileStore) Write(_ context.Context, key string, data []byte) error {
	target := s.Path(key)

	tmp, err := os.CreateTemp(s.dir, "."+key+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write JSON file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync JSON file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close JSON file: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		return fmt.Errorf("failed to replace %s: %w", target, err)
	}
	return nil
}
