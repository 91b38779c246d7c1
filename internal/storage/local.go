package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

// LocalBackend stores files under a root directory. Audio always lands
// here even when object storage is configured, so tags can be re-read
// without a network round trip.
type LocalBackend struct {
	root string
}

// NewLocalBackend creates the backend and its root directory.
func NewLocalBackend(root string) (*LocalBackend, error) {
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("create storage root %s: %w", root, err)
	}
	return &LocalBackend{root: root}, nil
}

// Save writes data at relPath below the root, creating parent directories.
func (b *LocalBackend) Save(relPath string, data []byte) error {
	full := filepath.Join(b.root, filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(full), 0o750); err != nil {
		return fmt.Errorf("create dir for %s: %w", relPath, err)
	}
	if err := os.WriteFile(full, data, 0o640); err != nil {
		return fmt.Errorf("write %s: %w", relPath, err)
	}
	return nil
}

// Path returns the absolute path of a stored file.
func (b *LocalBackend) Path(relPath string) string {
	return filepath.Join(b.root, filepath.FromSlash(relPath))
}

// Root returns the backend's root directory.
func (b *LocalBackend) Root() string {
	return b.root
}
