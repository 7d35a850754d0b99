package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Store defines the byte storage collaborator for the access core.
// The core never touches disk itself; the facade writes bytes first and
// records metadata second.
type Store interface {
	PathFor(user, fileID string) string
	Save(path string, data io.Reader) (int64, error)
	Open(path string) (io.ReadCloser, error)
	Delete(path string) error
	EnsureDir() error
}

// FileSystemStore keeps uploaded bytes on the local filesystem under
// <basePath>/<user>/<fileID>. The client-supplied filename is never used
// on disk.
type FileSystemStore struct {
	basePath string
}

// NewFileSystemStore creates a new filesystem storage backend.
func NewFileSystemStore(basePath string) *FileSystemStore {
	return &FileSystemStore{basePath: basePath}
}

// EnsureDir creates the storage root if it doesn't exist.
func (fs *FileSystemStore) EnsureDir() error {
	if err := os.MkdirAll(fs.basePath, 0755); err != nil {
		return fmt.Errorf("failed to create storage directory %s: %w", fs.basePath, err)
	}
	return nil
}

// PathFor returns the on-disk location for a user's file id.
func (fs *FileSystemStore) PathFor(user, fileID string) string {
	return filepath.Join(fs.basePath, user, fileID)
}

// Save writes data to path, creating parent directories as needed.
// Returns the number of bytes written; a partial file is removed on error.
func (fs *FileSystemStore) Save(path string, data io.Reader) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return 0, fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	file, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create file %s: %w", path, err)
	}
	defer file.Close()

	n, err := io.Copy(file, data)
	if err != nil {
		os.Remove(path)
		return 0, fmt.Errorf("failed to write file: %w", err)
	}

	return n, nil
}

// Open returns a reader over the stored bytes at path.
func (fs *FileSystemStore) Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found at %s", path)
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return f, nil
}

// Delete removes the stored bytes at path. Missing files are not an error.
func (fs *FileSystemStore) Delete(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file %s: %w", path, err)
	}
	return nil
}
