package storage

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// LocalStorage persists uploaded blobs on disk under a base directory.
// Object paths are slash separated and namespaced by institution, e.g. "42/BT007.jpg".
type LocalStorage struct {
	baseDir string
}

// NewLocalStorage ensures the base directory exists and returns a handle.
func NewLocalStorage(baseDir string) (*LocalStorage, error) {
	if baseDir == "" {
		baseDir = "./uploads"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads directory: %w", err)
	}
	return &LocalStorage{baseDir: baseDir}, nil
}

// SaveStream copies from reader into the object path and returns the stored path.
func (s *LocalStorage) SaveStream(objectPath string, r io.Reader) (string, error) {
	target, clean, err := s.resolve(objectPath)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("prepare upload directory: %w", err)
	}
	file, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer file.Close() //nolint:errcheck
	if _, err := io.Copy(file, r); err != nil {
		return "", fmt.Errorf("write upload stream: %w", err)
	}
	return clean, nil
}

// Open returns a read-only handle for the stored object.
func (s *LocalStorage) Open(objectPath string) (*os.File, error) {
	target, _, err := s.resolve(objectPath)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(target)
	if err != nil {
		return nil, fmt.Errorf("open upload file: %w", err)
	}
	return file, nil
}

// Delete removes a stored object if present.
func (s *LocalStorage) Delete(objectPath string) error {
	target, _, err := s.resolve(objectPath)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete upload file: %w", err)
	}
	return nil
}

// resolve maps an object path to a file below baseDir, rejecting paths that escape it.
func (s *LocalStorage) resolve(objectPath string) (string, string, error) {
	clean := strings.TrimPrefix(path.Clean("/"+objectPath), "/")
	if clean == "" || clean == "." {
		return "", "", fmt.Errorf("invalid object path %q", objectPath)
	}
	return filepath.Join(s.baseDir, filepath.FromSlash(clean)), clean, nil
}
