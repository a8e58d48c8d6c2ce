package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// MediaStore persists uploaded files (assignment hand-outs, profile photos)
// on disk under a base directory.
type MediaStore struct {
	baseDir string
}

// NewMediaStore ensures the base directory exists and returns a handle.
func NewMediaStore(baseDir string) (*MediaStore, error) {
	if baseDir == "" {
		baseDir = "./media"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create media directory: %w", err)
	}
	return &MediaStore{baseDir: baseDir}, nil
}

// SaveStream copies from reader into the target file under the base dir and
// returns the stored relative path.
func (s *MediaStore) SaveStream(relPath string, r io.Reader) (string, error) {
	path, err := s.resolve(relPath)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("prepare media directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create media file: %w", err)
	}
	defer file.Close() //nolint:errcheck
	if _, err := io.Copy(file, r); err != nil {
		return "", fmt.Errorf("write media stream: %w", err)
	}
	return relPath, nil
}

// Open returns a read-only handle for the stored file.
func (s *MediaStore) Open(relPath string) (*os.File, error) {
	path, err := s.resolve(relPath)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open media file: %w", err)
	}
	return file, nil
}

// Delete removes a stored file if present.
func (s *MediaStore) Delete(relPath string) error {
	path, err := s.resolve(relPath)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete media file: %w", err)
	}
	return nil
}

// Path exposes the underlying absolute path.
func (s *MediaStore) Path(relPath string) (string, error) {
	return s.resolve(relPath)
}

func (s *MediaStore) resolve(relPath string) (string, error) {
	cleaned := filepath.Clean(relPath)
	if filepath.IsAbs(cleaned) || strings.HasPrefix(cleaned, "..") {
		return "", fmt.Errorf("invalid media path %q", relPath)
	}
	return filepath.Join(s.baseDir, cleaned), nil
}
