package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ImageStore persists face images on disk under a base directory. Reference
// images live alongside captured probe snapshots; the store never deletes a
// reference image on overwrite, the previous file is simply orphaned.
type ImageStore struct {
	baseDir string
}

// NewImageStore ensures the base directory exists and returns a handle.
func NewImageStore(baseDir string) (*ImageStore, error) {
	if baseDir == "" {
		baseDir = "./images"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create image directory: %w", err)
	}
	return &ImageStore{baseDir: baseDir}, nil
}

// Save writes the given bytes to the provided relative path under the base dir
// and returns the stored path.
func (s *ImageStore) Save(filename string, data []byte) (string, error) {
	path := s.resolve(filename)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("prepare image directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write image file: %w", err)
	}
	return path, nil
}

// SaveStream copies from reader into the target file path.
func (s *ImageStore) SaveStream(filename string, r io.Reader) (string, error) {
	path := s.resolve(filename)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("prepare image directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create image file: %w", err)
	}
	defer file.Close() //nolint:errcheck
	if _, err := io.Copy(file, r); err != nil {
		return "", fmt.Errorf("write image stream: %w", err)
	}
	return path, nil
}

// Exists reports whether a stored image is still present on disk.
func (s *ImageStore) Exists(filename string) bool {
	info, err := os.Stat(s.resolve(filename))
	return err == nil && !info.IsDir()
}

// Open returns a read-only handle for the stored file.
func (s *ImageStore) Open(filename string) (*os.File, error) {
	file, err := os.Open(s.resolve(filename))
	if err != nil {
		return nil, fmt.Errorf("open image file: %w", err)
	}
	return file, nil
}

// Delete removes a stored file if present.
func (s *ImageStore) Delete(filename string) error {
	if err := os.Remove(s.resolve(filename)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete image file: %w", err)
	}
	return nil
}

// Path exposes the resolved path for a stored image.
func (s *ImageStore) Path(filename string) string {
	return s.resolve(filename)
}

func (s *ImageStore) resolve(filename string) string {
	if filepath.IsAbs(filename) {
		return filename
	}
	return filepath.Join(s.baseDir, filename)
}
