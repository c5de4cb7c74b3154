package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// LocalStorage keeps evidence files on the local filesystem. Suitable
// for development and single-node deployments.
type LocalStorage struct {
	baseDir string
}

// NewLocalStorage creates a local storage instance rooted at baseDir
func NewLocalStorage(baseDir string) (*LocalStorage, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create evidence directory: %w", err)
	}
	return &LocalStorage{baseDir: baseDir}, nil
}

// Upload writes an evidence file under the base directory
func (s *LocalStorage) Upload(ctx context.Context, evidenceID uuid.UUID, filename string, data io.Reader) (string, error) {
	storagePath := evidencePath(evidenceID, filename)
	fullPath := filepath.Join(s.baseDir, storagePath)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, data); err != nil {
		os.Remove(fullPath)
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return storagePath, nil
}

// Download opens an evidence file by storage path
func (s *LocalStorage) Download(ctx context.Context, storagePath string) (io.ReadCloser, error) {
	file, err := os.Open(filepath.Join(s.baseDir, storagePath))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("evidence file not found: %s", storagePath)
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

// Delete removes an evidence file. A missing file is not an error.
func (s *LocalStorage) Delete(ctx context.Context, storagePath string) error {
	err := os.Remove(filepath.Join(s.baseDir, storagePath))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
