// Package storage persists uploaded evidence files. The workflow only
// ever sees the returned storage path; which backend sits behind it is
// a deployment decision.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Storage interface for evidence file operations
type Storage interface {
	// Upload stores an evidence file and returns the storage path
	Upload(ctx context.Context, evidenceID uuid.UUID, filename string, data io.Reader) (string, error)

	// Download retrieves an evidence file by storage path
	Download(ctx context.Context, storagePath string) (io.ReadCloser, error)

	// Delete removes an evidence file by storage path
	Delete(ctx context.Context, storagePath string) error
}

// Backend identifies the storage implementation
type Backend string

const (
	BackendLocal Backend = "local"
	BackendS3    Backend = "s3"
)

// Config holds storage configuration
type Config struct {
	Backend      Backend
	LocalPath    string // For local storage
	S3Bucket     string // For S3 storage
	S3Region     string // For S3 storage
	AWSAccessKey string
	AWSSecretKey string
}

// New creates a storage instance based on configuration
func New(cfg Config) (Storage, error) {
	switch cfg.Backend {
	case BackendLocal:
		return NewLocalStorage(cfg.LocalPath)
	case BackendS3:
		return NewS3Storage(cfg)
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.Backend)
	}
}

// NewFromEnv creates a storage instance from environment variables
func NewFromEnv() (Storage, error) {
	backend := os.Getenv("STORAGE_BACKEND")
	if backend == "" {
		backend = "local" // Default to local for development
	}

	switch Backend(backend) {
	case BackendLocal:
		localPath := os.Getenv("EVIDENCE_DIR")
		if localPath == "" {
			localPath = "./data/evidence"
		}
		return NewLocalStorage(localPath)

	case BackendS3:
		cfg := Config{
			Backend:      BackendS3,
			S3Bucket:     os.Getenv("AWS_S3_BUCKET"),
			S3Region:     os.Getenv("AWS_REGION"),
			AWSAccessKey: os.Getenv("AWS_ACCESS_KEY_ID"),
			AWSSecretKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		}
		if cfg.S3Region == "" {
			cfg.S3Region = "us-east-1"
		}
		if cfg.S3Bucket == "" {
			return nil, errors.New("AWS_S3_BUCKET environment variable is required for S3 storage")
		}
		return NewS3Storage(cfg)

	default:
		return nil, fmt.Errorf("unknown storage backend: %s", backend)
	}
}

// evidencePath builds a unique storage path for an evidence file. The
// two-character prefix keeps any single directory from growing unbounded.
func evidencePath(evidenceID uuid.UUID, filename string) string {
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filepath.Base(filename), ext)
	base = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '/', '\\':
			return '_'
		}
		return r
	}, base)

	id := evidenceID.String()
	return fmt.Sprintf("evidence/%s/%s_%s%s", id[:2], id, base, ext)
}
