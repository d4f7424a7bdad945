package persistence

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/felixgeelhaar/overland/internal/entitlements/domain"
	"github.com/felixgeelhaar/overland/internal/shared/infrastructure/security"
)

// FileBackend stores the record as a JSON file readable only by its owner.
type FileBackend struct {
	path string
}

// NewFileBackend creates a file backend rooted at path.
func NewFileBackend(path string) (*FileBackend, error) {
	cleanPath, err := security.ValidateFilePath(path)
	if err != nil {
		return nil, fmt.Errorf("invalid store path: %w", err)
	}
	return &FileBackend{path: cleanPath}, nil
}

// Path returns the resolved file location.
func (b *FileBackend) Path() string {
	return b.path
}

// Load reads the record from disk.
func (b *FileBackend) Load(_ context.Context) (*domain.Record, error) {
	data, err := security.ReadFileLimited(b.path, maxRecordSize)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read entitlements: %w", err)
	}
	return domain.DecodeRecord(data)
}

// Save writes the record atomically via a temp file and rename.
func (b *FileBackend) Save(_ context.Context, record *domain.Record) error {
	data, err := domain.EncodeRecord(record)
	if err != nil {
		return err
	}
	if err := security.RejectSymlink(b.path); err != nil {
		return err
	}

	dir := filepath.Dir(b.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".entitlements-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write entitlements: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync entitlements: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, b.path); err != nil {
		return fmt.Errorf("failed to replace entitlements file: %w", err)
	}
	return nil
}

// Delete removes the file. A missing file is not an error.
func (b *FileBackend) Delete(_ context.Context) error {
	if err := os.Remove(b.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete entitlements: %w", err)
	}
	return nil
}

var _ domain.Backend = (*FileBackend)(nil)
