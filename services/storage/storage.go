// Package storage persists uploaded bootcamp photos.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// PhotoStore writes named files. Save must not return before the file is
// durable so callers can record the name afterwards.
type PhotoStore interface {
	Save(ctx context.Context, name string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, name string) error
}

// LocalStore keeps files in a directory served as static content
type LocalStore struct {
	dir     string
	urlPath string
}

var _ PhotoStore = (*LocalStore)(nil)

// NewLocalStore creates dir when missing. urlPath is the public prefix the
// directory is served under.
func NewLocalStore(dir, urlPath string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{dir: dir, urlPath: urlPath}, nil
}

// Save writes to a temporary file first and renames it into place, so a
// failed write never leaves a truncated photo behind
func (s *LocalStore) Save(ctx context.Context, name string, data []byte, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if name != filepath.Base(name) {
		return "", fmt.Errorf("invalid file name %q", name)
	}

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		return "", fmt.Errorf("move %s into place: %w", name, err)
	}

	return s.urlPath + "/" + name, nil
}

func (s *LocalStore) Delete(_ context.Context, name string) error {
	err := os.Remove(filepath.Join(s.dir, filepath.Base(name)))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
