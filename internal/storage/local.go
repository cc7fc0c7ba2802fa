// Copyright (c) 2026 Landpress Media SRL <dev@landpress.media>
// All rights reserved. See LICENSE for details.

package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalBackend stores media on the local filesystem under a base directory.
// Files are served by the application itself from /files/.
type LocalBackend struct {
	dir     string
	baseURL string
}

// NewLocal creates a local-disk storage backend rooted at dir. The
// directory is created if missing.
func NewLocal(dir, baseURL string) (*LocalBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %s: %w", dir, err)
	}
	return &LocalBackend{
		dir:     dir,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

// Upload writes the object to disk, creating parent directories as needed.
func (b *LocalBackend) Upload(_ context.Context, key, _ string, body io.Reader, _ int64) error {
	path := filepath.Join(b.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dir for %s: %w", key, err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create file %s: %w", key, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, body); err != nil {
		os.Remove(path)
		return fmt.Errorf("write file %s: %w", key, err)
	}
	return nil
}

// Delete removes the object. Missing files are ignored.
func (b *LocalBackend) Delete(_ context.Context, key string) error {
	path := filepath.Join(b.dir, filepath.FromSlash(key))
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete file %s: %w", key, err)
	}
	return nil
}

// FileURL returns the serving URL for a stored file.
func (b *LocalBackend) FileURL(key string) string {
	return b.baseURL + "/files/" + key
}

// Dir returns the base directory, for mounting a file server on it.
func (b *LocalBackend) Dir() string {
	return b.dir
}
