// Copyright (c) 2026 Landpress Media SRL <dev@landpress.media>
// All rights reserved. See LICENSE for details.

// Package storage abstracts where uploaded media bytes live. Production
// deployments point at an S3-compatible bucket; development falls back to
// a directory on local disk with the same interface.
package storage

import (
	"context"
	"io"
)

// Backend stores and serves uploaded files. Keys are relative paths like
// "uploads/2026/08/abc123.jpg".
type Backend interface {
	// Upload stores an object under key. The reader is consumed fully.
	Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) error

	// Delete removes an object. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// FileURL returns the URL clients use to fetch the object.
	FileURL(key string) string
}
