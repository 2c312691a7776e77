// Package storage is a small filesystem abstraction with two drivers:
//   - "local"  local filesystem (default)
//   - "s3"     S3-compatible object storage (AWS S3, MinIO, R2, Spaces)
//
// Quick start:
//
//	disk, err := storage.New(storage.Config{Driver: "local", LocalRoot: "storage"})
//	err = disk.Put(ctx, "reportes/top.csv", data, "text/csv")
//	url := disk.URL("reportes/top.csv")
package storage

import (
	"context"
	"errors"
)

// ErrNotExist is returned by Get when path is absent.
var ErrNotExist = errors.New("storage: file does not exist")

// Disk is the driver interface.
type Disk interface {
	// Put writes content to path, creating parent directories as needed.
	Put(ctx context.Context, path string, content []byte, contentType string) error

	// Get returns the full content of the file at path.
	Get(ctx context.Context, path string) ([]byte, error)

	// Exists reports whether a file exists at path.
	Exists(ctx context.Context, path string) (bool, error)

	// URL returns the public URL for path.
	URL(path string) string
}
