// Package storage keeps uploaded project images. Files are addressed by
// the image id; the database row holds the public URL.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"hackdash/config"
)

var (
	ErrTooLarge = errors.New("resource size exceeds limit")
	ErrNotFound = errors.New("image not found")
)

// Store is implemented by the disk (webdav.FileSystem) and S3 backends.
type Store interface {
	// Save writes at most limit bytes read from r under name. When r holds
	// more than limit bytes nothing is kept and ErrTooLarge is returned.
	Save(ctx context.Context, name string, r io.Reader, limit int64) (int64, error)
	// Open returns the content and its size, or ErrNotFound.
	Open(ctx context.Context, name string) (io.ReadCloser, int64, error)
	// Remove deletes name. A missing file yields ErrNotFound.
	Remove(ctx context.Context, name string) error
}

// New builds the backend selected by cfg.Uploads.Backend.
func New(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.Uploads.Backend {
	case "disk", "":
		return NewDisk(cfg.Uploads.Dir)
	case "s3":
		return NewS3(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown upload backend %q", cfg.Uploads.Backend)
	}
}
