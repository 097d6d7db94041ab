package storage

import (
	"context"
	"fmt"
	"io"

	"lexfirm-api/internal/config"
)

// Store is the blob backend for case documents. Keys are opaque storage
// paths recorded on the document row; callers never hand keys to clients.
type Store interface {
	// Put writes the blob under the key, overwriting any existing object.
	Put(ctx context.Context, key, contentType string, body io.Reader) error

	// Open returns a reader for the blob. The caller closes it.
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the blob. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}

// New builds the Store selected by DOCUMENT_STORAGE.
func New(cfg *config.Config) (Store, error) {
	switch cfg.DocumentStorage {
	case config.StorageLocal:
		return NewLocalStore(cfg.DocumentDir)
	case config.StorageS3:
		return NewS3Store(cfg)
	default:
		return nil, fmt.Errorf("unknown document storage backend %q", cfg.DocumentStorage)
	}
}
