package filestore

import (
	"context"
	"io"
)

// Store persists uploaded files under system-generated names.
type Store interface {
	// Save writes the upload and returns the generated stored name.
	Save(ctx context.Context, originalName string, r io.Reader) (storedName string, err error)
	// Open returns the file contents for a stored name.
	Open(ctx context.Context, storedName string) (io.ReadCloser, error)
	// Delete removes a stored file. A missing file reports domain.ErrNotFound
	// so cascade deletes can tolerate it.
	Delete(ctx context.Context, storedName string) error
}
