package storage

import (
	"context"
	"io"
)

// ObjectStorage is the contract for the object storage backend that holds
// uploaded file bytes. The application only tracks metadata; the backend
// owns the bytes and identifies them by an opaque public ID.
type ObjectStorage interface {
	Upload(ctx context.Context, fileName string, content io.Reader) (url string, publicID string, err error)
	Delete(ctx context.Context, publicID string) error
}
