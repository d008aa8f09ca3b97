package object

import (
	"context"
	"io"
)

// ObjectStore defines the contract for saving and retrieving binary objects by key.
type ObjectStore interface {
	Put(ctx context.Context, key string, contentType string, r io.Reader) (sizeBytes int64, err error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}
