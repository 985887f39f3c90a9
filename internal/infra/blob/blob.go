package blob

import (
	"context"
	"errors"
	"io"
)

var ErrNotExist = errors.New("blob: object does not exist")

// Store keeps uploaded document bodies addressed by an opaque key.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
