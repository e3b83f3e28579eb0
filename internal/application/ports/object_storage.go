package ports

import (
	"context"
	"io"
)

type ObjectStorage interface {
	GetBucket() string
	// Put streams the reader into the object under key and returns the byte
	// count stored.
	Put(ctx context.Context, key string, r io.Reader, contentType string) (int64, error)
	Delete(ctx context.Context, key string) error
	// DeleteMany removes keys in one batched call; per-key failures come back
	// in failed, everything else is in succeeded.
	DeleteMany(ctx context.Context, keys []string) (succeeded []string, failed map[string]error)
}
