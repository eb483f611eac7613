package storage

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by Get when no value is stored under the key.
	ErrNotFound = errors.New("storage: key not found")

	// ErrCorrupt is returned by Get when a value exists but cannot be decoded
	// by the backend (e.g. fails authentication in Encrypted).
	ErrCorrupt = errors.New("storage: value cannot be decoded")
)

// Storage is a flat key/value store of opaque byte blobs.
//
// Implementations must be safe for concurrent use and honor ctx.
// Remove of a missing key is not an error.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}
