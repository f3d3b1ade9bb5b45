package ports

import (
	"context"
	"errors"
)

// ErrCacheMiss is returned by ResultCache.Get when the key is not present.
var ErrCacheMiss = errors.New("cache miss")

// ResultCache stores converted expressions keyed by a digest of the
// input line and the pipeline configuration.
type ResultCache interface {
	// Get returns the cached value for key.
	// Returns ErrCacheMiss if the key does not exist.
	Get(ctx context.Context, key string) (string, error)

	// Put stores value under key, replacing any previous value.
	Put(ctx context.Context, key, value string) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
