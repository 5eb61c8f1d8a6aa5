// Package metadata is the client's persistent key→blob store. It replaces
// browser local storage: the bearer token, the cached identity and the
// directory mirror are each one row.
package metadata

import (
	"context"
)

// Repository reads and writes opaque values by key. Get returns (nil, nil)
// for a missing key.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
}

// Store is a Repository that can also group writes into one transaction.
type Store interface {
	Repository
	Atomically(ctx context.Context, fn func(ctx context.Context, repo Repository) error) error
}
