package metadata

import (
	"context"
)

// Repository stores opaque values by key. Get returns (nil, nil) for
// absent keys.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error

	// Update runs fn against a repository whose writes commit together or
	// not at all.
	Update(ctx context.Context, fn func(ctx context.Context, r Repository) error) error
}
