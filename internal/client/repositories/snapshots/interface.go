package snapshots

import (
	"context"
	"time"
)

// Snapshot is a stored dashboard payload.
type Snapshot struct {
	Crop      string
	Payload   []byte
	FetchedAt time.Time
}

// Repository stores one snapshot per crop; saving replaces the previous one.
type Repository interface {
	Save(ctx context.Context, crop string, payload []byte, fetchedAt time.Time) error
	Get(ctx context.Context, crop string) (*Snapshot, error)
	Delete(ctx context.Context, crop string) error
	List(ctx context.Context) ([]Snapshot, error)
}
