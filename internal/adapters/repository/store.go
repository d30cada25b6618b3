// Package repository holds the loaded job-changes table as an immutable,
// versioned snapshot.
package repository

import (
	"context"
	"time"

	"github.com/okian/jobchanges/internal/domain/model"
	"github.com/okian/jobchanges/internal/domain/table"
)

// Snapshot is one published load. It must not be mutated after publication.
type Snapshot struct {
	ID          string
	Version     uint64
	Table       table.Table
	Source      model.Source
	PublishedAt time.Time
}

// Age returns how long ago the snapshot was published relative to now.
func (s *Snapshot) Age(now time.Time) time.Duration {
	return now.Sub(s.PublishedAt)
}

// Store provides access to the current snapshot.
type Store interface {
	// Publish replaces the current snapshot with a copy of t and returns it.
	Publish(ctx context.Context, t table.Table, src model.Source) (*Snapshot, error)

	// Current returns the latest snapshot or ErrNoSnapshot.
	Current(ctx context.Context) (*Snapshot, error)

	// Version returns the current version, 0 before the first publication.
	Version() uint64
}
