package repository

import (
	"time"

	"github.com/google/uuid"
)

// Option applies a configuration option to the SnapshotStore.
type Option func(*SnapshotStore)

// WithIDGenerator sets the generator of snapshot IDs.
func WithIDGenerator(gen func() string) Option {
	return func(s *SnapshotStore) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// WithClock sets the time source used to stamp publications.
func WithClock(now func() time.Time) Option {
	return func(s *SnapshotStore) {
		if now != nil {
			s.now = now
		}
	}
}

func defaultID() string { return uuid.NewString() }
