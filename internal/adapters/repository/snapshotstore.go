package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/jobchanges/internal/domain/model"
	"github.com/okian/jobchanges/internal/domain/table"
	"github.com/okian/jobchanges/pkg/metrics"
)

// SnapshotStore is an in-memory Store. Readers load the current snapshot
// with a single atomic read; publications are serialized so versions are
// strictly increasing.
type SnapshotStore struct {
	mu       sync.Mutex
	snapshot atomic.Pointer[Snapshot]
	closed   atomic.Bool

	newID func() string
	now   func() time.Time
}

// NewSnapshotStore returns an empty store.
func NewSnapshotStore(opts ...Option) *SnapshotStore {
	s := &SnapshotStore{
		newID: defaultID,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Publish implements Store.
func (s *SnapshotStore) Publish(ctx context.Context, t table.Table, src model.Source) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.closed.Load() {
		return nil, ErrClosed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var version uint64 = 1
	if prev := s.snapshot.Load(); prev != nil {
		version = prev.Version + 1
	}
	snap := &Snapshot{
		ID:          s.newID(),
		Version:     version,
		Table:       t.Clone(),
		Source:      src,
		PublishedAt: s.now(),
	}
	snap.Source.Columns = append([]string(nil), src.Columns...)
	s.snapshot.Store(snap)

	metrics.UpdateSnapshot(snap.Version, snap.PublishedAt)
	metrics.UpdateRecordsLoaded(snap.Table.Len())
	metrics.UpdateSourceMissing(src.Missing)
	return snap, nil
}

// Current implements Store.
func (s *SnapshotStore) Current(_ context.Context) (*Snapshot, error) {
	snap := s.snapshot.Load()
	if snap == nil {
		return nil, ErrNoSnapshot
	}
	return snap, nil
}

// Version implements Store.
func (s *SnapshotStore) Version() uint64 {
	if snap := s.snapshot.Load(); snap != nil {
		return snap.Version
	}
	return 0
}

// Close rejects further publications. The last snapshot stays readable.
func (s *SnapshotStore) Close() error {
	s.closed.Store(true)
	return nil
}
