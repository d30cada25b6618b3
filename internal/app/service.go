// Package service provides the core business service that implements
// the dependencies required by the HTTP API and the CLI.
//
// The service owns one immutable snapshot of the data file. Reports are
// computed on demand by the pipeline and cached per (topN, targetYear)
// until the next reload replaces the snapshot.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/okian/jobchanges/internal/adapters/loader"
	"github.com/okian/jobchanges/internal/adapters/mq/queue"
	"github.com/okian/jobchanges/internal/adapters/mq/worker"
	"github.com/okian/jobchanges/internal/adapters/repository"
	"github.com/okian/jobchanges/internal/config"
	"github.com/okian/jobchanges/internal/domain/model"
	"github.com/okian/jobchanges/internal/domain/pipeline"
	"github.com/okian/jobchanges/internal/domain/table"
	"github.com/okian/jobchanges/internal/domain/types"
	"github.com/okian/jobchanges/pkg/logger"
	"github.com/okian/jobchanges/pkg/metrics"
)

const (
	defaultCacheSize      = 256
	workerShutdownTimeout = 5 * time.Second
	reloadStatusAccepted  = "accepted"
)

// Loader reads the data source.
type Loader interface {
	Load(ctx context.Context) (table.Table, model.Source, error)
}

type cacheKey struct {
	topN int
	year int
}

// quality is the data-quality summary of one snapshot.
type quality struct {
	records        pipeline.Stats
	missingColumns []string
}

// Service implements the API dependencies for the job changes reports.
type Service struct {
	mu sync.RWMutex

	// Core components
	loader Loader
	store  repository.Store
	queue  queue.Queue
	worker *worker.ReloadWorker

	// Configuration
	dataPath  string
	defaults  pipeline.Params
	maxTopN   int
	cacheSize int

	// Report cache, valid for one snapshot version
	cacheMu      sync.Mutex
	cache        map[cacheKey]*types.Report
	cacheVersion uint64

	// Reload bookkeeping
	reloadMu       sync.Mutex
	reloads        atomic.Uint64
	reloadFailures atomic.Uint64
	lastReloadErr  atomic.Pointer[string]
	quality        atomic.Pointer[quality]

	// State
	started bool
	cancel  context.CancelFunc

	now    func() time.Time
	newID  func() string
	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		dataPath:  config.DefaultDataPath,
		defaults:  pipeline.Params{TopN: config.DefaultTopN, TargetYear: config.DefaultTargetYear},
		maxTopN:   config.DefaultMaxTopN,
		cacheSize: defaultCacheSize,
		cache:     make(map[cacheKey]*types.Report),
		now:       time.Now,
		newID:     uuid.NewString,
		logger:    logger.Nop(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.loader == nil {
		s.loader = loader.New(s.dataPath, loader.WithLogger(s.logger.Named("loader")))
	}
	if s.store == nil {
		s.store = repository.NewSnapshotStore(repository.WithClock(s.now), repository.WithIDGenerator(s.newID))
	}
	if s.queue == nil {
		s.queue = queue.NewInMemoryQueue()
	}
	return s
}

// Start performs the initial load and starts the reload worker. A corrupt
// data file fails startup; a missing one does not.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.logger.Info(ctx, "starting job changes service...", logger.String("data_path", s.dataPath))

	if err := s.Reload(ctx, model.ReloadStartup); err != nil {
		return fmt.Errorf("initial load: %w", err)
	}

	// The worker outlives the startup context; Stop cancels it.
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.worker = worker.NewReloadWorker(s.queue, s,
		worker.WithLogger(s.logger),
		worker.WithName("reload-worker"),
	)
	go s.worker.Run(runCtx)

	s.started = true
	s.logger.Info(ctx, "job changes service started",
		logger.Int("default_top_n", s.defaults.TopN),
		logger.Int("default_target_year", s.defaults.TargetYear),
		logger.Int("max_top_n", s.maxTopN),
	)
	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	s.logger.Info(ctx, "stopping job changes service...")

	_ = s.queue.Close()
	if s.worker != nil {
		sctx, cancel := context.WithTimeout(ctx, workerShutdownTimeout)
		if err := s.worker.Shutdown(sctx); err != nil {
			s.logger.Warn(ctx, "reload worker shutdown", logger.Error(err))
		}
		cancel()
	}
	if s.cancel != nil {
		s.cancel()
	}
	if closer, ok := s.store.(interface{ Close() error }); ok {
		_ = closer.Close()
	}

	s.started = false
	s.logger.Info(ctx, "job changes service stopped")
}

// Reload reads the data source again and swaps the snapshot. On failure
// the previous snapshot stays current.
func (s *Service) Reload(ctx context.Context, reason model.ReloadReason) error {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	start := s.now()
	t, src, err := s.loader.Load(ctx)
	if err != nil {
		s.reloadFailures.Add(1)
		msg := err.Error()
		s.lastReloadErr.Store(&msg)
		metrics.RecordErrorByComponent("service", "reload")
		s.logger.Error(ctx, "reload failed; keeping previous snapshot",
			logger.String("reason", string(reason)),
			logger.Error(err),
		)
		return err
	}

	snap, err := s.store.Publish(ctx, t, src)
	if err != nil {
		s.reloadFailures.Add(1)
		return fmt.Errorf("publish snapshot: %w", err)
	}
	s.invalidate(snap.Version)
	s.lastReloadErr.Store(nil)
	s.reloads.Add(1)
	metrics.RecordReload(string(reason))

	q := s.summarize(snap)
	s.quality.Store(q)

	if src.Missing {
		s.logger.Warn(ctx, types.NoticeSourceMissing(src.Path))
	}
	if len(q.missingColumns) > 0 {
		s.logger.Warn(ctx, "data file lacks expected columns", logger.Any("columns", q.missingColumns))
	}
	s.logger.Info(ctx, "snapshot loaded",
		logger.String("reason", string(reason)),
		logger.String("snapshot_id", snap.ID),
		logger.Any("version", snap.Version),
		logger.Int("records", q.records.Records),
		logger.Int("missing_event_time", q.records.MissingEventTime),
		logger.Int("unknown_type", q.records.UnknownType),
		logger.Duration("took", s.now().Sub(start)),
	)
	return nil
}

// Enqueue submits a reload request for asynchronous processing. It lets
// the service act as the file watcher's sink.
func (s *Service) Enqueue(ctx context.Context, r model.ReloadRequest) (bool, error) {
	return s.queue.Enqueue(ctx, r)
}

// RequestReload queues a reload and returns immediately.
func (s *Service) RequestReload(ctx context.Context, reason model.ReloadReason) (types.ReloadAck, error) {
	req := model.ReloadRequest{ID: s.newID(), Reason: reason, RequestedAt: s.now()}
	coalesced, err := s.queue.Enqueue(ctx, req)
	if err != nil {
		return types.ReloadAck{}, err
	}
	return types.ReloadAck{Status: reloadStatusAccepted, RequestID: req.ID, Coalesced: coalesced}, nil
}

// Report returns the report for p over the current snapshot. Zero fields
// of p take the service defaults.
func (s *Service) Report(ctx context.Context, p pipeline.Params) (*types.Report, error) {
	p, err := s.params(p)
	if err != nil {
		return nil, err
	}
	snap, err := s.store.Current(ctx)
	if errors.Is(err, repository.ErrNoSnapshot) {
		return nil, ErrNotStarted
	}
	if err != nil {
		return nil, err
	}

	key := cacheKey{topN: p.TopN, year: p.TargetYear}
	if rep, ok := s.cached(key, snap.Version); ok {
		metrics.RecordCacheHit()
		return rep, nil
	}
	metrics.RecordCacheMiss()

	start := s.now()
	out := pipeline.Run(snap.Table, p)
	metrics.RecordPipelineRun(s.now().Sub(start))

	rep := &types.Report{
		RunID:       s.newID(),
		SnapshotID:  snap.ID,
		Version:     snap.Version,
		Source:      snap.Source,
		GeneratedAt: s.now(),
		Report:      out,
	}
	s.remember(key, rep)
	s.logger.Debug(ctx, "report computed",
		logger.String("run_id", rep.RunID),
		logger.Int("top_n", p.TopN),
		logger.Int("target_year", p.TargetYear),
	)
	return rep, nil
}

// Defaults returns the parameters applied to unset request fields.
func (s *Service) Defaults() pipeline.Params { return s.defaults }

// MaxTopN returns the largest accepted ranking size.
func (s *Service) MaxTopN() int { return s.maxTopN }

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() types.ServiceStats {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()

	ctx := context.Background()
	st := types.ServiceStats{
		Started:        started,
		Reloads:        s.reloads.Load(),
		ReloadFailures: s.reloadFailures.Load(),
		PendingReloads: s.queue.Len(ctx),
		MissingColumns: []string{},
	}
	if msg := s.lastReloadErr.Load(); msg != nil {
		st.LastReloadError = *msg
	}
	if snap, err := s.store.Current(ctx); err == nil {
		st.SnapshotID = snap.ID
		st.Version = snap.Version
		st.LoadedAt = snap.PublishedAt
		st.Source = snap.Source
	}
	if q := s.quality.Load(); q != nil {
		st.Records = q.records
		st.MissingColumns = q.missingColumns
	}
	s.cacheMu.Lock()
	st.CacheEntries = len(s.cache)
	s.cacheMu.Unlock()
	return st
}

func (s *Service) params(p pipeline.Params) (pipeline.Params, error) {
	if p.TopN == 0 {
		p.TopN = s.defaults.TopN
	}
	if p.TargetYear == 0 {
		p.TargetYear = s.defaults.TargetYear
	}
	if p.TopN < 1 || p.TopN > s.maxTopN {
		return p, fmt.Errorf("%w: top must be in [1, %d], got %d", ErrInvalidParams, s.maxTopN, p.TopN)
	}
	if p.TargetYear < 1 || p.TargetYear > 9999 {
		return p, fmt.Errorf("%w: year must be in [1, 9999], got %d", ErrInvalidParams, p.TargetYear)
	}
	return p, nil
}

func (s *Service) summarize(snap *repository.Snapshot) *quality {
	q := &quality{
		records:        pipeline.Summarize(pipeline.Decode(snap.Table)),
		missingColumns: table.Missing(snap.Table, model.ExpectedColumns()),
	}
	if q.missingColumns == nil {
		q.missingColumns = []string{}
	}
	metrics.UpdateRecordsWithoutEventTime(q.records.MissingEventTime)
	metrics.UpdateRecordsUnknownType(q.records.UnknownType)
	metrics.UpdateColumnsMissing(len(q.missingColumns))
	return q
}

func (s *Service) cached(k cacheKey, version uint64) (*types.Report, bool) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	if s.cacheVersion != version {
		return nil, false
	}
	rep, ok := s.cache[k]
	return rep, ok
}

// remember stores rep unless a newer snapshot was published meanwhile.
func (s *Service) remember(k cacheKey, rep *types.Report) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	if rep.Version != s.store.Version() || rep.Version < s.cacheVersion {
		return
	}
	if rep.Version != s.cacheVersion || len(s.cache) >= s.cacheSize {
		s.cache = make(map[cacheKey]*types.Report)
		s.cacheVersion = rep.Version
	}
	s.cache[k] = rep
	metrics.UpdateCacheEntries(len(s.cache))
}

func (s *Service) invalidate(version uint64) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.cache = make(map[cacheKey]*types.Report)
	s.cacheVersion = version
	metrics.UpdateCacheEntries(0)
}
