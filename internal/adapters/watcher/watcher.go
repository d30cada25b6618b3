// Package watcher turns changes of the data file into reload requests.
//
// The parent directory is watched rather than the file itself so that
// editors and tools that replace the file by rename are still observed.
// Bursts of events are debounced into a single request.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"github.com/okian/jobchanges/internal/domain/model"
	"github.com/okian/jobchanges/pkg/logger"
	"github.com/okian/jobchanges/pkg/metrics"
)

const defaultDebounce = 500 * time.Millisecond

// Sink receives reload requests.
type Sink interface {
	Enqueue(ctx context.Context, r model.ReloadRequest) (coalesced bool, err error)
}

// Stats tracks watcher activity.
type Stats struct {
	Events        int       `json:"events"`
	Requests      int       `json:"requests"`
	Errors        int       `json:"errors"`
	LastEventTime time.Time `json:"last_event_time"`
	LastEventOp   string    `json:"last_event_op"`
}

// Watcher watches one data file.
type Watcher struct {
	mu       sync.RWMutex
	fsw      *fsnotify.Watcher
	path     string
	dir      string
	sink     Sink
	debounce time.Duration
	newID    func() string
	logger   logger.Logger

	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
	stats   Stats
}

// New creates a Watcher for path that sends requests to sink.
func New(path string, sink Sink, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrWatch, path, err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWatch, err)
	}
	w := &Watcher{
		fsw:      fsw,
		path:     filepath.Clean(abs),
		dir:      filepath.Dir(abs),
		sink:     sink,
		debounce: defaultDebounce,
		newID:    uuid.NewString,
		logger:   logger.Nop(),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start begins watching. It is non-blocking and idempotent. A directory
// that cannot be watched is an error.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	if err := w.fsw.Add(w.dir); err != nil {
		w.mu.Unlock()
		return fmt.Errorf("%w: %s: %w", ErrWatch, w.dir, err)
	}
	w.running = true
	w.mu.Unlock()

	w.logger.Info(ctx, "watching data file", logger.String("path", w.path), logger.Duration("debounce", w.debounce))
	go w.run(ctx)
	return nil
}

// Stop stops the watcher and waits for its loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		_ = w.fsw.Close()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh
	if err := w.fsw.Close(); err != nil {
		w.logger.Error(context.Background(), "close watcher", logger.Error(err))
	}
}

// Run starts the watcher and blocks until ctx is done, then stops it.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.Start(ctx); err != nil {
		return err
	}
	select {
	case <-ctx.Done():
	case <-w.doneCh:
	}
	w.Stop()
	return nil
}

// Stats returns a copy of the activity counters.
func (w *Watcher) Stats() Stats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.stats
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			w.record(event)
			if w.debounce == 0 {
				w.request(ctx)
				continue
			}
			timer.Reset(w.debounce)
			fire = timer.C

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()
			metrics.RecordErrorByComponent("watcher", "fsnotify")
			w.logger.Error(ctx, "watcher error", logger.Error(err))

		case <-fire:
			fire = nil
			w.request(ctx)
		}
	}
}

func (w *Watcher) relevant(e fsnotify.Event) bool {
	if filepath.Clean(e.Name) != w.path {
		return false
	}
	return e.Has(fsnotify.Create) || e.Has(fsnotify.Write) || e.Has(fsnotify.Remove) || e.Has(fsnotify.Rename)
}

func (w *Watcher) record(e fsnotify.Event) {
	metrics.RecordWatcherEvent()
	w.mu.Lock()
	w.stats.Events++
	w.stats.LastEventTime = time.Now()
	w.stats.LastEventOp = e.Op.String()
	w.mu.Unlock()
}

func (w *Watcher) request(ctx context.Context) {
	req := model.ReloadRequest{ID: w.newID(), Reason: model.ReloadWatch, RequestedAt: time.Now()}
	coalesced, err := w.sink.Enqueue(ctx, req)
	if err != nil {
		w.logger.Warn(ctx, "reload request rejected", logger.String("request_id", req.ID), logger.Error(err))
		return
	}
	w.mu.Lock()
	w.stats.Requests++
	w.mu.Unlock()
	w.logger.Debug(ctx, "reload requested",
		logger.String("request_id", req.ID),
		logger.Bool("coalesced", coalesced),
	)
}
