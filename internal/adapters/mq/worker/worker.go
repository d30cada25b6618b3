// Package worker runs reload requests off the queue.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/jobchanges/internal/domain/model"
	"github.com/okian/jobchanges/pkg/logger"
	"github.com/okian/jobchanges/pkg/metrics"
)

// Request abstracts what the worker reads off the queue.
type Request = model.ReloadRequest

// Reloader re-reads the data source and swaps the current snapshot.
type Reloader interface {
	Reload(ctx context.Context, reason model.ReloadReason) error
}

// Queue defines how the worker receives requests.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Request
}

// Worker processes reload requests.
type Worker interface {
	// Run starts the worker loop until ctx is canceled, Shutdown is called,
	// or the queue is closed.
	Run(ctx context.Context)

	// Shutdown stops the worker after the request in progress, if any.
	Shutdown(ctx context.Context) error
}

// ReloadWorker serializes reloads: one request is processed at a time, so
// the last completed load is always the newest.
type ReloadWorker struct {
	queue    Queue
	reloader Reloader
	name     string
	observe  func(Request, error)

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// NewReloadWorker creates a new worker with configuration options.
func NewReloadWorker(queue Queue, reloader Reloader, opts ...Option) *ReloadWorker {
	w := &ReloadWorker{
		queue:    queue,
		reloader: reloader,
		name:     "reload-worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.Named(w.name)
	return w
}

// Run starts the worker loop.
func (w *ReloadWorker) Run(ctx context.Context) {
	defer close(w.done)

	requests := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case req, ok := <-requests:
			if !ok {
				return
			}
			err := w.process(ctx, req)
			if err != nil {
				w.logger.Error(ctx, "reload failed",
					logger.String("request_id", req.ID),
					logger.String("reason", string(req.Reason)),
					logger.Error(err),
				)
			}
			if w.observe != nil {
				w.observe(req, err)
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *ReloadWorker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Done is closed when Run returns.
func (w *ReloadWorker) Done() <-chan struct{} { return w.done }

func (w *ReloadWorker) process(ctx context.Context, req Request) error {
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	w.logger.Debug(ctx, "processing reload",
		logger.String("request_id", req.ID),
		logger.String("reason", string(req.Reason)),
		logger.Duration("waited", start.Sub(req.RequestedAt)),
	)
	if err := w.reloader.Reload(ctx, req.Reason); err != nil {
		metrics.RecordErrorByComponent("worker", "reload_error")
		return fmt.Errorf("reload %s: %w", req.ID, err)
	}
	return nil
}
