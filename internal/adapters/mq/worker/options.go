package worker

import (
	"github.com/okian/jobchanges/internal/domain/model"
	"github.com/okian/jobchanges/pkg/logger"
)

// Option applies a configuration option to the ReloadWorker.
type Option func(*ReloadWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *ReloadWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(w *ReloadWorker) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithObserver registers a callback invoked after every processed request.
func WithObserver(fn func(model.ReloadRequest, error)) Option {
	return func(w *ReloadWorker) {
		w.observe = fn
	}
}
