package watcher

import (
	"time"

	"github.com/okian/jobchanges/pkg/logger"
)

// Option applies a configuration option to the Watcher.
type Option func(*Watcher)

// WithDebounce sets how long the file must stay quiet before a reload is
// requested. Zero requests a reload on every relevant event.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d >= 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the watcher logger.
func WithLogger(l logger.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithIDGenerator sets the generator of reload request IDs.
func WithIDGenerator(gen func() string) Option {
	return func(w *Watcher) {
		if gen != nil {
			w.newID = gen
		}
	}
}
