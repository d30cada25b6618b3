package loader

import (
	"time"

	"github.com/okian/jobchanges/pkg/logger"
)

// Option applies a configuration option to the Loader.
type Option func(*Loader)

// WithLogger sets the logger used for load diagnostics.
func WithLogger(l logger.Logger) Option {
	return func(ld *Loader) {
		if l != nil {
			ld.log = l
		}
	}
}

// WithNaNValues replaces the cell values treated as absent.
func WithNaNValues(values ...string) Option {
	return func(ld *Loader) {
		if len(values) > 0 {
			ld.nanValues = append([]string(nil), values...)
		}
	}
}

// WithClock overrides the time source stamped on Source.LoadedAt.
func WithClock(now func() time.Time) Option {
	return func(ld *Loader) {
		if now != nil {
			ld.now = now
		}
	}
}
