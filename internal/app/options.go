package service

import (
	"time"

	"github.com/okian/jobchanges/internal/adapters/mq/queue"
	"github.com/okian/jobchanges/internal/adapters/repository"
	"github.com/okian/jobchanges/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithDataPath sets the CSV read by the default loader.
func WithDataPath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.dataPath = path
		}
	}
}

// WithLoader sets the data source loader, replacing the default CSV loader.
func WithLoader(l Loader) Option {
	return func(s *Service) {
		if l != nil {
			s.loader = l
		}
	}
}

// WithStore sets the snapshot store.
func WithStore(st repository.Store) Option {
	return func(s *Service) {
		if st != nil {
			s.store = st
		}
	}
}

// WithQueue sets the reload request queue.
func WithQueue(q queue.Queue) Option {
	return func(s *Service) {
		if q != nil {
			s.queue = q
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithDefaults sets the report parameters used when a request leaves them unset.
func WithDefaults(topN, targetYear int) Option {
	return func(s *Service) {
		if topN > 0 {
			s.defaults.TopN = topN
		}
		if targetYear > 0 {
			s.defaults.TargetYear = targetYear
		}
	}
}

// WithMaxTopN caps the ranking size a request may ask for.
func WithMaxTopN(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxTopN = n
		}
	}
}

// WithCacheSize bounds the number of cached reports per snapshot.
func WithCacheSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.cacheSize = n
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides the generator of run and request IDs.
func WithIDGenerator(gen func() string) Option {
	return func(s *Service) {
		if gen != nil {
			s.newID = gen
		}
	}
}
