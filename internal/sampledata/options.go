package sampledata

import (
	"github.com/okian/jobchanges/pkg/logger"
)

// Option configures a Generator.
type Option func(*Generator)

// WithSeed makes the generated rows reproducible.
func WithSeed(seed uint64) Option {
	return func(g *Generator) {
		g.seed = seed
	}
}

// WithYear sets the year most event times fall in.
func WithYear(year int) Option {
	return func(g *Generator) {
		if year > 0 {
			g.year = year
		}
	}
}

// WithIDGenerator sets the generator of person IDs.
func WithIDGenerator(gen func() string) Option {
	return func(g *Generator) {
		if gen != nil {
			g.newID = gen
		}
	}
}

// WithLogger sets a custom logger for the generator.
func WithLogger(l logger.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.logger = l
		}
	}
}
