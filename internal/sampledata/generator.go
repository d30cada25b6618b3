// Package sampledata writes synthetic job-changes CSV files in the source
// schema, including the dirty rows real exports contain: unknown type
// labels, blank categories, missing and unparsable timestamps, and
// timestamps with offsets.
package sampledata

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/okian/jobchanges/internal/domain/model"
	"github.com/okian/jobchanges/internal/domain/pipeline"
	"github.com/okian/jobchanges/pkg/logger"
)

// ColumnPersonID and ColumnCurrentCompany are carried alongside the
// expected columns.
const (
	ColumnPersonID       = "person_id"
	ColumnCurrentCompany = "current_job.company.name"
)

// Row kind thresholds out of 100.
const (
	kindDeparture   = 50
	kindArrival     = 88
	kindUnknown     = 93
	kindMissingTime = 97
	// the rest get an unparsable timestamp
)

// Constants for value generation.
const (
	blankCategoryPercent = 5
	priorYearPercent     = 10
	daysPerYear          = 365
	secondsPerDay        = 24 * 60 * 60
)

var (
	companies = []string{
		"Acme", "Globex", "Initech", "Umbrella", "Hooli", "Stark Industries",
		"Wayne Enterprises", "Wonka", "Cyberdyne", "Soylent", "Tyrell", "Aperture",
	}
	functions = []string{
		"Engineering", "Sales", "Marketing", "Finance", "Operations",
		"Human Resources", "Legal", "Product", "Design", "Support",
	}
	unknownTypes = []string{"promotion", "Departure", "transfer", "ARRIVAL"}
	junkTimes    = []string{"not a date", "2025-13-45", "yesterday", "31/02/2025"}
	offsets      = []int{-8, -5, 0, 1, 2, 5, 9}
)

// Stats counts the generated rows. Arrivals and Departures count the exact
// type labels, including rows whose timestamp is missing or junk.
type Stats struct {
	Rows        int `json:"rows"`
	Arrivals    int `json:"arrivals"`
	Departures  int `json:"departures"`
	UnknownType int `json:"unknown_type"`
	MissingTime int `json:"missing_time"`
	JunkTime    int `json:"junk_time"`
}

// Generator produces synthetic rows.
type Generator struct {
	seed   uint64
	year   int
	newID  func() string
	logger logger.Logger
}

// New creates a Generator. Without WithSeed every run differs.
func New(opts ...Option) *Generator {
	g := &Generator{
		seed:   rand.Uint64(),
		year:   pipeline.DefaultTargetYear,
		newID:  uuid.NewString,
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Header returns the column names of generated files.
func Header() []string {
	return []string{
		ColumnPersonID,
		model.ColumnType,
		model.ColumnCompany,
		model.ColumnFunction,
		ColumnCurrentCompany,
		model.ColumnArrivalStart,
		model.ColumnDepartureEnd,
	}
}

// Write writes a header and n rows to w.
func (g *Generator) Write(ctx context.Context, w io.Writer, n int) (Stats, error) {
	var st Stats
	if n < 1 {
		return st, fmt.Errorf("%w: got %d", ErrInvalidRows, n)
	}
	rng := rand.New(rand.NewPCG(g.seed, g.seed^0x9e3779b97f4a7c15))

	cw := csv.NewWriter(w)
	if err := cw.Write(Header()); err != nil {
		return st, fmt.Errorf("%w: %w", ErrWrite, err)
	}
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return st, fmt.Errorf("context cancelled during generation: %w", err)
		}
		if err := cw.Write(g.row(rng, &st)); err != nil {
			return st, fmt.Errorf("%w: row %d: %w", ErrWrite, i, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return st, fmt.Errorf("%w: %w", ErrWrite, err)
	}

	g.logger.Info(ctx, "generated sample data",
		logger.Int("rows", st.Rows),
		logger.Int("arrivals", st.Arrivals),
		logger.Int("departures", st.Departures),
		logger.Int("unknown_type", st.UnknownType),
		logger.Int("missing_time", st.MissingTime),
		logger.Int("junk_time", st.JunkTime),
	)
	return st, nil
}

// WriteFile writes n rows to path, replacing it atomically so a watching
// service never reads a partial file.
func (g *Generator) WriteFile(ctx context.Context, path string, n int) (Stats, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Stats{}, fmt.Errorf("%w: %w", ErrWrite, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return Stats{}, fmt.Errorf("%w: %w", ErrWrite, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	st, err := g.Write(ctx, tmp, n)
	if cerr := tmp.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("%w: %w", ErrWrite, cerr)
	}
	if err != nil {
		return st, err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return st, fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return st, nil
}

func (g *Generator) row(rng *rand.Rand, st *Stats) []string {
	st.Rows++
	company := category(rng, companies)
	function := category(rng, functions)
	current := pick(rng, companies)

	var typ, started, ended string
	switch k := rng.IntN(100); {
	case k < kindDeparture:
		typ, ended = string(model.Departure), g.timestamp(rng)
	case k < kindArrival:
		typ, started = string(model.Arrival), g.timestamp(rng)
	case k < kindUnknown:
		st.UnknownType++
		typ, ended = pick(rng, unknownTypes), g.timestamp(rng)
	case k < kindMissingTime:
		st.MissingTime++
		typ = pick(rng, []string{string(model.Arrival), string(model.Departure)})
	default:
		st.JunkTime++
		typ = string(model.Departure)
		ended = pick(rng, junkTimes)
	}
	switch model.RecordType(typ) {
	case model.Arrival:
		st.Arrivals++
	case model.Departure:
		st.Departures++
	}
	return []string{g.newID(), typ, company, function, current, started, ended}
}

// timestamp renders a random instant in one of the source's formats.
func (g *Generator) timestamp(rng *rand.Rand) string {
	year := g.year
	if rng.IntN(100) < priorYearPercent {
		year--
	}
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	t := start.Add(time.Duration(rng.IntN(daysPerYear*secondsPerDay)) * time.Second)

	switch rng.IntN(4) {
	case 0:
		return t.Format(time.RFC3339)
	case 1:
		zone := time.FixedZone("", pick(rng, offsets)*60*60)
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, zone).Format(time.RFC3339)
	case 2:
		return t.Format(time.DateOnly)
	default:
		return t.Format(time.DateTime)
	}
}

// category returns a value from values or, occasionally, a blank cell.
func category(rng *rand.Rand, values []string) string {
	if rng.IntN(100) < blankCategoryPercent {
		return ""
	}
	return pick(rng, values)
}

func pick[T any](rng *rand.Rand, values []T) T {
	return values[rng.IntN(len(values))]
}
