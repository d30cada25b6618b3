// Package pipeline turns a raw job-changes table into ranked and
// time-bucketed summaries.
//
// Run is a pure function of its inputs: it normalizes the table, decodes
// records, resolves event times, buckets them into weeks, and feeds the same
// decoded records to the rankers and the weekly pivot. It keeps no state
// between calls; caching belongs to the caller.
package pipeline

import (
	"strings"
	"time"

	"github.com/okian/jobchanges/internal/domain/eventtime"
	"github.com/okian/jobchanges/internal/domain/model"
	"github.com/okian/jobchanges/internal/domain/ranking"
	"github.com/okian/jobchanges/internal/domain/series"
	"github.com/okian/jobchanges/internal/domain/table"
	"github.com/okian/jobchanges/internal/domain/week"
)

// Defaults used when Params leave a value unset.
const (
	DefaultTopN       = 5
	DefaultTargetYear = 2025
)

// Params configure one run.
type Params struct {
	TopN       int
	TargetYear int
}

// WithDefaults fills unset (non-positive) values.
func (p Params) WithDefaults() Params {
	if p.TopN <= 0 {
		p.TopN = DefaultTopN
	}
	if p.TargetYear <= 0 {
		p.TargetYear = DefaultTargetYear
	}
	return p
}

// Stats summarizes the decoded table.
type Stats struct {
	Records          int `json:"records"`
	Arrivals         int `json:"arrivals"`
	Departures       int `json:"departures"`
	UnknownType      int `json:"unknown_type"`
	MissingEventTime int `json:"missing_event_time"`
}

// Report holds the three independent outputs of one run.
type Report struct {
	Params    Params
	Companies ranking.Result // companies by departure
	Functions ranking.Result // job functions by departure
	Weekly    series.Series
	Stats     Stats
}

// Run executes the whole transform over t.
func Run(t table.Table, p Params) Report {
	p = p.WithDefaults()
	records := Decode(t)
	return Report{
		Params:    p,
		Companies: ranking.Rank(records, model.Departure, ranking.FieldCompany, p.TopN),
		Functions: ranking.Rank(records, model.Departure, ranking.FieldFunction, p.TopN),
		Weekly:    series.Weekly(records, p.TargetYear),
		Stats:     Summarize(records),
	}
}

// Decode normalizes t and returns one enriched record per row. Text cells
// are whitespace-trimmed, so " Acme " and "Acme" are the same label, and a
// cell that trims to empty is absent.
func Decode(t table.Table) []model.Record {
	t = table.Normalize(t, model.ExpectedColumns())
	var (
		typeIdx     = t.Index(model.ColumnType)
		companyIdx  = t.Index(model.ColumnCompany)
		functionIdx = t.Index(model.ColumnFunction)
		startIdx    = t.Index(model.ColumnArrivalStart)
		endIdx      = t.Index(model.ColumnDepartureEnd)
	)

	records := make([]model.Record, len(t.Rows))
	for i, row := range t.Rows {
		r := model.Record{
			Company:      text(row[companyIdx]),
			Function:     text(row[functionIdx]),
			ArrivalStart: text(row[startIdx]),
			DepartureEnd: text(row[endIdx]),
		}
		if v, ok := text(row[typeIdx]).Get(); ok {
			r.Type = model.Some(model.RecordType(v))
		}
		records[i] = Enrich(r)
	}
	return records
}

// Enrich derives the event time and week start of r.
func Enrich(r model.Record) model.Record {
	r.EventTime = eventtime.Resolve(r)
	r.WeekStart = model.None[time.Time]()
	if et, ok := r.EventTime.Get(); ok {
		r.WeekStart = model.Some(week.Bucket(et))
	}
	return r
}

// Summarize counts records by type and by event-time availability.
func Summarize(records []model.Record) Stats {
	s := Stats{Records: len(records)}
	for _, r := range records {
		switch {
		case r.IsType(model.Arrival):
			s.Arrivals++
		case r.IsType(model.Departure):
			s.Departures++
		default:
			s.UnknownType++
		}
		if !r.EventTime.Valid {
			s.MissingEventTime++
		}
	}
	return s
}

// text trims a cell and treats blanks as absent.
func text(c table.Cell) model.Optional[string] {
	if !c.Valid {
		return model.None[string]()
	}
	v := strings.TrimSpace(c.Value)
	if v == "" {
		return model.None[string]()
	}
	return model.Some(v)
}
