// Package eventtime derives the canonical event time of a record.
//
// Arrivals are timed by current_job.started_at; every other record,
// including departures and unrecognized labels, by previous_job.ended_at.
// The instant is parsed with its offset and then made naive by keeping the
// wall clock as written: bucketing is calendar-based, so the offset is
// dropped rather than converted to a fixed zone.
package eventtime

import (
	"strings"
	"time"

	"github.com/okian/jobchanges/internal/domain/model"
)

// Layouts carrying an explicit offset. Fractional seconds are accepted by
// time.Parse after the seconds field even when the layout omits them.
var awareLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02T15:04:05Z0700",
	"2006-01-02 15:04:05Z0700",
	"2006-01-02T15:04:05Z07",
	"2006-01-02 15:04:05Z07",
	"2006-01-02T15:04Z07:00",
	"2006-01-02 15:04Z07:00",
}

// Layouts without offset; the text is already a naive wall clock.
var naiveLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	time.DateOnly,
}

// Resolve returns the canonical event time of r, or absent when the source
// field selected by r's type is absent or unparsable.
func Resolve(r model.Record) model.Optional[time.Time] {
	src := r.DepartureEnd
	if r.IsType(model.Arrival) {
		src = r.ArrivalStart
	}
	v, ok := src.Get()
	if !ok {
		return model.None[time.Time]()
	}
	return Parse(v)
}

// Parse reads an ISO-8601 timestamp and returns its naive wall clock.
func Parse(s string) model.Optional[time.Time] {
	t, ok := ParseInstant(s)
	if !ok {
		return model.None[time.Time]()
	}
	return model.Some(Naive(t))
}

// ParseInstant reads an ISO-8601 timestamp keeping its offset. Offset-less
// input is returned in UTC.
func ParseInstant(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range awareLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	for _, layout := range naiveLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Naive drops the offset of t, keeping its wall clock, and returns it in UTC.
func Naive(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}
