// Package model contains domain models passed between layers.
package model

import "time"

// Source column names of the job-changes export.
const (
	ColumnType         = "arrival/departure"
	ColumnCompany      = "previous_job.company.name"
	ColumnFunction     = "previous_job.function"
	ColumnArrivalStart = "current_job.started_at"
	ColumnDepartureEnd = "previous_job.ended_at"
)

// ExpectedColumns returns the columns every normalized table carries,
// in canonical order. A fresh slice is returned on each call.
func ExpectedColumns() []string {
	return []string{
		ColumnType,
		ColumnCompany,
		ColumnFunction,
		ColumnArrivalStart,
		ColumnDepartureEnd,
	}
}

// RecordType is the raw transition label of a record.
type RecordType string

// Recognized record types. Any other label is kept verbatim.
const (
	Arrival   RecordType = "arrival"
	Departure RecordType = "departure"
)

// Known reports whether t is one of the recognized types.
func (t RecordType) Known() bool {
	return t == Arrival || t == Departure
}

// Record is one personnel transition event.
type Record struct {
	Type     Optional[RecordType] // raw label; absent when the cell was empty
	Company  Optional[string]     // previous employer
	Function Optional[string]     // job function at the previous employer

	ArrivalStart Optional[string] // raw started_at text, meaningful for arrivals
	DepartureEnd Optional[string] // raw ended_at text, meaningful for everything else

	// Derived.
	EventTime Optional[time.Time] // naive wall clock, offset dropped
	WeekStart Optional[time.Time] // midnight of the Monday containing EventTime
}

// IsType reports whether the record's label equals t exactly.
func (r Record) IsType(t RecordType) bool {
	return r.Type.Valid && r.Type.Value == t
}

// Source describes where a loaded table came from.
type Source struct {
	Path     string    `json:"path"`
	Missing  bool      `json:"missing"`
	Rows     int       `json:"rows"`
	Columns  []string  `json:"columns"`
	LoadedAt time.Time `json:"loaded_at"`
}
