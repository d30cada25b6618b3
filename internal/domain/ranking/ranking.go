// Package ranking computes top-N frequency rankings of categorical fields.
//
// Ordering: selection takes the N largest counts, ties broken by label
// ascending (deterministic). The returned entries are then ordered by count
// ascending, ties by label ascending, so the largest count is last.
package ranking

import (
	"sort"

	"github.com/okian/jobchanges/internal/domain/model"
)

// Field selects the categorical value a ranking counts.
type Field int

// Rankable fields.
const (
	FieldCompany Field = iota
	FieldFunction
)

// String returns the field's source column name.
func (f Field) String() string {
	switch f {
	case FieldCompany:
		return model.ColumnCompany
	case FieldFunction:
		return model.ColumnFunction
	default:
		return "unknown"
	}
}

func (f Field) value(r model.Record) model.Optional[string] {
	switch f {
	case FieldCompany:
		return r.Company
	case FieldFunction:
		return r.Function
	default:
		return model.None[string]()
	}
}

// Entry is one ranked label.
type Entry struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Result is an ordered ranking. Empty is set when no record qualified;
// Entries is then an empty, non-nil slice.
type Result struct {
	Entries []Entry `json:"entries"`
	Empty   bool    `json:"empty"`
}

// Total returns the sum of all counts.
func (r Result) Total() int {
	n := 0
	for _, e := range r.Entries {
		n += e.Count
	}
	return n
}

// Rank counts field values over records whose type equals recordType
// exactly, skipping absent values, and returns the topN most frequent.
// A non-positive topN yields an empty result.
func Rank(records []model.Record, recordType model.RecordType, field Field, topN int) Result {
	counts := Count(records, recordType, field)
	if len(counts) == 0 || topN <= 0 {
		return empty()
	}

	entries := make([]Entry, 0, len(counts))
	for label, n := range counts {
		entries = append(entries, Entry{Label: label, Count: n})
	}

	sort.Slice(entries, func(i, j int) bool { return ranksHigher(entries[i], entries[j]) })
	if len(entries) > topN {
		entries = entries[:topN]
	}
	sort.Slice(entries, func(i, j int) bool { return rendersBefore(entries[i], entries[j]) })

	return Result{Entries: entries}
}

// Count returns per-value occurrence counts of field over records of the
// given type. Absent values are not counted.
func Count(records []model.Record, recordType model.RecordType, field Field) map[string]int {
	counts := make(map[string]int)
	for _, r := range records {
		if !r.IsType(recordType) {
			continue
		}
		v, ok := field.value(r).Get()
		if !ok {
			continue
		}
		counts[v]++
	}
	return counts
}

// ranksHigher orders by count desc, then label asc.
func ranksHigher(a, b Entry) bool {
	if a.Count != b.Count {
		return a.Count > b.Count
	}
	return a.Label < b.Label
}

// rendersBefore orders by count asc, then label asc.
func rendersBefore(a, b Entry) bool {
	if a.Count != b.Count {
		return a.Count < b.Count
	}
	return a.Label < b.Label
}

func empty() Result {
	return Result{Entries: []Entry{}, Empty: true}
}
