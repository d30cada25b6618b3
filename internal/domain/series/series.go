// Package series builds the weekly arrivals-vs-departures time series.
//
// Records are counted per (week start, type label) within one target year,
// pivoted into a dense week x type grid with explicit zeros, and flattened
// back to tidy (week, type, count) points for plotting.
package series

import (
	"sort"
	"strings"
	"time"

	"github.com/okian/jobchanges/internal/domain/model"
	"github.com/okian/jobchanges/internal/domain/week"
)

// Point is one cell of the dense grid.
type Point struct {
	WeekStart time.Time
	Type      string
	Count     int
}

// Row is one week of the wide pivot; Counts is aligned with Pivot.Types.
type Row struct {
	WeekStart time.Time
	Counts    []int
}

// Pivot is the wide form: one row per observed week, one column per
// observed type.
type Pivot struct {
	Year  int
	Types []string
	Rows  []Row
}

// Series is the tidy weekly series. Empty is set when no record qualified
// for the target year; Points is then an empty, non-nil slice.
type Series struct {
	Year   int
	Types  []string
	Points []Point
	Empty  bool
}

type key struct {
	week time.Time
	typ  string
}

// BuildPivot counts qualifying records per week and type. A record
// qualifies when its week start is present and falls in targetYear and its
// type label is present and non-blank.
func BuildPivot(records []model.Record, targetYear int) Pivot {
	counts := make(map[key]int)
	weeks := make(map[time.Time]struct{})
	types := make(map[string]struct{})

	for _, r := range records {
		ws, ok := r.WeekStart.Get()
		if !ok || week.Year(ws) != targetYear {
			continue
		}
		typ, ok := r.Type.Get()
		if !ok || strings.TrimSpace(string(typ)) == "" {
			continue
		}
		k := key{week: ws, typ: string(typ)}
		counts[k]++
		weeks[ws] = struct{}{}
		types[k.typ] = struct{}{}
	}

	p := Pivot{Year: targetYear, Types: canonicalTypes(types), Rows: make([]Row, 0, len(weeks))}
	for _, ws := range sortedWeeks(weeks) {
		row := Row{WeekStart: ws, Counts: make([]int, len(p.Types))}
		for i, typ := range p.Types {
			row.Counts[i] = counts[key{week: ws, typ: typ}]
		}
		p.Rows = append(p.Rows, row)
	}
	return p
}

// Tidy flattens the pivot to points ordered by week, then type order.
func (p Pivot) Tidy() []Point {
	points := make([]Point, 0, len(p.Rows)*len(p.Types))
	for _, row := range p.Rows {
		for i, typ := range p.Types {
			points = append(points, Point{WeekStart: row.WeekStart, Type: typ, Count: row.Counts[i]})
		}
	}
	return points
}

// Weekly builds the tidy weekly series of records for targetYear.
func Weekly(records []model.Record, targetYear int) Series {
	p := BuildPivot(records, targetYear)
	if len(p.Rows) == 0 {
		return Series{Year: targetYear, Types: []string{}, Points: []Point{}, Empty: true}
	}
	return Series{Year: targetYear, Types: p.Types, Points: p.Tidy()}
}

// Total returns the sum of all point counts.
func (s Series) Total() int {
	n := 0
	for _, pt := range s.Points {
		n += pt.Count
	}
	return n
}

// canonicalTypes orders arrival, departure, then other labels ascending.
func canonicalTypes(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		ri, rj := typeRank(out[i]), typeRank(out[j])
		if ri != rj {
			return ri < rj
		}
		return out[i] < out[j]
	})
	return out
}

func typeRank(t string) int {
	switch model.RecordType(t) {
	case model.Arrival:
		return 0
	case model.Departure:
		return 1
	default:
		return 2
	}
}

func sortedWeeks(set map[time.Time]struct{}) []time.Time {
	out := make([]time.Time, 0, len(set))
	for w := range set {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}
