// Package types contains the report shapes shared by the service, the HTTP
// API and the CLI.
package types

import (
	"fmt"
	"time"

	"github.com/okian/jobchanges/internal/domain/model"
	"github.com/okian/jobchanges/internal/domain/pipeline"
	"github.com/okian/jobchanges/internal/domain/ranking"
	"github.com/okian/jobchanges/internal/domain/series"
	"github.com/okian/jobchanges/internal/domain/week"
)

// MessageNoData annotates an empty ranking.
const MessageNoData = "No data available"

// MessageNoDataForYear annotates an empty weekly series.
func MessageNoDataForYear(year int) string {
	return fmt.Sprintf("No data available for %d", year)
}

// NoticeSourceMissing is the banner shown when the data file is absent.
func NoticeSourceMissing(path string) string {
	return fmt.Sprintf("Data file not found: %s", path)
}

// Report is one pipeline run over one snapshot. It is shared between
// callers and must be treated as read-only.
type Report struct {
	RunID       string
	SnapshotID  string
	Version     uint64
	Source      model.Source
	GeneratedAt time.Time
	pipeline.Report
}

// Meta describes where a report came from.
type Meta struct {
	RunID         string       `json:"run_id"`
	SnapshotID    string       `json:"snapshot_id"`
	Version       uint64       `json:"version"`
	GeneratedAt   time.Time    `json:"generated_at"`
	Source        model.Source `json:"source"`
	SourceMissing bool         `json:"source_missing"`
	Notice        string       `json:"notice,omitempty"`
}

// RankingView is the wire form of a ranking.
type RankingView struct {
	Field   string          `json:"field"`
	TopN    int             `json:"top_n"`
	Entries []ranking.Entry `json:"entries"`
	Empty   bool            `json:"empty"`
	Message string          `json:"message,omitempty"`
}

// PointView is one weekly series point with the week as YYYY-MM-DD.
type PointView struct {
	Week  string `json:"week"`
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// SeriesView is the wire form of the weekly series.
type SeriesView struct {
	Year    int         `json:"year"`
	Types   []string    `json:"types"`
	Points  []PointView `json:"points"`
	Empty   bool        `json:"empty"`
	Message string      `json:"message,omitempty"`
}

// ReportView is the wire form of a full report.
type ReportView struct {
	Meta
	Companies RankingView    `json:"companies"`
	Functions RankingView    `json:"functions"`
	Weekly    SeriesView     `json:"weekly"`
	Stats     pipeline.Stats `json:"stats"`
}

// Meta returns the provenance of r.
func (r *Report) Meta() Meta {
	m := Meta{
		RunID:         r.RunID,
		SnapshotID:    r.SnapshotID,
		Version:       r.Version,
		GeneratedAt:   r.GeneratedAt,
		Source:        r.Source,
		SourceMissing: r.Source.Missing,
	}
	if r.Source.Missing {
		m.Notice = NoticeSourceMissing(r.Source.Path)
	}
	return m
}

// View renders r for the wire.
func (r *Report) View() ReportView {
	return ReportView{
		Meta:      r.Meta(),
		Companies: NewRankingView(ranking.FieldCompany, r.Params.TopN, r.Companies),
		Functions: NewRankingView(ranking.FieldFunction, r.Params.TopN, r.Functions),
		Weekly:    NewSeriesView(r.Weekly),
		Stats:     r.Stats,
	}
}

// NewRankingView renders a ranking result.
func NewRankingView(field ranking.Field, topN int, res ranking.Result) RankingView {
	v := RankingView{
		Field:   field.String(),
		TopN:    topN,
		Entries: res.Entries,
		Empty:   res.Empty,
	}
	if v.Entries == nil {
		v.Entries = []ranking.Entry{}
	}
	if res.Empty {
		v.Message = MessageNoData
	}
	return v
}

// NewSeriesView renders a weekly series.
func NewSeriesView(s series.Series) SeriesView {
	v := SeriesView{
		Year:   s.Year,
		Types:  s.Types,
		Points: make([]PointView, len(s.Points)),
		Empty:  s.Empty,
	}
	if v.Types == nil {
		v.Types = []string{}
	}
	for i, p := range s.Points {
		v.Points[i] = PointView{Week: week.Format(p.WeekStart), Type: p.Type, Count: p.Count}
	}
	if s.Empty {
		v.Message = MessageNoDataForYear(s.Year)
	}
	return v
}

// ServiceStats is the operational state reported by GET /stats.
type ServiceStats struct {
	Started         bool           `json:"started"`
	SnapshotID      string         `json:"snapshot_id,omitempty"`
	Version         uint64         `json:"version"`
	LoadedAt        time.Time      `json:"loaded_at"`
	Source          model.Source   `json:"source"`
	MissingColumns  []string       `json:"missing_columns"`
	Records         pipeline.Stats `json:"records"`
	CacheEntries    int            `json:"cache_entries"`
	Reloads         uint64         `json:"reloads"`
	ReloadFailures  uint64         `json:"reload_failures"`
	LastReloadError string         `json:"last_reload_error,omitempty"`
	PendingReloads  int            `json:"pending_reloads"`
}

// ReloadAck acknowledges an accepted reload request.
type ReloadAck struct {
	Status    string `json:"status"`
	RequestID string `json:"request_id"`
	Coalesced bool   `json:"coalesced"`
}
