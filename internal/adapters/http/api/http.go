// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/jobchanges/internal/adapters/mq/queue"
	service "github.com/okian/jobchanges/internal/app"
	"github.com/okian/jobchanges/internal/domain/model"
	"github.com/okian/jobchanges/internal/domain/pipeline"
	"github.com/okian/jobchanges/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	ReportDependencies
	ReloadDependencies
	StatsProvider
}

// ReportDependencies compute reports over the current snapshot.
type ReportDependencies interface {
	Report(ctx context.Context, p pipeline.Params) (*types.Report, error)
	Defaults() pipeline.Params
	MaxTopN() int
}

// ReloadDependencies accept asynchronous reload requests.
type ReloadDependencies interface {
	RequestReload(ctx context.Context, reason model.ReloadReason) (types.ReloadAck, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	rankingsHandler *RankingsHandler
	seriesHandler   *SeriesHandler
	reportHandler   *ReportHandler
	reloadHandler   *ReloadHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(deps),
		rankingsHandler: NewRankingsHandler(deps),
		seriesHandler:   NewSeriesHandler(deps),
		reportHandler:   NewReportHandler(deps),
		reloadHandler:   NewReloadHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/rankings/companies", MetricsMiddleware(s.rankingsHandler.HandleCompanies, "rankings_companies"))
	mux.HandleFunc("/rankings/functions", MetricsMiddleware(s.rankingsHandler.HandleFunctions, "rankings_functions"))
	mux.HandleFunc("/series/weekly", MetricsMiddleware(s.seriesHandler.HandleWeekly, "series_weekly"))
	mux.HandleFunc("/report", MetricsMiddleware(s.reportHandler.HandleReport, "report"))
	mux.HandleFunc("/reload", MetricsMiddleware(s.reloadHandler.HandleReload, "reload"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure maps upstream errors to a status and error code.
func writeFailure(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrBadRequest), errors.Is(err, service.ErrInvalidParams):
		writeError(w, http.StatusBadRequest, "bad_request", Wrap(op, err))
	case errors.Is(err, service.ErrNotStarted), errors.Is(err, queue.ErrClosed):
		writeError(w, http.StatusServiceUnavailable, "unavailable", WrapKind(op, ErrUnavailable, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	}
}

// allowMethod writes 405 and returns false unless r uses method.
func allowMethod(w http.ResponseWriter, r *http.Request, op, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", NewKind(op, ErrMethodNotAllowed))
	return false
}
