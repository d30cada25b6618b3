package api

import (
	"net/http"

	"github.com/okian/jobchanges/internal/domain/types"
)

// seriesResponse is the weekly series with its provenance.
type seriesResponse struct {
	types.Meta
	types.SeriesView
}

// SeriesHandler serves the weekly arrivals-vs-departures series.
type SeriesHandler struct {
	deps ReportDependencies
}

// NewSeriesHandler creates a new series handler.
func NewSeriesHandler(deps ReportDependencies) *SeriesHandler {
	return &SeriesHandler{deps: deps}
}

// HandleWeekly handles GET /series/weekly?year=Y requests.
func (h *SeriesHandler) HandleWeekly(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_series_weekly"
	if !allowMethod(w, r, op, http.MethodGet) {
		return
	}
	year, _, err := queryInt(r, paramYear, 1, 9999)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	p := h.deps.Defaults()
	if year > 0 {
		p.TargetYear = year
	}
	rep, err := h.deps.Report(r.Context(), p)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, seriesResponse{
		Meta:       rep.Meta(),
		SeriesView: types.NewSeriesView(rep.Weekly),
	})
}
