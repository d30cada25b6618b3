package api

import (
	"net/http"
)

// ReportHandler serves all three outputs of one run.
type ReportHandler struct {
	deps ReportDependencies
}

// NewReportHandler creates a new report handler.
func NewReportHandler(deps ReportDependencies) *ReportHandler {
	return &ReportHandler{deps: deps}
}

// HandleReport handles GET /report?top=N&year=Y requests.
func (h *ReportHandler) HandleReport(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_report"
	if !allowMethod(w, r, op, http.MethodGet) {
		return
	}
	p, err := parseParams(r, h.deps.MaxTopN())
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	rep, err := h.deps.Report(r.Context(), p)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, rep.View())
}
