package api

import (
	"net/http"

	"github.com/okian/jobchanges/internal/domain/ranking"
	"github.com/okian/jobchanges/internal/domain/types"
)

// rankingResponse is one ranking with its provenance.
type rankingResponse struct {
	types.Meta
	types.RankingView
}

// RankingsHandler serves the departure rankings.
type RankingsHandler struct {
	deps ReportDependencies
}

// NewRankingsHandler creates a new rankings handler.
func NewRankingsHandler(deps ReportDependencies) *RankingsHandler {
	return &RankingsHandler{deps: deps}
}

// HandleCompanies handles GET /rankings/companies?top=N requests.
func (h *RankingsHandler) HandleCompanies(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, "api.get_rankings_companies", ranking.FieldCompany)
}

// HandleFunctions handles GET /rankings/functions?top=N requests.
func (h *RankingsHandler) HandleFunctions(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, "api.get_rankings_functions", ranking.FieldFunction)
}

func (h *RankingsHandler) handle(w http.ResponseWriter, r *http.Request, op string, field ranking.Field) {
	if !allowMethod(w, r, op, http.MethodGet) {
		return
	}
	top, _, err := queryInt(r, paramTop, 1, h.deps.MaxTopN())
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	p := h.deps.Defaults()
	if top > 0 {
		p.TopN = top
	}
	rep, err := h.deps.Report(r.Context(), p)
	if err != nil {
		writeFailure(w, op, err)
		return
	}

	res := rep.Companies
	if field == ranking.FieldFunction {
		res = rep.Functions
	}
	writeJSON(w, http.StatusOK, rankingResponse{
		Meta:        rep.Meta(),
		RankingView: types.NewRankingView(field, rep.Params.TopN, res),
	})
}
