package api

import (
	"net/http"

	"github.com/okian/jobchanges/internal/domain/model"
)

// ReloadHandler accepts reload requests.
type ReloadHandler struct {
	deps ReloadDependencies
}

// NewReloadHandler creates a new reload handler.
func NewReloadHandler(deps ReloadDependencies) *ReloadHandler {
	return &ReloadHandler{deps: deps}
}

// HandleReload handles POST /reload requests. The reload runs
// asynchronously; requests arriving while one is pending are coalesced.
func (h *ReloadHandler) HandleReload(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_reload"
	if !allowMethod(w, r, op, http.MethodPost) {
		return
	}
	ack, err := h.deps.RequestReload(r.Context(), model.ReloadAPI)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusAccepted, ack)
}
