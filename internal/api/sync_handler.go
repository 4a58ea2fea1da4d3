package api

import (
	"net/http"

	"github.com/vocab-srs/vocab-api/internal/api/shared"
	"github.com/vocab-srs/vocab-api/internal/service/syncmerge"
)

// SyncHandler handles export/import HTTP requests
type SyncHandler struct {
	engine *syncmerge.Engine
}

// NewSyncHandler creates a new SyncHandler
func NewSyncHandler(engine *syncmerge.Engine) *SyncHandler {
	return &SyncHandler{engine: engine}
}

// ExportSync handles GET /api/sync/export requests
func (h *SyncHandler) ExportSync(w http.ResponseWriter, r *http.Request) {
	payload, err := h.engine.Export(r.Context())
	if err != nil {
		status, message := mapError(err)
		shared.RespondWithErrorAndLog(w, r, status, message, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, payload)
}

// ImportSync handles POST /api/sync/import requests
func (h *SyncHandler) ImportSync(w http.ResponseWriter, r *http.Request) {
	var payload syncmerge.Payload
	if err := shared.DecodeJSON(r, &payload); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	report, err := h.engine.Import(r.Context(), &payload)
	if err != nil {
		status, message := mapError(err)
		shared.RespondWithErrorAndLog(w, r, status, message, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, report)
}
