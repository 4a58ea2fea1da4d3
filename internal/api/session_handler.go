package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/vocab-srs/vocab-api/internal/api/shared"
	"github.com/vocab-srs/vocab-api/internal/service/session"
)

// SessionHandler handles daily-session HTTP requests
type SessionHandler struct {
	composer *session.Composer
}

// NewSessionHandler creates a new SessionHandler
func NewSessionHandler(composer *session.Composer) *SessionHandler {
	return &SessionHandler{composer: composer}
}

// GetTodaySession handles GET /api/session/today requests. The optional
// limit query parameter bounds the review list (1..200, default 30).
func (h *SessionHandler) GetTodaySession(w http.ResponseWriter, r *http.Request) {
	limit := session.DefaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > session.MaxLimit {
			shared.RespondWithError(w, r, http.StatusBadRequest, "limit must be between 1 and 200")
			return
		}
		limit = parsed
	}

	result, err := h.composer.BuildToday(r.Context(), limit, time.Now())
	if err != nil {
		status, message := mapError(err)
		shared.RespondWithErrorAndLog(w, r, status, message, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, result)
}
