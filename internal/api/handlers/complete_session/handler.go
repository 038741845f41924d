package complete_session

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/BSH-SessionService/internal/api/handlers"
	"github.com/m04kA/BSH-SessionService/internal/service/sessions"
)

const (
	msgInvalidSessionID  = "некорректный ID сессии"
	msgNotFound          = "сессия не найдена"
	msgInvalidTransition = "сессию нельзя завершить в текущем статусе: сначала возобновите её"
)

type Handler struct {
	service SessionService
	logger  Logger
}

func NewHandler(service SessionService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle POST /api/v1/service-sessions/{sessionId}/complete
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	// Извлекаем sessionId из URL
	vars := mux.Vars(r)
	sessionIDStr := vars["sessionId"]

	sessionID, err := strconv.ParseInt(sessionIDStr, 10, 64)
	if err != nil {
		h.logger.Warn("POST /service-sessions/{id}/complete - Invalid session ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidSessionID)
		return
	}

	session, err := h.service.Complete(r.Context(), sessionID)
	if err != nil {
		switch {
		case errors.Is(err, sessions.ErrSessionNotFound):
			h.logger.Warn("POST /service-sessions/{id}/complete - Session not found: session_id=%d", sessionID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, sessions.ErrInvalidTransition):
			h.logger.Warn("POST /service-sessions/{id}/complete - Invalid transition: session_id=%d", sessionID)
			handlers.RespondConflict(w, msgInvalidTransition)

		default:
			h.logger.Error("POST /service-sessions/{id}/complete - Failed to complete session: session_id=%d, error=%v",
				sessionID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /service-sessions/{id}/complete - Session completed successfully: session_id=%d, total=%dmin",
		sessionID, session.TotalDurationMinutes)
	handlers.RespondJSON(w, http.StatusOK, session)
}
