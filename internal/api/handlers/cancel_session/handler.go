package cancel_session

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
	msgInvalidTransition = "сессия уже завершена или отменена"
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

// Handle POST /api/v1/service-sessions/{sessionId}/cancel
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	// Извлекаем sessionId из URL
	vars := mux.Vars(r)
	sessionIDStr := vars["sessionId"]

	sessionID, err := strconv.ParseInt(sessionIDStr, 10, 64)
	if err != nil {
		h.logger.Warn("POST /service-sessions/{id}/cancel - Invalid session ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidSessionID)
		return
	}

	session, err := h.service.Cancel(r.Context(), sessionID)
	if err != nil {
		switch {
		case errors.Is(err, sessions.ErrSessionNotFound):
			h.logger.Warn("POST /service-sessions/{id}/cancel - Session not found: session_id=%d", sessionID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, sessions.ErrInvalidTransition):
			h.logger.Warn("POST /service-sessions/{id}/cancel - Invalid transition: session_id=%d", sessionID)
			handlers.RespondConflict(w, msgInvalidTransition)

		default:
			h.logger.Error("POST /service-sessions/{id}/cancel - Failed to cancel session: session_id=%d, error=%v",
				sessionID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /service-sessions/{id}/cancel - Session cancelled successfully: session_id=%d", sessionID)
	handlers.RespondJSON(w, http.StatusOK, session)
}
