package get_barber_sessions

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/BSH-SessionService/internal/api/handlers"
)

const (
	msgInvalidBarberID = "некорректный ID барбера"
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

// Handle GET /api/v1/barbers/{barberId}/sessions
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	// Извлекаем barberId из URL
	vars := mux.Vars(r)
	barberIDStr := vars["barberId"]

	barberID, err := strconv.ParseInt(barberIDStr, 10, 64)
	if err != nil {
		h.logger.Warn("GET /barbers/{id}/sessions - Invalid barber ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBarberID)
		return
	}

	sessionList, err := h.service.GetBarberSessions(r.Context(), barberID)
	if err != nil {
		h.logger.Error("GET /barbers/{id}/sessions - Failed to get sessions: barber_id=%d, error=%v",
			barberID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /barbers/{id}/sessions - Retrieved %d sessions: barber_id=%d",
		len(sessionList.Sessions), barberID)
	handlers.RespondJSON(w, http.StatusOK, sessionList)
}
