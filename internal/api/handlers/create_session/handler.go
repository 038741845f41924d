package create_session

import (
	"errors"
	"net/http"

	"github.com/m04kA/BSH-SessionService/internal/api/handlers"
	createSessionUC "github.com/m04kA/BSH-SessionService/internal/usecase/create_session"
)

const (
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgAppointmentNotFound  = "запись не найдена"
	msgServiceNotFound      = "услуга не найдена"
	msgSessionAlreadyExists = "у записи уже есть незавершенная сессия"
	msgInvalidInput         = "некорректные входные данные"
)

type Handler struct {
	useCase CreateSessionUseCase
	logger  Logger
}

func NewHandler(useCase CreateSessionUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/service-sessions
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	// Декодируем body
	var req CreateSessionRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /service-sessions - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	session, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest())
	if err != nil {
		switch {
		case errors.Is(err, createSessionUC.ErrInvalidInput):
			h.logger.Warn("POST /service-sessions - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, createSessionUC.ErrAppointmentNotFound):
			h.logger.Warn("POST /service-sessions - Appointment not found: appointment_id=%d", req.AppointmentID)
			handlers.RespondNotFound(w, msgAppointmentNotFound)

		case errors.Is(err, createSessionUC.ErrServiceNotFound):
			h.logger.Warn("POST /service-sessions - Service not found: service_id=%d", req.ServiceID)
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, createSessionUC.ErrSessionAlreadyExists):
			h.logger.Warn("POST /service-sessions - Session already exists: appointment_id=%d", req.AppointmentID)
			handlers.RespondConflict(w, msgSessionAlreadyExists)

		default:
			h.logger.Error("POST /service-sessions - Failed to create session: appointment_id=%d, error=%v",
				req.AppointmentID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /service-sessions - Session created successfully: session_id=%d, appointment_id=%d",
		session.ID, req.AppointmentID)
	handlers.RespondJSON(w, http.StatusCreated, session)
}
