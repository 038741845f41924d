package create_session

import (
	createSessionUC "github.com/m04kA/BSH-SessionService/internal/usecase/create_session"
)

// CreateSessionRequest HTTP request model
type CreateSessionRequest struct {
	AppointmentID int64   `json:"appointmentId"`
	ServiceID     int64   `json:"serviceId"`
	Notes         *string `json:"notes,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP request в модель usecase
func (r *CreateSessionRequest) ToUseCaseRequest() *createSessionUC.Request {
	return &createSessionUC.Request{
		AppointmentID: r.AppointmentID,
		ServiceID:     r.ServiceID,
		Notes:         r.Notes,
	}
}
