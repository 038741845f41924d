package get_barber_sessions

import (
	"context"

	"github.com/m04kA/BSH-SessionService/internal/service/sessions/models"
)

type SessionService interface {
	GetBarberSessions(ctx context.Context, barberID int64) (*models.SessionListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
