package pause_session

import (
	"context"

	"github.com/m04kA/BSH-SessionService/internal/service/sessions/models"
)

type SessionService interface {
	Pause(ctx context.Context, sessionID int64) (*models.SessionResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
