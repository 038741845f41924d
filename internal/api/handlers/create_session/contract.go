package create_session

import (
	"context"

	"github.com/m04kA/BSH-SessionService/internal/service/sessions/models"
	createSessionUC "github.com/m04kA/BSH-SessionService/internal/usecase/create_session"
)

type CreateSessionUseCase interface {
	Execute(ctx context.Context, req *createSessionUC.Request) (*models.SessionResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
