package create_session

import (
	"context"

	"github.com/m04kA/BSH-SessionService/internal/domain"
	"github.com/m04kA/BSH-SessionService/internal/integrations/appointmentservice"
)

// SessionRepository интерфейс репозитория сессий
type SessionRepository interface {
	Create(ctx context.Context, sess *domain.ServiceSession) (*domain.ServiceSession, error)
	GetUnfinishedByAppointment(ctx context.Context, appointmentID int64) (*domain.ServiceSession, error)
}

// SessionStore интерфейс in-memory хранилища сессий
// Созданная сессия сразу попадает в авторитетное состояние
type SessionStore interface {
	Put(sess *domain.ServiceSession)
}

// AppointmentServiceClient интерфейс клиента для AppointmentService
type AppointmentServiceClient interface {
	GetAppointment(ctx context.Context, appointmentID int64) (*appointmentservice.Appointment, error)
	GetService(ctx context.Context, serviceID int64) (*appointmentservice.Service, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
