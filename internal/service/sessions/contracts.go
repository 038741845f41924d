package sessions

import (
	"context"
	"time"

	"github.com/m04kA/BSH-SessionService/internal/domain"
)

// SessionStore интерфейс авторитетного in-memory хранилища сессий
// Всё изменяемое состояние принадлежит хранилищу; Put вызывает только
// планировщик внутри защищенной операции
type SessionStore interface {
	Get(id int64) (*domain.ServiceSession, error)
	Put(sess *domain.ServiceSession)
	UnfinishedSessionsFor(barberID int64) []*domain.ServiceSession
	WithBarberLock(barberID int64, fn func() error) error
}

// CapacityGuard интерфейс проверки занятости барбера
type CapacityGuard interface {
	Allow(barberID int64, excludingSessionID int64) bool
}

// SessionRepository интерфейс persistence-слоя сессий
// Запись подтверждается до применения перехода в памяти
type SessionRepository interface {
	Update(ctx context.Context, sess *domain.ServiceSession) error
}

// AppointmentServiceClient интерфейс клиента для AppointmentService
type AppointmentServiceClient interface {
	CompleteAppointment(ctx context.Context, appointmentID int64) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
