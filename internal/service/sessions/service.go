package sessions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/BSH-SessionService/internal/domain"
	"github.com/m04kA/BSH-SessionService/internal/infra/memstore"
	"github.com/m04kA/BSH-SessionService/internal/service/sessions/models"
)

// completeNotifyTimeout таймаут уведомления AppointmentService о завершении
const completeNotifyTimeout = 5 * time.Second

// Service планировщик сессий услуг.
// Каждая публичная операция выполняется как одна критическая секция
// под мьютексом барбера: перечитывание сессии, валидация перехода,
// проверка guard'а ёмкости, запись в БД и фиксация в in-memory
// хранилище неразделимы. Поэтому два конкурентных вызова не могут
// оба увидеть paused и оба успешно выполнить resume.
type Service struct {
	store             SessionStore
	guard             CapacityGuard
	sessionRepo       SessionRepository
	appointmentClient AppointmentServiceClient
	timeProvider      TimeProvider
	logger            Logger
}

// NewService создает новый экземпляр планировщика сессий
func NewService(
	store SessionStore,
	guard CapacityGuard,
	sessionRepo SessionRepository,
	appointmentClient AppointmentServiceClient,
	logger Logger,
) *Service {
	return &Service{
		store:             store,
		guard:             guard,
		sessionRepo:       sessionRepo,
		appointmentClient: appointmentClient,
		timeProvider:      &RealTimeProvider{},
		logger:            logger,
	}
}

// Start запускает сессию (not_started -> in_progress)
// Требует, чтобы у барбера не было другой активной сессии
func (s *Service) Start(ctx context.Context, sessionID int64) (*models.SessionResponse, error) {
	s.logger.Info("Start: starting session id=%d", sessionID)

	updated, err := s.transition(ctx, sessionID, "Start", func(cur *domain.ServiceSession, now time.Time) error {
		if cur.Status != domain.StatusNotStarted {
			return fmt.Errorf("%w: start from %s", ErrInvalidTransition, cur.Status)
		}
		if !s.guard.Allow(cur.BarberID, cur.ID) {
			return ErrBarberBusy
		}
		return convertDomainError(cur.Start(now))
	})
	if err != nil {
		s.logOpError("Start", sessionID, err)
		return nil, err
	}

	s.logger.Info("Start: session id=%d started, barber=%d", sessionID, updated.BarberID)
	return models.FromDomainSession(updated), nil
}

// Pause приостанавливает активную сессию (in_progress/resumed -> paused)
// Ёмкость барбера освобождается: пока состав делает свое дело,
// барбер может начать сессию другого клиента
func (s *Service) Pause(ctx context.Context, sessionID int64) (*models.SessionResponse, error) {
	s.logger.Info("Pause: pausing session id=%d", sessionID)

	updated, err := s.transition(ctx, sessionID, "Pause", func(cur *domain.ServiceSession, now time.Time) error {
		return convertDomainError(cur.Pause(now))
	})
	if err != nil {
		s.logOpError("Pause", sessionID, err)
		return nil, err
	}

	s.logger.Info("Pause: session id=%d paused, active=%dmin", sessionID, updated.ActiveDurationMinutes)
	return models.FromDomainSession(updated), nil
}

// Resume возобновляет приостановленную сессию (paused -> resumed)
// Требует, чтобы у барбера не было другой активной сессии: барбер мог
// начать сессию другого клиента, пока эта была на паузе
func (s *Service) Resume(ctx context.Context, sessionID int64) (*models.SessionResponse, error) {
	s.logger.Info("Resume: resuming session id=%d", sessionID)

	updated, err := s.transition(ctx, sessionID, "Resume", func(cur *domain.ServiceSession, now time.Time) error {
		if !cur.CanBeResumed() {
			return fmt.Errorf("%w: resume from %s", ErrInvalidTransition, cur.Status)
		}
		if !s.guard.Allow(cur.BarberID, cur.ID) {
			return ErrBarberBusy
		}
		return convertDomainError(cur.Resume(now))
	})
	if err != nil {
		s.logOpError("Resume", sessionID, err)
		return nil, err
	}

	s.logger.Info("Resume: session id=%d resumed, pause=%dmin", sessionID, updated.PauseDurationMinutes)
	return models.FromDomainSession(updated), nil
}

// Complete завершает активную сессию (in_progress/resumed -> completed)
// После фиксации перехода уведомляет AppointmentService, что запись
// выполнена; уведомление отправляется вне блокировки и не влияет
// на результат операции
func (s *Service) Complete(ctx context.Context, sessionID int64) (*models.SessionResponse, error) {
	s.logger.Info("Complete: completing session id=%d", sessionID)

	updated, err := s.transition(ctx, sessionID, "Complete", func(cur *domain.ServiceSession, now time.Time) error {
		return convertDomainError(cur.Complete(now))
	})
	if err != nil {
		s.logOpError("Complete", sessionID, err)
		return nil, err
	}

	s.logger.Info("Complete: session id=%d completed, active=%dmin, pause=%dmin, total=%dmin",
		sessionID, updated.ActiveDurationMinutes, updated.PauseDurationMinutes, updated.TotalDurationMinutes())

	s.notifyAppointmentCompleted(updated.AppointmentID, sessionID)

	return models.FromDomainSession(updated), nil
}

// Cancel отменяет сессию из любого нетерминального статуса
func (s *Service) Cancel(ctx context.Context, sessionID int64) (*models.SessionResponse, error) {
	s.logger.Info("Cancel: cancelling session id=%d", sessionID)

	updated, err := s.transition(ctx, sessionID, "Cancel", func(cur *domain.ServiceSession, now time.Time) error {
		return convertDomainError(cur.Cancel(now))
	})
	if err != nil {
		s.logOpError("Cancel", sessionID, err)
		return nil, err
	}

	s.logger.Info("Cancel: session id=%d cancelled", sessionID)
	return models.FromDomainSession(updated), nil
}

// GetByID возвращает сессию по ID из авторитетного хранилища
func (s *Service) GetByID(ctx context.Context, sessionID int64) (*models.SessionResponse, error) {
	sess, err := s.store.Get(sessionID)
	if err != nil {
		if errors.Is(err, memstore.ErrSessionNotFound) {
			s.logger.Warn("GetByID: session id=%d not found", sessionID)
			return nil, ErrSessionNotFound
		}
		s.logger.Error("GetByID: store error for session id=%d: %v", sessionID, err)
		return nil, fmt.Errorf("%w: GetByID - store error: %v", ErrInternal, err)
	}

	return models.FromDomainSession(sess), nil
}

// GetBarberSessions возвращает незавершенные сессии барбера
// (включая приостановленные)
func (s *Service) GetBarberSessions(ctx context.Context, barberID int64) (*models.SessionListResponse, error) {
	sessions := s.store.UnfinishedSessionsFor(barberID)
	s.logger.Info("GetBarberSessions: fetched %d unfinished sessions for barber=%d", len(sessions), barberID)
	return models.FromDomainSessionList(sessions), nil
}

// transition выполняет переход как одну критическую секцию под
// мьютексом барбера сессии. Запись в БД подтверждается до фиксации
// в памяти: при ошибке записи in-memory состояние не меняется и
// вызывающему возвращается ErrPersistence.
func (s *Service) transition(
	ctx context.Context,
	sessionID int64,
	op string,
	apply func(cur *domain.ServiceSession, now time.Time) error,
) (*domain.ServiceSession, error) {
	sess, err := s.store.Get(sessionID)
	if err != nil {
		if errors.Is(err, memstore.ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("%w: %s - store error: %v", ErrInternal, op, err)
	}

	var updated *domain.ServiceSession

	err = s.store.WithBarberLock(sess.BarberID, func() error {
		// Перечитываем сессию под блокировкой: между внешним чтением
		// и захватом мьютекса её мог изменить другой вызов
		cur, err := s.store.Get(sessionID)
		if err != nil {
			if errors.Is(err, memstore.ErrSessionNotFound) {
				return ErrSessionNotFound
			}
			return fmt.Errorf("%w: %s - store error: %v", ErrInternal, op, err)
		}

		now := s.timeProvider.Now()
		if err := apply(cur, now); err != nil {
			return err
		}

		if err := s.sessionRepo.Update(ctx, cur); err != nil {
			return fmt.Errorf("%w: %s - repository error: %v", ErrPersistence, op, err)
		}

		s.store.Put(cur)
		updated = cur
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// notifyAppointmentCompleted уведомляет AppointmentService о завершении
// сессии (fire-and-forget). Недоступность AppointmentService не должна
// ломать уже зафиксированный переход, поэтому ошибка только логируется.
func (s *Service) notifyAppointmentCompleted(appointmentID, sessionID int64) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), completeNotifyTimeout)
		defer cancel()

		if err := s.appointmentClient.CompleteAppointment(ctx, appointmentID); err != nil {
			s.logger.Error("Complete: failed to notify appointment=%d about session=%d completion: %v",
				appointmentID, sessionID, err)
			return
		}
		s.logger.Info("Complete: appointment=%d marked completed after session=%d", appointmentID, sessionID)
	}()
}

func (s *Service) logOpError(op string, sessionID int64, err error) {
	switch {
	case errors.Is(err, ErrSessionNotFound),
		errors.Is(err, ErrInvalidTransition),
		errors.Is(err, ErrPauseNotSupported),
		errors.Is(err, ErrBarberBusy):
		s.logger.Warn("%s: session id=%d rejected: %v", op, sessionID, err)
	default:
		s.logger.Error("%s: session id=%d failed: %v", op, sessionID, err)
	}
}

// convertDomainError конвертирует ошибки доменной модели в ошибки сервиса
func convertDomainError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrPauseNotSupported):
		return fmt.Errorf("%w: %v", ErrPauseNotSupported, err)
	case errors.Is(err, domain.ErrInvalidTransition):
		return fmt.Errorf("%w: %v", ErrInvalidTransition, err)
	default:
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}
}
