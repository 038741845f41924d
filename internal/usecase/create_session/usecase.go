package create_session

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/BSH-SessionService/internal/domain"
	sessionRepo "github.com/m04kA/BSH-SessionService/internal/infra/storage/session"
	appointmentClient "github.com/m04kA/BSH-SessionService/internal/integrations/appointmentservice"
	"github.com/m04kA/BSH-SessionService/internal/service/sessions/models"
)

// UseCase use case создания сессии услуги при check-in записи
type UseCase struct {
	sessionRepo       SessionRepository
	store             SessionStore
	appointmentClient AppointmentServiceClient
	txManager         TransactionManager
	logger            Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	sessionRepo SessionRepository,
	store SessionStore,
	appointmentClient AppointmentServiceClient,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		sessionRepo:       sessionRepo,
		store:             store,
		appointmentClient: appointmentClient,
		txManager:         txManager,
		logger:            logger,
	}
}

// Execute выполняет use case создания сессии
// Проверка "у записи нет другой незавершенной сессии" и вставка
// выполняются в сериализуемой транзакции для защиты от гонок
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*models.SessionResponse, error) {
	uc.logger.Info("CreateSession: appointment=%d, service=%d", req.AppointmentID, req.ServiceID)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateSession: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем запись клиента
	appointment, err := uc.appointmentClient.GetAppointment(ctx, req.AppointmentID)
	if err != nil {
		if errors.Is(err, appointmentClient.ErrAppointmentNotFound) {
			uc.logger.Warn("CreateSession: appointment id=%d not found", req.AppointmentID)
			return nil, ErrAppointmentNotFound
		}
		uc.logger.Error("CreateSession: failed to get appointment id=%d: %v", req.AppointmentID, err)
		return nil, fmt.Errorf("%w: failed to get appointment: %v", ErrInternal, err)
	}

	// 3. Получаем определение услуги: из него фиксируются has_pause
	// и ожидаемое время паузы
	service, err := uc.appointmentClient.GetService(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, appointmentClient.ErrServiceNotFound) {
			uc.logger.Warn("CreateSession: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("CreateSession: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}

	sess := &domain.ServiceSession{
		AppointmentID:        appointment.ID,
		ServiceID:            service.ID,
		BarberID:             appointment.BarberID,
		ClientID:             appointment.ClientID,
		Status:               domain.StatusNotStarted,
		HasPause:             service.HasPause,
		ExpectedPauseMinutes: service.PauseDurationMinutes,
		Notes:                req.Notes,
	}

	// 4. Проверяем дубликат и вставляем в одной сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		existing, err := uc.sessionRepo.GetUnfinishedByAppointment(txCtx, req.AppointmentID)
		if err != nil && !errors.Is(err, sessionRepo.ErrSessionNotFound) {
			uc.logger.Error("CreateSession: failed to check existing session for appointment=%d: %v",
				req.AppointmentID, err)
			return fmt.Errorf("%w: failed to check existing session: %v", ErrInternal, err)
		}
		if existing != nil {
			uc.logger.Warn("CreateSession: appointment=%d already has unfinished session id=%d",
				req.AppointmentID, existing.ID)
			return ErrSessionAlreadyExists
		}

		if _, err := uc.sessionRepo.Create(txCtx, sess); err != nil {
			uc.logger.Error("CreateSession: failed to create session for appointment=%d: %v",
				req.AppointmentID, err)
			return fmt.Errorf("%w: failed to create session: %v", ErrInternal, err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	// 5. Фиксируем созданную сессию в авторитетном in-memory хранилище
	uc.store.Put(sess)

	uc.logger.Info("CreateSession: created session id=%d for appointment=%d, barber=%d, has_pause=%t",
		sess.ID, sess.AppointmentID, sess.BarberID, sess.HasPause)

	return models.FromDomainSession(sess), nil
}
