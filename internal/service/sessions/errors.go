package sessions

import "errors"

var (
	// ErrSessionNotFound возвращается, когда сессия не найдена
	ErrSessionNotFound = errors.New("sessions: session not found")

	// ErrInvalidTransition возвращается, когда переход не определен
	// для текущего статуса сессии
	ErrInvalidTransition = errors.New("sessions: invalid transition")

	// ErrPauseNotSupported возвращается при попытке паузы сессии,
	// услуга которой не поддерживает паузу
	ErrPauseNotSupported = errors.New("sessions: pause is not supported by this service")

	// ErrBarberBusy возвращается, когда у барбера уже есть активная сессия
	ErrBarberBusy = errors.New("sessions: barber already has an active session")

	// ErrPersistence возвращается, когда запись в БД не подтвердилась
	// In-memory состояние при этом остается без изменений
	ErrPersistence = errors.New("sessions: failed to persist session")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("sessions: internal error")
)
