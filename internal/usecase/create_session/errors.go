package create_session

import "errors"

var (
	// ErrAppointmentNotFound возвращается, когда запись не найдена
	ErrAppointmentNotFound = errors.New("create_session: appointment not found")

	// ErrServiceNotFound возвращается, когда услуга не найдена
	ErrServiceNotFound = errors.New("create_session: service not found")

	// ErrSessionAlreadyExists возвращается, когда у записи уже есть
	// незавершенная сессия
	ErrSessionAlreadyExists = errors.New("create_session: appointment already has an unfinished session")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_session: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_session: internal error")
)
