package domain

import "errors"

var (
	// ErrInvalidTransition возвращается, когда запрошенный переход
	// не определен для текущего статуса сессии
	ErrInvalidTransition = errors.New("domain: invalid session transition")

	// ErrPauseNotSupported возвращается при попытке паузы сессии,
	// услуга которой не поддерживает паузу
	ErrPauseNotSupported = errors.New("domain: pause is not supported by this service")

	// ErrUnknownStatus возвращается при неизвестном значении статуса на границе
	ErrUnknownStatus = errors.New("domain: unknown session status")
)
