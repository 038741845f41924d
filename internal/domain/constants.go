package domain

// Business validation constants
const (
	MaxNotesLength          = 500
	MaxExpectedPauseMinutes = 480 // 8 hours
)

// ActiveStatuses статусы, в которых сессия занимает барбера
// Используется guard'ом ёмкости и вторичным индексом хранилища
var ActiveStatuses = []SessionStatus{
	StatusInProgress,
	StatusResumed,
}

// UnfinishedStatuses статусы незавершенных сессий
// Используется для прогрева in-memory хранилища и проверки дубликатов
var UnfinishedStatuses = []SessionStatus{
	StatusNotStarted,
	StatusInProgress,
	StatusPaused,
	StatusResumed,
}

// TerminalStatuses финальные статусы: сессия неизменяема
var TerminalStatuses = []SessionStatus{
	StatusCompleted,
	StatusCancelled,
}

// ParseSessionStatus валидирует строковое значение статуса на границе
// Неизвестные значения отклоняются, а не пробрасываются дальше
func ParseSessionStatus(s string) (SessionStatus, error) {
	switch SessionStatus(s) {
	case StatusNotStarted, StatusInProgress, StatusPaused, StatusResumed, StatusCompleted, StatusCancelled:
		return SessionStatus(s), nil
	default:
		return "", ErrUnknownStatus
	}
}
