package domain

import (
	"fmt"
	"time"
)

// SessionStatus represents the status of a service session
type SessionStatus string

const (
	StatusNotStarted SessionStatus = "not_started"
	StatusInProgress SessionStatus = "in_progress"
	StatusPaused     SessionStatus = "paused"
	StatusResumed    SessionStatus = "resumed"
	StatusCompleted  SessionStatus = "completed"
	StatusCancelled  SessionStatus = "cancelled"
)

// ServiceSession represents one performance of a service by a barber for
// a client. A session with pause support can be paused while a chemical
// product develops; the barber is free to serve another client until the
// session is resumed.
type ServiceSession struct {
	ID            int64
	AppointmentID int64
	ServiceID     int64
	BarberID      int64
	ClientID      int64

	Status SessionStatus

	// HasPause is fixed at creation from the service definition.
	// Sessions for services without pause support never enter paused.
	HasPause             bool
	ExpectedPauseMinutes int

	// Only the most recent pause/resume timestamp is retained;
	// accumulated durations persist across pause/resume cycles.
	StartTime  *time.Time
	PauseTime  *time.Time
	ResumeTime *time.Time
	EndTime    *time.Time

	ActiveDurationMinutes int
	PauseDurationMinutes  int

	Notes *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsPaused returns true if the session is currently paused
func (s *ServiceSession) IsPaused() bool {
	return s.Status == StatusPaused
}

// IsActive returns true if the barber is currently occupied by this session
func (s *ServiceSession) IsActive() bool {
	return s.Status == StatusInProgress || s.Status == StatusResumed
}

// IsTerminal returns true if the session reached a final state
func (s *ServiceSession) IsTerminal() bool {
	return s.Status == StatusCompleted || s.Status == StatusCancelled
}

// CanBePaused returns true if the session can be paused right now
func (s *ServiceSession) CanBePaused() bool {
	return s.IsActive() && s.HasPause
}

// CanBeResumed returns true if the session can be resumed
func (s *ServiceSession) CanBeResumed() bool {
	return s.Status == StatusPaused
}

// CanBeCompleted returns true if the session can be completed
func (s *ServiceSession) CanBeCompleted() bool {
	return s.IsActive()
}

// TotalDurationMinutes returns the accrued total duration.
// For a completed session this equals wall-clock minutes between start
// and end within minute truncation.
func (s *ServiceSession) TotalDurationMinutes() int {
	return s.ActiveDurationMinutes + s.PauseDurationMinutes
}

// Start переводит сессию из not_started в in_progress
// Проверка занятости барбера выполняется планировщиком до вызова
func (s *ServiceSession) Start(now time.Time) error {
	if s.Status != StatusNotStarted {
		return fmt.Errorf("%w: start from %s", ErrInvalidTransition, s.Status)
	}

	t := now
	s.StartTime = &t
	s.Status = StatusInProgress
	return nil
}

// Pause переводит активную сессию в paused и доначисляет активное время
// за текущий интервал
func (s *ServiceSession) Pause(now time.Time) error {
	if !s.IsActive() {
		return fmt.Errorf("%w: pause from %s", ErrInvalidTransition, s.Status)
	}
	if !s.HasPause {
		return fmt.Errorf("%w: service has no pause support", ErrPauseNotSupported)
	}

	s.ActiveDurationMinutes += minutesBetween(s.activeSince(), now)
	t := now
	s.PauseTime = &t
	s.Status = StatusPaused
	return nil
}

// Resume переводит сессию из paused в resumed и доначисляет время паузы
// Проверка занятости барбера выполняется планировщиком до вызова
func (s *ServiceSession) Resume(now time.Time) error {
	if s.Status != StatusPaused {
		return fmt.Errorf("%w: resume from %s", ErrInvalidTransition, s.Status)
	}

	s.PauseDurationMinutes += minutesBetween(*s.PauseTime, now)
	t := now
	s.ResumeTime = &t
	s.Status = StatusResumed
	return nil
}

// Complete завершает активную сессию и доначисляет активное время
// за последний интервал. Завершить сессию в паузе нельзя: начисление
// должно закрываться от известной активной точки отсчета.
func (s *ServiceSession) Complete(now time.Time) error {
	if !s.IsActive() {
		return fmt.Errorf("%w: complete from %s", ErrInvalidTransition, s.Status)
	}

	s.ActiveDurationMinutes += minutesBetween(s.activeSince(), now)
	t := now
	s.EndTime = &t
	s.Status = StatusCompleted
	return nil
}

// Cancel отменяет сессию из любого нетерминального статуса
// Время за текущий интервал не начисляется
func (s *ServiceSession) Cancel(now time.Time) error {
	if s.IsTerminal() {
		return fmt.Errorf("%w: cancel from %s", ErrInvalidTransition, s.Status)
	}

	t := now
	s.EndTime = &t
	s.Status = StatusCancelled
	return nil
}

// Clone возвращает глубокую копию сессии
// Хранилище отдает и принимает копии, чтобы вызывающие не могли
// изменить общее состояние в обход планировщика
func (s *ServiceSession) Clone() *ServiceSession {
	c := *s
	c.StartTime = cloneTime(s.StartTime)
	c.PauseTime = cloneTime(s.PauseTime)
	c.ResumeTime = cloneTime(s.ResumeTime)
	c.EndTime = cloneTime(s.EndTime)
	if s.Notes != nil {
		notes := *s.Notes
		c.Notes = &notes
	}
	return &c
}

// activeSince точка отсчета текущего активного интервала:
// resume_time после возобновления, иначе start_time
func (s *ServiceSession) activeSince() time.Time {
	if s.Status == StatusResumed && s.ResumeTime != nil {
		return *s.ResumeTime
	}
	return *s.StartTime
}

// minutesBetween целое число минут между двумя моментами (усечение)
func minutesBetween(from, to time.Time) int {
	return int(to.Sub(from).Minutes())
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
