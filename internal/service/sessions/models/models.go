package models

import (
	"time"

	"github.com/m04kA/BSH-SessionService/internal/domain"
)

// SessionResponse ответ с данными сессии услуги
// Производные флаги вычисляются из статуса на границе и нигде не хранятся:
// хранение их отдельными полями приводило бы к рассинхронизации со статусом
type SessionResponse struct {
	ID            int64 `json:"id"`
	AppointmentID int64 `json:"appointmentId"`
	ServiceID     int64 `json:"serviceId"`
	BarberID      int64 `json:"barberId"`
	ClientID      int64 `json:"clientId"`

	Status string `json:"status"`

	HasPause             bool `json:"hasPause"`
	ExpectedPauseMinutes int  `json:"expectedPauseMinutes"`

	StartTime  *string `json:"startTime,omitempty"`  // ISO 8601
	PauseTime  *string `json:"pauseTime,omitempty"`  // ISO 8601
	ResumeTime *string `json:"resumeTime,omitempty"` // ISO 8601
	EndTime    *string `json:"endTime,omitempty"`    // ISO 8601

	ActiveDurationMinutes int `json:"activeDurationMinutes"`
	PauseDurationMinutes  int `json:"pauseDurationMinutes"`
	TotalDurationMinutes  int `json:"totalDurationMinutes"`

	IsPaused       bool `json:"isPaused"`
	IsActive       bool `json:"isActive"`
	CanBePaused    bool `json:"canBePaused"`
	CanBeResumed   bool `json:"canBeResumed"`
	CanBeCompleted bool `json:"canBeCompleted"`

	Notes *string `json:"notes,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SessionListResponse ответ со списком сессий
type SessionListResponse struct {
	Sessions []SessionResponse `json:"sessions"`
}

// FromDomainSession конвертирует domain модель в DTO
func FromDomainSession(s *domain.ServiceSession) *SessionResponse {
	if s == nil {
		return nil
	}

	return &SessionResponse{
		ID:                    s.ID,
		AppointmentID:         s.AppointmentID,
		ServiceID:             s.ServiceID,
		BarberID:              s.BarberID,
		ClientID:              s.ClientID,
		Status:                string(s.Status),
		HasPause:              s.HasPause,
		ExpectedPauseMinutes:  s.ExpectedPauseMinutes,
		StartTime:             formatTime(s.StartTime),
		PauseTime:             formatTime(s.PauseTime),
		ResumeTime:            formatTime(s.ResumeTime),
		EndTime:               formatTime(s.EndTime),
		ActiveDurationMinutes: s.ActiveDurationMinutes,
		PauseDurationMinutes:  s.PauseDurationMinutes,
		TotalDurationMinutes:  s.TotalDurationMinutes(),
		IsPaused:              s.IsPaused(),
		IsActive:              s.IsActive(),
		CanBePaused:           s.CanBePaused(),
		CanBeResumed:          s.CanBeResumed(),
		CanBeCompleted:        s.CanBeCompleted(),
		Notes:                 s.Notes,
		CreatedAt:             s.CreatedAt,
		UpdatedAt:             s.UpdatedAt,
	}
}

// FromDomainSessionList конвертирует список domain моделей в DTO
func FromDomainSessionList(sessions []*domain.ServiceSession) *SessionListResponse {
	resp := &SessionListResponse{
		Sessions: make([]SessionResponse, 0, len(sessions)),
	}

	for _, sess := range sessions {
		if sessResp := FromDomainSession(sess); sessResp != nil {
			resp.Sessions = append(resp.Sessions, *sessResp)
		}
	}

	return resp
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}
