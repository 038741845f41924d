package appointmentservice

// Appointment модель записи клиента из AppointmentService
type Appointment struct {
	ID       int64  `json:"id"`
	BarberID int64  `json:"barber_id"`
	ClientID int64  `json:"client_id"`
	Date     string `json:"date"`
	Status   string `json:"status"`
}

// Service модель услуги из AppointmentService
// HasPause и PauseDurationMinutes определяют, поддерживает ли услуга
// паузу (например, пока химический состав делает свое дело)
type Service struct {
	ID                   int64   `json:"id"`
	Name                 string  `json:"name"`
	Price                float64 `json:"price"`
	DurationMinutes      int     `json:"duration_minutes"`
	HasPause             bool    `json:"has_pause"`
	PauseDurationMinutes int     `json:"pause_duration_minutes"`
}

// ErrorResponse модель ошибки от AppointmentService
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
