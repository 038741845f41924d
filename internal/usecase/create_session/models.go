package create_session

// Request модель запроса на создание сессии услуги
// Сессия создается при check-in записи: барбер, клиент и поддержка
// паузы берутся из записи и определения услуги
type Request struct {
	AppointmentID int64   // ID записи клиента
	ServiceID     int64   // ID услуги
	Notes         *string // Заметки к сессии (опционально)
}
