package session

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/BSH-SessionService/internal/domain"
	"github.com/m04kA/BSH-SessionService/pkg/dbmetrics"
	"github.com/m04kA/BSH-SessionService/pkg/psqlbuilder"
)

var sessionColumns = []string{
	"id",
	"appointment_id",
	"service_id",
	"barber_id",
	"client_id",
	"status",
	"has_pause",
	"expected_pause_minutes",
	"start_time",
	"pause_time",
	"resume_time",
	"end_time",
	"active_duration_minutes",
	"pause_duration_minutes",
	"notes",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с сессиями услуг в PostgreSQL.
// Это persistence-коллаборатор: авторитетное состояние живет в
// in-memory хранилище, а запись в БД подтверждается до того,
// как переход будет применен в памяти.
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория сессий
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новую сессию услуги
// Если в контексте передана активная транзакция, использует её
func (r *Repository) Create(ctx context.Context, sess *domain.ServiceSession) (*domain.ServiceSession, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("service_sessions").
		Columns(
			"appointment_id",
			"service_id",
			"barber_id",
			"client_id",
			"status",
			"has_pause",
			"expected_pause_minutes",
			"active_duration_minutes",
			"pause_duration_minutes",
			"notes",
		).
		Values(
			sess.AppointmentID,
			sess.ServiceID,
			sess.BarberID,
			sess.ClientID,
			sess.Status,
			sess.HasPause,
			sess.ExpectedPauseMinutes,
			sess.ActiveDurationMinutes,
			sess.PauseDurationMinutes,
			sess.Notes,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&sess.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	sess.CreatedAt = createdAt.Time
	sess.UpdatedAt = updatedAt.Time

	return sess, nil
}

// GetByID получает сессию по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.ServiceSession, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(sessionColumns...).
		From("service_sessions").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	sess, err := r.scanSession(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan session: %v", ErrScanRow, err)
	}

	return sess, nil
}

// Update сохраняет изменяемые поля сессии после перехода
func (r *Repository) Update(ctx context.Context, sess *domain.ServiceSession) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("service_sessions").
		Set("status", sess.Status).
		Set("start_time", sess.StartTime).
		Set("pause_time", sess.PauseTime).
		Set("resume_time", sess.ResumeTime).
		Set("end_time", sess.EndTime).
		Set("active_duration_minutes", sess.ActiveDurationMinutes).
		Set("pause_duration_minutes", sess.PauseDurationMinutes).
		Set("notes", sess.Notes).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": sess.ID}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Update - execute update: %v", ErrExecQuery, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Update - rows affected: %v", ErrExecQuery, err)
	}
	if affected == 0 {
		return ErrSessionNotFound
	}

	return nil
}

// GetUnfinishedByAppointment возвращает незавершенную сессию записи, если она есть
// Используется в транзакции создания для защиты от дубликатов;
// внутри транзакции строка блокируется через FOR UPDATE
func (r *Repository) GetUnfinishedByAppointment(ctx context.Context, appointmentID int64) (*domain.ServiceSession, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(sessionColumns...).
		From("service_sessions").
		Where(squirrel.Eq{"appointment_id": appointmentID}).
		Where(squirrel.Eq{"status": statusStrings(domain.UnfinishedStatuses)}).
		Limit(1)

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetUnfinishedByAppointment - build select query: %v", ErrBuildQuery, err)
	}

	sess, err := r.scanSession(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetUnfinishedByAppointment - scan session: %v", ErrScanRow, err)
	}

	return sess, nil
}

// ListUnfinished возвращает все незавершенные сессии
// Используется для прогрева in-memory хранилища при старте сервиса
func (r *Repository) ListUnfinished(ctx context.Context) ([]*domain.ServiceSession, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(sessionColumns...).
		From("service_sessions").
		Where(squirrel.Eq{"status": statusStrings(domain.UnfinishedStatuses)}).
		OrderBy("id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListUnfinished - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListUnfinished - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanSessions(rows)
}

// rowScanner абстракция над *sql.Row и *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *Repository) scanSession(row rowScanner) (*domain.ServiceSession, error) {
	var sess domain.ServiceSession
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&sess.ID,
		&sess.AppointmentID,
		&sess.ServiceID,
		&sess.BarberID,
		&sess.ClientID,
		&sess.Status,
		&sess.HasPause,
		&sess.ExpectedPauseMinutes,
		&sess.StartTime,
		&sess.PauseTime,
		&sess.ResumeTime,
		&sess.EndTime,
		&sess.ActiveDurationMinutes,
		&sess.PauseDurationMinutes,
		&sess.Notes,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	sess.CreatedAt = createdAt.Time
	sess.UpdatedAt = updatedAt.Time

	return &sess, nil
}

func (r *Repository) scanSessions(rows *sql.Rows) ([]*domain.ServiceSession, error) {
	var sessions []*domain.ServiceSession

	for rows.Next() {
		sess, err := r.scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan session row: %v", ErrScanRow, err)
		}
		sessions = append(sessions, sess)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate session rows: %v", ErrExecQuery, err)
	}

	return sessions, nil
}

func statusStrings(statuses []domain.SessionStatus) []string {
	result := make([]string, len(statuses))
	for i, s := range statuses {
		result[i] = string(s)
	}
	return result
}
