package create_session

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/BSH-SessionService/internal/domain"
	sessionStorage "github.com/m04kA/BSH-SessionService/internal/infra/storage/session"
	"github.com/m04kA/BSH-SessionService/internal/integrations/appointmentservice"
	"github.com/m04kA/BSH-SessionService/pkg/ptr"
)

type fakeRepo struct {
	nextID     int64
	created    []*domain.ServiceSession
	unfinished map[int64]*domain.ServiceSession
	createErr  error
	getErr     error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{nextID: 1, unfinished: make(map[int64]*domain.ServiceSession)}
}

func (r *fakeRepo) Create(_ context.Context, sess *domain.ServiceSession) (*domain.ServiceSession, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	sess.ID = r.nextID
	r.nextID++
	r.created = append(r.created, sess)
	return sess, nil
}

func (r *fakeRepo) GetUnfinishedByAppointment(_ context.Context, appointmentID int64) (*domain.ServiceSession, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	sess, ok := r.unfinished[appointmentID]
	if !ok {
		return nil, sessionStorage.ErrSessionNotFound
	}
	return sess, nil
}

type fakeStore struct {
	put []*domain.ServiceSession
}

func (s *fakeStore) Put(sess *domain.ServiceSession) {
	s.put = append(s.put, sess)
}

type fakeAppointmentClient struct {
	appointments map[int64]*appointmentservice.Appointment
	services     map[int64]*appointmentservice.Service
}

func (c *fakeAppointmentClient) GetAppointment(_ context.Context, id int64) (*appointmentservice.Appointment, error) {
	appointment, ok := c.appointments[id]
	if !ok {
		return nil, appointmentservice.ErrAppointmentNotFound
	}
	return appointment, nil
}

func (c *fakeAppointmentClient) GetService(_ context.Context, id int64) (*appointmentservice.Service, error) {
	service, ok := c.services[id]
	if !ok {
		return nil, appointmentservice.ErrServiceNotFound
	}
	return service, nil
}

// fakeTxManager выполняет fn без реальной транзакции
type fakeTxManager struct{}

func (fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fixture struct {
	uc     *UseCase
	repo   *fakeRepo
	store  *fakeStore
	client *fakeAppointmentClient
}

func newFixture() *fixture {
	repo := newFakeRepo()
	store := &fakeStore{}
	client := &fakeAppointmentClient{
		appointments: map[int64]*appointmentservice.Appointment{
			100: {ID: 100, BarberID: 10, ClientID: 20, Date: "2025-11-03", Status: "confirmed"},
		},
		services: map[int64]*appointmentservice.Service{
			5: {ID: 5, Name: "Окрашивание", Price: 3500, DurationMinutes: 90, HasPause: true, PauseDurationMinutes: 45},
			6: {ID: 6, Name: "Стрижка", Price: 1200, DurationMinutes: 40},
		},
	}

	return &fixture{
		uc:     NewUseCase(repo, store, client, fakeTxManager{}, nopLogger{}),
		repo:   repo,
		store:  store,
		client: client,
	}
}

func TestExecute(t *testing.T) {
	f := newFixture()

	resp, err := f.uc.Execute(context.Background(), &Request{
		AppointmentID: 100,
		ServiceID:     5,
		Notes:         ptr.Ptr("клиент просил не торопиться"),
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1), resp.ID)
	assert.Equal(t, int64(100), resp.AppointmentID)
	assert.Equal(t, int64(10), resp.BarberID)
	assert.Equal(t, int64(20), resp.ClientID)
	assert.Equal(t, string(domain.StatusNotStarted), resp.Status)
	assert.True(t, resp.HasPause)
	assert.Equal(t, 45, resp.ExpectedPauseMinutes)
	require.NotNil(t, resp.Notes)
	assert.Equal(t, "клиент просил не торопиться", *resp.Notes)

	// Созданная сессия попала и в БД, и в авторитетное хранилище
	require.Len(t, f.repo.created, 1)
	require.Len(t, f.store.put, 1)
	assert.Equal(t, int64(1), f.store.put[0].ID)
}

func TestExecute_ServiceWithoutPause(t *testing.T) {
	f := newFixture()

	resp, err := f.uc.Execute(context.Background(), &Request{AppointmentID: 100, ServiceID: 6})
	require.NoError(t, err)

	assert.False(t, resp.HasPause)
	assert.Equal(t, 0, resp.ExpectedPauseMinutes)
	assert.False(t, resp.CanBePaused)
}

func TestExecute_Validation(t *testing.T) {
	f := newFixture()
	longNotes := strings.Repeat("a", domain.MaxNotesLength+1)

	tests := []struct {
		name string
		req  *Request
	}{
		{"zero appointment id", &Request{AppointmentID: 0, ServiceID: 5}},
		{"negative service id", &Request{AppointmentID: 100, ServiceID: -1}},
		{"notes too long", &Request{AppointmentID: 100, ServiceID: 5, Notes: &longNotes}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.uc.Execute(context.Background(), tt.req)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
	assert.Empty(t, f.repo.created)
}

func TestExecute_AppointmentNotFound(t *testing.T) {
	f := newFixture()

	_, err := f.uc.Execute(context.Background(), &Request{AppointmentID: 999, ServiceID: 5})
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestExecute_ServiceNotFound(t *testing.T) {
	f := newFixture()

	_, err := f.uc.Execute(context.Background(), &Request{AppointmentID: 100, ServiceID: 999})
	assert.ErrorIs(t, err, ErrServiceNotFound)
}

func TestExecute_DuplicateUnfinishedSession(t *testing.T) {
	f := newFixture()
	f.repo.unfinished[100] = &domain.ServiceSession{
		ID:            7,
		AppointmentID: 100,
		Status:        domain.StatusInProgress,
	}

	_, err := f.uc.Execute(context.Background(), &Request{AppointmentID: 100, ServiceID: 5})

	assert.ErrorIs(t, err, ErrSessionAlreadyExists)
	assert.Empty(t, f.repo.created)
	assert.Empty(t, f.store.put)
}

func TestExecute_RepoErrors(t *testing.T) {
	f := newFixture()
	f.repo.getErr = errors.New("connection refused")

	_, err := f.uc.Execute(context.Background(), &Request{AppointmentID: 100, ServiceID: 5})
	assert.ErrorIs(t, err, ErrInternal)

	f = newFixture()
	f.repo.createErr = errors.New("connection refused")

	_, err = f.uc.Execute(context.Background(), &Request{AppointmentID: 100, ServiceID: 5})
	assert.ErrorIs(t, err, ErrInternal)
	assert.Empty(t, f.store.put)
}
