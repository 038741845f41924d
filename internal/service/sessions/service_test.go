package sessions

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/BSH-SessionService/internal/domain"
	"github.com/m04kA/BSH-SessionService/internal/infra/memstore"
	"github.com/m04kA/BSH-SessionService/internal/service/capacity"
)

// fakeClock управляемый провайдер времени
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 11, 3, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// fakeRepo репозиторий, пишущий в память; ошибку можно инжектировать
type fakeRepo struct {
	mu        sync.Mutex
	updates   []domain.ServiceSession
	updateErr error
}

func (r *fakeRepo) Update(_ context.Context, sess *domain.ServiceSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	r.updates = append(r.updates, *sess.Clone())
	return nil
}

func (r *fakeRepo) updateCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.updates)
}

// fakeAppointmentClient фиксирует уведомления о завершении записи
type fakeAppointmentClient struct {
	completed chan int64
	err       error
}

func newFakeAppointmentClient() *fakeAppointmentClient {
	return &fakeAppointmentClient{completed: make(chan int64, 4)}
}

func (c *fakeAppointmentClient) CompleteAppointment(_ context.Context, appointmentID int64) error {
	c.completed <- appointmentID
	return c.err
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fixture struct {
	svc    *Service
	store  *memstore.Store
	repo   *fakeRepo
	client *fakeAppointmentClient
	clock  *fakeClock
}

func newFixture() *fixture {
	store := memstore.New()
	repo := &fakeRepo{}
	client := newFakeAppointmentClient()
	clock := newFakeClock()

	svc := NewService(store, capacity.NewGuard(store), repo, client, nopLogger{})
	svc.timeProvider = clock

	return &fixture{svc: svc, store: store, repo: repo, client: client, clock: clock}
}

func (f *fixture) seed(id, barberID int64, hasPause bool) {
	f.store.Put(&domain.ServiceSession{
		ID:            id,
		AppointmentID: id + 100,
		ServiceID:     1,
		BarberID:      barberID,
		ClientID:      id + 200,
		Status:        domain.StatusNotStarted,
		HasPause:      hasPause,
	})
}

func TestStart(t *testing.T) {
	f := newFixture()
	f.seed(1, 10, true)

	resp, err := f.svc.Start(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusInProgress), resp.Status)
	assert.True(t, resp.IsActive)
	assert.Equal(t, 1, f.repo.updateCount())

	stored, err := f.store.Get(1)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, stored.Status)
}

func TestStart_SessionNotFound(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Start(context.Background(), 99)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestStart_BarberBusy(t *testing.T) {
	f := newFixture()
	f.seed(1, 10, true)
	f.seed(2, 10, true)

	_, err := f.svc.Start(context.Background(), 1)
	require.NoError(t, err)

	_, err = f.svc.Start(context.Background(), 2)
	assert.ErrorIs(t, err, ErrBarberBusy)

	// Вторая сессия не изменилась и в БД ничего не писалось
	stored, err := f.store.Get(2)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusNotStarted, stored.Status)
	assert.Equal(t, 1, f.repo.updateCount())
}

func TestStart_PauseFreesBarberForNextClient(t *testing.T) {
	f := newFixture()
	f.seed(1, 10, true)
	f.seed(2, 10, false)
	ctx := context.Background()

	_, err := f.svc.Start(ctx, 1)
	require.NoError(t, err)

	f.clock.Advance(20 * time.Minute)
	_, err = f.svc.Pause(ctx, 1)
	require.NoError(t, err)

	// Пока первая сессия на паузе, барбер может начать вторую
	_, err = f.svc.Start(ctx, 2)
	require.NoError(t, err)

	// Но возобновить первую нельзя, пока вторая активна
	_, err = f.svc.Resume(ctx, 1)
	assert.ErrorIs(t, err, ErrBarberBusy)

	f.clock.Advance(15 * time.Minute)
	_, err = f.svc.Complete(ctx, 2)
	require.NoError(t, err)

	resp, err := f.svc.Resume(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusResumed), resp.Status)
	assert.Equal(t, 15, resp.PauseDurationMinutes)
}

func TestFullLifecycleDurations(t *testing.T) {
	f := newFixture()
	f.seed(1, 10, true)
	ctx := context.Background()

	_, err := f.svc.Start(ctx, 1)
	require.NoError(t, err)

	f.clock.Advance(20 * time.Minute)
	resp, err := f.svc.Pause(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 20, resp.ActiveDurationMinutes)
	assert.True(t, resp.IsPaused)
	assert.True(t, resp.CanBeResumed)

	f.clock.Advance(60 * time.Minute)
	resp, err = f.svc.Resume(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 60, resp.PauseDurationMinutes)
	assert.True(t, resp.IsActive)

	f.clock.Advance(15 * time.Minute)
	resp, err = f.svc.Complete(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCompleted), resp.Status)
	assert.Equal(t, 35, resp.ActiveDurationMinutes)
	assert.Equal(t, 60, resp.PauseDurationMinutes)
	assert.Equal(t, 95, resp.TotalDurationMinutes)
}

func TestPause_NotSupported(t *testing.T) {
	f := newFixture()
	f.seed(1, 10, false)
	ctx := context.Background()

	_, err := f.svc.Start(ctx, 1)
	require.NoError(t, err)

	_, err = f.svc.Pause(ctx, 1)
	assert.ErrorIs(t, err, ErrPauseNotSupported)

	stored, err := f.store.Get(1)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, stored.Status)
}

func TestComplete_WhilePaused(t *testing.T) {
	f := newFixture()
	f.seed(1, 10, true)
	ctx := context.Background()

	_, err := f.svc.Start(ctx, 1)
	require.NoError(t, err)
	_, err = f.svc.Pause(ctx, 1)
	require.NoError(t, err)

	_, err = f.svc.Complete(ctx, 1)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestComplete_NotifiesAppointmentService(t *testing.T) {
	f := newFixture()
	f.seed(1, 10, false)
	ctx := context.Background()

	_, err := f.svc.Start(ctx, 1)
	require.NoError(t, err)

	f.clock.Advance(30 * time.Minute)
	_, err = f.svc.Complete(ctx, 1)
	require.NoError(t, err)

	select {
	case appointmentID := <-f.client.completed:
		assert.Equal(t, int64(101), appointmentID)
	case <-time.After(2 * time.Second):
		t.Fatal("appointment completion notification was not sent")
	}
}

func TestComplete_NotifyFailureDoesNotAffectResult(t *testing.T) {
	f := newFixture()
	f.client.err = errors.New("appointment service unavailable")
	f.seed(1, 10, false)
	ctx := context.Background()

	_, err := f.svc.Start(ctx, 1)
	require.NoError(t, err)

	resp, err := f.svc.Complete(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCompleted), resp.Status)

	stored, err := f.store.Get(1)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, stored.Status)
}

func TestCancel(t *testing.T) {
	f := newFixture()
	f.seed(1, 10, true)
	ctx := context.Background()

	_, err := f.svc.Start(ctx, 1)
	require.NoError(t, err)

	f.clock.Advance(10 * time.Minute)
	resp, err := f.svc.Cancel(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCancelled), resp.Status)

	// Ёмкость барбера освобождена
	assert.Empty(t, f.store.ActiveSessionsFor(10))

	_, err = f.svc.Start(ctx, 1)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestTransition_PersistenceFailureLeavesStoreUnchanged(t *testing.T) {
	f := newFixture()
	f.seed(1, 10, true)
	f.repo.updateErr = errors.New("connection refused")

	_, err := f.svc.Start(context.Background(), 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPersistence)

	// Отказ БД не признается: в памяти сессия осталась not_started
	stored, err := f.store.Get(1)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusNotStarted, stored.Status)
	assert.Nil(t, stored.StartTime)
	assert.Empty(t, f.store.ActiveSessionsFor(10))

	// После восстановления БД переход проходит
	f.repo.updateErr = nil
	_, err = f.svc.Start(context.Background(), 1)
	require.NoError(t, err)
}

func TestResume_ConcurrentSingleWinner(t *testing.T) {
	f := newFixture()
	f.seed(1, 10, true)
	ctx := context.Background()

	_, err := f.svc.Start(ctx, 1)
	require.NoError(t, err)
	f.clock.Advance(10 * time.Minute)
	_, err = f.svc.Pause(ctx, 1)
	require.NoError(t, err)
	f.clock.Advance(10 * time.Minute)

	const callers = 4
	errs := make([]error, callers)
	var wg sync.WaitGroup
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.Resume(ctx, 1)
		}(i)
	}
	wg.Wait()

	success := 0
	for _, err := range errs {
		if err == nil {
			success++
			continue
		}
		assert.ErrorIs(t, err, ErrInvalidTransition)
	}
	assert.Equal(t, 1, success)

	stored, err := f.store.Get(1)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusResumed, stored.Status)
	assert.Equal(t, 10, stored.PauseDurationMinutes)
}

func TestGetByID(t *testing.T) {
	f := newFixture()
	f.seed(1, 10, true)

	resp, err := f.svc.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.ID)
	assert.Equal(t, string(domain.StatusNotStarted), resp.Status)
	assert.False(t, resp.IsActive)

	_, err = f.svc.GetByID(context.Background(), 99)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestGetBarberSessions(t *testing.T) {
	f := newFixture()
	f.seed(1, 10, true)
	f.seed(2, 10, true)
	f.seed(3, 20, true)
	ctx := context.Background()

	_, err := f.svc.Start(ctx, 1)
	require.NoError(t, err)
	_, err = f.svc.Pause(ctx, 1)
	require.NoError(t, err)

	resp, err := f.svc.GetBarberSessions(ctx, 10)
	require.NoError(t, err)
	require.Len(t, resp.Sessions, 2)
	assert.Equal(t, int64(1), resp.Sessions[0].ID)
	assert.True(t, resp.Sessions[0].IsPaused)
	assert.Equal(t, int64(2), resp.Sessions[1].ID)

	empty, err := f.svc.GetBarberSessions(ctx, 30)
	require.NoError(t, err)
	assert.Empty(t, empty.Sessions)
}
