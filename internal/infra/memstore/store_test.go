package memstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/BSH-SessionService/internal/domain"
)

func makeSession(id, barberID int64, status domain.SessionStatus) *domain.ServiceSession {
	return &domain.ServiceSession{
		ID:            id,
		AppointmentID: id + 100,
		ServiceID:     1,
		BarberID:      barberID,
		ClientID:      id + 200,
		Status:        status,
		HasPause:      true,
	}
}

func TestGet_NotFound(t *testing.T) {
	store := New()

	_, err := store.Get(42)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestPutGet_ReturnsCopy(t *testing.T) {
	store := New()
	sess := makeSession(1, 10, domain.StatusNotStarted)
	store.Put(sess)

	// Мутация оригинала после Put не видна хранилищу
	sess.Status = domain.StatusCompleted

	got, err := store.Get(1)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusNotStarted, got.Status)

	// Мутация полученной копии не видна хранилищу
	got.Status = domain.StatusCancelled

	again, err := store.Get(1)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusNotStarted, again.Status)
}

func TestActiveIndex_TracksStatusChanges(t *testing.T) {
	store := New()
	sess := makeSession(1, 10, domain.StatusNotStarted)
	store.Put(sess)

	assert.Empty(t, store.ActiveSessionsFor(10))

	now := time.Date(2025, 11, 3, 10, 0, 0, 0, time.UTC)
	require.NoError(t, sess.Start(now))
	store.Put(sess)
	assert.Equal(t, []int64{1}, store.ActiveSessionsFor(10))

	require.NoError(t, sess.Pause(now.Add(20*time.Minute)))
	store.Put(sess)
	assert.Empty(t, store.ActiveSessionsFor(10))

	require.NoError(t, sess.Resume(now.Add(40*time.Minute)))
	store.Put(sess)
	assert.Equal(t, []int64{1}, store.ActiveSessionsFor(10))

	require.NoError(t, sess.Complete(now.Add(60*time.Minute)))
	store.Put(sess)
	assert.Empty(t, store.ActiveSessionsFor(10))
}

func TestActiveSessionsFor_PerBarber(t *testing.T) {
	store := New()
	store.Put(makeSession(1, 10, domain.StatusInProgress))
	store.Put(makeSession(2, 10, domain.StatusResumed))
	store.Put(makeSession(3, 10, domain.StatusPaused))
	store.Put(makeSession(4, 20, domain.StatusInProgress))

	assert.Equal(t, []int64{1, 2}, store.ActiveSessionsFor(10))
	assert.Equal(t, []int64{4}, store.ActiveSessionsFor(20))
	assert.Empty(t, store.ActiveSessionsFor(30))
}

func TestUnfinishedSessionsFor(t *testing.T) {
	store := New()
	store.Put(makeSession(3, 10, domain.StatusPaused))
	store.Put(makeSession(1, 10, domain.StatusNotStarted))
	store.Put(makeSession(2, 10, domain.StatusCompleted))
	store.Put(makeSession(4, 20, domain.StatusInProgress))
	store.Put(makeSession(5, 10, domain.StatusCancelled))

	unfinished := store.UnfinishedSessionsFor(10)
	require.Len(t, unfinished, 2)
	assert.Equal(t, int64(1), unfinished[0].ID)
	assert.Equal(t, int64(3), unfinished[1].ID)
}

func TestLoad_WarmsStoreAndIndex(t *testing.T) {
	store := New()
	store.Load([]*domain.ServiceSession{
		makeSession(1, 10, domain.StatusInProgress),
		makeSession(2, 10, domain.StatusPaused),
		makeSession(3, 20, domain.StatusNotStarted),
	})

	assert.Equal(t, []int64{1}, store.ActiveSessionsFor(10))
	assert.Len(t, store.UnfinishedSessionsFor(10), 2)

	got, err := store.Get(3)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusNotStarted, got.Status)
}

func TestWithBarberLock_Serializes(t *testing.T) {
	store := New()

	const workers = 8
	counter := 0
	done := make(chan struct{})

	for i := 0; i < workers; i++ {
		go func() {
			_ = store.WithBarberLock(10, func() error {
				counter++
				return nil
			})
			done <- struct{}{}
		}()
	}

	for i := 0; i < workers; i++ {
		<-done
	}
	assert.Equal(t, workers, counter)
}

func TestWithBarberLock_PropagatesError(t *testing.T) {
	store := New()

	err := store.WithBarberLock(10, func() error {
		return ErrSessionNotFound
	})
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
