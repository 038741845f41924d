package memstore

import (
	"sort"
	"sync"

	"github.com/m04kA/BSH-SessionService/internal/domain"
)

// Store авторитетное in-memory хранилище сессий.
// Единственный владелец разделяемого изменяемого состояния: все мутации
// идут через Put, который вызывает только планировщик внутри одной
// защищенной операции. Помимо записей по ID хранилище ведет вторичный
// индекс barber_id -> множество ID активных сессий, по которому
// guard ёмкости отвечает на запрос "занят ли барбер".
type Store struct {
	mu             sync.RWMutex
	sessions       map[int64]*domain.ServiceSession
	activeByBarber map[int64]map[int64]struct{}

	lockMu      sync.Mutex
	barberLocks map[int64]*sync.Mutex
}

// New создает пустое хранилище сессий
func New() *Store {
	return &Store{
		sessions:       make(map[int64]*domain.ServiceSession),
		activeByBarber: make(map[int64]map[int64]struct{}),
		barberLocks:    make(map[int64]*sync.Mutex),
	}
}

// Get возвращает копию сессии по ID
func (s *Store) Get(id int64) (*domain.ServiceSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess.Clone(), nil
}

// Put замещает сохраненную сессию и обновляет индекс активных сессий:
// ID убирается из активного множества барбера, когда новый статус
// не активен, и добавляется, когда активен
func (s *Store) Put(sess *domain.ServiceSession) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := sess.Clone()
	s.sessions[stored.ID] = stored

	active := s.activeByBarber[stored.BarberID]
	if stored.IsActive() {
		if active == nil {
			active = make(map[int64]struct{})
			s.activeByBarber[stored.BarberID] = active
		}
		active[stored.ID] = struct{}{}
		return
	}

	if active != nil {
		delete(active, stored.ID)
		if len(active) == 0 {
			delete(s.activeByBarber, stored.BarberID)
		}
	}
}

// Load прогревает хранилище списком сессий (используется при старте)
func (s *Store) Load(sessions []*domain.ServiceSession) {
	for _, sess := range sessions {
		s.Put(sess)
	}
}

// ActiveSessionsFor возвращает снимок ID активных сессий барбера
func (s *Store) ActiveSessionsFor(barberID int64) []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	active := s.activeByBarber[barberID]
	if len(active) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(active))
	for id := range active {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// UnfinishedSessionsFor возвращает копии незавершенных сессий барбера
// (not_started, in_progress, paused, resumed), отсортированные по ID
func (s *Store) UnfinishedSessionsFor(barberID int64) []*domain.ServiceSession {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.ServiceSession
	for _, sess := range s.sessions {
		if sess.BarberID == barberID && !sess.IsTerminal() {
			result = append(result, sess.Clone())
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// WithBarberLock выполняет fn под мьютексом барбера.
// Проверка guard'а и фиксация перехода должны быть одной единицей:
// две сессии одного барбера могут переводиться конкурентно из разных
// запросов, и чисто посессионной блокировки недостаточно.
func (s *Store) WithBarberLock(barberID int64, fn func() error) error {
	lock := s.barberLock(barberID)
	lock.Lock()
	defer lock.Unlock()
	return fn()
}

func (s *Store) barberLock(barberID int64) *sync.Mutex {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()

	lock, ok := s.barberLocks[barberID]
	if !ok {
		lock = &sync.Mutex{}
		s.barberLocks[barberID] = lock
	}
	return lock
}
