package capacity

// ActiveIndex интерфейс вторичного индекса активных сессий хранилища
type ActiveIndex interface {
	ActiveSessionsFor(barberID int64) []int64
}

// Guard отвечает на вопрос "может ли барбер начать или возобновить
// сессию прямо сейчас". Без этой проверки две сессии одного барбера
// могли бы одновременно стать активными, ломая и представление
// "один клиент на барбера", и учет длительностей.
type Guard struct {
	index ActiveIndex
}

// NewGuard создает guard над индексом активных сессий
func NewGuard(index ActiveIndex) *Guard {
	return &Guard{index: index}
}

// Allow возвращает false, если у барбера есть активная сессия,
// отличная от excludingSessionID. Сессия, выполняющая переход,
// исключается из проверки против самой себя.
func (g *Guard) Allow(barberID int64, excludingSessionID int64) bool {
	for _, id := range g.index.ActiveSessionsFor(barberID) {
		if id != excludingSessionID {
			return false
		}
	}
	return true
}
