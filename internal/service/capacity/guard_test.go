package capacity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubIndex struct {
	active map[int64][]int64
}

func (s *stubIndex) ActiveSessionsFor(barberID int64) []int64 {
	return s.active[barberID]
}

func TestAllow_NoActiveSessions(t *testing.T) {
	guard := NewGuard(&stubIndex{active: map[int64][]int64{}})

	assert.True(t, guard.Allow(10, 1))
}

func TestAllow_BarberBusyWithAnotherSession(t *testing.T) {
	guard := NewGuard(&stubIndex{active: map[int64][]int64{
		10: {5},
	}})

	assert.False(t, guard.Allow(10, 1))
}

func TestAllow_ExcludesOwnSession(t *testing.T) {
	guard := NewGuard(&stubIndex{active: map[int64][]int64{
		10: {1},
	}})

	// Сессия не блокирует собственный переход
	assert.True(t, guard.Allow(10, 1))
}

func TestAllow_OtherBarberNotAffected(t *testing.T) {
	guard := NewGuard(&stubIndex{active: map[int64][]int64{
		10: {5},
	}})

	assert.True(t, guard.Allow(20, 1))
}
