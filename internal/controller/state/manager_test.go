package state

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestManagerLifecycle(t *testing.T) {
	m := NewManager()

	assert.Equal(t, StateNone, m.GetState(1))
	assert.Nil(t, m.Get(1))

	m.Set(1, &UserData{
		State: StateConfirmingRequest,
		Pending: &PendingRequest{
			Subject:  "python",
			Date:     time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
			StartMin: 14 * 60,
			EndMin:   16 * 60,
		},
	})

	assert.Equal(t, StateConfirmingRequest, m.GetState(1))
	assert.Equal(t, "python", m.Get(1).Pending.Subject)

	// Чужое состояние не затрагивается
	assert.Equal(t, StateNone, m.GetState(2))

	m.Clear(1)
	assert.Equal(t, StateNone, m.GetState(1))
	assert.Nil(t, m.Get(1))
}

func TestManagerSetNoneDeletes(t *testing.T) {
	m := NewManager()

	m.Set(1, &UserData{State: StateAwaitingRequestText})
	m.Set(1, &UserData{State: StateNone})

	assert.Nil(t, m.Get(1))
}
