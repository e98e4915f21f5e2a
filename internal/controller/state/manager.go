package state

import "sync"

// Manager управляет состояниями диалогов пользователей
type Manager struct {
	mu     sync.RWMutex
	states map[int64]*UserData // telegramID -> UserData
}

// NewManager создаёт новый менеджер состояний
func NewManager() *Manager {
	return &Manager{
		states: make(map[int64]*UserData),
	}
}

// GetState получает текущее состояние пользователя
func (sm *Manager) GetState(telegramID int64) UserState {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if userData, exists := sm.states[telegramID]; exists {
		return userData.State
	}
	return StateNone
}

// Get получает данные диалога пользователя
func (sm *Manager) Get(telegramID int64) *UserData {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.states[telegramID]
}

// Set сохраняет данные диалога пользователя
func (sm *Manager) Set(telegramID int64, data *UserData) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if data == nil || data.State == StateNone {
		delete(sm.states, telegramID)
		return
	}
	sm.states[telegramID] = data
}

// Clear очищает состояние и данные пользователя
func (sm *Manager) Clear(telegramID int64) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	delete(sm.states, telegramID)
}
