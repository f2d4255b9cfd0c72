package cart

import (
	"context"
	"sync"
)

// メモリ上のStorage実装。テストとローカル開発用。
type MemoryStorage struct {
	mu     sync.Mutex
	states map[string]State
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{states: map[string]State{}}
}

func (m *MemoryStorage) Load(ctx context.Context, sessionID string) (State, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.states[sessionID]
	if !ok {
		return State{}, false, nil
	}
	return st.clone(), true, nil
}

func (m *MemoryStorage) Save(ctx context.Context, sessionID string, state State) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.states[sessionID] = state.clone()
	return nil
}

func (m *MemoryStorage) Delete(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.states, sessionID)
	return nil
}
