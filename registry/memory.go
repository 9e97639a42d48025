package registry

import "sync"

// Memory is an in-process Store.
type Memory struct {
	mu      sync.RWMutex
	entries map[[32]byte][32]byte
}

func NewMemory() *Memory {
	return &Memory{entries: make(map[[32]byte][32]byte)}
}

func (m *Memory) Put(key, value [32]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.entries[key]; ok {
		if existing != value {
			return ErrImmutable
		}
		return nil
	}
	m.entries[key] = value
	return nil
}

func (m *Memory) Get(key [32]byte) ([32]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.entries[key]
	if !ok {
		return v, ErrNotFound
	}
	return v, nil
}

func (m *Memory) Has(key [32]byte) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.entries[key]
	return ok
}
