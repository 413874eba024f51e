package storage

import "sync"

// MemoryBackend keeps values in process memory; nothing survives a restart
type MemoryBackend struct {
	mu     sync.Mutex
	values map[string][]byte
	closed bool
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{values: make(map[string][]byte)}
}

func (m *MemoryBackend) Get(key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, false, ErrClosed
	}
	v, ok := m.values[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *MemoryBackend) Update(key string, fn UpdateFunc) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	current, found := m.values[key]
	if found {
		current = append([]byte(nil), current...)
	}

	next, err := fn(current, found)
	if err != nil {
		return err
	}
	m.values[key] = append([]byte(nil), next...)
	return nil
}

// Set replaces a value directly. Tests use it to seed corrupt data.
func (m *MemoryBackend) Set(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = append([]byte(nil), value...)
}

func (m *MemoryBackend) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
