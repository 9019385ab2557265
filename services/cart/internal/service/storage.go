package service

import (
	"errors"
	"sync"
)

// ErrTooLarge is returned by a Storage that cannot hold the encoded state.
var ErrTooLarge = errors.New("cart state too large")

// Storage persists serialized cart state under a key. Load returns nil data
// and no error when nothing is stored.
type Storage interface {
	Load(key string) ([]byte, error)
	Save(key string, data []byte) error
}

type MemoryStorage struct {
	mu   sync.Mutex
	data map[string][]byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: map[string][]byte{}}
}

func (m *MemoryStorage) Load(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), v...), nil
}

func (m *MemoryStorage) Save(key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), data...)
	return nil
}
