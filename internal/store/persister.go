package store

import (
	"context"
	"sync"

	"github.com/mesh-intelligence/dustnbones/pkg/types"
)

// Persister stores snapshots by key. Load returns types.ErrNoSnapshot when
// nothing is stored under key.
type Persister interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// MemoryPersister keeps snapshots in memory.
type MemoryPersister struct {
	mu     sync.Mutex
	data   map[string][]byte
	closed bool
}

// NewMemoryPersister returns an empty MemoryPersister.
func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{data: make(map[string][]byte)}
}

func (m *MemoryPersister) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, types.ErrStorageClosed
	}
	data, ok := m.data[key]
	if !ok {
		return nil, types.ErrNoSnapshot
	}
	return append([]byte(nil), data...), nil
}

func (m *MemoryPersister) Save(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return types.ErrStorageClosed
	}
	m.data[key] = append([]byte(nil), data...)
	return nil
}

func (m *MemoryPersister) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return types.ErrStorageClosed
	}
	delete(m.data, key)
	return nil
}

func (m *MemoryPersister) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
