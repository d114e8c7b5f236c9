package testing

import (
	"errors"
	"maps"
	"sync"

	"github.com/desertthunder/eqviz/internal/models"
	"github.com/desertthunder/eqviz/internal/shared"
)

var _ models.Store = (*MemoryStore)(nil)

// ErrStoreFailure is returned by a [MemoryStore] configured to fail.
var ErrStoreFailure = errors.New("store failure")

// MemoryStore is an in-memory [models.Store] for tests.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string]string

	// FailSet and FailRemove make the corresponding operation return [ErrStoreFailure].
	FailSet    bool
	FailRemove bool

	Writes int
}

// NewMemoryStore creates a store seeded with the given entries.
func NewMemoryStore(seed map[string]string) *MemoryStore {
	data := make(map[string]string, len(seed))
	maps.Copy(data, seed)
	return &MemoryStore{data: data}
}

func (m *MemoryStore) Get(key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.data[key]
	if !ok {
		return "", shared.ErrKeyNotFound
	}
	return v, nil
}

func (m *MemoryStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailSet {
		return ErrStoreFailure
	}
	m.data[key] = value
	m.Writes++
	return nil
}

func (m *MemoryStore) Remove(keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailRemove {
		return ErrStoreFailure
	}
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

// Has reports whether key is present.
func (m *MemoryStore) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok
}

// Len returns the number of stored keys.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data)
}
