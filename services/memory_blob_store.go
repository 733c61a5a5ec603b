package services

import (
	"context"
	"sync"
)

// MemoryBlobStore is an in-process BlobStore, used by tests and local runs
type MemoryBlobStore struct {
	name  string
	blobs map[string][]byte
	mu    sync.RWMutex

	// GetErr and SetErr, when set, are returned instead of touching the map
	GetErr error
	SetErr error

	gets int
	sets int
}

// NewMemoryBlobStore creates an empty in-memory store reporting the given backend name
func NewMemoryBlobStore(name string) *MemoryBlobStore {
	if name == "" {
		name = "memory"
	}
	return &MemoryBlobStore{
		name:  name,
		blobs: make(map[string][]byte),
	}
}

func (m *MemoryBlobStore) Name() string {
	return m.name
}

func (m *MemoryBlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	value, ok := m.blobs[key]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

func (m *MemoryBlobStore) Set(ctx context.Context, key string, value []byte, contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets++
	if m.SetErr != nil {
		return m.SetErr
	}
	stored := make([]byte, len(value))
	copy(stored, value)
	m.blobs[key] = stored
	return nil
}

// Put stores raw bytes directly, bypassing error injection (for test fixtures)
func (m *MemoryBlobStore) Put(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[key] = value
}

// Raw returns the stored bytes for key and whether they exist
func (m *MemoryBlobStore) Raw(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.blobs[key]
	return value, ok
}

// Calls returns how many Get and Set calls reached the store
func (m *MemoryBlobStore) Calls() (gets, sets int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.gets, m.sets
}
