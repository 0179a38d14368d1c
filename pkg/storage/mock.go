package storage

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// MockStorage is an in-memory Storage for tests.
type MockStorage struct {
	mu         sync.RWMutex
	characters map[string]CharacterRecord
	pingError  error
}

// Ensure MockStorage implements Storage interface
var _ Storage = (*MockStorage)(nil)

// NewMockStorage creates a new mock storage
func NewMockStorage() *MockStorage {
	return &MockStorage{
		characters: make(map[string]CharacterRecord),
	}
}

// SetPingError configures the mock to fail on ping with the given error
func (m *MockStorage) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = err
}

// Ping mocks storage ping
func (m *MockStorage) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pingError
}

// Close mocks storage close
func (m *MockStorage) Close() error {
	return nil
}

func (m *MockStorage) SaveCharacter(ctx context.Context, rec *CharacterRecord) error {
	if rec == nil || rec.View.ID == "" {
		return errors.New("character record has no id")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *rec
	if stored.UpdatedAt.IsZero() {
		stored.UpdatedAt = time.Now()
	}
	m.characters[rec.View.ID] = stored
	return nil
}

func (m *MockStorage) LoadCharacter(ctx context.Context, id string) (*CharacterRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.characters[id]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (m *MockStorage) DeleteCharacter(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.characters, id)
	return nil
}

func (m *MockStorage) ListCharacters(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.characters))
	for id := range m.characters {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
