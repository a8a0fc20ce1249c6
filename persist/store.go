package persist

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound indicates no record exists under the requested key.
var ErrNotFound = errors.New("record not found")

// Store is a durable keyed store for conversation blobs. Keys are
// (sessionID, entityID) pairs; values are opaque to the store.
type Store interface {
	// Get returns the blob stored under the key, or ErrNotFound.
	Get(ctx context.Context, sessionID, entityID string) ([]byte, error)

	// Put stores the blob under the key, replacing any prior value.
	Put(ctx context.Context, sessionID, entityID string, data []byte) error

	// DeleteSession removes every record scoped to the session.
	DeleteSession(ctx context.Context, sessionID string) error

	// Close releases underlying resources.
	Close() error
}

// MemoryStore is an in-memory Store for tests and single-run sessions.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]map[string][]byte // sessionID → entityID → blob
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]map[string][]byte)}
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, sessionID, entityID string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.records[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	data, ok := session[entityID]
	if !ok {
		return nil, ErrNotFound
	}

	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Put implements Store.
func (s *MemoryStore) Put(_ context.Context, sessionID, entityID string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.records[sessionID]
	if !ok {
		session = make(map[string][]byte)
		s.records[sessionID] = session
	}

	stored := make([]byte, len(data))
	copy(stored, data)
	session[entityID] = stored
	return nil
}

// DeleteSession implements Store.
func (s *MemoryStore) DeleteSession(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, sessionID)
	return nil
}

// Close implements Store.
func (s *MemoryStore) Close() error {
	return nil
}
