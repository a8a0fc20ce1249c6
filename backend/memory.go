package backend

import "sync"

// Turn mirrors the conversation turn wire shape.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// SessionMemory holds per-session generation context. It is ephemeral;
// clients are expected to pass prior history back with each request.
type SessionMemory struct {
	History            []Turn
	LastSummary        string
	LastNewsletterHTML string
}

// MemoryStore keeps session memories in process memory.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*SessionMemory
}

// NewMemoryStore creates an empty memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*SessionMemory)}
}

// Get returns the memory for a session, creating it if needed.
// The caller must not retain the pointer across requests without Update.
func (m *MemoryStore) Get(sessionID string) *SessionMemory {
	m.mu.Lock()
	defer m.mu.Unlock()
	mem, ok := m.sessions[sessionID]
	if !ok {
		mem = &SessionMemory{}
		m.sessions[sessionID] = mem
	}
	return mem
}

// Update applies fn to the session's memory under the store lock.
func (m *MemoryStore) Update(sessionID string, fn func(*SessionMemory)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	mem, ok := m.sessions[sessionID]
	if !ok {
		mem = &SessionMemory{}
		m.sessions[sessionID] = mem
	}
	fn(mem)
}

// Window returns up to n trailing turns of the session history.
func (m *MemoryStore) Window(sessionID string, n int) []Turn {
	m.mu.Lock()
	defer m.mu.Unlock()
	mem, ok := m.sessions[sessionID]
	if !ok {
		return nil
	}
	turns := mem.History
	if len(turns) > n {
		turns = turns[len(turns)-n:]
	}
	out := make([]Turn, len(turns))
	copy(out, turns)
	return out
}
