package memory

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"doc-session-be/internal/entity"
)

// Exchange is one completed question/answer turn.
type Exchange struct {
	Query     string
	Answer    string
	Type      entity.ResponseType
	CreatedAt time.Time
}

// SessionMemory is a bounded sliding window of the most recent exchanges
// for one session. When the window is full the oldest entry is evicted.
type SessionMemory struct {
	mu       sync.Mutex
	capacity int
	entries  []Exchange
}

func NewSessionMemory(capacity int) *SessionMemory {
	if capacity <= 0 {
		capacity = 1
	}
	return &SessionMemory{
		capacity: capacity,
		entries:  make([]Exchange, 0, capacity),
	}
}

func (m *SessionMemory) Add(exchange Exchange) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.entries) == m.capacity {
		copy(m.entries, m.entries[1:])
		m.entries = m.entries[:m.capacity-1]
	}
	m.entries = append(m.entries, exchange)
}

// Recent returns up to n most recent exchanges, oldest first.
func (m *SessionMemory) Recent(n int) []Exchange {
	m.mu.Lock()
	defer m.mu.Unlock()

	if n <= 0 || n > len(m.entries) {
		n = len(m.entries)
	}
	out := make([]Exchange, n)
	copy(out, m.entries[len(m.entries)-n:])
	return out
}

func (m *SessionMemory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Store holds one SessionMemory per session. Memory is created lazily and
// dropped when the session closes or expires.
type Store struct {
	mu       sync.Mutex
	capacity int
	memories map[uuid.UUID]*SessionMemory
}

func NewStore(capacity int) *Store {
	return &Store{
		capacity: capacity,
		memories: make(map[uuid.UUID]*SessionMemory),
	}
}

func (s *Store) ForSession(sessionId uuid.UUID) *SessionMemory {
	s.mu.Lock()
	defer s.mu.Unlock()

	mem, ok := s.memories[sessionId]
	if !ok {
		mem = NewSessionMemory(s.capacity)
		s.memories[sessionId] = mem
	}
	return mem
}

func (s *Store) Drop(sessionId uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.memories, sessionId)
}
