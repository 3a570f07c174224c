package intake

import (
	"sync"
	"time"
)

// Step of the step-by-step data collection, in fixed order.
type Step int

const (
	StepName Step = iota
	StepYear
	StepClass
	StepTeacher
)

// Session holds the fields collected so far for one user. There is at
// most one session per user; starting a new one replaces it.
type Session struct {
	UserID    int64
	Step      Step
	FullName  string
	Year      int
	Klass     int
	Teacher   string
	StartedAt time.Time
}

// Store abstracts session keeping so the state machine is testable and
// swappable. Implementations must be safe for concurrent use.
type Store interface {
	Get(userID int64) (Session, bool)
	Set(s Session)
	Delete(userID int64)
}

// MemoryStore is a lock-guarded in-memory session map.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[int64]Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[int64]Session)}
}

func (m *MemoryStore) Get(userID int64) (Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[userID]
	return s, ok
}

func (m *MemoryStore) Set(s Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.UserID] = s
}

func (m *MemoryStore) Delete(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
}

// Sweep drops sessions older than ttl and returns how many were removed.
// A user who abandoned the flow mid-way starts from scratch next time.
func (m *MemoryStore) Sweep(ttl time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := time.Now().Add(-ttl)
	n := 0
	for id, s := range m.sessions {
		if s.StartedAt.Before(cutoff) {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}
