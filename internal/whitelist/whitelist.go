package whitelist

import (
	"sync"
	"time"
)

// Entry marks a user whose identity was confirmed over direct messages
// and who has not yet had a join request reconciled.
type Entry struct {
	UserID  int64     `json:"user_id"`
	AddedAt time.Time `json:"added_at"`
}

// Store is the verified-user set, narrowed to what join reconciliation
// needs. Remove reports whether the entry was present, so a whitelist
// approval consumes the entry at most once. Implementations must be safe
// for concurrent use.
type Store interface {
	Add(userID int64) error
	Remove(userID int64) (bool, error)
	Sweep(ttl time.Duration) int
}

// MemoryStore keeps the set in a lock-guarded map.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[int64]Entry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[int64]Entry)}
}

func (m *MemoryStore) Add(userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[userID] = Entry{UserID: userID, AddedAt: time.Now().UTC()}
	return nil
}

func (m *MemoryStore) Contains(userID int64) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.entries[userID]
	return ok
}

func (m *MemoryStore) Remove(userID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[userID]
	delete(m.entries, userID)
	return ok, nil
}

// Sweep drops entries older than ttl: a verified user who never
// re-submitted a join request eventually has to verify again.
func (m *MemoryStore) Sweep(ttl time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := time.Now().Add(-ttl)
	n := 0
	for id, e := range m.entries {
		if e.AddedAt.Before(cutoff) {
			delete(m.entries, id)
			n++
		}
	}
	return n
}
