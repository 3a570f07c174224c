package whitelist

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileStore keeps the verified set in a JSON file so a restart between a
// DM verification and the join request does not force the user to verify
// again. Losing the file is harmless — the user just verifies once more.
type FileStore struct {
	path string
	mu   sync.Mutex
}

func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure dir: %w", err)
	}
	// Touch file if not exists
	f, err := os.OpenFile(path, os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("touch file: %w", err)
	}
	_ = f.Close()
	return &FileStore{path: path}, nil
}

func (s *FileStore) Add(userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries, _ := s.loadUnlocked()
	for i, e := range entries {
		if e.UserID == userID {
			entries[i].AddedAt = time.Now().UTC()
			return s.saveUnlocked(entries)
		}
	}
	entries = append(entries, Entry{UserID: userID, AddedAt: time.Now().UTC()})
	return s.saveUnlocked(entries)
}

func (s *FileStore) Contains(userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries, _ := s.loadUnlocked()
	for _, e := range entries {
		if e.UserID == userID {
			return true
		}
	}
	return false
}

func (s *FileStore) Remove(userID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries, _ := s.loadUnlocked()
	var out []Entry
	existed := false
	for _, e := range entries {
		if e.UserID == userID {
			existed = true
			continue
		}
		out = append(out, e)
	}
	if !existed {
		return false, nil
	}
	return true, s.saveUnlocked(out)
}

func (s *FileStore) Sweep(ttl time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries, _ := s.loadUnlocked()
	cutoff := time.Now().Add(-ttl)
	var out []Entry
	for _, e := range entries {
		if !e.AddedAt.Before(cutoff) {
			out = append(out, e)
		}
	}
	n := len(entries) - len(out)
	if n > 0 {
		_ = s.saveUnlocked(out)
	}
	return n
}

func (s *FileStore) loadUnlocked() ([]Entry, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	var entries []Entry
	dec := json.NewDecoder(f)
	if err := dec.Decode(&entries); err != nil {
		if err == io.EOF {
			return []Entry{}, nil
		}
		// empty or malformed -> start fresh
		return []Entry{}, nil
	}
	return entries, nil
}

func (s *FileStore) saveUnlocked(entries []Entry) error {
	f, err := os.OpenFile(s.path, os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(entries)
}
