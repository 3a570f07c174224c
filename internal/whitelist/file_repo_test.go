package whitelist

import (
	"path/filepath"
	"testing"
	"time"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "verified.json")
	s, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("init: %v", err)
	}

	if s.Contains(1) {
		t.Fatal("fresh store not empty")
	}
	if err := s.Add(1); err != nil {
		t.Fatalf("add: %v", err)
	}
	if !s.Contains(1) {
		t.Fatal("add not effective")
	}

	// re-open: survives restart
	s2, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if !s2.Contains(1) {
		t.Fatal("entry lost on reopen")
	}

	existed, err := s2.Remove(1)
	if err != nil || !existed {
		t.Fatalf("remove: existed=%v err=%v", existed, err)
	}
	// second removal: entry already consumed
	existed, err = s2.Remove(1)
	if err != nil || existed {
		t.Fatalf("second remove: existed=%v err=%v", existed, err)
	}
}

func TestMemoryStoreConsumeOnce(t *testing.T) {
	s := NewMemoryStore()
	_ = s.Add(42)
	if ok, _ := s.Remove(42); !ok {
		t.Fatal("first remove should consume")
	}
	if ok, _ := s.Remove(42); ok {
		t.Fatal("second remove should find nothing")
	}
}

func TestMemoryStoreSweep(t *testing.T) {
	s := NewMemoryStore()
	_ = s.Add(1)
	s.entries[2] = Entry{UserID: 2, AddedAt: time.Now().Add(-10 * 24 * time.Hour)}

	if n := s.Sweep(7 * 24 * time.Hour); n != 1 {
		t.Fatalf("swept %d, want 1", n)
	}
	if !s.Contains(1) || s.Contains(2) {
		t.Fatal("sweep removed the wrong entry")
	}
}
