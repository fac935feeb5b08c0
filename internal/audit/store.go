package audit

import (
	"context"
	"sync"
)

// Store persists audit entries. Implementations must be safe for concurrent use.
type Store interface {
	// Insert appends an entry. Entries are never updated or deleted.
	Insert(ctx context.Context, entry Entry) error
}

// MemoryStore keeps entries in memory. Used in tests and when no database is
// configured.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []Entry
}

// NewMemoryStore creates an empty in-memory audit store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Insert appends the entry.
func (s *MemoryStore) Insert(_ context.Context, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return nil
}

// Entries returns a copy of all recorded entries, oldest first.
func (s *MemoryStore) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

var _ Store = (*MemoryStore)(nil)
