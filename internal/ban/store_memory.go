package ban

import (
	"context"
	"sync"

	dErrors "scoregate/pkg/domain-errors"
)

// MemoryStore is an in-process Store for single-node deployments and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

func (s *MemoryStore) Upsert(_ context.Context, record Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[record.AccountID]; exists {
		return nil
	}
	s.records[record.AccountID] = record
	return nil
}

func (s *MemoryStore) Get(_ context.Context, accountID string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[accountID]
	if !ok {
		return Record{}, dErrors.New(dErrors.CodeNotFound, "account not banned")
	}
	return record, nil
}

func (s *MemoryStore) Delete(_ context.Context, accountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, accountID)
	return nil
}

var _ Store = (*MemoryStore)(nil)
