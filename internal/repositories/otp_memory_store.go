package repositories

import (
	"context"
	"sync"

	"github.com/c4gt/bounce/internal/models"
)

// MemoryOTPStore keeps records in process memory. Records are lost on
// restart and are not shared between instances.
type MemoryOTPStore struct {
	mu      sync.Mutex
	records map[string]models.OTPRecord
}

func NewMemoryOTPStore() *MemoryOTPStore {
	return &MemoryOTPStore{records: make(map[string]models.OTPRecord)}
}

func (s *MemoryOTPStore) Put(_ context.Context, record *models.OTPRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[record.Identifier] = *record
	return nil
}

func (s *MemoryOTPStore) Get(_ context.Context, identifier string) (*models.OTPRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[identifier]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &record, nil
}

func (s *MemoryOTPStore) Delete(_ context.Context, record *models.OTPRecord) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.records[record.Identifier]
	if !ok || !current.SameIssue(record) {
		return false, nil
	}
	delete(s.records, record.Identifier)
	return true, nil
}

// Len returns the number of stored records.
func (s *MemoryOTPStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.records)
}
