package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-accounts-api/internal/domain"
)

// OTPStore keeps at most one pending code per account.
type OTPStore struct {
	mu      sync.Mutex
	records map[string]domain.OTPRecord
}

func NewOTPStore() *OTPStore {
	return &OTPStore{records: make(map[string]domain.OTPRecord)}
}

func (s *OTPStore) Upsert(_ context.Context, rec *domain.OTPRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.AccountID] = *rec
	return nil
}

func (s *OTPStore) Get(_ context.Context, accountID string) (*domain.OTPRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[accountID]
	if !ok {
		return nil, fmt.Errorf("otp not found: %w", domain.ErrNotFound)
	}
	return &rec, nil
}

// DeleteIfMatch removes the record only if it is still exactly rec.
func (s *OTPStore) DeleteIfMatch(_ context.Context, rec *domain.OTPRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.records[rec.AccountID]
	if !ok || cur.CodeHash != rec.CodeHash || !cur.UpdatedAt.Equal(rec.UpdatedAt) {
		return fmt.Errorf("otp already consumed or replaced: %w", domain.ErrNotFound)
	}
	delete(s.records, rec.AccountID)
	return nil
}

func (s *OTPStore) Delete(_ context.Context, accountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, accountID)
	return nil
}

// Len returns the number of pending records.
func (s *OTPStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}
