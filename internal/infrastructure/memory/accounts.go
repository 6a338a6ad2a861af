// Package memory holds process-local stores for development and tests.
// Data is lost on restart.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-accounts-api/internal/domain"
)

// AccountStore keeps accounts in a map guarded by a mutex. Email uniqueness is
// checked under the same lock as the write.
type AccountStore struct {
	mu      sync.RWMutex
	byID    map[string]domain.Account
	byEmail map[string]string
}

func NewAccountStore() *AccountStore {
	return &AccountStore{
		byID:    make(map[string]domain.Account),
		byEmail: make(map[string]string),
	}
}

func (s *AccountStore) Create(_ context.Context, a *domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.byEmail[a.Email]; taken {
		return fmt.Errorf("email already registered: %w", domain.ErrConflict)
	}
	if _, exists := s.byID[a.AccountID]; exists {
		return fmt.Errorf("account id already exists: %w", domain.ErrConflict)
	}
	s.byID[a.AccountID] = clone(*a)
	s.byEmail[a.Email] = a.AccountID
	return nil
}

func (s *AccountStore) Get(_ context.Context, accountID string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.byID[accountID]
	if !ok {
		return nil, fmt.Errorf("account not found: %w", domain.ErrNotFound)
	}
	out := clone(a)
	return &out, nil
}

func (s *AccountStore) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	s.mu.RLock()
	accountID, ok := s.byEmail[email]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("account not found: %w", domain.ErrNotFound)
	}
	return s.Get(ctx, accountID)
}

// ListNames returns every account's id and name ordered by id.
func (s *AccountStore) ListNames(_ context.Context) ([]domain.AccountName, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.AccountName, 0, len(s.byID))
	for _, a := range s.byID {
		out = append(out, domain.AccountName{AccountID: a.AccountID, Name: a.Name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AccountID < out[j].AccountID })
	return out, nil
}

func (s *AccountStore) Update(_ context.Context, accountID string, updates map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.byID[accountID]
	if !ok {
		return fmt.Errorf("account not found: %w", domain.ErrNotFound)
	}
	prevEmail := a.Email
	for k, v := range updates {
		if err := apply(&a, k, v); err != nil {
			return err
		}
	}
	if a.Email != prevEmail {
		if owner, taken := s.byEmail[a.Email]; taken && owner != accountID {
			return fmt.Errorf("email already registered: %w", domain.ErrConflict)
		}
		delete(s.byEmail, prevEmail)
		s.byEmail[a.Email] = accountID
	}
	a.UpdatedAt = time.Now().UTC()
	s.byID[accountID] = a
	return nil
}

func (s *AccountStore) Delete(_ context.Context, accountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.byID[accountID]
	if !ok {
		return fmt.Errorf("account not found: %w", domain.ErrNotFound)
	}
	delete(s.byID, accountID)
	delete(s.byEmail, a.Email)
	return nil
}

func apply(a *domain.Account, field string, v interface{}) error {
	var ok bool
	switch field {
	case domain.FieldName:
		a.Name, ok = v.(string)
	case domain.FieldEmail:
		a.Email, ok = v.(string)
	case domain.FieldPasswordHash:
		a.PasswordHash, ok = v.(string)
	case domain.FieldPhone:
		a.Phone, ok = v.(string)
	case domain.FieldAddress:
		a.Address, ok = v.(string)
	case domain.FieldGender:
		a.Gender, ok = v.(string)
	case domain.FieldHobbies:
		var h []string
		h, ok = v.([]string)
		a.Hobbies = append([]string(nil), h...)
	case domain.FieldEmailVerified:
		a.EmailVerified, ok = v.(bool)
	case domain.FieldPhoneVerified:
		a.PhoneVerified, ok = v.(bool)
	default:
		return fmt.Errorf("unknown account field %q", field)
	}
	if !ok {
		return fmt.Errorf("field %s: unexpected type %T", field, v)
	}
	return nil
}

func clone(a domain.Account) domain.Account {
	a.Hobbies = append([]string(nil), a.Hobbies...)
	return a
}
