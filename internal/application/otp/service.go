// Package otp issues and redeems the six-digit phone verification code.
package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"time"

	"github.com/go-accounts-api/internal/domain"
)

// DefaultTTL is how long an issued code stays redeemable.
const DefaultTTL = 5 * time.Minute

var codeSpace = big.NewInt(1_000_000)

type Service interface {
	// Issue stores a fresh code for accountID, replacing any pending one, and
	// returns the plaintext for out-of-band delivery.
	Issue(ctx context.Context, accountID string) (string, error)
	// Redeem consumes the pending code. It returns domain.ErrOTPNotFound,
	// domain.ErrOTPExpired or domain.ErrOTPInvalid on failure.
	Redeem(ctx context.Context, accountID, presented string) error
	// RedeemWith runs commit after the code matches and before it is consumed.
	// A commit error is returned as is and leaves the code redeemable.
	RedeemWith(ctx context.Context, accountID, presented string, commit func(context.Context) error) error
	// Discard drops any pending code without redeeming it.
	Discard(ctx context.Context, accountID string) error
}

type otpStore interface {
	Upsert(ctx context.Context, rec *domain.OTPRecord) error
	Get(ctx context.Context, accountID string) (*domain.OTPRecord, error)
	DeleteIfMatch(ctx context.Context, rec *domain.OTPRecord) error
	Delete(ctx context.Context, accountID string) error
}

type hasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

type service struct {
	store  otpStore
	hasher hasher
	ttl    time.Duration
	now    func() time.Time
	rand   io.Reader
}

type ServiceDeps struct {
	Store  otpStore
	Hasher hasher
	TTL    time.Duration
	Now    func() time.Time // defaults to time.Now
	Rand   io.Reader        // defaults to crypto/rand.Reader
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		store:  deps.Store,
		hasher: deps.Hasher,
		ttl:    deps.TTL,
		now:    deps.Now,
		rand:   deps.Rand,
	}
	if s.ttl <= 0 {
		s.ttl = DefaultTTL
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.rand == nil {
		s.rand = rand.Reader
	}
	return s
}

func (s *service) Issue(ctx context.Context, accountID string) (string, error) {
	n, err := rand.Int(s.rand, codeSpace)
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	code := fmt.Sprintf("%06d", n.Int64())
	hash, err := s.hasher.Hash(code)
	if err != nil {
		return "", fmt.Errorf("hash otp: %w", err)
	}
	issued := s.now().UTC()
	rec := &domain.OTPRecord{
		AccountID: accountID,
		CodeHash:  hash,
		UpdatedAt: issued,
		ExpiresAt: s.reapAt(issued),
	}
	if err := s.store.Upsert(ctx, rec); err != nil {
		return "", err
	}
	return code, nil
}

// reapAt is when stores may drop the record: one extra TTL past the redeemable
// window, rounded up to a whole second.
func (s *service) reapAt(issued time.Time) int64 {
	return issued.Add(2 * s.ttl).Truncate(time.Second).Add(time.Second).Unix()
}

func (s *service) Redeem(ctx context.Context, accountID, presented string) error {
	return s.RedeemWith(ctx, accountID, presented, nil)
}

func (s *service) RedeemWith(ctx context.Context, accountID, presented string, commit func(context.Context) error) error {
	rec, err := s.store.Get(ctx, accountID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrOTPNotFound
		}
		return err
	}
	if s.now().After(rec.UpdatedAt.Add(s.ttl)) {
		return domain.ErrOTPExpired
	}
	if !s.hasher.Verify(presented, rec.CodeHash) {
		return domain.ErrOTPInvalid
	}
	if commit != nil {
		if err := commit(ctx); err != nil {
			return err
		}
	}
	if err := s.store.DeleteIfMatch(ctx, rec); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrOTPNotFound
		}
		return err
	}
	return nil
}

func (s *service) Discard(ctx context.Context, accountID string) error {
	return s.store.Delete(ctx, accountID)
}
