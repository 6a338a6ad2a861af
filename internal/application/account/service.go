package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-accounts-api/internal/application/verification"
	"github.com/go-accounts-api/internal/domain"
	"github.com/go-accounts-api/internal/pkg/id"
	"github.com/go-accounts-api/internal/pkg/validate"
)

type Service interface {
	Register(ctx context.Context, req domain.RegisterRequest) (*domain.Account, error)
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	Get(ctx context.Context, accountID string) (*domain.Account, error)
	List(ctx context.Context) ([]domain.AccountName, error)
	Update(ctx context.Context, accountID string, req domain.UpdateAccountRequest) (*domain.Account, error)
	Delete(ctx context.Context, accountID string) error
}

type accountStore interface {
	Create(ctx context.Context, a *domain.Account) error
	Get(ctx context.Context, accountID string) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	ListNames(ctx context.Context) ([]domain.AccountName, error)
	Update(ctx context.Context, accountID string, updates map[string]interface{}) error
	Delete(ctx context.Context, accountID string) error
}

type passwordHasher interface {
	Hash(plaintext string) (string, error)
}

type otpDiscarder interface {
	Discard(ctx context.Context, accountID string) error
}

type verifier interface {
	RequestVerification(ctx context.Context, accountID string) (*verification.DispatchResult, error)
}

type service struct {
	repo       accountStore
	hasher     passwordHasher
	otps       otpDiscarder
	verifier   verifier
	autoVerify bool
	log        *slog.Logger
}

type ServiceDeps struct {
	AccountRepo accountStore
	Hasher      passwordHasher
	OTPs        otpDiscarder
	// Verifier, when set with AutoVerify, sends verification right after
	// registration. Failures are logged and do not fail the registration.
	Verifier   verifier
	AutoVerify bool
	Logger     *slog.Logger
}

func NewService(deps ServiceDeps) Service {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	return &service{
		repo:       deps.AccountRepo,
		hasher:     deps.Hasher,
		otps:       deps.OTPs,
		verifier:   deps.Verifier,
		autoVerify: deps.AutoVerify,
		log:        log,
	}
}

func (s *service) Register(ctx context.Context, req domain.RegisterRequest) (*domain.Account, error) {
	req.Email = NormalizeEmail(req.Email)
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrBadRequest, err)
	}
	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	a := &domain.Account{
		AccountID:    id.New(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Phone:        req.Phone,
		Address:      req.Address,
		Gender:       req.Gender,
		Hobbies:      dedupe(req.Hobbies),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	if s.autoVerify && s.verifier != nil {
		if _, err := s.verifier.RequestVerification(ctx, a.AccountID); err != nil {
			s.log.WarnContext(ctx, "verification after registration failed", "account_id", a.AccountID, "err", err)
		}
	}
	return a, nil
}

func (s *service) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return s.repo.GetByEmail(ctx, NormalizeEmail(email))
}

func (s *service) Get(ctx context.Context, accountID string) (*domain.Account, error) {
	if !id.Valid(accountID) {
		return nil, fmt.Errorf("invalid account id: %w", domain.ErrBadRequest)
	}
	return s.repo.Get(ctx, accountID)
}

func (s *service) List(ctx context.Context) ([]domain.AccountName, error) {
	return s.repo.ListNames(ctx)
}

// Update overwrites only the supplied fields. Verification flags are never
// changed here.
func (s *service) Update(ctx context.Context, accountID string, req domain.UpdateAccountRequest) (*domain.Account, error) {
	if !id.Valid(accountID) {
		return nil, fmt.Errorf("invalid account id: %w", domain.ErrBadRequest)
	}
	if req.Email != nil {
		normalized := NormalizeEmail(*req.Email)
		req.Email = &normalized
	}
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrBadRequest, err)
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates[domain.FieldName] = *req.Name
	}
	if req.Email != nil {
		updates[domain.FieldEmail] = *req.Email
	}
	if req.Phone != nil {
		updates[domain.FieldPhone] = *req.Phone
	}
	if req.Address != nil {
		updates[domain.FieldAddress] = *req.Address
	}
	if req.Gender != nil {
		updates[domain.FieldGender] = *req.Gender
	}
	if len(req.Hobbies) > 0 {
		updates[domain.FieldHobbies] = dedupe(req.Hobbies)
	}
	if req.Password != nil {
		hash, err := s.hasher.Hash(*req.Password)
		if err != nil {
			return nil, err
		}
		updates[domain.FieldPasswordHash] = hash
	}
	if len(updates) == 0 {
		return s.repo.Get(ctx, accountID)
	}
	if err := s.repo.Update(ctx, accountID, updates); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, accountID)
}

// Delete removes the account, then its pending code. A failure to drop the
// code is logged only; the record expires on its own.
func (s *service) Delete(ctx context.Context, accountID string) error {
	if !id.Valid(accountID) {
		return fmt.Errorf("invalid account id: %w", domain.ErrBadRequest)
	}
	if err := s.repo.Delete(ctx, accountID); err != nil {
		return err
	}
	if s.otps != nil {
		if err := s.otps.Discard(ctx, accountID); err != nil && !errors.Is(err, domain.ErrNotFound) {
			s.log.WarnContext(ctx, "failed to discard pending otp", "account_id", accountID, "err", err)
		}
	}
	return nil
}

// NormalizeEmail trims surrounding space and lower-cases the address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// dedupe drops repeated values, keeping first occurrences in order.
func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
