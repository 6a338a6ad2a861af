package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-accounts-api/internal/domain"
	"github.com/go-accounts-api/internal/pkg/validate"
)

// Result is a successful login: the account and a fresh session token.
type Result struct {
	Account *domain.Account
	Token   string
}

type Service interface {
	// Login checks credentials. Missing fields and unknown emails wrap
	// domain.ErrNotFound, malformed emails domain.ErrBadRequest and wrong
	// passwords domain.ErrForbidden.
	Login(ctx context.Context, req domain.LoginRequest) (*Result, error)
}

type accountFinder interface {
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
}

type passwordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

type tokenIssuer interface {
	IssueSession(accountID string) (string, error)
}

type service struct {
	accounts accountFinder
	hasher   passwordHasher
	tokens   tokenIssuer

	dummyOnce sync.Once
	dummy     string
}

type ServiceDeps struct {
	Accounts accountFinder
	Hasher   passwordHasher
	Tokens   tokenIssuer
}

func NewService(deps ServiceDeps) Service {
	return &service{
		accounts: deps.Accounts,
		hasher:   deps.Hasher,
		tokens:   deps.Tokens,
	}
}

func (s *service) Login(ctx context.Context, req domain.LoginRequest) (*Result, error) {
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, fmt.Errorf("email and password are required: %w", domain.ErrNotFound)
	}
	if !validate.Email(email) {
		return nil, fmt.Errorf("please enter a correct email: %w", domain.ErrBadRequest)
	}
	a, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		// Unknown emails still pay for one bcrypt comparison.
		s.hasher.Verify(req.Password, s.dummyHash())
		return nil, err
	}
	if !s.hasher.Verify(req.Password, a.PasswordHash) {
		return nil, fmt.Errorf("invalid password: %w", domain.ErrForbidden)
	}
	token, err := s.tokens.IssueSession(a.AccountID)
	if err != nil {
		return nil, fmt.Errorf("issue session token: %w", err)
	}
	return &Result{Account: a, Token: token}, nil
}

func (s *service) dummyHash() string {
	s.dummyOnce.Do(func() {
		s.dummy, _ = s.hasher.Hash("not-a-real-password")
	})
	return s.dummy
}
