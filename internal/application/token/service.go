// Package token issues and checks the two bearer-token kinds: long-lived session
// tokens and short-lived email verification tokens. Each kind has its own secret.
package token

import (
	"fmt"

	"github.com/go-accounts-api/internal/domain"
	jwtinfra "github.com/go-accounts-api/internal/infrastructure/jwt"
)

type provider interface {
	Sign(accountID string) (string, error)
	Verify(tokenStr string) (*jwtinfra.Claims, error)
}

type Service interface {
	IssueSession(accountID string) (string, error)
	// VerifySession returns the token's account id. Every failure wraps
	// domain.ErrForbidden; jwtinfra.ErrTokenExpired or jwtinfra.ErrTokenMalformed
	// stay in the chain for logging.
	VerifySession(tokenStr string) (string, error)
	IssueEmailToken(accountID string) (string, error)
	VerifyEmailToken(tokenStr string) (string, error)
}

type service struct {
	session provider
	email   provider
}

func NewService(session, email provider) Service {
	return &service{session: session, email: email}
}

func (s *service) IssueSession(accountID string) (string, error) {
	return s.session.Sign(accountID)
}

func (s *service) VerifySession(tokenStr string) (string, error) {
	return verify(s.session, tokenStr)
}

func (s *service) IssueEmailToken(accountID string) (string, error) {
	return s.email.Sign(accountID)
}

func (s *service) VerifyEmailToken(tokenStr string) (string, error) {
	return verify(s.email, tokenStr)
}

func verify(p provider, tokenStr string) (string, error) {
	c, err := p.Verify(tokenStr)
	if err != nil {
		return "", fmt.Errorf("%w: %w", err, domain.ErrForbidden)
	}
	return c.AccountID(), nil
}
