package http

import (
	"context"

	"github.com/go-accounts-api/internal/domain"
)

// AccountRepository is the minimal interface the router requires from an account store.
type AccountRepository interface {
	Create(ctx context.Context, a *domain.Account) error
	Get(ctx context.Context, accountID string) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	ListNames(ctx context.Context) ([]domain.AccountName, error)
	Update(ctx context.Context, accountID string, updates map[string]interface{}) error
	Delete(ctx context.Context, accountID string) error
}

// OTPRepository is the minimal interface the router requires from an OTP store.
// DeleteIfMatch must be atomic.
type OTPRepository interface {
	Upsert(ctx context.Context, rec *domain.OTPRecord) error
	Get(ctx context.Context, accountID string) (*domain.OTPRecord, error)
	DeleteIfMatch(ctx context.Context, rec *domain.OTPRecord) error
	Delete(ctx context.Context, accountID string) error
}

// Mailer is the outbound mail transport.
type Mailer interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// SMSSender is the outbound SMS transport.
type SMSSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

// PasswordHasher hashes and checks passwords and OTP codes.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}
