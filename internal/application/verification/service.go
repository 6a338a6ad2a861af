// Package verification moves an account's email and phone channels from
// unverified to verified. Each channel changes state at most once.
package verification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-accounts-api/internal/domain"
)

// ChannelStatus reports what RequestVerification did for one channel.
type ChannelStatus string

const (
	ChannelSent    ChannelStatus = "sent"
	ChannelFailed  ChannelStatus = "failed"
	ChannelSkipped ChannelStatus = "already_verified"
)

// DispatchResult is the per-channel outcome of RequestVerification.
type DispatchResult struct {
	Email ChannelStatus `json:"email"`
	Phone ChannelStatus `json:"phone"`
}

// PhoneOutcome is the non-error result of ConfirmPhone.
type PhoneOutcome string

const (
	PhoneVerified        PhoneOutcome = "verified"
	PhoneAlreadyVerified PhoneOutcome = "already_verified"
	PhoneNoPendingCode   PhoneOutcome = "no_pending_code"
	PhoneAccountGone     PhoneOutcome = "account_gone"
)

type Service interface {
	// RequestVerification sends an email link and/or an SMS code for each
	// channel that is still unverified.
	RequestVerification(ctx context.Context, accountID string) (*DispatchResult, error)
	ConfirmEmail(ctx context.Context, accountID, token string) error
	ConfirmPhone(ctx context.Context, accountID, code string) (PhoneOutcome, error)
}

type accountStore interface {
	Get(ctx context.Context, accountID string) (*domain.Account, error)
	Update(ctx context.Context, accountID string, updates map[string]interface{}) error
}

type otpEngine interface {
	Issue(ctx context.Context, accountID string) (string, error)
	RedeemWith(ctx context.Context, accountID, presented string, commit func(context.Context) error) error
}

type emailTokens interface {
	IssueEmailToken(accountID string) (string, error)
	VerifyEmailToken(tokenStr string) (string, error)
}

type dispatcher interface {
	SendEmailVerification(ctx context.Context, a *domain.Account, token string) error
	SendPhoneOTP(ctx context.Context, a *domain.Account, code string) error
}

type service struct {
	accounts   accountStore
	otps       otpEngine
	tokens     emailTokens
	dispatcher dispatcher
	log        *slog.Logger
}

type ServiceDeps struct {
	Accounts   accountStore
	OTPs       otpEngine
	Tokens     emailTokens
	Dispatcher dispatcher
	Logger     *slog.Logger
}

func NewService(deps ServiceDeps) Service {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	return &service{
		accounts:   deps.Accounts,
		otps:       deps.OTPs,
		tokens:     deps.Tokens,
		dispatcher: deps.Dispatcher,
		log:        log,
	}
}

func (s *service) RequestVerification(ctx context.Context, accountID string) (*DispatchResult, error) {
	a, err := s.accounts.Get(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if a.FullyVerified() {
		return nil, domain.ErrAlreadyFullyVerified
	}

	res := &DispatchResult{Email: ChannelSkipped, Phone: ChannelSkipped}
	var errs []error
	if !a.EmailVerified {
		if err := s.sendEmail(ctx, a); err != nil {
			s.log.WarnContext(ctx, "email verification not delivered", "account_id", accountID, "err", err)
			res.Email = ChannelFailed
			errs = append(errs, err)
		} else {
			res.Email = ChannelSent
		}
	}
	if !a.PhoneVerified {
		if err := s.sendPhone(ctx, a); err != nil {
			s.log.WarnContext(ctx, "phone verification not delivered", "account_id", accountID, "err", err)
			res.Phone = ChannelFailed
			errs = append(errs, err)
		} else {
			res.Phone = ChannelSent
		}
	}

	attempted := 0
	for _, st := range []ChannelStatus{res.Email, res.Phone} {
		if st != ChannelSkipped {
			attempted++
		}
	}
	if attempted > 0 && len(errs) == attempted {
		return res, fmt.Errorf("no verification channel delivered: %w: %w", domain.ErrDelivery, errors.Join(errs...))
	}
	return res, nil
}

func (s *service) sendEmail(ctx context.Context, a *domain.Account) error {
	token, err := s.tokens.IssueEmailToken(a.AccountID)
	if err != nil {
		return fmt.Errorf("issue email token: %w", err)
	}
	return s.dispatcher.SendEmailVerification(ctx, a, token)
}

// sendPhone stores a fresh code before texting it. The code stays stored when
// delivery fails.
func (s *service) sendPhone(ctx context.Context, a *domain.Account) error {
	code, err := s.otps.Issue(ctx, a.AccountID)
	if err != nil {
		return fmt.Errorf("issue otp: %w", err)
	}
	return s.dispatcher.SendPhoneOTP(ctx, a, code)
}

func (s *service) ConfirmEmail(ctx context.Context, accountID, token string) error {
	a, err := s.accounts.Get(ctx, accountID)
	if err != nil {
		return err
	}
	if a.EmailVerified {
		return fmt.Errorf("email: %w", domain.ErrAlreadyVerified)
	}
	subject, err := s.tokens.VerifyEmailToken(token)
	if err != nil {
		return err
	}
	if subject != accountID {
		return fmt.Errorf("email token issued for another account: %w", domain.ErrForbidden)
	}
	return s.accounts.Update(ctx, accountID, map[string]interface{}{domain.FieldEmailVerified: true})
}

func (s *service) ConfirmPhone(ctx context.Context, accountID, code string) (PhoneOutcome, error) {
	a, err := s.accounts.Get(ctx, accountID)
	if errors.Is(err, domain.ErrNotFound) {
		return PhoneAccountGone, nil
	}
	if err != nil {
		return "", err
	}
	if a.PhoneVerified {
		return PhoneAlreadyVerified, nil
	}
	// The flag is set before the code is consumed, so a failed write leaves
	// the code redeemable.
	var gone bool
	err = s.otps.RedeemWith(ctx, accountID, code, func(ctx context.Context) error {
		err := s.accounts.Update(ctx, accountID, map[string]interface{}{domain.FieldPhoneVerified: true})
		gone = errors.Is(err, domain.ErrNotFound)
		return err
	})
	switch {
	case gone:
		return PhoneAccountGone, nil
	case errors.Is(err, domain.ErrOTPNotFound):
		return PhoneNoPendingCode, nil
	case err != nil:
		return "", err
	}
	return PhoneVerified, nil
}
