// Package notification renders and delivers verification messages over mail
// and SMS.
package notification

import (
	"bytes"
	"context"
	"fmt"
	"text/template"
	"time"

	"github.com/go-accounts-api/internal/domain"
	"github.com/go-accounts-api/internal/pkg/pathcodec"
)

// RoutePrefix is where the verification endpoints are mounted.
const RoutePrefix = "/api/v1/auth"

var (
	emailTmpl = template.Must(template.New("email").Parse(
		`Hello {{.Name}},

Please confirm your email address by opening the link below while signed in:

{{.Link}}

The link expires in {{.TTL}}. If you did not create an account, ignore this message.
`))

	smsTmpl = template.Must(template.New("sms").Parse(
		`Your verification code is {{.Code}}. It expires in {{.TTL}}. {{.Link}}`))
)

const emailSubject = "Verify your email address"

type Service interface {
	SendEmailVerification(ctx context.Context, a *domain.Account, token string) error
	SendPhoneOTP(ctx context.Context, a *domain.Account, code string) error
}

type mailer interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

type smsSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

type service struct {
	mailer   mailer
	sms      smsSender
	baseURL  string
	timeout  time.Duration
	tokenTTL time.Duration
	codeTTL  time.Duration
}

type ServiceDeps struct {
	Mailer  mailer
	SMS     smsSender
	BaseURL string
	// Timeout bounds each delivery. Zero means no extra bound.
	Timeout  time.Duration
	TokenTTL time.Duration
	CodeTTL  time.Duration
}

func NewService(deps ServiceDeps) Service {
	return &service{
		mailer:   deps.Mailer,
		sms:      deps.SMS,
		baseURL:  deps.BaseURL,
		timeout:  deps.Timeout,
		tokenTTL: deps.TokenTTL,
		codeTTL:  deps.CodeTTL,
	}
}

func (s *service) SendEmailVerification(ctx context.Context, a *domain.Account, token string) error {
	body, err := render(emailTmpl, map[string]string{
		"Name": a.Name,
		"Link": s.baseURL + RoutePrefix + "/verifyemail/" + token,
		"TTL":  humanize(s.tokenTTL),
	})
	if err != nil {
		return err
	}
	ctx, cancel := s.bound(ctx)
	defer cancel()
	if err := s.mailer.SendEmail(ctx, a.Email, emailSubject, body); err != nil {
		return fmt.Errorf("send verification email: %w: %w", domain.ErrDelivery, err)
	}
	return nil
}

// SendPhoneOTP texts the code and a link carrying the path-encoded code.
func (s *service) SendPhoneOTP(ctx context.Context, a *domain.Account, code string) error {
	body, err := render(smsTmpl, map[string]string{
		"Code": code,
		"Link": s.baseURL + RoutePrefix + "/verifyotp/" + pathcodec.Encode(code),
		"TTL":  humanize(s.codeTTL),
	})
	if err != nil {
		return err
	}
	ctx, cancel := s.bound(ctx)
	defer cancel()
	if err := s.sms.SendSMS(ctx, a.Phone, body); err != nil {
		return fmt.Errorf("send verification sms: %w: %w", domain.ErrDelivery, err)
	}
	return nil
}

func (s *service) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func render(t *template.Template, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s template: %w", t.Name(), err)
	}
	return buf.String(), nil
}

func humanize(d time.Duration) string {
	switch {
	case d <= 0:
		return "a few minutes"
	case d%time.Hour == 0 && d >= time.Hour:
		return plural(int(d/time.Hour), "hour")
	case d%time.Minute == 0 && d >= time.Minute:
		return plural(int(d/time.Minute), "minute")
	default:
		return d.String()
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
