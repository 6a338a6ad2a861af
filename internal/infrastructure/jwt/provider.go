package jwtinfra

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token kinds carried in the "typ" claim.
const (
	KindSession     = "session"
	KindEmailVerify = "email_verify"
)

// Verification failures. ErrTokenExpired is reported only for tokens whose
// signature checked out.
var (
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenMalformed = errors.New("token malformed or unsigned")
)

// Claims holds the JWT payload fields.
type Claims struct {
	Kind string `json:"typ"`
	jwt.RegisteredClaims
}

// AccountID returns the account the token was issued for.
func (c *Claims) AccountID() string { return c.Subject }

// Provider signs and verifies HS256 JWTs of a single kind.
type Provider struct {
	secret []byte
	kind   string
	expiry time.Duration
	now    func() time.Time
}

func NewProvider(secret, kind string, expiry time.Duration) (*Provider, error) {
	if secret == "" {
		return nil, fmt.Errorf("empty signing secret for %s tokens", kind)
	}
	if expiry <= 0 {
		return nil, fmt.Errorf("non-positive expiry for %s tokens", kind)
	}
	return &Provider{secret: []byte(secret), kind: kind, expiry: expiry, now: time.Now}, nil
}

// WithClock returns a copy of p that reads time from now. Used in tests.
func (p *Provider) WithClock(now func() time.Time) *Provider {
	cp := *p
	cp.now = now
	return &cp
}

func (p *Provider) Sign(accountID string) (string, error) {
	now := p.now()
	claims := Claims{
		Kind: p.kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID,
			ExpiresAt: jwt.NewNumericDate(now.Add(p.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(p.secret)
}

func (p *Provider) Verify(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return p.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(p.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%s token: %w", p.kind, ErrTokenExpired)
		}
		return nil, fmt.Errorf("%s token: %w: %v", p.kind, ErrTokenMalformed, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Kind != p.kind || claims.Subject == "" {
		return nil, fmt.Errorf("%s token: %w", p.kind, ErrTokenMalformed)
	}
	return claims, nil
}
