package token

import (
	"testing"
	"time"

	"github.com/go-accounts-api/internal/domain"
	jwtinfra "github.com/go-accounts-api/internal/infrastructure/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, now time.Time) Service {
	t.Helper()
	session, err := jwtinfra.NewProvider("session-secret", jwtinfra.KindSession, 7*24*time.Hour)
	require.NoError(t, err)
	email, err := jwtinfra.NewProvider("email-secret", jwtinfra.KindEmailVerify, 5*time.Minute)
	require.NoError(t, err)
	clock := func() time.Time { return now }
	return NewService(session.WithClock(clock), email.WithClock(clock))
}

func TestSession_RoundTrip(t *testing.T) {
	svc := newTestService(t, t0)
	tok, err := svc.IssueSession("acct-1")
	require.NoError(t, err)

	got, err := svc.VerifySession(tok)
	require.NoError(t, err)
	assert.Equal(t, "acct-1", got)
}

func TestSession_ValidForSevenDays(t *testing.T) {
	tok, err := newTestService(t, t0).IssueSession("acct-1")
	require.NoError(t, err)

	_, err = newTestService(t, t0.Add(7*24*time.Hour-time.Second)).VerifySession(tok)
	assert.NoError(t, err)

	_, err = newTestService(t, t0.Add(7*24*time.Hour+time.Second)).VerifySession(tok)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.ErrorIs(t, err, jwtinfra.ErrTokenExpired)
}

func TestEmailToken_ExpiresAfterFiveMinutes(t *testing.T) {
	tok, err := newTestService(t, t0).IssueEmailToken("acct-1")
	require.NoError(t, err)

	got, err := newTestService(t, t0.Add(4*time.Minute)).VerifyEmailToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "acct-1", got)

	_, err = newTestService(t, t0.Add(5*time.Minute+time.Second)).VerifyEmailToken(tok)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestTokenKindsAreNotInterchangeable(t *testing.T) {
	svc := newTestService(t, t0)
	session, err := svc.IssueSession("acct-1")
	require.NoError(t, err)
	email, err := svc.IssueEmailToken("acct-1")
	require.NoError(t, err)

	_, err = svc.VerifyEmailToken(session)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = svc.VerifySession(email)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestVerifySession_Malformed(t *testing.T) {
	_, err := newTestService(t, t0).VerifySession("garbage")
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.ErrorIs(t, err, jwtinfra.ErrTokenMalformed)
}
