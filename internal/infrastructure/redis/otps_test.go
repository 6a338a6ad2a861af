package redis

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-accounts-api/internal/application/otp"
	"github.com/go-accounts-api/internal/domain"
	"github.com/go-accounts-api/internal/pkg/password"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestRepo(t *testing.T) (*OTPRepo, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewOTPRepo(rdb), mr
}

func record(accountID, hash string, issued time.Time) *domain.OTPRecord {
	return &domain.OTPRecord{
		AccountID: accountID,
		CodeHash:  hash,
		UpdatedAt: issued,
		ExpiresAt: issued.Add(5 * time.Minute).Unix(),
	}
}

func TestOTPRepo_UpsertThenGet(t *testing.T) {
	repo, mr := newTestRepo(t)
	issued := time.Now().UTC().Truncate(time.Millisecond).Add(123 * time.Nanosecond)

	require.NoError(t, repo.Upsert(context.Background(), record("a1", "h1", issued)))

	rec, err := repo.Get(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, "h1", rec.CodeHash)
	assert.True(t, rec.UpdatedAt.Equal(issued))
	assert.True(t, mr.TTL("otp:a1") > 0)
}

func TestOTPRepo_Get_MissingIsNotFound(t *testing.T) {
	repo, _ := newTestRepo(t)
	_, err := repo.Get(context.Background(), "a1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOTPRepo_UpsertReplacesPreviousRecord(t *testing.T) {
	repo, _ := newTestRepo(t)
	first := record("a1", "h1", time.Now().UTC())
	second := record("a1", "h2", first.UpdatedAt.Add(time.Second))
	require.NoError(t, repo.Upsert(context.Background(), first))
	require.NoError(t, repo.Upsert(context.Background(), second))

	assert.ErrorIs(t, repo.DeleteIfMatch(context.Background(), first), domain.ErrNotFound)
	assert.NoError(t, repo.DeleteIfMatch(context.Background(), second))

	_, err := repo.Get(context.Background(), "a1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOTPRepo_DeleteIfMatch_OnlyOneWinner(t *testing.T) {
	repo, _ := newTestRepo(t)
	rec := record("a1", "h1", time.Now().UTC())
	require.NoError(t, repo.Upsert(context.Background(), rec))

	const n = 8
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- repo.DeleteIfMatch(context.Background(), rec)
		}()
	}
	wg.Wait()
	close(errs)

	var ok int
	for err := range errs {
		if err == nil {
			ok++
		} else {
			assert.ErrorIs(t, err, domain.ErrNotFound)
		}
	}
	assert.Equal(t, 1, ok)
}

func TestOTPRepo_Delete(t *testing.T) {
	repo, mr := newTestRepo(t)
	require.NoError(t, repo.Upsert(context.Background(), record("a1", "h1", time.Now().UTC())))
	require.NoError(t, repo.Delete(context.Background(), "a1"))
	assert.False(t, mr.Exists("otp:a1"))
	// deleting again is not an error
	assert.NoError(t, repo.Delete(context.Background(), "a1"))
}

func newOTPService(t *testing.T) (otp.Service, *miniredis.Miniredis, *time.Time) {
	t.Helper()
	repo, mr := newTestRepo(t)
	now := time.Now().UTC()
	mr.SetTime(now)
	svc := otp.NewService(otp.ServiceDeps{
		Store:  repo,
		Hasher: password.NewHasher(bcrypt.MinCost),
		TTL:    otp.DefaultTTL,
		Now:    func() time.Time { return now },
	})
	return svc, mr, &now
}

func TestOTPRepo_ExpiredCodeIsReportedExpired(t *testing.T) {
	svc, mr, now := newOTPService(t)
	code, err := svc.Issue(context.Background(), "a1")
	require.NoError(t, err)

	*now = now.Add(5*time.Minute + time.Second)
	mr.FastForward(5*time.Minute + time.Second)

	err = svc.Redeem(context.Background(), "a1", code)
	assert.ErrorIs(t, err, domain.ErrOTPExpired)
	assert.True(t, mr.Exists("otp:a1"))
}

func TestOTPRepo_CodeRedeemableAtWindowEnd(t *testing.T) {
	svc, mr, now := newOTPService(t)
	code, err := svc.Issue(context.Background(), "a1")
	require.NoError(t, err)

	*now = now.Add(5 * time.Minute)
	mr.FastForward(5 * time.Minute)

	assert.NoError(t, svc.Redeem(context.Background(), "a1", code))
}

func TestOTPRepo_KeyReapedAfterGrace(t *testing.T) {
	svc, mr, now := newOTPService(t)
	code, err := svc.Issue(context.Background(), "a1")
	require.NoError(t, err)

	*now = now.Add(11 * time.Minute)
	mr.FastForward(11 * time.Minute)

	assert.False(t, mr.Exists("otp:a1"))
	assert.ErrorIs(t, svc.Redeem(context.Background(), "a1", code), domain.ErrOTPNotFound)
}
