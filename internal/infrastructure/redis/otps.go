package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-accounts-api/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix = "otp:"

	hashField      = "code_hash"
	issuedAtField  = "updated_at"
	expiresAtField = "expires_at"
)

// deleteIfMatch removes KEYS[1] only while it still holds the given hash and
// issue time. Returns 1 when deleted.
var deleteIfMatch = redis.NewScript(`
if redis.call("HGET", KEYS[1], "code_hash") == ARGV[1]
	and redis.call("HGET", KEYS[1], "updated_at") == ARGV[2] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// OTPRepo keeps one hash per account under otp:<account id>. Keys expire at
// the record's ExpiresAt.
type OTPRepo struct {
	rdb redis.Cmdable
}

func NewOTPRepo(rdb redis.Cmdable) *OTPRepo {
	return &OTPRepo{rdb: rdb}
}

func (r *OTPRepo) Upsert(ctx context.Context, rec *domain.OTPRecord) error {
	key := keyPrefix + rec.AccountID
	_, err := r.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, key)
		p.HSet(ctx, key,
			hashField, rec.CodeHash,
			issuedAtField, formatTime(rec.UpdatedAt),
			expiresAtField, rec.ExpiresAt,
		)
		if rec.ExpiresAt > 0 {
			p.ExpireAt(ctx, key, time.Unix(rec.ExpiresAt, 0))
		}
		return nil
	})
	return err
}

func (r *OTPRepo) Get(ctx context.Context, accountID string) (*domain.OTPRecord, error) {
	vals, err := r.rdb.HGetAll(ctx, keyPrefix+accountID).Result()
	if err != nil {
		return nil, err
	}
	if len(vals) == 0 {
		return nil, fmt.Errorf("otp not found: %w", domain.ErrNotFound)
	}
	issuedAt, err := time.Parse(time.RFC3339Nano, vals[issuedAtField])
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", issuedAtField, err)
	}
	expiresAt, err := strconv.ParseInt(vals[expiresAtField], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", expiresAtField, err)
	}
	return &domain.OTPRecord{
		AccountID: accountID,
		CodeHash:  vals[hashField],
		UpdatedAt: issuedAt,
		ExpiresAt: expiresAt,
	}, nil
}

func (r *OTPRepo) DeleteIfMatch(ctx context.Context, rec *domain.OTPRecord) error {
	n, err := deleteIfMatch.Run(ctx, r.rdb,
		[]string{keyPrefix + rec.AccountID},
		rec.CodeHash, formatTime(rec.UpdatedAt),
	).Int()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	if n == 0 {
		return fmt.Errorf("otp already consumed or replaced: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *OTPRepo) Delete(ctx context.Context, accountID string) error {
	return r.rdb.Del(ctx, keyPrefix+accountID).Err()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
