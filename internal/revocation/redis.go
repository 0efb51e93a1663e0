package revocation

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix = "revoked:"
	// minTTL keeps entries for already-expired tokens around briefly instead of not at all.
	minTTL = time.Minute
)

// RedisLedger stores revoked token ids as keys whose TTL runs out with the token itself,
// so Redis does the sweeping.
type RedisLedger struct {
	client *redis.Client
	now    func() time.Time
}

// NewRedisLedger wraps an existing client.
func NewRedisLedger(client *redis.Client) *RedisLedger {
	return &RedisLedger{client: client, now: time.Now}
}

// Revoke records tokenID with SETNX so a second revocation keeps the original timestamp.
// The returned flag is true only for the call that created the key.
func (l *RedisLedger) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) (bool, error) {
	now := l.now()
	ttl := expiresAt.Sub(now)
	if ttl < minTTL {
		ttl = minTTL
	}
	inserted, err := l.client.SetNX(ctx, keyPrefix+tokenID, now.Unix(), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("revoke %s: %w", tokenID, err)
	}
	return inserted, nil
}

// IsRevoked reports whether tokenID was revoked. Errors are returned as-is; callers fail closed.
func (l *RedisLedger) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := l.client.Exists(ctx, keyPrefix+tokenID).Result()
	if err != nil {
		return false, fmt.Errorf("lookup %s: %w", tokenID, err)
	}
	return n > 0, nil
}

// RevokedAt returns when tokenID was first revoked.
func (l *RedisLedger) RevokedAt(ctx context.Context, tokenID string) (time.Time, bool, error) {
	val, err := l.client.Get(ctx, keyPrefix+tokenID).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	unix, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("decode revocation of %s: %w", tokenID, err)
	}
	return time.Unix(unix, 0), true, nil
}

// Ping verifies Redis connectivity.
func (l *RedisLedger) Ping(ctx context.Context) error {
	return l.client.Ping(ctx).Err()
}
