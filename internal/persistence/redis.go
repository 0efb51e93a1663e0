package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/shop-service/internal/config"
)

const defaultRedisDialTimeout = 5 * time.Second

// Redis holds the client backing the revocation ledger.
type Redis struct {
	Client *redis.Client
}

// NewRedis builds a pooled client and checks it once within the dial timeout. An unreachable
// server is logged rather than fatal; ledger lookups against it fail closed.
func NewRedis(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) *Redis {
	dialTimeout := time.Duration(cfg.DialTimeoutSeconds) * time.Second
	if dialTimeout <= 0 {
		dialTimeout = defaultRedisDialTimeout
	}
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		PoolSize:    cfg.PoolSize,
		DialTimeout: dialTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()
	fields := []zap.Field{zap.String("addr", cfg.Addr), zap.Int("db", cfg.DB)}
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("revocation store unreachable; refresh tokens will be refused until it recovers",
			append(fields, zap.Error(err))...)
	} else {
		logger.Info("revocation store connected", append(fields, zap.Int("pool_size", client.Options().PoolSize))...)
	}

	return &Redis{Client: client}
}

// Close releases the pool.
func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}

// Ping reports whether the revocation store answers; used by readiness.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errors.New("revocation store not configured")
	}
	return r.Client.Ping(ctx).Err()
}
