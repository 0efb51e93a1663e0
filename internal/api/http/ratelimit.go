package http

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"

	apperrors "github.com/spec-kit/shop-service/pkg/util/errorutil"
)

const defaultRateLimitCacheSize = 10_000

type visitor struct {
	limiter *rate.Limiter
}

// RateLimiter throttles requests per client IP. The LRU bounds memory; an evicted IP simply
// starts again with a full bucket.
type RateLimiter struct {
	mu       sync.Mutex
	visitors *lru.Cache[string, *visitor]
	limit    rate.Limit
	burst    int
}

// NewRateLimiter allows perMinute requests per IP with the given burst.
func NewRateLimiter(perMinute, burst, cacheSize int) *RateLimiter {
	if cacheSize <= 0 {
		cacheSize = defaultRateLimitCacheSize
	}
	if burst <= 0 {
		burst = 1
	}
	visitors, _ := lru.New[string, *visitor](cacheSize)
	limit := rate.Inf
	if perMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(perMinute))
	}
	return &RateLimiter{visitors: visitors, limit: limit, burst: burst}
}

// Allow reports whether key may proceed now.
func (l *RateLimiter) Allow(key string) bool {
	l.mu.Lock()
	v, ok := l.visitors.Get(key)
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors.Add(key, v)
	}
	l.mu.Unlock()
	return v.limiter.Allow()
}

// Handler returns fiber middleware that rejects throttled callers with 429 RATE_LIMITED.
func (l *RateLimiter) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !l.Allow(c.IP()) {
			c.Set(fiber.HeaderRetryAfter, "60")
			return apperrors.NewRateLimited("too many requests")
		}
		return c.Next()
	}
}
