package middlewares

import (
	"context"
	"net/http"
	"sync"
	"time"

	"cityfixer-be/config"
	"cityfixer-be/metrics"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// IssueLimiter decides whether key may submit another issue in the current window.
type IssueLimiter interface {
	Allow(ctx context.Context, key string) (bool, time.Duration, error)
}

// RedisLimiter counts submissions per key in Redis with a fixed window.
type RedisLimiter struct {
	client *redis.Client
	prefix string
	limit  int64
	window time.Duration
}

func NewRedisLimiter(client *redis.Client, prefix string, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, prefix: prefix, limit: int64(limit), window: window}
}

// Allow increments key's counter and sets the window TTL if the key has none.
// Both run in one MULTI, so a counted key is never left without an expiry.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	userKey := l.prefix + ":" + key

	var (
		incr *redis.IntCmd
		ttl  *redis.DurationCmd
	)
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, userKey)
		pipe.ExpireNX(ctx, userKey, l.window)
		ttl = pipe.TTL(ctx, userKey)
		return nil
	})
	if err != nil {
		return false, 0, err
	}

	if incr.Val() > l.limit {
		retryAfter := ttl.Val()
		if retryAfter <= 0 {
			retryAfter = l.window
		}
		return false, retryAfter, nil
	}
	return true, 0, nil
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// MemoryLimiter is a token bucket per key, used when Redis is not configured.
// A key idle for a full window has a refilled bucket, so it is dropped.
type MemoryLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	every     time.Duration
	burst     int
	window    time.Duration
	lastSweep time.Time
	now       func() time.Time
}

// NewMemoryLimiter allows limit submissions per window per key, refilling evenly.
func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		visitors:  make(map[string]*visitor),
		every:     window / time.Duration(limit),
		burst:     limit,
		window:    window,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= l.window {
		for k, v := range l.visitors {
			if now.Sub(v.lastSeen) >= l.window {
				delete(l.visitors, k)
			}
		}
		l.lastSweep = now
	}

	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rate.Every(l.every), l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = now

	if v.limiter.AllowN(now, 1) {
		return true, 0, nil
	}
	return false, l.every, nil
}

// IssueRateLimiter rejects issue submissions from a client IP once its limiter is exhausted.
func IssueRateLimiter(limiter IssueLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		allowed, retryAfter, err := limiter.Allow(ctx, c.ClientIP())
		if err != nil {
			config.LogError(config.GetLogger(), "middlewares", "IssueRateLimiter", "limiter.Allow", c.ClientIP(), err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "rate limiter unavailable"})
			return
		}

		if !allowed {
			metrics.RateLimited.Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"message":     "rate limit exceeded",
				"retry_after": retryAfter.Seconds(),
			})
			return
		}

		c.Next()
	}
}
