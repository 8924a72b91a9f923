package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/theoboldt/juvem-sub001/pkg/logger"
	pkgredis "github.com/theoboldt/juvem-sub001/pkg/redis"
	"github.com/theoboldt/juvem-sub001/pkg/response"
)

// Limiter decides whether the client identified by key may proceed
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	// Limit is the number of requests per Window (0 = unlimited)
	Limit  int
	Window time.Duration
	// KeyPrefix namespaces Redis keys
	KeyPrefix string
}

type windowEntry struct {
	start time.Time
	count int
}

// LocalRateLimiter is an in-process fixed window limiter
type LocalRateLimiter struct {
	config  RateLimitConfig
	mu      sync.Mutex
	entries map[string]*windowEntry
	now     func() time.Time
}

// NewLocalRateLimiter creates a new local rate limiter
func NewLocalRateLimiter(config RateLimitConfig) *LocalRateLimiter {
	if config.Window <= 0 {
		config.Window = time.Minute
	}
	return &LocalRateLimiter{config: config, entries: make(map[string]*windowEntry), now: time.Now}
}

func (rl *LocalRateLimiter) Allow(_ context.Context, key string) (bool, error) {
	if rl.config.Limit <= 0 {
		return true, nil
	}
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	e, ok := rl.entries[key]
	if !ok || now.Sub(e.start) >= rl.config.Window {
		rl.evictExpired(now)
		e = &windowEntry{start: now}
		rl.entries[key] = e
	}
	if e.count >= rl.config.Limit {
		return false, nil
	}
	e.count++
	return true, nil
}

func (rl *LocalRateLimiter) evictExpired(now time.Time) {
	for k, e := range rl.entries {
		if now.Sub(e.start) >= rl.config.Window {
			delete(rl.entries, k)
		}
	}
}

const fixedWindowScriptName = "ratelimit_fixed_window"

const fixedWindowScript = `
local count = redis.call("INCR", KEYS[1])
if count == 1 then
    redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
if count > tonumber(ARGV[1]) then
    return 0
end
return 1
`

// RedisRateLimiter implements a fixed window limiter shared by all instances
type RedisRateLimiter struct {
	config RateLimitConfig
	client *pkgredis.Client
}

// NewRedisRateLimiter loads the window script and returns the limiter
func NewRedisRateLimiter(ctx context.Context, client *pkgredis.Client, config RateLimitConfig) (*RedisRateLimiter, error) {
	if config.Window <= 0 {
		config.Window = time.Minute
	}
	if err := client.LoadScript(ctx, fixedWindowScriptName, fixedWindowScript); err != nil {
		return nil, err
	}
	return &RedisRateLimiter{config: config, client: client}, nil
}

func (rl *RedisRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	if rl.config.Limit <= 0 {
		return true, nil
	}
	allowed, err := rl.client.EvalShaByName(ctx, fixedWindowScriptName,
		[]string{rl.config.KeyPrefix + key},
		rl.config.Limit, rl.config.Window.Milliseconds(),
	).Int64()
	if err != nil {
		return false, err
	}
	return allowed == 1, nil
}

// RateLimiter limits requests per client IP. Limiter errors fail open.
// config describes the limiter and only feeds the response headers.
func RateLimiter(limiter Limiter, config RateLimitConfig, log *logger.Logger) gin.HandlerFunc {
	limit := strconv.Itoa(config.Limit)
	retryAfter := strconv.Itoa(retryAfterSeconds(config.Window))
	return func(c *gin.Context) {
		allowed, err := limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			log.WarnContext(c.Request.Context(), "rate limiter unavailable", zap.Error(err))
			allowed = true
		}

		c.Header("X-RateLimit-Limit", limit)

		if !allowed {
			c.Header("Retry-After", retryAfter)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, response.TooManyRequests(""))
			return
		}

		c.Next()
	}
}

// retryAfterSeconds is the window rounded up to whole seconds; an unset
// window is the limiters' one minute default
func retryAfterSeconds(window time.Duration) int {
	if window <= 0 {
		window = time.Minute
	}
	return int(math.Ceil(window.Seconds()))
}
