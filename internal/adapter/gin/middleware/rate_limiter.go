package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RateLimiterConfig holds the token bucket parameters.
type RateLimiterConfig struct {
	Enabled           bool
	RequestsPerSecond float64
	BurstCapacity     int
}

// Token bucket implemented in Lua so refill and consume are atomic.
// Bucket state: {last_refill_time, current_tokens}.
const tokenBucketScript = `
	local key = KEYS[1]
	local rate = tonumber(ARGV[1])
	local capacity = tonumber(ARGV[2])
	local now = tonumber(ARGV[3])
	local requested = tonumber(ARGV[4])

	local bucket = redis.call('HMGET', key, 'last_refill', 'tokens')
	local last_refill = tonumber(bucket[1]) or now
	local tokens = tonumber(bucket[2]) or capacity

	local elapsed = math.max(0, now - last_refill)
	tokens = math.min(capacity, tokens + elapsed * rate)

	if tokens >= requested then
		tokens = tokens - requested
		redis.call('HMSET', key, 'last_refill', now, 'tokens', tokens)
		redis.call('EXPIRE', key, 60)
		return 1
	end
	redis.call('HMSET', key, 'last_refill', now, 'tokens', tokens)
	redis.call('EXPIRE', key, 60)
	return 0
`

// RateLimiter returns a middleware limiting each (method, path, client IP)
// to a token bucket in Redis. Redis failures fail open.
func RateLimiter(redisClient *redis.Client, cfg RateLimiterConfig, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cfg.Enabled || redisClient == nil {
			c.Next()
			return
		}

		key := fmt.Sprintf("ratelimit:tb:%s:%s:%s", c.Request.Method, c.Request.URL.Path, c.ClientIP())
		now := float64(redisClient.Time(c.Request.Context()).Val().Unix())

		allowed, err := redisClient.Eval(c.Request.Context(), tokenBucketScript, []string{key},
			cfg.RequestsPerSecond,
			cfg.BurstCapacity,
			now,
			1,
		).Int64()
		if err != nil {
			log.Warn("rate limiter unavailable, allowing request", zap.Error(err))
			c.Next()
			return
		}

		if allowed == 0 {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"detail": "Request was throttled.",
			})
			return
		}

		c.Next()
	}
}
