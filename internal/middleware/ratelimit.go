package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RedisRateLimiter is a fixed-window counter shared across all instances of
// the service, keyed by caller identity. It replaces the older in-process
// map, which stopped limiting anything once the service scaled horizontally.
type RedisRateLimiter struct {
	rdb    *redis.Client
	limit  int
	window time.Duration
}

func NewRedisRateLimiter(rdb *redis.Client, limit int, window time.Duration) *RedisRateLimiter {
	return &RedisRateLimiter{rdb: rdb, limit: limit, window: window}
}

// Allow increments the caller's counter and reports whether it is within the
// limit. Fails open when Redis is unreachable: limiting is protective, it
// must not take the service down with it.
func (r *RedisRateLimiter) Allow(c *gin.Context, key string) bool {
	redisKey := fmt.Sprintf("ratelimit:%s", key)
	n, err := r.rdb.Incr(c.Request.Context(), redisKey).Result()
	if err != nil {
		logrus.WithError(err).Warn("rate limiter: redis unavailable, allowing request")
		return true
	}
	if n == 1 {
		r.rdb.Expire(c.Request.Context(), redisKey, r.window)
	}
	return n <= int64(r.limit)
}

// RateLimit limits by authenticated profile when present, client IP otherwise.
func RateLimit(limiter *RedisRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if id := GetProfileID(c); id != 0 {
			key = fmt.Sprintf("profile:%d", id)
		}
		if !limiter.Allow(c, key) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
