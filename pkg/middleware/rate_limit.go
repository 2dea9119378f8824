package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimitMiddleware enforces a fixed-window request budget per caller and
// route. Counters live in redis under postpilot:ratelimit:* so the budget
// holds across service replicas. Callers are keyed by user once
// AuthMiddleware has run, by client IP before that.
//
// When redis is unreachable the limiter fails open: requests pass unthrottled
// rather than every service going down with the cache.
func RateLimitMiddleware(redisClient *redis.Client, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := c.ClientIP()
		if userID, ok := c.Get("user_id"); ok {
			caller = fmt.Sprint(userID)
		}

		key := fmt.Sprintf("postpilot:ratelimit:%s:%s", c.FullPath(), caller)

		ctx := c.Request.Context()
		pipe := redisClient.TxPipeline()
		incr := pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, window)
		if _, err := pipe.Exec(ctx); err != nil {
			c.Next()
			return
		}

		if incr.Val() > int64(limit) {
			retryAfter := int(window / time.Second)
			if ttl, err := redisClient.TTL(ctx, key).Result(); err == nil && ttl > 0 {
				retryAfter = int(ttl / time.Second)
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
			c.Abort()
			return
		}

		c.Next()
	}
}
