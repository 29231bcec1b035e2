package middleware

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/culinara/culinara/internal/cache"
	"github.com/culinara/culinara/pkg/logging"
)

// RateLimit allows limit requests per window for each client on the named
// resource. Clients are keyed by viewer id when signed in, otherwise by IP.
// The limiter fails open when Redis is disabled or unreachable.
func RateLimit(counters *cache.Cache, resource string, limit int, window time.Duration) gin.HandlerFunc {
	logger := logging.WithComponent("ratelimit")

	return func(c *gin.Context) {
		if limit <= 0 {
			c.Next()
			return
		}

		id := "ip:" + c.ClientIP()
		if viewer := ViewerFrom(c); viewer != nil {
			id = "user:" + viewer.UserID
		}

		n, ttl, err := counters.IncrWindow(c.Request.Context(), "ratelimit:"+resource+":"+cache.HashKey(id), window)
		if err != nil {
			if !errors.Is(err, cache.ErrCacheDisabled) {
				logger.Warn("rate limit check failed, allowing request",
					zap.String("resource", resource),
					zap.Error(err),
				)
			}
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(max(int64(limit)-n, 0), 10))

		if n > int64(limit) {
			wait := int(math.Ceil(ttl.Seconds()))
			c.Header("Retry-After", strconv.Itoa(wait))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"detail": fmt.Sprintf("Request was throttled. Expected available in %d seconds.", wait),
			})
			return
		}
		c.Next()
	}
}
