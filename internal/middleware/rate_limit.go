package middleware

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tsangpocruise/booking-backend/internal/services"
	"github.com/tsangpocruise/booking-backend/internal/utils"
)

// Limiter consumes a token for a client key
type Limiter interface {
	Allow(key string) error
}

// RateLimit throttles requests per client IP and route
func RateLimit(limiter Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := utils.GetRealIP(c) + ":" + c.FullPath()

		err := limiter.Allow(key)
		if err == nil {
			c.Next()
			return
		}

		var rlErr *services.RateLimitError
		if !errors.As(err, &rlErr) {
			c.Next()
			return
		}

		seconds := int(math.Ceil(time.Until(rlErr.RetryAfter).Seconds()))
		if seconds < 1 {
			seconds = 1
		}
		c.Header("Retry-After", strconv.Itoa(seconds))
		abort(c, http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", rlErr.Message)
	}
}
