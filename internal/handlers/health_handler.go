package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Pinger checks a backing connection
type Pinger interface {
	Ping() error
}

// HealthCheck reports database and cache reachability.
// A nil redis client is reported as disabled.
func HealthCheck(db Pinger, rdb *redis.Client, version string) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := http.StatusOK
		body := gin.H{
			"status":    "healthy",
			"database":  "healthy",
			"cache":     "disabled",
			"version":   version,
			"timestamp": time.Now().UTC(),
		}

		if err := db.Ping(); err != nil {
			status = http.StatusServiceUnavailable
			body["status"] = "unhealthy"
			body["database"] = "unhealthy"
		}

		if rdb != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := rdb.Ping(ctx).Err(); err != nil {
				// cache is optional, degrade only
				body["cache"] = "unhealthy"
			} else {
				body["cache"] = "healthy"
			}
		}

		c.JSON(status, body)
	}
}
