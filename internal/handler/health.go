package handler

import (
	"context"
	"net/http"
	"time"

	"tallerpos/internal/infra"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// BreakerState reports the backend circuit without exposing the client.
type BreakerState interface {
	Breaker() infra.CBState
}

// Health returns a JSON health check response.
// Checks the journal DB, Redis (when configured) and the backend circuit;
// never exposes credentials or internals. An open circuit degrades but does
// not fail the check: the service still serves carts from local state.
func Health(db *gorm.DB, rdb *redis.Client, backend BreakerState) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbStatus := "connected"
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			dbStatus = "error"
		}

		redisStatus := "disabled"
		if rdb != nil {
			redisStatus = "connected"
			if rdb.Ping(ctx).Err() != nil {
				redisStatus = "error"
			}
		}

		status := http.StatusOK
		if dbStatus != "connected" || redisStatus == "error" {
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, gin.H{
			"ok":      status == http.StatusOK,
			"db":      dbStatus,
			"redis":   redisStatus,
			"backend": backend.Breaker().String(),
		})
	}
}
