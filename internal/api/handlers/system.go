package handlers

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"booking-system/internal/api/interfaces"
	"booking-system/internal/api/models"

	"github.com/gin-gonic/gin"
)

// Version is reported by the health endpoint; set at build time
var Version = "1.0.0"

var startTime = time.Now()

// HealthCheck reports whether the database and background jobs are up
func HealthCheck(services interfaces.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		checks := map[string]string{
			"database":  "ok",
			"completer": "disabled",
		}
		status, code := "healthy", http.StatusOK

		if services.Completer().IsRunning() {
			checks["completer"] = "running"
		}
		if !services.IsHealthy(ctx) {
			status, code = "unhealthy", http.StatusServiceUnavailable
			if err := services.GetDB().PingContext(ctx); err != nil {
				checks["database"] = "unreachable"
			}
			if services.GetConfig().Scheduler.Enabled && !services.Completer().IsRunning() {
				checks["completer"] = "stopped"
			}
		}

		c.JSON(code, models.HealthCheckResponse{
			Status:    status,
			Timestamp: time.Now().Unix(),
			Version:   Version,
			Checks:    checks,
		})
	}
}

// GetSystemStats returns process and booking statistics
func GetSystemStats(services interfaces.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)

		stats := map[string]interface{}{
			"server": map[string]interface{}{
				"uptime":       time.Since(startTime).Seconds(),
				"goroutines":   runtime.NumGoroutine(),
				"memory_alloc": bToMb(m.Alloc),
				"memory_sys":   bToMb(m.Sys),
				"gc_runs":      m.NumGC,
			},
			"database": services.GetDB().Stats(),
			"booking": map[string]interface{}{
				"completer_running": services.Completer().IsRunning(),
			},
		}

		respond(c, http.StatusOK, "", stats)
	}
}

func bToMb(b uint64) uint64 {
	return b / 1024 / 1024
}
