package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/frknaykc/dragonseye/pkg/types/common"
)

// HealthChecker probes one backing component.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	components map[string]HealthChecker
	started    time.Time
}

// NewHealthHandler builds the handler. components maps component names
// (postgres, redis) to their checkers.
func NewHealthHandler(components map[string]HealthChecker) *HealthHandler {
	return &HealthHandler{
		components: components,
		started:    time.Now(),
	}
}

// Liveness reports that the process is up.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"uptime": time.Since(h.started).Round(time.Second).String(),
	})
}

// Readiness probes every component. Any failing component makes the
// whole response 503 so the load balancer stops routing here.
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	overall := common.HealthUp
	results := make([]common.ComponentHealth, 0, len(h.components))
	for name, checker := range h.components {
		start := time.Now()
		status := common.HealthUp
		message := ""
		if err := checker.HealthCheck(ctx); err != nil {
			status = common.HealthDown
			message = err.Error()
			overall = common.HealthDown
		}
		results = append(results, common.ComponentHealth{
			Name:    name,
			Status:  status,
			Latency: time.Since(start),
			Message: message,
		})
	}

	code := http.StatusOK
	if overall == common.HealthDown {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status":     overall,
		"components": results,
	})
}
