package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"mindweaver-server/pkg/response"
)

// Pinger is a dependency check run by the health endpoint.
type Pinger func(ctx context.Context) error

// HealthHandler serves the health check and the endpoint index.
type HealthHandler struct {
	checks map[string]Pinger
}

// NewHealthHandler creates a HealthHandler.
// Parameters:
//   - checks: named dependency checks, e.g. "database"; may be nil
func NewHealthHandler(checks map[string]Pinger) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// Health is a liveness check: it always answers 200 while the process
// serves requests. Dependency checks are reported in the body, and any
// failure turns status into "degraded".
func (h *HealthHandler) Health(c *gin.Context) {
	body := gin.H{
		"status":  "healthy",
		"message": "MindWeaver Saga API is running",
	}
	if len(h.checks) == 0 {
		response.Success(c, body)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := make(map[string]string, len(h.checks))
	for name, ping := range h.checks {
		if err := ping(ctx); err != nil {
			checks[name] = "unavailable"
			body["status"] = "degraded"
			continue
		}
		checks[name] = "ok"
	}
	body["checks"] = checks
	response.Success(c, body)
}

// Index lists the public endpoints.
func (h *HealthHandler) Index(c *gin.Context) {
	response.Success(c, gin.H{
		"message": "MindWeaver Saga API",
		"endpoints": gin.H{
			"POST /generate-story":     "Generate therapeutic fantasy stories",
			"GET /auth/google":         "Google OAuth login",
			"GET /auth/status":         "Check authentication status",
			"POST /auth/logout":        "Logout user",
			"GET /chats":               "Get user chats",
			"GET /chats/<id>/messages": "Get chat messages",
			"GET /health":              "Health check",
		},
	})
}
