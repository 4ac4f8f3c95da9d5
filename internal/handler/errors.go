// Package handler implements the HTTP handlers.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"mindweaver-server/internal/logger"
	"mindweaver-server/internal/service"
	"mindweaver-server/pkg/response"
)

// Messages shown to the browser
const (
	msgAuthRequired   = "Authentication required"
	msgChatNotFound   = "Chat not found"
	msgNoInput        = "No input provided"
	msgGenerateFailed = "Failed to generate story. Please try again."
	msgInternal       = "Internal server error"
)

// writeError maps a service error to a status and a user-facing message.
// Server-side failures are logged with their detail and answered with
// fallback, so nothing internal leaks to the client.
// Not-found and forbidden share one answer so ids of other accounts can't be discovered.
func writeError(c *gin.Context, log *logger.Logger, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrAuthenticationRequired):
		response.Unauthorized(c, msgAuthRequired)
	case errors.Is(err, service.ErrInvalidInput):
		response.BadRequest(c, msgNoInput)
	case errors.Is(err, service.ErrExternalAuth):
		response.BadRequest(c, "Failed to get access token")
	case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrForbidden):
		response.NotFound(c, msgChatNotFound)
	case errors.Is(err, service.ErrGeneration):
		log.Error("generation failed", "path", c.FullPath(), "error", err)
		response.InternalError(c, msgGenerateFailed)
	default:
		log.Error("request failed", "path", c.FullPath(), "error", err)
		if fallback == "" {
			fallback = msgInternal
		}
		response.Error(c, http.StatusInternalServerError, fallback)
	}
}
