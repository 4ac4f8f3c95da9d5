// Package middleware provides HTTP middleware:
// session authentication, CORS, request logging and panic recovery.
package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"mindweaver-server/internal/logger"
	"mindweaver-server/internal/service"
	"mindweaver-server/internal/session"
	"mindweaver-server/pkg/response"
)

// Context keys
const (
	ContextIdentity = "identity" // *session.Identity
)

// SessionChecker resolves a session cookie. *service.AuthService implements it.
type SessionChecker interface {
	CheckSession(ctx context.Context, token string) (*session.Identity, error)
}

// AuthMiddleware requires a live session.
// It reads the session cookie, resolves it and stores the identity in the
// context. Requests without a valid session get 401 {"error": "Authentication required"}.
// Parameters:
//   - checker: resolves cookie values
//   - cookieName: session cookie name
//   - log: used for store failures
//
// Returns:
//   - gin.HandlerFunc: Gin middleware
func AuthMiddleware(checker SessionChecker, cookieName string, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie(cookieName)

		ident, err := checker.CheckSession(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, service.ErrAuthenticationRequired) {
				response.AbortWithError(c, http.StatusUnauthorized, "Authentication required")
				return
			}
			log.Error("session lookup failed", "error", err)
			response.AbortWithError(c, http.StatusInternalServerError, "Internal server error")
			return
		}

		// handlers read it with GetIdentity
		c.Set(ContextIdentity, ident)
		c.Next()
	}
}

// GetIdentity returns the identity stored by AuthMiddleware, or nil.
func GetIdentity(c *gin.Context) *session.Identity {
	v, exists := c.Get(ContextIdentity)
	if !exists {
		return nil
	}
	ident, _ := v.(*session.Identity)
	return ident
}
