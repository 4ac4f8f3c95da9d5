package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"mindweaver-server/internal/logger"
	"mindweaver-server/internal/service"
	"mindweaver-server/pkg/response"
	"mindweaver-server/pkg/util"
)

const (
	stateCookieName = "oauth_state"
	stateCookieTTL  = 10 * time.Minute
)

// CookieConfig controls the cookies the auth handler sets.
type CookieConfig struct {
	Name   string // session cookie name
	Domain string // empty for host-only
	Secure bool   // HTTPS only
}

// AuthHandler handles Google sign-in, status and logout.
type AuthHandler struct {
	authService *service.AuthService
	cookie      CookieConfig
	frontendURL string // where the browser lands after login
	log         *logger.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(authService *service.AuthService, cookie CookieConfig, frontendURL string, log *logger.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cookie:      cookie,
		frontendURL: frontendURL,
		log:         log.With("handler", "auth"),
	}
}

// GoogleLogin starts the OAuth flow.
// @Summary Google login
// @Tags auth
// @Success 302
// @Router /auth/google [get]
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	state := util.GenerateState()
	h.setCookie(c, stateCookieName, state, int(stateCookieTTL.Seconds()))
	c.Redirect(http.StatusFound, h.authService.BeginLogin(state))
}

// GoogleCallback finishes the OAuth flow, sets the session cookie and sends
// the browser back to the frontend.
// @Summary Google OAuth callback
// @Tags auth
// @Param code query string true "authorization code"
// @Param state query string false "anti-forgery state"
// @Success 302
// @Failure 400 {object} response.ErrorBody
// @Router /auth/google/callback [get]
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		response.BadRequest(c, "Authorization code not provided")
		return
	}

	// the state cookie is single-use
	expected, _ := c.Cookie(stateCookieName)
	h.setCookie(c, stateCookieName, "", -1)
	if expected == "" {
		// login was not started here, or the state cookie expired
		response.BadRequest(c, "Login expired, please try again")
		return
	}

	result, err := h.authService.CompleteLogin(c.Request.Context(), code, c.Query("state"), expected)
	if err != nil {
		writeError(c, h.log, err, "Login failed")
		return
	}

	h.setCookie(c, h.cookie.Name, result.Token, int(time.Until(result.ExpiresAt).Seconds()))
	c.Redirect(http.StatusFound, h.frontendURL)
}

// Status reports whether the request carries a live session.
// @Summary Authentication status
// @Tags auth
// @Produce json
// @Success 200 {object} service.StatusResponse
// @Failure 401 {object} service.StatusResponse
// @Failure 500 {object} response.ErrorBody
// @Router /auth/status [get]
func (h *AuthHandler) Status(c *gin.Context) {
	token, _ := c.Cookie(h.cookie.Name)
	ident, err := h.authService.CheckSession(c.Request.Context(), token)
	if errors.Is(err, service.ErrAuthenticationRequired) {
		if token != "" {
			h.setCookie(c, h.cookie.Name, "", -1)
		}
		c.JSON(http.StatusUnauthorized, service.StatusResponse{Authenticated: false})
		return
	}
	if err != nil {
		// store outage: keep the cookie, the session may still be valid
		writeError(c, h.log, err, "")
		return
	}
	response.Success(c, service.NewStatusResponse(ident))
}

// Logout ends the session, if any, and clears the cookie. Always succeeds
// unless the session store fails.
// @Summary Logout
// @Tags auth
// @Produce json
// @Success 200 {object} response.MessageBody
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	token, _ := c.Cookie(h.cookie.Name)
	if err := h.authService.EndSession(c.Request.Context(), token); err != nil {
		writeError(c, h.log, err, "Logout failed")
		return
	}
	h.setCookie(c, h.cookie.Name, "", -1)
	response.SuccessWithMessage(c, "Logged out successfully")
}

// setCookie writes an HttpOnly, SameSite=Lax cookie. maxAge < 0 deletes it.
func (h *AuthHandler) setCookie(c *gin.Context, name, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, "/", h.cookie.Domain, h.cookie.Secure, true)
}
