// Package server assembles the Gin engine and the routes.
package server

import (
	"github.com/gin-gonic/gin"

	"mindweaver-server/internal/handler"
	"mindweaver-server/internal/logger"
	"mindweaver-server/internal/middleware"
)

// RouterConfig carries everything NewRouter wires together.
type RouterConfig struct {
	Mode           string   // "release" switches Gin to release mode
	AllowedOrigins []string // CORS origins; empty disables CORS
	CookieName     string   // session cookie read by the auth middleware

	Sessions middleware.SessionChecker
	Auth     *handler.AuthHandler
	Chat     *handler.ChatHandler
	Health   *handler.HealthHandler
	Log      *logger.Logger
}

// NewRouter builds the HTTP router.
// Returns:
//   - *gin.Engine: ready to be used as an http.Handler
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(middleware.RecoveryMiddleware(cfg.Log))
	router.Use(middleware.LoggerMiddleware(cfg.Log))
	if len(cfg.AllowedOrigins) > 0 {
		router.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))
	}

	requireSession := middleware.AuthMiddleware(cfg.Sessions, cfg.CookieName, cfg.Log)

	router.GET("/", cfg.Health.Index)
	router.GET("/health", cfg.Health.Health)

	auth := router.Group("/auth")
	{
		auth.GET("/google", cfg.Auth.GoogleLogin)
		auth.GET("/google/callback", cfg.Auth.GoogleCallback)
		auth.GET("/status", cfg.Auth.Status)
		auth.POST("/logout", cfg.Auth.Logout)
	}

	// everything below needs a login
	api := router.Group("")
	api.Use(requireSession)
	{
		api.POST("/generate-story", cfg.Chat.GenerateStory)
		api.GET("/chats", cfg.Chat.ListChats)
		api.GET("/chats/:id/messages", cfg.Chat.GetMessages)
	}

	return router
}
