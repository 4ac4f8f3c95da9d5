package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"mindweaver-server/internal/database"
	"mindweaver-server/internal/generator"
	"mindweaver-server/internal/handler"
	"mindweaver-server/internal/identity"
	"mindweaver-server/internal/repository"
	"mindweaver-server/internal/server"
	"mindweaver-server/internal/service"
	"mindweaver-server/internal/session"
	"mindweaver-server/pkg/jwt"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.close()

	cfg := a.cfg
	log := a.log

	if err := database.Migrate(a.db); err != nil {
		return err
	}

	store, err := a.sessionStore()
	if err != nil {
		return err
	}

	gen, err := generator.New(cmd.Context(), cfg.AI)
	if err != nil {
		return fmt.Errorf("failed to init story generator: %w", err)
	}

	jwtService := jwt.NewJWTService(cfg.Session.Secret, cfg.Session.TTL)
	sessions := session.NewManager(store, jwtService)

	// repositories
	accountRepo := repository.NewAccountRepository(a.db)
	conversationRepo := repository.NewConversationRepository(a.db)
	messageRepo := repository.NewMessageRepository(a.db, conversationRepo)

	// services
	authService := service.NewAuthService(accountRepo, identity.NewGoogleProvider(cfg.Google), sessions, log)
	chatService := service.NewChatService(conversationRepo, messageRepo, gen, cfg.Chat.ListLimit, log)

	router := server.NewRouter(server.RouterConfig{
		Mode:           cfg.Server.Mode,
		AllowedOrigins: cfg.Server.CORS,
		CookieName:     cfg.Session.CookieName,
		Sessions:       authService,
		Auth: handler.NewAuthHandler(authService, handler.CookieConfig{
			Name:   cfg.Session.CookieName,
			Domain: cfg.Session.CookieDomain,
			Secure: cfg.Session.CookieSecure,
		}, cfg.Server.FrontendURL, log),
		Chat:   handler.NewChatHandler(chatService, log),
		Health: handler.NewHealthHandler(a.pingers()),
		Log:    log,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", "addr", addr, "ai_provider", cfg.AI.Provider, "session_store", cfg.Session.Store)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
	}

	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("server exited")
	return nil
}
