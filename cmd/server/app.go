package main

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"mindweaver-server/internal/cache"
	"mindweaver-server/internal/config"
	"mindweaver-server/internal/database"
	"mindweaver-server/internal/handler"
	"mindweaver-server/internal/logger"
	"mindweaver-server/internal/repository"
	"mindweaver-server/internal/session"
)

// app holds the shared resources every subcommand starts from.
type app struct {
	cfg   *config.Config
	log   *logger.Logger
	db    *gorm.DB
	redis *cache.RedisCache // nil unless sessions live in Redis
}

// bootstrap loads config, builds the logger and opens the database.
func bootstrap() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(cfg.Log.Mode, cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("failed to init logger: %w", err)
	}

	if missing := cfg.MissingRequired(); len(missing) > 0 {
		log.Warn("missing required configuration", "vars", strings.Join(missing, ", "))
	}

	db, err := database.Open(cfg.Database, log)
	if err != nil {
		return nil, err
	}

	return &app{cfg: cfg, log: log, db: db}, nil
}

const storeDatabase = "database"

// sessionStore returns the store selected by session.store.
func (a *app) sessionStore() (session.Store, error) {
	switch strings.ToLower(a.cfg.Session.Store) {
	case "", "redis":
		if a.redis == nil {
			rc, err := cache.NewRedisCache(a.cfg.Redis)
			if err != nil {
				return nil, fmt.Errorf("failed to init redis: %w", err)
			}
			a.redis = rc
		}
		return session.NewRedisStore(a.redis), nil
	case storeDatabase, "db":
		return session.NewDBStore(repository.NewSessionRepository(a.db)), nil
	default:
		return nil, fmt.Errorf("unsupported session store %q", a.cfg.Session.Store)
	}
}

// close releases everything bootstrap and sessionStore opened.
func (a *app) close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.Error("failed to close redis", "error", err)
		}
	}
	if err := database.Close(a.db); err != nil {
		a.log.Error("failed to close database", "error", err)
	}
	_ = a.log.Sync()
}

// pingers are the dependency checks the health endpoint runs.
func (a *app) pingers() map[string]handler.Pinger {
	checks := map[string]handler.Pinger{
		"database": func(ctx context.Context) error { return database.Ping(ctx, a.db) },
	}
	if a.redis != nil {
		checks["redis"] = a.redis.Ping
	}
	return checks
}
