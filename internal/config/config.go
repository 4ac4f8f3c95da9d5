// Package config loads and manages application configuration.
// It uses viper to merge a YAML config file, environment variables and
// a local .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the root configuration structure.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`   // HTTP server
	Database DatabaseConfig `mapstructure:"database"` // relational store
	Redis    RedisConfig    `mapstructure:"redis"`    // session records
	Session  SessionConfig  `mapstructure:"session"`  // login sessions
	Google   GoogleConfig   `mapstructure:"google"`   // OAuth2 identity provider
	AI       AIConfig       `mapstructure:"ai"`       // story generation
	Chat     ChatConfig     `mapstructure:"chat"`     // conversation listing
	Log      LogConfig      `mapstructure:"log"`      // logging
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         int           `mapstructure:"port"`          // listen port, default 5000
	Mode         string        `mapstructure:"mode"`          // debug / release
	FrontendURL  string        `mapstructure:"frontend_url"`  // where the OAuth callback redirects
	CORS         []string      `mapstructure:"cors"`          // allowed origins
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`  // request read timeout
	WriteTimeout time.Duration `mapstructure:"write_timeout"` // must cover a full story generation
}

// DatabaseConfig holds the relational store connection settings.
// URL takes precedence over the individual fields when set.
type DatabaseConfig struct {
	Driver       string `mapstructure:"driver"`         // postgres / mysql / sqlite
	URL          string `mapstructure:"url"`            // full DSN, e.g. DATABASE_URL
	Host         string `mapstructure:"host"`           // database host
	Port         int    `mapstructure:"port"`           // database port
	Username     string `mapstructure:"username"`       // database user
	Password     string `mapstructure:"password"`       // database password
	Name         string `mapstructure:"name"`           // database name, or file path for sqlite
	SSLMode      string `mapstructure:"ssl_mode"`       // postgres only
	MaxIdleConns int    `mapstructure:"max_idle_conns"` // max idle connections
	MaxOpenConns int    `mapstructure:"max_open_conns"` // max open connections
	MaxLifetime  int    `mapstructure:"max_lifetime"`   // connection lifetime in seconds
}

// RedisConfig holds the Redis connection settings.
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// SessionConfig controls login sessions and the session cookie.
type SessionConfig struct {
	Store        string        `mapstructure:"store"`         // redis / database
	Secret       string        `mapstructure:"secret"`        // cookie signing key
	TTL          time.Duration `mapstructure:"ttl"`           // session lifetime
	CookieName   string        `mapstructure:"cookie_name"`   // session cookie name
	CookieDomain string        `mapstructure:"cookie_domain"` // optional cookie domain
	CookieSecure bool          `mapstructure:"cookie_secure"` // set Secure on cookies
}

// GoogleConfig holds the OAuth2 client registration.
// The endpoint overrides are empty in production and point at fakes in tests.
type GoogleConfig struct {
	ClientID         string `mapstructure:"client_id"`
	ClientSecret     string `mapstructure:"client_secret"`
	RedirectURL      string `mapstructure:"redirect_url"`
	AuthURL          string `mapstructure:"auth_url"`
	TokenURL         string `mapstructure:"token_url"`
	UserinfoEndpoint string `mapstructure:"userinfo_endpoint"`
}

// AIConfig selects and configures the story generator.
type AIConfig struct {
	Provider         string `mapstructure:"provider"`           // gemini / openai / anthropic
	Model            string `mapstructure:"model"`              // provider model name
	GeminiAPIKey     string `mapstructure:"gemini_api_key"`     // GOOGLE_API_KEY
	OpenAIAPIKey     string `mapstructure:"openai_api_key"`     // OPENAI_API_KEY
	OpenAIBaseURL    string `mapstructure:"openai_base_url"`    // optional, for compatible gateways
	AnthropicAPIKey  string `mapstructure:"anthropic_api_key"`  // ANTHROPIC_API_KEY
	AnthropicBaseURL string `mapstructure:"anthropic_base_url"` // optional, for compatible gateways
	MaxTokens        int    `mapstructure:"max_tokens"`         // response cap where the provider needs one
}

// ChatConfig holds conversation settings.
type ChatConfig struct {
	ListLimit int `mapstructure:"list_limit"` // how many conversations GET /chats returns
}

// LogConfig holds logging settings.
type LogConfig struct {
	Mode  string `mapstructure:"mode"`  // development / production
	Level string `mapstructure:"level"` // debug / info / warn / error
}

// Load reads configuration from configPath.
// A .env file in the working directory is applied first, then config.yaml,
// then environment variables. A missing file of either kind is not an error.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)

	v.AutomaticEnv()
	// SERVER_PORT -> server.port
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	bindEnvVariables(v)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// bindEnvVariables binds the environment names the deployment uses.
func bindEnvVariables(v *viper.Viper) {
	v.BindEnv("server.port", "PORT", "SERVER_PORT")
	v.BindEnv("server.mode", "SERVER_MODE")
	v.BindEnv("server.frontend_url", "FRONTEND_URL")

	v.BindEnv("database.driver", "DATABASE_DRIVER")
	v.BindEnv("database.url", "DATABASE_URL")
	v.BindEnv("database.host", "DB_HOST")
	v.BindEnv("database.port", "DB_PORT")
	v.BindEnv("database.username", "DB_USER")
	v.BindEnv("database.password", "DB_PASSWORD")
	v.BindEnv("database.name", "DB_NAME")

	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.port", "REDIS_PORT")
	v.BindEnv("redis.username", "REDIS_USERNAME")
	v.BindEnv("redis.password", "REDIS_PASSWORD")

	v.BindEnv("session.store", "SESSION_STORE")
	v.BindEnv("session.secret", "SECRET_KEY")
	v.BindEnv("session.cookie_secure", "SESSION_COOKIE_SECURE")

	v.BindEnv("google.client_id", "GOOGLE_CLIENT_ID")
	v.BindEnv("google.client_secret", "GOOGLE_CLIENT_SECRET")
	v.BindEnv("google.redirect_url", "GOOGLE_REDIRECT_URI")

	v.BindEnv("ai.provider", "AI_PROVIDER")
	v.BindEnv("ai.model", "AI_MODEL")
	v.BindEnv("ai.gemini_api_key", "GOOGLE_API_KEY")
	v.BindEnv("ai.openai_api_key", "OPENAI_API_KEY")
	v.BindEnv("ai.openai_base_url", "OPENAI_BASE_URL")
	v.BindEnv("ai.anthropic_api_key", "ANTHROPIC_API_KEY")
	v.BindEnv("ai.anthropic_base_url", "ANTHROPIC_BASE_URL")

	v.BindEnv("log.mode", "LOG_MODE")
	v.BindEnv("log.level", "LOG_LEVEL")
}

// setDefaults matches a local development setup: API on :5000, static frontend on :5500.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.frontend_url", "http://127.0.0.1:5500/index.html")
	v.SetDefault("server.cors", []string{"http://127.0.0.1:5500", "http://localhost:5500"})
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "120s")

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.username", "postgres")
	v.SetDefault("database.name", "mindweaver")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 50)
	v.SetDefault("database.max_lifetime", 3600)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 20)

	v.SetDefault("session.store", "redis")
	v.SetDefault("session.ttl", "168h")
	v.SetDefault("session.cookie_name", "mindweaver_session")
	v.SetDefault("session.cookie_secure", false)

	v.SetDefault("google.redirect_url", "http://127.0.0.1:5000/auth/google/callback")

	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("ai.model", "gemini-2.5-pro")
	v.SetDefault("ai.max_tokens", 1024)

	v.SetDefault("chat.list_limit", 10)

	v.SetDefault("log.mode", "development")
	v.SetDefault("log.level", "info")
}

// MissingRequired lists settings the service cannot work without.
// Startup only warns about them, so health checks still come up.
func (c *Config) MissingRequired() []string {
	var missing []string
	if c.Google.ClientID == "" {
		missing = append(missing, "GOOGLE_CLIENT_ID")
	}
	if c.Google.ClientSecret == "" {
		missing = append(missing, "GOOGLE_CLIENT_SECRET")
	}
	switch strings.ToLower(c.AI.Provider) {
	case "openai":
		if c.AI.OpenAIAPIKey == "" {
			missing = append(missing, "OPENAI_API_KEY")
		}
	case "anthropic":
		if c.AI.AnthropicAPIKey == "" {
			missing = append(missing, "ANTHROPIC_API_KEY")
		}
	default:
		if c.AI.GeminiAPIKey == "" {
			missing = append(missing, "GOOGLE_API_KEY")
		}
	}
	if c.Database.URL == "" && c.Database.Driver != "sqlite" && c.Database.Password == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if c.Session.Secret == "" {
		missing = append(missing, "SECRET_KEY")
	}
	return missing
}

// DSN builds the driver-specific data source name.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	switch strings.ToLower(d.Driver) {
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			d.Username, d.Password, d.Host, d.Port, d.Name)
	case "sqlite", "sqlite3":
		name := d.Name
		if name == "" {
			name = "mindweaver.db"
		}
		if filepath.Ext(name) == "" && !strings.HasPrefix(name, "file:") {
			name += ".db"
		}
		sep := "?"
		if strings.Contains(name, "?") {
			sep = "&"
		}
		// foreign keys are off by default in sqlite and cascades depend on them
		return name + sep + "_foreign_keys=on"
	default:
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(d.Username, d.Password),
			Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
			Path:     "/" + d.Name,
			RawQuery: "sslmode=" + d.SSLMode,
		}
		return u.String()
	}
}

// Addr returns host:port for the Redis client.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
