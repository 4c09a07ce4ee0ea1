package config

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

// devJWTSecret is only accepted outside production.
const devJWTSecret = "fatty-hosting-dev-secret"

// Config holds every environment-driven setting of the service.
type Config struct {
	AppEnv       string `env:"APP_ENV" default:"development"`
	Port         string `env:"PORT" default:"3001"`
	DatabasePath string `env:"DATABASE_PATH" default:"./data/fatty_hosting.db"`
	StaticDir    string `env:"STATIC_DIR" default:"./web"`

	JWTSecret string `env:"JWT_SECRET"`
	AdminKey  string `env:"ADMIN_KEY"`

	EmailUser     string `env:"EMAIL_USER"`
	EmailPassword string `env:"EMAIL_PASSWORD"`
	SMTPHost      string `env:"SMTP_HOST" default:"smtp.gmail.com"`
	SMTPPort      int    `env:"SMTP_PORT" default:"587"`
	AdminEmail    string `env:"ADMIN_EMAIL" default:"aaravsahni1037@gmail.com"`
	PanelURL      string `env:"PANEL_URL" default:"https://amp.fattysmp.com"`

	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	RedisURL     string `env:"REDIS_URL"`
	OtelEndpoint string `env:"OTEL_ENDPOINT"`
	LogLevel     string `env:"LOG_LEVEL" default:"debug"`
}

// Load reads .env (if present) and the process environment into a Config
// and validates it.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// IsDevelopment reports whether internal error detail may be echoed to clients.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// MailEnabled reports whether SMTP credentials are configured.
func (c *Config) MailEnabled() bool {
	return c.EmailUser != "" && c.EmailPassword != ""
}

func validate(cfg *Config) error {
	if cfg.Port == "" {
		return errors.New("PORT must not be empty")
	}
	if cfg.SMTPPort <= 0 || cfg.SMTPPort > 65535 {
		return fmt.Errorf("SMTP_PORT out of range: %d", cfg.SMTPPort)
	}

	if cfg.IsDevelopment() {
		if cfg.JWTSecret == "" {
			slog.Warn("JWT_SECRET not set, using development secret")
			cfg.JWTSecret = devJWTSecret
		}
		return nil
	}

	required := map[string]string{
		"JWT_SECRET":     cfg.JWTSecret,
		"ADMIN_KEY":      cfg.AdminKey,
		"EMAIL_USER":     cfg.EmailUser,
		"EMAIL_PASSWORD": cfg.EmailPassword,
	}
	var missing []string
	for name, value := range required {
		if value == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("missing required environment variables: %v", missing)
	}
	return nil
}
