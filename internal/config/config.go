package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// ErrRedisRequired is returned in prod when REDIS_ADDR is empty: sign-out
// revocations must be shared between instances.
var ErrRedisRequired = errors.New("REDIS_ADDR is required when APP_ENV=prod")

type Config struct {
	Env   string `env:"APP_ENV" envDefault:"dev"`
	Port  int    `env:"PORT" envDefault:"8080"`
	DBURL string `env:"DATABASE_URL"`

	DB DBConfig

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	SessionSecret     string `env:"SESSION_SECRET"`
	SessionTTLMinutes int    `env:"SESSION_TTL_MINUTES" envDefault:"480"`
	SessionIssuer     string `env:"SESSION_ISSUER" envDefault:"staffhub"`

	AdminEmail    string `env:"ADMIN_EMAIL"`
	AdminPassword string `env:"ADMIN_PASSWORD"`
	AdminName     string `env:"ADMIN_NAME" envDefault:"Administrator"`

	OTELEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`

	// sign-in attempts per IP per minute
	SignInRateLimit int `env:"SIGNIN_RATE_LIMIT" envDefault:"10"`
}

// DBConfig is only used when DATABASE_URL is not set.
type DBConfig struct {
	Host     string `env:"DB_HOST" envDefault:"127.0.0.1"`
	Port     string `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER" envDefault:"staffhub"`
	Password string `env:"DB_PASSWORD" envDefault:"staffhub"`
	Name     string `env:"DB_NAME" envDefault:"staffhub"`
	SSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`
}

func Load() (Config, error) {
	var cfg Config

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if cfg.DBURL == "" {
		cfg.DBURL = buildDBURL(cfg.DB)
	}

	if cfg.IsProd() && cfg.RedisAddr == "" {
		return Config{}, ErrRedisRequired
	}

	return cfg, nil
}

func (c Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}

func (c Config) IsProd() bool {
	return c.Env == "prod"
}

func buildDBURL(db DBConfig) string {
	return "postgres://" + db.User + ":" + db.Password + "@" + db.Host + ":" + db.Port + "/" + db.Name + "?sslmode=" + db.SSLMode
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}
