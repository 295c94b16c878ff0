package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name     string     `envconfig:"APP_NAME" default:"Billable"`
		Port     int        `envconfig:"PORT" default:"8080"`
		LogLevel slog.Level `envconfig:"LOG_LEVEL" default:"info"`
		// Number of time entries a user needs before dashboard insights unlock.
		InsightsThreshold int `envconfig:"INSIGHTS_THRESHOLD" default:"20"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"billable"`
		SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	}

	Server struct {
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
	}

	Auth struct {
		JWTSecret string `envconfig:"AUTH_JWT_SECRET" required:"true"`
		Audience  string `envconfig:"AUTH_AUDIENCE" default:"authenticated"`
	}

	CORS struct {
		AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
	}

	NBP struct {
		BaseURL string        `envconfig:"NBP_BASE_URL" default:"https://api.nbp.pl/api"`
		Timeout time.Duration `envconfig:"NBP_TIMEOUT" default:"10s"`
	}

	Registry struct {
		BaseURL string        `envconfig:"REGISTRY_BASE_URL" default:"https://wl-api.mf.gov.pl/api"`
		Timeout time.Duration `envconfig:"REGISTRY_TIMEOUT" default:"10s"`
	}

	Redis struct {
		Addr     string        `envconfig:"REDIS_ADDR"`
		Password string        `envconfig:"REDIS_PASSWORD"`
		DB       int           `envconfig:"REDIS_DB" default:"0"`
		TTL      time.Duration `envconfig:"REDIS_RATE_TTL" default:"720h"`
	}

	Storage struct {
		Endpoint     string        `envconfig:"STORAGE_ENDPOINT"`
		Region       string        `envconfig:"STORAGE_REGION" default:"us-east-1"`
		Bucket       string        `envconfig:"STORAGE_BUCKET" default:"invoices"`
		AccessKey    string        `envconfig:"STORAGE_ACCESS_KEY"`
		SecretKey    string        `envconfig:"STORAGE_SECRET_KEY"`
		UsePathStyle bool          `envconfig:"STORAGE_PATH_STYLE" default:"true"`
		PresignTTL   time.Duration `envconfig:"STORAGE_PRESIGN_TTL" default:"15m"`
	}

	Renderer struct {
		// Remote Chrome DevTools endpoint; the gofpdf renderer is used when empty.
		ChromeURL string        `envconfig:"RENDERER_CHROME_URL"`
		Timeout   time.Duration `envconfig:"RENDERER_TIMEOUT" default:"30s"`
	}

	TUI struct {
		UserID string `envconfig:"TUI_USER_ID"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name, c.DB.SSLMode)
}

// StorageEnabled reports whether PDF archiving to object storage is configured.
func (c *Config) StorageEnabled() bool {
	return c.Storage.Endpoint != "" && c.Storage.AccessKey != "" && c.Storage.SecretKey != ""
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	// envconfig only rejects an unset variable; an empty secret would accept forged tokens.
	if strings.TrimSpace(cfg.Auth.JWTSecret) == "" {
		return nil, errors.New("AUTH_JWT_SECRET must not be empty")
	}

	return &cfg, nil
}
