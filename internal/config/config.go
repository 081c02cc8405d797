package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"ProjectLibrary"`
		Env  string `envconfig:"APP_ENV" default:"development"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"projectlibrary"`
	}

	Server struct {
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
		// Comma separated list of origins allowed to call the API from a browser.
		AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS" default:"*"`
	}

	Auth struct {
		// Required by the API only. See ValidateAPI.
		Secret   string        `envconfig:"JWT_SECRET"`
		TokenTTL time.Duration `envconfig:"JWT_TTL" default:"24h"`
	}

	Gateway struct {
		KeyID       string        `envconfig:"RAZORPAY_KEY_ID"`
		KeySecret   string        `envconfig:"RAZORPAY_KEY_SECRET"`
		BaseURL     string        `envconfig:"RAZORPAY_BASE_URL" default:"https://api.razorpay.com"`
		Currency    string        `envconfig:"PAYMENT_CURRENCY" default:"INR"`
		Timeout     time.Duration `envconfig:"GATEWAY_TIMEOUT" default:"10s"`
		MaxAttempts int           `envconfig:"GATEWAY_MAX_ATTEMPTS" default:"1"`
	}

	SMTP struct {
		Host     string `envconfig:"SMTP_HOST"`
		Port     int    `envconfig:"SMTP_PORT" default:"587"`
		User     string `envconfig:"SMTP_USER"`
		Password string `envconfig:"SMTP_PASSWORD"`
		From     string `envconfig:"DEFAULT_FROM_EMAIL" default:"noreply@projectlibrary.in"`
		Admin    string `envconfig:"ADMIN_EMAIL"`
	}

	Redis struct {
		// Empty disables the payment replay guard.
		Addr string `envconfig:"REDIS_ADDR"`
	}

	Kafka struct {
		// Empty brokers means notifications are mailed directly by the API.
		Brokers []string `envconfig:"KAFKA_BROKERS"`
		Topic   string   `envconfig:"KAFKA_TOPIC" default:"storefront.notifications"`
		Group   string   `envconfig:"KAFKA_GROUP" default:"storefront-notifier"`
		Workers int      `envconfig:"KAFKA_WORKERS" default:"4"`
	}

	Storage struct {
		Path string `envconfig:"STORAGE_PATH" default:"./media"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

// AdminAddress is where custom request alerts go. Falls back to the sender address.
func (c *Config) AdminAddress() string {
	if c.SMTP.Admin != "" {
		return c.SMTP.Admin
	}

	return c.SMTP.From
}

// ValidateAPI checks the settings only the HTTP API depends on. The notifier
// and the admin tool never sign tokens or verify payment callbacks.
func (c *Config) ValidateAPI() error {
	var errs []error

	if c.Auth.Secret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}

	// An empty key secret makes callback signatures forgeable.
	if c.Gateway.KeySecret == "" {
		errs = append(errs, errors.New("RAZORPAY_KEY_SECRET is required"))
	}

	return errors.Join(errs...)
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if cfg.Gateway.MaxAttempts < 1 {
		cfg.Gateway.MaxAttempts = 1
	}

	return &cfg, nil
}
