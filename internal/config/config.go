package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all service configuration loaded from environment variables.
type Config struct {
	Port           string        `envconfig:"PORT" default:"5000" validate:"required,numeric"`
	AppEnv         string        `envconfig:"APP_ENV" default:"development" validate:"oneof=development production test"`
	LogFormat      string        `envconfig:"LOG_FORMAT" default:"text" validate:"oneof=text json"`
	AllowedOrigins []string      `envconfig:"CORS_ORIGINS" default:"http://localhost:5173" validate:"min=1"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"30s" validate:"gt=0"`
	RateLimit      int           `envconfig:"RATE_LIMIT_PER_MINUTE" default:"120" validate:"gte=0"`

	MongoURI    string `envconfig:"MONGO_URI" validate:"required"`
	MongoDB     string `envconfig:"MONGO_DB" default:"reShopDB" validate:"required"`
	PostgresDSN string `envconfig:"POSTGRES_DSN" validate:"required"`

	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379" validate:"required"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`

	MinioEndpoint  string `envconfig:"MINIO_ENDPOINT" default:"localhost:9000" validate:"required"`
	MinioAccessKey string `envconfig:"MINIO_ACCESS_KEY"`
	MinioSecretKey string `envconfig:"MINIO_SECRET_KEY"`
	MinioBucket    string `envconfig:"MINIO_BUCKET" default:"reshop-images" validate:"required"`
	MinioUseSSL    bool   `envconfig:"MINIO_USE_SSL" default:"false"`

	AccessTokenSecret string        `envconfig:"ACCESS_TOKEN_SECRET" validate:"required"`
	TokenTTL          time.Duration `envconfig:"TOKEN_TTL" default:"5h" validate:"gte=0"`

	StripeSecretKey string `envconfig:"STRIPE_SECRET_KEY" validate:"required"`
	PaymentCurrency string `envconfig:"PAYMENT_CURRENCY" default:"usd" validate:"len=3"`

	OTELEndpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTELInsecure bool   `envconfig:"OTEL_EXPORTER_OTLP_INSECURE" default:"false"`
}

// Load reads an optional .env file, then the process environment.
func Load() (*Config, error) {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

// IsProduction reports whether the service runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}

// Signing is the subset of Config needed to mint credentials offline.
type Signing struct {
	AccessTokenSecret string        `envconfig:"ACCESS_TOKEN_SECRET" validate:"required"`
	TokenTTL          time.Duration `envconfig:"TOKEN_TTL" default:"5h" validate:"gte=0"`
}

// LoadSigning reads only the credential settings.
func LoadSigning() (*Signing, error) {
	_ = godotenv.Load()

	var cfg Signing
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}
