package config

import (
	"encoding/base64"
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Storage backend selectors for case documents.
const (
	StorageLocal = "local"
	StorageS3    = "s3"
)

// Config holds all application configuration.
type Config struct {
	// Database
	DatabaseURL string `env:"DATABASE_URL,required"`

	// Redis (per-firm rate limiting)
	RedisURL string `env:"REDIS_URL,required"`

	// JWT
	JWTHS256Secret      string `env:"JWT_HS256_SECRET,required"` // Base64-encoded HMAC secret
	JWTIssuer           string `env:"JWT_ISSUER" envDefault:"lexfirm-web"`
	JWTAudience         string `env:"JWT_AUDIENCE" envDefault:"lexfirm-api"`
	JWTClockSkewSeconds int    `env:"JWT_CLOCK_SKEW_SECONDS" envDefault:"60"`

	// Document storage
	DocumentStorage string `env:"DOCUMENT_STORAGE" envDefault:"local"` // "local" or "s3"
	DocumentDir     string `env:"DOCUMENT_DIR" envDefault:"./data/documents"`
	S3Bucket        string `env:"S3_BUCKET"`
	S3Region        string `env:"S3_REGION" envDefault:"us-east-1"`
	S3Endpoint      string `env:"S3_ENDPOINT"` // non-empty for MinIO / custom endpoints
	S3AccessKey     string `env:"S3_ACCESS_KEY"`
	S3SecretKey     string `env:"S3_SECRET_KEY"`
	S3UsePathStyle  bool   `env:"S3_USE_PATH_STYLE" envDefault:"false"`

	// OpenTelemetry
	OTELEnabled          bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELExporterEndpoint string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4317"`
	OTELServiceName      string  `env:"OTEL_SERVICE_NAME" envDefault:"lexfirm-api"`
	OTELSamplingRatio    float64 `env:"OTEL_SAMPLING_RATIO" envDefault:"0.1"`

	// Prometheus scrape endpoint; empty token leaves /metrics open
	MetricsToken string `env:"METRICS_TOKEN"`

	// Server
	Port     string `env:"PORT" envDefault:"3004"`
	AppEnv   string `env:"APP_ENV" envDefault:"production"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Rate limiting
	RateLimitPerFirmPerMin int `env:"RATE_LIMIT_PER_FIRM_PER_MIN" envDefault:"120"`
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate performs custom validation on the configuration.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.RedisURL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	if c.JWTHS256Secret == "" {
		return fmt.Errorf("JWT_HS256_SECRET is required")
	}
	if _, err := base64.StdEncoding.DecodeString(c.JWTHS256Secret); err != nil {
		return fmt.Errorf("JWT_HS256_SECRET must be valid Base64: %w", err)
	}

	if c.JWTClockSkewSeconds < 0 {
		return fmt.Errorf("JWT_CLOCK_SKEW_SECONDS must be non-negative")
	}

	switch c.DocumentStorage {
	case StorageLocal:
		if c.DocumentDir == "" {
			return fmt.Errorf("DOCUMENT_DIR is required for local document storage")
		}
	case StorageS3:
		if c.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required for s3 document storage")
		}
	default:
		return fmt.Errorf("DOCUMENT_STORAGE must be %q or %q, got %q", StorageLocal, StorageS3, c.DocumentStorage)
	}

	if c.OTELSamplingRatio < 0 || c.OTELSamplingRatio > 1 {
		return fmt.Errorf("OTEL_SAMPLING_RATIO must be between 0 and 1")
	}

	if c.RateLimitPerFirmPerMin <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_FIRM_PER_MIN must be positive")
	}

	return nil
}

// JWTSecret returns the decoded HMAC secret.
func (c *Config) JWTSecret() ([]byte, error) {
	secret, err := base64.StdEncoding.DecodeString(c.JWTHS256Secret)
	if err != nil {
		return nil, fmt.Errorf("decode JWT secret: %w", err)
	}
	return secret, nil
}

// TelemetryEnabled reports whether OTel export should be initialized.
func (c *Config) TelemetryEnabled() bool {
	return c.OTELEnabled && c.OTELExporterEndpoint != ""
}
