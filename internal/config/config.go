package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Storage  StorageConfig
	Mail     MailConfig
	OpenAI   OpenAIConfig
	Barcode  BarcodeConfig
	Cache    CacheConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"8080"`
	Environment     string        `envconfig:"ENV" default:"production"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	Name     string `envconfig:"DB_NAME" default:"vaulted"`
	User     string `envconfig:"DB_USER" default:"postgres"`
	Password string `envconfig:"DB_PASSWORD" default:""`
	SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	TimeZone string `envconfig:"DB_TIMEZONE" default:"UTC"`
}

// DSN returns the PostgreSQL connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode, c.TimeZone,
	)
}

// AuthConfig holds JWT settings.
type AuthConfig struct {
	JWTSecret       string        `envconfig:"JWT_SECRET" default:""`
	AccessDuration  time.Duration `envconfig:"JWT_ACCESS_DURATION" default:"15m"`
	RefreshDuration time.Duration `envconfig:"JWT_REFRESH_DURATION" default:"168h"`
}

// StorageConfig holds S3-compatible object storage settings.
type StorageConfig struct {
	Endpoint  string `envconfig:"S3_ENDPOINT" default:""`
	Region    string `envconfig:"S3_REGION" default:"us-east-1"`
	AccessKey string `envconfig:"S3_ACCESS_KEY" default:""`
	SecretKey string `envconfig:"S3_SECRET_KEY" default:""`
	Bucket    string `envconfig:"S3_BUCKET" default:""`
}

// Configured reports whether object storage credentials are present.
func (c StorageConfig) Configured() bool {
	return c.AccessKey != "" && c.SecretKey != "" && c.Bucket != ""
}

// MailConfig holds SES and SMTP mail relay settings. SES is preferred when
// its credentials are present, SMTP is the fallback.
type MailConfig struct {
	AWSRegion    string `envconfig:"AWS_REGION" default:""`
	AWSAccessKey string `envconfig:"AWS_ACCESS_KEY_ID" default:""`
	AWSSecretKey string `envconfig:"AWS_SECRET_ACCESS_KEY" default:""`
	SESFromEmail string `envconfig:"SES_FROM_EMAIL" default:""`

	SMTPHost     string `envconfig:"SMTP_HOST" default:""`
	SMTPPort     string `envconfig:"SMTP_PORT" default:"587"`
	SMTPUser     string `envconfig:"SMTP_USER" default:""`
	SMTPPassword string `envconfig:"SMTP_PASSWORD" default:""`
	FromEmail    string `envconfig:"FROM_EMAIL" default:""`
}

// OpenAIConfig holds the AI vision service settings.
type OpenAIConfig struct {
	APIKey string `envconfig:"OPENAI_API_KEY" default:""`
}

// BarcodeConfig holds the external product database settings.
type BarcodeConfig struct {
	APIKey   string        `envconfig:"BARCODE_API_KEY" default:""`
	BaseURL  string        `envconfig:"BARCODE_API_URL" default:"https://api.barcodelookup.com/v3/products"`
	CacheTTL time.Duration `envconfig:"BARCODE_CACHE_TTL" default:"24h"`
}

// CacheConfig holds lookup cache settings.
type CacheConfig struct {
	Type          string `envconfig:"CACHE_TYPE" default:"memory"` // memory or redis
	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
}

// Load reads configuration from the environment, loading a .env file first
// when one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return &cfg, nil
}
