package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port           string   `yaml:"port" env:"SERVER_PORT"`
		Mode           string   `yaml:"mode" env:"SERVER_MODE"`
		BaseURL        string   `yaml:"base_url" env:"SERVER_BASE_URL"`
		FrontendURL    string   `yaml:"frontend_url" env:"SERVER_FRONTEND_URL"`
		StoragePath    string   `yaml:"storage_path" env:"SERVER_STORAGE_PATH"`
		AllowedOrigins []string `yaml:"allowed_origins" env:"SERVER_ALLOWED_ORIGINS"`
		ReadTimeout    string   `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT"`
		WriteTimeout   string   `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT"`
		MaxUploadMB    int      `yaml:"max_upload_mb" env:"SERVER_MAX_UPLOAD_MB"`
	} `yaml:"server"`

	Database struct {
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
		AutoMigrate     bool   `yaml:"auto_migrate" env:"DB_AUTO_MIGRATE"`
	} `yaml:"database"`

	JWT struct {
		Secret                 string `yaml:"secret" env:"JWT_SECRET"`
		AccessTokenExpiration  string `yaml:"access_token_expiration" env:"JWT_ACCESS_TOKEN_EXPIRATION"`
		RefreshTokenExpiration string `yaml:"refresh_token_expiration" env:"JWT_REFRESH_TOKEN_EXPIRATION"`
		Issuer                 string `yaml:"issuer" env:"JWT_ISSUER"`
	} `yaml:"jwt"`

	Logging struct {
		Level      string `yaml:"level" env:"LOG_LEVEL"`
		Format     string `yaml:"format" env:"LOG_FORMAT"`
		File       string `yaml:"file" env:"LOG_FILE"`
		MaxSizeMB  int    `yaml:"max_size_mb" env:"LOG_MAX_SIZE_MB"`
		MaxBackups int    `yaml:"max_backups" env:"LOG_MAX_BACKUPS"`
		MaxAgeDays int    `yaml:"max_age_days" env:"LOG_MAX_AGE_DAYS"`
		Compress   bool   `yaml:"compress" env:"LOG_COMPRESS"`
	} `yaml:"logging"`

	OTP struct {
		TTL    string `yaml:"ttl" env:"OTP_TTL"`
		Digits int    `yaml:"digits" env:"OTP_DIGITS"`
		Issuer string `yaml:"issuer" env:"OTP_ISSUER"`
	} `yaml:"otp"`

	Email struct {
		Provider     string `yaml:"provider" env:"EMAIL_PROVIDER"`
		FromName     string `yaml:"from_name" env:"EMAIL_FROM_NAME"`
		FromEmail    string `yaml:"from_email" env:"EMAIL_FROM"`
		SMTPHost     string `yaml:"smtp_host" env:"SMTP_HOST"`
		SMTPPort     int    `yaml:"smtp_port" env:"SMTP_PORT"`
		SMTPUser     string `yaml:"smtp_user" env:"SMTP_USER"`
		SMTPPassword string `yaml:"smtp_password" env:"SMTP_PASSWORD"`
		SMTPUseTLS   bool   `yaml:"smtp_use_tls" env:"SMTP_USE_TLS"`
		SESRegion    string `yaml:"ses_region" env:"SES_REGION"`
	} `yaml:"email"`

	Storage struct {
		Provider string `yaml:"provider" env:"STORAGE_PROVIDER"`
		Bucket   string `yaml:"bucket" env:"STORAGE_BUCKET"`
		Region   string `yaml:"region" env:"STORAGE_REGION"`
		BaseURL  string `yaml:"base_url" env:"STORAGE_BASE_URL"`
	} `yaml:"storage"`

	Redis struct {
		Enabled     bool   `yaml:"enabled" env:"REDIS_ENABLED"`
		Host        string `yaml:"host" env:"REDIS_HOST"`
		Port        string `yaml:"port" env:"REDIS_PORT"`
		Password    string `yaml:"password" env:"REDIS_PASSWORD"`
		DB          int    `yaml:"db" env:"REDIS_DB"`
		PoolSize    int    `yaml:"pool_size" env:"REDIS_POOL_SIZE"`
		PresenceTTL string `yaml:"presence_ttl" env:"REDIS_PRESENCE_TTL"`
	} `yaml:"redis"`

	RateLimit struct {
		Enabled           bool `yaml:"enabled" env:"RATE_LIMIT_ENABLED"`
		RequestsPerMinute int  `yaml:"requests_per_minute" env:"RATE_LIMIT_RPM"`
		AuthPerMinute     int  `yaml:"auth_per_minute" env:"RATE_LIMIT_AUTH_RPM"`
	} `yaml:"ratelimit"`

	Moderation struct {
		Enabled   bool    `yaml:"enabled" env:"MODERATION_ENABLED"`
		Endpoint  string  `yaml:"endpoint" env:"MODERATION_ENDPOINT"`
		Token     string  `yaml:"token" env:"MODERATION_TOKEN"`
		Label     string  `yaml:"label" env:"MODERATION_LABEL"`
		Threshold float64 `yaml:"threshold" env:"MODERATION_THRESHOLD"`
		Timeout   string  `yaml:"timeout" env:"MODERATION_TIMEOUT"`
	} `yaml:"moderation"`

	Search struct {
		Enabled bool     `yaml:"enabled" env:"SEARCH_ENABLED"`
		URLs    []string `yaml:"urls" env:"ELASTICSEARCH_URLS"`
	} `yaml:"search"`

	Telemetry struct {
		Enabled      bool    `yaml:"enabled" env:"OTEL_ENABLED"`
		ServiceName  string  `yaml:"service_name" env:"OTEL_SERVICE_NAME"`
		OTLPEndpoint string  `yaml:"otlp_endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
		SamplingRate float64 `yaml:"sampling_rate" env:"OTEL_SAMPLING_RATE"`
	} `yaml:"telemetry"`

	OAuth struct {
		Google struct {
			ClientID     string `yaml:"client_id" env:"GOOGLE_CLIENT_ID"`
			ClientSecret string `yaml:"client_secret" env:"GOOGLE_CLIENT_SECRET"`
			RedirectURL  string `yaml:"redirect_url" env:"GOOGLE_REDIRECT_URL"`
		} `yaml:"google"`
	} `yaml:"oauth"`

	Chat struct {
		RequireToken bool `yaml:"require_token" env:"CHAT_REQUIRE_TOKEN"`
	} `yaml:"chat"`
}

// LoadConfig loads configuration from a file, an optional .env file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}
	setDefaults(config)

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// A missing .env is normal outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Server.Port = "8000"
	config.Server.Mode = "development"
	config.Server.BaseURL = "http://localhost:8000"
	config.Server.FrontendURL = "http://localhost:5173"
	config.Server.StoragePath = "uploads"
	config.Server.AllowedOrigins = []string{"http://localhost:5173"}
	config.Server.ReadTimeout = "15s"
	config.Server.WriteTimeout = "30s"
	config.Server.MaxUploadMB = 20

	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "noobsquad"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 5
	config.Database.MaxOpenConns = 20
	config.Database.ConnMaxLifetime = "1h"
	config.Database.AutoMigrate = true

	config.JWT.AccessTokenExpiration = "1h"
	config.JWT.RefreshTokenExpiration = "720h"
	config.JWT.Issuer = "noobsquad"

	config.Logging.Level = "info"
	config.Logging.Format = "json"

	config.OTP.TTL = "10m"
	config.OTP.Digits = 6
	config.OTP.Issuer = "noobsquad"

	config.Email.Provider = "log"
	config.Email.FromName = "NoobSquad"
	config.Email.SMTPPort = 587
	config.Email.SMTPUseTLS = true

	config.Storage.Provider = "local"

	config.Redis.Host = "localhost"
	config.Redis.Port = "6379"
	config.Redis.PoolSize = 10
	config.Redis.PresenceTTL = "70s"

	config.RateLimit.Enabled = true
	config.RateLimit.RequestsPerMinute = 300
	config.RateLimit.AuthPerMinute = 20

	config.Moderation.Label = "toxic"
	config.Moderation.Threshold = 0.7
	config.Moderation.Timeout = "5s"

	config.Search.URLs = []string{"http://localhost:9200"}

	config.Telemetry.ServiceName = "noobsquad-api"
	config.Telemetry.SamplingRate = 1.0
}

// loadFromEnv overrides configuration with environment variables
func loadFromEnv(config *Config) error {
	return processStructFields(config)
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if config.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	durations := map[string]string{
		"JWT access token expiration":  config.JWT.AccessTokenExpiration,
		"JWT refresh token expiration": config.JWT.RefreshTokenExpiration,
		"database connection lifetime": config.Database.ConnMaxLifetime,
		"OTP ttl":                      config.OTP.TTL,
	}
	for name, value := range durations {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s format: %w", name, err)
		}
	}

	switch strings.ToLower(config.Storage.Provider) {
	case "local":
	case "s3":
		if config.Storage.Bucket == "" {
			return fmt.Errorf("storage bucket is required for the s3 provider")
		}
	default:
		return fmt.Errorf("unknown storage provider %q", config.Storage.Provider)
	}

	if config.Moderation.Enabled && config.Moderation.Endpoint == "" {
		return fmt.Errorf("moderation endpoint is required when moderation is enabled")
	}

	return nil
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}

// RedisAddr returns host:port of the redis server
func (c *Config) RedisAddr() string {
	return c.Redis.Host + ":" + c.Redis.Port
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Mode, "production")
}

// GetEnv gets an environment variable or returns a default value
func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
