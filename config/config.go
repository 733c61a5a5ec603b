package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Port     string
	GoEnv    string
	LogLevel string

	// Primary blob backends, tried in the order S3, GCS, database
	AWSRegion          string
	AWSS3Bucket        string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	AWSEndpointURL     string
	GCSBucket          string
	DatabaseURL        string

	// Gist fallback backend
	GistID     string
	GistToken  string
	GistAPIURL string

	// Telegram notifications
	TelegramEnabled     bool
	TelegramBotToken    string
	TelegramAdminChatID string
	TelegramUsersCSVURL string
	TelegramAPIURL      string

	// ServiceToken is the shared secret accepted as a bearer token from trusted services
	ServiceToken string

	RateLimitRPS   float64
	RateLimitBurst int
}

var (
	current   *Config
	currentMu sync.RWMutex
)

// Load loads the configuration from environment variables
// It automatically determines which .env file to load based on GO_ENV
func Load() (*Config, error) {
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	envFile := fmt.Sprintf(".env.%s", env)
	if err := godotenv.Load(envFile); err != nil {
		if err := godotenv.Load(); err != nil {
			// Hosted environments set variables directly
			slog.Info("No .env file found, using system environment variables")
		}
	} else {
		slog.Info("Loaded configuration", "file", envFile)
	}

	config := &Config{
		Port:     getEnv("PORT", "8080"),
		GoEnv:    getEnv("GO_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		AWSRegion:          getEnv("AWS_REGION", "us-east-1"),
		AWSS3Bucket:        getEnv("AWS_S3_BUCKET", ""),
		AWSAccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointURL:     getEnv("AWS_ENDPOINT_URL", ""),
		GCSBucket:          getEnv("GCS_BUCKET", ""),
		DatabaseURL:        getEnv("DATABASE_URL", ""),

		GistID:     getEnv("GIST_ID", ""),
		GistToken:  getEnv("GIST_TOKEN", ""),
		GistAPIURL: getEnv("GIST_API_URL", "https://api.github.com"),

		TelegramEnabled:     getEnv("TELEGRAM_ENABLED", "1") == "1",
		TelegramBotToken:    getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramAdminChatID: getEnv("TELEGRAM_ADMIN_CHAT_ID", ""),
		TelegramUsersCSVURL: getEnv("TELEGRAM_USERS_CSV_URL", ""),
		TelegramAPIURL:      getEnv("TELEGRAM_API_URL", "https://api.telegram.org"),

		ServiceToken: strings.TrimSpace(getEnv("SERVICE_TOKEN", "")),
	}

	var err error
	if config.RateLimitRPS, err = strconv.ParseFloat(getEnv("RATE_LIMIT_RPS", "0"), 64); err != nil {
		return nil, fmt.Errorf("RATE_LIMIT_RPS must be a number: %w", err)
	}
	if config.RateLimitBurst, err = strconv.Atoi(getEnv("RATE_LIMIT_BURST", "20")); err != nil {
		return nil, fmt.Errorf("RATE_LIMIT_BURST must be an integer: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks that the configured values are usable together
func (c *Config) Validate() error {
	if c.AWSS3Bucket != "" && c.AWSRegion == "" {
		return fmt.Errorf("AWS_REGION is required when AWS_S3_BUCKET is set")
	}
	if (c.AWSAccessKeyID == "") != (c.AWSSecretAccessKey == "") {
		return fmt.Errorf("AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY must be set together")
	}
	if c.RateLimitRPS < 0 || c.RateLimitBurst < 0 {
		return fmt.Errorf("rate limit settings must not be negative")
	}
	return nil
}

// HasGist returns true if both gist id and token are configured
func (c *Config) HasGist() bool {
	return c.GistID != "" && c.GistToken != ""
}

// TelegramActive returns true if notifications should be delivered
func (c *Config) TelegramActive() bool {
	return c.TelegramEnabled && c.TelegramBotToken != ""
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GoEnv == "production"
}

// IsTest returns true if the application is running in test mode
func (c *Config) IsTest() bool {
	return c.GoEnv == "test"
}

// GetConfig returns the configuration set at startup
func GetConfig() *Config {
	currentMu.RLock()
	defer currentMu.RUnlock()
	return current
}

// SetConfig sets the process configuration (primarily for startup and tests)
func SetConfig(cfg *Config) {
	currentMu.Lock()
	defer currentMu.Unlock()
	current = cfg
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
