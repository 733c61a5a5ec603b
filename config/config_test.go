package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	for _, key := range []string{
		"PORT", "AWS_S3_BUCKET", "AWS_ACCESS_KEY_ID", "AWS_SECRET_ACCESS_KEY", "GCS_BUCKET",
		"DATABASE_URL", "GIST_ID", "GIST_TOKEN", "TELEGRAM_ENABLED", "TELEGRAM_BOT_TOKEN",
		"SERVICE_TOKEN", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.True(t, cfg.IsTest())
	assert.False(t, cfg.IsProduction())
	assert.True(t, cfg.TelegramEnabled, "Telegram is enabled unless explicitly disabled")
	assert.False(t, cfg.TelegramActive(), "Telegram needs a bot token to be active")
	assert.False(t, cfg.HasGist())
	assert.Equal(t, float64(0), cfg.RateLimitRPS)
	assert.Equal(t, "https://api.github.com", cfg.GistAPIURL)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	t.Setenv("GIST_ID", "abc")
	t.Setenv("GIST_TOKEN", "tok")
	t.Setenv("TELEGRAM_ENABLED", "0")
	t.Setenv("TELEGRAM_BOT_TOKEN", "bot")
	t.Setenv("SERVICE_TOKEN", "  secret  ")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("RATE_LIMIT_BURST", "7")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.HasGist())
	assert.False(t, cfg.TelegramActive(), "TELEGRAM_ENABLED=0 disables notifications")
	assert.Equal(t, "secret", cfg.ServiceToken)
	assert.Equal(t, 2.5, cfg.RateLimitRPS)
	assert.Equal(t, 7, cfg.RateLimitBurst)
}

func TestLoad_InvalidRateLimit(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	t.Setenv("RATE_LIMIT_RPS", "fast")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"empty config is valid", Config{}, false},
		{"bucket with region", Config{AWSS3Bucket: "b", AWSRegion: "eu-west-1"}, false},
		{"bucket without region", Config{AWSS3Bucket: "b"}, true},
		{"access key without secret", Config{AWSAccessKeyID: "id"}, true},
		{"negative burst", Config{RateLimitBurst: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGetSetConfig(t *testing.T) {
	original := GetConfig()
	defer SetConfig(original)

	cfg := &Config{Port: "9999"}
	SetConfig(cfg)
	assert.Same(t, cfg, GetConfig())
}
