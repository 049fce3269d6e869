package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"APP_PORT", "HTTP_PORT", "DATABASE_URL", "API_BASE_URL", "CORS_ALLOWED_ORIGINS", "KAFKA_BROKERS", "APP_ENV"} {
		t.Setenv(k, "")
	}
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.HTTPPort)
	assert.Equal(t, "8501", cfg.DashboardPort)
	assert.Equal(t, DefaultDatabaseURL, cfg.DatabaseURL)
	assert.Equal(t, "http://localhost:8000", cfg.APIBaseURL)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("APP_PORT", "")
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("API_BASE_URL", "http://api.internal:9000/")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.HTTPPort)
	assert.Equal(t, "http://api.internal:9000", cfg.APIBaseURL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			HTTPPort:           "8000",
			DashboardPort:      "8501",
			DatabaseURL:        DefaultDatabaseURL,
			APIBaseURL:         "http://localhost:8000",
			CORSAllowedOrigins: []string{"*"},
		}
	}

	cfg := base()
	cfg.DatabaseURL = ""
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.APIBaseURL = "localhost:8000"
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.AppEnv = "production"
	assert.Error(t, cfg.Validate(), "wildcard origin rejected in production")

	cfg.CORSAllowedOrigins = []string{"https://crm.example"}
	assert.NoError(t, cfg.Validate())
}
