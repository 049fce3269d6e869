package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const DefaultDatabaseURL = "sqlite://smart_agence.db"

type Config struct {
	AppHost       string
	HTTPPort      string
	DashboardPort string
	AppEnv        string
	LogLevel      string
	LogFormat     string

	// DatabaseURL selects the store: postgres://... or sqlite://path.
	DatabaseURL string

	// APIBaseURL is where the dashboard reaches the API.
	APIBaseURL string

	CORSAllowedOrigins []string

	// KafkaBrokers and KafkaTopicTicket enable ticket events; empty disables them.
	KafkaBrokers     []string
	KafkaTopicTicket string
}

func Load() (*Config, error) {
	_ = godotenv.Load(".env")
	_ = godotenv.Load("../.env")

	cfg := &Config{
		AppHost:            getEnv("APP_HOST", "0.0.0.0"),
		HTTPPort:           firstEnv("APP_PORT", "HTTP_PORT", "8000"),
		DashboardPort:      getEnv("DASHBOARD_PORT", "8501"),
		AppEnv:             getEnv("APP_ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "text"),
		DatabaseURL:        getEnv("DATABASE_URL", DefaultDatabaseURL),
		APIBaseURL:         strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:8000"), "/"),
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		KafkaBrokers:       splitList(getEnv("KAFKA_BROKERS", "")),
		KafkaTopicTicket:   getEnv("KAFKA_TOPIC_TICKET", ""),
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return errors.New("config: DATABASE_URL is required")
	}
	if c.HTTPPort == "" || c.DashboardPort == "" {
		return errors.New("config: APP_PORT and DASHBOARD_PORT are required")
	}
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("config: API_BASE_URL %q is not an absolute url", c.APIBaseURL)
	}
	if c.AppEnv == "production" {
		for _, o := range c.CORSAllowedOrigins {
			if o == "*" {
				return errors.New("config: in production CORS_ALLOWED_ORIGINS must list explicit origins")
			}
		}
	}
	return nil
}

func (c *Config) Addr() string {
	return c.AppHost + ":" + c.HTTPPort
}

func (c *Config) DashboardAddr() string {
	return c.AppHost + ":" + c.DashboardPort
}

// splitList splits "a, b,c" into its non-empty trimmed items.
func splitList(s string) []string {
	var out []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func firstEnv(keysAndDef ...string) string {
	if len(keysAndDef) == 0 {
		return ""
	}
	def := keysAndDef[len(keysAndDef)-1]
	for _, k := range keysAndDef[:len(keysAndDef)-1] {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return def
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
