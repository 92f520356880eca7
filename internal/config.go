package internal

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/ndasurveying/dashctl/internal/cache"
	"github.com/ndasurveying/dashctl/internal/session"
)

// Profile selects which backend the client talks to.
const (
	ProfileLocal    = "local"
	ProfileDeployed = "deployed"
)

const (
	localAPIURL    = "http://localhost:8000"
	deployedAPIURL = "https://api.ndasurveying.co.uk"
)

type Config struct {
	Env      string
	Profile  string
	LogLevel string

	// Backend API
	APIURL     string
	APITimeout time.Duration

	// Local state files
	SessionPath string
	CachePath   string
	// Disables the offline snapshot fallback entirely when false.
	CacheEnabled bool

	// Prometheus listener for long-running watch sessions.
	// Empty disables the listener.
	MetricsAddr string

	// When set, logs go to this file instead of stderr. The watch TUI
	// always logs to a file so output never corrupts the screen.
	LogFile string
}

func NewConfig() (*Config, error) {
	// Load .env file if it exists (ignored when absent)
	_ = godotenv.Load()

	cfg := &Config{
		Env:      getEnv("ENV", "development"),
		Profile:  getEnv("DASHBOARD_PROFILE", ProfileDeployed),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		APITimeout: getEnvDuration("DASHBOARD_API_TIMEOUT", 30*time.Second),

		CacheEnabled: getEnvBool("DASHBOARD_CACHE_ENABLED", true),

		MetricsAddr: getEnv("METRICS_ADDR", ""),
		LogFile:     getEnv("DASHBOARD_LOG_FILE", ""),
	}

	if cfg.Profile != ProfileLocal && cfg.Profile != ProfileDeployed {
		return nil, fmt.Errorf("DASHBOARD_PROFILE must be either 'local' or 'deployed', got: %s", cfg.Profile)
	}

	// Explicit URL wins; otherwise the profile decides.
	cfg.APIURL = os.Getenv("DASHBOARD_API_URL")
	if cfg.APIURL == "" {
		if cfg.Profile == ProfileDeployed {
			cfg.APIURL = deployedAPIURL
		} else {
			cfg.APIURL = localAPIURL
		}
	}
	parsed, err := url.Parse(cfg.APIURL)
	if err != nil || parsed.Scheme != "http" && parsed.Scheme != "https" || parsed.Host == "" {
		return nil, fmt.Errorf("DASHBOARD_API_URL must be an http(s) URL, got: %s", cfg.APIURL)
	}

	cfg.SessionPath = os.Getenv("DASHBOARD_SESSION_PATH")
	if cfg.SessionPath == "" {
		cfg.SessionPath, err = session.DefaultPath()
		if err != nil {
			return nil, fmt.Errorf("resolve session path: %w", err)
		}
	}

	cfg.CachePath = os.Getenv("DASHBOARD_CACHE_PATH")
	if cfg.CachePath == "" {
		cfg.CachePath, err = cache.DefaultPath()
		if err != nil {
			return nil, fmt.Errorf("resolve cache path: %w", err)
		}
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
