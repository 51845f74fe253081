// ABOUTME: Centralized configuration for the query routing service
// ABOUTME: Loads from environment variables with validation and defaults
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all environment-driven configuration for the service
type Config struct {
	// HTTP server settings
	ListenAddr      string
	ShutdownTimeout time.Duration

	// Routing config + geo table files (hot reloaded)
	RoutingConfigPath string
	GeoTablePath      string
	WatchFiles        bool

	// OpenAI-compatible model settings for fallback recovery
	OpenAIKey     string
	OpenAIBaseURL string
	ChatModel     string
	Timeout       time.Duration
	MaxRetries    int
	RetryDelay    time.Duration

	// Fallback manager settings
	FallbackTimeout     time.Duration
	FallbackMaxRetry    int
	ConfidenceThreshold float64

	// Reporting API settings
	ReportBaseURL   string
	ReportTokenURL  string
	ReportUser      string
	ReportPassword  string
	ReportTimeout   time.Duration
	TokenRefreshGap time.Duration

	// General query backend settings
	GeneralQueryURL     string
	GeneralQueryTimeout time.Duration
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		// Defaults
		ListenAddr:          getEnv("AQROUTE_LISTEN_ADDR", ":8080"),
		ShutdownTimeout:     getEnvDuration("AQROUTE_SHUTDOWN_TIMEOUT", 10*time.Second),
		RoutingConfigPath:   getEnv("AQROUTE_ROUTING_CONFIG", "routing.yaml"),
		GeoTablePath:        getEnv("AQROUTE_GEO_TABLE", "geo_mapping.json"),
		WatchFiles:          getEnvBool("AQROUTE_WATCH_FILES", true),
		OpenAIKey:           os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:       getEnv("OPENAI_BASE_URL", ""),
		ChatModel:           getEnv("AQROUTE_OPENAI_MODEL", "gpt-4o-mini"),
		Timeout:             getEnvDuration("OPENAI_TIMEOUT", 30*time.Second),
		MaxRetries:          getEnvInt("OPENAI_MAX_RETRIES", 3),
		RetryDelay:          getEnvDuration("OPENAI_RETRY_DELAY", 2*time.Second),
		FallbackTimeout:     getEnvDuration("AQROUTE_FALLBACK_TIMEOUT", 10*time.Second),
		FallbackMaxRetry:    getEnvInt("AQROUTE_FALLBACK_MAX_RETRY", 2),
		ConfidenceThreshold: getEnvFloat("AQROUTE_CONFIDENCE_THRESHOLD", 0.6),
		ReportBaseURL:       os.Getenv("REPORT_API_BASE_URL"),
		ReportTokenURL:      os.Getenv("REPORT_API_TOKEN_URL"),
		ReportUser:          os.Getenv("REPORT_API_USER"),
		ReportPassword:      os.Getenv("REPORT_API_PASSWORD"),
		ReportTimeout:       getEnvDuration("REPORT_API_TIMEOUT", 30*time.Second),
		TokenRefreshGap:     getEnvDuration("REPORT_TOKEN_REFRESH_GAP", 5*time.Minute),
		GeneralQueryURL:     os.Getenv("GENERAL_QUERY_URL"),
		GeneralQueryTimeout: getEnvDuration("GENERAL_QUERY_TIMEOUT", 60*time.Second),
	}

	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 1 {
		return fmt.Errorf("AQROUTE_CONFIDENCE_THRESHOLD must be 0-1, got %f", c.ConfidenceThreshold)
	}
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("OPENAI_MAX_RETRIES must be 0-10, got %d", c.MaxRetries)
	}
	if c.FallbackMaxRetry < 0 || c.FallbackMaxRetry > 10 {
		return fmt.Errorf("AQROUTE_FALLBACK_MAX_RETRY must be 0-10, got %d", c.FallbackMaxRetry)
	}
	if c.RoutingConfigPath == "" {
		return fmt.Errorf("AQROUTE_ROUTING_CONFIG must not be empty")
	}
	if c.GeoTablePath == "" {
		return fmt.Errorf("AQROUTE_GEO_TABLE must not be empty")
	}
	return nil
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	return v == "true" || v == "1"
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
