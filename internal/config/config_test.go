// ABOUTME: Tests for centralized configuration system
// ABOUTME: Verifies environment variable parsing and validation
package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	// Clear environment to test defaults
	os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	// Verify defaults
	if cfg.ListenAddr != ":8080" {
		t.Errorf("ListenAddr = %s, want :8080", cfg.ListenAddr)
	}
	if cfg.RoutingConfigPath != "routing.yaml" {
		t.Errorf("RoutingConfigPath = %s, want routing.yaml", cfg.RoutingConfigPath)
	}
	if cfg.GeoTablePath != "geo_mapping.json" {
		t.Errorf("GeoTablePath = %s, want geo_mapping.json", cfg.GeoTablePath)
	}
	if !cfg.WatchFiles {
		t.Error("WatchFiles = false, want true")
	}
	if cfg.ChatModel != "gpt-4o-mini" {
		t.Errorf("ChatModel = %s, want gpt-4o-mini", cfg.ChatModel)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", cfg.Timeout)
	}
	if cfg.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want 3", cfg.MaxRetries)
	}
	if cfg.FallbackTimeout != 10*time.Second {
		t.Errorf("FallbackTimeout = %v, want 10s", cfg.FallbackTimeout)
	}
	if cfg.FallbackMaxRetry != 2 {
		t.Errorf("FallbackMaxRetry = %d, want 2", cfg.FallbackMaxRetry)
	}
	if cfg.ConfidenceThreshold != 0.6 {
		t.Errorf("ConfidenceThreshold = %f, want 0.6", cfg.ConfidenceThreshold)
	}
	if cfg.TokenRefreshGap != 5*time.Minute {
		t.Errorf("TokenRefreshGap = %v, want 5m", cfg.TokenRefreshGap)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	os.Clearenv()
	os.Setenv("AQROUTE_LISTEN_ADDR", ":9090")
	os.Setenv("AQROUTE_WATCH_FILES", "false")
	os.Setenv("AQROUTE_FALLBACK_MAX_RETRY", "4")
	os.Setenv("AQROUTE_CONFIDENCE_THRESHOLD", "0.75")
	os.Setenv("REPORT_API_TIMEOUT", "45s")
	defer os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.ListenAddr != ":9090" {
		t.Errorf("ListenAddr = %s, want :9090", cfg.ListenAddr)
	}
	if cfg.WatchFiles {
		t.Error("WatchFiles = true, want false")
	}
	if cfg.FallbackMaxRetry != 4 {
		t.Errorf("FallbackMaxRetry = %d, want 4", cfg.FallbackMaxRetry)
	}
	if cfg.ConfidenceThreshold != 0.75 {
		t.Errorf("ConfidenceThreshold = %f, want 0.75", cfg.ConfidenceThreshold)
	}
	if cfg.ReportTimeout != 45*time.Second {
		t.Errorf("ReportTimeout = %v, want 45s", cfg.ReportTimeout)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"threshold above 1", "AQROUTE_CONFIDENCE_THRESHOLD", "1.5"},
		{"threshold below 0", "AQROUTE_CONFIDENCE_THRESHOLD", "-0.1"},
		{"retries above 10", "OPENAI_MAX_RETRIES", "11"},
		{"fallback retries above 10", "AQROUTE_FALLBACK_MAX_RETRY", "99"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			os.Setenv(tt.key, tt.value)
			defer os.Clearenv()

			if _, err := Load(); err == nil {
				t.Errorf("Load() with %s=%s should fail", tt.key, tt.value)
			}
		})
	}
}
