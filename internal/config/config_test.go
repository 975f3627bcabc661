package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("METEOCAT_API_KEY", "test-key")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Network != "XEMA" {
		t.Errorf("expected default network XEMA, got %s", cfg.Network)
	}
	if cfg.HTTPTimeout != 30*time.Second {
		t.Errorf("expected default timeout 30s, got %s", cfg.HTTPTimeout)
	}
	if cfg.Concurrency != 4 {
		t.Errorf("expected default concurrency 4, got %d", cfg.Concurrency)
	}
	if cfg.CollectInterval != 24*time.Hour {
		t.Errorf("expected default interval 24h, got %s", cfg.CollectInterval)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("METEOCAT_API_KEY", "test-key")
	t.Setenv("HTTP_TIMEOUT", "soon")

	if _, err := Load(); err == nil {
		t.Fatal("expected an error for an unparseable timeout")
	}
}

func TestLoadRejectsInvalidLogLevel(t *testing.T) {
	t.Setenv("METEOCAT_API_KEY", "test-key")
	t.Setenv("LOG_LEVEL", "verbose")

	if _, err := Load(); err == nil {
		t.Fatal("expected an error for an unknown log level")
	}
}
