package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.HTTPPort != "8082" {
		t.Fatalf("unexpected default port %q", cfg.HTTPPort)
	}
	if cfg.StoreBackend != "postgres" {
		t.Fatalf("unexpected default store backend %q", cfg.StoreBackend)
	}
	if cfg.SessionCacheTTL != 30*time.Second {
		t.Fatalf("unexpected default cache ttl %s", cfg.SessionCacheTTL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9999")
	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("SESSION_CACHE_TTL", "2m")

	cfg := Load()
	if cfg.HTTPPort != "9999" || cfg.StoreBackend != "memory" {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.SessionCacheTTL != 2*time.Minute {
		t.Fatalf("duration override not applied: %s", cfg.SessionCacheTTL)
	}
}

func TestLoadInvalidDurationFallsBack(t *testing.T) {
	t.Setenv("CLEANUP_INTERVAL", "not-a-duration")
	cfg := Load()
	if cfg.CleanupInterval != 5*time.Minute {
		t.Fatalf("expected fallback interval, got %s", cfg.CleanupInterval)
	}
}
