package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("TENANTS_FILE", "")
	t.Setenv("BINANCE_BASE_URL", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("SNAPSHOT_TTL_SECS", "")

	cfg := Load()
	if cfg.Port != 5000 {
		t.Fatalf("expected default port 5000, got %d", cfg.Port)
	}
	if cfg.TenantsFile != "bot_config.json" {
		t.Fatalf("expected default tenants file, got %q", cfg.TenantsFile)
	}
	if cfg.BinanceBaseURL != "" {
		t.Fatalf("expected empty base URL, got %q", cfg.BinanceBaseURL)
	}
	if cfg.SnapshotTTLSecs != 10 {
		t.Fatalf("expected default snapshot TTL 10, got %d", cfg.SnapshotTTLSecs)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("TENANTS_FILE", "tenants.json")
	t.Setenv("BINANCE_BASE_URL", "https://api.binance.com")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("SNAPSHOT_TTL_SECS", "30")

	cfg := Load()
	if cfg.Port != 8080 {
		t.Fatalf("expected port 8080, got %d", cfg.Port)
	}
	if cfg.TenantsFile != "tenants.json" {
		t.Fatalf("unexpected tenants file %q", cfg.TenantsFile)
	}
	if cfg.BinanceBaseURL != "https://api.binance.com" {
		t.Fatalf("unexpected base URL %q", cfg.BinanceBaseURL)
	}
	if cfg.RedisURL != "redis://localhost:6379/0" {
		t.Fatalf("unexpected redis URL %q", cfg.RedisURL)
	}
	if cfg.SnapshotTTLSecs != 30 {
		t.Fatalf("expected snapshot TTL 30, got %d", cfg.SnapshotTTLSecs)
	}
}

func TestLoadIgnoresInvalidNumbers(t *testing.T) {
	t.Setenv("PORT", "not-a-port")
	t.Setenv("SNAPSHOT_TTL_SECS", "-5")

	cfg := Load()
	if cfg.Port != 5000 {
		t.Fatalf("expected fallback port 5000, got %d", cfg.Port)
	}
	if cfg.SnapshotTTLSecs != 10 {
		t.Fatalf("expected fallback snapshot TTL 10, got %d", cfg.SnapshotTTLSecs)
	}
}
