package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.API.BaseURL != "http://localhost:8000" {
		t.Fatalf("unexpected base url %q", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 10*time.Second {
		t.Fatalf("expected 10s timeout, got %v", cfg.API.Timeout)
	}
	if cfg.Session.Driver != SessionDriverSQLite {
		t.Fatalf("expected sqlite session driver, got %q", cfg.Session.Driver)
	}
	if cfg.View.Buffer != 10 {
		t.Fatalf("expected buffer 10, got %d", cfg.View.Buffer)
	}
	if !cfg.View.Virtualize {
		t.Fatal("expected virtualization on by default")
	}
	if cfg.Metrics.Enabled() {
		t.Fatal("metrics should be disabled without an address")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv(EnvAPIBaseURL, "http://api.test:9000")
	t.Setenv(EnvAPITimeout, "3s")
	t.Setenv(EnvViewItemHeight, "6")
	t.Setenv(EnvFavoritesCacheTTL, "1h")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if cfg.API.BaseURL != "http://api.test:9000" {
		t.Fatalf("unexpected base url %q", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 3*time.Second {
		t.Fatalf("expected 3s timeout, got %v", cfg.API.Timeout)
	}
	if cfg.View.ItemHeight != 6 {
		t.Fatalf("expected item height 6, got %d", cfg.View.ItemHeight)
	}
	if cfg.Session.FavoritesCacheTTL != time.Hour {
		t.Fatalf("expected 1h cache ttl, got %v", cfg.Session.FavoritesCacheTTL)
	}
}

func TestLoad_RedisDriverRequiresAddress(t *testing.T) {
	t.Setenv(EnvSessionDriver, SessionDriverRedis)

	if _, err := Load(); err == nil {
		t.Fatal("expected redis driver without url to fail")
	}

	t.Setenv(EnvRedisURL, "redis://localhost:6379/0")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if !cfg.Session.UsesRedis() {
		t.Fatal("expected UsesRedis true")
	}
}

func TestLoad_UnknownDriver(t *testing.T) {
	t.Setenv(EnvSessionDriver, "memcache")
	if _, err := Load(); err == nil {
		t.Fatal("expected unsupported driver error")
	}
}

func TestLoad_RejectsZeroItemHeight(t *testing.T) {
	t.Setenv(EnvViewItemHeightCompact, "0")
	if _, err := Load(); err == nil {
		t.Fatal("expected zero item height to fail")
	}
}

func TestAppConfigEnvHelpers(t *testing.T) {
	devConfig := AppConfig{Env: "DEV"}
	if !devConfig.IsDev() {
		t.Fatalf("expected IsDev true for %q", devConfig.Env)
	}
	if devConfig.IsProd() {
		t.Fatalf("expected IsProd false for %q", devConfig.Env)
	}

	prodConfig := AppConfig{Env: "prod"}
	if !prodConfig.IsProd() {
		t.Fatalf("expected IsProd true for %q", prodConfig.Env)
	}
	if prodConfig.IsDev() {
		t.Fatalf("expected IsDev false for %q", prodConfig.Env)
	}
}
