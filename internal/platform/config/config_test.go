package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadWithDefaults(t *testing.T) {
	cfg, err := Load(WithEnvMap(map[string]string{}), WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Server.Addr() != ":8080" {
		t.Errorf("unexpected addr %s", cfg.Server.Addr())
	}
	if cfg.Server.ReadTimeout != 15*time.Second {
		t.Errorf("unexpected read timeout: %s", cfg.Server.ReadTimeout)
	}
	if cfg.Database.URL != "" {
		t.Errorf("expected empty database url, got %q", cfg.Database.URL)
	}
	if cfg.Providers.Source != ProviderSourceDatabase {
		t.Errorf("expected database provider source, got %s", cfg.Providers.Source)
	}
	if cfg.Providers.CacheTTL != 0 {
		t.Errorf("expected provider cache disabled by default, got %s", cfg.Providers.CacheTTL)
	}
	if len(cfg.Site.Locales) != 9 {
		t.Errorf("expected 9 default locales, got %v", cfg.Site.Locales)
	}
	if cfg.Site.FallbackLocale != "en" {
		t.Errorf("expected en fallback, got %s", cfg.Site.FallbackLocale)
	}
	if cfg.Telemetry.Tracing != TracingNone {
		t.Errorf("expected tracing disabled, got %s", cfg.Telemetry.Tracing)
	}
	if cfg.Content.HotReload {
		t.Errorf("hot reload should follow dev mode")
	}
}

func TestLoadWithOverrides(t *testing.T) {
	env := map[string]string{
		"PORT":                        "9000",
		"VPNGUIDE_BASE_URL":           "https://vpn.example.com/",
		"VPNGUIDE_SITE_NAME":          "Example VPN",
		"DATABASE_URL":                " postgres://user:pass@db/vpn ",
		"VPNGUIDE_DB_DIAL_TIMEOUT":    "3s",
		"VPNGUIDE_PROVIDER_SOURCE":    "STATIC",
		"VPNGUIDE_PROVIDER_CACHE_TTL": "1m",
		"VPNGUIDE_LOCALES":            "en, de ,th",
		"VPNGUIDE_DEV":                "yes",
		"VPNGUIDE_TRACING":            "stdout",
	}
	cfg, err := Load(WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Server.Port != "9000" {
		t.Errorf("expected PORT fallback 9000, got %s", cfg.Server.Port)
	}
	if cfg.Site.BaseURL != "https://vpn.example.com" {
		t.Errorf("expected trailing slash trimmed, got %s", cfg.Site.BaseURL)
	}
	if cfg.Database.URL != "postgres://user:pass@db/vpn" {
		t.Errorf("unexpected database url %q", cfg.Database.URL)
	}
	if cfg.Database.DialTimeout != 3*time.Second {
		t.Errorf("unexpected dial timeout %s", cfg.Database.DialTimeout)
	}
	if cfg.Providers.Source != ProviderSourceStatic {
		t.Errorf("expected static source, got %s", cfg.Providers.Source)
	}
	if cfg.Providers.CacheTTL != time.Minute {
		t.Errorf("unexpected cache ttl %s", cfg.Providers.CacheTTL)
	}
	if got := cfg.Site.Locales; len(got) != 3 || got[1] != "de" {
		t.Errorf("unexpected locales %v", got)
	}
	if !cfg.Server.Dev || !cfg.Content.HotReload {
		t.Errorf("expected dev mode with hot reload")
	}
	if cfg.Telemetry.Tracing != TracingStdout {
		t.Errorf("unexpected tracing %s", cfg.Telemetry.Tracing)
	}
}

func TestLoadPrefersExplicitPortOverPlatformPort(t *testing.T) {
	env := map[string]string{"PORT": "9000", "VPNGUIDE_PORT": "7000"}
	cfg, err := Load(WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Server.Port != "7000" {
		t.Fatalf("expected 7000, got %s", cfg.Server.Port)
	}
}

func TestLoadValidationError(t *testing.T) {
	env := map[string]string{
		"VPNGUIDE_PORT":            "http",
		"VPNGUIDE_BASE_URL":        "vpn.example.com",
		"VPNGUIDE_PROVIDER_SOURCE": "mongo",
		"VPNGUIDE_FALLBACK_LOCALE": "pt",
		"VPNGUIDE_TRACING":         "jaeger",
	}
	_, err := Load(WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""))
	if err == nil {
		t.Fatal("expected validation error")
	}
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	want := map[string]bool{
		"Server.Port":         true,
		"Site.BaseURL":        true,
		"Site.FallbackLocale": true,
		"Providers.Source":    true,
		"Telemetry.Tracing":   true,
	}
	fields := vErr.Fields()
	if len(fields) != len(want) {
		t.Fatalf("unexpected fields %v", fields)
	}
	for _, f := range fields {
		if !want[f] {
			t.Errorf("unexpected invalid field %s", f)
		}
	}
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "# local overrides\nexport VPNGUIDE_SITE_NAME=\"Dotenv VPN\"\nDATABASE_URL=postgres://localhost/vpn\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env: %v", err)
	}

	cfg, err := Load(WithEnvFile(path), WithoutSystemEnv(), WithEnvMap(map[string]string{
		"DATABASE_URL": "postgres://override/vpn",
	}))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Site.Name != "Dotenv VPN" {
		t.Errorf("expected dotenv site name, got %q", cfg.Site.Name)
	}
	if cfg.Database.URL != "postgres://override/vpn" {
		t.Errorf("explicit map should win over dotenv, got %q", cfg.Database.URL)
	}
}

func TestLoadMissingDotEnvIsIgnored(t *testing.T) {
	_, err := Load(WithEnvFile(filepath.Join(t.TempDir(), "missing.env")), WithoutSystemEnv())
	if err != nil {
		t.Fatalf("missing .env should be ignored: %v", err)
	}
}
