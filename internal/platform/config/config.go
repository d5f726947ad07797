package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultEnvFile          = ".env"
	defaultPort             = "8080"
	defaultBaseURL          = "http://localhost:8080"
	defaultSiteName         = "VPN Guide"
	defaultReadTimeout      = 15 * time.Second
	defaultWriteTimeout     = 15 * time.Second
	defaultIdleTimeout      = 60 * time.Second
	defaultRequestTimeout   = 30 * time.Second
	defaultDialTimeout      = 10 * time.Second
	defaultProviderSource   = ProviderSourceDatabase
	defaultProviderCacheLen = 128
	defaultFallbackLocale   = "en"
	defaultTracing          = TracingNone
)

// Provider sources understood by the application.
const (
	ProviderSourceDatabase = "database"
	ProviderSourceStatic   = "static"
)

// Tracing exporters understood by the application.
const (
	TracingNone   = "none"
	TracingStdout = "stdout"
)

var defaultLocales = []string{"en", "nl", "de", "es", "fr", "zh", "ja", "ko", "th"}

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server    ServerConfig
	Site      SiteConfig
	Database  DatabaseConfig
	Providers ProvidersConfig
	Content   ContentConfig
	Telemetry TelemetryConfig
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	RequestTimeout time.Duration
	Dev            bool
}

// Addr returns the listen address for the configured port.
func (s ServerConfig) Addr() string {
	return ":" + s.Port
}

// SiteConfig holds public-facing site identity used in SEO metadata.
type SiteConfig struct {
	Name           string
	BaseURL        string
	LogoURL        string
	Locales        []string
	FallbackLocale string
}

// DatabaseConfig stores Postgres connection parameters. URL is deliberately optional at
// load time; it is checked when the first query is issued.
type DatabaseConfig struct {
	URL         string
	DialTimeout time.Duration
}

// ProvidersConfig selects the provider record source and optional caching.
type ProvidersConfig struct {
	Source    string
	CacheTTL  time.Duration
	CacheSize int
}

// ContentConfig points at on-disk content used in dev mode instead of the embedded copy.
type ContentConfig struct {
	Dir       string
	Templates string
	HotReload bool
}

// TelemetryConfig toggles tracing and metrics exposure.
type TelemetryConfig struct {
	Tracing       string
	MetricsPath   string
	EnableMetrics bool
}

// ValidationError is returned when configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile overrides the .env file path used for local overrides.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap injects an explicit key/value map for environment lookups. Values in the map
// take precedence over system environment variables.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables reading from os.LookupEnv, relying only on provided maps and .env files.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// Load assembles the application configuration by combining defaults, .env overrides,
// environment variables and explicit maps (in increasing precedence).
func Load(opts ...Option) (Config, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	dotEnvValues, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		if options.envMap != nil {
			if value, ok := options.envMap[key]; ok {
				return value, true
			}
		}
		if options.useSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		if dotEnvValues != nil {
			if value, ok := dotEnvValues[key]; ok {
				return value, true
			}
		}
		return "", false
	}

	dev := boolWithDefault(lookup, "VPNGUIDE_DEV", false)

	cfg := Config{
		Server: ServerConfig{
			Port:           stringWithDefault(lookup, "VPNGUIDE_PORT", stringWithDefault(lookup, "PORT", defaultPort)),
			ReadTimeout:    durationWithDefault(lookup, "VPNGUIDE_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout:   durationWithDefault(lookup, "VPNGUIDE_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:    durationWithDefault(lookup, "VPNGUIDE_IDLE_TIMEOUT", defaultIdleTimeout),
			RequestTimeout: durationWithDefault(lookup, "VPNGUIDE_REQUEST_TIMEOUT", defaultRequestTimeout),
			Dev:            dev,
		},
		Site: SiteConfig{
			Name:           stringWithDefault(lookup, "VPNGUIDE_SITE_NAME", defaultSiteName),
			BaseURL:        strings.TrimRight(stringWithDefault(lookup, "VPNGUIDE_BASE_URL", defaultBaseURL), "/"),
			LogoURL:        stringWithDefault(lookup, "VPNGUIDE_LOGO_URL", ""),
			Locales:        csvWithDefault(lookup, "VPNGUIDE_LOCALES", defaultLocales),
			FallbackLocale: strings.ToLower(stringWithDefault(lookup, "VPNGUIDE_FALLBACK_LOCALE", defaultFallbackLocale)),
		},
		Database: DatabaseConfig{
			URL:         strings.TrimSpace(stringWithDefault(lookup, "DATABASE_URL", "")),
			DialTimeout: durationWithDefault(lookup, "VPNGUIDE_DB_DIAL_TIMEOUT", defaultDialTimeout),
		},
		Providers: ProvidersConfig{
			Source:    strings.ToLower(stringWithDefault(lookup, "VPNGUIDE_PROVIDER_SOURCE", defaultProviderSource)),
			CacheTTL:  durationWithDefault(lookup, "VPNGUIDE_PROVIDER_CACHE_TTL", 0),
			CacheSize: intWithDefault(lookup, "VPNGUIDE_PROVIDER_CACHE_SIZE", defaultProviderCacheLen),
		},
		Content: ContentConfig{
			Dir:       stringWithDefault(lookup, "VPNGUIDE_CONTENT_DIR", ""),
			Templates: stringWithDefault(lookup, "VPNGUIDE_TEMPLATES_DIR", ""),
			HotReload: boolWithDefault(lookup, "VPNGUIDE_HOT_RELOAD", dev),
		},
		Telemetry: TelemetryConfig{
			Tracing:       strings.ToLower(stringWithDefault(lookup, "VPNGUIDE_TRACING", defaultTracing)),
			MetricsPath:   stringWithDefault(lookup, "VPNGUIDE_METRICS_PATH", "/metrics"),
			EnableMetrics: boolWithDefault(lookup, "VPNGUIDE_METRICS", true),
		},
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validateConfig(cfg Config) error {
	var invalid []string

	if cfg.Server.Port == "" {
		invalid = append(invalid, "Server.Port")
	} else if _, err := strconv.Atoi(cfg.Server.Port); err != nil {
		invalid = append(invalid, "Server.Port")
	}
	if !strings.HasPrefix(cfg.Site.BaseURL, "http://") && !strings.HasPrefix(cfg.Site.BaseURL, "https://") {
		invalid = append(invalid, "Site.BaseURL")
	}
	if len(cfg.Site.Locales) == 0 {
		invalid = append(invalid, "Site.Locales")
	}
	if !containsFold(cfg.Site.Locales, cfg.Site.FallbackLocale) {
		invalid = append(invalid, "Site.FallbackLocale")
	}
	switch cfg.Providers.Source {
	case ProviderSourceDatabase, ProviderSourceStatic:
	default:
		invalid = append(invalid, "Providers.Source")
	}
	if cfg.Providers.CacheTTL < 0 {
		invalid = append(invalid, "Providers.CacheTTL")
	}
	if cfg.Providers.CacheTTL > 0 && cfg.Providers.CacheSize <= 0 {
		invalid = append(invalid, "Providers.CacheSize")
	}
	switch cfg.Telemetry.Tracing {
	case TracingNone, TracingStdout:
	default:
		invalid = append(invalid, "Telemetry.Tracing")
	}

	if len(invalid) > 0 {
		return &ValidationError{fields: invalid}
	}
	return nil
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	values, err := godotenv.Read(absPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", absPath, err)
	}
	return values, nil
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && value != "" {
		return value
	}
	return fallback
}

func durationWithDefault(lookup func(string) (string, bool), key string, fallback time.Duration) time.Duration {
	if value, ok := lookup(key); ok && value != "" {
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
	}
	return fallback
}

func intWithDefault(lookup func(string) (string, bool), key string, fallback int) int {
	if value, ok := lookup(key); ok && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func boolWithDefault(lookup func(string) (string, bool), key string, fallback bool) bool {
	if value, ok := lookup(key); ok && value != "" {
		switch strings.ToLower(value) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return fallback
}

func csvWithDefault(lookup func(string) (string, bool), key string, fallback []string) []string {
	raw, ok := lookup(key)
	if !ok || strings.TrimSpace(raw) == "" {
		out := make([]string, len(fallback))
		copy(out, fallback)
		return out
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.ToLower(strings.TrimSpace(part))
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func containsFold(values []string, target string) bool {
	for _, v := range values {
		if strings.EqualFold(v, target) {
			return true
		}
	}
	return false
}
