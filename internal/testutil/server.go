// Package testutil builds the full HTTP stack over the embedded site files for tests.
package testutil

import (
	"net/http"
	"testing"

	"go.uber.org/zap"

	"finitefield.org/vpnguide-web/internal/content"
	"finitefield.org/vpnguide-web/internal/handlers"
	"finitefield.org/vpnguide-web/internal/i18n"
	"finitefield.org/vpnguide-web/internal/pages"
	"finitefield.org/vpnguide-web/internal/platform/config"
	"finitefield.org/vpnguide-web/internal/platform/observability"
	"finitefield.org/vpnguide-web/internal/providers"
	"finitefield.org/vpnguide-web/internal/render"
	"finitefield.org/vpnguide-web/web"
)

// Locales mirrors the production locale list.
var Locales = []string{"en", "nl", "de", "es", "fr", "zh", "ja", "ko", "th"}

// BaseURL is the site origin used in canonical and sitemap URLs.
const BaseURL = "https://vpn.example.com"

type serverConfig struct {
	repo    providers.Repository
	metrics *observability.Metrics
	logger  *zap.Logger
	opts    []handlers.Option
}

// ServerOption customises the stack built by NewHandler.
type ServerOption func(*serverConfig)

// WithRepository replaces the seeded static provider repository.
func WithRepository(repo providers.Repository) ServerOption {
	return func(cfg *serverConfig) {
		cfg.repo = repo
	}
}

// WithMetrics wires a metrics registry and exposes it at /metrics.
func WithMetrics(m *observability.Metrics) ServerOption {
	return func(cfg *serverConfig) {
		cfg.metrics = m
		cfg.opts = append(cfg.opts, handlers.WithMetricsPath("/metrics"))
	}
}

// WithLogger routes request logs to logger.
func WithLogger(logger *zap.Logger) ServerOption {
	return func(cfg *serverConfig) {
		cfg.logger = logger
	}
}

// WithRouterOptions passes extra options to the router, such as additional middleware.
func WithRouterOptions(opts ...handlers.Option) ServerOption {
	return func(cfg *serverConfig) {
		cfg.opts = append(cfg.opts, opts...)
	}
}

// Site returns the site configuration used by NewHandler.
func Site() config.SiteConfig {
	return config.SiteConfig{
		Name:           "VPN Guide",
		BaseURL:        BaseURL,
		LogoURL:        BaseURL + "/assets/img/logo.png",
		Locales:        Locales,
		FallbackLocale: "en",
	}
}

// NewHandler constructs the router over the embedded templates, locales and content.
func NewHandler(t testing.TB, opts ...ServerOption) http.Handler {
	t.Helper()

	cfg := serverConfig{repo: providers.NewStaticRepository(nil)}
	for _, opt := range opts {
		opt(&cfg)
	}

	bundle, err := i18n.Load(web.Locales(), "en", Locales)
	if err != nil {
		t.Fatalf("load i18n: %v", err)
	}
	lib, err := content.Load(web.Content())
	if err != nil {
		t.Fatalf("load content: %v", err)
	}
	renderer, err := render.New(web.Templates(), handlers.Funcs(bundle), false)
	if err != nil {
		t.Fatalf("parse templates: %v", err)
	}
	srv, err := handlers.NewServer(handlers.Deps{
		Site:      Site(),
		Bundle:    bundle,
		Content:   lib,
		Assembler: pages.NewAssembler(lib, cfg.repo, cfg.metrics, Locales),
		Renderer:  renderer,
		Metrics:   cfg.metrics,
		Logger:    cfg.logger,
		Assets:    web.Assets(),
	})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return srv.Router(cfg.opts...)
}
