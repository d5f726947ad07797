package main

import (
	"context"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"finitefield.org/vpnguide-web/internal/content"
	"finitefield.org/vpnguide-web/internal/handlers"
	"finitefield.org/vpnguide-web/internal/i18n"
	"finitefield.org/vpnguide-web/internal/pages"
	"finitefield.org/vpnguide-web/internal/platform/config"
	"finitefield.org/vpnguide-web/internal/platform/database"
	"finitefield.org/vpnguide-web/internal/platform/observability"
	"finitefield.org/vpnguide-web/internal/providers"
	"finitefield.org/vpnguide-web/internal/render"
	"finitefield.org/vpnguide-web/web"
)

// app holds the wired components shared by serve and build.
type app struct {
	cfg      config.Config
	logger   *zap.Logger
	metrics  *observability.Metrics
	db       *database.Provider
	content  content.Source
	watcher  *content.Watcher
	renderer *render.Renderer
	server   *handlers.Server
}

// newApp wires the site. With static set, provider records come from the built-in catalogue
// regardless of the configured source.
func newApp(cfg config.Config, logger *zap.Logger, static bool) (*app, error) {
	a := &app{cfg: cfg, logger: logger}
	if cfg.Telemetry.EnableMetrics {
		a.metrics = observability.NewMetrics()
	}
	a.db = database.NewProvider(cfg.Database)

	bundle, err := i18n.Load(web.Locales(), cfg.Site.FallbackLocale, cfg.Site.Locales)
	if err != nil {
		return nil, err
	}

	if dir := cfg.Content.Dir; dir != "" {
		w, err := content.NewWatcher(dir, logger.Named("content"))
		if err != nil {
			return nil, err
		}
		w.OnReload(func(lib *content.Library) {
			for _, issue := range content.Lint(lib, cfg.Site.Locales) {
				logger.Warn("content issue", zap.String("issue", issue.String()))
			}
		})
		a.watcher = w
		a.content = w
	} else {
		lib, err := content.Load(web.Content())
		if err != nil {
			return nil, err
		}
		a.content = lib
	}

	templates, dev := web.Templates(), false
	if dir := cfg.Content.Templates; dir != "" {
		templates, dev = os.DirFS(dir), cfg.Server.Dev
	}
	a.renderer, err = render.New(templates, handlers.Funcs(bundle), dev)
	if err != nil {
		return nil, err
	}
	logger.Debug("templates parsed", zap.Strings("pages", a.renderer.Pages()), zap.Bool("reparse", dev))

	repo := newRepository(cfg.Providers, a.db, static)
	a.server, err = handlers.NewServer(handlers.Deps{
		Site:      cfg.Site,
		Bundle:    bundle,
		Content:   a.content,
		Assembler: pages.NewAssembler(a.content, repo, a.metrics, cfg.Site.Locales),
		Renderer:  a.renderer,
		Metrics:   a.metrics,
		Logger:    logger,
		Assets:    web.Assets(),
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

func newRepository(cfg config.ProvidersConfig, db *database.Provider, static bool) providers.Repository {
	var repo providers.Repository
	if static || cfg.Source == config.ProviderSourceStatic {
		repo = providers.NewStaticRepository(nil)
	} else {
		repo = providers.NewPostgresRepository(db)
	}
	return providers.NewCachedRepository(repo, cfg.CacheSize, cfg.CacheTTL)
}

func (a *app) router() chi.Router {
	opts := []handlers.Option{handlers.WithRequestTimeout(a.cfg.Server.RequestTimeout)}
	if a.cfg.Telemetry.EnableMetrics {
		opts = append(opts, handlers.WithMetricsPath(a.cfg.Telemetry.MetricsPath))
	}
	return a.server.Router(opts...)
}

// lint logs every content issue of the current library and returns how many there were.
func (a *app) lint() int {
	issues := content.Lint(a.content.Current(), a.cfg.Site.Locales)
	for _, issue := range issues {
		a.logger.Warn("content issue", zap.String("issue", issue.String()))
	}
	return len(issues)
}

func (a *app) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.db.Close(ctx); err != nil {
		a.logger.Warn("database close error", zap.Error(err))
	}
}
