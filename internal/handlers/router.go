package handlers

import (
	"bytes"
	"fmt"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"finitefield.org/vpnguide-web/internal/content"
	"finitefield.org/vpnguide-web/internal/i18n"
	mw "finitefield.org/vpnguide-web/internal/middleware"
	"finitefield.org/vpnguide-web/internal/pages"
	"finitefield.org/vpnguide-web/internal/platform/config"
	"finitefield.org/vpnguide-web/internal/platform/httpx"
	"finitefield.org/vpnguide-web/internal/platform/observability"
	"finitefield.org/vpnguide-web/internal/render"
)

const (
	defaultAPIPrefix  = "/api/v1"
	defaultTimeout    = 30 * time.Second
	errorNotFoundCode = "route_not_found"

	// two or three letter language with an optional region or script subtag
	localeParam = "{locale:[a-z]{2,3}(?:-[A-Za-z0-9]{2,8})?}"
)

// Deps are the collaborators the HTTP layer needs. Metrics, Logger and Assets may be nil.
type Deps struct {
	Site      config.SiteConfig
	Bundle    *i18n.Bundle
	Content   content.Source
	Assembler *pages.Assembler
	Renderer  *render.Renderer
	Metrics   *observability.Metrics
	Logger    *zap.Logger
	Assets    fs.FS
}

// Server owns the page, API and feed handlers.
type Server struct {
	site      config.SiteConfig
	bundle    *i18n.Bundle
	content   content.Source
	assembler *pages.Assembler
	renderer  *render.Renderer
	metrics   *observability.Metrics
	logger    *zap.Logger
	assets    fs.FS
	now       func() time.Time
}

// NewServer validates deps and returns a Server.
func NewServer(d Deps) (*Server, error) {
	switch {
	case d.Bundle == nil:
		return nil, fmt.Errorf("handlers: i18n bundle is required")
	case d.Content == nil:
		return nil, fmt.Errorf("handlers: content source is required")
	case d.Assembler == nil:
		return nil, fmt.Errorf("handlers: page assembler is required")
	case d.Renderer == nil:
		return nil, fmt.Errorf("handlers: renderer is required")
	}
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	site := d.Site
	site.BaseURL = strings.TrimRight(site.BaseURL, "/")
	if len(site.Locales) == 0 {
		site.Locales = d.Bundle.Supported()
	}
	if site.FallbackLocale == "" {
		site.FallbackLocale = d.Bundle.Fallback()
	}
	return &Server{
		site:      site,
		bundle:    d.Bundle,
		content:   d.Content,
		assembler: d.Assembler,
		renderer:  d.Renderer,
		metrics:   d.Metrics,
		logger:    logger,
		assets:    d.Assets,
		now:       time.Now,
	}, nil
}

type routerConfig struct {
	timeout     time.Duration
	metricsPath string
	middlewares []func(http.Handler) http.Handler
}

// Option customises the router configuration before construction.
type Option func(*routerConfig)

// WithRequestTimeout overrides the per-request timeout.
func WithRequestTimeout(d time.Duration) Option {
	return func(cfg *routerConfig) {
		if d > 0 {
			cfg.timeout = d
		}
	}
}

// WithMetricsPath exposes the prometheus registry at path.
func WithMetricsPath(path string) Option {
	return func(cfg *routerConfig) {
		cfg.metricsPath = path
	}
}

// WithMiddlewares appends additional global middleware to the router.
func WithMiddlewares(m ...func(http.Handler) http.Handler) Option {
	return func(cfg *routerConfig) {
		cfg.middlewares = append(cfg.middlewares, m...)
	}
}

// Router builds the chi router with the shared middleware chain and every public route.
func (s *Server) Router(opts ...Option) chi.Router {
	cfg := routerConfig{timeout: defaultTimeout}
	for _, opt := range opts {
		opt(&cfg)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	// RealIP trusts X-Forwarded-For; only run behind a proxy that sets it.
	r.Use(middleware.RealIP)
	r.Use(observability.TraceMiddleware())
	r.Use(observability.InjectLoggerMiddleware(s.logger))
	r.Use(observability.RequestLoggerMiddleware(s.metrics))
	r.Use(observability.RecoveryMiddleware(s.logger, s.panicPage))
	r.Use(middleware.Compress(5))
	r.Use(middleware.Timeout(cfg.timeout))
	for _, m := range cfg.middlewares {
		if m != nil {
			r.Use(m)
		}
	}

	r.NotFound(s.notFound)
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		httpx.WriteError(req.Context(), w, httpx.NewError("method_not_allowed", fmt.Sprintf("method %s not allowed on %s", req.Method, req.URL.Path), http.StatusMethodNotAllowed))
	})

	r.Get("/healthz", s.Healthz)
	r.Get("/robots.txt", s.Robots)
	r.Get("/sitemap.xml", s.Sitemap)
	if cfg.metricsPath != "" && s.metrics != nil {
		r.Handle(cfg.metricsPath, s.metrics.Handler())
	}
	if s.assets != nil {
		r.Handle("/assets/*", http.StripPrefix("/assets", mw.AssetsWithCache(s.assets)))
	}

	r.Get("/", s.RootRedirect)

	r.Route(defaultAPIPrefix+"/"+localeParam, func(api chi.Router) {
		api.Use(mw.PathLocale(s.bundle))
		api.Get("/best/{topic}", s.TopicJSON)
	})

	r.Route("/"+localeParam, func(site chi.Router) {
		site.Use(mw.PathLocale(s.bundle))
		site.Use(mw.VaryLocale)
		site.Get("/", s.Index)
		site.Get("/best/{topic}", s.Topic)
	})

	return r
}

// render executes page into a buffer and only then writes the status, so template
// failures still produce a clean 500.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, page string, data PageData) {
	var buf bytes.Buffer
	if err := s.renderer.Render(&buf, page, data); err != nil {
		observability.FromContext(r.Context()).Error("template render failed", zap.String("page", page), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Server) basePage(r *http.Request, lang string) PageData {
	return PageData{
		Lang:     lang,
		SiteName: s.site.Name,
		Year:     s.now().Year(),
		Path:     r.URL.Path,
	}
}

func (s *Server) homeLocaleLinks(active string) []LocaleLink {
	links := make([]LocaleLink, 0, len(s.site.Locales))
	for _, l := range s.site.Locales {
		links = append(links, LocaleLink{Href: "/" + l + "/", Locale: l, Active: l == active})
	}
	return links
}

// uiLang picks the UI language for r: the path locale when supported, otherwise the
// Accept-Language negotiation.
func (s *Server) uiLang(r *http.Request) string {
	if l := mw.Lang(r, ""); s.bundle.IsSupported(l) {
		return l
	}
	return s.bundle.Resolve(r.Header.Get("Accept-Language"))
}
