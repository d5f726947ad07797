package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"finitefield.org/vpnguide-web/internal/content"
	mw "finitefield.org/vpnguide-web/internal/middleware"
	"finitefield.org/vpnguide-web/internal/nav"
	"finitefield.org/vpnguide-web/internal/pages"
	"finitefield.org/vpnguide-web/internal/platform/observability"
)

// RootRedirect sends visitors to the locale home negotiated from Accept-Language.
func (s *Server) RootRedirect(w http.ResponseWriter, r *http.Request) {
	lang := s.bundle.Resolve(r.Header.Get("Accept-Language"))
	w.Header().Add("Vary", "Accept-Language")
	http.Redirect(w, r, nav.HomePath(lang), http.StatusFound)
}

// Index renders the locale home listing every topic. Unsupported locales get the fallback UI.
func (s *Server) Index(w http.ResponseWriter, r *http.Request) {
	requested := mw.Lang(r, s.site.FallbackLocale)
	lang := requested
	if !s.bundle.IsSupported(lang) {
		lang = s.site.FallbackLocale
	}

	data := s.basePage(r, lang)
	data.SEO = s.indexMeta(lang)
	if lang != requested {
		data.SEO.Robots = robotsNoIndex
	}
	data.Breadcrumbs = nav.Breadcrumbs(nav.HomePath(lang), "")
	data.LocaleLinks = s.homeLocaleLinks(lang)
	data.Index = s.buildIndex(lang)
	s.render(w, r, http.StatusOK, "index", data)
}

func (s *Server) buildIndex(lang string) *IndexData {
	groups := []TopicGroup{
		{Category: content.CategoryPlatform, LabelKey: "index.platforms"},
		{Category: content.CategoryCountry, LabelKey: "index.countries"},
	}
	for _, p := range s.content.Current().Pages() {
		// link the localized page when it exists, the fallback one otherwise
		target := lang
		if _, ok := p.Locales[lang]; !ok {
			target = content.DefaultLocale
		}
		link := TopicLink{
			Href:        nav.TopicPath(target, p.Topic),
			Topic:       p.Topic,
			Title:       p.Title(lang),
			Description: p.Description(lang),
		}
		for i := range groups {
			if groups[i].Category == p.Category {
				groups[i].Topics = append(groups[i].Topics, link)
			}
		}
	}
	out := groups[:0]
	for _, g := range groups {
		if len(g.Topics) > 0 {
			out = append(out, g)
		}
	}
	return &IndexData{Groups: out}
}

// Topic renders a comparison page. Unknown topics get the 404 page and assembly failures the 500 page.
func (s *Server) Topic(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	locale := mw.Lang(r, s.site.FallbackLocale)
	topic := chi.URLParam(r, "topic")

	vm, err := s.assembler.Build(ctx, topic, locale)
	if err != nil {
		s.pageError(w, r, err)
		return
	}

	data := s.basePage(r, vm.Locale)
	data.Page = vm
	data.Breadcrumbs = nav.Breadcrumbs(nav.TopicPath(vm.Locale, vm.Topic), vm.Hero.Title)
	data.SEO = s.topicMeta(vm, data.Breadcrumbs)
	data.LocaleLinks = make([]LocaleLink, 0, len(vm.Locales))
	for _, l := range vm.Locales {
		data.LocaleLinks = append(data.LocaleLinks, LocaleLink{Href: nav.TopicPath(l, vm.Topic), Locale: l, Active: l == vm.Locale})
	}
	s.render(w, r, http.StatusOK, "topic", data)
}

func (s *Server) pageError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, pages.ErrTopicNotFound) {
		s.renderStatus(w, r, http.StatusNotFound)
		return
	}
	observability.FromContext(r.Context()).Error("page assembly failed",
		zap.String("topic", chi.URLParam(r, "topic")),
		zap.String("locale", observability.SanitizeLocale(mw.Lang(r, ""))),
		zap.Error(err),
	)
	s.renderStatus(w, r, http.StatusInternalServerError)
}

func (s *Server) renderStatus(w http.ResponseWriter, r *http.Request, status int) {
	lang := s.uiLang(r)
	e := &ErrorData{Status: status, RequestID: middleware.GetReqID(r.Context())}
	switch status {
	case http.StatusNotFound:
		e.TitleKey, e.BodyKey = "error.not_found.title", "error.not_found.body"
	default:
		e.TitleKey, e.BodyKey = "error.server.title", "error.server.body"
	}
	data := s.basePage(r, lang)
	data.Error = e
	data.SEO = s.errorMeta(lang, e)
	data.LocaleLinks = s.homeLocaleLinks(lang)
	s.render(w, r, status, "error", data)
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	if isAPIPath(r.URL) {
		writeAPINotFound(w, r)
		return
	}
	s.renderStatus(w, r, http.StatusNotFound)
}

func (s *Server) panicPage(w http.ResponseWriter, r *http.Request) {
	if isAPIPath(r.URL) {
		writeAPIInternal(w, r)
		return
	}
	s.renderStatus(w, r, http.StatusInternalServerError)
}
