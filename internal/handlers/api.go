package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	mw "finitefield.org/vpnguide-web/internal/middleware"
	"finitefield.org/vpnguide-web/internal/pages"
	"finitefield.org/vpnguide-web/internal/platform/httpx"
	"finitefield.org/vpnguide-web/internal/platform/observability"
)

// TopicJSON serves the assembled view model of a page.
func (s *Server) TopicJSON(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	locale := mw.Lang(r, s.site.FallbackLocale)
	topic := chi.URLParam(r, "topic")

	vm, err := s.assembler.Build(ctx, topic, locale)
	switch {
	case errors.Is(err, pages.ErrTopicNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("topic_not_found", fmt.Sprintf("no page for topic %q", topic), http.StatusNotFound).
			WithDetails(map[string]any{"topic": topic}))
		return
	case err != nil:
		observability.FromContext(ctx).Error("page assembly failed",
			zap.String("topic", topic),
			zap.String("locale", observability.SanitizeLocale(locale)),
			zap.Error(err),
		)
		httpx.WriteError(ctx, w, httpx.NewError("page_unavailable", "page could not be assembled", http.StatusInternalServerError))
		return
	}
	w.Header().Set("Content-Language", vm.Locale)
	httpx.WriteJSON(w, http.StatusOK, vm)
}

func writeAPINotFound(w http.ResponseWriter, r *http.Request) {
	httpx.WriteError(r.Context(), w, httpx.NewError(errorNotFoundCode, fmt.Sprintf("no route for %s", r.URL.Path), http.StatusNotFound))
}

func writeAPIInternal(w http.ResponseWriter, r *http.Request) {
	httpx.WriteError(r.Context(), w, httpx.NewError("internal", "internal server error", http.StatusInternalServerError))
}

func isAPIPath(u *url.URL) bool {
	return u != nil && strings.HasPrefix(u.Path, defaultAPIPrefix+"/")
}
