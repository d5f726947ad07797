package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"finitefield.org/vpnguide-web/internal/platform/httpx"
	"finitefield.org/vpnguide-web/internal/platform/observability"
	"finitefield.org/vpnguide-web/internal/sitemap"
)

var startTime = time.Now()

// Sitemap lists every locale home and every topic × locale that has content.
func (s *Server) Sitemap(w http.ResponseWriter, r *http.Request) {
	set := sitemap.Build(s.site.BaseURL, s.content.Current(), s.site.Locales, s.site.FallbackLocale)
	var buf bytes.Buffer
	if err := sitemap.Write(&buf, set); err != nil {
		observability.FromContext(r.Context()).Error("sitemap encode failed", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// Robots allows everything except the JSON API and points crawlers at the sitemap.
func (s *Server) Robots(w http.ResponseWriter, r *http.Request) {
	var b strings.Builder
	b.WriteString("User-agent: *\n")
	b.WriteString("Allow: /\n")
	fmt.Fprintf(&b, "Disallow: %s/\n", defaultAPIPrefix)
	fmt.Fprintf(&b, "Sitemap: %s/sitemap.xml\n", s.site.BaseURL)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(b.String()))
}

// Healthz responds with a simple status payload for monitoring and readiness checks.
func (s *Server) Healthz(w http.ResponseWriter, r *http.Request) {
	payload := map[string]any{
		"status":    "ok",
		"uptime":    time.Since(startTime).String(),
		"timestamp": s.now().UTC().Format(time.RFC3339),
		"topics":    len(s.content.Current().Topics()),
	}
	httpx.WriteJSON(w, http.StatusOK, payload)
}
