package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"finitefield.org/vpnguide-web/internal/i18n"
	"finitefield.org/vpnguide-web/internal/platform/requestctx"
)

// VaryLocale sets Vary header for Accept-Language on dynamic responses
func VaryLocale(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "Accept-Language")
		next.ServeHTTP(w, r)
	})
}

// PathLocale stores the {locale} URL parameter on the request context and surfaces Content-Language.
// Unsupported values are kept as requested; page content resolution decides the fallback.
func PathLocale(bundle *i18n.Bundle) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			locale := chi.URLParam(r, "locale")
			if locale == "" {
				locale = bundle.Fallback()
			}
			ctx := requestctx.WithLocale(r.Context(), locale)
			if bundle.IsSupported(locale) {
				w.Header().Set("Content-Language", locale)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Lang returns the request locale, or fallback when none was stored.
func Lang(r *http.Request, fallback string) string {
	if l, ok := requestctx.Locale(r.Context()); ok && l != "" {
		return l
	}
	return fallback
}
