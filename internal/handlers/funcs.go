package handlers

import (
	"html/template"
	"time"

	"finitefield.org/vpnguide-web/internal/format"
	"finitefield.org/vpnguide-web/internal/i18n"
	"finitefield.org/vpnguide-web/internal/nav"
	"finitefield.org/vpnguide-web/internal/pages"
)

// Funcs returns the template helpers the layouts rely on. It must be passed to render.New.
func Funcs(bundle *i18n.Bundle) template.FuncMap {
	return template.FuncMap{
		"t": bundle.T,
		// payloads come from seo.JSON, which escapes <, > and &
		"jsonld": func(s string) template.JS { return template.JS(s) },
		"crumbLabel": func(lang string, c nav.Crumb) string {
			return crumbLabel(bundle, lang, c)
		},
		"cardData": func(lang string, card pages.Card) map[string]any {
			return map[string]any{"Lang": lang, "Card": card}
		},
		"date": format.Date,
		"isoDate": func(t time.Time) string {
			return t.UTC().Format("2006-01-02")
		},
	}
}

func crumbLabel(bundle *i18n.Bundle, lang string, c nav.Crumb) string {
	if c.LabelKey != "" {
		return bundle.T(lang, c.LabelKey)
	}
	return c.Label
}
