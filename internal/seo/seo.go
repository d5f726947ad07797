package seo

import "strings"

type OpenGraph struct {
	Title       string
	Description string
	Image       string
	Type        string
	URL         string
	SiteName    string
	Locale      string
}

type Twitter struct {
	Card  string
	Site  string
	Image string
}

// Alternate is one <link rel="alternate" hreflang> entry.
type Alternate struct {
	Href     string
	Hreflang string
}

type Meta struct {
	Title       string
	Description string
	Canonical   string
	Robots      string
	OG          OpenGraph
	Twitter     Twitter
	Alternates  []Alternate
	JSONLD      []string
}

// Alternates builds one link per locale plus x-default pointing at the default locale.
// pathFor returns the site-relative path of the page in a locale.
func Alternates(baseURL string, locales []string, defaultLocale string, pathFor func(locale string) string) []Alternate {
	baseURL = strings.TrimRight(baseURL, "/")
	out := make([]Alternate, 0, len(locales)+1)
	hasDefault := false
	for _, l := range locales {
		out = append(out, Alternate{Href: baseURL + pathFor(l), Hreflang: l})
		if l == defaultLocale {
			hasDefault = true
		}
	}
	if hasDefault {
		out = append(out, Alternate{Href: baseURL + pathFor(defaultLocale), Hreflang: "x-default"})
	}
	return out
}

// OGLocale maps a site locale to the Open Graph locale format.
func OGLocale(locale string) string {
	switch locale {
	case "en":
		return "en_US"
	case "nl":
		return "nl_NL"
	case "de":
		return "de_DE"
	case "es":
		return "es_ES"
	case "fr":
		return "fr_FR"
	case "zh":
		return "zh_CN"
	case "ja":
		return "ja_JP"
	case "ko":
		return "ko_KR"
	case "th":
		return "th_TH"
	default:
		return locale
	}
}
