package sitemap

import (
	"encoding/xml"
	"io"
	"strings"
	"time"

	"finitefield.org/vpnguide-web/internal/content"
	"finitefield.org/vpnguide-web/internal/nav"
)

type URLSet struct {
	XMLName    xml.Name `xml:"urlset"`
	Xmlns      string   `xml:"xmlns,attr"`
	XmlnsXHTML string   `xml:"xmlns:xhtml,attr"`
	URLs       []URL    `xml:"url"`
}

type URL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
	Links      []Link `xml:"xhtml:link"`
}

type Link struct {
	Rel      string `xml:"rel,attr"`
	Hreflang string `xml:"hreflang,attr"`
	Href     string `xml:"href,attr"`
}

// Build lists every locale home and every topic in each locale it has content for.
func Build(baseURL string, lib *content.Library, locales []string, defaultLocale string) URLSet {
	baseURL = strings.TrimRight(baseURL, "/")
	set := URLSet{
		Xmlns:      "http://www.sitemaps.org/schemas/sitemap/0.9",
		XmlnsXHTML: "http://www.w3.org/1999/xhtml",
	}

	var newest time.Time
	for _, p := range lib.Pages() {
		if p.UpdatedAt().After(newest) {
			newest = p.UpdatedAt()
		}
	}
	homeLinks := links(baseURL, locales, defaultLocale, nav.HomePath)
	for _, l := range locales {
		set.URLs = append(set.URLs, URL{
			Loc:        baseURL + nav.HomePath(l),
			LastMod:    date(newest),
			ChangeFreq: "weekly",
			Priority:   "0.8",
			Links:      homeLinks,
		})
	}

	for _, p := range lib.Pages() {
		available := p.AvailableLocales(locales)
		topic := p.Topic
		pathFor := func(l string) string { return nav.TopicPath(l, topic) }
		pageLinks := links(baseURL, available, defaultLocale, pathFor)
		for _, l := range available {
			set.URLs = append(set.URLs, URL{
				Loc:        baseURL + pathFor(l),
				LastMod:    date(p.UpdatedAt()),
				ChangeFreq: "monthly",
				Priority:   "1.0",
				Links:      pageLinks,
			})
		}
	}
	return set
}

// Write encodes the set with the XML header.
func Write(w io.Writer, set URLSet) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(set); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func links(baseURL string, locales []string, defaultLocale string, pathFor func(string) string) []Link {
	out := make([]Link, 0, len(locales)+1)
	for _, l := range locales {
		out = append(out, Link{Rel: "alternate", Hreflang: l, Href: baseURL + pathFor(l)})
		if l == defaultLocale {
			out = append(out, Link{Rel: "alternate", Hreflang: "x-default", Href: baseURL + pathFor(l)})
		}
	}
	return out
}

func date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02")
}
