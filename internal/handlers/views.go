package handlers

import (
	"finitefield.org/vpnguide-web/internal/nav"
	"finitefield.org/vpnguide-web/internal/pages"
	"finitefield.org/vpnguide-web/internal/seo"
)

// PageData is the view model handed to the shared layout.
type PageData struct {
	Lang     string
	SiteName string
	Year     int
	SEO      seo.Meta

	Path        string
	Breadcrumbs []nav.Crumb
	LocaleLinks []LocaleLink

	// Optional per-page payloads
	Page  *pages.ViewModel
	Index *IndexData
	Error *ErrorData
}

// LocaleLink is one entry of the language switcher.
type LocaleLink struct {
	Href   string
	Locale string
	Active bool
}

type IndexData struct {
	Groups []TopicGroup
}

// TopicGroup lists the topics of one category on the locale home.
type TopicGroup struct {
	Category string
	LabelKey string
	Topics   []TopicLink
}

type TopicLink struct {
	Href        string
	Topic       string
	Title       string
	Description string
}

// ErrorData drives the status page. Keys are looked up in the UI bundle.
type ErrorData struct {
	Status    int
	TitleKey  string
	BodyKey   string
	RequestID string
}
