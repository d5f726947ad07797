// Package content loads the per-topic page content and resolves it for a locale.
package content

import (
	"strings"
	"time"
)

// DefaultLocale is the entry every page must carry and the one used when a locale is absent.
const DefaultLocale = "en"

// Page categories.
const (
	CategoryPlatform = "platform"
	CategoryCountry  = "country"
)

// Page is the full content of one "best VPN for X" topic.
type Page struct {
	Topic     string                   `yaml:"topic" validate:"required"`
	Category  string                   `yaml:"category" validate:"required,oneof=platform country"`
	Published string                   `yaml:"published"`
	Updated   string                   `yaml:"updated"`
	Image     string                   `yaml:"image"`
	Picks     []Pick                   `yaml:"picks" validate:"required,min=1,dive"`
	Meta      Meta                     `yaml:"meta"`
	Locales   map[string]LocaleContent `yaml:"locales" validate:"required,dive"`

	publishedAt time.Time
	updatedAt   time.Time
}

// Pick is the locale-independent part of a top pick. Order is the display order.
type Pick struct {
	Slug       string `yaml:"slug" validate:"required"`
	BadgeColor string `yaml:"badge_color" validate:"required"`
	Price      string `yaml:"price"`
}

// Meta holds SEO title and description maps keyed by locale.
type Meta struct {
	Title       map[string]string `yaml:"title"`
	Description map[string]string `yaml:"description"`
}

// LocaleContent holds every user-facing string of a page for one locale.
type LocaleContent struct {
	Hero       Hero       `yaml:"hero" validate:"required"`
	Picks      []PickCopy `yaml:"picks" validate:"dive"`
	Comparison Table      `yaml:"comparison"`
	Steps      []Step     `yaml:"steps" validate:"dive"`
	FAQ        []FAQ      `yaml:"faq" validate:"dive"`
	CTA        CTA        `yaml:"cta" validate:"required"`
}

type Hero struct {
	Title    string `yaml:"title" validate:"required"`
	Subtitle string `yaml:"subtitle"`
	Intro    string `yaml:"intro"`
}

// PickCopy is the localized badge and feature list for the pick at the same position.
type PickCopy struct {
	Badge    string   `yaml:"badge" validate:"required"`
	Features []string `yaml:"features"`
}

type Table struct {
	Headers []string   `yaml:"headers"`
	Rows    [][]string `yaml:"rows"`
}

type Step struct {
	Title string `yaml:"title" validate:"required"`
	Body  string `yaml:"body"`
}

type FAQ struct {
	Question string `yaml:"question" validate:"required"`
	Answer   string `yaml:"answer" validate:"required"`
}

// CTA is the closing call to action. Button may contain {name}.
type CTA struct {
	Title  string `yaml:"title" validate:"required"`
	Body   string `yaml:"body"`
	Button string `yaml:"button" validate:"required"`
}

// Resolution is the content selected for a requested locale.
type Resolution struct {
	Requested    string
	Resolved     string
	FallbackUsed bool
	Content      LocaleContent
}

// Resolve returns the entry for locale, or the default entry when the page has none. Any string is accepted.
func (p *Page) Resolve(locale string) Resolution {
	if lc, ok := p.Locales[locale]; ok {
		return Resolution{Requested: locale, Resolved: locale, Content: lc}
	}
	return Resolution{
		Requested:    locale,
		Resolved:     DefaultLocale,
		FallbackUsed: true,
		Content:      p.Locales[DefaultLocale],
	}
}

// Title returns the SEO title for locale. Keys are matched verbatim.
func (p *Page) Title(locale string) string {
	return lookup(p.Meta.Title, locale)
}

// Description returns the SEO description for locale. Keys are matched verbatim.
func (p *Page) Description(locale string) string {
	return lookup(p.Meta.Description, locale)
}

// PickSlugs returns the provider slugs in display order.
func (p *Page) PickSlugs() []string {
	out := make([]string, len(p.Picks))
	for i, pick := range p.Picks {
		out[i] = pick.Slug
	}
	return out
}

// AvailableLocales returns the locales that have a content entry, in the order given by supported.
func (p *Page) AvailableLocales(supported []string) []string {
	out := make([]string, 0, len(p.Locales))
	for _, l := range supported {
		if _, ok := p.Locales[l]; ok {
			out = append(out, l)
		}
	}
	return out
}

// PublishedAt returns the parsed publication date, or the zero time.
func (p *Page) PublishedAt() time.Time { return p.publishedAt }

// UpdatedAt returns the parsed update date, falling back to the publication date.
func (p *Page) UpdatedAt() time.Time {
	if p.updatedAt.IsZero() {
		return p.publishedAt
	}
	return p.updatedAt
}

func lookup(m map[string]string, locale string) string {
	if v, ok := m[locale]; ok {
		return v
	}
	return m[DefaultLocale]
}

func parseDate(v string) time.Time {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02",
		"2006/01/02",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t
		}
	}
	return time.Time{}
}
