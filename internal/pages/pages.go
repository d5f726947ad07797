// Package pages assembles the view model of a comparison page from content and provider records.
package pages

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"finitefield.org/vpnguide-web/internal/content"
	"finitefield.org/vpnguide-web/internal/format"
	"finitefield.org/vpnguide-web/internal/platform/observability"
	"finitefield.org/vpnguide-web/internal/providers"
)

// ErrTopicNotFound is returned by Build for a topic without content.
var ErrTopicNotFound = errors.New("pages: topic not found")

const namePlaceholder = "{name}"

var tracer = observability.Tracer("finitefield.org/vpnguide-web/internal/pages")

// ViewModel is everything the templates and the JSON API need to render one page.
type ViewModel struct {
	Topic        string         `json:"topic"`
	Category     string         `json:"category"`
	Requested    string         `json:"requested_locale"`
	Locale       string         `json:"locale"`
	FallbackUsed bool           `json:"fallback_used"`
	Locales      []string       `json:"locales"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	Image        string         `json:"image,omitempty"`
	Hero         Hero           `json:"hero"`
	Cards        []Card         `json:"cards"`
	Comparison   content.Table  `json:"comparison"`
	Steps        []content.Step `json:"steps"`
	FAQ          []FAQItem      `json:"faq"`
	CTA          CTA            `json:"cta"`
	Published    time.Time      `json:"published"`
	Updated      time.Time      `json:"updated"`
}

type Hero struct {
	Title    string        `json:"title"`
	Subtitle string        `json:"subtitle"`
	Intro    template.HTML `json:"intro_html"`
}

// Card is one top pick. Missing is set when the provider record could not be found; its
// provider fields are then empty.
type Card struct {
	Rank         int      `json:"rank"`
	Slug         string   `json:"slug"`
	Name         string   `json:"name"`
	Rating       float64  `json:"rating"`
	RatingText   string   `json:"rating_text"`
	Stars        float64  `json:"stars"`
	AffiliateURL string   `json:"affiliate_url"`
	WebsiteURL   string   `json:"website_url"`
	LogoURL      string   `json:"logo_url"`
	BadgeText    string   `json:"badge"`
	BadgeColor   string   `json:"badge_color"`
	Price        string   `json:"price"`
	Features     []string `json:"features"`
	CTALabel     string   `json:"cta_label"`
	Missing      bool     `json:"missing"`
}

type FAQItem struct {
	Question string        `json:"question"`
	Answer   string        `json:"answer"`
	HTML     template.HTML `json:"answer_html"`
}

type CTA struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	// Buttons holds one label per card, with {name} substituted.
	Buttons []string `json:"buttons"`
}

// Assembler builds view models. It is safe for concurrent use.
type Assembler struct {
	content   content.Source
	resolver  *providers.Resolver
	metrics   *observability.Metrics
	supported []string
}

// NewAssembler wires the content source and provider repository. metrics may be nil.
func NewAssembler(src content.Source, repo providers.Repository, metrics *observability.Metrics, supported []string) *Assembler {
	return &Assembler{
		content:   src,
		resolver:  providers.NewResolver(repo, metrics),
		metrics:   metrics,
		supported: supported,
	}
}

// Build assembles the page for topic in locale. Unknown topics return ErrTopicNotFound; provider
// lookup errors other than a miss are returned unchanged.
func (a *Assembler) Build(ctx context.Context, topic, locale string) (*ViewModel, error) {
	ctx, span := tracer.Start(ctx, "pages.Build")
	defer span.End()
	span.SetAttributes(attribute.String("page.topic", topic), attribute.String("page.locale", locale))

	page, ok := a.content.Current().Get(topic)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTopicNotFound, topic)
	}
	res := page.Resolve(locale)
	span.SetAttributes(attribute.Bool("page.fallback", res.FallbackUsed))

	lookups, err := a.resolver.Resolve(ctx, page.PickSlugs())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "provider resolution failed")
		return nil, err
	}

	vm := &ViewModel{
		Topic:        page.Topic,
		Category:     page.Category,
		Requested:    res.Requested,
		Locale:       res.Resolved,
		FallbackUsed: res.FallbackUsed,
		Locales:      page.AvailableLocales(a.supported),
		Title:        page.Title(locale),
		Description:  page.Description(locale),
		Image:        page.Image,
		Hero: Hero{
			Title:    res.Content.Hero.Title,
			Subtitle: res.Content.Hero.Subtitle,
			Intro:    content.RenderMarkdown(res.Content.Hero.Intro),
		},
		Comparison: res.Content.Comparison,
		Steps:      res.Content.Steps,
		Published:  page.PublishedAt(),
		Updated:    page.UpdatedAt(),
	}
	vm.Cards = mergeCards(page.Picks, res.Content, lookups, res.Resolved)
	vm.FAQ = make([]FAQItem, 0, len(res.Content.FAQ))
	for _, f := range res.Content.FAQ {
		vm.FAQ = append(vm.FAQ, FAQItem{Question: f.Question, Answer: f.Answer, HTML: content.RenderMarkdown(f.Answer)})
	}
	vm.CTA = CTA{Title: res.Content.CTA.Title, Body: res.Content.CTA.Body}
	for _, c := range vm.Cards {
		vm.CTA.Buttons = append(vm.CTA.Buttons, c.CTALabel)
	}

	a.metrics.ObservePage(page.Topic, res.Resolved, res.FallbackUsed)
	return vm, nil
}

// mergeCards zips the static picks, the localized pick copy and the lookups by position.
func mergeCards(picks []content.Pick, lc content.LocaleContent, lookups []providers.Lookup, locale string) []Card {
	cards := make([]Card, 0, len(picks))
	for i, pick := range picks {
		card := Card{
			Rank:       i + 1,
			Slug:       pick.Slug,
			BadgeColor: pick.BadgeColor,
			Price:      pick.Price,
		}
		if i < len(lc.Picks) {
			card.BadgeText = lc.Picks[i].Badge
			card.Features = lc.Picks[i].Features
		}
		if i < len(lookups) {
			if p, ok := lookups[i].Provider(); ok {
				card.Name = p.Name
				card.Rating = p.OverallRating
				card.RatingText = format.Rating(p.OverallRating, locale)
				card.Stars = format.Stars(p.OverallRating)
				card.AffiliateURL = p.AffiliateURL
				card.WebsiteURL = p.WebsiteURL
				card.LogoURL = p.LogoURL
				if card.Price == "" {
					card.Price = p.PriceFrom
				}
			} else {
				card.Missing = true
			}
		}
		card.CTALabel = CTALabel(lc.CTA.Button, card.Name)
		cards = append(cards, card)
	}
	return cards
}

// CTALabel substitutes name into a button template such as "Get {name}".
func CTALabel(tmpl, name string) string {
	return strings.TrimSpace(strings.ReplaceAll(tmpl, namePlaceholder, name))
}
