package handlers

import (
	"strings"

	"finitefield.org/vpnguide-web/internal/nav"
	"finitefield.org/vpnguide-web/internal/pages"
	"finitefield.org/vpnguide-web/internal/seo"
)

const (
	robotsIndex   = "index, follow"
	robotsNoIndex = "noindex, follow"
)

// topicMeta builds the head metadata of a comparison page. A page served in the fallback
// locale points its canonical at the fallback URL and is kept out of the index.
func (s *Server) topicMeta(vm *pages.ViewModel, crumbs []nav.Crumb) seo.Meta {
	canonical := s.absURL(nav.TopicPath(vm.Locale, vm.Topic))
	title := vm.Title
	if title == "" {
		title = vm.Hero.Title
	}
	image := s.absURL(vm.Image)

	meta := seo.Meta{
		Title:       title,
		Description: vm.Description,
		Canonical:   canonical,
		Robots:      robotsIndex,
		OG: seo.OpenGraph{
			Title:       title,
			Description: vm.Description,
			Image:       image,
			Type:        "article",
			URL:         canonical,
			SiteName:    s.site.Name,
			Locale:      seo.OGLocale(vm.Locale),
		},
		Twitter: twitterCard(image),
		Alternates: seo.Alternates(s.site.BaseURL, vm.Locales, s.site.FallbackLocale, func(l string) string {
			return nav.TopicPath(l, vm.Topic)
		}),
	}
	if vm.FallbackUsed {
		meta.Robots = robotsNoIndex
	}

	entries := make([]seo.ListEntry, 0, len(vm.Cards))
	for _, c := range vm.Cards {
		url := c.WebsiteURL
		if url == "" {
			url = c.AffiliateURL
		}
		entries = append(entries, seo.ListEntry{Name: c.Name, URL: url})
	}
	meta.JSONLD = append(meta.JSONLD,
		seo.JSON(seo.Organization(s.site.Name, s.site.BaseURL, s.site.LogoURL)),
		seo.JSON(seo.Article(seo.ArticleInput{
			Headline:      vm.Hero.Title,
			Description:   vm.Description,
			URL:           canonical,
			ImageURL:      image,
			InLanguage:    vm.Locale,
			Publisher:     s.site.Name,
			PublisherLogo: s.site.LogoURL,
			Published:     vm.Published,
			Modified:      vm.Updated,
		})),
		seo.JSON(seo.ItemList(vm.Hero.Title, entries)),
		seo.JSON(seo.BreadcrumbList(s.breadcrumbItems(vm.Locale, crumbs))),
	)
	if len(vm.FAQ) > 0 {
		questions := make([]seo.Question, 0, len(vm.FAQ))
		for _, f := range vm.FAQ {
			questions = append(questions, seo.Question{Question: f.Question, Answer: string(f.HTML)})
		}
		meta.JSONLD = append(meta.JSONLD, seo.JSON(seo.FAQPage(questions)))
	}
	return meta
}

func (s *Server) indexMeta(lang string) seo.Meta {
	canonical := s.absURL(nav.HomePath(lang))
	title := s.bundle.T(lang, "index.title")
	desc := s.bundle.T(lang, "index.subtitle")
	return seo.Meta{
		Title:       title + " | " + s.site.Name,
		Description: desc,
		Canonical:   canonical,
		Robots:      robotsIndex,
		OG: seo.OpenGraph{
			Title:       title,
			Description: desc,
			Type:        "website",
			URL:         canonical,
			SiteName:    s.site.Name,
			Locale:      seo.OGLocale(lang),
		},
		Twitter:    twitterCard(""),
		Alternates: seo.Alternates(s.site.BaseURL, s.site.Locales, s.site.FallbackLocale, nav.HomePath),
		JSONLD: []string{
			seo.JSON(seo.Organization(s.site.Name, s.site.BaseURL, s.site.LogoURL)),
			seo.JSON(seo.WebSite(s.site.Name, s.site.BaseURL, lang)),
		},
	}
}

func (s *Server) errorMeta(lang string, e *ErrorData) seo.Meta {
	title := s.bundle.T(lang, e.TitleKey)
	return seo.Meta{
		Title:   title + " | " + s.site.Name,
		Robots:  "noindex",
		OG:      seo.OpenGraph{Title: title, Type: "website", SiteName: s.site.Name, Locale: seo.OGLocale(lang)},
		Twitter: twitterCard(""),
	}
}

func (s *Server) breadcrumbItems(lang string, crumbs []nav.Crumb) []seo.BreadcrumbItem {
	items := make([]seo.BreadcrumbItem, 0, len(crumbs))
	for _, c := range crumbs {
		items = append(items, seo.BreadcrumbItem{Name: crumbLabel(s.bundle, lang, c), Item: s.absURL(c.Href)})
	}
	return items
}

// absURL prefixes site-relative paths with the base URL. Absolute URLs pass through.
func (s *Server) absURL(p string) string {
	if p == "" || strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://") {
		return p
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return s.site.BaseURL + p
}

func twitterCard(image string) seo.Twitter {
	if image == "" {
		return seo.Twitter{Card: "summary"}
	}
	return seo.Twitter{Card: "summary_large_image", Image: image}
}
