package seo

import (
	"encoding/json"
	"time"
)

// JSON marshals v to a compact JSON string. It returns an empty string on error.
func JSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// Organization returns a minimal Organization schema.
func Organization(name, url, logoURL string) map[string]any {
	m := map[string]any{
		"@context": "https://schema.org",
		"@type":    "Organization",
		"name":     name,
	}
	if url != "" {
		m["url"] = url
	}
	if logoURL != "" {
		m["logo"] = logoURL
	}
	return m
}

// WebSite returns a minimal WebSite schema.
func WebSite(name, url, inLanguage string) map[string]any {
	m := map[string]any{
		"@context": "https://schema.org",
		"@type":    "WebSite",
		"name":     name,
	}
	if url != "" {
		m["url"] = url
	}
	if inLanguage != "" {
		m["inLanguage"] = inLanguage
	}
	return m
}

// BreadcrumbItem maps name and absolute item URL.
type BreadcrumbItem struct {
	Name string
	Item string
}

// BreadcrumbList builds schema.org BreadcrumbList.
func BreadcrumbList(items []BreadcrumbItem) map[string]any {
	el := make([]map[string]any, 0, len(items))
	for _, it := range items {
		el = append(el, map[string]any{
			"@type":    "ListItem",
			"position": len(el) + 1,
			"name":     it.Name,
			"item":     it.Item,
		})
	}
	return map[string]any{
		"@context":        "https://schema.org",
		"@type":           "BreadcrumbList",
		"itemListElement": el,
	}
}

// ArticleInput carries the fields of an Article schema.
type ArticleInput struct {
	Headline      string
	Description   string
	URL           string
	ImageURL      string
	InLanguage    string
	Publisher     string
	PublisherLogo string
	Published     time.Time
	Modified      time.Time
}

// Article returns an Article schema payload.
func Article(in ArticleInput) map[string]any {
	m := map[string]any{
		"@context": "https://schema.org",
		"@type":    "Article",
		"headline": in.Headline,
	}
	if in.Description != "" {
		m["description"] = in.Description
	}
	if in.URL != "" {
		m["url"] = in.URL
		m["mainEntityOfPage"] = in.URL
	}
	if in.ImageURL != "" {
		m["image"] = in.ImageURL
	}
	if in.InLanguage != "" {
		m["inLanguage"] = in.InLanguage
	}
	if in.Publisher != "" {
		pub := map[string]any{"@type": "Organization", "name": in.Publisher}
		if in.PublisherLogo != "" {
			pub["logo"] = map[string]any{"@type": "ImageObject", "url": in.PublisherLogo}
		}
		m["publisher"] = pub
		m["author"] = map[string]any{"@type": "Organization", "name": in.Publisher}
	}
	if !in.Published.IsZero() {
		m["datePublished"] = in.Published.UTC().Format("2006-01-02")
	}
	if !in.Modified.IsZero() {
		m["dateModified"] = in.Modified.UTC().Format("2006-01-02")
	}
	return m
}

// ListEntry is one ranked item of an ItemList.
type ListEntry struct {
	Name string
	URL  string
}

// ItemList builds a ranked schema.org ItemList. Entries without a name are skipped and the
// remaining positions stay contiguous from 1.
func ItemList(name string, entries []ListEntry) map[string]any {
	el := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		if e.Name == "" {
			continue
		}
		item := map[string]any{
			"@type":    "ListItem",
			"position": len(el) + 1,
			"name":     e.Name,
		}
		if e.URL != "" {
			item["url"] = e.URL
		}
		el = append(el, item)
	}
	return map[string]any{
		"@context":        "https://schema.org",
		"@type":           "ItemList",
		"name":            name,
		"numberOfItems":   len(el),
		"itemListElement": el,
	}
}

// Question is one FAQ entry. Answer may contain HTML.
type Question struct {
	Question string
	Answer   string
}

// FAQPage builds schema.org FAQPage.
func FAQPage(questions []Question) map[string]any {
	el := make([]map[string]any, 0, len(questions))
	for _, q := range questions {
		el = append(el, map[string]any{
			"@type": "Question",
			"name":  q.Question,
			"acceptedAnswer": map[string]any{
				"@type": "Answer",
				"text":  q.Answer,
			},
		})
	}
	return map[string]any{
		"@context":   "https://schema.org",
		"@type":      "FAQPage",
		"mainEntity": el,
	}
}
