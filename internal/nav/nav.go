package nav

import (
	"path"
	"strings"
)

// Crumb represents a breadcrumb entry. If LabelKey is empty, use Label.
type Crumb struct {
	Href     string
	LabelKey string
	Label    string
	Active   bool
}

// TopicPath returns the site-relative path of a topic page.
func TopicPath(locale, topic string) string {
	return "/" + locale + "/best/" + topic
}

// HomePath returns the site-relative path of a locale's index.
func HomePath(locale string) string {
	return "/" + locale + "/"
}

// Breadcrumbs builds breadcrumb entries for a localized path.
// Rules:
// - Always start with the locale home
// - "best" maps to the guides index label
// - A topic segment uses topicTitle when given, otherwise a prettified slug
func Breadcrumbs(currentPath, topicTitle string) []Crumb {
	clean := path.Clean("/" + strings.TrimSpace(currentPath))
	parts := strings.Split(strings.Trim(clean, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		return []Crumb{{Href: "/", LabelKey: "nav.home", Active: true}}
	}
	locale := parts[0]
	crumbs := []Crumb{{Href: HomePath(locale), LabelKey: "nav.home", Active: len(parts) == 1}}
	if len(parts) < 2 {
		return crumbs
	}
	if parts[1] == "best" {
		// the guides index lives on the locale home
		crumbs = append(crumbs, Crumb{Href: HomePath(locale), LabelKey: "nav.best", Active: len(parts) == 2})
	}
	for i := 2; i < len(parts); i++ {
		label := titleFromSegment(parts[i])
		if i == len(parts)-1 && topicTitle != "" {
			label = topicTitle
		}
		crumbs = append(crumbs, Crumb{
			Href:   "/" + strings.Join(parts[:i+1], "/"),
			Label:  label,
			Active: i == len(parts)-1,
		})
	}
	return crumbs
}

func titleFromSegment(seg string) string {
	if seg == "" {
		return seg
	}
	s := strings.ReplaceAll(seg, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")
	r := []rune(s)
	r[0] = toUpper(r[0])
	return string(r)
}

func toUpper(r rune) rune {
	// ASCII only is sufficient for slugs here
	if r >= 'a' && r <= 'z' {
		return r - ('a' - 'A')
	}
	return r
}
