package content

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Issue is one problem found by Lint.
type Issue struct {
	Topic   string
	Field   string
	Message string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s: %s", i.Topic, i.Field, i.Message)
}

// Lint checks every page's key sets against the supported locales and validates its structure.
// It reports problems instead of fixing them: a stray metadata key stays in the data until an editor corrects it.
func Lint(lib *Library, supported []string) []Issue {
	allowed := make(map[string]struct{}, len(supported))
	for _, l := range supported {
		allowed[l] = struct{}{}
	}

	var issues []Issue
	for _, page := range lib.Pages() {
		add := func(field, format string, args ...any) {
			issues = append(issues, Issue{Topic: page.Topic, Field: field, Message: fmt.Sprintf(format, args...)})
		}

		if err := validate.Struct(page); err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) {
				for _, fe := range verrs {
					add(fe.Namespace(), "failed %q validation", fe.Tag())
				}
			} else {
				add("page", "%v", err)
			}
		}

		if _, ok := page.Locales[DefaultLocale]; !ok {
			add("locales", "missing %q entry", DefaultLocale)
		}
		for _, l := range sortedKeys(page.Locales) {
			if _, ok := allowed[l]; !ok {
				add("locales."+l, "unsupported locale key %q", l)
			}
			lc := page.Locales[l]
			if len(lc.Picks) != len(page.Picks) {
				add("locales."+l+".picks", "has %d entries, page has %d picks", len(lc.Picks), len(page.Picks))
			}
			if !strings.Contains(lc.CTA.Button, "{name}") {
				add("locales."+l+".cta.button", "does not contain {name}")
			}
		}

		for name, m := range map[string]map[string]string{"meta.title": page.Meta.Title, "meta.description": page.Meta.Description} {
			if _, ok := m[DefaultLocale]; !ok {
				add(name, "missing %q entry", DefaultLocale)
			}
			for _, l := range sortedKeys(m) {
				if _, ok := allowed[l]; !ok {
					add(name+"."+l, "unsupported locale key %q", l)
				}
			}
		}
	}
	sort.SliceStable(issues, func(i, j int) bool {
		if issues[i].Topic != issues[j].Topic {
			return issues[i].Topic < issues[j].Topic
		}
		return issues[i].Field < issues[j].Field
	})
	return issues
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
