package i18n

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"golang.org/x/text/language"
)

// Bundle holds UI strings per locale and negotiates the request locale.
type Bundle struct {
	dict      map[string]map[string]string
	fallback  string
	supported map[string]struct{}
	matcher   language.Matcher
	tags      []string
}

// Load reads <locale>.json for every supported locale from fsys. Only the fallback file is required.
func Load(fsys fs.FS, fallback string, supported []string) (*Bundle, error) {
	fallback = strings.ToLower(strings.TrimSpace(fallback))
	if fallback == "" {
		fallback = "en"
	}
	if len(supported) == 0 {
		supported = []string{fallback}
	}
	b := &Bundle{
		dict:      map[string]map[string]string{},
		fallback:  fallback,
		supported: map[string]struct{}{},
	}

	// the fallback goes first so the matcher uses it as its default
	order := []string{fallback}
	for _, l := range supported {
		l = strings.ToLower(strings.TrimSpace(l))
		if l != "" && l != fallback {
			order = append(order, l)
		}
	}

	tags := make([]language.Tag, 0, len(order))
	for _, l := range order {
		tag, err := language.Parse(l)
		if err != nil {
			return nil, fmt.Errorf("i18n: parse locale %q: %w", l, err)
		}
		tags = append(tags, tag)
		b.tags = append(b.tags, l)
		b.supported[l] = struct{}{}

		raw, err := fs.ReadFile(fsys, l+".json")
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && l != fallback {
				continue
			}
			return nil, fmt.Errorf("i18n: load locale %s: %w", l, err)
		}
		var m map[string]string
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("i18n: unmarshal %s: %w", l, err)
		}
		b.dict[l] = m
	}
	b.matcher = language.NewMatcher(tags)
	return b, nil
}

// Supported returns the supported locales sorted alphabetically.
func (b *Bundle) Supported() []string {
	out := make([]string, 0, len(b.supported))
	for k := range b.supported {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Fallback returns the configured fallback language.
func (b *Bundle) Fallback() string { return b.fallback }

// IsSupported reports whether lang is one of the configured locales.
func (b *Bundle) IsSupported(lang string) bool {
	_, ok := b.supported[lang]
	return ok
}

// T returns translation for key in lang, falling back to default and finally key.
func (b *Bundle) T(lang, key string) string {
	if lang != "" {
		if m, ok := b.dict[lang]; ok {
			if v, ok := m[key]; ok {
				return v
			}
		}
	}
	if m, ok := b.dict[b.fallback]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	return key
}

// Resolve chooses the best supported locale from an Accept-Language header.
func (b *Bundle) Resolve(acceptLang string) string {
	prefs, _, err := language.ParseAcceptLanguage(acceptLang)
	if err != nil || len(prefs) == 0 {
		return b.fallback
	}
	_, idx, conf := b.matcher.Match(prefs...)
	if conf == language.No || idx < 0 || idx >= len(b.tags) {
		return b.fallback
	}
	return b.tags[idx]
}
