package content

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrNoDefaultLocale is returned by Load for a page without an "en" entry.
var ErrNoDefaultLocale = errors.New("content: page has no default locale entry")

// Source yields the current Library. A Library is its own Source; Watcher swaps libraries on reload.
type Source interface {
	Current() *Library
}

// Library indexes pages by topic.
type Library struct {
	pages  map[string]*Page
	topics []string
}

// Load parses every *.yaml file at the root of fsys. The file name (without extension) is the topic
// unless the file sets one.
func Load(fsys fs.FS) (*Library, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("content: read dir: %w", err)
	}
	lib := &Library{pages: map[string]*Page{}}
	for _, e := range entries {
		if e.IsDir() || !isContentFile(e.Name()) {
			continue
		}
		raw, err := fs.ReadFile(fsys, e.Name())
		if err != nil {
			return nil, fmt.Errorf("content: read %s: %w", e.Name(), err)
		}
		page, err := parsePage(raw)
		if err != nil {
			return nil, fmt.Errorf("content: parse %s: %w", e.Name(), err)
		}
		if page.Topic == "" {
			page.Topic = strings.TrimSuffix(e.Name(), path.Ext(e.Name()))
		}
		if _, ok := page.Locales[DefaultLocale]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrNoDefaultLocale, page.Topic)
		}
		if _, dup := lib.pages[page.Topic]; dup {
			return nil, fmt.Errorf("content: duplicate topic %s", page.Topic)
		}
		lib.pages[page.Topic] = page
		lib.topics = append(lib.topics, page.Topic)
	}
	sort.Strings(lib.topics)
	return lib, nil
}

func parsePage(raw []byte) (*Page, error) {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	var page Page
	if err := dec.Decode(&page); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty document")
		}
		return nil, err
	}
	page.Topic = strings.TrimSpace(page.Topic)
	page.publishedAt = parseDate(page.Published)
	page.updatedAt = parseDate(page.Updated)
	return &page, nil
}

func isContentFile(name string) bool {
	ext := strings.ToLower(path.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}

// Current implements Source.
func (l *Library) Current() *Library { return l }

// Get returns the page for topic.
func (l *Library) Get(topic string) (*Page, bool) {
	if l == nil {
		return nil, false
	}
	p, ok := l.pages[topic]
	return p, ok
}

// Topics returns every topic sorted.
func (l *Library) Topics() []string {
	if l == nil {
		return nil
	}
	out := make([]string, len(l.topics))
	copy(out, l.topics)
	return out
}

// Pages returns every page in topic order.
func (l *Library) Pages() []*Page {
	if l == nil {
		return nil
	}
	out := make([]*Page, 0, len(l.topics))
	for _, t := range l.topics {
		out = append(out, l.pages[t])
	}
	return out
}
