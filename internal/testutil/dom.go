package testutil

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

// ParseHTML parses a rendered page into a goquery document.
func ParseHTML(t testing.TB, body []byte) *goquery.Document {
	t.Helper()

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return doc
}

// Texts returns the trimmed text of every node matching sel, in document order.
func Texts(doc *goquery.Document, sel string) []string {
	var out []string
	doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
		out = append(out, strings.TrimSpace(s.Text()))
	})
	return out
}

// StructuredData decodes every JSON-LD block in the page, keyed by its @type.
func StructuredData(t testing.TB, doc *goquery.Document) map[string]map[string]any {
	t.Helper()

	types := map[string]map[string]any{}
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		var payload map[string]any
		if err := json.Unmarshal([]byte(s.Text()), &payload); err != nil {
			t.Fatalf("decode json-ld: %v\n%s", err, s.Text())
		}
		typ, _ := payload["@type"].(string)
		types[typ] = payload
	})
	return types
}
