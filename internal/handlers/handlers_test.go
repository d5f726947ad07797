package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"finitefield.org/vpnguide-web/internal/handlers"
	"finitefield.org/vpnguide-web/internal/platform/observability"
	"finitefield.org/vpnguide-web/internal/providers"
	"finitefield.org/vpnguide-web/internal/testutil"
)

type flakyRepository struct {
	providers.Repository
	missing map[string]bool
	err     error
}

func (f flakyRepository) GetBySlug(ctx context.Context, slug string) (providers.Provider, error) {
	if f.err != nil {
		return providers.Provider{}, f.err
	}
	if f.missing[slug] {
		return providers.Provider{}, providers.ErrNotFound
	}
	return f.Repository.GetBySlug(ctx, slug)
}

func get(t *testing.T, h http.Handler, path string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func cardTexts(doc *goquery.Document, sel string) []string {
	return testutil.Texts(doc, "[data-card] "+sel)
}

func TestTopicPageRendersPicksInOrder(t *testing.T) {
	t.Parallel()

	h := testutil.NewHandler(t)
	rec := get(t, h, "/en/best/vpn-chromebook")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	doc := testutil.ParseHTML(t, rec.Body.Bytes())
	require.Equal(t, "en", doc.Find("html").AttrOr("lang", ""))
	require.Equal(t, "Best VPN for Chromebook", strings.TrimSpace(doc.Find("section.hero h1").Text()))
	require.Equal(t, []string{"NordVPN", "ExpressVPN", "Surfshark"}, cardTexts(doc, "[data-card-name]"))
	require.Equal(t, []string{"Get NordVPN", "Get ExpressVPN", "Get Surfshark"}, cardTexts(doc, "[data-cta]"))
	require.Equal(t, []string{"Best overall", "Easiest to use", "Best value"}, cardTexts(doc, "[data-badge]"))
	require.Equal(t, "9.6/10", strings.TrimSpace(doc.Find(`[data-card="nordvpn"] [data-card-rating]`).Text()))
	require.Equal(t, 3, doc.Find("[data-cta-footer]").Length())
	require.Equal(t, 3, doc.Find("[data-faq]").Length())
}

func TestTopicPageHeadMetadata(t *testing.T) {
	t.Parallel()

	h := testutil.NewHandler(t)
	rec := get(t, h, "/en/best/vpn-chromebook")
	require.Equal(t, http.StatusOK, rec.Code)
	doc := testutil.ParseHTML(t, rec.Body.Bytes())

	require.Equal(t, "Best VPN for Chromebook in 2025 (Tested on ChromeOS)", doc.Find("title").Text())
	require.Equal(t, testutil.BaseURL+"/en/best/vpn-chromebook", doc.Find(`link[rel="canonical"]`).AttrOr("href", ""))
	require.Equal(t, "index, follow", doc.Find(`meta[name="robots"]`).AttrOr("content", ""))
	require.Equal(t, "article", doc.Find(`meta[property="og:type"]`).AttrOr("content", ""))
	require.Equal(t, testutil.BaseURL+"/assets/og/vpn-chromebook.png", doc.Find(`meta[property="og:image"]`).AttrOr("content", ""))

	hreflangs := map[string]string{}
	doc.Find(`link[rel="alternate"]`).Each(func(_ int, s *goquery.Selection) {
		hreflangs[s.AttrOr("hreflang", "")] = s.AttrOr("href", "")
	})
	require.Len(t, hreflangs, 7, "en nl de es fr ja plus x-default")
	require.Equal(t, testutil.BaseURL+"/en/best/vpn-chromebook", hreflangs["x-default"])
	require.Equal(t, testutil.BaseURL+"/ja/best/vpn-chromebook", hreflangs["ja"])

	types := testutil.StructuredData(t, doc)
	for _, typ := range []string{"Organization", "Article", "ItemList", "BreadcrumbList", "FAQPage"} {
		require.Contains(t, types, typ)
	}
	items := types["ItemList"]["itemListElement"].([]any)
	require.Len(t, items, 3)
	require.Equal(t, "NordVPN", items[0].(map[string]any)["name"])
}

func TestTopicPageRendersEmptyCardForMissingProvider(t *testing.T) {
	t.Parallel()

	repo := flakyRepository{
		Repository: providers.NewStaticRepository(nil),
		missing:    map[string]bool{"expressvpn": true},
	}
	h := testutil.NewHandler(t, testutil.WithRepository(repo))
	rec := get(t, h, "/en/best/vpn-chromebook")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	doc := testutil.ParseHTML(t, rec.Body.Bytes())
	require.Equal(t, 3, doc.Find("[data-card]").Length())
	card := doc.Find(`[data-card="expressvpn"]`)
	require.True(t, card.HasClass("is-missing"))
	require.Empty(t, strings.TrimSpace(card.Find("[data-card-name]").Text()))
	require.Equal(t, "Get", strings.TrimSpace(card.Find("[data-cta]").Text()))
	require.Equal(t, "Easiest to use", strings.TrimSpace(card.Find("[data-badge]").Text()))
	require.Equal(t, 2, doc.Find("[data-cta-footer]").Length())

	list := testutil.StructuredData(t, doc)["ItemList"]
	require.NotNil(t, list)
	require.EqualValues(t, 2, list["numberOfItems"])
	items := list["itemListElement"].([]any)
	require.Len(t, items, 2)
	require.Equal(t, "NordVPN", items[0].(map[string]any)["name"])
	require.EqualValues(t, 1, items[0].(map[string]any)["position"])
	require.Equal(t, "Surfshark", items[1].(map[string]any)["name"])
	require.EqualValues(t, 2, items[1].(map[string]any)["position"])
}

func TestTopicPageRendersThaiContentVerbatim(t *testing.T) {
	t.Parallel()

	h := testutil.NewHandler(t)
	rec := get(t, h, "/th/best/vpn-iran")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, "th", rec.Header().Get("Content-Language"))

	doc := testutil.ParseHTML(t, rec.Body.Bytes())
	require.Equal(t, "th", doc.Find("html").AttrOr("lang", ""))
	require.Equal(t, "การใช้ VPN ในอิหร่านถูกกฎหมายหรือไม่", strings.TrimSpace(doc.Find("[data-faq-question]").First().Text()))
	require.Equal(t, "รับ ExpressVPN", strings.TrimSpace(doc.Find("[data-cta]").First().Text()))
	require.Equal(t, "index, follow", doc.Find(`meta[name="robots"]`).AttrOr("content", ""))

	var locales []string
	doc.Find("[data-locale-link]").Each(func(_ int, s *goquery.Selection) {
		locales = append(locales, s.AttrOr("data-locale-link", ""))
	})
	require.Equal(t, []string{"en", "th"}, locales)
}

func TestTopicPageFallsBackToEnglish(t *testing.T) {
	t.Parallel()

	h := testutil.NewHandler(t)
	for _, path := range []string{"/th/best/vpn-uae", "/pt/best/vpn-uae"} {
		rec := get(t, h, path)
		require.Equal(t, http.StatusOK, rec.Code, path)

		doc := testutil.ParseHTML(t, rec.Body.Bytes())
		require.Equal(t, "en", doc.Find("html").AttrOr("lang", ""), path)
		require.Equal(t, "Best VPN for the UAE", strings.TrimSpace(doc.Find("section.hero h1").Text()), path)
		require.Equal(t, "noindex, follow", doc.Find(`meta[name="robots"]`).AttrOr("content", ""), path)
		require.Equal(t, testutil.BaseURL+"/en/best/vpn-uae", doc.Find(`link[rel="canonical"]`).AttrOr("href", ""), path)
	}
}

func TestTopicPageKeepsEnglishTitleForMismatchedMetadataKey(t *testing.T) {
	t.Parallel()

	h := testutil.NewHandler(t)
	rec := get(t, h, "/ja/best/vpn-chromebook")
	require.Equal(t, http.StatusOK, rec.Code)

	doc := testutil.ParseHTML(t, rec.Body.Bytes())
	require.Equal(t, "ja", doc.Find("html").AttrOr("lang", ""))
	require.Equal(t, "Best VPN for Chromebook in 2025 (Tested on ChromeOS)", doc.Find("title").Text())
}

func TestTopicPageErrors(t *testing.T) {
	t.Parallel()

	t.Run("unknown topic", func(t *testing.T) {
		h := testutil.NewHandler(t)
		rec := get(t, h, "/en/best/vpn-atlantis")
		require.Equal(t, http.StatusNotFound, rec.Code)
		doc := testutil.ParseHTML(t, rec.Body.Bytes())
		require.Equal(t, "404", doc.Find("[data-status]").AttrOr("data-status", ""))
		require.Equal(t, "Page not found", strings.TrimSpace(doc.Find(".error-page h1").Text()))
		require.Equal(t, "noindex", doc.Find(`meta[name="robots"]`).AttrOr("content", ""))
	})

	t.Run("database failure", func(t *testing.T) {
		repo := flakyRepository{Repository: providers.NewStaticRepository(nil), err: errors.New("dial tcp: connection refused")}
		h := testutil.NewHandler(t, testutil.WithRepository(repo))
		rec := get(t, h, "/de/best/vpn-chromebook")
		require.Equal(t, http.StatusInternalServerError, rec.Code)
		doc := testutil.ParseHTML(t, rec.Body.Bytes())
		require.Equal(t, "500", doc.Find("[data-status]").AttrOr("data-status", ""))
		require.Equal(t, "de", doc.Find("html").AttrOr("lang", ""))
		require.NotContains(t, rec.Body.String(), "connection refused")
	})

	t.Run("path that is not a locale", func(t *testing.T) {
		h := testutil.NewHandler(t)
		rec := get(t, h, "/favicon.ico")
		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestPanicsRenderErrorResponses(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.ErrorLevel)
	explode := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.Contains(r.URL.Path, "/best/") {
				panic("template data corrupted")
			}
			next.ServeHTTP(w, r)
		})
	}
	h := testutil.NewHandler(t,
		testutil.WithLogger(zap.New(core)),
		testutil.WithRouterOptions(handlers.WithMiddlewares(explode)),
	)

	t.Run("site page", func(t *testing.T) {
		rec := get(t, h, "/en/best/vpn-iran")
		require.Equal(t, http.StatusInternalServerError, rec.Code)
		require.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
		doc := testutil.ParseHTML(t, rec.Body.Bytes())
		require.Equal(t, "500", doc.Find("[data-status]").AttrOr("data-status", ""))
		require.Equal(t, "noindex", doc.Find(`meta[name="robots"]`).AttrOr("content", ""))
		require.NotContains(t, rec.Body.String(), "template data corrupted")
	})

	t.Run("api route", func(t *testing.T) {
		rec := get(t, h, "/api/v1/en/best/vpn-iran")
		require.Equal(t, http.StatusInternalServerError, rec.Code)
		require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		var payload map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
		require.Equal(t, "internal", payload["error"])
		require.EqualValues(t, http.StatusInternalServerError, payload["status"])
		require.NotEmpty(t, payload["request_id"])
	})

	t.Run("unaffected routes", func(t *testing.T) {
		rec := get(t, h, "/en/")
		require.Equal(t, http.StatusOK, rec.Code)
	})

	require.GreaterOrEqual(t, logs.FilterMessage("panic recovered").Len(), 2)
}

func TestRootRedirectNegotiatesLocale(t *testing.T) {
	t.Parallel()

	h := testutil.NewHandler(t)
	cases := []struct {
		accept string
		want   string
	}{
		{"de-DE,de;q=0.9,en;q=0.8", "/de/"},
		{"th", "/th/"},
		{"pt-BR", "/en/"},
		{"", "/en/"},
	}
	for _, tc := range cases {
		rec := get(t, h, "/", "Accept-Language", tc.accept)
		require.Equal(t, http.StatusFound, rec.Code, tc.accept)
		require.Equal(t, tc.want, rec.Header().Get("Location"), tc.accept)
	}
}

func TestIndexListsTopicsByCategory(t *testing.T) {
	t.Parallel()

	h := testutil.NewHandler(t)
	rec := get(t, h, "/de/")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	doc := testutil.ParseHTML(t, rec.Body.Bytes())
	require.Equal(t, 1, doc.Find(`[data-category="platform"] [data-topic]`).Length())
	require.Equal(t, 2, doc.Find(`[data-category="country"] [data-topic]`).Length())
	require.Equal(t, "/de/best/vpn-chromebook", doc.Find(`[data-topic="vpn-chromebook"]`).AttrOr("href", ""))
	require.Equal(t, "/en/best/vpn-iran", doc.Find(`[data-topic="vpn-iran"]`).AttrOr("href", ""))
	require.Equal(t, 9, doc.Find("[data-locale-link]").Length())
}

func TestTopicJSON(t *testing.T) {
	t.Parallel()

	h := testutil.NewHandler(t)
	rec := get(t, h, "/api/v1/en/best/vpn-chromebook")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var vm struct {
		Topic  string `json:"topic"`
		Locale string `json:"locale"`
		Cards  []struct {
			Name     string `json:"name"`
			CTALabel string `json:"cta_label"`
		} `json:"cards"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &vm))
	require.Equal(t, "vpn-chromebook", vm.Topic)
	require.Len(t, vm.Cards, 3)
	require.Equal(t, "Get NordVPN", vm.Cards[0].CTALabel)

	rec = get(t, h, "/api/v1/en/best/vpn-atlantis")
	require.Equal(t, http.StatusNotFound, rec.Code)
	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Equal(t, "topic_not_found", payload["error"])
	require.NotEmpty(t, payload["request_id"])

	rec = get(t, h, "/api/v1/nothing-here")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestSitemapListsLocalizedPages(t *testing.T) {
	t.Parallel()

	h := testutil.NewHandler(t)
	rec := get(t, h, "/sitemap.xml")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.True(t, strings.HasPrefix(body, "<?xml"))
	require.Contains(t, body, "<loc>"+testutil.BaseURL+"/th/best/vpn-iran</loc>")
	require.NotContains(t, body, "<loc>"+testutil.BaseURL+"/th/best/vpn-chromebook</loc>")
}

func TestRobotsHealthAndAssets(t *testing.T) {
	t.Parallel()

	h := testutil.NewHandler(t)

	rec := get(t, h, "/robots.txt")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Sitemap: "+testutil.BaseURL+"/sitemap.xml")

	rec = get(t, h, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	var health map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	require.Equal(t, "ok", health["status"])

	rec = get(t, h, "/assets/css/site.css")
	require.Equal(t, http.StatusOK, rec.Code)
	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)
	rec = get(t, h, "/assets/css/site.css", "If-None-Match", etag)
	require.Equal(t, http.StatusNotModified, rec.Code)
}

func TestMetricsEndpointReportsPages(t *testing.T) {
	t.Parallel()

	h := testutil.NewHandler(t, testutil.WithMetrics(observability.NewMetrics()))
	require.Equal(t, http.StatusOK, get(t, h, "/th/best/vpn-uae").Code)

	rec := get(t, h, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), `pages_rendered_total{locale="en",topic="vpn-uae"} 1`)
	require.Contains(t, string(body), `content_locale_fallbacks_total{topic="vpn-uae"} 1`)
	require.Contains(t, string(body), "http_requests_total")
}
