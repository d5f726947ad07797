package build

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"finitefield.org/vpnguide-web/internal/content"
	"finitefield.org/vpnguide-web/internal/providers"
	"finitefield.org/vpnguide-web/internal/testutil"
	"finitefield.org/vpnguide-web/web"
)

type failingRepository struct{ providers.Repository }

func (failingRepository) GetBySlug(context.Context, string) (providers.Provider, error) {
	return providers.Provider{}, errors.New("database unavailable")
}

func loadLibrary(t *testing.T) *content.Library {
	t.Helper()
	lib, err := content.Load(web.Content())
	require.NoError(t, err)
	return lib
}

func TestExportWritesEveryLocalizedPage(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	exp := NewExporter(testutil.NewHandler(t), fsys, nil)
	report, err := exp.Export(context.Background(), loadLibrary(t), Options{
		OutDir:  "/out",
		Locales: testutil.Locales,
		Assets:  web.Assets(),
	})
	require.NoError(t, err)
	// 9 locale homes + chromebook (6) + iran (2) + uae (5)
	require.Equal(t, 22, report.Pages)
	require.Equal(t, 1, report.Assets)

	for _, file := range []string{
		"/out/en/index.html",
		"/out/th/index.html",
		"/out/th/best/vpn-iran/index.html",
		"/out/ja/best/vpn-chromebook/index.html",
		"/out/sitemap.xml",
		"/out/robots.txt",
		"/out/assets/css/site.css",
	} {
		ok, err := afero.Exists(fsys, filepath.FromSlash(file))
		require.NoError(t, err)
		require.True(t, ok, file)
	}

	ok, err := afero.Exists(fsys, filepath.FromSlash("/out/th/best/vpn-chromebook/index.html"))
	require.NoError(t, err)
	require.False(t, ok, "fallback-only pages are not exported")

	body, err := afero.ReadFile(fsys, filepath.FromSlash("/out/th/best/vpn-iran/index.html"))
	require.NoError(t, err)
	require.True(t, strings.Contains(string(body), "รับ ExpressVPN"))
}

func TestExportStopsOnFailedPage(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	h := testutil.NewHandler(t, testutil.WithRepository(failingRepository{}))
	_, err := NewExporter(h, fsys, nil).Export(context.Background(), loadLibrary(t), Options{
		OutDir:  "/out",
		Locales: []string{"en"},
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "status 500")
}

func TestExportRequiresOutDir(t *testing.T) {
	t.Parallel()

	_, err := NewExporter(http.NotFoundHandler(), afero.NewMemMapFs(), nil).Export(context.Background(), loadLibrary(t), Options{})
	require.Error(t, err)
}

func TestCleanRefusesRoot(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	require.Error(t, Clean(fsys, "/"))
	require.Error(t, Clean(fsys, "."))

	require.NoError(t, afero.WriteFile(fsys, "/out/en/index.html", []byte("x"), 0o644))
	require.NoError(t, Clean(fsys, "/out"))
	ok, err := afero.DirExists(fsys, "/out")
	require.NoError(t, err)
	require.False(t, ok)
}
