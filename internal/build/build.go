// Package build exports the site to static files by replaying requests through the router.
package build

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"finitefield.org/vpnguide-web/internal/content"
	"finitefield.org/vpnguide-web/internal/nav"
)

// Options configures an export.
type Options struct {
	// OutDir is the root directory inside Fs.
	OutDir  string
	Locales []string
	// Assets is copied to <OutDir>/assets when set.
	Assets fs.FS
}

// Report summarises an export.
type Report struct {
	Pages  int
	Assets int
	Files  []string
}

// Exporter renders pages through an http.Handler into an afero filesystem.
type Exporter struct {
	handler http.Handler
	fs      afero.Fs
	logger  *zap.Logger
}

// NewExporter constructs an Exporter. logger may be nil.
func NewExporter(handler http.Handler, dst afero.Fs, logger *zap.Logger) *Exporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Exporter{handler: handler, fs: dst, logger: logger}
}

// Export writes every locale home, every topic in each locale it has content for, the
// sitemap and robots.txt. Any non-200 response aborts the export.
func (e *Exporter) Export(ctx context.Context, lib *content.Library, opts Options) (Report, error) {
	var report Report
	if opts.OutDir == "" {
		return report, fmt.Errorf("build: output directory is required")
	}
	if err := e.fs.MkdirAll(opts.OutDir, 0o755); err != nil {
		return report, fmt.Errorf("build: create %s: %w", opts.OutDir, err)
	}

	var routes []string
	for _, l := range opts.Locales {
		routes = append(routes, nav.HomePath(l))
	}
	for _, p := range lib.Pages() {
		for _, l := range p.AvailableLocales(opts.Locales) {
			routes = append(routes, nav.TopicPath(l, p.Topic))
		}
	}

	for _, route := range routes {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		file := filepath.Join(opts.OutDir, filepath.FromSlash(strings.Trim(route, "/")), "index.html")
		if err := e.fetch(ctx, route, file); err != nil {
			return report, err
		}
		report.Pages++
		report.Files = append(report.Files, file)
	}

	for _, name := range []string{"sitemap.xml", "robots.txt"} {
		file := filepath.Join(opts.OutDir, name)
		if err := e.fetch(ctx, "/"+name, file); err != nil {
			return report, err
		}
		report.Files = append(report.Files, file)
	}

	if opts.Assets != nil {
		n, err := e.copyAssets(opts.Assets, filepath.Join(opts.OutDir, "assets"))
		if err != nil {
			return report, err
		}
		report.Assets = n
	}
	return report, nil
}

func (e *Exporter) fetch(ctx context.Context, route, file string) error {
	req := httptest.NewRequest(http.MethodGet, route, nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		return fmt.Errorf("build: GET %s: status %d", route, rec.Code)
	}
	if err := e.fs.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return fmt.Errorf("build: mkdir for %s: %w", file, err)
	}
	if err := afero.WriteFile(e.fs, file, rec.Body.Bytes(), 0o644); err != nil {
		return fmt.Errorf("build: write %s: %w", file, err)
	}
	e.logger.Debug("generated", zap.String("route", route), zap.String("file", file))
	return nil
}

func (e *Exporter) copyAssets(src fs.FS, dstDir string) (int, error) {
	count := 0
	err := fs.WalkDir(src, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		target := filepath.Join(dstDir, filepath.FromSlash(p))
		if d.IsDir() {
			return e.fs.MkdirAll(target, 0o755)
		}
		in, err := src.Open(p)
		if err != nil {
			return err
		}
		defer in.Close()
		out, err := e.fs.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		if _, err := io.Copy(out, in); err != nil {
			out.Close()
			return err
		}
		count++
		return out.Close()
	})
	if err != nil {
		return count, fmt.Errorf("build: copy assets: %w", err)
	}
	return count, nil
}

// Clean removes a previous export. The filesystem root and the working directory are refused.
func Clean(dst afero.Fs, dir string) error {
	if clean := path.Clean(filepath.ToSlash(dir)); clean == "/" || clean == "." || clean == "" {
		return fmt.Errorf("build: refusing to clean %q", dir)
	}
	return dst.RemoveAll(dir)
}
