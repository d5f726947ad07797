package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"finitefield.org/vpnguide-web/internal/platform/database"
)

// runCLI executes the root command with a clean environment and returns its output.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	for _, key := range []string{
		"DATABASE_URL",
		"VPNGUIDE_CONTENT_DIR",
		"VPNGUIDE_TEMPLATES_DIR",
		"VPNGUIDE_PROVIDER_SOURCE",
		"VPNGUIDE_LOCALES",
		"VPNGUIDE_FALLBACK_LOCALE",
		"VPNGUIDE_BASE_URL",
		"VPNGUIDE_TRACING",
	} {
		t.Setenv(key, "")
	}
	t.Setenv("LOG_LEVEL", "error")

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--env-file", ""))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestLintReportsMismatchedMetadataKeys(t *testing.T) {
	out, err := runCLI(t, "lint")
	if err == nil {
		t.Fatalf("expected lint to fail, output:\n%s", out)
	}
	for _, want := range []string{
		"vpn-chromebook: meta.description.janswer",
		"vpn-chromebook: meta.title.janswer",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestLintPassesForCleanDirectory(t *testing.T) {
	dir := t.TempDir()
	src, err := os.ReadFile(filepath.Join("..", "..", "web", "content", "vpn-iran.yaml"))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "vpn-iran.yaml"), src, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	out, err := runCLI(t, "lint", "--dir", dir)
	if err != nil {
		t.Fatalf("lint failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "1 topics ok") {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestBuildExportsStaticSite(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "dist")

	out, err := runCLI(t, "build", "--static", "--out", outDir)
	if err != nil {
		t.Fatalf("build failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "exported 22 pages") {
		t.Fatalf("unexpected summary: %s", out)
	}
	for _, rel := range []string{
		"en/index.html",
		"th/best/vpn-iran/index.html",
		"sitemap.xml",
		"robots.txt",
		"assets/css/site.css",
	} {
		if _, err := os.Stat(filepath.Join(outDir, filepath.FromSlash(rel))); err != nil {
			t.Fatalf("expected %s: %v", rel, err)
		}
	}
}

func TestMigrateRequiresDatabaseURL(t *testing.T) {
	_, err := runCLI(t, "migrate")
	if !errors.Is(err, database.ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestSeedRequiresDatabaseURL(t *testing.T) {
	_, err := runCLI(t, "seed")
	if !errors.Is(err, database.ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}
