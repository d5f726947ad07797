package content

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"finitefield.org/vpnguide-web/web"
)

func TestWatcherReloadsOnNewFile(t *testing.T) {
	dir := t.TempDir()
	iran, err := fs.ReadFile(web.Content(), "vpn-iran.yaml")
	if err != nil {
		t.Fatalf("read embedded content: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "vpn-iran.yaml"), iran, 0o644); err != nil {
		t.Fatalf("write content: %v", err)
	}
	uae, err := fs.ReadFile(web.Content(), "vpn-uae.yaml")
	if err != nil {
		t.Fatalf("read embedded content: %v", err)
	}

	w, err := NewWatcher(dir, nil)
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	if got := len(w.Current().Topics()); got != 1 {
		t.Fatalf("expected 1 topic before reload, got %d", got)
	}

	reloaded := make(chan *Library, 8)
	w.OnReload(func(lib *Library) {
		select {
		case reloaded <- lib:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	defer func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("run: %v", err)
		}
	}()

	// Rewrite until an event lands, since the watch may not be registered yet.
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(200 * time.Millisecond)
	defer tick.Stop()
	for {
		if err := os.WriteFile(filepath.Join(dir, "vpn-uae.yaml"), uae, 0o644); err != nil {
			t.Fatalf("write content: %v", err)
		}
		select {
		case lib := <-reloaded:
			if _, ok := lib.Get("vpn-uae"); !ok {
				continue
			}
			if w.Current() != lib {
				t.Fatalf("expected current library to be the reloaded one")
			}
			return
		case <-tick.C:
		case <-deadline:
			t.Fatalf("timed out waiting for reload")
		}
	}
}

func TestWatcherKeepsLibraryOnBrokenReload(t *testing.T) {
	dir := t.TempDir()
	iran, err := fs.ReadFile(web.Content(), "vpn-iran.yaml")
	if err != nil {
		t.Fatalf("read embedded content: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "vpn-iran.yaml"), iran, 0o644); err != nil {
		t.Fatalf("write content: %v", err)
	}
	w, err := NewWatcher(dir, nil)
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	before := w.Current()

	if err := os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("topic: [\n"), 0o644); err != nil {
		t.Fatalf("write content: %v", err)
	}
	w.reload()
	if w.Current() != before {
		t.Fatalf("expected previous library after failed reload")
	}
}

func TestNewWatcherRejectsInvalidDirectory(t *testing.T) {
	if _, err := NewWatcher(filepath.Join(t.TempDir(), "missing"), nil); err == nil {
		t.Fatalf("expected error for missing directory")
	}
}
