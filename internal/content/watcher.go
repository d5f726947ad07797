package content

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const reloadDebounce = 150 * time.Millisecond

// Watcher reloads the library from a directory whenever a content file changes.
type Watcher struct {
	dir     string
	logger  *zap.Logger
	current atomic.Pointer[Library]
	onLoad  func(*Library)
}

// NewWatcher loads dir once and returns a Watcher serving that library until Run picks up changes.
func NewWatcher(dir string, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	lib, err := Load(os.DirFS(dir))
	if err != nil {
		return nil, err
	}
	w := &Watcher{dir: dir, logger: logger}
	w.current.Store(lib)
	return w, nil
}

// Current implements Source.
func (w *Watcher) Current() *Library { return w.current.Load() }

// OnReload registers a callback invoked after each successful reload.
func (w *Watcher) OnReload(fn func(*Library)) { w.onLoad = fn }

// Run watches the directory until ctx is done. A failed reload keeps the previous library.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("content: create watcher: %w", err)
	}
	defer fw.Close()
	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("content: watch %s: %w", w.dir, err)
	}
	w.logger.Info("watching content", zap.String("dir", w.dir))

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !isContentFile(filepath.Base(event.Name)) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			w.logger.Debug("content changed", zap.String("path", event.Name), zap.String("op", event.Op.String()))
			pending = time.After(reloadDebounce)
		case <-pending:
			pending = nil
			w.reload()
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("content watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) reload() {
	lib, err := Load(os.DirFS(w.dir))
	if err != nil {
		w.logger.Error("content reload failed", zap.Error(err))
		return
	}
	w.current.Store(lib)
	w.logger.Info("content reloaded", zap.Int("topics", len(lib.topics)))
	if w.onLoad != nil {
		w.onLoad(lib)
	}
}
