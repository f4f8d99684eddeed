package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/nikolchaa/resuma/internal/logger"
)

// reloadDelay coalesces the burst of events a single save produces.
const reloadDelay = 100 * time.Millisecond

// Watcher reloads the configuration when the config file, or any of the
// extra files it depends on, changes on disk.
type Watcher struct {
	path    string
	files   map[string]bool
	watcher *fsnotify.Watcher

	mu        sync.Mutex
	callbacks []func(*Config)
}

// NewWatcher watches path and extra. Directories are watched rather than
// files so that atomic replacements are noticed.
func NewWatcher(path string, extra ...string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	w := &Watcher{path: path, files: make(map[string]bool), watcher: fw}
	dirs := make(map[string]bool)
	for _, f := range append([]string{path}, extra...) {
		if f == "" {
			continue
		}
		abs, err := filepath.Abs(f)
		if err != nil {
			_ = fw.Close()
			return nil, err
		}
		w.files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			_ = fw.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}
	return w, nil
}

// OnChange registers a callback receiving every successfully reloaded config.
func (w *Watcher) OnChange(callback func(*Config)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, callback)
}

// Run delivers reloads until ctx is done. Invalid configurations are
// logged and skipped.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() { _ = w.watcher.Close() }()

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case e, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.files[filepath.Clean(e.Name)] || !e.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			logger.Debug("Config change detected", logger.Fields{"op": e.Op.String(), "file": e.Name})
			if timer == nil {
				timer = time.NewTimer(reloadDelay)
			} else {
				timer.Reset(reloadDelay)
			}
			fire = timer.C

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Config watcher error", logger.Fields{"error": err.Error()})

		case <-fire:
			fire = nil
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := LoadConfig(w.path)
	if err != nil {
		logger.Warn("Failed to reload config", logger.Fields{"error": err.Error()})
		return
	}

	w.mu.Lock()
	callbacks := append(([]func(*Config))(nil), w.callbacks...)
	w.mu.Unlock()

	for _, cb := range callbacks {
		cb(cfg)
	}
}
