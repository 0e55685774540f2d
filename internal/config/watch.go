package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a profile file when it changes on disk. The parent
// directory is watched so editors that replace the file are seen too.
type Watcher struct {
	path    string
	watcher *fsnotify.Watcher
	log     *slog.Logger
}

// NewWatcher starts watching path.
func NewWatcher(path string, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("config: watch %s: %w", path, err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config: watch %s: %w", path, err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, fmt.Errorf("config: watch %s: %w", path, err)
	}
	return &Watcher{path: abs, watcher: w, log: logger}, nil
}

// Run delivers every successfully reloaded file to fn until ctx is done or
// the watcher is closed. Parse errors are logged and skipped.
func (w *Watcher) Run(ctx context.Context, fn func(File)) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path || !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			f, err := Load(w.path)
			if err != nil {
				w.log.Warn("profile reload failed", "path", w.path, "err", err)
				continue
			}
			w.log.Info("profile reloaded", "path", w.path, "profile", f.Profile)
			fn(f)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("profile watcher error", "path", w.path, "err", err)
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
