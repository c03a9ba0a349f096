package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceDelay batches editor write bursts into one reload.
const debounceDelay = 500 * time.Millisecond

// Reloader watches the config and pattern files for changes and triggers a
// debounced hot-reload callback.
type Reloader struct {
	watcher *fsnotify.Watcher
	reload  func() error
	logger  *slog.Logger
	paths   []string
}

// NewReloader creates a file watcher for the given paths. Empty or missing
// paths are skipped; a reloader with nothing to watch is still valid and
// Run simply blocks until cancelled.
func NewReloader(paths []string, reload func() error, logger *slog.Logger) (*Reloader, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config: create file watcher: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	var watched []string
	for _, p := range paths {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := watcher.Add(p); err != nil {
			watcher.Close()
			return nil, fmt.Errorf("config: watch %q: %w", p, err)
		}
		watched = append(watched, p)
	}

	return &Reloader{
		watcher: watcher,
		reload:  reload,
		logger:  logger,
		paths:   watched,
	}, nil
}

// Paths returns the files actually under watch.
func (r *Reloader) Paths() []string { return r.paths }

// Run watches for file changes and invokes the reload callback, debounced.
// Blocks until ctx is cancelled.
func (r *Reloader) Run(ctx context.Context) error {
	defer r.watcher.Close()

	var debounce *time.Timer

	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			return nil

		case event, ok := <-r.watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(debounceDelay, func() {
					if err := r.reload(); err != nil {
						r.logger.Error("hot-reload failed, keeping previous configuration", "error", err)
					} else {
						r.logger.Info("hot-reload applied")
					}
				})
			}

		case err, ok := <-r.watcher.Errors:
			if !ok {
				return nil
			}
			r.logger.Error("file watcher error", "error", err)
		}
	}
}
