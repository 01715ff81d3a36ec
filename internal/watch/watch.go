// Package watch re-runs a conversion whenever the source layout changes.
// Events are debounced so editor save bursts trigger one run.
package watch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Config configures a watch loop.
type Config struct {
	// Root is the directory tree to watch.
	Root string

	// Debounce is how long to wait for further changes before re-running.
	Debounce time.Duration

	// Run is invoked after each settled burst of changes.
	Run func(ctx context.Context) error
}

// Watch blocks watching Config.Root until ctx is canceled. Run failures are
// logged, not fatal: the next change gets another chance.
func Watch(ctx context.Context, cfg Config) error {
	if cfg.Debounce == 0 {
		cfg.Debounce = 250 * time.Millisecond
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	if err := addRecursive(fsw, cfg.Root); err != nil {
		return err
	}

	var timer *time.Timer
	fire := make(chan struct{}, 1)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if skip(ev.Name) {
				continue
			}
			// New directories must be watched as they appear.
			if ev.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := addRecursive(fsw, ev.Name); err != nil {
						slog.Warn("watching new directory", "path", ev.Name, "error", err)
					}
				}
			}
			slog.Debug("change detected", "path", ev.Name, "op", ev.Op)
			if timer == nil {
				timer = time.AfterFunc(cfg.Debounce, func() {
					select {
					case fire <- struct{}{}:
					default:
					}
				})
			} else {
				timer.Reset(cfg.Debounce)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watch error", "error", err)

		case <-fire:
			timer = nil
			if err := cfg.Run(ctx); err != nil {
				slog.Error("conversion failed, watching for further changes", "error", err)
			}
		}
	}
}

func addRecursive(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if skip(path) {
			return filepath.SkipDir
		}
		return fsw.Add(path)
	})
}

func skip(path string) bool {
	base := filepath.Base(path)
	return base == ".git" || strings.HasSuffix(base, ".swp") || strings.HasSuffix(base, "~")
}
