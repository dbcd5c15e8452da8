// Package watch reports changes to files in the data directory.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/ziadkadry99/walkthrough/internal/log"
)

// DefaultPatterns match the catalog and the narrative files.
var DefaultPatterns = []string{"chapters.json", "**/*.md"}

// DefaultDebounce collapses the burst of events an editor save produces.
const DefaultDebounce = 300 * time.Millisecond

// Handler receives the data-relative paths that changed during one debounce
// window.
type Handler func(ctx context.Context, changed []string)

// Watcher watches a directory tree.
type Watcher struct {
	dir      string
	patterns []string
	debounce time.Duration
	handler  Handler
	logger   zerolog.Logger
}

// New returns a Watcher for dir. Empty patterns means DefaultPatterns and a
// zero debounce means DefaultDebounce.
func New(dir string, patterns []string, debounce time.Duration, h Handler) *Watcher {
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		dir:      dir,
		patterns: patterns,
		debounce: debounce,
		handler:  h,
		logger:   log.WithComponent("watch"),
	}
}

// Matches reports whether the data-relative path rel is watched.
func (w *Watcher) Matches(rel string) bool {
	rel = filepath.ToSlash(rel)
	for _, p := range w.patterns {
		if ok, err := doublestar.Match(p, rel); err == nil && ok {
			return true
		}
		// Patterns without a slash also match by file name.
		if ok, err := doublestar.Match(p, filepath.Base(rel)); err == nil && ok {
			return true
		}
	}
	return false
}

// Run watches until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fw.Close()

	err = filepath.WalkDir(w.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return fw.Add(path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("watching %s: %w", w.dir, err)
	}

	w.logger.Info().Str(log.FieldEvent, "watch.started").Str(log.FieldPath, w.dir).Msg("watching data directory")

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()
	pending := make(map[string]struct{})

	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Str(log.FieldEvent, "watch.stopped").Msg("data watcher stopped")
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) {
				// New directories are watched as they appear.
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					_ = fw.Add(ev.Name)
					continue
				}
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Remove) {
				continue
			}
			rel, err := filepath.Rel(w.dir, ev.Name)
			if err != nil || !w.Matches(rel) {
				continue
			}
			w.logger.Debug().Str(log.FieldEvent, "watch.changed").Str(log.FieldFile, rel).Str("op", ev.Op.String()).Msg("file changed")
			pending[filepath.ToSlash(rel)] = struct{}{}
			timer.Reset(w.debounce)

		case <-timer.C:
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			sort.Strings(changed)
			clear(pending)
			if len(changed) > 0 && w.handler != nil {
				w.handler(ctx, changed)
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error().Err(err).Str(log.FieldEvent, "watch.error").Msg("data watcher error")
		}
	}
}
