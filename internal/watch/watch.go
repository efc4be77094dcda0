// Package watch re-runs work when watched files change.
package watch

import (
	"context"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultDebounce coalesces the burst of events an editor save produces.
const DefaultDebounce = 100 * time.Millisecond

// Watcher monitors a fixed set of files. It watches their directories so
// files replaced by rename (as many editors save) keep being tracked.
type Watcher struct {
	files    map[string]bool
	logger   zerolog.Logger
	Debounce time.Duration
	Ready    chan struct{}

	newWatcher func() (*fsnotify.Watcher, error)
}

// New creates a Watcher for paths.
func New(paths []string, logger zerolog.Logger) (*Watcher, error) {
	files := make(map[string]bool, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, err
		}
		files[abs] = true
	}
	return &Watcher{
		files:      files,
		logger:     logger.With().Str("component", "watcher").Logger(),
		Debounce:   DefaultDebounce,
		Ready:      make(chan struct{}),
		newWatcher: fsnotify.NewWatcher,
	}, nil
}

// Watch blocks until ctx ends, calling fn with the sorted set of changed
// files after each debounced burst. Calls to fn never overlap.
func (w *Watcher) Watch(ctx context.Context, fn func(changed []string)) error {
	watcher, err := w.newWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	dirs := map[string]bool{}
	for f := range w.files {
		dirs[filepath.Dir(f)] = true
	}
	for d := range dirs {
		if err := watcher.Add(d); err != nil {
			return err
		}
	}
	w.logger.Info().Int("files", len(w.files)).Msg("watching for changes")
	if w.Ready != nil {
		close(w.Ready)
	}

	var (
		mu      sync.Mutex
		pending = map[string]bool{}
		timer   *time.Timer
		running sync.Mutex
	)
	flush := func() {
		mu.Lock()
		changed := make([]string, 0, len(pending))
		for f := range pending {
			changed = append(changed, f)
		}
		pending = map[string]bool{}
		mu.Unlock()
		if len(changed) == 0 {
			return
		}
		sort.Strings(changed)
		running.Lock()
		defer running.Unlock()
		fn(changed)
	}
	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error().Err(err).Msg("watcher error")
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			name, relevant := w.relevant(event)
			if !relevant {
				continue
			}
			w.logger.Debug().Str("file", name).Str("op", event.Op.String()).Msg("change detected")
			mu.Lock()
			pending[name] = true
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.Debounce, flush)
			mu.Unlock()
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) (string, bool) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return "", false
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return "", false
	}
	return abs, w.files[abs]
}
