// Package watch reports debounced changes of a single file.
package watch

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period before a burst of events is reported
const DefaultDebounce = 100 * time.Millisecond

// Watcher watches one file. Editors often replace files instead of writing
// them in place, so the parent directory is watched and events are filtered
// by name.
type Watcher struct {
	path      string
	debounce  time.Duration
	watcher   *fsnotify.Watcher
	closeOnce sync.Once
}

// New creates a watcher for path
func New(path string, debounce time.Duration) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	return &Watcher{path: abs, debounce: debounce, watcher: w}, nil
}

// Path returns the absolute path being watched
func (w *Watcher) Path() string { return w.path }

// Run calls onChange once per debounced burst of changes to the file until
// ctx is done or the watcher is closed
func (w *Watcher) Run(ctx context.Context, onChange func()) {
	debounce := time.NewTimer(0)
	<-debounce.C // drain initial timer
	defer debounce.Stop()

	pending := false

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			pending = true
			debounce.Reset(w.debounce)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Println("[Watch] watcher error:", err)

		case <-debounce.C:
			if pending {
				pending = false
				onChange()
			}
		}
	}
}

// Events returns a channel receiving one value per debounced change. The
// channel is closed when ctx is done.
func (w *Watcher) Events(ctx context.Context) <-chan struct{} {
	ch := make(chan struct{}, 1)
	go func() {
		defer close(ch)
		w.Run(ctx, func() {
			select {
			case ch <- struct{}{}:
			default:
				// a change is already queued
			}
		})
	}()
	return ch
}

// Close stops watching
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		err = w.watcher.Close()
	})
	return err
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}
