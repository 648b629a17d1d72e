// Package watcher reports changes to a single file, such as the settings
// file or the SQLite database, so the worker can restart with fresh state.
package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// Change is the kind of change reported for the target.
type Change int

const (
	// Modified means the target was written, created or replaced.
	Modified Change = iota + 1
	// Removed means the target or its directory is gone.
	Removed
)

func (c Change) String() string {
	switch c {
	case Modified:
		return "modified"
	case Removed:
		return "removed"
	default:
		return "unknown"
	}
}

// Watcher monitors a file and calls onChange after events settle.
// It watches the parent directory since fsnotify cannot watch non-existent files.
type Watcher struct {
	targetPath string
	parentPath string
	onChange   func(Change)
	watcher    *fsnotify.Watcher
	ctx        context.Context
	cancel     context.CancelFunc
	mu         sync.Mutex
	running    bool
	debounce   time.Duration
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets how long events must settle before onChange runs.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// New creates a new Watcher for targetPath.
func New(targetPath string, onChange func(Change), opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	target := filepath.Clean(targetPath)
	w := &Watcher{
		targetPath: target,
		parentPath: filepath.Dir(target),
		onChange:   onChange,
		watcher:    fsw,
		ctx:        ctx,
		cancel:     cancel,
		debounce:   250 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start begins watching.
func (w *Watcher) Start() error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.addWatch(); err != nil {
		log.Warn().Err(err).Str("path", w.parentPath).Msg("Failed to add initial watch")
	}

	go w.watchLoop()
	return nil
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}

	w.running = false
	w.cancel()
	return w.watcher.Close()
}

func (w *Watcher) addWatch() error {
	if _, err := os.Stat(w.parentPath); errors.Is(err, os.ErrNotExist) {
		return err
	}
	return w.watcher.Add(w.parentPath)
}

// classify maps an event to a change of the target, or 0 if unrelated.
func (w *Watcher) classify(event fsnotify.Event) Change {
	path := filepath.Clean(event.Name)

	switch {
	case path == w.parentPath && event.Op&fsnotify.Remove != 0:
		return Removed
	case path != w.targetPath:
		return 0
	case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		// editors replace files with a rename; a later Create turns this into Modified
		return Removed
	case event.Op&(fsnotify.Write|fsnotify.Create) != 0:
		return Modified
	default:
		return 0
	}
}

func (w *Watcher) watchLoop() {
	var (
		debounceTimer *time.Timer
		pending       Change
		pendingMu     sync.Mutex
	)

	schedule := func(c Change) {
		pendingMu.Lock()
		defer pendingMu.Unlock()

		// a recreate after a removal reads as a modification
		if pending == Removed && c == Modified {
			pending = Modified
		} else if pending == 0 || c == Removed {
			pending = c
		}
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
		debounceTimer = time.AfterFunc(w.debounce, func() {
			pendingMu.Lock()
			c := pending
			pending = 0
			pendingMu.Unlock()
			w.fire(c)
		})
	}

	for {
		select {
		case <-w.ctx.Done():
			pendingMu.Lock()
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			pendingMu.Unlock()
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if filepath.Clean(event.Name) == w.parentPath && event.Op&fsnotify.Create != 0 {
				log.Info().Str("path", w.parentPath).Msg("Parent directory recreated, re-establishing watch")
				_ = w.addWatch()
				continue
			}

			if c := w.classify(event); c != 0 {
				log.Debug().Str("path", w.targetPath).Str("op", event.Op.String()).Msg("Watched file changed")
				schedule(c)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Error().Err(err).Msg("Watcher error")
		}
	}
}

func (w *Watcher) fire(c Change) {
	if c == 0 || w.ctx.Err() != nil {
		return
	}
	log.Info().Str("path", w.targetPath).Stringer("change", c).Msg("Triggering change callback")

	if w.onChange != nil {
		w.onChange(c)
	}

	if c == Removed {
		// the directory may come back; try to watch it again
		go func() {
			time.Sleep(500 * time.Millisecond)
			if w.ctx.Err() != nil {
				return
			}
			if err := w.addWatch(); err != nil {
				log.Warn().Err(err).Str("path", w.parentPath).Msg("Failed to re-establish watch after removal")
			}
		}()
	}
}
