package backend

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

const watchDebounce = 100 * time.Millisecond

// Watcher reports writes to data files owned by a local backend, so that
// edits made by another process (pawcal serve, a second TUI) show up.
type Watcher struct {
	watcher *fsnotify.Watcher
	events  chan ChangeEvent

	mu     sync.Mutex
	files  map[string]struct{}
	timers map[string]*time.Timer
	closed bool
	done   chan struct{}
}

func NewWatcher() (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	w := &Watcher{
		watcher: fw,
		events:  make(chan ChangeEvent, 10),
		files:   make(map[string]struct{}),
		timers:  make(map[string]*time.Timer),
		done:    make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

// Add starts watching path. The parent directory is watched so that files
// replaced by rename are still seen.
func (w *Watcher) Add(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.files[absPath]; ok {
		return nil
	}
	if err := w.watcher.Add(filepath.Dir(absPath)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", absPath, err)
	}
	w.files[absPath] = struct{}{}
	return nil
}

// Events delivers one debounced event per burst of writes to a watched file.
func (w *Watcher) Events() <-chan ChangeEvent {
	return w.events
}

func (w *Watcher) loop() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.schedule(filepath.Clean(event.Name))

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Warn().Err(err).Msg("file watcher error")

		case <-w.done:
			return
		}
	}
}

func (w *Watcher) schedule(name string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.files[name]; !ok || w.closed {
		return
	}
	if timer, ok := w.timers[name]; ok {
		timer.Stop()
	}
	w.timers[name] = time.AfterFunc(watchDebounce, func() {
		w.mu.Lock()
		delete(w.timers, name)
		closed := w.closed
		w.mu.Unlock()
		if closed {
			return
		}

		select {
		case w.events <- ChangeEvent{Path: name, Timestamp: time.Now()}:
		default:
			log.Debug().Str("path", name).Msg("change event dropped, channel full")
		}
	})
}

func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	for _, timer := range w.timers {
		timer.Stop()
	}
	w.mu.Unlock()

	close(w.done)
	return w.watcher.Close()
}
