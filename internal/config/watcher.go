package config

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultReloadDebounce is how long the watcher waits after the last
// write before reloading. Editors often save with several rapid events;
// reloading on each would thrash subscribers.
const DefaultReloadDebounce = 250 * time.Millisecond

// ReloadHandler receives the freshly loaded settings, or the error that
// prevented the reload.
type ReloadHandler func(s Settings, err error)

// Watcher reloads a settings file when it changes on disk.
//
// The parent directory is watched rather than the file itself, so
// atomic-rename saves (the pattern Save uses) are still observed.
type Watcher struct {
	mu       sync.Mutex
	path     string
	fsw      *fsnotify.Watcher
	handler  ReloadHandler
	debounce time.Duration
	timer    *time.Timer
	closed   bool
	done     chan struct{}
}

// NewWatcher starts watching path and delivers reloads to handler. The
// handler runs on the watcher's goroutine and must not block.
func NewWatcher(path string, debounce time.Duration, handler ReloadHandler) (*Watcher, error) {
	if path == "" {
		return nil, ErrNoPath
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultReloadDebounce
	}
	w := &Watcher{
		path:     abs,
		fsw:      fsw,
		handler:  handler,
		debounce: debounce,
		done:     make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

// Close stops watching. Pending debounced reloads are dropped.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrWatcherClosed
	}
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.mu.Unlock()

	err := w.fsw.Close()
	<-w.done
	return err
}

func (w *Watcher) loop() {
	defer close(w.done)
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.scheduleReload()
		case _, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
		}
	}
}

func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.reload)
}

func (w *Watcher) reload() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	handler := w.handler
	w.mu.Unlock()

	if handler == nil {
		return
	}
	s, err := Load(w.path)
	handler(s, err)
}
