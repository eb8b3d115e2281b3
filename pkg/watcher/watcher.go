package watcher

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher signals onChange when any of the watched source files is
// rewritten. Editors and the backend both replace files via rename, so
// the parent directories are watched and events filtered by name.
type Watcher struct {
	paths    map[string]bool
	fsw      *fsnotify.Watcher
	debounce *Debouncer
	onChange func()
	cancel   context.CancelFunc
}

// New creates a watcher over the given files. onChange runs on the
// watcher's goroutine after the debounce window; keep it cheap (send a
// message, don't rebuild inline).
func New(paths []string, window time.Duration, onChange func()) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	w := &Watcher{
		paths:    make(map[string]bool, len(paths)),
		fsw:      fsw,
		debounce: NewDebouncer(window),
		onChange: onChange,
	}
	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			fsw.Close()
			return nil, fmt.Errorf("resolve %s: %w", p, err)
		}
		w.paths[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}
	}
	return w, nil
}

// Start begins delivering change notifications until Stop is called.
func (w *Watcher) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	go w.loop(ctx)
}

// Stop shuts the watcher down and drops any pending notification.
func (w *Watcher) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.debounce.Cancel()
	w.fsw.Close()
}

func (w *Watcher) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil || !w.paths[abs] {
				continue
			}
			w.debounce.Trigger(w.onChange)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Printf("warning: watch error: %v", err)
		}
	}
}
