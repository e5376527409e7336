// Package observer watches the working copy for writes made by anything
// other than the bot. The pipeline assumes exclusive ownership of the
// working tree; the observer surfaces violations of that assumption while
// the bot is idle. It is disarmed during runs so the bot's own edits do not
// trip it.
package observer

import (
	"context"
	"io/fs"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// skipDirs mirrors the candidate walker's exclusions
var skipDirs = map[string]bool{
	".git":         true,
	".hg":          true,
	".svn":         true,
	".idea":        true,
	"target":       true,
	"node_modules": true,
	"vendor":       true,
	"dist":         true,
	"build":        true,
}

// IntrusionCallback receives the paths touched by an external writer
type IntrusionCallback func(files []string)

// Watcher monitors a working copy for external modifications
type Watcher struct {
	watcher  *fsnotify.Watcher
	root     string
	callback IntrusionCallback
	debounce time.Duration

	mu      sync.Mutex
	armed   bool
	pending map[string]struct{}
	timer   *time.Timer

	cancel context.CancelFunc
}

// New creates a Watcher over the repository at root. The callback defaults
// to logging a warning.
func New(root string, callback IntrusionCallback) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if callback == nil {
		callback = func(files []string) {
			log.Printf("observer: working copy modified outside the bot: %v", files)
		}
	}

	w := &Watcher{
		watcher:  fsw,
		root:     root,
		callback: callback,
		debounce: 500 * time.Millisecond,
		pending:  make(map[string]struct{}),
	}

	if err := w.addTree(root); err != nil {
		fsw.Close()
		return nil, err
	}

	return w, nil
}

// addTree registers every directory under root, skipping artifact dirs
func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // Skip unreadable entries
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && skipDirs[d.Name()] {
			return filepath.SkipDir
		}
		return w.watcher.Add(path)
	})
}

// Start begins consuming filesystem events until ctx is cancelled
func (w *Watcher) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				w.handleEvent(event)
			case _, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				// Keep watching through transient errors
			}
		}
	}()
}

// Stop stops the watcher
func (w *Watcher) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.watcher.Close()
}

// Arm enables intrusion reporting (the bot is idle)
func (w *Watcher) Arm() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.armed = true
}

// Disarm suspends reporting and discards pending events (a run is starting)
func (w *Watcher) Disarm() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.armed = false
	w.pending = make(map[string]struct{})
	if w.timer != nil {
		w.timer.Stop()
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.armed {
		return
	}

	rel, err := filepath.Rel(w.root, event.Name)
	if err != nil {
		rel = event.Name
	}
	w.pending[filepath.ToSlash(rel)] = struct{}{}

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.flush)
}

func (w *Watcher) flush() {
	w.mu.Lock()
	if !w.armed || len(w.pending) == 0 {
		w.mu.Unlock()
		return
	}
	pending := w.pending
	w.pending = make(map[string]struct{})
	w.mu.Unlock()

	files := make([]string, 0, len(pending))
	for f := range pending {
		files = append(files, f)
	}
	w.callback(files)
}

// SetDebounce sets the debounce duration for batching events
func (w *Watcher) SetDebounce(d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.debounce = d
}
