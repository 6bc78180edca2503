// Package watch invalidates catalog caches when their directories change.
package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/vinayprograms/agentloop/internal/logging"
)

// DefaultDebounce coalesces bursts of events (editors write files in several steps).
const DefaultDebounce = 100 * time.Millisecond

type root struct {
	dir      string
	onChange func()
}

// Watcher calls a callback once per burst of changes under a directory tree.
type Watcher struct {
	fs       *fsnotify.Watcher
	logger   *logging.Logger
	debounce time.Duration

	mu    sync.Mutex
	roots []root
}

// New creates a watcher. logger may be nil.
func New(logger *logging.Logger, debounce time.Duration) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.Nop()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{fs: fw, logger: logger.WithComponent("watch"), debounce: debounce}, nil
}

// Add watches dir and every directory below it.
func (w *Watcher) Add(dir string, onChange func()) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	if err := w.addTree(abs); err != nil {
		return err
	}
	w.mu.Lock()
	w.roots = append(w.roots, root{dir: abs, onChange: onChange})
	w.mu.Unlock()
	return nil
}

func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.fs.Add(path)
		}
		return nil
	})
}

// rootsFor returns the roots containing path.
func (w *Watcher) rootsFor(path string) []root {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []root
	for _, r := range w.roots {
		if path == r.dir || strings.HasPrefix(path, r.dir+string(filepath.Separator)) {
			out = append(out, r)
		}
	}
	return out
}

// Run dispatches change callbacks until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) {
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	pending := make(map[string]root)

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := w.addTree(ev.Name); err != nil {
						w.logger.Warn("failed to watch new directory", map[string]interface{}{"dir": ev.Name, "error": err.Error()})
					}
				}
			}
			for _, r := range w.rootsFor(ev.Name) {
				pending[r.dir] = r
			}
			if len(pending) > 0 {
				timer.Reset(w.debounce)
			}

		case <-timer.C:
			for dir, r := range pending {
				w.logger.Debug("catalog changed", map[string]interface{}{"dir": dir})
				r.onChange()
			}
			pending = make(map[string]root)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", map[string]interface{}{"error": err.Error()})
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fs.Close()
}
