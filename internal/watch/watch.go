// Package watch regenerates documentation when a local repository changes.
package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dusk-indust/repodoc/internal/config"
	"github.com/dusk-indust/repodoc/internal/metrics"
)

// DefaultDebounce is the quiet period before a batch of changes is flushed.
const DefaultDebounce = 500 * time.Millisecond

// Options configure a Watcher.
type Options struct {
	Debounce time.Duration
	// Policy decides which directories are watched and which files count
	// as changes. Nil uses config.DefaultIgnorePolicy().
	Policy *config.IgnorePolicy
	// Exclude lists absolute paths whose changes are ignored, typically the
	// documents the watcher's own callback writes.
	Exclude []string
	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

// Watcher observes a directory tree and reports debounced batches of changed
// paths.
type Watcher struct {
	root     string
	fsw      *fsnotify.Watcher
	opts     Options
	exclude  map[string]bool
	onChange func(paths []string)

	callbackMu sync.Mutex
	pendingMu  sync.Mutex
	pending    map[string]bool
	timer      *time.Timer
}

// New creates a Watcher for root. onChange is called with the sorted changed
// paths of each batch; calls never overlap.
func New(root string, opts Options, onChange func(paths []string)) (*Watcher, error) {
	if onChange == nil {
		return nil, os.ErrInvalid
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Policy == nil {
		opts.Policy = config.DefaultIgnorePolicy()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	exclude := make(map[string]bool, len(opts.Exclude))
	for _, p := range opts.Exclude {
		if a, err := filepath.Abs(p); err == nil {
			exclude[a] = true
		}
	}

	return &Watcher{
		root:     abs,
		fsw:      fsw,
		opts:     opts,
		exclude:  exclude,
		onChange: onChange,
		pending:  make(map[string]bool),
	}, nil
}

// Run watches until ctx is done. The initial directory walk happens before
// Run starts consuming events.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.watchRecursive(w.root); err != nil {
		return err
	}
	w.opts.Logger.Info("watching for changes", "root", w.root, "debounce", w.opts.Debounce)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.opts.Metrics.ObserveWatchEvent()
			w.handle(event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.opts.Logger.Error("watcher error", "error", err)
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if w.exclude[event.Name] || w.ignoredPath(event.Name) {
		return
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.watchRecursive(event.Name); err != nil {
				w.opts.Logger.Warn("failed to watch new directory", "path", event.Name, "error", err)
			}
			// A directory moved in with content carries changes no event
			// will report.
			if entries, err := os.ReadDir(event.Name); err == nil && len(entries) > 0 {
				w.schedule(event.Name)
			}
			return
		}
	}

	if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
		event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		w.schedule(event.Name)
	}
}

// ignoredPath applies the policy to every component below the root.
func (w *Watcher) ignoredPath(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil || rel == "." {
		return false
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	for _, dir := range parts[:len(parts)-1] {
		if w.opts.Policy.Ignored(dir, true) {
			return true
		}
	}
	last := parts[len(parts)-1]
	info, err := os.Stat(path)
	if err != nil {
		// Removed or renamed away: the kind is unknown, so either rule counts.
		return w.opts.Policy.Ignored(last, true) || w.opts.Policy.Ignored(last, false)
	}
	return w.opts.Policy.Ignored(last, info.IsDir())
}

func (w *Watcher) watchRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			w.opts.Logger.Warn("cannot watch directory", "path", path, "error", err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && w.opts.Policy.Ignored(d.Name(), true) {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

func (w *Watcher) schedule(path string) {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()

	w.pending[path] = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.opts.Debounce, w.flush)
}

func (w *Watcher) flush() {
	w.pendingMu.Lock()
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	w.pending = make(map[string]bool)
	w.pendingMu.Unlock()

	if len(paths) == 0 {
		return
	}
	slices.Sort(paths)

	w.callbackMu.Lock()
	defer w.callbackMu.Unlock()
	w.onChange(paths)
}

// Close stops the watcher. A pending batch is dropped.
func (w *Watcher) Close() error {
	w.pendingMu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.pendingMu.Unlock()
	return w.fsw.Close()
}
