// Package watch re-runs a callback for documents whose content changes on
// disk.
package watch

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jlrickert/hashdoc/pkg/log"
)

const (
	DefaultDebounce = 120 * time.Millisecond
	tickInterval    = 50 * time.Millisecond
)

// Options configures a Watcher.
type Options struct {
	// Match selects the files that trigger OnChange.
	Match func(path string) bool

	// OnChange is called with a file whose content differs from the last
	// version seen. Errors are logged and watching continues.
	OnChange func(ctx context.Context, path string) error

	// Debounce is the quiet period after the last event before a file is
	// processed. Defaults to DefaultDebounce.
	Debounce time.Duration
}

// Watcher follows a directory tree. fsnotify is not recursive, so every
// directory is registered individually, including ones created later.
type Watcher struct {
	root string
	opts Options

	last    map[string][sha256.Size]byte
	pending map[string]time.Time
}

func New(root string, opts Options) (*Watcher, error) {
	if opts.OnChange == nil {
		return nil, fmt.Errorf("change callback is required")
	}
	if opts.Match == nil {
		opts.Match = func(string) bool { return true }
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	return &Watcher{
		root:    root,
		opts:    opts,
		last:    map[string][sha256.Size]byte{},
		pending: map[string]time.Time{},
	}, nil
}

// Run watches until ctx is done. Files present at start are fingerprinted
// but not processed; call the callback yourself for an initial pass.
func (w *Watcher) Run(ctx context.Context) error {
	lg := log.FromContext(ctx).With("root", w.root)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch %s: %w", w.root, err)
	}
	defer func() {
		_ = watcher.Close()
	}()

	if err := w.addTree(watcher, w.root); err != nil {
		return err
	}
	lg.Info("watching for changes")

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			now := time.Now()
			for path, at := range w.pending {
				if now.Sub(at) >= w.opts.Debounce {
					delete(w.pending, path)
					w.process(ctx, path)
				}
			}
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addTree(watcher, event.Name); err != nil {
						lg.Warn("unable to watch new directory", "dir", event.Name, "err", err)
					} else {
						lg.Debug("watching new directory", "dir", event.Name)
					}
					continue
				}
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if !w.opts.Match(event.Name) {
				continue
			}
			w.pending[event.Name] = time.Now()
		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			lg.Warn("file watcher error", "err", watchErr)
		}
	}
}

func (w *Watcher) addTree(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			if err := watcher.Add(path); err != nil {
				return fmt.Errorf("watch %s: %w", path, err)
			}
			return nil
		}
		if w.opts.Match(path) {
			if sum, ok := fingerprint(path); ok {
				w.last[path] = sum
			}
		}
		return nil
	})
}

// process calls OnChange when the content moved on from the last version
// seen. The version left behind by OnChange is recorded too, so a callback
// that rewrites its own file does not trigger itself.
func (w *Watcher) process(ctx context.Context, path string) {
	lg := log.FromContext(ctx).With("path", path)

	sum, ok := fingerprint(path)
	if !ok {
		delete(w.last, path)
		return
	}
	if prev, seen := w.last[path]; seen && prev == sum {
		return
	}
	w.last[path] = sum

	if err := w.opts.OnChange(ctx, path); err != nil {
		lg.Error("change handler failed", "err", err)
	}
	if after, ok := fingerprint(path); ok {
		w.last[path] = after
	}
}

func fingerprint(path string) ([sha256.Size]byte, bool) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return [sha256.Size]byte{}, false
	}
	return sha256.Sum256(raw), true
}
