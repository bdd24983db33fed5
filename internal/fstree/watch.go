package fstree

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// DefaultDebounce is how long the watcher waits for events to settle.
const DefaultDebounce = 100 * time.Millisecond

// ChangeHandler receives batches of changed and removed paths, relative to
// the watched root and slash separated.
type ChangeHandler func(changed, removed []string)

// Watcher reports file changes below a directory.
type Watcher struct {
	fsw      *fsnotify.Watcher
	root     string
	filter   *filter
	debounce time.Duration
	log      *logrus.Entry
}

// WatchOption configures a Watcher.
type WatchOption func(*Watcher)

// WithDebounce sets the settle interval.
func WithDebounce(d time.Duration) WatchOption {
	return func(w *Watcher) { w.debounce = d }
}

// WithWatchLogger sets the logger.
func WithWatchLogger(log *logrus.Entry) WatchOption {
	return func(w *Watcher) { w.log = log }
}

// NewWatcher watches root and every folder below it that LoadDir would
// include, with the same exclude patterns.
func NewWatcher(root string, exclude []string, opts ...WatchOption) (*Watcher, error) {
	patterns, err := LoadIgnore(root)
	if err != nil {
		return nil, err
	}
	flt, err := newFilter(exclude, patterns)
	if err != nil {
		return nil, err
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		fsw:      fsw,
		root:     root,
		filter:   flt,
		debounce: DefaultDebounce,
		log:      logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.log = w.log.WithField("component", "watcher")

	if err := w.addTree(root); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if rel := w.rel(p); rel != "" && w.filter.skip(rel, true) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(p); err != nil {
			w.log.WithError(err).WithField("path", p).Warn("failed to watch directory")
		}
		return nil
	})
}

// rel returns p relative to the root, slash separated, or "" for the root.
func (w *Watcher) rel(p string) string {
	rel, err := filepath.Rel(w.root, p)
	if err != nil || rel == "." {
		return ""
	}
	return filepath.ToSlash(rel)
}

// Run delivers debounced changes to handler until ctx is done, then closes
// the watcher. The handler runs on Run's goroutine.
func (w *Watcher) Run(ctx context.Context, handler ChangeHandler) error {
	defer w.fsw.Close()

	var (
		pending = newBatch()
		timer   *time.Timer
		fire    <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.accept(ev) {
				continue
			}
			pending.add(w.rel(ev.Name), ev.Op)
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			changed, removed := pending.take()
			if len(changed) > 0 || len(removed) > 0 {
				w.log.WithFields(logrus.Fields{
					"changed": len(changed),
					"removed": len(removed),
				}).Debug("file changes")
				handler(changed, removed)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.WithError(err).Warn("watcher error")
		}
	}
}

// accept filters an event and starts watching newly created folders.
func (w *Watcher) accept(ev fsnotify.Event) bool {
	rel := w.rel(ev.Name)
	if rel == "" {
		return false
	}
	if ev.Has(fsnotify.Create) {
		if info, err := os.Lstat(ev.Name); err == nil && info.IsDir() {
			if !w.filter.skip(rel, true) {
				if err := w.addTree(ev.Name); err != nil {
					w.log.WithError(err).WithField("path", ev.Name).Warn("failed to watch new directory")
				}
			}
			return false
		}
	}
	return !w.filter.skip(rel, false)
}

// batch accumulates file operations per path between flushes.
type batch struct {
	ops map[string]fsnotify.Op
}

func newBatch() *batch { return &batch{ops: make(map[string]fsnotify.Op)} }

func (b *batch) add(p string, op fsnotify.Op) { b.ops[p] |= op }

// take returns the sorted changed and removed paths and empties the batch. A
// path that was removed or renamed at any point in the batch counts as
// removed.
func (b *batch) take() (changed, removed []string) {
	for p, op := range b.ops {
		switch {
		case op.Has(fsnotify.Remove) || op.Has(fsnotify.Rename):
			removed = append(removed, p)
		case op.Has(fsnotify.Write) || op.Has(fsnotify.Create):
			changed = append(changed, p)
		}
	}
	clear(b.ops)
	slices.Sort(changed)
	slices.Sort(removed)
	return changed, removed
}
