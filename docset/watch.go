package docset

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is the quiet period a Watcher waits for after the last
// change before reporting.
const DefaultDebounce = 200 * time.Millisecond

// WatchOptions configures a Watcher.
type WatchOptions struct {
	Debounce time.Duration
	Logger   *zap.Logger
}

// Watcher reports changes to the template and candidate documents of a Dir.
type Watcher struct {
	dir      *Dir
	fsw      *fsnotify.Watcher
	debounce time.Duration
	log      *zap.Logger
	template string
	exts     []string
}

// NewWatcher starts watching d. The template's directory is watched too when it
// lies outside d.Dir. Changes are delivered by Run.
func NewWatcher(d *Dir, opt WatchOptions) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		dir:      d,
		fsw:      fsw,
		debounce: opt.Debounce,
		log:      opt.Logger,
		exts:     d.extensions(),
	}
	if w.debounce <= 0 {
		w.debounce = DefaultDebounce
	}
	if w.log == nil {
		w.log = zap.NewNop()
	}
	if d.Template != "" {
		w.template = absPath(d.Template)
	}

	if err := w.addTree(d.root()); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	if w.template != "" {
		tdir := filepath.Dir(w.template)
		if !containsDir(w.watched(), tdir) {
			if err := fsw.Add(tdir); err != nil {
				_ = fsw.Close()
				return nil, err
			}
		}
	}
	return w, nil
}

// Run blocks until ctx is done, calling fn with the sorted file paths changed
// since the previous call once no further change arrived for the debounce
// period. fn runs on the Run goroutine, so calls never overlap. Run closes the
// Watcher before returning.
func (w *Watcher) Run(ctx context.Context, fn func(ctx context.Context, changed []string)) error {
	defer w.fsw.Close()

	pending := map[string]struct{}{}
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.handle(ev) {
				continue
			}
			w.log.Debug("change detected", zap.String("path", ev.Name), zap.String("op", ev.Op.String()))
			pending[ev.Name] = struct{}{}
			timer.Reset(w.debounce)
			fire = timer.C
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				w.log.Warn("watch event queue overflowed; running a full check")
				pending[w.dir.root()] = struct{}{}
				timer.Reset(w.debounce)
				fire = timer.C
				continue
			}
			w.log.Warn("watch error", zap.Error(err))
		case <-fire:
			fire = nil
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			sort.Strings(changed)
			clear(pending)
			fn(ctx, changed)
		}
	}
}

// handle reports whether ev affects the check. New directories are added to
// the watch list in recursive mode.
func (w *Watcher) handle(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return false
	}
	abs := absPath(ev.Name)
	if abs == w.template {
		return true
	}
	if ev.Has(fsnotify.Create) && w.dir.Recursive {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			if err := w.addTree(ev.Name); err != nil {
				w.log.Warn("cannot watch new directory", zap.String("path", ev.Name), zap.Error(err))
			}
			return true
		}
	}
	if !hasExt(ev.Name, w.exts) {
		return false
	}
	if w.dir.skipSet()[abs] {
		return false
	}
	rel, err := filepath.Rel(w.dir.root(), ev.Name)
	if err != nil {
		return false
	}
	return !w.dir.excluded(filepath.ToSlash(rel))
}

func (w *Watcher) addTree(root string) error {
	if !w.dir.Recursive {
		return w.fsw.Add(root)
	}
	return filepath.WalkDir(root, func(path string, de fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if de.IsDir() {
			return w.fsw.Add(path)
		}
		return nil
	})
}

func (w *Watcher) watched() []string {
	list := w.fsw.WatchList()
	for i, p := range list {
		list[i] = absPath(p)
	}
	return list
}

func containsDir(list []string, dir string) bool {
	for _, p := range list {
		if p == dir {
			return true
		}
	}
	return false
}
