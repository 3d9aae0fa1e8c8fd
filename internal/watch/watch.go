// Package watch re-validates mesh files when they change on disk.
package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Faultbox/meshlint/internal/validate"
)

// DefaultDebounce collapses the burst of events an editor produces on save.
const DefaultDebounce = 200 * time.Millisecond

// Watcher validates files under a set of roots each time they change.
type Watcher struct {
	v          *validate.Validator
	log        *zap.Logger
	extensions map[string]validate.Format
	Debounce   time.Duration
}

// New creates a Watcher that validates with v.
func New(v *validate.Validator, log *zap.Logger) *Watcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Watcher{
		v:          v,
		log:        log,
		extensions: v.Options().Extensions,
		Debounce:   DefaultDebounce,
	}
}

// Run watches roots until ctx is done, calling onReport for every changed
// file with a known extension. Roots may be directories, watched
// recursively, or single files. Run returns nil when ctx is cancelled.
func (w *Watcher) Run(ctx context.Context, roots []string, onReport func(validate.Report)) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	sc := newScope()
	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			return err
		}
		root = filepath.Clean(root)
		if info.IsDir() {
			if err := addTree(fw, root); err != nil {
				return err
			}
			sc.trees = append(sc.trees, root)
			continue
		}
		sc.files[root] = true
		if err := fw.Add(filepath.Dir(root)); err != nil {
			return err
		}
	}
	w.log.Info("watching", zap.Strings("roots", roots), zap.Strings("dirs", fw.WatchList()))

	pending := make(map[string]bool)
	timer := time.NewTimer(w.Debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if evt.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			path := filepath.Clean(evt.Name)

			if evt.Has(fsnotify.Create) {
				if info, err := os.Stat(path); err == nil && info.IsDir() {
					if !sc.inTree(path) {
						continue
					}
					if err := addTree(fw, path); err != nil {
						w.log.Warn("cannot watch new directory", zap.String("dir", path), zap.Error(err))
					}
					continue
				}
			}
			if !w.wanted(path, sc) {
				continue
			}
			w.log.Debug("file changed", zap.String("file", path), zap.Stringer("op", evt.Op))
			pending[path] = true
			timer.Reset(w.Debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", zap.Error(err))

		case <-timer.C:
			w.flush(ctx, pending, onReport)
		}
	}
}

func (w *Watcher) wanted(path string, sc *scope) bool {
	if !sc.files[path] && !sc.inTree(path) {
		return false
	}
	return validate.FormatFromPath(path, w.extensions) != validate.FormatUnknown
}

// scope is the set of paths Run reports on. A directory root covers
// everything below it; a file root covers only that file, even though its
// whole directory is watched.
type scope struct {
	trees []string
	files map[string]bool
}

func newScope() *scope {
	return &scope{files: make(map[string]bool)}
}

func (sc *scope) inTree(path string) bool {
	for _, dir := range sc.trees {
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			continue
		}
		if rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// flush validates pending files in path order and clears the set.
func (w *Watcher) flush(ctx context.Context, pending map[string]bool, onReport func(validate.Report)) {
	paths := make([]string, 0, len(pending))
	for p := range pending {
		paths = append(paths, p)
		delete(pending, p)
	}
	sort.Strings(paths)

	for _, p := range paths {
		// Deleted or renamed away before the debounce fired.
		if _, err := os.Stat(p); err != nil {
			continue
		}
		onReport(w.v.ValidateFile(ctx, p))
	}
}

// addTree watches dir and every directory below it.
func addTree(fw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return fw.Add(path)
		}
		return nil
	})
}
