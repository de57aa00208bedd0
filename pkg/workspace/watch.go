package workspace

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"

	"github.com/odvcencio/solls/internal/logger"
	"github.com/odvcencio/solls/pkg/scope"
)

// DefaultDebounce is used when Options.Debounce is not positive.
const DefaultDebounce = 250 * time.Millisecond

// Watch rebuilds the workspace whenever source files under Root or the
// include paths change, until ctx is done. onRebuild, when not nil, receives
// every new Program together with the paths that triggered it.
func (w *Workspace) Watch(ctx context.Context, onRebuild func(prog *scope.Program, changed []string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "create watcher")
	}
	defer watcher.Close()

	roots := w.opts.IncludePaths
	if w.opts.Root != "" {
		roots = append([]string{w.opts.Root}, roots...)
	}
	for _, root := range roots {
		if err := w.addWatchRecursive(watcher, root); err != nil {
			return err
		}
	}

	debounce := w.opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	timer := time.NewTimer(time.Hour)
	if !timer.Stop() {
		<-timer.C
	}
	pending := map[string]bool{}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			eventPath := filepath.Clean(event.Name)
			if event.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(eventPath); statErr == nil && info.IsDir() {
					_ = w.addWatchRecursive(watcher, eventPath)
					continue
				}
			}
			if !w.relevant(eventPath) {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if len(pending) == 0 {
				timer.Reset(debounce)
			}
			pending[eventPath] = true
		case <-timer.C:
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			sort.Strings(changed)
			pending = map[string]bool{}

			prog, err := w.Rebuild(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				logger.Error("rebuild failed", "err", err)
				continue
			}
			if onRebuild != nil {
				onRebuild(prog, changed)
			}
		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return errors.Wrap(watchErr, "watch")
		}
	}
}

func (w *Workspace) addWatchRecursive(watcher *fsnotify.Watcher, root string) error {
	root = filepath.Clean(root)
	err := filepath.WalkDir(root, func(p string, entry os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !entry.IsDir() {
			return nil
		}
		if p != root && w.skipDir(p) {
			return filepath.SkipDir
		}
		return watcher.Add(p)
	})
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return errors.Wrapf(err, "watch %s", root)
}

func (w *Workspace) skipDir(p string) bool {
	if strings.HasPrefix(filepath.Base(p), ".") {
		return true
	}
	rel, ok := w.relative(p)
	return ok && w.ignore.Match(rel, true)
}

// relevant reports whether an event on p can change the next Program.
func (w *Workspace) relevant(p string) bool {
	base := filepath.Base(p)
	if base == RemappingsFile {
		return true
	}
	if !strings.HasSuffix(base, Extension) || strings.HasPrefix(base, ".#") {
		return false
	}
	if rel, ok := w.relative(p); ok {
		return !w.ignore.Excludes(rel)
	}
	return true
}

func (w *Workspace) relative(p string) (string, bool) {
	if w.opts.Root == "" {
		return "", false
	}
	rel, err := filepath.Rel(w.opts.Root, p)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", false
	}
	return filepath.ToSlash(rel), true
}
