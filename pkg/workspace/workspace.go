// Package workspace loads the Solidity sources of a project, keeps editor
// overlays, and publishes immutable Program snapshots.
//
// Every rebuild parses the whole workspace into a fresh Program and swaps it
// in atomically. Requests that already hold the previous Program keep using
// it.
package workspace

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/odvcencio/solls/internal/logger"
	"github.com/odvcencio/solls/pkg/ignore"
	"github.com/odvcencio/solls/pkg/model"
	"github.com/odvcencio/solls/pkg/scope"
	"github.com/odvcencio/solls/pkg/syntax"
)

// Extension is the suffix of source files picked up from disk.
const Extension = ".sol"

// Options configures a Workspace.
type Options struct {
	// Root is the project directory. Source unit names are relative to it.
	Root string
	// IncludePaths are further directories searched for source units, after
	// Root.
	IncludePaths []string
	// Remappings are applied to import paths, after those of
	// remappings.txt.
	Remappings []Remapping
	// Debounce delays rebuilds after file system events.
	Debounce time.Duration
}

// Workspace owns the current Program snapshot.
type Workspace struct {
	opts   Options
	ignore *ignore.Matcher

	current atomic.Pointer[scope.Program]

	// build serializes rebuilds; mu guards overlays.
	build    sync.Mutex
	mu       sync.Mutex
	overlays map[string][]byte
}

// New prepares a workspace. Nothing is read until the first Rebuild.
func New(opts Options) (*Workspace, error) {
	w := &Workspace{opts: opts, overlays: make(map[string][]byte)}
	if opts.Root != "" {
		root, err := filepath.Abs(opts.Root)
		if err != nil {
			return nil, errors.Wrapf(err, "resolve root %s", opts.Root)
		}
		w.opts.Root = root
		if w.ignore, err = ignore.LoadRoot(root); err != nil {
			return nil, err
		}
	}
	w.opts.IncludePaths = lo.Map(opts.IncludePaths, func(p string, _ int) string {
		if !filepath.IsAbs(p) && w.opts.Root != "" {
			return filepath.Join(w.opts.Root, p)
		}
		return filepath.Clean(p)
	})
	return w, nil
}

// Root returns the absolute project directory.
func (w *Workspace) Root() string {
	return w.opts.Root
}

// Program returns the current snapshot, or nil before the first rebuild.
func (w *Workspace) Program() *scope.Program {
	return w.current.Load()
}

// SetOverlay records the editor contents of the document at uri. Overlays
// take precedence over disk contents.
func (w *Workspace) SetOverlay(uri, text string) error {
	p, err := URIToPath(uri)
	if err != nil {
		return err
	}
	w.mu.Lock()
	w.overlays[p] = []byte(text)
	w.mu.Unlock()
	return nil
}

// DropOverlay forgets the editor contents of uri.
func (w *Workspace) DropOverlay(uri string) error {
	p, err := URIToPath(uri)
	if err != nil {
		return err
	}
	w.mu.Lock()
	delete(w.overlays, p)
	w.mu.Unlock()
	return nil
}

// remappings returns those of remappings.txt followed by the configured
// ones.
func (w *Workspace) remappings() ([]Remapping, error) {
	if w.opts.Root == "" {
		return w.opts.Remappings, nil
	}
	fromFile, err := LoadRemappings(w.opts.Root)
	if err != nil {
		return nil, err
	}
	return append(fromFile, w.opts.Remappings...), nil
}

// source is one file to parse.
type source struct {
	unit string
	abs  string
	src  []byte
}

// Rebuild reads and parses all sources and publishes a new Program. Files
// that fail to parse are left out of it.
func (w *Workspace) Rebuild(ctx context.Context) (*scope.Program, error) {
	w.build.Lock()
	defer w.build.Unlock()

	start := time.Now()
	remappings, err := w.remappings()
	if err != nil {
		return nil, err
	}
	sources, err := w.collect()
	if err != nil {
		return nil, err
	}

	parsed := make([]*syntax.File, len(sources))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, s := range sources {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if s.src == nil {
				data, err := os.ReadFile(s.abs)
				if err != nil {
					return errors.Wrapf(err, "read %s", s.abs)
				}
				s.src = data
			}
			f, err := syntax.Parse(model.FileID(i), s.unit, s.src)
			if err != nil {
				logger.Warn("skipping unparseable file", "file", s.unit, "err", err)
				return nil
			}
			f.URI = PathToURI(s.abs)
			parsed[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	files := lo.Compact(parsed)
	prog, err := scope.Build(files, ImportResolver(remappings))
	if err != nil {
		return nil, errors.Wrap(err, "build scope graph")
	}
	for _, problem := range prog.Problems {
		logger.Warn("malformed program", "err", problem)
	}
	w.current.Store(prog)
	logger.Debug("workspace rebuilt", "files", len(files), "skipped", len(sources)-len(files), "took", time.Since(start))
	return prog, nil
}

// collect lists the sources of the next Program in unit-name order: disk
// files under Root, then under the include paths, then overlays for files
// that exist nowhere on disk. The first directory providing a unit name
// wins.
func (w *Workspace) collect() ([]*source, error) {
	w.mu.Lock()
	overlays := make(map[string][]byte, len(w.overlays))
	for p, text := range w.overlays {
		overlays[p] = text
	}
	w.mu.Unlock()

	byUnit := make(map[string]*source)
	byAbs := make(map[string]bool)
	add := func(unit, abs string) {
		if _, dup := byUnit[unit]; dup || byAbs[abs] {
			return
		}
		s := &source{unit: unit, abs: abs, src: overlays[abs]}
		byUnit[unit] = s
		byAbs[abs] = true
	}

	dirs := w.opts.IncludePaths
	if w.opts.Root != "" {
		dirs = append([]string{w.opts.Root}, dirs...)
	}
	for _, dir := range dirs {
		if err := w.walk(dir, add); err != nil {
			return nil, err
		}
	}
	for abs := range overlays {
		if !byAbs[abs] {
			add(w.unitName(abs), abs)
		}
	}

	out := lo.Values(byUnit)
	sort.Slice(out, func(i, j int) bool { return out[i].unit < out[j].unit })
	return out, nil
}

func (w *Workspace) walk(dir string, add func(unit, abs string)) error {
	err := filepath.WalkDir(dir, func(p string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if p == dir {
				return walkErr
			}
			logger.Debug("skipping unreadable path", "path", p, "err", walkErr)
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if entry.IsDir() {
			if p != dir && w.ignore.Match(rel, true) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(p, Extension) || w.ignore.Match(rel, false) {
			return nil
		}
		add(rel, p)
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) && dir != w.opts.Root {
		logger.Warn("include path does not exist", "path", dir)
		return nil
	}
	return errors.Wrapf(err, "walk %s", dir)
}

// unitName returns the source unit name of an absolute path: relative to
// Root or an include path when inside one, else the slash path itself.
func (w *Workspace) unitName(abs string) string {
	dirs := w.opts.IncludePaths
	if w.opts.Root != "" {
		dirs = append([]string{w.opts.Root}, dirs...)
	}
	for _, dir := range dirs {
		if rel, err := filepath.Rel(dir, abs); err == nil && !strings.HasPrefix(rel, "..") {
			return filepath.ToSlash(rel)
		}
	}
	return filepath.ToSlash(abs)
}
