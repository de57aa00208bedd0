// Package ignore implements gitignore-style pattern matching for filtering
// the source files a workspace loads and watches.
package ignore

import (
	"bufio"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
)

// Files are the ignore files read from a workspace root, in order.
var Files = []string{".gitignore", ".sollsignore"}

// DefaultPatterns are applied before any ignore file.
var DefaultPatterns = []string{".git/", "node_modules/", "cache/", "out/", "artifacts/"}

type pattern struct {
	negated  bool
	dirOnly  bool
	anchored bool
	glob     string
}

// Matcher evaluates file paths against a set of gitignore-style patterns.
type Matcher struct {
	patterns []pattern
}

// Load reads patterns from a file, one per line.
func Load(file string) (*Matcher, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, errors.Wrapf(err, "open ignore file %s", file)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "read ignore file %s", file)
	}
	return ParsePatterns(lines), nil
}

// LoadRoot builds a Matcher from DefaultPatterns and the ignore Files present
// in root. Missing files are skipped.
func LoadRoot(root string) (*Matcher, error) {
	m := ParsePatterns(DefaultPatterns)
	for _, name := range Files {
		more, err := Load(filepath.Join(root, name))
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		m.patterns = append(m.patterns, more.patterns...)
	}
	return m, nil
}

// ParsePatterns builds a Matcher from raw pattern lines.
func ParsePatterns(lines []string) *Matcher {
	m := &Matcher{}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		var p pattern
		if strings.HasPrefix(line, "!") {
			p.negated = true
			line = line[1:]
		}
		if strings.HasSuffix(line, "/") {
			p.dirOnly = true
			line = strings.TrimSuffix(line, "/")
		}
		if strings.HasPrefix(line, "/") {
			p.anchored = true
			line = strings.TrimPrefix(line, "/")
		}
		if line == "" {
			continue
		}
		p.glob = line
		m.patterns = append(m.patterns, p)
	}
	return m
}

// Match reports whether path should be ignored. The path is relative to the
// workspace root; isDir tells whether it names a directory. The last
// matching pattern decides.
func (m *Matcher) Match(rel string, isDir bool) bool {
	if m == nil || len(m.patterns) == 0 {
		return false
	}

	rel = strings.TrimPrefix(filepath.ToSlash(rel), "./")
	ignored := false
	for _, p := range m.patterns {
		if p.dirOnly && !isDir {
			continue
		}
		if p.match(rel) {
			ignored = !p.negated
		}
	}
	return ignored
}

// Excludes reports whether rel or any of its parent directories is ignored.
func (m *Matcher) Excludes(rel string) bool {
	rel = strings.TrimPrefix(filepath.ToSlash(rel), "./")
	parts := strings.Split(rel, "/")
	for i := 1; i < len(parts); i++ {
		if m.Match(strings.Join(parts[:i], "/"), true) {
			return true
		}
	}
	return m.Match(rel, false)
}

// match applies one glob. Anchored patterns and patterns containing a slash
// match the whole path; others match any single path component.
func (p pattern) match(rel string) bool {
	if p.anchored || strings.Contains(p.glob, "/") {
		if strings.HasPrefix(p.glob, "**/") {
			return matchAnySuffix(strings.TrimPrefix(p.glob, "**/"), rel)
		}
		ok, _ := path.Match(p.glob, rel)
		return ok
	}
	for _, part := range strings.Split(rel, "/") {
		if ok, _ := path.Match(p.glob, part); ok {
			return true
		}
	}
	return false
}

func matchAnySuffix(glob, rel string) bool {
	parts := strings.Split(rel, "/")
	for i := range parts {
		if ok, _ := path.Match(glob, strings.Join(parts[i:], "/")); ok {
			return true
		}
	}
	return false
}
