package workspace

import (
	"bufio"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"

	"github.com/odvcencio/solls/pkg/scope"
)

// ErrBadRemapping is returned for remappings not of the form
// [context:]prefix=target.
var ErrBadRemapping = errors.New("invalid remapping")

// RemappingsFile is read from the workspace root when present.
const RemappingsFile = "remappings.txt"

// Remapping rewrites import paths starting with Prefix to start with Target
// instead, for importing units whose name starts with Context.
type Remapping struct {
	Context string
	Prefix  string
	Target  string
}

func (r Remapping) String() string {
	if r.Context != "" {
		return r.Context + ":" + r.Prefix + "=" + r.Target
	}
	return r.Prefix + "=" + r.Target
}

// ParseRemapping parses "[context:]prefix=target".
func ParseRemapping(s string) (Remapping, error) {
	s = strings.TrimSpace(s)
	lhs, target, ok := strings.Cut(s, "=")
	if !ok || lhs == "" {
		return Remapping{}, errors.Wrapf(ErrBadRemapping, "%q", s)
	}
	var r Remapping
	if ctx, prefix, found := strings.Cut(lhs, ":"); found {
		r.Context, r.Prefix = ctx, prefix
	} else {
		r.Prefix = lhs
	}
	if r.Prefix == "" {
		return Remapping{}, errors.Wrapf(ErrBadRemapping, "%q has an empty prefix", s)
	}
	r.Target = target
	return r, nil
}

// ParseRemappings parses every non-empty entry.
func ParseRemappings(entries []string) ([]Remapping, error) {
	var out []Remapping
	for _, e := range entries {
		if strings.TrimSpace(e) == "" {
			continue
		}
		r, err := ParseRemapping(e)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// LoadRemappings reads remappings.txt from root. A missing file yields none.
func LoadRemappings(root string) ([]Remapping, error) {
	f, err := os.Open(filepath.Join(root, RemappingsFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "open remappings")
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" && !strings.HasPrefix(line, "#") {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "read remappings")
	}
	return ParseRemappings(lines)
}

// ImportResolver maps import paths to source unit names: relative imports
// are joined with the importing unit's directory, then the remapping with the
// longest matching context, and among those the longest prefix, applies.
// Later entries win ties.
func ImportResolver(remappings []Remapping) scope.ImportResolver {
	return func(from, importPath string) string {
		unit := scope.RelativeImports(from, importPath)
		best, ok := bestRemapping(remappings, from, unit)
		if !ok {
			return unit
		}
		return path.Clean(best.Target + strings.TrimPrefix(unit, best.Prefix))
	}
}

func bestRemapping(remappings []Remapping, from, unit string) (Remapping, bool) {
	applicable := lo.Filter(remappings, func(r Remapping, _ int) bool {
		return strings.HasPrefix(from, r.Context) && strings.HasPrefix(unit, r.Prefix)
	})
	if len(applicable) == 0 {
		return Remapping{}, false
	}
	return lo.Reduce(applicable[1:], func(best Remapping, r Remapping, _ int) Remapping {
		if len(r.Context) > len(best.Context) ||
			(len(r.Context) == len(best.Context) && len(r.Prefix) >= len(best.Prefix)) {
			return r
		}
		return best
	}, applicable[0]), true
}
