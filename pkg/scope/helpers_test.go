package scope

import (
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/odvcencio/solls/internal/srctest"
	"github.com/odvcencio/solls/pkg/model"
	"github.com/odvcencio/solls/pkg/syntax"
)

type fixture struct {
	prog  *Program
	files map[string]*syntax.File
}

// buildProgram parses sources keyed by source unit name and builds their
// program with relative import resolution.
func buildProgram(t *testing.T, sources map[string]string) *fixture {
	t.Helper()
	paths := make([]string, 0, len(sources))
	for p := range sources {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	fx := &fixture{files: make(map[string]*syntax.File)}
	var files []*syntax.File
	for i, p := range paths {
		f, err := syntax.Parse(model.FileID(i), p, []byte(sources[p]))
		require.NoError(t, err, p)
		f.URI = "file:///" + p
		fx.files[p] = f
		files = append(files, f)
	}
	prog, err := Build(files, RelativeImports)
	require.NoError(t, err)
	fx.prog = prog
	return fx
}

// offset returns the offset of sub inside the first occurrence of context
// in the named file.
func (fx *fixture) offset(t *testing.T, path, context, sub string) int {
	t.Helper()
	src := string(fx.files[path].Src)
	at := strings.Index(src, context)
	require.GreaterOrEqual(t, at, 0, "context %q not found in %s", context, path)
	in := srctest.WordIndex(context, sub)
	require.GreaterOrEqual(t, in, 0, "%q not inside %q", sub, context)
	return at + in
}

// nodeAt returns the deepest node whose name starts at the given offset.
func (fx *fixture) nodeAt(t *testing.T, path string, off int) *syntax.Node {
	t.Helper()
	var found *syntax.Node
	syntax.Walk(fx.files[path].Root, func(n *syntax.Node) bool {
		if !n.Span.Contains(off) {
			return false
		}
		if n.Name != "" && n.NameSpan.Start == off {
			found = n
		}
		return true
	})
	require.NotNil(t, found, "no named node at %s:%d", path, off)
	return found
}

func refKindOf(n *syntax.Node) RefKind {
	switch n.Kind {
	case syntax.KindIdentifier:
		return RefIdentifier
	case syntax.KindMemberAccess:
		return RefMember
	case syntax.KindPathSegment:
		return RefPathSegment
	case syntax.KindImportSymbol:
		return RefImportSymbol
	case syntax.KindNamedArg:
		return RefNamedArgument
	}
	return RefDeclaration
}

// resolve resolves the name sub found inside context.
func (fx *fixture) resolve(t *testing.T, path, context, sub string) ([]*syntax.Node, error) {
	t.Helper()
	n := fx.nodeAt(t, path, fx.offset(t, path, context, sub))
	return fx.prog.Resolve(Reference{Kind: refKindOf(n), Node: n}, nil)
}

// mustResolve resolves and returns "<file>:<name>@<line>" for every result.
func (fx *fixture) mustResolve(t *testing.T, path, context, sub string) []string {
	t.Helper()
	nodes, err := fx.resolve(t, path, context, sub)
	require.NoError(t, err)
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		f := fx.prog.FileOf(n)
		require.NotNil(t, f)
		label := n.Name
		if n.Kind == syntax.KindSourceUnit {
			label = "<unit>"
		}
		out = append(out, fmt.Sprintf("%s:%s@%d", f.Path, label, f.Lines.Position(n.Span.Start).Line))
	}
	return out
}
