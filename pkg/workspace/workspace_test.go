package workspace

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odvcencio/solls/pkg/definition"
	"github.com/odvcencio/solls/pkg/model"
	"github.com/odvcencio/solls/pkg/scope"
)

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
}

func unitNames(prog *scope.Program) []string {
	out := make([]string, 0, len(prog.Files))
	for _, f := range prog.Files {
		out = append(out, f.Path)
	}
	return out
}

func TestRebuildLoadsSources(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"src/Token.sol":        `import "./Math.sol"; contract Token { function f(uint a) public { Math.max(a, 1); } }`,
		"src/Math.sol":         `library Math { function max(uint a, uint b) internal pure returns (uint) { return a > b ? a : b; } }`,
		"src/Broken.sol":       `contract {`,
		"node_modules/x/X.sol": `contract X {}`,
		"README.md":            "# project",
	})

	w, err := New(Options{Root: root})
	require.NoError(t, err)
	assert.Nil(t, w.Program())

	prog, err := w.Rebuild(context.Background())
	require.NoError(t, err)
	assert.Same(t, prog, w.Program())
	assert.ElementsMatch(t, []string{"src/Math.sol", "src/Token.sol"}, unitNames(prog))

	token := prog.FileByPath("src/Token.sol")
	require.NotNil(t, token)
	assert.Equal(t, PathToURI(filepath.Join(root, "src", "Token.sol")), token.URI)
	assert.NotNil(t, prog.ImportTarget(token.Imports()[0]))
}

func TestRebuildAppliesRemappingsAndIncludePaths(t *testing.T) {
	root := t.TempDir()
	deps := t.TempDir()
	writeFiles(t, root, map[string]string{
		"remappings.txt":                    "@oz/=lib/openzeppelin/contracts/\n",
		"lib/openzeppelin/contracts/Own.sol": `contract Ownable {}`,
		"src/App.sol": `import "@oz/Own.sol";
import "solmate/Auth.sol";
contract App is Ownable, Auth {}`,
	})
	writeFiles(t, deps, map[string]string{
		"solmate/Auth.sol": `abstract contract Auth {}`,
	})

	w, err := New(Options{Root: root, IncludePaths: []string{deps}})
	require.NoError(t, err)
	prog, err := w.Rebuild(context.Background())
	require.NoError(t, err)
	require.Empty(t, prog.Problems)

	app := prog.FileByPath("src/App.sol")
	require.NotNil(t, app)
	imports := app.Imports()
	require.Len(t, imports, 2)
	assert.Equal(t, "lib/openzeppelin/contracts/Own.sol", prog.ImportTarget(imports[0]).Path)
	assert.Equal(t, "solmate/Auth.sol", prog.ImportTarget(imports[1]).Path)

	app0 := prog.FileScope(app).Lookup("App")[0].Scope
	assert.Len(t, app0.Linearized, 3)
}

func TestRebuildKeepsFilesWithZeroArgumentCalls(t *testing.T) {
	root := t.TempDir()
	src := `contract A { function f() public { g(); } function g() public {} }`
	writeFiles(t, root, map[string]string{"A.sol": src})
	w, err := New(Options{Root: root})
	require.NoError(t, err)

	prog, err := w.Rebuild(context.Background())
	require.NoError(t, err)
	require.NotNil(t, prog.FileByPath("A.sol"))

	uri := PathToURI(filepath.Join(root, "A.sol"))
	locs, err := definition.Locate(prog, uri, model.Position{Line: 0, Character: strings.Index(src, "g()")})
	require.NoError(t, err)
	require.Len(t, locs, 1)
	assert.Equal(t, strings.Index(src, "g() public"), int(locs[0].Range.Start.Character))
}

func TestOverlaysWinOverDisk(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"A.sol": `contract A { function onDisk() public {} }`,
	})
	w, err := New(Options{Root: root})
	require.NoError(t, err)

	uri := PathToURI(filepath.Join(root, "A.sol"))
	require.NoError(t, w.SetOverlay(uri, `contract A { function inEditor() public {} }`))
	unsaved := PathToURI(filepath.Join(root, "New.sol"))
	require.NoError(t, w.SetOverlay(unsaved, `import "./A.sol"; contract B is A {}`))

	prog, err := w.Rebuild(context.Background())
	require.NoError(t, err)
	a := prog.FileScope(prog.FileByPath("A.sol")).Lookup("A")[0].Scope
	assert.NotEmpty(t, a.Lookup("inEditor"))
	assert.Empty(t, a.Lookup("onDisk"))
	require.NotNil(t, prog.FileByPath("New.sol"))

	require.NoError(t, w.DropOverlay(uri))
	require.NoError(t, w.DropOverlay(unsaved))
	prog, err = w.Rebuild(context.Background())
	require.NoError(t, err)
	a = prog.FileScope(prog.FileByPath("A.sol")).Lookup("A")[0].Scope
	assert.NotEmpty(t, a.Lookup("onDisk"))
	assert.Nil(t, prog.FileByPath("New.sol"))

	assert.True(t, errors.Is(w.SetOverlay("untitled:1", ""), ErrNotFileURI))
}

func TestSnapshotsAreReplacedNotMutated(t *testing.T) {
	root := t.TempDir()
	before := `contract A { uint x; function f() public { x; } }`
	after := `contract A { function f() public { x; } }`
	writeFiles(t, root, map[string]string{"A.sol": before})
	w, err := New(Options{Root: root})
	require.NoError(t, err)
	first, err := w.Rebuild(context.Background())
	require.NoError(t, err)

	uri := PathToURI(filepath.Join(root, "A.sol"))
	require.NoError(t, w.SetOverlay(uri, after))
	second, err := w.Rebuild(context.Background())
	require.NoError(t, err)
	assert.NotSame(t, first, second)

	// A request that started on the first snapshot still resolves x.
	use := model.Position{Line: 0, Character: strings.Index(before, "{ x;") + 2}
	locs, err := definition.Locate(first, uri, use)
	require.NoError(t, err)
	assert.Len(t, locs, 1)

	use = model.Position{Line: 0, Character: strings.Index(after, "{ x;") + 2}
	_, err = definition.Locate(second, uri, use)
	assert.True(t, errors.Is(err, model.ErrUnresolved))
}

func TestWatchRebuildsOnChange(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"A.sol": `contract A {}`})
	w, err := New(Options{Root: root, Debounce: 20 * time.Millisecond})
	require.NoError(t, err)
	_, err = w.Rebuild(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	var rebuilds atomic.Int32
	go func() {
		done <- w.Watch(ctx, func(*scope.Program, []string) { rebuilds.Add(1) })
	}()

	b := filepath.Join(root, "B.sol")
	require.Eventually(t, func() bool {
		_ = os.WriteFile(b, []byte(`contract B {}`), 0o644)
		return w.Program().FileByPath("B.sol") != nil && rebuilds.Load() > 0
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestURIConversions(t *testing.T) {
	p, err := URIToPath("file:///tmp/my%20project/A.sol")
	require.NoError(t, err)
	assert.Equal(t, filepath.FromSlash("/tmp/my project/A.sol"), p)

	assert.Equal(t, "file:///tmp/my%20project/A.sol", PathToURI("/tmp/my project/A.sol"))
	assert.Equal(t, "file:///tmp/a@b/A.sol", CanonicalURI("file:///tmp/a%40b/A.sol"))

	_, err = URIToPath("https://example.com/A.sol")
	assert.True(t, errors.Is(err, ErrNotFileURI))
}
