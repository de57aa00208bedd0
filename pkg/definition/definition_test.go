package definition

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/odvcencio/solls/internal/srctest"
	"github.com/odvcencio/solls/pkg/model"
	"github.com/odvcencio/solls/pkg/scope"
	"github.com/odvcencio/solls/pkg/syntax"
)

const (
	mainURI = "file:///project/goto_definition.sol"
	libURI  = "file:///project/lib.sol"
)

type fixedProgram struct{ prog *scope.Program }

func (f fixedProgram) Program() *scope.Program { return f.prog }

type fixture struct {
	svc   *Service
	prog  *scope.Program
	files map[string]*syntax.File
}

func loadFixture(t *testing.T) *fixture {
	t.Helper()
	fx := &fixture{files: make(map[string]*syntax.File)}
	var files []*syntax.File
	for i, name := range []string{"goto_definition.sol", "lib.sol"} {
		src, err := os.ReadFile(filepath.Join("testdata", name))
		require.NoError(t, err)
		f, err := syntax.Parse(model.FileID(i), name, src)
		require.NoError(t, err, name)
		f.URI = "file:///project/" + name
		fx.files[name] = f
		files = append(files, f)
	}
	prog, err := scope.Build(files, scope.RelativeImports)
	require.NoError(t, err)
	require.Empty(t, prog.Problems)
	fx.prog = prog
	fx.svc = NewService(fixedProgram{prog})
	return fx
}

// cursor returns the protocol position of sub inside the first occurrence
// of context in the named fixture file.
func (fx *fixture) cursor(t *testing.T, name, context, sub string) protocol.Position {
	t.Helper()
	f := fx.files[name]
	i := strings.Index(string(f.Src), context)
	require.GreaterOrEqual(t, i, 0, "context %q not in %s", context, name)
	j := srctest.WordIndex(context, sub)
	require.GreaterOrEqual(t, j, 0)
	p := f.Lines.Position(i + j)
	return protocol.Position{Line: protocol.UInteger(p.Line), Character: protocol.UInteger(p.Character)}
}

// location returns the expected location of a declaration name.
func (fx *fixture) location(t *testing.T, name, context, sub string) protocol.Location {
	t.Helper()
	start := fx.cursor(t, name, context, sub)
	end := start
	end.Character += protocol.UInteger(len(sub))
	return protocol.Location{URI: fx.files[name].URI, Range: protocol.Range{Start: start, End: end}}
}

func pos(line, char int) protocol.Position {
	return protocol.Position{Line: protocol.UInteger(line), Character: protocol.UInteger(char)}
}

func TestDefinitionImportDirective(t *testing.T) {
	fx := loadFixture(t)
	got := fx.svc.Definition(mainURI, pos(0, 3))
	want := []protocol.Location{{URI: libURI, Range: protocol.Range{Start: pos(0, 0), End: pos(0, 0)}}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("import directive (-want +got):\n%s", diff)
	}
}

func TestDefinitionScenarios(t *testing.T) {
	fx := loadFixture(t)

	tests := []struct {
		name    string
		context string
		sub     string
		want    func(t *testing.T) protocol.Location
	}{
		{
			name:    "static dispatch through interface",
			context: "obj.f(1)",
			sub:     "f",
			want: func(t *testing.T) protocol.Location {
				return fx.location(t, "goto_definition.sol", "function f(uint x) external", "f")
			},
		},
		{
			name:    "using for wildcard on variable",
			context: "i.add(5)",
			sub:     "add",
			want: func(t *testing.T) protocol.Location {
				return fx.location(t, "goto_definition.sol", "function add(int self", "add")
			},
		},
		{
			name:    "using for wildcard on literal",
			context: "14.add(4)",
			sub:     "add",
			want: func(t *testing.T) protocol.Location {
				return fx.location(t, "goto_definition.sol", "function add(int self", "add")
			},
		},
		{
			name:    "library function across import",
			context: "Lib.add(n, 1)",
			sub:     "add",
			want: func(t *testing.T) protocol.Location {
				return fx.location(t, "lib.sol", "function add(uint a", "add")
			},
		},
		{
			name:    "library name across import",
			context: "Lib.add(n, 1)",
			sub:     "Lib",
			want: func(t *testing.T) protocol.Location {
				return fx.location(t, "lib.sol", "library Lib", "Lib")
			},
		},
		{
			name:    "enum member",
			context: "Color.Red",
			sub:     "Red",
			want: func(t *testing.T) protocol.Location {
				return fx.location(t, "lib.sol", "    Red", "Red")
			},
		},
		{
			name:    "enum type in parameter",
			context: "enums(Color c)",
			sub:     "Color",
			want: func(t *testing.T) protocol.Location {
				return fx.location(t, "lib.sol", "enum Color", "Color")
			},
		},
		{
			name:    "value type wrap",
			context: "Price.wrap(128)",
			sub:     "wrap",
			want: func(t *testing.T) protocol.Location {
				return fx.location(t, "goto_definition.sol", "type Price", "Price")
			},
		},
		{
			name:    "value type unwrap",
			context: "Price.unwrap(p)",
			sub:     "unwrap",
			want: func(t *testing.T) protocol.Location {
				return fx.location(t, "goto_definition.sol", "type Price", "Price")
			},
		},
		{
			name:    "local of value type",
			context: "Price.unwrap(p)",
			sub:     "p)",
			want: func(t *testing.T) protocol.Location {
				return fx.location(t, "goto_definition.sol", "Price p =", "p")
			},
		},
		{
			name:    "struct constructor",
			context: "RGBColor(v,",
			sub:     "RGBColor",
			want: func(t *testing.T) protocol.Location {
				return fx.location(t, "lib.sol", "struct RGBColor", "RGBColor")
			},
		},
		{
			name:    "struct field",
			context: "c.red",
			sub:     "red",
			want: func(t *testing.T) protocol.Location {
				return fx.location(t, "lib.sol", "uint8 red", "red")
			},
		},
		{
			name:    "revert error",
			context: "revert E(a, b)",
			sub:     "E",
			want: func(t *testing.T) protocol.Location {
				return fx.location(t, "lib.sol", "error E", "E")
			},
		},
		{
			name:    "base contract",
			context: "contract IA is I\n",
			sub:     "I\n",
			want: func(t *testing.T) protocol.Location {
				return fx.location(t, "goto_definition.sol", "interface I", "I")
			},
		},
		{
			name:    "declaration resolves to itself",
			context: "contract IB",
			sub:     "IB",
			want: func(t *testing.T) protocol.Location {
				return fx.location(t, "goto_definition.sol", "contract IB", "IB")
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fx.svc.Definition(mainURI, fx.cursor(t, "goto_definition.sol", tt.context, tt.sub))
			want := []protocol.Location{tt.want(t)}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("definition mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDefinitionIsIdempotentOnTargets(t *testing.T) {
	fx := loadFixture(t)
	first := fx.svc.Definition(mainURI, fx.cursor(t, "goto_definition.sol", "Lib.add(n, 1)", "add"))
	require.Len(t, first, 1)

	again := fx.svc.Definition(first[0].URI, first[0].Range.Start)
	assert.Equal(t, first, again)
}

func TestDefinitionFailuresAreEmpty(t *testing.T) {
	fx := loadFixture(t)

	tests := []struct {
		name string
		uri  string
		pos  protocol.Position
	}{
		{"unknown document", "file:///project/other.sol", pos(0, 0)},
		{"line out of range", mainURI, pos(1000, 0)},
		{"character out of range", mainURI, pos(0, 1000)},
		{"whitespace", mainURI, pos(1, 0)},
		{"keyword", mainURI, fx.cursor(t, "goto_definition.sol", "interface I", "interface")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fx.svc.Definition(tt.uri, tt.pos)
			require.NotNil(t, got)
			assert.Empty(t, got)
		})
	}

	svc := NewService(fixedProgram{})
	assert.Equal(t, []protocol.Location{}, svc.Definition(mainURI, pos(0, 0)))
}

func TestLocateReportsErrorKinds(t *testing.T) {
	fx := loadFixture(t)

	_, err := Locate(fx.prog, "file:///nowhere.sol", model.Position{})
	assert.True(t, errors.Is(err, ErrUnknownDocument))

	_, err = Locate(fx.prog, mainURI, model.Position{Line: 500})
	assert.True(t, errors.Is(err, model.ErrOutOfRange))

	_, err = Locate(fx.prog, mainURI, model.Position{Line: 1})
	assert.True(t, errors.Is(err, model.ErrUnresolved))
}

func TestDefinitionConcurrentRequests(t *testing.T) {
	fx := loadFixture(t)
	at := fx.cursor(t, "goto_definition.sol", "obj.f(1)", "f")
	want := fx.svc.Definition(mainURI, at)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, want, fx.svc.Definition(mainURI, at))
		}()
	}
	wg.Wait()
}
