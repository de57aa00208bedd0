package lsp

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/odvcencio/solls/internal/config"
	"github.com/odvcencio/solls/pkg/workspace"
)

const (
	libText  = "library Lib {\n    function add(uint a, uint b) internal pure returns (uint) { return a + b; }\n}\n"
	mainText = `import "./Lib.sol";
contract Main {
    function f(uint n) public pure returns (uint) {
        return Lib.add(n, 1);
    }
}
`
)

type fixture struct {
	handler *Handler
	glsp    *glsp.Context
	libURI  string
	mainURI string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWith(t, &config.Config{Log: config.Log{Level: "info"}})
}

func newFixtureWith(t *testing.T, cfg *config.Config) *fixture {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "Lib.sol"), []byte(libText), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "Main.sol"), []byte(mainText), 0o644))

	h := NewHandler(context.Background(), cfg, "test")
	t.Cleanup(h.Close)
	fx := &fixture{
		handler: h,
		glsp:    &glsp.Context{},
		libURI:  workspace.PathToURI(filepath.Join(root, "Lib.sol")),
		mainURI: workspace.PathToURI(filepath.Join(root, "Main.sol")),
	}

	rootURI := workspace.PathToURI(root)
	_, err := h.Initialize(fx.glsp, &protocol.InitializeParams{RootURI: &rootURI})
	require.NoError(t, err)
	require.NoError(t, h.Initialized(fx.glsp, &protocol.InitializedParams{}))
	return fx
}

// definitionAtAdd asks for the definition of the add call in Main.sol.
func (fx *fixture) definitionAtAdd(t *testing.T) []protocol.Location {
	t.Helper()
	line := strings.Split(mainText, "\n")[3]
	result, err := fx.handler.TextDocumentDefinition(fx.glsp, &protocol.DefinitionParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: fx.mainURI},
			Position:     protocol.Position{Line: 3, Character: protocol.UInteger(strings.Index(line, "add") + 1)},
		},
	})
	require.NoError(t, err)
	locs, ok := result.([]protocol.Location)
	require.True(t, ok, "unexpected result %T", result)
	return locs
}

func addAt(uri string, line protocol.UInteger) protocol.Location {
	return protocol.Location{
		URI: uri,
		Range: protocol.Range{
			Start: protocol.Position{Line: line, Character: 13},
			End:   protocol.Position{Line: line, Character: 16},
		},
	}
}

func TestInitializeAdvertisesDefinition(t *testing.T) {
	h := NewHandler(context.Background(), nil, "1.2.3")
	t.Cleanup(h.Close)
	root := t.TempDir()

	result, err := h.Initialize(&glsp.Context{}, &protocol.InitializeParams{
		RootPath:              &root,
		InitializationOptions: map[string]any{"remappings": []any{"@oz/=lib/oz/"}, "logLevel": "info"},
	})
	require.NoError(t, err)

	res, ok := result.(protocol.InitializeResult)
	require.True(t, ok)
	assert.Equal(t, true, res.Capabilities.DefinitionProvider)
	sync, ok := res.Capabilities.TextDocumentSync.(protocol.TextDocumentSyncOptions)
	require.True(t, ok)
	assert.Equal(t, protocol.TextDocumentSyncKindFull, *sync.Change)
	require.NotNil(t, res.ServerInfo)
	assert.Equal(t, Name, res.ServerInfo.Name)
	assert.Equal(t, "1.2.3", *res.ServerInfo.Version)

	resolved, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)
	got, err := filepath.EvalSymlinks(h.workspace().Root())
	require.NoError(t, err)
	assert.Equal(t, resolved, got)
	assert.Equal(t, []string{"@oz/=lib/oz/"}, h.cfg.Remappings)
}

func TestInitializeRejectsBadOptions(t *testing.T) {
	h := NewHandler(context.Background(), nil, "test")
	root := t.TempDir()

	_, err := h.Initialize(&glsp.Context{}, &protocol.InitializeParams{
		RootPath:              &root,
		InitializationOptions: map[string]any{"remappings": []any{"no-equals-sign"}},
	})
	assert.Error(t, err)

	bad := "https://example.com/project"
	_, err = h.Initialize(&glsp.Context{}, &protocol.InitializeParams{RootURI: &bad})
	assert.Error(t, err)
}

func TestDefinitionAcrossFiles(t *testing.T) {
	fx := newFixture(t)
	assert.Equal(t, []protocol.Location{addAt(fx.libURI, 1)}, fx.definitionAtAdd(t))
}

func TestDefinitionBeforeInitialize(t *testing.T) {
	h := NewHandler(context.Background(), nil, "test")
	result, err := h.TextDocumentDefinition(&glsp.Context{}, &protocol.DefinitionParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: "file:///nowhere/Main.sol"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []protocol.Location{}, result)
	assert.Nil(t, h.Program())
}

func TestDocumentLifecycleFollowsEditorText(t *testing.T) {
	fx := newFixture(t)
	h := fx.handler

	edited := strings.Replace(libText, "{\n", "{\n\n", 1)
	require.NoError(t, h.TextDocumentDidOpen(fx.glsp, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: fx.libURI, LanguageID: "solidity", Version: 1, Text: edited},
	}))
	assert.Equal(t, 1, h.docs.Count())
	assert.Equal(t, []protocol.Location{addAt(fx.libURI, 2)}, fx.definitionAtAdd(t))

	// Delete the blank line again with a ranged change.
	require.NoError(t, h.TextDocumentDidChange(fx.glsp, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: fx.libURI},
			Version:                2,
		},
		ContentChanges: []any{protocol.TextDocumentContentChangeEvent{
			Range: &protocol.Range{
				Start: protocol.Position{Line: 1, Character: 0},
				End:   protocol.Position{Line: 2, Character: 0},
			},
			Text: "",
		}},
	}))
	assert.Equal(t, []protocol.Location{addAt(fx.libURI, 1)}, fx.definitionAtAdd(t))

	saved := "\n\n" + libText
	require.NoError(t, h.TextDocumentDidSave(fx.glsp, &protocol.DidSaveTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: fx.libURI},
		Text:         &saved,
	}))
	assert.Equal(t, []protocol.Location{addAt(fx.libURI, 3)}, fx.definitionAtAdd(t))

	require.NoError(t, h.TextDocumentDidClose(fx.glsp, &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: fx.libURI},
	}))
	assert.Equal(t, 0, h.docs.Count())
	assert.Equal(t, []protocol.Location{addAt(fx.libURI, 1)}, fx.definitionAtAdd(t))
}

// changeLib replaces the whole text of Lib.sol.
func (fx *fixture) changeLib(t *testing.T, version protocol.Integer, text string) {
	t.Helper()
	require.NoError(t, fx.handler.TextDocumentDidChange(fx.glsp, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: fx.libURI},
			Version:                version,
		},
		ContentChanges: []any{protocol.TextDocumentContentChangeEventWhole{Text: text}},
	}))
}

func TestEditsRebuildOnceBeforeDefinition(t *testing.T) {
	fx := newFixtureWith(t, &config.Config{Debounce: time.Hour})
	h := fx.handler
	ws := h.workspace()
	loaded := ws.Program()
	require.NotNil(t, loaded)

	require.NoError(t, h.TextDocumentDidOpen(fx.glsp, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: fx.libURI, LanguageID: "solidity", Version: 1, Text: libText},
	}))
	for i := 1; i <= 5; i++ {
		fx.changeLib(t, protocol.Integer(i+1), strings.Repeat("\n", i)+libText)
	}
	assert.Same(t, loaded, ws.Program(), "keystrokes must not rebuild synchronously")

	assert.Equal(t, []protocol.Location{addAt(fx.libURI, 6)}, fx.definitionAtAdd(t))
	rebuilt := ws.Program()
	assert.NotSame(t, loaded, rebuilt)

	// Nothing changed since, so the next request reuses the snapshot.
	assert.Equal(t, []protocol.Location{addAt(fx.libURI, 6)}, fx.definitionAtAdd(t))
	assert.Same(t, rebuilt, ws.Program())
}

func TestEditsRebuildAfterDebounce(t *testing.T) {
	fx := newFixtureWith(t, &config.Config{Debounce: 10 * time.Millisecond})
	h := fx.handler
	ws := h.workspace()
	loaded := ws.Program()

	require.NoError(t, h.TextDocumentDidOpen(fx.glsp, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: fx.libURI, LanguageID: "solidity", Version: 1, Text: "\n" + libText},
	}))
	require.Eventually(t, func() bool {
		return ws.Program() != loaded
	}, 5*time.Second, 10*time.Millisecond)

	h.mu.Lock()
	assert.False(t, h.stale)
	h.mu.Unlock()
}

func TestDidChangeUnknownDocument(t *testing.T) {
	fx := newFixture(t)
	err := fx.handler.TextDocumentDidChange(fx.glsp, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: fx.libURI},
		},
		ContentChanges: []any{protocol.TextDocumentContentChangeEventWhole{Text: ""}},
	})
	assert.ErrorIs(t, err, ErrDocumentNotOpen)
}

func TestInitializedStartsWatcher(t *testing.T) {
	root := t.TempDir()
	h := NewHandler(context.Background(), &config.Config{Watch: true}, "test")
	rootURI := workspace.PathToURI(root)
	_, err := h.Initialize(&glsp.Context{}, &protocol.InitializeParams{RootURI: &rootURI})
	require.NoError(t, err)
	require.NoError(t, h.Initialized(&glsp.Context{}, &protocol.InitializedParams{}))

	h.mu.Lock()
	assert.NotNil(t, h.stopWatch)
	h.mu.Unlock()

	require.NoError(t, h.Shutdown(&glsp.Context{}))
	h.mu.Lock()
	assert.Nil(t, h.stopWatch)
	h.mu.Unlock()
	require.NoError(t, h.Exit(&glsp.Context{}))
}

func TestInitializedRequiresInitialize(t *testing.T) {
	h := NewHandler(context.Background(), nil, "test")
	assert.Error(t, h.Initialized(&glsp.Context{}, &protocol.InitializedParams{}))
}

func TestNewServerWiresHandler(t *testing.T) {
	s := NewServer(context.Background(), nil, "test")
	require.NotNil(t, s.Handler())
	assert.Nil(t, s.Handler().Program())
}
