package lsp

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/odvcencio/solls/internal/config"
	"github.com/odvcencio/solls/internal/logger"
	"github.com/odvcencio/solls/pkg/definition"
	"github.com/odvcencio/solls/pkg/scope"
	"github.com/odvcencio/solls/pkg/workspace"
)

// Handler implements the LSP methods solls supports.
type Handler struct {
	ctx     context.Context
	version string
	docs    *Documents
	defs    *definition.Service

	mu        sync.Mutex
	cfg       *config.Config
	ws        *workspace.Workspace
	stopWatch context.CancelFunc

	// Editor changes mark the snapshot stale; it is rebuilt once the edits
	// settle, or right away when a definition is asked for.
	stale   bool
	pending *time.Timer
}

// NewHandler returns a handler that starts from cfg. The workspace is
// created on initialize, once the client has named the project root.
func NewHandler(ctx context.Context, cfg *config.Config, version string) *Handler {
	if cfg == nil {
		cfg = &config.Config{}
	}
	h := &Handler{
		ctx:     ctx,
		version: version,
		docs:    NewDocuments(),
		cfg:     cfg,
	}
	h.defs = definition.NewService(h)
	return h
}

// Program returns the current snapshot, or nil before initialization.
func (h *Handler) Program() *scope.Program {
	ws := h.workspace()
	if ws == nil {
		return nil
	}
	return ws.Program()
}

func (h *Handler) workspace() *workspace.Workspace {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.ws
}

func (h *Handler) Initialize(_ *glsp.Context, params *protocol.InitializeParams) (any, error) {
	root, err := rootOf(params)
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	cfg := *h.cfg
	h.mu.Unlock()
	cfg.IncludePaths = slices.Clone(cfg.IncludePaths)
	cfg.Remappings = slices.Clone(cfg.Remappings)
	if err := cfg.ApplyInitializationOptions(params.InitializationOptions); err != nil {
		return nil, err
	}
	if level, err := logger.ParseLevel(cfg.Log.Level); err == nil {
		logger.Default().SetLevel(level)
	} else {
		logger.Warn("ignoring log level", "err", err)
	}

	opts, err := cfg.WorkspaceOptions(root)
	if err != nil {
		return nil, err
	}
	ws, err := workspace.New(opts)
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	h.cfg = &cfg
	h.ws = ws
	h.mu.Unlock()
	logger.Info("initialized", "root", ws.Root(), "include_paths", len(opts.IncludePaths), "remappings", len(opts.Remappings))

	return protocol.InitializeResult{
		Capabilities: capabilities(),
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    Name,
			Version: &h.version,
		},
	}, nil
}

// rootOf picks the project directory from rootUri, rootPath or the first
// workspace folder, in that order. An empty root means the working
// directory.
func rootOf(params *protocol.InitializeParams) (string, error) {
	if params.RootURI != nil && *params.RootURI != "" {
		return workspace.URIToPath(*params.RootURI)
	}
	if params.RootPath != nil && *params.RootPath != "" {
		return *params.RootPath, nil
	}
	if len(params.WorkspaceFolders) > 0 {
		return workspace.URIToPath(params.WorkspaceFolders[0].URI)
	}
	return "", nil
}

func capabilities() protocol.ServerCapabilities {
	openClose := true
	change := protocol.TextDocumentSyncKindFull
	return protocol.ServerCapabilities{
		TextDocumentSync: protocol.TextDocumentSyncOptions{
			OpenClose: &openClose,
			Change:    &change,
			Save:      protocol.SaveOptions{IncludeText: &openClose},
		},
		DefinitionProvider: true,
	}
}

// Initialized loads the workspace and, when configured, starts watching it.
func (h *Handler) Initialized(_ *glsp.Context, _ *protocol.InitializedParams) error {
	ws := h.workspace()
	if ws == nil {
		return errors.New("initialized before initialize")
	}
	if _, err := ws.Rebuild(h.ctx); err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.cfg.Watch || h.stopWatch != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(h.ctx)
	h.stopWatch = cancel
	go func() {
		err := ws.Watch(ctx, func(prog *scope.Program, changed []string) {
			logger.Debug("files changed", "paths", changed, "files", len(prog.Files))
		})
		if err != nil {
			logger.Error("watcher stopped", "err", err)
		}
	}()
	return nil
}

func (h *Handler) Shutdown(_ *glsp.Context) error {
	h.Close()
	protocol.SetTraceValue(protocol.TraceValueOff)
	return nil
}

func (h *Handler) Exit(_ *glsp.Context) error {
	h.Close()
	return nil
}

// Close stops the file watcher and any pending rebuild.
func (h *Handler) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopWatch != nil {
		h.stopWatch()
		h.stopWatch = nil
	}
	if h.pending != nil {
		h.pending.Stop()
		h.pending = nil
	}
}

func (h *Handler) SetTrace(_ *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (h *Handler) TextDocumentDidOpen(_ *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	uri := workspace.CanonicalURI(params.TextDocument.URI)
	doc := h.docs.Open(uri, params.TextDocument.Version, params.TextDocument.Text)
	return h.overlay(uri, doc.Text)
}

func (h *Handler) TextDocumentDidChange(_ *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := workspace.CanonicalURI(params.TextDocument.URI)
	text, err := h.docs.Apply(uri, params.TextDocument.Version, params.ContentChanges)
	if err != nil {
		return err
	}
	return h.overlay(uri, text)
}

func (h *Handler) TextDocumentDidSave(_ *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	uri := workspace.CanonicalURI(params.TextDocument.URI)
	doc, ok := h.docs.Get(uri)
	if !ok {
		h.schedule()
		return nil
	}
	text := doc.Text
	if params.Text != nil {
		text = h.docs.Open(uri, doc.Version, *params.Text).Text
	}
	return h.overlay(uri, text)
}

func (h *Handler) TextDocumentDidClose(_ *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := workspace.CanonicalURI(params.TextDocument.URI)
	h.docs.Close(uri)
	ws := h.workspace()
	if ws == nil {
		return nil
	}
	if err := ws.DropOverlay(uri); err != nil {
		return err
	}
	h.schedule()
	return nil
}

// TextDocumentDefinition answers with every declaration the name under the
// cursor refers to. Unresolvable positions yield an empty list.
func (h *Handler) TextDocumentDefinition(_ *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	uri := workspace.CanonicalURI(params.TextDocument.URI)
	if err := h.flush(); err != nil {
		logger.Warn("rebuild before definition failed", "uri", uri, "err", err)
	}
	return h.defs.Definition(uri, params.Position), nil
}

func (h *Handler) overlay(uri protocol.DocumentUri, text string) error {
	ws := h.workspace()
	if ws == nil {
		return nil
	}
	if err := ws.SetOverlay(uri, text); err != nil {
		return err
	}
	h.schedule()
	return nil
}

// schedule marks the snapshot stale and restarts the debounce timer.
func (h *Handler) schedule() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.ws == nil {
		return
	}
	h.stale = true
	delay := h.cfg.Debounce
	if delay <= 0 {
		delay = workspace.DefaultDebounce
	}
	if h.pending == nil {
		h.pending = time.AfterFunc(delay, func() {
			if err := h.flush(); err != nil {
				logger.Warn("rebuild after edit failed", "err", err)
			}
		})
		return
	}
	h.pending.Reset(delay)
}

// flush rebuilds the workspace if editor changes arrived since the last
// rebuild.
func (h *Handler) flush() error {
	h.mu.Lock()
	ws, stale := h.ws, h.stale
	h.stale = false
	if h.pending != nil {
		h.pending.Stop()
	}
	h.mu.Unlock()
	if ws == nil || !stale {
		return nil
	}
	_, err := ws.Rebuild(h.ctx)
	if err != nil {
		h.mu.Lock()
		h.stale = true
		h.mu.Unlock()
	}
	return err
}
