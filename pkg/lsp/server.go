// Package lsp serves go-to-definition for Solidity over the Language Server
// Protocol.
package lsp

import (
	"context"

	protocol "github.com/tliron/glsp/protocol_3_16"
	glspServer "github.com/tliron/glsp/server"

	"github.com/odvcencio/solls/internal/config"
)

// Name identifies the server to clients.
const Name = "solls"

// Server wraps the JSON-RPC transport around a Handler.
type Server struct {
	server  *glspServer.Server
	handler *Handler
}

// NewServer creates a server for cfg. The returned server owns the handler's
// background work and stops it when ctx is done.
func NewServer(ctx context.Context, cfg *config.Config, version string) *Server {
	handler := NewHandler(ctx, cfg, version)
	glspHandler := protocol.Handler{
		Initialize:             handler.Initialize,
		Initialized:            handler.Initialized,
		Shutdown:               handler.Shutdown,
		Exit:                   handler.Exit,
		SetTrace:               handler.SetTrace,
		TextDocumentDidOpen:    handler.TextDocumentDidOpen,
		TextDocumentDidChange:  handler.TextDocumentDidChange,
		TextDocumentDidSave:    handler.TextDocumentDidSave,
		TextDocumentDidClose:   handler.TextDocumentDidClose,
		TextDocumentDefinition: handler.TextDocumentDefinition,
	}
	return &Server{
		server:  glspServer.NewServer(&glspHandler, Name, false),
		handler: handler,
	}
}

// RunStdio serves one client over stdin and stdout.
func (s *Server) RunStdio() error {
	defer s.handler.Close()
	return s.server.RunStdio()
}

// RunTCP serves clients connecting to address.
func (s *Server) RunTCP(address string) error {
	defer s.handler.Close()
	return s.server.RunTCP(address)
}

func (s *Server) Handler() *Handler {
	return s.handler
}
