// Package definition answers "go to definition" requests: it locates the
// reference under the cursor, resolves it and reports where the declarations
// live.
package definition

import (
	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/odvcencio/solls/internal/logger"
	"github.com/odvcencio/solls/pkg/locate"
	"github.com/odvcencio/solls/pkg/model"
	"github.com/odvcencio/solls/pkg/scope"
	"github.com/odvcencio/solls/pkg/syntax"
)

// ErrUnknownDocument is returned for URIs that are not part of the program.
var ErrUnknownDocument = errors.New("unknown document")

// Snapshots supplies the program a request runs against.
type Snapshots interface {
	Program() *scope.Program
}

// Service is the definition request facade.
type Service struct {
	snaps Snapshots
}

func NewService(snaps Snapshots) *Service {
	return &Service{snaps: snaps}
}

// Definition returns the locations of the declarations the name at pos in
// the document uri refers to. Failures of any kind yield an empty list.
func (s *Service) Definition(uri protocol.DocumentUri, pos protocol.Position) []protocol.Location {
	prog := s.snaps.Program()
	locs, err := Locate(prog, uri, model.Position{Line: int(pos.Line), Character: int(pos.Character)})
	if err != nil {
		if errors.Is(err, model.ErrMalformedProgram) {
			logger.Warn("definition failed", "uri", uri, "line", pos.Line, "character", pos.Character, "err", err)
		} else {
			logger.Debug("no definition", "uri", uri, "line", pos.Line, "character", pos.Character, "err", err)
		}
		return []protocol.Location{}
	}
	return locs
}

// Locate runs one definition request against prog.
func Locate(prog *scope.Program, uri string, pos model.Position) ([]protocol.Location, error) {
	if prog == nil {
		return nil, errors.Wrapf(ErrUnknownDocument, "%s: no program loaded", uri)
	}
	f := prog.FileByURI(uri)
	if f == nil {
		return nil, errors.Wrapf(ErrUnknownDocument, "%s", uri)
	}
	ref, from, err := locate.FindReference(prog, f.ID, pos)
	if err != nil {
		return nil, err
	}
	nodes, err := prog.Resolve(ref, from)
	if err != nil {
		return nil, err
	}
	return Locations(prog, nodes), nil
}

// Locations maps declaration nodes to protocol locations. Named
// declarations report their name; source units report the start of the file.
func Locations(prog *scope.Program, nodes []*syntax.Node) []protocol.Location {
	out := lo.FilterMap(nodes, func(n *syntax.Node, _ int) (protocol.Location, bool) {
		f := prog.FileOf(n)
		if f == nil {
			return protocol.Location{}, false
		}
		var r model.Range
		switch {
		case n.Kind == syntax.KindSourceUnit:
		case n.Name != "" && !n.NameSpan.IsZero():
			r = f.Lines.Range(n.NameSpan)
		default:
			r = f.Lines.Range(n.Span)
		}
		return protocol.Location{URI: f.URI, Range: toProtocol(r)}, true
	})
	if out == nil {
		out = []protocol.Location{}
	}
	return out
}

func toProtocol(r model.Range) protocol.Range {
	return protocol.Range{
		Start: protocol.Position{Line: protocol.UInteger(r.Start.Line), Character: protocol.UInteger(r.Start.Character)},
		End:   protocol.Position{Line: protocol.UInteger(r.End.Line), Character: protocol.UInteger(r.End.Character)},
	}
}
