// Package locate maps a cursor position to the reference under it and the
// lexical scope that encloses that reference.
package locate

import (
	"github.com/cockroachdb/errors"

	"github.com/odvcencio/solls/pkg/model"
	"github.com/odvcencio/solls/pkg/scope"
	"github.com/odvcencio/solls/pkg/syntax"
)

// FindReference returns the reference at pos in file id together with the
// innermost scope enclosing it. Positions outside the file fail with
// model.ErrOutOfRange; positions that do not sit on a name fail with
// model.ErrUnresolved.
func FindReference(prog *scope.Program, id model.FileID, pos model.Position) (scope.Reference, *scope.Scope, error) {
	f := prog.File(id)
	if f == nil {
		return scope.Reference{}, nil, errors.Wrapf(model.ErrOutOfRange, "file %d is not part of the program", id)
	}
	off, err := f.Lines.Offset(pos)
	if err != nil {
		return scope.Reference{}, nil, errors.Wrapf(err, "%s", f.Path)
	}

	for n := Descend(f.Root, off); n != nil; n = n.Parent {
		if kind, ok := referenceAt(n, off); ok {
			ref := scope.Reference{Kind: kind, Node: n}
			return ref, prog.ScopeAt(n), nil
		}
	}
	return scope.Reference{}, nil, errors.Wrapf(model.ErrUnresolved, "no name at %s:%d:%d", f.Path, pos.Line+1, pos.Character+1)
}

// Descend returns the smallest node under root whose span contains off. At
// each level the first child containing off wins, so a cursor on the
// boundary between two siblings picks the earlier one.
func Descend(root *syntax.Node, off int) *syntax.Node {
	n := root
outer:
	for {
		for _, c := range n.Children {
			if c != nil && c.Span.Contains(off) {
				n = c
				continue outer
			}
		}
		return n
	}
}

// referenceAt classifies n as the reference under off, if it is one.
func referenceAt(n *syntax.Node, off int) (scope.RefKind, bool) {
	switch n.Kind {
	case syntax.KindIdentifier:
		return scope.RefIdentifier, true
	case syntax.KindMemberAccess:
		return scope.RefMember, n.NameSpan.Contains(off)
	case syntax.KindPathSegment:
		return scope.RefPathSegment, true
	case syntax.KindImportSymbol:
		return scope.RefImportSymbol, true
	case syntax.KindImport:
		return scope.RefImport, true
	case syntax.KindNamedArg:
		return scope.RefNamedArgument, n.NameSpan.Contains(off)
	}
	if n.Kind.IsDeclaration() && n.Name != "" && n.NameSpan.Contains(off) {
		return scope.RefDeclaration, true
	}
	return 0, false
}
