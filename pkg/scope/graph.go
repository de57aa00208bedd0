// Package scope provides the scope graph of a Solidity program and the
// binding resolver that walks it. A scope graph represents lexical scoping
// structure: declarations introduced in each scope, parent/child nesting,
// and the extension edges (imports, inheritance linearizations and using-for
// attachments) that make names from other scopes visible.
package scope

import (
	"github.com/odvcencio/solls/pkg/model"
	"github.com/odvcencio/solls/pkg/syntax"
)

// ScopeKind classifies the type of lexical scope.
type ScopeKind int

const (
	ScopeFile ScopeKind = iota
	ScopeContract
	ScopeStruct
	ScopeEnum
	ScopeFunction
	ScopeBlock
	ScopeCatch
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeFile:
		return "file"
	case ScopeContract:
		return "contract"
	case ScopeStruct:
		return "struct"
	case ScopeEnum:
		return "enum"
	case ScopeFunction:
		return "function"
	case ScopeBlock:
		return "block"
	case ScopeCatch:
		return "catch"
	}
	return "unknown"
}

// SymbolKind classifies a declared name.
type SymbolKind string

const (
	SymContract  SymbolKind = "contract"
	SymInterface SymbolKind = "interface"
	SymLibrary   SymbolKind = "library"
	SymStruct    SymbolKind = "struct"
	SymEnum      SymbolKind = "enum"
	SymEnumValue SymbolKind = "enum value"
	SymValueType SymbolKind = "value type"
	SymEvent     SymbolKind = "event"
	SymError     SymbolKind = "error"
	SymFunction  SymbolKind = "function"
	SymModifier  SymbolKind = "modifier"
	SymVariable  SymbolKind = "variable"
	SymModule    SymbolKind = "module" // import "x" as M, import * as M from "x"
	SymAlias     SymbolKind = "alias"  // import {a as b} from "x"
)

// IsContractLike reports whether k names a contract, interface or library.
func (k SymbolKind) IsContractLike() bool {
	return k == SymContract || k == SymInterface || k == SymLibrary
}

// Symbol is a named entry of a scope.
type Symbol struct {
	Name       string
	Kind       SymbolKind
	Decl       *syntax.Node // declaring node; the import node for modules and aliases
	Owner      *Scope       // scope the symbol is declared in
	Scope      *Scope       // child scope the declaration opens, if any
	Visibility string

	// VisibleFrom is the offset from which a block local is in scope.
	VisibleFrom int

	// Target is the imported file scope of a module or alias; Original is
	// the name an alias refers to inside Target.
	Target   *Scope
	Original string
}

func (s *Symbol) private() bool {
	return s.Visibility == "private"
}

// Attachment is one resolved using-for directive.
type Attachment struct {
	Directive *syntax.Node
	Library   *Scope    // using L for T
	Functions []*Symbol // using {f, g} for T
	Wildcard  bool      // using L for *
	Target    *Type
	Global    bool
}

// Scope represents a lexical scope containing declarations and nested child
// scopes.
type Scope struct {
	Kind     ScopeKind
	Node     *syntax.Node
	File     *syntax.File
	Parent   *Scope
	Children []*Scope
	Defs     []*Symbol

	// Declaring is the symbol whose declaration opened this scope.
	Declaring *Symbol

	// Imports holds the file scopes made visible by plain imports, in
	// import-statement order. Only file scopes have them.
	Imports []*Scope

	// Linearized is the C3 linearization of a contract scope, most derived
	// (the scope itself) first.
	Linearized []*Scope

	Attachments []*Attachment

	names map[string][]*Symbol
}

// NewScope creates a new scope of the given kind and attaches it as a child
// of the parent scope. If parent is nil, the scope is a root.
func NewScope(kind ScopeKind, node *syntax.Node, parent *Scope) *Scope {
	s := &Scope{
		Kind:   kind,
		Node:   node,
		Parent: parent,
		names:  make(map[string][]*Symbol),
	}
	if parent != nil {
		s.File = parent.File
		parent.Children = append(parent.Children, s)
	}
	return s
}

// AddDef adds a symbol to this scope. Symbols sharing a name form an
// overload set kept in declaration order.
func (s *Scope) AddDef(sym *Symbol) {
	sym.Owner = s
	s.Defs = append(s.Defs, sym)
	s.names[sym.Name] = append(s.names[sym.Name], sym)
}

// Lookup returns the symbols named name declared directly in s.
func (s *Scope) Lookup(name string) []*Symbol {
	return s.names[name]
}

// Contract returns the innermost enclosing contract scope, or nil.
func (s *Scope) Contract() *Scope {
	for cur := s; cur != nil; cur = cur.Parent {
		if cur.Kind == ScopeContract {
			return cur
		}
	}
	return nil
}

// FileScope returns the root of s.
func (s *Scope) FileScope() *Scope {
	cur := s
	for cur.Parent != nil {
		cur = cur.Parent
	}
	return cur
}

// Program holds the files of one analysis pass and their scope graph. It is
// immutable once built.
type Program struct {
	Files []*syntax.File

	// Problems collects non-fatal build findings such as inheritance
	// cycles. Each wraps model.ErrMalformedProgram.
	Problems []error

	byID    map[model.FileID]*syntax.File
	byPath  map[string]*syntax.File
	byURI   map[string]*syntax.File
	byRoot  map[*syntax.Node]*syntax.File
	scopes  map[*syntax.Node]*Scope
	symbols map[*syntax.Node]*Symbol
	imports map[*syntax.Node]*syntax.File
	globals []*Attachment
}

func newProgram() *Program {
	return &Program{
		byID:    make(map[model.FileID]*syntax.File),
		byPath:  make(map[string]*syntax.File),
		byURI:   make(map[string]*syntax.File),
		byRoot:  make(map[*syntax.Node]*syntax.File),
		scopes:  make(map[*syntax.Node]*Scope),
		symbols: make(map[*syntax.Node]*Symbol),
		imports: make(map[*syntax.Node]*syntax.File),
	}
}

// File returns the file with the given id, or nil.
func (p *Program) File(id model.FileID) *syntax.File {
	return p.byID[id]
}

// FileByPath returns the file with the given source unit name, or nil.
func (p *Program) FileByPath(path string) *syntax.File {
	return p.byPath[path]
}

// FileByURI returns the file loaded from uri, or nil.
func (p *Program) FileByURI(uri string) *syntax.File {
	return p.byURI[uri]
}

// FileOf returns the file owning n.
func (p *Program) FileOf(n *syntax.Node) *syntax.File {
	if n == nil {
		return nil
	}
	return p.byRoot[n.Root()]
}

// FileScope returns the top-level scope of f.
func (p *Program) FileScope(f *syntax.File) *Scope {
	if f == nil {
		return nil
	}
	return p.scopes[f.Root]
}

// ScopeOf returns the scope opened by n, or nil.
func (p *Program) ScopeOf(n *syntax.Node) *Scope {
	return p.scopes[n]
}

// SymbolOf returns the symbol declared by n, or nil.
func (p *Program) SymbolOf(n *syntax.Node) *Symbol {
	return p.symbols[n]
}

// ImportTarget returns the file an import directive resolved to, or nil.
func (p *Program) ImportTarget(imp *syntax.Node) *syntax.File {
	return p.imports[imp]
}

// ScopeAt returns the innermost scope enclosing n. Names inside inheritance
// specifiers are looked up outside the contract they belong to.
func (p *Program) ScopeAt(n *syntax.Node) *Scope {
	inBase := false
	for cur := n; cur != nil; cur = cur.Parent {
		if cur.Kind == syntax.KindInheritance {
			inBase = true
			continue
		}
		if cur == n && n.Kind.IsDeclaration() {
			// A declaration's own scope does not enclose it.
			continue
		}
		if s, ok := p.scopes[cur]; ok {
			if inBase && cur.Kind == syntax.KindContract {
				return s.Parent
			}
			return s
		}
	}
	return nil
}
