package scope

import (
	"github.com/cockroachdb/errors"
	"github.com/samber/lo"

	"github.com/odvcencio/solls/pkg/model"
	"github.com/odvcencio/solls/pkg/syntax"
)

// maxDepth bounds the recursion of type derivation and path resolution.
const maxDepth = 256

// RefKind classifies the syntactic role of a reference.
type RefKind int

const (
	RefDeclaration   RefKind = iota // the name of a declaration
	RefImport                       // an import directive
	RefImportSymbol                 // a symbol of import {a as b} from "x"
	RefIdentifier                   // a plain identifier expression
	RefMember                       // the member name of a member access
	RefPathSegment                  // a segment of an identifier path
	RefNamedArgument                // the name of a named call argument
)

func (k RefKind) String() string {
	switch k {
	case RefDeclaration:
		return "declaration"
	case RefImport:
		return "import"
	case RefImportSymbol:
		return "import symbol"
	case RefIdentifier:
		return "identifier"
	case RefMember:
		return "member"
	case RefPathSegment:
		return "path segment"
	case RefNamedArgument:
		return "named argument"
	}
	return "unknown"
}

// Reference is a use of a name found at a cursor position.
type Reference struct {
	Kind RefKind
	Node *syntax.Node
}

// Resolve returns the declarations ref binds to, in declaration order. More
// than one node is returned only for overload sets. Source units stand for
// whole files. from is the innermost scope enclosing the reference; when nil
// it is derived from the node.
func (p *Program) Resolve(ref Reference, from *Scope) ([]*syntax.Node, error) {
	if ref.Node == nil {
		return nil, errors.Wrap(model.ErrUnresolved, "empty reference")
	}
	if from == nil {
		from = p.ScopeAt(ref.Node)
	}
	if from == nil {
		return nil, errors.Wrapf(model.ErrUnresolved, "%s outside of any scope", ref.Kind)
	}

	r := newResolver(p)
	var out []*syntax.Node
	switch ref.Kind {
	case RefDeclaration:
		out = []*syntax.Node{ref.Node}
	case RefImport:
		if f := p.imports[ref.Node]; f != nil {
			out = []*syntax.Node{f.Root}
		}
	case RefImportSymbol:
		if sym := p.symbols[ref.Node]; sym != nil {
			out = r.decls(r.expand([]*Symbol{sym}))
		}
	case RefIdentifier:
		out = r.identifier(ref.Node, from)
	case RefMember:
		out = r.member(ref.Node, from)
	case RefPathSegment:
		out = r.decls(r.resolvePath(ref.Node.Parent, from, ref.Node.Index()))
	case RefNamedArgument:
		out = r.namedArgument(ref.Node, from)
	}
	if r.err != nil {
		return nil, r.err
	}
	if len(out) == 0 {
		return nil, errors.Wrapf(model.ErrUnresolved, "%s %q", ref.Kind, ref.Node.Name)
	}
	return out, nil
}

// TypeOf returns the static type of expression e, or nil when it cannot be
// derived.
func (p *Program) TypeOf(e *syntax.Node) (*Type, error) {
	r := newResolver(p)
	t := r.typeOf(e, p.ScopeAt(e))
	return t, r.err
}

// resolver carries the state of one resolution: a depth guard and the
// aliases currently being expanded.
type resolver struct {
	p        *Program
	depth    int
	err      error
	aliasing map[*Symbol]bool
}

func newResolver(p *Program) *resolver {
	return &resolver{p: p, aliasing: make(map[*Symbol]bool)}
}

func (r *resolver) enter() bool {
	if r.err != nil {
		return false
	}
	r.depth++
	if r.depth > maxDepth {
		r.err = errors.Wrapf(model.ErrMalformedProgram, "resolution exceeded depth %d", maxDepth)
		return false
	}
	return true
}

func (r *resolver) leave() {
	r.depth--
}

// decls maps symbols to their declaring nodes. Modules map to the root of
// the imported file.
func (r *resolver) decls(syms []*Symbol) []*syntax.Node {
	out := make([]*syntax.Node, 0, len(syms))
	for _, s := range syms {
		switch {
		case s.Kind == SymModule && s.Target != nil:
			out = append(out, s.Target.Node)
		case s.Decl != nil:
			out = append(out, s.Decl)
		}
	}
	return lo.Uniq(out)
}

// expand replaces import aliases by the symbols they name. Alias cycles
// expand to nothing.
func (r *resolver) expand(syms []*Symbol) []*Symbol {
	if !lo.ContainsBy(syms, func(s *Symbol) bool { return s.Kind == SymAlias }) {
		return syms
	}
	var out []*Symbol
	for _, s := range syms {
		if s.Kind != SymAlias {
			out = append(out, s)
			continue
		}
		if r.aliasing[s] || s.Target == nil {
			continue
		}
		r.aliasing[s] = true
		out = append(out, r.expand(r.exported(s.Target, s.Original, make(map[*Scope]bool)))...)
		delete(r.aliasing, s)
	}
	return out
}

func visibleAt(syms []*Symbol, at int) []*Symbol {
	return lo.Filter(syms, func(s *Symbol, _ int) bool {
		return s.VisibleFrom == 0 || at >= s.VisibleFrom
	})
}

func nonPrivate(syms []*Symbol) []*Symbol {
	return lo.Filter(syms, func(s *Symbol, _ int) bool { return !s.private() })
}

// lookup finds name walking from the innermost scope outwards. The first
// scope with a match wins.
func (r *resolver) lookup(name string, from *Scope, at int) []*Symbol {
	for s := from; s != nil; s = s.Parent {
		if syms := r.inScope(s, name, at); len(syms) > 0 {
			return syms
		}
	}
	return nil
}

// inScope searches one scope: its own entries, then inherited members in
// linearization order, then its import edges.
func (r *resolver) inScope(s *Scope, name string, at int) []*Symbol {
	if own := visibleAt(s.Lookup(name), at); len(own) > 0 {
		return own
	}
	if len(s.Linearized) > 1 {
		for _, base := range s.Linearized[1:] {
			if inherited := nonPrivate(base.Lookup(name)); len(inherited) > 0 {
				return inherited
			}
		}
	}
	if len(s.Imports) > 0 {
		visited := map[*Scope]bool{s: true}
		for _, imp := range s.Imports {
			if syms := r.exported(imp, name, visited); len(syms) > 0 {
				return syms
			}
		}
	}
	return nil
}

// exported finds name among the top-level symbols of a file scope and the
// files it imports, depth first.
func (r *resolver) exported(fs *Scope, name string, visited map[*Scope]bool) []*Symbol {
	if fs == nil || visited[fs] {
		return nil
	}
	visited[fs] = true
	if own := fs.Lookup(name); len(own) > 0 {
		return own
	}
	for _, imp := range fs.Imports {
		if syms := r.exported(imp, name, visited); len(syms) > 0 {
			return syms
		}
	}
	return nil
}

// inContract finds name in a contract scope and its bases, never in its
// lexical parents.
func (r *resolver) inContract(cs *Scope, name string) []*Symbol {
	if cs == nil {
		return nil
	}
	if own := cs.Lookup(name); len(own) > 0 {
		return own
	}
	if len(cs.Linearized) > 1 {
		for _, base := range cs.Linearized[1:] {
			if inherited := nonPrivate(base.Lookup(name)); len(inherited) > 0 {
				return inherited
			}
		}
	}
	return nil
}

// qualified finds name strictly inside the scope sym stands for.
func (r *resolver) qualified(sym *Symbol, name string) []*Symbol {
	switch {
	case sym.Kind == SymModule:
		return r.exported(sym.Target, name, make(map[*Scope]bool))
	case sym.Kind.IsContractLike():
		return r.inContract(sym.Scope, name)
	case sym.Kind == SymEnum && sym.Scope != nil:
		return sym.Scope.Lookup(name)
	}
	return nil
}

// resolvePath resolves the segments of an identifier path up to and
// including index upto (the last one when upto is negative). A prefix that
// fails to resolve leaves the whole path unresolved.
func (r *resolver) resolvePath(path *syntax.Node, from *Scope, upto int) []*Symbol {
	if path == nil || len(path.Children) == 0 || !r.enter() {
		return nil
	}
	defer r.leave()

	segs := path.Children
	if upto < 0 || upto >= len(segs) {
		upto = len(segs) - 1
	}
	cur := r.expand(r.lookup(segs[0].Name, from, segs[0].Span.Start))
	for i := 1; i <= upto && len(cur) > 0; i++ {
		cur = r.expand(r.qualified(cur[0], segs[i].Name))
	}
	return cur
}

func (r *resolver) identifier(n *syntax.Node, from *Scope) []*syntax.Node {
	switch n.Name {
	case "this", "super":
		return nil
	}
	return r.decls(r.expand(r.lookup(n.Name, from, n.Span.Start)))
}

func (r *resolver) member(n *syntax.Node, from *Scope) []*syntax.Node {
	if len(n.Children) == 0 {
		return nil
	}
	t := r.typeOf(n.Children[0], from)
	if t == nil {
		return nil
	}
	if nodes := r.members(t, n.Name); len(nodes) > 0 {
		return nodes
	}
	return r.attached(t, n.Name, from)
}

// members resolves name as a member of a value or type of type t, without
// considering using-for attachments.
func (r *resolver) members(t *Type, name string) []*syntax.Node {
	switch t.Kind {
	case TypeMeta:
		e := t.Elem
		switch e.Kind {
		case TypeContract:
			return r.decls(r.expand(r.inContract(r.p.scopes[e.Decl], name)))
		case TypeEnum:
			if es := r.p.scopes[e.Decl]; es != nil {
				return r.decls(es.Lookup(name))
			}
		case TypeValueType:
			if name == "wrap" || name == "unwrap" {
				return []*syntax.Node{e.Decl}
			}
		}
	case TypeModule:
		return r.decls(r.expand(r.exported(t.Scope, name, make(map[*Scope]bool))))
	case TypeSuper:
		if t.Scope == nil || len(t.Scope.Linearized) < 2 {
			return nil
		}
		for _, base := range t.Scope.Linearized[1:] {
			if syms := nonPrivate(base.Lookup(name)); len(syms) > 0 {
				return r.decls(syms)
			}
		}
	case TypeContract:
		return r.decls(r.expand(r.inContract(r.p.scopes[t.Decl], name)))
	case TypeStruct:
		if ss := r.p.scopes[t.Decl]; ss != nil {
			return r.decls(ss.Lookup(name))
		}
	}
	return nil
}

// attached resolves name through using-for directives visible from the
// innermost scope outwards, then through global directives.
func (r *resolver) attached(t *Type, name string, from *Scope) []*syntax.Node {
	switch t.Kind {
	case TypeUnknown, TypeMeta, TypeModule, TypeSuper, TypeTuple:
		return nil
	}
	for s := from; s != nil; s = s.Parent {
		if found := r.fromAttachments(s.Attachments, t, name); len(found) > 0 {
			return found
		}
	}
	return r.fromAttachments(r.p.globals, t, name)
}

func (r *resolver) fromAttachments(list []*Attachment, t *Type, name string) []*syntax.Node {
	var out []*syntax.Node
	for _, a := range list {
		if !a.Wildcard && !r.compatible(t, a.Target) {
			continue
		}
		var candidates []*Symbol
		if a.Library != nil {
			candidates = append(candidates, a.Library.Lookup(name)...)
		}
		for _, fn := range a.Functions {
			if fn.Name == name {
				candidates = append(candidates, fn)
			}
		}
		for _, fn := range candidates {
			if fn.Kind == SymFunction && r.bindsTo(fn, t) {
				out = append(out, fn.Decl)
			}
		}
	}
	return lo.Uniq(out)
}

// bindsTo reports whether fn's first parameter accepts a receiver of type t.
func (r *resolver) bindsTo(fn *Symbol, t *Type) bool {
	if len(fn.Decl.Params) == 0 || fn.Scope == nil {
		return false
	}
	return r.compatible(t, r.typeFromTypeName(fn.Decl.Params[0].Type, fn.Scope))
}

// compatible extends convertible with derived-to-base contract conversion.
func (r *resolver) compatible(from, to *Type) bool {
	if from == nil || to == nil {
		return false
	}
	if from.Kind == TypeContract && to.Kind == TypeContract {
		if cs := r.p.scopes[from.Decl]; cs != nil {
			return lo.ContainsBy(cs.Linearized, func(s *Scope) bool { return s.Node == to.Decl })
		}
		return from.Decl == to.Decl
	}
	return convertible(from, to)
}

// namedArgument resolves f({name: value}) to a parameter of f or a field of
// the struct being constructed.
func (r *resolver) namedArgument(n *syntax.Node, from *Scope) []*syntax.Node {
	call := n.Parent
	if call == nil || call.Kind != syntax.KindCall || len(call.Children) == 0 {
		return nil
	}
	callee := call.Children[0]
	for callee.Kind == syntax.KindCallOptions && len(callee.Children) > 0 {
		callee = callee.Children[0]
	}
	t := r.typeOf(callee, from)
	if t == nil {
		return nil
	}
	switch {
	case t.Kind == TypeMeta && t.Elem.Kind == TypeStruct:
		if ss := r.p.scopes[t.Elem.Decl]; ss != nil {
			return r.decls(ss.Lookup(n.Name))
		}
	case t.Kind == TypeFunction && t.Decl != nil:
		for _, param := range t.Decl.Params {
			if param.Name == n.Name {
				return []*syntax.Node{param}
			}
		}
	}
	return nil
}
