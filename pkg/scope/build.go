package scope

import (
	"github.com/cockroachdb/errors"
	"github.com/samber/lo"

	"github.com/odvcencio/solls/pkg/syntax"
)

type pendingUsing struct {
	node  *syntax.Node
	scope *Scope
}

type builder struct {
	p         *Program
	contracts []*Scope
	usings    []pendingUsing
}

// Build constructs the scope graph of files in four passes: declarations,
// import edges, inheritance linearization and using-for attachments.
// Structural problems that do not prevent resolution, such as inheritance
// cycles, are reported in Program.Problems.
func Build(files []*syntax.File, resolve ImportResolver) (*Program, error) {
	if resolve == nil {
		resolve = RelativeImports
	}
	p := newProgram()
	for _, f := range files {
		if f == nil || f.Root == nil {
			return nil, errors.New("scope: file without syntax tree")
		}
		if prev, dup := p.byID[f.ID]; dup {
			return nil, errors.Newf("scope: file id %d used by %s and %s", f.ID, prev.Path, f.Path)
		}
		if prev, dup := p.byPath[f.Path]; dup {
			return nil, errors.Newf("scope: source unit %s loaded twice (ids %d and %d)", f.Path, prev.ID, f.ID)
		}
		p.Files = append(p.Files, f)
		p.byID[f.ID] = f
		p.byPath[f.Path] = f
		p.byRoot[f.Root] = f
		if f.URI != "" {
			p.byURI[f.URI] = f
		}
	}

	b := &builder{p: p}
	for _, f := range p.Files {
		b.declareFile(f)
	}
	for _, f := range p.Files {
		b.linkImports(f, resolve)
	}
	r := newResolver(p)
	b.linearizeAll(r)
	b.attachAll(r)
	return p, nil
}

func (b *builder) open(kind ScopeKind, n *syntax.Node, parent *Scope, declaring *Symbol) *Scope {
	s := NewScope(kind, n, parent)
	s.Declaring = declaring
	if declaring != nil {
		declaring.Scope = s
	}
	b.p.scopes[n] = s
	return s
}

func (b *builder) define(n *syntax.Node, kind SymbolKind, s *Scope) *Symbol {
	sym := &Symbol{Name: n.Name, Kind: kind, Decl: n, Visibility: n.Visibility}
	s.AddDef(sym)
	b.p.symbols[n] = sym
	return sym
}

func contractKind(text string) SymbolKind {
	switch text {
	case "interface":
		return SymInterface
	case "library":
		return SymLibrary
	}
	return SymContract
}

func (b *builder) declareFile(f *syntax.File) {
	s := NewScope(ScopeFile, f.Root, nil)
	s.File = f
	b.p.scopes[f.Root] = s
	for _, c := range f.Root.Children {
		b.declare(c, s)
	}
}

// declare enters n and its descendants into s.
func (b *builder) declare(n *syntax.Node, s *Scope) {
	switch n.Kind {
	case syntax.KindContract:
		cs := b.open(ScopeContract, n, s, b.define(n, contractKind(n.Text), s))
		b.contracts = append(b.contracts, cs)
		for _, m := range n.Members {
			b.declare(m, cs)
		}
		return

	case syntax.KindStruct:
		ss := b.open(ScopeStruct, n, s, b.define(n, SymStruct, s))
		for _, field := range n.Members {
			b.define(field, SymVariable, ss)
		}
		return

	case syntax.KindEnum:
		es := b.open(ScopeEnum, n, s, b.define(n, SymEnum, s))
		for _, v := range n.Members {
			b.define(v, SymEnumValue, es)
		}
		return

	case syntax.KindValueType:
		b.define(n, SymValueType, s)
		return

	case syntax.KindEvent:
		b.define(n, SymEvent, s)
		return

	case syntax.KindError:
		b.define(n, SymError, s)
		return

	case syntax.KindFunction, syntax.KindModifier:
		var sym *Symbol
		if n.Name != "" {
			kind := SymFunction
			if n.Kind == syntax.KindModifier {
				kind = SymModifier
			}
			sym = b.define(n, kind, s)
		}
		fs := b.open(ScopeFunction, n, s, sym)
		for _, param := range append(append([]*syntax.Node{}, n.Params...), n.Returns...) {
			if param.Name != "" {
				b.define(param, SymVariable, fs)
			}
		}
		if n.Body != nil {
			b.declare(n.Body, fs)
		}
		return

	case syntax.KindVariable:
		if n.Name != "" {
			b.define(n, SymVariable, s)
		}
		return

	case syntax.KindVarDeclStmt:
		for _, v := range n.Members {
			if v.Name == "" {
				continue
			}
			// Locals are in scope after their declaration statement.
			b.define(v, SymVariable, s).VisibleFrom = n.Span.End
		}
		return

	case syntax.KindBlock, syntax.KindFor:
		bs := b.open(ScopeBlock, n, s, nil)
		for _, c := range n.Children {
			b.declare(c, bs)
		}
		return

	case syntax.KindCatch:
		cs := b.open(ScopeCatch, n, s, nil)
		for _, param := range n.Params {
			if param.Name != "" {
				b.define(param, SymVariable, cs)
			}
		}
		if n.Body != nil {
			b.declare(n.Body, cs)
		}
		return

	case syntax.KindUsing:
		b.usings = append(b.usings, pendingUsing{node: n, scope: s})
		return

	case syntax.KindImport, syntax.KindPragma:
		return
	}
	for _, c := range n.Children {
		b.declare(c, s)
	}
}

// linkImports adds the import edges and aliases of f.
func (b *builder) linkImports(f *syntax.File, resolve ImportResolver) {
	fs := b.p.scopes[f.Root]
	for _, imp := range f.Imports() {
		target := b.p.byPath[resolve(f.Path, imp.Text)]
		if target == nil {
			continue
		}
		b.p.imports[imp] = target
		ts := b.p.scopes[target.Root]

		switch {
		case len(imp.Members) > 0:
			for _, is := range imp.Members {
				sym := &Symbol{Name: is.Name, Kind: SymAlias, Decl: is, Target: ts, Original: is.Text}
				fs.AddDef(sym)
				b.p.symbols[is] = sym
			}
		case imp.Name != "":
			sym := &Symbol{Name: imp.Name, Kind: SymModule, Decl: imp, Target: ts}
			fs.AddDef(sym)
			b.p.symbols[imp] = sym
		default:
			fs.Imports = append(fs.Imports, ts)
		}
	}
}

// attachAll resolves using-for directives into attachments.
func (b *builder) attachAll(r *resolver) {
	for _, u := range b.usings {
		n := u.node
		a := &Attachment{
			Directive: n,
			Wildcard:  n.Has(syntax.FlagWildcard),
			Global:    n.Has(syntax.FlagGlobal),
		}
		if n.Path != nil {
			lib, ok := lo.Find(r.resolvePath(n.Path, u.scope, -1), func(s *Symbol) bool {
				return s.Kind.IsContractLike() && s.Scope != nil
			})
			if ok {
				a.Library = lib.Scope
			}
		}
		for _, fp := range n.Members {
			a.Functions = append(a.Functions, lo.Filter(r.resolvePath(fp, u.scope, -1), func(s *Symbol, _ int) bool {
				return s.Kind == SymFunction
			})...)
		}
		if a.Library == nil && len(a.Functions) == 0 {
			continue
		}
		if !a.Wildcard && n.Type != nil {
			a.Target = r.typeFromTypeName(n.Type, u.scope)
			if a.Target == nil {
				continue
			}
		}
		u.scope.Attachments = append(u.scope.Attachments, a)
		if a.Global {
			b.p.globals = append(b.p.globals, a)
		}
	}
}
