package scope

import (
	"strings"

	"github.com/odvcencio/solls/pkg/syntax"
)

// typeOf derives the static type of expression e as seen from scope from.
func (r *resolver) typeOf(e *syntax.Node, from *Scope) *Type {
	if e == nil || from == nil || !r.enter() {
		return nil
	}
	defer r.leave()

	switch e.Kind {
	case syntax.KindIdentifier:
		return r.typeOfIdentifier(e, from)

	case syntax.KindMemberAccess:
		return r.typeOfMember(e, from)

	case syntax.KindCall:
		if len(e.Children) == 0 {
			return nil
		}
		callee := e.Children[0]
		for callee.Kind == syntax.KindCallOptions && len(callee.Children) > 0 {
			callee = callee.Children[0]
		}
		ct := r.typeOf(callee, from)
		if ct == nil {
			return nil
		}
		switch ct.Kind {
		case TypeMeta:
			// Conversions, struct constructors and new expressions.
			return ct.Elem
		case TypeFunction:
			return ct.Result
		}
		return nil

	case syntax.KindCallOptions:
		if len(e.Children) == 0 {
			return nil
		}
		return r.typeOf(e.Children[0], from)

	case syntax.KindIndexAccess:
		if len(e.Children) == 0 {
			return nil
		}
		bt := r.typeOf(e.Children[0], from)
		if bt == nil {
			return nil
		}
		switch bt.Kind {
		case TypeArray, TypeMapping:
			return bt.Elem
		case TypeMeta:
			return meta(&Type{Kind: TypeArray, Elem: bt.Elem})
		case TypeElementary:
			if strings.HasPrefix(bt.Name, "bytes") {
				return elementary("bytes1")
			}
		}
		return nil

	case syntax.KindNew:
		return meta(r.typeFromTypeName(e.Type, from))

	case syntax.KindTuple:
		if len(e.Children) == 1 {
			return r.typeOf(e.Children[0], from)
		}
		items := make([]*Type, 0, len(e.Children))
		for _, c := range e.Children {
			items = append(items, r.typeOf(c, from))
		}
		return &Type{Kind: TypeTuple, Items: items}

	case syntax.KindArrayLiteral:
		if len(e.Children) == 0 {
			return nil
		}
		if elem := r.typeOf(e.Children[0], from); elem != nil {
			return &Type{Kind: TypeArray, Elem: elem}
		}
		return nil

	case syntax.KindLiteral:
		if e.Literal == syntax.LiteralBool {
			return elementary("bool")
		}
		return &Type{Kind: TypeLiteral, Name: e.Literal}

	case syntax.KindUnary:
		switch e.Text {
		case "!":
			return elementary("bool")
		case "delete":
			return nil
		}
		if len(e.Children) == 0 {
			return nil
		}
		return r.typeOf(e.Children[0], from)

	case syntax.KindBinary:
		return r.typeOfBinary(e, from)
	}
	return nil
}

func (r *resolver) typeOfIdentifier(e *syntax.Node, from *Scope) *Type {
	switch e.Name {
	case "this":
		if cs := from.Contract(); cs != nil {
			return &Type{Kind: TypeContract, Decl: cs.Node}
		}
		return nil
	case "super":
		if cs := from.Contract(); cs != nil {
			return &Type{Kind: TypeSuper, Scope: cs}
		}
		return nil
	case "payable":
		return meta(elementary("address"))
	}
	syms := r.expand(r.lookup(e.Name, from, e.Span.Start))
	if len(syms) == 0 {
		if syntax.IsElementaryTypeName(e.Name) {
			return meta(elementary(e.Name))
		}
		return nil
	}
	return r.typeOfSymbol(syms[0])
}

func (r *resolver) typeOfMember(e *syntax.Node, from *Scope) *Type {
	if len(e.Children) == 0 {
		return nil
	}
	base := r.typeOf(e.Children[0], from)
	if base == nil {
		return nil
	}
	if base.Kind == TypeMeta && base.Elem.Kind == TypeValueType {
		switch e.Name {
		case "wrap":
			return &Type{Kind: TypeFunction, Result: base.Elem}
		case "unwrap":
			vt := base.Elem.Decl
			return &Type{Kind: TypeFunction, Result: r.typeFromTypeName(vt.Type, r.p.ScopeAt(vt))}
		}
	}
	if base.Kind == TypeArray && e.Name == "length" {
		return elementary("uint256")
	}
	nodes := r.members(base, e.Name)
	if len(nodes) == 0 {
		nodes = r.attached(base, e.Name, from)
	}
	if len(nodes) == 0 {
		return nil
	}
	return r.typeOfDecl(nodes[0])
}

func (r *resolver) typeOfBinary(e *syntax.Node, from *Scope) *Type {
	if len(e.Children) < 2 {
		return nil
	}
	switch e.Text {
	case "==", "!=", "<", ">", "<=", ">=", "&&", "||":
		return elementary("bool")
	case "?":
		branches := e.Children[1]
		if branches.Kind == syntax.KindBinary && branches.Text == ":" && len(branches.Children) > 0 {
			return r.typeOf(branches.Children[0], from)
		}
		return r.typeOf(branches, from)
	case "=", "|=", "^=", "&=", "<<=", ">>=", ">>>=", "+=", "-=", "*=", "/=", "%=":
		return r.typeOf(e.Children[0], from)
	}
	lt := r.typeOf(e.Children[0], from)
	if lt == nil || lt.Kind == TypeLiteral {
		if rt := r.typeOf(e.Children[1], from); rt != nil {
			return rt
		}
	}
	return lt
}

// typeOfDecl returns the type of an expression naming declaration n.
func (r *resolver) typeOfDecl(n *syntax.Node) *Type {
	if n.Kind == syntax.KindSourceUnit {
		return &Type{Kind: TypeModule, Scope: r.p.scopes[n]}
	}
	if sym := r.p.symbols[n]; sym != nil {
		return r.typeOfSymbol(sym)
	}
	return nil
}

func (r *resolver) typeOfSymbol(sym *Symbol) *Type {
	switch sym.Kind {
	case SymVariable:
		return r.typeFromTypeName(sym.Decl.Type, sym.Owner)
	case SymContract, SymInterface, SymLibrary:
		return meta(&Type{Kind: TypeContract, Decl: sym.Decl})
	case SymStruct:
		return meta(&Type{Kind: TypeStruct, Decl: sym.Decl})
	case SymEnum:
		return meta(&Type{Kind: TypeEnum, Decl: sym.Decl})
	case SymValueType:
		return meta(&Type{Kind: TypeValueType, Decl: sym.Decl})
	case SymEnumValue:
		return &Type{Kind: TypeEnum, Decl: sym.Owner.Node}
	case SymFunction:
		return &Type{Kind: TypeFunction, Decl: sym.Decl, Result: r.resultOf(sym)}
	case SymEvent, SymError:
		return &Type{Kind: TypeFunction, Decl: sym.Decl}
	case SymModule:
		return &Type{Kind: TypeModule, Scope: sym.Target}
	}
	return nil
}

// resultOf returns the return type of a function: its single return
// value, or a tuple.
func (r *resolver) resultOf(fn *Symbol) *Type {
	rets := fn.Decl.Returns
	if len(rets) == 0 || fn.Scope == nil {
		return nil
	}
	if len(rets) == 1 {
		return r.typeFromTypeName(rets[0].Type, fn.Scope)
	}
	items := make([]*Type, 0, len(rets))
	for _, ret := range rets {
		items = append(items, r.typeFromTypeName(ret.Type, fn.Scope))
	}
	return &Type{Kind: TypeTuple, Items: items}
}

// typeFromTypeName resolves a type name written in scope s.
func (r *resolver) typeFromTypeName(t *syntax.Node, s *Scope) *Type {
	if t == nil || s == nil || !r.enter() {
		return nil
	}
	defer r.leave()

	switch t.Kind {
	case syntax.KindElementaryType:
		return elementary(t.Text)
	case syntax.KindUserType:
		syms := r.resolvePath(t.Path, s, -1)
		if len(syms) == 0 {
			return nil
		}
		sym := syms[0]
		switch {
		case sym.Kind.IsContractLike():
			return &Type{Kind: TypeContract, Decl: sym.Decl}
		case sym.Kind == SymStruct:
			return &Type{Kind: TypeStruct, Decl: sym.Decl}
		case sym.Kind == SymEnum:
			return &Type{Kind: TypeEnum, Decl: sym.Decl}
		case sym.Kind == SymValueType:
			return &Type{Kind: TypeValueType, Decl: sym.Decl}
		}
		return nil
	case syntax.KindArrayType:
		elem := r.typeFromTypeName(t.Type, s)
		if elem == nil {
			return nil
		}
		return &Type{Kind: TypeArray, Elem: elem}
	case syntax.KindMapping:
		return &Type{Kind: TypeMapping, Key: r.typeFromTypeName(t.Type, s), Elem: r.typeFromTypeName(t.Value, s)}
	case syntax.KindFunctionType:
		return &Type{Kind: TypeFunction}
	}
	return nil
}
