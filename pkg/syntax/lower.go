package syntax

import (
	"regexp"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"

	"github.com/odvcencio/solls/pkg/model"
)

var elementaryPattern = regexp.MustCompile(`^(?:address|bool|string|bytes|byte|int|uint|fixed|ufixed|bytes(?:[1-9]|[12][0-9]|3[0-2])|u?int(?:8|16|24|32|40|48|56|64|72|80|88|96|104|112|120|128|136|144|152|160|168|176|184|192|200|208|216|224|232|240|248|256)|u?fixed[0-9]+x[0-9]+)$`)

// IsElementaryTypeName reports whether name is a built-in value type.
func IsElementaryTypeName(name string) bool {
	return elementaryPattern.MatchString(name)
}

func span(pos, end lexer.Position) model.Span {
	return model.Span{Start: pos.Offset, End: end.Offset}
}

func identSpan(id *ident) model.Span {
	return model.Span{Start: id.Pos.Offset, End: id.Pos.Offset + len(id.Name)}
}

func attach(parent *Node, children ...*Node) {
	for _, c := range children {
		if c == nil {
			continue
		}
		c.Parent = parent
		parent.Children = append(parent.Children, c)
	}
}

func named(kind Kind, pos, end lexer.Position, id *ident) *Node {
	n := &Node{Kind: kind, Span: span(pos, end)}
	if id != nil {
		n.Name = id.Name
		n.NameSpan = identSpan(id)
	}
	return n
}

func lowerSourceUnit(su *sourceUnit, size int) *Node {
	root := &Node{Kind: KindSourceUnit, Span: model.Span{Start: 0, End: size}}
	for _, item := range su.Items {
		attach(root, lowerTopLevel(item))
	}
	return root
}

func lowerTopLevel(t *topLevel) *Node {
	switch {
	case t.Pragma != nil:
		return &Node{
			Kind: KindPragma,
			Span: span(t.Pragma.Pos, t.Pragma.EndPos),
			Text: strings.Join(t.Pragma.Words, " "),
		}
	case t.Import != nil:
		return lowerImport(t.Import)
	case t.Contract != nil:
		return lowerContract(t.Contract)
	case t.Using != nil:
		return lowerUsing(t.Using)
	case t.Struct != nil:
		return lowerStruct(t.Struct)
	case t.Enum != nil:
		return lowerEnum(t.Enum)
	case t.ValueType != nil:
		return lowerValueType(t.ValueType)
	case t.Error != nil:
		return lowerError(t.Error)
	case t.Event != nil:
		return lowerEvent(t.Event)
	case t.Function != nil:
		return lowerFunction(t.Function)
	case t.StateVar != nil:
		return lowerStateVar(t.StateVar)
	}
	return nil
}

func lowerImport(d *importDecl) *Node {
	n := &Node{Kind: KindImport, Span: span(d.Pos, d.EndPos)}
	switch {
	case d.StarAlias != nil:
		n.Text = unquote(d.StarPath)
		n.Flags |= FlagWildcard
		n.Name = d.StarAlias.Name
		n.NameSpan = identSpan(d.StarAlias)
	case len(d.Symbols) > 0:
		n.Text = unquote(d.FromPath)
		for _, s := range d.Symbols {
			sym := &Node{Kind: KindImportSymbol, Span: span(s.Pos, s.EndPos), Text: s.Symbol.Name}
			local := s.Symbol
			if s.Alias != nil {
				local = s.Alias
			}
			sym.Name = local.Name
			sym.NameSpan = identSpan(local)
			attach(n, sym)
			n.Members = append(n.Members, sym)
		}
	default:
		n.Text = unquote(d.Path)
		if d.UnitAlias != nil {
			n.Name = d.UnitAlias.Name
			n.NameSpan = identSpan(d.UnitAlias)
		}
	}
	return n
}

func lowerPath(p *identPath) *Node {
	if p == nil {
		return nil
	}
	n := &Node{Kind: KindPath, Span: span(p.Pos, p.EndPos)}
	names := make([]string, 0, len(p.Segments))
	for _, seg := range p.Segments {
		attach(n, &Node{Kind: KindPathSegment, Span: identSpan(seg), Name: seg.Name, NameSpan: identSpan(seg)})
		names = append(names, seg.Name)
	}
	n.Name = strings.Join(names, ".")
	return n
}

func lowerContract(c *contractDecl) *Node {
	n := named(KindContract, c.Pos, c.EndPos, c.Name)
	n.Text = c.Kind
	if c.Abstract {
		n.Flags |= FlagAbstract
	}
	for _, b := range c.Bases {
		base := &Node{Kind: KindInheritance, Span: span(b.Pos, b.EndPos)}
		base.Path = lowerPath(b.Path)
		base.Name = base.Path.Name
		attach(base, base.Path)
		attach(base, lowerCallArgs(b.Args)...)
		attach(n, base)
		n.Bases = append(n.Bases, base)
	}
	for _, part := range c.Parts {
		m := lowerContractPart(part)
		if m == nil {
			continue
		}
		attach(n, m)
		n.Members = append(n.Members, m)
	}
	return n
}

func lowerContractPart(p *contractPart) *Node {
	switch {
	case p.Using != nil:
		return lowerUsing(p.Using)
	case p.Struct != nil:
		return lowerStruct(p.Struct)
	case p.Enum != nil:
		return lowerEnum(p.Enum)
	case p.ValueType != nil:
		return lowerValueType(p.ValueType)
	case p.Event != nil:
		return lowerEvent(p.Event)
	case p.Error != nil:
		return lowerError(p.Error)
	case p.Function != nil:
		return lowerFunction(p.Function)
	case p.Modifier != nil:
		return lowerModifier(p.Modifier)
	case p.StateVar != nil:
		n := lowerStateVar(p.StateVar)
		if n.Visibility == "" {
			n.Visibility = "internal"
		}
		return n
	}
	return nil
}

func lowerUsing(u *usingDecl) *Node {
	n := &Node{Kind: KindUsing, Span: span(u.Pos, u.EndPos)}
	if u.Library != nil {
		n.Path = lowerPath(u.Library)
		attach(n, n.Path)
	}
	for _, f := range u.Funcs {
		p := lowerPath(f.Path)
		p.Text = f.Operator
		attach(n, p)
		n.Members = append(n.Members, p)
	}
	if u.Wildcard {
		n.Flags |= FlagWildcard
	} else {
		n.Type = lowerTypeName(u.Target)
		attach(n, n.Type)
	}
	if u.Global {
		n.Flags |= FlagGlobal
	}
	return n
}

func lowerStruct(s *structDecl) *Node {
	n := named(KindStruct, s.Pos, s.EndPos, s.Name)
	for _, f := range s.Fields {
		field := named(KindVariable, f.Pos, f.EndPos, f.Name)
		field.Flags |= FlagStructField
		field.Type = lowerTypeName(f.Type)
		attach(field, field.Type)
		attach(n, field)
		n.Members = append(n.Members, field)
	}
	return n
}

func lowerEnum(e *enumDecl) *Node {
	n := named(KindEnum, e.Pos, e.EndPos, e.Name)
	for _, v := range e.Values {
		val := &Node{Kind: KindEnumValue, Span: identSpan(v), Name: v.Name, NameSpan: identSpan(v)}
		attach(n, val)
		n.Members = append(n.Members, val)
	}
	return n
}

func lowerValueType(v *valueTypeDecl) *Node {
	n := named(KindValueType, v.Pos, v.EndPos, v.Name)
	n.Type = lowerTypeName(v.Underlying)
	attach(n, n.Type)
	return n
}

func lowerEvent(e *eventDecl) *Node {
	n := named(KindEvent, e.Pos, e.EndPos, e.Name)
	n.Params = lowerParams(e.Params, FlagParameter)
	attach(n, n.Params...)
	return n
}

func lowerError(e *errorDecl) *Node {
	n := named(KindError, e.Pos, e.EndPos, e.Name)
	n.Params = lowerParams(e.Params, FlagParameter)
	attach(n, n.Params...)
	return n
}

func lowerParams(params []*parameter, flag Flags) []*Node {
	out := make([]*Node, 0, len(params))
	for _, p := range params {
		v := named(KindVariable, p.Pos, p.EndPos, p.Name)
		v.Flags |= flag
		if p.Indexed {
			v.Flags |= FlagIndexed
		}
		v.Text = p.Location
		v.Type = lowerTypeName(p.Type)
		attach(v, v.Type)
		out = append(out, v)
	}
	return out
}

func lowerFunction(f *functionDecl) *Node {
	n := named(KindFunction, f.Pos, f.EndPos, f.Name)
	n.Text = f.Kind
	n.Params = lowerParams(f.Params, FlagParameter)
	attach(n, n.Params...)
	for _, a := range f.Attrs {
		switch {
		case a.Keyword != "":
			switch a.Keyword {
			case "public", "private", "internal", "external":
				n.Visibility = a.Keyword
			case "payable":
				n.Flags |= FlagPayable
			}
		case a.Override != nil:
			attach(n, lowerOverride(a.Override))
		case a.Modifier != nil:
			m := &Node{Kind: KindModifierInvocation, Span: span(a.Modifier.Pos, a.Modifier.EndPos)}
			m.Path = lowerPath(a.Modifier.Path)
			m.Name = m.Path.Name
			attach(m, m.Path)
			attach(m, lowerCallArgs(a.Modifier.Args)...)
			attach(n, m)
		}
	}
	n.Returns = lowerParams(f.Returns, FlagReturnParameter)
	attach(n, n.Returns...)
	n.Body = lowerBlock(f.Body)
	attach(n, n.Body)
	return n
}

func lowerOverride(o *overrideSpec) *Node {
	n := &Node{Kind: KindOverride, Span: span(o.Pos, o.EndPos)}
	for _, b := range o.Bases {
		attach(n, lowerPath(b))
	}
	return n
}

func lowerModifier(m *modifierDecl) *Node {
	n := named(KindModifier, m.Pos, m.EndPos, m.Name)
	n.Params = lowerParams(m.Params, FlagParameter)
	attach(n, n.Params...)
	for _, o := range m.Override {
		attach(n, lowerOverride(o))
	}
	n.Body = lowerBlock(m.Body)
	attach(n, n.Body)
	return n
}

func lowerStateVar(s *stateVarDecl) *Node {
	n := named(KindVariable, s.Pos, s.EndPos, s.Name)
	n.Flags |= FlagStateVariable
	n.Type = lowerTypeName(s.Type)
	attach(n, n.Type)
	for _, a := range s.Attrs {
		switch a {
		case "constant":
			n.Flags |= FlagConstant
		case "immutable":
			n.Flags |= FlagImmutable
		case "public", "private", "internal":
			n.Visibility = a
		}
	}
	for _, o := range s.Override {
		attach(n, lowerOverride(o))
	}
	n.Value = lowerExpression(s.Value)
	attach(n, n.Value)
	return n
}

func lowerTypeName(t *typeName) *Node {
	if t == nil {
		return nil
	}
	var n *Node
	switch {
	case t.Mapping != nil:
		m := t.Mapping
		n = &Node{Kind: KindMapping, Span: span(m.Pos, m.EndPos)}
		n.Type = lowerTypeName(m.Key)
		n.Value = lowerTypeName(m.Value)
		attach(n, n.Type, n.Value)
	case t.Function != nil:
		f := t.Function
		n = &Node{Kind: KindFunctionType, Span: span(f.Pos, f.EndPos)}
		n.Params = lowerParams(f.Params, FlagParameter)
		n.Returns = lowerParams(f.Returns, FlagReturnParameter)
		attach(n, n.Params...)
		attach(n, n.Returns...)
	case t.Path != nil:
		p := lowerPath(t.Path)
		if len(p.Children) == 1 && IsElementaryTypeName(p.Name) {
			n = &Node{Kind: KindElementaryType, Span: p.Span, Text: p.Name}
			if t.Payable {
				n.Flags |= FlagPayable
				n.Span.End = t.EndPos.Offset
				if len(t.Dims) > 0 {
					n.Span.End = t.Dims[0].Pos.Offset
				}
			}
		} else {
			n = &Node{Kind: KindUserType, Span: p.Span, Name: p.Name, Path: p}
			attach(n, p)
		}
	default:
		return nil
	}
	for _, d := range t.Dims {
		arr := &Node{Kind: KindArrayType, Span: model.Span{Start: n.Span.Start, End: d.EndPos.Offset}}
		arr.Type = n
		arr.Value = lowerExpression(d.Length)
		attach(arr, arr.Type, arr.Value)
		n = arr
	}
	return n
}

// Statements.

func lowerBlock(b *block) *Node {
	if b == nil {
		return nil
	}
	n := &Node{Kind: KindBlock, Span: span(b.Pos, b.EndPos)}
	if b.Unchecked {
		n.Flags |= FlagUnchecked
	}
	for _, s := range b.Statements {
		attach(n, lowerStatement(s))
	}
	return n
}

func lowerStatement(s *statement) *Node {
	if s == nil {
		return nil
	}
	sp := span(s.Pos, s.EndPos)
	switch {
	case s.Block != nil:
		return lowerBlock(s.Block)
	case s.If != nil:
		n := &Node{Kind: KindIf, Span: sp}
		attach(n, lowerExpression(s.If.Cond), lowerStatement(s.If.Then), lowerStatement(s.If.Else))
		return n
	case s.For != nil:
		n := &Node{Kind: KindFor, Span: sp}
		if s.For.Init != nil {
			attach(n, lowerSimpleStatement(s.For.Init))
		}
		n.Body = lowerStatement(s.For.Body)
		attach(n, lowerExpression(s.For.Cond), lowerExpression(s.For.Post), n.Body)
		return n
	case s.While != nil:
		n := &Node{Kind: KindWhile, Span: sp}
		n.Body = lowerStatement(s.While.Body)
		attach(n, lowerExpression(s.While.Cond), n.Body)
		return n
	case s.DoWhile != nil:
		n := &Node{Kind: KindDoWhile, Span: sp}
		n.Body = lowerStatement(s.DoWhile.Body)
		attach(n, n.Body, lowerExpression(s.DoWhile.Cond))
		return n
	case s.Return != nil:
		n := &Node{Kind: KindReturn, Span: sp}
		n.Value = lowerExpression(s.Return.Value)
		attach(n, n.Value)
		return n
	case s.Emit != nil:
		n := &Node{Kind: KindEmit, Span: sp}
		n.Value = lowerExpression(s.Emit.Event)
		attach(n, n.Value)
		return n
	case s.Revert != nil:
		n := &Node{Kind: KindRevert, Span: sp}
		n.Value = lowerExpression(s.Revert.Error)
		attach(n, n.Value)
		return n
	case s.Try != nil:
		return lowerTry(s.Try, sp)
	case s.Assembly != nil:
		return &Node{Kind: KindAssembly, Span: sp, Text: unquote(s.Assembly.Dialect)}
	case s.Break:
		return &Node{Kind: KindBreak, Span: sp}
	case s.Continue:
		return &Node{Kind: KindContinue, Span: sp}
	case s.TupleDecl != nil:
		return lowerTupleDecl(s.TupleDecl)
	case s.VarDecl != nil:
		return lowerVarDecl(s.VarDecl)
	case s.Expr != nil:
		return lowerExprStmt(s.Expr)
	}
	return nil
}

func lowerSimpleStatement(s *simpleStmt) *Node {
	switch {
	case s.TupleDecl != nil:
		return lowerTupleDecl(s.TupleDecl)
	case s.VarDecl != nil:
		return lowerVarDecl(s.VarDecl)
	case s.Expr != nil:
		return lowerExprStmt(s.Expr)
	}
	return nil
}

func lowerLocal(d *varDecl) *Node {
	v := named(KindVariable, d.Pos, d.EndPos, d.Name)
	v.Text = d.Location
	v.Type = lowerTypeName(d.Type)
	attach(v, v.Type)
	return v
}

func lowerVarDecl(s *varDeclStmt) *Node {
	n := &Node{Kind: KindVarDeclStmt, Span: span(s.Pos, s.EndPos)}
	local := lowerLocal(s.Decl)
	n.Members = []*Node{local}
	n.Value = lowerExpression(s.Value)
	attach(n, local, n.Value)
	return n
}

func lowerTupleDecl(s *tupleDeclStmt) *Node {
	n := &Node{Kind: KindVarDeclStmt, Span: span(s.Pos, s.EndPos)}
	for _, d := range s.Decls {
		local := lowerLocal(d)
		attach(n, local)
		n.Members = append(n.Members, local)
	}
	n.Value = lowerExpression(s.Value)
	attach(n, n.Value)
	return n
}

func lowerExprStmt(s *exprStmt) *Node {
	n := &Node{Kind: KindExprStmt, Span: span(s.Pos, s.EndPos)}
	n.Value = lowerExpression(s.Expr)
	attach(n, n.Value)
	return n
}

func lowerTry(t *tryStmt, sp model.Span) *Node {
	n := &Node{Kind: KindTry, Span: sp}
	n.Value = lowerExpression(t.Call)
	attach(n, n.Value)

	// The success clause is modeled as a catch-like clause whose parameters
	// are the returned values.
	success := &Node{Kind: KindCatch, Text: "returns"}
	success.Span.End = t.Body.EndPos.Offset
	success.Span.Start = t.Body.Pos.Offset
	if t.Returns != nil {
		success.Span.Start = t.Returns.Pos.Offset
		success.Params = lowerParams(t.Returns.Params, FlagReturnParameter)
		attach(success, success.Params...)
	}
	success.Body = lowerBlock(t.Body)
	attach(success, success.Body)
	attach(n, success)

	for _, c := range t.Catches {
		clause := named(KindCatch, c.Pos, c.EndPos, nil)
		if c.Name != nil {
			clause.Text = c.Name.Name
		}
		clause.Params = lowerParams(c.Params, FlagParameter)
		attach(clause, clause.Params...)
		clause.Body = lowerBlock(c.Body)
		attach(clause, clause.Body)
		attach(n, clause)
	}
	return n
}

// Expressions.

var binaryPrecedence = map[string]int{
	"=": 1, "|=": 1, "^=": 1, "&=": 1, "<<=": 1, ">>=": 1, ">>>=": 1,
	"+=": 1, "-=": 1, "*=": 1, "/=": 1, "%=": 1,
	"?": 2, ":": 2,
	"||": 3,
	"&&": 4,
	"==": 5, "!=": 5,
	"<": 6, ">": 6, "<=": 6, ">=": 6,
	"|":  7,
	"^":  8,
	"&":  9,
	"<<": 10, ">>": 10, ">>>": 10,
	"+": 11, "-": 11,
	"*": 12, "/": 12, "%": 12,
	"**": 13,
}

func rightAssociative(prec int) bool {
	return prec <= 2 || prec == 13
}

func lowerExpression(e *expression) *Node {
	if e == nil {
		return nil
	}
	operands := []*Node{lowerUnary(e.Head)}
	ops := make([]string, 0, len(e.Tail))
	for _, t := range e.Tail {
		ops = append(ops, t.Op)
		operands = append(operands, lowerUnary(t.Operand))
	}
	f := &folder{operands: operands, ops: ops}
	return f.fold(f.next(), 0)
}

// folder turns a flat operand/operator list into a tree by precedence
// climbing.
type folder struct {
	operands []*Node
	ops      []string
	pos      int
}

func (f *folder) next() *Node {
	n := f.operands[f.pos]
	f.pos++
	return n
}

func (f *folder) fold(lhs *Node, minPrec int) *Node {
	for f.pos-1 < len(f.ops) {
		op := f.ops[f.pos-1]
		prec := binaryPrecedence[op]
		if prec < minPrec {
			break
		}
		rhs := f.next()
		for f.pos-1 < len(f.ops) {
			nextPrec := binaryPrecedence[f.ops[f.pos-1]]
			if nextPrec > prec || (nextPrec == prec && rightAssociative(prec)) {
				rhs = f.fold(rhs, nextPrec)
				continue
			}
			break
		}
		bin := &Node{Kind: KindBinary, Span: model.Span{Start: lhs.Span.Start, End: rhs.Span.End}, Text: op}
		attach(bin, lhs, rhs)
		lhs = bin
	}
	return lhs
}

func lowerUnary(u *unary) *Node {
	if u.Operand != nil {
		return lowerPostfix(u.Operand)
	}
	n := &Node{Kind: KindUnary, Span: span(u.Pos, u.EndPos), Text: u.Op}
	attach(n, lowerUnary(u.Inner))
	return n
}

func lowerPostfix(p *postfix) *Node {
	n := lowerPrimary(p.Primary)
	start := p.Pos.Offset
	for _, op := range p.Ops {
		sp := model.Span{Start: start, End: op.EndPos.Offset}
		switch {
		case op.Member != nil:
			m := &Node{
				Kind:     KindMemberAccess,
				Span:     sp,
				Name:     op.Member.Name,
				NameSpan: model.Span{Start: op.Member.Pos.Offset, End: op.Member.Pos.Offset + len(op.Member.Name)},
			}
			attach(m, n)
			n = m
		case op.Index != nil:
			idx := &Node{Kind: KindIndexAccess, Span: sp}
			idx.Value = lowerExpression(op.Index.Start)
			attach(idx, n, idx.Value, lowerExpression(op.Index.End))
			n = idx
		case op.Options != nil:
			opts := &Node{Kind: KindCallOptions, Span: sp}
			attach(opts, n)
			opts.Params = lowerNamedArgs(op.Options.Args)
			attach(opts, opts.Params...)
			n = opts
		case op.Call != nil:
			call := &Node{Kind: KindCall, Span: sp}
			attach(call, n)
			if op.Call.Named != nil {
				call.Params = lowerNamedArgs(op.Call.Named)
				attach(call, call.Params...)
			} else {
				for _, a := range op.Call.Args {
					arg := lowerExpression(a)
					attach(call, arg)
					call.Params = append(call.Params, arg)
				}
			}
			n = call
		case op.Incr != "":
			u := &Node{Kind: KindUnary, Span: sp, Text: op.Incr}
			attach(u, n)
			n = u
		}
	}
	return n
}

func lowerNamedArgs(args []*namedArg) []*Node {
	out := make([]*Node, 0, len(args))
	for _, a := range args {
		arg := &Node{
			Kind:     KindNamedArg,
			Span:     span(a.Pos, a.EndPos),
			Name:     a.Name.Name,
			NameSpan: identSpan(a.Name),
		}
		arg.Value = lowerExpression(a.Value)
		attach(arg, arg.Value)
		out = append(out, arg)
	}
	return out
}

func lowerCallArgs(c *callArgs) []*Node {
	if c == nil {
		return nil
	}
	if c.Named != nil {
		return lowerNamedArgs(c.Named)
	}
	out := make([]*Node, 0, len(c.Args))
	for _, a := range c.Args {
		out = append(out, lowerExpression(a))
	}
	return out
}

func lowerPrimary(p *primary) *Node {
	sp := span(p.Pos, p.EndPos)
	switch {
	case p.New != nil:
		n := &Node{Kind: KindNew, Span: sp}
		n.Type = lowerTypeName(p.New)
		attach(n, n.Type)
		return n
	case p.TypeOf != nil:
		n := &Node{Kind: KindTypeExpr, Span: sp}
		n.Type = lowerTypeName(p.TypeOf)
		attach(n, n.Type)
		return n
	case p.Payable:
		return &Node{Kind: KindIdentifier, Span: sp, Name: "payable", NameSpan: sp}
	case p.Bool != "":
		return &Node{Kind: KindLiteral, Span: sp, Literal: LiteralBool, Text: p.Bool}
	case p.Number != nil:
		return &Node{Kind: KindLiteral, Span: sp, Literal: LiteralNumber, Text: p.Number.Value}
	case len(p.Strings) > 0:
		parts := make([]string, 0, len(p.Strings))
		for _, s := range p.Strings {
			parts = append(parts, unquote(s))
		}
		return &Node{Kind: KindLiteral, Span: sp, Literal: LiteralString, Text: strings.Join(parts, "")}
	case p.Tuple != nil:
		n := &Node{Kind: KindTuple, Span: sp}
		for _, item := range p.Tuple.Items {
			attach(n, lowerExpression(item))
		}
		return n
	case p.Array != nil:
		n := &Node{Kind: KindArrayLiteral, Span: sp}
		for _, item := range p.Array.Items {
			attach(n, lowerExpression(item))
		}
		return n
	case p.Ident != nil:
		return &Node{Kind: KindIdentifier, Span: identSpan(p.Ident), Name: p.Ident.Name, NameSpan: identSpan(p.Ident)}
	}
	return &Node{Kind: KindInvalid, Span: sp}
}

// unquote strips the quotes and hex/unicode prefix of a string token. Escape
// sequences are kept verbatim; import paths never contain them in practice.
func unquote(s string) string {
	s = strings.TrimPrefix(s, "hex")
	s = strings.TrimPrefix(s, "unicode")
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}
