// Package syntax parses Solidity source units into a uniform syntax tree.
//
// The concrete grammar lives in grammar.go and is driven by participle; the
// parse tree is then lowered into Node values so that the position index and
// the scope graph can walk every construct the same way.
package syntax

import "github.com/odvcencio/solls/pkg/model"

// Kind classifies a syntax node.
type Kind int

const (
	KindInvalid Kind = iota

	// Source unit level.
	KindSourceUnit
	KindPragma
	KindImport
	KindImportSymbol

	// Declarations.
	KindContract
	KindInheritance
	KindUsing
	KindStruct
	KindEnum
	KindEnumValue
	KindValueType
	KindEvent
	KindError
	KindModifier
	KindFunction
	KindVariable
	KindModifierInvocation
	KindOverride

	// Type names.
	KindElementaryType
	KindUserType
	KindMapping
	KindArrayType
	KindFunctionType

	// Identifier paths (type names, bases, library names).
	KindPath
	KindPathSegment

	// Statements.
	KindBlock
	KindIf
	KindFor
	KindWhile
	KindDoWhile
	KindReturn
	KindEmit
	KindRevert
	KindTry
	KindCatch
	KindAssembly
	KindBreak
	KindContinue
	KindVarDeclStmt
	KindExprStmt

	// Expressions.
	KindIdentifier
	KindMemberAccess
	KindIndexAccess
	KindCall
	KindCallOptions
	KindNamedArg
	KindNew
	KindTypeExpr
	KindLiteral
	KindTuple
	KindArrayLiteral
	KindUnary
	KindBinary
)

var kindNames = map[Kind]string{
	KindSourceUnit:         "SourceUnit",
	KindPragma:             "PragmaDirective",
	KindImport:             "ImportDirective",
	KindImportSymbol:       "ImportSymbol",
	KindContract:           "ContractDefinition",
	KindInheritance:        "InheritanceSpecifier",
	KindUsing:              "UsingForDirective",
	KindStruct:             "StructDefinition",
	KindEnum:               "EnumDefinition",
	KindEnumValue:          "EnumValue",
	KindValueType:          "UserDefinedValueTypeDefinition",
	KindEvent:              "EventDefinition",
	KindError:              "ErrorDefinition",
	KindModifier:           "ModifierDefinition",
	KindFunction:           "FunctionDefinition",
	KindVariable:           "VariableDeclaration",
	KindModifierInvocation: "ModifierInvocation",
	KindOverride:           "OverrideSpecifier",
	KindElementaryType:     "ElementaryTypeName",
	KindUserType:           "UserDefinedTypeName",
	KindMapping:            "Mapping",
	KindArrayType:          "ArrayTypeName",
	KindFunctionType:       "FunctionTypeName",
	KindPath:               "IdentifierPath",
	KindPathSegment:        "IdentifierPathSegment",
	KindBlock:              "Block",
	KindIf:                 "IfStatement",
	KindFor:                "ForStatement",
	KindWhile:              "WhileStatement",
	KindDoWhile:            "DoWhileStatement",
	KindReturn:             "Return",
	KindEmit:               "EmitStatement",
	KindRevert:             "RevertStatement",
	KindTry:                "TryStatement",
	KindCatch:              "TryCatchClause",
	KindAssembly:           "InlineAssembly",
	KindBreak:              "Break",
	KindContinue:           "Continue",
	KindVarDeclStmt:        "VariableDeclarationStatement",
	KindExprStmt:           "ExpressionStatement",
	KindIdentifier:         "Identifier",
	KindMemberAccess:       "MemberAccess",
	KindIndexAccess:        "IndexAccess",
	KindCall:               "FunctionCall",
	KindCallOptions:        "FunctionCallOptions",
	KindNamedArg:           "NamedArgument",
	KindNew:                "NewExpression",
	KindTypeExpr:           "TypeExpression",
	KindLiteral:            "Literal",
	KindTuple:              "TupleExpression",
	KindArrayLiteral:       "InlineArray",
	KindUnary:              "UnaryOperation",
	KindBinary:             "BinaryOperation",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Invalid"
}

// IsDeclaration reports whether nodes of this kind introduce a name.
func (k Kind) IsDeclaration() bool {
	switch k {
	case KindContract, KindStruct, KindEnum, KindEnumValue, KindValueType,
		KindEvent, KindError, KindModifier, KindFunction, KindVariable:
		return true
	}
	return false
}

// Flags carry boolean payload.
type Flags uint16

const (
	FlagAbstract Flags = 1 << iota
	FlagGlobal
	FlagWildcard
	FlagPayable
	FlagConstant
	FlagImmutable
	FlagIndexed
	FlagUnchecked
	FlagStateVariable
	FlagParameter
	FlagReturnParameter
	FlagStructField
)

// Literal kinds, stored in Node.Literal.
const (
	LiteralNumber = "number"
	LiteralString = "string"
	LiteralBool   = "bool"
)

// Node is one element of the lowered syntax tree. Every node is owned by
// exactly one File; other packages keep plain pointers into the tree and
// never mutate it.
type Node struct {
	Kind     Kind
	Span     model.Span
	Name     string
	NameSpan model.Span
	Parent   *Node
	Children []*Node

	// Text holds kind specific text: the contract kind, the function kind,
	// the elementary type name, an operator, a literal value, an import path
	// or a parameter data location.
	Text       string
	Literal    string
	Visibility string
	Flags      Flags

	// Typed links into Children for direct access.
	Type    *Node   // declared type, underlying type, using-for target, new/type() operand
	Value   *Node   // mapping value type, initializer, array length
	Body    *Node   // function/modifier/loop body, catch block
	Path    *Node   // identifier path of user types, bases, modifiers, using libraries
	Params  []*Node // parameters or named arguments
	Returns []*Node // return parameters
	Bases   []*Node // inheritance specifiers
	Members []*Node // contract parts, struct fields, enum values, using function list
}

// Has reports whether all of f are set.
func (n *Node) Has(f Flags) bool {
	return n.Flags&f == f
}

// IsFunctionLike reports whether the node opens a callable scope.
func (n *Node) IsFunctionLike() bool {
	return n.Kind == KindFunction || n.Kind == KindModifier
}

// Root returns the source unit owning n.
func (n *Node) Root() *Node {
	for n.Parent != nil {
		n = n.Parent
	}
	return n
}

// Enclosing returns the closest ancestor (excluding n) of the given kind.
func (n *Node) Enclosing(kind Kind) *Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Kind == kind {
			return p
		}
	}
	return nil
}

// Index returns the position of n among its parent's children, or -1.
func (n *Node) Index() int {
	if n.Parent == nil {
		return -1
	}
	for i, c := range n.Parent.Children {
		if c == n {
			return i
		}
	}
	return -1
}

// Walk visits n and its descendants in source order until fn returns false.
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range n.Children {
		Walk(c, fn)
	}
}
