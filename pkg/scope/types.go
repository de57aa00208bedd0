package scope

import (
	"strings"

	"github.com/odvcencio/solls/pkg/syntax"
)

// TypeKind classifies the static type of an expression.
type TypeKind int

const (
	TypeUnknown TypeKind = iota
	TypeElementary
	TypeLiteral
	TypeContract
	TypeStruct
	TypeEnum
	TypeValueType
	TypeArray
	TypeMapping
	TypeFunction
	TypeTuple
	TypeMeta   // a type used as an expression: Elem is the denoted type
	TypeModule // an import alias
	TypeSuper
)

// Type is the static type of an expression, derived from declarations.
type Type struct {
	Kind TypeKind
	Name string       // elementary type name or literal kind
	Decl *syntax.Node // contract, struct, enum, value type or function
	Elem *Type        // array element, mapping value, meta type
	Key  *Type        // mapping key

	// Scope is the imported file scope of a module, or the contract scope
	// of super.
	Scope *Scope

	// Result is the return type of a callable.
	Result *Type
	Items  []*Type
}

func elementary(name string) *Type {
	return &Type{Kind: TypeElementary, Name: normalizeElementary(name)}
}

func meta(t *Type) *Type {
	if t == nil {
		return nil
	}
	return &Type{Kind: TypeMeta, Elem: t}
}

func normalizeElementary(name string) string {
	switch name {
	case "uint":
		return "uint256"
	case "int":
		return "int256"
	case "byte":
		return "bytes1"
	case "ufixed":
		return "ufixed128x18"
	case "fixed":
		return "fixed128x18"
	}
	return name
}

// integerFamily returns "uint" or "int" for integer types and "" otherwise.
func integerFamily(name string) string {
	switch {
	case strings.HasPrefix(name, "uint"):
		return "uint"
	case strings.HasPrefix(name, "int"):
		return "int"
	}
	return ""
}

// String renders t roughly as it would be written in source.
func (t *Type) String() string {
	if t == nil {
		return "<unknown>"
	}
	switch t.Kind {
	case TypeElementary:
		return t.Name
	case TypeLiteral:
		return t.Name + " literal"
	case TypeContract, TypeStruct, TypeEnum, TypeValueType:
		return t.Decl.Name
	case TypeArray:
		return t.Elem.String() + "[]"
	case TypeMapping:
		return "mapping(" + t.Key.String() + " => " + t.Elem.String() + ")"
	case TypeFunction:
		if t.Decl != nil {
			return "function " + t.Decl.Name
		}
		return "function"
	case TypeTuple:
		parts := make([]string, 0, len(t.Items))
		for _, it := range t.Items {
			parts = append(parts, it.String())
		}
		return "(" + strings.Join(parts, ",") + ")"
	case TypeMeta:
		return "type(" + t.Elem.String() + ")"
	case TypeModule:
		return "module"
	case TypeSuper:
		return "super"
	}
	return "<unknown>"
}

// sameDecl reports whether a and b are the same user-defined type.
func sameDecl(a, b *Type) bool {
	return a.Kind == b.Kind && a.Decl == b.Decl
}

// convertible reports whether a value of type from can be passed where to
// is expected. Integer families convert loosely and number literals match
// any integer.
func convertible(from, to *Type) bool {
	if from == nil || to == nil {
		return false
	}
	switch to.Kind {
	case TypeElementary:
		switch from.Kind {
		case TypeElementary:
			if from.Name == to.Name {
				return true
			}
			fam := integerFamily(to.Name)
			return fam != "" && integerFamily(from.Name) == fam
		case TypeLiteral:
			switch from.Name {
			case syntax.LiteralNumber:
				return integerFamily(to.Name) != ""
			case syntax.LiteralString:
				return to.Name == "string" || strings.HasPrefix(to.Name, "bytes")
			}
		case TypeContract:
			return to.Name == "address"
		}
		return false
	case TypeContract, TypeStruct, TypeEnum, TypeValueType:
		return sameDecl(from, to)
	case TypeArray:
		return from.Kind == TypeArray && convertible(from.Elem, to.Elem)
	case TypeMapping:
		return from.Kind == TypeMapping && convertible(from.Key, to.Key) && convertible(from.Elem, to.Elem)
	case TypeFunction:
		return from.Kind == TypeFunction
	}
	return false
}
