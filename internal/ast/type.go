package ast

import "github.com/neve-lang/neve/internal/span"

func (*NamedType) typeExprNode()    {}
func (*TupleType) typeExprNode()    {}
func (*ListType) typeExprNode()     {}
func (*RecordType) typeExprNode()   {}
func (*FunctionType) typeExprNode() {}
func (*ErrType) typeExprNode()      {}

// NamedType is a type constructor applied to zero or more arguments:
// `Int`, `List(Int)`, `Option(a)`, `My.Module.Thing(a, b)`.
type NamedType struct {
	Path []string
	Args []TypeExpr
	Sp   span.Span
}

func (t *NamedType) Span() span.Span { return t.Sp }

// TupleType is `(T1, T2, ...)`.
type TupleType struct {
	Elems []TypeExpr
	Sp    span.Span
}

func (t *TupleType) Span() span.Span { return t.Sp }

// ListType is `[T]`.
type ListType struct {
	Elem TypeExpr
	Sp   span.Span
}

func (t *ListType) Span() span.Span { return t.Sp }

// RecordFieldType is one `name: Type` entry in a record type.
type RecordFieldType struct {
	Name string
	Type TypeExpr
	Sp   span.Span
}

// RecordType is `#{ name: Type, ... }`, optionally row-polymorphic with a
// trailing `| row` variable.
type RecordType struct {
	Fields []RecordFieldType
	RowVar string // "" if the record type is closed
	Sp     span.Span
}

func (t *RecordType) Span() span.Span { return t.Sp }

// FunctionType is `(T1, T2) -> Ret`.
type FunctionType struct {
	Params []TypeExpr
	Ret    TypeExpr
	Sp     span.Span
}

func (t *FunctionType) Span() span.Span { return t.Sp }

// ErrType is a recovery placeholder, the type-grammar counterpart of
// ErrExpr.
type ErrType struct {
	Sp span.Span
}

func (t *ErrType) Span() span.Span { return t.Sp }
