package ast

import "github.com/neve-lang/neve/internal/span"

func (*LetDef) defNode()    {}
func (*FnDef) defNode()     {}
func (*TypeDef) defNode()   {}
func (*StructDef) defNode() {}
func (*EnumDef) defNode()   {}
func (*TraitDef) defNode()  {}
func (*ImplDef) defNode()   {}
func (*ImportDef) defNode() {}

// TraitRef is a trait name applied to arguments, as it appears in a bound
// (`T: Show`) or an impl header (`impl Show for Point`).
type TraitRef struct {
	Path []string
	Args []TypeExpr
	Sp   span.Span
}

// GenericParam is one `<T: Bound1 + Bound2>` type parameter.
type GenericParam struct {
	Name   string
	Bounds []TraitRef
	Sp     span.Span
}

// LetDef is a top-level `let name = value` binding.
type LetDef struct {
	Vis     Visibility
	Pattern Pattern
	Type    TypeExpr // nil if unannotated
	Value   Expr
	Sp      span.Span
}

func (d *LetDef) Span() span.Span { return d.Sp }

// FnDef is `fn name<generics>(params) -> ret { body }`.
type FnDef struct {
	Vis      Visibility
	Name     string
	Generics []GenericParam
	Params   []Param
	Ret      TypeExpr // nil if unannotated (inferred)
	Body     Expr
	Sp       span.Span
}

func (d *FnDef) Span() span.Span { return d.Sp }

// TypeDef is a type alias: `type Name<generics> = Type`.
type TypeDef struct {
	Vis      Visibility
	Name     string
	Generics []GenericParam
	Alias    TypeExpr
	Sp       span.Span
}

func (d *TypeDef) Span() span.Span { return d.Sp }

// FieldDef is one `name: Type` struct field.
type FieldDef struct {
	Name string
	Type TypeExpr
	Sp   span.Span
}

// StructDef is `struct Name<generics> { field: Type, ... }`.
type StructDef struct {
	Vis      Visibility
	Name     string
	Generics []GenericParam
	Fields   []FieldDef
	Sp       span.Span
}

func (d *StructDef) Span() span.Span { return d.Sp }

// VariantDef is one enum variant with positional payload types, e.g.
// `Some(a)` or `None`.
type VariantDef struct {
	Name    string
	Payload []TypeExpr
	Sp      span.Span
}

// EnumDef is `enum Name<generics> { Variant(Type, ...), ... }`.
type EnumDef struct {
	Vis      Visibility
	Name     string
	Generics []GenericParam
	Variants []VariantDef
	Sp       span.Span
}

func (d *EnumDef) Span() span.Span { return d.Sp }

// AssocTypeDecl declares an associated type name inside a trait body,
// e.g. `type Item` in `trait Iterator { type Item ... }`.
type AssocTypeDecl struct {
	Name string
	Sp   span.Span
}

// FnSig is a method signature with no body, as it appears in a trait
// definition.
type FnSig struct {
	Name     string
	Generics []GenericParam
	Params   []Param
	Ret      TypeExpr
	Default  Expr // non-nil if the trait supplies a default body
	Sp       span.Span
}

func (s *FnSig) Span() span.Span { return s.Sp }

// TraitDef is `trait Name<generics> { type Assoc ... fn method(...) -> T }`.
type TraitDef struct {
	Vis        Visibility
	Name       string
	Generics   []GenericParam
	Supers     []TraitRef // supertraits this trait requires
	AssocTypes []AssocTypeDecl
	Methods    []FnSig
	Sp         span.Span
}

func (d *TraitDef) Span() span.Span { return d.Sp }

// AssocTypeBinding binds an associated type inside an impl block, e.g.
// `type Item = Int`.
type AssocTypeBinding struct {
	Name string
	Type TypeExpr
	Sp   span.Span
}

// ImplDef is `impl<generics> Trait for Target { ... }`, or an inherent
// impl `impl<generics> Target { ... }` when Trait is nil.
type ImplDef struct {
	Generics   []GenericParam
	Trait      *TraitRef // nil for an inherent impl
	Target     TypeExpr
	Bounds     []GenericParam // where-clause-style extra bounds on Generics
	AssocTypes []AssocTypeBinding
	Methods    []*FnDef
	Sp         span.Span
}

func (d *ImplDef) Span() span.Span { return d.Sp }

// ImportDef is `import path.to.module` or `import path.to.module as alias`,
// optionally `pub import ...` to re-export the imported names.
type ImportDef struct {
	Vis   Visibility
	Path  []string
	Alias string // "" if no `as` clause
	Sp    span.Span
}

func (d *ImportDef) Span() span.Span { return d.Sp }
