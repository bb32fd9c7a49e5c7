// Package ast defines Neve's abstract syntax tree: the node algebra produced
// by internal/parser and consumed by internal/hir. Node/Expr/Pattern/TypeExpr/Def
// are kept as separate interfaces rather than one big Node switch, so each
// syntax category gets its own closed set of constructors.
package ast

import "github.com/neve-lang/neve/internal/span"

// Node is the base interface every AST node implements.
type Node interface {
	// Span returns the node's source extent, used for diagnostics and by
	// internal/hir to stamp DefIds with their declaration site.
	Span() span.Span
}

// Expr is any node that produces a value.
type Expr interface {
	Node
	exprNode()
}

// Pattern is any node that can appear on the left of a match arm, a let
// binding, or a lambda parameter.
type Pattern interface {
	Node
	patternNode()
}

// TypeExpr is a type as written in source, before the checker resolves it
// to an internal/types.Type.
type TypeExpr interface {
	Node
	typeExprNode()
}

// Def is a top-level or nested definition: let, fn, type, struct, enum,
// trait, impl, or import.
type Def interface {
	Node
	defNode()
}

// Visibility is one of the four visibility levels internal/hir assigns to
// every DefId: public, crate, super, private.
type Visibility int

const (
	Private Visibility = iota
	Public
	Crate
	Super
)

func (v Visibility) String() string {
	switch v {
	case Public:
		return "pub"
	case Crate:
		return "pub(crate)"
	case Super:
		return "pub(super)"
	default:
		return "private"
	}
}

// Module is the root node of a single parsed source file.
type Module struct {
	Path string // import path this module was loaded as, e.g. "crate.lib.util"
	Defs []Def
	Sp   span.Span
}

func (m *Module) Span() span.Span { return m.Sp }

// Param is a lambda or fn parameter: a binding pattern with an optional
// type annotation, plus the `lazy` modifier marking a call-by-need
// parameter.
type Param struct {
	Pattern Pattern
	Type    TypeExpr // nil if unannotated
	Lazy    bool
	Sp      span.Span
}

func (p Param) Span() span.Span { return p.Sp }
