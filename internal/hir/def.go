// Package hir resolves a parsed AST module into name bindings: every
// top-level (or enum-variant/trait-method/impl-method) definition gets a
// DefId, every local binding (parameter, let, pattern variable) gets a
// LocalId, and every identifier/qualified-access expression in the AST
// is recorded against its resolved target in a side table — an AST with
// every identifier reference replaced by a DefId (global) or LocalId
// (function-scoped).
//
// Rather than cloning the AST into a second, parallel node algebra (every
// later stage would then need to consume two near-identical shapes), HIR
// keeps the original *ast.Module and layers a Resolver's side tables on
// top of it — a symbol-table chain generalized here to a multi-module
// graph with deferred re-export resolution.
package hir

import (
	"github.com/neve-lang/neve/internal/ast"
	"github.com/neve-lang/neve/internal/span"
)

// DefId identifies one global definition across the whole module graph.
// The zero value is reserved and never assigned to a real definition.
type DefId uint32

// LocalId identifies one function-scoped binding (a parameter, a block
// let, or a pattern variable), distinct from DefId. Scoped to a single
// Def's body; two different Defs may reuse the same LocalId values.
type LocalId uint32

// ModuleID identifies one loaded source file within a Graph.
type ModuleID uint32

// DefKind tags what kind of thing a DefId names.
type DefKind int

const (
	DefLet DefKind = iota
	DefFn
	DefType
	DefStruct
	DefEnum
	DefEnumVariant
	DefTrait
	DefTraitMethod
	DefImplMethod
)

func (k DefKind) String() string {
	switch k {
	case DefLet:
		return "let"
	case DefFn:
		return "fn"
	case DefType:
		return "type"
	case DefStruct:
		return "struct"
	case DefEnum:
		return "enum"
	case DefEnumVariant:
		return "enum variant"
	case DefTrait:
		return "trait"
	case DefTraitMethod:
		return "trait method"
	case DefImplMethod:
		return "impl method"
	default:
		return "definition"
	}
}

// Def is one resolved global definition.
type Def struct {
	ID     DefId
	Kind   DefKind
	Name   string
	Module ModuleID
	Vis    ast.Visibility
	Sp     span.Span
	// Node is the AST definition this Def was registered from: *ast.LetDef,
	// *ast.FnDef, *ast.TypeDef, *ast.StructDef, *ast.EnumDef, *ast.TraitDef,
	// a *ast.FnDef belonging to an ImplDef's Methods, or an *ast.FnSig for a
	// trait method.
	Node ast.Node
	// Owner is the enclosing type/trait/impl's DefId for
	// DefEnumVariant/DefTraitMethod/DefImplMethod, 0 otherwise.
	Owner DefId
}
