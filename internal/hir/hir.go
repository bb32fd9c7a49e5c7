package hir

import (
	"github.com/neve-lang/neve/internal/ast"
	"github.com/neve-lang/neve/internal/diag"
)

// Build runs the full two-pass loader: Load collects every definition,
// resolves import edges, and fixed-point-resolves `pub import` re-exports;
// Resolve then binds every identifier, qualified-access, and
// constructor-pattern reference now that every module's export surface
// has settled. asts is keyed by each module's dotted import path (e.g.
// "crate.lib.util"). builtins names every identifier the standard
// library provides (internal/stdlib.Prelude's keys): a bare name found
// there is left unresolved in g.Refs rather than reported as an
// undefined name, the same treatment an unresolved-but-not-erroneous
// reference already gets from checker.inferIdent (fresh type variable)
// and eval.Evaluator.evalIdent (falls back to ev.Builtins). Pass nil
// for a builtins-free resolution (tests pinning down resolution in
// isolation).
func Build(asts map[string]*ast.Module, sink *diag.Sink, builtins map[string]bool) *Graph {
	g := Load(asts, sink)
	Resolve(g, sink, builtins)
	return g
}
