package eval

import (
	"github.com/neve-lang/neve/internal/ast"
	"github.com/neve-lang/neve/internal/hir"
)

// NewEvaluator builds an Evaluator over a resolved module graph, wiring
// up one lazily-forced global thunk per top-level definition that
// actually produces a runtime value: every top-level let/fn is itself
// just a thunk, forced on first demand and shared thereafter.
// callBoundDefs is internal/checker's statically-resolved trait-dispatch
// table (Checker.CallBoundDefs); builtins is the standard-library
// registry.
func NewEvaluator(g *hir.Graph, callBoundDefs map[*ast.Call]hir.DefId, builtins map[string]*Builtin) *Evaluator {
	ev := &Evaluator{
		g:             g,
		globals:       make(map[hir.DefId]*Thunk),
		callBoundDefs: callBoundDefs,
		Builtins:      builtins,
	}
	topEnv := NewEnv(nil)
	for _, d := range g.AllDefs {
		th := globalThunk(d, topEnv)
		if th != nil {
			ev.globals[d.ID] = th
		}
	}
	return ev
}

// globalThunk builds the thunk backing one top-level Def, or nil for
// defs that carry no runtime value of their own (types, structs,
// traits, and trait methods with no default body — those are reachable
// only through callBoundDefs, never through a bare global lookup).
func globalThunk(d *hir.Def, topEnv *Env) *Thunk {
	switch d.Kind {
	case hir.DefLet:
		ld := d.Node.(*ast.LetDef)
		return NewThunk(ld.Value, topEnv)
	case hir.DefFn:
		fd := d.Node.(*ast.FnDef)
		return Forced(&Closure{Name: fd.Name, Params: fd.Params, Body: fd.Body, Env: topEnv})
	case hir.DefImplMethod:
		fd := d.Node.(*ast.FnDef)
		return Forced(&Closure{Name: fd.Name, Params: fd.Params, Body: fd.Body, Env: topEnv})
	case hir.DefTraitMethod:
		sig := d.Node.(*ast.FnSig)
		if sig.Default == nil {
			return nil
		}
		return Forced(&Closure{Name: sig.Name, Params: sig.Params, Body: sig.Default, Env: topEnv})
	case hir.DefEnumVariant:
		_, variant, ok := hir.VariantOf(d)
		if !ok {
			return nil
		}
		if len(variant.Payload) == 0 {
			return Forced(&Ctor{Tag: variant.Name})
		}
		return Forced(&CtorFn{Tag: variant.Name, Arity: len(variant.Payload)})
	default:
		return nil
	}
}

// Run evaluates e against the global environment, converting a `?` that
// escapes all the way out of every user function back into its Err
// value rather than leaking the shortCircuit sentinel to the caller —
// the top-level program-entry boundary for a bare `?` at a module's
// outermost expression.
func (ev *Evaluator) Run(e ast.Expr, env *Env) (Value, error) {
	v, err := ev.Eval(e, env)
	if sc, ok := err.(*shortCircuit); ok {
		return sc.Val, nil
	}
	return v, err
}

// TopEnv returns a fresh child environment of the (outer-less) global
// scope, suitable for evaluating a REPL line or a `run`-command's
// top-level expression against every resolved global.
func (ev *Evaluator) TopEnv() *Env {
	return NewEnv(nil)
}

// ForceGlobal forces the top-level binding id directly, by DefId rather
// than by re-walking an *ast.Ident — the only lookup a host embedding
// this package (pkg/neve) can perform, since it has no parsed Ident node
// of its own that ev.g.Refs was ever populated against. This is what
// Run/Eval's caller should use to read a module's entry binding back out
// once evaluation has wired every global thunk.
func (ev *Evaluator) ForceGlobal(id hir.DefId) (Value, error) {
	return ev.globalValue(id)
}
