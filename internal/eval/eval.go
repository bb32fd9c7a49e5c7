package eval

import (
	"math/big"

	"github.com/neve-lang/neve/internal/ast"
	"github.com/neve-lang/neve/internal/hir"
	"github.com/neve-lang/neve/internal/span"
)

// TailCall is a replaced stack frame: instead of recursing into a
// closure's body via a fresh Go call, step returns one of these when the
// call occurs in tail position, and Eval's trampoline loop substitutes
// it for the current frame — a direct or mutual tail call must not grow
// the Go call stack.
type TailCall struct {
	Body ast.Expr
	Env  *Env
}

// shortCircuit is how `?` (ast.TryExpr) unwinds an Err out of the
// innermost enclosing function body without disturbing any
// in-flight sibling evaluation: `?` short-circuits the *current
// function*, not the whole program. It travels as an
// ordinary Go error through every intermediate, uninvolved call — an
// operand, an argument, a record field, a thunk being forced — and is
// converted back into a plain Value only at the places that represent a
// genuine boundary: applyClosureBody (a non-tail closure application),
// globalValue (a top-level definition), and Run (the top-level program
// entry point). Nothing else needs to know it exists.
type shortCircuit struct{ Val Value }

func (s *shortCircuit) Error() string { return "unhandled ? propagation" }

// Evaluator holds everything shared across one program's evaluation:
// the resolved module graph, the per-DefId global thunk table (built
// once, lazily forced, and memoized, giving every top-level binding the
// sharing its semantics require), the trait-dispatch table the checker
// computed, and the standard-library builtin registry.
type Evaluator struct {
	g             *hir.Graph
	globals       map[hir.DefId]*Thunk
	callBoundDefs map[*ast.Call]hir.DefId
	Builtins      map[string]*Builtin
}

// Eval fully reduces e in env to a Value, running the trampoline until
// no tail call remains. e is always evaluated in tail position relative
// to this call — Eval is also used, uniformly, to force any
// sub-expression (an operand, an argument, a thunk's body): in those
// uses "tail position" just means "this Eval call's own trampoline,"
// which is the correct, and only, unit that needs one.
func (ev *Evaluator) Eval(e ast.Expr, env *Env) (Value, error) {
	for {
		v, tail, err := ev.step(e, env, true)
		if err != nil {
			return nil, err
		}
		if tail == nil {
			return v, nil
		}
		e, env = tail.Body, tail.Env
	}
}

// force evaluates e as a non-tail sub-expression; an alias for Eval kept
// distinct at call sites purely for readability — every elimination
// position reads as a `force` call here.
func (ev *Evaluator) force(e ast.Expr, env *Env) (Value, error) {
	return ev.Eval(e, env)
}

// step evaluates e once. Most expression kinds fully reduce and return
// (value, nil, nil); the four tail positions — if branches, match arms,
// a block's tail expression, and a call in tail position — may instead
// return a non-nil TailCall for Eval's trampoline to continue with.
func (ev *Evaluator) step(e ast.Expr, env *Env, tail bool) (Value, *TailCall, error) {
	switch ex := e.(type) {
	case *ast.IntLit:
		n, ok := new(big.Int).SetString(ex.Lit, 0)
		if !ok {
			return nil, nil, errf(ex.Sp, "EvalError", "malformed integer literal %q", ex.Lit)
		}
		return Int{V: n}, nil, nil
	case *ast.FloatLit:
		return Float(ex.Value), nil, nil
	case *ast.BoolLit:
		return Bool(ex.Value), nil, nil
	case *ast.CharLit:
		return Char(ex.Value), nil, nil
	case *ast.StringLit:
		v, err := ev.evalString(ex, env)
		return v, nil, err
	case *ast.PathLit:
		return PathV(ex.Value), nil, nil
	case *ast.Ident:
		v, err := ev.evalIdent(ex, env)
		return v, nil, err
	case *ast.ListLit:
		elems := make([]Value, len(ex.Elems))
		for i, el := range ex.Elems {
			v, err := ev.force(el, env)
			if err != nil {
				return nil, nil, err
			}
			elems[i] = v
		}
		return FromSlice(elems), nil, nil
	case *ast.ListComp:
		lst, err := ev.compClauses(ex.Clauses, 0, env, ex.Result)
		return lst, nil, err
	case *ast.TupleLit:
		elems := make(Tuple, len(ex.Elems))
		for i, el := range ex.Elems {
			v, err := ev.force(el, env)
			if err != nil {
				return nil, nil, err
			}
			elems[i] = v
		}
		if len(elems) == 0 {
			return Unit{}, nil, nil
		}
		return elems, nil, nil
	case *ast.RecordLit:
		v, err := ev.evalRecordLit(ex, env)
		return v, nil, err
	case *ast.Block:
		return ev.stepBlock(ex, env, tail)
	case *ast.Lambda:
		return &Closure{Params: ex.Params, Body: ex.Body, Env: env}, nil, nil
	case *ast.Call:
		return ev.stepCall(ex, env, tail)
	case *ast.FieldAccess:
		v, err := ev.evalFieldAccess(ex, env)
		return v, nil, err
	case *ast.Index:
		v, err := ev.evalIndex(ex, env)
		return v, nil, err
	case *ast.Match:
		return ev.stepMatch(ex, env, tail)
	case *ast.If:
		return ev.stepIf(ex, env, tail)
	case *ast.BinaryExpr:
		v, err := ev.evalBinary(ex, env)
		return v, nil, err
	case *ast.UnaryExpr:
		v, err := ev.evalUnary(ex, env)
		return v, nil, err
	case *ast.PipeExpr:
		return ev.stepPipe(ex, env, tail)
	case *ast.TryExpr:
		v, err := ev.evalTry(ex, env)
		return v, nil, err
	case *ast.SafeAccess:
		v, err := ev.evalSafeAccess(ex, env)
		return v, nil, err
	case *ast.Coalesce:
		v, err := ev.evalCoalesce(ex, env)
		return v, nil, err
	case *ast.Compose:
		v, err := ev.evalCompose(ex, env)
		return v, nil, err
	case *ast.ErrExpr:
		return nil, nil, errf(ex.Sp, "EvalError", "attempted to evaluate an error-recovery placeholder")
	}
	return nil, nil, errf(e.Span(), "EvalError", "unhandled expression kind %T", e)
}

func (ev *Evaluator) evalIdent(ex *ast.Ident, env *Env) (Value, error) {
	ref, ok := ev.g.Refs[ex]
	if !ok {
		if b, ok := ev.Builtins[ex.Name]; ok {
			return b, nil
		}
		return nil, errf(ex.Sp, "EvalError", "internal error: unresolved identifier %q", ex.Name)
	}
	if ref.Kind == hir.RefLocal {
		th, ok := env.Lookup(ref.Local)
		if !ok {
			return nil, errf(ex.Sp, "EvalError", "internal error: local %d not bound", ref.Local)
		}
		return th.Force(ev)
	}
	return ev.globalValue(ref.Def)
}

// globalValue forces the shared thunk backing a top-level definition:
// every top-level let/fn is itself just a thunk, forced on first demand
// and shared thereafter. A top-level let has no enclosing function, so
// a `?` in its defining expression resolves here, at the definition
// boundary, the same way Run resolves one at the program's outermost
// expression.
func (ev *Evaluator) globalValue(id hir.DefId) (Value, error) {
	th, ok := ev.globals[id]
	if !ok {
		return nil, errf(span.Span{}, "EvalError", "internal error: no global thunk registered for def %d", id)
	}
	v, err := th.Force(ev)
	if sc, ok := err.(*shortCircuit); ok {
		return sc.Val, nil
	}
	return v, err
}
