package eval

import (
	"github.com/neve-lang/neve/internal/ast"
	"github.com/neve-lang/neve/internal/hir"
	"github.com/neve-lang/neve/internal/span"
)

// stepBoundCall evaluates a call whose callee internal/checker resolved
// to a concrete trait-impl method (did): if the callee is `receiver.
// method(...)` sugar, receiver is forced and prepended as the method's
// implicit first (`self`) argument, matching how declareImpl/
// declareFnSignature typed the method's signature with self explicit in
// Params[0].
func (ev *Evaluator) stepBoundCall(c *ast.Call, did hir.DefId, env *Env, tail bool) (Value, *TailCall, error) {
	var selfVal Value
	haveSelf := false
	if fa, ok := c.Callee.(*ast.FieldAccess); ok {
		v, err := ev.force(fa.Receiver, env)
		if err != nil {
			return nil, nil, err
		}
		selfVal, haveSelf = v, true
	}
	calleeVal, err := ev.globalValue(did)
	if err != nil {
		return nil, nil, err
	}
	clos, ok := calleeVal.(*Closure)
	if !ok {
		return nil, nil, errf(c.Sp, "EvalError", "resolved trait method is not callable (got %s)", calleeVal.Type())
	}
	args := c.Args
	if haveSelf {
		// Splice the already-evaluated receiver in as a synthetic leading
		// argument by binding it directly rather than re-evaluating an
		// AST node for it.
		newEnv := NewEnv(clos.Env)
		if len(clos.Params) == 0 {
			return nil, nil, errf(c.Sp, "EvalError", "trait method %q takes no self parameter", c.Sp)
		}
		if err := ev.bindParam(clos.Params[0], Forced(selfVal), newEnv); err != nil {
			return nil, nil, err
		}
		return ev.applyBoundArgs(clos, clos.Params[1:], args, env, newEnv, tail)
	}
	return ev.applyCall(clos, args, env, tail)
}

// applyCallArgs dispatches a call given an already-evaluated callee.
func (ev *Evaluator) applyCallArgs(calleeVal Value, argExprs []ast.Expr, env *Env, tail bool, sp span.Span) (Value, *TailCall, error) {
	switch callee := calleeVal.(type) {
	case *Closure:
		return ev.applyCall(callee, argExprs, env, tail)
	case *Builtin:
		args := make([]Value, len(argExprs))
		for i, a := range argExprs {
			v, err := ev.force(a, env)
			if err != nil {
				return nil, nil, err
			}
			args[i] = v
		}
		v, err := callee.Fn(ev, args)
		return v, nil, err
	case *CtorFn:
		if len(argExprs) != callee.Arity {
			return nil, nil, errf(sp, "EvalError", "constructor %q takes %d argument(s), got %d", callee.Tag, callee.Arity, len(argExprs))
		}
		args := make([]Value, len(argExprs))
		for i, a := range argExprs {
			v, err := ev.force(a, env)
			if err != nil {
				return nil, nil, err
			}
			args[i] = v
		}
		return &Ctor{Tag: callee.Tag, Payload: args}, nil, nil
	default:
		return nil, nil, errf(sp, "EvalError", "value of type %s is not callable", calleeVal.Type())
	}
}

// applyCall evaluates argExprs against clos's parameter list (forcing
// each unless its parameter is declared `lazy` — the elimination-position
// rule for call arguments) and either hands back a TailCall (tail
// position) or applies clos immediately.
func (ev *Evaluator) applyCall(clos *Closure, argExprs []ast.Expr, env *Env, tail bool) (Value, *TailCall, error) {
	newEnv := NewEnv(clos.Env)
	return ev.applyBoundArgs(clos, clos.Params, argExprs, env, newEnv, tail)
}

// applyBoundArgs binds argExprs against params into newEnv (newEnv may
// already carry an earlier-bound `self`, hence params/newEnv being
// threaded separately from clos). Arguments are expressions in the
// caller's scope, so each is evaluated (or thunked, for a `lazy`
// parameter) against callerEnv, and only the result is bound into
// newEnv. Then either tail-calls or directly evaluates clos.Body.
func (ev *Evaluator) applyBoundArgs(clos *Closure, params []ast.Param, argExprs []ast.Expr, callerEnv, newEnv *Env, tail bool) (Value, *TailCall, error) {
	if len(argExprs) != len(params) {
		return nil, nil, errf(clos.Body.Span(), "EvalError", "function expects %d argument(s), got %d", len(params), len(argExprs))
	}
	for i, p := range params {
		var th *Thunk
		if p.Lazy {
			th = NewThunk(argExprs[i], callerEnv)
		} else {
			v, err := ev.force(argExprs[i], callerEnv)
			if err != nil {
				return nil, nil, err
			}
			th = Forced(v)
		}
		if err := ev.bindParam(p, th, newEnv); err != nil {
			return nil, nil, err
		}
	}
	if tail {
		return nil, &TailCall{Body: clos.Body, Env: newEnv}, nil
	}
	v, err := ev.applyClosureBody(clos.Body, newEnv)
	return v, nil, err
}

// bindParam binds th against p.Pattern. A bare identifier parameter (the
// overwhelming common case, and the only shape a `lazy` parameter can
// sensibly take since destructuring forces structure) binds the thunk
// directly, undisturbed; any other pattern shape forces th immediately
// to destructure it.
func (ev *Evaluator) bindParam(p ast.Param, th *Thunk, env *Env) error {
	if idp, ok := p.Pattern.(*ast.IdentPat); ok {
		id, ok := ev.g.PatternLocals[idp]
		if !ok {
			return errf(idp.Sp, "EvalError", "internal error: unbound parameter %q", idp.Name)
		}
		env.Bind(id, th)
		return nil
	}
	v, err := th.Force(ev)
	if err != nil {
		return err
	}
	ok, err := ev.matchPattern(p.Pattern, v, env)
	if err != nil {
		return err
	}
	if !ok {
		return errf(p.Sp, "EvalError", "parameter pattern did not match its argument")
	}
	return nil
}

// applyClosureBody is the one place (besides the top-level program
// entry point) that represents a genuine function-body boundary: a `?`
// that short-circuits out of body is caught here and becomes this
// call's ordinary return value, rather than continuing to unwind as a
// Go error into whatever expression happens to contain this call. A
// Thunk is deliberately not such a boundary: forcing a binding whose
// defining expression contains `?` must propagate the Err/None out of
// the function that wrote the `?`, not hand it back as the binding's
// value.
func (ev *Evaluator) applyClosureBody(body ast.Expr, env *Env) (Value, error) {
	v, err := ev.Eval(body, env)
	if sc, ok := err.(*shortCircuit); ok {
		return sc.Val, nil
	}
	return v, err
}

// Apply invokes fn (a Closure, Builtin, or CtorFn) with already-evaluated
// args. Exported for internal/stdlib's higher-order builtins (List.map,
// List.filter, List.fold, ...), which receive a function Value from Neve
// code and need to call back into it without an ast.Expr to evaluate.
func (ev *Evaluator) Apply(fn Value, args []Value) (Value, error) {
	return ev.applyValue(fn, args)
}

// applyValue invokes fn with already-evaluated args, with no thunking or
// tail-call elision — used by internal plumbing (function composition,
// and the higher-order stdlib builtins like List.map/List.filter) that
// already has Values in hand rather than unevaluated ast.Expr argument
// nodes.
func (ev *Evaluator) applyValue(fn Value, args []Value) (Value, error) {
	switch callee := fn.(type) {
	case *Closure:
		if len(args) != len(callee.Params) {
			return nil, errf(callee.Body.Span(), "EvalError", "function expects %d argument(s), got %d", len(callee.Params), len(args))
		}
		newEnv := NewEnv(callee.Env)
		for i, p := range callee.Params {
			if err := ev.bindParam(p, Forced(args[i]), newEnv); err != nil {
				return nil, err
			}
		}
		return ev.applyClosureBody(callee.Body, newEnv)
	case *Builtin:
		return callee.Fn(ev, args)
	case *CtorFn:
		if len(args) != callee.Arity {
			return nil, errf(span.Span{}, "EvalError", "constructor %q takes %d argument(s), got %d", callee.Tag, callee.Arity, len(args))
		}
		return &Ctor{Tag: callee.Tag, Payload: args}, nil
	default:
		return nil, errf(span.Span{}, "EvalError", "value of type %s is not callable", fn.Type())
	}
}
