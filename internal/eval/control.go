package eval

import "github.com/neve-lang/neve/internal/ast"

func (ev *Evaluator) stepBlock(b *ast.Block, env *Env, tail bool) (Value, *TailCall, error) {
	inner := NewEnv(env)
	for _, let := range b.Lets {
		srcTh := NewThunk(let.Value, inner)
		if idp, ok := let.Pattern.(*ast.IdentPat); ok {
			id, ok := ev.g.PatternLocals[idp]
			if !ok {
				return nil, nil, errf(idp.Sp, "EvalError", "internal error: unbound let %q", idp.Name)
			}
			inner.Bind(id, srcTh)
			continue
		}
		// A destructuring let forces its source eagerly: true per-field
		// laziness would need a thunk over a projection of srcTh rather
		// than over srcTh itself, which this tree-walker does not build.
		v, err := srcTh.Force(ev)
		if err != nil {
			return nil, nil, err
		}
		ok, err := ev.matchPattern(let.Pattern, v, inner)
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			return nil, nil, errf(let.Sp, "EvalError", "let pattern did not match its value")
		}
	}
	return ev.step(b.Tail, inner, tail)
}

func (ev *Evaluator) stepIf(i *ast.If, env *Env, tail bool) (Value, *TailCall, error) {
	cond, err := ev.force(i.Cond, env)
	if err != nil {
		return nil, nil, err
	}
	b, ok := cond.(Bool)
	if !ok {
		return nil, nil, errf(i.Cond.Span(), "EvalError", "if condition is not a Bool (got %s)", cond.Type())
	}
	if bool(b) {
		return ev.step(i.Then, env, tail)
	}
	return ev.step(i.Else, env, tail)
}

func (ev *Evaluator) stepMatch(m *ast.Match, env *Env, tail bool) (Value, *TailCall, error) {
	scrut, err := ev.force(m.Scrutinee, env)
	if err != nil {
		return nil, nil, err
	}
	for _, arm := range m.Arms {
		armEnv := NewEnv(env)
		ok, err := ev.matchPattern(arm.Pattern, scrut, armEnv)
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			continue
		}
		if arm.Guard != nil {
			gv, err := ev.force(arm.Guard, armEnv)
			if err != nil {
				return nil, nil, err
			}
			gb, ok := gv.(Bool)
			if !ok || !bool(gb) {
				continue
			}
		}
		return ev.step(arm.Body, armEnv, tail)
	}
	return nil, nil, errf(m.Sp, "EvalError", "non-exhaustive match: no arm matched %s", Show(scrut))
}

func (ev *Evaluator) compClauses(clauses []ast.CompClause, idx int, env *Env, result ast.Expr) (*List, error) {
	if idx == len(clauses) {
		v, err := ev.force(result, env)
		if err != nil {
			return nil, err
		}
		return Cons(v, nil), nil
	}
	c := clauses[idx]
	if c.Bind != nil {
		srcV, err := ev.force(c.Source, env)
		if err != nil {
			return nil, err
		}
		lst, ok := srcV.(*List)
		if !ok && srcV != nil {
			return nil, errf(c.Source.Span(), "EvalError", "comprehension source is not a List (got %s)", srcV.Type())
		}
		var accum []Value
		for _, el := range lst.ToSlice() {
			childEnv := NewEnv(env)
			ok, err := ev.matchPattern(c.Bind, el, childEnv)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
			sub, err := ev.compClauses(clauses, idx+1, childEnv, result)
			if err != nil {
				return nil, err
			}
			accum = append(accum, sub.ToSlice()...)
		}
		return FromSlice(accum), nil
	}
	gv, err := ev.force(c.Guard, env)
	if err != nil {
		return nil, err
	}
	gb, ok := gv.(Bool)
	if !ok || !bool(gb) {
		return nil, nil
	}
	return ev.compClauses(clauses, idx+1, env, result)
}

// stepCall evaluates a call expression: trait-dispatched method calls
// (resolved statically to a concrete impl DefId by internal/checker,
// recorded in callBoundDefs) are routed straight to that DefId's
// closure; everything else evaluates its callee to a Value and
// dispatches on its runtime shape.
func (ev *Evaluator) stepCall(c *ast.Call, env *Env, tail bool) (Value, *TailCall, error) {
	if did, ok := ev.callBoundDefs[c]; ok {
		return ev.stepBoundCall(c, did, env, tail)
	}
	calleeVal, err := ev.force(c.Callee, env)
	if err != nil {
		return nil, nil, err
	}
	return ev.applyCallArgs(calleeVal, c.Args, env, tail, c.Sp)
}

