package eval

import (
	"math/big"

	"github.com/neve-lang/neve/internal/ast"
)

// matchPattern tests v against p, binding every name p introduces into
// env on success. LocalIds are looked up from the graph's PatternLocals/
// ListRestLocals tables (populated once, statically, by internal/hir)
// rather than re-derived by walking p in lockstep with the resolver —
// unlike internal/checker's static whole-body pass, the evaluator only
// ever visits the single branch a match/if actually takes at runtime, so
// it cannot reconstruct the resolver's counter by accumulation.
func (ev *Evaluator) matchPattern(p ast.Pattern, v Value, env *Env) (bool, error) {
	switch pt := p.(type) {
	case *ast.WildcardPat:
		return true, nil
	case *ast.IdentPat:
		id, ok := ev.g.PatternLocals[pt]
		if !ok {
			return false, errf(pt.Sp, "EvalError", "internal error: unbound identifier pattern %q", pt.Name)
		}
		env.Bind(id, Forced(v))
		return true, nil
	case *ast.BindPat:
		id, ok := ev.g.PatternLocals[pt]
		if !ok {
			return false, errf(pt.Sp, "EvalError", "internal error: unbound binding pattern %q", pt.Name)
		}
		env.Bind(id, Forced(v))
		return ev.matchPattern(pt.Pattern, v, env)
	case *ast.LitPat:
		return matchLit(pt.Lit, v), nil
	case *ast.TuplePat:
		tup, ok := v.(Tuple)
		if !ok || len(tup) != len(pt.Elems) {
			return false, nil
		}
		for i, e := range pt.Elems {
			ok, err := ev.matchPattern(e, tup[i], env)
			if err != nil || !ok {
				return ok, err
			}
		}
		return true, nil
	case *ast.ListPat:
		return ev.matchListPattern(pt, v, env)
	case *ast.RecordPat:
		rec, ok := v.(*Record)
		if !ok {
			return false, nil
		}
		for _, f := range pt.Fields {
			fv, ok := rec.Get(f.Name)
			if !ok {
				return false, nil
			}
			ok2, err := ev.matchPattern(f.Pattern, fv, env)
			if err != nil || !ok2 {
				return ok2, err
			}
		}
		return true, nil
	case *ast.ConstructorPat:
		return ev.matchCtorPattern(pt, v, env)
	case *ast.OrPat:
		for _, alt := range pt.Alts {
			ok, err := ev.matchPattern(alt, v, env)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	case *ast.ErrPat:
		// Parser-error recovery placeholder: binds nothing and never
		// matches at runtime (a module containing one failed to check).
		return false, nil
	}
	return false, nil
}

func (ev *Evaluator) matchListPattern(pt *ast.ListPat, v Value, env *Env) (bool, error) {
	lst, ok := v.(*List)
	if !ok {
		if v == nil {
			lst = nil
		} else {
			return false, nil
		}
	}
	elems := lst.ToSlice()
	if pt.HasRest {
		if len(elems) < len(pt.Elems) {
			return false, nil
		}
	} else if len(elems) != len(pt.Elems) {
		return false, nil
	}
	for i, e := range pt.Elems {
		ok, err := ev.matchPattern(e, elems[i], env)
		if err != nil || !ok {
			return ok, err
		}
	}
	if pt.HasRest && pt.Rest != "" {
		id, ok := ev.g.ListRestLocals[pt]
		if !ok {
			return false, errf(pt.Sp, "EvalError", "internal error: unbound rest pattern %q", pt.Rest)
		}
		env.Bind(id, Forced(FromSlice(elems[len(pt.Elems):])))
	}
	return true, nil
}

func (ev *Evaluator) matchCtorPattern(pt *ast.ConstructorPat, v Value, env *Env) (bool, error) {
	ctor, ok := v.(*Ctor)
	if !ok {
		return false, nil
	}
	if ctor.Tag != pt.Path[len(pt.Path)-1] {
		return false, nil
	}
	if len(pt.Args) > len(ctor.Payload) {
		return false, nil
	}
	for i, a := range pt.Args {
		ok, err := ev.matchPattern(a, ctor.Payload[i], env)
		if err != nil || !ok {
			return ok, err
		}
	}
	return true, nil
}

func matchLit(lit ast.Expr, v Value) bool {
	switch l := lit.(type) {
	case *ast.IntLit:
		iv, ok := v.(Int)
		if !ok || iv.V == nil {
			return false
		}
		n, ok := new(big.Int).SetString(l.Lit, 0)
		return ok && iv.V.Cmp(n) == 0
	case *ast.FloatLit:
		fv, ok := v.(Float)
		return ok && float64(fv) == l.Value
	case *ast.BoolLit:
		bv, ok := v.(Bool)
		return ok && bool(bv) == l.Value
	case *ast.CharLit:
		cv, ok := v.(Char)
		return ok && rune(cv) == l.Value
	case *ast.StringLit:
		sv, ok := v.(Str)
		if !ok || len(l.Segments) != 1 || l.Segments[0].IsExpr {
			return false
		}
		return string(sv) == l.Segments[0].Literal
	}
	return false
}
