package eval

import (
	"math"
	"math/big"

	"github.com/neve-lang/neve/internal/ast"
)

func (ev *Evaluator) evalBinary(b *ast.BinaryExpr, env *Env) (Value, error) {
	// And/Or short-circuit: the right operand is only an elimination
	// position when the left one didn't already decide the result.
	// Arithmetic/compare/concat operands are always forced; boolean
	// operators are deliberately left out of that set — they force only
	// as much as needed.
	if b.Op == ast.OpAnd || b.Op == ast.OpOr {
		lv, err := ev.force(b.Left, env)
		if err != nil {
			return nil, err
		}
		lb, ok := lv.(Bool)
		if !ok {
			return nil, errf(b.Left.Span(), "EvalError", "operand of && /|| is not a Bool (got %s)", lv.Type())
		}
		if b.Op == ast.OpAnd && !bool(lb) {
			return Bool(false), nil
		}
		if b.Op == ast.OpOr && bool(lb) {
			return Bool(true), nil
		}
		rv, err := ev.force(b.Right, env)
		if err != nil {
			return nil, err
		}
		rb, ok := rv.(Bool)
		if !ok {
			return nil, errf(b.Right.Span(), "EvalError", "operand of && /|| is not a Bool (got %s)", rv.Type())
		}
		return Bool(rb), nil
	}

	lv, err := ev.force(b.Left, env)
	if err != nil {
		return nil, err
	}
	rv, err := ev.force(b.Right, env)
	if err != nil {
		return nil, err
	}

	switch b.Op {
	case ast.OpEq:
		return Bool(valueEqual(lv, rv)), nil
	case ast.OpNe:
		return Bool(!valueEqual(lv, rv)), nil
	case ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe:
		cmp, err := valueCompare(lv, rv)
		if err != nil {
			return nil, errf(b.Sp, "EvalError", "%s", err)
		}
		switch b.Op {
		case ast.OpLt:
			return Bool(cmp < 0), nil
		case ast.OpLe:
			return Bool(cmp <= 0), nil
		case ast.OpGt:
			return Bool(cmp > 0), nil
		default:
			return Bool(cmp >= 0), nil
		}
	case ast.OpConcat:
		return evalConcat(lv, rv)
	}

	li, lok := lv.(Int)
	ri, rok := rv.(Int)
	if lok && rok {
		return intArith(b.Op, li, ri)
	}
	lf, lok := lv.(Float)
	rf, rok := rv.(Float)
	if lok && rok {
		return floatArith(b.Op, lf, rf)
	}
	return nil, errf(b.Sp, "EvalError", "arithmetic operator requires two Ints or two Floats (got %s and %s)", lv.Type(), rv.Type())
}

func intArith(op ast.BinOp, a, b Int) (Value, error) {
	switch op {
	case ast.OpAdd:
		return Int{V: new(big.Int).Add(a.V, b.V)}, nil
	case ast.OpSub:
		return Int{V: new(big.Int).Sub(a.V, b.V)}, nil
	case ast.OpMul:
		return Int{V: new(big.Int).Mul(a.V, b.V)}, nil
	case ast.OpDiv:
		if b.V.Sign() == 0 {
			return nil, &EvalError{Kind: "EvalError", Message: "division by zero"}
		}
		return Int{V: new(big.Int).Quo(a.V, b.V)}, nil
	case ast.OpMod:
		if b.V.Sign() == 0 {
			return nil, &EvalError{Kind: "EvalError", Message: "modulo by zero"}
		}
		return Int{V: new(big.Int).Rem(a.V, b.V)}, nil
	case ast.OpPow:
		if b.V.Sign() < 0 {
			return nil, &EvalError{Kind: "EvalError", Message: "Int exponent must be non-negative"}
		}
		return Int{V: new(big.Int).Exp(a.V, b.V, nil)}, nil
	}
	return nil, &EvalError{Kind: "EvalError", Message: "unhandled Int operator"}
}

func floatArith(op ast.BinOp, a, b Float) (Value, error) {
	switch op {
	case ast.OpAdd:
		return a + b, nil
	case ast.OpSub:
		return a - b, nil
	case ast.OpMul:
		return a * b, nil
	case ast.OpDiv:
		return a / b, nil
	case ast.OpMod:
		return Float(math.Mod(float64(a), float64(b))), nil
	case ast.OpPow:
		return Float(math.Pow(float64(a), float64(b))), nil
	}
	return nil, &EvalError{Kind: "EvalError", Message: "unhandled Float operator"}
}

func evalConcat(l, r Value) (Value, error) {
	if ls, ok := l.(Str); ok {
		if rs, ok := r.(Str); ok {
			return ls + rs, nil
		}
	}
	if ll, ok := l.(*List); ok {
		if rl, ok := r.(*List); ok {
			return Concat(ll, rl), nil
		}
	}
	return nil, &EvalError{Kind: "EvalError", Message: "++ requires two Strings or two Lists"}
}

// valueEqual is structural equality over every Value shape — the Eq
// trait instances for primitives and aggregates.
func valueEqual(a, b Value) bool {
	switch av := a.(type) {
	case Int:
		bv, ok := b.(Int)
		return ok && av.V.Cmp(bv.V) == 0
	case Float:
		bv, ok := b.(Float)
		return ok && av == bv
	case Bool:
		bv, ok := b.(Bool)
		return ok && av == bv
	case Char:
		bv, ok := b.(Char)
		return ok && av == bv
	case Str:
		bv, ok := b.(Str)
		return ok && av == bv
	case PathV:
		bv, ok := b.(PathV)
		return ok && av == bv
	case Unit:
		_, ok := b.(Unit)
		return ok
	case *List:
		bv, ok := b.(*List)
		if !ok {
			return false
		}
		ae, be := av.ToSlice(), bv.ToSlice()
		if len(ae) != len(be) {
			return false
		}
		for i := range ae {
			if !valueEqual(ae[i], be[i]) {
				return false
			}
		}
		return true
	case Tuple:
		bv, ok := b.(Tuple)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !valueEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	case *Record:
		bv, ok := b.(*Record)
		if !ok || len(av.Fields) != len(bv.Fields) {
			return false
		}
		for _, f := range av.Fields {
			ov, ok := bv.Get(f.Name)
			if !ok || !valueEqual(f.Value, ov) {
				return false
			}
		}
		return true
	case *Ctor:
		bv, ok := b.(*Ctor)
		if !ok || av.Tag != bv.Tag || len(av.Payload) != len(bv.Payload) {
			return false
		}
		for i := range av.Payload {
			if !valueEqual(av.Payload[i], bv.Payload[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// valueCompare orders two values of the same primitive shape, returning
// -1/0/1; Lists/Tuples order lexicographically, following the Ord
// derivation for product/sum types.
func valueCompare(a, b Value) (int, error) {
	switch av := a.(type) {
	case Int:
		bv, ok := b.(Int)
		if !ok {
			break
		}
		return av.V.Cmp(bv.V), nil
	case Float:
		bv, ok := b.(Float)
		if !ok {
			break
		}
		switch {
		case av < bv:
			return -1, nil
		case av > bv:
			return 1, nil
		default:
			return 0, nil
		}
	case Char:
		bv, ok := b.(Char)
		if !ok {
			break
		}
		return int(av) - int(bv), nil
	case Str:
		bv, ok := b.(Str)
		if !ok {
			break
		}
		switch {
		case av < bv:
			return -1, nil
		case av > bv:
			return 1, nil
		default:
			return 0, nil
		}
	case PathV:
		bv, ok := b.(PathV)
		if !ok {
			break
		}
		switch {
		case av < bv:
			return -1, nil
		case av > bv:
			return 1, nil
		default:
			return 0, nil
		}
	case *List:
		bv, ok := b.(*List)
		if !ok {
			break
		}
		ae, be := av.ToSlice(), bv.ToSlice()
		for i := 0; i < len(ae) && i < len(be); i++ {
			c, err := valueCompare(ae[i], be[i])
			if err != nil {
				return 0, err
			}
			if c != 0 {
				return c, nil
			}
		}
		return len(ae) - len(be), nil
	case Tuple:
		bv, ok := b.(Tuple)
		if !ok {
			break
		}
		for i := 0; i < len(av) && i < len(bv); i++ {
			c, err := valueCompare(av[i], bv[i])
			if err != nil {
				return 0, err
			}
			if c != 0 {
				return c, nil
			}
		}
		return len(av) - len(bv), nil
	}
	return 0, &EvalError{Kind: "EvalError", Message: "values are not ordered against each other"}
}
