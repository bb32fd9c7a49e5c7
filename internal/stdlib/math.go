package stdlib

import (
	"math"
	"math/big"

	"github.com/neve-lang/neve/internal/eval"
)

func mathBuiltins() map[string]*eval.Builtin {
	return map[string]*eval.Builtin{
		"abs":   builtin("abs", 1, biAbs),
		"min":   builtin("min", 2, biMin),
		"max":   builtin("max", 2, biMax),
		"sqrt":  builtin("sqrt", 1, biSqrt),
		"floor": builtin("floor", 1, biFloor),
		"ceil":  builtin("ceil", 1, biCeil),
	}
}

func biAbs(ev *eval.Evaluator, args []eval.Value) (eval.Value, error) {
	if len(args) != 1 {
		return nil, wantArity("abs", 1, len(args))
	}
	switch v := args[0].(type) {
	case eval.Int:
		return eval.Int{V: new(big.Int).Abs(v.V)}, nil
	case eval.Float:
		return eval.Float(math.Abs(float64(v))), nil
	default:
		return nil, errf("abs() expects Int or Float, got %s", args[0].Type())
	}
}

func biMin(ev *eval.Evaluator, args []eval.Value) (eval.Value, error) {
	if len(args) != 2 {
		return nil, wantArity("min", 2, len(args))
	}
	return numericCompare(args[0], args[1], "min", func(cmp int) bool { return cmp <= 0 })
}

func biMax(ev *eval.Evaluator, args []eval.Value) (eval.Value, error) {
	if len(args) != 2 {
		return nil, wantArity("max", 2, len(args))
	}
	return numericCompare(args[0], args[1], "max", func(cmp int) bool { return cmp >= 0 })
}

// numericCompare picks between a and b by cmp's verdict on their ordering
// (-1/0/1), keepLeft reporting whether a should win.
func numericCompare(a, b eval.Value, name string, keepLeft func(cmp int) bool) (eval.Value, error) {
	switch av := a.(type) {
	case eval.Int:
		bv, ok := b.(eval.Int)
		if !ok {
			return nil, errf("%s() expects both arguments to be the same numeric type", name)
		}
		if keepLeft(av.V.Cmp(bv.V)) {
			return a, nil
		}
		return b, nil
	case eval.Float:
		bv, ok := b.(eval.Float)
		if !ok {
			return nil, errf("%s() expects both arguments to be the same numeric type", name)
		}
		cmp := 0
		switch {
		case av < bv:
			cmp = -1
		case av > bv:
			cmp = 1
		}
		if keepLeft(cmp) {
			return a, nil
		}
		return b, nil
	default:
		return nil, errf("%s() expects Int or Float, got %s", name, a.Type())
	}
}

func biSqrt(ev *eval.Evaluator, args []eval.Value) (eval.Value, error) {
	if len(args) != 1 {
		return nil, wantArity("sqrt", 1, len(args))
	}
	f, err := asFloatLike("sqrt", args, 0)
	if err != nil {
		return nil, err
	}
	return eval.Float(math.Sqrt(float64(f))), nil
}

func biFloor(ev *eval.Evaluator, args []eval.Value) (eval.Value, error) {
	if len(args) != 1 {
		return nil, wantArity("floor", 1, len(args))
	}
	f, err := asFloatLike("floor", args, 0)
	if err != nil {
		return nil, err
	}
	return eval.Float(math.Floor(float64(f))), nil
}

func biCeil(ev *eval.Evaluator, args []eval.Value) (eval.Value, error) {
	if len(args) != 1 {
		return nil, wantArity("ceil", 1, len(args))
	}
	f, err := asFloatLike("ceil", args, 0)
	if err != nil {
		return nil, err
	}
	return eval.Float(math.Ceil(float64(f))), nil
}

// asFloatLike accepts either a Float or an Int (widened), matching the
// implicit Int->Float promotion the checker's numeric-literal defaulting
// already performs for mixed arithmetic.
func asFloatLike(name string, args []eval.Value, i int) (eval.Float, error) {
	switch v := args[i].(type) {
	case eval.Float:
		return v, nil
	case eval.Int:
		f := new(big.Float).SetInt(v.V)
		out, _ := f.Float64()
		return eval.Float(out), nil
	default:
		return 0, errf("%s() expects Int or Float for argument %d, got %s", name, i+1, args[i].Type())
	}
}
