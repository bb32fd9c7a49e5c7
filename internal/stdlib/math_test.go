package stdlib

import (
	"testing"

	"github.com/neve-lang/neve/internal/eval"
)

func callBuiltin(t *testing.T, name string, args ...eval.Value) eval.Value {
	t.Helper()
	b, ok := mathBuiltins()[name]
	if !ok {
		t.Fatalf("no builtin named %q", name)
	}
	v, err := b.Fn(nil, args)
	if err != nil {
		t.Fatalf("%s(%v): %v", name, args, err)
	}
	return v
}

func TestAbs(t *testing.T) {
	got := callBuiltin(t, "abs", eval.NewInt(-5))
	if i, ok := got.(eval.Int); !ok || i.V.Int64() != 5 {
		t.Fatalf("abs(-5) = %v, want 5", eval.Show(got))
	}
}

func TestMinMax(t *testing.T) {
	a, b := eval.NewInt(3), eval.NewInt(7)
	if got := callBuiltin(t, "min", a, b); got.(eval.Int).V.Int64() != 3 {
		t.Fatalf("min(3, 7) = %v, want 3", eval.Show(got))
	}
	if got := callBuiltin(t, "max", a, b); got.(eval.Int).V.Int64() != 7 {
		t.Fatalf("max(3, 7) = %v, want 7", eval.Show(got))
	}
}

func TestFloorCeilWidenInt(t *testing.T) {
	got := callBuiltin(t, "floor", eval.NewInt(4))
	f, ok := got.(eval.Float)
	if !ok || float64(f) != 4.0 {
		t.Fatalf("floor(4) = %v, want Float(4.0)", eval.Show(got))
	}
	got = callBuiltin(t, "ceil", eval.NewInt(4))
	if f, ok := got.(eval.Float); !ok || float64(f) != 4.0 {
		t.Fatalf("ceil(4) = %v, want Float(4.0)", eval.Show(got))
	}
}

func TestSqrt(t *testing.T) {
	got := callBuiltin(t, "sqrt", eval.Float(16.0))
	f, ok := got.(eval.Float)
	if !ok || float64(f) != 4.0 {
		t.Fatalf("sqrt(16.0) = %v, want 4.0", eval.Show(got))
	}
}

func TestAbsWrongArity(t *testing.T) {
	b := mathBuiltins()["abs"]
	if _, err := b.Fn(nil, nil); err == nil {
		t.Fatalf("expected arity error calling abs() with no arguments")
	}
}

func TestMinMismatchedTypes(t *testing.T) {
	b := mathBuiltins()["min"]
	if _, err := b.Fn(nil, []eval.Value{eval.NewInt(1), eval.Float(1.0)}); err == nil {
		t.Fatalf("expected a type-mismatch error mixing Int and Float in min()")
	}
}

func TestPreludeIncludesEveryDomain(t *testing.T) {
	p := Prelude()
	for _, name := range []string{"abs", "min", "max", "sqrt", "floor", "ceil",
		"length", "strUpper", "Some", "println", "setEmpty", "mapEmpty", "pathJoin"} {
		if _, ok := p[name]; !ok {
			t.Fatalf("Prelude() is missing builtin %q", name)
		}
	}
}
