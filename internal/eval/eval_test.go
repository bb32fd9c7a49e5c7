package eval

import (
	"testing"

	"github.com/neve-lang/neve/internal/ast"
	"github.com/neve-lang/neve/internal/diag"
	"github.com/neve-lang/neve/internal/hir"
	"github.com/neve-lang/neve/internal/parser"
	"github.com/neve-lang/neve/internal/span"
)

func buildGraph(t *testing.T, src string) (*hir.Graph, *diag.Sink) {
	t.Helper()
	sources := span.NewSourceSet()
	file := sources.Add("test.neve", src)
	sink := diag.NewSink()
	mod := parser.ParseModule(file, src, "test", sink)
	if sink.HasErrors() {
		t.Fatalf("parse errors: %+v", sink.Diagnostics())
	}
	g := hir.Build(map[string]*ast.Module{"test": mod}, sink, nil)
	return g, sink
}

func findDef(g *hir.Graph, name string) *hir.Def {
	for _, d := range g.AllDefs {
		if d.Name == name && d.Kind == hir.DefLet {
			return d
		}
	}
	return nil
}

func letValue(t *testing.T, g *hir.Graph, name string) ast.Expr {
	t.Helper()
	d := findDef(g, name)
	if d == nil {
		t.Fatalf("no top-level let named %q", name)
	}
	return d.Node.(*ast.LetDef).Value
}

func newTestEvaluator(g *hir.Graph, bound map[*ast.Call]hir.DefId, builtins map[string]*Builtin) *Evaluator {
	return NewEvaluator(g, bound, builtins)
}

func TestEvalArithmetic(t *testing.T) {
	g, sink := buildGraph(t, `let x = 1 + 2 * 3`)
	if sink.HasErrors() {
		t.Fatalf("resolve errors: %+v", sink.Diagnostics())
	}
	ev := newTestEvaluator(g, nil, nil)
	v, err := ev.Run(letValue(t, g, "x"), ev.TopEnv())
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}
	i, ok := v.(Int)
	if !ok || i.V.Int64() != 7 {
		t.Fatalf("expected Int(7), got %v", Show(v))
	}
}

func TestEvalShortCircuitAnd(t *testing.T) {
	g, sink := buildGraph(t, `let x = false && (1 / 0 == 0)`)
	if sink.HasErrors() {
		t.Fatalf("resolve errors: %+v", sink.Diagnostics())
	}
	ev := newTestEvaluator(g, nil, nil)
	v, err := ev.Run(letValue(t, g, "x"), ev.TopEnv())
	if err != nil {
		t.Fatalf("&& should short-circuit and never evaluate the divide-by-zero, got: %v", err)
	}
	if b, ok := v.(Bool); !ok || bool(b) {
		t.Fatalf("expected Bool(false), got %v", Show(v))
	}
}

func TestEvalLazySharing(t *testing.T) {
	src := `
fn f() -> {
  let x = count()
  x + x
}
let r = f()
`
	g, _ := buildGraph(t, src)
	n := 0
	builtins := map[string]*Builtin{
		"count": {
			Name:  "count",
			Arity: 0,
			Fn: func(ev *Evaluator, args []Value) (Value, error) {
				n++
				return NewInt(int64(n)), nil
			},
		},
	}
	ev := newTestEvaluator(g, nil, builtins)
	v, err := ev.Run(letValue(t, g, "r"), ev.TopEnv())
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}
	// If x's thunk is forced once and shared (the whole point of binding
	// a block-let to a Thunk rather than re-evaluating its expression at
	// each use), x + x is always even; a double-evaluation bug would
	// instead compute two distinct counter values and produce an odd sum.
	i, ok := v.(Int)
	if !ok || i.V.Int64() != 2 {
		t.Fatalf("expected x to be forced exactly once giving 1+1=2, got %v (count() called %d times)", Show(v), n)
	}
}

func TestEvalTailRecursionDoesNotOverflow(t *testing.T) {
	src := `
fn countdown(n, acc) -> if n == 0 { acc } else { countdown(n - 1, acc + 1) }
let r = countdown(200000, 0)
`
	g, sink := buildGraph(t, src)
	if sink.HasErrors() {
		t.Fatalf("resolve errors: %+v", sink.Diagnostics())
	}
	ev := newTestEvaluator(g, nil, nil)
	v, err := ev.Run(letValue(t, g, "r"), ev.TopEnv())
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}
	i, ok := v.(Int)
	if !ok || i.V.Int64() != 200000 {
		t.Fatalf("expected Int(200000), got %v", Show(v))
	}
}

func TestEvalPatternMatching(t *testing.T) {
	src := `
fn classify(xs) -> match xs {
  [] -> "empty"
  [only] -> "one"
  [first, ..rest] -> "many"
}
let a = classify([])
let b = classify([1])
let c = classify([1, 2, 3])
`
	g, sink := buildGraph(t, src)
	if sink.HasErrors() {
		t.Fatalf("resolve errors: %+v", sink.Diagnostics())
	}
	ev := newTestEvaluator(g, nil, nil)
	cases := map[string]string{"a": "empty", "b": "one", "c": "many"}
	for name, want := range cases {
		v, err := ev.Run(letValue(t, g, name), ev.TopEnv())
		if err != nil {
			t.Fatalf("%s: eval error: %v", name, err)
		}
		if s, ok := v.(Str); !ok || string(s) != want {
			t.Fatalf("%s: expected %q, got %v", name, want, Show(v))
		}
	}
}

func TestEvalTryPropagation(t *testing.T) {
	// risky/run use the bare "Ok"/"Err" tag convention directly (the
	// checker-internal Result sentinels from wellknown.go aren't in play
	// here); the evaluator only cares about the Ok/Err tags, so the test
	// supplies them as plain builtins instead of going through the checker.
	src := `
fn risky(n) -> if n < 0 { Err("negative") } else { Ok(n) }
fn run(n) -> {
  let v = risky(n)?
  Ok(v + 1)
}
let good = run(1)
let bad = run(-1)
`
	// Ok/Err are supplied as builtins, not declared in source, so resolve
	// reports them as undefined names; that's expected here and ignored.
	g, _ := buildGraph(t, src)
	builtins := map[string]*Builtin{
		"Ok":  {Name: "Ok", Arity: 1, Fn: func(ev *Evaluator, args []Value) (Value, error) { return &Ctor{Tag: "Ok", Payload: args}, nil }},
		"Err": {Name: "Err", Arity: 1, Fn: func(ev *Evaluator, args []Value) (Value, error) { return &Ctor{Tag: "Err", Payload: args}, nil }},
	}
	ev := newTestEvaluator(g, nil, builtins)

	v, err := ev.Run(letValue(t, g, "good"), ev.TopEnv())
	if err != nil {
		t.Fatalf("good: eval error: %v", err)
	}
	ctor, ok := v.(*Ctor)
	if !ok || ctor.Tag != "Ok" {
		t.Fatalf("good: expected Ok(..), got %v", Show(v))
	}
	n, ok := ctor.Payload[0].(Int)
	if !ok || n.V.Int64() != 2 {
		t.Fatalf("good: expected Ok(2), got %v", Show(v))
	}

	v, err = ev.Run(letValue(t, g, "bad"), ev.TopEnv())
	if err != nil {
		t.Fatalf("bad: eval error: %v", err)
	}
	ctor, ok = v.(*Ctor)
	if !ok || ctor.Tag != "Err" {
		t.Fatalf("bad: expected `?` to propagate the Err straight out of run, got %v", Show(v))
	}
}

// TestEvalTraitDispatch exercises call.go's bound-call dispatch directly:
// it wires callBoundDefs by hand instead of running it through
// checker.Check, since this package's own tests only need to pin down
// evaluator mechanics (a *ast.Call annotated with a resolved hir.DefId
// invokes that def's method as a closure on the receiver), not
// re-verify the checker's struct/trait unification.
func TestEvalTraitDispatch(t *testing.T) {
	src := `
struct Circle { radius: Int }
struct Square { side: Int }
trait Area { fn area(self): Int }
impl Area for Circle { fn area(self) -> self.radius * self.radius }
impl Area for Square { fn area(self) -> self.side * self.side }
let c = #{ radius: 3 }
let sq = #{ side: 4 }
let ac = c.area()
let asq = sq.area()
`
	g, _ := buildGraph(t, src)

	var circleArea, squareArea hir.DefId
	for _, d := range g.AllDefs {
		if d.Kind != hir.DefImplMethod || d.Name != "area" {
			continue
		}
		if circleArea == 0 {
			circleArea = d.ID
		} else {
			squareArea = d.ID
		}
	}
	if circleArea == 0 || squareArea == 0 {
		t.Fatalf("expected two DefImplMethod defs named area, got circle=%d square=%d", circleArea, squareArea)
	}

	acCall, ok := letValue(t, g, "ac").(*ast.Call)
	if !ok {
		t.Fatalf("ac is not a call expression")
	}
	asqCall, ok := letValue(t, g, "asq").(*ast.Call)
	if !ok {
		t.Fatalf("asq is not a call expression")
	}
	bound := map[*ast.Call]hir.DefId{
		acCall:  circleArea,
		asqCall: squareArea,
	}
	ev := newTestEvaluator(g, bound, nil)

	v, err := ev.Run(letValue(t, g, "ac"), ev.TopEnv())
	if err != nil {
		t.Fatalf("ac: eval error: %v", err)
	}
	if i, ok := v.(Int); !ok || i.V.Int64() != 9 {
		t.Fatalf("expected Circle.area() == 9, got %v", Show(v))
	}

	v, err = ev.Run(letValue(t, g, "asq"), ev.TopEnv())
	if err != nil {
		t.Fatalf("asq: eval error: %v", err)
	}
	if i, ok := v.(Int); !ok || i.V.Int64() != 16 {
		t.Fatalf("expected Square.area() == 16, got %v", Show(v))
	}
}

func TestEvalListComprehension(t *testing.T) {
	src := `let r = [x * 2 | x <- [1, 2, 3], x > 1]`
	g, sink := buildGraph(t, src)
	if sink.HasErrors() {
		t.Fatalf("resolve errors: %+v", sink.Diagnostics())
	}
	ev := newTestEvaluator(g, nil, nil)
	v, err := ev.Run(letValue(t, g, "r"), ev.TopEnv())
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}
	if got := Show(v); got != "[4, 6]" {
		t.Fatalf("expected [4, 6], got %s", got)
	}
}
