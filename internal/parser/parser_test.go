package parser

import (
	"testing"

	"github.com/neve-lang/neve/internal/ast"
	"github.com/neve-lang/neve/internal/diag"
)

func parseOneDef(t *testing.T, src string) ast.Def {
	t.Helper()
	sink := diag.NewSink()
	m := ParseModule(0, src, "test", sink)
	if sink.HasErrors() {
		t.Fatalf("unexpected parse errors for %q: %+v", src, sink.Diagnostics())
	}
	if len(m.Defs) != 1 {
		t.Fatalf("expected 1 def, got %d", len(m.Defs))
	}
	return m.Defs[0]
}

func TestParseLetDef(t *testing.T) {
	d := parseOneDef(t, "let x = 1 + 2")
	let, ok := d.(*ast.LetDef)
	if !ok {
		t.Fatalf("got %T", d)
	}
	bin, ok := let.Value.(*ast.BinaryExpr)
	if !ok || bin.Op != ast.OpAdd {
		t.Fatalf("got %+v", let.Value)
	}
}

func TestParseFnDefWithGenericsAndBound(t *testing.T) {
	d := parseOneDef(t, "fn show<T: Show>(x: T) : String -> x")
	fn, ok := d.(*ast.FnDef)
	if !ok {
		t.Fatalf("got %T", d)
	}
	if len(fn.Generics) != 1 || fn.Generics[0].Name != "T" || len(fn.Generics[0].Bounds) != 1 {
		t.Fatalf("got generics %+v", fn.Generics)
	}
	if len(fn.Params) != 1 {
		t.Fatalf("got params %+v", fn.Params)
	}
}

func TestOperatorPrecedence(t *testing.T) {
	d := parseOneDef(t, "let x = 1 + 2 * 3")
	let := d.(*ast.LetDef)
	bin := let.Value.(*ast.BinaryExpr)
	if bin.Op != ast.OpAdd {
		t.Fatalf("expected outer op to be +, got %v", bin.Op)
	}
	right, ok := bin.Right.(*ast.BinaryExpr)
	if !ok || right.Op != ast.OpMul {
		t.Fatalf("expected right side to be 2 * 3, got %+v", bin.Right)
	}
}

func TestCaretIsRightAssociative(t *testing.T) {
	d := parseOneDef(t, "let x = 2 ^ 3 ^ 2")
	let := d.(*ast.LetDef)
	bin := let.Value.(*ast.BinaryExpr)
	if bin.Op != ast.OpPow {
		t.Fatalf("got %v", bin.Op)
	}
	if _, ok := bin.Right.(*ast.BinaryExpr); !ok {
		t.Fatalf("expected right-associative grouping, got %+v", bin)
	}
	if _, ok := bin.Left.(*ast.BinaryExpr); ok {
		t.Fatalf("expected left operand to be a single literal, got %+v", bin.Left)
	}
}

func TestPipeAndCallChain(t *testing.T) {
	d := parseOneDef(t, "let x = xs |> map(f) |> sum()")
	let := d.(*ast.LetDef)
	pipe, ok := let.Value.(*ast.PipeExpr)
	if !ok {
		t.Fatalf("got %T", let.Value)
	}
	if _, ok := pipe.Right.(*ast.Call); !ok {
		t.Fatalf("expected right side to be a call, got %+v", pipe.Right)
	}
}

func TestMatchWithGuardAndOrPattern(t *testing.T) {
	d := parseOneDef(t, `fn classify(n) -> match n {
		0 -> "zero",
		n if n < 0 -> "neg",
		1 | 2 | 3 -> "small",
		_ -> "other",
	}`)
	fn := d.(*ast.FnDef)
	m, ok := fn.Body.(*ast.Match)
	if !ok {
		t.Fatalf("got %T", fn.Body)
	}
	if len(m.Arms) != 4 {
		t.Fatalf("expected 4 arms, got %d", len(m.Arms))
	}
	if m.Arms[1].Guard == nil {
		t.Fatalf("expected arm 1 to have a guard")
	}
	if _, ok := m.Arms[2].Pattern.(*ast.OrPat); !ok {
		t.Fatalf("expected arm 2 to be an or-pattern, got %+v", m.Arms[2].Pattern)
	}
}

func TestListComprehension(t *testing.T) {
	d := parseOneDef(t, "let x = [y * 2 | y <- ys, y > 0]") // bare guard clause alongside a binding clause
	let := d.(*ast.LetDef)
	comp, ok := let.Value.(*ast.ListComp)
	if !ok {
		t.Fatalf("got %T", let.Value)
	}
	if len(comp.Clauses) != 2 {
		t.Fatalf("expected 2 clauses, got %d", len(comp.Clauses))
	}
	if comp.Clauses[0].Source == nil || comp.Clauses[1].Guard == nil {
		t.Fatalf("got %+v", comp.Clauses)
	}
}

func TestRecordLiteralAndUpdate(t *testing.T) {
	d := parseOneDef(t, `let x = #{ ..base, name: "a" }`)
	let := d.(*ast.LetDef)
	rec, ok := let.Value.(*ast.RecordLit)
	if !ok {
		t.Fatalf("got %T", let.Value)
	}
	if rec.Base == nil || len(rec.Fields) != 1 {
		t.Fatalf("got %+v", rec)
	}
}

func TestStructAndEnumDef(t *testing.T) {
	sink := diag.NewSink()
	m := ParseModule(0, `
struct Point { x: Int, y: Int }
enum Option<a> { Some(a), None }
`, "test", sink)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %+v", sink.Diagnostics())
	}
	if len(m.Defs) != 2 {
		t.Fatalf("expected 2 defs, got %d", len(m.Defs))
	}
	st := m.Defs[0].(*ast.StructDef)
	if len(st.Fields) != 2 {
		t.Fatalf("got fields %+v", st.Fields)
	}
	en := m.Defs[1].(*ast.EnumDef)
	if len(en.Variants) != 2 || len(en.Variants[0].Payload) != 1 {
		t.Fatalf("got variants %+v", en.Variants)
	}
}

func TestTraitAndImplDef(t *testing.T) {
	sink := diag.NewSink()
	m := ParseModule(0, `
trait Show { fn show(self) : String }
impl Show for Point { fn show(self) : String -> "p" }
`, "test", sink)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %+v", sink.Diagnostics())
	}
	tr := m.Defs[0].(*ast.TraitDef)
	if len(tr.Methods) != 1 {
		t.Fatalf("got methods %+v", tr.Methods)
	}
	impl := m.Defs[1].(*ast.ImplDef)
	if impl.Trait == nil || len(impl.Trait.Path) != 1 || impl.Trait.Path[0] != "Show" {
		t.Fatalf("got trait %+v", impl.Trait)
	}
	if len(impl.Methods) != 1 {
		t.Fatalf("got methods %+v", impl.Methods)
	}
}

func TestImportWithAlias(t *testing.T) {
	d := parseOneDef(t, "import crate.lib.util as u")
	imp, ok := d.(*ast.ImportDef)
	if !ok {
		t.Fatalf("got %T", d)
	}
	if len(imp.Path) != 3 || imp.Alias != "u" {
		t.Fatalf("got %+v", imp)
	}
}

func TestPubVisibility(t *testing.T) {
	d := parseOneDef(t, "pub let x = 1")
	let := d.(*ast.LetDef)
	if let.Vis != ast.Public {
		t.Fatalf("got %v", let.Vis)
	}
}

func TestErrorRecoverySkipsToNextDef(t *testing.T) {
	sink := diag.NewSink()
	m := ParseModule(0, "let x = @@@ \n let y = 2", "test", sink)
	if !sink.HasErrors() {
		t.Fatalf("expected a parse error")
	}
	if len(m.Defs) != 2 {
		t.Fatalf("expected recovery to still yield 2 defs, got %d: %+v", len(m.Defs), m.Defs)
	}
	second, ok := m.Defs[1].(*ast.LetDef)
	if !ok {
		t.Fatalf("got %T", m.Defs[1])
	}
	if lit, ok := second.Value.(*ast.IntLit); !ok || lit.Lit != "2" {
		t.Fatalf("got %+v", second.Value)
	}
}
