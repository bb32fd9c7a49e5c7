package hir

import (
	"testing"

	"github.com/neve-lang/neve/internal/ast"
	"github.com/neve-lang/neve/internal/diag"
	"github.com/neve-lang/neve/internal/parser"
)

func parseModule(t *testing.T, path, src string) *ast.Module {
	t.Helper()
	sink := diag.NewSink()
	m := parser.ParseModule(0, src, path, sink)
	if sink.HasErrors() {
		t.Fatalf("unexpected parse errors in %s: %+v", path, sink.Diagnostics())
	}
	return m
}

func TestResolveSimpleLet(t *testing.T) {
	src := "fn add(x, y) -> x + y\nlet z = add(1, 2)"
	mod := parseModule(t, "main", src)
	sink := diag.NewSink()
	g := Build(map[string]*ast.Module{"main": mod}, sink, nil)
	if sink.HasErrors() {
		t.Fatalf("unexpected resolve errors: %+v", sink.Diagnostics())
	}
	addDef := g.Modules[0].byName["add"]
	if addDef == nil || addDef.Kind != DefFn {
		t.Fatalf("expected add to be a DefFn, got %+v", addDef)
	}

	var callIdent *ast.Ident
	letDef := mod.Defs[1].(*ast.LetDef)
	call := letDef.Value.(*ast.Call)
	callIdent = call.Callee.(*ast.Ident)
	ref, ok := g.Refs[callIdent]
	if !ok || ref.Kind != RefGlobal || ref.Def != addDef.ID {
		t.Fatalf("expected call callee to resolve to add's DefId, got %+v ok=%v", ref, ok)
	}

	// x and y inside add's body should resolve to locals, not globals.
	fnDef := mod.Defs[0].(*ast.FnDef)
	bin := fnDef.Body.(*ast.BinaryExpr)
	xIdent := bin.Left.(*ast.Ident)
	xRef, ok := g.Refs[xIdent]
	if !ok || xRef.Kind != RefLocal {
		t.Fatalf("expected x to resolve to a local, got %+v ok=%v", xRef, ok)
	}
}

func TestUndefinedNameReported(t *testing.T) {
	mod := parseModule(t, "main", "let x = y")
	sink := diag.NewSink()
	Build(map[string]*ast.Module{"main": mod}, sink, nil)
	if !sink.HasErrors() {
		t.Fatal("expected an undefined-name resolve error")
	}
}

func TestImportAndQualifiedAccess(t *testing.T) {
	util := parseModule(t, "util", "pub fn double(x) -> x * 2")
	main := parseModule(t, "main", "import util\nlet x = util.double(21)")
	sink := diag.NewSink()
	g := Build(map[string]*ast.Module{"util": util, "main": main}, sink, nil)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %+v", sink.Diagnostics())
	}
	mainMod := g.Modules[g.byPath["main"]]
	letDef := mainMod.AST.Defs[1].(*ast.LetDef)
	call := letDef.Value.(*ast.Call)
	fa := call.Callee.(*ast.FieldAccess)
	defID, ok := g.QualifiedRefs[fa]
	if !ok {
		t.Fatal("expected util.double to resolve as a qualified reference")
	}
	def := g.DefByID(defID)
	if def == nil || def.Name != "double" {
		t.Fatalf("got %+v", def)
	}
}

func TestCyclicReexportReported(t *testing.T) {
	a := parseModule(t, "a", "pub import b\npub fn fromA() -> 1")
	b := parseModule(t, "b", "pub import a\npub fn fromB() -> 2")
	sink := diag.NewSink()
	Build(map[string]*ast.Module{"a": a, "b": b}, sink, nil)
	if !sink.HasErrors() {
		t.Fatal("expected a cyclic re-export diagnostic")
	}
	found := false
	for _, d := range sink.Diagnostics() {
		if d.Code.Kind == "ResolveError" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a ResolveError, got %+v", sink.Diagnostics())
	}
}

func TestEnumVariantConstructorPattern(t *testing.T) {
	mod := parseModule(t, "main", `
enum Option<a> { Some(a), None }
fn unwrap(o) -> match o {
	Some(x) -> x,
	None -> 0,
}
`)
	sink := diag.NewSink()
	g := Build(map[string]*ast.Module{"main": mod}, sink, nil)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %+v", sink.Diagnostics())
	}
	fnDef := mod.Defs[1].(*ast.FnDef)
	m := fnDef.Body.(*ast.Match)
	someCtor := m.Arms[0].Pattern.(*ast.ConstructorPat)
	defID, ok := g.CtorRefs[someCtor]
	if !ok {
		t.Fatal("expected Some(x) pattern to resolve to the Some variant's DefId")
	}
	def := g.DefByID(defID)
	if def == nil || def.Kind != DefEnumVariant || def.Name != "Some" {
		t.Fatalf("got %+v", def)
	}
}
