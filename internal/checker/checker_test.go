package checker

import (
	"testing"

	"github.com/neve-lang/neve/internal/ast"
	"github.com/neve-lang/neve/internal/diag"
	"github.com/neve-lang/neve/internal/hir"
	"github.com/neve-lang/neve/internal/parser"
	"github.com/neve-lang/neve/internal/span"
)

func checkSource(t *testing.T, src string) (*Checker, *diag.Sink) {
	t.Helper()
	sources := span.NewSourceSet()
	file := sources.Add("test.neve", src)
	sink := diag.NewSink()
	mod := parser.ParseModule(file, src, "test", sink)
	if sink.HasErrors() {
		t.Fatalf("parse errors: %+v", sink.Diagnostics())
	}
	g := hir.Build(map[string]*ast.Module{"test": mod}, sink, nil)
	if sink.HasErrors() {
		t.Fatalf("resolve errors: %+v", sink.Diagnostics())
	}
	c := Check(g, sink)
	return c, sink
}

func TestCheckSimpleArithmetic(t *testing.T) {
	_, sink := checkSource(t, `let x = 1 + 2 * 3`)
	for _, d := range sink.Diagnostics() {
		if d.Severity == diag.Error {
			t.Fatalf("unexpected error: %s", d.Message)
		}
	}
}

func TestCheckIdentityFunction(t *testing.T) {
	_, sink := checkSource(t, `
fn id(x) = x
let a = id(1)
let b = id(true)
`)
	for _, d := range sink.Diagnostics() {
		if d.Severity == diag.Error {
			t.Fatalf("unexpected error: %s", d.Message)
		}
	}
}

func TestCheckTypeMismatchReported(t *testing.T) {
	_, sink := checkSource(t, `let x = 1 + true`)
	if !sink.HasErrors() {
		t.Fatalf("expected a type error for 1 + true")
	}
}
