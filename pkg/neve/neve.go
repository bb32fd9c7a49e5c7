// Package neve is the embeddable facade over the whole pipeline — lex,
// parse, resolve, check, evaluate — letting a host Go program drive the
// engine without reaching into internal/... itself. cmd/neve is the
// only intended direct caller; every evaluating CLI subcommand (eval/
// run/check/repl/build, the config and package groups) is a thin
// wrapper over Engine's methods here.
package neve

import (
	"fmt"

	"github.com/neve-lang/neve/internal/ast"
	"github.com/neve-lang/neve/internal/checker"
	"github.com/neve-lang/neve/internal/diag"
	"github.com/neve-lang/neve/internal/eval"
	"github.com/neve-lang/neve/internal/hir"
	"github.com/neve-lang/neve/internal/parser"
	"github.com/neve-lang/neve/internal/span"
	"github.com/neve-lang/neve/internal/stdlib"
)

// syntheticEvalName is the top-level binding `Eval` wraps a bare expression
// in, so the rest of the pipeline never needs an expression-only entry
// point distinct from a module (`eval EXPR` and `neve repl` both funnel
// through this).
const syntheticEvalName = "__eval_result__"

// Engine holds everything that should be built once and reused across
// many Eval/Run/Check calls: the source registry (for diagnostic
// rendering) and, for derivation-aware programs, a store/builder/fetcher
// Runtime.
type Engine struct {
	Sources *span.SourceSet
	Runtime *stdlib.Runtime
	Color   bool
}

// New builds an Engine with no derivation runtime attached (pure
// language evaluation only — rt may be nil for `eval`/`check` on programs
// that never force a Derivation).
func New(rt *stdlib.Runtime, color bool) *Engine {
	return &Engine{Sources: span.NewSourceSet(), Runtime: rt, Color: color}
}

// Diagnostics is a rendered batch of diagnostics plus whether any of them
// are errors: a uniform diagnostic record, already formatted.
type Diagnostics struct {
	Raw      []diag.Diagnostic
	Rendered string
	HasError bool
}

func (e *Engine) compile(filename, src string) (*ast.Module, *hir.Graph, *checker.Checker, *diag.Sink, span.FileID) {
	file := e.Sources.Add(filename, src)
	sink := diag.NewSink()
	mod := parser.ParseModule(file, src, "main", sink)

	builtinNames := map[string]bool{}
	for name := range stdlib.Prelude() {
		builtinNames[name] = true
	}

	g := hir.Build(map[string]*ast.Module{"main": mod}, sink, builtinNames)
	chk := checker.Check(g, sink)
	return mod, g, chk, sink, file
}

func (e *Engine) render(sink *diag.Sink) *Diagnostics {
	diags := sink.Diagnostics()
	r := diag.NewRenderer(e.Sources, e.Color)
	return &Diagnostics{Raw: diags, Rendered: r.RenderAll(diags), HasError: sink.HasErrors()}
}

// Check parses and type-checks filename's source without evaluating it
// (backs `neve check`). Returns rendered diagnostics; a nil error
// return with HasError true means checking found problems, not that the
// call itself failed.
func (e *Engine) Check(filename, src string) (*Diagnostics, error) {
	_, _, _, sink, _ := e.compile(filename, src)
	return e.render(sink), nil
}

// Run parses, checks, and evaluates an entire module's top-level
// definitions, returning the value of a named entry binding. `neve run
// FILE` runs a module's `main` binding by convention, treating the
// module as a set of bindings rather than a sequence of statements.
func (e *Engine) Run(filename, src, entry string) (eval.Value, *Diagnostics, error) {
	_, g, chk, sink, _ := e.compile(filename, src)
	diags := e.render(sink)
	if diags.HasError {
		return nil, diags, fmt.Errorf("compilation failed with %d error(s)", len(diags.Raw))
	}

	id, ok := findDef(g, entry)
	if !ok {
		return nil, diags, fmt.Errorf("no top-level binding named %q", entry)
	}
	ev := eval.NewEvaluator(g, chk.CallBoundDefs, e.builtins())
	v, err := ev.ForceGlobal(id)
	if err != nil {
		return nil, diags, err
	}
	return v, diags, nil
}

// Eval compiles and evaluates a single expression (backs `neve eval
// EXPR` and the REPL's per-line evaluation), wrapping it in a synthetic
// top-level binding so it goes through exactly the same
// parse/resolve/check/eval path a file does.
func (e *Engine) Eval(src string) (eval.Value, *Diagnostics, error) {
	wrapped := "let " + syntheticEvalName + " = (\n" + src + "\n);\n"
	_, g, chk, sink, _ := e.compile("<eval>", wrapped)
	diags := e.render(sink)
	if diags.HasError {
		return nil, diags, fmt.Errorf("compilation failed with %d error(s)", len(diags.Raw))
	}

	id, ok := findDef(g, syntheticEvalName)
	if !ok {
		return nil, diags, fmt.Errorf("internal error: synthetic binding %q not found", syntheticEvalName)
	}
	ev := eval.NewEvaluator(g, chk.CallBoundDefs, e.builtins())
	v, err := ev.ForceGlobal(id)
	if err != nil {
		return nil, diags, err
	}
	return v, diags, nil
}

func (e *Engine) builtins() map[string]*eval.Builtin {
	if e.Runtime == nil {
		return stdlib.Prelude()
	}
	return stdlib.PreludeWithRuntime(e.Runtime)
}

// findDef linear-scans g.AllDefs for a top-level binding named name —
// hir.Module.byName is unexported, so an external facade package has no
// cheaper lookup; module graphs are small (one program's worth of
// top-level definitions), so this is not a hot path.
func findDef(g *hir.Graph, name string) (hir.DefId, bool) {
	for _, d := range g.AllDefs {
		if d.Name == name {
			return d.ID, true
		}
	}
	return 0, false
}
