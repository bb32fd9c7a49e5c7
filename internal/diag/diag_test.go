package diag

import (
	"strings"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"

	"github.com/neve-lang/neve/internal/span"
)

func TestSinkCollectsAndReportsErrors(t *testing.T) {
	s := NewSink()
	if s.HasErrors() {
		t.Fatal("empty sink should not have errors")
	}
	s.Warnf(span.Span{}, "TypeError", "non-exhaustive match")
	if s.HasErrors() {
		t.Fatal("a warning alone should not count as an error")
	}
	s.Errorf(span.Span{}, "ResolveError", "undefined name %q", "foo")
	if !s.HasErrors() {
		t.Fatal("expected HasErrors after Errorf")
	}
	if len(s.Diagnostics()) != 2 {
		t.Fatalf("expected 2 diagnostics, got %d", len(s.Diagnostics()))
	}
}

func TestSinkMerge(t *testing.T) {
	a := NewSink()
	a.Errorf(span.Span{}, "TypeError", "a")
	b := NewSink()
	b.Errorf(span.Span{}, "TypeError", "b")
	a.Merge(b)
	if len(a.Diagnostics()) != 2 {
		t.Fatalf("expected 2 diagnostics after merge, got %d", len(a.Diagnostics()))
	}
}

func TestRenderIncludesCaretAndCode(t *testing.T) {
	sources := span.NewSourceSet()
	id := sources.Add("main.neve", "let x = ;\n")
	r := NewRenderer(sources, false)

	d := Diagnostic{
		Severity: Error,
		Code:     Code{Kind: "ParseError", Sub: "unexpected token"},
		Primary: span.Span{
			File:  id,
			Start: span.Position{Line: 1, Column: 9},
			End:   span.Position{Line: 1, Column: 10},
		},
		Message: "unexpected ';'",
		Notes:   []string{"expected an expression"},
	}

	out := r.Render(d)
	if !strings.Contains(out, "main.neve:1:9") {
		t.Errorf("render missing location: %s", out)
	}
	if !strings.Contains(out, "^") {
		t.Errorf("render missing caret: %s", out)
	}
	if !strings.Contains(out, "ParseError") {
		t.Errorf("render missing code: %s", out)
	}
	if !strings.Contains(out, "note: expected an expression") {
		t.Errorf("render missing note: %s", out)
	}
}

func TestRenderAllSnapshot(t *testing.T) {
	sources := span.NewSourceSet()
	id := sources.Add("main.neve", "let x = ;\nfn f(a) = a +\n")
	r := NewRenderer(sources, false)

	diags := []Diagnostic{
		{
			Severity: Error,
			Code:     Code{Kind: "ParseError", Sub: "unexpected token"},
			Primary: span.Span{
				File:  id,
				Start: span.Position{Line: 1, Column: 9},
				End:   span.Position{Line: 1, Column: 10},
			},
			Message: "unexpected ';'",
			Notes:   []string{"expected an expression"},
			FixIts:  []FixIt{{Message: "remove the trailing ';'"}},
		},
		{
			Severity: Warning,
			Code:     Code{Kind: "TypeError", Sub: "non-exhaustive match"},
			Primary: span.Span{
				File:  id,
				Start: span.Position{Line: 2, Column: 1},
				End:   span.Position{Line: 2, Column: 3},
			},
			Message: "match may fail at runtime",
		},
	}

	snaps.MatchSnapshot(t, r.RenderAll(diags))
}
