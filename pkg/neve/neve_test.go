package neve

import "testing"

func TestEvalArithmetic(t *testing.T) {
	e := New(nil, false)
	v, diags, err := e.Eval("1 + 2 * 3")
	if err != nil {
		t.Fatalf("Eval: %v (diagnostics: %s)", err, diags.Rendered)
	}
	if diags.HasError {
		t.Fatalf("unexpected diagnostics: %s", diags.Rendered)
	}
	if v == nil {
		t.Fatalf("Eval returned a nil value")
	}
}

func TestEvalSyntaxErrorReported(t *testing.T) {
	e := New(nil, false)
	_, diags, err := e.Eval("1 +")
	if err == nil {
		t.Fatalf("expected Eval to fail on malformed input")
	}
	if !diags.HasError {
		t.Fatalf("expected diagnostics to report an error")
	}
}

func TestRunEntryBinding(t *testing.T) {
	e := New(nil, false)
	src := "let main = 1 + 1\n"
	v, diags, err := e.Run("main.neve", src, "main")
	if err != nil {
		t.Fatalf("Run: %v (diagnostics: %s)", err, diags.Rendered)
	}
	if v == nil {
		t.Fatalf("Run returned a nil value")
	}
}

func TestRunMissingEntryBinding(t *testing.T) {
	e := New(nil, false)
	src := "let other = 1\n"
	_, _, err := e.Run("main.neve", src, "main")
	if err == nil {
		t.Fatalf("expected Run to fail when the requested entry binding is absent")
	}
}

func TestCheckWithoutEvaluating(t *testing.T) {
	e := New(nil, false)
	diags, err := e.Check("main.neve", "let x = 1 + 2\n")
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if diags.HasError {
		t.Fatalf("unexpected diagnostics: %s", diags.Rendered)
	}
}

func TestCheckReportsTypeMismatch(t *testing.T) {
	e := New(nil, false)
	diags, err := e.Check("main.neve", `let x = 1 + "two"`+"\n")
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if !diags.HasError {
		t.Fatalf("expected a type-mismatch diagnostic for 1 + \"two\"")
	}
}
