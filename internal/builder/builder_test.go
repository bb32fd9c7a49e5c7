package builder

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/neve-lang/neve/internal/derivation"
	"github.com/neve-lang/neve/internal/store"
)

func newTestBuilder(t *testing.T) *Builder {
	t.Helper()
	st, err := store.New(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	opts := DefaultOptions()
	// Backend: container short-circuits applySandbox's namespace setup
	// (sandbox_linux.go only isolates when Backend == BackendNative), so
	// this test exercises Realize's bookkeeping without requiring the
	// namespace privileges a CI sandbox may not grant.
	opts.Backend = BackendContainer
	return New(st, opts, nil)
}

func echoDerivation(name string) *derivation.Derivation {
	return &derivation.Derivation{
		Name:         name,
		System:       "x86_64-linux",
		BuildCommand: "echo hi > $out/result",
		OutputNames:  []string{"out"},
	}
}

func TestRealizeProducesOutput(t *testing.T) {
	b := newTestBuilder(t)
	d := echoDerivation("greeting")

	outs, err := b.Realize(context.Background(), d, nil)
	if err != nil {
		t.Fatalf("Realize: %v", err)
	}
	path, ok := outs["out"]
	if !ok {
		t.Fatalf("Realize did not return an \"out\" output")
	}

	got, err := os.ReadFile(filepath.Join(b.Store.StorePath(path), "result"))
	if err != nil {
		t.Fatalf("read realized output: %v", err)
	}
	if string(got) != "hi\n" {
		t.Fatalf("realized output = %q, want %q", got, "hi\n")
	}
}

func TestRealizeIsIdempotent(t *testing.T) {
	b := newTestBuilder(t)
	d := echoDerivation("idempotent")

	first, err := b.Realize(context.Background(), d, nil)
	if err != nil {
		t.Fatalf("first Realize: %v", err)
	}
	second, err := b.Realize(context.Background(), d, nil)
	if err != nil {
		t.Fatalf("second Realize (should hit existingOutputs): %v", err)
	}
	if first["out"] != second["out"] {
		t.Fatalf("re-realizing the same derivation produced a different output path: %q vs %q", first["out"], second["out"])
	}
}

func TestRealizeFailingBuildReturnsBuildError(t *testing.T) {
	b := newTestBuilder(t)
	d := &derivation.Derivation{
		Name:         "fails",
		System:       "x86_64-linux",
		BuildCommand: "echo went wrong 1>&2; exit 1",
		OutputNames:  []string{"out"},
	}

	_, err := b.Realize(context.Background(), d, nil)
	if err == nil {
		t.Fatalf("expected Realize to fail for a nonzero build exit")
	}
	be, ok := err.(*BuildError)
	if !ok {
		t.Fatalf("expected *BuildError, got %T: %v", err, err)
	}
	if be.ExitCode != 1 {
		t.Fatalf("ExitCode = %d, want 1", be.ExitCode)
	}
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	if opts.Backend != BackendNative {
		t.Fatalf("Backend = %q, want native", opts.Backend)
	}
	if opts.LogTailBytes != 4096 {
		t.Fatalf("LogTailBytes = %d, want 4096", opts.LogTailBytes)
	}
}
