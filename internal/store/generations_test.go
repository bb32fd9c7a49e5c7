package store

import (
	"os"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestNewGenerationAndMeta(t *testing.T) {
	s := newTestStore(t)

	if err := os.MkdirAll(filepath.Join(s.Root, "store", "abc-root"), 0o755); err != nil {
		t.Fatalf("seed store path: %v", err)
	}

	n, err := s.NewGeneration("abc-root", "/etc/neve/system.neve")
	if err != nil {
		t.Fatalf("NewGeneration: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected first generation to be numbered 1, got %d", n)
	}

	target, err := s.GenerationTarget(n)
	if err != nil {
		t.Fatalf("GenerationTarget: %v", err)
	}
	if target != "abc-root" {
		t.Fatalf("GenerationTarget = %q, want %q", target, "abc-root")
	}

	meta, err := s.ReadGenerationMeta(n)
	if err != nil {
		t.Fatalf("ReadGenerationMeta: %v", err)
	}
	if meta.RootPath != "abc-root" {
		t.Fatalf("meta.RootPath = %q, want %q", meta.RootPath, "abc-root")
	}
	if meta.Manifest != "/etc/neve/system.neve" {
		t.Fatalf("meta.Manifest = %q, want %q", meta.Manifest, "/etc/neve/system.neve")
	}
	if meta.CreatedAt.IsZero() {
		t.Fatalf("meta.CreatedAt should be populated")
	}
}

func TestNewGenerationIncrements(t *testing.T) {
	s := newTestStore(t)
	os.MkdirAll(filepath.Join(s.Root, "store", "abc-root"), 0o755)

	n1, err := s.NewGeneration("abc-root", "")
	if err != nil {
		t.Fatalf("NewGeneration: %v", err)
	}
	n2, err := s.NewGeneration("abc-root", "")
	if err != nil {
		t.Fatalf("NewGeneration: %v", err)
	}
	if n2 != n1+1 {
		t.Fatalf("expected generation %d, got %d", n1+1, n2)
	}
}

func seedGenerations(t *testing.T, s *Store, n int) {
	t.Helper()
	os.MkdirAll(filepath.Join(s.Root, "store", "abc-root"), 0o755)
	for i := 0; i < n; i++ {
		if _, err := s.NewGeneration("abc-root", ""); err != nil {
			t.Fatalf("NewGeneration: %v", err)
		}
	}
}

func TestCurrentGenerationDefaultsToHighest(t *testing.T) {
	s := newTestStore(t)
	seedGenerations(t, s, 3)

	cur, err := s.CurrentGeneration()
	if err != nil {
		t.Fatalf("CurrentGeneration: %v", err)
	}
	if cur != 3 {
		t.Fatalf("current = %d, want 3 (highest, before any switch)", cur)
	}
}

func TestSwitchAndRollback(t *testing.T) {
	s := newTestStore(t)
	seedGenerations(t, s, 3)

	if err := s.SetCurrentGeneration(2); err != nil {
		t.Fatalf("SetCurrentGeneration: %v", err)
	}
	cur, err := s.CurrentGeneration()
	if err != nil || cur != 2 {
		t.Fatalf("current = %d, %v, want 2", cur, err)
	}

	prev, err := s.Rollback(0)
	if err != nil {
		t.Fatalf("Rollback: %v", err)
	}
	if prev != 1 {
		t.Fatalf("rollback landed on %d, want 1", prev)
	}
	cur, err = s.CurrentGeneration()
	if err != nil || cur != 1 {
		t.Fatalf("current after rollback = %d, %v, want 1", cur, err)
	}

	if _, err := s.Rollback(0); err == nil {
		t.Fatal("rollback past the first generation should fail")
	}
}

func TestSetCurrentGenerationRejectsMissing(t *testing.T) {
	s := newTestStore(t)
	seedGenerations(t, s, 1)
	if err := s.SetCurrentGeneration(9); err == nil {
		t.Fatal("switching to a nonexistent generation should fail")
	}
}

func TestListGCRoots(t *testing.T) {
	s := newTestStore(t)
	os.MkdirAll(filepath.Join(s.Root, "store", "abc-hello"), 0o755)
	os.MkdirAll(filepath.Join(s.Root, "store", "def-world"), 0o755)

	if err := s.AddGCRoot("pkg-hello", "abc-hello"); err != nil {
		t.Fatalf("AddGCRoot: %v", err)
	}
	if err := s.AddGCRoot("pkg-world", "def-world"); err != nil {
		t.Fatalf("AddGCRoot: %v", err)
	}

	roots, err := s.ListGCRoots()
	if err != nil {
		t.Fatalf("ListGCRoots: %v", err)
	}
	if len(roots) != 2 {
		t.Fatalf("got %d roots, want 2", len(roots))
	}
	if roots[0].ID != "pkg-hello" || roots[0].Target != "abc-hello" {
		t.Fatalf("roots[0] = %+v", roots[0])
	}

	if err := s.RemoveGCRoot("pkg-hello"); err != nil {
		t.Fatalf("RemoveGCRoot: %v", err)
	}
	roots, err = s.ListGCRoots()
	if err != nil || len(roots) != 1 {
		t.Fatalf("after remove: %d roots, %v, want 1", len(roots), err)
	}
}
