package store

import (
	"os"
	"path/filepath"
	"testing"
)

func newTestStoreRoot(t *testing.T) *Store {
	t.Helper()
	st, err := New(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	return st
}

func TestAddFileIsContentAddressed(t *testing.T) {
	st := newTestStoreRoot(t)
	name1, err := st.AddFile([]byte("same content"), "a")
	if err != nil {
		t.Fatalf("AddFile: %v", err)
	}
	name2, err := st.AddFile([]byte("same content"), "a")
	if err != nil {
		t.Fatalf("AddFile: %v", err)
	}
	if name1 != name2 {
		t.Fatalf("identical content hashed to different store paths: %q vs %q", name1, name2)
	}
	if !st.Exists(name1) {
		t.Fatalf("Exists(%q) = false after AddFile", name1)
	}
}

func TestAddFileDistinctContentDistinctPaths(t *testing.T) {
	st := newTestStoreRoot(t)
	a, err := st.AddFile([]byte("one"), "f")
	if err != nil {
		t.Fatalf("AddFile: %v", err)
	}
	b, err := st.AddFile([]byte("two"), "f")
	if err != nil {
		t.Fatalf("AddFile: %v", err)
	}
	if a == b {
		t.Fatalf("distinct content produced the same store path %q", a)
	}
}

func TestAddDirectoryRoundTrip(t *testing.T) {
	st := newTestStoreRoot(t)
	src := t.TempDir()
	if err := os.WriteFile(filepath.Join(src, "file.txt"), []byte("payload"), 0o644); err != nil {
		t.Fatalf("write source file: %v", err)
	}
	if err := os.Mkdir(filepath.Join(src, "sub"), 0o755); err != nil {
		t.Fatalf("mkdir sub: %v", err)
	}
	if err := os.WriteFile(filepath.Join(src, "sub", "nested.txt"), []byte("nested"), 0o644); err != nil {
		t.Fatalf("write nested file: %v", err)
	}

	name, err := st.AddDirectory(src, "pkg")
	if err != nil {
		t.Fatalf("AddDirectory: %v", err)
	}
	got, err := os.ReadFile(filepath.Join(st.StorePath(name), "sub", "nested.txt"))
	if err != nil {
		t.Fatalf("read extracted nested file: %v", err)
	}
	if string(got) != "nested" {
		t.Fatalf("extracted content = %q, want %q", got, "nested")
	}
}

// TestQueryReferencesFindsDependency exercises the store reference
// closure property: a store path whose content embeds another path's
// hash-prefixed name must report that path as a reference.
func TestQueryReferencesFindsDependency(t *testing.T) {
	st := newTestStoreRoot(t)
	dep, err := st.AddFile([]byte("dependency content"), "dep")
	if err != nil {
		t.Fatalf("AddFile dep: %v", err)
	}
	consumer, err := st.AddFile([]byte("#!/bin/sh\nexec "+dep+"\n"), "consumer")
	if err != nil {
		t.Fatalf("AddFile consumer: %v", err)
	}

	refs, err := st.QueryReferences(consumer)
	if err != nil {
		t.Fatalf("QueryReferences: %v", err)
	}
	found := false
	for _, r := range refs {
		if r == dep {
			found = true
		}
	}
	if !found {
		t.Fatalf("QueryReferences(%q) = %v, want it to include %q", consumer, refs, dep)
	}
}

// TestGCKeepsReachableRemovesUnreachable exercises GC safety: a path
// reachable from a declared root (directly or through another path's
// reference) survives GC. Unreferenced paths do not.
func TestGCKeepsReachableRemovesUnreachable(t *testing.T) {
	st := newTestStoreRoot(t)
	dep, err := st.AddFile([]byte("dependency content"), "dep")
	if err != nil {
		t.Fatalf("AddFile dep: %v", err)
	}
	root, err := st.AddFile([]byte("root refers to "+dep), "root")
	if err != nil {
		t.Fatalf("AddFile root: %v", err)
	}
	garbage, err := st.AddFile([]byte("nobody points at me"), "garbage")
	if err != nil {
		t.Fatalf("AddFile garbage: %v", err)
	}

	removed, err := st.GC([]string{root})
	if err != nil {
		t.Fatalf("GC: %v", err)
	}

	removedSet := map[string]bool{}
	for _, p := range removed {
		removedSet[p] = true
	}
	if !removedSet[garbage] {
		t.Fatalf("GC should have removed unreferenced path %q, removed=%v", garbage, removed)
	}
	if removedSet[root] || removedSet[dep] {
		t.Fatalf("GC removed a reachable path: removed=%v", removed)
	}
	if !st.Exists(root) || !st.Exists(dep) {
		t.Fatalf("reachable paths no longer exist on disk after GC")
	}
	if st.Exists(garbage) {
		t.Fatalf("unreferenced path %q still exists on disk after GC", garbage)
	}
}
