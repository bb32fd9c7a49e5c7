package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/neve-lang/neve/internal/store"
)

func newTestFetcher(t *testing.T) *Fetcher {
	t.Helper()
	st, err := store.New(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	return New(st, nil)
}

func TestFetchLocalFile(t *testing.T) {
	f := newTestFetcher(t)
	src := filepath.Join(t.TempDir(), "source.txt")
	if err := os.WriteFile(src, []byte("hello from a local source"), 0o644); err != nil {
		t.Fatalf("write source file: %v", err)
	}

	name, err := f.Fetch(context.Background(), Spec{Kind: "local", Path: src, Name: "source"})
	if err != nil {
		t.Fatalf("Fetch local file: %v", err)
	}

	got, err := os.ReadFile(f.Store.StorePath(name))
	if err != nil {
		t.Fatalf("read fetched store path: %v", err)
	}
	if string(got) != "hello from a local source" {
		t.Fatalf("fetched content = %q, want original bytes", got)
	}
}

func TestFetchLocalDirectory(t *testing.T) {
	f := newTestFetcher(t)
	srcDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(srcDir, "file.txt"), []byte("dir contents"), 0o644); err != nil {
		t.Fatalf("write source file: %v", err)
	}

	name, err := f.Fetch(context.Background(), Spec{Kind: "local", Path: srcDir, Name: "source-dir"})
	if err != nil {
		t.Fatalf("Fetch local directory: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(f.Store.StorePath(name), "file.txt"))
	if err != nil {
		t.Fatalf("read fetched directory entry: %v", err)
	}
	if string(got) != "dir contents" {
		t.Fatalf("fetched directory content = %q, want original bytes", got)
	}
}

func TestFetchUnknownKind(t *testing.T) {
	f := newTestFetcher(t)
	if _, err := f.Fetch(context.Background(), Spec{Kind: "ftp"}); err == nil {
		t.Fatalf("expected error for unknown source kind")
	}
}

func TestNewFetcherDefaults(t *testing.T) {
	st, err := store.New(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	f := New(st, nil)
	if f.MaxRetries != 3 {
		t.Fatalf("MaxRetries = %d, want 3", f.MaxRetries)
	}
	if f.MaxRedirects != 10 {
		t.Fatalf("MaxRedirects = %d, want 10", f.MaxRedirects)
	}
}

func TestFetchURLVerifiesHash(t *testing.T) {
	body := []byte("release tarball bytes")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(body)
	}))
	defer srv.Close()

	f := newTestFetcher(t)
	sum := sha256.Sum256(body)

	name, err := f.Fetch(context.Background(), Spec{
		Kind:         "url",
		URL:          srv.URL,
		Name:         "tarball",
		ExpectedHash: hex.EncodeToString(sum[:]),
	})
	if err != nil {
		t.Fatalf("Fetch url: %v", err)
	}
	got, err := os.ReadFile(f.Store.StorePath(name))
	if err != nil {
		t.Fatalf("read fetched store path: %v", err)
	}
	if string(got) != string(body) {
		t.Fatalf("fetched content = %q, want served bytes", got)
	}
}

// A checksum mismatch must discard the download: the error names both
// hashes and nothing is committed to the store.
func TestFetchURLChecksumMismatchLeavesNoPartialPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not what was promised"))
	}))
	defer srv.Close()

	f := newTestFetcher(t)
	_, err := f.Fetch(context.Background(), Spec{
		Kind:         "url",
		URL:          srv.URL,
		Name:         "tarball",
		ExpectedHash: strings.Repeat("0", 64),
	})
	if err == nil {
		t.Fatal("expected a checksum mismatch error")
	}
	if !strings.Contains(err.Error(), "checksum mismatch") {
		t.Fatalf("error = %v, want checksum mismatch", err)
	}

	paths, err := f.Store.AllStorePaths()
	if err != nil {
		t.Fatalf("AllStorePaths: %v", err)
	}
	if len(paths) != 0 {
		t.Fatalf("store should be empty after a failed fetch, has %v", paths)
	}
}
