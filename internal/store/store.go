// Package store implements the content-addressed filesystem artifacts
// live under: <root>/store/<hash>-<name>, identified by either an
// input-addressed derivation hash or a fixed-output content hash
// (internal/derivation computes both). This package only owns the
// filesystem and its metadata (locks, references, generations);
// internal/builder decides *what* ends up at a given store path.
//
// Concurrent builders racing to populate the same output path
// singleflight onto one another rather than duplicating the work: a
// caller that finds a build already in flight subscribes to its
// completion instead of starting a redundant one.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/neve-lang/neve/internal/hash"
	"github.com/neve-lang/neve/internal/nar"
)

// DefaultRoot is the documented default store location.
const DefaultRoot = "/neve/store"

// Store is one content-addressed store rooted at Root.
type Store struct {
	Root string
	Log  *zap.Logger

	mu       sync.Mutex
	refCache map[string][]string // store path name -> referenced store path names, write-on-first-scan
	sf       singleflight.Group
}

// New opens (creating if necessary) a Store at root. The store, var/log,
// var/locks, var/generations, and var/gcroots subdirectories are created
// eagerly so every other method can assume they exist.
func New(root string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Store{Root: root, Log: log, refCache: map[string][]string{}}
	for _, dir := range []string{"store", "var/log", "var/locks", "var/generations", "var/gcroots"} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
			return nil, fmt.Errorf("store: init %s: %w", dir, err)
		}
	}
	return s, nil
}

// StorePath returns the absolute filesystem path for a store path name
// ("<hash>-<name>").
func (s *Store) StorePath(name string) string {
	return filepath.Join(s.Root, "store", name)
}

// Exists reports whether a store path is already populated: readers
// see either an absent path or a fully populated one, so callers can
// check this without locking for reads.
func (s *Store) Exists(name string) bool {
	_, err := os.Stat(s.StorePath(name))
	return err == nil
}

// AddFile writes data under a fresh store path named "<hash>-<name>"
// and returns that name: hash the bytes, place them under
// {hash}-{name}.
func (s *Store) AddFile(data []byte, name string) (string, error) {
	digest := hash.Sum(data)
	pathName := digest.Base32() + "-" + name
	dest := s.StorePath(pathName)
	if s.Exists(pathName) {
		return pathName, nil
	}

	unlock, err := s.Lock(pathName)
	if err != nil {
		return "", err
	}
	defer unlock()
	if s.Exists(pathName) {
		return pathName, nil
	}

	tmp := dest + ".tmp"
	if err := os.WriteFile(tmp, data, 0o444); err != nil {
		return "", fmt.Errorf("store: add_file %s: %w", name, err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		return "", fmt.Errorf("store: add_file %s: finalize: %w", name, err)
	}
	s.Log.Info("store: added file", zap.String("path", pathName))
	return pathName, nil
}

// AddDirectory serializes dir to NAR form, hashes the NAR bytes, and
// extracts the tree under the resulting store path.
func (s *Store) AddDirectory(dir, name string) (string, error) {
	tree, err := nar.ReadTree(dir)
	if err != nil {
		return "", fmt.Errorf("store: add_directory %s: read: %w", name, err)
	}

	var buf fileBuffer
	if err := nar.Encode(&buf, tree); err != nil {
		return "", fmt.Errorf("store: add_directory %s: encode: %w", name, err)
	}
	digest := hash.Sum(buf.Bytes())
	pathName := digest.Base32() + "-" + name
	if s.Exists(pathName) {
		return pathName, nil
	}

	unlock, err := s.Lock(pathName)
	if err != nil {
		return "", err
	}
	defer unlock()
	if s.Exists(pathName) {
		return pathName, nil
	}

	tmp := s.StorePath(pathName) + ".tmp"
	if err := nar.WriteTree(tmp, tree); err != nil {
		return "", fmt.Errorf("store: add_directory %s: write: %w", name, err)
	}
	if err := os.Rename(tmp, s.StorePath(pathName)); err != nil {
		return "", fmt.Errorf("store: add_directory %s: finalize: %w", name, err)
	}
	s.Log.Info("store: added directory", zap.String("path", pathName))
	return pathName, nil
}

// fileBuffer is a minimal in-memory io.Writer, kept local to avoid
// pulling bytes.Buffer's larger surface in for what is just "accumulate
// then hash."
type fileBuffer struct{ b []byte }

func (f *fileBuffer) Write(p []byte) (int, error) {
	f.b = append(f.b, p...)
	return len(p), nil
}
func (f *fileBuffer) Bytes() []byte { return f.b }

// AllStorePaths lists every store path name currently on disk, used by
// QueryReferences (to know which hashes are worth searching for) and GC
// (to know the sweep universe).
func (s *Store) AllStorePaths() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.Root, "store"))
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		name := e.Name()
		if filepath.Ext(name) == ".tmp" {
			continue
		}
		out = append(out, name)
	}
	return out, nil
}
