package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"
)

// ListGenerations returns every generation number currently recorded
// under var/generations, ascending. A generation is a numbered
// snapshot of a system configuration, used for rollback.
func (s *Store) ListGenerations() ([]int, error) {
	dir := filepath.Join(s.Root, "var/generations")
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var gens []int
	for _, e := range entries {
		n, err := strconv.Atoi(e.Name())
		if err != nil {
			continue
		}
		gens = append(gens, n)
	}
	sort.Ints(gens)
	return gens, nil
}

// GenerationTarget returns the store path name a generation symlink
// points at.
func (s *Store) GenerationTarget(n int) (string, error) {
	link := filepath.Join(s.Root, "var/generations", strconv.Itoa(n))
	target, err := os.Readlink(link)
	if err != nil {
		return "", err
	}
	return filepath.Base(target), nil
}

// NewGeneration records a fresh generation pointing at rootStorePath
// (the realized root derivation's output), numbered one past the
// current highest generation, and returns its number. manifest is the
// source path of the system configuration that produced rootStorePath,
// recorded in the generation's metadata sidecar for `config list`; pass
// "" if none applies. Used by `config build`/`switch`.
func (s *Store) NewGeneration(rootStorePath, manifest string) (int, error) {
	gens, err := s.ListGenerations()
	if err != nil {
		return 0, err
	}
	next := 1
	if len(gens) > 0 {
		next = gens[len(gens)-1] + 1
	}
	link := filepath.Join(s.Root, "var/generations", strconv.Itoa(next))
	if err := os.Symlink(s.StorePath(rootStorePath), link); err != nil {
		return 0, fmt.Errorf("store: new generation: %w", err)
	}
	meta := GenerationMeta{RootPath: rootStorePath, CreatedAt: time.Now(), Manifest: manifest}
	if err := s.writeGenerationMeta(next, meta); err != nil {
		return 0, fmt.Errorf("store: new generation: %w", err)
	}
	return next, nil
}

// CurrentGeneration reads the "current" marker under var/generations.
// Before the first switch the marker is absent and the highest existing
// generation is current by convention (0 when none exist at all).
func (s *Store) CurrentGeneration() (int, error) {
	target, err := os.Readlink(filepath.Join(s.Root, "var/generations", "current"))
	if err == nil {
		if n, perr := strconv.Atoi(filepath.Base(target)); perr == nil {
			return n, nil
		}
	}
	gens, err := s.ListGenerations()
	if err != nil || len(gens) == 0 {
		return 0, err
	}
	return gens[len(gens)-1], nil
}

// SetCurrentGeneration repoints the "current" marker at generation n.
// The switch is a symlink-then-rename, so a reader of "current" sees
// either the old target or the new one, never a missing marker.
func (s *Store) SetCurrentGeneration(n int) error {
	dir := filepath.Join(s.Root, "var/generations")
	if _, err := os.Lstat(filepath.Join(dir, strconv.Itoa(n))); err != nil {
		return fmt.Errorf("store: switch to generation %d: %w", n, err)
	}
	tmp := filepath.Join(dir, ".current.tmp")
	os.Remove(tmp)
	if err := os.Symlink(strconv.Itoa(n), tmp); err != nil {
		return fmt.Errorf("store: switch to generation %d: %w", n, err)
	}
	if err := os.Rename(tmp, filepath.Join(dir, "current")); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("store: switch to generation %d: %w", n, err)
	}
	return nil
}

// Rollback repoints the "current" marker at the generation immediately
// before the active one and returns its number. current identifies the
// generation to roll back from (0 selects the active generation).
func (s *Store) Rollback(current int) (int, error) {
	gens, err := s.ListGenerations()
	if err != nil {
		return 0, err
	}
	if len(gens) == 0 {
		return 0, fmt.Errorf("store: no generations to roll back to")
	}
	if current == 0 {
		if current, err = s.CurrentGeneration(); err != nil {
			return 0, err
		}
	}
	var prev int
	for _, g := range gens {
		if g < current {
			prev = g
		}
	}
	if prev == 0 {
		return 0, fmt.Errorf("store: generation %d has no predecessor", current)
	}
	if err := s.SetCurrentGeneration(prev); err != nil {
		return 0, err
	}
	return prev, nil
}

// AddGCRoot declares pathName live under var/gcroots/<id>, surviving GC
// regardless of generation membership.
func (s *Store) AddGCRoot(id, pathName string) error {
	link := filepath.Join(s.Root, "var/gcroots", id)
	os.Remove(link)
	return os.Symlink(s.StorePath(pathName), link)
}

// RemoveGCRoot un-declares a previously added root.
func (s *Store) RemoveGCRoot(id string) error {
	return os.Remove(filepath.Join(s.Root, "var/gcroots", id))
}

// GCRoot is one declared root: its id under var/gcroots and the store
// path name it pins.
type GCRoot struct {
	ID     string
	Target string
}

// ListGCRoots returns every declared root, sorted by id.
func (s *Store) ListGCRoots() ([]GCRoot, error) {
	dir := filepath.Join(s.Root, "var/gcroots")
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var roots []GCRoot
	for _, e := range entries {
		target, err := os.Readlink(filepath.Join(dir, e.Name()))
		if err != nil {
			continue
		}
		roots = append(roots, GCRoot{ID: e.Name(), Target: filepath.Base(target)})
	}
	sort.Slice(roots, func(i, j int) bool { return roots[i].ID < roots[j].ID })
	return roots, nil
}
