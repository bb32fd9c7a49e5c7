package store

import (
	"bytes"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// QueryReferences scans pathName's on-disk content for textual
// occurrences of every other store path's hash. Results are memoized
// in s.refCache with write-on-first-scan semantics, safe under s.mu
// since a second concurrent scan of the same path just redoes the
// (idempotent) work rather than racing on a partial write.
func (s *Store) QueryReferences(pathName string) ([]string, error) {
	s.mu.Lock()
	if cached, ok := s.refCache[pathName]; ok {
		s.mu.Unlock()
		return cached, nil
	}
	s.mu.Unlock()

	candidates, err := s.AllStorePaths()
	if err != nil {
		return nil, err
	}

	content, err := s.readAllContent(pathName)
	if err != nil {
		return nil, err
	}

	var refs []string
	for _, cand := range candidates {
		if cand == pathName {
			continue
		}
		h := hashPrefix(cand)
		if h != "" && bytes.Contains(content, []byte(h)) {
			refs = append(refs, cand)
		}
	}

	s.mu.Lock()
	s.refCache[pathName] = refs
	s.mu.Unlock()
	return refs, nil
}

// hashPrefix extracts the "<hash>" portion of a "<hash>-<name>" store
// path name; base32 digests never contain '-', so the first segment
// before it is always the hash.
func hashPrefix(pathName string) string {
	idx := indexByte(pathName, '-')
	if idx < 0 {
		return ""
	}
	return pathName[:idx]
}

func indexByte(s string, b byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return i
		}
	}
	return -1
}

// readAllContent concatenates every regular file's bytes under
// pathName (or returns the file itself, if pathName names a single
// file), walking directories with an explicit queue to avoid host-stack
// recursion over deep trees.
func (s *Store) readAllContent(pathName string) ([]byte, error) {
	root := s.StorePath(pathName)
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return os.ReadFile(root)
	}

	var out []byte
	queue := []string{root}
	for len(queue) > 0 {
		dir := queue[0]
		queue = queue[1:]
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			full := filepath.Join(dir, e.Name())
			if e.IsDir() {
				queue = append(queue, full)
				continue
			}
			data, err := os.ReadFile(full)
			if err != nil {
				continue // unreadable symlink target or similar; skip rather than fail the whole scan
			}
			out = append(out, data...)
		}
	}
	return out, nil
}

// GC performs mark-and-sweep collection: roots (plus every live
// generation and declared GC root) are marked reachable, the reference
// closure is expanded through an explicit queue (again sidestepping
// recursion over a potentially deep dependency graph), and any store
// path left unmarked is removed. Removal is iterative path-by-path
// rather than recursively unlinking a root's dependents first, since
// the sweep only ever looks at top-level store path directories, never
// at the graph structure during deletion.
func (s *Store) GC(extraRoots []string) ([]string, error) {
	roots, err := s.liveRoots(extraRoots)
	if err != nil {
		return nil, err
	}

	reachable := map[string]bool{}
	queue := append([]string(nil), roots...)
	for _, r := range roots {
		reachable[r] = true
	}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		refs, err := s.QueryReferences(p)
		if err != nil {
			s.Log.Warn("gc: reference scan failed", zap.String("path", p), zap.Error(err))
			continue
		}
		for _, r := range refs {
			if !reachable[r] {
				reachable[r] = true
				queue = append(queue, r)
			}
		}
	}

	all, err := s.AllStorePaths()
	if err != nil {
		return nil, err
	}

	var removed []string
	for _, p := range all {
		if reachable[p] {
			continue
		}
		if err := os.RemoveAll(s.StorePath(p)); err != nil {
			s.Log.Warn("gc: failed to remove", zap.String("path", p), zap.Error(err))
			continue
		}
		s.mu.Lock()
		delete(s.refCache, p)
		s.mu.Unlock()
		removed = append(removed, p)
		s.Log.Info("gc: removed", zap.String("path", p))
	}
	return removed, nil
}

// liveRoots collects every store path named by a generation symlink, a
// declared gcroot, or extraRoots — the roots mark-and-sweep
// reachability is computed from.
func (s *Store) liveRoots(extraRoots []string) ([]string, error) {
	roots := append([]string(nil), extraRoots...)

	gens, err := s.ListGenerations()
	if err != nil {
		return nil, err
	}
	for _, g := range gens {
		target, err := s.GenerationTarget(g)
		if err == nil && target != "" {
			roots = append(roots, target)
		}
	}

	gcrootDir := filepath.Join(s.Root, "var/gcroots")
	entries, err := os.ReadDir(gcrootDir)
	if err == nil {
		for _, e := range entries {
			target, err := os.Readlink(filepath.Join(gcrootDir, e.Name()))
			if err == nil {
				roots = append(roots, filepath.Base(target))
			}
		}
	}
	return roots, nil
}
