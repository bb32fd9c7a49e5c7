package store

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// Lock acquires the per-path lock file for pathName, a per-path lock
// file that prevents two concurrent builds from populating the same
// output, blocking until held, and returns a function that releases
// it. Lock itself only takes the OS-level flock; de-duplicating
// concurrent in-process callers for the same pathName through
// singleflight is done by WithLock, which wraps Lock.
func (s *Store) Lock(pathName string) (unlock func(), err error) {
	lockPath := filepath.Join(s.Root, "var/locks", pathName+".lock")
	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("store: open lock %s: %w", pathName, err)
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX); err != nil {
		f.Close()
		return nil, fmt.Errorf("store: flock %s: %w", pathName, err)
	}
	return func() {
		unix.Flock(int(f.Fd()), unix.LOCK_UN)
		f.Close()
	}, nil
}

// WithLock runs fn while holding pathName's lock, additionally
// collapsing concurrent in-process callers through singleflight so only
// one goroutine actually runs fn; the rest subscribe to its completion
// and receive its cached result.
func (s *Store) WithLock(pathName string, fn func() (any, error)) (any, error) {
	v, err, _ := s.sf.Do(pathName, func() (any, error) {
		unlock, err := s.Lock(pathName)
		if err != nil {
			return nil, err
		}
		defer unlock()
		return fn()
	})
	return v, err
}
