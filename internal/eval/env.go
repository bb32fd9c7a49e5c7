package eval

import "github.com/neve-lang/neve/internal/hir"

// Env is a persistent, outer-linked environment mapping a function
// body's LocalIds to their bound Thunks, keyed by hir.LocalId instead of
// by name (name resolution already happened in internal/hir, so the
// evaluator never does string lookups). A *Env is never mutated after
// its bindings are installed — extending scope allocates a new child
// Env — which is what lets a Closure safely retain the Env it was built
// in even as evaluation continues past that point: structural sharing,
// no aliasing surprises.
type Env struct {
	outer  *Env
	locals map[hir.LocalId]*Thunk
}

// NewEnv starts a fresh child scope under outer (nil for a top-level
// function body, since top-level globals are resolved through the
// Evaluator's separate DefId table, not through Env chaining).
func NewEnv(outer *Env) *Env {
	return &Env{outer: outer, locals: make(map[hir.LocalId]*Thunk)}
}

// Bind installs id -> th in e. Only ever called while e is being built
// (function entry, block-let processing, match-arm binding); once a Env
// is captured by a Closure or handed to Eval it is treated as read-only.
func (e *Env) Bind(id hir.LocalId, th *Thunk) {
	e.locals[id] = th
}

// Lookup walks e's outer chain for id.
func (e *Env) Lookup(id hir.LocalId) (*Thunk, bool) {
	for cur := e; cur != nil; cur = cur.outer {
		if th, ok := cur.locals[id]; ok {
			return th, true
		}
	}
	return nil, false
}
