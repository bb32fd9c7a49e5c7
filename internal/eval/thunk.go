package eval

import (
	"github.com/neve-lang/neve/internal/ast"
)

// ThunkState is a Thunk's position in the pending -> evaluating ->
// forced/failed state machine every deferred binding goes through. The
// explicit Evaluating state exists so that self-referential forcing —
// `let x = x` — is caught as a runtime error instead of recursing into
// the Go stack until it overflows.
type ThunkState int

const (
	Pending ThunkState = iota
	Evaluating
	StateForced
	Failed
)

// Thunk is a single deferred computation, memoized on first Force: every
// later Force call (from any reference sharing this Thunk, which is the
// whole point of binding names to *Thunk rather than re-evaluating their
// defining expression at each use) returns the same Value without
// re-running expr. The evaluator is single-threaded — derivation
// building runs on worker goroutines, but never reaches back into a
// Thunk from more than one goroutine at a time — so Thunk carries no
// lock.
type Thunk struct {
	state ThunkState
	expr  ast.Expr
	env   *Env
	value Value
	err   error
}

// NewThunk defers expr's evaluation in env until first forced.
func NewThunk(expr ast.Expr, env *Env) *Thunk {
	return &Thunk{state: Pending, expr: expr, env: env}
}

// Forced wraps an already-evaluated Value as a no-op Thunk, for binding
// call arguments that were evaluated eagerly (non-`lazy` parameters) or
// values produced by a builtin.
func Forced(v Value) *Thunk {
	return &Thunk{state: StateForced, value: v}
}

// Force evaluates the thunk if it hasn't been already, memoizing the
// result (or the error) so subsequent calls are free.
func (t *Thunk) Force(ev *Evaluator) (Value, error) {
	switch t.state {
	case StateForced:
		return t.value, nil
	case Failed:
		return nil, t.err
	case Evaluating:
		err := errf(t.expr.Span(), "EvalError", "value recursively depends on itself while being forced")
		t.state = Failed
		t.err = err
		return nil, err
	}
	t.state = Evaluating
	v, err := ev.Eval(t.expr, t.env)
	if err != nil {
		// A `?` short-circuit unwinds through Force like any other
		// error: a thunk is not a function boundary, so the Err/None
		// keeps propagating until applyClosureBody or Run catches it.
		// Memoized as the failure so a shared reference re-forcing this
		// thunk re-propagates the same short-circuit.
		t.state = Failed
		t.err = err
		return nil, err
	}
	t.state = StateForced
	t.value = v
	// Drop references once forced so a long-lived global thunk doesn't
	// keep its defining environment (and everything it closes over)
	// reachable after the value it produced no longer needs it.
	t.expr = nil
	t.env = nil
	return v, nil
}
