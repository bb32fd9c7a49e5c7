package eval

import (
	"fmt"

	"github.com/neve-lang/neve/internal/span"
)

// EvalError is a runtime failure: a pattern-match falling through with no
// arm, a `?` propagating out of `main`, a builtin rejecting its argument
// shape, or a thunk caught forcing itself. Sp is the zero Span when the
// failure has no single source location (e.g. a builtin's internal
// argument-arity check).
type EvalError struct {
	Sp      span.Span
	Kind    string
	Message string
}

func (e *EvalError) Error() string {
	if e.Kind != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return e.Message
}

func errf(sp span.Span, kind, format string, args ...interface{}) error {
	return &EvalError{Sp: sp, Kind: kind, Message: fmt.Sprintf(format, args...)}
}
