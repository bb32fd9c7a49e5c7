// Package stdlib builds the builtin table the evaluator falls back to
// for any identifier internal/hir couldn't resolve to a local, global,
// or qualified import (eval.go's evalIdent: "if b, ok :=
// ev.Builtins[name]"). One file per domain (strings, lists, math, ...),
// each function taking already-evaluated arguments and checking its
// own arity.
package stdlib

import (
	"fmt"

	"github.com/neve-lang/neve/internal/eval"
)

// errf builds an arity/type-mismatch error the same shape internal/eval's
// own EvalError takes, without reaching into that package's unexported
// constructor.
func errf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}

// Prelude returns the full set of builtins available to every module,
// merging each domain file's contribution. internal/eval.NewEvaluator
// takes the result directly as its builtins table.
func Prelude() map[string]*eval.Builtin {
	out := map[string]*eval.Builtin{}
	for _, group := range [](map[string]*eval.Builtin){
		listBuiltins(),
		stringBuiltins(),
		mathBuiltins(),
		optionResultBuiltins(),
		ioBuiltins(),
		setBuiltins(),
		mapBuiltins(),
		pathBuiltins(),
	} {
		for name, b := range group {
			out[name] = b
		}
	}
	return out
}

func builtin(name string, arity int, fn func(ev *eval.Evaluator, args []eval.Value) (eval.Value, error)) *eval.Builtin {
	return &eval.Builtin{Name: name, Arity: arity, Fn: fn}
}

func wantArity(name string, want, got int) error {
	return errf("%s() expects %d argument(s), got %d", name, want, got)
}

func asInt(name string, args []eval.Value, i int) (eval.Int, error) {
	v, ok := args[i].(eval.Int)
	if !ok {
		return eval.Int{}, errf("%s() expects Int for argument %d, got %s", name, i+1, args[i].Type())
	}
	return v, nil
}

func asStr(name string, args []eval.Value, i int) (eval.Str, error) {
	v, ok := args[i].(eval.Str)
	if !ok {
		return "", errf("%s() expects String for argument %d, got %s", name, i+1, args[i].Type())
	}
	return v, nil
}

func asList(name string, args []eval.Value, i int) (*eval.List, error) {
	v, ok := args[i].(*eval.List)
	if !ok {
		return nil, errf("%s() expects List for argument %d, got %s", name, i+1, args[i].Type())
	}
	return v, nil
}
