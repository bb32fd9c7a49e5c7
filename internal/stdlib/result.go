package stdlib

import (
	"github.com/neve-lang/neve/internal/eval"
)

// optionResultBuiltins supplies the runtime constructors/inspectors for
// Neve's Option/Result tags as plain Ctor values rather than a source-level
// enum declaration: internal/checker's wellknown.go already treats Some/
// None/Ok/Err as checker-known types, so the evaluator side only needs to
// produce values carrying the matching tag, the same tag convention
// TestEvalTryPropagation's `?`-propagation test exercises directly.
func optionResultBuiltins() map[string]*eval.Builtin {
	return map[string]*eval.Builtin{
		"Some":    builtin("Some", 1, biSome),
		"Ok":      builtin("Ok", 1, biOk),
		"Err":     builtin("Err", 1, biErr),
		"isSome":  builtin("isSome", 1, tagPredicate("isSome", "Some")),
		"isNone":  builtin("isNone", 1, tagPredicate("isNone", "None")),
		"isOk":    builtin("isOk", 1, tagPredicate("isOk", "Ok")),
		"isErr":   builtin("isErr", 1, tagPredicate("isErr", "Err")),
		"unwrap":  builtin("unwrap", 1, biUnwrap),
	}
}

func biSome(ev *eval.Evaluator, args []eval.Value) (eval.Value, error) {
	if len(args) != 1 {
		return nil, wantArity("Some", 1, len(args))
	}
	return &eval.Ctor{Tag: "Some", Payload: args}, nil
}

func biOk(ev *eval.Evaluator, args []eval.Value) (eval.Value, error) {
	if len(args) != 1 {
		return nil, wantArity("Ok", 1, len(args))
	}
	return &eval.Ctor{Tag: "Ok", Payload: args}, nil
}

func biErr(ev *eval.Evaluator, args []eval.Value) (eval.Value, error) {
	if len(args) != 1 {
		return nil, wantArity("Err", 1, len(args))
	}
	return &eval.Ctor{Tag: "Err", Payload: args}, nil
}

func tagPredicate(name, tag string) func(ev *eval.Evaluator, args []eval.Value) (eval.Value, error) {
	return func(ev *eval.Evaluator, args []eval.Value) (eval.Value, error) {
		if len(args) != 1 {
			return nil, wantArity(name, 1, len(args))
		}
		c, ok := args[0].(*eval.Ctor)
		if !ok {
			return nil, errf("%s() expects an Option/Result value, got %s", name, args[0].Type())
		}
		return eval.Bool(c.Tag == tag), nil
	}
}

// biUnwrap extracts Some(v)/Ok(v)'s payload, raising an EvalError-shaped
// failure for None/Err rather than panicking — the explicit,
// non-propagating counterpart to `?`'s propagate-on-failure behavior.
func biUnwrap(ev *eval.Evaluator, args []eval.Value) (eval.Value, error) {
	if len(args) != 1 {
		return nil, wantArity("unwrap", 1, len(args))
	}
	c, ok := args[0].(*eval.Ctor)
	if !ok || len(c.Payload) != 1 {
		return nil, errf("unwrap() expects a Some/Ok value, got %s", eval.Show(args[0]))
	}
	switch c.Tag {
	case "Some", "Ok":
		return c.Payload[0], nil
	default:
		return nil, errf("unwrap() called on %s", eval.Show(args[0]))
	}
}
