package stdlib

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/neve-lang/neve/internal/eval"
)

// stringBuiltins exercises golang.org/x/text/cases for locale-aware case
// folding rather than strings.ToUpper/ToLower's ASCII-biased byte-level
// conversion.
func stringBuiltins() map[string]*eval.Builtin {
	return map[string]*eval.Builtin{
		"strUpper": builtin("strUpper", 1, biStrUpper),
		"strLower": builtin("strLower", 1, biStrLower),
		"strTrim":  builtin("strTrim", 1, biStrTrim),
		"strSplit": builtin("strSplit", 2, biStrSplit),
		"strJoin":  builtin("strJoin", 2, biStrJoin),
		"strContains": builtin("strContains", 2, biStrContains),
	}
}

func biStrUpper(ev *eval.Evaluator, args []eval.Value) (eval.Value, error) {
	if len(args) != 1 {
		return nil, wantArity("strUpper", 1, len(args))
	}
	s, err := asStr("strUpper", args, 0)
	if err != nil {
		return nil, err
	}
	return eval.Str(cases.Upper(language.Und).String(string(s))), nil
}

func biStrLower(ev *eval.Evaluator, args []eval.Value) (eval.Value, error) {
	if len(args) != 1 {
		return nil, wantArity("strLower", 1, len(args))
	}
	s, err := asStr("strLower", args, 0)
	if err != nil {
		return nil, err
	}
	return eval.Str(cases.Lower(language.Und).String(string(s))), nil
}

func biStrTrim(ev *eval.Evaluator, args []eval.Value) (eval.Value, error) {
	if len(args) != 1 {
		return nil, wantArity("strTrim", 1, len(args))
	}
	s, err := asStr("strTrim", args, 0)
	if err != nil {
		return nil, err
	}
	return eval.Str(strings.TrimSpace(string(s))), nil
}

func biStrSplit(ev *eval.Evaluator, args []eval.Value) (eval.Value, error) {
	if len(args) != 2 {
		return nil, wantArity("strSplit", 2, len(args))
	}
	s, err := asStr("strSplit", args, 0)
	if err != nil {
		return nil, err
	}
	sep, err := asStr("strSplit", args, 1)
	if err != nil {
		return nil, err
	}
	parts := strings.Split(string(s), string(sep))
	out := make([]eval.Value, len(parts))
	for i, p := range parts {
		out[i] = eval.Str(p)
	}
	return eval.FromSlice(out), nil
}

func biStrJoin(ev *eval.Evaluator, args []eval.Value) (eval.Value, error) {
	if len(args) != 2 {
		return nil, wantArity("strJoin", 2, len(args))
	}
	lst, err := asList("strJoin", args, 0)
	if err != nil {
		return nil, err
	}
	sep, err := asStr("strJoin", args, 1)
	if err != nil {
		return nil, err
	}
	elems := lst.ToSlice()
	parts := make([]string, len(elems))
	for i, e := range elems {
		s, ok := e.(eval.Str)
		if !ok {
			return nil, errf("strJoin() expects a List of Strings, got element of type %s", e.Type())
		}
		parts[i] = string(s)
	}
	return eval.Str(strings.Join(parts, string(sep))), nil
}

func biStrContains(ev *eval.Evaluator, args []eval.Value) (eval.Value, error) {
	if len(args) != 2 {
		return nil, wantArity("strContains", 2, len(args))
	}
	s, err := asStr("strContains", args, 0)
	if err != nil {
		return nil, err
	}
	sub, err := asStr("strContains", args, 1)
	if err != nil {
		return nil, err
	}
	return eval.Bool(strings.Contains(string(s), string(sub))), nil
}
