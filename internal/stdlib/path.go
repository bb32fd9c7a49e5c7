package stdlib

import (
	"path/filepath"

	"github.com/neve-lang/neve/internal/eval"
)

// pathBuiltins operates on the Path primitive (eval.PathV), kept
// separate from strings.go since it's a distinct domain even though
// both ultimately wrap a Go string.
func pathBuiltins() map[string]*eval.Builtin {
	return map[string]*eval.Builtin{
		"pathJoin":    builtin("pathJoin", 2, biPathJoin),
		"pathBase":    builtin("pathBase", 1, biPathBase),
		"pathDir":     builtin("pathDir", 1, biPathDir),
		"pathExt":     builtin("pathExt", 1, biPathExt),
		"pathToStr":   builtin("pathToStr", 1, biPathToStr),
		"strToPath":   builtin("strToPath", 1, biStrToPath),
	}
}

func asPath(name string, args []eval.Value, i int) (eval.PathV, error) {
	v, ok := args[i].(eval.PathV)
	if !ok {
		return "", errf("%s() expects Path for argument %d, got %s", name, i+1, args[i].Type())
	}
	return v, nil
}

func biPathJoin(ev *eval.Evaluator, args []eval.Value) (eval.Value, error) {
	if len(args) != 2 {
		return nil, wantArity("pathJoin", 2, len(args))
	}
	a, err := asPath("pathJoin", args, 0)
	if err != nil {
		return nil, err
	}
	b, err := asPath("pathJoin", args, 1)
	if err != nil {
		return nil, err
	}
	return eval.PathV(filepath.Join(string(a), string(b))), nil
}

func biPathBase(ev *eval.Evaluator, args []eval.Value) (eval.Value, error) {
	if len(args) != 1 {
		return nil, wantArity("pathBase", 1, len(args))
	}
	p, err := asPath("pathBase", args, 0)
	if err != nil {
		return nil, err
	}
	return eval.PathV(filepath.Base(string(p))), nil
}

func biPathDir(ev *eval.Evaluator, args []eval.Value) (eval.Value, error) {
	if len(args) != 1 {
		return nil, wantArity("pathDir", 1, len(args))
	}
	p, err := asPath("pathDir", args, 0)
	if err != nil {
		return nil, err
	}
	return eval.PathV(filepath.Dir(string(p))), nil
}

func biPathExt(ev *eval.Evaluator, args []eval.Value) (eval.Value, error) {
	if len(args) != 1 {
		return nil, wantArity("pathExt", 1, len(args))
	}
	p, err := asPath("pathExt", args, 0)
	if err != nil {
		return nil, err
	}
	return eval.Str(filepath.Ext(string(p))), nil
}

func biPathToStr(ev *eval.Evaluator, args []eval.Value) (eval.Value, error) {
	if len(args) != 1 {
		return nil, wantArity("pathToStr", 1, len(args))
	}
	p, err := asPath("pathToStr", args, 0)
	if err != nil {
		return nil, err
	}
	return eval.Str(string(p)), nil
}

func biStrToPath(ev *eval.Evaluator, args []eval.Value) (eval.Value, error) {
	if len(args) != 1 {
		return nil, wantArity("strToPath", 1, len(args))
	}
	s, err := asStr("strToPath", args, 0)
	if err != nil {
		return nil, err
	}
	return eval.PathV(string(s)), nil
}
