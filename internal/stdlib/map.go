package stdlib

import (
	"github.com/neve-lang/neve/internal/eval"
)

// mapBuiltins implements Neve's Map (dictionary) module as an association
// list of (key, value) Tuples carried in a *eval.List, the same
// existing-representation discipline set.go follows — Neve's Value set
// has no dedicated hash-map variant (Record covers fixed-field
// aggregates, but an open-ended key/value Map needs its own shape), so
// each lookup/insert walks the list comparing keys with valueEqual
// rather than requiring a Go-level hashable key type.
func mapBuiltins() map[string]*eval.Builtin {
	return map[string]*eval.Builtin{
		"mapEmpty":   builtin("mapEmpty", 0, biMapEmpty),
		"mapInsert":  builtin("mapInsert", 3, biMapInsert),
		"mapRemove":  builtin("mapRemove", 2, biMapRemove),
		"mapGet":     builtin("mapGet", 2, biMapGet),
		"mapHasKey":  builtin("mapHasKey", 2, biMapHasKey),
		"mapKeys":    builtin("mapKeys", 1, biMapKeys),
		"mapValues":  builtin("mapValues", 1, biMapValues),
		"mapToList":  builtin("mapToList", 1, biMapToList),
	}
}

func entryKey(v eval.Value) (eval.Value, eval.Value, bool) {
	t, ok := v.(eval.Tuple)
	if !ok || len(t) != 2 {
		return nil, nil, false
	}
	return t[0], t[1], true
}

func biMapEmpty(ev *eval.Evaluator, args []eval.Value) (eval.Value, error) {
	if len(args) != 0 {
		return nil, wantArity("mapEmpty", 0, len(args))
	}
	return eval.Nil(), nil
}

func biMapInsert(ev *eval.Evaluator, args []eval.Value) (eval.Value, error) {
	if len(args) != 3 {
		return nil, wantArity("mapInsert", 3, len(args))
	}
	m, err := asList("mapInsert", args, 0)
	if err != nil {
		return nil, err
	}
	key, val := args[1], args[2]
	var out []eval.Value
	replaced := false
	for cur := m; cur != nil; cur = cur.Tail {
		k, _, ok := entryKey(cur.Head)
		if ok && valueEqual(k, key) {
			out = append(out, eval.Tuple{key, val})
			replaced = true
		} else {
			out = append(out, cur.Head)
		}
	}
	if !replaced {
		out = append(out, eval.Tuple{key, val})
	}
	return eval.FromSlice(out), nil
}

func biMapRemove(ev *eval.Evaluator, args []eval.Value) (eval.Value, error) {
	if len(args) != 2 {
		return nil, wantArity("mapRemove", 2, len(args))
	}
	m, err := asList("mapRemove", args, 0)
	if err != nil {
		return nil, err
	}
	key := args[1]
	var out []eval.Value
	for cur := m; cur != nil; cur = cur.Tail {
		k, _, ok := entryKey(cur.Head)
		if ok && valueEqual(k, key) {
			continue
		}
		out = append(out, cur.Head)
	}
	return eval.FromSlice(out), nil
}

func biMapGet(ev *eval.Evaluator, args []eval.Value) (eval.Value, error) {
	if len(args) != 2 {
		return nil, wantArity("mapGet", 2, len(args))
	}
	m, err := asList("mapGet", args, 0)
	if err != nil {
		return nil, err
	}
	key := args[1]
	for cur := m; cur != nil; cur = cur.Tail {
		k, v, ok := entryKey(cur.Head)
		if ok && valueEqual(k, key) {
			return &eval.Ctor{Tag: "Some", Payload: []eval.Value{v}}, nil
		}
	}
	return &eval.Ctor{Tag: "None"}, nil
}

func biMapHasKey(ev *eval.Evaluator, args []eval.Value) (eval.Value, error) {
	if len(args) != 2 {
		return nil, wantArity("mapHasKey", 2, len(args))
	}
	m, err := asList("mapHasKey", args, 0)
	if err != nil {
		return nil, err
	}
	key := args[1]
	for cur := m; cur != nil; cur = cur.Tail {
		if k, _, ok := entryKey(cur.Head); ok && valueEqual(k, key) {
			return eval.Bool(true), nil
		}
	}
	return eval.Bool(false), nil
}

func biMapKeys(ev *eval.Evaluator, args []eval.Value) (eval.Value, error) {
	if len(args) != 1 {
		return nil, wantArity("mapKeys", 1, len(args))
	}
	m, err := asList("mapKeys", args, 0)
	if err != nil {
		return nil, err
	}
	var out []eval.Value
	for cur := m; cur != nil; cur = cur.Tail {
		if k, _, ok := entryKey(cur.Head); ok {
			out = append(out, k)
		}
	}
	return eval.FromSlice(out), nil
}

func biMapValues(ev *eval.Evaluator, args []eval.Value) (eval.Value, error) {
	if len(args) != 1 {
		return nil, wantArity("mapValues", 1, len(args))
	}
	m, err := asList("mapValues", args, 0)
	if err != nil {
		return nil, err
	}
	var out []eval.Value
	for cur := m; cur != nil; cur = cur.Tail {
		if _, v, ok := entryKey(cur.Head); ok {
			out = append(out, v)
		}
	}
	return eval.FromSlice(out), nil
}

func biMapToList(ev *eval.Evaluator, args []eval.Value) (eval.Value, error) {
	if len(args) != 1 {
		return nil, wantArity("mapToList", 1, len(args))
	}
	m, err := asList("mapToList", args, 0)
	if err != nil {
		return nil, err
	}
	return m, nil
}
