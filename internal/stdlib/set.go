package stdlib

import (
	"github.com/neve-lang/neve/internal/eval"
)

// setBuiltins implements Neve's Set module over a plain *eval.List kept
// duplicate-free by construction: every operation here inserts/removes
// through valueEqual rather than introducing a second Value variant, the
// same way biReverse/biConcat in lists.go stay inside the existing List
// representation rather than adding a new runtime type for a derived
// structure.
func setBuiltins() map[string]*eval.Builtin {
	return map[string]*eval.Builtin{
		"setEmpty":    builtin("setEmpty", 0, biSetEmpty),
		"setInsert":   builtin("setInsert", 2, biSetInsert),
		"setRemove":   builtin("setRemove", 2, biSetRemove),
		"setContains": builtin("setContains", 2, biSetContains),
		"setToList":   builtin("setToList", 1, biSetToList),
		"setFromList": builtin("setFromList", 1, biSetFromList),
		"setUnion":    builtin("setUnion", 2, biSetUnion),
		"setIntersect": builtin("setIntersect", 2, biSetIntersect),
	}
}

func biSetEmpty(ev *eval.Evaluator, args []eval.Value) (eval.Value, error) {
	if len(args) != 0 {
		return nil, wantArity("setEmpty", 0, len(args))
	}
	return eval.Nil(), nil
}

func biSetInsert(ev *eval.Evaluator, args []eval.Value) (eval.Value, error) {
	if len(args) != 2 {
		return nil, wantArity("setInsert", 2, len(args))
	}
	s, err := asList("setInsert", args, 0)
	if err != nil {
		return nil, err
	}
	v := args[1]
	for cur := s; cur != nil; cur = cur.Tail {
		if valueEqual(cur.Head, v) {
			return s, nil
		}
	}
	return eval.Cons(v, s), nil
}

func biSetRemove(ev *eval.Evaluator, args []eval.Value) (eval.Value, error) {
	if len(args) != 2 {
		return nil, wantArity("setRemove", 2, len(args))
	}
	s, err := asList("setRemove", args, 0)
	if err != nil {
		return nil, err
	}
	v := args[1]
	var out []eval.Value
	for cur := s; cur != nil; cur = cur.Tail {
		if !valueEqual(cur.Head, v) {
			out = append(out, cur.Head)
		}
	}
	return eval.FromSlice(out), nil
}

func biSetContains(ev *eval.Evaluator, args []eval.Value) (eval.Value, error) {
	if len(args) != 2 {
		return nil, wantArity("setContains", 2, len(args))
	}
	s, err := asList("setContains", args, 0)
	if err != nil {
		return nil, err
	}
	v := args[1]
	for cur := s; cur != nil; cur = cur.Tail {
		if valueEqual(cur.Head, v) {
			return eval.Bool(true), nil
		}
	}
	return eval.Bool(false), nil
}

func biSetToList(ev *eval.Evaluator, args []eval.Value) (eval.Value, error) {
	if len(args) != 1 {
		return nil, wantArity("setToList", 1, len(args))
	}
	s, err := asList("setToList", args, 0)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func biSetFromList(ev *eval.Evaluator, args []eval.Value) (eval.Value, error) {
	if len(args) != 1 {
		return nil, wantArity("setFromList", 1, len(args))
	}
	lst, err := asList("setFromList", args, 0)
	if err != nil {
		return nil, err
	}
	var out []eval.Value
	for cur := lst; cur != nil; cur = cur.Tail {
		dup := false
		for _, seen := range out {
			if valueEqual(seen, cur.Head) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, cur.Head)
		}
	}
	return eval.FromSlice(out), nil
}

func biSetUnion(ev *eval.Evaluator, args []eval.Value) (eval.Value, error) {
	if len(args) != 2 {
		return nil, wantArity("setUnion", 2, len(args))
	}
	a, err := asList("setUnion", args, 0)
	if err != nil {
		return nil, err
	}
	b, err := asList("setUnion", args, 1)
	if err != nil {
		return nil, err
	}
	out := a.ToSlice()
	for cur := b; cur != nil; cur = cur.Tail {
		dup := false
		for _, seen := range out {
			if valueEqual(seen, cur.Head) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, cur.Head)
		}
	}
	return eval.FromSlice(out), nil
}

func biSetIntersect(ev *eval.Evaluator, args []eval.Value) (eval.Value, error) {
	if len(args) != 2 {
		return nil, wantArity("setIntersect", 2, len(args))
	}
	a, err := asList("setIntersect", args, 0)
	if err != nil {
		return nil, err
	}
	b, err := asList("setIntersect", args, 1)
	if err != nil {
		return nil, err
	}
	bs := b.ToSlice()
	var out []eval.Value
	for cur := a; cur != nil; cur = cur.Tail {
		for _, bv := range bs {
			if valueEqual(cur.Head, bv) {
				out = append(out, cur.Head)
				break
			}
		}
	}
	return eval.FromSlice(out), nil
}
