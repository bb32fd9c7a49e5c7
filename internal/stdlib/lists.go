package stdlib

import (
	"github.com/neve-lang/neve/internal/eval"
)

// listBuiltins is one per-domain builtins file, one function per
// entry, each validating its own argument count and types.
func listBuiltins() map[string]*eval.Builtin {
	return map[string]*eval.Builtin{
		"length":     builtin("length", 1, biLength),
		"reverse":    builtin("reverse", 1, biReverse),
		"concat":     builtin("concat", 2, biConcat),
		"head":       builtin("head", 1, biHead),
		"tail":       builtin("tail", 1, biTail),
		"map":        builtin("map", 2, biMap),
		"filter":     builtin("filter", 2, biFilter),
		"fold":       builtin("fold", 3, biFold),
		"fold_right": builtin("fold_right", 3, biFoldRight),
		"take":       builtin("take", 2, biTake),
		"drop":       builtin("drop", 2, biDrop),
		"zip":        builtin("zip", 2, biZip),
		"range":      builtin("range", 2, biRange),
	}
}

func biLength(ev *eval.Evaluator, args []eval.Value) (eval.Value, error) {
	if len(args) != 1 {
		return nil, wantArity("length", 1, len(args))
	}
	switch v := args[0].(type) {
	case *eval.List:
		return eval.NewInt(int64(v.Len())), nil
	case eval.Str:
		return eval.NewInt(int64(len([]rune(string(v))))), nil
	default:
		return nil, errf("length() expects List or String, got %s", args[0].Type())
	}
}

func biReverse(ev *eval.Evaluator, args []eval.Value) (eval.Value, error) {
	if len(args) != 1 {
		return nil, wantArity("reverse", 1, len(args))
	}
	lst, err := asList("reverse", args, 0)
	if err != nil {
		return nil, err
	}
	var out *eval.List
	for cur := lst; cur != nil; cur = cur.Tail {
		out = eval.Cons(cur.Head, out)
	}
	return out, nil
}

func biConcat(ev *eval.Evaluator, args []eval.Value) (eval.Value, error) {
	if len(args) != 2 {
		return nil, wantArity("concat", 2, len(args))
	}
	a, err := asList("concat", args, 0)
	if err != nil {
		return nil, err
	}
	b, err := asList("concat", args, 1)
	if err != nil {
		return nil, err
	}
	return eval.Concat(a, b), nil
}

func biHead(ev *eval.Evaluator, args []eval.Value) (eval.Value, error) {
	if len(args) != 1 {
		return nil, wantArity("head", 1, len(args))
	}
	lst, err := asList("head", args, 0)
	if err != nil {
		return nil, err
	}
	if lst == nil {
		return nil, errf("head() called on an empty list")
	}
	return lst.Head, nil
}

func biTail(ev *eval.Evaluator, args []eval.Value) (eval.Value, error) {
	if len(args) != 1 {
		return nil, wantArity("tail", 1, len(args))
	}
	lst, err := asList("tail", args, 0)
	if err != nil {
		return nil, err
	}
	if lst == nil {
		return nil, errf("tail() called on an empty list")
	}
	return lst.Tail, nil
}

// biMap applies fn (a Closure/Builtin Value, not an ast.Expr) to every
// element, eagerly: the elimination-position forcing discipline applies
// to how arguments reach a call, not to what a builtin does with
// Values it already holds, so there is no laziness to preserve here.
func biMap(ev *eval.Evaluator, args []eval.Value) (eval.Value, error) {
	if len(args) != 2 {
		return nil, wantArity("map", 2, len(args))
	}
	lst, err := asList("map", args, 0)
	if err != nil {
		return nil, err
	}
	fn := args[1]
	elems := lst.ToSlice()
	out := make([]eval.Value, len(elems))
	for i, e := range elems {
		v, err := ev.Apply(fn, []eval.Value{e})
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return eval.FromSlice(out), nil
}

func biFilter(ev *eval.Evaluator, args []eval.Value) (eval.Value, error) {
	if len(args) != 2 {
		return nil, wantArity("filter", 2, len(args))
	}
	lst, err := asList("filter", args, 0)
	if err != nil {
		return nil, err
	}
	fn := args[0+1]
	var out []eval.Value
	for cur := lst; cur != nil; cur = cur.Tail {
		v, err := ev.Apply(fn, []eval.Value{cur.Head})
		if err != nil {
			return nil, err
		}
		keep, ok := v.(eval.Bool)
		if !ok {
			return nil, errf("filter() predicate must return Bool, got %s", v.Type())
		}
		if bool(keep) {
			out = append(out, cur.Head)
		}
	}
	return eval.FromSlice(out), nil
}

func biFold(ev *eval.Evaluator, args []eval.Value) (eval.Value, error) {
	if len(args) != 3 {
		return nil, wantArity("fold", 3, len(args))
	}
	lst, err := asList("fold", args, 0)
	if err != nil {
		return nil, err
	}
	acc := args[1]
	fn := args[2]
	for cur := lst; cur != nil; cur = cur.Tail {
		acc, err = ev.Apply(fn, []eval.Value{acc, cur.Head})
		if err != nil {
			return nil, err
		}
	}
	return acc, nil
}

// biFoldRight folds from the right: fold_right(lst, z, f) = f(lst[0],
// f(lst[1], ... f(lst[n-1], z))). Materializing the slice first keeps this
// O(n) rather than recursing the host stack once per element, avoiding
// host-stack recursion over potentially deep structures.
func biFoldRight(ev *eval.Evaluator, args []eval.Value) (eval.Value, error) {
	if len(args) != 3 {
		return nil, wantArity("fold_right", 3, len(args))
	}
	lst, err := asList("fold_right", args, 0)
	if err != nil {
		return nil, err
	}
	acc := args[1]
	fn := args[2]
	elems := lst.ToSlice()
	for i := len(elems) - 1; i >= 0; i-- {
		acc, err = ev.Apply(fn, []eval.Value{elems[i], acc})
		if err != nil {
			return nil, err
		}
	}
	return acc, nil
}

func biTake(ev *eval.Evaluator, args []eval.Value) (eval.Value, error) {
	if len(args) != 2 {
		return nil, wantArity("take", 2, len(args))
	}
	n, err := asInt("take", args, 0)
	if err != nil {
		return nil, err
	}
	lst, err := asList("take", args, 1)
	if err != nil {
		return nil, err
	}
	k := n.V.Int64()
	var out []eval.Value
	for cur := lst; cur != nil && int64(len(out)) < k; cur = cur.Tail {
		out = append(out, cur.Head)
	}
	return eval.FromSlice(out), nil
}

func biDrop(ev *eval.Evaluator, args []eval.Value) (eval.Value, error) {
	if len(args) != 2 {
		return nil, wantArity("drop", 2, len(args))
	}
	n, err := asInt("drop", args, 0)
	if err != nil {
		return nil, err
	}
	lst, err := asList("drop", args, 1)
	if err != nil {
		return nil, err
	}
	cur := lst
	for k := n.V.Int64(); k > 0 && cur != nil; k-- {
		cur = cur.Tail
	}
	return cur, nil
}

// biZip pairs elements positionally, stopping at the shorter list.
func biZip(ev *eval.Evaluator, args []eval.Value) (eval.Value, error) {
	if len(args) != 2 {
		return nil, wantArity("zip", 2, len(args))
	}
	a, err := asList("zip", args, 0)
	if err != nil {
		return nil, err
	}
	b, err := asList("zip", args, 1)
	if err != nil {
		return nil, err
	}
	var out []eval.Value
	for ca, cb := a, b; ca != nil && cb != nil; ca, cb = ca.Tail, cb.Tail {
		out = append(out, eval.Tuple{ca.Head, cb.Head})
	}
	return eval.FromSlice(out), nil
}

func biRange(ev *eval.Evaluator, args []eval.Value) (eval.Value, error) {
	if len(args) != 2 {
		return nil, wantArity("range", 2, len(args))
	}
	lo, err := asInt("range", args, 0)
	if err != nil {
		return nil, err
	}
	hi, err := asInt("range", args, 1)
	if err != nil {
		return nil, err
	}
	var out []eval.Value
	for i := lo.V.Int64(); i < hi.V.Int64(); i++ {
		out = append(out, eval.NewInt(i))
	}
	return eval.FromSlice(out), nil
}
