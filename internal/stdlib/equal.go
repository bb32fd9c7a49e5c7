package stdlib

import (
	"github.com/neve-lang/neve/internal/eval"
)

// valueEqual implements structural equality over Values, used by set.go and
// map.go for membership/key lookup. Neve's type checker enforces that
// set/map elements share a single type, so this never needs to compare
// across mismatched variants beyond reporting "not equal".
func valueEqual(a, b eval.Value) bool {
	switch av := a.(type) {
	case eval.Int:
		bv, ok := b.(eval.Int)
		return ok && av.V.Cmp(bv.V) == 0
	case eval.Float:
		bv, ok := b.(eval.Float)
		return ok && av == bv
	case eval.Bool:
		bv, ok := b.(eval.Bool)
		return ok && av == bv
	case eval.Char:
		bv, ok := b.(eval.Char)
		return ok && av == bv
	case eval.Str:
		bv, ok := b.(eval.Str)
		return ok && av == bv
	case eval.PathV:
		bv, ok := b.(eval.PathV)
		return ok && av == bv
	case eval.Unit:
		_, ok := b.(eval.Unit)
		return ok
	case eval.Tuple:
		bv, ok := b.(eval.Tuple)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !valueEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	case *eval.List:
		bv, ok := b.(*eval.List)
		if !ok {
			return false
		}
		ca, cb := av, bv
		for ca != nil && cb != nil {
			if !valueEqual(ca.Head, cb.Head) {
				return false
			}
			ca, cb = ca.Tail, cb.Tail
		}
		return ca == nil && cb == nil
	case *eval.Ctor:
		bv, ok := b.(*eval.Ctor)
		if !ok || av.Tag != bv.Tag || len(av.Payload) != len(bv.Payload) {
			return false
		}
		for i := range av.Payload {
			if !valueEqual(av.Payload[i], bv.Payload[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
