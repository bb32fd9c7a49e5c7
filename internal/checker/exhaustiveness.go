package checker

import (
	"github.com/neve-lang/neve/internal/ast"
	"github.com/neve-lang/neve/internal/hir"
	"github.com/neve-lang/neve/internal/span"
	"github.com/neve-lang/neve/internal/types"
)

// checkExhaustiveness reports non-exhaustive matches and unreachable
// arms. It is a simplified, single-column check that tracks coverage
// directly rather than building a decision tree (the evaluator builds
// none either; it tries a match's arms in order). Literal/constructor/
// list-spine patterns are each checked by their own kind; a match on a
// record scrutinee gets no exhaustiveness check. A pattern that is always "catch-all"
// (wildcard, bare ident, or-pattern of catch-alls) makes every following
// arm unreachable.
func (c *Checker) checkExhaustiveness(sp span.Span, scrutinee types.Type, pats []ast.Pattern) {
	catchAllSeen := false
	for i, p := range pats {
		if catchAllSeen {
			c.sink.Warnf(p.Span(), "TypeError", "unreachable match arm")
		}
		if isCatchAll(p) {
			catchAllSeen = true
		}
		_ = i
	}
	if catchAllSeen {
		return
	}

	switch types.Prune(scrutinee).(type) {
	case *types.Prim:
		if prim := scrutinee.(*types.Prim); prim.Kind == types.Bool {
			covered := map[bool]bool{}
			for _, p := range pats {
				if lp, ok := p.(*ast.LitPat); ok {
					if b, ok := lp.Lit.(*ast.BoolLit); ok {
						covered[b.Value] = true
					}
				}
			}
			if !covered[true] || !covered[false] {
				c.sink.Warnf(sp, "TypeError", "non-exhaustive match: missing Bool case(s)")
			}
			return
		}
		// Int/Float/Char/String/Path/Unit literal sets are unbounded (or,
		// for Unit, a single inhabitant always covered by any LitPat/_),
		// so there's no way to check exhaustiveness over an infinite
		// literal domain: warn only when there's no catch-all at all.
		if prim := scrutinee.(*types.Prim); prim.Kind != types.Unit {
			c.sink.Warnf(sp, "TypeError", "non-exhaustive match: missing catch-all case for an unbounded type")
		}
	case *types.Constructor:
		ct := scrutinee.(*types.Constructor)
		enumInfo, ok := c.enums[hir.DefId(ct.DefID)]
		if !ok {
			return
		}
		covered := map[string]bool{}
		for _, p := range pats {
			collectCtorNames(p, covered)
		}
		var missing []string
		for name := range enumInfo.variants {
			if !covered[name] {
				missing = append(missing, name)
			}
		}
		if len(missing) > 0 {
			c.sink.Warnf(sp, "TypeError", "non-exhaustive match: missing variant(s) %v", missing)
		}
	case *types.List:
		hasEmpty, hasSpine := false, false
		for _, p := range pats {
			switch lp := p.(type) {
			case *ast.ListPat:
				if len(lp.Elems) == 0 && !lp.HasRest {
					hasEmpty = true
				}
				if lp.HasRest {
					hasSpine = true
				}
			}
		}
		if !hasEmpty || !hasSpine {
			c.sink.Warnf(sp, "TypeError", "non-exhaustive match: list pattern should cover both [] and [h, ..t]")
		}
	}
}

func isCatchAll(p ast.Pattern) bool {
	switch pt := p.(type) {
	case *ast.WildcardPat, *ast.IdentPat:
		return true
	case *ast.BindPat:
		return isCatchAll(pt.Pattern)
	case *ast.OrPat:
		for _, a := range pt.Alts {
			if !isCatchAll(a) {
				return false
			}
		}
		return len(pt.Alts) > 0
	default:
		return false
	}
}

func collectCtorNames(p ast.Pattern, out map[string]bool) {
	switch pt := p.(type) {
	case *ast.ConstructorPat:
		out[pt.Path[len(pt.Path)-1]] = true
	case *ast.OrPat:
		for _, a := range pt.Alts {
			collectCtorNames(a, out)
		}
	case *ast.BindPat:
		collectCtorNames(pt.Pattern, out)
	}
}
