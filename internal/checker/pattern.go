package checker

import (
	"github.com/neve-lang/neve/internal/ast"
	"github.com/neve-lang/neve/internal/hir"
	"github.com/neve-lang/neve/internal/types"
)

// bindPatternTypeAuto binds p's names against t without the caller
// threading a LocalId counter, for call sites (block lets, match arms,
// list-comprehension generators) that don't otherwise need one. It
// starts the counter at whatever is already the highest bound LocalId in
// scope plus any the hir resolver assigned before this pattern in the
// same Def body — correctness here relies on the same invariant
// bindPatternType does: this method must be called in exactly the AST
// traversal order internal/hir/resolve.go's bindPattern used, which
// every call site in infer.go preserves.
func (c *Checker) bindPatternTypeAuto(p ast.Pattern, t types.Type) {
	c.bindPatternType(p, t, c.maxLocal())
}

func (c *Checker) maxLocal() hir.LocalId {
	var max hir.LocalId
	for id := range c.localTypes {
		if id > max {
			max = id
		}
	}
	return max
}

// bindPatternType binds every name p introduces to a type derived from
// t, decomposing t structurally (tuple/list/record/constructor) via
// fresh variables unified against t. next is the LocalId counter
// threaded to keep this function's traversal order
// (and therefore its LocalId assignment) identical to
// internal/hir/resolve.go's resolver.bindPattern, so a LocalId recorded
// here lines up with the same LocalId an *ast.Ident reference resolved
// to during hir.Resolve.
func (c *Checker) bindPatternType(p ast.Pattern, t types.Type, next hir.LocalId) hir.LocalId {
	switch pt := p.(type) {
	case *ast.WildcardPat:
		return next
	case *ast.IdentPat:
		next++
		c.localTypes[next] = t
		return next
	case *ast.LitPat:
		litT := c.inferExpr(pt.Lit)
		if err := types.Unify(t, litT); err != nil {
			c.sink.Errorf(pt.Sp, "TypeError", "pattern literal: %s", err)
		}
		return next
	case *ast.BindPat:
		next++
		c.localTypes[next] = t
		return c.bindPatternType(pt.Pattern, t, next)
	case *ast.TuplePat:
		elems := make([]types.Type, len(pt.Elems))
		for i := range elems {
			elems[i] = c.gen.Fresh(c.level)
		}
		if err := types.Unify(t, &types.Tuple{Elems: elems}); err != nil {
			c.sink.Errorf(pt.Sp, "TypeError", "tuple pattern: %s", err)
		}
		for i, e := range pt.Elems {
			next = c.bindPatternType(e, elems[i], next)
		}
		return next
	case *ast.ListPat:
		elem := c.gen.Fresh(c.level)
		if err := types.Unify(t, &types.List{Elem: elem}); err != nil {
			c.sink.Errorf(pt.Sp, "TypeError", "list pattern: %s", err)
		}
		for _, e := range pt.Elems {
			next = c.bindPatternType(e, elem, next)
		}
		if pt.HasRest && pt.Rest != "" {
			next++
			c.localTypes[next] = &types.List{Elem: elem}
		}
		return next
	case *ast.RecordPat:
		fields := make([]types.Field, len(pt.Fields))
		fieldVars := make([]types.Type, len(pt.Fields))
		for i, f := range pt.Fields {
			v := c.gen.Fresh(c.level)
			fieldVars[i] = v
			fields[i] = types.Field{Name: f.Name, Type: v}
		}
		var row *types.Var
		if pt.Open {
			row = c.gen.Fresh(c.level)
		}
		if err := types.Unify(t, &types.Record{Fields: fields, Row: row}); err != nil {
			c.sink.Errorf(pt.Sp, "TypeError", "record pattern: %s", err)
		}
		for i, f := range pt.Fields {
			next = c.bindPatternType(f.Pattern, fieldVars[i], next)
		}
		return next
	case *ast.ConstructorPat:
		return c.bindCtorPattern(pt, t, next)
	case *ast.OrPat:
		for _, alt := range pt.Alts {
			next = c.bindPatternType(alt, t, next)
		}
		return next
	case *ast.ErrPat:
		return next
	}
	return next
}

func (c *Checker) bindCtorPattern(pt *ast.ConstructorPat, t types.Type, next hir.LocalId) hir.LocalId {
	did, ok := c.g.CtorRefs[pt]
	if !ok {
		for _, a := range pt.Args {
			next = c.bindPatternType(a, c.gen.Fresh(c.level), next)
		}
		return next
	}
	def := c.g.DefByID(did)
	if def == nil {
		for _, a := range pt.Args {
			next = c.bindPatternType(a, c.gen.Fresh(c.level), next)
		}
		return next
	}
	enumInfo, ok := c.enums[def.Owner]
	if !ok {
		for _, a := range pt.Args {
			next = c.bindPatternType(a, c.gen.Fresh(c.level), next)
		}
		return next
	}
	vi := enumInfo.variants[def.Name]
	freshArgs := make([]types.Type, len(enumInfo.typeVars))
	for i := range freshArgs {
		freshArgs[i] = c.gen.Fresh(c.level)
	}
	if err := types.Unify(t, &types.Constructor{DefID: uint32(def.Owner), Name: enumInfo.def.Name, Args: freshArgs}); err != nil {
		c.sink.Errorf(pt.Sp, "TypeError", "constructor pattern %q: %s", def.Name, err)
	}
	for i, a := range pt.Args {
		var at types.Type = c.gen.Fresh(c.level)
		if vi != nil && i < len(vi.payload) {
			at = types.SubstituteVars(vi.payload[i], enumInfo.typeVars, freshArgs)
		}
		next = c.bindPatternType(a, at, next)
	}
	return next
}
