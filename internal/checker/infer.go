package checker

import (
	"github.com/neve-lang/neve/internal/ast"
	"github.com/neve-lang/neve/internal/hir"
	"github.com/neve-lang/neve/internal/types"
)

// inferExpr infers e's type, unifying as it descends. One case per
// ast.Expr variant.
func (c *Checker) inferExpr(e ast.Expr) types.Type {
	switch ex := e.(type) {
	case *ast.Ident:
		return c.inferIdent(ex)
	case *ast.IntLit:
		return types.TInt
	case *ast.FloatLit:
		return types.TFloat
	case *ast.BoolLit:
		return types.TBool
	case *ast.CharLit:
		return types.TChar
	case *ast.StringLit:
		for _, seg := range ex.Segments {
			if seg.IsExpr {
				// Interpolation forces its operand to a string-convertible
				// value; primitives convert implicitly, so no unification
				// is imposed here beyond inferring it.
				c.inferExpr(seg.Expr)
			}
		}
		return types.TString
	case *ast.PathLit:
		return types.TPath
	case *ast.ListLit:
		return c.inferListLit(ex)
	case *ast.ListComp:
		return c.inferListComp(ex)
	case *ast.TupleLit:
		elems := make([]types.Type, len(ex.Elems))
		for i, el := range ex.Elems {
			elems[i] = c.inferExpr(el)
		}
		return &types.Tuple{Elems: elems}
	case *ast.RecordLit:
		return c.inferRecordLit(ex)
	case *ast.Block:
		return c.inferBlock(ex)
	case *ast.Lambda:
		return c.inferLambda(ex)
	case *ast.Call:
		return c.inferCall(ex)
	case *ast.FieldAccess:
		return c.inferFieldAccess(ex)
	case *ast.Index:
		return c.inferIndex(ex)
	case *ast.Match:
		return c.inferMatch(ex)
	case *ast.If:
		return c.inferIf(ex)
	case *ast.BinaryExpr:
		return c.inferBinary(ex)
	case *ast.UnaryExpr:
		return c.inferUnary(ex)
	case *ast.PipeExpr:
		return c.inferPipe(ex)
	case *ast.Compose:
		return c.inferCompose(ex)
	case *ast.TryExpr:
		return c.inferTry(ex)
	case *ast.SafeAccess:
		return c.inferSafeAccess(ex)
	case *ast.Coalesce:
		return c.inferCoalesce(ex)
	case *ast.ErrExpr:
		// Erroneous nodes propagate through later stages without
		// cascading new errors: a fresh unconstrained variable unifies
		// with anything.
		return c.gen.Fresh(c.level)
	default:
		return c.gen.Fresh(c.level)
	}
}

func (c *Checker) inferIdent(id *ast.Ident) types.Type {
	ref, ok := c.g.Refs[id]
	if !ok {
		// Already reported by hir.Resolve; don't cascade.
		return c.gen.Fresh(c.level)
	}
	if ref.Kind == hir.RefLocal {
		if t, ok := c.localTypes[ref.Local]; ok {
			return t
		}
		return c.gen.Fresh(c.level)
	}
	scheme, ok := c.defSchemes[ref.Def]
	if !ok {
		return c.gen.Fresh(c.level)
	}
	t, _ := scheme.Instantiate(c.gen, c.level)
	return t
}

func (c *Checker) inferListLit(l *ast.ListLit) types.Type {
	elem := types.Type(c.gen.Fresh(c.level))
	for _, e := range l.Elems {
		t := c.inferExpr(e)
		if err := types.Unify(elem, t); err != nil {
			c.sink.Errorf(e.Span(), "TypeError", "list element: %s", err)
		}
	}
	return &types.List{Elem: elem}
}

func (c *Checker) inferListComp(l *ast.ListComp) types.Type {
	c.level++
	defer func() { c.level-- }()
	for _, cl := range l.Clauses {
		if cl.Bind != nil {
			srcT := c.inferExpr(cl.Source)
			elem := c.gen.Fresh(c.level)
			if err := types.Unify(srcT, &types.List{Elem: elem}); err != nil {
				c.sink.Errorf(cl.Source.Span(), "TypeError", "comprehension source: %s", err)
			}
			c.bindPatternTypeAuto(cl.Bind, elem)
		} else {
			t := c.inferExpr(cl.Guard)
			if err := types.Unify(t, types.TBool); err != nil {
				c.sink.Errorf(cl.Guard.Span(), "TypeError", "comprehension guard: %s", err)
			}
		}
	}
	return &types.List{Elem: c.inferExpr(l.Result)}
}

func (c *Checker) inferRecordLit(r *ast.RecordLit) types.Type {
	fields := make([]types.Field, len(r.Fields))
	for i, f := range r.Fields {
		fields[i] = types.Field{Name: f.Name, Type: c.inferExpr(f.Value)}
	}
	if r.Base == nil {
		return &types.Record{Fields: fields}
	}
	baseT := c.inferExpr(r.Base)
	row := c.gen.Fresh(c.level)
	if err := types.Unify(baseT, &types.Record{Fields: fields, Row: row}); err != nil {
		c.sink.Errorf(r.Sp, "TypeError", "record update: %s", err)
	}
	return baseT
}

func (c *Checker) inferBlock(b *ast.Block) types.Type {
	savedLocals := map[hir.LocalId]types.Type{}
	for k, v := range c.localTypes {
		savedLocals[k] = v
	}
	for _, let := range b.Lets {
		t := c.inferExpr(let.Value)
		if let.Type != nil {
			ann := c.resolveTypeExpr(let.Type, map[string]*types.Var{})
			if err := types.Unify(t, ann); err != nil {
				c.sink.Errorf(let.Sp, "TypeError", "let binding: %s", err)
			}
		}
		c.bindPatternTypeAuto(let.Pattern, t)
	}
	result := c.inferExpr(b.Tail)
	c.localTypes = savedLocals
	return result
}

func (c *Checker) inferLambda(l *ast.Lambda) types.Type {
	savedLocals := c.localTypes
	c.localTypes = map[hir.LocalId]types.Type{}
	for k, v := range savedLocals {
		c.localTypes[k] = v
	}
	var next hir.LocalId
	params := make([]types.Type, len(l.Params))
	for i, p := range l.Params {
		var pt types.Type
		if p.Type != nil {
			pt = c.resolveTypeExpr(p.Type, map[string]*types.Var{})
		} else {
			pt = c.gen.Fresh(c.level)
		}
		params[i] = pt
		next = c.bindPatternType(p.Pattern, pt, next)
	}
	ret := c.inferExpr(l.Body)
	if l.Ret != nil {
		ann := c.resolveTypeExpr(l.Ret, map[string]*types.Var{})
		if err := types.Unify(ret, ann); err != nil {
			c.sink.Errorf(l.Sp, "TypeError", "lambda return: %s", err)
		}
	}
	c.localTypes = savedLocals
	return &types.Function{Params: params, Ret: ret}
}

func (c *Checker) inferCall(call *ast.Call) types.Type {
	calleeT := c.inferExpr(call.Callee)
	args := make([]types.Type, len(call.Args))
	for i, a := range call.Args {
		args[i] = c.inferExpr(a)
	}
	ret := c.gen.Fresh(c.level)
	if err := types.Unify(calleeT, &types.Function{Params: args, Ret: ret}); err != nil {
		c.sink.Errorf(call.Sp, "TypeError", "call: %s", err)
	}
	c.resolveTraitDispatch(call)
	return ret
}

// resolveTraitDispatch annotates call with the concrete impl method its
// callee resolves to, when the callee is a field access on a type bound
// by a trait. Best-effort: failing to resolve is not itself an error
// here, since a plain function call (the common case) has no trait
// bound to resolve.
func (c *Checker) resolveTraitDispatch(call *ast.Call) {
	fa, ok := call.Callee.(*ast.FieldAccess)
	if !ok {
		return
	}
	recvType := c.inferExpr(fa.Receiver)
	for _, trait := range c.traitsDeclaringMethod(fa.Field) {
		if imp, err := c.impls.Resolve(trait, recvType); err == nil {
			if did, ok := imp.MethodDefIDs[fa.Field]; ok {
				c.CallBoundDefs[call] = hir.DefId(did)
				return
			}
		}
	}
}

func (c *Checker) traitsDeclaringMethod(name string) []string {
	var names []string
	for _, m := range c.g.Modules {
		for _, def := range m.AST.Defs {
			if td, ok := def.(*ast.TraitDef); ok {
				for _, meth := range td.Methods {
					if meth.Name == name {
						names = append(names, td.Name)
					}
				}
			}
		}
	}
	return names
}

func (c *Checker) inferFieldAccess(fa *ast.FieldAccess) types.Type {
	if did, ok := c.g.QualifiedRefs[fa]; ok {
		scheme, ok := c.defSchemes[did]
		if !ok {
			return c.gen.Fresh(c.level)
		}
		t, _ := scheme.Instantiate(c.gen, c.level)
		return t
	}
	recvT := c.inferExpr(fa.Receiver)
	field := c.gen.Fresh(c.level)
	row := c.gen.Fresh(c.level)
	if err := types.Unify(recvT, &types.Record{Fields: []types.Field{{Name: fa.Field, Type: field}}, Row: row}); err != nil {
		c.sink.Errorf(fa.Sp, "TypeError", "field %q: %s", fa.Field, err)
	}
	return field
}

func (c *Checker) inferIndex(ix *ast.Index) types.Type {
	recvT := c.inferExpr(ix.Receiver)
	idxT := c.inferExpr(ix.Index)
	if err := types.Unify(idxT, types.TInt); err != nil {
		c.sink.Errorf(ix.Index.Span(), "TypeError", "index: %s", err)
	}
	elem := c.gen.Fresh(c.level)
	if err := types.Unify(recvT, &types.List{Elem: elem}); err != nil {
		c.sink.Errorf(ix.Sp, "TypeError", "indexed value: %s", err)
	}
	return elem
}

func (c *Checker) inferMatch(m *ast.Match) types.Type {
	scrutT := c.inferExpr(m.Scrutinee)
	result := c.gen.Fresh(c.level)
	var pats []ast.Pattern
	for _, arm := range m.Arms {
		pats = append(pats, arm.Pattern)
		saved := c.localTypes
		c.localTypes = map[hir.LocalId]types.Type{}
		for k, v := range saved {
			c.localTypes[k] = v
		}
		c.bindPatternTypeAuto(arm.Pattern, scrutT)
		if arm.Guard != nil {
			gt := c.inferExpr(arm.Guard)
			if err := types.Unify(gt, types.TBool); err != nil {
				c.sink.Errorf(arm.Guard.Span(), "TypeError", "match guard: %s", err)
			}
		}
		bodyT := c.inferExpr(arm.Body)
		if err := types.Unify(result, bodyT); err != nil {
			c.sink.Errorf(arm.Body.Span(), "TypeError", "match arm: %s", err)
		}
		c.localTypes = saved
	}
	c.checkExhaustiveness(m.Sp, scrutT, pats)
	return result
}

func (c *Checker) inferIf(i *ast.If) types.Type {
	condT := c.inferExpr(i.Cond)
	if err := types.Unify(condT, types.TBool); err != nil {
		c.sink.Errorf(i.Cond.Span(), "TypeError", "if condition: %s", err)
	}
	thenT := c.inferExpr(i.Then)
	elseT := c.inferExpr(i.Else)
	if err := types.Unify(thenT, elseT); err != nil {
		c.sink.Errorf(i.Sp, "TypeError", "if branches: %s", err)
	}
	return thenT
}

func (c *Checker) inferBinary(b *ast.BinaryExpr) types.Type {
	lt := c.inferExpr(b.Left)
	rt := c.inferExpr(b.Right)
	switch b.Op {
	case ast.OpAdd, ast.OpSub, ast.OpMul, ast.OpDiv, ast.OpMod, ast.OpPow:
		if err := types.Unify(lt, rt); err != nil {
			c.sink.Errorf(b.Sp, "TypeError", "arithmetic operands: %s", err)
		}
		return lt
	case ast.OpConcat:
		if err := types.Unify(lt, rt); err != nil {
			c.sink.Errorf(b.Sp, "TypeError", "++ operands: %s", err)
		}
		return lt
	case ast.OpEq, ast.OpNe, ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe:
		if err := types.Unify(lt, rt); err != nil {
			c.sink.Errorf(b.Sp, "TypeError", "comparison operands: %s", err)
		}
		return types.TBool
	case ast.OpAnd, ast.OpOr:
		if err := types.Unify(lt, types.TBool); err != nil {
			c.sink.Errorf(b.Left.Span(), "TypeError", "boolean operand: %s", err)
		}
		if err := types.Unify(rt, types.TBool); err != nil {
			c.sink.Errorf(b.Right.Span(), "TypeError", "boolean operand: %s", err)
		}
		return types.TBool
	}
	return c.gen.Fresh(c.level)
}

func (c *Checker) inferUnary(u *ast.UnaryExpr) types.Type {
	t := c.inferExpr(u.Operand)
	switch u.Op {
	case ast.OpNot:
		if err := types.Unify(t, types.TBool); err != nil {
			c.sink.Errorf(u.Sp, "TypeError", "! operand: %s", err)
		}
		return types.TBool
	default: // OpNeg
		return t
	}
}

func (c *Checker) inferPipe(p *ast.PipeExpr) types.Type {
	leftT := c.inferExpr(p.Left)
	if call, ok := p.Right.(*ast.Call); ok {
		// `left |> f(args)` desugars to `f(args..., left)`.
		calleeT := c.inferExpr(call.Callee)
		args := make([]types.Type, len(call.Args)+1)
		for i, a := range call.Args {
			args[i] = c.inferExpr(a)
		}
		args[len(args)-1] = leftT
		ret := c.gen.Fresh(c.level)
		if err := types.Unify(calleeT, &types.Function{Params: args, Ret: ret}); err != nil {
			c.sink.Errorf(p.Sp, "TypeError", "pipe: %s", err)
		}
		return ret
	}
	rightT := c.inferExpr(p.Right)
	ret := c.gen.Fresh(c.level)
	if err := types.Unify(rightT, &types.Function{Params: []types.Type{leftT}, Ret: ret}); err != nil {
		c.sink.Errorf(p.Sp, "TypeError", "pipe: %s", err)
	}
	return ret
}

func (c *Checker) inferCompose(cp *ast.Compose) types.Type {
	leftT := c.inferExpr(cp.Left)
	rightT := c.inferExpr(cp.Right)
	a := c.gen.Fresh(c.level)
	b := c.gen.Fresh(c.level)
	d := c.gen.Fresh(c.level)
	if err := types.Unify(leftT, &types.Function{Params: []types.Type{a}, Ret: b}); err != nil {
		c.sink.Errorf(cp.Left.Span(), "TypeError", "compose left: %s", err)
	}
	if err := types.Unify(rightT, &types.Function{Params: []types.Type{b}, Ret: d}); err != nil {
		c.sink.Errorf(cp.Right.Span(), "TypeError", "compose right: %s", err)
	}
	return &types.Function{Params: []types.Type{a}, Ret: d}
}

func (c *Checker) inferTry(t *ast.TryExpr) types.Type {
	opT := c.inferExpr(t.Operand)
	if res, ok := asResult(opT); ok {
		return res.Args[0]
	}
	if opt, ok := asOption(opT); ok {
		return opt.Args[0]
	}
	ok := c.gen.Fresh(c.level)
	errT := c.gen.Fresh(c.level)
	if err := types.Unify(opT, resultOf(ok, errT)); err != nil {
		c.sink.Errorf(t.Sp, "TypeError", "? operand must be Result or Option: %s", err)
	}
	return ok
}

func (c *Checker) inferSafeAccess(s *ast.SafeAccess) types.Type {
	recvT := c.inferExpr(s.Receiver)
	field := c.gen.Fresh(c.level)
	inner := &types.Record{Fields: []types.Field{{Name: s.Field, Type: field}}, Row: c.gen.Fresh(c.level)}
	if err := types.Unify(recvT, optionOf(inner)); err != nil {
		c.sink.Errorf(s.Sp, "TypeError", "?. receiver must be an Option: %s", err)
	}
	return optionOf(field)
}

func (c *Checker) inferCoalesce(co *ast.Coalesce) types.Type {
	leftT := c.inferExpr(co.Left)
	rightT := c.inferExpr(co.Right)
	inner := c.gen.Fresh(c.level)
	if err := types.Unify(leftT, optionOf(inner)); err != nil {
		c.sink.Errorf(co.Left.Span(), "TypeError", "?? left operand must be an Option: %s", err)
	}
	if err := types.Unify(rightT, inner); err != nil {
		c.sink.Errorf(co.Right.Span(), "TypeError", "?? operands: %s", err)
	}
	return inner
}
