package eval

import (
	"math/big"
	"strings"

	"github.com/neve-lang/neve/internal/ast"
)

func (ev *Evaluator) evalString(s *ast.StringLit, env *Env) (Value, error) {
	var b strings.Builder
	for _, seg := range s.Segments {
		if !seg.IsExpr {
			b.WriteString(seg.Literal)
			continue
		}
		v, err := ev.force(seg.Expr, env)
		if err != nil {
			return nil, err
		}
		b.WriteString(Show(v))
	}
	return Str(b.String()), nil
}

func (ev *Evaluator) evalRecordLit(r *ast.RecordLit, env *Env) (Value, error) {
	fields := make([]Field, 0, len(r.Fields))
	for _, f := range r.Fields {
		v, err := ev.force(f.Value, env)
		if err != nil {
			return nil, err
		}
		fields = append(fields, Field{Name: f.Name, Value: v})
	}
	if r.Base == nil {
		return &Record{Fields: fields}, nil
	}
	baseV, err := ev.force(r.Base, env)
	if err != nil {
		return nil, err
	}
	base, ok := baseV.(*Record)
	if !ok {
		return nil, errf(r.Sp, "EvalError", "record update base is not a Record (got %s)", baseV.Type())
	}
	return base.With(fields), nil
}

func (ev *Evaluator) evalFieldAccess(f *ast.FieldAccess, env *Env) (Value, error) {
	if did, ok := ev.g.QualifiedRefs[f]; ok {
		return ev.globalValue(did)
	}
	recv, err := ev.force(f.Receiver, env)
	if err != nil {
		return nil, err
	}
	rec, ok := recv.(*Record)
	if !ok {
		return nil, errf(f.Sp, "EvalError", "value of type %s has no field %q", recv.Type(), f.Field)
	}
	v, ok := rec.Get(f.Field)
	if !ok {
		return nil, errf(f.Sp, "EvalError", "record has no field %q", f.Field)
	}
	return v, nil
}

func (ev *Evaluator) evalIndex(ix *ast.Index, env *Env) (Value, error) {
	recv, err := ev.force(ix.Receiver, env)
	if err != nil {
		return nil, err
	}
	idxV, err := ev.force(ix.Index, env)
	if err != nil {
		return nil, err
	}
	idx, ok := idxV.(Int)
	if !ok || idx.V == nil {
		return nil, errf(ix.Index.Span(), "EvalError", "index is not an Int (got %s)", idxV.Type())
	}
	n := int(idx.V.Int64())
	switch r := recv.(type) {
	case *List:
		if n < 0 {
			return nil, errf(ix.Sp, "EvalError", "list index %d out of range", n)
		}
		cur := r
		for i := 0; i < n && cur != nil; i++ {
			cur = cur.Tail
		}
		if cur == nil {
			return nil, errf(ix.Sp, "EvalError", "list index %d out of range", n)
		}
		return cur.Head, nil
	case Tuple:
		if n < 0 || n >= len(r) {
			return nil, errf(ix.Sp, "EvalError", "tuple index %d out of range", n)
		}
		return r[n], nil
	default:
		return nil, errf(ix.Sp, "EvalError", "value of type %s is not indexable", recv.Type())
	}
}

func (ev *Evaluator) stepPipe(p *ast.PipeExpr, env *Env, tail bool) (Value, *TailCall, error) {
	if call, ok := p.Right.(*ast.Call); ok {
		calleeVal, err := ev.force(call.Callee, env)
		if err != nil {
			return nil, nil, err
		}
		argExprs := append(append([]ast.Expr{}, call.Args...), p.Left)
		return ev.applyCallArgs(calleeVal, argExprs, env, tail, p.Sp)
	}
	calleeVal, err := ev.force(p.Right, env)
	if err != nil {
		return nil, nil, err
	}
	return ev.applyCallArgs(calleeVal, []ast.Expr{p.Left}, env, tail, p.Sp)
}

func (ev *Evaluator) evalCompose(c *ast.Compose, env *Env) (Value, error) {
	lv, err := ev.force(c.Left, env)
	if err != nil {
		return nil, err
	}
	rv, err := ev.force(c.Right, env)
	if err != nil {
		return nil, err
	}
	return &Builtin{
		Name:  "composed",
		Arity: 1,
		Fn: func(ev *Evaluator, args []Value) (Value, error) {
			mid, err := ev.applyValue(lv, args)
			if err != nil {
				return nil, err
			}
			return ev.applyValue(rv, []Value{mid})
		},
	}, nil
}

func (ev *Evaluator) evalTry(t *ast.TryExpr, env *Env) (Value, error) {
	v, err := ev.force(t.Operand, env)
	if err != nil {
		return nil, err
	}
	ctor, ok := v.(*Ctor)
	if !ok {
		return nil, errf(t.Sp, "EvalError", "`?` operand is not a Result (got %s)", v.Type())
	}
	switch ctor.Tag {
	case "Ok":
		if len(ctor.Payload) == 0 {
			return Unit{}, nil
		}
		return ctor.Payload[0], nil
	case "Err":
		return nil, &shortCircuit{Val: v}
	default:
		return nil, errf(t.Sp, "EvalError", "`?` operand is not a Result (got constructor %q)", ctor.Tag)
	}
}

func (ev *Evaluator) evalSafeAccess(s *ast.SafeAccess, env *Env) (Value, error) {
	v, err := ev.force(s.Receiver, env)
	if err != nil {
		return nil, err
	}
	ctor, ok := v.(*Ctor)
	if ok && ctor.Tag == "None" {
		return &Ctor{Tag: "None"}, nil
	}
	var rec *Record
	if ok && ctor.Tag == "Some" && len(ctor.Payload) == 1 {
		rec, ok = ctor.Payload[0].(*Record)
	} else {
		rec, ok = v.(*Record)
	}
	if !ok {
		return nil, errf(s.Sp, "EvalError", "`?.` receiver is not a record or Option<record> (got %s)", v.Type())
	}
	fv, ok := rec.Get(s.Field)
	if !ok {
		return &Ctor{Tag: "None"}, nil
	}
	return &Ctor{Tag: "Some", Payload: []Value{fv}}, nil
}

func (ev *Evaluator) evalCoalesce(c *ast.Coalesce, env *Env) (Value, error) {
	lv, err := ev.force(c.Left, env)
	if err != nil {
		return nil, err
	}
	if ctor, ok := lv.(*Ctor); ok {
		switch ctor.Tag {
		case "None":
			return ev.force(c.Right, env)
		case "Some":
			if len(ctor.Payload) == 1 {
				return ctor.Payload[0], nil
			}
			return ctor, nil
		}
	}
	return lv, nil
}

func (ev *Evaluator) evalUnary(u *ast.UnaryExpr, env *Env) (Value, error) {
	v, err := ev.force(u.Operand, env)
	if err != nil {
		return nil, err
	}
	switch u.Op {
	case ast.OpNeg:
		switch n := v.(type) {
		case Int:
			return Int{V: new(big.Int).Neg(n.V)}, nil
		case Float:
			return Float(-n), nil
		}
		return nil, errf(u.Sp, "EvalError", "unary - requires Int or Float (got %s)", v.Type())
	case ast.OpNot:
		b, ok := v.(Bool)
		if !ok {
			return nil, errf(u.Sp, "EvalError", "unary ! requires Bool (got %s)", v.Type())
		}
		return Bool(!bool(b)), nil
	}
	return nil, errf(u.Sp, "EvalError", "unhandled unary operator")
}
