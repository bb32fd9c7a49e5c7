package types

import "fmt"

// UnifyError is returned when two types cannot be made equal. checker
// wraps this into a diag.Diagnostic with structured context (argument
// index, branch, field name...); this package stays diagnostic-agnostic
// so it has no import on internal/diag.
type UnifyError struct {
	A, B Type
	Kind string // "mismatch", "occurs", "arity", "row"
	Note string
}

func (e *UnifyError) Error() string {
	if e.Note != "" {
		return fmt.Sprintf("cannot unify %s with %s: %s", e.A, e.B, e.Note)
	}
	return fmt.Sprintf("cannot unify %s with %s", e.A, e.B)
}

// Unify makes a and b structurally equal by binding unbound Vars, with
// an occurs-check and level tracking on every Var. Level is lowered
// when a Var is unified with a type from a deeper scope, so that a
// variable escaping its binding `let` is never unsoundly generalized
// (the standard level-based algorithm, e.g. as used in OCaml's
// inference).
func Unify(a, b Type) error {
	a, b = Prune(a), Prune(b)

	if av, ok := a.(*Var); ok {
		return unifyVar(av, b)
	}
	if bv, ok := b.(*Var); ok {
		return unifyVar(bv, a)
	}

	switch at := a.(type) {
	case *Prim:
		bt, ok := b.(*Prim)
		if !ok || at.Kind != bt.Kind {
			return &UnifyError{A: a, B: b, Kind: "mismatch"}
		}
		return nil
	case *Tuple:
		bt, ok := b.(*Tuple)
		if !ok || len(at.Elems) != len(bt.Elems) {
			return &UnifyError{A: a, B: b, Kind: "arity"}
		}
		for i := range at.Elems {
			if err := Unify(at.Elems[i], bt.Elems[i]); err != nil {
				return err
			}
		}
		return nil
	case *List:
		bt, ok := b.(*List)
		if !ok {
			return &UnifyError{A: a, B: b, Kind: "mismatch"}
		}
		return Unify(at.Elem, bt.Elem)
	case *Function:
		bt, ok := b.(*Function)
		if !ok || len(at.Params) != len(bt.Params) {
			return &UnifyError{A: a, B: b, Kind: "arity"}
		}
		for i := range at.Params {
			if err := Unify(at.Params[i], bt.Params[i]); err != nil {
				return err
			}
		}
		return Unify(at.Ret, bt.Ret)
	case *Constructor:
		bt, ok := b.(*Constructor)
		if !ok || at.DefID != bt.DefID || len(at.Args) != len(bt.Args) {
			return &UnifyError{A: a, B: b, Kind: "mismatch"}
		}
		for i := range at.Args {
			if err := Unify(at.Args[i], bt.Args[i]); err != nil {
				return err
			}
		}
		return nil
	case *Record:
		bt, ok := b.(*Record)
		if !ok {
			return &UnifyError{A: a, B: b, Kind: "mismatch"}
		}
		return unifyRecords(at, bt)
	}
	return &UnifyError{A: a, B: b, Kind: "mismatch"}
}

func unifyVar(v *Var, t Type) error {
	if other, ok := Prune(t).(*Var); ok && other == v {
		return nil
	}
	if occurs(v, t) {
		return &UnifyError{A: v, B: t, Kind: "occurs", Note: "infinite type"}
	}
	adjustLevels(v.Level, t)
	v.Instance = t
	return nil
}

// adjustLevels lowers every unbound Var reachable from t to at most
// maxLevel, implementing the level-based generalization-soundness rule:
// once a flexible variable is unified into a type that escapes to an
// outer scope, it must not later be generalized as if it were still
// local to the inner scope.
func adjustLevels(maxLevel int, t Type) {
	t = Prune(t)
	switch tt := t.(type) {
	case *Var:
		if tt.Level > maxLevel {
			tt.Level = maxLevel
		}
	case *Tuple:
		for _, e := range tt.Elems {
			adjustLevels(maxLevel, e)
		}
	case *List:
		adjustLevels(maxLevel, tt.Elem)
	case *Record:
		for _, f := range tt.Fields {
			adjustLevels(maxLevel, f.Type)
		}
		if tt.Row != nil {
			adjustLevels(maxLevel, tt.Row)
		}
	case *Function:
		for _, p := range tt.Params {
			adjustLevels(maxLevel, p)
		}
		adjustLevels(maxLevel, tt.Ret)
	case *Constructor:
		for _, a := range tt.Args {
			adjustLevels(maxLevel, a)
		}
	}
}

func occurs(v *Var, t Type) bool {
	t = Prune(t)
	if other, ok := t.(*Var); ok {
		return other == v
	}
	free := map[*Var]bool{}
	FreeVars(t, free)
	return free[v]
}

// unifyRecords implements row-polymorphic unification: fields present
// in both are unified pairwise; fields unique to one side are folded
// into the other side's row variable, so `#{a: Int | r}` can unify with
// `#{a: Int, b: Bool}` by binding r to `#{b: Bool}`.
func unifyRecords(a, b *Record) error {
	aFields := fieldMap(a)
	bFields := fieldMap(b)

	var onlyA, onlyB []Field
	for name, ft := range aFields {
		if bt, ok := bFields[name]; ok {
			if err := Unify(ft, bt); err != nil {
				return fmt.Errorf("field %q: %w", name, err)
			}
		} else {
			onlyA = append(onlyA, Field{Name: name, Type: ft})
		}
	}
	for name, ft := range bFields {
		if _, ok := aFields[name]; !ok {
			onlyB = append(onlyB, Field{Name: name, Type: ft})
		}
	}

	switch {
	case len(onlyA) == 0 && len(onlyB) == 0:
		return unifyRow(a.Row, b.Row)
	case len(onlyA) == 0 && a.Row != nil:
		return Unify(a.Row, &Record{Fields: onlyB, Row: b.Row})
	case len(onlyB) == 0 && b.Row != nil:
		return Unify(b.Row, &Record{Fields: onlyA, Row: a.Row})
	default:
		return &UnifyError{A: a, B: b, Kind: "row", Note: "incompatible record fields"}
	}
}

func fieldMap(r *Record) map[string]Type {
	m := make(map[string]Type, len(r.Fields))
	for _, f := range r.Fields {
		m[f.Name] = f.Type
	}
	return m
}

func unifyRow(a, b *Var) error {
	switch {
	case a == nil && b == nil:
		return nil
	case a == nil:
		return &UnifyError{Kind: "row", Note: "closed record cannot unify with an open one"}
	case b == nil:
		return &UnifyError{Kind: "row", Note: "closed record cannot unify with an open one"}
	default:
		return Unify(a, b)
	}
}
