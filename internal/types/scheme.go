package types

// Bound is one trait constraint on a type variable, e.g. the `Show` in
// `T: Show`.
type Bound struct {
	Trait string
	Args  []Type // arguments to a parameterized trait, e.g. Eq<T>
}

// Scheme is a `forall vars. Qualified(bounds, t)` polymorphic type.
// Vars lists the quantified type variables; Bounds are the trait
// constraints on them, resolved to a concrete impl at each
// instantiation site by internal/checker.
type Scheme struct {
	Vars   []*Var
	Bounds []Bound
	Type   Type
}

// Monomorphic wraps a type with no quantified variables, the common case
// for lambda parameters and non-generalized lets.
func Monomorphic(t Type) *Scheme { return &Scheme{Type: t} }

// Generalize turns t into a Scheme by quantifying over every free
// variable in t whose Level is deeper than envLevel. Free type
// variables in the environment are not generalized: a variable still
// referenced by an enclosing, not-yet-generalized binding has a Level
// <= envLevel and stays free.
func Generalize(t Type, envLevel int, bounds []Bound) *Scheme {
	free := map[*Var]bool{}
	FreeVars(t, free)
	var vars []*Var
	for v := range free {
		if v.Level > envLevel {
			vars = append(vars, v)
		}
	}
	return &Scheme{Vars: vars, Bounds: bounds, Type: t}
}

// Instantiate replaces every quantified variable in s with a fresh one at
// level, returning the instantiated type and the bounds restated in
// terms of the fresh variables — monomorphizing-by-need for the
// tree-walker. Each call site gets its own fresh copy, which is what
// makes `let id = fn(x) -> x` usable at multiple types.
func (s *Scheme) Instantiate(gen *Generator, level int) (Type, []Bound) {
	if len(s.Vars) == 0 {
		return s.Type, s.Bounds
	}
	sub := make(map[*Var]Type, len(s.Vars))
	for _, v := range s.Vars {
		sub[v] = gen.Fresh(level)
	}
	bounds := make([]Bound, len(s.Bounds))
	for i, b := range s.Bounds {
		args := make([]Type, len(b.Args))
		for j, a := range b.Args {
			args[j] = substitute(a, sub)
		}
		bounds[i] = Bound{Trait: b.Trait, Args: args}
	}
	return substitute(s.Type, sub), bounds
}

// SubstituteVars replaces each of from[i] with to[i] throughout t. Used
// by internal/checker to instantiate an enum variant's generic payload
// types against the concrete type arguments of the scrutinee a
// constructor pattern is matched against.
func SubstituteVars(t Type, from []*Var, to []Type) Type {
	sub := make(map[*Var]Type, len(from))
	for i, v := range from {
		if i < len(to) {
			sub[v] = to[i]
		}
	}
	return substitute(t, sub)
}

func substitute(t Type, sub map[*Var]Type) Type {
	t = Prune(t)
	switch tt := t.(type) {
	case *Var:
		if r, ok := sub[tt]; ok {
			return r
		}
		return tt
	case *Tuple:
		elems := make([]Type, len(tt.Elems))
		for i, e := range tt.Elems {
			elems[i] = substitute(e, sub)
		}
		return &Tuple{Elems: elems}
	case *List:
		return &List{Elem: substitute(tt.Elem, sub)}
	case *Record:
		fields := make([]Field, len(tt.Fields))
		for i, f := range tt.Fields {
			fields[i] = Field{Name: f.Name, Type: substitute(f.Type, sub)}
		}
		var row *Var
		if tt.Row != nil {
			if r, ok := substitute(tt.Row, sub).(*Var); ok {
				row = r
			} else {
				// Substituting a row variable with a concrete record
				// flattens: fold the replacement's fields/row into this
				// record rather than losing them.
				if rec, ok := substitute(tt.Row, sub).(*Record); ok {
					fields = append(fields, rec.Fields...)
					row = rec.Row
				}
			}
		}
		return &Record{Fields: fields, Row: row}
	case *Function:
		params := make([]Type, len(tt.Params))
		for i, p := range tt.Params {
			params[i] = substitute(p, sub)
		}
		return &Function{Params: params, Ret: substitute(tt.Ret, sub)}
	case *Constructor:
		args := make([]Type, len(tt.Args))
		for i, a := range tt.Args {
			args[i] = substitute(a, sub)
		}
		return &Constructor{DefID: tt.DefID, Name: tt.Name, Args: args}
	default:
		return t
	}
}
