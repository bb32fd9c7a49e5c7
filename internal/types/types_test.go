package types

import "testing"

func TestUnifyPrimitiveMismatch(t *testing.T) {
	if err := Unify(&Prim{Kind: Int}, &Prim{Kind: Int}); err != nil {
		t.Fatalf("Int/Int should unify: %v", err)
	}
	if err := Unify(&Prim{Kind: Int}, &Prim{Kind: String}); err == nil {
		t.Fatalf("expected Int/String to fail to unify")
	}
}

func TestUnifyBindsVariable(t *testing.T) {
	gen := NewGenerator()
	v := gen.Fresh(0)
	if err := Unify(v, &Prim{Kind: Bool}); err != nil {
		t.Fatalf("unify var with Bool: %v", err)
	}
	if got := Prune(v); got.String() != "Bool" {
		t.Fatalf("expected v to prune to Bool, got %s", got)
	}
}

func TestUnifyOccursCheck(t *testing.T) {
	gen := NewGenerator()
	v := gen.Fresh(0)
	self := &List{Elem: v}
	if err := Unify(v, self); err == nil {
		t.Fatalf("expected occurs-check failure unifying v with List(v)")
	}
}

func TestUnifyFunctionArity(t *testing.T) {
	a := &Function{Params: []Type{&Prim{Kind: Int}}, Ret: &Prim{Kind: Bool}}
	b := &Function{Params: []Type{&Prim{Kind: Int}, &Prim{Kind: Int}}, Ret: &Prim{Kind: Bool}}
	if err := Unify(a, b); err == nil {
		t.Fatalf("expected arity mismatch to fail unification")
	}
}

// TestGeneralizeInstantiateSoundness exercises substitution soundness:
// generalizing `fn id(x) = x`'s inferred type
// and instantiating it twice must give two independently-unifiable
// fresh copies, so `id` can be used at both Int and Bool within the
// same program.
func TestGeneralizeInstantiateSoundness(t *testing.T) {
	gen := NewGenerator()
	v := gen.Fresh(1)
	idType := &Function{Params: []Type{v}, Ret: v}

	scheme := Generalize(idType, 0, nil)
	if len(scheme.Vars) != 1 {
		t.Fatalf("expected 1 quantified variable, got %d", len(scheme.Vars))
	}

	t1, _ := scheme.Instantiate(gen, 1)
	t2, _ := scheme.Instantiate(gen, 1)

	f1 := t1.(*Function)
	f2 := t2.(*Function)
	if err := Unify(f1.Params[0], &Prim{Kind: Int}); err != nil {
		t.Fatalf("first instantiation should unify freely with Int: %v", err)
	}
	if err := Unify(f2.Params[0], &Prim{Kind: Bool}); err != nil {
		t.Fatalf("second instantiation should unify freely with Bool, independent of the first: %v", err)
	}
}

func TestGeneralizeRespectsEnvLevel(t *testing.T) {
	gen := NewGenerator()
	v := gen.Fresh(0) // bound at the outer (envLevel) scope
	scheme := Generalize(v, 0, nil)
	if len(scheme.Vars) != 0 {
		t.Fatalf("a variable at or above envLevel must stay free, not be generalized")
	}
}

func TestImplTableResolveAmbiguous(t *testing.T) {
	it := NewImplTable()
	target := &Constructor{DefID: 1}
	it.AddImpl(&Impl{Trait: "Show", Target: target, Methods: map[string]*Scheme{}})
	it.AddImpl(&Impl{Trait: "Show", Target: target, Methods: map[string]*Scheme{}})

	if _, err := it.Resolve("Show", target); err == nil {
		t.Fatalf("expected ambiguous-impl error with two matching impls")
	}
}

func TestImplTableResolveUnique(t *testing.T) {
	it := NewImplTable()
	target := &Constructor{DefID: 1}
	other := &Constructor{DefID: 2}
	want := &Impl{Trait: "Show", Target: target, Methods: map[string]*Scheme{}}
	it.AddImpl(want)
	it.AddImpl(&Impl{Trait: "Show", Target: other, Methods: map[string]*Scheme{}})

	got, err := it.Resolve("Show", target)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != want {
		t.Fatalf("resolved the wrong impl")
	}
}

func TestAssocTypeFallsBackToTraitDefault(t *testing.T) {
	it := NewImplTable()
	it.AddTrait(&TraitDecl{
		Name:       "Container",
		AssocTypes: map[string]Type{"Item": &Prim{Kind: Int}},
	})
	imp := &Impl{Trait: "Container", Target: &Constructor{DefID: 1}, AssocTypes: map[string]Type{}}
	it.AddImpl(imp)

	got, ok := it.AssocType(imp, "Item")
	if !ok {
		t.Fatalf("expected trait default to be found")
	}
	if got.String() != "Int" {
		t.Fatalf("expected default Item = Int, got %s", got)
	}
}
