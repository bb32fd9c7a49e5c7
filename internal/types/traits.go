package types

import "fmt"

// TraitDecl is a resolved trait: its associated-type names (which may
// themselves be bounded and carry defaults) and its method signatures'
// types, keyed by method name. internal/checker builds one TraitDecl
// per *ast.TraitDef.
type TraitDecl struct {
	Name       string
	AssocTypes map[string]Type // name -> default (nil if no default)
	Methods    map[string]*Scheme
}

// Impl is one `impl Trait for Target` (or inherent `impl Target` when
// Trait == ""). AssocTypes binds each of the trait's associated type
// names to a concrete Type for this impl.
type Impl struct {
	Trait      string
	Target     Type
	AssocTypes map[string]Type
	Methods    map[string]*Scheme
	// MethodDefIDs maps each method name to the hir.DefId of its concrete
	// *ast.FnDef (a DefImplMethod), so the evaluator's call-site dispatch
	// table can be populated with something it can actually look up and
	// invoke as a closure.
	MethodDefIDs map[string]uint32
}

// ImplTable resolves `T: Trait` bounds to a concrete Impl: the
// dictionary table the type checker annotates each call site with the
// resolved impl id from, for the evaluator to follow at runtime. Impls
// are grouped by trait name and matched against a target by the head of
// its type (see matchesHead): Neve has no orphan rules to enforce here
// (single-crate evaluation), so one impl per (trait, type head) is
// expected, and Resolve reports more than one as ambiguous.
type ImplTable struct {
	traits map[string]*TraitDecl
	impls  map[string][]*Impl // trait name -> every impl of it
}

func NewImplTable() *ImplTable {
	return &ImplTable{traits: map[string]*TraitDecl{}, impls: map[string][]*Impl{}}
}

func (it *ImplTable) AddTrait(t *TraitDecl) { it.traits[t.Name] = t }

func (it *ImplTable) Trait(name string) (*TraitDecl, bool) {
	t, ok := it.traits[name]
	return t, ok
}

func (it *ImplTable) AddImpl(imp *Impl) {
	it.impls[imp.Trait] = append(it.impls[imp.Trait], imp)
}

// Resolve finds the single Impl of trait matching target's head shape.
// Returns an error if zero or more than one impl matches — an
// unresolvable or ambiguous bound is a TypeError.
func (it *ImplTable) Resolve(trait string, target Type) (*Impl, error) {
	var found []*Impl
	for _, imp := range it.impls[trait] {
		if matchesHead(imp.Target, target) {
			found = append(found, imp)
		}
	}
	switch len(found) {
	case 0:
		return nil, fmt.Errorf("no impl of %s for %s", trait, Prune(target))
	case 1:
		return found[0], nil
	default:
		return nil, fmt.Errorf("ambiguous impl of %s for %s: %d candidates", trait, Prune(target), len(found))
	}
}

// matchesHead reports whether candidate's outer type constructor matches
// target's: the same DefID, primitive kind, or tuple/function arity; any
// List matches a List, and a Var candidate matches anything. Type
// arguments are not compared and nothing is unified. This is a
// simplified stand-in for full instance-head matching: sufficient for
// Neve's non-overlapping, non-orphan single-crate impls.
func matchesHead(candidate, target Type) bool {
	c, t := Prune(candidate), Prune(target)
	switch ct := c.(type) {
	case *Constructor:
		tt, ok := t.(*Constructor)
		return ok && ct.DefID == tt.DefID
	case *Prim:
		tt, ok := t.(*Prim)
		return ok && ct.Kind == tt.Kind
	case *List:
		_, ok := t.(*List)
		return ok
	case *Tuple:
		tt, ok := t.(*Tuple)
		return ok && len(ct.Elems) == len(tt.Elems)
	case *Function:
		tt, ok := t.(*Function)
		return ok && len(ct.Params) == len(tt.Params)
	case *Var:
		return true
	default:
		return false
	}
}

// AssocType resolves `Self.Name` inside imp's body to imp's binding for
// that associated type, falling back to the trait's default if imp left
// it unbound.
func (it *ImplTable) AssocType(imp *Impl, name string) (Type, bool) {
	if t, ok := imp.AssocTypes[name]; ok {
		return t, true
	}
	if trait, ok := it.traits[imp.Trait]; ok {
		if def, ok := trait.AssocTypes[name]; ok && def != nil {
			return def, true
		}
	}
	return nil, false
}
