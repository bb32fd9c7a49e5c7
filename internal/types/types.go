// Package types implements Neve's type representation: the Hindley-Milner
// type algebra extended with row-polymorphic records, trait bounds, and
// associated types.
//
// The representation follows the classic mutable-union-find HM
// implementation shape: a Var is a pointer-identity cell that starts
// unbound and is unified in place by internal/checker, rather than a
// substitution map threaded through every call.
package types

import (
	"fmt"
	"sort"
	"strings"
)

// Type is any of the type algebra's variants.
type Type interface {
	typeNode()
	String() string
}

func (*Prim) typeNode()        {}
func (*Tuple) typeNode()       {}
func (*List) typeNode()        {}
func (*Record) typeNode()      {}
func (*Function) typeNode()    {}
func (*Constructor) typeNode() {}
func (*Var) typeNode()         {}

// PrimKind enumerates the primitive types.
type PrimKind int

const (
	Int PrimKind = iota
	Float
	Bool
	Char
	String
	Path
	Unit
)

func (k PrimKind) String() string {
	switch k {
	case Int:
		return "Int"
	case Float:
		return "Float"
	case Bool:
		return "Bool"
	case Char:
		return "Char"
	case String:
		return "String"
	case Path:
		return "Path"
	case Unit:
		return "Unit"
	default:
		return "?"
	}
}

// Prim is one of the seven primitive types.
type Prim struct{ Kind PrimKind }

func (p *Prim) String() string { return p.Kind.String() }

var (
	TInt    = &Prim{Kind: Int}
	TFloat  = &Prim{Kind: Float}
	TBool   = &Prim{Kind: Bool}
	TChar   = &Prim{Kind: Char}
	TString = &Prim{Kind: String}
	TPath   = &Prim{Kind: Path}
	TUnit   = &Prim{Kind: Unit}
)

// Tuple is `(T1, T2, ...)`.
type Tuple struct{ Elems []Type }

func (t *Tuple) String() string {
	parts := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		parts[i] = Prune(e).String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// List is `[T]`.
type List struct{ Elem Type }

func (l *List) String() string { return "[" + Prune(l.Elem).String() + "]" }

// Field is one named entry of a Record.
type Field struct {
	Name string
	Type Type
}

// Record is a row-polymorphic record: a closed set of fields, or an open
// row extended by Row when Row is non-nil — record literals have a
// closed row, while patterns with `..` introduce an open row variable.
// Fields is kept insertion-ordered (field-name ordering applies to
// runtime Values, not the type; the type's field order mirrors how it
// was written, but String() sorts for stable output).
type Record struct {
	Fields []Field
	Row    *Var // nil: closed row
}

func (r *Record) String() string {
	fields := append([]Field(nil), r.Fields...)
	sort.Slice(fields, func(i, j int) bool { return fields[i].Name < fields[j].Name })
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = fmt.Sprintf("%s: %s", f.Name, Prune(f.Type).String())
	}
	body := strings.Join(parts, ", ")
	if r.Row != nil {
		if body != "" {
			body += ", "
		}
		body += "| " + Prune(r.Row).String()
	}
	return "#{" + body + "}"
}

// FieldType returns the type of field name if Fields declares it.
func (r *Record) FieldType(name string) (Type, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Type, true
		}
	}
	return nil, false
}

// Function is `(T1, T2) -> Ret`.
type Function struct {
	Params []Type
	Ret    Type
}

func (f *Function) String() string {
	parts := make([]string, len(f.Params))
	for i, p := range f.Params {
		parts[i] = Prune(p).String()
	}
	return "(" + strings.Join(parts, ", ") + ") -> " + Prune(f.Ret).String()
}

// Constructor is a user-defined named type applied to arguments: a
// struct, enum, or type alias target. DefID is an opaque uint32 matching
// internal/hir.DefId's
// underlying representation without importing hir here (internal/hir
// already imports internal/ast, and types must stay importable from both
// internal/checker and internal/eval without a cycle).
type Constructor struct {
	DefID uint32
	Name  string
	Args  []Type
}

func (c *Constructor) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		parts[i] = Prune(a).String()
	}
	return c.Name + "<" + strings.Join(parts, ", ") + ">"
}

// Var is a type variable: unbound until Unify links it to a concrete
// Type via Instance. Level implements the generalization-soundness rule
// of tracking a depth on each variable: a variable is only generalized
// at `let` if its level is deeper than the enclosing environment's
// current level.
type Var struct {
	ID       int
	Name     string // display name, assigned lazily by String()
	Level    int
	Instance Type // nil if unbound
}

func (v *Var) String() string {
	if v.Instance != nil {
		return Prune(v.Instance).String()
	}
	if v.Name != "" {
		return v.Name
	}
	return fmt.Sprintf("t%d", v.ID)
}

// Generator hands out fresh, globally unique Var IDs for one checker run.
// A Generator is not a global: internal/checker.Checker owns one per
// compilation job, so compiler-internal state carries no user-visible
// global mutation.
type Generator struct{ next int }

func NewGenerator() *Generator { return &Generator{} }

// Fresh returns a new unbound type variable at the given level.
func (g *Generator) Fresh(level int) *Var {
	g.next++
	return &Var{ID: g.next, Level: level}
}

// Prune follows a chain of bound Vars to the representative type,
// collapsing the chain as it goes (path compression), matching the
// classic union-find HM implementation. Every function in this package
// that inspects a Type's shape should call Prune first.
func Prune(t Type) Type {
	v, ok := t.(*Var)
	if !ok || v.Instance == nil {
		return t
	}
	root := Prune(v.Instance)
	v.Instance = root
	return root
}

// FreeVars collects every unbound Var reachable from t.
func FreeVars(t Type, out map[*Var]bool) {
	t = Prune(t)
	switch tt := t.(type) {
	case *Var:
		out[tt] = true
	case *Tuple:
		for _, e := range tt.Elems {
			FreeVars(e, out)
		}
	case *List:
		FreeVars(tt.Elem, out)
	case *Record:
		for _, f := range tt.Fields {
			FreeVars(f.Type, out)
		}
		if tt.Row != nil {
			FreeVars(tt.Row, out)
		}
	case *Function:
		for _, p := range tt.Params {
			FreeVars(p, out)
		}
		FreeVars(tt.Ret, out)
	case *Constructor:
		for _, a := range tt.Args {
			FreeVars(a, out)
		}
	}
}
