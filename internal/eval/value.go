// Package eval implements Neve's tree-walking evaluator: lazy
// evaluation with memoized, shared thunks and a trampoline realizing
// tail-call optimization. The dispatch shape is one case per ast.Expr
// variant, forcing operands at each expression's elimination points,
// with a trampoline in which step can return a TailCall requesting a
// replaced frame instead of recursing through a fresh Go call.
package eval

import (
	"fmt"
	"math/big"
	"sort"
	"strings"

	"github.com/neve-lang/neve/internal/ast"
)

// Value is a fully-evaluated runtime value, minus Thunk: a Thunk is
// never itself observable to user code — forcing it is what produces
// one of these. Builtins and internal/derivation also produce Values
// through the Derivation variant.
type Value interface {
	valueNode()
	// Type names the value's runtime type for error messages and the
	// `typeOf`/Show-trait-less debug path; not the same as the static
	// internal/types.Type the checker assigned, which isn't retained at
	// runtime.
	Type() string
}

func (Int) valueNode()         {}
func (Float) valueNode()       {}
func (Bool) valueNode()        {}
func (Char) valueNode()        {}
func (Str) valueNode()         {}
func (PathV) valueNode()       {}
func (Unit) valueNode()        {}
func (*List) valueNode()       {}
func (Tuple) valueNode()       {}
func (*Record) valueNode()     {}
func (*Closure) valueNode()    {}
func (*Ctor) valueNode()       {}
func (*CtorFn) valueNode()     {}
func (*Builtin) valueNode()    {}
func (*Derivation) valueNode() {}

// Int is Neve's arbitrary-precision integer: operations that yield Int
// never truncate.
type Int struct{ V *big.Int }

func NewInt(i int64) Int { return Int{V: big.NewInt(i)} }
func (Int) Type() string { return "Int" }
func (i Int) String() string {
	if i.V == nil {
		return "0"
	}
	return i.V.String()
}

type Float float64

func (Float) Type() string      { return "Float" }
func (f Float) String() string  { return fmt.Sprintf("%g", float64(f)) }

type Bool bool

func (Bool) Type() string     { return "Bool" }
func (b Bool) String() string { return fmt.Sprintf("%t", bool(b)) }

type Char rune

func (Char) Type() string     { return "Char" }
func (c Char) String() string { return string(rune(c)) }

type Str string

func (Str) Type() string     { return "String" }
func (s Str) String() string { return string(s) }

// PathV is a filesystem path value, Neve's Path primitive.
type PathV string

func (PathV) Type() string     { return "Path" }
func (p PathV) String() string { return string(p) }

type Unit struct{}

func (Unit) Type() string     { return "Unit" }
func (Unit) String() string   { return "()" }

// List is a persistent singly-linked cons list, keeping concat and
// comprehension linear in total size: Cons is O(1), Concat walks and
// relinks the left list once, O(len(left)). A nil *List denotes the
// empty list.
type List struct {
	Head Value
	Tail *List
}

func (l *List) Type() string { return "List" }

func Nil() *List { return nil }

func Cons(head Value, tail *List) *List { return &List{Head: head, Tail: tail} }

func (l *List) Len() int {
	n := 0
	for cur := l; cur != nil; cur = cur.Tail {
		n++
	}
	return n
}

// FromSlice builds a List from elems in order, sharing nothing with the
// slice itself.
func FromSlice(elems []Value) *List {
	var out *List
	for i := len(elems) - 1; i >= 0; i-- {
		out = Cons(elems[i], out)
	}
	return out
}

func (l *List) ToSlice() []Value {
	var out []Value
	for cur := l; cur != nil; cur = cur.Tail {
		out = append(out, cur.Head)
	}
	return out
}

// Concat appends b after a, allocating fresh cons cells only for a's
// spine (b is shared structurally), giving an O(len(a)) bound.
func Concat(a, b *List) *List {
	if a == nil {
		return b
	}
	elems := a.ToSlice()
	out := b
	for i := len(elems) - 1; i >= 0; i-- {
		out = Cons(elems[i], out)
	}
	return out
}

// Tuple is `(a, b, c)`; the zero-length Tuple is Neve's unit-equivalent
// `()` literal form, though the checker/evaluator otherwise use the
// dedicated Unit value for `Unit`-typed expressions.
type Tuple []Value

func (Tuple) Type() string { return "Tuple" }

// Field is one ordered entry of a Record. Neve records are, in fact,
// ordered by declaration/construction order; field-name ordering is a
// display convention used only by the formatter, not a runtime invariant
// this package enforces.
type Field struct {
	Name  string
	Value Value
}

// Record is an immutable, ordered key/value map. Functional updates
// (`#{ ..base, field: v }`) build a new Record rather than mutating
// base, the same immutability every other aggregate Value (and
// Derivation) guarantees.
type Record struct {
	Fields []Field
}

func (*Record) Type() string { return "Record" }

func (r *Record) Get(name string) (Value, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// With returns a new Record with overrides applied on top of r's fields,
// preserving r's field order and appending any new field names.
func (r *Record) With(overrides []Field) *Record {
	out := make([]Field, len(r.Fields))
	copy(out, r.Fields)
	for _, ov := range overrides {
		found := false
		for i := range out {
			if out[i].Name == ov.Name {
				out[i].Value = ov.Value
				found = true
				break
			}
		}
		if !found {
			out = append(out, ov)
		}
	}
	return &Record{Fields: out}
}

func (r *Record) sortedString() string {
	fields := append([]Field(nil), r.Fields...)
	sort.Slice(fields, func(i, j int) bool { return fields[i].Name < fields[j].Name })
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = fmt.Sprintf("%s: %v", f.Name, f.Value)
	}
	return "#{" + strings.Join(parts, ", ") + "}"
}

// Closure is a lambda or named function value: its parameter list, body
// expression, and the environment it closes over.
type Closure struct {
	Name   string // "" for an anonymous lambda; set for named fn/impl-method values, used in stack-trace rendering
	Params []ast.Param
	Body   ast.Expr
	Env    *Env
}

func (*Closure) Type() string { return "Function" }

// Ctor is a fully-applied enum-variant (or zero-arg constructor) value:
// its tag name and positional payload.
type Ctor struct {
	Tag     string
	Payload []Value
}

func (*Ctor) Type() string { return "Constructor" }

// CtorFn is a not-yet-applied enum constructor with payload fields,
// e.g. `Some` before it is called with an argument. Calling it with
// exactly Arity arguments produces a Ctor.
type CtorFn struct {
	Tag   string
	Arity int
}

func (*CtorFn) Type() string { return "Constructor" }

// Builtin is a standard-library primitive invoked through a typed
// dispatcher that forces each argument it inspects. Fn receives
// already-evaluated arguments — forcing them is Call's job, uniform with
// user closures — and the Evaluator itself, for builtins (derivation,
// store.*, I/O) that need to recurse back into evaluation or reach the
// store/builder.
type Builtin struct {
	Name  string
	Arity int // -1 for variadic
	Fn    func(ev *Evaluator, args []Value) (Value, error)
}

func (*Builtin) Type() string { return "Function" }

// Derivation is the runtime representation of a `derivation #{...}`
// call's result, holding enough to compute its store path and, once
// forced in a string context, realize it via the builder. The actual
// derivation record lives in internal/derivation; this wraps it so
// Value stays self-contained and internal/eval need not import
// internal/builder (which would create an import cycle back through
// internal/store -> internal/eval's stdlib io callbacks).
type Derivation struct {
	Name       string
	Fields     *Record
	Realize    func() (PathV, error) // set by the derivation builtin; nil until wired to a builder
	outPathSet bool
	outPath    PathV
}

func (*Derivation) Type() string { return "Derivation" }

// OutPath memoizes Realize's result so forcing the same derivation value
// into multiple string contexts only builds it once.
func (d *Derivation) OutPath() (PathV, error) {
	if d.outPathSet {
		return d.outPath, nil
	}
	if d.Realize == nil {
		return "", fmt.Errorf("derivation %q has no realizer attached", d.Name)
	}
	p, err := d.Realize()
	if err != nil {
		return "", err
	}
	d.outPathSet = true
	d.outPath = p
	return p, nil
}

// Show renders v the way string interpolation does: primitives convert
// implicitly, everything else requires the Show trait in source, but
// the evaluator still needs a fallback for its own REPL/CLI
// value-printing path (the `eval`/`run` commands print "the value"), so
// Show is also used there directly rather than only from a `.show()`
// call.
func Show(v Value) string {
	switch vv := v.(type) {
	case Int:
		return vv.String()
	case Float:
		return vv.String()
	case Bool:
		return vv.String()
	case Char:
		return vv.String()
	case Str:
		return string(vv)
	case PathV:
		return string(vv)
	case Unit:
		return "()"
	case *List:
		parts := make([]string, 0, 8)
		for cur := vv; cur != nil; cur = cur.Tail {
			parts = append(parts, Show(cur.Head))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case Tuple:
		parts := make([]string, len(vv))
		for i, e := range vv {
			parts[i] = Show(e)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case *Record:
		return vv.sortedString()
	case *Ctor:
		if len(vv.Payload) == 0 {
			return vv.Tag
		}
		parts := make([]string, len(vv.Payload))
		for i, p := range vv.Payload {
			parts[i] = Show(p)
		}
		return vv.Tag + "(" + strings.Join(parts, ", ") + ")"
	case *CtorFn:
		return vv.Tag
	case *Closure:
		return "<function>"
	case *Builtin:
		return "<builtin " + vv.Name + ">"
	case *Derivation:
		return "<derivation " + vv.Name + ">"
	default:
		return fmt.Sprintf("%v", v)
	}
}
