package hir

import (
	"github.com/neve-lang/neve/internal/ast"
	"github.com/neve-lang/neve/internal/diag"
	"github.com/neve-lang/neve/internal/span"
)

// ImportEdge is one `import path [as alias]` or `pub import path [as
// alias]` statement, resolved to its target module once the graph is
// fully loaded.
type ImportEdge struct {
	Path    []string
	Alias   string // "" if no `as` clause; defaults to the last path segment
	Vis     ast.Visibility
	Sp      span.Span
	Target  ModuleID
	resolved bool
}

// Name returns the binding name this import introduces into its
// module's local scope.
func (e ImportEdge) Name() string {
	if e.Alias != "" {
		return e.Alias
	}
	return e.Path[len(e.Path)-1]
}

// Module is one loaded and def-collected source file.
type Module struct {
	ID      ModuleID
	Path    string // dotted import path, e.g. "crate.lib.util"
	AST     *ast.Module
	Defs    []*Def            // every DefId this module declares, in declaration order
	byName  map[string]*Def   // local top-level name -> Def (for resolving bare references within this module)
	Imports []ImportEdge

	// exports is this module's fully resolved re-export surface: every
	// name reachable as `<this module>.name`, whether declared locally
	// (Vis == Public) or brought in by a `pub import`. Import re-exports
	// are resolved with a deferred resolution pass. nil until
	// resolveExports has run.
	exports map[string]DefId
}

// Graph is the whole set of modules loaded for one compilation job, plus
// the global DefId table and identifier-resolution side tables produced
// by Resolve.
type Graph struct {
	Modules []*Module
	byPath  map[string]ModuleID
	AllDefs []*Def // indexed by DefId - 1; AllDefs[0] is DefId(1)

	// Refs and QualifiedRefs are the resolution side tables Resolve fills
	// in: Refs maps an *ast.Ident used in expression position to what it
	// resolves to; QualifiedRefs maps a `module.name`-shaped *ast.
	// FieldAccess (whose receiver is an import binding, not a value) to
	// the DefId it denotes.
	Refs          map[*ast.Ident]Ref
	QualifiedRefs map[*ast.FieldAccess]DefId
	CtorRefs      map[*ast.ConstructorPat]DefId

	// PatternLocals records the LocalId bindPattern assigned to every
	// IdentPat/BindPat it bound, keyed by the pattern node itself.
	// internal/eval consults this directly at match/call time instead of
	// re-deriving the resolver's counter order — unlike internal/checker
	// (a static whole-tree pass that visits every branch unconditionally
	// and so can safely replicate the counter by accumulation), the
	// evaluator only walks the branch actually taken at runtime and so
	// cannot reconstruct the counter itself.
	PatternLocals map[ast.Pattern]LocalId
	// ListRestLocals records the LocalId assigned to a ListPat's `..rest`
	// binding, since that name lives on the ListPat itself rather than on
	// a nested pattern node.
	ListRestLocals map[*ast.ListPat]LocalId
}

// RefKind distinguishes a resolved Ref's target.
type RefKind int

const (
	RefGlobal RefKind = iota
	RefLocal
)

// Ref is what a bare identifier resolves to: either a global DefId or a
// function-scoped LocalId.
type Ref struct {
	Kind  RefKind
	Def   DefId
	Local LocalId
}

func newGraph() *Graph {
	return &Graph{
		byPath:         make(map[string]ModuleID),
		Refs:           make(map[*ast.Ident]Ref),
		QualifiedRefs:  make(map[*ast.FieldAccess]DefId),
		CtorRefs:       make(map[*ast.ConstructorPat]DefId),
		PatternLocals:  make(map[ast.Pattern]LocalId),
		ListRestLocals: make(map[*ast.ListPat]LocalId),
	}
}

func (g *Graph) DefByID(id DefId) *Def {
	if id == 0 || int(id) > len(g.AllDefs) {
		return nil
	}
	return g.AllDefs[id-1]
}

func (g *Graph) addDef(m *Module, kind DefKind, name string, vis ast.Visibility, sp span.Span, node ast.Node, owner DefId) *Def {
	d := &Def{
		ID: DefId(len(g.AllDefs) + 1), Kind: kind, Name: name, Module: m.ID,
		Vis: vis, Sp: sp, Node: node, Owner: owner,
	}
	g.AllDefs = append(g.AllDefs, d)
	m.Defs = append(m.Defs, d)
	return d
}

// Load builds a module Graph from a set of already-parsed ASTs, keyed by
// their dotted import path. It registers every definition, resolves
// import edges to target modules, and fixed-point-resolves `pub import`
// re-exports. Identifier resolution within bodies is done separately by
// Resolve, since it requires the full export surface to be settled first.
func Load(asts map[string]*ast.Module, sink *diag.Sink) *Graph {
	g := newGraph()

	for path, mod := range asts {
		m := &Module{ID: ModuleID(len(g.Modules)), Path: path, AST: mod, byName: make(map[string]*Def)}
		g.Modules = append(g.Modules, m)
		g.byPath[path] = m.ID
	}

	for _, m := range g.Modules {
		g.collectDefs(m, sink)
	}

	for _, m := range g.Modules {
		g.resolveImportTargets(m, sink)
	}

	visiting := make(map[ModuleID]bool)
	for _, m := range g.Modules {
		g.resolveExports(m, visiting, sink)
	}

	return g
}

// collectDefs registers every top-level definition, enum variant, trait
// method, and impl method this module declares.
func (g *Graph) collectDefs(m *Module, sink *diag.Sink) {
	for _, def := range m.AST.Defs {
		switch d := def.(type) {
		case *ast.LetDef:
			g.registerTop(m, DefLet, bindingName(d.Pattern), d.Vis, d.Sp, d, sink)
		case *ast.FnDef:
			g.registerTop(m, DefFn, d.Name, d.Vis, d.Sp, d, sink)
		case *ast.TypeDef:
			g.registerTop(m, DefType, d.Name, d.Vis, d.Sp, d, sink)
		case *ast.StructDef:
			g.registerTop(m, DefStruct, d.Name, d.Vis, d.Sp, d, sink)
		case *ast.EnumDef:
			owner := g.registerTop(m, DefEnum, d.Name, d.Vis, d.Sp, d, sink)
			for _, v := range d.Variants {
				// Variants are visible at the same level as their enum
				// (pattern-matching and construction both use the bare
				// variant name), so they share the enum's visibility.
				g.addDef(m, DefEnumVariant, v.Name, d.Vis, v.Sp, variantNode{d, v}, owner.ID)
				m.byName[v.Name] = m.Defs[len(m.Defs)-1]
			}
		case *ast.TraitDef:
			owner := g.registerTop(m, DefTrait, d.Name, d.Vis, d.Sp, d, sink)
			for i := range d.Methods {
				sig := d.Methods[i]
				g.addDef(m, DefTraitMethod, sig.Name, d.Vis, sig.Sp, &d.Methods[i], owner.ID)
			}
		case *ast.ImplDef:
			for _, method := range d.Methods {
				g.addDef(m, DefImplMethod, method.Name, method.Vis, method.Sp, method, 0)
			}
		case *ast.ImportDef:
			m.Imports = append(m.Imports, ImportEdge{Path: d.Path, Alias: d.Alias, Vis: d.Vis, Sp: d.Sp})
		}
	}
}

// variantNode lets an enum variant carry both its parent EnumDef (for
// generics/context) and its own VariantDef in Def.Node.
type variantNode struct {
	Enum    *ast.EnumDef
	Variant ast.VariantDef
}

func (v variantNode) Span() span.Span { return v.Variant.Sp }

// VariantOf exposes a DefEnumVariant Def's underlying enum/variant AST
// nodes to other packages (internal/eval builds a runtime constructor
// value from Variant.Payload's length; variantNode itself stays
// unexported since nothing outside this file needs the pair together).
func VariantOf(d *Def) (*ast.EnumDef, ast.VariantDef, bool) {
	vn, ok := d.Node.(variantNode)
	if !ok {
		return nil, ast.VariantDef{}, false
	}
	return vn.Enum, vn.Variant, true
}

func (g *Graph) registerTop(m *Module, kind DefKind, name string, vis ast.Visibility, sp span.Span, node ast.Node, sink *diag.Sink) *Def {
	if existing, dup := m.byName[name]; dup {
		sink.Errorf(sp, "ResolveError", "%q is already defined at %s", name, existing.Sp)
	}
	d := g.addDef(m, kind, name, vis, sp, node, 0)
	m.byName[name] = d
	return d
}

func bindingName(p ast.Pattern) string {
	if id, ok := p.(*ast.IdentPat); ok {
		return id.Name
	}
	return "_"
}

// resolveImportTargets maps each import edge's dotted path to a loaded
// module, reporting an unresolved-module diagnostic otherwise. "crate" as
// the leading path segment is stripped; every other segment is matched
// dotted-path-equal against a loaded module's Path.
func (g *Graph) resolveImportTargets(m *Module, sink *diag.Sink) {
	for i := range m.Imports {
		e := &m.Imports[i]
		path := e.Path
		if len(path) > 0 && path[0] == "crate" {
			path = path[1:]
		}
		key := joinDots(path)
		target, ok := g.byPath[key]
		if !ok {
			sink.Errorf(e.Sp, "ResolveError", "unresolved module %q", joinDots(e.Path))
			continue
		}
		e.Target = target
		e.resolved = true
	}
}

func joinDots(segs []string) string {
	s := ""
	for i, seg := range segs {
		if i > 0 {
			s += "."
		}
		s += seg
	}
	return s
}

// resolveExports computes m's full re-export surface: its own public
// definitions, plus the entire export table of every module it `pub
// import`s — two modules can legitimately re-export each other's
// non-conflicting names. visiting is the active DFS stack, guarding
// against cyclic re-exports: a module reached while still on the stack
// reports ResolveError and contributes nothing further, so the
// recursion always terminates.
func (g *Graph) resolveExports(m *Module, visiting map[ModuleID]bool, sink *diag.Sink) map[string]DefId {
	if m.exports != nil {
		return m.exports
	}
	if visiting[m.ID] {
		sink.Errorf(span.Span{}, "ResolveError", "cyclic re-export involving module %q", m.Path)
		return map[string]DefId{}
	}
	visiting[m.ID] = true
	defer delete(visiting, m.ID)

	out := make(map[string]DefId)
	for _, d := range m.Defs {
		if d.Vis == ast.Public || d.Vis == ast.Crate {
			out[d.Name] = d.ID
		}
	}
	for _, e := range m.Imports {
		if e.Vis != ast.Public || !e.resolved {
			continue
		}
		target := g.Modules[e.Target]
		for name, id := range g.resolveExports(target, visiting, sink) {
			if existing, dup := out[name]; dup && existing != id {
				sink.Errorf(e.Sp, "ResolveError", "ambiguous re-export: %q is exported by more than one import", name)
				continue
			}
			out[name] = id
		}
	}
	m.exports = out
	return out
}
