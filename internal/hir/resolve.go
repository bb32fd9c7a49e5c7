package hir

import (
	"github.com/neve-lang/neve/internal/ast"
	"github.com/neve-lang/neve/internal/diag"
)

// scope is an outer-linked lexical scope mapping a bare name to either a
// LocalId (a parameter or let/pattern binding) or directly to a DefId (a
// module-level name, or an imported module's binding name).
type scope struct {
	outer   *scope
	locals  map[string]LocalId
	globals map[string]DefId
	// imports maps an import binding name to the module it names, for
	// resolving `modname.member` qualified access.
	imports map[string]ModuleID
}

func newScope(outer *scope) *scope {
	return &scope{outer: outer, locals: make(map[string]LocalId), globals: make(map[string]DefId)}
}

func (s *scope) lookup(name string) (Ref, bool) {
	for cur := s; cur != nil; cur = cur.outer {
		if id, ok := cur.locals[name]; ok {
			return Ref{Kind: RefLocal, Local: id}, true
		}
		if id, ok := cur.globals[name]; ok {
			return Ref{Kind: RefGlobal, Def: id}, true
		}
	}
	return Ref{}, false
}

func (s *scope) lookupImport(name string) (ModuleID, bool) {
	for cur := s; cur != nil; cur = cur.outer {
		if id, ok := cur.imports[name]; ok {
			return id, true
		}
	}
	return 0, false
}

// resolver walks one module's bodies resolving every identifier. nextLocal
// is scoped per top-level Def (a fresh counter each time), matching
// LocalId's function-scoped lifetime.
type resolver struct {
	g         *Graph
	m         *Module
	sink      *diag.Sink
	nextLocal LocalId
	builtins  map[string]bool
}

// Resolve walks every definition's body/type in the graph, filling in
// g.Refs, g.QualifiedRefs, and g.CtorRefs. Call after Load has settled
// every module's export surface. builtins is consulted only when a bare
// name fails local/global/import lookup.
func Resolve(g *Graph, sink *diag.Sink, builtins map[string]bool) {
	for _, m := range g.Modules {
		r := &resolver{g: g, m: m, sink: sink, builtins: builtins}
		r.resolveModule()
	}
}

func (r *resolver) resolveModule() {
	top := newScope(nil)
	for name, id := range r.m.byName {
		top.globals[name] = id.ID
	}
	top.imports = make(map[string]ModuleID)
	for _, e := range r.m.Imports {
		if e.resolved {
			top.imports[e.Name()] = e.Target
		}
	}

	for _, def := range r.m.AST.Defs {
		switch d := def.(type) {
		case *ast.LetDef:
			r.nextLocal = 0
			r.resolveExpr(d.Value, top)
			if d.Type != nil {
				r.resolveType(d.Type, top)
			}
		case *ast.FnDef:
			r.resolveFn(d, top)
		case *ast.TypeDef:
			if d.Alias != nil {
				r.resolveType(d.Alias, top)
			}
		case *ast.StructDef:
			for _, f := range d.Fields {
				r.resolveType(f.Type, top)
			}
		case *ast.EnumDef:
			for _, v := range d.Variants {
				for _, t := range v.Payload {
					r.resolveType(t, top)
				}
			}
		case *ast.TraitDef:
			for i := range d.Methods {
				if d.Methods[i].Default != nil {
					r.resolveFnSig(&d.Methods[i], top)
				}
			}
		case *ast.ImplDef:
			implScope := newScope(top)
			for _, method := range d.Methods {
				r.resolveFn(method, implScope)
			}
		}
	}
}

func (r *resolver) resolveFn(d *ast.FnDef, outer *scope) {
	r.nextLocal = 0
	s := newScope(outer)
	for i := range d.Params {
		r.bindPattern(d.Params[i].Pattern, s)
		if d.Params[i].Type != nil {
			r.resolveType(d.Params[i].Type, s)
		}
	}
	if d.Ret != nil {
		r.resolveType(d.Ret, s)
	}
	r.resolveExpr(d.Body, s)
}

func (r *resolver) resolveFnSig(sig *ast.FnSig, outer *scope) {
	r.nextLocal = 0
	s := newScope(outer)
	for i := range sig.Params {
		r.bindPattern(sig.Params[i].Pattern, s)
	}
	r.resolveExpr(sig.Default, s)
}

// bindPattern introduces every name a pattern binds into s as a fresh
// LocalId, recursing into nested patterns.
func (r *resolver) bindPattern(p ast.Pattern, s *scope) {
	switch pt := p.(type) {
	case *ast.IdentPat:
		r.nextLocal++
		s.locals[pt.Name] = r.nextLocal
		r.g.PatternLocals[pt] = r.nextLocal
	case *ast.BindPat:
		r.nextLocal++
		s.locals[pt.Name] = r.nextLocal
		r.g.PatternLocals[pt] = r.nextLocal
		r.bindPattern(pt.Pattern, s)
	case *ast.TuplePat:
		for _, e := range pt.Elems {
			r.bindPattern(e, s)
		}
	case *ast.ListPat:
		for _, e := range pt.Elems {
			r.bindPattern(e, s)
		}
		if pt.HasRest && pt.Rest != "" {
			r.nextLocal++
			s.locals[pt.Rest] = r.nextLocal
			r.g.ListRestLocals[pt] = r.nextLocal
		}
	case *ast.RecordPat:
		for _, f := range pt.Fields {
			r.bindPattern(f.Pattern, s)
		}
	case *ast.ConstructorPat:
		if ref, ok := r.resolveCtorPath(pt.Path, s); ok {
			r.g.CtorRefs[pt] = ref
		} else {
			r.sink.Errorf(pt.Sp, "ResolveError", "undefined constructor %q", joinDots(pt.Path))
		}
		for _, a := range pt.Args {
			r.bindPattern(a, s)
		}
	case *ast.OrPat:
		for _, a := range pt.Alts {
			r.bindPattern(a, s)
		}
	}
}

func (r *resolver) resolveCtorPath(path []string, s *scope) (DefId, bool) {
	if len(path) == 1 {
		if ref, ok := s.lookup(path[0]); ok && ref.Kind == RefGlobal {
			return ref.Def, true
		}
		return 0, false
	}
	if mod, ok := s.lookupImport(path[0]); ok {
		exports := r.g.Modules[mod].exports
		if id, ok := exports[path[len(path)-1]]; ok {
			return id, true
		}
	}
	return 0, false
}

func (r *resolver) resolveExpr(e ast.Expr, s *scope) {
	switch ex := e.(type) {
	case *ast.Ident:
		if ref, ok := s.lookup(ex.Name); ok {
			r.g.Refs[ex] = ref
		} else if !r.builtins[ex.Name] {
			r.sink.Errorf(ex.Sp, "ResolveError", "undefined name %q", ex.Name)
		}
	case *ast.StringLit:
		for _, seg := range ex.Segments {
			if seg.IsExpr {
				r.resolveExpr(seg.Expr, s)
			}
		}
	case *ast.ListLit:
		for _, el := range ex.Elems {
			r.resolveExpr(el, s)
		}
	case *ast.ListComp:
		inner := newScope(s)
		for _, c := range ex.Clauses {
			if c.Bind != nil {
				r.resolveExpr(c.Source, inner)
				r.bindPattern(c.Bind, inner)
			} else {
				r.resolveExpr(c.Guard, inner)
			}
		}
		r.resolveExpr(ex.Result, inner)
	case *ast.TupleLit:
		for _, el := range ex.Elems {
			r.resolveExpr(el, s)
		}
	case *ast.RecordLit:
		if ex.Base != nil {
			r.resolveExpr(ex.Base, s)
		}
		for _, f := range ex.Fields {
			r.resolveExpr(f.Value, s)
		}
	case *ast.Block:
		inner := newScope(s)
		for _, let := range ex.Lets {
			r.resolveExpr(let.Value, inner)
			if let.Type != nil {
				r.resolveType(let.Type, inner)
			}
			r.bindPattern(let.Pattern, inner)
		}
		r.resolveExpr(ex.Tail, inner)
	case *ast.Lambda:
		inner := newScope(s)
		for i := range ex.Params {
			r.bindPattern(ex.Params[i].Pattern, inner)
			if ex.Params[i].Type != nil {
				r.resolveType(ex.Params[i].Type, inner)
			}
		}
		if ex.Ret != nil {
			r.resolveType(ex.Ret, inner)
		}
		r.resolveExpr(ex.Body, inner)
	case *ast.Call:
		r.resolveExpr(ex.Callee, s)
		for _, a := range ex.Args {
			r.resolveExpr(a, s)
		}
	case *ast.FieldAccess:
		if id, ok := ex.Receiver.(*ast.Ident); ok {
			if mod, ok := s.lookupImport(id.Name); ok {
				if defID, ok := r.g.Modules[mod].exports[ex.Field]; ok {
					r.g.QualifiedRefs[ex] = defID
					return
				}
				r.sink.Errorf(ex.Sp, "ResolveError", "module %q has no public member %q", id.Name, ex.Field)
				return
			}
		}
		r.resolveExpr(ex.Receiver, s)
	case *ast.Index:
		r.resolveExpr(ex.Receiver, s)
		r.resolveExpr(ex.Index, s)
	case *ast.Match:
		r.resolveExpr(ex.Scrutinee, s)
		for _, arm := range ex.Arms {
			inner := newScope(s)
			r.bindPattern(arm.Pattern, inner)
			if arm.Guard != nil {
				r.resolveExpr(arm.Guard, inner)
			}
			r.resolveExpr(arm.Body, inner)
		}
	case *ast.If:
		r.resolveExpr(ex.Cond, s)
		r.resolveExpr(ex.Then, s)
		r.resolveExpr(ex.Else, s)
	case *ast.BinaryExpr:
		r.resolveExpr(ex.Left, s)
		r.resolveExpr(ex.Right, s)
	case *ast.UnaryExpr:
		r.resolveExpr(ex.Operand, s)
	case *ast.PipeExpr:
		r.resolveExpr(ex.Left, s)
		r.resolveExpr(ex.Right, s)
	case *ast.Compose:
		r.resolveExpr(ex.Left, s)
		r.resolveExpr(ex.Right, s)
	case *ast.TryExpr:
		r.resolveExpr(ex.Operand, s)
	case *ast.SafeAccess:
		r.resolveExpr(ex.Receiver, s)
	case *ast.Coalesce:
		r.resolveExpr(ex.Left, s)
		r.resolveExpr(ex.Right, s)
	}
}

func (r *resolver) resolveType(t ast.TypeExpr, s *scope) {
	switch tt := t.(type) {
	case *ast.NamedType:
		for _, a := range tt.Args {
			r.resolveType(a, s)
		}
	case *ast.TupleType:
		for _, e := range tt.Elems {
			r.resolveType(e, s)
		}
	case *ast.ListType:
		r.resolveType(tt.Elem, s)
	case *ast.RecordType:
		for _, f := range tt.Fields {
			r.resolveType(f.Type, s)
		}
	case *ast.FunctionType:
		for _, p := range tt.Params {
			r.resolveType(p, s)
		}
		r.resolveType(tt.Ret, s)
	}
}
