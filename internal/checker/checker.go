// Package checker implements Neve's type checker: Hindley-Milner
// inference extended with let-polymorphism, row-polymorphic records,
// trait bounds resolved to a concrete impl per call site, associated
// types, and kind checking.
//
// The checker consumes an *hir.Graph (every identifier already resolved
// to a DefId/LocalId) and walks each top-level definition's body, with
// one file per syntax family: infer.go's switch dispatches on expression
// kind, pattern.go groups the pattern-bind helpers.
package checker

import (
	"github.com/neve-lang/neve/internal/ast"
	"github.com/neve-lang/neve/internal/diag"
	"github.com/neve-lang/neve/internal/hir"
	"github.com/neve-lang/neve/internal/types"
)

// structInfo is a checked struct declaration: its generic parameters as
// fresh skeleton Vars and its field types in declaration order.
type structInfo struct {
	def      *hir.Def
	typeVars []*types.Var
	fields   []types.Field
}

// enumInfo is a checked enum declaration: each variant's payload types
// and the Constructor type the variant's tag produces.
type enumInfo struct {
	def      *hir.Def
	typeVars []*types.Var
	variants map[string]*variantInfo
}

type variantInfo struct {
	def     *hir.Def
	payload []types.Type
}

// Checker holds the whole-graph state built by Check: the generator for
// fresh type variables, the trait/impl table, every top-level
// definition's Scheme, and per-Def-body transient state (localTypes)
// reset at the start of each top-level definition so LocalIds line up
// with internal/hir/resolve.go's own reset-per-Def discipline.
type Checker struct {
	g     *hir.Graph
	gen   *types.Generator
	impls *types.ImplTable
	sink  *diag.Sink

	defSchemes map[hir.DefId]*types.Scheme
	structs    map[hir.DefId]*structInfo
	enums      map[hir.DefId]*enumInfo

	// localTypes maps the current Def's LocalIds to their inferred types.
	// Reset at the start of every top-level Def: scoped to a single Def's
	// body.
	localTypes map[hir.LocalId]types.Type

	// callBoundDefs records, per call-site AST node whose callee resolves
	// to a trait method, which concrete hir.DefId (an impl method) the
	// checker resolved the bound to, so the evaluator (internal/eval)
	// consults this table instead of re-resolving trait dispatch at
	// runtime.
	CallBoundDefs map[*ast.Call]hir.DefId

	level int // current let-nesting depth, for Generalize/Fresh
}

// Check runs the full checker over g, returning a Checker whose
// defSchemes/CallBoundDefs the evaluator and any later tooling (LSP,
// formatter) can query. Diagnostics are appended to sink; one malformed
// top-level definition does not stop the rest from being checked.
func Check(g *hir.Graph, sink *diag.Sink) *Checker {
	c := &Checker{
		g:             g,
		gen:           types.NewGenerator(),
		impls:         types.NewImplTable(),
		sink:          sink,
		defSchemes:    map[hir.DefId]*types.Scheme{},
		structs:       map[hir.DefId]*structInfo{},
		enums:         map[hir.DefId]*enumInfo{},
		CallBoundDefs: map[*ast.Call]hir.DefId{},
	}
	c.declarePass()
	c.bodyPass()
	return c
}

// Scheme returns the checked type scheme for a top-level definition (fn,
// let, or enum-variant constructor), for use by internal/eval's
// diagnostics or pkg/neve's introspection API.
func (c *Checker) Scheme(id hir.DefId) (*types.Scheme, bool) {
	s, ok := c.defSchemes[id]
	return s, ok
}

// declarePass registers every struct/enum/trait/fn/let's *signature*
// (not yet its checked body) so that mutually-referencing top-level
// definitions can all see each other's types before any body is
// inferred — value recursion is only allowed at function boundaries.
func (c *Checker) declarePass() {
	for _, m := range c.g.Modules {
		for _, d := range m.Defs {
			switch d.Kind {
			case hir.DefStruct:
				c.declareStruct(d)
			case hir.DefEnum:
				c.declareEnum(d)
			case hir.DefTrait:
				c.declareTrait(d)
			}
		}
	}
	for _, m := range c.g.Modules {
		for _, d := range m.Defs {
			if d.Kind == hir.DefFn {
				c.declareFnSignature(d)
			}
		}
		for _, def := range m.AST.Defs {
			if impl, ok := def.(*ast.ImplDef); ok {
				c.declareImpl(m, impl)
			}
		}
	}
}

func (c *Checker) declareStruct(d *hir.Def) {
	sd := d.Node.(*ast.StructDef)
	tvs := make([]*types.Var, len(sd.Generics))
	scope := map[string]*types.Var{}
	for i, g := range sd.Generics {
		tvs[i] = c.gen.Fresh(0)
		tvs[i].Name = g.Name
		scope[g.Name] = tvs[i]
	}
	fields := make([]types.Field, len(sd.Fields))
	for i, f := range sd.Fields {
		fields[i] = types.Field{Name: f.Name, Type: c.resolveTypeExpr(f.Type, scope)}
	}
	c.structs[d.ID] = &structInfo{def: d, typeVars: tvs, fields: fields}

	ctorArgs := make([]types.Type, len(tvs))
	for i, v := range tvs {
		ctorArgs[i] = v
	}
	ret := &types.Constructor{DefID: uint32(d.ID), Name: sd.Name, Args: ctorArgs}
	paramTypes := make([]types.Type, len(fields))
	for i, f := range fields {
		paramTypes[i] = f.Type
	}
	ctorType := ret
	var fnType types.Type = ctorType
	if len(paramTypes) > 0 {
		fnType = &types.Function{Params: paramTypes, Ret: ret}
	}
	c.defSchemes[d.ID] = types.Generalize(fnType, -1, nil)
}

func (c *Checker) declareEnum(d *hir.Def) {
	ed := d.Node.(*ast.EnumDef)
	tvs := make([]*types.Var, len(ed.Generics))
	scope := map[string]*types.Var{}
	for i, g := range ed.Generics {
		tvs[i] = c.gen.Fresh(0)
		tvs[i].Name = g.Name
		scope[g.Name] = tvs[i]
	}
	ctorArgs := make([]types.Type, len(tvs))
	for i, v := range tvs {
		ctorArgs[i] = v
	}
	enumType := &types.Constructor{DefID: uint32(d.ID), Name: ed.Name, Args: ctorArgs}

	info := &enumInfo{def: d, typeVars: tvs, variants: map[string]*variantInfo{}}
	for _, v := range ed.Variants {
		payload := make([]types.Type, len(v.Payload))
		for j, pt := range v.Payload {
			payload[j] = c.resolveTypeExpr(pt, scope)
		}
		info.variants[v.Name] = &variantInfo{payload: payload}

		vd := c.defOf(d.Module, v.Name)
		var fnType types.Type = enumType
		if len(payload) > 0 {
			fnType = &types.Function{Params: payload, Ret: enumType}
		}
		if vd != nil {
			c.defSchemes[vd.ID] = types.Generalize(fnType, -1, nil)
			info.variants[v.Name].def = vd
		}
	}
	c.enums[d.ID] = info
}

func (c *Checker) declareTrait(d *hir.Def) {
	td := d.Node.(*ast.TraitDef)
	decl := &types.TraitDecl{Name: td.Name, AssocTypes: map[string]types.Type{}, Methods: map[string]*types.Scheme{}}
	for _, at := range td.AssocTypes {
		decl.AssocTypes[at.Name] = nil
	}
	scope := map[string]*types.Var{}
	selfVar := c.gen.Fresh(0)
	selfVar.Name = "Self"
	scope["Self"] = selfVar
	for _, sig := range td.Methods {
		params := make([]types.Type, len(sig.Params))
		for i, p := range sig.Params {
			if p.Type != nil {
				params[i] = c.resolveTypeExpr(p.Type, scope)
			} else {
				params[i] = c.gen.Fresh(0)
			}
		}
		ret := types.Type(types.TUnit)
		if sig.Ret != nil {
			ret = c.resolveTypeExpr(sig.Ret, scope)
		}
		decl.Methods[sig.Name] = types.Generalize(&types.Function{Params: params, Ret: ret}, -1, nil)
	}
	c.impls.AddTrait(decl)
}

func (c *Checker) declareImpl(m *hir.Module, impl *ast.ImplDef) {
	scope := map[string]*types.Var{}
	for _, g := range impl.Generics {
		v := c.gen.Fresh(0)
		v.Name = g.Name
		scope[g.Name] = v
	}
	target := c.resolveTypeExpr(impl.Target, scope)
	traitName := ""
	if impl.Trait != nil {
		traitName = impl.Trait.Path[len(impl.Trait.Path)-1]
	}
	assoc := map[string]types.Type{}
	for _, b := range impl.AssocTypes {
		assoc[b.Name] = c.resolveTypeExpr(b.Type, scope)
	}
	imp := &types.Impl{Trait: traitName, Target: target, AssocTypes: assoc, Methods: map[string]*types.Scheme{}, MethodDefIDs: map[string]uint32{}}
	for _, method := range impl.Methods {
		methDef := c.defOfMethod(m.ID, method)
		if methDef == nil {
			continue
		}
		c.declareFnSignature(methDef)
		imp.Methods[method.Name] = c.defSchemes[methDef.ID]
		imp.MethodDefIDs[method.Name] = uint32(methDef.ID)
	}
	if traitName != "" {
		c.impls.AddImpl(imp)
	}
}

func (c *Checker) declareFnSignature(d *hir.Def) {
	fd := d.Node.(*ast.FnDef)
	scope := map[string]*types.Var{}
	for _, g := range fd.Generics {
		v := c.gen.Fresh(0)
		v.Name = g.Name
		scope[g.Name] = v
	}
	params := make([]types.Type, len(fd.Params))
	for i, p := range fd.Params {
		if p.Type != nil {
			params[i] = c.resolveTypeExpr(p.Type, scope)
		} else {
			params[i] = c.gen.Fresh(0)
		}
	}
	ret := types.Type(c.gen.Fresh(0))
	if fd.Ret != nil {
		ret = c.resolveTypeExpr(fd.Ret, scope)
	}
	// Monomorphic placeholder while bodies (possibly mutually recursive
	// through this signature) are checked; bodyPass re-generalizes once
	// every body has been inferred.
	c.defSchemes[d.ID] = types.Monomorphic(&types.Function{Params: params, Ret: ret})
}

// defOf finds the Def named name declared directly in module mid.
func (c *Checker) defOf(mid hir.ModuleID, name string) *hir.Def {
	m := c.g.Modules[mid]
	for _, d := range m.Defs {
		if d.Name == name {
			return d
		}
	}
	return nil
}

// defOfMethod finds the DefImplMethod Def backing method specifically,
// matched by AST node identity rather than by name: distinct impls of the
// same trait for different targets routinely share method names (every
// Show impl has a method literally called "show"), so a name-only lookup
// like defOf would silently return whichever impl happened to register
// first for every later one.
func (c *Checker) defOfMethod(mid hir.ModuleID, method *ast.FnDef) *hir.Def {
	m := c.g.Modules[mid]
	for _, d := range m.Defs {
		if d.Kind == hir.DefImplMethod && d.Node == ast.Node(method) {
			return d
		}
	}
	return nil
}

// bodyPass infers every fn/let body, unifying it against the declared
// (or placeholder) signature, then generalizes the result.
func (c *Checker) bodyPass() {
	for _, m := range c.g.Modules {
		for _, d := range m.Defs {
			switch d.Kind {
			case hir.DefFn, hir.DefImplMethod:
				c.checkFnBody(d)
			case hir.DefLet:
				c.checkLetBody(d)
			}
		}
	}
}

func (c *Checker) checkFnBody(d *hir.Def) {
	fd, ok := d.Node.(*ast.FnDef)
	if !ok {
		return
	}
	sig := c.defSchemes[d.ID].Type.(*types.Function)

	c.localTypes = map[hir.LocalId]types.Type{}
	var next hir.LocalId
	for i := range fd.Params {
		next = c.bindPatternType(fd.Params[i].Pattern, sig.Params[i], next)
	}
	bodyType := c.inferExpr(fd.Body)
	if err := types.Unify(bodyType, sig.Ret); err != nil {
		c.sink.Errorf(fd.Body.Span(), "TypeError", "function %q: %s", fd.Name, err)
	}
	c.defSchemes[d.ID] = types.Generalize(sig, -1, nil)
}

func (c *Checker) checkLetBody(d *hir.Def) {
	ld := d.Node.(*ast.LetDef)
	c.localTypes = map[hir.LocalId]types.Type{}
	t := c.inferExpr(ld.Value)
	if ld.Type != nil {
		ann := c.resolveTypeExpr(ld.Type, map[string]*types.Var{})
		if err := types.Unify(t, ann); err != nil {
			c.sink.Errorf(ld.Sp, "TypeError", "let %q: %s", defPatternName(ld.Pattern), err)
		}
	}
	c.defSchemes[d.ID] = types.Generalize(t, -1, nil)
}

func defPatternName(p ast.Pattern) string {
	if id, ok := p.(*ast.IdentPat); ok {
		return id.Name
	}
	return "_"
}

// resolveTypeExpr lowers a parsed TypeExpr into an internal/types.Type,
// binding generic-parameter names through scope: a bare name in scope
// denotes a type variable, otherwise it must name a declared
// struct/enum/primitive.
func (c *Checker) resolveTypeExpr(t ast.TypeExpr, scope map[string]*types.Var) types.Type {
	switch tt := t.(type) {
	case *ast.NamedType:
		return c.resolveNamedType(tt, scope)
	case *ast.TupleType:
		elems := make([]types.Type, len(tt.Elems))
		for i, e := range tt.Elems {
			elems[i] = c.resolveTypeExpr(e, scope)
		}
		return &types.Tuple{Elems: elems}
	case *ast.ListType:
		return &types.List{Elem: c.resolveTypeExpr(tt.Elem, scope)}
	case *ast.RecordType:
		fields := make([]types.Field, len(tt.Fields))
		for i, f := range tt.Fields {
			fields[i] = types.Field{Name: f.Name, Type: c.resolveTypeExpr(f.Type, scope)}
		}
		var row *types.Var
		if tt.RowVar != "" {
			row = c.namedVar(tt.RowVar, scope)
		}
		return &types.Record{Fields: fields, Row: row}
	case *ast.FunctionType:
		params := make([]types.Type, len(tt.Params))
		for i, p := range tt.Params {
			params[i] = c.resolveTypeExpr(p, scope)
		}
		return &types.Function{Params: params, Ret: c.resolveTypeExpr(tt.Ret, scope)}
	default:
		return c.gen.Fresh(c.level)
	}
}

func (c *Checker) namedVar(name string, scope map[string]*types.Var) *types.Var {
	if v, ok := scope[name]; ok {
		return v
	}
	v := c.gen.Fresh(c.level)
	v.Name = name
	scope[name] = v
	return v
}

func (c *Checker) resolveNamedType(t *ast.NamedType, scope map[string]*types.Var) types.Type {
	if len(t.Path) == 1 {
		name := t.Path[0]
		if v, ok := scope[name]; ok {
			return v
		}
		if prim, ok := primByName(name); ok {
			return prim
		}
		// Lowercase bare names with no declared binding are treated as
		// implicit type-variable introductions, following
		// Hindley-Milner convention.
		if len(name) > 0 && name[0] >= 'a' && name[0] <= 'z' {
			return c.namedVar(name, scope)
		}
		if d := c.lookupTypeDef(name); d != nil {
			return c.instantiateConstructor(d, t.Args, scope)
		}
	}
	if d := c.lookupQualifiedTypeDef(t.Path); d != nil {
		return c.instantiateConstructor(d, t.Args, scope)
	}
	return c.gen.Fresh(c.level)
}

func (c *Checker) lookupTypeDef(name string) *hir.Def {
	for _, m := range c.g.Modules {
		for _, d := range m.Defs {
			if d.Name == name && (d.Kind == hir.DefStruct || d.Kind == hir.DefEnum || d.Kind == hir.DefType) {
				return d
			}
		}
	}
	return nil
}

func (c *Checker) lookupQualifiedTypeDef(path []string) *hir.Def {
	return c.lookupTypeDef(path[len(path)-1])
}

func (c *Checker) instantiateConstructor(d *hir.Def, argExprs []ast.TypeExpr, scope map[string]*types.Var) types.Type {
	args := make([]types.Type, len(argExprs))
	for i, a := range argExprs {
		args[i] = c.resolveTypeExpr(a, scope)
	}
	switch d.Kind {
	case hir.DefStruct, hir.DefEnum:
		name := d.Name
		return &types.Constructor{DefID: uint32(d.ID), Name: name, Args: args}
	case hir.DefType:
		td := d.Node.(*ast.TypeDef)
		aliasScope := map[string]*types.Var{}
		for i, g := range td.Generics {
			if i < len(args) {
				if v, ok := args[i].(*types.Var); ok {
					aliasScope[g.Name] = v
					continue
				}
			}
			aliasScope[g.Name] = c.gen.Fresh(c.level)
		}
		return c.resolveTypeExpr(td.Alias, aliasScope)
	}
	return c.gen.Fresh(c.level)
}

func primByName(name string) (types.Type, bool) {
	switch name {
	case "Int":
		return types.TInt, true
	case "Float":
		return types.TFloat, true
	case "Bool":
		return types.TBool, true
	case "Char":
		return types.TChar, true
	case "String":
		return types.TString, true
	case "Path":
		return types.TPath, true
	case "Unit":
		return types.TUnit, true
	}
	return nil, false
}
