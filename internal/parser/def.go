package parser

import (
	"github.com/neve-lang/neve/internal/ast"
	"github.com/neve-lang/neve/internal/span"
	"github.com/neve-lang/neve/internal/token"
)

// parseDef parses one top-level (or trait/impl-nested) definition. On a
// malformed definition it reports a diagnostic, synchronizes to the next
// anchor token, and returns nil so ParseModule simply skips it.
func (p *Parser) parseDef() ast.Def {
	vis := p.parseVisibility()
	switch p.curKind() {
	case token.KW_LET:
		return p.parseLetDef(vis)
	case token.KW_FN:
		return p.parseFnDef(vis)
	case token.KW_TYPE:
		return p.parseTypeDef(vis)
	case token.KW_STRUCT:
		return p.parseStructDef(vis)
	case token.KW_ENUM:
		return p.parseEnumDef(vis)
	case token.KW_TRAIT:
		return p.parseTraitDef(vis)
	case token.KW_IMPL:
		return p.parseImplDef()
	case token.KW_IMPORT:
		return p.parseImportDef(vis)
	default:
		sp := p.cur().Pos
		p.errf(sp, "expected a definition, got %s", p.curKind())
		p.synchronize()
		return nil
	}
}

func (p *Parser) parseLetDef(vis ast.Visibility) ast.Def {
	start := p.advance() // let
	pat := p.parsePattern()
	var typ ast.TypeExpr
	if p.is(token.COLON) {
		p.advance()
		typ = p.parseType()
	}
	p.expect(token.EQ, "in top-level let definition")
	val := p.parseExpr(LOWEST)
	return &ast.LetDef{Vis: vis, Pattern: pat, Type: typ, Value: val, Sp: span.Join(start.Pos, val.Span())}
}

func (p *Parser) parseFnDef(vis ast.Visibility) *ast.FnDef {
	start := p.advance() // fn
	name, _ := p.expect(token.IDENT, "as function name")
	generics := p.parseGenerics()
	params := p.parseParamList()
	var ret ast.TypeExpr
	if p.is(token.COLON) {
		p.advance()
		ret = p.parseType()
	}
	if p.is(token.EQ) {
		p.advance() // `fn name(params) = body`
	} else {
		p.expect(token.ARROW, "before function body")
	}
	body := p.parseExpr(LOWEST)
	return &ast.FnDef{
		Vis: vis, Name: name.Lit, Generics: generics, Params: params, Ret: ret, Body: body,
		Sp: span.Join(start.Pos, body.Span()),
	}
}

func (p *Parser) parseTypeDef(vis ast.Visibility) ast.Def {
	start := p.advance() // type
	name, _ := p.expect(token.IDENT, "as type name")
	generics := p.parseGenerics()
	p.expect(token.EQ, "in type alias definition")
	alias := p.parseType()
	return &ast.TypeDef{Vis: vis, Name: name.Lit, Generics: generics, Alias: alias, Sp: span.Join(start.Pos, alias.Span())}
}

func (p *Parser) parseStructDef(vis ast.Visibility) ast.Def {
	start := p.advance() // struct
	name, _ := p.expect(token.IDENT, "as struct name")
	generics := p.parseGenerics()
	p.expect(token.LBRACE, "to open struct body")
	var fields []ast.FieldDef
	for !p.is(token.RBRACE) && !p.is(token.EOF) {
		fname, ok := p.expect(token.IDENT, "as struct field name")
		if !ok {
			p.synchronize()
			break
		}
		p.expect(token.COLON, "after struct field name")
		ft := p.parseType()
		fields = append(fields, ast.FieldDef{Name: fname.Lit, Type: ft, Sp: span.Join(fname.Pos, ft.Span())})
		if p.is(token.COMMA) {
			p.advance()
		}
	}
	end, _ := p.expect(token.RBRACE, "to close struct body")
	return &ast.StructDef{Vis: vis, Name: name.Lit, Generics: generics, Fields: fields, Sp: span.Join(start.Pos, end.Pos)}
}

func (p *Parser) parseEnumDef(vis ast.Visibility) ast.Def {
	start := p.advance() // enum
	name, _ := p.expect(token.IDENT, "as enum name")
	generics := p.parseGenerics()
	p.expect(token.LBRACE, "to open enum body")
	var variants []ast.VariantDef
	for !p.is(token.RBRACE) && !p.is(token.EOF) {
		vname, ok := p.expect(token.IDENT, "as enum variant name")
		if !ok {
			p.synchronize()
			break
		}
		variant := ast.VariantDef{Name: vname.Lit, Sp: vname.Pos}
		if p.is(token.LPAREN) {
			p.advance()
			for !p.is(token.RPAREN) && !p.is(token.EOF) {
				variant.Payload = append(variant.Payload, p.parseType())
				if p.is(token.COMMA) {
					p.advance()
					continue
				}
				break
			}
			end, _ := p.expect(token.RPAREN, "to close variant payload")
			variant.Sp = span.Join(vname.Pos, end.Pos)
		}
		variants = append(variants, variant)
		if p.is(token.COMMA) {
			p.advance()
		}
	}
	end, _ := p.expect(token.RBRACE, "to close enum body")
	return &ast.EnumDef{Vis: vis, Name: name.Lit, Generics: generics, Variants: variants, Sp: span.Join(start.Pos, end.Pos)}
}

func (p *Parser) parseTraitDef(vis ast.Visibility) ast.Def {
	start := p.advance() // trait
	name, _ := p.expect(token.IDENT, "as trait name")
	generics := p.parseGenerics()
	var supers []ast.TraitRef
	if p.is(token.COLON) {
		p.advance()
		supers = p.parseTraitBounds()
	}
	p.expect(token.LBRACE, "to open trait body")
	var assoc []ast.AssocTypeDecl
	var methods []ast.FnSig
	for !p.is(token.RBRACE) && !p.is(token.EOF) {
		switch p.curKind() {
		case token.KW_TYPE:
			p.advance()
			tname, _ := p.expect(token.IDENT, "as associated type name")
			assoc = append(assoc, ast.AssocTypeDecl{Name: tname.Lit, Sp: tname.Pos})
		case token.KW_FN:
			methods = append(methods, p.parseFnSig())
		default:
			p.errf(p.cur().Pos, "expected 'type' or 'fn' in trait body, got %s", p.curKind())
			p.synchronize()
		}
	}
	end, _ := p.expect(token.RBRACE, "to close trait body")
	return &ast.TraitDef{
		Vis: vis, Name: name.Lit, Generics: generics, Supers: supers,
		AssocTypes: assoc, Methods: methods, Sp: span.Join(start.Pos, end.Pos),
	}
}

// parseFnSig parses a trait method: `fn name(params) : Ret`, optionally
// followed by `-> body` to supply a default implementation.
func (p *Parser) parseFnSig() ast.FnSig {
	start := p.advance() // fn
	name, _ := p.expect(token.IDENT, "as method name")
	generics := p.parseGenerics()
	params := p.parseParamList()
	var ret ast.TypeExpr
	if p.is(token.COLON) {
		p.advance()
		ret = p.parseType()
	}
	sig := ast.FnSig{Name: name.Lit, Generics: generics, Params: params, Ret: ret, Sp: start.Pos}
	if p.is(token.ARROW) {
		p.advance()
		sig.Default = p.parseExpr(LOWEST)
		sig.Sp = span.Join(start.Pos, sig.Default.Span())
	} else {
		sig.Sp = span.Join(start.Pos, p.cur().Pos)
	}
	return sig
}

func (p *Parser) parseImplDef() ast.Def {
	start := p.advance() // impl
	generics := p.parseGenerics()
	first := p.parseType()
	var trait *ast.TraitRef
	target := first
	if p.curKindIsFor() {
		p.advance() // for (contextual "for", see below)
		nt, ok := first.(*ast.NamedType)
		if ok {
			trait = &ast.TraitRef{Path: nt.Path, Args: nt.Args, Sp: nt.Sp}
		}
		target = p.parseType()
	}
	p.expect(token.LBRACE, "to open impl body")
	var assoc []ast.AssocTypeBinding
	var methods []*ast.FnDef
	for !p.is(token.RBRACE) && !p.is(token.EOF) {
		switch {
		case p.is(token.KW_TYPE):
			p.advance()
			tname, _ := p.expect(token.IDENT, "as associated type name")
			p.expect(token.EQ, "in associated type binding")
			tt := p.parseType()
			assoc = append(assoc, ast.AssocTypeBinding{Name: tname.Lit, Type: tt, Sp: span.Join(tname.Pos, tt.Span())})
		case p.is(token.KW_FN):
			methods = append(methods, p.parseFnDef(ast.Private))
		default:
			p.errf(p.cur().Pos, "expected 'type' or 'fn' in impl body, got %s", p.curKind())
			p.synchronize()
		}
	}
	end, _ := p.expect(token.RBRACE, "to close impl body")
	return &ast.ImplDef{
		Generics: generics, Trait: trait, Target: target,
		AssocTypes: assoc, Methods: methods, Sp: span.Join(start.Pos, end.Pos),
	}
}

// curKindIsFor recognizes the contextual keyword "for" in `impl Trait for
// Target` headers. "for" is not a reserved word (no loop construct needs
// it in Neve's expression-oriented core), so it is matched as plain IDENT
// text here, the same contextual-keyword treatment "crate" gets in import
// paths.
func (p *Parser) curKindIsFor() bool {
	return p.is(token.IDENT) && p.cur().Lit == "for"
}

func (p *Parser) parseImportDef(vis ast.Visibility) ast.Def {
	start := p.advance() // import
	segs, sp := p.parseDottedPath()
	alias := ""
	if p.is(token.IDENT) && p.cur().Lit == "as" {
		p.advance()
		a, _ := p.expect(token.IDENT, "as import alias")
		alias = a.Lit
		sp = span.Join(sp, a.Pos)
	}
	return &ast.ImportDef{Vis: vis, Path: segs, Alias: alias, Sp: span.Join(start.Pos, sp)}
}
