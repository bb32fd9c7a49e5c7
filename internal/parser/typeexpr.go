package parser

import (
	"github.com/neve-lang/neve/internal/ast"
	"github.com/neve-lang/neve/internal/span"
	"github.com/neve-lang/neve/internal/token"
)

// parseType parses a type expression: a named constructor applied to
// arguments, a tuple, a list, a record, or a function type. Generics are
// only recognized in type position (`List(Int)`): `(` after a type name
// is always an application, never a call.
func (p *Parser) parseType() ast.TypeExpr {
	switch p.curKind() {
	case token.LPAREN:
		return p.parseTupleOrFnType()
	case token.LBRACKET:
		return p.parseListType()
	case token.HASH_LBRACE:
		return p.parseRecordType()
	case token.IDENT, token.KW_SELF, token.KW_SUPER:
		return p.parseNamedType()
	default:
		sp := p.cur().Pos
		p.errf(sp, "expected a type, got %s", p.curKind())
		p.advance()
		return p.errType(sp)
	}
}

func (p *Parser) parseNamedType() ast.TypeExpr {
	start := p.cur().Pos
	segs, sp := p.parseDottedPath()
	var args []ast.TypeExpr
	if p.is(token.LPAREN) {
		p.advance()
		for !p.is(token.RPAREN) && !p.is(token.EOF) {
			args = append(args, p.parseType())
			if p.is(token.COMMA) {
				p.advance()
				continue
			}
			break
		}
		end, _ := p.expect(token.RPAREN, "to close type arguments")
		sp = span.Join(start, end.Pos)
	}
	return &ast.NamedType{Path: segs, Args: args, Sp: sp}
}

// parseTupleOrFnType disambiguates `(T1, T2)` tuple types from
// `(T1, T2) -> Ret` function types: both start with a parenthesized type
// list, and only a following `->` commits to a function type.
func (p *Parser) parseTupleOrFnType() ast.TypeExpr {
	start := p.advance() // (
	var elems []ast.TypeExpr
	for !p.is(token.RPAREN) && !p.is(token.EOF) {
		elems = append(elems, p.parseType())
		if p.is(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	end, _ := p.expect(token.RPAREN, "to close type list")
	if p.is(token.ARROW) {
		p.advance()
		ret := p.parseType()
		return &ast.FunctionType{Params: elems, Ret: ret, Sp: span.Join(start.Pos, ret.Span())}
	}
	return &ast.TupleType{Elems: elems, Sp: span.Join(start.Pos, end.Pos)}
}

func (p *Parser) parseListType() ast.TypeExpr {
	start := p.advance() // [
	elem := p.parseType()
	end, _ := p.expect(token.RBRACKET, "to close list type")
	return &ast.ListType{Elem: elem, Sp: span.Join(start.Pos, end.Pos)}
}

func (p *Parser) parseRecordType() ast.TypeExpr {
	start := p.advance() // #{
	var fields []ast.RecordFieldType
	rowVar := ""
	for !p.is(token.RBRACE) && !p.is(token.EOF) {
		if p.is(token.PIPE) {
			p.advance()
			if p.is(token.IDENT) {
				rowVar = p.advance().Lit
			}
			break
		}
		name, ok := p.expect(token.IDENT, "as record type field name")
		if !ok {
			p.synchronize()
			break
		}
		p.expect(token.COLON, "after record type field name")
		ft := p.parseType()
		fields = append(fields, ast.RecordFieldType{Name: name.Lit, Type: ft, Sp: span.Join(name.Pos, ft.Span())})
		if p.is(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	end, _ := p.expect(token.RBRACE, "to close record type")
	return &ast.RecordType{Fields: fields, RowVar: rowVar, Sp: span.Join(start.Pos, end.Pos)}
}

// parseGenerics parses an optional `<T: Bound1 + Bound2, U, ...>` list.
func (p *Parser) parseGenerics() []ast.GenericParam {
	if !p.is(token.LT) {
		return nil
	}
	p.advance()
	var params []ast.GenericParam
	for !p.is(token.GT) && !p.is(token.EOF) {
		name, ok := p.expect(token.IDENT, "as generic parameter name")
		if !ok {
			p.synchronize()
			break
		}
		gp := ast.GenericParam{Name: name.Lit, Sp: name.Pos}
		if p.is(token.COLON) {
			p.advance()
			gp.Bounds = p.parseTraitBounds()
		}
		params = append(params, gp)
		if p.is(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	p.expect(token.GT, "to close generic parameter list")
	return params
}

func (p *Parser) parseTraitBounds() []ast.TraitRef {
	var bounds []ast.TraitRef
	bounds = append(bounds, p.parseTraitRef())
	for p.is(token.PLUS) {
		p.advance()
		bounds = append(bounds, p.parseTraitRef())
	}
	return bounds
}

func (p *Parser) parseTraitRef() ast.TraitRef {
	segs, sp := p.parseDottedPath()
	var args []ast.TypeExpr
	if p.is(token.LPAREN) {
		p.advance()
		for !p.is(token.RPAREN) && !p.is(token.EOF) {
			args = append(args, p.parseType())
			if p.is(token.COMMA) {
				p.advance()
				continue
			}
			break
		}
		end, _ := p.expect(token.RPAREN, "to close trait arguments")
		sp = span.Join(sp, end.Pos)
	}
	return ast.TraitRef{Path: segs, Args: args, Sp: sp}
}
