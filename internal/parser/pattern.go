package parser

import (
	"github.com/neve-lang/neve/internal/ast"
	"github.com/neve-lang/neve/internal/span"
	"github.com/neve-lang/neve/internal/token"
)

// parsePattern parses a single pattern, including a trailing `p1 | p2 | ...`
// alternation and `name @ pattern` binding.
func (p *Parser) parsePattern() ast.Pattern {
	first := p.parsePrimaryPattern()
	if pat, ok := first.(*ast.IdentPat); ok && p.is(token.AT) {
		p.advance()
		inner := p.parsePrimaryPattern()
		return &ast.BindPat{Name: pat.Name, Pattern: inner, Sp: span.Join(pat.Sp, inner.Span())}
	}
	if !p.is(token.PIPE) {
		return first
	}
	alts := []ast.Pattern{first}
	for p.is(token.PIPE) {
		p.advance()
		alts = append(alts, p.parsePrimaryPattern())
	}
	return &ast.OrPat{Alts: alts, Sp: span.Join(first.Span(), alts[len(alts)-1].Span())}
}

func (p *Parser) parsePrimaryPattern() ast.Pattern {
	switch p.curKind() {
	case token.IDENT:
		return p.parseIdentOrConstructorPattern()
	case token.KW_SELF:
		t := p.advance()
		return &ast.IdentPat{Name: t.Lit, Sp: t.Pos}
	case token.INT, token.FLOAT, token.KW_TRUE, token.KW_FALSE, token.CHAR, token.STRING:
		return p.parseLitPattern()
	case token.MINUS:
		// Negative numeric literal pattern, e.g. `match n { -1 -> ... }`.
		start := p.advance()
		lit := p.parseLitPattern()
		return &ast.LitPat{Lit: &ast.UnaryExpr{Op: ast.OpNeg, Operand: lit.(*ast.LitPat).Lit, Sp: span.Join(start.Pos, lit.Span())}, Sp: span.Join(start.Pos, lit.Span())}
	case token.LPAREN:
		return p.parseTuplePattern()
	case token.LBRACKET:
		return p.parseListPattern()
	case token.HASH_LBRACE:
		return p.parseRecordPattern()
	default:
		sp := p.cur().Pos
		p.errf(sp, "%s", unexpectedTokenMsg(p.curKind()))
		p.advance()
		return p.errPattern(sp)
	}
}

func (p *Parser) parseIdentOrConstructorPattern() ast.Pattern {
	start := p.cur().Pos
	if p.cur().Lit == "_" && p.peek(1).Kind != token.DOT && p.peek(1).Kind != token.LPAREN {
		p.advance()
		return &ast.WildcardPat{Sp: start}
	}
	segs, sp := p.parseDottedPath()
	if len(segs) == 1 && !p.is(token.LPAREN) {
		return &ast.IdentPat{Name: segs[0], Sp: sp}
	}
	var args []ast.Pattern
	if p.is(token.LPAREN) {
		p.advance()
		for !p.is(token.RPAREN) && !p.is(token.EOF) {
			args = append(args, p.parsePattern())
			if p.is(token.COMMA) {
				p.advance()
				continue
			}
			break
		}
		end, _ := p.expect(token.RPAREN, "to close constructor pattern")
		sp = span.Join(sp, end.Pos)
	}
	return &ast.ConstructorPat{Path: segs, Args: args, Sp: sp}
}

func (p *Parser) parseLitPattern() ast.Pattern {
	lit := p.parseExpr(UNARY)
	return &ast.LitPat{Lit: lit, Sp: lit.Span()}
}

func (p *Parser) parseTuplePattern() ast.Pattern {
	start := p.advance() // (
	if p.is(token.RPAREN) {
		end := p.advance()
		return &ast.TuplePat{Sp: span.Join(start.Pos, end.Pos)}
	}
	elems := []ast.Pattern{p.parsePattern()}
	for p.is(token.COMMA) {
		p.advance()
		if p.is(token.RPAREN) {
			break
		}
		elems = append(elems, p.parsePattern())
	}
	end, _ := p.expect(token.RPAREN, "to close tuple pattern")
	if len(elems) == 1 {
		return elems[0]
	}
	return &ast.TuplePat{Elems: elems, Sp: span.Join(start.Pos, end.Pos)}
}

func (p *Parser) parseListPattern() ast.Pattern {
	start := p.advance() // [
	var elems []ast.Pattern
	rest := ""
	hasRest := false
	for !p.is(token.RBRACKET) && !p.is(token.EOF) {
		if p.is(token.DOTDOT) {
			p.advance()
			hasRest = true
			if p.is(token.IDENT) {
				rest = p.advance().Lit
			}
			break
		}
		elems = append(elems, p.parsePattern())
		if p.is(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	end, _ := p.expect(token.RBRACKET, "to close list pattern")
	return &ast.ListPat{Elems: elems, Rest: rest, HasRest: hasRest, Sp: span.Join(start.Pos, end.Pos)}
}

func (p *Parser) parseRecordPattern() ast.Pattern {
	start := p.advance() // #{
	var fields []ast.RecordFieldPat
	open := false
	for !p.is(token.RBRACE) && !p.is(token.EOF) {
		if p.is(token.DOTDOT) {
			p.advance()
			open = true
			break
		}
		name, ok := p.expect(token.IDENT, "as record pattern field name")
		if !ok {
			p.synchronize()
			break
		}
		fieldSp := name.Pos
		var fp ast.Pattern
		if p.is(token.COLON) {
			p.advance()
			fp = p.parsePattern()
			fieldSp = span.Join(fieldSp, fp.Span())
		} else {
			fp = &ast.IdentPat{Name: name.Lit, Sp: name.Pos}
		}
		fields = append(fields, ast.RecordFieldPat{Name: name.Lit, Pattern: fp, Sp: fieldSp})
		if p.is(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	end, _ := p.expect(token.RBRACE, "to close record pattern")
	return &ast.RecordPat{Fields: fields, Open: open, Sp: span.Join(start.Pos, end.Pos)}
}
