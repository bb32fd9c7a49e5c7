package parser

import (
	"strconv"

	"github.com/neve-lang/neve/internal/ast"
	"github.com/neve-lang/neve/internal/diag"
	"github.com/neve-lang/neve/internal/span"
	"github.com/neve-lang/neve/internal/token"
)

// parseExpr is the Pratt loop: parse a prefix expression, then repeatedly
// fold in infix/postfix operators whose precedence exceeds minPrec.
func (p *Parser) parseExpr(minPrec int) ast.Expr {
	prefix, ok := p.prefixFns[p.curKind()]
	if !ok {
		sp := p.cur().Pos
		p.errf(sp, "%s", unexpectedTokenMsg(p.curKind()))
		p.advance()
		return p.errExpr(sp)
	}
	left := prefix()

	for {
		k := p.curKind()
		if precedenceOf(k) <= minPrec {
			break
		}
		// A `(` or `[` that begins a new line starts the next expression
		// (a match arm's pattern, a tuple), not a call or an index.
		if (k == token.LPAREN || k == token.LBRACKET) && p.pos > 0 &&
			p.cur().Pos.Start.Line > p.toks[p.pos-1].Pos.Start.Line {
			break
		}
		infix, ok := p.infixFns[k]
		if !ok {
			break
		}
		left = infix(left)
	}
	return left
}

// ParseExpr parses a single top-level expression (used by the REPL and by
// internal/stdlib's eval entry point).
func ParseExpr(p *Parser) ast.Expr { return p.parseExpr(LOWEST) }

func (p *Parser) parseIdent() ast.Expr {
	t := p.advance()
	return &ast.Ident{Name: t.Lit, Sp: t.Pos}
}

func (p *Parser) parseIntLit() ast.Expr {
	t := p.advance()
	return &ast.IntLit{Lit: t.Lit, Sp: t.Pos}
}

func (p *Parser) parseFloatLit() ast.Expr {
	t := p.advance()
	v, err := strconv.ParseFloat(stripUnderscores(t.Lit), 64)
	if err != nil {
		p.errf(t.Pos, "invalid float literal %q", t.Lit)
	}
	return &ast.FloatLit{Value: v, Sp: t.Pos}
}

func stripUnderscores(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '_' {
			out = append(out, s[i])
		}
	}
	return string(out)
}

func (p *Parser) parseBoolLit() ast.Expr {
	t := p.advance()
	return &ast.BoolLit{Value: t.Kind == token.KW_TRUE, Sp: t.Pos}
}

func (p *Parser) parseCharLit() ast.Expr {
	t := p.advance()
	r := rune(0)
	for _, rr := range t.Lit {
		r = rr
		break
	}
	return &ast.CharLit{Value: r, Sp: t.Pos}
}

// parseStringLit lowers a token.Segment list (literal chunks plus
// sub-token runs for interpolated `{ expr }` holes) into ast.StringSegment,
// re-parsing each hole's token run as its own expression.
func (p *Parser) parseStringLit() ast.Expr {
	t := p.advance()
	if len(t.Segments) == 0 {
		return &ast.StringLit{
			Segments: []ast.StringSegment{{Literal: t.Lit}},
			Sp:       t.Pos,
		}
	}
	segs := make([]ast.StringSegment, len(t.Segments))
	for i, s := range t.Segments {
		if !s.IsExpr {
			segs[i] = ast.StringSegment{Literal: s.Literal}
			continue
		}
		sub := newFromTokens(p.file, s.Tokens, p.sink)
		segs[i] = ast.StringSegment{IsExpr: true, Expr: sub.parseExpr(LOWEST)}
	}
	return &ast.StringLit{Segments: segs, Sp: t.Pos}
}

// newFromTokens builds a sub-Parser over an already-lexed token run (an
// interpolation hole re-lexed by internal/lexer), sharing the outer sink.
func newFromTokens(file span.FileID, toks []token.Token, sink *diag.Sink) *Parser {
	if len(toks) == 0 || toks[len(toks)-1].Kind != token.EOF {
		toks = append(append([]token.Token{}, toks...), token.New(token.EOF, "", span.Span{File: file}))
	}
	p := &Parser{file: file, toks: toks, sink: sink}
	p.installDispatch()
	return p
}

func (p *Parser) parsePathLit() ast.Expr {
	t := p.advance()
	return &ast.PathLit{Value: t.Lit, Sp: t.Pos}
}

func (p *Parser) parseLazyRef() ast.Expr {
	// `lazy` is only meaningful on a parameter declaration; as a bare
	// prefix it reads as a no-op marker wrapping the next expression, kept
	// so `lazy(expr)`-style explicit thunking parses.
	start := p.cur().Pos
	p.advance()
	inner := p.parseExpr(UNARY)
	return &ast.Call{
		Callee: &ast.Ident{Name: "lazy", Sp: start},
		Args:   []ast.Expr{inner},
		Sp:     span.Join(start, inner.Span()),
	}
}

func (p *Parser) parseUnary() ast.Expr {
	t := p.advance()
	operand := p.parseExpr(UNARY)
	op := ast.OpNeg
	if t.Kind == token.BANG {
		op = ast.OpNot
	}
	return &ast.UnaryExpr{Op: op, Operand: operand, Sp: span.Join(t.Pos, operand.Span())}
}

var binOps = map[token.Kind]ast.BinOp{
	token.PLUS: ast.OpAdd, token.MINUS: ast.OpSub, token.STAR: ast.OpMul,
	token.SLASH: ast.OpDiv, token.PERCENT: ast.OpMod, token.CARET: ast.OpPow,
	token.PLUSPLUS: ast.OpConcat, token.EQEQ: ast.OpEq, token.NE: ast.OpNe,
	token.LT: ast.OpLt, token.LE: ast.OpLe, token.GT: ast.OpGt, token.GE: ast.OpGe,
	token.ANDAND: ast.OpAnd, token.OROR: ast.OpOr,
}

func (p *Parser) parseBinary(left ast.Expr) ast.Expr {
	t := p.advance()
	prec := precedenceOf(t.Kind)
	if rightAssoc[t.Kind] {
		prec--
	}
	right := p.parseExpr(prec)
	return &ast.BinaryExpr{Op: binOps[t.Kind], Left: left, Right: right, Sp: span.Join(left.Span(), right.Span())}
}

func (p *Parser) parseCoalesce(left ast.Expr) ast.Expr {
	p.advance()
	right := p.parseExpr(COALESCE - 1)
	return &ast.Coalesce{Left: left, Right: right, Sp: span.Join(left.Span(), right.Span())}
}

func (p *Parser) parsePipe(left ast.Expr) ast.Expr {
	p.advance()
	right := p.parseExpr(PIPEGT)
	return &ast.PipeExpr{Left: left, Right: right, Sp: span.Join(left.Span(), right.Span())}
}

// parsePipeFwd parses `//`, function composition: `f // g` builds a
// function that applies f then g.
func (p *Parser) parsePipeFwd(left ast.Expr) ast.Expr {
	p.advance()
	right := p.parseExpr(PIPEFWD - 1)
	return &ast.Compose{Left: left, Right: right, Sp: span.Join(left.Span(), right.Span())}
}

func (p *Parser) parseCall(callee ast.Expr) ast.Expr {
	start := p.advance() // consume (
	var args []ast.Expr
	for !p.is(token.RPAREN) && !p.is(token.EOF) {
		args = append(args, p.parseExpr(LOWEST))
		if p.is(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	end, _ := p.expect(token.RPAREN, "to close call arguments")
	sp := span.Join(callee.Span(), start.Pos)
	if end.Kind == token.RPAREN {
		sp = span.Join(callee.Span(), end.Pos)
	}
	return &ast.Call{Callee: callee, Args: args, Sp: sp}
}

func (p *Parser) parseIndex(recv ast.Expr) ast.Expr {
	p.advance() // [
	idx := p.parseExpr(LOWEST)
	end, _ := p.expect(token.RBRACKET, "to close index")
	return &ast.Index{Receiver: recv, Index: idx, Sp: span.Join(recv.Span(), end.Pos)}
}

func (p *Parser) parseFieldAccess(recv ast.Expr) ast.Expr {
	p.advance() // .
	name, ok := p.expect(token.IDENT, "after '.'")
	if !ok {
		return p.errExpr(span.Join(recv.Span(), p.cur().Pos))
	}
	return &ast.FieldAccess{Receiver: recv, Field: name.Lit, Sp: span.Join(recv.Span(), name.Pos)}
}

func (p *Parser) parseSafeAccess(recv ast.Expr) ast.Expr {
	p.advance() // ?.
	name, ok := p.expect(token.IDENT, "after '?.'")
	if !ok {
		return p.errExpr(span.Join(recv.Span(), p.cur().Pos))
	}
	return &ast.SafeAccess{Receiver: recv, Field: name.Lit, Sp: span.Join(recv.Span(), name.Pos)}
}

func (p *Parser) parseTry(operand ast.Expr) ast.Expr {
	t := p.advance() // ?
	return &ast.TryExpr{Operand: operand, Sp: span.Join(operand.Span(), t.Pos)}
}

// parseParenOrTuple disambiguates `(expr)` grouping from `(a, b, ...)`
// tuple construction and `()` unit.
func (p *Parser) parseParenOrTuple() ast.Expr {
	start := p.advance() // (
	if p.is(token.RPAREN) {
		end := p.advance()
		return &ast.TupleLit{Sp: span.Join(start.Pos, end.Pos)}
	}
	first := p.parseExpr(LOWEST)
	if p.is(token.RPAREN) {
		end := p.advance()
		_ = end
		return first
	}
	elems := []ast.Expr{first}
	for p.is(token.COMMA) {
		p.advance()
		if p.is(token.RPAREN) {
			break
		}
		elems = append(elems, p.parseExpr(LOWEST))
	}
	end, _ := p.expect(token.RPAREN, "to close tuple")
	return &ast.TupleLit{Elems: elems, Sp: span.Join(start.Pos, end.Pos)}
}

// parseListOrComp disambiguates `[e1, e2, ...]` from `[expr | clauses]`
// list comprehensions: both start identically with `[`, so the parser
// commits only once it sees `|` after the first element.
func (p *Parser) parseListOrComp() ast.Expr {
	start := p.advance() // [
	if p.is(token.RBRACKET) {
		end := p.advance()
		return &ast.ListLit{Sp: span.Join(start.Pos, end.Pos)}
	}
	first := p.parseExpr(LOWEST)
	if p.is(token.PIPE) {
		p.advance()
		var clauses []ast.CompClause
		for {
			clauses = append(clauses, p.parseCompClause())
			if p.is(token.COMMA) {
				p.advance()
				continue
			}
			break
		}
		end, _ := p.expect(token.RBRACKET, "to close list comprehension")
		return &ast.ListComp{Result: first, Clauses: clauses, Sp: span.Join(start.Pos, end.Pos)}
	}
	elems := []ast.Expr{first}
	for p.is(token.COMMA) {
		p.advance()
		if p.is(token.RBRACKET) {
			break
		}
		elems = append(elems, p.parseExpr(LOWEST))
	}
	end, _ := p.expect(token.RBRACKET, "to close list literal")
	return &ast.ListLit{Elems: elems, Sp: span.Join(start.Pos, end.Pos)}
}

// parseCompClause parses one comprehension clause: either a generator
// `pattern <- source` or a bare boolean guard expression (`x <- xs, x >
// 1`, no `if` keyword). The two forms can both start with an identifier
// or a bracketed pattern, so isGeneratorClause looks ahead for a `<-` at
// the current nesting depth before committing to either parse.
func (p *Parser) parseCompClause() ast.CompClause {
	start := p.cur().Pos
	if p.isGeneratorClause() {
		pat := p.parsePattern()
		p.expect(token.LARROW, "in comprehension generator")
		src := p.parseExpr(LOWEST)
		return ast.CompClause{Bind: pat, Source: src, Sp: span.Join(start, src.Span())}
	}
	guard := p.parseExpr(LOWEST)
	return ast.CompClause{Guard: guard, Sp: span.Join(start, guard.Span())}
}

// isGeneratorClause scans ahead, without consuming tokens, for a LARROW
// before a clause-terminating COMMA/RBRACKET at the same bracket depth.
func (p *Parser) isGeneratorClause() bool {
	depth := 0
	for i := p.pos; i < len(p.toks); i++ {
		switch p.toks[i].Kind {
		case token.LPAREN, token.LBRACKET, token.HASH_LBRACE, token.LBRACE:
			depth++
		case token.RPAREN, token.RBRACKET, token.RBRACE:
			if depth == 0 {
				return false
			}
			depth--
		case token.LARROW:
			if depth == 0 {
				return true
			}
		case token.COMMA:
			if depth == 0 {
				return false
			}
		case token.EOF:
			return false
		}
	}
	return false
}

// parseRecordLit parses `#{ field: value, ... }` and the functional-update
// form `#{ ..base, field: value }`.
func (p *Parser) parseRecordLit() ast.Expr {
	start := p.advance() // #{
	var base ast.Expr
	var fields []ast.RecordField
	for !p.is(token.RBRACE) && !p.is(token.EOF) {
		if p.is(token.DOTDOT) {
			p.advance()
			base = p.parseExpr(LOWEST)
		} else {
			name, ok := p.expect(token.IDENT, "as record field name")
			if !ok {
				p.synchronize()
				break
			}
			fieldSp := name.Pos
			var val ast.Expr
			if p.is(token.COLON) {
				p.advance()
				val = p.parseExpr(LOWEST)
				fieldSp = span.Join(fieldSp, val.Span())
			} else {
				// `#{ name }` shorthand for `#{ name: name }`.
				val = &ast.Ident{Name: name.Lit, Sp: name.Pos}
			}
			fields = append(fields, ast.RecordField{Name: name.Lit, Value: val, Sp: fieldSp})
		}
		if p.is(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	end, _ := p.expect(token.RBRACE, "to close record literal")
	return &ast.RecordLit{Fields: fields, Base: base, Sp: span.Join(start.Pos, end.Pos)}
}

// parseBlock parses `{ let a = 1 let b = 2 a + b }`: zero or more let
// statements followed by a mandatory tail expression.
func (p *Parser) parseBlock() ast.Expr {
	start := p.advance() // {
	var lets []*ast.LetStmt
	for p.is(token.KW_LET) {
		lets = append(lets, p.parseLetStmt())
	}
	var tail ast.Expr
	if !p.is(token.RBRACE) {
		tail = p.parseExpr(LOWEST)
	} else {
		tail = &ast.TupleLit{Sp: p.cur().Pos} // empty block yields unit
	}
	end, _ := p.expect(token.RBRACE, "to close block")
	return &ast.Block{Lets: lets, Tail: tail, Sp: span.Join(start.Pos, end.Pos)}
}

func (p *Parser) parseLetStmt() *ast.LetStmt {
	start := p.advance() // let
	pat := p.parsePattern()
	var typ ast.TypeExpr
	if p.is(token.COLON) {
		p.advance()
		typ = p.parseType()
	}
	p.expect(token.EQ, "in let binding")
	val := p.parseExpr(LOWEST)
	return &ast.LetStmt{Pattern: pat, Type: typ, Value: val, Sp: span.Join(start.Pos, val.Span())}
}

func (p *Parser) parseLambda() ast.Expr {
	start := p.advance() // fn
	var params []ast.Param
	if p.is(token.LPAREN) {
		params = p.parseParamList()
	} else if p.is(token.IDENT) {
		// `fn x -> body` sugar: a single bare-name parameter.
		t := p.advance()
		params = []ast.Param{{Pattern: &ast.IdentPat{Name: t.Lit, Sp: t.Pos}, Sp: t.Pos}}
	}
	var ret ast.TypeExpr
	if p.is(token.COLON) {
		p.advance()
		ret = p.parseType()
	}
	p.expect(token.ARROW, "before lambda body")
	body := p.parseExpr(LOWEST)
	return &ast.Lambda{Params: params, Ret: ret, Body: body, Sp: span.Join(start.Pos, body.Span())}
}

func (p *Parser) parseParamList() []ast.Param {
	p.advance() // (
	var params []ast.Param
	for !p.is(token.RPAREN) && !p.is(token.EOF) {
		params = append(params, p.parseParam())
		if p.is(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	p.expect(token.RPAREN, "to close parameter list")
	return params
}

func (p *Parser) parseParam() ast.Param {
	start := p.cur().Pos
	lazy := false
	if p.is(token.KW_LAZY) {
		lazy = true
		p.advance()
	}
	pat := p.parsePattern()
	var typ ast.TypeExpr
	if p.is(token.COLON) {
		p.advance()
		typ = p.parseType()
	}
	sp := pat.Span()
	if typ != nil {
		sp = span.Join(start, typ.Span())
	}
	return ast.Param{Pattern: pat, Type: typ, Lazy: lazy, Sp: sp}
}

func (p *Parser) parseMatch() ast.Expr {
	start := p.advance() // match
	scrutinee := p.parseExpr(LOWEST)
	p.expect(token.LBRACE, "to open match arms")
	var arms []ast.MatchArm
	for !p.is(token.RBRACE) && !p.is(token.EOF) {
		arms = append(arms, p.parseMatchArm())
		if p.is(token.COMMA) {
			p.advance()
		}
	}
	end, _ := p.expect(token.RBRACE, "to close match")
	return &ast.Match{Scrutinee: scrutinee, Arms: arms, Sp: span.Join(start.Pos, end.Pos)}
}

func (p *Parser) parseMatchArm() ast.MatchArm {
	start := p.cur().Pos
	pat := p.parsePattern()
	var guard ast.Expr
	if p.is(token.KW_IF) {
		p.advance()
		guard = p.parseExpr(LOWEST)
	}
	p.expect(token.ARROW, "before match arm body")
	body := p.parseExpr(LOWEST)
	return ast.MatchArm{Pattern: pat, Guard: guard, Body: body, Sp: span.Join(start, body.Span())}
}

func (p *Parser) parseIf() ast.Expr {
	start := p.advance() // if
	cond := p.parseExpr(LOWEST)
	then := p.parseExpr(LOWEST)
	var elseExpr ast.Expr
	if p.is(token.KW_ELSE) {
		p.advance()
		elseExpr = p.parseExpr(LOWEST)
	} else {
		p.errf(p.cur().Pos, "if expression requires an else branch")
		elseExpr = p.errExpr(p.cur().Pos)
	}
	return &ast.If{Cond: cond, Then: then, Else: elseExpr, Sp: span.Join(start.Pos, elseExpr.Span())}
}
