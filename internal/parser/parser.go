// Package parser implements Neve's recursive-descent parser: a Pratt
// (precedence-climbing) expression parser plus hand-written statement and
// definition parsers, built on a buffered token cursor and a
// registerPrefix/registerInfix dispatch table. Parse errors never abort
// the parse: the parser synchronizes to an anchor token and resumes, so
// one bad definition doesn't suppress diagnostics for the rest of the
// file.
package parser

import (
	"fmt"

	"github.com/neve-lang/neve/internal/ast"
	"github.com/neve-lang/neve/internal/diag"
	"github.com/neve-lang/neve/internal/lexer"
	"github.com/neve-lang/neve/internal/span"
	"github.com/neve-lang/neve/internal/token"
)

// Precedence levels, lowest to highest: member/call/index binds
// tightest, then postfix `?`, then prefix `!`/`-`, then `^`, `* / %`,
// `+ -`, `++`, comparison/equality, `&&`, `||`, `??`, and `|>`/`//` bind
// loosest. `^`, `++`, `??`, and `//` are right-associative; the rest
// (other than prefix, which is inherently right-associative) are
// left-associative.
const (
	LOWEST = iota
	PIPEFWD    // //
	PIPEGT     // |>
	COALESCE   // ??
	LOGOR      // ||
	LOGAND     // &&
	EQUALITY   // == != < <= > >=
	CONCAT     // ++
	SUM        // + -
	PRODUCT    // * / %
	POW        // ^
	UNARY      // prefix ! -
	POSTFIX    // postfix ? and ?.
	CALL       // f(...), r.field, r[i]
)

var precedences = map[token.Kind]int{
	token.SLASHSLASH:       PIPEFWD,
	token.PIPEGT:           PIPEGT,
	token.QUESTIONQUESTION: COALESCE,
	token.OROR:             LOGOR,
	token.ANDAND:           LOGAND,
	token.EQEQ:             EQUALITY,
	token.NE:               EQUALITY,
	token.LT:               EQUALITY,
	token.LE:               EQUALITY,
	token.GT:               EQUALITY,
	token.GE:               EQUALITY,
	token.PLUSPLUS:         CONCAT,
	token.PLUS:             SUM,
	token.MINUS:            SUM,
	token.STAR:             PRODUCT,
	token.SLASH:            PRODUCT,
	token.PERCENT:          PRODUCT,
	token.CARET:            POW,
	token.QUESTION:         POSTFIX,
	token.QUESTIONDOT:      POSTFIX,
	token.LPAREN:           CALL,
	token.LBRACKET:         CALL,
	token.DOT:              CALL,
}

// rightAssoc is the set of infix operators that bind right-to-left.
var rightAssoc = map[token.Kind]bool{
	token.CARET:             true,
	token.PLUSPLUS:          true,
	token.QUESTIONQUESTION:  true,
	token.SLASHSLASH:        true,
}

type prefixParseFn func() ast.Expr
type infixParseFn func(ast.Expr) ast.Expr

// defStarters is the set of keywords that begin a definition; used both to
// decide when a block of statements has run out of lets, and as an anchor
// set for error recovery.
var defStarters = map[token.Kind]bool{
	token.KW_LET: true, token.KW_FN: true, token.KW_TYPE: true,
	token.KW_STRUCT: true, token.KW_ENUM: true, token.KW_TRAIT: true,
	token.KW_IMPL: true, token.KW_IMPORT: true, token.KW_PUB: true,
}

// anchors is the recovery synchronization set: `;`, `}`, `)`, `]`, EOF, or
// any definition-starter keyword.
func isAnchor(k token.Kind) bool {
	return k == token.SEMI || k == token.RBRACE || k == token.RPAREN ||
		k == token.RBRACKET || k == token.EOF || defStarters[k]
}

// Parser holds the token buffer (Neve source files are small enough
// that buffering the whole stream up front keeps the recursive-descent
// code simple) plus the prefix/infix dispatch tables.
type Parser struct {
	file   span.FileID
	toks   []token.Token
	pos    int
	sink   *diag.Sink

	prefixFns map[token.Kind]prefixParseFn
	infixFns  map[token.Kind]infixParseFn
}

// New builds a Parser over src, reporting lex and parse errors into sink.
func New(file span.FileID, src string, sink *diag.Sink) *Parser {
	l := lexer.New(file, src)
	toks := l.Tokenize()
	for _, e := range l.Errors() {
		sink.Errorf(e.Pos, "LexError", "%s", e.Message)
	}

	p := &Parser{file: file, toks: toks, sink: sink}
	p.installDispatch()
	return p
}

// installDispatch populates the prefix/infix dispatch tables. Split out
// from New so a sub-Parser built over an interpolation hole's re-lexed
// token run (see parseStringLit) can share the same tables.
func (p *Parser) installDispatch() {
	p.prefixFns = map[token.Kind]prefixParseFn{
		token.IDENT:            p.parseIdent,
		token.INT:               p.parseIntLit,
		token.FLOAT:             p.parseFloatLit,
		token.KW_TRUE:           p.parseBoolLit,
		token.KW_FALSE:          p.parseBoolLit,
		token.CHAR:              p.parseCharLit,
		token.STRING:            p.parseStringLit,
		token.INTERP_STRING:     p.parseStringLit,
		token.MULTILINE_STRING:  p.parseStringLit,
		token.PATH:              p.parsePathLit,
		token.LBRACKET:          p.parseListOrComp,
		token.HASH_LBRACE:       p.parseRecordLit,
		token.LBRACE:            p.parseBlock,
		token.LPAREN:            p.parseParenOrTuple,
		token.KW_FN:             p.parseLambda,
		token.KW_MATCH:          p.parseMatch,
		token.KW_IF:             p.parseIf,
		token.KW_LAZY:           p.parseLazyRef,
		token.KW_SELF:           p.parseIdent,
		token.KW_SUPER:          p.parseIdent,
		token.BANG:              p.parseUnary,
		token.MINUS:             p.parseUnary,
	}
	p.infixFns = map[token.Kind]infixParseFn{
		token.PLUS: p.parseBinary, token.MINUS: p.parseBinary,
		token.STAR: p.parseBinary, token.SLASH: p.parseBinary, token.PERCENT: p.parseBinary,
		token.CARET: p.parseBinary, token.PLUSPLUS: p.parseBinary,
		token.EQEQ: p.parseBinary, token.NE: p.parseBinary,
		token.LT: p.parseBinary, token.LE: p.parseBinary, token.GT: p.parseBinary, token.GE: p.parseBinary,
		token.ANDAND: p.parseBinary, token.OROR: p.parseBinary,
		token.QUESTIONQUESTION: p.parseCoalesce,
		token.PIPEGT:           p.parsePipe,
		token.SLASHSLASH:       p.parsePipeFwd,
		token.LPAREN:           p.parseCall,
		token.LBRACKET:         p.parseIndex,
		token.DOT:              p.parseFieldAccess,
		token.QUESTIONDOT:      p.parseSafeAccess,
		token.QUESTION:         p.parseTry,
	}
}

func (p *Parser) cur() token.Token  { return p.toks[p.pos] }
func (p *Parser) curKind() token.Kind { return p.toks[p.pos].Kind }

func (p *Parser) peek(n int) token.Token {
	idx := p.pos + n
	if idx >= len(p.toks) {
		return p.toks[len(p.toks)-1] // EOF
	}
	return p.toks[idx]
}

func (p *Parser) advance() token.Token {
	t := p.cur()
	if p.curKind() != token.EOF {
		p.pos++
	}
	return t
}

func (p *Parser) is(k token.Kind) bool { return p.curKind() == k }

// expect consumes the current token if it matches k, else records a
// ParseError diagnostic and returns false without advancing (the caller is
// responsible for synchronizing).
func (p *Parser) expect(k token.Kind, context string) (token.Token, bool) {
	if p.is(k) {
		return p.advance(), true
	}
	p.errf(p.cur().Pos, "expected %s %s, got %s", k, context, p.curKind())
	return token.Token{}, false
}

func (p *Parser) errf(sp span.Span, format string, args ...any) {
	p.sink.Errorf(sp, "ParseError", format, args...)
}

// synchronize advances past tokens until an anchor token or EOF,
// implementing panic-mode recovery.
func (p *Parser) synchronize() {
	for !isAnchor(p.curKind()) {
		p.advance()
	}
}

func precedenceOf(k token.Kind) int {
	if prec, ok := precedences[k]; ok {
		return prec
	}
	return LOWEST
}

// ParseModule parses an entire source file into an *ast.Module. path is the
// module's import path (e.g. "crate.lib.util"), supplied by the caller
// (internal/hir's module loader), not derived here.
func ParseModule(file span.FileID, src, path string, sink *diag.Sink) *ast.Module {
	p := New(file, src, sink)
	start := p.cur().Pos
	var defs []ast.Def
	for !p.is(token.EOF) {
		if p.is(token.SEMI) {
			p.advance() // an optional `;` may end a definition
			continue
		}
		d := p.parseDef()
		if d != nil {
			defs = append(defs, d)
		}
	}
	end := p.cur().Pos
	return &ast.Module{Path: path, Defs: defs, Sp: span.Join(start, end)}
}

func (p *Parser) errExpr(sp span.Span) ast.Expr { return &ast.ErrExpr{Sp: sp} }
func (p *Parser) errPattern(sp span.Span) ast.Pattern { return &ast.ErrPat{Sp: sp} }
func (p *Parser) errType(sp span.Span) ast.TypeExpr { return &ast.ErrType{Sp: sp} }

// parseVisibility consumes an optional `pub`, `pub(crate)`, or `pub(super)`
// prefix. "crate" is not a keyword (see internal/token's Open Question
// resolution), so it is recognized here as an IDENT with that exact text,
// the one place outside import paths the parser treats it contextually.
func (p *Parser) parseVisibility() ast.Visibility {
	if !p.is(token.KW_PUB) {
		return ast.Private
	}
	p.advance()
	if !p.is(token.LPAREN) {
		return ast.Public
	}
	// Lookahead so a bare `pub` directly followed by an unrelated `(...)`
	// expression (impossible at definition-start position, but cheap to
	// guard) never misparses.
	if p.peek(1).Kind == token.KW_SUPER && p.peek(2).Kind == token.RPAREN {
		p.advance()
		p.advance()
		p.advance()
		return ast.Super
	}
	if p.peek(1).Kind == token.IDENT && p.peek(1).Lit == "crate" && p.peek(2).Kind == token.RPAREN {
		p.advance()
		p.advance()
		p.advance()
		return ast.Crate
	}
	return ast.Public
}

// parseDottedPath parses `ident(.ident)*`, used for import paths and
// type/constructor paths like `crate.lib.Thing`.
func (p *Parser) parseDottedPath() ([]string, span.Span) {
	start := p.cur().Pos
	var segs []string
	if !p.is(token.IDENT) && !p.is(token.KW_SELF) && !p.is(token.KW_SUPER) {
		p.errf(start, "expected %s at start of path, got %s", token.IDENT, p.curKind())
		return nil, start
	}
	tok := p.advance()
	segs = append(segs, tok.Lit)
	last := tok.Pos
	for p.is(token.DOT) && p.peek(1).Kind == token.IDENT {
		p.advance()
		tok = p.advance()
		segs = append(segs, tok.Lit)
		last = tok.Pos
	}
	return segs, span.Join(start, last)
}

func unexpectedTokenMsg(k token.Kind) string {
	return fmt.Sprintf("unexpected token %s", k)
}
