// Package lexer tokenizes Neve source text into a flat token stream.
// It is a maximal-munch scanner: on invalid bytes it emits an ILLEGAL
// token and resynchronizes at the next whitespace, collecting errors
// rather than aborting on the first one.
package lexer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/neve-lang/neve/internal/span"
	"github.com/neve-lang/neve/internal/token"
)

// Error is one lexical error: invalid escape, unterminated string,
// invalid character, invalid UTF-8.
type Error struct {
	Message string
	Pos     span.Span
}

// Lexer scans one source file into tokens. It keeps its own line/column
// counters (columns counted in runes, so multi-byte runes like emoji
// count as one column) and byte offsets for slicing the original text.
type Lexer struct {
	file   span.FileID
	input  string
	errors []Error

	position     int // current byte offset of ch
	readPosition int // byte offset of the next rune
	line         int
	column       int
	ch           rune
}

// New strips a UTF-8 BOM if present and returns a Lexer positioned at
// the first rune of input.
func New(file span.FileID, input string) *Lexer {
	if len(input) >= 3 && input[0] == 0xEF && input[1] == 0xBB && input[2] == 0xBF {
		input = input[3:]
	}
	l := &Lexer{file: file, input: input, line: 1, column: 0}
	l.readChar()
	return l
}

// Errors returns every lexical error accumulated so far.
func (l *Lexer) Errors() []Error {
	return l.errors
}

func (l *Lexer) addError(msg string, pos span.Position) {
	l.errors = append(l.errors, Error{Message: msg, Pos: span.Span{File: l.file, Start: pos, End: pos}})
}

func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = l.readPosition
		l.column++
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.position = l.readPosition
	l.readPosition += size
	l.column++
	if r == utf8.RuneError && size == 1 {
		l.addError("invalid UTF-8 encoding", l.currentPos())
	}
	if r == '\n' {
		l.line++
		l.column = 0
	}
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

func (l *Lexer) peekCharAt(byteOffset int) rune {
	if byteOffset >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[byteOffset:])
	return r
}

func (l *Lexer) currentPos() span.Position {
	return span.Position{Line: l.line, Column: l.column, Offset: l.position}
}

func (l *Lexer) posSpan(start span.Position) span.Span {
	return span.Span{File: l.file, Start: start, End: l.currentPos()}
}

func isLetter(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// skipWhitespaceAndComments advances past runs of whitespace and
// comments: line comments "-- ... --|\n" and nestable block comments
// "{- ... -}".
func (l *Lexer) skipWhitespaceAndComments() {
	for {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\n':
			l.readChar()
		case l.ch == '-' && l.peekChar() == '-':
			l.skipLineComment()
		case l.ch == '{' && l.peekChar() == '-':
			l.skipBlockComment()
		default:
			return
		}
	}
}

// skipLineComment consumes "-- text" to end of line, or "-- text --" if
// a second "--" appears first (the inline form).
func (l *Lexer) skipLineComment() {
	l.readChar() // first -
	l.readChar() // second -
	for l.ch != 0 && l.ch != '\n' {
		if l.ch == '-' && l.peekChar() == '-' {
			l.readChar()
			l.readChar()
			return
		}
		l.readChar()
	}
}

// skipBlockComment consumes a "{- ... -}" comment, tracking nesting
// depth so "{- a {- b -} c -}" is one comment.
func (l *Lexer) skipBlockComment() {
	start := l.currentPos()
	depth := 0
	for {
		switch {
		case l.ch == 0:
			l.addError("unterminated block comment", start)
			return
		case l.ch == '{' && l.peekChar() == '-':
			depth++
			l.readChar()
			l.readChar()
		case l.ch == '-' && l.peekChar() == '}':
			depth--
			l.readChar()
			l.readChar()
			if depth == 0 {
				return
			}
		default:
			l.readChar()
		}
	}
}

// NextToken scans and returns the next token, skipping leading
// whitespace and comments.
func (l *Lexer) NextToken() token.Token {
	l.skipWhitespaceAndComments()
	pos := l.currentPos()

	switch {
	case l.ch == 0:
		return token.New(token.EOF, "", l.posSpan(pos))
	case isLetter(l.ch):
		return l.readIdentifier(pos)
	case isDigit(l.ch):
		return l.readNumber(pos)
	case l.ch == '"':
		return l.readPlainOrInterpString(pos)
	case l.ch == '\'':
		return l.readCharLiteral(pos)
	case (l.ch == '.' && l.peekChar() == '/') ||
		(l.ch == '.' && l.peekChar() == '.' && l.peekCharAt(l.readPosition+1) == '/') ||
		(l.ch == '/' && l.isPathStart()):
		return l.readPath(pos)
	default:
		return l.readOperator(pos)
	}
}

// Tokenize scans the entire input and returns every token up to and
// including EOF. internal/parser calls it once per file and indexes the
// buffered slice; tests use it too.
func (l *Lexer) Tokenize() []token.Token {
	var toks []token.Token
	for {
		t := l.NextToken()
		toks = append(toks, t)
		if t.Kind == token.EOF {
			return toks
		}
	}
}

// isPathStart reports whether a standalone "/" should be read as the
// start of an absolute path literal rather than the SLASH operator: "/"
// begins a path only when followed directly by a letter or '.', never by
// whitespace or a second '/' (which lexes as the `//` operator).
func (l *Lexer) isPathStart() bool {
	p := l.peekChar()
	return isLetter(p) || p == '.'
}

// readIdentifier scans an identifier and NFC-normalizes it, so two
// spellings of the same name (composed vs decomposed accents) resolve
// to the same binding later on.
func (l *Lexer) readIdentifier(pos span.Position) token.Token {
	start := l.position
	for isLetter(l.ch) || isDigit(l.ch) || unicode.IsMark(l.ch) {
		l.readChar()
	}
	text := l.input[start:l.position]
	if !norm.NFC.IsNormalString(text) {
		text = norm.NFC.String(text)
	}
	return token.New(token.LookupIdent(text), text, l.posSpan(pos))
}

// readNumber scans an integer or float literal in base 10, 16, 8, or 2,
// with "_" digit-group separators, never absorbing a leading sign (a
// sign is only part of a literal when it directly prefixes one).
func (l *Lexer) readNumber(pos span.Position) token.Token {
	start := l.position

	if l.ch == '0' && (l.peekChar() == 'x' || l.peekChar() == 'X') {
		l.readChar()
		l.readChar()
		l.readDigitsInBase(isHexDigit)
		return l.finishNumber(pos, start, token.INT)
	}
	if l.ch == '0' && (l.peekChar() == 'o' || l.peekChar() == 'O') {
		l.readChar()
		l.readChar()
		l.readDigitsInBase(isOctalDigit)
		return l.finishNumber(pos, start, token.INT)
	}
	if l.ch == '0' && (l.peekChar() == 'b' || l.peekChar() == 'B') {
		l.readChar()
		l.readChar()
		l.readDigitsInBase(isBinaryDigit)
		return l.finishNumber(pos, start, token.INT)
	}

	kind := token.INT
	l.readDigitsInBase(isDigit)
	if l.ch == '.' && isDigit(l.peekChar()) {
		kind = token.FLOAT
		l.readChar()
		l.readDigitsInBase(isDigit)
	}
	if l.ch == 'e' || l.ch == 'E' {
		save := l.savePos()
		l.readChar()
		if l.ch == '+' || l.ch == '-' {
			l.readChar()
		}
		if isDigit(l.ch) {
			kind = token.FLOAT
			l.readDigitsInBase(isDigit)
		} else {
			l.restorePos(save)
		}
	}
	return l.finishNumber(pos, start, kind)
}

type savedPos struct {
	position, readPosition, line, column int
	ch                                    rune
}

func (l *Lexer) savePos() savedPos {
	return savedPos{l.position, l.readPosition, l.line, l.column, l.ch}
}

func (l *Lexer) restorePos(s savedPos) {
	l.position, l.readPosition, l.line, l.column, l.ch = s.position, s.readPosition, s.line, s.column, s.ch
}

func (l *Lexer) readDigitsInBase(pred func(rune) bool) {
	for pred(l.ch) || l.ch == '_' {
		l.readChar()
	}
}

func isHexDigit(r rune) bool {
	return isDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}
func isOctalDigit(r rune) bool  { return r >= '0' && r <= '7' }
func isBinaryDigit(r rune) bool { return r == '0' || r == '1' }

func (l *Lexer) finishNumber(pos span.Position, start int, kind token.Kind) token.Token {
	text := l.input[start:l.position]
	if strings.HasSuffix(text, "_") {
		l.addError("trailing digit separator", pos)
	}
	return token.New(kind, text, l.posSpan(pos))
}

// readPath scans a path lexeme: anything starting with "./", "../", or
// "/" up to whitespace or punctuation.
func (l *Lexer) readPath(pos span.Position) token.Token {
	start := l.position
	for l.ch != 0 && !unicode.IsSpace(l.ch) && !isPathTerminator(l.ch) {
		l.readChar()
	}
	return token.New(token.PATH, l.input[start:l.position], l.posSpan(pos))
}

func isPathTerminator(r rune) bool {
	switch r {
	case ',', ';', ')', ']', '}', '(', '[', '{':
		return true
	}
	return false
}

// readCharLiteral scans 'x', including escapes like \n, \t, \\, \', and
// \u{H+}.
func (l *Lexer) readCharLiteral(pos span.Position) token.Token {
	start := l.position
	l.readChar() // opening '
	if l.ch == '\\' {
		l.readEscape()
	} else if l.ch != 0 {
		l.readChar()
	}
	if l.ch != '\'' {
		l.addError("unterminated character literal", pos)
		return token.New(token.ILLEGAL, l.input[start:l.position], l.posSpan(pos))
	}
	l.readChar() // closing '
	return token.New(token.CHAR, l.input[start:l.position], l.posSpan(pos))
}

func (l *Lexer) readEscape() {
	l.readChar() // backslash
	switch l.ch {
	case 'n', 't', 'r', '\\', '\'', '"', '0':
		l.readChar()
	case 'u':
		l.readChar()
		if l.ch != '{' {
			l.addError(`invalid \u escape: expected '{'`, l.currentPos())
			return
		}
		l.readChar()
		digits := 0
		for isHexDigit(l.ch) {
			l.readChar()
			digits++
		}
		if digits == 0 {
			l.addError(`invalid \u{...} escape: no hex digits`, l.currentPos())
		}
		if l.ch != '}' {
			l.addError(`invalid \u{...} escape: expected '}'`, l.currentPos())
			return
		}
		l.readChar()
	default:
		l.addError("invalid escape sequence", l.currentPos())
		l.readChar()
	}
}

// readPlainOrInterpString scans a string literal: triple-quoted
// multiline if it opens with `"""`, interpolated if it contains a `{`
// interpolation, plain otherwise.
func (l *Lexer) readPlainOrInterpString(pos span.Position) token.Token {
	if l.peekChar() == '"' && l.peekCharAt(l.readPosition+1) == '"' {
		return l.readMultilineString(pos)
	}
	return l.readQuotedString(pos, '"')
}

func (l *Lexer) readMultilineString(pos span.Position) token.Token {
	l.readChar()
	l.readChar()
	l.readChar() // past opening """
	start := l.position
	for {
		if l.ch == 0 {
			l.addError("unterminated multiline string", pos)
			break
		}
		if l.ch == '"' && l.peekChar() == '"' && l.peekCharAt(l.readPosition+1) == '"' {
			break
		}
		l.readChar()
	}
	raw := l.input[start:l.position]
	if l.ch == '"' {
		l.readChar()
		l.readChar()
		l.readChar()
	}
	return token.Token{Kind: token.MULTILINE_STRING, Lit: stripCommonIndent(raw), Pos: l.posSpan(pos)}
}

// stripCommonIndent removes the longest whitespace prefix shared by
// every non-blank line, so a multiline string's common leading
// indentation is stripped post-lexing.
func stripCommonIndent(raw string) string {
	lines := strings.Split(raw, "\n")
	common := -1
	for _, ln := range lines {
		if strings.TrimSpace(ln) == "" {
			continue
		}
		indent := len(ln) - len(strings.TrimLeft(ln, " \t"))
		if common == -1 || indent < common {
			common = indent
		}
	}
	if common <= 0 {
		return raw
	}
	for i, ln := range lines {
		if len(ln) >= common {
			lines[i] = ln[common:]
		} else {
			lines[i] = strings.TrimLeft(ln, " \t")
		}
	}
	return strings.Join(lines, "\n")
}

// readQuotedString scans a plain or interpolated string. It always
// returns STRING unless a `{` interpolation is found, in which case the
// token's Kind becomes INTERP_STRING and Segments is populated.
func (l *Lexer) readQuotedString(pos span.Position, quote rune) token.Token {
	l.readChar() // opening quote
	var segs []token.Segment
	var lit strings.Builder
	segStart := l.position
	isInterp := false

	flushLiteral := func() {
		if l.position > segStart {
			segs = append(segs, token.Segment{Literal: l.input[segStart:l.position]})
		}
	}

	for {
		switch {
		case l.ch == 0:
			l.addError("unterminated string literal", pos)
			flushLiteral()
			return l.finishString(pos, isInterp, segs, lit.String())
		case l.ch == quote:
			flushLiteral()
			l.readChar()
			return l.finishString(pos, isInterp, segs, lit.String())
		case l.ch == '\\':
			before := l.position
			l.readEscape()
			lit.WriteString(l.input[before:l.position])
		case l.ch == '{':
			isInterp = true
			flushLiteral()
			l.readChar() // {
			innerStart := l.position
			depth := 1
			for depth > 0 {
				if l.ch == 0 {
					l.addError("unterminated interpolation", pos)
					break
				}
				if l.ch == '{' {
					depth++
				} else if l.ch == '}' {
					depth--
					if depth == 0 {
						break
					}
				}
				l.readChar()
			}
			inner := l.input[innerStart:l.position]
			if l.ch == '}' {
				l.readChar()
			}
			segs = append(segs, token.Segment{IsExpr: true, Tokens: lexSubExpr(l.file, inner)})
			segStart = l.position
		default:
			lit.WriteRune(l.ch)
			l.readChar()
		}
	}
}

// lexSubExpr re-lexes an interpolation's inner text into a standalone
// token run.
func lexSubExpr(file span.FileID, text string) []token.Token {
	sub := New(file, text)
	var toks []token.Token
	for {
		t := sub.NextToken()
		if t.Kind == token.EOF {
			return toks
		}
		toks = append(toks, t)
	}
}

func (l *Lexer) finishString(pos span.Position, isInterp bool, segs []token.Segment, plain string) token.Token {
	kind := token.STRING
	if isInterp {
		kind = token.INTERP_STRING
	}
	return token.Token{Kind: kind, Lit: plain, Pos: l.posSpan(pos), Segments: segs}
}

// readOperator dispatches on the current rune to scan a punctuator or
// operator, one handler per lead rune in place of one large switch.
func (l *Lexer) readOperator(pos span.Position) token.Token {
	switch l.ch {
	case '#':
		return l.handleHash(pos)
	case '{':
		return l.single(token.LBRACE, pos)
	case '}':
		return l.single(token.RBRACE, pos)
	case '[':
		return l.single(token.LBRACKET, pos)
	case ']':
		return l.single(token.RBRACKET, pos)
	case '(':
		return l.single(token.LPAREN, pos)
	case ')':
		return l.single(token.RPAREN, pos)
	case ',':
		return l.single(token.COMMA, pos)
	case ';':
		return l.single(token.SEMI, pos)
	case ':':
		return l.single(token.COLON, pos)
	case '.':
		return l.handleDot(pos)
	case '=':
		return l.handleEquals(pos)
	case '-':
		return l.handleMinus(pos)
	case '|':
		return l.handlePipe(pos)
	case '+':
		return l.handlePlus(pos)
	case '/':
		return l.handleSlash(pos)
	case '?':
		return l.handleQuestion(pos)
	case '<':
		return l.handleLess(pos)
	case '>':
		return l.handleGreater(pos)
	case '!':
		return l.handleBang(pos)
	case '&':
		return l.handleAmp(pos)
	case '*':
		return l.single(token.STAR, pos)
	case '%':
		return l.single(token.PERCENT, pos)
	case '^':
		return l.single(token.CARET, pos)
	case '@':
		return l.single(token.AT, pos)
	default:
		start := l.position
		l.addError("unexpected character "+string(l.ch), pos)
		for l.ch != 0 && !unicode.IsSpace(l.ch) {
			l.readChar()
		}
		return token.New(token.ILLEGAL, l.input[start:l.position], l.posSpan(pos))
	}
}

func (l *Lexer) single(kind token.Kind, pos span.Position) token.Token {
	lit := string(l.ch)
	l.readChar()
	return token.New(kind, lit, l.posSpan(pos))
}

func (l *Lexer) handleHash(pos span.Position) token.Token {
	if l.peekChar() == '{' {
		l.readChar()
		l.readChar()
		return token.New(token.HASH_LBRACE, "#{", l.posSpan(pos))
	}
	l.readChar()
	return token.New(token.ILLEGAL, "#", l.posSpan(pos))
}

func (l *Lexer) handleDot(pos span.Position) token.Token {
	l.readChar()
	if l.ch == '.' {
		l.readChar()
		return token.New(token.DOTDOT, "..", l.posSpan(pos))
	}
	return token.New(token.DOT, ".", l.posSpan(pos))
}

func (l *Lexer) handleEquals(pos span.Position) token.Token {
	l.readChar()
	if l.ch == '=' {
		l.readChar()
		return token.New(token.EQEQ, "==", l.posSpan(pos))
	}
	return token.New(token.EQ, "=", l.posSpan(pos))
}

func (l *Lexer) handleMinus(pos span.Position) token.Token {
	l.readChar()
	if l.ch == '>' {
		l.readChar()
		return token.New(token.ARROW, "->", l.posSpan(pos))
	}
	return token.New(token.MINUS, "-", l.posSpan(pos))
}

func (l *Lexer) handlePipe(pos span.Position) token.Token {
	l.readChar()
	switch l.ch {
	case '>':
		l.readChar()
		return token.New(token.PIPEGT, "|>", l.posSpan(pos))
	case '|':
		l.readChar()
		return token.New(token.OROR, "||", l.posSpan(pos))
	}
	return token.New(token.PIPE, "|", l.posSpan(pos))
}

func (l *Lexer) handlePlus(pos span.Position) token.Token {
	l.readChar()
	if l.ch == '+' {
		l.readChar()
		return token.New(token.PLUSPLUS, "++", l.posSpan(pos))
	}
	return token.New(token.PLUS, "+", l.posSpan(pos))
}

func (l *Lexer) handleSlash(pos span.Position) token.Token {
	l.readChar()
	if l.ch == '/' {
		l.readChar()
		return token.New(token.SLASHSLASH, "//", l.posSpan(pos))
	}
	return token.New(token.SLASH, "/", l.posSpan(pos))
}

func (l *Lexer) handleQuestion(pos span.Position) token.Token {
	l.readChar()
	switch l.ch {
	case '?':
		l.readChar()
		return token.New(token.QUESTIONQUESTION, "??", l.posSpan(pos))
	case '.':
		l.readChar()
		return token.New(token.QUESTIONDOT, "?.", l.posSpan(pos))
	}
	return token.New(token.QUESTION, "?", l.posSpan(pos))
}

func (l *Lexer) handleLess(pos span.Position) token.Token {
	l.readChar()
	switch l.ch {
	case '=':
		l.readChar()
		return token.New(token.LE, "<=", l.posSpan(pos))
	case '-':
		l.readChar()
		return token.New(token.LARROW, "<-", l.posSpan(pos))
	}
	return token.New(token.LT, "<", l.posSpan(pos))
}

func (l *Lexer) handleGreater(pos span.Position) token.Token {
	l.readChar()
	if l.ch == '=' {
		l.readChar()
		return token.New(token.GE, ">=", l.posSpan(pos))
	}
	return token.New(token.GT, ">", l.posSpan(pos))
}

func (l *Lexer) handleBang(pos span.Position) token.Token {
	l.readChar()
	if l.ch == '=' {
		l.readChar()
		return token.New(token.NE, "!=", l.posSpan(pos))
	}
	return token.New(token.BANG, "!", l.posSpan(pos))
}

func (l *Lexer) handleAmp(pos span.Position) token.Token {
	l.readChar()
	if l.ch == '&' {
		l.readChar()
		return token.New(token.ANDAND, "&&", l.posSpan(pos))
	}
	l.addError("unexpected character &", pos)
	return token.New(token.ILLEGAL, "&", l.posSpan(pos))
}
