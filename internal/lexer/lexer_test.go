package lexer

import (
	"testing"

	"github.com/neve-lang/neve/internal/span"
	"github.com/neve-lang/neve/internal/token"
)

func kinds(toks []token.Token) []token.Kind {
	ks := make([]token.Kind, len(toks))
	for i, t := range toks {
		ks[i] = t.Kind
	}
	return ks
}

func TestBasicArithmeticTokens(t *testing.T) {
	toks := New(0, "1 + 2 * 3").Tokenize()
	want := []token.Kind{token.INT, token.PLUS, token.INT, token.STAR, token.INT, token.EOF}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestUnderscoreSeparatedInteger(t *testing.T) {
	toks := New(0, "1_000_000").Tokenize()
	if toks[0].Kind != token.INT || toks[0].Lit != "1_000_000" {
		t.Fatalf("got %+v", toks[0])
	}
}

func TestBases(t *testing.T) {
	cases := map[string]string{
		"0xFF": "0xFF", "0o17": "0o17", "0b1010": "0b1010",
	}
	for src, lit := range cases {
		tok := New(0, src).NextToken()
		if tok.Kind != token.INT || tok.Lit != lit {
			t.Errorf("%s: got %+v", src, tok)
		}
	}
}

func TestFloatWithExponent(t *testing.T) {
	tok := New(0, "1.5e10").NextToken()
	if tok.Kind != token.FLOAT || tok.Lit != "1.5e10" {
		t.Fatalf("got %+v", tok)
	}
}

func TestMinusNeverAbsorbedIntoNumber(t *testing.T) {
	toks := New(0, "x-5").Tokenize()
	want := []token.Kind{token.IDENT, token.MINUS, token.INT, token.EOF}
	got := kinds(toks)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestKeywords(t *testing.T) {
	src := "let fn type struct enum trait impl import match if else true false pub self super lazy"
	toks := New(0, src).Tokenize()
	want := []token.Kind{
		token.KW_LET, token.KW_FN, token.KW_TYPE, token.KW_STRUCT, token.KW_ENUM,
		token.KW_TRAIT, token.KW_IMPL, token.KW_IMPORT, token.KW_MATCH, token.KW_IF,
		token.KW_ELSE, token.KW_TRUE, token.KW_FALSE, token.KW_PUB, token.KW_SELF,
		token.KW_SUPER, token.KW_LAZY, token.EOF,
	}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("got %d tokens, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestCrateIsNotAKeyword(t *testing.T) {
	tok := New(0, "crate").NextToken()
	if tok.Kind != token.IDENT {
		t.Errorf("expected 'crate' to lex as IDENT (contextual keyword), got %v", tok.Kind)
	}
}

func TestPlainString(t *testing.T) {
	tok := New(0, `"hello"`).NextToken()
	if tok.Kind != token.STRING || tok.Lit != "hello" {
		t.Fatalf("got %+v", tok)
	}
}

func TestInterpolatedString(t *testing.T) {
	tok2 := New(0, `"sum is {1 + 2}!"`).NextToken()
	if tok2.Kind != token.INTERP_STRING {
		t.Fatalf("expected INTERP_STRING, got %+v", tok2)
	}
	if len(tok2.Segments) != 3 {
		t.Fatalf("expected 3 segments, got %d: %+v", len(tok2.Segments), tok2.Segments)
	}
	if tok2.Segments[0].Literal != "sum is " {
		t.Errorf("segment 0 = %q", tok2.Segments[0].Literal)
	}
	if !tok2.Segments[1].IsExpr || len(tok2.Segments[1].Tokens) != 3 {
		t.Errorf("segment 1 = %+v", tok2.Segments[1])
	}
	if tok2.Segments[2].Literal != "!" {
		t.Errorf("segment 2 = %q", tok2.Segments[2].Literal)
	}
}

func TestMultilineStringStripsCommonIndent(t *testing.T) {
	src := "\"\"\"\n    line one\n    line two\n    \"\"\""
	tok := New(0, src).NextToken()
	if tok.Kind != token.MULTILINE_STRING {
		t.Fatalf("got %+v", tok)
	}
	want := "\nline one\nline two\n"
	if tok.Lit != want {
		t.Errorf("got %q, want %q", tok.Lit, want)
	}
}

func TestCharLiteralWithUnicodeEscape(t *testing.T) {
	tok := New(0, `'\u{1F680}'`).NextToken()
	if tok.Kind != token.CHAR {
		t.Fatalf("got %+v, errors=%v", tok, New(0, `'\u{1F680}'`).Errors())
	}
}

func TestPathLiterals(t *testing.T) {
	for _, src := range []string{"./foo", "../bar/baz", "/abs/path"} {
		tok := New(0, src).NextToken()
		if tok.Kind != token.PATH || tok.Lit != src {
			t.Errorf("%s: got %+v", src, tok)
		}
	}
}

func TestLineCommentToEndOfLine(t *testing.T) {
	toks := New(0, "1 -- ignored\n+ 2").Tokenize()
	want := []token.Kind{token.INT, token.PLUS, token.INT, token.EOF}
	got := kinds(toks)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestInlineLineComment(t *testing.T) {
	toks := New(0, "1 -- ignored -- + 2").Tokenize()
	want := []token.Kind{token.INT, token.PLUS, token.INT, token.EOF}
	got := kinds(toks)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestNestedBlockComment(t *testing.T) {
	toks := New(0, "1 {- outer {- inner -} still outer -} + 2").Tokenize()
	want := []token.Kind{token.INT, token.PLUS, token.INT, token.EOF}
	got := kinds(toks)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestOperatorDisambiguation(t *testing.T) {
	cases := map[string]token.Kind{
		"->": token.ARROW, "|>": token.PIPEGT, "++": token.PLUSPLUS, "//": token.SLASHSLASH,
		"??": token.QUESTIONQUESTION, "?.": token.QUESTIONDOT, "?": token.QUESTION,
		"..": token.DOTDOT, "<=": token.LE, ">=": token.GE, "==": token.EQEQ, "!=": token.NE,
		"&&": token.ANDAND, "||": token.OROR, "#{": token.HASH_LBRACE, "<-": token.LARROW,
	}
	for src, want := range cases {
		tok := New(0, src).NextToken()
		if tok.Kind != want {
			t.Errorf("%s: got %v, want %v", src, tok.Kind, want)
		}
	}
}

func TestBOMIsStripped(t *testing.T) {
	src := "\xEF\xBB\xBF1 + 1"
	tok := New(0, src).NextToken()
	if tok.Kind != token.INT || tok.Pos.Start.Offset != 0 {
		t.Fatalf("got %+v", tok)
	}
}

func TestUnterminatedStringReportsError(t *testing.T) {
	l := New(0, `"unterminated`)
	l.NextToken()
	if len(l.Errors()) == 0 {
		t.Error("expected a lex error for unterminated string")
	}
}

func TestColumnsCountRunesNotBytes(t *testing.T) {
	l := New(0, "var Δ")
	var last token.Token
	for {
		tok := l.NextToken()
		if tok.Kind == token.EOF {
			break
		}
		last = tok
	}
	if last.Pos.Start.Column != 5 {
		t.Errorf("column = %d, want 5", last.Pos.Start.Column)
	}
}

func TestFileIDPropagates(t *testing.T) {
	sources := span.NewSourceSet()
	id := sources.Add("a.neve", "1")
	tok := New(id, "1").NextToken()
	if tok.Pos.File != id {
		t.Errorf("file id = %v, want %v", tok.Pos.File, id)
	}
}

func TestIdentifiersAreNFCNormalized(t *testing.T) {
	// "é" written composed (U+00E9) and decomposed (e + U+0301) must
	// lex to the same identifier text.
	composed := New(0, "caf\u00e9").NextToken()
	decomposed := New(0, "cafe\u0301").NextToken()
	if composed.Kind != token.IDENT || decomposed.Kind != token.IDENT {
		t.Fatalf("kinds = %v, %v", composed.Kind, decomposed.Kind)
	}
	if composed.Lit != decomposed.Lit {
		t.Errorf("normalized literals differ: %q vs %q", composed.Lit, decomposed.Lit)
	}
}
