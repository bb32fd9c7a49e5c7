// Package token defines the lexeme vocabulary produced by internal/lexer
// and consumed by internal/parser: a tagged variant with sub-kinds for
// literals, keywords, and punctuators.
package token

import "github.com/neve-lang/neve/internal/span"

// Kind is the tag of a Token. The zero value is EOF's sentinel ILLEGAL
// marker reuse would be confusing, so ILLEGAL is kept distinct and
// listed first purely for readability; EOF is its own kind.
type Kind int

const (
	ILLEGAL Kind = iota // unrecognized byte; the lexer resynchronizes after it
	EOF

	// Literals: integer, float, char, string, interpolated string,
	// multiline string, path.
	IDENT
	INT
	FLOAT
	CHAR
	STRING           // "..."
	INTERP_STRING    // `...{expr}...`
	MULTILINE_STRING // """...""" with common indentation stripped
	PATH             // ./foo, ../foo, /foo

	keywordStart
	KW_LET
	KW_FN
	KW_TYPE
	KW_STRUCT
	KW_ENUM
	KW_TRAIT
	KW_IMPL
	KW_IMPORT
	KW_MATCH
	KW_IF
	KW_ELSE
	KW_TRUE
	KW_FALSE
	KW_PUB
	KW_SELF
	KW_SUPER
	KW_LAZY
	keywordEnd

	// Punctuators and operators, plus DOT for field access and module
	// paths (see DESIGN.md's Open Questions resolution).
	HASH_LBRACE // #{
	LBRACE
	RBRACE
	LBRACKET
	RBRACKET
	LPAREN
	RPAREN
	COMMA
	SEMI
	COLON
	DOT
	DOTDOT // ..
	EQ
	ARROW   // ->
	PIPEGT  // |>
	PLUSPLUS // ++
	SLASHSLASH // //
	QUESTIONQUESTION // ??
	QUESTIONDOT      // ?.
	QUESTION
	LT
	GT
	LE
	GE
	LARROW // <- : list-comprehension generator binder
	EQEQ
	NE
	ANDAND
	OROR
	BANG
	PLUS
	MINUS
	STAR
	SLASH
	PERCENT
	CARET
	AT
	PIPE
)

// keywords maps reserved identifier text to its Kind. There are exactly
// 17. "crate" is deliberately absent: the "crate.X" module-path form is
// recognized contextually by the parser only in import/path position,
// kept a plain IDENT everywhere else, to stay within the fixed keyword
// budget (see DESIGN.md).
var keywords = map[string]Kind{
	"let":    KW_LET,
	"fn":     KW_FN,
	"type":   KW_TYPE,
	"struct": KW_STRUCT,
	"enum":   KW_ENUM,
	"trait":  KW_TRAIT,
	"impl":   KW_IMPL,
	"import": KW_IMPORT,
	"match":  KW_MATCH,
	"if":     KW_IF,
	"else":   KW_ELSE,
	"true":   KW_TRUE,
	"false":  KW_FALSE,
	"pub":    KW_PUB,
	"self":   KW_SELF,
	"super":  KW_SUPER,
	"lazy":   KW_LAZY,
}

// LookupIdent returns KW_* for a reserved word, or IDENT otherwise.
func LookupIdent(text string) Kind {
	if k, ok := keywords[text]; ok {
		return k
	}
	return IDENT
}

// IsKeyword reports whether k is one of the 17 reserved words.
func IsKeyword(k Kind) bool {
	return k > keywordStart && k < keywordEnd
}

var names = map[Kind]string{
	ILLEGAL: "ILLEGAL", EOF: "EOF",
	IDENT: "IDENT", INT: "INT", FLOAT: "FLOAT", CHAR: "CHAR",
	STRING: "STRING", INTERP_STRING: "INTERP_STRING", MULTILINE_STRING: "MULTILINE_STRING", PATH: "PATH",
	KW_LET: "let", KW_FN: "fn", KW_TYPE: "type", KW_STRUCT: "struct", KW_ENUM: "enum",
	KW_TRAIT: "trait", KW_IMPL: "impl", KW_IMPORT: "import", KW_MATCH: "match",
	KW_IF: "if", KW_ELSE: "else", KW_TRUE: "true", KW_FALSE: "false",
	KW_PUB: "pub", KW_SELF: "self", KW_SUPER: "super", KW_LAZY: "lazy",
	HASH_LBRACE: "#{", LBRACE: "{", RBRACE: "}", LBRACKET: "[", RBRACKET: "]",
	LPAREN: "(", RPAREN: ")", COMMA: ",", SEMI: ";", COLON: ":", DOT: ".", DOTDOT: "..",
	EQ: "=", ARROW: "->", PIPEGT: "|>", PLUSPLUS: "++", SLASHSLASH: "//",
	QUESTIONQUESTION: "??", QUESTIONDOT: "?.", QUESTION: "?",
	LT: "<", GT: ">", LE: "<=", GE: ">=", LARROW: "<-", EQEQ: "==", NE: "!=",
	ANDAND: "&&", OROR: "||", BANG: "!",
	PLUS: "+", MINUS: "-", STAR: "*", SLASH: "/", PERCENT: "%", CARET: "^",
	AT: "@", PIPE: "|",
}

func (k Kind) String() string {
	if s, ok := names[k]; ok {
		return s
	}
	return "?"
}

// Segment is one piece of an INTERP_STRING: either a literal chunk or a
// nested expression's token run.
type Segment struct {
	IsExpr  bool
	Literal string  // valid when !IsExpr
	Tokens  []Token // valid when IsExpr; re-lexed tokens for `{ ... }`
}

// Token is one lexeme: its kind, raw source text, and span. Segments is
// only populated for INTERP_STRING tokens.
type Token struct {
	Kind     Kind
	Lit      string
	Pos      span.Span
	Segments []Segment
}

// New builds a Token with no interpolation segments.
func New(kind Kind, lit string, pos span.Span) Token {
	return Token{Kind: kind, Lit: lit, Pos: pos}
}
