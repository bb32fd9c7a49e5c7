package ast

import "github.com/neve-lang/neve/internal/span"

func (*Ident) exprNode()        {}
func (*IntLit) exprNode()       {}
func (*FloatLit) exprNode()     {}
func (*BoolLit) exprNode()      {}
func (*CharLit) exprNode()      {}
func (*StringLit) exprNode()    {}
func (*PathLit) exprNode()      {}
func (*ListLit) exprNode()      {}
func (*ListComp) exprNode()     {}
func (*TupleLit) exprNode()     {}
func (*RecordLit) exprNode()    {}
func (*Block) exprNode()        {}
func (*Lambda) exprNode()       {}
func (*Call) exprNode()         {}
func (*FieldAccess) exprNode()  {}
func (*Index) exprNode()        {}
func (*Match) exprNode()        {}
func (*If) exprNode()           {}
func (*BinaryExpr) exprNode()   {}
func (*UnaryExpr) exprNode()    {}
func (*PipeExpr) exprNode()     {}
func (*TryExpr) exprNode()      {}
func (*SafeAccess) exprNode()   {}
func (*Coalesce) exprNode()     {}
func (*Compose) exprNode()      {}
func (*ErrExpr) exprNode()      {}

// Ident is a bare name reference: a variable, a function, or (in type/path
// position) a module segment.
type Ident struct {
	Name string
	Sp   span.Span
}

func (i *Ident) Span() span.Span { return i.Sp }

// IntLit is an integer literal. Neve's integers are arbitrary precision, so
// the lexeme is kept as text; the checker/evaluator parse it with math/big.
type IntLit struct {
	Lit string
	Sp  span.Span
}

func (l *IntLit) Span() span.Span { return l.Sp }

type FloatLit struct {
	Value float64
	Sp    span.Span
}

func (l *FloatLit) Span() span.Span { return l.Sp }

type BoolLit struct {
	Value bool
	Sp    span.Span
}

func (l *BoolLit) Span() span.Span { return l.Sp }

type CharLit struct {
	Value rune
	Sp    span.Span
}

func (l *CharLit) Span() span.Span { return l.Sp }

// StringSegment is one piece of a (possibly interpolated) string literal.
type StringSegment struct {
	IsExpr  bool
	Literal string
	Expr    Expr // valid when IsExpr
}

// StringLit covers plain, interpolated, and multiline strings: all three
// lower to the same segment-list shape.
type StringLit struct {
	Segments []StringSegment
	Sp       span.Span
}

func (l *StringLit) Span() span.Span { return l.Sp }

// PathLit is a filesystem-path literal: ./foo, ../bar, /abs.
type PathLit struct {
	Value string
	Sp    span.Span
}

func (l *PathLit) Span() span.Span { return l.Sp }

// ListLit is a bracketed list of elements: [1, 2, 3].
type ListLit struct {
	Elems []Expr
	Sp    span.Span
}

func (l *ListLit) Span() span.Span { return l.Sp }

// CompClause is one `pattern <- source` generator or bare `cond` guard in a
// list comprehension, e.g. `[x * 2 | x <- [1, 2, 3], x > 1]`.
type CompClause struct {
	Bind   Pattern // nil for a guard clause
	Source Expr    // nil for a guard clause
	Guard  Expr    // nil for a generator clause
	Sp     span.Span
}

// ListComp is `[expr | clause, clause, ...]`, e.g. `[x * 2 | x <- xs, x > 0]`.
type ListComp struct {
	Result  Expr
	Clauses []CompClause
	Sp      span.Span
}

func (l *ListComp) Span() span.Span { return l.Sp }

// TupleLit is `(a, b, c)`. A zero-element tuple `()` is Neve's unit value.
type TupleLit struct {
	Elems []Expr
	Sp    span.Span
}

func (l *TupleLit) Span() span.Span { return l.Sp }

// RecordField is one `name: value` (or `name` shorthand, Value == nil'd
// Ident reuse handled by the parser) entry of a record literal.
type RecordField struct {
	Name  string
	Value Expr
	Sp    span.Span
}

// RecordLit is `#{ name: value, ... }`, optionally `#{ ..base, field: v }`
// for a functional update over a row-polymorphic record.
type RecordLit struct {
	Fields []RecordField
	Base   Expr // non-nil for `#{ ..base, ... }` update syntax
	Sp     span.Span
}

func (l *RecordLit) Span() span.Span { return l.Sp }

// LetStmt is a binding inside a Block: `let pattern = value`.
type LetStmt struct {
	Pattern Pattern
	Type    TypeExpr // nil if unannotated
	Value   Expr
	Sp      span.Span
}

func (s *LetStmt) Span() span.Span { return s.Sp }

// Block is `{ let a = 1 let b = 2 a + b }`: a sequence of let-bindings
// followed by a final tail expression that is the block's value.
type Block struct {
	Lets []*LetStmt
	Tail Expr
	Sp   span.Span
}

func (b *Block) Span() span.Span { return b.Sp }

// Lambda is `fn(params) -> body` or the named-parameter-list sugar
// `fn ident -> body` the parser desugars to a single-param lambda.
type Lambda struct {
	Params []Param
	Ret    TypeExpr // nil if unannotated
	Body   Expr
	Sp     span.Span
}

func (l *Lambda) Span() span.Span { return l.Sp }

// Call is `callee(args...)`.
type Call struct {
	Callee Expr
	Args   []Expr
	Sp     span.Span
}

func (c *Call) Span() span.Span { return c.Sp }

// FieldAccess is `receiver.field`.
type FieldAccess struct {
	Receiver Expr
	Field    string
	Sp       span.Span
}

func (f *FieldAccess) Span() span.Span { return f.Sp }

// Index is `receiver[index]`.
type Index struct {
	Receiver Expr
	Index    Expr
	Sp       span.Span
}

func (i *Index) Span() span.Span { return i.Sp }

// MatchArm is one `pattern if guard -> body` arm.
type MatchArm struct {
	Pattern Pattern
	Guard   Expr // nil if unguarded
	Body    Expr
	Sp      span.Span
}

// Match is `match scrutinee { arm, arm, ... }`.
type Match struct {
	Scrutinee Expr
	Arms      []MatchArm
	Sp        span.Span
}

func (m *Match) Span() span.Span { return m.Sp }

// If is `if cond { then } else { else }`. Neve has no statement-only if:
// every if is an expression, so Else is never nil once parsed (the parser
// rejects a dangling if with no else at parse time).
type If struct {
	Cond Expr
	Then Expr
	Else Expr
	Sp   span.Span
}

func (i *If) Span() span.Span { return i.Sp }

// BinOp names a binary operator.
type BinOp int

const (
	OpAdd BinOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpPow
	OpConcat // ++
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpAnd
	OpOr
)

// BinaryExpr is `left op right` for every non-pipe, non-coalesce binary
// operator in the precedence table.
type BinaryExpr struct {
	Op    BinOp
	Left  Expr
	Right Expr
	Sp    span.Span
}

func (b *BinaryExpr) Span() span.Span { return b.Sp }

// UnOp names a prefix unary operator.
type UnOp int

const (
	OpNeg UnOp = iota
	OpNot
)

// UnaryExpr is `-operand` or `!operand`.
type UnaryExpr struct {
	Op      UnOp
	Operand Expr
	Sp      span.Span
}

func (u *UnaryExpr) Span() span.Span { return u.Sp }

// PipeExpr is `left |> right`, sugar the checker/evaluator treat as
// `right(left)` with left inserted as the final positional argument when
// right is itself a Call.
type PipeExpr struct {
	Left  Expr
	Right Expr
	Sp    span.Span
}

func (p *PipeExpr) Span() span.Span { return p.Sp }

// TryExpr is postfix `operand?`: propagate a Result's Err, or unwrap its Ok.
type TryExpr struct {
	Operand Expr
	Sp      span.Span
}

func (t *TryExpr) Span() span.Span { return t.Sp }

// SafeAccess is `receiver?.field`: yields an Option, None if receiver is
// None/absent rather than panicking.
type SafeAccess struct {
	Receiver Expr
	Field    string
	Sp       span.Span
}

func (s *SafeAccess) Span() span.Span { return s.Sp }

// Coalesce is `left ?? right`: left unless it is None, else right.
type Coalesce struct {
	Left  Expr
	Right Expr
	Sp    span.Span
}

func (c *Coalesce) Span() span.Span { return c.Sp }

// Compose is `left // right`: function composition, `x -> right(left(x))`
// (distinct from the division SLASH token).
type Compose struct {
	Left  Expr
	Right Expr
	Sp    span.Span
}

func (c *Compose) Span() span.Span { return c.Sp }

// ErrExpr is a placeholder produced during error recovery: the parser
// could not make sense of a span of tokens but must still return an Expr
// so the surrounding parse continues rather than aborting.
type ErrExpr struct {
	Sp span.Span
}

func (e *ErrExpr) Span() span.Span { return e.Sp }
