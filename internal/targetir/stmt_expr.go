package targetir

import "github.com/tsubalang/tsubac/internal/span"

// ---- Statements ----

type LetStmt struct {
	base
	Name  string
	Type  Type // nil when the target can infer it
	Value Expr
	Mut   bool
}

func (s *LetStmt) stmtNode() {}

type ExprStmt struct {
	base
	X Expr
}

func (s *ExprStmt) stmtNode() {}

type ReturnStmt struct {
	base
	Value Expr // nil for a bare `return;`
}

func (s *ReturnStmt) stmtNode() {}

type BreakStmt struct{ base }

func (s *BreakStmt) stmtNode() {}

type ContinueStmt struct{ base }

func (s *ContinueStmt) stmtNode() {}

type IfStmt struct {
	base
	Cond Expr
	Then []Stmt
	Else []Stmt
}

func (s *IfStmt) stmtNode() {}

type WhileStmt struct {
	base
	Cond Expr
	Body []Stmt
}

func (s *WhileStmt) stmtNode() {}

// MatchArm is one `Pattern => body` arm of a MatchStmt/MatchExpr.
type MatchArm struct {
	Sp      span.Span
	Pattern string // rendered pattern text, e.g. "Shape::Circle { radius }"
	Body    []Stmt
}

type MatchStmt struct {
	base
	Scrutinee Expr
	Arms      []MatchArm
}

func (s *MatchStmt) stmtNode() {}

// BlockStmt is an explicit nested `{ ... }` block used as a statement.
type BlockStmt struct {
	base
	Stmts []Stmt
}

func (s *BlockStmt) stmtNode() {}

// RawStmt escapes an already-rendered block of target statement text
// verbatim, the statement-level counterpart of RawItem. Used for the
// loader runtime's function bodies, which are structurally fixed
// boilerplate rather than something worth modeling as individual IR
// statements.
type RawStmt struct {
	base
	Text string
}

func (s *RawStmt) stmtNode() {}

// ---- Expressions ----

type Ident struct {
	base
	Name string
}

func (e *Ident) exprNode() {}

type IntLit struct {
	base
	Value int64
}

func (e *IntLit) exprNode() {}

type FloatLit struct {
	base
	Value float64
}

func (e *FloatLit) exprNode() {}

type StringLit struct {
	base
	Value string
}

func (e *StringLit) exprNode() {}

type BoolLit struct {
	base
	Value bool
}

func (e *BoolLit) exprNode() {}

// UnitLit is `()`.
type UnitLit struct{ base }

func (e *UnitLit) exprNode() {}

type TupleLit struct {
	base
	Elems []Expr
}

func (e *TupleLit) exprNode() {}

type ArrayLit struct {
	base
	Elems []Expr
}

func (e *ArrayLit) exprNode() {}

// StructLit is `Name { field: value, ... }`.
type StructLit struct {
	base
	TypeName string
	Fields   []FieldInit
}

// FieldInit is one `name: value` entry of a StructLit.
type FieldInit struct {
	Sp    span.Span
	Name  string
	Value Expr
}

func (e *StructLit) exprNode() {}

type BinaryExpr struct {
	base
	Op          string
	Left, Right Expr
}

func (e *BinaryExpr) exprNode() {}

type UnaryExpr struct {
	base
	Op string
	X  Expr
}

func (e *UnaryExpr) exprNode() {}

// RefExpr is `&expr` or `&mut expr`.
type RefExpr struct {
	base
	Mut bool
	X   Expr
}

func (e *RefExpr) exprNode() {}

// UnsafeExpr is `unsafe { expr }`, the lowering target of the `unsafe(...)`
// marker call (spec §4.6/§C).
type UnsafeExpr struct {
	base
	X Expr
}

func (e *UnsafeExpr) exprNode() {}

type CallExpr struct {
	base
	Callee Expr
	Args   []Expr
}

func (e *CallExpr) exprNode() {}

// MethodCallExpr is `receiver.method(args)`.
type MethodCallExpr struct {
	base
	Receiver Expr
	Method   string
	Args     []Expr
}

func (e *MethodCallExpr) exprNode() {}

// FieldExpr is `obj.field`.
type FieldExpr struct {
	base
	Obj   Expr
	Field string
}

func (e *FieldExpr) exprNode() {}

type IndexExpr struct {
	base
	Obj   Expr
	Index Expr
}

func (e *IndexExpr) exprNode() {}

// PathExpr is a qualified path reference, e.g. `Shape::Circle` or
// `std::cmp::max`.
type PathExpr struct {
	base
	Segments []string
}

func (e *PathExpr) exprNode() {}

// ClosureExpr is `move |params| body` or `|params| body`.
type ClosureExpr struct {
	base
	Params []Param
	Body   Expr
	Move   bool
}

func (e *ClosureExpr) exprNode() {}

// TryExpr is `expr?`.
type TryExpr struct {
	base
	X Expr
}

func (e *TryExpr) exprNode() {}

type AwaitExpr struct {
	base
	X Expr
}

func (e *AwaitExpr) exprNode() {}

// AsExpr is `expr as Type`.
type AsExpr struct {
	base
	X    Expr
	Type Type
}

func (e *AsExpr) exprNode() {}

// FormatExpr is `format!("...", args...)` — the lowering target for
// template literals (spec §9 Open Question 1).
type FormatExpr struct {
	base
	Template string
	Args     []Expr
}

func (e *FormatExpr) exprNode() {}

// BlockExpr is a `{ ...; tail }` value-producing block.
type BlockExpr struct {
	base
	Stmts []Stmt
	Tail  Expr // nil if the block has no trailing expression (evaluates to unit)
}

func (e *BlockExpr) exprNode() {}

// MatchExpr mirrors MatchStmt but is used in expression position (every
// arm's last statement/tail supplies the arm's value).
type MatchExpr struct {
	base
	Scrutinee Expr
	Arms      []MatchExprArm
}

type MatchExprArm struct {
	Sp      span.Span
	Pattern string
	Value   Expr
}

func (e *MatchExpr) exprNode() {}
