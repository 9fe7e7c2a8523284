// Package ast defines the source-language AST the parser builds and host
// lowering consumes. The source language is a disciplined, fully-annotated
// object-oriented subset (see SPEC_FULL.md §C): no type inference is
// needed because every binding the lowering cares about already carries an
// explicit type annotation.
//
// The node shape (a tagged Node interface plus marker methods per node
// family) follows the teacher's internal/ast package; the grammar itself
// is new, built for a class/interface/kernel-expression surface instead of
// AILANG's expression-oriented functional one.
package ast

import (
	"fmt"
	"strings"

	"github.com/tsubalang/tsubac/internal/span"
)

// Node is the base interface implemented by every AST node.
type Node interface {
	String() string
	Span() span.Span
}

// Expr is any expression node.
type Expr interface {
	Node
	exprNode()
}

// Stmt is any statement node, including the top-level declaration forms
// (import/export/type alias/interface/class/function/const/annotate).
type Stmt interface {
	Node
	stmtNode()
}

// Type is any type-annotation node.
type Type interface {
	Node
	typeNode()
}

// base embeds a span and gives every node its Span() accessor for free.
type base struct {
	Sp span.Span
}

func (b base) Span() span.Span { return b.Sp }

// File is a single parsed source file.
type File struct {
	base
	Path  string // project-relative, forward-slash normalized
	Stmts []Stmt // top-level forms, in source order
}

func (f *File) String() string { return fmt.Sprintf("file %s", f.Path) }

// ---- Top-level declarations ----

// ImportedName is one named binding pulled out of an import clause.
type ImportedName struct {
	Name  string
	Alias string // empty if not aliased
}

// ImportDecl models `import { a, b as c } from "specifier"`. Default,
// namespace, and side-effect-only imports parse into this same node with
// the corresponding flag set, so FNI-domain diagnostics can reject them
// uniformly in host lowering rather than in the parser.
type ImportDecl struct {
	base
	Specifier      string
	Names          []ImportedName
	IsNamespace    bool // `import * as x from ...`
	IsDefault      bool // `import x from ...`
	SideEffectOnly bool // `import "specifier"` with no bindings
}

func (d *ImportDecl) String() string { return fmt.Sprintf("import %q", d.Specifier) }
func (d *ImportDecl) stmtNode()      {}

// ExportEmptyDecl models the only accepted export form: `export {}`.
type ExportEmptyDecl struct{ base }

func (d *ExportEmptyDecl) String() string { return "export {}" }
func (d *ExportEmptyDecl) stmtNode()       {}

// Param is a function/method/constructor parameter. Optional/default/
// destructured parameters are represented (so host lowering can detect and
// reject them with a precise span) rather than rejected at parse time.
type Param struct {
	Sp            span.Span
	Name          string
	Type          Type // nil if omitted (itself a diagnostic at lowering)
	Optional      bool
	HasDefault    bool
	Destructuring bool
}

// FuncDecl is a top-level or helper function declaration.
type FuncDecl struct {
	base
	Name       string
	Generics   []GenericParam
	Params     []*Param
	ReturnType Type   // nil means no annotation was written (a diagnostic)
	Async      bool
	Body       []Stmt // nil means "declared, no body" (external/ambient decl)
	External   bool   // declared external function: generics + turbofish allowed
}

func (d *FuncDecl) String() string { return fmt.Sprintf("function %s(...)", d.Name) }
func (d *FuncDecl) stmtNode()      {}

// GenericParam is a single `<T: Bound1 + Bound2>` entry.
type GenericParam struct {
	Name   string
	Bounds []string // declared interface names, intersection via multiple entries
}

// FieldDecl is a class field or an object-type-literal field (used both by
// ClassDecl and by the anonymous object types that back discriminated
// unions).
type FieldDecl struct {
	Sp   span.Span
	Name string
	Type Type
}

// CtorDecl is a class constructor.
type CtorDecl struct {
	Sp     span.Span
	Params []*Param
	Body   []Stmt
}

// ThisParam captures the explicit `this: ref<Self>` / `this: mutref<Self>`
// typing host lowering requires on every instance method (§4.6).
type ThisParam struct {
	Sp  span.Span
	Mut bool
	// Raw is true when the parameter was written as a bare `this` with no
	// ref/mutref typing, which is itself a rejection (ClsBadThisTyping).
	Raw bool
}

// MethodDecl is an instance or static method on a class, or a method
// signature in an interface (Body is nil for the latter).
type MethodDecl struct {
	base
	Name       string
	This       *ThisParam // nil for a `static` method
	Static     bool
	Params     []*Param
	ReturnType Type
	Async      bool
	Optional   bool // only meaningful inside InterfaceDecl; always a rejection
	Body       []Stmt
}

func (m *MethodDecl) String() string { return fmt.Sprintf("method %s(...)", m.Name) }
func (m *MethodDecl) stmtNode()      {}

// ClassDecl is a class declaration lowered to a struct + impl block(s).
type ClassDecl struct {
	base
	Name       string
	Fields     []*FieldDecl
	Ctor       *CtorDecl // nil if no explicit constructor
	Methods    []*MethodDecl
	Implements []string
}

func (d *ClassDecl) String() string { return fmt.Sprintf("class %s", d.Name) }
func (d *ClassDecl) stmtNode()      {}

// InterfaceDecl lowers to a trait.
type InterfaceDecl struct {
	base
	Name    string
	Extends []string
	Methods []*MethodDecl
}

func (d *InterfaceDecl) String() string { return fmt.Sprintf("interface %s", d.Name) }
func (d *InterfaceDecl) stmtNode()      {}

// ObjectTypeLit is an inline `{ field: Type; ... }` type, used both as a
// plain type alias body and as one variant of a discriminated union.
type ObjectTypeLit struct {
	Sp     span.Span
	Fields []*FieldDecl
	// Kind is the literal string value of a field named "kind", if present;
	// empty when this object type has no such field (a plain alias body).
	Kind     string
	KindSpan span.Span
}

// TypeAliasDecl covers plain nominal aliases, generic aliases, and
// discriminated unions (Union non-nil). Conditional/mapped/intersection/
// infer alias bodies are rejected in the parser itself since they have no
// representation in this AST at all (TYP0010-0012; an `infer` body is
// reported as conditional).
type TypeAliasDecl struct {
	base
	Name     string
	Generics []GenericParam
	Body     Type            // nil when Union is set
	Union    []ObjectTypeLit // non-nil for `A | B | ...` discriminated unions
}

func (d *TypeAliasDecl) String() string { return fmt.Sprintf("type %s", d.Name) }
func (d *TypeAliasDecl) stmtNode()      {}

// ConstDecl is a top-level `const NAME = <expr>`. In the accepted subset
// the only legal top-level const initializer is a kernel-constructor call;
// anything else at top level (besides the other declaration forms) is
// rejected by host lowering (CtlTopLevelNonConst covers non-const top-level
// statements; a const whose initializer is not a kernel-constructor call is
// rejected with FniUnsupportedTopLevel, and the kernel extractor validates
// the kernel case).
type ConstDecl struct {
	base
	Name  string
	Value Expr
}

func (d *ConstDecl) String() string { return fmt.Sprintf("const %s = ...", d.Name) }
func (d *ConstDecl) stmtNode()      {}

// ---- Statements ----

type ExprStmt struct {
	base
	X Expr
}

func (s *ExprStmt) String() string { return s.X.String() }
func (s *ExprStmt) stmtNode()      {}

type LetStmt struct {
	base
	Name  string
	Type  Type // optional annotation
	Value Expr
	Mut   bool // surrounding `mut<T>` marker type erased to Mut flag
}

func (s *LetStmt) String() string { return fmt.Sprintf("let %s = ...", s.Name) }
func (s *LetStmt) stmtNode()      {}

type ReturnStmt struct {
	base
	Value Expr // nil for bare `return;`
}

func (s *ReturnStmt) String() string { return "return" }
func (s *ReturnStmt) stmtNode()      {}

type BreakStmt struct{ base }

func (s *BreakStmt) String() string { return "break" }
func (s *BreakStmt) stmtNode()      {}

type ContinueStmt struct{ base }

func (s *ContinueStmt) String() string { return "continue" }
func (s *ContinueStmt) stmtNode()      {}

type BlockStmt struct {
	base
	Stmts []Stmt
}

func (s *BlockStmt) String() string { return "{ ... }" }
func (s *BlockStmt) stmtNode()      {}

type IfStmt struct {
	base
	Cond Expr
	Then []Stmt
	Else []Stmt // nil if no else branch
}

func (s *IfStmt) String() string { return "if (...) { ... }" }
func (s *IfStmt) stmtNode()      {}

type WhileStmt struct {
	base
	Cond Expr
	Body []Stmt
}

func (s *WhileStmt) String() string { return "while (...) { ... }" }
func (s *WhileStmt) stmtNode()      {}

// ForKind distinguishes the rejected `for (var ...)`/`for-of` forms from the
// plain C-style numeric form, so lowering can attach the precise CTL
// diagnostic for the former and, for the latter, hand Init/Cond/Post/Body
// to whichever lowering accepts it (only the kernel dialect does, per
// spec §4.8 — ordinary host lowering has no C-style `for` loop; its only
// loop is `while`).
type ForKind int

const (
	ForVarStyle ForKind = iota
	ForOfStyle
	ForCStyle
)

type ForStmt struct {
	base
	Kind ForKind
	Init Stmt   // only set for ForCStyle; a LetStmt
	Cond Expr   // only set for ForCStyle
	Post Expr   // only set for ForCStyle; an assignment expression
	Body []Stmt // only set for ForCStyle
}

func (s *ForStmt) String() string { return "for (...) { ... }" }
func (s *ForStmt) stmtNode()      {}

// SwitchCase is one `case <literal>:` or `default:` arm.
type SwitchCase struct {
	Sp        span.Span
	Test      Expr // nil for `default`
	Body      []Stmt
	Fallsthru bool // true if the case body is empty (falls through)
}

type SwitchStmt struct {
	base
	Discriminant Expr
	// IsUnionDiscriminant is true when Discriminant is a `.kind` member
	// access on a value whose static type is a known discriminated union;
	// host lowering sets this after resolving the alias.
	IsUnionDiscriminant bool
	Cases               []*SwitchCase
}

func (s *SwitchStmt) String() string { return "switch (...) { ... }" }
func (s *SwitchStmt) stmtNode()      {}

// AnnotateStmt models `annotate(target, attr(name, tokens`...`));` recognized
// syntactically by the parser (rather than left as a bare call for lowering
// to pattern-match), since spec §4.6 treats it as one of the closed set of
// top-level forms.
type AnnotateStmt struct {
	base
	Target string // identifier the attribute applies to
	Name   string // attribute name, e.g. "derive"
	Tokens string // raw token text between the backticks
}

func (s *AnnotateStmt) String() string { return fmt.Sprintf("annotate(%s, ...)", s.Target) }
func (s *AnnotateStmt) stmtNode()      {}

// ---- Expressions ----

type Ident struct {
	base
	Name string
}

func (e *Ident) String() string { return e.Name }
func (e *Ident) exprNode()      {}

type IntLit struct {
	base
	Value int64
}

func (e *IntLit) String() string { return fmt.Sprintf("%d", e.Value) }
func (e *IntLit) exprNode()      {}

type FloatLit struct {
	base
	Value float64
}

func (e *FloatLit) String() string { return fmt.Sprintf("%g", e.Value) }
func (e *FloatLit) exprNode()      {}

type StringLit struct {
	base
	Value string
}

func (e *StringLit) String() string { return fmt.Sprintf("%q", e.Value) }
func (e *StringLit) exprNode()      {}

type BoolLit struct {
	base
	Value bool
}

func (e *BoolLit) String() string { return fmt.Sprintf("%t", e.Value) }
func (e *BoolLit) exprNode()      {}

// UndefinedLit models the `undefined` literal, which §4.6 always rejects
// (ExpUndefinedRejected); kept as a distinct node so the parser does not
// need special-case recovery to report it precisely.
type UndefinedLit struct{ base }

func (e *UndefinedLit) String() string { return "undefined" }
func (e *UndefinedLit) exprNode()      {}

type ThisExpr struct{ base }

func (e *ThisExpr) String() string { return "this" }
func (e *ThisExpr) exprNode()      {}

type ArrayLit struct {
	base
	Elems []Expr
}

func (e *ArrayLit) String() string {
	parts := make([]string, len(e.Elems))
	for i, el := range e.Elems {
		parts[i] = el.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
func (e *ArrayLit) exprNode() {}

type TupleLit struct {
	base
	Elems []Expr
}

func (e *TupleLit) String() string {
	parts := make([]string, len(e.Elems))
	for i, el := range e.Elems {
		parts[i] = el.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
func (e *TupleLit) exprNode() {}

// ObjectField is one `name: value` or `name: value as Type` entry in an
// object literal.
type ObjectField struct {
	Sp    span.Span
	Name  string
	Value Expr
	Cast  Type // non-nil when the field was written `value as Type`
}

// ObjectLit is `{ field: value, ... }`, optionally followed by `as const`.
type ObjectLit struct {
	base
	Fields  []ObjectField
	AsConst bool
}

func (e *ObjectLit) String() string { return "{...}" }
func (e *ObjectLit) exprNode()      {}

type BinaryExpr struct {
	base
	Op          string // normalized: "===" -> "==", "!==" -> "!="
	Left, Right Expr
}

func (e *BinaryExpr) String() string { return fmt.Sprintf("(%s %s %s)", e.Left, e.Op, e.Right) }
func (e *BinaryExpr) exprNode()      {}

type UnaryExpr struct {
	base
	Op string
	X  Expr
}

func (e *UnaryExpr) String() string { return fmt.Sprintf("(%s%s)", e.Op, e.X) }
func (e *UnaryExpr) exprNode()      {}

// VoidExpr is `void expr`, lowered to `{ let _ = expr; () }`.
type VoidExpr struct {
	base
	X Expr
}

func (e *VoidExpr) String() string { return fmt.Sprintf("void %s", e.X) }
func (e *VoidExpr) exprNode()      {}

type CallExpr struct {
	base
	Callee   Expr
	TypeArgs []Type // turbofish, only meaningful when Callee resolves to an external function
	Args     []Expr
}

func (e *CallExpr) String() string {
	parts := make([]string, len(e.Args))
	for i, a := range e.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", e.Callee, strings.Join(parts, ", "))
}
func (e *CallExpr) exprNode() {}

// MemberExpr is `obj.prop`.
type MemberExpr struct {
	base
	Obj  Expr
	Prop string
}

func (e *MemberExpr) String() string { return fmt.Sprintf("%s.%s", e.Obj, e.Prop) }
func (e *MemberExpr) exprNode()      {}

// IndexExpr is `obj[index]`.
type IndexExpr struct {
	base
	Obj   Expr
	Index Expr
}

func (e *IndexExpr) String() string { return fmt.Sprintf("%s[%s]", e.Obj, e.Index) }
func (e *IndexExpr) exprNode()      {}

// NewExpr is `new ClassName(args...)`.
type NewExpr struct {
	base
	ClassName string
	Args      []Expr
}

func (e *NewExpr) String() string { return fmt.Sprintf("new %s(...)", e.ClassName) }
func (e *NewExpr) exprNode()      {}

// ArrowExpr is a closure. BlockBody is non-nil only for the rejected
// block-bodied form (ExpBlockArrowRejected); the accepted form carries a
// single expression body.
type ArrowExpr struct {
	base
	Params    []*Param
	Body      Expr   // nil when BlockBody is set
	BlockBody []Stmt // non-nil marks the rejected block-bodied form
	Async     bool
	Move      bool // set by the `move(...)` marker wrapper
}

func (e *ArrowExpr) String() string { return "(...) => ..." }
func (e *ArrowExpr) exprNode()      {}

// AsExpr is `value as Type`, the "assert-as" cast.
type AsExpr struct {
	base
	Value Expr
	Type  Type
}

func (e *AsExpr) String() string { return fmt.Sprintf("%s as %s", e.Value, e.Type) }
func (e *AsExpr) exprNode()      {}

type AwaitExpr struct {
	base
	X Expr
}

func (e *AwaitExpr) String() string { return fmt.Sprintf("await %s", e.X) }
func (e *AwaitExpr) exprNode()      {}

// TemplateLit is a template-literal expression; per spec §9 Open Question
// 1, it always lowers to the target's format-macro form.
type TemplateLit struct {
	base
	Parts []string // literal text segments, len(Parts) == len(Exprs)+1
	Exprs []Expr
}

func (e *TemplateLit) String() string { return "`...`" }
func (e *TemplateLit) exprNode()      {}

// MarkerCall recognizes one of the curated core-language marker calls
// (q(...), unsafe(...), Ok(), move(...)) the parser tags explicitly so
// host lowering does not need to re-derive intent from a bare CallExpr.
type MarkerKind int

const (
	MarkerNone MarkerKind = iota
	MarkerQuestion
	MarkerUnsafe
	MarkerOk
	MarkerMove
)

type MarkerExpr struct {
	base
	Kind MarkerKind
	Arg  Expr // nil for a bare Ok() call
}

func (e *MarkerExpr) String() string { return "marker(...)" }
func (e *MarkerExpr) exprNode()      {}
