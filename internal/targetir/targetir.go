// Package targetir defines the target language's algebraic IR (spec §3,
// §4.3): the item/stmt/expr/type grammar host lowering emits into and
// the deterministic writer renders out of. Its node shape — a tagged Node
// interface with per-family marker methods — mirrors internal/ast, applied
// here to the target's Rust-like item/impl/trait surface instead of the
// source language's class/interface surface.
package targetir

import "github.com/tsubalang/tsubac/internal/span"

// Node is the base interface every IR node implements.
type Node interface {
	Span() span.Span
}

// Item is a top-level or module-level declaration.
type Item interface {
	Node
	itemNode()
}

// Stmt is a statement inside a function or block body.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is an expression.
type Expr interface {
	Node
	exprNode()
}

// Type is a type reference.
type Type interface {
	Node
	typeNode()
}

type base struct{ Sp span.Span }

func (b base) Span() span.Span { return b.Sp }

// File is one emitted target source file: a module's items, in the order
// they must be written (callers are responsible for passing them in
// deterministic order; internal/writer renders them as given).
type File struct {
	base
	ModuleIdent string
	Items       []Item
}

// ---- Items ----

// UseItem is a `use path::to::Item;` declaration.
type UseItem struct {
	base
	Path string
}

func (i *UseItem) itemNode() {}

// ModItem declares a child module: `pub mod ident;` (file-backed, no
// inline body) or `mod ident { ... }` (Items non-nil).
type ModItem struct {
	base
	Ident string
	Pub   bool
	Items []Item // nil for a file-backed `mod ident;`
}

func (i *ModItem) itemNode() {}

// Field is a struct field or function parameter.
type Field struct {
	Sp   span.Span
	Name string
	Type Type
	Pub  bool
}

// StructItem is `pub struct Name<G> { fields }`, or the unit struct
// `pub struct Name<G>;` when Fields is empty.
type StructItem struct {
	base
	Name     string
	Generics []string
	Fields   []Field
	Derives  []string // from annotate(...) `derive(...)`, spec §4.6
}

func (i *StructItem) itemNode() {}

// EnumVariant is one variant of an EnumItem, optionally carrying named
// fields (the lowering used for discriminated unions, spec §4.6/§9).
type EnumVariant struct {
	Sp     span.Span
	Name   string
	Fields []Field // nil for a unit variant
}

// EnumItem is `pub enum Name { Variant { fields }, ... }`.
type EnumItem struct {
	base
	Name     string
	Generics []string
	Variants []EnumVariant
	Derives  []string
}

func (i *EnumItem) itemNode() {}

// Param is a function parameter (including a possible `this`/`self` receiver).
type Param struct {
	Sp   span.Span
	Name string // "this" for a receiver parameter
	Type Type
}

// FnItem is a free function, method, or trait method signature (Body nil
// for the latter).
type FnItem struct {
	base
	Name       string
	Generics   []string
	Bounds     map[string][]string // generic name -> bound trait names
	Params     []Param
	ReturnType Type
	Async      bool
	Pub        bool
	Body       []Stmt // nil for a signature-only declaration
}

func (i *FnItem) itemNode() {}

// ImplItem is `impl Trait for Name { methods }` or, with Trait == "",
// an inherent `impl Name { methods }`.
type ImplItem struct {
	base
	Trait    string
	Type     string
	Generics []string
	Methods  []*FnItem
}

func (i *ImplItem) itemNode() {}

// TraitItem is `pub trait Name: Super1 + Super2 { method signatures }`.
type TraitItem struct {
	base
	Name    string
	Supers  []string
	Methods []*FnItem
}

func (i *TraitItem) itemNode() {}

// TypeAliasItem is `type Name<G> = Type;`.
type TypeAliasItem struct {
	base
	Name     string
	Generics []string
	Target   Type
}

func (i *TypeAliasItem) itemNode() {}

// ConstItem is a top-level `pub const NAME: Type = expr;`.
type ConstItem struct {
	base
	Name  string
	Type  Type
	Value Expr
}

func (i *ConstItem) itemNode() {}

// StaticItem is `static NAME: Type = expr;`. (The kernel loader runtime's
// process-wide state is declared inside a RawStmt body instead.)
type StaticItem struct {
	base
	Name  string
	Type  Type
	Value Expr
	Mut   bool
}

func (i *StaticItem) itemNode() {}

// RawItem escapes an already-rendered block of target text verbatim
// (content the writer should not try to re-pretty-print).
type RawItem struct {
	base
	Text string
}

func (i *RawItem) itemNode() {}
