package targetir

import "github.com/tsubalang/tsubac/internal/span"

// NamedType is a nominal type reference, `Name` or `Name<Args>`.
type NamedType struct {
	Sp   span.Span
	Name string
	Args []Type
}

func (t *NamedType) Span() span.Span { return t.Sp }
func (t *NamedType) typeNode()       {}

// RefType is `&T` or `&mut T`, optionally with an explicit lifetime.
type RefType struct {
	Sp       span.Span
	Mut      bool
	Lifetime string
	Elem     Type
}

func (t *RefType) Span() span.Span { return t.Sp }
func (t *RefType) typeNode()       {}

// TupleType is `(T1, T2, ...)`.
type TupleType struct {
	Sp    span.Span
	Elems []Type
}

func (t *TupleType) Span() span.Span { return t.Sp }
func (t *TupleType) typeNode()       {}

// SliceType is `Vec<T>` (the dynamically sized array mapping, spec §4.4).
type SliceType struct {
	Sp   span.Span
	Elem Type
}

func (t *SliceType) Span() span.Span { return t.Sp }
func (t *SliceType) typeNode()       {}

// ArrayType is the fixed-length `[T; N]`.
type ArrayType struct {
	Sp   span.Span
	Elem Type
	N    int64
}

func (t *ArrayType) Span() span.Span { return t.Sp }
func (t *ArrayType) typeNode()       {}

// UnitType is `()`.
type UnitType struct{ Sp span.Span }

func (t *UnitType) Span() span.Span { return t.Sp }
func (t *UnitType) typeNode()       {}

// FuncType is a `Box<dyn Fn(P1, P2) -> R>` style callback type.
type FuncType struct {
	Sp     span.Span
	Params []Type
	Result Type
}

func (t *FuncType) Span() span.Span { return t.Sp }
func (t *FuncType) typeNode()       {}
