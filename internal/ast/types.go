package ast

import (
	"fmt"
	"strings"

	"github.com/tsubalang/tsubac/internal/span"
)

// NamedType is a bare or generic-instantiated nominal type reference, e.g.
// `number`, `string`, `MyClass`, or `Array<Foo>`. Primitive source-language
// type names (number, string, boolean, void) are represented as a NamedType
// with no Args and resolved to target primitives in internal/typelower.
type NamedType struct {
	Sp   span.Span
	Name string
	Args []Type // generic type arguments, nil for a non-generic reference
}

func (t *NamedType) Span() span.Span { return t.Sp }
func (t *NamedType) String() string {
	if len(t.Args) == 0 {
		return t.Name
	}
	parts := make([]string, len(t.Args))
	for i, a := range t.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s<%s>", t.Name, strings.Join(parts, ", "))
}
func (t *NamedType) typeNode() {}

// RefKind distinguishes the two borrow annotations the accepted subset
// recognizes, with or without an explicit lifetime parameter.
type RefKind int

const (
	RefShared RefKind = iota
	RefMut
)

// RefType is `ref<T>` / `mutref<T>`, optionally `refLt<"a", T>` / `mutrefLt<"a", T>`.
// The explicit marker-type spelling (rather than a `&`/`&mut` prefix) is what
// lets the parser recognize borrows without needing borrow-aware parsing.
type RefType struct {
	Sp       span.Span
	Kind     RefKind
	Lifetime string // empty unless the Lt-suffixed form was used
	Elem     Type
}

func (t *RefType) Span() span.Span { return t.Sp }
func (t *RefType) String() string {
	sigil := "ref"
	if t.Kind == RefMut {
		sigil = "mutref"
	}
	if t.Lifetime != "" {
		return fmt.Sprintf("%sLt<'%s, %s>", sigil, t.Lifetime, t.Elem)
	}
	return fmt.Sprintf("%s<%s>", sigil, t.Elem)
}
func (t *RefType) typeNode() {}

// MutType is `mut<T>`, the in-place-mutable local marker (distinct from
// RefType: it tags a LetStmt binding, not a parameter or field).
type MutType struct {
	Sp   span.Span
	Elem Type
}

func (t *MutType) Span() span.Span { return t.Sp }
func (t *MutType) String() string  { return fmt.Sprintf("mut<%s>", t.Elem) }
func (t *MutType) typeNode()       {}

// TupleType is a type-level tuple `(T1, T2, ...)`.
type TupleType struct {
	Sp    span.Span
	Elems []Type
}

func (t *TupleType) Span() span.Span { return t.Sp }
func (t *TupleType) String() string {
	parts := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
func (t *TupleType) typeNode() {}

// ArrayType is `T[]`, a dynamically sized array/slice.
type ArrayType struct {
	Sp   span.Span
	Elem Type
}

func (t *ArrayType) Span() span.Span { return t.Sp }
func (t *ArrayType) String() string  { return fmt.Sprintf("%s[]", t.Elem) }
func (t *ArrayType) typeNode()       {}

// ArrayNType is `ArrayN<T, N>`, a fixed-length array with a literal integer
// length, used wherever the target's fixed-size array type is required
// (e.g. kernel buffer parameters).
type ArrayNType struct {
	Sp   span.Span
	Elem Type
	N    int64
}

func (t *ArrayNType) Span() span.Span { return t.Sp }
func (t *ArrayNType) String() string  { return fmt.Sprintf("ArrayN<%s, %d>", t.Elem, t.N) }
func (t *ArrayNType) typeNode()       {}

// FuncType is a function-type annotation `(P1, P2) => R`, used for callback
// parameters (e.g. a comparator passed to a sort helper).
type FuncType struct {
	Sp      span.Span
	Params  []Type
	Result  Type
}

func (t *FuncType) Span() span.Span { return t.Sp }
func (t *FuncType) String() string {
	parts := make([]string, len(t.Params))
	for i, p := range t.Params {
		parts[i] = p.String()
	}
	return fmt.Sprintf("(%s) => %s", strings.Join(parts, ", "), t.Result)
}
func (t *FuncType) typeNode() {}
