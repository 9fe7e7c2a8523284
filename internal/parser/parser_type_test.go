package parser

import (
	"testing"

	"github.com/tsubalang/tsubac/internal/ast"
)

// parseTypeSrc parses typeSrc as a function parameter annotation — unlike a
// `let` binding, a parameter type is never erased (the `mut<T>` erasure to
// LetStmt.Mut only happens in parseLetStmt), so this exercises parseType
// directly for every marker-type form including mut<T> itself.
func parseTypeSrc(t *testing.T, typeSrc string) ast.Type {
	t.Helper()
	wrapped := "function f(x: " + typeSrc + "): void {}"
	f := parseFileOK(t, wrapped)
	fn := f.Stmts[0].(*ast.FuncDecl)
	return fn.Params[0].Type
}

func TestParseNamedType(t *testing.T) {
	typ := parseTypeSrc(t, "i32").(*ast.NamedType)
	if typ.Name != "i32" {
		t.Fatalf("got %#v", typ)
	}
}

func TestParseGenericNamedType(t *testing.T) {
	typ := parseTypeSrc(t, "Vec<i32>").(*ast.NamedType)
	if typ.Name != "Vec" || len(typ.Args) != 1 {
		t.Fatalf("got %#v", typ)
	}
	elem, ok := typ.Args[0].(*ast.NamedType)
	if !ok || elem.Name != "i32" {
		t.Fatalf("arg 0 = %#v", typ.Args[0])
	}
}

func TestParseArrayType(t *testing.T) {
	typ := parseTypeSrc(t, "i32[]").(*ast.ArrayType)
	elem, ok := typ.Elem.(*ast.NamedType)
	if !ok || elem.Name != "i32" {
		t.Fatalf("got %#v", typ.Elem)
	}
}

func TestParseRefType(t *testing.T) {
	typ := parseTypeSrc(t, "ref<i32>").(*ast.RefType)
	if typ.Kind != ast.RefShared {
		t.Fatalf("kind = %v", typ.Kind)
	}
}

func TestParseMutrefType(t *testing.T) {
	typ := parseTypeSrc(t, "mutref<i32>").(*ast.RefType)
	if typ.Kind != ast.RefMut {
		t.Fatalf("kind = %v", typ.Kind)
	}
}

func TestParseRefLifetimeType(t *testing.T) {
	typ := parseTypeSrc(t, `refLt<"a", i32>`).(*ast.RefType)
	if typ.Kind != ast.RefShared || typ.Lifetime != "a" {
		t.Fatalf("got %#v", typ)
	}
}

func TestParseMutrefLifetimeType(t *testing.T) {
	typ := parseTypeSrc(t, `mutrefLt<"a", i32>`).(*ast.RefType)
	if typ.Kind != ast.RefMut || typ.Lifetime != "a" {
		t.Fatalf("got %#v", typ)
	}
}

func TestParseMutType(t *testing.T) {
	typ := parseTypeSrc(t, "mut<i32>").(*ast.MutType)
	elem, ok := typ.Elem.(*ast.NamedType)
	if !ok || elem.Name != "i32" {
		t.Fatalf("elem = %#v", typ.Elem)
	}
}

func TestParseArrayNType(t *testing.T) {
	typ := parseTypeSrc(t, "ArrayN<i32, 4>").(*ast.ArrayNType)
	if typ.N != 4 {
		t.Fatalf("N = %d", typ.N)
	}
	elem, ok := typ.Elem.(*ast.NamedType)
	if !ok || elem.Name != "i32" {
		t.Fatalf("elem = %#v", typ.Elem)
	}
}

func TestParseFuncType(t *testing.T) {
	typ := parseTypeSrc(t, "(i32, i32) => i32").(*ast.FuncType)
	if len(typ.Params) != 2 {
		t.Fatalf("got %d params", len(typ.Params))
	}
	result, ok := typ.Result.(*ast.NamedType)
	if !ok || result.Name != "i32" {
		t.Fatalf("result = %#v", typ.Result)
	}
}

func TestParseVoidType(t *testing.T) {
	typ := parseTypeSrc(t, "void").(*ast.NamedType)
	if typ.Name != "void" {
		t.Fatalf("got %#v", typ)
	}
}

func TestParseNestedRefOfArray(t *testing.T) {
	typ := parseTypeSrc(t, "ref<i32[]>").(*ast.RefType)
	arr, ok := typ.Elem.(*ast.ArrayType)
	if !ok {
		t.Fatalf("elem = %#v", typ.Elem)
	}
	elem, ok := arr.Elem.(*ast.NamedType)
	if !ok || elem.Name != "i32" {
		t.Fatalf("array elem = %#v", arr.Elem)
	}
}
