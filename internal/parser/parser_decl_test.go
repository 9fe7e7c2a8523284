package parser

import (
	"testing"

	"github.com/tsubalang/tsubac/internal/ast"
	"github.com/tsubalang/tsubac/internal/errors"
)

func parseFileOK(t *testing.T, src string) *ast.File {
	t.Helper()
	f, err := ParseFile([]byte(src), "test.ts")
	if err != nil {
		t.Fatalf("parse:\n%s\nerr: %v", src, err)
	}
	return f
}

func TestParseImportSideEffectOnly(t *testing.T) {
	f := parseFileOK(t, `import "./setup";`)
	d := f.Stmts[0].(*ast.ImportDecl)
	if !d.SideEffectOnly || d.Specifier != "./setup" {
		t.Fatalf("got %#v", d)
	}
}

func TestParseImportNamed(t *testing.T) {
	f := parseFileOK(t, `import { a, b as c } from "./mod";`)
	d := f.Stmts[0].(*ast.ImportDecl)
	if d.Specifier != "./mod" || len(d.Names) != 2 {
		t.Fatalf("got %#v", d)
	}
	if d.Names[1].Name != "b" || d.Names[1].Alias != "c" {
		t.Fatalf("names[1] = %#v", d.Names[1])
	}
}

func TestParseImportNamespace(t *testing.T) {
	f := parseFileOK(t, `import * as ns from "./mod";`)
	d := f.Stmts[0].(*ast.ImportDecl)
	if !d.IsNamespace || d.Names[0].Name != "ns" {
		t.Fatalf("got %#v", d)
	}
}

func TestParseImportDefault(t *testing.T) {
	f := parseFileOK(t, `import Foo from "./mod";`)
	d := f.Stmts[0].(*ast.ImportDecl)
	if !d.IsDefault || d.Names[0].Name != "Foo" {
		t.Fatalf("got %#v", d)
	}
}

func TestParseExportEmpty(t *testing.T) {
	f := parseFileOK(t, `export {};`)
	if _, ok := f.Stmts[0].(*ast.ExportEmptyDecl); !ok {
		t.Fatalf("got %#v", f.Stmts[0])
	}
}

func TestParseExportFunction(t *testing.T) {
	f := parseFileOK(t, `export function add(x: i32, y: i32): i32 { return x + y; }`)
	fn, ok := f.Stmts[0].(*ast.FuncDecl)
	if !ok || fn.Name != "add" {
		t.Fatalf("got %#v", f.Stmts[0])
	}
}

func TestParseTypeAliasPlain(t *testing.T) {
	f := parseFileOK(t, `type Meters = f64;`)
	d := f.Stmts[0].(*ast.TypeAliasDecl)
	named, ok := d.Body.(*ast.NamedType)
	if !ok || named.Name != "f64" {
		t.Fatalf("got %#v", d.Body)
	}
}

func TestParseTypeAliasUnionSingleVariant(t *testing.T) {
	f := parseFileOK(t, `type Circle = { kind: "circle", radius: f64 };`)
	d := f.Stmts[0].(*ast.TypeAliasDecl)
	if len(d.Union) != 1 {
		t.Fatalf("got %#v", d.Union)
	}
	if d.Union[0].Kind != "circle" || len(d.Union[0].Fields) != 1 {
		t.Fatalf("variant 0 = %#v", d.Union[0])
	}
}

func TestParseTypeAliasUnionMultiVariant(t *testing.T) {
	f := parseFileOK(t, `
		type Shape =
			{ kind: "circle", radius: f64 }
			| { kind: "square", side: f64 };
	`)
	d := f.Stmts[0].(*ast.TypeAliasDecl)
	if len(d.Union) != 2 {
		t.Fatalf("got %d variants", len(d.Union))
	}
	if d.Union[0].Kind != "circle" || d.Union[1].Kind != "square" {
		t.Fatalf("got %#v", d.Union)
	}
}

func TestParseTypeAliasGeneric(t *testing.T) {
	f := parseFileOK(t, `type Box<T> = T;`)
	d := f.Stmts[0].(*ast.TypeAliasDecl)
	if len(d.Generics) != 1 || d.Generics[0].Name != "T" {
		t.Fatalf("got %#v", d.Generics)
	}
}

func TestParseInterfaceWithExtends(t *testing.T) {
	f := parseFileOK(t, `
		interface Shape extends Named {
			area(): f64;
			label?(): string;
		}
	`)
	d := f.Stmts[0].(*ast.InterfaceDecl)
	if len(d.Extends) != 1 || d.Extends[0] != "Named" {
		t.Fatalf("extends = %#v", d.Extends)
	}
	if len(d.Methods) != 2 {
		t.Fatalf("got %d methods", len(d.Methods))
	}
	if !d.Methods[1].Optional {
		t.Fatalf("expected method 1 to be optional")
	}
}

func TestParseClassWithCtorFieldsAndMethods(t *testing.T) {
	f := parseFileOK(t, `
		class Point implements Shape {
			x: f64;
			y: f64;

			constructor(x: f64, y: f64) {
				this.x = x;
				this.y = y;
			}

			area(this: ref<Self>): f64 {
				return 0.0;
			}

			static origin(): Point {
				return new Point(0.0, 0.0);
			}
		}
	`)
	d := f.Stmts[0].(*ast.ClassDecl)
	if d.Name != "Point" || len(d.Implements) != 1 || d.Implements[0] != "Shape" {
		t.Fatalf("got %#v", d)
	}
	if len(d.Fields) != 2 {
		t.Fatalf("got %d fields", len(d.Fields))
	}
	if d.Ctor == nil || len(d.Ctor.Params) != 2 {
		t.Fatalf("ctor = %#v", d.Ctor)
	}
	if len(d.Methods) != 2 {
		t.Fatalf("got %d methods", len(d.Methods))
	}
	area := d.Methods[0]
	if area.This == nil || area.This.Mut || area.This.Raw {
		t.Fatalf("area this-param = %#v", area.This)
	}
	originMethod := d.Methods[1]
	if !originMethod.Static || originMethod.This != nil {
		t.Fatalf("origin method = %#v", originMethod)
	}
}

func TestParseClassMethodMutRefThis(t *testing.T) {
	f := parseFileOK(t, `
		class Counter {
			n: i32;
			constructor(n: i32) { this.n = n; }
			increment(this: mutref<Self>): void {
				this.n = this.n + 1;
			}
		}
	`)
	d := f.Stmts[0].(*ast.ClassDecl)
	inc := d.Methods[0]
	if inc.This == nil || !inc.This.Mut {
		t.Fatalf("got %#v", inc.This)
	}
}

func TestParseClassBadThisTyping(t *testing.T) {
	f := parseFileOK(t, `
		class Bad {
			constructor() {}
			oops(this): void {}
		}
	`)
	d := f.Stmts[0].(*ast.ClassDecl)
	m := d.Methods[0]
	if m.This == nil || !m.This.Raw {
		t.Fatalf("expected a Raw ThisParam, got %#v", m.This)
	}
}

func TestParseFunctionExternalDeclaration(t *testing.T) {
	f := parseFileOK(t, `function syscall(n: i32): i32;`)
	fn := f.Stmts[0].(*ast.FuncDecl)
	if !fn.External || fn.Body != nil {
		t.Fatalf("got %#v", fn)
	}
}

func TestParseFunctionGenerics(t *testing.T) {
	f := parseFileOK(t, `function identity<T>(x: T): T { return x; }`)
	fn := f.Stmts[0].(*ast.FuncDecl)
	if len(fn.Generics) != 1 || fn.Generics[0].Name != "T" {
		t.Fatalf("got %#v", fn.Generics)
	}
}

func TestParseAsyncFunction(t *testing.T) {
	f := parseFileOK(t, `async function fetchIt(): void {}`)
	fn := f.Stmts[0].(*ast.FuncDecl)
	if !fn.Async {
		t.Fatalf("expected Async = true")
	}
}

func TestParseConstDecl(t *testing.T) {
	f := parseFileOK(t, `const MAX_RETRIES: i32 = 3;`)
	d := f.Stmts[0].(*ast.ConstDecl)
	if d.Name != "MAX_RETRIES" {
		t.Fatalf("got %#v", d)
	}
	if _, ok := d.Value.(*ast.IntLit); !ok {
		t.Fatalf("value = %#v", d.Value)
	}
}

func TestParseAnnotateStmt(t *testing.T) {
	f := parseFileOK(t, "annotate(Point, attr(derive, `Debug, Clone`));")
	d := f.Stmts[0].(*ast.AnnotateStmt)
	if d.Target != "Point" || d.Name != "derive" || d.Tokens != "Debug, Clone" {
		t.Fatalf("got %#v", d)
	}
}

func TestParseParamOptionalAndDefault(t *testing.T) {
	f := parseFileOK(t, `function f(a: i32, b?: i32, c: i32 = 1): void {}`)
	fn := f.Stmts[0].(*ast.FuncDecl)
	if len(fn.Params) != 3 {
		t.Fatalf("got %d params", len(fn.Params))
	}
	if !fn.Params[1].Optional {
		t.Fatalf("param 1 should be optional")
	}
	if !fn.Params[2].HasDefault {
		t.Fatalf("param 2 should have a default")
	}
}

func TestParseParamDestructured(t *testing.T) {
	f := parseFileOK(t, `function f({ x, y }: Point): void {}`)
	fn := f.Stmts[0].(*ast.FuncDecl)
	if !fn.Params[0].Destructuring {
		t.Fatalf("expected a destructured param, got %#v", fn.Params[0])
	}
}

func TestParseUnsupportedTopLevelReportsError(t *testing.T) {
	_, err := ParseFile([]byte(`42;`), "test.ts")
	if err == nil {
		t.Fatalf("expected an error")
	}
	ce, ok := errors.As(err)
	if !ok || ce.Code != errors.FniUnsupportedTopLevel {
		t.Fatalf("got %v", err)
	}
}

func TestParseMultipleTopLevelDecls(t *testing.T) {
	f := parseFileOK(t, `
		import { helper } from "./util";

		type Result = { kind: "ok", value: i32 } | { kind: "err", message: string };

		interface Shape {
			area(): f64;
		}

		class Square implements Shape {
			side: f64;
			constructor(side: f64) { this.side = side; }
			area(this: ref<Self>): f64 { return this.side; }
		}

		function helperWrap(x: i32): i32 {
			return helper(x);
		}

		const LIMIT: i32 = 10;
	`)
	if len(f.Stmts) != 6 {
		t.Fatalf("got %d top-level stmts, want 6: %#v", len(f.Stmts), f.Stmts)
	}
}
