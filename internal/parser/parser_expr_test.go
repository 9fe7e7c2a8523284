package parser

import (
	"testing"

	"github.com/tsubalang/tsubac/internal/ast"
	"github.com/tsubalang/tsubac/internal/errors"
	"github.com/tsubalang/tsubac/internal/lexer"
)

// parseExprSrc wraps src in a minimal function body and returns the parsed
// return-statement's expression, so tests can exercise parseExpression
// through the public entry point rather than reaching into Parser directly.
func parseExprSrc(t *testing.T, src string) ast.Expr {
	t.Helper()
	wrapped := "function main(): void { return " + src + "; }"
	f, err := ParseFile([]byte(wrapped), "test.ts")
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	fn, ok := f.Stmts[0].(*ast.FuncDecl)
	if !ok {
		t.Fatalf("expected FuncDecl, got %T", f.Stmts[0])
	}
	ret, ok := fn.Body[0].(*ast.ReturnStmt)
	if !ok {
		t.Fatalf("expected ReturnStmt, got %T", fn.Body[0])
	}
	return ret.Value
}

func TestParseLiterals(t *testing.T) {
	if e := parseExprSrc(t, "42"); e.(*ast.IntLit).Value != 42 {
		t.Fatalf("got %v", e)
	}
	if e := parseExprSrc(t, "3.5"); e.(*ast.FloatLit).Value != 3.5 {
		t.Fatalf("got %v", e)
	}
	if e := parseExprSrc(t, `"hi"`); e.(*ast.StringLit).Value != "hi" {
		t.Fatalf("got %v", e)
	}
	if e := parseExprSrc(t, "true"); e.(*ast.BoolLit).Value != true {
		t.Fatalf("got %v", e)
	}
	if _, ok := parseExprSrc(t, "this").(*ast.ThisExpr); !ok {
		t.Fatalf("expected ThisExpr")
	}
}

func TestParseBinaryPrecedence(t *testing.T) {
	// 1 + 2 * 3 must parse as 1 + (2 * 3).
	e := parseExprSrc(t, "1 + 2 * 3").(*ast.BinaryExpr)
	if e.Op != "+" {
		t.Fatalf("top op = %q, want +", e.Op)
	}
	rhs, ok := e.Right.(*ast.BinaryExpr)
	if !ok || rhs.Op != "*" {
		t.Fatalf("right side = %#v, want a * binary", e.Right)
	}
}

func TestParseBinaryLeftAssociative(t *testing.T) {
	// 1 - 2 - 3 must parse as (1 - 2) - 3.
	e := parseExprSrc(t, "1 - 2 - 3").(*ast.BinaryExpr)
	if e.Op != "-" {
		t.Fatalf("top op = %q", e.Op)
	}
	lhs, ok := e.Left.(*ast.BinaryExpr)
	if !ok || lhs.Op != "-" {
		t.Fatalf("left side = %#v, want a - binary", e.Left)
	}
	if _, ok := e.Right.(*ast.IntLit); !ok {
		t.Fatalf("right side = %#v, want IntLit", e.Right)
	}
}

func TestParseStrictEqualityNormalized(t *testing.T) {
	e := parseExprSrc(t, "1 === 2").(*ast.BinaryExpr)
	if e.Op != "==" {
		t.Fatalf("op = %q, want normalized ==", e.Op)
	}
	e2 := parseExprSrc(t, "1 !== 2").(*ast.BinaryExpr)
	if e2.Op != "!=" {
		t.Fatalf("op = %q, want normalized !=", e2.Op)
	}
}

func TestParseCallExpr(t *testing.T) {
	e := parseExprSrc(t, "foo(1, 2, 3)").(*ast.CallExpr)
	if len(e.Args) != 3 {
		t.Fatalf("got %d args", len(e.Args))
	}
	if _, ok := e.Callee.(*ast.Ident); !ok {
		t.Fatalf("callee = %#v", e.Callee)
	}
}

func TestParseMemberAndIndexChain(t *testing.T) {
	e := parseExprSrc(t, "a.b[0].c").(*ast.MemberExpr)
	if e.Prop != "c" {
		t.Fatalf("outer prop = %q", e.Prop)
	}
	idx, ok := e.Obj.(*ast.IndexExpr)
	if !ok {
		t.Fatalf("expected IndexExpr, got %#v", e.Obj)
	}
	inner, ok := idx.Obj.(*ast.MemberExpr)
	if !ok || inner.Prop != "b" {
		t.Fatalf("inner member = %#v", idx.Obj)
	}
}

func TestParseIndexThenMore(t *testing.T) {
	// Confirms parseIndexExpr leaves curToken correctly positioned so a
	// trailing call still parses after the index.
	e := parseExprSrc(t, "a[0](1)").(*ast.CallExpr)
	idx, ok := e.Callee.(*ast.IndexExpr)
	if !ok {
		t.Fatalf("callee = %#v", e.Callee)
	}
	if _, ok := idx.Index.(*ast.IntLit); !ok {
		t.Fatalf("index = %#v", idx.Index)
	}
}

func TestParseTupleLiteral(t *testing.T) {
	e := parseExprSrc(t, "(1, 2, 3)").(*ast.TupleLit)
	if len(e.Elems) != 3 {
		t.Fatalf("got %d elems", len(e.Elems))
	}
}

func TestParseUnitTupleLiteral(t *testing.T) {
	e := parseExprSrc(t, "()").(*ast.TupleLit)
	if len(e.Elems) != 0 {
		t.Fatalf("got %d elems, want 0", len(e.Elems))
	}
}

func TestParseGroupedExprNotTuple(t *testing.T) {
	// A single parenthesized expression is not a tuple: it must unwrap to
	// the inner expression value itself.
	e := parseExprSrc(t, "(1 + 2)")
	bin, ok := e.(*ast.BinaryExpr)
	if !ok || bin.Op != "+" {
		t.Fatalf("got %#v, want unwrapped binary", e)
	}
}

func TestParseArrowNoParams(t *testing.T) {
	e := parseExprSrc(t, "() => 1").(*ast.ArrowExpr)
	if len(e.Params) != 0 {
		t.Fatalf("got %d params", len(e.Params))
	}
	if _, ok := e.Body.(*ast.IntLit); !ok {
		t.Fatalf("body = %#v", e.Body)
	}
}

func TestParseArrowTypedParams(t *testing.T) {
	e := parseExprSrc(t, "(x: i32, y: i32) => x").(*ast.ArrowExpr)
	if len(e.Params) != 2 {
		t.Fatalf("got %d params", len(e.Params))
	}
	if e.Params[0].Name != "x" || e.Params[0].Type == nil {
		t.Fatalf("param 0 = %#v", e.Params[0])
	}
}

func TestParseArrowAfterCallDisambiguation(t *testing.T) {
	// A call immediately followed by more expression forms must not be
	// confused with an arrow parameter list.
	e := parseExprSrc(t, "foo(1, 2)").(*ast.CallExpr)
	if len(e.Args) != 2 {
		t.Fatalf("got %d args", len(e.Args))
	}
}

func TestParseMarkerCallQuestion(t *testing.T) {
	e := parseExprSrc(t, "q(foo())").(*ast.MarkerExpr)
	if e.Kind != ast.MarkerQuestion {
		t.Fatalf("kind = %v", e.Kind)
	}
}

func TestParseMarkerCallOkBare(t *testing.T) {
	e := parseExprSrc(t, "Ok()").(*ast.MarkerExpr)
	if e.Kind != ast.MarkerOk || e.Arg != nil {
		t.Fatalf("got %#v", e)
	}
}

func TestParseMarkerCallUnsafe(t *testing.T) {
	e := parseExprSrc(t, "unsafe(() => 1)").(*ast.MarkerExpr)
	if e.Kind != ast.MarkerUnsafe {
		t.Fatalf("kind = %v", e.Kind)
	}
}

func TestParseMarkerCallMove(t *testing.T) {
	e := parseExprSrc(t, "move(() => x)").(*ast.ArrowExpr)
	if !e.Move {
		t.Fatalf("expected Move = true")
	}
}

func TestParseUnsafeBlockArrowRejected(t *testing.T) {
	_, err := ParseFile([]byte("function main(): void { return unsafe(() => { return 1; }); }"), "test.ts")
	if err == nil {
		t.Fatalf("expected a rejection for a block-bodied unsafe arrow")
	}
	ce, ok := errors.As(err)
	if !ok || ce.Code != errors.ExpBlockArrowRejected {
		t.Fatalf("got %v, want ExpBlockArrowRejected", err)
	}
}

func TestParseArrayLiteral(t *testing.T) {
	e := parseExprSrc(t, "[1, 2, 3]").(*ast.ArrayLit)
	if len(e.Elems) != 3 {
		t.Fatalf("got %d elems", len(e.Elems))
	}
}

func TestParseObjectLiteralAsConst(t *testing.T) {
	e := parseExprSrc(t, `{ x: 1, y: 2 } as const`).(*ast.ObjectLit)
	if !e.AsConst {
		t.Fatalf("expected AsConst = true")
	}
	if len(e.Fields) != 2 || e.Fields[0].Name != "x" {
		t.Fatalf("fields = %#v", e.Fields)
	}
}

func TestParseObjectLiteralFieldCast(t *testing.T) {
	e := parseExprSrc(t, `{ x: 1 as i64 }`).(*ast.ObjectLit)
	if e.Fields[0].Cast == nil {
		t.Fatalf("expected a Cast type on field x")
	}
}

func TestParseAsExprChain(t *testing.T) {
	e := parseExprSrc(t, "x as i32").(*ast.AsExpr)
	if _, ok := e.Value.(*ast.Ident); !ok {
		t.Fatalf("value = %#v", e.Value)
	}
	named, ok := e.Type.(*ast.NamedType)
	if !ok || named.Name != "i32" {
		t.Fatalf("type = %#v", e.Type)
	}
}

func TestParseNewExpr(t *testing.T) {
	e := parseExprSrc(t, "new Foo(1, 2)").(*ast.NewExpr)
	if e.ClassName != "Foo" || len(e.Args) != 2 {
		t.Fatalf("got %#v", e)
	}
}

func TestParseTemplateLiteral(t *testing.T) {
	wrapped := "function main(): void { return `sum is ${a + b}`; }"
	f, err := ParseFile([]byte(wrapped), "test.ts")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	fn := f.Stmts[0].(*ast.FuncDecl)
	ret := fn.Body[0].(*ast.ReturnStmt)
	tpl, ok := ret.Value.(*ast.TemplateLit)
	if !ok {
		t.Fatalf("got %#v", ret.Value)
	}
	if len(tpl.Exprs) != 1 {
		t.Fatalf("got %d interpolations", len(tpl.Exprs))
	}
}

func TestParseUnaryAndVoid(t *testing.T) {
	if u := parseExprSrc(t, "-x").(*ast.UnaryExpr); u.Op != "-" {
		t.Fatalf("op = %q", u.Op)
	}
	if v := parseExprSrc(t, "void foo()"); v.(*ast.VoidExpr).X == nil {
		t.Fatalf("expected a VoidExpr wrapping an expr")
	}
}

func TestParseAwaitExpr(t *testing.T) {
	e := parseExprSrc(t, "await foo()").(*ast.AwaitExpr)
	if _, ok := e.X.(*ast.CallExpr); !ok {
		t.Fatalf("x = %#v", e.X)
	}
}

func TestParseUnsupportedExprReportsCode(t *testing.T) {
	_, err := ParseFile([]byte("function main(): void { return ,; }"), "test.ts")
	if err == nil {
		t.Fatalf("expected an error")
	}
	ce, ok := errors.As(err)
	if !ok || ce.Code != errors.ExpUnsupportedExpr {
		t.Fatalf("got %v", err)
	}
}

func TestParseUndefinedLiteral(t *testing.T) {
	if _, ok := parseExprSrc(t, "undefined").(*ast.UndefinedLit); !ok {
		t.Fatalf("expected UndefinedLit")
	}
}

// Sanity check that the lexer's token set lines up with what these tests
// assume (no VAR/OF keyword tokens exist in this grammar).
func TestNoDedicatedVarOrOfTokens(t *testing.T) {
	l := lexer.New("var of", "test.ts")
	tok := l.NextToken()
	if tok.Type != lexer.IDENT || tok.Literal != "var" {
		t.Fatalf("got %v %q, want IDENT \"var\"", tok.Type, tok.Literal)
	}
	tok = l.NextToken()
	if tok.Type != lexer.IDENT || tok.Literal != "of" {
		t.Fatalf("got %v %q, want IDENT \"of\"", tok.Type, tok.Literal)
	}
}
