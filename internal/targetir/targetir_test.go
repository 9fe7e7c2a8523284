package targetir

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tsubalang/tsubac/internal/span"
)

func TestItemMarkersCompile(t *testing.T) {
	var items []Item = []Item{
		&UseItem{base: base{Sp: span.New("a.rs", 0, 1)}, Path: "std::cmp::max"},
		&StructItem{Name: "Point", Fields: []Field{{Name: "x", Type: &NamedType{Name: "f64"}}}},
		&EnumItem{Name: "Shape", Variants: []EnumVariant{{Name: "Circle"}}},
		&FnItem{Name: "main", Pub: true},
		&ImplItem{Type: "Point"},
		&TraitItem{Name: "Drawable"},
		&TypeAliasItem{Name: "Alias", Target: &UnitType{}},
		&ConstItem{Name: "N", Type: &NamedType{Name: "i64"}, Value: &IntLit{Value: 1}},
		&StaticItem{Name: "STATE", Type: &NamedType{Name: "bool"}},
		&RawItem{Text: "// raw"},
	}
	require.Len(t, items, 10)
}

func TestExprMarkersCompile(t *testing.T) {
	var exprs []Expr = []Expr{
		&Ident{Name: "x"},
		&IntLit{Value: 1},
		&FloatLit{Value: 1.5},
		&StringLit{Value: "s"},
		&BoolLit{Value: true},
		&UnitLit{},
		&TupleLit{},
		&ArrayLit{},
		&StructLit{TypeName: "Point"},
		&BinaryExpr{Op: "+"},
		&UnaryExpr{Op: "-"},
		&RefExpr{},
		&CallExpr{},
		&MethodCallExpr{},
		&FieldExpr{},
		&IndexExpr{},
		&PathExpr{},
		&ClosureExpr{},
		&TryExpr{},
		&AwaitExpr{},
		&AsExpr{},
		&FormatExpr{},
		&BlockExpr{},
		&MatchExpr{},
	}
	require.Len(t, exprs, 24)
}

func TestStmtMarkersCompile(t *testing.T) {
	var stmts []Stmt = []Stmt{
		&LetStmt{Name: "x"},
		&ExprStmt{},
		&ReturnStmt{},
		&BreakStmt{},
		&ContinueStmt{},
		&IfStmt{},
		&WhileStmt{},
		&MatchStmt{},
		&BlockStmt{},
		&RawStmt{Text: "// raw"},
	}
	require.Len(t, stmts, 10)
}

func TestTypeMarkersCompile(t *testing.T) {
	var types []Type = []Type{
		&NamedType{Name: "i64"},
		&RefType{},
		&TupleType{},
		&SliceType{},
		&ArrayType{},
		&UnitType{},
		&FuncType{},
	}
	require.Len(t, types, 7)
}
