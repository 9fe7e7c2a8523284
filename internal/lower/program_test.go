package lower

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tsubalang/tsubac/internal/ast"
	"github.com/tsubalang/tsubac/internal/errors"
)

func requireCode(t *testing.T, err error, code errors.Code) {
	t.Helper()
	require.Error(t, err)
	ce, ok := errors.As(err)
	require.True(t, ok)
	require.Equal(t, code, ce.Code)
}

func voidMain() *ast.FuncDecl {
	return &ast.FuncDecl{Name: "main", ReturnType: &ast.NamedType{Name: "void"}, Body: []ast.Stmt{}}
}

func TestCollectBuildsProgram(t *testing.T) {
	iface := &ast.InterfaceDecl{Name: "Shape"}
	cls := &ast.ClassDecl{Name: "Circle"}
	fn := &ast.FuncDecl{Name: "helper", Body: []ast.Stmt{}}
	union := &ast.TypeAliasDecl{Name: "Event", Union: []ast.ObjectTypeLit{{Kind: "tick"}}}

	file := &ast.File{Path: "src/main.tsu", Stmts: []ast.Stmt{iface, cls, fn, union, voidMain()}}
	prog, err := Collect([]*ast.File{file})
	require.NoError(t, err)
	require.Same(t, iface, prog.Interfaces["Shape"])
	require.Same(t, cls, prog.Classes["Circle"])
	require.Same(t, fn, prog.Functions["helper"])
	require.Same(t, union, prog.Unions["Event"])
}

func TestCollectRejectsDuplicateNames(t *testing.T) {
	a := &ast.ClassDecl{Name: "Dup"}
	b := &ast.InterfaceDecl{Name: "Dup"}
	file := &ast.File{Path: "src/main.tsu", Stmts: []ast.Stmt{a, b, voidMain()}}
	_, err := Collect([]*ast.File{file})
	requireCode(t, err, errors.FniDuplicateHelperName)
}

func TestCollectRejectsMissingMain(t *testing.T) {
	file := &ast.File{Path: "src/main.tsu", Stmts: []ast.Stmt{}}
	_, err := Collect([]*ast.File{file})
	requireCode(t, err, errors.ExpMissingMain)
}

func TestCollectRejectsDuplicateMain(t *testing.T) {
	file := &ast.File{Path: "src/main.tsu", Stmts: []ast.Stmt{voidMain(), voidMain()}}
	_, err := Collect([]*ast.File{file})
	requireCode(t, err, errors.ExpDuplicateMain)
}

func TestCollectRejectsMainWithParams(t *testing.T) {
	main := &ast.FuncDecl{Name: "main", Params: []*ast.Param{{Name: "x", Type: &ast.NamedType{Name: "number"}}}, Body: []ast.Stmt{}}
	file := &ast.File{Path: "src/main.tsu", Stmts: []ast.Stmt{main}}
	_, err := Collect([]*ast.File{file})
	requireCode(t, err, errors.ExpBadMainSignature)
}

func TestCollectRejectsBadMainReturn(t *testing.T) {
	main := &ast.FuncDecl{Name: "main", ReturnType: &ast.NamedType{Name: "number"}, Body: []ast.Stmt{}}
	file := &ast.File{Path: "src/main.tsu", Stmts: []ast.Stmt{main}}
	_, err := Collect([]*ast.File{file})
	requireCode(t, err, errors.ExpBadMainSignature)
}

func TestCollectAcceptsResultVoidMain(t *testing.T) {
	main := &ast.FuncDecl{
		Name: "main",
		ReturnType: &ast.NamedType{Name: "Result", Args: []ast.Type{
			&ast.NamedType{Name: "void"},
			&ast.NamedType{Name: "string"},
		}},
		Body: []ast.Stmt{},
	}
	file := &ast.File{Path: "src/main.tsu", Stmts: []ast.Stmt{main}}
	prog, err := Collect([]*ast.File{file})
	require.NoError(t, err)
	require.Same(t, main, prog.Functions["main"])
}

func TestCollectRejectsResultWithNonVoidOk(t *testing.T) {
	main := &ast.FuncDecl{
		Name: "main",
		ReturnType: &ast.NamedType{Name: "Result", Args: []ast.Type{
			&ast.NamedType{Name: "number"},
			&ast.NamedType{Name: "string"},
		}},
		Body: []ast.Stmt{},
	}
	file := &ast.File{Path: "src/main.tsu", Stmts: []ast.Stmt{main}}
	_, err := Collect([]*ast.File{file})
	requireCode(t, err, errors.ExpBadMainSignature)
}
