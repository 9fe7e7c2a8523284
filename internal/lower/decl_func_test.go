package lower

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tsubalang/tsubac/internal/ast"
	"github.com/tsubalang/tsubac/internal/bindgen"
	"github.com/tsubalang/tsubac/internal/errors"
	"github.com/tsubalang/tsubac/internal/module"
	"github.com/tsubalang/tsubac/internal/targetir"
)

func noPackageRoot(string) string { return "" }

func noManifestLoader(string) (*bindgen.Manifest, error) {
	return nil, fmt.Errorf("no manifest in this fixture")
}

func newLowerer(prog *Program) *Lowerer {
	if prog == nil {
		prog = &Program{
			Interfaces: map[string]*ast.InterfaceDecl{},
			Unions:     map[string]*ast.TypeAliasDecl{},
			Classes:    map[string]*ast.ClassDecl{},
			Functions:  map[string]*ast.FuncDecl{},
		}
	}
	return New(prog, module.NewIndex(), "src/main.tsu", noPackageRoot, noManifestLoader)
}

func numberParam(name string) *ast.Param {
	return &ast.Param{Name: name, Type: &ast.NamedType{Name: "number"}}
}

func TestLowerFuncBasic(t *testing.T) {
	lw := newLowerer(nil)
	d := &ast.FuncDecl{
		Name:       "add",
		Params:     []*ast.Param{numberParam("a"), numberParam("b")},
		ReturnType: &ast.NamedType{Name: "number"},
		Body: []ast.Stmt{
			&ast.ReturnStmt{Value: &ast.BinaryExpr{Op: "+", Left: &ast.Ident{Name: "a"}, Right: &ast.Ident{Name: "b"}}},
		},
	}
	fn, err := lw.lowerFunc(d)
	require.NoError(t, err)
	require.Equal(t, "add", fn.Name)
	require.Len(t, fn.Params, 2)
	require.True(t, fn.Pub)
	require.Len(t, fn.Body, 1)
}

func TestLowerFuncRejectsMissingParamType(t *testing.T) {
	lw := newLowerer(nil)
	d := &ast.FuncDecl{Name: "f", Params: []*ast.Param{{Name: "a"}}, Body: []ast.Stmt{}}
	_, err := lw.lowerFunc(d)
	requireCode(t, err, errors.FniMissingParamType)
}

func TestLowerFuncRejectsOptionalParam(t *testing.T) {
	lw := newLowerer(nil)
	d := &ast.FuncDecl{Name: "f", Params: []*ast.Param{{Name: "a", Type: &ast.NamedType{Name: "number"}, Optional: true}}, Body: []ast.Stmt{}}
	_, err := lw.lowerFunc(d)
	requireCode(t, err, errors.FniOptionalParam)
}

func TestLowerFuncRejectsDestructuredParam(t *testing.T) {
	lw := newLowerer(nil)
	d := &ast.FuncDecl{Name: "f", Params: []*ast.Param{{Name: "a", Type: &ast.NamedType{Name: "number"}, Destructuring: true}}, Body: []ast.Stmt{}}
	_, err := lw.lowerFunc(d)
	requireCode(t, err, errors.FniDestructuredParam)
}

func TestLowerFuncRejectsGenericsWithoutExternal(t *testing.T) {
	lw := newLowerer(nil)
	d := &ast.FuncDecl{Name: "f", Generics: []ast.GenericParam{{Name: "T"}}, Body: []ast.Stmt{}}
	_, err := lw.lowerFunc(d)
	requireCode(t, err, errors.FniGenericFunctionV0)
}

func TestLowerFuncAcceptsExternalWithGenericsAndNoBody(t *testing.T) {
	prog := &Program{
		Interfaces: map[string]*ast.InterfaceDecl{"Ord": {Name: "Ord"}},
		Unions:     map[string]*ast.TypeAliasDecl{},
		Classes:    map[string]*ast.ClassDecl{},
		Functions:  map[string]*ast.FuncDecl{},
	}
	lw := newLowerer(prog)
	d := &ast.FuncDecl{
		Name:     "sortBy",
		Generics: []ast.GenericParam{{Name: "T", Bounds: []string{"Ord"}}},
		External: true,
	}
	fn, err := lw.lowerFunc(d)
	require.NoError(t, err)
	require.Equal(t, []string{"T"}, fn.Generics)
	require.Nil(t, fn.Body)
}

func TestLowerFuncRejectsMissingBodyWhenNotExternal(t *testing.T) {
	lw := newLowerer(nil)
	d := &ast.FuncDecl{Name: "f"}
	_, err := lw.lowerFunc(d)
	requireCode(t, err, errors.FniMissingBody)
}

func TestLowerFuncUnwrapsPromiseReturnForAsync(t *testing.T) {
	lw := newLowerer(nil)
	d := &ast.FuncDecl{
		Name:       "fetch",
		Async:      true,
		ReturnType: &ast.NamedType{Name: "Promise", Args: []ast.Type{&ast.NamedType{Name: "string"}}},
		Body:       []ast.Stmt{&ast.ReturnStmt{Value: &ast.StringLit{Value: "x"}}},
	}
	fn, err := lw.lowerFunc(d)
	require.NoError(t, err)
	require.True(t, fn.Async)
	named, ok := fn.ReturnType.(*targetir.NamedType)
	require.True(t, ok)
	require.Equal(t, "string", named.Name)
}
