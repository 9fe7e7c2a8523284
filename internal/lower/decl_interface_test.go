package lower

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tsubalang/tsubac/internal/ast"
	"github.com/tsubalang/tsubac/internal/errors"
)

func TestLowerInterfaceBasic(t *testing.T) {
	d := &ast.InterfaceDecl{
		Name:    "Shape",
		Extends: []string{"Named"},
		Methods: []*ast.MethodDecl{
			{Name: "area", ReturnType: &ast.NamedType{Name: "f64"}},
		},
	}
	lw := newLowerer(nil)
	trait, err := lw.lowerInterface(d)
	require.NoError(t, err)
	require.Equal(t, "Shape", trait.Name)
	require.Equal(t, []string{"Named"}, trait.Supers)
	require.Len(t, trait.Methods, 1)
	require.Equal(t, "area", trait.Methods[0].Name)
	require.Nil(t, trait.Methods[0].Body)
	require.Equal(t, "this", trait.Methods[0].Params[0].Name)
}

func TestLowerInterfaceAcceptsNoMethods(t *testing.T) {
	d := &ast.InterfaceDecl{Name: "Marker"}
	lw := newLowerer(nil)
	trait, err := lw.lowerInterface(d)
	require.NoError(t, err)
	require.Empty(t, trait.Methods)
}

func TestLowerInterfaceRejectsOptionalMethod(t *testing.T) {
	d := &ast.InterfaceDecl{Name: "Shape", Methods: []*ast.MethodDecl{{Name: "area", Optional: true}}}
	lw := newLowerer(nil)
	_, err := lw.lowerInterface(d)
	requireCode(t, err, errors.TypTraitOptionalMember)
}

func TestLowerInterfaceRejectsOptionalParam(t *testing.T) {
	d := &ast.InterfaceDecl{
		Name: "Shape",
		Methods: []*ast.MethodDecl{
			{Name: "scale", Params: []*ast.Param{{Name: "factor", Type: &ast.NamedType{Name: "f64"}, Optional: true}}},
		},
	}
	lw := newLowerer(nil)
	_, err := lw.lowerInterface(d)
	requireCode(t, err, errors.TypTraitOptionalParam)
}
