package lower

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tsubalang/tsubac/internal/ast"
	"github.com/tsubalang/tsubac/internal/errors"
)

func TestLowerTypeAliasBasic(t *testing.T) {
	d := &ast.TypeAliasDecl{Name: "Id", Body: &ast.NamedType{Name: "u64"}}
	lw := newLowerer(nil)
	item, err := lw.lowerTypeAlias(d)
	require.NoError(t, err)
	require.Equal(t, "Id", item.Name)
}

func TestLowerTypeAliasGeneric(t *testing.T) {
	d := &ast.TypeAliasDecl{
		Name:     "Pair",
		Generics: []ast.GenericParam{{Name: "T"}},
		Body:     &ast.TupleType{Elems: []ast.Type{&ast.NamedType{Name: "T"}, &ast.NamedType{Name: "T"}}},
	}
	lw := newLowerer(nil)
	item, err := lw.lowerTypeAlias(d)
	require.NoError(t, err)
	require.Equal(t, []string{"T"}, item.Generics)
}

func TestLowerUnionBasic(t *testing.T) {
	d := &ast.TypeAliasDecl{
		Name: "Event",
		Union: []ast.ObjectTypeLit{
			{Kind: "tick", Fields: []*ast.FieldDecl{{Name: "kind", Type: &ast.NamedType{Name: "string"}}, {Name: "count", Type: &ast.NamedType{Name: "i32"}}}},
			{Kind: "reset", Fields: []*ast.FieldDecl{{Name: "kind", Type: &ast.NamedType{Name: "string"}}}},
		},
	}
	lw := newLowerer(nil)
	item, err := lw.lowerUnion(d)
	require.NoError(t, err)
	require.Equal(t, "Event", item.Name)
	require.Len(t, item.Variants, 2)
	require.Equal(t, "Tick", item.Variants[0].Name)
	require.Len(t, item.Variants[0].Fields, 1) // "kind" field stripped
	require.Equal(t, "Reset", item.Variants[1].Name)
	require.Empty(t, item.Variants[1].Fields)
}

func TestLowerUnionPascalCasesSnakeKind(t *testing.T) {
	d := &ast.TypeAliasDecl{
		Name:  "Event",
		Union: []ast.ObjectTypeLit{{Kind: "line_segment"}},
	}
	lw := newLowerer(nil)
	item, err := lw.lowerUnion(d)
	require.NoError(t, err)
	require.Equal(t, "LineSegment", item.Variants[0].Name)
}

func TestLowerUnionRejectsDuplicateKind(t *testing.T) {
	d := &ast.TypeAliasDecl{
		Name: "Event",
		Union: []ast.ObjectTypeLit{
			{Kind: "tick"},
			{Kind: "tick"},
		},
	}
	lw := newLowerer(nil)
	_, err := lw.lowerUnion(d)
	requireCode(t, err, errors.TypDuplicateUnionKind)
}
