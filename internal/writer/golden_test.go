package writer

import (
	"testing"

	"github.com/tsubalang/tsubac/internal/targetir"
	"github.com/tsubalang/tsubac/testutil"
)

// TestFileGoldenStructWithImpl golden-compares a whole rendered file (a
// derived struct plus an inherent impl) with testutil's -update/go-cmp
// golden helper (SPEC_FULL.md §A.4). Run with -update to regenerate
// testdata/writer/struct_with_impl.golden after an intentional rendering
// change.
func TestFileGoldenStructWithImpl(t *testing.T) {
	f := &targetir.File{
		Items: []targetir.Item{
			&targetir.UseItem{Path: "std::fmt"},
			&targetir.StructItem{
				Name:    "Point",
				Derives: []string{"Debug", "Clone"},
				Fields: []targetir.Field{
					{Name: "x", Type: &targetir.NamedType{Name: "f64"}, Pub: true},
					{Name: "y", Type: &targetir.NamedType{Name: "f64"}, Pub: true},
				},
			},
			&targetir.ImplItem{
				Type: "Point",
				Methods: []*targetir.FnItem{
					&targetir.FnItem{
						Name: "area",
						Pub:  true,
						Params: []targetir.Param{
							{Name: "this", Type: &targetir.RefType{Elem: &targetir.NamedType{Name: "Point"}}},
						},
						ReturnType: &targetir.NamedType{Name: "f64"},
						Body: []targetir.Stmt{
							&targetir.ReturnStmt{Value: &targetir.BinaryExpr{
								Op:   "*",
								Left: &targetir.FieldExpr{Obj: &targetir.Ident{Name: "self"}, Field: "x"},
								Right: &targetir.FieldExpr{
									Obj:   &targetir.Ident{Name: "self"},
									Field: "y",
								},
							}},
						},
					},
				},
			},
		},
	}

	testutil.CompareGolden(t, "writer", "struct_with_impl", File(f))
}
