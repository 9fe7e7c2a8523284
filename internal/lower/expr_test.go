package lower

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tsubalang/tsubac/internal/ast"
	"github.com/tsubalang/tsubac/internal/errors"
	"github.com/tsubalang/tsubac/internal/targetir"
)

func progWithFunc(fn *ast.FuncDecl) *Program {
	return &Program{
		Interfaces: map[string]*ast.InterfaceDecl{},
		Unions:     map[string]*ast.TypeAliasDecl{},
		Classes:    map[string]*ast.ClassDecl{},
		Functions:  map[string]*ast.FuncDecl{fn.Name: fn},
	}
}

func TestLowerCallInsertsBorrowForRefParam(t *testing.T) {
	fn := &ast.FuncDecl{
		Name: "bump",
		Params: []*ast.Param{
			{Name: "v", Type: &ast.RefType{Kind: ast.RefMut, Elem: &ast.NamedType{Name: "Counter"}}},
		},
	}
	lw := newLowerer(progWithFunc(fn))
	call := &ast.CallExpr{Callee: &ast.Ident{Name: "bump"}, Args: []ast.Expr{&ast.Ident{Name: "c"}}}
	expr, err := lw.lowerCall(call)
	require.NoError(t, err)
	callExpr, ok := expr.(*targetir.CallExpr)
	require.True(t, ok)
	ref, ok := callExpr.Args[0].(*targetir.RefExpr)
	require.True(t, ok)
	require.True(t, ref.Mut)
}

func TestLowerCallRejectsBorrowOfNonPlaceExpr(t *testing.T) {
	fn := &ast.FuncDecl{
		Name: "bump",
		Params: []*ast.Param{
			{Name: "v", Type: &ast.RefType{Kind: ast.RefShared, Elem: &ast.NamedType{Name: "Counter"}}},
		},
	}
	lw := newLowerer(progWithFunc(fn))
	call := &ast.CallExpr{Callee: &ast.Ident{Name: "bump"}, Args: []ast.Expr{&ast.IntLit{Value: 1}}}
	_, err := lw.lowerCall(call)
	requireCode(t, err, errors.ExpInvalidBorrow)
}

func TestLowerNewInsertsBorrowFromDefaultCtorFieldTypes(t *testing.T) {
	prog := &Program{
		Interfaces: map[string]*ast.InterfaceDecl{},
		Unions:     map[string]*ast.TypeAliasDecl{},
		Classes: map[string]*ast.ClassDecl{
			"Wrapper": {
				Name: "Wrapper",
				Fields: []*ast.FieldDecl{
					{Name: "inner", Type: &ast.RefType{Kind: ast.RefShared, Elem: &ast.NamedType{Name: "Base"}}},
				},
			},
		},
		Functions: map[string]*ast.FuncDecl{},
	}
	lw := newLowerer(prog)
	n := &ast.NewExpr{ClassName: "Wrapper", Args: []ast.Expr{&ast.Ident{Name: "base"}}}
	expr, err := lw.lowerNew(n)
	require.NoError(t, err)
	call := expr.(*targetir.CallExpr)
	_, ok := call.Args[0].(*targetir.RefExpr)
	require.True(t, ok)
}

func TestLowerObjectLitSynthesizesAnonStruct(t *testing.T) {
	lw := newLowerer(nil)
	obj := &ast.ObjectLit{
		Fields: []ast.ObjectField{
			{Name: "x", Value: &ast.IntLit{Value: 1}, Cast: &ast.NamedType{Name: "i32"}},
			{Name: "y", Value: &ast.IntLit{Value: 2}, Cast: &ast.NamedType{Name: "i32"}},
		},
	}
	expr, err := lw.lowerObjectLit(obj)
	require.NoError(t, err)
	lit, ok := expr.(*targetir.StructLit)
	require.True(t, ok)
	require.Len(t, lit.Fields, 2)
	require.Equal(t, "x", lit.Fields[0].Name) // original field order preserved
	require.Len(t, lw.AnonStructs, 1)
}

func TestLowerObjectLitRejectsMissingCast(t *testing.T) {
	lw := newLowerer(nil)
	obj := &ast.ObjectLit{Fields: []ast.ObjectField{{Name: "x", Value: &ast.IntLit{Value: 1}}}}
	_, err := lw.lowerObjectLit(obj)
	requireCode(t, err, errors.ExpObjectLiteralShape)
}

func TestLowerTemplateLiteral(t *testing.T) {
	lw := newLowerer(nil)
	tpl := &ast.TemplateLit{
		Parts: []string{"hello ", "!"},
		Exprs: []ast.Expr{&ast.Ident{Name: "name"}},
	}
	expr, err := lw.lowerExpr(tpl)
	require.NoError(t, err)
	fmtExpr, ok := expr.(*targetir.FormatExpr)
	require.True(t, ok)
	require.Equal(t, "hello {}!", fmtExpr.Template)
	require.Len(t, fmtExpr.Args, 1)
}

func TestLowerMarkerQuestion(t *testing.T) {
	lw := newLowerer(nil)
	m := &ast.MarkerExpr{Kind: ast.MarkerQuestion, Arg: &ast.Ident{Name: "r"}}
	expr, err := lw.lowerExpr(m)
	require.NoError(t, err)
	_, ok := expr.(*targetir.TryExpr)
	require.True(t, ok)
}

func TestLowerMarkerUnsafe(t *testing.T) {
	lw := newLowerer(nil)
	m := &ast.MarkerExpr{Kind: ast.MarkerUnsafe, Arg: &ast.Ident{Name: "r"}}
	expr, err := lw.lowerExpr(m)
	require.NoError(t, err)
	_, ok := expr.(*targetir.UnsafeExpr)
	require.True(t, ok)
}

func TestLowerMarkerOkWithNoArg(t *testing.T) {
	lw := newLowerer(nil)
	m := &ast.MarkerExpr{Kind: ast.MarkerOk}
	expr, err := lw.lowerExpr(m)
	require.NoError(t, err)
	call, ok := expr.(*targetir.CallExpr)
	require.True(t, ok)
	ident := call.Callee.(*targetir.Ident)
	require.Equal(t, "Ok", ident.Name)
	_, ok = call.Args[0].(*targetir.UnitLit)
	require.True(t, ok)
}

func TestLowerMarkerMoveMutatesArrow(t *testing.T) {
	lw := newLowerer(nil)
	arrow := &ast.ArrowExpr{Params: []*ast.Param{}, Body: &ast.IntLit{Value: 1}}
	m := &ast.MarkerExpr{Kind: ast.MarkerMove, Arg: arrow}
	expr, err := lw.lowerExpr(m)
	require.NoError(t, err)
	closure, ok := expr.(*targetir.ClosureExpr)
	require.True(t, ok)
	require.True(t, closure.Move)
}

func TestLowerCallRewritesKernelLaunch(t *testing.T) {
	lw := newLowerer(nil)
	lw.KernelNames = map[string]bool{"Saxpy": true}
	grid := &ast.ArrayLit{Elems: []ast.Expr{&ast.IntLit{Value: 1}, &ast.IntLit{Value: 1}, &ast.IntLit{Value: 1}}}
	block := &ast.ArrayLit{Elems: []ast.Expr{&ast.IntLit{Value: 256}, &ast.IntLit{Value: 1}, &ast.IntLit{Value: 1}}}
	call := &ast.CallExpr{
		Callee: &ast.MemberExpr{Obj: &ast.Ident{Name: "Saxpy"}, Prop: "launch"},
		Args: []ast.Expr{
			&ast.ObjectLit{AsConst: true, Fields: []ast.ObjectField{{Name: "grid", Value: grid}, {Name: "block", Value: block}}},
			&ast.Ident{Name: "buf"},
		},
	}
	expr, err := lw.lowerCall(call)
	require.NoError(t, err)
	ce, ok := expr.(*targetir.CallExpr)
	require.True(t, ok)
	path, ok := ce.Callee.(*targetir.PathExpr)
	require.True(t, ok)
	require.Equal(t, []string{"gpu_runtime", "launch_Saxpy"}, path.Segments)
	require.Len(t, ce.Args, 7) // 6 dims + args slice
	ref, ok := ce.Args[6].(*targetir.RefExpr)
	require.True(t, ok)
	arr, ok := ref.X.(*targetir.ArrayLit)
	require.True(t, ok)
	require.Len(t, arr.Elems, 1)
	_, ok = arr.Elems[0].(*targetir.AsExpr)
	require.True(t, ok)
}

func TestLowerArrowRejectsBlockBody(t *testing.T) {
	lw := newLowerer(nil)
	arrow := &ast.ArrowExpr{BlockBody: []ast.Stmt{}}
	_, err := lw.lowerExpr(arrow)
	requireCode(t, err, errors.ExpBlockArrowRejected)
}
