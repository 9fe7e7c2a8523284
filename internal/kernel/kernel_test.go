package kernel

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tsubalang/tsubac/internal/ast"
	"github.com/tsubalang/tsubac/internal/errors"
	"github.com/tsubalang/tsubac/internal/targetir"
)

func scalarType(name string) *ast.NamedType { return &ast.NamedType{Name: name} }

func globalPtrType(elem string) *ast.NamedType {
	return &ast.NamedType{Name: "global_ptr", Args: []ast.Type{scalarType(elem)}}
}

func kernelSpec(name string) *ast.ObjectLit {
	return &ast.ObjectLit{
		AsConst: true,
		Fields:  []ast.ObjectField{{Name: "name", Value: &ast.StringLit{Value: name}}},
	}
}

func constKernel(bindingName, kernelFnName string, params []*ast.Param, body []ast.Stmt) *ast.ConstDecl {
	return &ast.ConstDecl{
		Name: bindingName,
		Value: &ast.CallExpr{
			Callee: &ast.Ident{Name: "kernel"},
			Args: []ast.Expr{
				kernelSpec(kernelFnName),
				&ast.ArrowExpr{Params: params, BlockBody: body},
			},
		},
	}
}

func TestExtractRecognizesSimpleKernel(t *testing.T) {
	params := []*ast.Param{
		{Name: "out", Type: globalPtrType("f32")},
		{Name: "n", Type: scalarType("i32")},
	}
	body := []ast.Stmt{
		&ast.LetStmt{Name: "i", Type: scalarType("i32"), Value: &ast.MemberExpr{
			Obj: &ast.Ident{Name: "threadIdx"}, Prop: "X",
		}},
		&ast.ReturnStmt{},
	}
	decl := constKernel("Square", "square", params, body)

	decls, err := Extract([]ast.Stmt{decl})
	require.NoError(t, err)
	require.Len(t, decls, 1)
	require.Equal(t, "square", decls[0].Name)
	require.Len(t, decls[0].Params, 2)
	require.Equal(t, ParamGlobalPtr, decls[0].Params[0].Kind)
	require.Equal(t, "f32", decls[0].Params[0].Elem)
	require.Contains(t, decls[0].CUDASource, `extern "C" __global__ void square(`)
	require.Contains(t, decls[0].CUDASource, "i32 i = threadIdx.x;")
}

func TestExtractIgnoresOrdinaryConstBindings(t *testing.T) {
	decl := &ast.ConstDecl{Name: "Pi", Value: &ast.FloatLit{Value: 3.14}}
	decls, err := Extract([]ast.Stmt{decl})
	require.NoError(t, err)
	require.Empty(t, decls)
}

func TestExtractRejectsBareTopLevelCall(t *testing.T) {
	stmt := &ast.ExprStmt{X: &ast.CallExpr{
		Callee: &ast.Ident{Name: "kernel"},
		Args:   []ast.Expr{kernelSpec("x"), &ast.ArrowExpr{BlockBody: []ast.Stmt{&ast.ReturnStmt{}}}},
	}}
	_, err := Extract([]ast.Stmt{stmt})
	require.Error(t, err)
	ce, ok := errors.As(err)
	require.True(t, ok)
	require.Equal(t, errors.KrnMustBeConst, ce.Code)
}

func TestExtractRejectsWrongArgCount(t *testing.T) {
	decl := &ast.ConstDecl{Name: "Bad", Value: &ast.CallExpr{
		Callee: &ast.Ident{Name: "kernel"},
		Args:   []ast.Expr{kernelSpec("bad")},
	}}
	_, err := Extract([]ast.Stmt{decl})
	require.Error(t, err)
	ce, ok := errors.As(err)
	require.True(t, ok)
	require.Equal(t, errors.KrnArgCount, ce.Code)
}

func TestExtractRejectsDuplicateName(t *testing.T) {
	a := constKernel("A", "dup", nil, []ast.Stmt{&ast.ReturnStmt{}})
	b := constKernel("B", "dup", nil, []ast.Stmt{&ast.ReturnStmt{}})
	_, err := Extract([]ast.Stmt{a, b})
	require.Error(t, err)
	ce, ok := errors.As(err)
	require.True(t, ok)
	require.Equal(t, errors.KrnDuplicateName, ce.Code)
}

func TestExtractRejectsNonScalarParam(t *testing.T) {
	params := []*ast.Param{{Name: "weird", Type: &ast.NamedType{Name: "String"}}}
	decl := constKernel("Weird", "weird", params, []ast.Stmt{&ast.ReturnStmt{}})
	_, err := Extract([]ast.Stmt{decl})
	require.Error(t, err)
	ce, ok := errors.As(err)
	require.True(t, ok)
	require.Equal(t, errors.KrnUnsupportedParam, ce.Code)
}

func TestExtractSortsDeclsByName(t *testing.T) {
	z := constKernel("Z", "zeta", nil, []ast.Stmt{&ast.ReturnStmt{}})
	a := constKernel("A", "alpha", nil, []ast.Stmt{&ast.ReturnStmt{}})
	decls, err := Extract([]ast.Stmt{z, a})
	require.NoError(t, err)
	require.Len(t, decls, 2)
	require.Equal(t, "alpha", decls[0].Name)
	require.Equal(t, "zeta", decls[1].Name)
}

func TestCUDALoweringHoistsSharedArray(t *testing.T) {
	params := []*ast.Param{{Name: "out", Type: globalPtrType("f32")}}
	body := []ast.Stmt{
		&ast.LetStmt{Name: "tmp", Type: scalarType("f32"), Value: &ast.CallExpr{
			Callee:   &ast.Ident{Name: "sharedArray"},
			TypeArgs: []ast.Type{scalarType("f32"), scalarType("256")},
		}},
		&ast.ExprStmt{X: &ast.CallExpr{Callee: &ast.Ident{Name: "syncthreads"}}},
		&ast.ReturnStmt{},
	}
	decl := constKernel("Reduce", "reduce", params, body)
	decls, err := Extract([]ast.Stmt{decl})
	require.NoError(t, err)
	require.Len(t, decls, 1)
	require.Contains(t, decls[0].CUDASource, "__shared__ f32 shared_0[256];")
	require.Contains(t, decls[0].CUDASource, "__syncthreads();")
	// the hoisted declaration must appear before the function body statements.
	sharedIdx := strings.Index(decls[0].CUDASource, "__shared__")
	syncIdx := strings.Index(decls[0].CUDASource, "__syncthreads")
	require.Less(t, sharedIdx, syncIdx)
}

func TestCUDALoweringRejectsUncastLiteral(t *testing.T) {
	body := []ast.Stmt{
		&ast.LetStmt{Name: "x", Type: scalarType("i32"), Value: &ast.IntLit{Value: 1}},
		&ast.ReturnStmt{},
	}
	decl := constKernel("Bad", "bad", nil, body)
	_, err := Extract([]ast.Stmt{decl})
	require.Error(t, err)
	ce, ok := errors.As(err)
	require.True(t, ok)
	require.Equal(t, errors.KrnNumericNeedsCast, ce.Code)
}

func TestCUDALoweringRejectsBadForLoopShape(t *testing.T) {
	body := []ast.Stmt{
		&ast.ForStmt{Kind: ast.ForOfStyle},
		&ast.ReturnStmt{},
	}
	decl := constKernel("Bad", "bad", nil, body)
	_, err := Extract([]ast.Stmt{decl})
	require.Error(t, err)
	ce, ok := errors.As(err)
	require.True(t, ok)
	require.Equal(t, errors.KrnForLoopShape, ce.Code)
}

func TestCUDALoweringAcceptsCStyleForLoop(t *testing.T) {
	body := []ast.Stmt{
		&ast.ForStmt{
			Kind: ast.ForCStyle,
			Init: &ast.LetStmt{Name: "i", Type: scalarType("i32"), Value: &ast.AsExpr{
				Value: &ast.IntLit{Value: 0}, Type: scalarType("i32"),
			}},
			Cond: &ast.BinaryExpr{Op: "<", Left: &ast.Ident{Name: "i"}, Right: &ast.Ident{Name: "n"}},
			Post: &ast.BinaryExpr{Op: "+", Left: &ast.Ident{Name: "i"}, Right: &ast.Ident{Name: "i"}},
			Body: []ast.Stmt{&ast.ExprStmt{X: &ast.CallExpr{Callee: &ast.Ident{Name: "syncthreads"}}}},
		},
		&ast.ReturnStmt{},
	}
	params := []*ast.Param{{Name: "n", Type: scalarType("i32")}}
	decl := constKernel("Loop", "loop", params, body)
	decls, err := Extract([]ast.Stmt{decl})
	require.NoError(t, err)
	require.Contains(t, decls[0].CUDASource, "for (i32 i = (i32)(0); (i < n); (i + i)) {")
}

func TestMatchLaunchParsesGridAndBlock(t *testing.T) {
	names := map[string]bool{"Square": true}
	call := &ast.CallExpr{
		Callee: &ast.MemberExpr{Obj: &ast.Ident{Name: "Square"}, Prop: "launch"},
		Args: []ast.Expr{
			&ast.ObjectLit{
				AsConst: true,
				Fields: []ast.ObjectField{
					{Name: "grid", Value: &ast.ArrayLit{Elems: []ast.Expr{intLit(1), intLit(1), intLit(1)}}},
					{Name: "block", Value: &ast.ArrayLit{Elems: []ast.Expr{intLit(256), intLit(1), intLit(1)}}},
				},
			},
			&ast.Ident{Name: "buf"},
		},
	}
	lc, err := MatchLaunch(call, names)
	require.NoError(t, err)
	require.NotNil(t, lc)
	require.Equal(t, "Square", lc.KernelName)
	require.Equal(t, "launch_Square", lc.RuntimeFnName())
	require.Len(t, lc.Args, 1)
}

func TestMatchLaunchIgnoresUnrelatedMethodCalls(t *testing.T) {
	names := map[string]bool{"Square": true}
	call := &ast.CallExpr{Callee: &ast.MemberExpr{Obj: &ast.Ident{Name: "Square"}, Prop: "toString"}}
	lc, err := MatchLaunch(call, names)
	require.NoError(t, err)
	require.Nil(t, lc)
}

func TestMatchLaunchRejectsMissingConfig(t *testing.T) {
	names := map[string]bool{"Square": true}
	call := &ast.CallExpr{Callee: &ast.MemberExpr{Obj: &ast.Ident{Name: "Square"}, Prop: "launch"}}
	_, err := MatchLaunch(call, names)
	require.Error(t, err)
	ce, ok := errors.As(err)
	require.True(t, ok)
	require.Equal(t, errors.KrnLaunchShape, ce.Code)
}

func TestMatchLaunchRejectsNonConstConfig(t *testing.T) {
	names := map[string]bool{"Square": true}
	call := &ast.CallExpr{
		Callee: &ast.MemberExpr{Obj: &ast.Ident{Name: "Square"}, Prop: "launch"},
		Args:   []ast.Expr{&ast.ObjectLit{AsConst: false}},
	}
	_, err := MatchLaunch(call, names)
	require.Error(t, err)
	ce, ok := errors.As(err)
	require.True(t, ok)
	require.Equal(t, errors.KrnLaunchShape, ce.Code)
}

func intLit(v int64) *ast.IntLit { return &ast.IntLit{Value: v} }

func TestGenerateLoaderRuntimeEmitsOneLaunchPerKernel(t *testing.T) {
	decls := []*Decl{
		{Name: "zeta"},
		{Name: "alpha"},
	}
	file := GenerateLoaderRuntime(decls)
	require.Equal(t, RuntimeModuleIdent, file.ModuleIdent)

	var launchFnNames []string
	for _, item := range file.Items {
		if fn, ok := item.(*targetir.FnItem); ok && strings.HasPrefix(fn.Name, "launch_") {
			launchFnNames = append(launchFnNames, fn.Name)
		}
	}
	// kernel names are sorted before launch functions are emitted, so the
	// generated function order follows suit regardless of Decl input order.
	require.Equal(t, []string{"launch_alpha", "launch_zeta"}, launchFnNames)
}

func TestGenerateLoaderRuntimeIncludesDeviceMemoryHelpers(t *testing.T) {
	file := GenerateLoaderRuntime(nil)
	var fnNames []string
	for _, item := range file.Items {
		if fn, ok := item.(*targetir.FnItem); ok {
			fnNames = append(fnNames, fn.Name)
		}
	}
	require.Contains(t, fnNames, "device_malloc")
	require.Contains(t, fnNames, "device_free")
	require.Contains(t, fnNames, "memcpy_htod")
	require.Contains(t, fnNames, "memcpy_dtoh")
}
