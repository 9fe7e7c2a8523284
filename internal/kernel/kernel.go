// Package kernel implements the kernel extractor and loader-runtime
// emission (spec §4.8): it recognizes `kernel(spec, fn)` constructor calls,
// validates and lowers the restricted kernel-body grammar to CUDA C, and
// (when any kernel exists) assembles the loader-runtime target module that
// exposes one `launch_<name>` per kernel behind the process-wide
// single-initialization, mutex-guarded state described in spec §5.
//
// The single-init-cell + mutex design has no direct teacher analogue (the
// host compiler has no comparable process-wide state); it is grounded
// directly on spec §5's prose and cross-checked against go-corset's
// sync.Once-guarded global field-arithmetic tables (pkg/util/field) for
// the general shape of "lazily initialize shared state behind a mutex".
package kernel

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/tsubalang/tsubac/internal/ast"
	"github.com/tsubalang/tsubac/internal/errors"
	"github.com/tsubalang/tsubac/internal/span"
)

var kernelNameRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// scalarKinds is the fixed set of scalar types a kernel parameter or
// expression may use.
var scalarKinds = map[string]bool{"i32": true, "u32": true, "f32": true, "f64": true, "bool": true}

// ParamKind distinguishes a plain scalar kernel parameter from a
// `global_ptr<scalar>` device-buffer parameter.
type ParamKind int

const (
	ParamScalar ParamKind = iota
	ParamGlobalPtr
)

// Param is one lowered kernel parameter.
type Param struct {
	Name string
	Kind ParamKind
	Elem string // scalar kind, e.g. "f32"
}

// Decl is one extracted, CUDA-lowered kernel declaration.
type Decl struct {
	Name       string
	SpecText   string // the raw `name: "..."` spec object, kept for diagnostics
	Params     []Param
	CUDASource string
	Sp         span.Span
}

// Extract walks a file's top-level statements and returns every recognized
// kernel declaration, sorted by kernel name. A const binding is recognized as a
// kernel declaration when its initializer is a two-argument call to an
// identifier named "kernel"; anything else is left alone (an ordinary
// top-level const is rejected later, by host lowering).
func Extract(stmts []ast.Stmt) ([]*Decl, error) {
	var decls []*Decl
	seen := map[string]span.Span{}

	for _, stmt := range stmts {
		cd, ok := stmt.(*ast.ConstDecl)
		if !ok {
			if isBareKernelCall(stmt) {
				sp := stmt.Span()
				return nil, errors.New(errors.KrnMustBeConst, "kernel(...) must be the initializer of a top-level const binding", &sp)
			}
			continue
		}
		call, ok := cd.Value.(*ast.CallExpr)
		if !ok {
			continue
		}
		callee, ok := call.Callee.(*ast.Ident)
		if !ok || callee.Name != "kernel" {
			continue
		}

		sp := cd.Span()
		if len(call.Args) != 2 {
			return nil, errors.New(errors.KrnArgCount,
				fmt.Sprintf("kernel() requires exactly 2 arguments, got %d", len(call.Args)), &sp)
		}

		specLit, ok := call.Args[0].(*ast.ObjectLit)
		if !ok || !specLit.AsConst {
			return nil, errors.New(errors.KrnSpecShape,
				"kernel() first argument must be an `as const` object literal", &sp)
		}
		name, err := kernelName(specLit, &sp)
		if err != nil {
			return nil, err
		}
		if prev, dup := seen[name]; dup {
			return nil, errors.New(errors.KrnDuplicateName,
				fmt.Sprintf("duplicate kernel name %q (first declared at %s)", name, prev), &sp).
				WithData("name", name)
		}

		fn, ok := call.Args[1].(*ast.ArrowExpr)
		if !ok || fn.BlockBody == nil {
			return nil, errors.New(errors.KrnFnShape,
				"kernel() second argument must be a block-bodied arrow function", &sp)
		}

		params, err := lowerParams(fn.Params)
		if err != nil {
			return nil, err
		}

		cuda, err := lowerBody(name, params, fn.BlockBody)
		if err != nil {
			return nil, err
		}

		seen[name] = sp
		decls = append(decls, &Decl{
			Name:       name,
			SpecText:   specLit.String(),
			Params:     params,
			CUDASource: cuda,
			Sp:         sp,
		})
	}

	sort.SliceStable(decls, func(i, j int) bool { return decls[i].Name < decls[j].Name })
	return decls, nil
}

// isBareKernelCall reports whether stmt is an expression-statement calling
// the kernel() constructor outside of a const binding, the one shape
// Extract can reject with a precise span at top level (a nested call
// inside a function body is caught later, when host lowering meets a call
// to an undeclared `kernel` and raises KrnMustBeTopLevel).
func isBareKernelCall(stmt ast.Stmt) bool {
	es, ok := stmt.(*ast.ExprStmt)
	if !ok {
		return false
	}
	call, ok := es.X.(*ast.CallExpr)
	if !ok {
		return false
	}
	ident, ok := call.Callee.(*ast.Ident)
	return ok && ident.Name == "kernel"
}

func kernelName(spec *ast.ObjectLit, at *span.Span) (string, error) {
	for _, f := range spec.Fields {
		if f.Name != "name" {
			continue
		}
		lit, ok := f.Value.(*ast.StringLit)
		if !ok {
			return "", errors.New(errors.KrnBadNameIdent, "kernel spec `name` must be a string literal", at)
		}
		if !kernelNameRE.MatchString(lit.Value) {
			return "", errors.New(errors.KrnBadNameIdent,
				fmt.Sprintf("kernel name %q is not a valid identifier", lit.Value), at).WithData("name", lit.Value)
		}
		return lit.Value, nil
	}
	return "", errors.New(errors.KrnSpecShape, "kernel spec is missing a `name` field", at)
}

func lowerParams(params []*ast.Param) ([]Param, error) {
	out := make([]Param, 0, len(params))
	for _, p := range params {
		kp, err := lowerParam(p)
		if err != nil {
			return nil, err
		}
		out = append(out, kp)
	}
	return out, nil
}

func lowerParam(p *ast.Param) (Param, error) {
	sp := p.Sp
	named, ok := p.Type.(*ast.NamedType)
	if !ok {
		return Param{}, errors.New(errors.KrnUnsupportedParam,
			fmt.Sprintf("parameter %q has an unsupported kernel type", p.Name), &sp)
	}
	if named.Name == "global_ptr" {
		if len(named.Args) != 1 {
			return Param{}, errors.New(errors.KrnUnsupportedParam, "global_ptr requires exactly one type argument", &sp)
		}
		elem, ok := named.Args[0].(*ast.NamedType)
		if !ok || !scalarKinds[elem.Name] {
			return Param{}, errors.New(errors.KrnUnsupportedParam,
				fmt.Sprintf("parameter %q: global_ptr element must be a scalar kind", p.Name), &sp)
		}
		return Param{Name: p.Name, Kind: ParamGlobalPtr, Elem: elem.Name}, nil
	}
	if !scalarKinds[named.Name] {
		return Param{}, errors.New(errors.KrnUnsupportedParam,
			fmt.Sprintf("parameter %q must be a scalar kind or global_ptr<scalar>", p.Name), &sp)
	}
	return Param{Name: p.Name, Kind: ParamScalar, Elem: named.Name}, nil
}
