package kernel

import (
	"fmt"

	"github.com/tsubalang/tsubac/internal/ast"
	"github.com/tsubalang/tsubac/internal/errors"
)

// LaunchCall is a recognized `K.launch({grid, block} as const, args...)`
// host-side call site, resolved to the loader runtime function it must be
// rewritten into.
type LaunchCall struct {
	KernelName string
	Grid       [3]ast.Expr
	Block      [3]ast.Expr
	Args       []ast.Expr
}

// RuntimeFnName is the free function the loader runtime exposes for one
// kernel's launches.
func (lc *LaunchCall) RuntimeFnName() string {
	return fmt.Sprintf("launch_%s", lc.KernelName)
}

// MatchLaunch recognizes a host-side `K.launch(...)` call against the set
// of declared kernel names and returns its parsed launch descriptor.
// Returning (nil, nil) means call is not a launch call at all (host
// lowering should keep walking it as an ordinary call expression); a
// non-nil error means it looked like a launch call but didn't match the
// grammar.
func MatchLaunch(call *ast.CallExpr, kernelNames map[string]bool) (*LaunchCall, error) {
	member, ok := call.Callee.(*ast.MemberExpr)
	if !ok || member.Prop != "launch" {
		return nil, nil
	}
	recv, ok := member.Obj.(*ast.Ident)
	if !ok || !kernelNames[recv.Name] {
		return nil, nil
	}

	sp := call.Span()
	if len(call.Args) < 1 {
		return nil, errors.New(errors.KrnLaunchShape, "launch() requires a {grid, block} as-const config argument", &sp)
	}
	cfg, ok := call.Args[0].(*ast.ObjectLit)
	if !ok || !cfg.AsConst {
		return nil, errors.New(errors.KrnLaunchShape, "launch()'s first argument must be an `as const` object literal", &sp)
	}

	var grid, block [3]ast.Expr
	var gridOK, blockOK bool
	for _, f := range cfg.Fields {
		switch f.Name {
		case "grid":
			grid, gridOK = dimsOf(f.Value)
		case "block":
			block, blockOK = dimsOf(f.Value)
		}
	}
	if !gridOK || !blockOK {
		return nil, errors.New(errors.KrnLaunchShape, "launch() config must set `grid` and `block` to 3-element arrays", &sp)
	}

	return &LaunchCall{
		KernelName: recv.Name,
		Grid:       grid,
		Block:      block,
		Args:       call.Args[1:],
	}, nil
}

func dimsOf(e ast.Expr) ([3]ast.Expr, bool) {
	arr, ok := e.(*ast.ArrayLit)
	if !ok || len(arr.Elems) != 3 {
		return [3]ast.Expr{}, false
	}
	return [3]ast.Expr{arr.Elems[0], arr.Elems[1], arr.Elems[2]}, true
}
