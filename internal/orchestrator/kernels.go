package orchestrator

import (
	"github.com/tsubalang/tsubac/internal/ast"
	"github.com/tsubalang/tsubac/internal/kernel"
	"github.com/tsubalang/tsubac/internal/module"
)

// extractKernels runs internal/kernel's extractor over every discovered
// file, in module-index order (deterministic regardless of discovery
// order), and removes each recognized kernel constructor binding from its
// file's statement list: internal/lower's File doc comment expects
// kernel declarations to already be gone by the time host lowering walks
// a file, since kernel extraction validates and owns that form
// exclusively.
func extractKernels(files map[string]*ast.File, entries []*module.Entry) ([]*kernel.Decl, map[string]bool, error) {
	var all []*kernel.Decl
	names := map[string]bool{}

	for _, e := range entries {
		f := files[e.File]
		decls, err := kernel.Extract(f.Stmts)
		if err != nil {
			return nil, nil, err
		}
		if len(decls) == 0 {
			continue
		}
		for _, d := range decls {
			names[d.Name] = true
		}
		all = append(all, decls...)
		f.Stmts = filterOutKernelConsts(f.Stmts)
	}

	return all, names, nil
}

// filterOutKernelConsts drops every const whose initializer is a call to
// `kernel`: kernel.Extract has already accepted each of them (it fails the
// whole file otherwise), whatever the binding is named.
func filterOutKernelConsts(stmts []ast.Stmt) []ast.Stmt {
	out := stmts[:0:0]
	for _, s := range stmts {
		if cd, ok := s.(*ast.ConstDecl); ok {
			if call, ok := cd.Value.(*ast.CallExpr); ok {
				if id, ok := call.Callee.(*ast.Ident); ok && id.Name == "kernel" {
					continue
				}
			}
		}
		out = append(out, s)
	}
	return out
}
