package lower

import (
	"strings"

	"github.com/tsubalang/tsubac/internal/ast"
	"github.com/tsubalang/tsubac/internal/resolve"
	"github.com/tsubalang/tsubac/internal/targetir"
)

// lowerImport resolves one import clause via internal/resolve and turns
// the result into zero or more `use` items plus any external crate
// dependency it introduces. A resolved-to-nothing marker-specifier import
// (spec §4.5 rule 1) contributes no items.
func (lw *Lowerer) lowerImport(d *ast.ImportDecl, importingFile string) ([]targetir.Item, []resolve.ExternalCrate, error) {
	res, err := resolve.Resolve(d, importingFile, lw.EntryFile, lw.ModIndex, lw.FindRoot, lw.LoadManifest)
	if err != nil {
		return nil, nil, err
	}
	if res.Ignored {
		return nil, nil, nil
	}

	if res.Relative != nil {
		entry, ok := lw.ModIndex.Lookup(res.Relative.ModuleFile)
		if !ok {
			// resolve.Resolve already validated this file is registered; this
			// branch is unreachable in practice but kept defensive.
			return nil, nil, nil
		}
		items := make([]targetir.Item, len(d.Names))
		for i, n := range d.Names {
			path := "crate::" + entry.Ident + "::" + n.Name
			if n.Alias != "" {
				path += " as " + n.Alias
			}
			items[i] = &targetir.UseItem{Path: path}
		}
		return items, nil, nil
	}

	ext := res.External
	items := make([]targetir.Item, len(ext.Uses))
	for i, u := range ext.Uses {
		path := strings.Join(u.Segments, "::") + "::" + u.Name
		if u.Alias != "" {
			path += " as " + u.Alias
		}
		items[i] = &targetir.UseItem{Path: path}
	}
	return items, []resolve.ExternalCrate{ext.Crate}, nil
}
