package orchestrator

import (
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/tsubalang/tsubac/internal/ast"
	"github.com/tsubalang/tsubac/internal/module"
	"github.com/tsubalang/tsubac/internal/parser"
	"github.com/tsubalang/tsubac/internal/resolve"
	"github.com/tsubalang/tsubac/internal/span"
)

// discoverFiles walks entryFile's relative import graph breadth-first,
// parsing every reachable source file exactly once and registering it in
// idx. It returns every parsed file keyed by its normalized path.
//
// Discovery only follows relative specifiers (internal/resolve's own
// isRelative rule): a non-relative specifier names an external crate,
// which contributes no further source files to parse. The target a
// relative specifier names is re-validated by internal/resolve once
// lowering actually resolves the import; discovery just needs enough of
// the same rewrite to find every file reachable from entryFile.
func discoverFiles(entryFile string, idx *module.Index) (map[string]*ast.File, error) {
	entryFile = span.NormalizeFile(entryFile)
	files := make(map[string]*ast.File)
	queue := []string{entryFile}

	for len(queue) > 0 {
		file := queue[0]
		queue = queue[1:]
		if _, ok := files[file]; ok {
			continue
		}

		src, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("orchestrator: read %s: %w", file, err)
		}
		f, err := parser.ParseFile(src, file)
		if err != nil {
			return nil, err
		}
		files[file] = f

		if _, err := idx.Add(file); err != nil {
			return nil, err
		}

		for _, stmt := range f.Stmts {
			imp, ok := stmt.(*ast.ImportDecl)
			if !ok || !isRelativeSpecifier(imp.Specifier) {
				continue
			}
			target := relativeImportTarget(file, imp.Specifier)
			if _, ok := files[target]; !ok {
				queue = append(queue, target)
			}
		}
	}

	return files, nil
}

func isRelativeSpecifier(specifier string) bool {
	return strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../")
}

// relativeImportTarget mirrors internal/resolve's own specifier rewrite
// (appending resolve.SourceExt when the specifier names no extension) so
// discovery and import resolution agree on which file a relative
// specifier names.
func relativeImportTarget(importingFile, specifier string) string {
	if !strings.HasSuffix(specifier, resolve.SourceExt) && !strings.Contains(path.Base(specifier), ".") {
		specifier += resolve.SourceExt
	}
	return span.NormalizeFile(path.Join(path.Dir(importingFile), specifier))
}
