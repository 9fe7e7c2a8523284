package bindgen

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ExtractCrate extracts every module reachable from a native crate's entry
// point (`lib.rs` or `main.rs` at rootDir), recursing through `pub mod
// name;` declarations per §4.9's module traversal rule: a submodule
// resolves to `name.rs` next to its declaring file, or `name/mod.rs` in a
// same-named subdirectory. Once every module is extracted, `pub use`
// re-exports are resolved against the full same-run symbol table: a
// resolvable re-export clones the referenced declaration into the
// re-exporting module, and only genuinely unresolvable ones (symbols this
// crate never declared, or relative `super::`/`self::` paths this pass
// does not track module nesting for) remain in the skipped-report.
//
// Crates with no lib.rs/main.rs entry point (a bare directory of already-
// split modules, as in a vendored fixture) fall back to extracting every
// .rs file directly, keyed by its path relative to rootDir — there is no
// root declaration to recurse `pub mod` through.
func ExtractCrate(rootDir string) (map[string]*ModuleBindings, []SkippedEntry, error) {
	modules := make(map[string]*ModuleBindings)
	var skipped []SkippedEntry
	var pending []pendingReexport

	entry, found := findEntryFile(rootDir)
	if found {
		if err := walkModule(entry, "", modules, &skipped, &pending); err != nil {
			return nil, nil, err
		}
	} else {
		if err := walkFlat(rootDir, modules, &skipped, &pending); err != nil {
			return nil, nil, err
		}
	}

	skipped = append(skipped, resolveReexports(modules, pending)...)
	for _, mb := range modules {
		sortModuleBindings(mb)
	}
	return modules, skipped, nil
}

func findEntryFile(rootDir string) (string, bool) {
	for _, name := range []string{"lib.rs", "main.rs"} {
		p := filepath.Join(rootDir, name)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, true
		}
	}
	return "", false
}

// walkModule extracts one module file and recurses into each `pub mod
// name;` it declares, looking for the child file alongside it.
func walkModule(filePath, modulePath string, modules map[string]*ModuleBindings, skipped *[]SkippedEntry, pending *[]pendingReexport) error {
	src, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("bindgen: read %s: %w", filePath, err)
	}
	mb, sk, submods, re := ExtractModule(modulePath, string(src))
	modules[modulePath] = mb
	*skipped = append(*skipped, sk...)
	*pending = append(*pending, re...)

	dir := filepath.Dir(filePath)
	for _, name := range submods {
		childPath := moduleChildPath(modulePath, name)
		fileCandidate := filepath.Join(dir, name+".rs")
		dirCandidate := filepath.Join(dir, name, "mod.rs")

		var childFile string
		switch {
		case fileExists(fileCandidate):
			childFile = fileCandidate
		case fileExists(dirCandidate):
			childFile = dirCandidate
		default:
			*skipped = append(*skipped, SkippedEntry{
				Module: modulePath, Name: name, Kind: "unparsed",
				Reason: fmt.Sprintf("pub mod %s; declared but neither %s.rs nor %s/mod.rs exists", name, name, name),
			})
			continue
		}
		if err := walkModule(childFile, childPath, modules, skipped, pending); err != nil {
			return err
		}
	}
	return nil
}

func walkFlat(rootDir string, modules map[string]*ModuleBindings, skipped *[]SkippedEntry, pending *[]pendingReexport) error {
	return filepath.Walk(rootDir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.HasSuffix(p, ".rs") {
			return nil
		}
		rel, err := filepath.Rel(rootDir, p)
		if err != nil {
			return err
		}
		modulePath := strings.ReplaceAll(strings.TrimSuffix(filepath.ToSlash(rel), ".rs"), "/", "::")
		src, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		mb, sk, _, re := ExtractModule(modulePath, string(src))
		modules[modulePath] = mb
		*skipped = append(*skipped, sk...)
		*pending = append(*pending, re...)
		return nil
	})
}

func fileExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}

func moduleChildPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "::" + name
}

// resolveReexports resolves every pending `pub use` against the full
// same-run module map. Only crate-rooted paths (`crate::a::b::Symbol`) are
// resolved: `super::`/`self::` relative paths would need each module's
// parent tracked through the walk, which this pass does not do, so they
// fall straight through to the unresolved branch below.
func resolveReexports(modules map[string]*ModuleBindings, pending []pendingReexport) []SkippedEntry {
	var skipped []SkippedEntry
	for _, re := range pending {
		modPath, symbol := splitReexportPath(re.Path)
		target, ok := modules[modPath]
		if !ok {
			skipped = append(skipped, SkippedEntry{
				Module: re.Module, Name: symbol, Kind: "reexport",
				Reason: fmt.Sprintf("module %q not found in this crate", modPath),
			})
			continue
		}

		name := re.As
		if name == "" {
			name = symbol
		}
		dst := modules[re.Module]
		resolved := false

		for _, fn := range target.Functions {
			if fn.Name == symbol {
				fn.Name = name
				dst.Functions = append(dst.Functions, fn)
				resolved = true
				break
			}
		}
		if !resolved {
			for _, ty := range target.Types {
				if ty.Name == symbol {
					ty.Name = name
					dst.Types = append(dst.Types, ty)
					resolved = true
					break
				}
			}
		}
		if !resolved {
			for _, v := range target.Values {
				if v.Name == symbol {
					v.Name = name
					dst.Values = append(dst.Values, v)
					resolved = true
					break
				}
			}
		}
		if !resolved {
			skipped = append(skipped, SkippedEntry{
				Module: re.Module, Name: symbol, Kind: "reexport",
				Reason: fmt.Sprintf("symbol %q not found in module %q", symbol, modPath),
			})
		}
	}
	return skipped
}

// splitReexportPath turns a `crate::a::b::Symbol` path into its owning
// module path and trailing symbol name.
func splitReexportPath(path string) (modPath, symbol string) {
	path = strings.TrimPrefix(path, "crate::")
	idx := strings.LastIndex(path, "::")
	if idx < 0 {
		return "", path
	}
	return path[:idx], path[idx+2:]
}
