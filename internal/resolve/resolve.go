// Package resolve implements the import resolver (spec §4.5): given one
// import clause and the importing file's path, it either rejects the
// clause outright (namespace/default/side-effect-only imports, a curated
// set of marker specifiers that contribute nothing to the emitted target),
// rewrites a relative specifier into a same-project module reference, or
// walks up from the importing file to find a package root carrying a
// bindings manifest and turns the specifier into target `use` items plus
// an external-crate dependency record.
//
// Grounded on internal/module/resolver.go's package-root walk and
// import-specifier resolution logic (deleted alongside the rest of
// AILANG's module loader; its directory-walk shape is reused here against
// internal/bindgen's manifest instead of AILANG's own module graph).
package resolve

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tsubalang/tsubac/internal/ast"
	"github.com/tsubalang/tsubac/internal/bindgen"
	"github.com/tsubalang/tsubac/internal/errors"
	"github.com/tsubalang/tsubac/internal/module"
	"github.com/tsubalang/tsubac/internal/span"
)

// ManifestFileName is the on-disk name a package root's bindings manifest
// must carry for the package-root walk to find it.
const ManifestFileName = "tsubac-bindings.json"

// SourceExt is the accepted source file extension a relative specifier
// must end with (or be mechanically rewritten to).
const SourceExt = ".tsu"

// markerSpecifiers is the curated set of import specifiers that are
// resolved to nothing: they exist so source files can `import` the core
// language markers (q, unsafe, move, annotate, Ok) and kernel coordinate
// intrinsics without those imports producing any emitted `use` item.
var markerSpecifiers = map[string]bool{
	"tsubac:core/lang":   true,
	"tsubac:core/types":  true,
	"tsubac:std/prelude": true,
	"tsubac:std/macros":  true,
	"tsubac:gpu/lang":    true,
	"tsubac:gpu/types":   true,
}

// ExternalCrate is one de-duplicated (by Name) native crate dependency
// recorded across the whole compile, consumed by the downstream build
// tool (spec §6 "external crate dependency record").
type ExternalCrate struct {
	Name     string
	Package  string
	Version  string
	Path     string
	Features []string
}

// UseItem is one resolved `use base::segs::name [as local];` reference.
type UseItem struct {
	Segments []string
	Name     string
	Alias    string // empty if not aliased
}

// Relative is the result of resolving a relative specifier: the target
// module path it now refers to (another user file already present in the
// module index).
type Relative struct {
	ModuleFile string
}

// External is the result of resolving a non-relative specifier against a
// package's bindings manifest.
type External struct {
	Uses  []UseItem
	Crate ExternalCrate
}

// Result is the outcome of resolving one import clause: exactly one of
// Ignored, Relative, or External is populated, matching resolution rule
// 1/2/3 in spec §4.5.
type Result struct {
	Ignored  bool
	Relative *Relative
	External *External
}

// ManifestLoader abstracts reading a bindings manifest from a package
// root, so tests can substitute an in-memory fixture instead of touching
// disk.
type ManifestLoader func(packageRoot string) (*bindgen.Manifest, error)

// Resolve resolves one import clause. importingFile is the project-
// relative, forward-slash normalized path of the file containing the
// import. idx is the compile's module index (used to validate a relative
// specifier resolves to a real, non-entry user file). findRoot walks up
// from a directory and returns the nearest ancestor containing
// ManifestFileName (empty string if none). loadManifest loads the
// manifest at a given package root.
func Resolve(
	imp *ast.ImportDecl,
	importingFile string,
	entryFile string,
	idx *module.Index,
	findRoot func(startDir string) string,
	loadManifest ManifestLoader,
) (*Result, error) {
	sp := imp.Span()

	if imp.SideEffectOnly {
		return nil, errors.New(errors.FniImportSideEffectOnly,
			"side-effect-only imports are rejected", &sp).WithData("specifier", imp.Specifier)
	}
	if imp.IsNamespace {
		return nil, errors.New(errors.FniImportNamespace,
			"namespace imports (`import * as x`) are rejected", &sp).WithData("specifier", imp.Specifier)
	}
	if imp.IsDefault {
		return nil, errors.New(errors.FniImportDefault,
			"default imports are rejected", &sp).WithData("specifier", imp.Specifier)
	}

	if markerSpecifiers[imp.Specifier] {
		return &Result{Ignored: true}, nil
	}

	if isRelative(imp.Specifier) {
		rel, err := resolveRelative(imp, importingFile, entryFile, idx, &sp)
		if err != nil {
			return nil, err
		}
		return &Result{Relative: rel}, nil
	}

	ext, err := resolveExternal(imp, importingFile, &sp, findRoot, loadManifest)
	if err != nil {
		return nil, err
	}
	return &Result{External: ext}, nil
}

func isRelative(specifier string) bool {
	return strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../")
}

func resolveRelative(imp *ast.ImportDecl, importingFile, entryFile string, idx *module.Index, sp *span.Span) (*Relative, error) {
	specifier := imp.Specifier
	if !strings.HasSuffix(specifier, SourceExt) {
		if strings.Contains(path.Base(specifier), ".") {
			return nil, errors.New(errors.FniImportRelativeExt,
				fmt.Sprintf("relative import %q must end with %q", specifier, SourceExt), sp).
				WithData("specifier", specifier)
		}
		specifier += SourceExt
	}

	importingDir := path.Dir(importingFile)
	target := span.NormalizeFile(path.Join(importingDir, specifier))

	if target == span.NormalizeFile(entryFile) {
		return nil, errors.New(errors.FniImportSelfEntry,
			fmt.Sprintf("import %q resolves to the entry module", imp.Specifier), sp).
			WithData("specifier", imp.Specifier)
	}

	if _, ok := idx.Lookup(target); !ok {
		return nil, errors.New(errors.FniImportUnresolvedPkg,
			fmt.Sprintf("relative import %q does not resolve to a known project file", imp.Specifier), sp).
			WithData("specifier", imp.Specifier).WithData("resolved", target)
	}

	return &Relative{ModuleFile: target}, nil
}

func resolveExternal(
	imp *ast.ImportDecl,
	importingFile string,
	sp *span.Span,
	findRoot func(startDir string) string,
	loadManifest ManifestLoader,
) (*External, error) {
	startDir := path.Dir(span.NormalizeFile(importingFile))
	root := findRoot(startDir)
	if root == "" {
		return nil, errors.New(errors.FniImportUnresolvedPkg,
			fmt.Sprintf("no package root found for import %q", imp.Specifier), sp).
			WithData("specifier", imp.Specifier)
	}

	man, err := loadManifest(root)
	if err != nil {
		return nil, errors.New(errors.FniImportMissingManifest,
			fmt.Sprintf("package root %q has no usable bindings manifest: %v", root, err), sp).
			WithData("specifier", imp.Specifier).WithData("packageRoot", root)
	}

	if err := validateManifestCrate(man, sp); err != nil {
		return nil, err
	}

	nativePath, ok := lookupSpecifier(man, imp.Specifier)
	if !ok {
		return nil, errors.New(errors.FniImportMissingMapping,
			fmt.Sprintf("import specifier %q is absent from the bindings manifest", imp.Specifier), sp).
			WithData("specifier", imp.Specifier)
	}

	segments := strings.Split(nativePath, "::")

	uses := make([]UseItem, 0, len(imp.Names))
	for _, n := range imp.Names {
		uses = append(uses, UseItem{Segments: segments, Name: n.Name, Alias: n.Alias})
	}

	return &External{
		Uses: uses,
		Crate: ExternalCrate{
			Name:     man.Crate.Name,
			Package:  man.Crate.Package,
			Version:  man.Crate.Version,
			Path:     man.Crate.Path,
			Features: man.Crate.Features,
		},
	}, nil
}

// lookupSpecifier finds the native module path an import specifier maps
// to. The manifest records one ModuleBindings entry per native module,
// keyed by the same string the source imports it as (the extractor
// registers each module under its import specifier, so this lookup table
// and the richer per-module binding record share one map instead of two —
// see DESIGN.md for why the on-disk shape folds both concerns together).
func lookupSpecifier(man *bindgen.Manifest, specifier string) (string, bool) {
	if _, ok := man.Modules[specifier]; ok {
		return specifier, true
	}
	return "", false
}

func validateManifestCrate(man *bindgen.Manifest, sp *span.Span) error {
	hasVersion := man.Crate.Version != ""
	hasPath := man.Crate.Path != ""
	if hasVersion == hasPath {
		return errors.New(errors.FniManifestVersionPath,
			fmt.Sprintf("crate %q must set exactly one of version or path", man.Crate.Name), sp).
			WithData("crate", man.Crate.Name)
	}
	return nil
}

// FindPackageRoot walks up from startDir looking for ManifestFileName,
// stopping at stopDir (the project root) inclusive. It is the production
// findRoot implementation Resolve expects; tests may substitute a fixture
// function instead.
func FindPackageRoot(startDir, stopDir string) string {
	dir := filepath.Clean(startDir)
	stop := filepath.Clean(stopDir)
	for {
		candidate := filepath.Join(dir, ManifestFileName)
		if fileExists(candidate) {
			return filepath.ToSlash(dir)
		}
		if dir == stop || dir == "." || dir == string(filepath.Separator) {
			return ""
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func fileExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}

// DedupeCrates merges a slice of external crate records by Name, keeping
// the first occurrence's fields and sorting the result for deterministic
// emission order.
func DedupeCrates(crates []ExternalCrate) []ExternalCrate {
	seen := make(map[string]ExternalCrate, len(crates))
	order := make([]string, 0, len(crates))
	for _, c := range crates {
		if _, ok := seen[c.Name]; !ok {
			order = append(order, c.Name)
			seen[c.Name] = c
		}
	}
	sort.Strings(order)
	out := make([]ExternalCrate, len(order))
	for i, name := range order {
		out[i] = seen[name]
	}
	return out
}
