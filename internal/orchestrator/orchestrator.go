// Package orchestrator drives the full compile (spec §2, §6): discover
// every source file reachable from the entry file, extract kernel
// declarations, lower every file to target IR, round-trip each function
// body through internal/mir, assemble the single target file the
// invocation contract promises, and render it with source spans attached.
//
// The orchestrator never writes to disk and never invokes a downstream
// build — per spec §6, "the orchestrator caller is responsible for
// writing files and invoking the downstream build." Its shape is
// grounded on the deleted internal/pipeline's Config/Mode +
// Run(cfg, src) Result pattern; progress is logged with
// github.com/sirupsen/logrus (SPEC_FULL.md §A.1), following
// consensys/go-corset's `log "github.com/sirupsen/logrus"` alias and
// WithFields/Debugf usage. Logging never reaches the default (Warn)
// level on the success path, so it cannot affect the determinism
// properties spec §8 requires of the returned text.
package orchestrator

import (
	"fmt"
	"path"

	log "github.com/sirupsen/logrus"

	"github.com/tsubalang/tsubac/internal/ast"
	"github.com/tsubalang/tsubac/internal/bindgen"
	"github.com/tsubalang/tsubac/internal/kernel"
	"github.com/tsubalang/tsubac/internal/lower"
	"github.com/tsubalang/tsubac/internal/module"
	"github.com/tsubalang/tsubac/internal/resolve"
	"github.com/tsubalang/tsubac/internal/sourcemap"
	"github.com/tsubalang/tsubac/internal/span"
	"github.com/tsubalang/tsubac/internal/targetir"
	"github.com/tsubalang/tsubac/internal/writer"
)

// RuntimeNone is the invocation contract's "no runtime" sentinel (spec
// §6). A compile that extracts at least one kernel while RuntimeKind is
// RuntimeNone is a configuration mismatch, not a source defect — it is
// rejected as a plain error before any launch site is even reached,
// rather than forced through the registered CompileError catalog (see
// DESIGN.md: orchestrator-level configuration/IO failures are plain Go
// errors, the same way file-read failures are).
const RuntimeNone = "none"

// Config is the invocation record the orchestrator is driven by (spec
// §6's `{ entryFile, runtimeKind? }`). It is the core's only
// configuration surface; flags, environment variables, and project
// config files are cmd/tsubac's concern, never internal/orchestrator's
// (SPEC_FULL.md §A.3).
type Config struct {
	EntryFile   string
	RuntimeKind string
}

// Result is the invocation contract's return value (spec §6's
// `{ mainText, sourceMap, kernels[], externalCrates[] }`).
type Result struct {
	MainText       string
	SourceMap      *sourcemap.Map
	Kernels        []*kernel.Decl
	ExternalCrates []resolve.ExternalCrate
}

// Run executes one full compile and returns its invocation-contract
// result. It is a pure function of the entry file's contents and
// whatever bindings manifests its import graph resolves against (spec
// §8 property 4): the only I/O it performs is reading source files and
// bindings manifests from disk, never writing anything back.
func Run(cfg Config) (*Result, error) {
	if cfg.EntryFile == "" {
		return nil, fmt.Errorf("orchestrator: entryFile is required")
	}
	runtimeKind := cfg.RuntimeKind
	if runtimeKind == "" {
		runtimeKind = RuntimeNone
	}
	entryFile := span.NormalizeFile(cfg.EntryFile)

	idx := module.NewIndex()
	files, err := discoverFiles(entryFile, idx)
	if err != nil {
		return nil, err
	}
	entries := idx.Entries()
	log.WithFields(log.Fields{"phase": "discover", "file": entryFile}).Debugf("discovered %d file(s)", len(entries))

	decls, kernelNames, err := extractKernels(files, entries)
	if err != nil {
		return nil, err
	}
	if len(decls) > 0 && runtimeKind == RuntimeNone {
		log.WithFields(log.Fields{"phase": "kernel"}).Warn("kernels declared but runtimeKind is \"none\"")
		return nil, fmt.Errorf("orchestrator: %d kernel(s) declared but runtimeKind is %q", len(decls), RuntimeNone)
	}
	for _, d := range decls {
		log.WithFields(log.Fields{"phase": "kernel", "kernel": d.Name}).Debug("extracted kernel declaration")
	}

	orderedFiles := make([]*ast.File, len(entries))
	for i, e := range entries {
		orderedFiles[i] = files[e.File]
	}
	prog, err := lower.Collect(orderedFiles)
	if err != nil {
		return nil, err
	}

	// The project root a bindings-manifest search may walk up to is the
	// entry file's own directory: every discovered file lives at or below
	// it (discovery only follows relative specifiers), and stopping there
	// keeps the search from ever reaching a directory outside the project
	// that could differ between two otherwise-identical checkouts (spec §8
	// property 5, relocation invariance).
	projectRoot := path.Dir(entryFile)
	findRoot := func(start string) string { return resolve.FindPackageRoot(start, projectRoot) }
	loadManifest := func(root string) (*bindgen.Manifest, error) {
		return bindgen.Load(path.Join(root, resolve.ManifestFileName))
	}

	perFileItems := make(map[string][]targetir.Item, len(entries))
	var crates []resolve.ExternalCrate
	for _, e := range entries {
		lw := lower.New(prog, idx, entryFile, findRoot, loadManifest)
		lw.KernelNames = kernelNames
		fi, err := lw.File(files[e.File])
		if err != nil {
			return nil, err
		}
		perFileItems[e.File] = flatten(fi)
		crates = append(crates, fi.Crates...)
		log.WithFields(log.Fields{"phase": "lower", "file": e.File}).Debugf("lowered %d item(s)", len(perFileItems[e.File]))
	}

	var mainFn *targetir.FnItem
	for _, e := range entries {
		rest, fn := extractMain(perFileItems[e.File])
		if fn != nil {
			perFileItems[e.File] = rest
			mainFn = fn
			break
		}
	}
	if mainFn == nil {
		// lower.Collect already validated exactly one `main` exists across
		// the package (ast-level), so reaching here means host lowering
		// dropped it somewhere — a bug in this package, not a source defect.
		return nil, fmt.Errorf("orchestrator: internal error: no lowered `main` function found")
	}

	var allItems []targetir.Item
	allItems = append(allItems, perFileItems[entryFile]...)
	for _, e := range entries {
		if e.File == entryFile {
			continue
		}
		allItems = append(allItems, &targetir.ModItem{Ident: e.Ident, Pub: true, Items: perFileItems[e.File]})
	}
	if len(decls) > 0 {
		loaderFile := kernel.GenerateLoaderRuntime(decls)
		allItems = append(allItems, &targetir.ModItem{Ident: kernel.RuntimeModuleIdent, Pub: true, Items: loaderFile.Items})
	}
	allItems = append(allItems, mainFn)

	normalizeBodies(allItems)

	finalFile := &targetir.File{ModuleIdent: "main", Items: allItems}
	mainText := writer.FileWithSpans(finalFile)

	sourceMap, err := sourcemap.Parse(mainText)
	if err != nil {
		return nil, err
	}

	return &Result{
		MainText:       mainText,
		SourceMap:      sourceMap,
		Kernels:        decls,
		ExternalCrates: resolve.DedupeCrates(crates),
	}, nil
}
