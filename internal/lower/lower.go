// Package lower implements host lowering (spec §4.6): given the accepted
// source-language subset (see internal/ast/internal/parser), it produces
// target-IR items (internal/targetir) ready for internal/writer to render.
//
// The walk follows the teacher's deleted internal/elaborate package in
// spirit — a single recursive-descent pass that raises a CompileError the
// moment it meets something outside the accepted subset, rather than
// collecting a batch of diagnostics (consistent with spec §7: "components
// raise CompileError at the first problem").
package lower

import (
	"fmt"

	"github.com/tsubalang/tsubac/internal/ast"
	"github.com/tsubalang/tsubac/internal/errors"
	"github.com/tsubalang/tsubac/internal/module"
	"github.com/tsubalang/tsubac/internal/resolve"
	"github.com/tsubalang/tsubac/internal/targetir"
)

// Lowerer holds everything one file's lowering needs beyond the file
// itself: the package-wide symbol table, the module index assigning every
// source file its target module identifier, and the import resolver's
// dependencies.
type Lowerer struct {
	Prog         *Program
	ModIndex     *module.Index
	EntryFile    string
	FindRoot     func(string) string
	LoadManifest resolve.ManifestLoader

	// KernelNames is the set of symbol names internal/kernel extracted as
	// kernel declarations, set by the orchestrator once for the whole
	// compile before any file is lowered. A nil/empty map is the "no
	// kernels in this compile" case: every member-call simply lowers as an
	// ordinary method call, since no receiver can match.
	KernelNames map[string]bool

	// scope maps a local variable/parameter name to its declared named-type
	// name, within the function currently being lowered. Because every
	// binding in the accepted subset carries an explicit type annotation,
	// this gives call-site borrow insertion and union-switch resolution
	// enough of a "type" to work from without a real inference pass.
	scope map[string]string

	// anonSigs/AnonStructs implement anonymous-struct deduplication: the
	// same `Anon_<hash>` name always carries the same field signature
	// (ExpAnonStructCollision otherwise), and each name is only emitted
	// once per file. The name is derived from the literal's span, so two
	// literals of the same shape at different positions get two structs.
	anonSigs    map[string]string
	AnonStructs []targetir.Item
}

// New builds a Lowerer for one compile. prog is shared read-only state
// built once by Collect; idx/entryFile/findRoot/loadManifest are the same
// values the orchestrator threads through internal/resolve.
func New(prog *Program, idx *module.Index, entryFile string, findRoot func(string) string, loadManifest resolve.ManifestLoader) *Lowerer {
	return &Lowerer{
		Prog:         prog,
		ModIndex:     idx,
		EntryFile:    entryFile,
		FindRoot:     findRoot,
		LoadManifest: loadManifest,
		scope:        map[string]string{},
		anonSigs:     map[string]string{},
	}
}

// FileItems is one file's lowered items, grouped the way the emission
// order in spec §4.6 requires them assembled: use items, then type
// aliases, then traits, then structs/enums, then helper functions. The
// orchestrator concatenates these groups (in this order) across every
// file, wraps non-entry files in a `mod <ident> {}` block, and appends
// `main` last.
type FileItems struct {
	Uses      []targetir.Item
	Aliases   []targetir.Item
	Traits    []targetir.Item
	Structs   []targetir.Item
	Functions []targetir.Item
	Crates    []resolve.ExternalCrate
}

// File lowers one source file's top-level forms. Kernel constructor
// declarations (`const K = kernel(...)`) are expected to already have been
// extracted by internal/kernel and removed from f.Stmts before this runs;
// any ConstDecl still present here is not a kernel declaration and is
// rejected with FniUnsupportedTopLevel.
func (lw *Lowerer) File(f *ast.File) (*FileItems, error) {
	out := &FileItems{}
	var annotations []*ast.AnnotateStmt

	for _, stmt := range f.Stmts {
		switch d := stmt.(type) {
		case *ast.ImportDecl:
			items, crates, err := lw.lowerImport(d, f.Path)
			if err != nil {
				return nil, err
			}
			out.Uses = append(out.Uses, items...)
			out.Crates = append(out.Crates, crates...)

		case *ast.ExportEmptyDecl:
			// The only accepted export form carries no semantics to lower.

		case *ast.TypeAliasDecl:
			if d.Union != nil {
				item, err := lw.lowerUnion(d)
				if err != nil {
					return nil, err
				}
				out.Structs = append(out.Structs, item)
				continue
			}
			item, err := lw.lowerTypeAlias(d)
			if err != nil {
				return nil, err
			}
			out.Aliases = append(out.Aliases, item)

		case *ast.InterfaceDecl:
			item, err := lw.lowerInterface(d)
			if err != nil {
				return nil, err
			}
			out.Traits = append(out.Traits, item)

		case *ast.ClassDecl:
			items, err := lw.lowerClass(d)
			if err != nil {
				return nil, err
			}
			out.Structs = append(out.Structs, items...)

		case *ast.FuncDecl:
			item, err := lw.lowerFunc(d)
			if err != nil {
				return nil, err
			}
			out.Functions = append(out.Functions, item)

		case *ast.ConstDecl:
			sp := d.Span()
			return nil, errors.New(errors.FniUnsupportedTopLevel,
				fmt.Sprintf("top-level const %q is not a kernel declaration", d.Name), &sp)

		case *ast.AnnotateStmt:
			annotations = append(annotations, d)

		default:
			sp := stmt.Span()
			return nil, errors.New(errors.FniUnsupportedTopLevel, fmt.Sprintf("unsupported top-level form %T", stmt), &sp)
		}
	}

	for _, a := range annotations {
		if err := lw.applyAnnotation(out, a); err != nil {
			return nil, err
		}
	}

	out.Structs = append(out.Structs, lw.AnonStructs...)
	lw.AnonStructs = nil
	return out, nil
}

// applyAnnotation implements `annotate(Target, attr(derive, \`A, B\`));`
// (spec §4.6): the only attribute form the target IR can carry is a
// struct/enum's Derives list (see targetir.StructItem's doc comment), so
// `derive` is the only attribute name accepted here.
func (lw *Lowerer) applyAnnotation(out *FileItems, a *ast.AnnotateStmt) error {
	if a.Name != "derive" {
		sp := a.Span()
		return errors.New(errors.FniUnsupportedTopLevel,
			fmt.Sprintf("annotate() attribute %q is not supported (only `derive` is)", a.Name), &sp)
	}
	names := splitDeriveTokens(a.Tokens)
	for _, it := range out.Structs {
		switch v := it.(type) {
		case *targetir.StructItem:
			if v.Name == a.Target {
				v.Derives = append(v.Derives, names...)
				return nil
			}
		case *targetir.EnumItem:
			if v.Name == a.Target {
				v.Derives = append(v.Derives, names...)
				return nil
			}
		}
	}
	sp := a.Span()
	return errors.New(errors.FniUnsupportedTopLevel,
		fmt.Sprintf("annotate() target %q does not name a struct or enum declared in this file", a.Target), &sp)
}
