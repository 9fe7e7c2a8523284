package lower

import (
	"fmt"

	"github.com/tsubalang/tsubac/internal/ast"
	"github.com/tsubalang/tsubac/internal/errors"
	"github.com/tsubalang/tsubac/internal/span"
)

// Program is the cross-file symbol table host lowering consults while
// lowering any single file: declared interfaces (for `implements`/generic
// bound validation), discriminated-union aliases (so a switch on `.kind`
// can be checked for variant completeness), declared classes (for method
// signature lookups feeding borrow insertion), and top-level functions
// (same, for call-site borrow insertion and duplicate-name detection).
//
// A single source file has no module declaration of its own (see
// internal/module's doc comment), so every name declared anywhere in the
// package shares one flat namespace once lowered — duplicate detection
// therefore has to run across every file at once, which is why this is
// built up front by Collect rather than threaded through per-file lowering.
type Program struct {
	Interfaces map[string]*ast.InterfaceDecl
	Unions     map[string]*ast.TypeAliasDecl
	Classes    map[string]*ast.ClassDecl
	Functions  map[string]*ast.FuncDecl
}

func (p *Program) interfaceNameSet() map[string]bool {
	set := make(map[string]bool, len(p.Interfaces))
	for name := range p.Interfaces {
		set[name] = true
	}
	return set
}

// Collect walks every file's top-level declarations and builds the shared
// Program, validating the entry contract (exactly one `main`, spec §4.6)
// and rejecting any name declared more than once across the whole package.
func Collect(files []*ast.File) (*Program, error) {
	prog := &Program{
		Interfaces: map[string]*ast.InterfaceDecl{},
		Unions:     map[string]*ast.TypeAliasDecl{},
		Classes:    map[string]*ast.ClassDecl{},
		Functions:  map[string]*ast.FuncDecl{},
	}
	seen := map[string]span.Span{}
	declare := func(name string, at span.Span) error {
		if prev, ok := seen[name]; ok {
			return errors.New(errors.FniDuplicateHelperName,
				fmt.Sprintf("%q is declared more than once (first declared at %s)", name, prev), &at).
				WithData("name", name)
		}
		seen[name] = at
		return nil
	}

	var mains []*ast.FuncDecl
	for _, f := range files {
		for _, stmt := range f.Stmts {
			switch d := stmt.(type) {
			case *ast.InterfaceDecl:
				if err := declare(d.Name, d.Span()); err != nil {
					return nil, err
				}
				prog.Interfaces[d.Name] = d
			case *ast.ClassDecl:
				if err := declare(d.Name, d.Span()); err != nil {
					return nil, err
				}
				prog.Classes[d.Name] = d
			case *ast.TypeAliasDecl:
				if err := declare(d.Name, d.Span()); err != nil {
					return nil, err
				}
				if d.Union != nil {
					prog.Unions[d.Name] = d
				}
			case *ast.FuncDecl:
				if d.Name == "main" {
					mains = append(mains, d)
				}
				if err := declare(d.Name, d.Span()); err != nil {
					return nil, err
				}
				prog.Functions[d.Name] = d
			}
		}
	}

	if err := validateMain(mains); err != nil {
		return nil, err
	}
	return prog, nil
}

func validateMain(mains []*ast.FuncDecl) error {
	if len(mains) == 0 {
		return errors.New(errors.ExpMissingMain, "no top-level `main` function was found", nil)
	}
	if len(mains) > 1 {
		sp := mains[1].Span()
		return errors.New(errors.ExpDuplicateMain, "more than one top-level `main` function was declared", &sp)
	}

	main := mains[0]
	sp := main.Span()
	if len(main.Params) != 0 {
		return errors.New(errors.ExpBadMainSignature, "`main` must take no parameters", &sp)
	}
	if main.ReturnType == nil {
		return nil
	}

	named, ok := main.ReturnType.(*ast.NamedType)
	if !ok {
		return errors.New(errors.ExpBadMainSignature, "`main` must return `void` or `Result<void, E>`", &sp)
	}
	switch named.Name {
	case "void":
		return nil
	case "Result":
		if len(named.Args) == 2 {
			if ok0, ok := named.Args[0].(*ast.NamedType); ok && ok0.Name == "void" {
				return nil
			}
		}
		return errors.New(errors.ExpBadMainSignature, "`main` returning `Result` must use `Result<void, E>`", &sp)
	default:
		return errors.New(errors.ExpBadMainSignature, "`main` must return `void` or `Result<void, E>`", &sp)
	}
}
