package lower

import (
	"fmt"

	"github.com/tsubalang/tsubac/internal/ast"
	"github.com/tsubalang/tsubac/internal/errors"
	"github.com/tsubalang/tsubac/internal/targetir"
	"github.com/tsubalang/tsubac/internal/typelower"
)

// lowerTypeAlias lowers a plain or generic nominal type alias. Conditional/
// mapped/intersection/infer alias bodies have no AST representation at all
// (the parser rejects conditional, mapped and intersection bodies with
// TYP0011/TYP0012/TYP0010; an `infer` only occurs inside a conditional, so
// it is reported as TYP0011), so by the time a
// TypeAliasDecl with Union == nil reaches here, its Body is always a
// structurally lowerable Type.
func (lw *Lowerer) lowerTypeAlias(d *ast.TypeAliasDecl) (*targetir.TypeAliasItem, error) {
	target, err := typelower.Lower(d.Body)
	if err != nil {
		return nil, err
	}
	return &targetir.TypeAliasItem{
		Name:     d.Name,
		Generics: genericNames(d.Generics),
		Target:   target,
	}, nil
}

// lowerUnion lowers a discriminated-union alias (`A | B | ...`, each
// variant sharing a `kind: "..."` literal field) to a tagged enum: the
// enum's variant names are the PascalCased `kind` literals, and the
// variant's fields are every other field of that branch's object type.
// Two branches sharing the same `kind` literal are rejected
// (TypDuplicateUnionKind).
func (lw *Lowerer) lowerUnion(d *ast.TypeAliasDecl) (*targetir.EnumItem, error) {
	variants := make([]targetir.EnumVariant, len(d.Union))
	seenKinds := map[string]bool{}
	for i, branch := range d.Union {
		if seenKinds[branch.Kind] {
			return nil, errors.New(errors.TypDuplicateUnionKind,
				fmt.Sprintf("union %q has more than one variant with kind %q", d.Name, branch.Kind), &branch.KindSpan)
		}
		seenKinds[branch.Kind] = true

		var fields []targetir.Field
		for _, f := range branch.Fields {
			if f.Name == "kind" {
				continue
			}
			ty, err := typelower.Lower(f.Type)
			if err != nil {
				return nil, err
			}
			fields = append(fields, targetir.Field{Sp: f.Sp, Name: f.Name, Type: ty})
		}
		variants[i] = targetir.EnumVariant{Sp: branch.Sp, Name: pascalCase(branch.Kind), Fields: fields}
	}
	return &targetir.EnumItem{Name: d.Name, Variants: variants}, nil
}
