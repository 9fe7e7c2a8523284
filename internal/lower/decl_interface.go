package lower

import (
	"fmt"

	"github.com/tsubalang/tsubac/internal/ast"
	"github.com/tsubalang/tsubac/internal/errors"
	"github.com/tsubalang/tsubac/internal/targetir"
)

// lowerInterface lowers an interface declaration to a trait (spec §4.6):
// `extends` becomes supertraits, and a method carrying an optional marker
// or a default parameter is rejected since the target trait surface has
// no sugar for either. An interface with no methods still lowers — it
// becomes a marker trait.
func (lw *Lowerer) lowerInterface(d *ast.InterfaceDecl) (*targetir.TraitItem, error) {
	methods := make([]*targetir.FnItem, len(d.Methods))
	for i, m := range d.Methods {
		if m.Optional {
			sp := m.Span()
			return nil, errors.New(errors.TypTraitOptionalMember,
				fmt.Sprintf("method %q of interface %q cannot be optional", m.Name, d.Name), &sp)
		}
		for _, p := range m.Params {
			if p.Optional || p.HasDefault {
				return nil, errors.New(errors.TypTraitOptionalParam,
					fmt.Sprintf("parameter %q of %q.%q cannot be optional or carry a default", p.Name, d.Name, m.Name), &p.Sp)
			}
		}
		params, err := lw.lowerParams(m.Params)
		if err != nil {
			return nil, err
		}
		recv := targetir.Param{Name: "this", Type: &targetir.RefType{Mut: m.This != nil && m.This.Mut, Elem: &targetir.NamedType{Name: "Self"}}}
		ret, err := lw.lowerReturnType(m.ReturnType, m.Async)
		if err != nil {
			return nil, err
		}
		methods[i] = &targetir.FnItem{
			Name:       m.Name,
			Params:     append([]targetir.Param{recv}, params...),
			ReturnType: ret,
			Async:      m.Async,
			Body:       nil,
		}
	}
	return &targetir.TraitItem{Name: d.Name, Supers: d.Extends, Methods: methods}, nil
}
