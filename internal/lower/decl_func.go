package lower

import (
	"fmt"

	"github.com/tsubalang/tsubac/internal/ast"
	"github.com/tsubalang/tsubac/internal/errors"
	"github.com/tsubalang/tsubac/internal/targetir"
	"github.com/tsubalang/tsubac/internal/typelower"
)

// lowerFunc lowers a top-level function declaration (spec §4.6: every
// parameter carries an explicit type, generics are accepted only on a
// `declare`d external function where turbofish disambiguates the call
// site, and a `Promise<T>` return on an async function unwraps to `T`).
func (lw *Lowerer) lowerFunc(d *ast.FuncDecl) (*targetir.FnItem, error) {
	sp := d.Span()
	if d.Name == "" {
		return nil, errors.New(errors.FniUnnamedFunction, "top-level function declarations must be named", &sp)
	}
	if len(d.Generics) > 0 && !d.External {
		return nil, errors.New(errors.FniGenericFunctionV0,
			fmt.Sprintf("function %q has generic parameters but is not `declare`d external", d.Name), &sp)
	}
	for _, g := range d.Generics {
		if err := typelower.CheckConstraints(&g, sp, lw.Prog.interfaceNameSet()); err != nil {
			return nil, err
		}
	}

	params, err := lw.lowerParams(d.Params)
	if err != nil {
		return nil, err
	}

	ret, err := lw.lowerReturnType(d.ReturnType, d.Async)
	if err != nil {
		return nil, err
	}

	if d.Body == nil {
		if !d.External {
			return nil, errors.New(errors.FniMissingBody,
				fmt.Sprintf("function %q has no body and is not declared external", d.Name), &sp)
		}
		return &targetir.FnItem{
			Name:       d.Name,
			Generics:   genericNames(d.Generics),
			Params:     params,
			ReturnType: ret,
			Async:      d.Async,
			Pub:        true,
			Body:       nil,
		}, nil
	}

	lw.resetScope(d.Params)
	body, err := lw.lowerBody(d.Body)
	if err != nil {
		return nil, err
	}

	return &targetir.FnItem{
		Name:       d.Name,
		Generics:   genericNames(d.Generics),
		Params:     params,
		ReturnType: ret,
		Async:      d.Async,
		Pub:        true,
		Body:       body,
	}, nil
}

// lowerParams lowers an ordinary (non-`this`) parameter list, rejecting
// every parameter shape outside the accepted subset.
func (lw *Lowerer) lowerParams(ps []*ast.Param) ([]targetir.Param, error) {
	out := make([]targetir.Param, len(ps))
	for i, p := range ps {
		if p.Destructuring {
			return nil, errors.New(errors.FniDestructuredParam,
				fmt.Sprintf("parameter %q cannot use destructuring", p.Name), &p.Sp)
		}
		if p.Optional || p.HasDefault {
			return nil, errors.New(errors.FniOptionalParam,
				fmt.Sprintf("parameter %q cannot be optional or carry a default", p.Name), &p.Sp)
		}
		if p.Type == nil {
			return nil, errors.New(errors.FniMissingParamType,
				fmt.Sprintf("parameter %q has no type annotation", p.Name), &p.Sp)
		}
		ty, err := typelower.Lower(p.Type)
		if err != nil {
			return nil, err
		}
		out[i] = targetir.Param{Sp: p.Sp, Name: p.Name, Type: ty}
	}
	return out, nil
}

// lowerReturnType unwraps an async function's declared `Promise<T>` return
// to `T`; every other return annotation lowers unchanged.
func (lw *Lowerer) lowerReturnType(t ast.Type, async bool) (targetir.Type, error) {
	if t == nil {
		return &targetir.UnitType{}, nil
	}
	if async {
		if named, ok := t.(*ast.NamedType); ok && named.Name == "Promise" && len(named.Args) == 1 {
			return typelower.Lower(named.Args[0])
		}
	}
	return typelower.Lower(t)
}

// resetScope reinitializes the lexical-scope map for a new function body,
// recording each parameter's declared named-type so later statements in
// this body can resolve a local's type for borrow insertion and
// union-switch discriminant resolution.
func (lw *Lowerer) resetScope(params []*ast.Param) {
	lw.scope = map[string]string{}
	for _, p := range params {
		if named, ok := p.Type.(*ast.NamedType); ok {
			lw.scope[p.Name] = named.Name
		}
	}
}
