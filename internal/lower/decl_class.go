package lower

import (
	"fmt"

	"github.com/tsubalang/tsubac/internal/ast"
	"github.com/tsubalang/tsubac/internal/errors"
	"github.com/tsubalang/tsubac/internal/targetir"
	"github.com/tsubalang/tsubac/internal/typelower"
)

// lowerClass lowers a class declaration to a struct item plus one or more
// impl blocks (spec §4.6): fields need explicit types, the constructor
// becomes an associated `new` function returning `Self`, and each instance
// method requires an explicit `this: ref<Self>`/`this: mutref<Self>`
// receiver. A method is placed in `impl Trait for T` when its name matches
// a method declared by one of the class's `implements` interfaces (looked
// up by name only — no `extends`-chain walk, see DESIGN.md); everything
// else, plus the constructor, goes in one inherent `impl T`.
func (lw *Lowerer) lowerClass(d *ast.ClassDecl) ([]targetir.Item, error) {
	if d.Name == "" {
		sp := d.Span()
		return nil, errors.New(errors.ClsAnonymousClass, "class declarations must be named", &sp)
	}

	fields := make([]targetir.Field, len(d.Fields))
	for i, f := range d.Fields {
		if f.Type == nil {
			return nil, errors.New(errors.ClsMissingFieldType,
				fmt.Sprintf("field %q of class %q has no type annotation", f.Name, d.Name), &f.Sp)
		}
		ty, err := typelower.Lower(f.Type)
		if err != nil {
			return nil, err
		}
		fields[i] = targetir.Field{Sp: f.Sp, Name: f.Name, Type: ty, Pub: true}
	}
	structItem := &targetir.StructItem{Name: d.Name, Fields: fields}

	traitMethods := map[string]map[string]bool{}
	for _, ifaceName := range d.Implements {
		iface, ok := lw.Prog.Interfaces[ifaceName]
		if !ok {
			sp := d.Span()
			return nil, errors.New(errors.ClsUnknownInterface,
				fmt.Sprintf("class %q implements undeclared interface %q", d.Name, ifaceName), &sp)
		}
		set := map[string]bool{}
		for _, m := range iface.Methods {
			set[m.Name] = true
		}
		traitMethods[ifaceName] = set
	}

	var inherent []*targetir.FnItem
	traitImpls := map[string][]*targetir.FnItem{}

	if d.Ctor != nil {
		ctorFn, err := lw.lowerCtor(d, d.Ctor)
		if err != nil {
			return nil, err
		}
		inherent = append(inherent, ctorFn)
	} else {
		inherent = append(inherent, defaultCtor(d, fields))
	}

	for _, m := range d.Methods {
		fn, err := lw.lowerMethod(d, m)
		if err != nil {
			return nil, err
		}
		placed := false
		for _, ifaceName := range d.Implements {
			if traitMethods[ifaceName][m.Name] {
				traitImpls[ifaceName] = append(traitImpls[ifaceName], fn)
				placed = true
				break
			}
		}
		if !placed {
			inherent = append(inherent, fn)
		}
	}

	items := []targetir.Item{structItem}
	items = append(items, &targetir.ImplItem{Type: d.Name, Methods: inherent})
	for _, ifaceName := range d.Implements {
		items = append(items, &targetir.ImplItem{Trait: ifaceName, Type: d.Name, Methods: traitImpls[ifaceName]})
	}
	return items, nil
}

// defaultCtor synthesizes `fn new(field: Type, ...) -> Self { Self { field, ... } }`
// for a class with no explicit constructor, mirroring the implicit
// memberwise constructor the accepted subset's class sugar provides.
func defaultCtor(d *ast.ClassDecl, fields []targetir.Field) *targetir.FnItem {
	params := make([]targetir.Param, len(fields))
	inits := make([]targetir.FieldInit, len(fields))
	for i, f := range fields {
		params[i] = targetir.Param{Sp: f.Sp, Name: f.Name, Type: f.Type}
		inits[i] = targetir.FieldInit{Sp: f.Sp, Name: f.Name, Value: &targetir.Ident{Name: f.Name}}
	}
	return &targetir.FnItem{
		Name:       "new",
		Params:     params,
		ReturnType: &targetir.NamedType{Name: "Self"},
		Pub:        true,
		Body: []targetir.Stmt{
			&targetir.ExprStmt{X: &targetir.StructLit{TypeName: "Self", Fields: inits}},
		},
	}
}

// lowerCtor scans the constructor body for `this.<field> = <expr>;`
// statements; every other statement becomes a prelude statement executed
// before the synthesized `Self { ... }` literal is returned. A declared
// field never assigned in the body is a missing-field-type-shaped error
// (ClsMissingFieldType is reused since no more specific code is
// registered for "constructor never initializes field X" — see
// DESIGN.md).
func (lw *Lowerer) lowerCtor(d *ast.ClassDecl, ctor *ast.CtorDecl) (*targetir.FnItem, error) {
	params, err := lw.lowerParams(ctor.Params)
	if err != nil {
		return nil, err
	}
	lw.resetScope(ctor.Params)

	inits := map[string]ast.Expr{}
	var prelude []ast.Stmt
	for _, s := range ctor.Body {
		if field, value, ok := fieldAssignment(s); ok {
			inits[field] = value
			continue
		}
		prelude = append(prelude, s)
	}

	preludeStmts, err := lw.lowerBody(prelude)
	if err != nil {
		return nil, err
	}

	fieldInits := make([]targetir.FieldInit, 0, len(d.Fields))
	for _, f := range d.Fields {
		expr, ok := inits[f.Name]
		if !ok {
			return nil, errors.New(errors.ClsMissingFieldType,
				fmt.Sprintf("constructor of class %q never initializes field %q", d.Name, f.Name), &ctor.Sp)
		}
		value, err := lw.lowerExpr(expr)
		if err != nil {
			return nil, err
		}
		fieldInits = append(fieldInits, targetir.FieldInit{Name: f.Name, Value: value})
	}

	body := append(preludeStmts, &targetir.ExprStmt{X: &targetir.StructLit{TypeName: "Self", Fields: fieldInits}})
	return &targetir.FnItem{
		Name:       "new",
		Params:     params,
		ReturnType: &targetir.NamedType{Name: "Self"},
		Pub:        true,
		Body:       body,
	}, nil
}

// lowerMethod lowers an instance or static method. Static methods are
// rejected outright (ClsStaticMethodV0: the accepted subset has no
// associated-function sugar beyond the constructor); an instance method
// must type its receiver explicitly as `this: ref<Self>`/`mutref<Self>`.
func (lw *Lowerer) lowerMethod(d *ast.ClassDecl, m *ast.MethodDecl) (*targetir.FnItem, error) {
	sp := m.Span()
	if m.Static {
		return nil, errors.New(errors.ClsStaticMethodV0,
			fmt.Sprintf("static method %q on class %q is not supported", m.Name, d.Name), &sp)
	}
	if m.This == nil || m.This.Raw {
		return nil, errors.New(errors.ClsBadThisTyping,
			fmt.Sprintf("method %q on class %q must type its receiver as `this: ref<Self>` or `this: mutref<Self>`", m.Name, d.Name), &sp)
	}

	params, err := lw.lowerParams(m.Params)
	if err != nil {
		return nil, err
	}
	recv := targetir.Param{
		Sp:   m.This.Sp,
		Name: "this",
		Type: &targetir.RefType{Mut: m.This.Mut, Elem: &targetir.NamedType{Name: d.Name}},
	}
	allParams := append([]targetir.Param{recv}, params...)

	ret, err := lw.lowerReturnType(m.ReturnType, m.Async)
	if err != nil {
		return nil, err
	}

	lw.resetScope(m.Params)
	lw.scope["this"] = d.Name
	body, err := lw.lowerBody(m.Body)
	if err != nil {
		return nil, err
	}

	return &targetir.FnItem{
		Name:       m.Name,
		Params:     allParams,
		ReturnType: ret,
		Async:      m.Async,
		Pub:        true,
		Body:       body,
	}, nil
}
