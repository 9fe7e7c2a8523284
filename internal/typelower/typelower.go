// Package typelower maps source type annotations (internal/ast) onto
// target IR types (internal/targetir), per the fixed table in spec §4.4:
// primitive integer/float/bool names and `void` pass through to the same-
// named target primitive (`void` becomes unit); `Str`/`String` map to the
// target's borrowed/owned string types; `Option`/`Result`/`Vec`/`HashMap`
// map to their canonical target paths; `mut<T>`, `ref<T>`/`mutref<T>`
// (with optional string-literal lifetime), `Slice<T>`, and `ArrayN<T,N>`
// lower through their own marker rules. Anything outside this table is a
// types-and-traits diagnostic (TypUnsupportedRef), not a panic: every
// source type annotation the user wrote reaches this package, including
// ones outside the accepted subset.
package typelower

import (
	"fmt"

	"github.com/tsubalang/tsubac/internal/ast"
	"github.com/tsubalang/tsubac/internal/errors"
	"github.com/tsubalang/tsubac/internal/span"
	"github.com/tsubalang/tsubac/internal/targetir"
)

// primitives are the source type names that pass through unchanged to the
// same-named target primitive.
var primitives = map[string]bool{
	"i8": true, "i16": true, "i32": true, "i64": true,
	"u8": true, "u16": true, "u32": true, "u64": true,
	"f32": true, "f64": true, "bool": true,
}

// namedAliases maps a source nominal name with no special argument
// handling to its target spelling (used for Str/String; Option/Result/Vec/
// HashMap are handled separately below since their args must also lower).
var namedAliases = map[string]string{
	"Str":    "str",
	"String": "std::string::String",
}

// genericPaths maps a source generic nominal name to its target path and
// the diagnostic code to raise if its argument count doesn't match.
var genericPaths = map[string]struct {
	path     string
	argCount int
	code     errors.Code
}{
	"Option":  {"Option", 1, errors.TypOptionArgCount},
	"Result":  {"Result", 2, errors.TypResultArgCount},
	"Vec":     {"Vec", 1, errors.TypVecArgCount},
	"HashMap": {"std::collections::HashMap", 2, errors.TypHashMapArgCount},
	"Slice":   {"", 1, errors.TypSliceArgCount}, // rendered as [T], no path
}

// Lower maps a single source type annotation to its target IR type. Callers
// (internal/lower) are responsible for surfacing the returned error via
// whatever CompileError aggregation the calling context uses.
func Lower(t ast.Type) (targetir.Type, error) {
	switch v := t.(type) {
	case *ast.NamedType:
		return lowerNamed(v)
	case *ast.RefType:
		return lowerRef(v)
	case *ast.MutType:
		// mut<T> erases to T; the caller (internal/lower) is responsible for
		// marking the surrounding let as mutable using the MutType marker
		// itself, since that information isn't representable in a Type alone.
		return Lower(v.Elem)
	case *ast.TupleType:
		return lowerTuple(v)
	case *ast.ArrayType:
		elem, err := Lower(v.Elem)
		if err != nil {
			return nil, err
		}
		return &targetir.SliceType{Sp: v.Sp, Elem: elem}, nil
	case *ast.ArrayNType:
		return lowerArrayN(v)
	case *ast.FuncType:
		return lowerFunc(v)
	default:
		return nil, errors.New(errors.TypUnsupportedRef,
			fmt.Sprintf("unsupported type construct %T", t), spanOf(t))
	}
}

func spanOf(t ast.Type) *span.Span {
	s := t.Span()
	return &s
}

func lowerNamed(v *ast.NamedType) (targetir.Type, error) {
	if len(v.Args) == 0 {
		if primitives[v.Name] {
			return &targetir.NamedType{Sp: v.Sp, Name: v.Name}, nil
		}
		if v.Name == "void" {
			return &targetir.UnitType{Sp: v.Sp}, nil
		}
		if alias, ok := namedAliases[v.Name]; ok {
			return &targetir.NamedType{Sp: v.Sp, Name: alias}, nil
		}
		// A plain user-declared nominal type (class/interface/alias name):
		// passes through unchanged, resolution of whether it's actually
		// declared is internal/lower's job (it has the project's symbol
		// table; this package only knows the fixed primitive/builtin table).
		return &targetir.NamedType{Sp: v.Sp, Name: v.Name}, nil
	}

	if g, ok := genericPaths[v.Name]; ok {
		if len(v.Args) != g.argCount {
			return nil, errors.New(g.code,
				fmt.Sprintf("%s requires exactly %d type argument(s), got %d", v.Name, g.argCount, len(v.Args)),
				&v.Sp)
		}
		args, err := lowerAll(v.Args)
		if err != nil {
			return nil, err
		}
		if v.Name == "Slice" {
			return &targetir.SliceType{Sp: v.Sp, Elem: args[0]}, nil
		}
		return &targetir.NamedType{Sp: v.Sp, Name: g.path, Args: args}, nil
	}

	// Any other generic nominal reference (a user-declared generic class,
	// interface, or type alias) lowers its arguments structurally and keeps
	// the source name as the target path.
	args, err := lowerAll(v.Args)
	if err != nil {
		return nil, err
	}
	return &targetir.NamedType{Sp: v.Sp, Name: v.Name, Args: args}, nil
}

func lowerAll(ts []ast.Type) ([]targetir.Type, error) {
	out := make([]targetir.Type, len(ts))
	for i, t := range ts {
		lowered, err := Lower(t)
		if err != nil {
			return nil, err
		}
		out[i] = lowered
	}
	return out, nil
}

func lowerRef(v *ast.RefType) (targetir.Type, error) {
	elem, err := Lower(v.Elem)
	if err != nil {
		return nil, err
	}
	return &targetir.RefType{
		Sp:       v.Sp,
		Mut:      v.Kind == ast.RefMut,
		Lifetime: v.Lifetime,
		Elem:     elem,
	}, nil
}

func lowerTuple(v *ast.TupleType) (targetir.Type, error) {
	elems, err := lowerAll(v.Elems)
	if err != nil {
		return nil, err
	}
	return &targetir.TupleType{Sp: v.Sp, Elems: elems}, nil
}

func lowerArrayN(v *ast.ArrayNType) (targetir.Type, error) {
	if v.N < 0 {
		return nil, errors.New(errors.TypArrayNArgCount,
			fmt.Sprintf("ArrayN length must be a non-negative integer literal, got %d", v.N), &v.Sp)
	}
	elem, err := Lower(v.Elem)
	if err != nil {
		return nil, err
	}
	return &targetir.ArrayType{Sp: v.Sp, Elem: elem, N: v.N}, nil
}

func lowerFunc(v *ast.FuncType) (targetir.Type, error) {
	params, err := lowerAll(v.Params)
	if err != nil {
		return nil, err
	}
	result, err := Lower(v.Result)
	if err != nil {
		return nil, err
	}
	return &targetir.FuncType{Sp: v.Sp, Params: params, Result: result}, nil
}

// CheckConstraints validates that every bound named on a generic parameter
// resolves to a declared interface in the project (spec §4.4: "Generic
// parameter constraints must resolve to declared interfaces in the
// project; intersection constraints are supported"). declaredInterfaces is
// the project-wide set internal/lower builds while walking top-level
// declarations; this package has no symbol table of its own.
func CheckConstraints(generic *ast.GenericParam, at span.Span, declaredInterfaces map[string]bool) error {
	for _, bound := range generic.Bounds {
		if !declaredInterfaces[bound] {
			return errors.New(errors.TypUnresolvedConstraint,
				fmt.Sprintf("constraint %q on generic parameter %q does not resolve to a declared interface", bound, generic.Name),
				&at)
		}
	}
	return nil
}
