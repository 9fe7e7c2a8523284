package bindgen

import (
	"fmt"
	"sort"
	"strings"
)

// Facade renders the declarations-only facade module for one extracted
// native module, in the accepted source language's own declare syntax
// (spec §8 Scenario F) rather than the native crate's own syntax: every
// bound struct becomes `export declare class Name { ... }` with a
// constructor and its instance/static methods, every enum becomes
// `export declare enum Name { ... }`, every trait becomes
// `export declare interface Name { ... }`, every free function becomes
// `export function name(...): Ret;`, and every const becomes
// `export declare const NAME: Type;`. Nothing here has a body — the facade
// exists purely so the rest of the compile can type-check against the
// native crate's surface without re-emitting its implementation.
//
// This text is never fed back through this project's own lexer/parser: the
// accepted grammar (SPEC_FULL.md §C) has no `declare` keyword, since a
// facade file is read by the downstream host toolchain, not recompiled by
// this core.
func Facade(modulePath string, mb *ModuleBindings) string {
	var b strings.Builder
	fmt.Fprintf(&b, "// facade for %s — generated, declarations only\n\n", modulePath)

	types := append([]TypeBinding(nil), mb.Types...)
	sort.Slice(types, func(i, j int) bool { return types[i].Name < types[j].Name })
	for _, ty := range types {
		switch ty.Kind {
		case "trait":
			writeInterface(&b, ty)
		case "enum":
			writeEnum(&b, ty)
		default:
			writeClass(&b, ty)
		}
		b.WriteString("\n")
	}

	values := append([]ValueBinding(nil), mb.Values...)
	sort.Slice(values, func(i, j int) bool { return values[i].Name < values[j].Name })
	for _, v := range values {
		fmt.Fprintf(&b, "export declare const %s: %s;\n", v.Name, v.Type)
	}
	if len(values) > 0 {
		b.WriteString("\n")
	}

	funcs := append([]FunctionBinding(nil), mb.Functions...)
	sort.Slice(funcs, func(i, j int) bool { return funcs[i].Name < funcs[j].Name })
	for _, fn := range funcs {
		fmt.Fprintf(&b, "export function %s%s(%s): %s;\n",
			fn.Name, generics(fn.Generics), paramList(fn.Params, fn.ParamNames), fn.Returns)
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

func writeClass(b *strings.Builder, ty TypeBinding) {
	fmt.Fprintf(b, "export declare class %s%s {\n", ty.Name, generics(ty.Generics))

	ctor, rest := splitConstructor(ty.Methods)
	switch {
	case ctor != nil:
		fmt.Fprintf(b, "  constructor(%s);\n", paramList(ctor.Params, ctor.ParamNames))
	case len(ty.Fields) > 0:
		params := make([]string, len(ty.Fields))
		for i, f := range ty.Fields {
			params[i] = fmt.Sprintf("%s: %s", f.Name, f.Type)
		}
		fmt.Fprintf(b, "  constructor(%s);\n", strings.Join(params, ", "))
	}

	for _, m := range rest {
		prefix := ""
		if m.Kind == "static" {
			prefix = "static "
		}
		fmt.Fprintf(b, "  %s%s%s(%s): %s;\n", prefix, m.Name, generics(m.Generics), paramList(m.Params, m.ParamNames), m.Returns)
	}

	b.WriteString("}\n")
}

// splitConstructor pulls the constructor method (if any) out of a struct's
// methods, returning the rest in original order.
func splitConstructor(methods []Method) (*Method, []Method) {
	for i, m := range methods {
		if m.Kind == "constructor" {
			ctor := m
			rest := make([]Method, 0, len(methods)-1)
			rest = append(rest, methods[:i]...)
			rest = append(rest, methods[i+1:]...)
			return &ctor, rest
		}
	}
	return nil, methods
}

func writeEnum(b *strings.Builder, ty TypeBinding) {
	fmt.Fprintf(b, "export declare enum %s {\n", ty.Name)
	for i, v := range ty.Variants {
		sep := ","
		if i == len(ty.Variants)-1 {
			sep = ""
		}
		fmt.Fprintf(b, "  %s%s\n", v.Name, sep)
	}
	b.WriteString("}\n")
}

func writeInterface(b *strings.Builder, ty TypeBinding) {
	fmt.Fprintf(b, "export declare interface %s%s {\n", ty.Name, generics(ty.Generics))
	for _, m := range ty.Methods {
		fmt.Fprintf(b, "  %s%s(%s): %s;\n", m.Name, generics(m.Generics), paramList(m.Params, m.ParamNames), m.Returns)
	}
	b.WriteString("}\n")
}

func generics(g []string) string {
	if len(g) == 0 {
		return ""
	}
	return "<" + strings.Join(g, ", ") + ">"
}

// paramList pairs each parameter's extracted type with its native
// signature's own name, falling back to a positional p0, p1, ... name for
// bindings that (e.g. through re-export cloning from an older manifest)
// carry no names.
func paramList(params, names []string) string {
	out := make([]string, len(params))
	for i, p := range params {
		name := fmt.Sprintf("p%d", i)
		if i < len(names) && names[i] != "" {
			name = names[i]
		}
		out[i] = fmt.Sprintf("%s: %s", name, p)
	}
	return strings.Join(out, ", ")
}
