// Package writer deterministically renders a targetir.File to target
// source text (spec §4.3). Determinism here means the same IR
// value always renders to the same bytes: no map iteration reaches the
// output without having been sorted first by the caller (internal/lower,
// internal/kernel) — the writer itself is a pure
// recursive-descent printer over an already-ordered tree, the same shape
// as the teacher's internal/ast print.go.
package writer

import (
	"fmt"
	"strings"

	"github.com/tsubalang/tsubac/internal/sourcemap"
	"github.com/tsubalang/tsubac/internal/targetir"
)

const indentUnit = "    "

// File renders a complete target source file.
func File(f *targetir.File) string {
	var w printer
	for i, item := range f.Items {
		if i > 0 {
			w.blank()
		}
		w.item(item, 0)
	}
	return w.buf.String()
}

// FileWithSpans renders a complete target source file the same way File
// does, additionally prefixing every statement that carries a non-zero
// span with the sourcemap comment locating it (spec §4.2, §6) —
// internal/sourcemap.Parse then recovers these comments back into a
// queryable target-to-source map from the rendered text. internal/orchestrator
// is the only caller: every other user of this package renders span-free
// text (tests, fixtures) via File.
func FileWithSpans(f *targetir.File) string {
	w := printer{emitSpans: true}
	for i, item := range f.Items {
		if i > 0 {
			w.blank()
		}
		w.item(item, 0)
	}
	return w.buf.String()
}

type printer struct {
	buf       strings.Builder
	emitSpans bool
}

func (p *printer) blank() { p.buf.WriteByte('\n') }

func (p *printer) line(indent int, format string, args ...any) {
	p.buf.WriteString(strings.Repeat(indentUnit, indent))
	fmt.Fprintf(&p.buf, format, args...)
	p.buf.WriteByte('\n')
}

func (p *printer) raw(s string) { p.buf.WriteString(s) }

func pub(isPub bool) string {
	if isPub {
		return "pub "
	}
	return ""
}

func generics(names []string) string {
	if len(names) == 0 {
		return ""
	}
	return "<" + strings.Join(names, ", ") + ">"
}

func (p *printer) item(it targetir.Item, indent int) {
	switch v := it.(type) {
	case *targetir.UseItem:
		p.line(indent, "use %s;", v.Path)

	case *targetir.ModItem:
		if v.Items == nil {
			p.line(indent, "%smod %s;", pub(v.Pub), v.Ident)
			return
		}
		p.line(indent, "%smod %s {", pub(v.Pub), v.Ident)
		for i, child := range v.Items {
			if i > 0 {
				p.blank()
			}
			p.item(child, indent+1)
		}
		p.line(indent, "}")

	case *targetir.StructItem:
		if len(v.Derives) > 0 {
			p.line(indent, "#[derive(%s)]", strings.Join(v.Derives, ", "))
		}
		if len(v.Fields) == 0 {
			p.line(indent, "pub struct %s%s;", v.Name, generics(v.Generics))
			return
		}
		p.line(indent, "pub struct %s%s {", v.Name, generics(v.Generics))
		for _, f := range v.Fields {
			p.line(indent+1, "%s%s: %s,", pub(f.Pub), f.Name, Type(f.Type))
		}
		p.line(indent, "}")

	case *targetir.EnumItem:
		if len(v.Derives) > 0 {
			p.line(indent, "#[derive(%s)]", strings.Join(v.Derives, ", "))
		}
		p.line(indent, "pub enum %s%s {", v.Name, generics(v.Generics))
		for _, variant := range v.Variants {
			if len(variant.Fields) == 0 {
				p.line(indent+1, "%s,", variant.Name)
				continue
			}
			p.buf.WriteString(strings.Repeat(indentUnit, indent+1))
			fmt.Fprintf(&p.buf, "%s { ", variant.Name)
			for i, f := range variant.Fields {
				if i > 0 {
					p.buf.WriteString(", ")
				}
				fmt.Fprintf(&p.buf, "%s: %s", f.Name, Type(f.Type))
			}
			p.buf.WriteString(" },\n")
		}
		p.line(indent, "}")

	case *targetir.FnItem:
		p.fnSignature(v, indent)
		if v.Body == nil {
			p.raw(";\n")
			return
		}
		p.raw(" {\n")
		for _, s := range v.Body {
			p.stmt(s, indent+1)
		}
		p.line(indent, "}")

	case *targetir.ImplItem:
		header := fmt.Sprintf("impl%s %s", generics(v.Generics), v.Type)
		if v.Trait != "" {
			header = fmt.Sprintf("impl%s %s for %s", generics(v.Generics), v.Trait, v.Type)
		}
		p.line(indent, "%s {", header)
		for i, m := range v.Methods {
			if i > 0 {
				p.blank()
			}
			p.item(m, indent+1)
		}
		p.line(indent, "}")

	case *targetir.TraitItem:
		supers := ""
		if len(v.Supers) > 0 {
			supers = ": " + strings.Join(v.Supers, " + ")
		}
		p.line(indent, "pub trait %s%s {", v.Name, supers)
		for i, m := range v.Methods {
			if i > 0 {
				p.blank()
			}
			p.item(m, indent+1)
		}
		p.line(indent, "}")

	case *targetir.TypeAliasItem:
		p.line(indent, "type %s%s = %s;", v.Name, generics(v.Generics), Type(v.Target))

	case *targetir.ConstItem:
		p.line(indent, "pub const %s: %s = %s;", v.Name, Type(v.Type), Expr(v.Value))

	case *targetir.StaticItem:
		mut := ""
		if v.Mut {
			mut = "mut "
		}
		p.line(indent, "static %s%s: %s = %s;", mut, v.Name, Type(v.Type), Expr(v.Value))

	case *targetir.RawItem:
		p.raw(v.Text)
		if !strings.HasSuffix(v.Text, "\n") {
			p.raw("\n")
		}

	default:
		p.line(indent, "/* unknown item %T */", it)
	}
}

func (p *printer) fnSignature(v *targetir.FnItem, indent int) {
	async := ""
	if v.Async {
		async = "async "
	}
	params := make([]string, len(v.Params))
	for i, param := range v.Params {
		if param.Name == "this" {
			params[i] = Type(param.Type) + " this"
			if rt, ok := param.Type.(*targetir.RefType); ok {
				sigil := "&"
				if rt.Mut {
					sigil = "&mut "
				} else {
					sigil = "&"
				}
				params[i] = sigil + "self"
			}
			continue
		}
		params[i] = fmt.Sprintf("%s: %s", param.Name, Type(param.Type))
	}

	ret := ""
	if v.ReturnType != nil {
		if _, unit := v.ReturnType.(*targetir.UnitType); !unit {
			ret = " -> " + Type(v.ReturnType)
		}
	}

	where := ""
	if len(v.Bounds) > 0 {
		var clauses []string
		for _, g := range v.Generics {
			if bounds, ok := v.Bounds[g]; ok && len(bounds) > 0 {
				clauses = append(clauses, fmt.Sprintf("%s: %s", g, strings.Join(bounds, " + ")))
			}
		}
		if len(clauses) > 0 {
			where = " where " + strings.Join(clauses, ", ")
		}
	}

	p.buf.WriteString(strings.Repeat(indentUnit, indent))
	fmt.Fprintf(&p.buf, "%s%sfn %s%s(%s)%s%s", pub(v.Pub), async, v.Name, generics(v.Generics), strings.Join(params, ", "), ret, where)
}

func (p *printer) stmt(s targetir.Stmt, indent int) {
	if p.emitSpans {
		if sp := s.Span(); !sp.IsZero() {
			p.line(indent, "%s", sourcemap.Comment(sp))
		}
	}
	switch v := s.(type) {
	case *targetir.LetStmt:
		mut := ""
		if v.Mut {
			mut = "mut "
		}
		ty := ""
		if v.Type != nil {
			ty = ": " + Type(v.Type)
		}
		p.line(indent, "let %s%s%s = %s;", mut, v.Name, ty, Expr(v.Value))
	case *targetir.ExprStmt:
		p.line(indent, "%s;", Expr(v.X))
	case *targetir.ReturnStmt:
		if v.Value == nil {
			p.line(indent, "return;")
		} else {
			p.line(indent, "return %s;", Expr(v.Value))
		}
	case *targetir.BreakStmt:
		p.line(indent, "break;")
	case *targetir.ContinueStmt:
		p.line(indent, "continue;")
	case *targetir.IfStmt:
		p.line(indent, "if %s {", Expr(v.Cond))
		for _, s2 := range v.Then {
			p.stmt(s2, indent+1)
		}
		if v.Else != nil {
			p.line(indent, "} else {")
			for _, s2 := range v.Else {
				p.stmt(s2, indent+1)
			}
		}
		p.line(indent, "}")
	case *targetir.WhileStmt:
		p.line(indent, "while %s {", Expr(v.Cond))
		for _, s2 := range v.Body {
			p.stmt(s2, indent+1)
		}
		p.line(indent, "}")
	case *targetir.MatchStmt:
		p.line(indent, "match %s {", Expr(v.Scrutinee))
		for _, arm := range v.Arms {
			p.line(indent+1, "%s => {", arm.Pattern)
			for _, s2 := range arm.Body {
				p.stmt(s2, indent+2)
			}
			p.line(indent+1, "}")
		}
		p.line(indent, "}")
	case *targetir.BlockStmt:
		p.line(indent, "{")
		for _, s2 := range v.Stmts {
			p.stmt(s2, indent+1)
		}
		p.line(indent, "}")
	case *targetir.RawStmt:
		for _, ln := range strings.Split(strings.TrimRight(v.Text, "\n"), "\n") {
			p.line(indent, "%s", ln)
		}
	default:
		p.line(indent, "/* unknown stmt %T */", s)
	}
}
