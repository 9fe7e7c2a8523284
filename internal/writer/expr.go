package writer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tsubalang/tsubac/internal/targetir"
)

// Expr renders a single expression to target source text. Exported
// alongside Type, which internal/lower uses to render type fragments into
// generated names.
func Expr(e targetir.Expr) string {
	if e == nil {
		return ""
	}
	switch v := e.(type) {
	case *targetir.Ident:
		return v.Name
	case *targetir.IntLit:
		return strconv.FormatInt(v.Value, 10)
	case *targetir.FloatLit:
		s := strconv.FormatFloat(v.Value, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eE") {
			s += ".0"
		}
		return s
	case *targetir.StringLit:
		return strconv.Quote(v.Value)
	case *targetir.BoolLit:
		if v.Value {
			return "true"
		}
		return "false"
	case *targetir.UnitLit:
		return "()"
	case *targetir.TupleLit:
		return "(" + exprList(v.Elems) + ")"
	case *targetir.ArrayLit:
		return "[" + exprList(v.Elems) + "]"
	case *targetir.StructLit:
		if len(v.Fields) == 0 {
			return v.TypeName + " {}"
		}
		parts := make([]string, len(v.Fields))
		for i, f := range v.Fields {
			parts[i] = fmt.Sprintf("%s: %s", f.Name, Expr(f.Value))
		}
		return fmt.Sprintf("%s { %s }", v.TypeName, strings.Join(parts, ", "))
	case *targetir.BinaryExpr:
		return fmt.Sprintf("(%s %s %s)", Expr(v.Left), v.Op, Expr(v.Right))
	case *targetir.UnaryExpr:
		return fmt.Sprintf("(%s%s)", v.Op, Expr(v.X))
	case *targetir.RefExpr:
		if v.Mut {
			return "&mut " + Expr(v.X)
		}
		return "&" + Expr(v.X)
	case *targetir.UnsafeExpr:
		return fmt.Sprintf("unsafe { %s }", Expr(v.X))
	case *targetir.CallExpr:
		return fmt.Sprintf("%s(%s)", Expr(v.Callee), exprList(v.Args))
	case *targetir.MethodCallExpr:
		return fmt.Sprintf("%s.%s(%s)", Expr(v.Receiver), v.Method, exprList(v.Args))
	case *targetir.FieldExpr:
		return fmt.Sprintf("%s.%s", Expr(v.Obj), v.Field)
	case *targetir.IndexExpr:
		return fmt.Sprintf("%s[%s]", Expr(v.Obj), Expr(v.Index))
	case *targetir.PathExpr:
		return strings.Join(v.Segments, "::")
	case *targetir.ClosureExpr:
		params := make([]string, len(v.Params))
		for i, p := range v.Params {
			params[i] = p.Name
			if p.Type != nil {
				params[i] += ": " + Type(p.Type)
			}
		}
		prefix := ""
		if v.Move {
			prefix = "move "
		}
		return fmt.Sprintf("%s|%s| %s", prefix, strings.Join(params, ", "), Expr(v.Body))
	case *targetir.TryExpr:
		return Expr(v.X) + "?"
	case *targetir.AwaitExpr:
		return Expr(v.X) + ".await"
	case *targetir.AsExpr:
		return fmt.Sprintf("(%s as %s)", Expr(v.X), Type(v.Type))
	case *targetir.FormatExpr:
		parts := make([]string, 0, len(v.Args)+1)
		parts = append(parts, strconv.Quote(v.Template))
		for _, a := range v.Args {
			parts = append(parts, Expr(a))
		}
		return fmt.Sprintf("format!(%s)", strings.Join(parts, ", "))
	case *targetir.BlockExpr:
		var b strings.Builder
		b.WriteString("{\n")
		p := printer{}
		for _, s := range v.Stmts {
			p.stmt(s, 1)
		}
		b.WriteString(p.buf.String())
		if v.Tail != nil {
			b.WriteString(indentUnit + Expr(v.Tail) + "\n")
		}
		b.WriteString("}")
		return b.String()
	case *targetir.MatchExpr:
		var b strings.Builder
		fmt.Fprintf(&b, "match %s {\n", Expr(v.Scrutinee))
		for _, arm := range v.Arms {
			fmt.Fprintf(&b, "%s%s => %s,\n", indentUnit, arm.Pattern, Expr(arm.Value))
		}
		b.WriteString("}")
		return b.String()
	default:
		return fmt.Sprintf("/* unknown expr %T */", e)
	}
}

func exprList(exprs []targetir.Expr) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = Expr(e)
	}
	return strings.Join(parts, ", ")
}

// Type renders a single type reference to target source text.
func Type(t targetir.Type) string {
	if t == nil {
		return "()"
	}
	switch v := t.(type) {
	case *targetir.NamedType:
		if len(v.Args) == 0 {
			return v.Name
		}
		args := make([]string, len(v.Args))
		for i, a := range v.Args {
			args[i] = Type(a)
		}
		return fmt.Sprintf("%s<%s>", v.Name, strings.Join(args, ", "))
	case *targetir.RefType:
		lifetime := ""
		if v.Lifetime != "" {
			lifetime = "'" + v.Lifetime + " "
		}
		if v.Mut {
			return "&" + lifetime + "mut " + Type(v.Elem)
		}
		return "&" + lifetime + Type(v.Elem)
	case *targetir.TupleType:
		elems := make([]string, len(v.Elems))
		for i, e := range v.Elems {
			elems[i] = Type(e)
		}
		return "(" + strings.Join(elems, ", ") + ")"
	case *targetir.SliceType:
		return fmt.Sprintf("Vec<%s>", Type(v.Elem))
	case *targetir.ArrayType:
		return fmt.Sprintf("[%s; %d]", Type(v.Elem), v.N)
	case *targetir.UnitType:
		return "()"
	case *targetir.FuncType:
		params := make([]string, len(v.Params))
		for i, p := range v.Params {
			params[i] = Type(p)
		}
		return fmt.Sprintf("Box<dyn Fn(%s) -> %s>", strings.Join(params, ", "), Type(v.Result))
	default:
		return fmt.Sprintf("/* unknown type %T */", t)
	}
}
