package lower

import (
	"fmt"
	"strings"

	"github.com/tsubalang/tsubac/internal/ast"
)

func genericNames(gs []ast.GenericParam) []string {
	if len(gs) == 0 {
		return nil
	}
	names := make([]string, len(gs))
	for i, g := range gs {
		names[i] = g.Name
	}
	return names
}

// pascalCase turns a snake/kebab-case union `kind` literal into the variant
// name spec §4.6 requires (e.g. "circle" -> "Circle", "line_segment" ->
// "LineSegment").
func pascalCase(s string) string {
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == '_' || r == '-' })
	var b strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	if b.Len() == 0 {
		return s
	}
	return b.String()
}

// fieldAssignment recognizes a `this.<field> = <expr>;` statement, the shape
// a constructor body uses to initialize the struct literal a lowered `new`
// associated function returns.
func fieldAssignment(s ast.Stmt) (field string, value ast.Expr, ok bool) {
	es, ok := s.(*ast.ExprStmt)
	if !ok {
		return "", nil, false
	}
	bin, ok := es.X.(*ast.BinaryExpr)
	if !ok || bin.Op != "=" {
		return "", nil, false
	}
	member, ok := bin.Left.(*ast.MemberExpr)
	if !ok {
		return "", nil, false
	}
	if _, ok := member.Obj.(*ast.ThisExpr); !ok {
		return "", nil, false
	}
	return member.Prop, bin.Right, true
}

// splitDeriveTokens splits the raw backtick-quoted token text of
// `attr(derive, \`A, B\`)` into individual trait names.
func splitDeriveTokens(tokens string) []string {
	parts := strings.Split(tokens, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// literalKey renders a comparable key for a case label the scalar-switch
// lowering can use to detect a duplicate label; non-literal labels (which
// are legally re-evaluated on every switch per the "lazy label eval"
// semantics) return "".
func literalKey(e ast.Expr) string {
	switch v := e.(type) {
	case *ast.IntLit:
		return fmt.Sprintf("int:%d", v.Value)
	case *ast.StringLit:
		return "str:" + v.Value
	case *ast.BoolLit:
		return fmt.Sprintf("bool:%t", v.Value)
	default:
		return ""
	}
}
