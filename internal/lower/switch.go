package lower

import (
	"fmt"

	"github.com/tsubalang/tsubac/internal/ast"
	"github.com/tsubalang/tsubac/internal/errors"
	"github.com/tsubalang/tsubac/internal/span"
	"github.com/tsubalang/tsubac/internal/targetir"
)

// lowerSwitch dispatches to the union-discriminant or scalar lowering,
// depending on whether the discriminant resolves (via the lightweight
// scope tracking in resetScope/LetStmt) to a `.kind` access on a value of
// a known discriminated-union type.
func (lw *Lowerer) lowerSwitch(v *ast.SwitchStmt) ([]targetir.Stmt, error) {
	if unionDecl, scrutinee, unionName, ok := lw.resolveUnionDiscriminant(v.Discriminant); ok {
		return lw.lowerUnionSwitch(v, unionDecl, scrutinee, unionName)
	}
	return lw.lowerScalarSwitch(v)
}

// resolveUnionDiscriminant recognizes `<place>.kind` where <place>'s
// declared type (from the current function's scope map) names a
// discriminated union, returning the union's declaration, the place
// expression to match on, and the union's alias name.
func (lw *Lowerer) resolveUnionDiscriminant(d ast.Expr) (*ast.TypeAliasDecl, ast.Expr, string, bool) {
	member, ok := d.(*ast.MemberExpr)
	if !ok || member.Prop != "kind" {
		return nil, nil, "", false
	}
	ident, ok := member.Obj.(*ast.Ident)
	if !ok {
		return nil, nil, "", false
	}
	typeName, ok := lw.scope[ident.Name]
	if !ok {
		return nil, nil, "", false
	}
	union, ok := lw.Prog.Unions[typeName]
	if !ok {
		return nil, nil, "", false
	}
	return union, member.Obj, typeName, true
}

// lowerUnionSwitch lowers a switch over a discriminated union's `.kind` to
// a MatchStmt over the union value itself, one arm per declared variant.
// Every case must be a string-literal naming a declared variant; `default`,
// non-literal cases, empty-case fallthrough, and duplicate cases are all
// rejected, and every declared variant must be covered.
func (lw *Lowerer) lowerUnionSwitch(v *ast.SwitchStmt, union *ast.TypeAliasDecl, scrutinee ast.Expr, unionName string) ([]targetir.Stmt, error) {
	scrutineeExpr, err := lw.lowerExpr(scrutinee)
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	arms := make([]targetir.MatchArm, 0, len(v.Cases))
	for _, c := range v.Cases {
		if c.Test == nil {
			return nil, errors.New(errors.CtlUnionSwitchDefault, "a switch on a discriminated union's `.kind` cannot have a `default` case", &c.Sp)
		}
		lit, ok := c.Test.(*ast.StringLit)
		if !ok {
			return nil, errors.New(errors.CtlUnionSwitchNonLiteral, "a switch on a discriminated union's `.kind` must use string-literal cases", &c.Sp)
		}
		if c.Fallsthru {
			return nil, errors.New(errors.CtlUnionSwitchFallthru, "a switch on a discriminated union's `.kind` cannot use empty-case fallthrough", &c.Sp)
		}
		if !unionHasKind(union, lit.Value) {
			return nil, errors.New(errors.CtlUnionSwitchNonLiteral,
				fmt.Sprintf("%q is not a declared variant of %q", lit.Value, unionName), &c.Sp)
		}
		if seen[lit.Value] {
			return nil, errors.New(errors.CtlUnionSwitchDuplicate, fmt.Sprintf("duplicate case %q", lit.Value), &c.Sp)
		}
		seen[lit.Value] = true

		body, err := lw.lowerBody(c.Body)
		if err != nil {
			return nil, err
		}
		arms = append(arms, targetir.MatchArm{
			Sp:      c.Sp,
			Pattern: fmt.Sprintf("%s::%s { .. }", unionName, pascalCase(lit.Value)),
			Body:    body,
		})
	}

	for _, branch := range union.Union {
		if !seen[branch.Kind] {
			sp := v.Span()
			return nil, errors.New(errors.CtlUnionSwitchIncomplete,
				fmt.Sprintf("switch on %q does not cover variant %q", unionName, branch.Kind), &sp)
		}
	}

	return []targetir.Stmt{&targetir.MatchStmt{Scrutinee: scrutineeExpr, Arms: arms}}, nil
}

func unionHasKind(union *ast.TypeAliasDecl, kind string) bool {
	for _, branch := range union.Union {
		if branch.Kind == kind {
			return true
		}
	}
	return false
}

// scalarGroup is one merged if/else-if arm: Conditions accumulates every
// fallthrough case's label leading up to (and including) the populated
// case that supplies Body.
type scalarGroup struct {
	Conditions []ast.Expr
	Body       []ast.Stmt
}

// lowerScalarSwitch lowers an ordinary value switch to `let __switch_value
// = <discriminant>;` followed by a right-folded if/else-if/else chain.
// Consecutive empty-bodied (fallthrough) cases accumulate their `==`
// conditions via `||` onto the next case that has a body; a literal label
// used more than once is rejected, but a non-literal label is not
// duplicate-checked (it is re-evaluated, lazily, on every switch).
func (lw *Lowerer) lowerScalarSwitch(v *ast.SwitchStmt) ([]targetir.Stmt, error) {
	discriminant, err := lw.lowerExpr(v.Discriminant)
	if err != nil {
		return nil, err
	}

	const scrutineeName = "__switch_value"
	letStmt := &targetir.LetStmt{Name: scrutineeName, Value: discriminant}

	seenLiterals := map[string]span.Span{}
	var groups []scalarGroup
	var pending []ast.Expr
	var defaultBody []ast.Stmt
	haveDefault := false

	for _, c := range v.Cases {
		if c.Test == nil {
			defaultBody = c.Body
			haveDefault = true
			continue
		}
		if key := literalKey(c.Test); key != "" {
			if prev, ok := seenLiterals[key]; ok {
				return nil, errors.New(errors.CtlDuplicateScalarLabel,
					fmt.Sprintf("duplicate case label (first used at %s)", prev), &c.Sp)
			}
			seenLiterals[key] = c.Sp
		}
		pending = append(pending, c.Test)
		if c.Fallsthru {
			continue
		}
		groups = append(groups, scalarGroup{Conditions: pending, Body: c.Body})
		pending = nil
	}
	if len(pending) > 0 {
		// Trailing fallthrough cases with nothing after them: still need an
		// (empty-bodied) arm so a matching value does not fall into default.
		groups = append(groups, scalarGroup{Conditions: pending, Body: nil})
	}

	var chain []targetir.Stmt
	if haveDefault {
		chain, err = lw.lowerBody(defaultBody)
		if err != nil {
			return nil, err
		}
	}

	for i := len(groups) - 1; i >= 0; i-- {
		g := groups[i]
		cond, err := lw.scalarGroupCond(scrutineeName, g.Conditions)
		if err != nil {
			return nil, err
		}
		body, err := lw.lowerBody(g.Body)
		if err != nil {
			return nil, err
		}
		chain = []targetir.Stmt{&targetir.IfStmt{Cond: cond, Then: body, Else: chain}}
	}

	return append([]targetir.Stmt{letStmt}, chain...), nil
}

func (lw *Lowerer) scalarGroupCond(scrutineeName string, conditions []ast.Expr) (targetir.Expr, error) {
	var cond targetir.Expr
	for _, c := range conditions {
		label, err := lw.lowerExpr(c)
		if err != nil {
			return nil, err
		}
		eq := &targetir.BinaryExpr{Op: "==", Left: &targetir.Ident{Name: scrutineeName}, Right: label}
		if cond == nil {
			cond = eq
		} else {
			cond = &targetir.BinaryExpr{Op: "||", Left: cond, Right: eq}
		}
	}
	return cond, nil
}
