package lower

import (
	"fmt"

	"github.com/tsubalang/tsubac/internal/ast"
	"github.com/tsubalang/tsubac/internal/errors"
	"github.com/tsubalang/tsubac/internal/span"
	"github.com/tsubalang/tsubac/internal/targetir"
	"github.com/tsubalang/tsubac/internal/typelower"
)

// lowerBody lowers a statement list, the shape every function/method/
// constructor/block body shares.
func (lw *Lowerer) lowerBody(stmts []ast.Stmt) ([]targetir.Stmt, error) {
	out := make([]targetir.Stmt, 0, len(stmts))
	for _, s := range stmts {
		lowered, err := lw.lowerStmt(s)
		if err != nil {
			return nil, err
		}
		if lowered != nil {
			out = append(out, lowered...)
		}
	}
	return out, nil
}

// lowerStmt lowers a single statement, stamping the source span onto every
// resulting top-level IR statement so internal/writer.FileWithSpans can
// recover it (internal/sourcemap.Comment reads Stmt.Span()).
func (lw *Lowerer) lowerStmt(s ast.Stmt) ([]targetir.Stmt, error) {
	out, err := lw.lowerStmtInner(s)
	if err != nil {
		return nil, err
	}
	sp := s.Span()
	for _, stmt := range out {
		stampSpan(stmt, sp)
	}
	return out, nil
}

// stampSpan sets a statement's span if it doesn't already carry one.
func stampSpan(s targetir.Stmt, sp span.Span) {
	if !s.Span().IsZero() {
		return
	}
	switch v := s.(type) {
	case *targetir.LetStmt:
		v.Sp = sp
	case *targetir.ExprStmt:
		v.Sp = sp
	case *targetir.ReturnStmt:
		v.Sp = sp
	case *targetir.BreakStmt:
		v.Sp = sp
	case *targetir.ContinueStmt:
		v.Sp = sp
	case *targetir.BlockStmt:
		v.Sp = sp
	case *targetir.IfStmt:
		v.Sp = sp
	case *targetir.WhileStmt:
		v.Sp = sp
	case *targetir.MatchStmt:
		v.Sp = sp
	}
}

// lowerStmtInner is the statement-form switch itself, unburdened by span
// bookkeeping.
func (lw *Lowerer) lowerStmtInner(s ast.Stmt) ([]targetir.Stmt, error) {
	switch v := s.(type) {
	case *ast.LetStmt:
		value, err := lw.lowerExpr(v.Value)
		if err != nil {
			return nil, err
		}
		var ty targetir.Type
		if v.Type != nil {
			ty, err = typelower.Lower(v.Type)
			if err != nil {
				return nil, err
			}
			if named, ok := v.Type.(*ast.NamedType); ok {
				lw.scope[v.Name] = named.Name
			}
		}
		return []targetir.Stmt{&targetir.LetStmt{Name: v.Name, Type: ty, Value: value, Mut: v.Mut}}, nil

	case *ast.ExprStmt:
		x, err := lw.lowerExpr(v.X)
		if err != nil {
			return nil, err
		}
		return []targetir.Stmt{&targetir.ExprStmt{X: x}}, nil

	case *ast.ReturnStmt:
		var value targetir.Expr
		if v.Value != nil {
			val, err := lw.lowerExpr(v.Value)
			if err != nil {
				return nil, err
			}
			value = val
		}
		return []targetir.Stmt{&targetir.ReturnStmt{Value: value}}, nil

	case *ast.BreakStmt:
		return []targetir.Stmt{&targetir.BreakStmt{}}, nil

	case *ast.ContinueStmt:
		return []targetir.Stmt{&targetir.ContinueStmt{}}, nil

	case *ast.BlockStmt:
		inner, err := lw.lowerBody(v.Stmts)
		if err != nil {
			return nil, err
		}
		return []targetir.Stmt{&targetir.BlockStmt{Stmts: inner}}, nil

	case *ast.IfStmt:
		cond, err := lw.lowerExpr(v.Cond)
		if err != nil {
			return nil, err
		}
		then, err := lw.lowerBody(v.Then)
		if err != nil {
			return nil, err
		}
		var els []targetir.Stmt
		if v.Else != nil {
			els, err = lw.lowerBody(v.Else)
			if err != nil {
				return nil, err
			}
		}
		return []targetir.Stmt{&targetir.IfStmt{Cond: cond, Then: then, Else: els}}, nil

	case *ast.WhileStmt:
		cond, err := lw.lowerExpr(v.Cond)
		if err != nil {
			return nil, err
		}
		body, err := lw.lowerBody(v.Body)
		if err != nil {
			return nil, err
		}
		return []targetir.Stmt{&targetir.WhileStmt{Cond: cond, Body: body}}, nil

	case *ast.ForStmt:
		sp := v.Span()
		switch v.Kind {
		case ast.ForVarStyle:
			return nil, errors.New(errors.CtlForVarRejected, "`for (var ...)` loops are not supported", &sp)
		case ast.ForOfStyle:
			return nil, errors.New(errors.CtlForOfRejected, "`for-of` loops are not supported", &sp)
		default:
			return nil, errors.New(errors.CtlUnsupportedStmt, "ordinary host code has no C-style `for` loop (only the kernel dialect does)", &sp)
		}

	case *ast.SwitchStmt:
		return lw.lowerSwitch(v)

	case *ast.AnnotateStmt:
		sp := v.Span()
		return nil, errors.New(errors.FniUnsupportedTopLevel, "annotate() is only accepted as a top-level statement", &sp)

	default:
		sp := s.Span()
		return nil, errors.New(errors.CtlUnsupportedStmt, fmt.Sprintf("unsupported statement form %T", s), &sp)
	}
}
