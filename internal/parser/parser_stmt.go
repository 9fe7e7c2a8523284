package parser

import (
	"github.com/tsubalang/tsubac/internal/ast"
	"github.com/tsubalang/tsubac/internal/errors"
	"github.com/tsubalang/tsubac/internal/lexer"
	"github.com/tsubalang/tsubac/internal/span"
)

// parseStmt dispatches one statement inside a function/method/kernel body,
// grounded on the teacher's statement-dispatch switch generalized from
// AILANG's expression-oriented body to this surface's imperative one.
func (p *Parser) parseStmt() (ast.Stmt, error) {
	switch p.curToken.Type {
	case lexer.LET:
		return p.parseLetStmt()
	case lexer.RETURN:
		return p.parseReturnStmt()
	case lexer.BREAK:
		return p.parseBreakStmt()
	case lexer.CONTINUE:
		return p.parseContinueStmt()
	case lexer.IF:
		return p.parseIfStmt()
	case lexer.WHILE:
		return p.parseWhileStmt()
	case lexer.FOR:
		return p.parseForStmt()
	case lexer.SWITCH:
		return p.parseSwitchStmt()
	case lexer.LBRACE:
		return p.parseBlockStmtNode()
	default:
		return p.parseExprStmt()
	}
}

func (p *Parser) parseStmtList(end lexer.TokenType) ([]ast.Stmt, error) {
	var out []ast.Stmt
	for !p.curIs(end) && !p.curIs(lexer.EOF) {
		s, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// parseBlock parses a `{ ... }` body and returns its statements, used by
// function/method/arrow bodies that store Body/BlockBody as []ast.Stmt
// rather than a *ast.BlockStmt wrapper.
func (p *Parser) parseBlock() ([]ast.Stmt, error) {
	if err := p.expect(lexer.LBRACE, errors.ExpUnsupportedExpr, "expected `{`"); err != nil {
		return nil, err
	}
	stmts, err := p.parseStmtList(lexer.RBRACE)
	if err != nil {
		return nil, err
	}
	if err := p.expect(lexer.RBRACE, errors.ExpUnsupportedExpr, "expected `}` to close block"); err != nil {
		return nil, err
	}
	return stmts, nil
}

func (p *Parser) parseBlockStmtNode() (ast.Stmt, error) {
	start := p.curSpan()
	stmts, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	b := &ast.BlockStmt{Stmts: stmts}
	b.Sp = p.spanFrom(start)
	return b, nil
}

// parseLetStmt parses `let name: Type = expr;` or `let name: mut<Type> = expr;`,
// erasing the `mut<T>` marker to LetStmt.Mut per spec §4.6.
func (p *Parser) parseLetStmt() (ast.Stmt, error) {
	start := p.curSpan()
	p.nextToken() // consume `let`
	if !p.curIs(lexer.IDENT) {
		sp := p.curSpan()
		return nil, errors.New(errors.CtlUnsupportedStmt, "expected a binding name after `let`", &sp)
	}
	name := p.curToken.Literal
	p.nextToken()

	var typ ast.Type
	if p.curIs(lexer.COLON) {
		p.nextToken()
		t, err := p.parseType()
		if err != nil {
			return nil, err
		}
		typ = t
	}

	mut := false
	if mt, ok := typ.(*ast.MutType); ok {
		mut = true
		typ = mt.Elem
	}

	if err := p.expect(lexer.ASSIGN, errors.CtlUnsupportedStmt, "expected `=` in let binding"); err != nil {
		return nil, err
	}
	value, err := p.parseExpression(lowest)
	if err != nil {
		return nil, err
	}
	if p.curIs(lexer.SEMICOLON) {
		p.nextToken()
	}

	s := &ast.LetStmt{Name: name, Type: typ, Value: value, Mut: mut}
	s.Sp = p.spanFrom(start)
	return s, nil
}

func (p *Parser) parseReturnStmt() (ast.Stmt, error) {
	start := p.curSpan()
	p.nextToken() // consume `return`
	s := &ast.ReturnStmt{}
	if !p.curIs(lexer.SEMICOLON) && !p.curIs(lexer.RBRACE) {
		v, err := p.parseExpression(lowest)
		if err != nil {
			return nil, err
		}
		s.Value = v
	}
	if p.curIs(lexer.SEMICOLON) {
		p.nextToken()
	}
	s.Sp = p.spanFrom(start)
	return s, nil
}

func (p *Parser) parseBreakStmt() (ast.Stmt, error) {
	start := p.curSpan()
	p.nextToken()
	if p.curIs(lexer.SEMICOLON) {
		p.nextToken()
	}
	s := &ast.BreakStmt{}
	s.Sp = p.spanFrom(start)
	return s, nil
}

func (p *Parser) parseContinueStmt() (ast.Stmt, error) {
	start := p.curSpan()
	p.nextToken()
	if p.curIs(lexer.SEMICOLON) {
		p.nextToken()
	}
	s := &ast.ContinueStmt{}
	s.Sp = p.spanFrom(start)
	return s, nil
}

func (p *Parser) parseIfStmt() (ast.Stmt, error) {
	start := p.curSpan()
	p.nextToken() // consume `if`
	if err := p.expect(lexer.LPAREN, errors.CtlUnsupportedStmt, "expected `(` after `if`"); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression(lowest)
	if err != nil {
		return nil, err
	}
	if err := p.expect(lexer.RPAREN, errors.CtlUnsupportedStmt, "expected `)` after condition"); err != nil {
		return nil, err
	}
	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	s := &ast.IfStmt{Cond: cond, Then: then}
	if p.curIs(lexer.ELSE) {
		p.nextToken()
		if p.curIs(lexer.IF) {
			elseIf, err := p.parseIfStmt()
			if err != nil {
				return nil, err
			}
			s.Else = []ast.Stmt{elseIf}
		} else {
			elseBody, err := p.parseBlock()
			if err != nil {
				return nil, err
			}
			s.Else = elseBody
		}
	}
	s.Sp = p.spanFrom(start)
	return s, nil
}

func (p *Parser) parseWhileStmt() (ast.Stmt, error) {
	start := p.curSpan()
	p.nextToken() // consume `while`
	if err := p.expect(lexer.LPAREN, errors.CtlUnsupportedStmt, "expected `(` after `while`"); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression(lowest)
	if err != nil {
		return nil, err
	}
	if err := p.expect(lexer.RPAREN, errors.CtlUnsupportedStmt, "expected `)` after condition"); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	s := &ast.WhileStmt{Cond: cond, Body: body}
	s.Sp = p.spanFrom(start)
	return s, nil
}

// parseForStmt disambiguates the three for-loop shapes the grammar
// recognizes: `for (let i = 0; ...; ...)` (C-style, accepted only inside a
// kernel body; host lowering rejects it), `for (let x of xs)` and
// `for (var ...)` are parsed into the same node tagged with their Kind so
// host lowering can reject them precisely (CtlForVarRejected/CtlForOfRejected).
func (p *Parser) parseForStmt() (ast.Stmt, error) {
	start := p.curSpan()
	p.nextToken() // consume `for`
	if err := p.expect(lexer.LPAREN, errors.CtlUnsupportedStmt, "expected `(` after `for`"); err != nil {
		return nil, err
	}

	// `var`/`of` are not reserved words in this grammar (the only legal for
	// loop binds with `let`), so the rejected shapes are recognized by their
	// identifier text rather than a dedicated keyword token.
	if p.curIs(lexer.IDENT) && p.curToken.Literal == "var" {
		return p.finishRejectedFor(start, ast.ForVarStyle)
	}

	if p.curIs(lexer.LET) {
		letStart := p.curSpan()
		p.nextToken() // consume `let`
		if !p.curIs(lexer.IDENT) {
			sp := p.curSpan()
			return nil, errors.New(errors.CtlUnsupportedStmt, "expected a binding name in `for`", &sp)
		}
		name := p.curToken.Literal
		p.nextToken()

		if p.curIs(lexer.IDENT) && p.curToken.Literal == "of" {
			return p.finishRejectedFor(start, ast.ForOfStyle)
		}

		var typ ast.Type
		if p.curIs(lexer.COLON) {
			p.nextToken()
			t, err := p.parseType()
			if err != nil {
				return nil, err
			}
			typ = t
		}
		if err := p.expect(lexer.ASSIGN, errors.CtlUnsupportedStmt, "expected `=` in `for` initializer"); err != nil {
			return nil, err
		}
		initValue, err := p.parseExpression(lowest)
		if err != nil {
			return nil, err
		}
		initStmt := &ast.LetStmt{Name: name, Type: typ, Value: initValue}
		initStmt.Sp = p.spanFrom(letStart)
		if err := p.expect(lexer.SEMICOLON, errors.CtlUnsupportedStmt, "expected `;` after `for` initializer"); err != nil {
			return nil, err
		}

		cond, err := p.parseExpression(lowest)
		if err != nil {
			return nil, err
		}
		if err := p.expect(lexer.SEMICOLON, errors.CtlUnsupportedStmt, "expected `;` after `for` condition"); err != nil {
			return nil, err
		}

		post, err := p.parseExpression(lowest)
		if err != nil {
			return nil, err
		}
		if err := p.expect(lexer.RPAREN, errors.CtlUnsupportedStmt, "expected `)` to close `for` header"); err != nil {
			return nil, err
		}

		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		s := &ast.ForStmt{Kind: ast.ForCStyle, Init: initStmt, Cond: cond, Post: post, Body: body}
		s.Sp = p.spanFrom(start)
		return s, nil
	}

	sp := p.curSpan()
	return nil, errors.New(errors.CtlUnsupportedStmt, "unrecognized `for` loop shape", &sp)
}

// finishRejectedFor skips the remainder of a `for (var ...)`/`for-of` header
// and body so parsing can continue, tagging the node with its Kind for a
// precise lowering-time diagnostic rather than aborting at parse time.
func (p *Parser) finishRejectedFor(start span.Span, kind ast.ForKind) (ast.Stmt, error) {
	depth := 1
	for depth > 0 {
		if p.curIs(lexer.EOF) {
			sp := p.curSpan()
			return nil, errors.New(errors.CtlUnsupportedStmt, "unterminated `for` header", &sp)
		}
		if p.curIs(lexer.LPAREN) {
			depth++
		} else if p.curIs(lexer.RPAREN) {
			depth--
		}
		p.nextToken()
	}
	if _, err := p.parseBlock(); err != nil {
		return nil, err
	}
	s := &ast.ForStmt{Kind: kind}
	s.Sp = p.spanFrom(start)
	return s, nil
}

// parseSwitchStmt parses `switch (expr) { case lit: ...; default: ... }`.
func (p *Parser) parseSwitchStmt() (ast.Stmt, error) {
	start := p.curSpan()
	p.nextToken() // consume `switch`
	if err := p.expect(lexer.LPAREN, errors.CtlUnsupportedStmt, "expected `(` after `switch`"); err != nil {
		return nil, err
	}
	disc, err := p.parseExpression(lowest)
	if err != nil {
		return nil, err
	}
	if err := p.expect(lexer.RPAREN, errors.CtlUnsupportedStmt, "expected `)` after switch discriminant"); err != nil {
		return nil, err
	}
	if err := p.expect(lexer.LBRACE, errors.CtlUnsupportedStmt, "expected `{` to start switch body"); err != nil {
		return nil, err
	}

	var cases []*ast.SwitchCase
	for !p.curIs(lexer.RBRACE) {
		caseStart := p.curSpan()
		c := &ast.SwitchCase{}
		if p.curIs(lexer.CASE) {
			p.nextToken()
			test, err := p.parseExpression(lowest)
			if err != nil {
				return nil, err
			}
			c.Test = test
		} else if p.curIs(lexer.DEFAULT) {
			p.nextToken()
		} else {
			sp := p.curSpan()
			return nil, errors.New(errors.CtlUnsupportedStmt, "expected `case` or `default`", &sp)
		}
		if err := p.expect(lexer.COLON, errors.CtlUnsupportedStmt, "expected `:` after case label"); err != nil {
			return nil, err
		}
		var body []ast.Stmt
		for !p.curIs(lexer.CASE) && !p.curIs(lexer.DEFAULT) && !p.curIs(lexer.RBRACE) {
			s, err := p.parseStmt()
			if err != nil {
				return nil, err
			}
			body = append(body, s)
		}
		c.Body = body
		c.Fallsthru = len(body) == 0
		c.Sp = p.spanFrom(caseStart)
		cases = append(cases, c)
	}
	if err := p.expect(lexer.RBRACE, errors.CtlUnsupportedStmt, "expected `}` to close switch body"); err != nil {
		return nil, err
	}

	s := &ast.SwitchStmt{Discriminant: disc, Cases: cases}
	if member, ok := disc.(*ast.MemberExpr); ok && member.Prop == "kind" {
		s.IsUnionDiscriminant = true
	}
	s.Sp = p.spanFrom(start)
	return s, nil
}

func (p *Parser) parseExprStmt() (ast.Stmt, error) {
	start := p.curSpan()
	x, err := p.parseExpression(lowest)
	if err != nil {
		return nil, err
	}
	if p.curIs(lexer.ASSIGN) {
		p.nextToken()
		rhs, err := p.parseExpression(lowest)
		if err != nil {
			return nil, err
		}
		assign := &ast.BinaryExpr{Op: "=", Left: x, Right: rhs}
		assign.Sp = p.spanFrom(start)
		x = assign
	}
	if p.curIs(lexer.SEMICOLON) {
		p.nextToken()
	}
	s := &ast.ExprStmt{X: x}
	s.Sp = p.spanFrom(start)
	return s, nil
}
