package parser

import (
	"strconv"
	"strings"

	"github.com/tsubalang/tsubac/internal/ast"
	"github.com/tsubalang/tsubac/internal/errors"
	"github.com/tsubalang/tsubac/internal/lexer"
	"github.com/tsubalang/tsubac/internal/span"
)

// parseExpression is the Pratt-parser entry point, grounded on the
// teacher's prefix/infix dispatch table (internal/parser/parser.go)
// generalized from AILANG's functional-expression grammar to this
// class-based surface's operator set.
func (p *Parser) parseExpression(precedence int) (ast.Expr, error) {
	prefix, ok := p.prefixParseFns[p.curToken.Type]
	if !ok {
		sp := p.curSpan()
		return nil, errors.New(errors.ExpUnsupportedExpr,
			"unsupported expression form starting with "+p.curToken.Type.String(), &sp)
	}
	left, err := prefix()
	if err != nil {
		return nil, err
	}

	// Every prefix/infix function leaves curToken one past what it parsed,
	// so the next candidate operator is always curToken here, not peekToken.
	for !p.curIs(lexer.SEMICOLON) && !p.curIs(lexer.EOF) && precedence < p.curPrecedence() {
		infix, ok := p.infixParseFns[p.curToken.Type]
		if !ok {
			return left, nil
		}
		left, err = infix(left)
		if err != nil {
			return nil, err
		}
	}
	return left, nil
}

func (p *Parser) parseIdentOrMarkerCall() (ast.Expr, error) {
	start := p.curSpan()
	id := &ast.Ident{Name: p.curToken.Literal}
	id.Sp = p.spanFrom(start)
	p.nextToken()
	return id, nil
}

func (p *Parser) parseIntLit() (ast.Expr, error) {
	start := p.curSpan()
	v, err := strconv.ParseInt(p.curToken.Literal, 10, 64)
	if err != nil {
		sp := p.curSpan()
		return nil, errors.New(errors.ExpUnsupportedLiteral, "malformed integer literal", &sp)
	}
	p.nextToken()
	lit := &ast.IntLit{Value: v}
	lit.Sp = p.spanFrom(start)
	return lit, nil
}

func (p *Parser) parseFloatLit() (ast.Expr, error) {
	start := p.curSpan()
	v, err := strconv.ParseFloat(p.curToken.Literal, 64)
	if err != nil {
		sp := p.curSpan()
		return nil, errors.New(errors.ExpUnsupportedLiteral, "malformed float literal", &sp)
	}
	p.nextToken()
	lit := &ast.FloatLit{Value: v}
	lit.Sp = p.spanFrom(start)
	return lit, nil
}

func (p *Parser) parseStringLit() (ast.Expr, error) {
	start := p.curSpan()
	lit := &ast.StringLit{Value: p.curToken.Literal}
	p.nextToken()
	lit.Sp = p.spanFrom(start)
	return lit, nil
}

// parseTemplateLit splits the lexer's raw `${...}` markers into literal
// text parts and embedded expressions; per spec §9 Open Question 1 this
// always lowers to the target's format-macro form (internal/writer's
// FormatExpr), so the parser's only job is to separate the two.
func (p *Parser) parseTemplateLit() (ast.Expr, error) {
	start := p.curSpan()
	raw := p.curToken.Literal
	p.nextToken()

	var parts []string
	var exprs []ast.Expr
	var text strings.Builder
	i := 0
	for i < len(raw) {
		if i+1 < len(raw) && raw[i] == '$' && raw[i+1] == '{' {
			end := strings.IndexByte(raw[i+2:], '}')
			if end < 0 {
				sp := p.curSpan()
				return nil, errors.New(errors.ExpUnsupportedLiteral, "unterminated template interpolation", &sp)
			}
			inner := raw[i+2 : i+2+end]
			sub, err := ParseExprString(inner, p.file)
			if err != nil {
				return nil, err
			}
			parts = append(parts, text.String())
			text.Reset()
			exprs = append(exprs, sub)
			i += 2 + end + 1
			continue
		}
		text.WriteByte(raw[i])
		i++
	}
	parts = append(parts, text.String())

	lit := &ast.TemplateLit{Parts: parts, Exprs: exprs}
	lit.Sp = p.spanFrom(start)
	return lit, nil
}

// ParseExprString parses a single standalone expression (used for template
// interpolation segments, which are lexed as raw text by the outer
// template scan and re-parsed independently).
func ParseExprString(src, file string) (ast.Expr, error) {
	l := lexer.New(src, file)
	p := New(l, file)
	return p.parseExpression(lowest)
}

func (p *Parser) parseBoolLit() (ast.Expr, error) {
	start := p.curSpan()
	v := p.curIs(lexer.TRUE)
	p.nextToken()
	lit := &ast.BoolLit{Value: v}
	lit.Sp = p.spanFrom(start)
	return lit, nil
}

func (p *Parser) parseUndefinedLit() (ast.Expr, error) {
	start := p.curSpan()
	p.nextToken()
	lit := &ast.UndefinedLit{}
	lit.Sp = p.spanFrom(start)
	return lit, nil
}

func (p *Parser) parseThisExpr() (ast.Expr, error) {
	start := p.curSpan()
	p.nextToken()
	e := &ast.ThisExpr{}
	e.Sp = p.spanFrom(start)
	return e, nil
}

func (p *Parser) parseVoidExpr() (ast.Expr, error) {
	start := p.curSpan()
	p.nextToken()
	x, err := p.parseExpression(unaryPrec)
	if err != nil {
		return nil, err
	}
	e := &ast.VoidExpr{X: x}
	e.Sp = p.spanFrom(start)
	return e, nil
}

func (p *Parser) parseAwaitExpr() (ast.Expr, error) {
	start := p.curSpan()
	p.nextToken()
	x, err := p.parseExpression(unaryPrec)
	if err != nil {
		return nil, err
	}
	e := &ast.AwaitExpr{X: x}
	e.Sp = p.spanFrom(start)
	return e, nil
}

func (p *Parser) parseUnaryExpr() (ast.Expr, error) {
	start := p.curSpan()
	op := p.curToken.Literal
	p.nextToken()
	x, err := p.parseExpression(unaryPrec)
	if err != nil {
		return nil, err
	}
	e := &ast.UnaryExpr{Op: op, X: x}
	e.Sp = p.spanFrom(start)
	return e, nil
}

func (p *Parser) parseNewExpr() (ast.Expr, error) {
	start := p.curSpan()
	p.nextToken() // consume `new`
	if !p.curIs(lexer.IDENT) {
		sp := p.curSpan()
		return nil, errors.New(errors.ExpUnsupportedExpr, "expected a class name after `new`", &sp)
	}
	className := p.curToken.Literal
	p.nextToken()
	if err := p.expect(lexer.LPAREN, errors.ExpUnsupportedExpr, "expected `(` after constructor name"); err != nil {
		return nil, err
	}
	args, err := p.parseExprList(lexer.RPAREN)
	if err != nil {
		return nil, err
	}
	if err := p.expect(lexer.RPAREN, errors.ExpUnsupportedExpr, "expected `)` to close constructor call"); err != nil {
		return nil, err
	}
	e := &ast.NewExpr{ClassName: className, Args: args}
	e.Sp = p.spanFrom(start)
	return e, nil
}

// parseParenOrArrow disambiguates `(expr)` / `(a, b)` tuple literals from
// `(name: Type, ...) => expr` arrow parameter lists: the accepted subset
// requires every arrow parameter to carry an explicit type annotation, so
// an IDENT immediately followed by `:` inside the parens is conclusive.
func (p *Parser) parseParenOrArrow() (ast.Expr, error) {
	start := p.curSpan()

	if p.peekIs(lexer.RPAREN) {
		p.nextToken() // consume `(`, curToken == `)`
		if p.peekIs(lexer.ARROW) {
			p.nextToken() // consume `)`, curToken == `=>`
			return p.finishArrow(nil, start, false)
		}
		p.nextToken() // consume `)`
		t := &ast.TupleLit{}
		t.Sp = p.spanFrom(start)
		return t, nil
	}

	if p.peekIs(lexer.IDENT) {
		savedCur, savedPeek := p.curToken, p.peekToken
		// Peek two tokens ahead without a backtrackable lexer: IDENT
		// followed by `:` inside parens can only be an arrow parameter
		// list in this grammar (bare tuple/grouped elements are full
		// expressions, which never start `ident :`).
		nameTok := p.peekToken
		l2 := *p.l
		after := l2.NextToken()
		p.curToken, p.peekToken = savedCur, savedPeek
		if after.Type == lexer.COLON {
			return p.parseArrowExpr(start, false)
		}
		_ = nameTok
	}

	p.nextToken() // consume `(`
	first, err := p.parseExpression(lowest)
	if err != nil {
		return nil, err
	}
	if p.curIs(lexer.COMMA) {
		elems := []ast.Expr{first}
		for p.curIs(lexer.COMMA) {
			p.nextToken()
			e, err := p.parseExpression(lowest)
			if err != nil {
				return nil, err
			}
			elems = append(elems, e)
		}
		if err := p.expect(lexer.RPAREN, errors.ExpUnsupportedExpr, "expected `)` to close tuple literal"); err != nil {
			return nil, err
		}
		t := &ast.TupleLit{Elems: elems}
		t.Sp = p.spanFrom(start)
		return t, nil
	}
	if err := p.expect(lexer.RPAREN, errors.ExpUnsupportedExpr, "expected `)`"); err != nil {
		return nil, err
	}
	return first, nil
}

// expectPeek behaves like expect but checks peekToken, advancing onto it
// (the convention the teacher's parser uses for "the next token must be
// X" checks while curToken is still the token before it).
func (p *Parser) expectPeek(t lexer.TokenType, code errors.Code, message string) error {
	if !p.peekIs(t) {
		sp := p.curSpan()
		return errors.New(code, message, &sp)
	}
	p.nextToken()
	return nil
}

func (p *Parser) parseArrowExpr(start span.Span, async bool) (ast.Expr, error) {
	if err := p.expect(lexer.LPAREN, errors.FniMissingParamType, "expected `(` to start arrow parameter list"); err != nil {
		return nil, err
	}
	var params []*ast.Param
	for !p.curIs(lexer.RPAREN) {
		param, err := p.parseParam()
		if err != nil {
			return nil, err
		}
		params = append(params, param)
		if p.curIs(lexer.COMMA) {
			p.nextToken()
			continue
		}
		break
	}
	if err := p.expect(lexer.RPAREN, errors.FniMissingParamType, "expected `)` to close arrow parameter list"); err != nil {
		return nil, err
	}
	return p.finishArrow(params, start, async)
}

func (p *Parser) finishArrow(params []*ast.Param, start span.Span, async bool) (ast.Expr, error) {
	if err := p.expect(lexer.ARROW, errors.ExpUnsupportedExpr, "expected `=>`"); err != nil {
		return nil, err
	}
	arrow := &ast.ArrowExpr{Params: params, Async: async}
	if p.curIs(lexer.LBRACE) {
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		arrow.BlockBody = body
		arrow.Sp = p.spanFrom(start)
		return arrow, nil
	}
	body, err := p.parseExpression(lowest)
	if err != nil {
		return nil, err
	}
	arrow.Body = body
	arrow.Sp = p.spanFrom(start)
	return arrow, nil
}

func (p *Parser) parseArrayLit() (ast.Expr, error) {
	start := p.curSpan()
	p.nextToken() // consume `[`
	elems, err := p.parseExprList(lexer.RBRACKET)
	if err != nil {
		return nil, err
	}
	if err := p.expect(lexer.RBRACKET, errors.ExpUnsupportedExpr, "expected `]` to close array literal"); err != nil {
		return nil, err
	}
	lit := &ast.ArrayLit{Elems: elems}
	lit.Sp = p.spanFrom(start)
	return lit, nil
}

func (p *Parser) parseObjectLit() (ast.Expr, error) {
	start := p.curSpan()
	p.nextToken() // consume `{`
	var fields []ast.ObjectField
	for !p.curIs(lexer.RBRACE) {
		fstart := p.curSpan()
		if !p.curIs(lexer.IDENT) {
			sp := p.curSpan()
			return nil, errors.New(errors.ExpObjectLiteralShape, "object literal field must start with a name", &sp)
		}
		name := p.curToken.Literal
		p.nextToken()
		if err := p.expect(lexer.COLON, errors.ExpObjectLiteralShape, "expected `:` after object field name"); err != nil {
			return nil, err
		}
		value, err := p.parseExpression(lowest)
		if err != nil {
			return nil, err
		}
		field := ast.ObjectField{Sp: p.spanFrom(fstart), Name: name, Value: value}
		if asExpr, ok := value.(*ast.AsExpr); ok {
			field.Value = asExpr.Value
			field.Cast = asExpr.Type
		}
		fields = append(fields, field)
		if p.curIs(lexer.COMMA) {
			p.nextToken()
			continue
		}
		break
	}
	if err := p.expect(lexer.RBRACE, errors.ExpObjectLiteralShape, "expected `}` to close object literal"); err != nil {
		return nil, err
	}
	lit := &ast.ObjectLit{Fields: fields}
	if p.curIs(lexer.AS) && p.peekIs(lexer.CONST) {
		p.nextToken()
		p.nextToken()
		lit.AsConst = true
	}
	lit.Sp = p.spanFrom(start)
	return lit, nil
}

func (p *Parser) parseBinaryExpr(left ast.Expr) (ast.Expr, error) {
	start := left.Span()
	op := normalizeOp(p.curToken)
	precedence := precedences[p.curToken.Type]
	p.nextToken()
	right, err := p.parseExpression(precedence)
	if err != nil {
		return nil, err
	}
	e := &ast.BinaryExpr{Op: op, Left: left, Right: right}
	e.Sp = p.spanFrom(start)
	return e, nil
}

func normalizeOp(t lexer.Token) string {
	switch t.Type {
	case lexer.EQ, lexer.LOOSE_EQ:
		return "=="
	case lexer.NEQ, lexer.LOOSE_NE:
		return "!="
	default:
		return t.Literal
	}
}

func (p *Parser) parseCallExpr(callee ast.Expr) (ast.Expr, error) {
	start := callee.Span()
	p.nextToken() // consume `(`
	args, err := p.parseExprList(lexer.RPAREN)
	if err != nil {
		return nil, err
	}
	if err := p.expect(lexer.RPAREN, errors.ExpUnsupportedExpr, "expected `)` to close call"); err != nil {
		return nil, err
	}
	call := &ast.CallExpr{Callee: callee, Args: args}
	call.Sp = p.spanFrom(start)
	return p.maybeMarkerCall(call)
}

// maybeMarkerCall recognizes the curated core-language marker calls
// (q/unsafe/Ok/move) spec §4.6 describes, tagging them explicitly so
// host lowering does not need to re-derive intent from a bare call.
func (p *Parser) maybeMarkerCall(call *ast.CallExpr) (ast.Expr, error) {
	ident, ok := call.Callee.(*ast.Ident)
	if !ok {
		return call, nil
	}
	switch ident.Name {
	case "q":
		if len(call.Args) != 1 {
			sp := call.Span()
			return nil, errors.New(errors.ExpUnsupportedExpr, "q(expr) takes exactly one argument", &sp)
		}
		m := &ast.MarkerExpr{Kind: ast.MarkerQuestion, Arg: call.Args[0]}
		m.Sp = call.Sp
		return m, nil
	case "unsafe":
		if len(call.Args) != 1 {
			sp := call.Span()
			return nil, errors.New(errors.ExpUnsupportedExpr, "unsafe(...) takes exactly one argument", &sp)
		}
		arrow, ok := call.Args[0].(*ast.ArrowExpr)
		if !ok || arrow.BlockBody != nil {
			sp := call.Span()
			return nil, errors.New(errors.ExpBlockArrowRejected, "unsafe(...) requires a single-expression arrow with no parameters", &sp)
		}
		m := &ast.MarkerExpr{Kind: ast.MarkerUnsafe, Arg: arrow.Body}
		m.Sp = call.Sp
		return m, nil
	case "Ok":
		if len(call.Args) > 1 {
			sp := call.Span()
			return nil, errors.New(errors.ExpUnsupportedExpr, "Ok(...) takes at most one argument", &sp)
		}
		m := &ast.MarkerExpr{Kind: ast.MarkerOk}
		if len(call.Args) == 1 {
			if _, isUndef := call.Args[0].(*ast.UndefinedLit); !isUndef {
				m.Arg = call.Args[0]
			}
		}
		m.Sp = call.Sp
		return m, nil
	case "move":
		if len(call.Args) != 1 {
			sp := call.Span()
			return nil, errors.New(errors.ExpUnsupportedExpr, "move(...) takes exactly one argument", &sp)
		}
		arrow, ok := call.Args[0].(*ast.ArrowExpr)
		if !ok {
			sp := call.Span()
			return nil, errors.New(errors.ExpUnsupportedExpr, "move(...) requires an arrow function argument", &sp)
		}
		arrow.Move = true
		return arrow, nil
	default:
		return call, nil
	}
}

func (p *Parser) parseIndexExpr(obj ast.Expr) (ast.Expr, error) {
	start := obj.Span()
	p.nextToken() // consume `[`
	idx, err := p.parseExpression(lowest)
	if err != nil {
		return nil, err
	}
	if err := p.expect(lexer.RBRACKET, errors.ExpUnsupportedExpr, "expected `]`"); err != nil {
		return nil, err
	}
	e := &ast.IndexExpr{Obj: obj, Index: idx}
	e.Sp = p.spanFrom(start)
	return e, nil
}

func (p *Parser) parseMemberExpr(obj ast.Expr) (ast.Expr, error) {
	start := obj.Span()
	if err := p.expectPeek(lexer.IDENT, errors.ExpUnsupportedExpr, "expected a property name after `.`"); err != nil {
		return nil, err
	}
	prop := p.curToken.Literal
	p.nextToken()
	e := &ast.MemberExpr{Obj: obj, Prop: prop}
	e.Sp = p.spanFrom(start)
	return e, nil
}

func (p *Parser) parseAsExpr(value ast.Expr) (ast.Expr, error) {
	start := value.Span()
	p.nextToken() // consume `as`
	t, err := p.parseType()
	if err != nil {
		return nil, err
	}
	e := &ast.AsExpr{Value: value, Type: t}
	e.Sp = p.spanFrom(start)
	return e, nil
}

// parseExprList parses a comma-separated expression list up to (but not
// consuming) end.
func (p *Parser) parseExprList(end lexer.TokenType) ([]ast.Expr, error) {
	var out []ast.Expr
	for !p.curIs(end) {
		e, err := p.parseExpression(lowest)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
		if p.curIs(lexer.COMMA) {
			p.nextToken()
			continue
		}
		break
	}
	return out, nil
}
