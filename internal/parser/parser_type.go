package parser

import (
	"strconv"

	"github.com/tsubalang/tsubac/internal/ast"
	"github.com/tsubalang/tsubac/internal/errors"
	"github.com/tsubalang/tsubac/internal/lexer"
	"github.com/tsubalang/tsubac/internal/span"
)

// parseType parses one type annotation. The marker-type names (ref,
// mutref, refLt, mutrefLt, mut, ArrayN) get dedicated ast nodes; every
// other nominal or generic reference falls through to ast.NamedType,
// which internal/typelower resolves against its fixed mapping table.
func (p *Parser) parseType() (ast.Type, error) {
	start := p.curSpan()

	if p.curIs(lexer.LPAREN) {
		return p.parseFuncType(start)
	}

	if !p.curIs(lexer.IDENT) && !p.curIs(lexer.VOID) {
		return nil, errors.New(errors.TypUnsupportedRef, "expected a type reference", &start)
	}
	name := p.curToken.Literal
	if p.curIs(lexer.VOID) {
		name = "void"
	}
	p.nextToken()

	switch name {
	case "ref", "mutref":
		return p.parseRefType(name, start, false)
	case "refLt", "mutrefLt":
		return p.parseRefType(name, start, true)
	case "mut":
		return p.parseMutType(start)
	case "ArrayN":
		return p.parseArrayNType(start)
	}

	named := &ast.NamedType{Name: name}
	if p.curIs(lexer.LT) {
		args, err := p.parseTypeArgList()
		if err != nil {
			return nil, err
		}
		named.Args = args
	}
	named.Sp = p.spanFrom(start)

	if p.curIs(lexer.LBRACKET) {
		if err := p.expect(lexer.LBRACKET, errors.TypUnsupportedRef, "expected `]` to close array type"); err != nil {
			return nil, err
		}
		if err := p.expect(lexer.RBRACKET, errors.TypUnsupportedRef, "expected `]` to close array type"); err != nil {
			return nil, err
		}
		arr := &ast.ArrayType{Elem: named}
		arr.Sp = p.spanFrom(start)
		return arr, nil
	}

	return named, nil
}

// parseTypeArgList parses `<T1, T2, ...>` and leaves curToken past `>`.
func (p *Parser) parseTypeArgList() ([]ast.Type, error) {
	if err := p.expect(lexer.LT, errors.TypUnsupportedRef, "expected `<`"); err != nil {
		return nil, err
	}
	var args []ast.Type
	for {
		t, err := p.parseType()
		if err != nil {
			return nil, err
		}
		args = append(args, t)
		if p.curIs(lexer.COMMA) {
			p.nextToken()
			continue
		}
		break
	}
	if err := p.expect(lexer.GT, errors.TypUnsupportedRef, "expected `>` to close generic argument list"); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *Parser) parseRefType(name string, start span.Span, withLifetime bool) (ast.Type, error) {
	if err := p.expect(lexer.LT, errors.TypUnsupportedRef, "expected `<`"); err != nil {
		return nil, err
	}
	var lifetime string
	if withLifetime {
		if !p.curIs(lexer.STRING) {
			sp := p.curSpan()
			return nil, errors.New(errors.TypLifetimeNotString, "lifetime argument must be a string literal", &sp)
		}
		lifetime = p.curToken.Literal
		p.nextToken()
		if err := p.expect(lexer.COMMA, errors.TypUnsupportedRef, "expected `,` after lifetime argument"); err != nil {
			return nil, err
		}
	}
	elem, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if err := p.expect(lexer.GT, errors.TypUnsupportedRef, "expected `>`"); err != nil {
		return nil, err
	}
	kind := ast.RefShared
	if name == "mutref" || name == "mutrefLt" {
		kind = ast.RefMut
	}
	t := &ast.RefType{Kind: kind, Lifetime: lifetime, Elem: elem}
	t.Sp = p.spanFrom(start)
	return t, nil
}

func (p *Parser) parseMutType(start span.Span) (ast.Type, error) {
	if err := p.expect(lexer.LT, errors.TypMutArgCount, "mut<T> requires exactly one type argument"); err != nil {
		return nil, err
	}
	elem, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if err := p.expect(lexer.GT, errors.TypMutArgCount, "mut<T> requires exactly one type argument"); err != nil {
		return nil, err
	}
	t := &ast.MutType{Elem: elem}
	t.Sp = p.spanFrom(start)
	return t, nil
}

func (p *Parser) parseArrayNType(start span.Span) (ast.Type, error) {
	if err := p.expect(lexer.LT, errors.TypArrayNArgCount, "ArrayN<T, N> requires exactly two arguments"); err != nil {
		return nil, err
	}
	elem, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if err := p.expect(lexer.COMMA, errors.TypArrayNArgCount, "ArrayN<T, N> requires exactly two arguments"); err != nil {
		return nil, err
	}
	if !p.curIs(lexer.INT) {
		sp := p.curSpan()
		return nil, errors.New(errors.TypArrayNArgCount, "ArrayN's length must be a non-negative integer literal", &sp)
	}
	n, err := strconv.ParseInt(p.curToken.Literal, 10, 64)
	if err != nil || n < 0 {
		sp := p.curSpan()
		return nil, errors.New(errors.TypArrayNArgCount, "ArrayN's length must be a non-negative integer literal", &sp)
	}
	p.nextToken()
	if err := p.expect(lexer.GT, errors.TypArrayNArgCount, "ArrayN<T, N> requires exactly two arguments"); err != nil {
		return nil, err
	}
	t := &ast.ArrayNType{Elem: elem, N: n}
	t.Sp = p.spanFrom(start)
	return t, nil
}

func (p *Parser) parseFuncType(start span.Span) (ast.Type, error) {
	if err := p.expect(lexer.LPAREN, errors.TypUnsupportedRef, "expected `(`"); err != nil {
		return nil, err
	}
	var params []ast.Type
	for !p.curIs(lexer.RPAREN) {
		t, err := p.parseType()
		if err != nil {
			return nil, err
		}
		params = append(params, t)
		if p.curIs(lexer.COMMA) {
			p.nextToken()
			continue
		}
		break
	}
	if err := p.expect(lexer.RPAREN, errors.TypUnsupportedRef, "expected `)`"); err != nil {
		return nil, err
	}
	if err := p.expect(lexer.ARROW, errors.TypUnsupportedRef, "expected `=>` in function type"); err != nil {
		return nil, err
	}
	result, err := p.parseType()
	if err != nil {
		return nil, err
	}
	t := &ast.FuncType{Params: params, Result: result}
	t.Sp = p.spanFrom(start)
	return t, nil
}
