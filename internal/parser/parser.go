// Package parser implements the recursive-descent parser for the accepted
// source subset (SPEC_FULL.md §C): it consumes internal/lexer's token
// stream and produces internal/ast trees, split into per-concern files
// the way the teacher splits parser_decl.go/parser_expr.go/parser_type.go.
//
// Unlike the teacher's parser, this one does not attempt error recovery:
// spec §7 requires components to "raise CompileError at the first
// problem" with the orchestrator not attempting recovery, so the first
// syntax problem encountered aborts parsing and returns a CompileError.
package parser

import (
	"github.com/tsubalang/tsubac/internal/ast"
	"github.com/tsubalang/tsubac/internal/errors"
	"github.com/tsubalang/tsubac/internal/lexer"
	"github.com/tsubalang/tsubac/internal/span"
)

// Precedence levels for the Pratt expression parser, grounded on the
// teacher's precedence-table approach (internal/parser/parser.go) but
// reordered for this grammar's operator set.
const (
	lowest int = iota
	logicalOr
	logicalAnd
	equals
	lessGreater
	sum
	product
	unaryPrec
	callPrec
	memberPrec
)

var precedences = map[lexer.TokenType]int{
	lexer.OR:       logicalOr,
	lexer.AND:      logicalAnd,
	lexer.EQ:       equals,
	lexer.NEQ:      equals,
	lexer.LOOSE_EQ: equals,
	lexer.LOOSE_NE: equals,
	lexer.LT:       lessGreater,
	lexer.GT:       lessGreater,
	lexer.LTE:      lessGreater,
	lexer.GTE:      lessGreater,
	lexer.PLUS:     sum,
	lexer.MINUS:    sum,
	lexer.STAR:     product,
	lexer.SLASH:    product,
	lexer.PERCENT:  product,
	lexer.LPAREN:   callPrec,
	lexer.LBRACKET: memberPrec,
	lexer.DOT:      memberPrec,
	lexer.AS:       memberPrec,
}

type prefixParseFn func() (ast.Expr, error)
type infixParseFn func(ast.Expr) (ast.Expr, error)

// Parser parses one source file's token stream into an *ast.File.
type Parser struct {
	l    *lexer.Lexer
	file string

	curToken  lexer.Token
	peekToken lexer.Token

	prefixParseFns map[lexer.TokenType]prefixParseFn
	infixParseFns  map[lexer.TokenType]infixParseFn
}

// New creates a Parser over l. file is the project-relative, forward-slash
// normalized source file name stamped onto every produced span.
func New(l *lexer.Lexer, file string) *Parser {
	p := &Parser{l: l, file: file}

	p.prefixParseFns = map[lexer.TokenType]prefixParseFn{
		lexer.IDENT:           p.parseIdentOrMarkerCall,
		lexer.INT:             p.parseIntLit,
		lexer.FLOAT:           p.parseFloatLit,
		lexer.STRING:          p.parseStringLit,
		lexer.TEMPLATE_STRING: p.parseTemplateLit,
		lexer.TRUE:            p.parseBoolLit,
		lexer.FALSE:           p.parseBoolLit,
		lexer.UNDEFINED:       p.parseUndefinedLit,
		lexer.THIS:            p.parseThisExpr,
		lexer.NEW:             p.parseNewExpr,
		lexer.VOID:            p.parseVoidExpr,
		lexer.AWAIT:           p.parseAwaitExpr,
		lexer.MINUS:           p.parseUnaryExpr,
		lexer.NOT:             p.parseUnaryExpr,
		lexer.LPAREN:          p.parseParenOrArrow,
		lexer.LBRACKET:        p.parseArrayLit,
		lexer.LBRACE:          p.parseObjectLit,
	}

	p.infixParseFns = map[lexer.TokenType]infixParseFn{
		lexer.PLUS:     p.parseBinaryExpr,
		lexer.MINUS:    p.parseBinaryExpr,
		lexer.STAR:     p.parseBinaryExpr,
		lexer.SLASH:    p.parseBinaryExpr,
		lexer.PERCENT:  p.parseBinaryExpr,
		lexer.EQ:       p.parseBinaryExpr,
		lexer.NEQ:      p.parseBinaryExpr,
		lexer.LOOSE_EQ: p.parseBinaryExpr,
		lexer.LOOSE_NE: p.parseBinaryExpr,
		lexer.LT:       p.parseBinaryExpr,
		lexer.GT:       p.parseBinaryExpr,
		lexer.LTE:      p.parseBinaryExpr,
		lexer.GTE:      p.parseBinaryExpr,
		lexer.AND:      p.parseBinaryExpr,
		lexer.OR:       p.parseBinaryExpr,
		lexer.LPAREN:   p.parseCallExpr,
		lexer.LBRACKET: p.parseIndexExpr,
		lexer.DOT:      p.parseMemberExpr,
		lexer.AS:       p.parseAsExpr,
	}

	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) curIs(t lexer.TokenType) bool  { return p.curToken.Type == t }
func (p *Parser) peekIs(t lexer.TokenType) bool { return p.peekToken.Type == t }

func (p *Parser) curSpan() span.Span {
	start := p.curToken.Column
	return span.Span{File: p.file, Line: p.curToken.Line, Start: start, End: start + len(p.curToken.Literal)}
}

func (p *Parser) spanFrom(start span.Span) span.Span {
	return span.Span{File: p.file, Line: start.Line, Start: start.Start, End: p.curToken.Column}
}

// expect consumes curToken if it matches t, advancing past it; otherwise it
// raises the caller-supplied diagnostic code at the current position. The
// parser has no generic "unexpected token" code of its own: a malformed
// construct is reported through whichever domain the caller is parsing.
func (p *Parser) expect(t lexer.TokenType, code errors.Code, message string) error {
	if !p.curIs(t) {
		sp := p.curSpan()
		return errors.New(code, message, &sp)
	}
	p.nextToken()
	return nil
}

// curPrecedence is the binding power of curToken when it is being
// considered as an infix operator continuing an already-parsed left
// operand (every prefix/infix parse function leaves curToken sitting on
// the next candidate operator, not one behind it).
func (p *Parser) curPrecedence() int {
	if pr, ok := precedences[p.curToken.Type]; ok {
		return pr
	}
	return lowest
}

// ParseFile consumes the whole token stream and returns the resulting
// *ast.File, or the first CompileError encountered.
func ParseFile(src []byte, file string) (*ast.File, error) {
	normalized := lexer.Normalize(src)
	l := lexer.New(string(normalized), file)
	p := New(l, file)
	return p.parseFile()
}

func (p *Parser) parseFile() (*ast.File, error) {
	start := p.curSpan()
	var stmts []ast.Stmt
	for !p.curIs(lexer.EOF) {
		stmt, err := p.parseTopLevel()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	f := &ast.File{Path: p.file, Stmts: stmts}
	f.Sp = p.spanFrom(start)
	return f, nil
}
