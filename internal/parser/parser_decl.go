package parser

import (
	"github.com/tsubalang/tsubac/internal/ast"
	"github.com/tsubalang/tsubac/internal/errors"
	"github.com/tsubalang/tsubac/internal/lexer"
	"github.com/tsubalang/tsubac/internal/span"
)

// parseTopLevel dispatches one top-level form, grounded on the teacher's
// parser_decl.go declaration-dispatch switch, generalized to this
// grammar's closed set of top-level forms (import/export/type/interface/
// class/function/const/annotate — anything else is FniUnsupportedTopLevel).
func (p *Parser) parseTopLevel() (ast.Stmt, error) {
	switch {
	case p.curIs(lexer.IMPORT):
		return p.parseImport()
	case p.curIs(lexer.EXPORT):
		return p.parseExport()
	case p.curIs(lexer.TYPE):
		return p.parseTypeAlias()
	case p.curIs(lexer.INTERFACE):
		return p.parseInterface()
	case p.curIs(lexer.CLASS):
		return p.parseClass()
	case p.curIs(lexer.ASYNC):
		return p.parseFunction(true)
	case p.curIs(lexer.FUNCTION):
		return p.parseFunction(false)
	case p.curIs(lexer.CONST):
		return p.parseConst()
	case p.curIs(lexer.IDENT) && p.curToken.Literal == "annotate":
		return p.parseAnnotateStmt()
	default:
		sp := p.curSpan()
		return nil, errors.New(errors.FniUnsupportedTopLevel, "unsupported top-level form", &sp)
	}
}

// parseImport covers every accepted import shape — named, default,
// namespace, side-effect-only — all folding into the single ImportDecl
// node; host lowering (not the parser) rejects the non-named forms with
// their dedicated FNI diagnostics.
func (p *Parser) parseImport() (ast.Stmt, error) {
	start := p.curSpan()
	p.nextToken() // consume `import`

	d := &ast.ImportDecl{}

	if p.curIs(lexer.STRING) {
		d.Specifier = p.curToken.Literal
		d.SideEffectOnly = true
		p.nextToken()
		if p.curIs(lexer.SEMICOLON) {
			p.nextToken()
		}
		d.Sp = p.spanFrom(start)
		return d, nil
	}

	if p.curIs(lexer.STAR) {
		p.nextToken()
		if err := p.expect(lexer.AS, errors.FniImportNamespace, "expected `as` after `import *`"); err != nil {
			return nil, err
		}
		if !p.curIs(lexer.IDENT) {
			sp := p.curSpan()
			return nil, errors.New(errors.FniImportNamespace, "expected a namespace binding name", &sp)
		}
		ns := p.curToken.Literal
		p.nextToken()
		if err := p.expect(lexer.FROM, errors.FniImportNamespace, "expected `from` after namespace binding"); err != nil {
			return nil, err
		}
		if !p.curIs(lexer.STRING) {
			sp := p.curSpan()
			return nil, errors.New(errors.FniImportNamespace, "expected a specifier string", &sp)
		}
		d.Specifier = p.curToken.Literal
		d.IsNamespace = true
		d.Names = []ast.ImportedName{{Name: ns}}
		p.nextToken()
		if p.curIs(lexer.SEMICOLON) {
			p.nextToken()
		}
		d.Sp = p.spanFrom(start)
		return d, nil
	}

	if p.curIs(lexer.LBRACE) {
		p.nextToken()
		for !p.curIs(lexer.RBRACE) {
			if !p.curIs(lexer.IDENT) {
				sp := p.curSpan()
				return nil, errors.New(errors.FniUnsupportedTopLevel, "expected an imported name", &sp)
			}
			name := p.curToken.Literal
			p.nextToken()
			alias := ""
			if p.curIs(lexer.AS) {
				p.nextToken()
				if !p.curIs(lexer.IDENT) {
					sp := p.curSpan()
					return nil, errors.New(errors.FniUnsupportedTopLevel, "expected an alias name", &sp)
				}
				alias = p.curToken.Literal
				p.nextToken()
			}
			d.Names = append(d.Names, ast.ImportedName{Name: name, Alias: alias})
			if p.curIs(lexer.COMMA) {
				p.nextToken()
				continue
			}
			break
		}
		if err := p.expect(lexer.RBRACE, errors.FniUnsupportedTopLevel, "expected `}` to close import list"); err != nil {
			return nil, err
		}
		if err := p.expect(lexer.FROM, errors.FniUnsupportedTopLevel, "expected `from` after import list"); err != nil {
			return nil, err
		}
		if !p.curIs(lexer.STRING) {
			sp := p.curSpan()
			return nil, errors.New(errors.FniUnsupportedTopLevel, "expected a specifier string", &sp)
		}
		d.Specifier = p.curToken.Literal
		p.nextToken()
		if p.curIs(lexer.SEMICOLON) {
			p.nextToken()
		}
		d.Sp = p.spanFrom(start)
		return d, nil
	}

	if !p.curIs(lexer.IDENT) {
		sp := p.curSpan()
		return nil, errors.New(errors.FniUnsupportedTopLevel, "unrecognized import form", &sp)
	}
	def := p.curToken.Literal
	p.nextToken()
	if err := p.expect(lexer.FROM, errors.FniImportDefault, "expected `from` after default import binding"); err != nil {
		return nil, err
	}
	if !p.curIs(lexer.STRING) {
		sp := p.curSpan()
		return nil, errors.New(errors.FniImportDefault, "expected a specifier string", &sp)
	}
	d.Specifier = p.curToken.Literal
	d.IsDefault = true
	d.Names = []ast.ImportedName{{Name: def}}
	p.nextToken()
	if p.curIs(lexer.SEMICOLON) {
		p.nextToken()
	}
	d.Sp = p.spanFrom(start)
	return d, nil
}

// parseExport recognizes the only accepted standalone form, `export {}`,
// plus `export function|class|const ...`, which simply strips the keyword
// and delegates to the underlying declaration parser: neither FuncDecl nor
// ClassDecl carries an Exported flag, since every top-level declaration in
// the accepted subset is implicitly visible to host lowering.
func (p *Parser) parseExport() (ast.Stmt, error) {
	start := p.curSpan()
	p.nextToken() // consume `export`

	if p.curIs(lexer.LBRACE) {
		p.nextToken()
		if err := p.expect(lexer.RBRACE, errors.FniUnsupportedTopLevel, "expected `}` to close `export {}`"); err != nil {
			return nil, err
		}
		if p.curIs(lexer.SEMICOLON) {
			p.nextToken()
		}
		d := &ast.ExportEmptyDecl{}
		d.Sp = p.spanFrom(start)
		return d, nil
	}

	switch {
	case p.curIs(lexer.ASYNC):
		return p.parseFunction(true)
	case p.curIs(lexer.FUNCTION):
		return p.parseFunction(false)
	case p.curIs(lexer.CLASS):
		return p.parseClass()
	case p.curIs(lexer.CONST):
		return p.parseConst()
	default:
		sp := p.curSpan()
		return nil, errors.New(errors.FniBarrelReexport, "unsupported `export` form", &sp)
	}
}

// parseObjectTypeLit parses one `{ field: Type, ... }` type body. A field
// literally named `kind` with a string-literal value is captured as the
// discriminant tag rather than turned into an ordinary FieldDecl, since it
// has no run-time representation of its own — it only selects which
// variant of a union a value belongs to.
func (p *Parser) parseObjectTypeLit() (ast.ObjectTypeLit, error) {
	start := p.curSpan()
	if err := p.expect(lexer.LBRACE, errors.TypUnsupportedRef, "expected `{` to start an object type"); err != nil {
		return ast.ObjectTypeLit{}, err
	}
	var fields []*ast.FieldDecl
	var kind string
	var kindSpan span.Span
	for !p.curIs(lexer.RBRACE) {
		fstart := p.curSpan()
		if !p.curIs(lexer.IDENT) {
			sp := p.curSpan()
			return ast.ObjectTypeLit{}, errors.New(errors.TypUnsupportedRef, "expected a field name", &sp)
		}
		fname := p.curToken.Literal
		p.nextToken()
		if err := p.expect(lexer.COLON, errors.TypUnsupportedRef, "expected `:` after field name"); err != nil {
			return ast.ObjectTypeLit{}, err
		}
		if fname == "kind" && p.curIs(lexer.STRING) {
			kind = p.curToken.Literal
			kindSpan = p.curSpan()
			p.nextToken()
		} else {
			t, err := p.parseType()
			if err != nil {
				return ast.ObjectTypeLit{}, err
			}
			fields = append(fields, &ast.FieldDecl{Sp: p.spanFrom(fstart), Name: fname, Type: t})
		}
		if p.curIs(lexer.COMMA) || p.curIs(lexer.SEMICOLON) {
			p.nextToken()
			continue
		}
		break
	}
	if err := p.expect(lexer.RBRACE, errors.TypUnsupportedRef, "expected `}` to close object type"); err != nil {
		return ast.ObjectTypeLit{}, err
	}
	return ast.ObjectTypeLit{Sp: p.spanFrom(start), Fields: fields, Kind: kind, KindSpan: kindSpan}, nil
}

// parseTypeAlias parses a plain alias (`type X = Type;`), a generic alias,
// or a discriminated union (`type X = {kind: "A", ...} | {kind: "B", ...};`).
// A union body is any alias whose right-hand side starts with `{`, even a
// single variant, since ObjectTypeLit (unlike every other type form) has no
// ast.Type representation of its own.
func (p *Parser) parseTypeAlias() (ast.Stmt, error) {
	start := p.curSpan()
	p.nextToken() // consume `type`
	if !p.curIs(lexer.IDENT) {
		sp := p.curSpan()
		return nil, errors.New(errors.FniUnsupportedTopLevel, "type alias requires a name", &sp)
	}
	name := p.curToken.Literal
	p.nextToken()

	var generics []ast.GenericParam
	if p.curIs(lexer.LT) {
		g, err := p.parseGenerics()
		if err != nil {
			return nil, err
		}
		generics = g
	}

	if err := p.expect(lexer.ASSIGN, errors.FniUnsupportedTopLevel, "expected `=` in type alias"); err != nil {
		return nil, err
	}

	d := &ast.TypeAliasDecl{Name: name, Generics: generics}
	if p.curIs(lexer.LBRACE) && p.peekIs(lexer.LBRACKET) {
		sp := p.curSpan()
		return nil, errors.New(errors.TypMappedRejected, "mapped type aliases are not supported", &sp)
	}
	if p.curIs(lexer.LBRACE) {
		var variants []ast.ObjectTypeLit
		for {
			v, err := p.parseObjectTypeLit()
			if err != nil {
				return nil, err
			}
			variants = append(variants, v)
			if p.curIs(lexer.PIPE) {
				p.nextToken()
				continue
			}
			break
		}
		d.Union = variants
	} else {
		t, err := p.parseType()
		if err != nil {
			return nil, err
		}
		d.Body = t
	}
	if p.curIs(lexer.EXTENDS) {
		sp := p.curSpan()
		return nil, errors.New(errors.TypConditionalRejected, "conditional type aliases are not supported", &sp)
	}
	if p.curIs(lexer.ILLEGAL) && p.curToken.Literal == "&" {
		sp := p.curSpan()
		return nil, errors.New(errors.TypIntersectionRejected, "intersection type aliases are not supported", &sp)
	}
	if p.curIs(lexer.SEMICOLON) {
		p.nextToken()
	}
	d.Sp = p.spanFrom(start)
	return d, nil
}

// parseGenerics parses `<T: Bound1 + Bound2, U>`, leaving curToken past `>`.
func (p *Parser) parseGenerics() ([]ast.GenericParam, error) {
	if err := p.expect(lexer.LT, errors.TypUnresolvedConstraint, "expected `<`"); err != nil {
		return nil, err
	}
	var generics []ast.GenericParam
	for {
		if !p.curIs(lexer.IDENT) {
			sp := p.curSpan()
			return nil, errors.New(errors.TypUnresolvedConstraint, "expected a generic parameter name", &sp)
		}
		g := ast.GenericParam{Name: p.curToken.Literal}
		p.nextToken()
		if p.curIs(lexer.COLON) {
			p.nextToken()
			for {
				if !p.curIs(lexer.IDENT) {
					sp := p.curSpan()
					return nil, errors.New(errors.TypUnresolvedConstraint, "expected a bound interface name", &sp)
				}
				g.Bounds = append(g.Bounds, p.curToken.Literal)
				p.nextToken()
				if p.curIs(lexer.PLUS) {
					p.nextToken()
					continue
				}
				break
			}
		}
		generics = append(generics, g)
		if p.curIs(lexer.COMMA) {
			p.nextToken()
			continue
		}
		break
	}
	if err := p.expect(lexer.GT, errors.TypUnresolvedConstraint, "expected `>` to close generic parameter list"); err != nil {
		return nil, err
	}
	return generics, nil
}

// parseInterface lowers to a trait; method signatures carry no body.
func (p *Parser) parseInterface() (ast.Stmt, error) {
	start := p.curSpan()
	p.nextToken() // consume `interface`
	if !p.curIs(lexer.IDENT) {
		sp := p.curSpan()
		return nil, errors.New(errors.FniUnsupportedTopLevel, "interface declaration requires a name", &sp)
	}
	name := p.curToken.Literal
	p.nextToken()

	var extends []string
	if p.curIs(lexer.EXTENDS) {
		p.nextToken()
		for {
			if !p.curIs(lexer.IDENT) {
				sp := p.curSpan()
				return nil, errors.New(errors.FniUnsupportedTopLevel, "expected an interface name after `extends`", &sp)
			}
			extends = append(extends, p.curToken.Literal)
			p.nextToken()
			if p.curIs(lexer.COMMA) {
				p.nextToken()
				continue
			}
			break
		}
	}

	if err := p.expect(lexer.LBRACE, errors.FniUnsupportedTopLevel, "expected `{` to start interface body"); err != nil {
		return nil, err
	}
	var methods []*ast.MethodDecl
	for !p.curIs(lexer.RBRACE) {
		m, err := p.parseMethodSignature()
		if err != nil {
			return nil, err
		}
		methods = append(methods, m)
	}
	if err := p.expect(lexer.RBRACE, errors.FniUnsupportedTopLevel, "expected `}` to close interface body"); err != nil {
		return nil, err
	}

	d := &ast.InterfaceDecl{Name: name, Extends: extends, Methods: methods}
	d.Sp = p.spanFrom(start)
	return d, nil
}

func (p *Parser) parseMethodSignature() (*ast.MethodDecl, error) {
	start := p.curSpan()
	if !p.curIs(lexer.IDENT) {
		sp := p.curSpan()
		return nil, errors.New(errors.TypTraitOptionalMember, "expected a method name", &sp)
	}
	name := p.curToken.Literal
	p.nextToken()
	optional := false
	if p.curIs(lexer.QUESTION) {
		optional = true
		p.nextToken()
	}
	params, err := p.parseParamList()
	if err != nil {
		return nil, err
	}
	var ret ast.Type
	if p.curIs(lexer.COLON) {
		p.nextToken()
		t, err := p.parseType()
		if err != nil {
			return nil, err
		}
		ret = t
	}
	if p.curIs(lexer.SEMICOLON) {
		p.nextToken()
	}
	m := &ast.MethodDecl{Name: name, Optional: optional, Params: params, ReturnType: ret}
	m.Sp = p.spanFrom(start)
	return m, nil
}

// parseClass parses fields, the optional constructor, and methods directly
// into the ClassDecl's dedicated slots rather than through a generic
// statement dispatcher: CtorDecl has no stmtNode method, since it is a
// fixed class member slot rather than one of the ordinary top-level forms.
func (p *Parser) parseClass() (ast.Stmt, error) {
	start := p.curSpan()
	p.nextToken() // consume `class`
	if !p.curIs(lexer.IDENT) {
		sp := p.curSpan()
		return nil, errors.New(errors.ClsAnonymousClass, "class declaration requires a name", &sp)
	}
	name := p.curToken.Literal
	p.nextToken()

	var implements []string
	if p.curIs(lexer.IMPLEMENTS) {
		p.nextToken()
		for {
			if !p.curIs(lexer.IDENT) {
				sp := p.curSpan()
				return nil, errors.New(errors.ClsUnknownInterface, "expected an interface name after `implements`", &sp)
			}
			implements = append(implements, p.curToken.Literal)
			p.nextToken()
			if p.curIs(lexer.COMMA) {
				p.nextToken()
				continue
			}
			break
		}
	}

	if err := p.expect(lexer.LBRACE, errors.ClsAnonymousClass, "expected `{` to start class body"); err != nil {
		return nil, err
	}
	d := &ast.ClassDecl{Name: name, Implements: implements}
	for !p.curIs(lexer.RBRACE) {
		if err := p.parseClassMember(d); err != nil {
			return nil, err
		}
	}
	if err := p.expect(lexer.RBRACE, errors.ClsAnonymousClass, "expected `}` to close class body"); err != nil {
		return nil, err
	}
	d.Sp = p.spanFrom(start)
	return d, nil
}

func (p *Parser) parseClassMember(d *ast.ClassDecl) error {
	start := p.curSpan()
	static := false
	if p.curIs(lexer.STATIC) {
		static = true
		p.nextToken()
	}
	async := false
	if p.curIs(lexer.ASYNC) {
		async = true
		p.nextToken()
	}
	if !p.curIs(lexer.IDENT) {
		sp := p.curSpan()
		return errors.New(errors.ClsMissingFieldType, "expected a field or method name", &sp)
	}
	name := p.curToken.Literal

	if name == "constructor" && !static && !async {
		p.nextToken()
		params, err := p.parseParamList()
		if err != nil {
			return err
		}
		body, err := p.parseBlock()
		if err != nil {
			return err
		}
		d.Ctor = &ast.CtorDecl{Sp: p.spanFrom(start), Params: params, Body: body}
		return nil
	}

	if !p.peekIs(lexer.LPAREN) {
		p.nextToken() // consume name
		if err := p.expect(lexer.COLON, errors.ClsMissingFieldType, "expected `:` after field name"); err != nil {
			return err
		}
		t, err := p.parseType()
		if err != nil {
			return err
		}
		if p.curIs(lexer.SEMICOLON) {
			p.nextToken()
		}
		d.Fields = append(d.Fields, &ast.FieldDecl{Sp: p.spanFrom(start), Name: name, Type: t})
		return nil
	}

	p.nextToken() // consume name
	m := &ast.MethodDecl{Name: name, Static: static, Async: async}
	if err := p.expect(lexer.LPAREN, errors.ClsBadThisTyping, "expected `(` to start parameter list"); err != nil {
		return err
	}
	if p.curIs(lexer.THIS) {
		thisStart := p.curSpan()
		p.nextToken()
		tp := &ast.ThisParam{Sp: p.spanFrom(thisStart), Raw: true}
		if p.curIs(lexer.COLON) {
			p.nextToken()
			t, err := p.parseType()
			if err != nil {
				return err
			}
			if rt, ok := t.(*ast.RefType); ok {
				tp.Mut = rt.Kind == ast.RefMut
				tp.Raw = false
			}
		}
		m.This = tp
		if p.curIs(lexer.COMMA) {
			p.nextToken()
		}
	}
	for !p.curIs(lexer.RPAREN) {
		param, err := p.parseParam()
		if err != nil {
			return err
		}
		m.Params = append(m.Params, param)
		if p.curIs(lexer.COMMA) {
			p.nextToken()
			continue
		}
		break
	}
	if err := p.expect(lexer.RPAREN, errors.ClsBadThisTyping, "expected `)` to close parameter list"); err != nil {
		return err
	}
	if p.curIs(lexer.COLON) {
		p.nextToken()
		t, err := p.parseType()
		if err != nil {
			return err
		}
		m.ReturnType = t
	}
	body, err := p.parseBlock()
	if err != nil {
		return err
	}
	m.Body = body
	m.Sp = p.spanFrom(start)
	d.Methods = append(d.Methods, m)
	return nil
}

// parseFunction parses a helper function declaration, including the
// external-declaration form (a semicolon instead of a body).
func (p *Parser) parseFunction(async bool) (ast.Stmt, error) {
	start := p.curSpan()
	if async {
		p.nextToken() // consume `async`
	}
	if err := p.expect(lexer.FUNCTION, errors.FniUnnamedFunction, "expected `function`"); err != nil {
		return nil, err
	}
	if !p.curIs(lexer.IDENT) {
		sp := p.curSpan()
		return nil, errors.New(errors.FniUnnamedFunction, "function declaration requires a name", &sp)
	}
	name := p.curToken.Literal
	p.nextToken()

	var generics []ast.GenericParam
	if p.curIs(lexer.LT) {
		g, err := p.parseGenerics()
		if err != nil {
			return nil, err
		}
		generics = g
	}

	params, err := p.parseParamList()
	if err != nil {
		return nil, err
	}
	var ret ast.Type
	if p.curIs(lexer.COLON) {
		p.nextToken()
		t, err := p.parseType()
		if err != nil {
			return nil, err
		}
		ret = t
	}

	d := &ast.FuncDecl{Name: name, Generics: generics, Params: params, ReturnType: ret, Async: async}
	if p.curIs(lexer.SEMICOLON) {
		p.nextToken()
		d.External = true
	} else {
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		d.Body = body
	}
	d.Sp = p.spanFrom(start)
	return d, nil
}

// parseConst parses a top-level `const NAME[: Type] = <expr>;`. The
// accepted subset's only legal initializer is a kernel constructor call,
// which internal/kernel.Extract validates after the whole file is parsed
// (host lowering rejects any other const) — the parser itself stays
// agnostic to what the call shape means.
func (p *Parser) parseConst() (ast.Stmt, error) {
	start := p.curSpan()
	p.nextToken() // consume `const`
	if !p.curIs(lexer.IDENT) {
		sp := p.curSpan()
		return nil, errors.New(errors.CtlTopLevelNonConst, "expected a binding name after `const`", &sp)
	}
	name := p.curToken.Literal
	p.nextToken()
	if p.curIs(lexer.COLON) {
		p.nextToken()
		if _, err := p.parseType(); err != nil {
			return nil, err
		}
	}
	if err := p.expect(lexer.ASSIGN, errors.CtlTopLevelNonConst, "expected `=` in const declaration"); err != nil {
		return nil, err
	}
	value, err := p.parseExpression(lowest)
	if err != nil {
		return nil, err
	}
	if p.curIs(lexer.SEMICOLON) {
		p.nextToken()
	}
	d := &ast.ConstDecl{Name: name, Value: value}
	d.Sp = p.spanFrom(start)
	return d, nil
}

// parseAnnotateStmt recognizes the fixed `annotate(target, attr(name,
// `tokens`));` shape syntactically, per spec §4.6, rather than leaving it
// as a bare call for lowering to pattern-match against.
func (p *Parser) parseAnnotateStmt() (ast.Stmt, error) {
	start := p.curSpan()
	p.nextToken() // consume `annotate`
	if err := p.expect(lexer.LPAREN, errors.FniUnsupportedTopLevel, "expected `(` after `annotate`"); err != nil {
		return nil, err
	}
	if !p.curIs(lexer.IDENT) {
		sp := p.curSpan()
		return nil, errors.New(errors.FniUnsupportedTopLevel, "expected a target identifier", &sp)
	}
	target := p.curToken.Literal
	p.nextToken()
	if err := p.expect(lexer.COMMA, errors.FniUnsupportedTopLevel, "expected `,` after annotate target"); err != nil {
		return nil, err
	}
	if !p.curIs(lexer.IDENT) {
		sp := p.curSpan()
		return nil, errors.New(errors.FniUnsupportedTopLevel, "expected an attribute constructor", &sp)
	}
	p.nextToken() // consume the attribute-constructor name, e.g. `attr`
	if err := p.expect(lexer.LPAREN, errors.FniUnsupportedTopLevel, "expected `(` after attribute constructor"); err != nil {
		return nil, err
	}
	if !p.curIs(lexer.IDENT) && !p.curIs(lexer.STRING) {
		sp := p.curSpan()
		return nil, errors.New(errors.FniUnsupportedTopLevel, "expected an attribute name", &sp)
	}
	attrName := p.curToken.Literal
	p.nextToken()
	if err := p.expect(lexer.COMMA, errors.FniUnsupportedTopLevel, "expected `,` after attribute name"); err != nil {
		return nil, err
	}
	if !p.curIs(lexer.TEMPLATE_STRING) {
		sp := p.curSpan()
		return nil, errors.New(errors.FniUnsupportedTopLevel, "expected a raw token block in backticks", &sp)
	}
	tokens := p.curToken.Literal
	p.nextToken()
	if err := p.expect(lexer.RPAREN, errors.FniUnsupportedTopLevel, "expected `)` to close attribute constructor"); err != nil {
		return nil, err
	}
	if err := p.expect(lexer.RPAREN, errors.FniUnsupportedTopLevel, "expected `)` to close `annotate(...)`"); err != nil {
		return nil, err
	}
	if p.curIs(lexer.SEMICOLON) {
		p.nextToken()
	}
	d := &ast.AnnotateStmt{Target: target, Name: attrName, Tokens: tokens}
	d.Sp = p.spanFrom(start)
	return d, nil
}

// ---- shared parameter-list machinery (functions, methods, constructors, arrows) ----

func (p *Parser) parseParamList() ([]*ast.Param, error) {
	if err := p.expect(lexer.LPAREN, errors.FniMissingParamType, "expected `(` to start parameter list"); err != nil {
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
	if err := p.expect(lexer.RPAREN, errors.FniMissingParamType, "expected `)` to close parameter list"); err != nil {
		return nil, err
	}
	return params, nil
}

// parseParam parses one parameter, including the destructured (`{...}`/
// `[...]`) and optional (`name?`) forms that are themselves rejections at
// lowering time (FniDestructuredParam/FniOptionalParam) — the parser
// represents them rather than erroring, so those diagnostics can carry a
// precise span.
func (p *Parser) parseParam() (*ast.Param, error) {
	start := p.curSpan()
	if p.curIs(lexer.LBRACE) || p.curIs(lexer.LBRACKET) {
		open := p.curToken.Type
		closeTok := lexer.RBRACE
		if open == lexer.LBRACKET {
			closeTok = lexer.RBRACKET
		}
		depth := 0
		for {
			if p.curIs(lexer.EOF) {
				sp := p.curSpan()
				return nil, errors.New(errors.FniDestructuredParam, "unterminated destructured parameter", &sp)
			}
			if p.curIs(open) {
				depth++
			} else if p.curIs(closeTok) {
				depth--
				if depth == 0 {
					p.nextToken()
					break
				}
			}
			p.nextToken()
		}
		param := &ast.Param{Destructuring: true}
		if p.curIs(lexer.COLON) {
			p.nextToken()
			t, err := p.parseType()
			if err != nil {
				return nil, err
			}
			param.Type = t
		}
		param.Sp = p.spanFrom(start)
		return param, nil
	}

	if !p.curIs(lexer.IDENT) {
		sp := p.curSpan()
		return nil, errors.New(errors.FniMissingParamType, "expected a parameter name", &sp)
	}
	name := p.curToken.Literal
	p.nextToken()

	optional := false
	if p.curIs(lexer.QUESTION) {
		optional = true
		p.nextToken()
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

	hasDefault := false
	if p.curIs(lexer.ASSIGN) {
		hasDefault = true
		p.nextToken()
		if _, err := p.parseExpression(lowest); err != nil {
			return nil, err
		}
	}

	param := &ast.Param{Name: name, Type: typ, Optional: optional, HasDefault: hasDefault}
	param.Sp = p.spanFrom(start)
	return param, nil
}
