package parser

import (
	"github.com/esgo-lang/esgo/internal/ast"
	"github.com/esgo-lang/esgo/internal/lexer"
)

func (p *Parser) parseClassDeclaration() *ast.ClassLiteral {
	return p.parseClassBody(true)
}

func (p *Parser) parseClassExpression() *ast.ClassLiteral {
	return p.parseClassBody(false)
}

// parseClassBody parses `class [name] [extends Super] { members }`
// (spec.md §3 invariant 6, §4.4.6). requireName only affects error
// reporting; class expressions may be anonymous.
func (p *Parser) parseClassBody(requireName bool) *ast.ClassLiteral {
	tok := p.cur
	p.expect(lexer.CLASS)
	cls := &ast.ClassLiteral{}
	setToken(cls, tok)

	if p.curIs(lexer.IDENT) {
		cls.Name = p.parseIdentifierPattern()
	} else if requireName {
		p.errorf("class declaration requires a name")
	}

	if p.curIs(lexer.EXTENDS) {
		p.next()
		cls.SuperClass = p.parseCallOrMember(p.parsePrimary())
	}

	outerClass := p.inClass
	p.inClass = true
	p.expect(lexer.LBRACE)
	for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
		if p.curIs(lexer.SEMICOLON) {
			p.next()
			continue
		}
		cls.Members = append(cls.Members, p.parseClassMember())
	}
	p.expect(lexer.RBRACE)
	p.inClass = outerClass

	return cls
}

func (p *Parser) parseClassMember() ast.ClassMember {
	isStatic := false
	if p.curIs(lexer.STATIC) && !p.peekIsClassMemberTerminator() {
		isStatic = true
		p.next()
	}

	if isStatic && p.curIs(lexer.LBRACE) {
		block := p.parseBlockStatement()
		return ast.ClassMember{IsStatic: true, Kind: "staticBlock", StaticBlock: block}
	}

	isAsync, isGen := false, false
	kind := "method"

	if p.curIs(lexer.ASYNC) && !p.peekIsClassMemberTerminator() {
		isAsync = true
		p.next()
	}
	if p.curIs(lexer.STAR) {
		isGen = true
		p.next()
	}
	if (p.curIs(lexer.GET) || p.curIs(lexer.SET)) && !p.peekIsClassMemberTerminator() {
		kind = p.cur.Literal
		p.next()
	}

	isPrivate := false
	computed := false
	var key ast.Expression
	switch {
	case p.curIs(lexer.PRIVATE_IDENT):
		isPrivate = true
		tok := p.cur
		pn := &ast.PrivateName{Name: p.cur.Literal[1:]}
		setToken(pn, tok)
		key = pn
		p.next()
	case p.curIs(lexer.LBRACKET):
		computed = true
		p.next()
		key = p.parseAssignment()
		p.expect(lexer.RBRACKET)
	default:
		key = p.parsePropertyKey()
	}

	if p.curIs(lexer.LPAREN) {
		fn := p.parseFunctionRest(isAsync, isGen)
		if id, ok := key.(*ast.Identifier); ok && id.Name == "constructor" && !isStatic && !isPrivate {
			kind = "constructor"
		}
		return ast.ClassMember{Key: key, Computed: computed, IsStatic: isStatic, IsPrivate: isPrivate, Kind: kind, Value: fn}
	}

	// field, possibly with an initializer
	var init ast.Expression
	if p.curIs(lexer.ASSIGN) {
		p.next()
		init = p.parseAssignment()
	}
	p.consumeSemicolon()
	return ast.ClassMember{Key: key, Computed: computed, IsStatic: isStatic, IsPrivate: isPrivate, Kind: "field", FieldInit: init}
}

func (p *Parser) peekIsClassMemberTerminator() bool {
	return p.peekIs(lexer.LPAREN) || p.peekIs(lexer.ASSIGN) || p.peekIs(lexer.SEMICOLON) || p.peekIs(lexer.RBRACE)
}
