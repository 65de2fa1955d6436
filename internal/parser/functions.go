package parser

import (
	"github.com/esgo-lang/esgo/internal/ast"
	"github.com/esgo-lang/esgo/internal/lexer"
)

// parseFunctionLiteral parses `function [*] [name] (params) { body }`.
// requireName forces a name (function declarations); function
// expressions may be anonymous.
func (p *Parser) parseFunctionLiteral(isAsync, requireName bool) *ast.FunctionLiteral {
	tok := p.cur
	p.expect(lexer.FUNCTION)
	fn := &ast.FunctionLiteral{IsAsync: isAsync}
	setToken(fn, tok)
	if p.curIs(lexer.STAR) {
		fn.IsGenerator = true
		p.next()
	}
	if p.curIs(lexer.IDENT) || (lexer.IsContextual(p.cur.Type) && !p.curIs(lexer.LPAREN)) {
		fn.Name = p.parseIdentifierPattern()
	} else if requireName {
		p.errorf("function declaration requires a name")
	}
	p.finishFunctionRest(fn)
	return fn
}

// parseFunctionExpression parses a function expression, which may be
// anonymous, for use from parsePrimary.
func (p *Parser) parseFunctionExpression(isAsync bool) *ast.FunctionLiteral {
	return p.parseFunctionLiteral(isAsync, false)
}

// parseFunctionRest parses `(params) { body }` for a method or function
// expression whose leading keyword/name has already been consumed,
// returning a FunctionLiteral with no Name.
func (p *Parser) parseFunctionRest(isAsync, isGenerator bool) *ast.FunctionLiteral {
	tok := p.cur
	fn := &ast.FunctionLiteral{IsAsync: isAsync, IsGenerator: isGenerator}
	setToken(fn, tok)
	p.finishFunctionRest(fn)
	return fn
}

func (p *Parser) finishFunctionRest(fn *ast.FunctionLiteral) {
	outerGen, outerAsync, outerFn := p.inGenerator, p.inAsync, p.inFunction
	p.inGenerator, p.inAsync, p.inFunction = fn.IsGenerator, fn.IsAsync, true

	fn.Params = p.parseParams()
	fn.Body = p.parseBlockStatement()

	p.inGenerator, p.inAsync, p.inFunction = outerGen, outerAsync, outerFn
}

func (p *Parser) parseParams() []ast.Pattern {
	p.expect(lexer.LPAREN)
	var params []ast.Pattern
	for !p.curIs(lexer.RPAREN) && !p.curIs(lexer.EOF) {
		if p.curIs(lexer.DOTDOTDOT) {
			tok := p.cur
			p.next()
			target := p.parseBindingTarget()
			rest := &ast.RestElement{Argument: target}
			setToken(rest, tok)
			params = append(params, rest)
		} else {
			target := p.parseBindingTarget()
			if p.curIs(lexer.ASSIGN) {
				p.next()
				def := p.parseAssignment()
				ap := &ast.AssignmentPattern{Target: target, Default: def}
				setPos(ap, target.Pos())
				params = append(params, ap)
			} else {
				params = append(params, target)
			}
		}
		if p.curIs(lexer.COMMA) {
			p.next()
		}
	}
	p.expect(lexer.RPAREN)
	return params
}

// isArrowFunctionAhead reports whether the current position begins an
// arrow function: either a single identifier followed directly by `=>`,
// or a parenthesized parameter list followed by `=>` (spec.md §4.2 —
// arrows require unbounded lookahead past a balanced paren group, which
// this performs via a save/restore of lexer+parser state).
func (p *Parser) isArrowFunctionAhead() bool {
	if (p.curIs(lexer.IDENT) || lexer.IsContextual(p.cur.Type)) && p.peekIs(lexer.ARROW) && !p.peek.NewlineBefore {
		return true
	}
	if !p.curIs(lexer.LPAREN) {
		return false
	}
	return p.scanPastParensFindsArrow()
}

func (p *Parser) isAsyncArrowAhead() bool {
	// called with p.cur == ASYNC; peek determines the shape
	if (p.peekIs(lexer.IDENT) || lexer.IsContextual(p.peek.Type)) {
		save := p.snapshot()
		p.next() // consume async
		ok := p.peekIs(lexer.ARROW) && !p.peek.NewlineBefore
		p.restore(save)
		return ok
	}
	if !p.peekIs(lexer.LPAREN) {
		return false
	}
	save := p.snapshot()
	p.next() // consume async, cur is now LPAREN
	ok := p.scanPastParensFindsArrow()
	p.restore(save)
	return ok
}

// snapshot/restore clone the lexer and parser cursor state to allow
// unbounded lookahead without committing to a parse path.
type parserSnapshot struct {
	lexer *lexer.Lexer
	cur   lexer.Token
	peek  lexer.Token
}

func (p *Parser) snapshot() parserSnapshot {
	lclone := *p.l
	return parserSnapshot{lexer: &lclone, cur: p.cur, peek: p.peek}
}

func (p *Parser) restore(s parserSnapshot) {
	p.l = s.lexer
	p.cur = s.cur
	p.peek = s.peek
}

func (p *Parser) scanPastParensFindsArrow() bool {
	save := p.snapshot()
	defer p.restore(save)

	depth := 0
	for {
		switch p.cur.Type {
		case lexer.LPAREN:
			depth++
		case lexer.RPAREN:
			depth--
			if depth == 0 {
				p.next()
				return p.curIs(lexer.ARROW) && !p.cur.NewlineBefore
			}
		case lexer.EOF:
			return false
		}
		p.next()
	}
}

// parseArrowFunction parses an arrow function, whose params were either a
// bare identifier or a parenthesized list, and whose body is either a
// concise expression or a braced block (spec.md §4.2).
func (p *Parser) parseArrowFunction(isAsync bool) *ast.FunctionLiteral {
	tok := p.cur
	fn := &ast.FunctionLiteral{IsArrow: true, IsAsync: isAsync}
	setToken(fn, tok)

	outerAsync, outerFn := p.inAsync, p.inFunction
	p.inAsync, p.inFunction = isAsync, true

	if p.curIs(lexer.LPAREN) {
		fn.Params = p.parseParams()
	} else {
		fn.Params = []ast.Pattern{p.parseIdentifierPattern()}
	}
	p.expect(lexer.ARROW)
	if p.curIs(lexer.LBRACE) {
		fn.Body = p.parseBlockStatement()
	} else {
		fn.ArrowBody = p.parseAssignment()
	}

	p.inAsync, p.inFunction = outerAsync, outerFn
	return fn
}
