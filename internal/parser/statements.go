package parser

import (
	"github.com/esgo-lang/esgo/internal/ast"
	"github.com/esgo-lang/esgo/internal/lexer"
)

func (p *Parser) parseStatement() ast.Statement {
	switch p.cur.Type {
	case lexer.LBRACE:
		return p.parseBlockStatement()
	case lexer.VAR, lexer.LET, lexer.CONST:
		s := p.parseVarDeclStatement()
		p.consumeSemicolon()
		return s
	case lexer.IF:
		return p.parseIfStatement()
	case lexer.WHILE:
		return p.parseWhileStatement()
	case lexer.DO:
		return p.parseDoWhileStatement()
	case lexer.FOR:
		return p.parseForStatement()
	case lexer.BREAK:
		return p.parseBreakStatement()
	case lexer.CONTINUE:
		return p.parseContinueStatement()
	case lexer.RETURN:
		return p.parseReturnStatement()
	case lexer.THROW:
		return p.parseThrowStatement()
	case lexer.TRY:
		return p.parseTryStatement()
	case lexer.SWITCH:
		return p.parseSwitchStatement()
	case lexer.FUNCTION:
		return p.parseFunctionDeclaration(false)
	case lexer.ASYNC:
		if p.peekIs(lexer.FUNCTION) && !p.peek.NewlineBefore {
			p.next()
			return p.parseFunctionDeclaration(true)
		}
		return p.parseExpressionStatement()
	case lexer.CLASS:
		return p.parseClassDeclaration()
	case lexer.SEMICOLON:
		tok := p.cur
		p.next()
		empty := &ast.EmptyStatement{}
		setToken(empty, tok)
		return empty
	case lexer.IMPORT:
		if p.peekIs(lexer.LPAREN) || p.peekIs(lexer.DOT) {
			return p.parseExpressionStatement()
		}
		return p.parseImportDeclaration()
	case lexer.EXPORT:
		return p.parseExportDeclaration()
	case lexer.IDENT:
		if p.peekIs(lexer.COLON) {
			return p.parseLabeledStatement()
		}
		return p.parseExpressionStatement()
	default:
		return p.parseExpressionStatement()
	}
}

func (p *Parser) parseBlockStatement() *ast.BlockStatement {
	tok := p.cur
	p.expect(lexer.LBRACE)
	block := &ast.BlockStatement{}
	setToken(block, tok)
	for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			block.Body = append(block.Body, stmt)
		}
	}
	p.expect(lexer.RBRACE)
	return block
}

func (p *Parser) parseVarDeclStatement() *ast.VarDeclStatement {
	tok := p.cur
	kind := p.cur.Literal
	p.next() // consume var/let/const

	decl := &ast.VarDeclStatement{Kind: kind}
	setToken(decl, tok)

	for {
		target := p.parseBindingTarget()
		var init ast.Expression
		if p.curIs(lexer.ASSIGN) {
			p.next()
			init = p.parseAssignment()
		}
		decl.Decls = append(decl.Decls, ast.VarDeclarator{Target: target, Init: init})
		if !p.curIs(lexer.COMMA) {
			break
		}
		p.next()
	}
	return decl
}

// parseBindingTarget parses an Identifier or a destructuring pattern used
// as a `var`/`let`/`const`/parameter binding target.
func (p *Parser) parseBindingTarget() ast.Pattern {
	switch p.cur.Type {
	case lexer.LBRACKET:
		return p.parseArrayPattern()
	case lexer.LBRACE:
		return p.parseObjectPattern()
	default:
		return p.parseIdentifierPattern()
	}
}

func (p *Parser) parseIdentifierPattern() *ast.Identifier {
	tok := p.cur
	name := p.cur.Literal
	if !p.curIs(lexer.IDENT) && !lexer.IsContextual(p.cur.Type) {
		p.errorf("expected identifier, got %s", p.cur.Type)
	}
	p.next()
	id := &ast.Identifier{Name: name}
	setToken(id, tok)
	return id
}

func (p *Parser) parseArrayPattern() *ast.ArrayPattern {
	tok := p.cur
	p.expect(lexer.LBRACKET)
	pat := &ast.ArrayPattern{}
	setToken(pat, tok)
	for !p.curIs(lexer.RBRACKET) && !p.curIs(lexer.EOF) {
		if p.curIs(lexer.COMMA) {
			pat.Elements = append(pat.Elements, nil)
			p.next()
			continue
		}
		if p.curIs(lexer.DOTDOTDOT) {
			restTok := p.cur
			p.next()
			target := p.parseBindingTarget()
			rest := &ast.RestElement{Argument: target}
			setToken(rest, restTok)
			pat.Elements = append(pat.Elements, rest)
		} else {
			el := p.parseBindingTarget()
			if p.curIs(lexer.ASSIGN) {
				p.next()
				def := p.parseAssignment()
				ap := &ast.AssignmentPattern{Target: el, Default: def}
				setPos(ap, el.Pos())
				pat.Elements = append(pat.Elements, ap)
			} else {
				pat.Elements = append(pat.Elements, el)
			}
		}
		if p.curIs(lexer.COMMA) {
			p.next()
		}
	}
	p.expect(lexer.RBRACKET)
	return pat
}

func (p *Parser) parseObjectPattern() *ast.ObjectPattern {
	tok := p.cur
	p.expect(lexer.LBRACE)
	pat := &ast.ObjectPattern{}
	setToken(pat, tok)
	for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
		if p.curIs(lexer.DOTDOTDOT) {
			p.next()
			target := p.parseBindingTarget()
			pat.Properties = append(pat.Properties, ast.ObjectPatternProperty{Rest: true, Value: target})
		} else {
			computed := false
			var key ast.Expression
			if p.curIs(lexer.LBRACKET) {
				computed = true
				p.next()
				key = p.parseAssignment()
				p.expect(lexer.RBRACKET)
			} else {
				keyTok := p.cur
				key = &ast.Identifier{Name: p.cur.Literal}
				setToken(key.(tokened), keyTok)
				p.next()
			}
			var value ast.Pattern
			shorthand := true
			if p.curIs(lexer.COLON) {
				shorthand = false
				p.next()
				value = p.parseBindingTarget()
			} else {
				if id, ok := key.(*ast.Identifier); ok {
					value = id
				}
			}
			if p.curIs(lexer.ASSIGN) {
				p.next()
				def := p.parseAssignment()
				value = &ast.AssignmentPattern{Target: value, Default: def}
			}
			pat.Properties = append(pat.Properties, ast.ObjectPatternProperty{
				Key: key, Value: value, Computed: computed, Shorthand: shorthand,
			})
		}
		if p.curIs(lexer.COMMA) {
			p.next()
		}
	}
	p.expect(lexer.RBRACE)
	return pat
}

func (p *Parser) parseIfStatement() *ast.IfStatement {
	tok := p.cur
	p.next()
	p.expect(lexer.LPAREN)
	test := p.parseExpression()
	p.expect(lexer.RPAREN)
	cons := p.parseStatement()
	stmt := &ast.IfStatement{Test: test, Consequent: cons}
	setToken(stmt, tok)
	if p.curIs(lexer.ELSE) {
		p.next()
		stmt.Alternate = p.parseStatement()
	}
	return stmt
}

func (p *Parser) parseWhileStatement() *ast.WhileStatement {
	tok := p.cur
	p.next()
	p.expect(lexer.LPAREN)
	test := p.parseExpression()
	p.expect(lexer.RPAREN)
	p.inLoop++
	body := p.parseStatement()
	p.inLoop--
	stmt := &ast.WhileStatement{Test: test, Body: body}
	setToken(stmt, tok)
	return stmt
}

func (p *Parser) parseDoWhileStatement() *ast.DoWhileStatement {
	tok := p.cur
	p.next()
	p.inLoop++
	body := p.parseStatement()
	p.inLoop--
	p.expect(lexer.WHILE)
	p.expect(lexer.LPAREN)
	test := p.parseExpression()
	p.expect(lexer.RPAREN)
	if p.curIs(lexer.SEMICOLON) {
		p.next()
	}
	stmt := &ast.DoWhileStatement{Body: body, Test: test}
	setToken(stmt, tok)
	return stmt
}

// parseForStatement handles all four for-loop shapes: classic C-style,
// for-in, for-of, and for-await-of (spec.md §4.4.5).
func (p *Parser) parseForStatement() ast.Statement {
	tok := p.cur
	p.next()
	isAwait := false
	if p.curIs(lexer.AWAIT) {
		isAwait = true
		p.next()
	}
	p.expect(lexer.LPAREN)

	var initNode ast.Node
	if p.curIs(lexer.VAR) || p.curIs(lexer.LET) || p.curIs(lexer.CONST) {
		declTok := p.cur
		kind := p.cur.Literal
		p.next()
		target := p.parseBindingTarget()
		decl := &ast.VarDeclStatement{Kind: kind}
		setToken(decl, declTok)

		if p.curIs(lexer.IN) {
			p.next()
			decl.Decls = []ast.VarDeclarator{{Target: target}}
			right := p.parseExpression()
			p.expect(lexer.RPAREN)
			p.inLoop++
			body := p.parseStatement()
			p.inLoop--
			stmt := &ast.ForInStatement{Left: decl, Right: right, Body: body}
			setToken(stmt, tok)
			return stmt
		}
		if p.curIs(lexer.OF) {
			p.next()
			decl.Decls = []ast.VarDeclarator{{Target: target}}
			right := p.parseAssignment()
			p.expect(lexer.RPAREN)
			p.inLoop++
			body := p.parseStatement()
			p.inLoop--
			stmt := &ast.ForOfStatement{Left: decl, Right: right, Body: body, IsAwait: isAwait}
			setToken(stmt, tok)
			return stmt
		}

		var init ast.Expression
		if p.curIs(lexer.ASSIGN) {
			p.next()
			init = p.parseAssignment()
		}
		decl.Decls = []ast.VarDeclarator{{Target: target, Init: init}}
		for p.curIs(lexer.COMMA) {
			p.next()
			t2 := p.parseBindingTarget()
			var i2 ast.Expression
			if p.curIs(lexer.ASSIGN) {
				p.next()
				i2 = p.parseAssignment()
			}
			decl.Decls = append(decl.Decls, ast.VarDeclarator{Target: t2, Init: i2})
		}
		initNode = decl
	} else if !p.curIs(lexer.SEMICOLON) {
		expr := p.parseExpression()
		if p.curIs(lexer.IN) {
			p.next()
			right := p.parseExpression()
			p.expect(lexer.RPAREN)
			p.inLoop++
			body := p.parseStatement()
			p.inLoop--
			stmt := &ast.ForInStatement{Left: p.exprToPattern(expr), Right: right, Body: body}
			setToken(stmt, tok)
			return stmt
		}
		if p.curIs(lexer.OF) {
			p.next()
			right := p.parseAssignment()
			p.expect(lexer.RPAREN)
			p.inLoop++
			body := p.parseStatement()
			p.inLoop--
			stmt := &ast.ForOfStatement{Left: p.exprToPattern(expr), Right: right, Body: body, IsAwait: isAwait}
			setToken(stmt, tok)
			return stmt
		}
		initNode = &ast.ExpressionStatement{Expression: expr}
	}

	p.expect(lexer.SEMICOLON)
	var test ast.Expression
	if !p.curIs(lexer.SEMICOLON) {
		test = p.parseExpression()
	}
	p.expect(lexer.SEMICOLON)
	var update ast.Expression
	if !p.curIs(lexer.RPAREN) {
		update = p.parseExpression()
	}
	p.expect(lexer.RPAREN)
	p.inLoop++
	body := p.parseStatement()
	p.inLoop--
	stmt := &ast.ForStatement{Init: initNode, Test: test, Update: update, Body: body}
	setToken(stmt, tok)
	return stmt
}

func (p *Parser) parseBreakStatement() *ast.BreakStatement {
	tok := p.cur
	p.next()
	stmt := &ast.BreakStatement{}
	setToken(stmt, tok)
	if p.curIs(lexer.IDENT) && !p.cur.NewlineBefore {
		stmt.Label = p.parseIdentifierPattern()
	}
	p.consumeSemicolon()
	return stmt
}

func (p *Parser) parseContinueStatement() *ast.ContinueStatement {
	tok := p.cur
	p.next()
	stmt := &ast.ContinueStatement{}
	setToken(stmt, tok)
	if p.curIs(lexer.IDENT) && !p.cur.NewlineBefore {
		stmt.Label = p.parseIdentifierPattern()
	}
	p.consumeSemicolon()
	return stmt
}

func (p *Parser) parseReturnStatement() *ast.ReturnStatement {
	tok := p.cur
	p.next()
	stmt := &ast.ReturnStatement{}
	setToken(stmt, tok)
	if !p.curIs(lexer.SEMICOLON) && !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) && !p.cur.NewlineBefore {
		stmt.Argument = p.parseExpression()
	}
	p.consumeSemicolon()
	return stmt
}

func (p *Parser) parseThrowStatement() *ast.ThrowStatement {
	tok := p.cur
	p.next()
	if p.cur.NewlineBefore {
		p.errorf("illegal newline after throw")
	}
	arg := p.parseExpression()
	stmt := &ast.ThrowStatement{Argument: arg}
	setToken(stmt, tok)
	p.consumeSemicolon()
	return stmt
}

func (p *Parser) parseTryStatement() *ast.TryStatement {
	tok := p.cur
	p.next()
	block := p.parseBlockStatement()
	stmt := &ast.TryStatement{Block: block}
	setToken(stmt, tok)

	if p.curIs(lexer.CATCH) {
		p.next()
		handler := &ast.CatchClause{}
		if p.curIs(lexer.LPAREN) {
			p.next()
			handler.Param = p.parseBindingTarget()
			p.expect(lexer.RPAREN)
		}
		handler.Body = p.parseBlockStatement()
		stmt.Handler = handler
	}
	if p.curIs(lexer.FINALLY) {
		p.next()
		stmt.Finally = p.parseBlockStatement()
	}
	if stmt.Handler == nil && stmt.Finally == nil {
		p.errorf("missing catch or finally after try")
	}
	return stmt
}

func (p *Parser) parseSwitchStatement() *ast.SwitchStatement {
	tok := p.cur
	p.next()
	p.expect(lexer.LPAREN)
	disc := p.parseExpression()
	p.expect(lexer.RPAREN)
	p.expect(lexer.LBRACE)
	stmt := &ast.SwitchStatement{Discriminant: disc}
	setToken(stmt, tok)
	p.inSwitch++
	for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
		var c ast.SwitchCase
		if p.curIs(lexer.CASE) {
			p.next()
			c.Test = p.parseExpression()
		} else {
			p.expect(lexer.DEFAULT)
		}
		p.expect(lexer.COLON)
		for !p.curIs(lexer.CASE) && !p.curIs(lexer.DEFAULT) && !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
			c.Consequent = append(c.Consequent, p.parseStatement())
		}
		stmt.Cases = append(stmt.Cases, c)
	}
	p.inSwitch--
	p.expect(lexer.RBRACE)
	return stmt
}

func (p *Parser) parseLabeledStatement() *ast.LabeledStatement {
	tok := p.cur
	label := p.parseIdentifierPattern()
	p.expect(lexer.COLON)
	body := p.parseStatement()
	stmt := &ast.LabeledStatement{Label: label, Body: body}
	setToken(stmt, tok)
	return stmt
}

func (p *Parser) parseExpressionStatement() *ast.ExpressionStatement {
	tok := p.cur
	expr := p.parseExpression()
	stmt := &ast.ExpressionStatement{Expression: expr}
	setToken(stmt, tok)
	p.consumeSemicolon()
	return stmt
}

func (p *Parser) parseImportDeclaration() *ast.ImportDeclaration {
	tok := p.cur
	p.next()
	decl := &ast.ImportDeclaration{}
	setToken(decl, tok)

	if p.curIs(lexer.STRING) {
		decl.Source = p.cur.Literal
		p.next()
		p.consumeSemicolon()
		return decl
	}

	if p.curIs(lexer.IDENT) {
		local := p.parseIdentifierPattern()
		decl.Specifiers = append(decl.Specifiers, ast.ImportSpecifier{Local: local, Default: true})
		if p.curIs(lexer.COMMA) {
			p.next()
		}
	}
	if p.curIs(lexer.STAR) {
		p.next()
		p.expect(lexer.AS)
		local := p.parseIdentifierPattern()
		decl.Specifiers = append(decl.Specifiers, ast.ImportSpecifier{Local: local, Namespace: true})
	} else if p.curIs(lexer.LBRACE) {
		p.next()
		for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
			imported := p.parseIdentifierPattern()
			local := imported
			if p.curIs(lexer.AS) {
				p.next()
				local = p.parseIdentifierPattern()
			}
			decl.Specifiers = append(decl.Specifiers, ast.ImportSpecifier{Imported: imported, Local: local})
			if p.curIs(lexer.COMMA) {
				p.next()
			}
		}
		p.expect(lexer.RBRACE)
	}
	p.expect(lexer.FROM)
	decl.Source = p.cur.Literal
	p.expect(lexer.STRING)
	p.consumeSemicolon()
	return decl
}

func (p *Parser) parseExportDeclaration() ast.Statement {
	tok := p.cur
	p.next()

	if p.curIs(lexer.DEFAULT) {
		p.next()
		decl := &ast.ExportDefaultDeclaration{}
		setToken(decl, tok)
		switch p.cur.Type {
		case lexer.FUNCTION:
			decl.Declaration = p.parseFunctionDeclaration(false)
		case lexer.CLASS:
			decl.Declaration = p.parseClassDeclaration()
		default:
			decl.Declaration = p.parseAssignment()
			p.consumeSemicolon()
		}
		return decl
	}

	if p.curIs(lexer.STAR) {
		p.next()
		allDecl := &ast.ExportAllDeclaration{}
		setToken(allDecl, tok)
		if p.curIs(lexer.AS) {
			p.next()
			allDecl.Exported = p.parseIdentifierPattern()
		}
		p.expect(lexer.FROM)
		allDecl.Source = p.cur.Literal
		p.expect(lexer.STRING)
		p.consumeSemicolon()
		return allDecl
	}

	if p.curIs(lexer.LBRACE) {
		p.next()
		decl := &ast.ExportNamedDeclaration{}
		setToken(decl, tok)
		for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
			local := p.parseIdentifierPattern()
			exported := local
			if p.curIs(lexer.AS) {
				p.next()
				exported = p.parseIdentifierPattern()
			}
			decl.Specifiers = append(decl.Specifiers, ast.ExportSpecifier{Local: local, Exported: exported})
			if p.curIs(lexer.COMMA) {
				p.next()
			}
		}
		p.expect(lexer.RBRACE)
		if p.curIs(lexer.FROM) {
			p.next()
			decl.Source = p.cur.Literal
			p.expect(lexer.STRING)
		}
		p.consumeSemicolon()
		return decl
	}

	decl := &ast.ExportNamedDeclaration{}
	setToken(decl, tok)
	switch p.cur.Type {
	case lexer.FUNCTION:
		decl.Declaration = p.parseFunctionDeclaration(false)
	case lexer.ASYNC:
		p.next()
		decl.Declaration = p.parseFunctionDeclaration(true)
	case lexer.CLASS:
		decl.Declaration = p.parseClassDeclaration()
	case lexer.VAR, lexer.LET, lexer.CONST:
		d := p.parseVarDeclStatement()
		p.consumeSemicolon()
		decl.Declaration = d
	default:
		p.errorf("unexpected token after export: %s", p.cur.Type)
	}
	return decl
}

func (p *Parser) parseFunctionDeclaration(isAsync bool) *ast.FunctionLiteral {
	fn := p.parseFunctionLiteral(isAsync, true)
	return fn
}
