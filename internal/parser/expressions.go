package parser

import (
	"strconv"
	"strings"

	"github.com/esgo-lang/esgo/internal/ast"
	"github.com/esgo-lang/esgo/internal/lexer"
)

// parseExpression parses a full expression including the comma operator.
func (p *Parser) parseExpression() ast.Expression {
	first := p.parseAssignment()
	if !p.curIs(lexer.COMMA) {
		return first
	}
	seq := &ast.SequenceExpression{Expressions: []ast.Expression{first}}
	setPos(seq, first.Pos())
	for p.curIs(lexer.COMMA) {
		p.next()
		seq.Expressions = append(seq.Expressions, p.parseAssignment())
	}
	return seq
}

// parseAssignment parses an assignment expression, which is also the
// grammar's entry point for conditional/binary/unary/primary expressions
// (spec.md §4.2).
func (p *Parser) parseAssignment() ast.Expression {
	if p.isArrowFunctionAhead() {
		return p.parseArrowFunction(false)
	}
	if p.curIs(lexer.ASYNC) && !p.peek.NewlineBefore && p.isAsyncArrowAhead() {
		p.next()
		return p.parseArrowFunction(true)
	}
	if p.curIs(lexer.YIELD) && p.inGenerator {
		return p.parseYieldExpression()
	}

	left := p.parseConditional()

	if op, ok := assignOps[p.cur.Type]; ok {
		tok := p.cur
		p.next()
		right := p.parseAssignment()
		target := left
		if op == "=" {
			if _, isArr := left.(*ast.ArrayLiteral); isArr {
				target = p.exprToPattern(left).(ast.Expression)
			} else if _, isObj := left.(*ast.ObjectLiteral); isObj {
				target = p.exprToPattern(left).(ast.Expression)
			}
		}
		assign := &ast.AssignmentExpression{Operator: op, Target: target, Value: right}
		setToken(assign, tok)
		return assign
	}
	return left
}

func (p *Parser) parseYieldExpression() ast.Expression {
	tok := p.cur
	p.next()
	y := &ast.YieldExpression{}
	setToken(y, tok)
	if p.curIs(lexer.STAR) {
		y.Delegate = true
		p.next()
	}
	if !p.curIs(lexer.SEMICOLON) && !p.curIs(lexer.RPAREN) && !p.curIs(lexer.RBRACE) &&
		!p.curIs(lexer.RBRACKET) && !p.curIs(lexer.COMMA) && !p.curIs(lexer.COLON) &&
		!p.curIs(lexer.EOF) && !p.cur.NewlineBefore {
		y.Argument = p.parseAssignment()
	}
	return y
}

func (p *Parser) parseConditional() ast.Expression {
	test := p.parseNullish()
	if !p.curIs(lexer.QUESTION) {
		return test
	}
	tok := p.cur
	p.next()
	cons := p.parseAssignment()
	p.expect(lexer.COLON)
	alt := p.parseAssignment()
	cond := &ast.ConditionalExpression{Test: test, Consequent: cons, Alternate: alt}
	setToken(cond, tok)
	return cond
}

// parseNullish implements `??`'s precedence, which may not be mixed with
// unparenthesized `&&`/`||` (spec.md §4.2) — enforced loosely here by
// relying on the binaryPrec table to keep `??` at its own level rather
// than chaining with `&&`/`||` nud/led.
func (p *Parser) parseNullish() ast.Expression {
	return p.parseBinary(precLowest)
}

// parseBinary implements precedence-climbing for all binary/logical
// operators, with `**` treated as right-associative and requiring a
// parenthesized unary on its left (spec.md §4.2).
func (p *Parser) parseBinary(minPrec int) ast.Expression {
	left := p.parseUnary()

	for {
		prec, ok := binaryPrec[p.cur.Type]
		if !ok || prec <= minPrec {
			break
		}
		tok := p.cur
		opType := p.cur.Type
		op := tokenOpLiteral(opType)
		p.next()

		var right ast.Expression
		if opType == lexer.STAR_STAR {
			right = p.parseBinary(prec - 1) // right-associative
		} else {
			right = p.parseBinary(prec)
		}

		if logicalOps[opType] {
			node := &ast.LogicalExpression{Left: left, Operator: op, Right: right}
			setToken(node, tok)
			left = node
		} else {
			node := &ast.BinaryExpression{Left: left, Operator: op, Right: right}
			setToken(node, tok)
			left = node
		}
	}
	return left
}

func tokenOpLiteral(t lexer.TokenType) string {
	switch t {
	case lexer.IN:
		return "in"
	case lexer.INSTANCEOF:
		return "instanceof"
	default:
		return t.String()
	}
}

var unaryOps = map[lexer.TokenType]bool{
	lexer.BANG: true, lexer.TILDE: true, lexer.PLUS: true, lexer.MINUS: true,
	lexer.TYPEOF: true, lexer.VOID: true, lexer.DELETE: true,
}

func (p *Parser) parseUnary() ast.Expression {
	if p.curIs(lexer.AWAIT) && p.inAsync {
		tok := p.cur
		p.next()
		arg := p.parseUnary()
		a := &ast.AwaitExpression{Argument: arg}
		setToken(a, tok)
		return a
	}
	if unaryOps[p.cur.Type] {
		tok := p.cur
		op := tokenOpLiteral(p.cur.Type)
		if p.cur.Type == lexer.TYPEOF {
			op = "typeof"
		} else if p.cur.Type == lexer.VOID {
			op = "void"
		} else if p.cur.Type == lexer.DELETE {
			op = "delete"
		}
		p.next()
		arg := p.parseUnary()
		if p.curIs(lexer.STAR_STAR) {
			p.errorf("unparenthesized unary expression can't appear on the left-hand side of '**'")
		}
		u := &ast.UnaryExpression{Operator: op, Argument: arg}
		setToken(u, tok)
		return u
	}
	if p.curIs(lexer.INC) || p.curIs(lexer.DEC) {
		tok := p.cur
		op := tokenOpLiteral(p.cur.Type)
		p.next()
		arg := p.parseUnary()
		u := &ast.UpdateExpression{Operator: op, Argument: arg, Prefix: true}
		setToken(u, tok)
		return u
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() ast.Expression {
	expr := p.parseCallOrMember(p.parsePrimary())
	if (p.curIs(lexer.INC) || p.curIs(lexer.DEC)) && !p.cur.NewlineBefore {
		tok := p.cur
		op := tokenOpLiteral(p.cur.Type)
		p.next()
		u := &ast.UpdateExpression{Operator: op, Argument: expr, Prefix: false}
		setToken(u, tok)
		return u
	}
	return expr
}

// parseCallOrMember parses the postfix chain of member accesses, calls,
// and tagged templates following a primary expression, wrapping the
// whole chain in a ChainExpression when any link used `?.` (spec.md
// §4.2).
func (p *Parser) parseCallOrMember(expr ast.Expression) ast.Expression {
	sawOptional := false
	for {
		switch {
		case p.curIs(lexer.DOT):
			tok := p.cur
			p.next()
			propTok := p.cur
			var prop ast.Expression
			if p.curIs(lexer.PRIVATE_IDENT) {
				prop = &ast.PrivateName{Name: p.cur.Literal[1:]}
			} else {
				prop = &ast.Identifier{Name: p.cur.Literal}
			}
			p.next()
			setToken(prop.(tokened), propTok)
			m := &ast.MemberExpression{Object: expr, Property: prop}
			setToken(m, tok)
			expr = m
		case p.curIs(lexer.QUESTION_DOT):
			sawOptional = true
			tok := p.cur
			p.next()
			if p.curIs(lexer.LPAREN) {
				args := p.parseArguments()
				c := &ast.CallExpression{Callee: expr, Arguments: args, Optional: true}
				setToken(c, tok)
				expr = c
				continue
			}
			if p.curIs(lexer.LBRACKET) {
				p.next()
				prop := p.parseExpression()
				p.expect(lexer.RBRACKET)
				m := &ast.MemberExpression{Object: expr, Property: prop, Computed: true, Optional: true}
				setToken(m, tok)
				expr = m
				continue
			}
			propTok := p.cur
			var prop ast.Expression
			if p.curIs(lexer.PRIVATE_IDENT) {
				prop = &ast.PrivateName{Name: p.cur.Literal[1:]}
			} else {
				prop = &ast.Identifier{Name: p.cur.Literal}
			}
			p.next()
			setToken(prop.(tokened), propTok)
			m := &ast.MemberExpression{Object: expr, Property: prop, Optional: true}
			setToken(m, tok)
			expr = m
		case p.curIs(lexer.LBRACKET):
			tok := p.cur
			p.next()
			prop := p.parseExpression()
			p.expect(lexer.RBRACKET)
			m := &ast.MemberExpression{Object: expr, Property: prop, Computed: true}
			setToken(m, tok)
			expr = m
		case p.curIs(lexer.LPAREN):
			tok := p.cur
			args := p.parseArguments()
			c := &ast.CallExpression{Callee: expr, Arguments: args}
			setToken(c, tok)
			expr = c
		case p.curIs(lexer.NO_SUBSTITUTION_TEMPLATE) || p.curIs(lexer.TEMPLATE_HEAD):
			tpl := p.parseTemplateLiteral()
			tpl.Tag = expr
			expr = tpl
		default:
			if sawOptional {
				chain := &ast.ChainExpression{Expression: expr}
				setPos(chain, expr.Pos())
				return chain
			}
			return expr
		}
	}
}

func (p *Parser) parseArguments() []ast.Expression {
	p.expect(lexer.LPAREN)
	var args []ast.Expression
	for !p.curIs(lexer.RPAREN) && !p.curIs(lexer.EOF) {
		if p.curIs(lexer.DOTDOTDOT) {
			tok := p.cur
			p.next()
			arg := p.parseAssignment()
			s := &ast.SpreadElement{Argument: arg}
			setToken(s, tok)
			args = append(args, s)
		} else {
			args = append(args, p.parseAssignment())
		}
		if p.curIs(lexer.COMMA) {
			p.next()
		}
	}
	p.expect(lexer.RPAREN)
	return args
}

func (p *Parser) parsePrimary() ast.Expression {
	tok := p.cur
	switch p.cur.Type {
	case lexer.NUMBER:
		v, _ := strconv.ParseFloat(p.cur.Literal, 64)
		if strings.HasPrefix(p.cur.Literal, "0x") || strings.HasPrefix(p.cur.Literal, "0X") {
			iv, _ := strconv.ParseInt(p.cur.Literal[2:], 16, 64)
			v = float64(iv)
		} else if strings.HasPrefix(p.cur.Literal, "0o") || strings.HasPrefix(p.cur.Literal, "0O") {
			iv, _ := strconv.ParseInt(p.cur.Literal[2:], 8, 64)
			v = float64(iv)
		} else if strings.HasPrefix(p.cur.Literal, "0b") || strings.HasPrefix(p.cur.Literal, "0B") {
			iv, _ := strconv.ParseInt(p.cur.Literal[2:], 2, 64)
			v = float64(iv)
		}
		n := &ast.NumberLiteral{Value: v, Raw: p.cur.Literal}
		setToken(n, tok)
		p.next()
		return n
	case lexer.BIGINT:
		n := &ast.BigIntLiteral{Raw: p.cur.Literal}
		setToken(n, tok)
		p.next()
		return n
	case lexer.STRING:
		s := &ast.StringLiteral{Value: p.cur.Literal}
		setToken(s, tok)
		p.next()
		return s
	case lexer.NO_SUBSTITUTION_TEMPLATE, lexer.TEMPLATE_HEAD:
		return p.parseTemplateLiteral()
	case lexer.TRUE, lexer.FALSE:
		b := &ast.BooleanLiteral{Value: p.cur.Type == lexer.TRUE}
		setToken(b, tok)
		p.next()
		return b
	case lexer.NULL:
		n := &ast.NullLiteral{}
		setToken(n, tok)
		p.next()
		return n
	case lexer.UNDEFINED:
		u := &ast.UndefinedLiteral{}
		setToken(u, tok)
		p.next()
		return u
	case lexer.THIS:
		t := &ast.ThisExpression{}
		setToken(t, tok)
		p.next()
		return t
	case lexer.SUPER:
		s := &ast.SuperExpression{}
		setToken(s, tok)
		p.next()
		return s
	case lexer.REGEX:
		return p.parseRegexLiteral()
	case lexer.IDENT:
		id := &ast.Identifier{Name: p.cur.Literal}
		setToken(id, tok)
		p.next()
		return id
	case lexer.GET, lexer.SET, lexer.OF, lexer.STATIC, lexer.AS, lexer.FROM, lexer.AWAIT, lexer.YIELD:
		// contextual keywords used as plain identifiers (spec.md §6)
		id := &ast.Identifier{Name: p.cur.Literal}
		setToken(id, tok)
		p.next()
		return id
	case lexer.ASYNC:
		if p.peekIs(lexer.FUNCTION) {
			p.next()
			return p.parseFunctionExpression(true)
		}
		id := &ast.Identifier{Name: p.cur.Literal}
		setToken(id, tok)
		p.next()
		return id
	case lexer.FUNCTION:
		return p.parseFunctionExpression(false)
	case lexer.CLASS:
		return p.parseClassExpression()
	case lexer.NEW:
		return p.parseNewExpression()
	case lexer.IMPORT:
		p.next()
		if p.curIs(lexer.DOT) {
			p.next()
			prop := p.cur.Literal
			p.next()
			m := &ast.MetaProperty{Meta: "import", Property: prop}
			setToken(m, tok)
			return m
		}
		args := p.parseArguments()
		var arg ast.Expression
		if len(args) > 0 {
			arg = args[0]
		}
		ic := &ast.ImportCallExpression{Argument: arg}
		setToken(ic, tok)
		return ic
	case lexer.LPAREN:
		// arrow parameter lists were already taken by parseAssignment
		p.next()
		inner := p.parseExpression()
		p.expect(lexer.RPAREN)
		return inner
	case lexer.LBRACKET:
		return p.parseArrayLiteral()
	case lexer.LBRACE:
		return p.parseObjectLiteral()
	case lexer.PRIVATE_IDENT:
		pn := &ast.PrivateName{Name: p.cur.Literal[1:]}
		setToken(pn, tok)
		p.next()
		return pn
	default:
		p.errorf("unexpected token %s in expression", p.cur.Type)
		p.next()
		id := &ast.Identifier{Name: "_error"}
		setToken(id, tok)
		return id
	}
}

func (p *Parser) parseRegexLiteral() *ast.RegexLiteral {
	tok := p.cur
	raw := p.cur.Literal
	end := strings.LastIndex(raw, "/")
	pattern := raw[1:end]
	flags := raw[end+1:]
	seen := map[rune]bool{}
	for _, f := range flags {
		if !strings.ContainsRune("gimsuyd", f) || seen[f] {
			p.errorf("invalid regular expression flags %q", flags)
			break
		}
		seen[f] = true
	}
	r := &ast.RegexLiteral{Pattern: pattern, Flags: flags}
	setToken(r, tok)
	p.next()
	return r
}

func (p *Parser) parseTemplateLiteral() *ast.TemplateLiteral {
	tok := p.cur
	tpl := &ast.TemplateLiteral{}
	setToken(tpl, tok)
	if p.curIs(lexer.NO_SUBSTITUTION_TEMPLATE) {
		tpl.Quasis = []string{p.cur.Literal}
		p.next()
		return tpl
	}
	tpl.Quasis = append(tpl.Quasis, p.cur.Literal)
	p.next() // consume TEMPLATE_HEAD
	for {
		tpl.Expressions = append(tpl.Expressions, p.parseExpression())
		switch p.cur.Type {
		case lexer.TEMPLATE_MIDDLE:
			tpl.Quasis = append(tpl.Quasis, p.cur.Literal)
			p.next()
		case lexer.TEMPLATE_TAIL:
			tpl.Quasis = append(tpl.Quasis, p.cur.Literal)
			p.next()
			return tpl
		default:
			p.errorf("malformed template literal")
			return tpl
		}
	}
}

func (p *Parser) parseArrayLiteral() *ast.ArrayLiteral {
	tok := p.cur
	p.expect(lexer.LBRACKET)
	arr := &ast.ArrayLiteral{}
	setToken(arr, tok)
	for !p.curIs(lexer.RBRACKET) && !p.curIs(lexer.EOF) {
		if p.curIs(lexer.COMMA) {
			arr.Elements = append(arr.Elements, nil)
			p.next()
			continue
		}
		if p.curIs(lexer.DOTDOTDOT) {
			stok := p.cur
			p.next()
			s := &ast.SpreadElement{Argument: p.parseAssignment()}
			setToken(s, stok)
			arr.Elements = append(arr.Elements, s)
		} else {
			arr.Elements = append(arr.Elements, p.parseAssignment())
		}
		if p.curIs(lexer.COMMA) {
			p.next()
		}
	}
	p.expect(lexer.RBRACKET)
	return arr
}

func (p *Parser) parseObjectLiteral() *ast.ObjectLiteral {
	tok := p.cur
	p.expect(lexer.LBRACE)
	obj := &ast.ObjectLiteral{}
	setToken(obj, tok)
	for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
		if p.curIs(lexer.DOTDOTDOT) {
			p.next()
			val := p.parseAssignment()
			obj.Properties = append(obj.Properties, ast.ObjectProperty{Spread: true, Value: val})
		} else {
			obj.Properties = append(obj.Properties, p.parseObjectProperty())
		}
		if p.curIs(lexer.COMMA) {
			p.next()
		}
	}
	p.expect(lexer.RBRACE)
	return obj
}

func (p *Parser) parseObjectProperty() ast.ObjectProperty {
	isAsync, isGen := false, false
	kind := "init"

	if p.curIs(lexer.ASYNC) && !p.peekIsPropTerminator() {
		isAsync = true
		p.next()
	}
	if p.curIs(lexer.STAR) {
		isGen = true
		p.next()
	}
	if (p.curIs(lexer.GET) || p.curIs(lexer.SET)) && !p.peekIsPropTerminator() {
		kind = p.cur.Literal
		p.next()
	}

	computed := false
	var key ast.Expression
	if p.curIs(lexer.LBRACKET) {
		computed = true
		p.next()
		key = p.parseAssignment()
		p.expect(lexer.RBRACKET)
	} else {
		key = p.parsePropertyKey()
	}

	if p.curIs(lexer.LPAREN) {
		fn := p.parseFunctionRest(isAsync, isGen)
		return ast.ObjectProperty{Key: key, Value: fn, Computed: computed, IsMethod: true, Kind: kindOrMethod(kind)}
	}

	if p.curIs(lexer.COLON) {
		p.next()
		val := p.parseAssignment()
		return ast.ObjectProperty{Key: key, Value: val, Computed: computed}
	}

	// shorthand {x} or {x = default} (the latter only valid when later
	// reinterpreted as a destructuring pattern)
	if id, ok := key.(*ast.Identifier); ok {
		var val ast.Expression = id
		if p.curIs(lexer.ASSIGN) {
			p.next()
			def := p.parseAssignment()
			ap := &ast.AssignmentExpression{Operator: "=", Target: id, Value: def}
			setPos(ap, id.Pos())
			val = ap
		}
		return ast.ObjectProperty{Key: id, Value: val, Shorthand: true}
	}
	p.errorf("invalid object literal property")
	return ast.ObjectProperty{Key: key, Value: key}
}

func kindOrMethod(kind string) string {
	if kind == "get" || kind == "set" {
		return kind
	}
	return "method"
}

// peekIsPropTerminator distinguishes `async`/`get`/`set` used as a
// modifier keyword from the same words used as a literal property name
// (`{ get: 1 }`, `{ async() {} }`).
func (p *Parser) peekIsPropTerminator() bool {
	return p.peekIs(lexer.COLON) || p.peekIs(lexer.LPAREN) || p.peekIs(lexer.COMMA) || p.peekIs(lexer.RBRACE) || p.peekIs(lexer.ASSIGN)
}

func (p *Parser) parsePropertyKey() ast.Expression {
	tok := p.cur
	switch p.cur.Type {
	case lexer.STRING:
		s := &ast.StringLiteral{Value: p.cur.Literal}
		setToken(s, tok)
		p.next()
		return s
	case lexer.NUMBER:
		v, _ := strconv.ParseFloat(p.cur.Literal, 64)
		n := &ast.NumberLiteral{Value: v, Raw: p.cur.Literal}
		setToken(n, tok)
		p.next()
		return n
	case lexer.PRIVATE_IDENT:
		pn := &ast.PrivateName{Name: p.cur.Literal[1:]}
		setToken(pn, tok)
		p.next()
		return pn
	default:
		id := &ast.Identifier{Name: p.cur.Literal}
		setToken(id, tok)
		p.next()
		return id
	}
}

func (p *Parser) parseNewExpression() ast.Expression {
	tok := p.cur
	p.next()
	if p.curIs(lexer.DOT) {
		p.next()
		prop := p.cur.Literal
		p.next()
		m := &ast.MetaProperty{Meta: "new", Property: prop}
		setToken(m, tok)
		return m
	}
	callee := p.parseMemberOnlyChain(p.parsePrimary())
	var args []ast.Expression
	if p.curIs(lexer.LPAREN) {
		args = p.parseArguments()
	}
	n := &ast.NewExpression{Callee: callee, Arguments: args}
	setToken(n, tok)
	return p.parseCallOrMember(n)
}

// parseMemberOnlyChain parses member accesses (but not calls) following
// `new Callee`, since `new a.b.c(args)` must not swallow `(args)` as part
// of resolving the callee.
func (p *Parser) parseMemberOnlyChain(expr ast.Expression) ast.Expression {
	for {
		switch {
		case p.curIs(lexer.DOT):
			tok := p.cur
			p.next()
			name := p.cur.Literal
			propTok := p.cur
			p.next()
			prop := &ast.Identifier{Name: name}
			setToken(prop, propTok)
			m := &ast.MemberExpression{Object: expr, Property: prop}
			setToken(m, tok)
			expr = m
		case p.curIs(lexer.LBRACKET):
			tok := p.cur
			p.next()
			prop := p.parseExpression()
			p.expect(lexer.RBRACKET)
			m := &ast.MemberExpression{Object: expr, Property: prop, Computed: true}
			setToken(m, tok)
			expr = m
		default:
			return expr
		}
	}
}
