package parser

import (
	"github.com/esgo-lang/esgo/internal/ast"
	"github.com/esgo-lang/esgo/internal/lexer"
)

// tokened is implemented by every ast node via the embedded base type's
// promoted SetToken method.
type tokened interface {
	SetToken(lexer.Token)
}

// positioned is implemented by every ast node via the embedded base
// type's promoted SetPos method.
type positioned interface {
	SetPos(lexer.Position)
}

func setToken(n tokened, tok lexer.Token) { n.SetToken(tok) }
func setPos(n positioned, pos lexer.Position) { n.SetPos(pos) }

// exprToPattern reinterprets an already-parsed expression as an
// assignment/destructuring target, used for `for (x of y)` and
// `({a, b} = obj)` where the parser cannot tell until it sees what
// follows whether the left-hand side is an expression or a pattern.
func (p *Parser) exprToPattern(expr ast.Expression) ast.Pattern {
	switch e := expr.(type) {
	case *ast.Identifier:
		return e
	case *ast.MemberExpression:
		return e
	case *ast.ArrayLiteral:
		pat := &ast.ArrayPattern{}
		setPos(pat, e.Pos())
		for _, el := range e.Elements {
			if el == nil {
				pat.Elements = append(pat.Elements, nil)
				continue
			}
			if spread, ok := el.(*ast.SpreadElement); ok {
				rest := &ast.RestElement{Argument: p.exprToPattern(spread.Argument)}
				setPos(rest, spread.Pos())
				pat.Elements = append(pat.Elements, rest)
				continue
			}
			pat.Elements = append(pat.Elements, p.exprToPattern(el))
		}
		return pat
	case *ast.ObjectLiteral:
		pat := &ast.ObjectPattern{}
		setPos(pat, e.Pos())
		for _, prop := range e.Properties {
			if prop.Spread {
				pat.Properties = append(pat.Properties, ast.ObjectPatternProperty{Rest: true, Value: p.exprToPattern(prop.Value)})
				continue
			}
			pat.Properties = append(pat.Properties, ast.ObjectPatternProperty{
				Key: prop.Key, Value: p.exprToPattern(prop.Value), Computed: prop.Computed, Shorthand: prop.Shorthand,
			})
		}
		return pat
	case *ast.AssignmentExpression:
		if e.Operator == "=" {
			ap := &ast.AssignmentPattern{Target: p.exprToPattern(e.Target), Default: e.Value}
			setPos(ap, e.Pos())
			return ap
		}
	}
	p.errorf("invalid destructuring/assignment target")
	id := &ast.Identifier{Name: "_invalid"}
	setPos(id, expr.Pos())
	return id
}
