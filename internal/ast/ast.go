// Package ast defines the Abstract Syntax Tree node types produced by
// internal/parser and consumed directly by internal/interp — there is no
// intermediate bytecode (spec.md §4.2).
package ast

import (
	"bytes"
	"strings"

	"github.com/esgo-lang/esgo/internal/lexer"
)

// Node is the base interface for every AST node.
type Node interface {
	TokenLiteral() string
	String() string
	Pos() lexer.Position
}

// Expression is any node that produces a value.
type Expression interface {
	Node
	expressionNode()
}

// Statement is any node that performs an action.
type Statement interface {
	Node
	statementNode()
}

// Program is the root node of a parsed script or module body.
type Program struct {
	Body     []Statement
	IsModule bool
}

func (p *Program) TokenLiteral() string { return "" }
func (p *Program) Pos() lexer.Position  { return lexer.Position{Line: 1, Column: 1} }
func (p *Program) String() string {
	var sb bytes.Buffer
	for _, s := range p.Body {
		sb.WriteString(s.String())
		sb.WriteString("\n")
	}
	return sb.String()
}

// base carries the defining token's literal and position for every
// concrete node type, exposing TokenLiteral()/position from every node.
// SetToken/SetPos are
// exported so internal/parser (a different package) can stamp position
// information onto nodes built via composite literals without every node
// type needing its own constructor.
type base struct {
	literal string
	pos     lexer.Position
}

func (b base) TokenLiteral() string { return b.literal }
func (b base) Pos() lexer.Position  { return b.pos }

func (b *base) SetToken(t lexer.Token) {
	b.literal = t.Literal
	b.pos = t.Pos
}

func (b *base) SetPos(pos lexer.Position) {
	b.pos = pos
}

// Identifier is a bare name reference.
type Identifier struct {
	base
	Name string
}

func (i *Identifier) expressionNode() {}
func (i *Identifier) String() string  { return i.Name }

// PrivateName is a `#name` reference, valid only inside a class body
// (spec.md §3 invariant 6, §4.4.6).
type PrivateName struct {
	base
	Name string // without the leading '#'
}

func (p *PrivateName) expressionNode() {}
func (p *PrivateName) String() string  { return "#" + p.Name }

// NumberLiteral is a double-precision numeric literal.
type NumberLiteral struct {
	base
	Value float64
	Raw   string
}

func (n *NumberLiteral) expressionNode() {}
func (n *NumberLiteral) String() string  { return n.Raw }

// BigIntLiteral is an arbitrary-precision integer literal (`123n`).
type BigIntLiteral struct {
	base
	Raw string // decimal/hex/octal/binary digits, no "n" suffix
}

func (n *BigIntLiteral) expressionNode() {}
func (n *BigIntLiteral) String() string  { return n.Raw + "n" }

// StringLiteral is a quoted string literal.
type StringLiteral struct {
	base
	Value string
}

func (s *StringLiteral) expressionNode() {}
func (s *StringLiteral) String() string  { return `"` + s.Value + `"` }

// BooleanLiteral is `true`/`false`.
type BooleanLiteral struct {
	base
	Value bool
}

func (b *BooleanLiteral) expressionNode() {}
func (b *BooleanLiteral) String() string {
	if b.Value {
		return "true"
	}
	return "false"
}

// NullLiteral is `null`.
type NullLiteral struct{ base }

func (n *NullLiteral) expressionNode() {}
func (n *NullLiteral) String() string  { return "null" }

// UndefinedLiteral is the `undefined` identifier used as a literal value.
type UndefinedLiteral struct{ base }

func (u *UndefinedLiteral) expressionNode() {}
func (u *UndefinedLiteral) String() string  { return "undefined" }

// ThisExpression is `this`.
type ThisExpression struct{ base }

func (t *ThisExpression) expressionNode() {}
func (t *ThisExpression) String() string  { return "this" }

// SuperExpression is the bare `super` reference used in `super(...)` and
// `super.member`.
type SuperExpression struct{ base }

func (s *SuperExpression) expressionNode() {}
func (s *SuperExpression) String() string  { return "super" }

// RegexLiteral is a `/pattern/flags` literal (spec.md §4.2).
type RegexLiteral struct {
	base
	Pattern string
	Flags   string
}

func (r *RegexLiteral) expressionNode() {}
func (r *RegexLiteral) String() string  { return "/" + r.Pattern + "/" + r.Flags }

// TemplateLiteral is a backtick template, possibly with expression holes.
type TemplateLiteral struct {
	base
	Quasis      []string     // len(Quasis) == len(Expressions)+1
	Expressions []Expression
	Tag         Expression // non-nil for tagged templates
}

func (t *TemplateLiteral) expressionNode() {}
func (t *TemplateLiteral) String() string {
	var sb bytes.Buffer
	if t.Tag != nil {
		sb.WriteString(t.Tag.String())
	}
	sb.WriteString("`")
	for i, q := range t.Quasis {
		sb.WriteString(q)
		if i < len(t.Expressions) {
			sb.WriteString("${")
			sb.WriteString(t.Expressions[i].String())
			sb.WriteString("}")
		}
	}
	sb.WriteString("`")
	return sb.String()
}

// ArrayLiteral is `[a, b, ...c]`; elements may be nil to represent elided
// holes (`[1, , 3]`).
type ArrayLiteral struct {
	base
	Elements []Expression
}

func (a *ArrayLiteral) expressionNode() {}
func (a *ArrayLiteral) String() string {
	parts := make([]string, len(a.Elements))
	for i, e := range a.Elements {
		if e == nil {
			parts[i] = ""
			continue
		}
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// SpreadElement is `...expr` inside array/call/object literal position.
type SpreadElement struct {
	base
	Argument Expression
}

func (s *SpreadElement) expressionNode() {}
func (s *SpreadElement) String() string  { return "..." + s.Argument.String() }

// ObjectProperty is one `key: value` / shorthand / method entry of an
// object literal.
type ObjectProperty struct {
	Key       Expression
	Value     Expression
	Computed  bool
	Shorthand bool
	IsMethod  bool
	Kind      string // "init", "get", "set"
	Spread    bool
}

// ObjectLiteral is `{ ... }`.
type ObjectLiteral struct {
	base
	Properties []ObjectProperty
}

func (o *ObjectLiteral) expressionNode() {}
func (o *ObjectLiteral) String() string {
	parts := make([]string, len(o.Properties))
	for i, p := range o.Properties {
		if p.Spread {
			parts[i] = "..." + p.Value.String()
			continue
		}
		parts[i] = p.Key.String() + ": " + p.Value.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// FunctionLiteral covers function declarations, function expressions, and
// method bodies (distinguished by IsGenerator/IsAsync/IsArrow/IsMethod).
type FunctionLiteral struct {
	base
	Name        *Identifier // nil for anonymous function expressions
	Params      []Pattern
	Body        *BlockStatement
	ArrowBody   Expression // non-nil for concise-body arrows (`x => x+1`)
	IsArrow     bool
	IsGenerator bool
	IsAsync     bool
	IsStrict    bool
}

func (f *FunctionLiteral) expressionNode() {}
func (f *FunctionLiteral) statementNode()  {}
func (f *FunctionLiteral) String() string {
	var sb bytes.Buffer
	if f.IsAsync {
		sb.WriteString("async ")
	}
	sb.WriteString("function")
	if f.IsGenerator {
		sb.WriteString("*")
	}
	if f.Name != nil {
		sb.WriteString(" " + f.Name.Name)
	}
	sb.WriteString("(")
	parts := make([]string, len(f.Params))
	for i, p := range f.Params {
		parts[i] = p.String()
	}
	sb.WriteString(strings.Join(parts, ", "))
	sb.WriteString(") ")
	if f.Body != nil {
		sb.WriteString(f.Body.String())
	} else if f.ArrowBody != nil {
		sb.WriteString(f.ArrowBody.String())
	}
	return sb.String()
}
