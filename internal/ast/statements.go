package ast

import (
	"strings"
)

// BlockStatement is `{ ... }` used as a statement body.
type BlockStatement struct {
	base
	Body []Statement
}

func (b *BlockStatement) statementNode() {}
func (b *BlockStatement) String() string {
	var sb strings.Builder
	sb.WriteString("{\n")
	for _, s := range b.Body {
		sb.WriteString(s.String())
		sb.WriteString("\n")
	}
	sb.WriteString("}")
	return sb.String()
}

// ExpressionStatement wraps an expression used as a statement; its value
// becomes the script's completion value when it is the last statement
// executed (spec.md §6).
type ExpressionStatement struct {
	base
	Expression Expression
}

func (e *ExpressionStatement) statementNode() {}
func (e *ExpressionStatement) String() string { return e.Expression.String() + ";" }

// EmptyStatement is a bare `;`.
type EmptyStatement struct{ base }

func (e *EmptyStatement) statementNode() {}
func (e *EmptyStatement) String() string { return ";" }

// VarDeclarator is one `name = init` (or destructuring pattern) entry of
// a VarDeclStatement.
type VarDeclarator struct {
	Target Pattern
	Init   Expression // nil when no initializer
}

// VarDeclStatement is a `var`/`let`/`const` declaration (spec.md §3).
type VarDeclStatement struct {
	base
	Kind  string // "var", "let", "const"
	Decls []VarDeclarator
}

func (v *VarDeclStatement) statementNode() {}
func (v *VarDeclStatement) String() string {
	parts := make([]string, len(v.Decls))
	for i, d := range v.Decls {
		if d.Init != nil {
			parts[i] = d.Target.String() + " = " + d.Init.String()
		} else {
			parts[i] = d.Target.String()
		}
	}
	return v.Kind + " " + strings.Join(parts, ", ") + ";"
}

// IfStatement is `if (test) cons else alt`.
type IfStatement struct {
	base
	Test       Expression
	Consequent Statement
	Alternate  Statement // nil if no else branch
}

func (i *IfStatement) statementNode() {}
func (i *IfStatement) String() string {
	s := "if (" + i.Test.String() + ") " + i.Consequent.String()
	if i.Alternate != nil {
		s += " else " + i.Alternate.String()
	}
	return s
}

// WhileStatement is `while (test) body`.
type WhileStatement struct {
	base
	Test Expression
	Body Statement
}

func (w *WhileStatement) statementNode() {}
func (w *WhileStatement) String() string { return "while (" + w.Test.String() + ") " + w.Body.String() }

// DoWhileStatement is `do body while (test);`.
type DoWhileStatement struct {
	base
	Body Statement
	Test Expression
}

func (d *DoWhileStatement) statementNode() {}
func (d *DoWhileStatement) String() string {
	return "do " + d.Body.String() + " while (" + d.Test.String() + ");"
}

// ForStatement is the classic C-style `for (init; test; update) body`.
// Init may be a VarDeclStatement or an Expression (or nil).
type ForStatement struct {
	base
	Init   Node
	Test   Expression
	Update Expression
	Body   Statement
}

func (f *ForStatement) statementNode() {}
func (f *ForStatement) String() string { return "for (...) " + f.Body.String() }

// ForInStatement is `for (left in right) body`.
type ForInStatement struct {
	base
	Left  Node // VarDeclStatement (single declarator) or Pattern
	Right Expression
	Body  Statement
}

func (f *ForInStatement) statementNode() {}
func (f *ForInStatement) String() string { return "for (... in ...) " + f.Body.String() }

// ForOfStatement is `for (left of right) body`; IsAwait marks
// `for await (...)` used inside async functions/modules with top-level
// await (spec.md §4.6/§4.8).
type ForOfStatement struct {
	base
	Left    Node
	Right   Expression
	Body    Statement
	IsAwait bool
}

func (f *ForOfStatement) statementNode() {}
func (f *ForOfStatement) String() string { return "for (... of ...) " + f.Body.String() }

// BreakStatement is `break;` or `break label;`.
type BreakStatement struct {
	base
	Label *Identifier
}

func (b *BreakStatement) statementNode() {}
func (b *BreakStatement) String() string {
	if b.Label != nil {
		return "break " + b.Label.Name + ";"
	}
	return "break;"
}

// ContinueStatement is `continue;` or `continue label;`.
type ContinueStatement struct {
	base
	Label *Identifier
}

func (c *ContinueStatement) statementNode() {}
func (c *ContinueStatement) String() string {
	if c.Label != nil {
		return "continue " + c.Label.Name + ";"
	}
	return "continue;"
}

// ReturnStatement is `return expr;`.
type ReturnStatement struct {
	base
	Argument Expression // nil for bare `return;`
}

func (r *ReturnStatement) statementNode() {}
func (r *ReturnStatement) String() string {
	if r.Argument != nil {
		return "return " + r.Argument.String() + ";"
	}
	return "return;"
}

// ThrowStatement is `throw expr;`.
type ThrowStatement struct {
	base
	Argument Expression
}

func (t *ThrowStatement) statementNode() {}
func (t *ThrowStatement) String() string { return "throw " + t.Argument.String() + ";" }

// CatchClause is the `catch (param) body` part of a TryStatement; Param
// may be nil per the optional-catch-binding feature (spec.md §4.4.4).
type CatchClause struct {
	Param Pattern
	Body  *BlockStatement
}

// TryStatement is `try block [catch] [finally]`.
type TryStatement struct {
	base
	Block   *BlockStatement
	Handler *CatchClause
	Finally *BlockStatement
}

func (t *TryStatement) statementNode() {}
func (t *TryStatement) String() string {
	s := "try " + t.Block.String()
	if t.Handler != nil {
		s += " catch " + t.Handler.Body.String()
	}
	if t.Finally != nil {
		s += " finally " + t.Finally.String()
	}
	return s
}

// SwitchCase is one `case test:`/`default:` arm.
type SwitchCase struct {
	Test        Expression // nil for `default`
	Consequent  []Statement
}

// SwitchStatement is `switch (disc) { case ...: ... }`.
type SwitchStatement struct {
	base
	Discriminant Expression
	Cases        []SwitchCase
}

func (s *SwitchStatement) statementNode() {}
func (s *SwitchStatement) String() string { return "switch (" + s.Discriminant.String() + ") { ... }" }

// LabeledStatement is `label: statement`.
type LabeledStatement struct {
	base
	Label *Identifier
	Body  Statement
}

func (l *LabeledStatement) statementNode() {}
func (l *LabeledStatement) String() string { return l.Label.Name + ": " + l.Body.String() }

// DebuggerStatement is the `debugger;` no-op statement.
type DebuggerStatement struct{ base }

func (d *DebuggerStatement) statementNode() {}
func (d *DebuggerStatement) String() string { return "debugger;" }
