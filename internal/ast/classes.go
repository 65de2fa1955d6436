package ast

import "strings"

// ClassMember is one member of a class body: a method, a field, or a
// static initialization block (spec.md §4.2/§4.4.6).
type ClassMember struct {
	Key          Expression // Identifier, PrivateName, StringLiteral, NumberLiteral, or a computed Expression
	Computed     bool
	IsStatic     bool
	IsPrivate    bool
	Kind         string // "method", "get", "set", "field", "constructor", "staticBlock"
	Value        *FunctionLiteral // method body, nil for fields
	FieldInit    Expression       // field initializer, nil for methods/no-initializer fields
	StaticBlock  *BlockStatement  // non-nil only when Kind == "staticBlock"
}

// ClassLiteral backs both `class Name ... {}` declarations and class
// expressions.
type ClassLiteral struct {
	base
	Name       *Identifier // nil for anonymous class expressions
	SuperClass Expression  // nil if no `extends`
	Members    []ClassMember
}

func (c *ClassLiteral) expressionNode() {}
func (c *ClassLiteral) statementNode()  {}
func (c *ClassLiteral) String() string {
	var sb strings.Builder
	sb.WriteString("class")
	if c.Name != nil {
		sb.WriteString(" " + c.Name.Name)
	}
	if c.SuperClass != nil {
		sb.WriteString(" extends " + c.SuperClass.String())
	}
	sb.WriteString(" { ... }")
	return sb.String()
}

// ImportSpecifier is one named/default/namespace binding of an import
// declaration (spec.md §4.8).
type ImportSpecifier struct {
	Imported *Identifier // nil for default/namespace imports
	Local    *Identifier
	Default  bool
	Namespace bool // `import * as ns`
}

// ImportDeclaration is a static `import ... from "specifier"`.
type ImportDeclaration struct {
	base
	Specifiers []ImportSpecifier
	Source     string
}

func (i *ImportDeclaration) statementNode() {}
func (i *ImportDeclaration) String() string { return "import ... from \"" + i.Source + "\";" }

// ExportSpecifier is one `name [as alias]` entry of a named export list.
type ExportSpecifier struct {
	Local    *Identifier
	Exported *Identifier
}

// ExportNamedDeclaration covers `export const x = 1;`, `export function
// f(){}`, and `export { a, b as c };` (optionally re-exported `from`).
type ExportNamedDeclaration struct {
	base
	Declaration Statement // non-nil for `export <decl>` form
	Specifiers  []ExportSpecifier
	Source      string // non-empty for `export {...} from "x"`
}

func (e *ExportNamedDeclaration) statementNode() {}
func (e *ExportNamedDeclaration) String() string { return "export ...;" }

// ExportDefaultDeclaration is `export default <expr|decl>`.
type ExportDefaultDeclaration struct {
	base
	Declaration Node // Expression or a FunctionLiteral/ClassLiteral statement
}

func (e *ExportDefaultDeclaration) statementNode() {}
func (e *ExportDefaultDeclaration) String() string  { return "export default ...;" }

// ExportAllDeclaration is `export * from "specifier"` (optionally `as
// name`).
type ExportAllDeclaration struct {
	base
	Exported *Identifier // nil for bare `export * from`
	Source   string
}

func (e *ExportAllDeclaration) statementNode() {}
func (e *ExportAllDeclaration) String() string  { return "export * from \"" + e.Source + "\";" }
