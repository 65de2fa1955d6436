package ast

import "strings"

// Pattern is a binding target: an Identifier, or an Array/Object
// destructuring pattern, optionally wrapped in AssignmentPattern for a
// default value, or RestElement for `...rest` (spec.md §4.2).
type Pattern interface {
	Node
	patternNode()
}

func (i *Identifier) patternNode() {}

// AssignmentPattern is `pattern = defaultValue`.
type AssignmentPattern struct {
	base
	Target  Pattern
	Default Expression
}

func (a *AssignmentPattern) patternNode()    {}
func (a *AssignmentPattern) expressionNode() {}
func (a *AssignmentPattern) String() string {
	return a.Target.String() + " = " + a.Default.String()
}

// RestElement is `...rest` in a parameter list, array pattern, or object
// pattern.
type RestElement struct {
	base
	Argument Pattern
}

func (r *RestElement) patternNode()    {}
func (r *RestElement) expressionNode() {}
func (r *RestElement) String() string  { return "..." + r.Argument.String() }

// ArrayPattern is `[a, , {b}, ...rest]`.
type ArrayPattern struct {
	base
	Elements []Pattern // nil entries are elided holes
}

func (a *ArrayPattern) patternNode()    {}
func (a *ArrayPattern) expressionNode() {}
func (a *ArrayPattern) String() string {
	parts := make([]string, len(a.Elements))
	for i, e := range a.Elements {
		if e == nil {
			continue
		}
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// ObjectPatternProperty is one entry of an ObjectPattern: `key: target`,
// shorthand `{x}`, or `...rest`.
type ObjectPatternProperty struct {
	Key      Expression
	Value    Pattern
	Computed bool
	Shorthand bool
	Rest     bool // Value holds the rest target when true
}

// ObjectPattern is `{a, b: c, ...rest}`.
type ObjectPattern struct {
	base
	Properties []ObjectPatternProperty
}

func (o *ObjectPattern) patternNode()    {}
func (o *ObjectPattern) expressionNode() {}
func (o *ObjectPattern) String() string {
	parts := make([]string, len(o.Properties))
	for i, p := range o.Properties {
		if p.Rest {
			parts[i] = "..." + p.Value.String()
			continue
		}
		parts[i] = p.Key.String() + ": " + p.Value.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
