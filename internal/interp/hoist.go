package interp

import (
	"github.com/esgo-lang/esgo/internal/ast"
	"github.com/esgo-lang/esgo/internal/interp/runtime"
)

// hoistDeclarations implements the two-pass binding setup spec.md §4.3
// describes: `var` and function declarations are hoisted (with function
// declarations pre-bound to their closures before any statement runs),
// and `let`/`const`/class declare TDZ bindings in the immediately
// enclosing block, ahead of executing any statement in stmts.
func (it *Interp) hoistDeclarations(env *Environment, stmts []ast.Statement) {
	fnEnv := env.NearestFunctionOrModule()
	for _, s := range stmts {
		hoistVars(env, fnEnv, s)
	}
	for _, s := range stmts {
		switch d := s.(type) {
		case *ast.VarDeclStatement:
			if d.Kind == "let" {
				for _, decl := range d.Decls {
					declareLetPattern(env, decl.Target)
				}
			} else if d.Kind == "const" {
				for _, decl := range d.Decls {
					declareConstPattern(env, decl.Target)
				}
			}
		case *ast.ClassLiteral:
			if d.Name != nil {
				env.DeclareLet(d.Name.Name)
			}
		}
	}
	for _, s := range stmts {
		if fn, ok := s.(*ast.FunctionLiteral); ok && fn.Name != nil {
			env.DeclareVar(fn.Name.Name, Undefined)
			env.Initialize(fn.Name.Name, runtime.Object_(it.MakeFunction(fn, env, nil)))
		}
	}
}

// hoistVars walks nested statements (but not into nested function
// bodies) registering `var` names on fnEnv, per spec.md §4.3's "var
// attaches to the nearest function/module/global frame" rule.
func hoistVars(env, fnEnv *Environment, s ast.Statement) {
	switch n := s.(type) {
	case *ast.VarDeclStatement:
		if n.Kind == "var" {
			for _, d := range n.Decls {
				for _, name := range patternNames(d.Target) {
					if !fnEnv.HasOwn(name) {
						fnEnv.DeclareVar(name, Undefined)
					}
				}
			}
		}
	case *ast.BlockStatement:
		for _, s2 := range n.Body {
			hoistVars(env, fnEnv, s2)
		}
	case *ast.IfStatement:
		hoistVars(env, fnEnv, n.Consequent)
		if n.Alternate != nil {
			hoistVars(env, fnEnv, n.Alternate)
		}
	case *ast.WhileStatement:
		hoistVars(env, fnEnv, n.Body)
	case *ast.DoWhileStatement:
		hoistVars(env, fnEnv, n.Body)
	case *ast.ForStatement:
		if vd, ok := n.Init.(*ast.VarDeclStatement); ok {
			hoistVars(env, fnEnv, vd)
		}
		hoistVars(env, fnEnv, n.Body)
	case *ast.ForInStatement:
		if vd, ok := n.Left.(*ast.VarDeclStatement); ok {
			hoistVars(env, fnEnv, vd)
		}
		hoistVars(env, fnEnv, n.Body)
	case *ast.ForOfStatement:
		if vd, ok := n.Left.(*ast.VarDeclStatement); ok {
			hoistVars(env, fnEnv, vd)
		}
		hoistVars(env, fnEnv, n.Body)
	case *ast.TryStatement:
		hoistVars(env, fnEnv, n.Block)
		if n.Handler != nil {
			hoistVars(env, fnEnv, n.Handler.Body)
		}
		if n.Finally != nil {
			hoistVars(env, fnEnv, n.Finally)
		}
	case *ast.SwitchStatement:
		for _, c := range n.Cases {
			for _, s2 := range c.Consequent {
				hoistVars(env, fnEnv, s2)
			}
		}
	case *ast.LabeledStatement:
		hoistVars(env, fnEnv, n.Body)
	}
}

func patternNames(p ast.Pattern) []string {
	switch n := p.(type) {
	case *ast.Identifier:
		return []string{n.Name}
	case *ast.AssignmentPattern:
		return patternNames(n.Target)
	case *ast.RestElement:
		return patternNames(n.Argument)
	case *ast.ArrayPattern:
		var out []string
		for _, el := range n.Elements {
			if el != nil {
				out = append(out, patternNames(el)...)
			}
		}
		return out
	case *ast.ObjectPattern:
		var out []string
		for _, prop := range n.Properties {
			out = append(out, patternNames(prop.Value)...)
		}
		return out
	}
	return nil
}

func declareLetPattern(env *Environment, p ast.Pattern) {
	for _, name := range patternNames(p) {
		env.DeclareLet(name)
	}
}

func declareConstPattern(env *Environment, p ast.Pattern) {
	for _, name := range patternNames(p) {
		env.DeclareConst(name)
	}
}
