package interp

import (
	"github.com/esgo-lang/esgo/internal/ast"
	"github.com/esgo-lang/esgo/internal/interp/runtime"
)

// evalStatements runs stmts in order, stopping at the first abrupt
// completion (spec.md §4.4). Callers that open a new lexical scope for
// stmts must call hoistDeclarations on env first.
func (it *Interp) evalStatements(env *Environment, stmts []ast.Statement) Completion {
	last := normalC()
	for _, s := range stmts {
		c := it.evalStatement(env, s)
		if c.IsAbrupt() {
			return c
		}
		last = c
	}
	return last
}

func (it *Interp) evalStatement(env *Environment, stmt ast.Statement) Completion {
	switch n := stmt.(type) {
	case *ast.ExpressionStatement:
		v, c := it.evalExpression(env, n.Expression)
		if c.IsAbrupt() {
			return c
		}
		return normalV(v)
	case *ast.EmptyStatement, *ast.DebuggerStatement:
		return normalC()
	case *ast.VarDeclStatement:
		return it.evalVarDecl(env, n)
	case *ast.BlockStatement:
		block := runtime.NewEnclosed(env)
		it.hoistDeclarations(block, n.Body)
		return it.evalStatements(block, n.Body)
	case *ast.IfStatement:
		t, c := it.evalExpression(env, n.Test)
		if c.IsAbrupt() {
			return c
		}
		if t.ToBoolean() {
			return it.evalStatement(env, n.Consequent)
		}
		if n.Alternate != nil {
			return it.evalStatement(env, n.Alternate)
		}
		return normalC()
	case *ast.WhileStatement:
		return it.evalWhile(env, n, "")
	case *ast.DoWhileStatement:
		return it.evalDoWhile(env, n, "")
	case *ast.ForStatement:
		return it.evalFor(env, n, "")
	case *ast.ForInStatement:
		return it.evalForIn(env, n, "")
	case *ast.ForOfStatement:
		return it.evalForOf(env, n, "")
	case *ast.BreakStatement:
		label := ""
		if n.Label != nil {
			label = n.Label.Name
		}
		return breakC(label)
	case *ast.ContinueStatement:
		label := ""
		if n.Label != nil {
			label = n.Label.Name
		}
		return continueC(label)
	case *ast.ReturnStatement:
		return it.evalReturn(env, n)
	case *ast.ThrowStatement:
		v, c := it.evalExpression(env, n.Argument)
		if c.IsAbrupt() {
			return c
		}
		return throwC(v)
	case *ast.TryStatement:
		return it.evalTry(env, n)
	case *ast.SwitchStatement:
		return it.evalSwitch(env, n, "")
	case *ast.LabeledStatement:
		return it.evalLabeled(env, n)
	case *ast.FunctionLiteral:
		return normalC() // hoisted already
	case *ast.ClassLiteral:
		v, c := it.evalClassLiteral(env, n)
		if c.IsAbrupt() {
			return c
		}
		if n.Name != nil {
			env.Initialize(n.Name.Name, v)
		}
		return normalC()
	case *ast.ImportDeclaration:
		return it.evalImportDeclaration(env, n)
	case *ast.ExportNamedDeclaration:
		return it.evalExportNamed(env, n)
	case *ast.ExportDefaultDeclaration:
		return it.evalExportDefault(env, n)
	case *ast.ExportAllDeclaration:
		return it.evalExportAll(env, n)
	}
	return it.throwType("unsupported statement %T", stmt)
}

// evalReturn evaluates a return statement, recognizing tail-position
// calls so execFunctionBody's trampoline can flatten them (spec.md
// §4.4.3). Tail position extends through the branches of conditional
// expressions, the right operand of logical operators, and the last
// operand of the comma operator.
func (it *Interp) evalReturn(env *Environment, n *ast.ReturnStatement) Completion {
	if n.Argument == nil {
		return returnC(Undefined)
	}
	return it.evalReturnTail(env, n.Argument)
}

func (it *Interp) evalReturnTail(env *Environment, expr ast.Expression) Completion {
	switch e := expr.(type) {
	case *ast.ConditionalExpression:
		test, c := it.evalExpression(env, e.Test)
		if c.IsAbrupt() {
			return c
		}
		if test.ToBoolean() {
			return it.evalReturnTail(env, e.Consequent)
		}
		return it.evalReturnTail(env, e.Alternate)
	case *ast.LogicalExpression:
		lv, c := it.evalExpression(env, e.Left)
		if c.IsAbrupt() {
			return c
		}
		switch e.Operator {
		case "&&":
			if !lv.ToBoolean() {
				return returnC(lv)
			}
		case "||":
			if lv.ToBoolean() {
				return returnC(lv)
			}
		case "??":
			if !lv.IsNullish() {
				return returnC(lv)
			}
		}
		return it.evalReturnTail(env, e.Right)
	case *ast.SequenceExpression:
		for _, sub := range e.Expressions[:len(e.Expressions)-1] {
			if _, c := it.evalExpression(env, sub); c.IsAbrupt() {
				return c
			}
		}
		return it.evalReturnTail(env, e.Expressions[len(e.Expressions)-1])
	case *ast.CallExpression:
		if e.Optional {
			break
		}
		if _, isSuper := e.Callee.(*ast.SuperExpression); isSuper {
			break
		}
		fn, this, args, c, isTail := it.resolveTailCall(env, e)
		if c.IsAbrupt() {
			return c
		}
		if isTail {
			rc := returnC(Undefined)
			rc.Tail = &tailCall{fn: fn, this: this, args: args}
			return rc
		}
		// Callee and arguments are already evaluated; invoke directly
		// rather than re-evaluating the expression.
		v, err := fn.Call(this, args)
		if err != nil {
			return it.asThrow(err)
		}
		return returnC(v)
	}
	v, c := it.evalExpression(env, expr)
	if c.IsAbrupt() {
		return c
	}
	return returnC(v)
}

// resolveTailCall evaluates a call expression's callee/this/arguments
// without invoking it, reporting whether the callee is a plain (non-
// generator/async/bound-native) user function eligible for trampolining.
// Only strict-mode callers get TCO (spec.md §4.4.3: "Non-strict code
// does not receive TCO").
func (it *Interp) resolveTailCall(env *Environment, call *ast.CallExpression) (*Object, Value, []Value, Completion, bool) {
	calleeV, this, c := it.evalCallee(env, call.Callee)
	if c.IsAbrupt() {
		return nil, Undefined, nil, c, false
	}
	if !calleeV.IsCallable() {
		return nil, Undefined, nil, it.throwType("%s is not a function", Inspect(calleeV)), false
	}
	args, c := it.evalArguments(env, call.Arguments)
	if c.IsAbrupt() {
		return nil, Undefined, nil, c, false
	}
	fn := calleeV.Obj()
	if !it.callerIsStrict(env) {
		return fn, this, args, normalC(), false
	}
	if node, _ := closureOf(fn); node != nil && !fn.IsGenerator && !fn.IsAsync && !fn.IsClassCtor {
		return fn, this, args, normalC(), true
	}
	return fn, this, args, normalC(), false
}

// callerIsStrict reports whether the function or module frame enclosing
// env runs in strict mode. The global/script top level is strict only
// when the engine itself was constructed with WithStrict (no enclosing
// function/module frame carries an IsStrict flag there).
func (it *Interp) callerIsStrict(env *Environment) bool {
	frame := env.NearestFunctionOrModule()
	if frame.Function != nil {
		return frame.Function.IsStrict
	}
	if frame.Kind == runtime.ModuleEnv {
		return true
	}
	return it.Strict
}

func (it *Interp) evalVarDecl(env *Environment, n *ast.VarDeclStatement) Completion {
	for _, d := range n.Decls {
		var v Value = Undefined
		if d.Init != nil {
			av, c := it.evalExpression(env, d.Init)
			if c.IsAbrupt() {
				return c
			}
			v = av
		}
		var target bindTarget
		switch n.Kind {
		case "var":
			target = declareVarTarget
		case "let":
			target = func(e *Environment, name string, vv Value) Completion {
				e.Initialize(name, vv)
				return normalC()
			}
		default: // const
			target = func(e *Environment, name string, vv Value) Completion {
				e.Initialize(name, vv)
				return normalC()
			}
		}
		if c := it.bindPattern(env, d.Target, v, target); c.IsAbrupt() {
			return c
		}
	}
	return normalC()
}

func (it *Interp) evalWhile(env *Environment, n *ast.WhileStatement, label string) Completion {
	for {
		t, c := it.evalExpression(env, n.Test)
		if c.IsAbrupt() {
			return c
		}
		if !t.ToBoolean() {
			return normalC()
		}
		c = it.evalLoopBody(env, n.Body, label)
		if c.Type == CompletionBreak && matchesLabel(c, label) {
			return normalC()
		}
		if c.Type == CompletionContinue && matchesLabel(c, label) {
			continue
		}
		if c.IsAbrupt() {
			return c
		}
	}
}

func (it *Interp) evalDoWhile(env *Environment, n *ast.DoWhileStatement, label string) Completion {
	for {
		c := it.evalLoopBody(env, n.Body, label)
		if c.Type == CompletionBreak && matchesLabel(c, label) {
			return normalC()
		}
		if !(c.Type == CompletionContinue && matchesLabel(c, label)) && c.IsAbrupt() {
			return c
		}
		t, c2 := it.evalExpression(env, n.Test)
		if c2.IsAbrupt() {
			return c2
		}
		if !t.ToBoolean() {
			return normalC()
		}
	}
}

// evalFor implements the C-style for statement. Per-iteration `let`
// bindings (each closure made inside the body capturing its own copy of
// the loop variable) are approximated by reusing a single frame across
// iterations rather than cloning one per iteration.
func (it *Interp) evalFor(env *Environment, n *ast.ForStatement, label string) Completion {
	loopEnv := runtime.NewEnclosed(env)
	if n.Init != nil {
		switch init := n.Init.(type) {
		case *ast.VarDeclStatement:
			if c := it.evalVarDecl(loopEnv, init); c.IsAbrupt() {
				return c
			}
		case ast.Expression:
			if _, c := it.evalExpression(loopEnv, init); c.IsAbrupt() {
				return c
			}
		}
	}
	for {
		if n.Test != nil {
			t, c := it.evalExpression(loopEnv, n.Test)
			if c.IsAbrupt() {
				return c
			}
			if !t.ToBoolean() {
				return normalC()
			}
		}
		c := it.evalLoopBody(loopEnv, n.Body, label)
		if c.Type == CompletionBreak && matchesLabel(c, label) {
			return normalC()
		}
		if !(c.Type == CompletionContinue && matchesLabel(c, label)) && c.IsAbrupt() {
			return c
		}
		if n.Update != nil {
			if _, c := it.evalExpression(loopEnv, n.Update); c.IsAbrupt() {
				return c
			}
		}
	}
}

func (it *Interp) evalForIn(env *Environment, n *ast.ForInStatement, label string) Completion {
	rv, c := it.evalExpression(env, n.Right)
	if c.IsAbrupt() {
		return c
	}
	if rv.IsNullish() {
		return normalC()
	}
	if !rv.IsObject() {
		return normalC()
	}
	seen := map[PropertyKey]bool{}
	for cur := rv.Obj(); cur != nil; cur = cur.Prototype {
		for _, k := range cur.OwnKeys() {
			if k.IsSymbol || seen[k] {
				continue
			}
			seen[k] = true
			pd, _ := cur.GetOwnProperty(k)
			if !pd.Enumerable {
				continue
			}
			iterEnv := runtime.NewEnclosed(env)
			if c := it.bindForTarget(iterEnv, n.Left, runtime.String(k.Str)); c.IsAbrupt() {
				return c
			}
			bc := it.evalLoopBody(iterEnv, n.Body, label)
			if bc.Type == CompletionBreak && matchesLabel(bc, label) {
				return normalC()
			}
			if !(bc.Type == CompletionContinue && matchesLabel(bc, label)) && bc.IsAbrupt() {
				return bc
			}
		}
	}
	return normalC()
}

func (it *Interp) evalForOf(env *Environment, n *ast.ForOfStatement, label string) Completion {
	rv, c := it.evalExpression(env, n.Right)
	if c.IsAbrupt() {
		return c
	}
	iter, c := it.GetIterator(rv)
	if c.IsAbrupt() {
		return c
	}
	for {
		val, done, c := it.Next(iter)
		if c.IsAbrupt() {
			return c
		}
		if done {
			return normalC()
		}
		if n.IsAwait {
			val, c = it.evalAwaitExpr(env, val)
			if c.IsAbrupt() {
				it.Close(iter)
				return c
			}
		}
		iterEnv := runtime.NewEnclosed(env)
		if c := it.bindForTarget(iterEnv, n.Left, val); c.IsAbrupt() {
			it.Close(iter)
			return c
		}
		bc := it.evalLoopBody(iterEnv, n.Body, label)
		if bc.Type == CompletionBreak && matchesLabel(bc, label) {
			it.Close(iter)
			return normalC()
		}
		if bc.Type == CompletionContinue && matchesLabel(bc, label) {
			continue
		}
		if bc.IsAbrupt() {
			it.Close(iter)
			return bc
		}
	}
}

func (it *Interp) bindForTarget(env *Environment, left ast.Node, v Value) Completion {
	switch l := left.(type) {
	case *ast.VarDeclStatement:
		decl := l.Decls[0]
		var target bindTarget
		switch l.Kind {
		case "var":
			target = declareVarTarget
		default:
			target = declareLetTarget
		}
		return it.bindPattern(env, decl.Target, v, target)
	case ast.Pattern:
		return it.bindPattern(env, l, v, func(e *Environment, name string, vv Value) Completion {
			return it.assignToExpr(e, &ast.Identifier{Name: name}, vv)
		})
	}
	return it.throwSyntax("invalid for-in/for-of target")
}

func (it *Interp) evalLoopBody(env *Environment, body ast.Statement, label string) Completion {
	return it.evalStatement(env, body)
}

func matchesLabel(c Completion, label string) bool {
	return c.Label == "" || c.Label == label
}

func (it *Interp) evalTry(env *Environment, n *ast.TryStatement) Completion {
	block := runtime.NewEnclosed(env)
	it.hoistDeclarations(block, n.Block.Body)
	c := it.evalStatements(block, n.Block.Body)
	if c.Type == CompletionThrow && n.Handler != nil {
		catchEnv := runtime.NewEnclosed(env)
		if n.Handler.Param != nil {
			if bc := it.bindPattern(catchEnv, n.Handler.Param, c.Value, declareLetTarget); bc.IsAbrupt() {
				c = bc
			} else {
				it.hoistDeclarations(catchEnv, n.Handler.Body.Body)
				c = it.evalStatements(catchEnv, n.Handler.Body.Body)
			}
		} else {
			it.hoistDeclarations(catchEnv, n.Handler.Body.Body)
			c = it.evalStatements(catchEnv, n.Handler.Body.Body)
		}
	}
	// A `return f(...)` lexically inside the try block or its catch
	// handler is not in tail position (spec.md §4.4.3): settle any
	// pending tail call now, so its side effects happen before `finally`
	// runs rather than after (spec.md §4.4.4).
	c = it.settleTail(c)
	if n.Finally != nil {
		finallyEnv := runtime.NewEnclosed(env)
		it.hoistDeclarations(finallyEnv, n.Finally.Body)
		fc := it.evalStatements(finallyEnv, n.Finally.Body)
		fc = it.settleTail(fc)
		if fc.IsAbrupt() {
			return fc // finally's completion overrides try/catch's (spec.md §4.4.4)
		}
	}
	return c
}

// settleTail executes a Completion's deferred tail call immediately
// instead of letting it reach execFunctionBody's trampoline, and folds
// the result back into a plain Return completion. Used where a call
// that resolveTailCall marked eligible for trampolining turns out not to
// be in tail position after all (inside try/catch/finally).
func (it *Interp) settleTail(c Completion) Completion {
	if c.Type != CompletionReturn || c.Tail == nil {
		return c
	}
	tc := c.Tail
	v, err := tc.fn.Call(tc.this, tc.args)
	if err != nil {
		return it.asThrow(err)
	}
	return returnC(v)
}

func (it *Interp) evalSwitch(env *Environment, n *ast.SwitchStatement, label string) Completion {
	dv, c := it.evalExpression(env, n.Discriminant)
	if c.IsAbrupt() {
		return c
	}
	switchEnv := runtime.NewEnclosed(env)
	var allStmts []ast.Statement
	for _, cs := range n.Cases {
		allStmts = append(allStmts, cs.Consequent...)
	}
	it.hoistDeclarations(switchEnv, allStmts)

	matchIdx := -1
	defaultIdx := -1
	for i, cs := range n.Cases {
		if cs.Test == nil {
			defaultIdx = i
			continue
		}
		tv, c := it.evalExpression(switchEnv, cs.Test)
		if c.IsAbrupt() {
			return c
		}
		if runtime.StrictEquals(dv, tv) {
			matchIdx = i
			break
		}
	}
	if matchIdx == -1 {
		matchIdx = defaultIdx
	}
	if matchIdx == -1 {
		return normalC()
	}
	for i := matchIdx; i < len(n.Cases); i++ {
		for _, s := range n.Cases[i].Consequent {
			c := it.evalStatement(switchEnv, s)
			if c.Type == CompletionBreak && matchesLabel(c, label) {
				return normalC()
			}
			if c.IsAbrupt() {
				return c
			}
		}
	}
	return normalC()
}

func (it *Interp) evalLabeled(env *Environment, n *ast.LabeledStatement) Completion {
	label := n.Label.Name
	var c Completion
	switch body := n.Body.(type) {
	case *ast.WhileStatement:
		c = it.evalWhile(env, body, label)
	case *ast.DoWhileStatement:
		c = it.evalDoWhile(env, body, label)
	case *ast.ForStatement:
		c = it.evalFor(env, body, label)
	case *ast.ForInStatement:
		c = it.evalForIn(env, body, label)
	case *ast.ForOfStatement:
		c = it.evalForOf(env, body, label)
	case *ast.SwitchStatement:
		c = it.evalSwitch(env, body, label)
	default:
		c = it.evalStatement(env, n.Body)
	}
	if c.Type == CompletionBreak && c.Label == label {
		return normalC()
	}
	return c
}
