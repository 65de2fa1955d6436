package interp

import (
	"github.com/esgo-lang/esgo/internal/ast"
	"github.com/esgo-lang/esgo/internal/interp/runtime"
)

// ThrownValue adapts an ECMAScript throw into a Go error so it can cross
// an Object.Call/Construct native-function boundary (spec.md §4.5); the
// evaluator unwraps it back into a Throw Completion in CallFunction.
type ThrownValue struct{ V Value }

func (t *ThrownValue) Error() string { return "uncaught exception: " + Inspect(t.V) }

// Inspect re-exports runtime.Inspect at the interp layer for error
// messages and the CLI's REPL-echo.
func Inspect(v Value) string { return runtime.Inspect(v) }

// MakeFunction builds a callable Object from a parsed function literal,
// closing over env (spec.md §4.2's FunctionLiteral evaluation). homeObject
// is non-nil for methods (`super` resolution, spec.md §4.4.6).
func (it *Interp) MakeFunction(node *ast.FunctionLiteral, env *Environment, homeObject *Object) *Object {
	fn := runtime.NewObject(it.protos.function)
	fn.InternalKind = runtime.KindFunction
	fn.IsGenerator = node.IsGenerator
	fn.IsAsync = node.IsAsync
	fn.IsArrow = node.IsArrow
	fn.IsStrict = node.IsStrict
	fn.HomeObject = homeObject
	fn.FuncNode = node
	fn.ClosureEnv = env
	fn.Params = countDeclaredParams(node.Params)
	if node.Name != nil {
		fn.FunctionName = node.Name.Name
	}
	fn.Set("length", runtime.Int(fn.Params))
	fn.Set("name", runtime.String(fn.FunctionName))
	if !node.IsArrow && !node.IsGenerator && !node.IsAsync {
		proto := runtime.NewObject(it.protos.object)
		proto.DefineOwnProperty(runtime.StringKey("constructor"), runtime.PropertyDescriptor{
			Value: runtime.Object_(fn), Writable: true, Configurable: true,
		})
		fn.DefineOwnProperty(runtime.StringKey("prototype"), runtime.PropertyDescriptor{
			Value: runtime.Object_(proto), Writable: true,
		})
	}
	switch {
	case node.IsGenerator:
		fn.Call = func(this Value, args []Value) (Value, error) { return it.callGenerator(fn, this, args) }
	case node.IsAsync:
		fn.Call = func(this Value, args []Value) (Value, error) { return it.callAsync(fn, this, args) }
	default:
		fn.Call = func(this Value, args []Value) (Value, error) { return it.callUser(fn, this, args, nil) }
		fn.Construct = func(args []Value, newTarget *Object) (Value, error) {
			return it.constructUser(fn, args, newTarget)
		}
	}
	return fn
}

func countDeclaredParams(params []ast.Pattern) int {
	n := 0
	for _, p := range params {
		switch p.(type) {
		case *ast.RestElement, *ast.AssignmentPattern:
			return n
		}
		n++
	}
	return n
}

// CallFunction is the single entry point for invoking any callable
// Object (user or native), converting a ThrownValue error into a Throw
// Completion and an ordinary Go error into a generic Error completion
// (spec.md §4.4.2).
func (it *Interp) CallFunction(fn *Object, this Value, args []Value) (Value, Completion) {
	if fn == nil || fn.Call == nil {
		return Undefined, it.throwType("value is not a function")
	}
	v, err := fn.Call(this, args)
	if err == nil {
		return v, normalC()
	}
	if tv, ok := err.(*ThrownValue); ok {
		return Undefined, throwC(tv.V)
	}
	return Undefined, it.asThrow(err)
}

// ConstructObject implements `new Target(...args)` (spec.md §4.2): native
// constructors use Construct directly; user functions build a fresh
// ordinary object linked to Target.prototype unless the body returns an
// object itself.
func (it *Interp) ConstructObject(target *Object, args []Value, newTarget *Object) (Value, Completion) {
	if target == nil || (target.Construct == nil && target.Call == nil) {
		return Undefined, it.throwType("value is not a constructor")
	}
	if target.Construct == nil {
		return Undefined, it.throwType("%s is not a constructor", target.FunctionName)
	}
	v, err := target.Construct(args, newTarget)
	if err != nil {
		if tv, ok := err.(*ThrownValue); ok {
			return Undefined, throwC(tv.V)
		}
		return Undefined, it.asThrow(err)
	}
	return v, normalC()
}

// closureOf recovers the AST/environment pair MakeFunction stashed on fn.
func closureOf(fn *Object) (*ast.FunctionLiteral, *Environment) {
	node, _ := fn.FuncNode.(*ast.FunctionLiteral)
	env, _ := fn.ClosureEnv.(*Environment)
	return node, env
}

// callUser executes a non-generator, non-async user function body,
// implementing the this-binding rules of spec.md §4.4.2: arrows inherit
// the lexical `this` (an arrow call gets a plain block frame with no
// ThisBinding, so NearestThis walks past it), plain calls get `this` as given by the
// caller (undefined in strict mode, left as-is here since ESGO always
// runs modules in strict mode per spec.md §4.8).
func (it *Interp) callUser(fn *Object, this Value, args []Value, newTarget *Object) (Value, error) {
	node, closureEnv := closureOf(fn)
	if node == nil {
		return Undefined, &runtime.TypeError{Message: "not a user function"}
	}
	frame := it.newCallFrame(fn, closureEnv, this, newTarget, node.IsArrow)
	if c := it.bindParams(frame, node.Params, args); c.IsAbrupt() {
		return Undefined, completionToErr(c)
	}
	if !node.IsArrow {
		frame.Arguments = it.makeArgumentsObject(args, fn)
		frame.DeclareVar("arguments", runtime.Object_(frame.Arguments))
	}
	if node.ArrowBody != nil {
		v, c := it.evalExpression(frame, node.ArrowBody)
		if c.IsAbrupt() {
			return Undefined, completionToErr(c)
		}
		return v, nil
	}
	c := it.execFunctionBody(frame, node.Body)
	switch c.Type {
	case CompletionReturn:
		return c.Value, nil
	case CompletionThrow:
		return Undefined, &ThrownValue{V: c.Value}
	default:
		return Undefined, nil
	}
}

// execFunctionBody runs a function's block body, implementing tail-call
// flattening (spec.md §4.4.3): a `return f(...)` whose call target
// resolves to another user function is iterated in this same Go stack
// frame via a trampoline instead of recursing, so a 200,000-deep
// strict-mode tail-recursive loop does not overflow the goroutine stack.
func (it *Interp) execFunctionBody(frame *Environment, body *ast.BlockStatement) Completion {
	for {
		it.hoistDeclarations(frame, body.Body)
		c := it.evalStatements(frame, body.Body)
		if c.Type != CompletionReturn || c.Tail == nil {
			return c
		}
		tc := c.Tail
		node, closureEnv := closureOf(tc.fn)
		if node == nil || node.IsArrow || node.ArrowBody != nil {
			v, err := tc.fn.Call(tc.this, tc.args)
			if err != nil {
				return it.asThrow(err)
			}
			return returnC(v)
		}
		frame = it.newCallFrame(tc.fn, closureEnv, tc.this, nil, false)
		if bc := it.bindParams(frame, node.Params, tc.args); bc.IsAbrupt() {
			return bc
		}
		frame.Arguments = it.makeArgumentsObject(tc.args, tc.fn)
		frame.DeclareVar("arguments", runtime.Object_(frame.Arguments))
		body = node.Body
	}
}

func (it *Interp) newCallFrame(fn *Object, closureEnv *Environment, this Value, newTarget *Object, isArrow bool) *Environment {
	if isArrow {
		return runtime.NewEnclosed(closureEnv)
	}
	return runtime.NewFunctionFrame(closureEnv, this, fn, newTarget)
}

// bindParams binds args into frame per node's parameter list, including
// rest params, default values, and destructuring (spec.md §4.2).
func (it *Interp) bindParams(frame *Environment, params []ast.Pattern, args []Value) Completion {
	i := 0
	for _, p := range params {
		if rest, ok := p.(*ast.RestElement); ok {
			var tail []Value
			if i < len(args) {
				tail = append(tail, args[i:]...)
			}
			arr := runtime.Object_(it.NewArray(tail))
			if c := it.bindPattern(frame, rest.Argument, arr, declareLetTarget); c.IsAbrupt() {
				return c
			}
			i = len(args)
			continue
		}
		var v Value = Undefined
		if i < len(args) {
			v = args[i]
		}
		if c := it.bindPattern(frame, p, v, declareLetTarget); c.IsAbrupt() {
			return c
		}
		i++
	}
	return normalC()
}

// makeArgumentsObject builds the array-like `arguments` object (spec.md
// §3 invariant 7): own indexed properties plus "length", not itself an
// exotic Array.
func (it *Interp) makeArgumentsObject(args []Value, callee *Object) *Object {
	o := runtime.NewObject(it.protos.object)
	o.InternalKind = runtime.KindArguments
	for i, a := range args {
		o.DefineOwnProperty(runtime.StringKey(runtime.NumberToString(float64(i))), runtime.DataProperty(a))
	}
	o.Set("length", runtime.Int(len(args)))
	o.DefineOwnProperty(runtime.SymbolKey(it.wellKnown("iterator")), runtime.PropertyDescriptor{
		Value: runtime.Object_(it.nativeFunc("[Symbol.iterator]", 0, func(this Value, _ []Value) (Value, error) {
			return runtime.Object_(it.newValueIterator(args)), nil
		})), Writable: true, Configurable: true,
	})
	_ = callee
	return o
}

// constructUser implements `new F(...)` for a user-defined function
// (spec.md §4.2): binds `this` to a fresh ordinary object linked to
// F.prototype (or Object.prototype if F.prototype isn't an object),
// unless the body itself returns an object.
func (it *Interp) constructUser(fn *Object, args []Value, newTarget *Object) (Value, error) {
	if fn.IsArrow || fn.IsGenerator || fn.IsAsync {
		return Undefined, &runtime.TypeError{Message: fn.FunctionName + " is not a constructor"}
	}
	target := newTarget
	if target == nil {
		target = fn
	}
	protoV, _ := target.GetOwnProperty(runtime.StringKey("prototype"))
	proto := it.protos.object
	if protoV.Value.IsObject() {
		proto = protoV.Value.Obj()
	}
	self := runtime.NewObject(proto)
	if fn.IsClassCtor {
		if c := it.initInstanceFields(self, fn); c != nil {
			return Undefined, c
		}
	}
	v, err := it.callUser(fn, runtime.Object_(self), args, target)
	if err != nil {
		return Undefined, err
	}
	if v.IsObject() {
		return v, nil
	}
	return runtime.Object_(self), nil
}

// nativeFunc builds a callable Object wrapping a plain Go closure, used
// throughout the built-in dispatcher (builtins_*.go) and for synthetic
// methods like `arguments[Symbol.iterator]`.
func (it *Interp) nativeFunc(name string, length int, call runtime.NativeFunc) *Object {
	fn := runtime.NewObject(it.protos.function)
	fn.InternalKind = runtime.KindFunction
	fn.FunctionName = name
	fn.Params = length
	fn.Call = call
	fn.Set("length", runtime.Int(length))
	fn.Set("name", runtime.String(name))
	return fn
}

func completionToErr(c Completion) error {
	if c.Type == CompletionThrow {
		return &ThrownValue{V: c.Value}
	}
	return nil
}
