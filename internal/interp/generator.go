package interp

import (
	"github.com/esgo-lang/esgo/internal/ast"
	"github.com/esgo-lang/esgo/internal/interp/runtime"
)

// genState is the coroutine controller for one generator object: the
// body runs on its own goroutine, blocked on resumeCh until the driver
// sends a resume message, and sends a single yieldMsg back on yieldCh
// for every `yield` and for the final return/throw (spec.md §4.6, Design
// Notes §9's "dedicated executor... synchronized via channels" strategy).
type genState struct {
	resumeCh chan resumeMsg
	yieldCh  chan yieldMsg
	started  bool
	done     bool
}

type resumeMsg struct {
	kind  string // "next", "return", "throw"
	value Value
}

type yieldMsg struct {
	value Value
	done  bool
	thrown *Value
}

// callGenerator builds the Generator object returned by calling a
// generator function; the body does not run until .next() is first
// called (spec.md §4.6).
func (it *Interp) callGenerator(fn *Object, this Value, args []Value) (Value, error) {
	node, closureEnv := closureOf(fn)
	if node == nil {
		return Undefined, &runtime.TypeError{Message: "not a generator function"}
	}
	gs := &genState{resumeCh: make(chan resumeMsg), yieldCh: make(chan yieldMsg)}
	gen := runtime.NewObject(it.protos.generator)
	gen.InternalKind = runtime.KindGenerator
	gen.Coroutine = gs

	frame := it.newCallFrame(fn, closureEnv, this, nil, false)
	frame.GenState = gs
	if c := it.bindParams(frame, node.Params, args); c.IsAbrupt() {
		return Undefined, completionToErr(c)
	}
	frame.Arguments = it.makeArgumentsObject(args, fn)
	frame.DeclareVar("arguments", runtime.Object_(frame.Arguments))

	go func() {
		first := <-gs.resumeCh
		if first.kind == "return" {
			gs.yieldCh <- yieldMsg{value: first.value, done: true}
			return
		}
		it.hoistDeclarations(frame, node.Body.Body)
		c := it.evalStatements(frame, node.Body.Body)
		switch c.Type {
		case CompletionReturn:
			gs.yieldCh <- yieldMsg{value: c.Value, done: true}
		case CompletionThrow:
			v := c.Value
			gs.yieldCh <- yieldMsg{thrown: &v, done: true}
		default:
			gs.yieldCh <- yieldMsg{value: Undefined, done: true}
		}
	}()

	gen.Set("next", runtime.Object_(it.nativeFunc("next", 1, func(_ Value, args []Value) (Value, error) {
		return it.resumeGenerator(gen, gs, "next", argOr(args, 0))
	})))
	gen.Set("return", runtime.Object_(it.nativeFunc("return", 1, func(_ Value, args []Value) (Value, error) {
		return it.resumeGenerator(gen, gs, "return", argOr(args, 0))
	})))
	gen.Set("throw", runtime.Object_(it.nativeFunc("throw", 1, func(_ Value, args []Value) (Value, error) {
		return it.resumeGenerator(gen, gs, "throw", argOr(args, 0))
	})))
	gen.DefineOwnProperty(runtime.SymbolKey(it.wellKnown("iterator")), runtime.PropertyDescriptor{
		Value: runtime.Object_(it.nativeFunc("[Symbol.iterator]", 0, func(this Value, _ []Value) (Value, error) {
			return this, nil
		})), Writable: true, Configurable: true,
	})
	return runtime.Object_(gen), nil
}

func argOr(args []Value, i int) Value {
	if i < len(args) {
		return args[i]
	}
	return Undefined
}

// resumeGenerator sends a resume message and blocks for the next yield
// or completion, building the standard {value, done} iterator result.
func (it *Interp) resumeGenerator(gen *Object, gs *genState, kind string, v Value) (Value, error) {
	if gs.done {
		if kind == "throw" {
			return Undefined, &ThrownValue{V: v}
		}
		if kind == "return" {
			return runtime.Object_(it.iterResult(v, true)), nil
		}
		return runtime.Object_(it.iterResult(Undefined, true)), nil
	}
	gs.started = true
	gs.resumeCh <- resumeMsg{kind: kind, value: v}
	msg := <-gs.yieldCh
	if msg.done {
		gs.done = true
	}
	if msg.thrown != nil {
		return Undefined, &ThrownValue{V: *msg.thrown}
	}
	return runtime.Object_(it.iterResult(msg.value, msg.done)), nil
}

func (it *Interp) iterResult(v Value, done bool) *Object {
	o := runtime.NewObject(it.protos.object)
	o.Set("value", v)
	o.Set("done", runtime.Bool(done))
	return o
}

// evalYield implements a `yield`/`yield*` expression by suspending the
// current generator goroutine: it sends the yielded value on yieldCh and
// blocks on resumeCh for the driver's next/return/throw (spec.md §4.6).
func (it *Interp) evalYield(env *Environment, node *ast.YieldExpression) (Value, Completion) {
	frame := nearestGenFrame(env)
	if frame == nil {
		return Undefined, it.throwSyntax("yield is only valid inside a generator function")
	}
	gs, ok := frame.GenState.(*genState)
	if !ok {
		return Undefined, it.throwSyntax("yield is only valid inside a generator function")
	}

	if node.Delegate {
		return it.evalYieldDelegate(env, node, gs)
	}

	var v Value = Undefined
	if node.Argument != nil {
		av, c := it.evalExpression(env, node.Argument)
		if c.IsAbrupt() {
			return Undefined, c
		}
		v = av
	}
	gs.yieldCh <- yieldMsg{value: v}
	resume := <-gs.resumeCh
	switch resume.kind {
	case "throw":
		return Undefined, throwC(resume.value)
	case "return":
		return Undefined, returnC(resume.value)
	default:
		return resume.value, normalC()
	}
}

// evalYieldDelegate implements `yield* iterable` by draining the inner
// iterator one step at a time, forwarding each value through this
// generator's own yield channel (spec.md §4.6).
func (it *Interp) evalYieldDelegate(env *Environment, node *ast.YieldExpression, gs *genState) (Value, Completion) {
	av, c := it.evalExpression(env, node.Argument)
	if c.IsAbrupt() {
		return Undefined, c
	}
	iter, c := it.GetIterator(av)
	if c.IsAbrupt() {
		return Undefined, c
	}
	var last Value = Undefined
	for {
		val, done, c := it.Next(iter)
		if c.IsAbrupt() {
			return Undefined, c
		}
		if done {
			last = val
			break
		}
		gs.yieldCh <- yieldMsg{value: val}
		resume := <-gs.resumeCh
		switch resume.kind {
		case "throw":
			it.Close(iter)
			return Undefined, throwC(resume.value)
		case "return":
			it.Close(iter)
			return Undefined, returnC(resume.value)
		}
	}
	return last, normalC()
}

// nearestGenFrame walks up to the function frame that owns the active
// generator coroutine (skipping nested non-generator arrow frames, which
// do not have their own GenState and lexically cannot contain a bare
// `yield` belonging to an outer generator, since arrows don't redefine
// generator-ness).
func nearestGenFrame(env *Environment) *Environment {
	for e := env; e != nil; e = e.Parent {
		if _, ok := e.GenState.(*genState); ok {
			return e
		}
	}
	return nil
}
