package interp

import "github.com/esgo-lang/esgo/internal/interp/runtime"

// asyncMsg is what an async function body goroutine sends back to the
// driver: either "I'm awaiting this value, resume me when it settles" or
// "I'm done, here's the return/throw".
type asyncMsg struct {
	awaiting *Value
	done     bool
	value    Value
	thrown   *Value
}

type asyncState struct {
	resumeCh chan resumeMsg
	outCh    chan asyncMsg
}

// callAsync implements an async function call (spec.md §4.6): runs the
// body on its own goroutine so `await` can suspend it, and returns a
// pending Promise synchronously, settled once the body completes.
func (it *Interp) callAsync(fn *Object, this Value, args []Value) (Value, error) {
	node, closureEnv := closureOf(fn)
	if node == nil {
		return Undefined, &runtime.TypeError{Message: "not an async function"}
	}
	as := &asyncState{resumeCh: make(chan resumeMsg), outCh: make(chan asyncMsg)}
	result := it.NewPromise()

	frame := it.newCallFrame(fn, closureEnv, this, nil, node.IsArrow)
	frame.GenState = as
	if c := it.bindParams(frame, node.Params, args); c.IsAbrupt() {
		it.RejectPromise(result, it.asThrow(completionToErr(c)).Value)
		return runtime.Object_(result), nil
	}
	if !node.IsArrow {
		frame.Arguments = it.makeArgumentsObject(args, fn)
		frame.DeclareVar("arguments", runtime.Object_(frame.Arguments))
	}

	go func() {
		<-as.resumeCh
		if node.ArrowBody != nil {
			v, c := it.evalExpression(frame, node.ArrowBody)
			if c.Type == CompletionThrow {
				as.outCh <- asyncMsg{done: true, thrown: &c.Value}
				return
			}
			as.outCh <- asyncMsg{done: true, value: v}
			return
		}
		it.hoistDeclarations(frame, node.Body.Body)
		c := it.evalStatements(frame, node.Body.Body)
		switch c.Type {
		case CompletionReturn:
			as.outCh <- asyncMsg{done: true, value: c.Value}
		case CompletionThrow:
			v := c.Value
			as.outCh <- asyncMsg{done: true, thrown: &v}
		default:
			as.outCh <- asyncMsg{done: true, value: Undefined}
		}
	}()

	as.resumeCh <- resumeMsg{kind: "next"}
	it.driveAsync(as, result)
	return runtime.Object_(result), nil
}

// driveAsync reads exactly one message from the body goroutine: either it
// finished (settle the promise) or it's awaiting a value (register a
// reaction that resumes the goroutine and calls driveAsync again once the
// awaited value settles). It never blocks past that single receive, so
// the enclosing call returns the pending promise immediately, as
// required by spec.md §5.
func (it *Interp) driveAsync(as *asyncState, result *Object) {
	msg := <-as.outCh
	if msg.done {
		if msg.thrown != nil {
			it.RejectPromise(result, *msg.thrown)
		} else {
			it.ResolvePromise(result, msg.value)
		}
		return
	}
	awaited := *msg.awaiting
	p := it.PromiseOf(awaited)
	onSettled := func(kind string, v Value) {
		it.scheduler.EnqueueMicrotask(func() {
			as.resumeCh <- resumeMsg{kind: kind, value: v}
			it.driveAsync(as, result)
		})
	}
	it.ThenPromise(p,
		it.nativeFunc("", 1, func(_ Value, args []Value) (Value, error) {
			onSettled("next", argOr(args, 0))
			return Undefined, nil
		}),
		it.nativeFunc("", 1, func(_ Value, args []Value) (Value, error) {
			onSettled("throw", argOr(args, 0))
			return Undefined, nil
		}),
	)
}

// PromiseOf wraps any value as a (possibly already-settled) promise,
// implementing Promise.resolve's coercion used by `await` (spec.md §4.6).
func (it *Interp) PromiseOf(v Value) *Object {
	if v.IsObject() && v.Obj().InternalKind == runtime.KindPromise {
		return v.Obj()
	}
	p := it.NewPromise()
	it.ResolvePromise(p, v)
	return p
}

// evalAwaitExpr implements an `await` expression by suspending the
// current async function's goroutine (spec.md §4.6); top-level await
// (module frames have no GenState) instead drains the scheduler's queues
// one unit at a time until the awaited value settles, since a module
// evaluation has no enclosing coroutine to suspend (spec.md §4.8's
// top-level-await contract: "its evaluation returns a promise").
func (it *Interp) evalAwaitExpr(env *Environment, arg Value) (Value, Completion) {
	frame := nearestAsyncFrame(env)
	if frame == nil {
		return it.awaitTopLevel(arg)
	}
	as := frame.GenState.(*asyncState)
	as.outCh <- asyncMsg{awaiting: &arg}
	resume := <-as.resumeCh
	if resume.kind == "throw" {
		return Undefined, throwC(resume.value)
	}
	return resume.value, normalC()
}

func (it *Interp) awaitTopLevel(arg Value) (Value, Completion) {
	p := it.PromiseOf(arg)
	for p.PromiseState == "pending" {
		if !it.scheduler.RunOne() {
			break
		}
	}
	if p.PromiseState == "rejected" {
		return Undefined, throwC(p.PromiseValue)
	}
	if p.PromiseState == "fulfilled" {
		return p.PromiseValue, normalC()
	}
	return Undefined, normalC()
}

func nearestAsyncFrame(env *Environment) *Environment {
	for e := env; e != nil; e = e.Parent {
		if _, ok := e.GenState.(*asyncState); ok {
			return e
		}
	}
	return nil
}
