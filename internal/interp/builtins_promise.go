package interp

import "github.com/esgo-lang/esgo/internal/interp/runtime"

// setupPromiseBuiltins wires the Promise constructor, Promise.prototype
// (then/catch/finally), and the combinator statics (spec.md §4.6/§5),
// built atop the executor/reaction machinery in promise.go.
func (it *Interp) setupPromiseBuiltins() {
	proto := it.protos.promise

	it.method(proto, "then", 2, func(this Value, args []Value) (Value, error) {
		if !this.IsObject() || this.Obj().InternalKind != runtime.KindPromise {
			return Undefined, it.throwType("Promise.prototype.then called on incompatible receiver")
		}
		onFulfilled := callableOrNil(arg(args, 0))
		onRejected := callableOrNil(arg(args, 1))
		return runtime.Object_(it.ThenPromise(this.Obj(), onFulfilled, onRejected)), nil
	})
	it.method(proto, "catch", 1, func(this Value, args []Value) (Value, error) {
		if !this.IsObject() || this.Obj().InternalKind != runtime.KindPromise {
			return Undefined, it.throwType("Promise.prototype.catch called on incompatible receiver")
		}
		return runtime.Object_(it.ThenPromise(this.Obj(), nil, callableOrNil(arg(args, 0)))), nil
	})
	it.method(proto, "finally", 1, func(this Value, args []Value) (Value, error) {
		if !this.IsObject() || this.Obj().InternalKind != runtime.KindPromise {
			return Undefined, it.throwType("Promise.prototype.finally called on incompatible receiver")
		}
		fn := callableOrNil(arg(args, 0))
		if fn == nil {
			return runtime.Object_(it.ThenPromise(this.Obj(), nil, nil)), nil
		}
		onFulfilled := it.nativeFunc("", 1, func(_ Value, cargs []Value) (Value, error) {
			v, c := it.CallFunction(fn, Undefined, nil)
			if c.IsAbrupt() {
				return Undefined, completionToErr(c)
			}
			_ = v
			return argOr(cargs, 0), nil
		})
		onRejected := it.nativeFunc("", 1, func(_ Value, cargs []Value) (Value, error) {
			v, c := it.CallFunction(fn, Undefined, nil)
			if c.IsAbrupt() {
				return Undefined, completionToErr(c)
			}
			_ = v
			return Undefined, &ThrownValue{V: argOr(cargs, 0)}
		})
		return runtime.Object_(it.ThenPromise(this.Obj(), onFulfilled, onRejected)), nil
	})

	ctorObj := it.ctor("Promise", 1, proto, func(args []Value, newTarget *Object) (Value, error) {
		if newTarget == nil {
			return Undefined, it.throwType("Promise constructor cannot be invoked without 'new'")
		}
		executor := arg(args, 0)
		if !executor.IsObject() || !executor.IsCallable() {
			return Undefined, it.throwType("Promise resolver %s is not a function", Inspect(executor))
		}
		p := it.NewPromise()
		resolveFn := it.nativeFunc("", 1, func(_ Value, rargs []Value) (Value, error) {
			it.ResolvePromise(p, argOr(rargs, 0))
			return Undefined, nil
		})
		rejectFn := it.nativeFunc("", 1, func(_ Value, rargs []Value) (Value, error) {
			it.RejectPromise(p, argOr(rargs, 0))
			return Undefined, nil
		})
		_, c := it.CallFunction(executor.Obj(), Undefined, []Value{runtime.Object_(resolveFn), runtime.Object_(rejectFn)})
		if c.Type == CompletionThrow {
			it.RejectPromise(p, c.Value)
		} else if c.IsAbrupt() {
			return Undefined, completionToErr(c)
		}
		return runtime.Object_(p), nil
	})

	it.method(ctorObj, "resolve", 1, func(_ Value, args []Value) (Value, error) {
		v := arg(args, 0)
		if v.IsObject() && v.Obj().InternalKind == runtime.KindPromise {
			return v, nil
		}
		p := it.NewPromise()
		it.ResolvePromise(p, v)
		return runtime.Object_(p), nil
	})
	it.method(ctorObj, "reject", 1, func(_ Value, args []Value) (Value, error) {
		p := it.NewPromise()
		it.RejectPromise(p, arg(args, 0))
		return runtime.Object_(p), nil
	})

	it.method(ctorObj, "all", 1, func(_ Value, args []Value) (Value, error) {
		items, c := it.IterateAll(arg(args, 0))
		if c.IsAbrupt() {
			return Undefined, completionToErr(c)
		}
		result := it.NewPromise()
		n := len(items)
		if n == 0 {
			it.ResolvePromise(result, runtime.Object_(it.NewArray(nil)))
			return runtime.Object_(result), nil
		}
		values := make([]Value, n)
		remaining := n
		for i, item := range items {
			idx := i
			it.attachResolution(item, func(v Value) {
				values[idx] = v
				remaining--
				if remaining == 0 {
					it.ResolvePromise(result, runtime.Object_(it.NewArray(values)))
				}
			}, func(reason Value) {
				it.RejectPromise(result, reason)
			})
		}
		return runtime.Object_(result), nil
	})

	it.method(ctorObj, "allSettled", 1, func(_ Value, args []Value) (Value, error) {
		items, c := it.IterateAll(arg(args, 0))
		if c.IsAbrupt() {
			return Undefined, completionToErr(c)
		}
		result := it.NewPromise()
		n := len(items)
		if n == 0 {
			it.ResolvePromise(result, runtime.Object_(it.NewArray(nil)))
			return runtime.Object_(result), nil
		}
		values := make([]Value, n)
		remaining := n
		for i, item := range items {
			idx := i
			it.attachResolution(item, func(v Value) {
				rec := runtime.NewObject(it.protos.object)
				rec.Set("status", runtime.String("fulfilled"))
				rec.Set("value", v)
				values[idx] = runtime.Object_(rec)
				remaining--
				if remaining == 0 {
					it.ResolvePromise(result, runtime.Object_(it.NewArray(values)))
				}
			}, func(reason Value) {
				rec := runtime.NewObject(it.protos.object)
				rec.Set("status", runtime.String("rejected"))
				rec.Set("reason", reason)
				values[idx] = runtime.Object_(rec)
				remaining--
				if remaining == 0 {
					it.ResolvePromise(result, runtime.Object_(it.NewArray(values)))
				}
			})
		}
		return runtime.Object_(result), nil
	})

	it.method(ctorObj, "race", 1, func(_ Value, args []Value) (Value, error) {
		items, c := it.IterateAll(arg(args, 0))
		if c.IsAbrupt() {
			return Undefined, completionToErr(c)
		}
		result := it.NewPromise()
		for _, item := range items {
			it.attachResolution(item, func(v Value) {
				it.ResolvePromise(result, v)
			}, func(reason Value) {
				it.RejectPromise(result, reason)
			})
		}
		return runtime.Object_(result), nil
	})

	it.method(ctorObj, "any", 1, func(_ Value, args []Value) (Value, error) {
		items, c := it.IterateAll(arg(args, 0))
		if c.IsAbrupt() {
			return Undefined, completionToErr(c)
		}
		result := it.NewPromise()
		n := len(items)
		if n == 0 {
			agg := it.newError("AggregateError", "All promises were rejected")
			agg.Obj().Set("errors", runtime.Object_(it.NewArray(nil)))
			it.RejectPromise(result, agg)
			return runtime.Object_(result), nil
		}
		errs := make([]Value, n)
		remaining := n
		for i, item := range items {
			idx := i
			it.attachResolution(item, func(v Value) {
				it.ResolvePromise(result, v)
			}, func(reason Value) {
				errs[idx] = reason
				remaining--
				if remaining == 0 {
					agg := it.newError("AggregateError", "All promises were rejected")
					agg.Obj().Set("errors", runtime.Object_(it.NewArray(errs)))
					it.RejectPromise(result, agg)
				}
			})
		}
		return runtime.Object_(result), nil
	})

	it.defineGlobal("Promise", runtime.Object_(ctorObj))
}

func callableOrNil(v Value) *Object {
	if v.IsObject() && v.IsCallable() {
		return v.Obj()
	}
	return nil
}

// attachResolution coerces v into a promise via Promise.resolve
// semantics and schedules onFulfilled/onRejected against its eventual
// settlement, used by the Promise.all/allSettled/race/any combinators.
func (it *Interp) attachResolution(v Value, onFulfilled func(Value), onRejected func(Value)) {
	var p *Object
	if v.IsObject() && v.Obj().InternalKind == runtime.KindPromise {
		p = v.Obj()
	} else {
		p = it.NewPromise()
		it.ResolvePromise(p, v)
	}
	fulfillFn := it.nativeFunc("", 1, func(_ Value, args []Value) (Value, error) {
		onFulfilled(argOr(args, 0))
		return Undefined, nil
	})
	rejectFn := it.nativeFunc("", 1, func(_ Value, args []Value) (Value, error) {
		onRejected(argOr(args, 0))
		return Undefined, nil
	})
	it.ThenPromise(p, fulfillFn, rejectFn)
}
