package interp

import "github.com/esgo-lang/esgo/internal/interp/runtime"

// NewPromise creates a pending Promise object (spec.md §4.6/§5).
func (it *Interp) NewPromise() *Object {
	p := runtime.NewObject(it.protos.promise)
	p.InternalKind = runtime.KindPromise
	p.PromiseState = "pending"
	return p
}

// ResolvePromise settles p as fulfilled with v, unless v is itself a
// thenable, in which case p adopts its eventual state (spec.md §5's
// microtask-scheduled settlement).
func (it *Interp) ResolvePromise(p *Object, v Value) {
	if p.PromiseState != "pending" {
		return
	}
	if v.IsObject() && v.Obj() != p {
		then, c := it.GetProperty(v, v.Obj(), runtime.StringKey("then"))
		if !c.IsAbrupt() && then.IsObject() && then.Obj().Call != nil {
			thenFn := then.Obj()
			it.scheduler.EnqueueMicrotask(func() {
				resolveFn := it.nativeFunc("", 1, func(_ Value, args []Value) (Value, error) {
					it.ResolvePromise(p, argOr(args, 0))
					return Undefined, nil
				})
				rejectFn := it.nativeFunc("", 1, func(_ Value, args []Value) (Value, error) {
					it.RejectPromise(p, argOr(args, 0))
					return Undefined, nil
				})
				_, c := it.CallFunction(thenFn, v, []Value{runtime.Object_(resolveFn), runtime.Object_(rejectFn)})
				if c.Type == CompletionThrow {
					it.RejectPromise(p, c.Value)
				}
			})
			return
		}
	}
	p.PromiseState = "fulfilled"
	p.PromiseValue = v
	it.schedulePromiseReactions(p)
}

func (it *Interp) RejectPromise(p *Object, v Value) {
	if p.PromiseState != "pending" {
		return
	}
	p.PromiseState = "rejected"
	p.PromiseValue = v
	it.schedulePromiseReactions(p)
}

func (it *Interp) schedulePromiseReactions(p *Object) {
	reactions := p.PromiseReactions
	p.PromiseReactions = nil
	for _, r := range reactions {
		it.runReaction(p, r)
	}
}

func (it *Interp) runReaction(p *Object, r runtime.PromiseReaction) {
	it.scheduler.EnqueueMicrotask(func() {
		var handler *Object
		if p.PromiseState == "fulfilled" {
			handler = r.OnFulfilled
		} else {
			handler = r.OnRejected
		}
		if handler == nil {
			if p.PromiseState == "fulfilled" {
				it.ResolvePromise(r.ResultCap, p.PromiseValue)
			} else {
				it.RejectPromise(r.ResultCap, p.PromiseValue)
			}
			return
		}
		v, c := it.CallFunction(handler, Undefined, []Value{p.PromiseValue})
		if c.Type == CompletionThrow {
			it.RejectPromise(r.ResultCap, c.Value)
			return
		}
		it.ResolvePromise(r.ResultCap, v)
	})
}

// ThenPromise implements Promise.prototype.then (spec.md §4.6), returning
// the derived promise.
func (it *Interp) ThenPromise(p *Object, onFulfilled, onRejected *Object) *Object {
	result := it.NewPromise()
	r := runtime.PromiseReaction{OnFulfilled: onFulfilled, OnRejected: onRejected, ResultCap: result}
	if p.PromiseState == "pending" {
		p.PromiseReactions = append(p.PromiseReactions, r)
	} else {
		it.runReaction(p, r)
	}
	return result
}
