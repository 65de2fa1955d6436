package interp

import "github.com/esgo-lang/esgo/internal/interp/runtime"

// setupErrorBuiltins wires Error.prototype and the Error constructor
// family (spec.md §4.5's exception taxonomy): TypeError, RangeError,
// ReferenceError, SyntaxError, EvalError, URIError, AggregateError, each
// sharing Error.prototype's toString but with their own prototype
// object so `instanceof TypeError` discriminates correctly.
func (it *Interp) setupErrorBuiltins() {
	proto := it.protos.errorProto
	proto.Set("name", runtime.String("Error"))
	proto.Set("message", runtime.String(""))
	it.method(proto, "toString", 0, func(this Value, _ []Value) (Value, error) {
		o := this.Obj()
		name := "Error"
		if nv, c := it.GetProperty(this, o, runtime.StringKey("name")); !c.IsAbrupt() && !nv.IsUndefined() {
			name = it.ToStringValue(nv)
		}
		msg := ""
		if mv, c := it.GetProperty(this, o, runtime.StringKey("message")); !c.IsAbrupt() && !mv.IsUndefined() {
			msg = it.ToStringValue(mv)
		}
		if msg == "" {
			return runtime.String(name), nil
		}
		if name == "" {
			return runtime.String(msg), nil
		}
		return runtime.String(name + ": " + msg), nil
	})

	errCtor := it.errorConstructor("Error", proto)
	it.defineGlobal("Error", runtime.Object_(errCtor))

	register := func(name string, protoObj *Object) {
		protoObj.Set("name", runtime.String(name))
		protoObj.Set("message", runtime.String(""))
		ctorObj := it.errorConstructor(name, protoObj)
		ctorObj.Prototype = errCtor
		it.defineGlobal(name, runtime.Object_(ctorObj))
	}
	register("TypeError", it.protos.typeError)
	register("RangeError", it.protos.rangeError)
	register("ReferenceError", it.protos.referenceError)
	register("SyntaxError", it.protos.syntaxError)
	register("EvalError", it.protos.evalError)
	register("URIError", it.protos.uriError)

	aggProto := it.protos.aggregateError
	aggProto.Set("name", runtime.String("AggregateError"))
	aggProto.Set("message", runtime.String(""))
	aggCtor := it.ctor("AggregateError", 2, aggProto, func(args []Value, newTarget *Object) (Value, error) {
		errs, c := it.IterateAll(arg(args, 0))
		if c.IsAbrupt() {
			return Undefined, completionToErr(c)
		}
		proto := aggProto
		if newTarget != nil {
			if pv, ok := newTarget.GetOwnProperty(runtime.StringKey("prototype")); ok && pv.Value.IsObject() {
				proto = pv.Value.Obj()
			}
		}
		o := runtime.NewObject(proto)
		o.InternalKind = runtime.KindError
		o.ErrorName = "AggregateError"
		if msg := arg(args, 1); !msg.IsUndefined() {
			o.ErrorMessage = it.ToStringValue(msg)
			o.Set("message", runtime.String(o.ErrorMessage))
		}
		o.Set("name", runtime.String("AggregateError"))
		o.Set("stack", runtime.String("AggregateError: "+o.ErrorMessage))
		o.Set("errors", runtime.Object_(it.NewArray(errs)))
		return runtime.Object_(o), nil
	})
	aggCtor.Prototype = errCtor
	it.defineGlobal("AggregateError", runtime.Object_(aggCtor))
}

// errorConstructor builds one Error-family constructor: `new Name(msg,
// {cause})` creates an Error-kind object off proto, capturing `message`
// and an optional ES2022 `cause` (spec.md §4.5).
func (it *Interp) errorConstructor(name string, proto *Object) *Object {
	return it.ctor(name, 1, proto, func(args []Value, newTarget *Object) (Value, error) {
		target := proto
		if newTarget != nil {
			if pv, ok := newTarget.GetOwnProperty(runtime.StringKey("prototype")); ok && pv.Value.IsObject() {
				target = pv.Value.Obj()
			}
		}
		o := runtime.NewObject(target)
		o.InternalKind = runtime.KindError
		o.ErrorName = name
		if msg := arg(args, 0); !msg.IsUndefined() {
			o.ErrorMessage = it.ToStringValue(msg)
			o.Set("message", runtime.String(o.ErrorMessage))
		}
		o.Set("stack", runtime.String(name+": "+o.ErrorMessage))
		if opts := arg(args, 1); opts.IsObject() {
			if cause, c := it.GetProperty(opts, opts.Obj(), runtime.StringKey("cause")); !c.IsAbrupt() {
				if _, ok := opts.Obj().GetOwnProperty(runtime.StringKey("cause")); ok {
					o.Set("cause", cause)
				}
			}
		}
		return runtime.Object_(o), nil
	})
}
