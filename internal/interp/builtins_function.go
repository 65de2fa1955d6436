package interp

import "github.com/esgo-lang/esgo/internal/interp/runtime"

// setupFunctionBuiltins wires Function.prototype's call/apply/bind
// (spec.md §4.4.2) and the Function constructor stub.
func (it *Interp) setupFunctionBuiltins() {
	proto := it.protos.function

	it.method(proto, "call", 1, func(this Value, args []Value) (Value, error) {
		if !this.IsCallable() {
			return Undefined, it.throwErr("TypeError", "not a function")
		}
		v, c := it.CallFunction(this.Obj(), arg(args, 0), restArgs(args, 1))
		return v, completionToErr(c)
	})
	it.method(proto, "apply", 2, func(this Value, args []Value) (Value, error) {
		if !this.IsCallable() {
			return Undefined, it.throwErr("TypeError", "not a function")
		}
		var callArgs []Value
		if av := arg(args, 1); !av.IsNullish() {
			if !av.IsObject() {
				return Undefined, it.throwErr("TypeError", "CreateListFromArrayLike called on non-object")
			}
			o := av.Obj()
			lenV, c := it.GetProperty(av, o, runtime.StringKey("length"))
			if c.IsAbrupt() {
				return Undefined, completionToErr(c)
			}
			n := int(it.ToNumber(lenV))
			callArgs = make([]Value, n)
			for i := 0; i < n; i++ {
				callArgs[i], c = it.GetProperty(av, o, runtime.StringKey(runtime.NumberToString(float64(i))))
				if c.IsAbrupt() {
					return Undefined, completionToErr(c)
				}
			}
		}
		v, c := it.CallFunction(this.Obj(), arg(args, 0), callArgs)
		return v, completionToErr(c)
	})
	it.method(proto, "bind", 1, func(this Value, args []Value) (Value, error) {
		if !this.IsCallable() {
			return Undefined, it.throwErr("TypeError", "not a function")
		}
		target := this.Obj()
		boundThis := arg(args, 0)
		boundArgs := restArgs(args, 1)
		name := "bound " + target.FunctionName
		length := target.Params - len(boundArgs)
		if length < 0 {
			length = 0
		}
		bound := it.nativeFunc(name, length, func(_ Value, callArgs []Value) (Value, error) {
			v, c := it.CallFunction(target, boundThis, append(append([]Value{}, boundArgs...), callArgs...))
			return v, completionToErr(c)
		})
		bound.InternalKind = runtime.KindBoundFunction
		bound.BoundTarget = target
		bound.BoundThis = boundThis
		bound.BoundArgs = boundArgs
		if target.Construct != nil {
			bound.Construct = func(callArgs []Value, newTarget *Object) (Value, error) {
				return it.ConstructObjectErr(target, append(append([]Value{}, boundArgs...), callArgs...), newTarget)
			}
		}
		return runtime.Object_(bound), nil
	})
	it.method(proto, "toString", 0, func(this Value, _ []Value) (Value, error) {
		if !this.IsObject() {
			return Undefined, it.throwErr("TypeError", "not a function")
		}
		name := this.Obj().FunctionName
		if this.Obj().Call == nil {
			return runtime.String("function " + name + "() { [not a function] }"), nil
		}
		if node, _ := closureOf(this.Obj()); node != nil {
			return runtime.String(node.String()), nil
		}
		return runtime.String("function " + name + "() { [native code] }"), nil
	})
	it.symbolMethod(proto, it.wellKnown("hasInstance"), "[Symbol.hasInstance]", 1, func(this Value, args []Value) (Value, error) {
		ok, c := it.OrdinaryHasInstance(this, arg(args, 0))
		return runtime.Bool(ok), completionToErr(c)
	})

	ctorObj := it.ctor("Function", 1, proto, func(args []Value, _ *Object) (Value, error) {
		return Undefined, it.throwErr("TypeError", "Function constructor is not supported from source text")
	})
	it.defineGlobal("Function", runtime.Object_(ctorObj))
}

func restArgs(args []Value, from int) []Value {
	if from >= len(args) {
		return nil
	}
	return append([]Value{}, args[from:]...)
}

// ConstructObjectErr adapts ConstructObject's Completion return to the
// plain-error shape expected inside a Construct closure.
func (it *Interp) ConstructObjectErr(target *Object, args []Value, newTarget *Object) (Value, error) {
	v, c := it.ConstructObject(target, args, newTarget)
	return v, completionToErr(c)
}

// OrdinaryHasInstance implements `instanceof`'s default algorithm,
// shared by the `instanceof` operator (operators.go) and
// Function.prototype[Symbol.hasInstance].
func (it *Interp) OrdinaryHasInstance(ctorV, v Value) (bool, Completion) {
	if !ctorV.IsCallable() {
		return false, normalC()
	}
	ctor := ctorV.Obj()
	if ctor.InternalKind == runtime.KindBoundFunction {
		return it.OrdinaryHasInstance(runtime.Object_(ctor.BoundTarget), v)
	}
	if !v.IsObject() {
		return false, normalC()
	}
	protoV, _ := ctor.GetOwnProperty(runtime.StringKey("prototype"))
	if !protoV.Value.IsObject() {
		return false, it.throwType("Function has non-object prototype in instanceof check")
	}
	proto := protoV.Value.Obj()
	for cur := v.Obj().Prototype; cur != nil; cur = cur.Prototype {
		if cur == proto {
			return true, normalC()
		}
	}
	return false, normalC()
}
