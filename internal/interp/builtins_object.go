package interp

import (
	"sort"

	"github.com/esgo-lang/esgo/internal/interp/runtime"
)

// setupObjectBuiltins wires the Object constructor and
// Object.prototype (spec.md §3/§4.4.6): property enumeration,
// descriptor introspection, prototype chain manipulation.
func (it *Interp) setupObjectBuiltins() {
	proto := it.protos.object

	it.method(proto, "hasOwnProperty", 1, func(this Value, args []Value) (Value, error) {
		o, err := it.toObjectErr(this)
		if err != nil {
			return Undefined, err
		}
		_, ok := o.GetOwnProperty(it.ToPropertyKey(arg(args, 0)))
		return runtime.Bool(ok), nil
	})
	it.method(proto, "isPrototypeOf", 1, func(this Value, args []Value) (Value, error) {
		o, err := it.toObjectErr(this)
		if err != nil {
			return Undefined, err
		}
		v := arg(args, 0)
		if !v.IsObject() {
			return runtime.False, nil
		}
		for cur := v.Obj().Prototype; cur != nil; cur = cur.Prototype {
			if cur == o {
				return runtime.True, nil
			}
		}
		return runtime.False, nil
	})
	it.method(proto, "propertyIsEnumerable", 1, func(this Value, args []Value) (Value, error) {
		o, err := it.toObjectErr(this)
		if err != nil {
			return Undefined, err
		}
		pd, ok := o.GetOwnProperty(it.ToPropertyKey(arg(args, 0)))
		return runtime.Bool(ok && pd.Enumerable), nil
	})
	it.method(proto, "toString", 0, func(this Value, _ []Value) (Value, error) {
		if this.IsNullish() {
			tag := "Undefined"
			if this.IsNull() {
				tag = "Null"
			}
			return runtime.String("[object " + tag + "]"), nil
		}
		o, _ := it.toObjectErr(this)
		tag := "Object"
		switch o.InternalKind {
		case runtime.KindArray:
			tag = "Array"
		case runtime.KindFunction, runtime.KindBoundFunction:
			tag = "Function"
		case runtime.KindError:
			tag = "Error"
		case runtime.KindDate:
			tag = "Date"
		case runtime.KindRegex:
			tag = "RegExp"
		}
		if tagV, c := it.GetProperty(this, o, runtime.SymbolKey(it.wellKnown("toStringTag"))); !c.IsAbrupt() && tagV.IsString() {
			tag = tagV.Str()
		}
		return runtime.String("[object " + tag + "]"), nil
	})
	it.method(proto, "toLocaleString", 0, func(this Value, args []Value) (Value, error) {
		f, c := it.GetProperty(this, this.Obj(), runtime.StringKey("toString"))
		if c.IsAbrupt() || !f.IsObject() {
			return runtime.String(Inspect(this)), nil
		}
		v, c2 := it.CallFunction(f.Obj(), this, nil)
		if c2.IsAbrupt() {
			return Undefined, completionToErr(c2)
		}
		return v, nil
	})
	it.method(proto, "valueOf", 0, func(this Value, _ []Value) (Value, error) { return this, nil })

	it.getter(proto, "__proto__", func(this Value, _ []Value) (Value, error) {
		o, err := it.toObjectErr(this)
		if err != nil {
			return Undefined, err
		}
		if o.Prototype == nil {
			return Null, nil
		}
		return runtime.Object_(o.Prototype), nil
	})
	proto.DefineOwnProperty(runtime.StringKey("__proto__"), runtime.PropertyDescriptor{
		IsAccessor: true,
		Get: it.nativeFunc("get __proto__", 0, func(this Value, _ []Value) (Value, error) {
			o, err := it.toObjectErr(this)
			if err != nil {
				return Undefined, err
			}
			if o.Prototype == nil {
				return Null, nil
			}
			return runtime.Object_(o.Prototype), nil
		}),
		Set: it.nativeFunc("set __proto__", 1, func(this Value, args []Value) (Value, error) {
			o, err := it.toObjectErr(this)
			if err != nil {
				return Undefined, err
			}
			v := arg(args, 0)
			if v.IsObject() {
				o.Prototype = v.Obj()
			} else if v.IsNull() {
				o.Prototype = nil
			}
			return Undefined, nil
		}),
		Configurable: true,
	})

	ctorObj := it.ctor("Object", 1, proto, func(args []Value, newTarget *Object) (Value, error) {
		v := arg(args, 0)
		if v.IsNullish() || len(args) == 0 {
			return runtime.Object_(runtime.NewObject(proto)), nil
		}
		if v.IsObject() {
			return v, nil
		}
		return runtime.Object_(it.toWrapperObject(v)), nil
	})

	it.method(ctorObj, "keys", 1, func(_ Value, args []Value) (Value, error) {
		o, err := it.toObjectErr(arg(args, 0))
		if err != nil {
			return Undefined, err
		}
		var out []Value
		for _, k := range o.OwnKeys() {
			if k.IsSymbol {
				continue
			}
			if pd, _ := o.GetOwnProperty(k); pd.Enumerable {
				out = append(out, runtime.String(k.Str))
			}
		}
		return runtime.Object_(it.NewArray(out)), nil
	})
	it.method(ctorObj, "values", 1, func(_ Value, args []Value) (Value, error) {
		o, err := it.toObjectErr(arg(args, 0))
		if err != nil {
			return Undefined, err
		}
		var out []Value
		for _, k := range o.OwnKeys() {
			if k.IsSymbol {
				continue
			}
			pd, ok := o.GetOwnProperty(k)
			if !ok || !pd.Enumerable {
				continue
			}
			v, c := it.GetProperty(runtime.Object_(o), o, k)
			if c.IsAbrupt() {
				return Undefined, completionToErr(c)
			}
			out = append(out, v)
		}
		return runtime.Object_(it.NewArray(out)), nil
	})
	it.method(ctorObj, "entries", 1, func(_ Value, args []Value) (Value, error) {
		o, err := it.toObjectErr(arg(args, 0))
		if err != nil {
			return Undefined, err
		}
		var out []Value
		for _, k := range o.OwnKeys() {
			if k.IsSymbol {
				continue
			}
			pd, ok := o.GetOwnProperty(k)
			if !ok || !pd.Enumerable {
				continue
			}
			v, c := it.GetProperty(runtime.Object_(o), o, k)
			if c.IsAbrupt() {
				return Undefined, completionToErr(c)
			}
			out = append(out, runtime.Object_(it.NewArray([]Value{runtime.String(k.Str), v})))
		}
		return runtime.Object_(it.NewArray(out)), nil
	})
	it.method(ctorObj, "assign", 2, func(_ Value, args []Value) (Value, error) {
		if len(args) == 0 {
			return Undefined, it.throwErr("TypeError", "Object.assign requires a target")
		}
		target, err := it.toObjectErr(args[0])
		if err != nil {
			return Undefined, err
		}
		for _, src := range args[1:] {
			if src.IsNullish() {
				continue
			}
			so, serr := it.toObjectErr(src)
			if serr != nil {
				continue
			}
			for _, k := range so.OwnKeys() {
				pd, ok := so.GetOwnProperty(k)
				if !ok || !pd.Enumerable {
					continue
				}
				v, c := it.GetProperty(src, so, k)
				if c.IsAbrupt() {
					return Undefined, completionToErr(c)
				}
				if c := it.SetProperty(runtime.Object_(target), target, k, v); c.IsAbrupt() {
					return Undefined, completionToErr(c)
				}
			}
		}
		return runtime.Object_(target), nil
	})
	it.method(ctorObj, "freeze", 1, func(_ Value, args []Value) (Value, error) {
		v := arg(args, 0)
		if v.IsObject() {
			v.Obj().Frozen = true
			v.Obj().Sealed = true
			v.Obj().Extensible = false
		}
		return v, nil
	})
	it.method(ctorObj, "isFrozen", 1, func(_ Value, args []Value) (Value, error) {
		v := arg(args, 0)
		return runtime.Bool(!v.IsObject() || v.Obj().Frozen), nil
	})
	it.method(ctorObj, "seal", 1, func(_ Value, args []Value) (Value, error) {
		v := arg(args, 0)
		if v.IsObject() {
			v.Obj().Sealed = true
			v.Obj().Extensible = false
		}
		return v, nil
	})
	it.method(ctorObj, "isSealed", 1, func(_ Value, args []Value) (Value, error) {
		v := arg(args, 0)
		return runtime.Bool(!v.IsObject() || v.Obj().Sealed), nil
	})
	it.method(ctorObj, "preventExtensions", 1, func(_ Value, args []Value) (Value, error) {
		v := arg(args, 0)
		if v.IsObject() {
			v.Obj().Extensible = false
		}
		return v, nil
	})
	it.method(ctorObj, "isExtensible", 1, func(_ Value, args []Value) (Value, error) {
		v := arg(args, 0)
		return runtime.Bool(v.IsObject() && v.Obj().Extensible), nil
	})
	it.method(ctorObj, "create", 2, func(_ Value, args []Value) (Value, error) {
		protoArg := arg(args, 0)
		var p *Object
		if protoArg.IsObject() {
			p = protoArg.Obj()
		} else if !protoArg.IsNull() {
			return Undefined, it.throwErr("TypeError", "Object prototype may only be an Object or null")
		}
		o := runtime.NewObject(p)
		if props := arg(args, 1); props.IsObject() {
			if err := it.definePropertiesFrom(o, props.Obj()); err != nil {
				return Undefined, err
			}
		}
		return runtime.Object_(o), nil
	})
	it.method(ctorObj, "getPrototypeOf", 1, func(_ Value, args []Value) (Value, error) {
		o, err := it.toObjectErr(arg(args, 0))
		if err != nil {
			return Undefined, err
		}
		if o.Prototype == nil {
			return Null, nil
		}
		return runtime.Object_(o.Prototype), nil
	})
	it.method(ctorObj, "setPrototypeOf", 2, func(_ Value, args []Value) (Value, error) {
		v := arg(args, 0)
		if !v.IsObject() {
			return v, nil
		}
		p := arg(args, 1)
		if p.IsObject() {
			for walk := p.Obj(); walk != nil; walk = walk.Prototype {
				if walk == v.Obj() {
					return Undefined, it.throwErr("TypeError", "Cyclic __proto__ value")
				}
			}
			v.Obj().Prototype = p.Obj()
		} else if p.IsNull() {
			v.Obj().Prototype = nil
		}
		return v, nil
	})
	it.method(ctorObj, "defineProperty", 3, func(_ Value, args []Value) (Value, error) {
		v := arg(args, 0)
		if !v.IsObject() {
			return Undefined, it.throwErr("TypeError", "Object.defineProperty called on non-object")
		}
		descV := arg(args, 2)
		if !descV.IsObject() {
			return Undefined, it.throwErr("TypeError", "Property description must be an object")
		}
		pd, err := it.descriptorFrom(v.Obj(), it.ToPropertyKey(arg(args, 1)), descV.Obj())
		if err != nil {
			return Undefined, err
		}
		v.Obj().DefineOwnProperty(it.ToPropertyKey(arg(args, 1)), pd)
		return v, nil
	})
	it.method(ctorObj, "defineProperties", 2, func(_ Value, args []Value) (Value, error) {
		v := arg(args, 0)
		if !v.IsObject() {
			return Undefined, it.throwErr("TypeError", "Object.defineProperties called on non-object")
		}
		props := arg(args, 1)
		if props.IsObject() {
			if err := it.definePropertiesFrom(v.Obj(), props.Obj()); err != nil {
				return Undefined, err
			}
		}
		return v, nil
	})
	it.method(ctorObj, "getOwnPropertyNames", 1, func(_ Value, args []Value) (Value, error) {
		o, err := it.toObjectErr(arg(args, 0))
		if err != nil {
			return Undefined, err
		}
		var out []Value
		for _, k := range o.OwnKeys() {
			if !k.IsSymbol {
				out = append(out, runtime.String(k.Str))
			}
		}
		return runtime.Object_(it.NewArray(out)), nil
	})
	it.method(ctorObj, "getOwnPropertySymbols", 1, func(_ Value, args []Value) (Value, error) {
		o, err := it.toObjectErr(arg(args, 0))
		if err != nil {
			return Undefined, err
		}
		var out []Value
		for _, k := range o.OwnKeys() {
			if k.IsSymbol {
				out = append(out, runtime.SymbolValue(k.Sym))
			}
		}
		return runtime.Object_(it.NewArray(out)), nil
	})
	it.method(ctorObj, "getOwnPropertyDescriptor", 2, func(_ Value, args []Value) (Value, error) {
		o, err := it.toObjectErr(arg(args, 0))
		if err != nil {
			return Undefined, err
		}
		pd, ok := o.GetOwnProperty(it.ToPropertyKey(arg(args, 1)))
		if !ok {
			return Undefined, nil
		}
		return runtime.Object_(it.descriptorObject(pd)), nil
	})
	it.method(ctorObj, "fromEntries", 1, func(_ Value, args []Value) (Value, error) {
		entries, c := it.IterateAll(arg(args, 0))
		if c.IsAbrupt() {
			return Undefined, completionToErr(c)
		}
		o := runtime.NewObject(it.protos.object)
		for _, e := range entries {
			if !e.IsObject() {
				return Undefined, it.throwErr("TypeError", "iterable for fromEntries should yield objects")
			}
			k, c := it.GetProperty(e, e.Obj(), runtime.StringKey("0"))
			if c.IsAbrupt() {
				return Undefined, completionToErr(c)
			}
			v, c := it.GetProperty(e, e.Obj(), runtime.StringKey("1"))
			if c.IsAbrupt() {
				return Undefined, completionToErr(c)
			}
			o.Set(it.ToStringValue(k), v)
		}
		return runtime.Object_(o), nil
	})
	it.method(ctorObj, "is", 2, func(_ Value, args []Value) (Value, error) {
		return runtime.Bool(runtime.Is(arg(args, 0), arg(args, 1))), nil
	})

	it.defineGlobal("Object", runtime.Object_(ctorObj))
}

func (it *Interp) toObjectErr(v Value) (*Object, error) {
	if v.IsNullish() {
		return nil, it.throwErr("TypeError", "Cannot convert undefined or null to object")
	}
	if v.IsObject() {
		return v.Obj(), nil
	}
	return it.toWrapperObject(v), nil
}

// toWrapperObject boxes a primitive into its wrapper object, used where
// the spec calls for ToObject on a non-object receiver.
func (it *Interp) toWrapperObject(v Value) *Object {
	switch {
	case v.IsString():
		o := runtime.NewObject(it.protos.str)
		o.InternalKind = runtime.KindStringWrapper
		o.PrimitiveValue = v
		return o
	case v.IsNumber():
		o := runtime.NewObject(it.protos.number)
		o.InternalKind = runtime.KindNumberWrapper
		o.PrimitiveValue = v
		return o
	case v.IsBoolean():
		o := runtime.NewObject(it.protos.boolean)
		o.InternalKind = runtime.KindBooleanWrapper
		o.PrimitiveValue = v
		return o
	case v.IsBigInt():
		o := runtime.NewObject(it.protos.bigint)
		o.InternalKind = runtime.KindBigIntWrapper
		o.PrimitiveValue = v
		return o
	case v.IsSymbol():
		o := runtime.NewObject(it.protos.symbol)
		o.PrimitiveValue = v
		return o
	}
	return runtime.NewObject(it.protos.object)
}

func (it *Interp) definePropertiesFrom(o *Object, props *Object) error {
	for _, k := range props.OwnKeys() {
		pd, ok := props.GetOwnProperty(k)
		if !ok || !pd.Enumerable {
			continue
		}
		descV, c := it.GetProperty(runtime.Object_(props), props, k)
		if c.IsAbrupt() {
			return completionToErr(c)
		}
		if !descV.IsObject() {
			return it.throwErr("TypeError", "Property description must be an object")
		}
		newPd, err := it.descriptorFrom(o, k, descV.Obj())
		if err != nil {
			return err
		}
		o.DefineOwnProperty(k, newPd)
	}
	return nil
}

// descriptorFrom reads a { value, writable, get, set, enumerable,
// configurable } descriptor literal, merging onto any existing own
// descriptor for key (spec.md §4.4.6's ToPropertyDescriptor).
func (it *Interp) descriptorFrom(o *Object, key PropertyKey, desc *Object) (runtime.PropertyDescriptor, error) {
	pd, _ := o.GetOwnProperty(key)
	descObj := runtime.Object_(desc)
	if has, c := it.hasOwn(desc, "value"); c.IsAbrupt() {
		return pd, completionToErr(c)
	} else if has {
		v, c := it.GetProperty(descObj, desc, runtime.StringKey("value"))
		if c.IsAbrupt() {
			return pd, completionToErr(c)
		}
		pd.Value = v
		pd.IsAccessor = false
	}
	if has, _ := it.hasOwn(desc, "get"); has {
		v, _ := it.GetProperty(descObj, desc, runtime.StringKey("get"))
		if v.IsObject() {
			pd.Get = v.Obj()
		}
		pd.IsAccessor = true
	}
	if has, _ := it.hasOwn(desc, "set"); has {
		v, _ := it.GetProperty(descObj, desc, runtime.StringKey("set"))
		if v.IsObject() {
			pd.Set = v.Obj()
		}
		pd.IsAccessor = true
	}
	if has, _ := it.hasOwn(desc, "writable"); has {
		v, _ := it.GetProperty(descObj, desc, runtime.StringKey("writable"))
		pd.Writable = v.ToBoolean()
	}
	if has, _ := it.hasOwn(desc, "enumerable"); has {
		v, _ := it.GetProperty(descObj, desc, runtime.StringKey("enumerable"))
		pd.Enumerable = v.ToBoolean()
	}
	if has, _ := it.hasOwn(desc, "configurable"); has {
		v, _ := it.GetProperty(descObj, desc, runtime.StringKey("configurable"))
		pd.Configurable = v.ToBoolean()
	}
	return pd, nil
}

func (it *Interp) hasOwn(o *Object, name string) (bool, Completion) {
	_, ok := o.GetOwnProperty(runtime.StringKey(name))
	return ok, normalC()
}

func (it *Interp) descriptorObject(pd runtime.PropertyDescriptor) *Object {
	o := runtime.NewObject(it.protos.object)
	if pd.IsAccessor {
		if pd.Get != nil {
			o.Set("get", runtime.Object_(pd.Get))
		} else {
			o.Set("get", Undefined)
		}
		if pd.Set != nil {
			o.Set("set", runtime.Object_(pd.Set))
		} else {
			o.Set("set", Undefined)
		}
	} else {
		o.Set("value", pd.Value)
		o.Set("writable", runtime.Bool(pd.Writable))
	}
	o.Set("enumerable", runtime.Bool(pd.Enumerable))
	o.Set("configurable", runtime.Bool(pd.Configurable))
	return o
}

// sortKeysStable is a small shared helper for Array.prototype.sort and
// Object key ordering edge cases that need a stable comparison sort.
func sortKeysStable(keys []string) {
	sort.Strings(keys)
}
