package interp

import "github.com/esgo-lang/esgo/internal/interp/runtime"

// setupMapSetBuiltins wires Map, Set, WeakMap, and WeakSet (spec.md
// §4.7), all four sharing the same insertion-ordered SameValueZero
// storage in runtime.Object.MapData/SetData — WeakMap/WeakSet simply
// don't expose iteration or size, matching their non-enumerable GC
// contract without modeling actual garbage collection.
func (it *Interp) setupMapSetBuiltins() {
	it.setupMap()
	it.setupSet()
	it.setupWeakMap()
	it.setupWeakSet()
}

func (it *Interp) setupMap() {
	proto := it.protos.mapProto

	thisMap := func(this Value) (*Object, error) {
		if !this.IsObject() || this.Obj().MapData == nil {
			return nil, it.throwErr("TypeError", "Method Map.prototype called on incompatible receiver")
		}
		return this.Obj(), nil
	}

	it.method(proto, "get", 1, func(this Value, args []Value) (Value, error) {
		o, err := thisMap(this)
		if err != nil {
			return Undefined, err
		}
		v, ok := o.MapData.Get(arg(args, 0))
		if !ok {
			return Undefined, nil
		}
		return v, nil
	})
	it.method(proto, "set", 2, func(this Value, args []Value) (Value, error) {
		o, err := thisMap(this)
		if err != nil {
			return Undefined, err
		}
		o.MapData.Set(arg(args, 0), arg(args, 1))
		return this, nil
	})
	it.method(proto, "has", 1, func(this Value, args []Value) (Value, error) {
		o, err := thisMap(this)
		if err != nil {
			return Undefined, err
		}
		_, ok := o.MapData.Get(arg(args, 0))
		return runtime.Bool(ok), nil
	})
	it.method(proto, "delete", 1, func(this Value, args []Value) (Value, error) {
		o, err := thisMap(this)
		if err != nil {
			return Undefined, err
		}
		return runtime.Bool(o.MapData.Delete(arg(args, 0))), nil
	})
	it.method(proto, "clear", 0, func(this Value, _ []Value) (Value, error) {
		o, err := thisMap(this)
		if err != nil {
			return Undefined, err
		}
		o.MapData = runtime.NewMapData()
		return Undefined, nil
	})
	it.getter(proto, "size", func(this Value, _ []Value) (Value, error) {
		o, err := thisMap(this)
		if err != nil {
			return Undefined, err
		}
		return runtime.Int(o.MapData.Size()), nil
	})
	it.method(proto, "forEach", 1, func(this Value, args []Value) (Value, error) {
		o, err := thisMap(this)
		if err != nil {
			return Undefined, err
		}
		fn := arg(args, 0)
		if !fn.IsObject() || !fn.IsCallable() {
			return Undefined, it.throwType("%s is not a function", Inspect(fn))
		}
		thisArg := arg(args, 1)
		keys, vals := o.MapData.Entries()
		for i := range keys {
			if _, c := it.CallFunction(fn.Obj(), thisArg, []Value{vals[i], keys[i], this}); c.IsAbrupt() {
				return Undefined, completionToErr(c)
			}
		}
		return Undefined, nil
	})
	it.method(proto, "keys", 0, func(this Value, _ []Value) (Value, error) {
		o, err := thisMap(this)
		if err != nil {
			return Undefined, err
		}
		keys, _ := o.MapData.Entries()
		return runtime.Object_(it.newValueIterator(keys)), nil
	})
	it.method(proto, "values", 0, func(this Value, _ []Value) (Value, error) {
		o, err := thisMap(this)
		if err != nil {
			return Undefined, err
		}
		_, vals := o.MapData.Entries()
		return runtime.Object_(it.newValueIterator(vals)), nil
	})
	entriesFn := it.nativeFunc("entries", 0, func(this Value, _ []Value) (Value, error) {
		o, err := thisMap(this)
		if err != nil {
			return Undefined, err
		}
		keys, vals := o.MapData.Entries()
		out := make([]Value, len(keys))
		for i := range keys {
			out[i] = runtime.Object_(it.NewArray([]Value{keys[i], vals[i]}))
		}
		return runtime.Object_(it.newValueIterator(out)), nil
	})
	proto.DefineOwnProperty(runtime.StringKey("entries"), runtime.DataProperty(runtime.Object_(entriesFn)))
	proto.DefineOwnProperty(runtime.SymbolKey(it.wellKnown("iterator")), runtime.DataProperty(runtime.Object_(entriesFn)))

	ctorObj := it.ctor("Map", 0, proto, func(args []Value, newTarget *Object) (Value, error) {
		if newTarget == nil {
			return Undefined, it.throwType("Constructor Map requires 'new'")
		}
		o := runtime.NewObject(proto)
		o.MapData = runtime.NewMapData()
		if it2 := arg(args, 0); !it2.IsNullish() {
			entries, c := it.IterateAll(it2)
			if c.IsAbrupt() {
				return Undefined, completionToErr(c)
			}
			for _, e := range entries {
				if !e.IsObject() {
					return Undefined, it.throwType("Iterator value is not an entry object")
				}
				k, c1 := it.GetProperty(e, e.Obj(), runtime.StringKey("0"))
				v, c2 := it.GetProperty(e, e.Obj(), runtime.StringKey("1"))
				if c1.IsAbrupt() || c2.IsAbrupt() {
					return Undefined, it.throwType("Iterator value is not an entry object")
				}
				o.MapData.Set(k, v)
			}
		}
		return runtime.Object_(o), nil
	})
	it.defineGlobal("Map", runtime.Object_(ctorObj))
}

func (it *Interp) setupSet() {
	proto := it.protos.setProto

	thisSet := func(this Value) (*Object, error) {
		if !this.IsObject() || this.Obj().SetData == nil {
			return nil, it.throwErr("TypeError", "Method Set.prototype called on incompatible receiver")
		}
		return this.Obj(), nil
	}

	it.method(proto, "add", 1, func(this Value, args []Value) (Value, error) {
		o, err := thisSet(this)
		if err != nil {
			return Undefined, err
		}
		v := arg(args, 0)
		o.SetData.Set(v, v)
		return this, nil
	})
	it.method(proto, "has", 1, func(this Value, args []Value) (Value, error) {
		o, err := thisSet(this)
		if err != nil {
			return Undefined, err
		}
		_, ok := o.SetData.Get(arg(args, 0))
		return runtime.Bool(ok), nil
	})
	it.method(proto, "delete", 1, func(this Value, args []Value) (Value, error) {
		o, err := thisSet(this)
		if err != nil {
			return Undefined, err
		}
		return runtime.Bool(o.SetData.Delete(arg(args, 0))), nil
	})
	it.method(proto, "clear", 0, func(this Value, _ []Value) (Value, error) {
		o, err := thisSet(this)
		if err != nil {
			return Undefined, err
		}
		o.SetData = runtime.NewSetData()
		return Undefined, nil
	})
	it.getter(proto, "size", func(this Value, _ []Value) (Value, error) {
		o, err := thisSet(this)
		if err != nil {
			return Undefined, err
		}
		return runtime.Int(o.SetData.Size()), nil
	})
	it.method(proto, "forEach", 1, func(this Value, args []Value) (Value, error) {
		o, err := thisSet(this)
		if err != nil {
			return Undefined, err
		}
		fn := arg(args, 0)
		if !fn.IsObject() || !fn.IsCallable() {
			return Undefined, it.throwType("%s is not a function", Inspect(fn))
		}
		thisArg := arg(args, 1)
		keys, _ := o.SetData.Entries()
		for _, k := range keys {
			if _, c := it.CallFunction(fn.Obj(), thisArg, []Value{k, k, this}); c.IsAbrupt() {
				return Undefined, completionToErr(c)
			}
		}
		return Undefined, nil
	})
	valuesFn := it.nativeFunc("values", 0, func(this Value, _ []Value) (Value, error) {
		o, err := thisSet(this)
		if err != nil {
			return Undefined, err
		}
		keys, _ := o.SetData.Entries()
		return runtime.Object_(it.newValueIterator(keys)), nil
	})
	proto.DefineOwnProperty(runtime.StringKey("values"), runtime.DataProperty(runtime.Object_(valuesFn)))
	proto.DefineOwnProperty(runtime.StringKey("keys"), runtime.DataProperty(runtime.Object_(valuesFn)))
	proto.DefineOwnProperty(runtime.SymbolKey(it.wellKnown("iterator")), runtime.DataProperty(runtime.Object_(valuesFn)))
	it.method(proto, "entries", 0, func(this Value, _ []Value) (Value, error) {
		o, err := thisSet(this)
		if err != nil {
			return Undefined, err
		}
		keys, _ := o.SetData.Entries()
		out := make([]Value, len(keys))
		for i, k := range keys {
			out[i] = runtime.Object_(it.NewArray([]Value{k, k}))
		}
		return runtime.Object_(it.newValueIterator(out)), nil
	})

	ctorObj := it.ctor("Set", 0, proto, func(args []Value, newTarget *Object) (Value, error) {
		if newTarget == nil {
			return Undefined, it.throwType("Constructor Set requires 'new'")
		}
		o := runtime.NewObject(proto)
		o.SetData = runtime.NewSetData()
		if iterable := arg(args, 0); !iterable.IsNullish() {
			vals, c := it.IterateAll(iterable)
			if c.IsAbrupt() {
				return Undefined, completionToErr(c)
			}
			for _, v := range vals {
				o.SetData.Set(v, v)
			}
		}
		return runtime.Object_(o), nil
	})
	it.defineGlobal("Set", runtime.Object_(ctorObj))
}

func (it *Interp) setupWeakMap() {
	proto := it.protos.weakMap
	thisWeak := func(this Value) (*Object, error) {
		if !this.IsObject() || this.Obj().MapData == nil {
			return nil, it.throwErr("TypeError", "Method WeakMap.prototype called on incompatible receiver")
		}
		return this.Obj(), nil
	}
	requireObjectKey := func(k Value) error {
		if !k.IsObject() {
			return it.throwType("Invalid value used as weak map key")
		}
		return nil
	}
	it.method(proto, "get", 1, func(this Value, args []Value) (Value, error) {
		o, err := thisWeak(this)
		if err != nil {
			return Undefined, err
		}
		v, ok := o.MapData.Get(arg(args, 0))
		if !ok {
			return Undefined, nil
		}
		return v, nil
	})
	it.method(proto, "set", 2, func(this Value, args []Value) (Value, error) {
		o, err := thisWeak(this)
		if err != nil {
			return Undefined, err
		}
		if err := requireObjectKey(arg(args, 0)); err != nil {
			return Undefined, err
		}
		o.MapData.Set(arg(args, 0), arg(args, 1))
		return this, nil
	})
	it.method(proto, "has", 1, func(this Value, args []Value) (Value, error) {
		o, err := thisWeak(this)
		if err != nil {
			return Undefined, err
		}
		_, ok := o.MapData.Get(arg(args, 0))
		return runtime.Bool(ok), nil
	})
	it.method(proto, "delete", 1, func(this Value, args []Value) (Value, error) {
		o, err := thisWeak(this)
		if err != nil {
			return Undefined, err
		}
		return runtime.Bool(o.MapData.Delete(arg(args, 0))), nil
	})

	ctorObj := it.ctor("WeakMap", 0, proto, func(args []Value, newTarget *Object) (Value, error) {
		if newTarget == nil {
			return Undefined, it.throwType("Constructor WeakMap requires 'new'")
		}
		o := runtime.NewObject(proto)
		o.MapData = runtime.NewMapData()
		if iterable := arg(args, 0); !iterable.IsNullish() {
			entries, c := it.IterateAll(iterable)
			if c.IsAbrupt() {
				return Undefined, completionToErr(c)
			}
			for _, e := range entries {
				if !e.IsObject() {
					return Undefined, it.throwType("Iterator value is not an entry object")
				}
				k, _ := it.GetProperty(e, e.Obj(), runtime.StringKey("0"))
				v, _ := it.GetProperty(e, e.Obj(), runtime.StringKey("1"))
				if err := requireObjectKey(k); err != nil {
					return Undefined, err
				}
				o.MapData.Set(k, v)
			}
		}
		return runtime.Object_(o), nil
	})
	it.defineGlobal("WeakMap", runtime.Object_(ctorObj))
}

func (it *Interp) setupWeakSet() {
	proto := it.protos.weakSet
	thisWeak := func(this Value) (*Object, error) {
		if !this.IsObject() || this.Obj().SetData == nil {
			return nil, it.throwErr("TypeError", "Method WeakSet.prototype called on incompatible receiver")
		}
		return this.Obj(), nil
	}
	it.method(proto, "add", 1, func(this Value, args []Value) (Value, error) {
		o, err := thisWeak(this)
		if err != nil {
			return Undefined, err
		}
		v := arg(args, 0)
		if !v.IsObject() {
			return Undefined, it.throwType("Invalid value used in weak set")
		}
		o.SetData.Set(v, v)
		return this, nil
	})
	it.method(proto, "has", 1, func(this Value, args []Value) (Value, error) {
		o, err := thisWeak(this)
		if err != nil {
			return Undefined, err
		}
		_, ok := o.SetData.Get(arg(args, 0))
		return runtime.Bool(ok), nil
	})
	it.method(proto, "delete", 1, func(this Value, args []Value) (Value, error) {
		o, err := thisWeak(this)
		if err != nil {
			return Undefined, err
		}
		return runtime.Bool(o.SetData.Delete(arg(args, 0))), nil
	})

	ctorObj := it.ctor("WeakSet", 0, proto, func(args []Value, newTarget *Object) (Value, error) {
		if newTarget == nil {
			return Undefined, it.throwType("Constructor WeakSet requires 'new'")
		}
		o := runtime.NewObject(proto)
		o.SetData = runtime.NewSetData()
		if iterable := arg(args, 0); !iterable.IsNullish() {
			vals, c := it.IterateAll(iterable)
			if c.IsAbrupt() {
				return Undefined, completionToErr(c)
			}
			for _, v := range vals {
				if !v.IsObject() {
					return Undefined, it.throwType("Invalid value used in weak set")
				}
				o.SetData.Set(v, v)
			}
		}
		return runtime.Object_(o), nil
	})
	it.defineGlobal("WeakSet", runtime.Object_(ctorObj))
}
