package interp

import "github.com/esgo-lang/esgo/internal/interp/runtime"

// jsIterator is a driver-side handle on an ECMAScript iterator: either a
// native Array/String fast path or a user iterator object invoked through
// the Symbol.iterator/next protocol (spec.md §4.6's iteration protocol,
// shared by for-of, spread, destructuring and Array.from).
type jsIterator struct {
	// fast path; arrObj is set for live Array iteration, which re-reads
	// the element vector on every step so elements appended during the
	// loop are visited (ECMAScript array iterator semantics).
	arr    []Value
	arrObj *Object
	idx    int
	isArr  bool

	// protocol path
	obj *Object
}

// GetIterator resolves v's iterator, preferring the Array/String fast
// path when the object is exotic-Array or a primitive string, and
// otherwise invoking Symbol.iterator (spec.md §4.6).
func (it *Interp) GetIterator(v Value) (*jsIterator, Completion) {
	if v.IsString() {
		runes := []rune(v.Str())
		vals := make([]Value, len(runes))
		for i, r := range runes {
			vals[i] = runtime.String(string(r))
		}
		return &jsIterator{arr: vals, isArr: true}, normalC()
	}
	if v.IsObject() && v.Obj().InternalKind == runtime.KindArray {
		return &jsIterator{arrObj: v.Obj(), isArr: true}, normalC()
	}
	if !v.IsObject() {
		return nil, it.throwType("%s is not iterable", it.ToStringValue(v))
	}
	o := v.Obj()
	method, c := it.GetProperty(v, o, iteratorKey(it))
	if c.IsAbrupt() {
		return nil, c
	}
	if !method.IsObject() || method.Obj().Call == nil {
		return nil, it.throwType("%s is not iterable", it.ToStringValue(v))
	}
	iterV, c := it.CallFunction(method.Obj(), v, nil)
	if c.IsAbrupt() {
		return nil, c
	}
	if !iterV.IsObject() {
		return nil, it.throwType("Result of Symbol.iterator is not an object")
	}
	return &jsIterator{obj: iterV.Obj()}, normalC()
}

// Next advances the iterator, returning (value, done, completion).
func (it *Interp) Next(iter *jsIterator) (Value, bool, Completion) {
	if iter.isArr {
		vals := iter.arr
		if iter.arrObj != nil {
			vals = it.arrayValues(iter.arrObj)
		}
		if iter.idx >= len(vals) {
			return Undefined, true, normalC()
		}
		v := vals[iter.idx]
		iter.idx++
		return v, false, normalC()
	}
	nextFn, c := it.GetProperty(runtime.Object_(iter.obj), iter.obj, runtime.StringKey("next"))
	if c.IsAbrupt() {
		return Undefined, false, c
	}
	if !nextFn.IsObject() || nextFn.Obj().Call == nil {
		return Undefined, false, it.throwType("iterator.next is not a function")
	}
	res, c := it.CallFunction(nextFn.Obj(), runtime.Object_(iter.obj), nil)
	if c.IsAbrupt() {
		return Undefined, false, c
	}
	if !res.IsObject() {
		return Undefined, false, it.throwType("Iterator result is not an object")
	}
	ro := res.Obj()
	done, c := it.GetProperty(res, ro, runtime.StringKey("done"))
	if c.IsAbrupt() {
		return Undefined, false, c
	}
	value, c := it.GetProperty(res, ro, runtime.StringKey("value"))
	if c.IsAbrupt() {
		return Undefined, false, c
	}
	return value, done.ToBoolean(), normalC()
}

// IterateAll drains iter fully into a slice (spread, rest params,
// Array.from, destructuring without a trailing rest).
func (it *Interp) IterateAll(v Value) ([]Value, Completion) {
	iter, c := it.GetIterator(v)
	if c.IsAbrupt() {
		return nil, c
	}
	var out []Value
	for {
		val, done, c := it.Next(iter)
		if c.IsAbrupt() {
			return nil, c
		}
		if done {
			return out, normalC()
		}
		out = append(out, val)
	}
}

// newValueIterator builds a plain iterator object (a "next" method plus
// Symbol.iterator returning itself) over a fixed slice, used for
// `arguments[Symbol.iterator]` and Array.prototype[Symbol.iterator].
func (it *Interp) newValueIterator(values []Value) *Object {
	o := runtime.NewObject(it.protos.iterator)
	o.InternalKind = runtime.KindIterator
	idx := 0
	o.Set("next", runtime.Object_(it.nativeFunc("next", 0, func(this Value, _ []Value) (Value, error) {
		res := runtime.NewObject(it.protos.object)
		if idx >= len(values) {
			res.Set("done", runtime.True)
			res.Set("value", Undefined)
		} else {
			res.Set("done", runtime.False)
			res.Set("value", values[idx])
			idx++
		}
		return runtime.Object_(res), nil
	})))
	o.DefineOwnProperty(runtime.SymbolKey(it.wellKnown("iterator")), runtime.PropertyDescriptor{
		Value: runtime.Object_(it.nativeFunc("[Symbol.iterator]", 0, func(this Value, _ []Value) (Value, error) {
			return this, nil
		})), Writable: true, Configurable: true,
	})
	return o
}

// Close calls iterator.return(), ignoring absence, for early-exit from a
// for-of loop (break/return/throw) per spec.md §4.4's iterator-closing
// requirement. Errors from return() are swallowed in favor of the
// original abrupt completion, matching common engine behavior.
func (it *Interp) Close(iter *jsIterator) {
	if iter == nil || iter.isArr || iter.obj == nil {
		return
	}
	retFn, c := it.GetProperty(runtime.Object_(iter.obj), iter.obj, runtime.StringKey("return"))
	if c.IsAbrupt() || !retFn.IsObject() || retFn.Obj().Call == nil {
		return
	}
	it.CallFunction(retFn.Obj(), runtime.Object_(iter.obj), nil)
}
