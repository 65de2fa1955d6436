package interp

import (
	"sort"

	"github.com/esgo-lang/esgo/internal/interp/runtime"
)

// setupArrayBuiltins wires Array.prototype and the Array constructor
// (spec.md §4.3's collection operations), including the ES2023 "change
// array by copy" quartet (toReversed/toSorted/toSpliced/with) alongside
// the classic mutating methods.
func (it *Interp) setupArrayBuiltins() {
	proto := it.protos.array

	it.method(proto, "push", 1, func(this Value, args []Value) (Value, error) {
		o := this.Obj()
		for _, v := range args {
			vv := v
			o.Elements = append(o.Elements, &vv)
		}
		return runtime.Int(len(o.Elements)), nil
	})
	it.method(proto, "pop", 0, func(this Value, _ []Value) (Value, error) {
		o := this.Obj()
		if len(o.Elements) == 0 {
			return Undefined, nil
		}
		last := o.Elements[len(o.Elements)-1]
		o.Elements = o.Elements[:len(o.Elements)-1]
		if last == nil {
			return Undefined, nil
		}
		return *last, nil
	})
	it.method(proto, "shift", 0, func(this Value, _ []Value) (Value, error) {
		o := this.Obj()
		if len(o.Elements) == 0 {
			return Undefined, nil
		}
		first := o.Elements[0]
		o.Elements = o.Elements[1:]
		if first == nil {
			return Undefined, nil
		}
		return *first, nil
	})
	it.method(proto, "unshift", 1, func(this Value, args []Value) (Value, error) {
		o := this.Obj()
		add := make([]*Value, len(args))
		for i, v := range args {
			vv := v
			add[i] = &vv
		}
		o.Elements = append(add, o.Elements...)
		return runtime.Int(len(o.Elements)), nil
	})
	it.method(proto, "slice", 2, func(this Value, args []Value) (Value, error) {
		o := this.Obj()
		n := len(o.Elements)
		start := relativeIndex(it.ToNumber(arg(args, 0)), n, 0)
		end := n
		if len(args) > 1 && !args[1].IsUndefined() {
			end = relativeIndex(it.ToNumber(args[1]), n, n)
		}
		var out []Value
		for i := start; i < end; i++ {
			out = append(out, it.elemAt(o, i))
		}
		return runtime.Object_(it.NewArray(out)), nil
	})
	it.method(proto, "splice", 2, func(this Value, args []Value) (Value, error) {
		o := this.Obj()
		n := len(o.Elements)
		start := relativeIndex(it.ToNumber(arg(args, 0)), n, 0)
		deleteCount := n - start
		if len(args) > 1 {
			deleteCount = int(it.ToNumber(args[1]))
			if deleteCount < 0 {
				deleteCount = 0
			}
			if deleteCount > n-start {
				deleteCount = n - start
			}
		}
		removed := make([]Value, deleteCount)
		for i := 0; i < deleteCount; i++ {
			removed[i] = it.elemAt(o, start+i)
		}
		var items []*Value
		for _, v := range args[min(len(args), 2):] {
			vv := v
			items = append(items, &vv)
		}
		tail := append([]*Value{}, o.Elements[start+deleteCount:]...)
		o.Elements = append(append(o.Elements[:start:start], items...), tail...)
		return runtime.Object_(it.NewArray(removed)), nil
	})
	it.method(proto, "concat", 1, func(this Value, args []Value) (Value, error) {
		out := append([]Value{}, it.arrayValues(this.Obj())...)
		for _, a := range args {
			if a.IsObject() && a.Obj().InternalKind == runtime.KindArray {
				out = append(out, it.arrayValues(a.Obj())...)
			} else {
				out = append(out, a)
			}
		}
		return runtime.Object_(it.NewArray(out)), nil
	})
	it.method(proto, "join", 1, func(this Value, args []Value) (Value, error) {
		sep := ","
		if len(args) > 0 && !args[0].IsUndefined() {
			sep = it.ToStringValue(args[0])
		}
		return runtime.String(it.arrayJoin(this.Obj(), sep)), nil
	})
	it.method(proto, "reverse", 0, func(this Value, _ []Value) (Value, error) {
		o := this.Obj()
		for i, j := 0, len(o.Elements)-1; i < j; i, j = i+1, j-1 {
			o.Elements[i], o.Elements[j] = o.Elements[j], o.Elements[i]
		}
		return this, nil
	})
	it.method(proto, "toReversed", 0, func(this Value, _ []Value) (Value, error) {
		vals := it.arrayValues(this.Obj())
		out := make([]Value, len(vals))
		for i, v := range vals {
			out[len(vals)-1-i] = v
		}
		return runtime.Object_(it.NewArray(out)), nil
	})
	it.method(proto, "indexOf", 1, func(this Value, args []Value) (Value, error) {
		vals := it.arrayValues(this.Obj())
		target := arg(args, 0)
		start := 0
		if len(args) > 1 {
			start = relativeIndex(it.ToNumber(args[1]), len(vals), 0)
		}
		for i := start; i < len(vals); i++ {
			if runtime.StrictEquals(vals[i], target) {
				return runtime.Int(i), nil
			}
		}
		return runtime.Int(-1), nil
	})
	it.method(proto, "lastIndexOf", 1, func(this Value, args []Value) (Value, error) {
		vals := it.arrayValues(this.Obj())
		target := arg(args, 0)
		for i := len(vals) - 1; i >= 0; i-- {
			if runtime.StrictEquals(vals[i], target) {
				return runtime.Int(i), nil
			}
		}
		return runtime.Int(-1), nil
	})
	it.method(proto, "includes", 1, func(this Value, args []Value) (Value, error) {
		vals := it.arrayValues(this.Obj())
		target := arg(args, 0)
		for _, v := range vals {
			if runtime.SameValueZero(v, target) {
				return runtime.True, nil
			}
		}
		return runtime.False, nil
	})
	it.method(proto, "at", 1, func(this Value, args []Value) (Value, error) {
		vals := it.arrayValues(this.Obj())
		idx := int(it.ToNumber(arg(args, 0)))
		if idx < 0 {
			idx += len(vals)
		}
		if idx < 0 || idx >= len(vals) {
			return Undefined, nil
		}
		return vals[idx], nil
	})
	it.method(proto, "fill", 1, func(this Value, args []Value) (Value, error) {
		o := this.Obj()
		n := len(o.Elements)
		start := relativeIndex(it.ToNumber(arg(args, 1)), n, 0)
		end := n
		if len(args) > 2 {
			end = relativeIndex(it.ToNumber(args[2]), n, n)
		}
		v := arg(args, 0)
		for i := start; i < end; i++ {
			vv := v
			o.Elements[i] = &vv
		}
		return this, nil
	})
	it.method(proto, "copyWithin", 2, func(this Value, args []Value) (Value, error) {
		o := this.Obj()
		n := len(o.Elements)
		target := relativeIndex(it.ToNumber(arg(args, 0)), n, 0)
		start := relativeIndex(it.ToNumber(arg(args, 1)), n, 0)
		end := n
		if len(args) > 2 {
			end = relativeIndex(it.ToNumber(args[2]), n, n)
		}
		src := append([]*Value{}, o.Elements[start:end]...)
		for i, v := range src {
			if target+i >= n {
				break
			}
			o.Elements[target+i] = v
		}
		return this, nil
	})
	it.method(proto, "with", 2, func(this Value, args []Value) (Value, error) {
		vals := append([]Value{}, it.arrayValues(this.Obj())...)
		idx := int(it.ToNumber(arg(args, 0)))
		if idx < 0 {
			idx += len(vals)
		}
		if idx < 0 || idx >= len(vals) {
			return Undefined, it.throwErr("RangeError", "invalid index")
		}
		vals[idx] = arg(args, 1)
		return runtime.Object_(it.NewArray(vals)), nil
	})
	it.method(proto, "toSpliced", 2, func(this Value, args []Value) (Value, error) {
		vals := it.arrayValues(this.Obj())
		n := len(vals)
		start := relativeIndex(it.ToNumber(arg(args, 0)), n, 0)
		deleteCount := n - start
		if len(args) > 1 {
			deleteCount = int(it.ToNumber(args[1]))
			if deleteCount < 0 {
				deleteCount = 0
			}
			if deleteCount > n-start {
				deleteCount = n - start
			}
		}
		out := append([]Value{}, vals[:start]...)
		out = append(out, args[min(len(args), 2):]...)
		out = append(out, vals[start+deleteCount:]...)
		return runtime.Object_(it.NewArray(out)), nil
	})
	sortFn := func(this Value, args []Value, inPlace bool) (Value, error) {
		var cmp *Object
		if c := arg(args, 0); c.IsCallable() {
			cmp = c.Obj()
		}
		vals := it.arrayValues(this.Obj())
		if !inPlace {
			vals = append([]Value{}, vals...)
		}
		var sortErr error
		sort.SliceStable(vals, func(i, j int) bool {
			if sortErr != nil {
				return false
			}
			a, b := vals[i], vals[j]
			if a.IsUndefined() {
				return false
			}
			if b.IsUndefined() {
				return true
			}
			if cmp != nil {
				r, c := it.CallFunction(cmp, Undefined, []Value{a, b})
				if c.IsAbrupt() {
					sortErr = completionToErr(c)
					return false
				}
				return it.ToNumber(r) < 0
			}
			return it.ToStringValue(a) < it.ToStringValue(b)
		})
		if sortErr != nil {
			return Undefined, sortErr
		}
		if inPlace {
			o := this.Obj()
			for i, v := range vals {
				vv := v
				o.Elements[i] = &vv
			}
			return this, nil
		}
		return runtime.Object_(it.NewArray(vals)), nil
	}
	it.method(proto, "sort", 1, func(this Value, args []Value) (Value, error) { return sortFn(this, args, true) })
	it.method(proto, "toSorted", 1, func(this Value, args []Value) (Value, error) { return sortFn(this, args, false) })

	it.method(proto, "forEach", 1, func(this Value, args []Value) (Value, error) {
		fn, thisArg := arg(args, 0), arg(args, 1)
		if !fn.IsCallable() {
			return Undefined, it.throwErr("TypeError", "callback is not a function")
		}
		vals := it.arrayValues(this.Obj())
		for i, v := range vals {
			if _, c := it.CallFunction(fn.Obj(), thisArg, []Value{v, runtime.Int(i), this}); c.IsAbrupt() {
				return Undefined, completionToErr(c)
			}
		}
		return Undefined, nil
	})
	it.method(proto, "map", 1, func(this Value, args []Value) (Value, error) {
		fn, thisArg := arg(args, 0), arg(args, 1)
		if !fn.IsCallable() {
			return Undefined, it.throwErr("TypeError", "callback is not a function")
		}
		vals := it.arrayValues(this.Obj())
		out := make([]Value, len(vals))
		for i, v := range vals {
			r, c := it.CallFunction(fn.Obj(), thisArg, []Value{v, runtime.Int(i), this})
			if c.IsAbrupt() {
				return Undefined, completionToErr(c)
			}
			out[i] = r
		}
		return runtime.Object_(it.NewArray(out)), nil
	})
	it.method(proto, "filter", 1, func(this Value, args []Value) (Value, error) {
		fn, thisArg := arg(args, 0), arg(args, 1)
		if !fn.IsCallable() {
			return Undefined, it.throwErr("TypeError", "callback is not a function")
		}
		vals := it.arrayValues(this.Obj())
		var out []Value
		for i, v := range vals {
			r, c := it.CallFunction(fn.Obj(), thisArg, []Value{v, runtime.Int(i), this})
			if c.IsAbrupt() {
				return Undefined, completionToErr(c)
			}
			if r.ToBoolean() {
				out = append(out, v)
			}
		}
		return runtime.Object_(it.NewArray(out)), nil
	})
	it.method(proto, "find", 1, func(this Value, args []Value) (Value, error) {
		v, _, err := it.arrayFind(this, args, false)
		return v, err
	})
	it.method(proto, "findIndex", 1, func(this Value, args []Value) (Value, error) {
		_, idx, err := it.arrayFind(this, args, false)
		return runtime.Int(idx), err
	})
	it.method(proto, "findLast", 1, func(this Value, args []Value) (Value, error) {
		v, _, err := it.arrayFind(this, args, true)
		return v, err
	})
	it.method(proto, "findLastIndex", 1, func(this Value, args []Value) (Value, error) {
		_, idx, err := it.arrayFind(this, args, true)
		return runtime.Int(idx), err
	})
	it.method(proto, "some", 1, func(this Value, args []Value) (Value, error) {
		fn, thisArg := arg(args, 0), arg(args, 1)
		if !fn.IsCallable() {
			return Undefined, it.throwErr("TypeError", "callback is not a function")
		}
		for i, v := range it.arrayValues(this.Obj()) {
			r, c := it.CallFunction(fn.Obj(), thisArg, []Value{v, runtime.Int(i), this})
			if c.IsAbrupt() {
				return Undefined, completionToErr(c)
			}
			if r.ToBoolean() {
				return runtime.True, nil
			}
		}
		return runtime.False, nil
	})
	it.method(proto, "every", 1, func(this Value, args []Value) (Value, error) {
		fn, thisArg := arg(args, 0), arg(args, 1)
		if !fn.IsCallable() {
			return Undefined, it.throwErr("TypeError", "callback is not a function")
		}
		for i, v := range it.arrayValues(this.Obj()) {
			r, c := it.CallFunction(fn.Obj(), thisArg, []Value{v, runtime.Int(i), this})
			if c.IsAbrupt() {
				return Undefined, completionToErr(c)
			}
			if !r.ToBoolean() {
				return runtime.False, nil
			}
		}
		return runtime.True, nil
	})
	it.method(proto, "reduce", 1, func(this Value, args []Value) (Value, error) {
		return it.arrayReduce(this, args, false)
	})
	it.method(proto, "reduceRight", 1, func(this Value, args []Value) (Value, error) {
		return it.arrayReduce(this, args, true)
	})
	it.method(proto, "flat", 0, func(this Value, args []Value) (Value, error) {
		depth := 1
		if len(args) > 0 {
			depth = int(it.ToNumber(args[0]))
		}
		return runtime.Object_(it.NewArray(it.flattenArray(this.Obj(), depth))), nil
	})
	it.method(proto, "flatMap", 1, func(this Value, args []Value) (Value, error) {
		fn, thisArg := arg(args, 0), arg(args, 1)
		if !fn.IsCallable() {
			return Undefined, it.throwErr("TypeError", "callback is not a function")
		}
		var out []Value
		for i, v := range it.arrayValues(this.Obj()) {
			r, c := it.CallFunction(fn.Obj(), thisArg, []Value{v, runtime.Int(i), this})
			if c.IsAbrupt() {
				return Undefined, completionToErr(c)
			}
			if r.IsObject() && r.Obj().InternalKind == runtime.KindArray {
				out = append(out, it.arrayValues(r.Obj())...)
			} else {
				out = append(out, r)
			}
		}
		return runtime.Object_(it.NewArray(out)), nil
	})
	it.method(proto, "toString", 0, func(this Value, _ []Value) (Value, error) {
		return runtime.String(it.arrayJoin(this.Obj(), ",")), nil
	})

	iterFn := it.nativeFunc("values", 0, func(this Value, _ []Value) (Value, error) {
		return runtime.Object_(it.newValueIterator(it.arrayValues(this.Obj()))), nil
	})
	proto.DefineOwnProperty(runtime.StringKey("values"), runtime.PropertyDescriptor{Value: runtime.Object_(iterFn), Writable: true, Configurable: true})
	proto.DefineOwnProperty(runtime.SymbolKey(it.wellKnown("iterator")), runtime.PropertyDescriptor{Value: runtime.Object_(iterFn), Writable: true, Configurable: true})
	it.method(proto, "keys", 0, func(this Value, _ []Value) (Value, error) {
		vals := it.arrayValues(this.Obj())
		idxVals := make([]Value, len(vals))
		for i := range vals {
			idxVals[i] = runtime.Int(i)
		}
		return runtime.Object_(it.newValueIterator(idxVals)), nil
	})
	it.method(proto, "entries", 0, func(this Value, _ []Value) (Value, error) {
		vals := it.arrayValues(this.Obj())
		out := make([]Value, len(vals))
		for i, v := range vals {
			out[i] = runtime.Object_(it.NewArray([]Value{runtime.Int(i), v}))
		}
		return runtime.Object_(it.newValueIterator(out)), nil
	})

	ctorObj := it.ctor("Array", 1, proto, func(args []Value, _ *Object) (Value, error) {
		if len(args) == 1 && args[0].IsNumber() {
			n := args[0].Float()
			if n < 0 || n != float64(int(n)) {
				return Undefined, it.throwErr("RangeError", "Invalid array length")
			}
			return runtime.Object_(it.NewArray(make([]Value, int(n)))), nil
		}
		return runtime.Object_(it.NewArray(args)), nil
	})
	it.method(ctorObj, "isArray", 1, func(_ Value, args []Value) (Value, error) {
		v := arg(args, 0)
		return runtime.Bool(v.IsObject() && v.Obj().InternalKind == runtime.KindArray), nil
	})
	it.method(ctorObj, "of", 0, func(_ Value, args []Value) (Value, error) {
		return runtime.Object_(it.NewArray(args)), nil
	})
	it.method(ctorObj, "from", 1, func(_ Value, args []Value) (Value, error) {
		src := arg(args, 0)
		var mapFn *Object
		if m := arg(args, 1); m.IsCallable() {
			mapFn = m.Obj()
		}
		var vals []Value
		if src.IsObject() {
			if _, c := it.GetProperty(src, src.Obj(), iteratorKey(it)); !c.IsAbrupt() {
				if iv, c2 := it.GetProperty(src, src.Obj(), iteratorKey(it)); c2.IsAbrupt() == false && iv.IsObject() && iv.Obj().Call != nil {
					vs, c3 := it.IterateAll(src)
					if c3.IsAbrupt() {
						return Undefined, completionToErr(c3)
					}
					vals = vs
				}
			}
		}
		if vals == nil && src.IsObject() {
			lenV, c := it.GetProperty(src, src.Obj(), runtime.StringKey("length"))
			if c.IsAbrupt() {
				return Undefined, completionToErr(c)
			}
			f := it.ToNumber(lenV)
			n := 0
			if f > 9007199254740991 {
				n = 9007199254740991
			} else if f > 0 {
				n = int(f)
			}
			vals = make([]Value, n)
			for i := 0; i < n; i++ {
				vals[i], _ = it.GetProperty(src, src.Obj(), runtime.StringKey(runtime.NumberToString(float64(i))))
			}
		}
		if mapFn != nil {
			out := make([]Value, len(vals))
			for i, v := range vals {
				r, c := it.CallFunction(mapFn, Undefined, []Value{v, runtime.Int(i)})
				if c.IsAbrupt() {
					return Undefined, completionToErr(c)
				}
				out[i] = r
			}
			vals = out
		}
		return runtime.Object_(it.NewArray(vals)), nil
	})

	it.defineGlobal("Array", runtime.Object_(ctorObj))
}

func (it *Interp) elemAt(o *Object, i int) Value {
	if i < 0 || i >= len(o.Elements) || o.Elements[i] == nil {
		return Undefined
	}
	return *o.Elements[i]
}

func (it *Interp) arrayFind(this Value, args []Value, fromEnd bool) (Value, int, error) {
	fn, thisArg := arg(args, 0), arg(args, 1)
	if !fn.IsCallable() {
		return Undefined, -1, it.throwErr("TypeError", "callback is not a function")
	}
	vals := it.arrayValues(this.Obj())
	order := make([]int, len(vals))
	for i := range vals {
		order[i] = i
	}
	if fromEnd {
		for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
			order[i], order[j] = order[j], order[i]
		}
	}
	for _, i := range order {
		r, c := it.CallFunction(fn.Obj(), thisArg, []Value{vals[i], runtime.Int(i), this})
		if c.IsAbrupt() {
			return Undefined, -1, completionToErr(c)
		}
		if r.ToBoolean() {
			return vals[i], i, nil
		}
	}
	return Undefined, -1, nil
}

func (it *Interp) arrayReduce(this Value, args []Value, fromRight bool) (Value, error) {
	fn := arg(args, 0)
	if !fn.IsCallable() {
		return Undefined, it.throwErr("TypeError", "callback is not a function")
	}
	vals := it.arrayValues(this.Obj())
	order := make([]int, len(vals))
	for i := range vals {
		order[i] = i
	}
	if fromRight {
		for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
			order[i], order[j] = order[j], order[i]
		}
	}
	var acc Value
	start := 0
	if len(args) > 1 {
		acc = args[1]
	} else {
		if len(order) == 0 {
			return Undefined, it.throwErr("TypeError", "Reduce of empty array with no initial value")
		}
		acc = vals[order[0]]
		start = 1
	}
	for _, i := range order[start:] {
		r, c := it.CallFunction(fn.Obj(), Undefined, []Value{acc, vals[i], runtime.Int(i), this})
		if c.IsAbrupt() {
			return Undefined, completionToErr(c)
		}
		acc = r
	}
	return acc, nil
}

func (it *Interp) flattenArray(o *Object, depth int) []Value {
	var out []Value
	for _, v := range it.arrayValues(o) {
		if depth > 0 && v.IsObject() && v.Obj().InternalKind == runtime.KindArray {
			out = append(out, it.flattenArray(v.Obj(), depth-1)...)
		} else {
			out = append(out, v)
		}
	}
	return out
}

func relativeIndex(n float64, length, defaultForNaN int) int {
	if n != n { // NaN
		return defaultForNaN
	}
	idx := int(n)
	if idx < 0 {
		idx += length
		if idx < 0 {
			idx = 0
		}
	}
	if idx > length {
		idx = length
	}
	return idx
}

