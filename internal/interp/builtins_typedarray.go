package interp

import (
	"math"

	"github.com/esgo-lang/esgo/internal/interp/runtime"
)

// typedArrayKindInfo describes one TypedArray flavor's element size and
// numeric conversion (spec.md §4.7). Elements are kept as boxed Numbers
// in runtime.Object.Elements rather than aliasing raw bytes directly. A
// TypedArray constructed over an ArrayBuffer records the buffer and byte
// offset, but the buffer's BufferData bytes are not copied into Elements
// and element writes are not copied back to BufferData.
type typedArrayKindInfo struct {
	bytesPerElement int
}

var typedArrayKinds = map[string]typedArrayKindInfo{
	"Int8Array":         {1},
	"Uint8Array":        {1},
	"Uint8ClampedArray": {1},
	"Int16Array":        {2},
	"Uint16Array":       {2},
	"Int32Array":        {4},
	"Uint32Array":       {4},
	"Float32Array":      {4},
	"Float64Array":      {8},
	"BigInt64Array":     {8},
	"BigUint64Array":    {8},
}

func typedArrayConvert(kind string, n float64) Value {
	if math.IsNaN(n) {
		n = 0
	}
	switch kind {
	case "Int8Array":
		return runtime.Number(float64(int8(int64(n))))
	case "Uint8Array":
		return runtime.Number(float64(uint8(int64(n))))
	case "Uint8ClampedArray":
		if n < 0 {
			n = 0
		} else if n > 255 {
			n = 255
		}
		return runtime.Number(math.Round(n))
	case "Int16Array":
		return runtime.Number(float64(int16(int64(n))))
	case "Uint16Array":
		return runtime.Number(float64(uint16(int64(n))))
	case "Int32Array":
		return runtime.Number(float64(int32(int64(n))))
	case "Uint32Array":
		return runtime.Number(float64(uint32(int64(n))))
	case "Float32Array":
		return runtime.Number(float64(float32(n)))
	default:
		return runtime.Number(n)
	}
}

// setupTypedArrayBuiltins wires ArrayBuffer and the eleven TypedArray
// flavors (spec.md §4.7): shared prototype methods (set/subarray/slice/
// fill/indexOf/map/forEach/etc. via a generic numeric-array surface)
// plus one constructor per kind.
func (it *Interp) setupTypedArrayBuiltins() {
	it.setupArrayBuffer()

	shared := runtime.NewObject(it.protos.object)
	it.getter(shared, "length", func(this Value, _ []Value) (Value, error) {
		return runtime.Int(len(this.Obj().Elements)), nil
	})
	it.getter(shared, "byteLength", func(this Value, _ []Value) (Value, error) {
		o := this.Obj()
		return runtime.Int(len(o.Elements) * typedArrayKinds[o.TypedArrayKind].bytesPerElement), nil
	})
	it.getter(shared, "byteOffset", func(this Value, _ []Value) (Value, error) {
		return runtime.Int(this.Obj().ByteOffset), nil
	})
	it.getter(shared, "buffer", func(this Value, _ []Value) (Value, error) {
		o := this.Obj()
		if o.Buffer == nil {
			return Undefined, nil
		}
		return runtime.Object_(o.Buffer), nil
	})
	it.method(shared, "set", 2, func(this Value, args []Value) (Value, error) {
		o := this.Obj()
		offset := 0
		if len(args) > 1 {
			offset = int(it.ToNumber(args[1]))
		}
		src := arg(args, 0)
		var values []Value
		if src.IsObject() {
			values = it.arrayValues(src.Obj())
		}
		for i, v := range values {
			if offset+i >= len(o.Elements) {
				break
			}
			vv := typedArrayConvert(o.TypedArrayKind, it.ToNumber(v))
			o.Elements[offset+i] = &vv
		}
		return Undefined, nil
	})
	it.method(shared, "fill", 1, func(this Value, args []Value) (Value, error) {
		o := this.Obj()
		v := typedArrayConvert(o.TypedArrayKind, it.ToNumber(arg(args, 0)))
		start, end := 0, len(o.Elements)
		if len(args) > 1 {
			start = relativeIndex(it.ToNumber(args[1]), len(o.Elements), 0)
		}
		if len(args) > 2 {
			end = relativeIndex(it.ToNumber(args[2]), len(o.Elements), len(o.Elements))
		}
		for i := start; i < end; i++ {
			vv := v
			o.Elements[i] = &vv
		}
		return this, nil
	})
	it.method(shared, "subarray", 2, func(this Value, args []Value) (Value, error) {
		o := this.Obj()
		values := it.arrayValues(o)
		start := relativeIndex(it.ToNumber(arg(args, 0)), len(values), 0)
		end := len(values)
		if len(args) > 1 && !args[1].IsUndefined() {
			end = relativeIndex(it.ToNumber(args[1]), len(values), len(values))
		}
		if start > end {
			start = end
		}
		return runtime.Object_(it.newTypedArray(o.TypedArrayKind, values[start:end])), nil
	})
	it.method(shared, "slice", 2, func(this Value, args []Value) (Value, error) {
		o := this.Obj()
		values := it.arrayValues(o)
		start := 0
		if len(args) > 0 {
			start = relativeIndex(it.ToNumber(args[0]), len(values), 0)
		}
		end := len(values)
		if len(args) > 1 && !args[1].IsUndefined() {
			end = relativeIndex(it.ToNumber(args[1]), len(values), len(values))
		}
		if start > end {
			start = end
		}
		out := make([]Value, end-start)
		copy(out, values[start:end])
		return runtime.Object_(it.newTypedArray(o.TypedArrayKind, out)), nil
	})
	it.method(shared, "indexOf", 1, func(this Value, args []Value) (Value, error) {
		values := it.arrayValues(this.Obj())
		target := arg(args, 0)
		for i, v := range values {
			if runtime.SameValueZero(v, target) {
				return runtime.Int(i), nil
			}
		}
		return runtime.Int(-1), nil
	})
	it.method(shared, "includes", 1, func(this Value, args []Value) (Value, error) {
		values := it.arrayValues(this.Obj())
		target := arg(args, 0)
		for _, v := range values {
			if runtime.SameValueZero(v, target) {
				return runtime.True, nil
			}
		}
		return runtime.False, nil
	})
	it.method(shared, "join", 1, func(this Value, args []Value) (Value, error) {
		sep := ","
		if len(args) > 0 && !args[0].IsUndefined() {
			sep = it.ToStringValue(args[0])
		}
		return runtime.String(it.arrayJoin(this.Obj(), sep)), nil
	})
	it.method(shared, "forEach", 1, func(this Value, args []Value) (Value, error) {
		fn := arg(args, 0)
		if !fn.IsObject() || !fn.IsCallable() {
			return Undefined, it.throwType("%s is not a function", Inspect(fn))
		}
		thisArg := arg(args, 1)
		values := it.arrayValues(this.Obj())
		for i, v := range values {
			if _, c := it.CallFunction(fn.Obj(), thisArg, []Value{v, runtime.Int(i), this}); c.IsAbrupt() {
				return Undefined, completionToErr(c)
			}
		}
		return Undefined, nil
	})
	it.method(shared, "map", 1, func(this Value, args []Value) (Value, error) {
		fn := arg(args, 0)
		if !fn.IsObject() || !fn.IsCallable() {
			return Undefined, it.throwType("%s is not a function", Inspect(fn))
		}
		o := this.Obj()
		values := it.arrayValues(o)
		out := make([]Value, len(values))
		for i, v := range values {
			r, c := it.CallFunction(fn.Obj(), arg(args, 1), []Value{v, runtime.Int(i), this})
			if c.IsAbrupt() {
				return Undefined, completionToErr(c)
			}
			out[i] = r
		}
		return runtime.Object_(it.newTypedArray(o.TypedArrayKind, out)), nil
	})
	it.method(shared, "reduce", 2, func(this Value, args []Value) (Value, error) {
		return it.arrayReduce(this, args, false)
	})
	it.method(shared, "reverse", 0, func(this Value, _ []Value) (Value, error) {
		o := this.Obj()
		for i, j := 0, len(o.Elements)-1; i < j; i, j = i+1, j-1 {
			o.Elements[i], o.Elements[j] = o.Elements[j], o.Elements[i]
		}
		return this, nil
	})
	it.method(shared, "toString", 0, func(this Value, _ []Value) (Value, error) {
		return runtime.String(it.arrayJoin(this.Obj(), ",")), nil
	})
	iterFn := it.nativeFunc("", 0, func(this Value, _ []Value) (Value, error) {
		return runtime.Object_(it.newValueIterator(it.arrayValues(this.Obj()))), nil
	})
	shared.DefineOwnProperty(runtime.StringKey("values"), runtime.DataProperty(runtime.Object_(iterFn)))
	shared.DefineOwnProperty(runtime.SymbolKey(it.wellKnown("iterator")), runtime.DataProperty(runtime.Object_(iterFn)))

	for name, info := range typedArrayKinds {
		kind := name
		proto := runtime.NewObject(shared)
		ctorObj := it.ctor(kind, 1, proto, func(args []Value, newTarget *Object) (Value, error) {
			if newTarget == nil {
				return Undefined, it.throwType("Constructor %s requires 'new'", kind)
			}
			a := arg(args, 0)
			switch {
			case a.IsUndefined():
				return runtime.Object_(it.newTypedArrayFromProto(proto, kind, nil)), nil
			case a.IsNumber():
				n := int(a.Float())
				vals := make([]Value, n)
				for i := range vals {
					vals[i] = runtime.Number(0)
				}
				return runtime.Object_(it.newTypedArrayFromProto(proto, kind, vals)), nil
			case a.IsObject() && a.Obj().InternalKind == runtime.KindArrayBuffer:
				buf := a.Obj()
				offset := 0
				if len(args) > 1 {
					offset = int(it.ToNumber(args[1]))
				}
				length := (len(buf.BufferData) - offset) / info.bytesPerElement
				if len(args) > 2 && !args[2].IsUndefined() {
					length = int(it.ToNumber(args[2]))
				}
				o := it.newTypedArrayFromProto(proto, kind, make([]Value, length))
				o.Buffer = buf
				o.ByteOffset = offset
				return runtime.Object_(o), nil
			case a.IsObject():
				vals, c := it.IterateAll(a)
				if c.IsAbrupt() {
					vals = it.arrayValues(a.Obj())
				}
				out := make([]Value, len(vals))
				for i, v := range vals {
					out[i] = typedArrayConvert(kind, it.ToNumber(v))
				}
				return runtime.Object_(it.newTypedArrayFromProto(proto, kind, out)), nil
			default:
				return runtime.Object_(it.newTypedArrayFromProto(proto, kind, nil)), nil
			}
		})
		it.method(ctorObj, "from", 1, func(_ Value, args []Value) (Value, error) {
			vals, c := it.IterateAll(arg(args, 0))
			if c.IsAbrupt() {
				return Undefined, completionToErr(c)
			}
			out := make([]Value, len(vals))
			for i, v := range vals {
				out[i] = typedArrayConvert(kind, it.ToNumber(v))
			}
			return runtime.Object_(it.newTypedArrayFromProto(proto, kind, out)), nil
		})
		it.method(ctorObj, "of", 0, func(_ Value, args []Value) (Value, error) {
			out := make([]Value, len(args))
			for i, v := range args {
				out[i] = typedArrayConvert(kind, it.ToNumber(v))
			}
			return runtime.Object_(it.newTypedArrayFromProto(proto, kind, out)), nil
		})
		it.staticValue(ctorObj, "BYTES_PER_ELEMENT", runtime.Int(info.bytesPerElement))
		it.defineGlobal(kind, runtime.Object_(ctorObj))
	}
}

func (it *Interp) newTypedArray(kind string, values []Value) *Object {
	return it.newTypedArrayFromProto(it.typedArrayProtoFor(kind), kind, values)
}

func (it *Interp) typedArrayProtoFor(kind string) *Object {
	if pd, ok := it.GlobalObject.GetOwnProperty(runtime.StringKey(kind)); ok && pd.Value.IsObject() {
		g := pd.Value
		if pv, c := it.GetProperty(g, g.Obj(), runtime.StringKey("prototype")); !c.IsAbrupt() && pv.IsObject() {
			return pv.Obj()
		}
	}
	return it.protos.object
}

func (it *Interp) newTypedArrayFromProto(proto *Object, kind string, values []Value) *Object {
	o := runtime.NewObject(proto)
	o.InternalKind = runtime.KindTypedArray
	o.TypedArrayKind = kind
	o.Elements = make([]*Value, len(values))
	for i, v := range values {
		vv := typedArrayConvert(kind, it.ToNumber(v))
		o.Elements[i] = &vv
	}
	return o
}

func (it *Interp) setupArrayBuffer() {
	proto := runtime.NewObject(it.protos.object)
	it.getter(proto, "byteLength", func(this Value, _ []Value) (Value, error) {
		return runtime.Int(len(this.Obj().BufferData)), nil
	})
	it.method(proto, "slice", 2, func(this Value, args []Value) (Value, error) {
		data := this.Obj().BufferData
		start := relativeIndex(it.ToNumber(arg(args, 0)), len(data), 0)
		end := len(data)
		if len(args) > 1 && !args[1].IsUndefined() {
			end = relativeIndex(it.ToNumber(args[1]), len(data), len(data))
		}
		if start > end {
			start = end
		}
		out := make([]byte, end-start)
		copy(out, data[start:end])
		return runtime.Object_(it.newArrayBuffer(out)), nil
	})

	ctorObj := it.ctor("ArrayBuffer", 1, proto, func(args []Value, newTarget *Object) (Value, error) {
		if newTarget == nil {
			return Undefined, it.throwType("Constructor ArrayBuffer requires 'new'")
		}
		n := 0
		if len(args) > 0 {
			n = int(it.ToNumber(args[0]))
		}
		return runtime.Object_(it.newArrayBuffer(make([]byte, n))), nil
	})
	it.method(ctorObj, "isView", 1, func(_ Value, args []Value) (Value, error) {
		v := arg(args, 0)
		return runtime.Bool(v.IsObject() && v.Obj().InternalKind == runtime.KindTypedArray), nil
	})
	it.defineGlobal("ArrayBuffer", runtime.Object_(ctorObj))
}

func (it *Interp) newArrayBuffer(data []byte) *Object {
	o := runtime.NewObject(it.protos.object)
	o.InternalKind = runtime.KindArrayBuffer
	o.BufferData = data
	if pd, ok := it.GlobalObject.GetOwnProperty(runtime.StringKey("ArrayBuffer")); ok && pd.Value.IsObject() {
		g := pd.Value
		if pv, c := it.GetProperty(g, g.Obj(), runtime.StringKey("prototype")); !c.IsAbrupt() && pv.IsObject() {
			o.Prototype = pv.Obj()
		}
	}
	return o
}
