package interp

import (
	"strconv"

	"github.com/esgo-lang/esgo/internal/interp/runtime"
)

// GetProperty walks the prototype chain (spec.md §4.4.6), invoking
// accessor getters with receiver as `this`. Array exotic get (index,
// "length") is handled before falling into the generic own/prototype
// walk.
func (it *Interp) GetProperty(receiver Value, o *Object, key PropertyKey) (Value, Completion) {
	if o.InternalKind == runtime.KindArray || o.InternalKind == runtime.KindTypedArray {
		if key.Str == "length" && !key.IsSymbol {
			return runtime.Int(len(o.Elements)), normalC()
		}
		if idx, ok := parseArrayIndex(key); ok {
			if idx < len(o.Elements) {
				if o.Elements[idx] != nil {
					return *o.Elements[idx], normalC()
				}
				return Undefined, normalC()
			}
			if o.InternalKind == runtime.KindTypedArray {
				return Undefined, normalC()
			}
		}
	}
	if o.InternalKind == runtime.KindStringWrapper || key.Str == "length" && isStringLike(o) {
		// handled by builtins_string.go's wrapper property installer at
		// construction time; fall through to generic lookup otherwise.
	}
	for cur := o; cur != nil; cur = cur.Prototype {
		if pd, ok := cur.GetOwnProperty(key); ok {
			if pd.IsAccessor {
				if pd.Get == nil {
					return Undefined, normalC()
				}
				return it.CallFunction(pd.Get, receiver, nil)
			}
			return pd.Value, normalC()
		}
	}
	return Undefined, normalC()
}

func isStringLike(o *Object) bool { return o.InternalKind == runtime.KindStringWrapper }

func parseArrayIndex(key PropertyKey) (int, bool) {
	if key.IsSymbol {
		return 0, false
	}
	n, err := strconv.Atoi(key.Str)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// SetProperty walks the prototype chain looking for a setter (spec.md
// §4.4.6); otherwise creates/overwrites an own data property on o,
// honoring the Array exotic "length"/index behavior and Frozen/Sealed
// flags.
func (it *Interp) SetProperty(receiver Value, o *Object, key PropertyKey, v Value) Completion {
	if o.Frozen {
		return normalC()
	}
	for cur := o; cur != nil; cur = cur.Prototype {
		if pd, ok := cur.GetOwnProperty(key); ok {
			if pd.IsAccessor {
				if pd.Set == nil {
					return normalC()
				}
				_, c := it.CallFunction(pd.Set, receiver, []Value{v})
				return c
			}
			if cur == o {
				break
			}
		}
	}
	if o.InternalKind == runtime.KindArray {
		if key.Str == "length" && !key.IsSymbol {
			return it.setArrayLength(o, v)
		}
		if idx, ok := parseArrayIndex(key); ok {
			it.setArrayIndex(o, idx, v)
			return normalC()
		}
	}
	if o.InternalKind == runtime.KindTypedArray {
		if key.Str == "length" && !key.IsSymbol {
			return normalC()
		}
		if idx, ok := parseArrayIndex(key); ok {
			if idx < len(o.Elements) {
				it.setTypedElement(o, idx, v)
			}
			return normalC()
		}
	}
	if o.Sealed {
		if _, exists := o.GetOwnProperty(key); !exists {
			return normalC()
		}
	}
	o.DefineOwnProperty(key, runtime.DataProperty(v))
	return normalC()
}

func (it *Interp) setArrayIndex(o *Object, idx int, v Value) {
	if idx >= len(o.Elements) {
		grown := make([]*Value, idx+1)
		copy(grown, o.Elements)
		o.Elements = grown
	}
	vv := v
	o.Elements[idx] = &vv
}

// setTypedElement stores v into a TypedArray's backing Elements slot,
// clamping/truncating per TypedArrayKind (spec.md §4.7's typed-array
// element conversion).
func (it *Interp) setTypedElement(o *Object, idx int, v Value) {
	vv := typedArrayConvert(o.TypedArrayKind, it.ToNumber(v))
	o.Elements[idx] = &vv
}

func (it *Interp) setArrayLength(o *Object, v Value) Completion {
	n := it.ToNumber(v)
	newLen := int(n)
	if float64(newLen) != n || newLen < 0 {
		return it.throwRange("Invalid array length")
	}
	if newLen < len(o.Elements) {
		o.Elements = o.Elements[:newLen]
	} else if newLen > len(o.Elements) {
		grown := make([]*Value, newLen)
		copy(grown, o.Elements)
		o.Elements = grown
	}
	return normalC()
}

// HasProperty reports whether key resolves anywhere on the prototype
// chain (backs the `in` operator, spec.md §4.4.1).
func (it *Interp) HasProperty(o *Object, key PropertyKey) bool {
	if o.InternalKind == runtime.KindArray || o.InternalKind == runtime.KindTypedArray {
		if key.Str == "length" && !key.IsSymbol {
			return true
		}
		if idx, ok := parseArrayIndex(key); ok && idx < len(o.Elements) {
			return o.Elements[idx] != nil
		}
	}
	for cur := o; cur != nil; cur = cur.Prototype {
		if _, ok := cur.GetOwnProperty(key); ok {
			return true
		}
	}
	return false
}

// ToPropertyKey implements ToPropertyKey (spec.md §3 invariant 1):
// symbols stay symbols, everything else becomes a string.
func (it *Interp) ToPropertyKey(v Value) PropertyKey {
	if v.IsSymbol() {
		return runtime.SymbolKey(v.Sym())
	}
	return runtime.StringKey(it.ToStringValue(v))
}

// NewArray builds a dense Array object from elements.
func (it *Interp) NewArray(elements []Value) *Object {
	o := runtime.NewObject(it.protos.array)
	o.InternalKind = runtime.KindArray
	o.Elements = make([]*Value, len(elements))
	for i, e := range elements {
		ev := e
		o.Elements[i] = &ev
	}
	return o
}

func (it *Interp) arrayValues(o *Object) []Value {
	out := make([]Value, len(o.Elements))
	for i, e := range o.Elements {
		if e != nil {
			out[i] = *e
		} else {
			out[i] = Undefined
		}
	}
	return out
}
