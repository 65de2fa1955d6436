package interp

import (
	"math"
	"strconv"

	"github.com/esgo-lang/esgo/internal/interp/runtime"
)

// setupNumberBuiltins wires Number.prototype and the Number constructor
// (spec.md §4.3), including the ES2015 safe-integer/epsilon statics.
func (it *Interp) setupNumberBuiltins() {
	proto := it.protos.number

	thisNum := func(this Value) float64 {
		if this.IsNumber() {
			return this.Float()
		}
		if this.IsObject() && this.Obj().InternalKind == runtime.KindNumberWrapper {
			return this.Obj().PrimitiveValue.Float()
		}
		return it.ToNumber(this)
	}

	it.method(proto, "toString", 1, func(this Value, args []Value) (Value, error) {
		n := thisNum(this)
		radix := 10
		if len(args) > 0 && !args[0].IsUndefined() {
			radix = int(it.ToNumber(args[0]))
		}
		if radix == 10 {
			return runtime.String(runtime.NumberToString(n)), nil
		}
		if radix < 2 || radix > 36 {
			return Undefined, it.throwErr("RangeError", "toString() radix must be between 2 and 36")
		}
		if n != math.Trunc(n) {
			return runtime.String(strconv.FormatFloat(n, 'g', -1, 64)), nil
		}
		neg := n < 0
		s := strconv.FormatInt(int64(math.Abs(n)), radix)
		if neg {
			s = "-" + s
		}
		return runtime.String(s), nil
	})
	it.method(proto, "valueOf", 0, func(this Value, _ []Value) (Value, error) {
		return runtime.Number(thisNum(this)), nil
	})
	it.method(proto, "toFixed", 1, func(this Value, args []Value) (Value, error) {
		digits := 0
		if len(args) > 0 {
			digits = int(it.ToNumber(args[0]))
		}
		return runtime.String(strconv.FormatFloat(thisNum(this), 'f', digits, 64)), nil
	})
	it.method(proto, "toPrecision", 1, func(this Value, args []Value) (Value, error) {
		if len(args) == 0 || args[0].IsUndefined() {
			return runtime.String(runtime.NumberToString(thisNum(this))), nil
		}
		prec := int(it.ToNumber(args[0]))
		return runtime.String(strconv.FormatFloat(thisNum(this), 'g', prec, 64)), nil
	})
	it.method(proto, "toExponential", 1, func(this Value, args []Value) (Value, error) {
		digits := -1
		if len(args) > 0 && !args[0].IsUndefined() {
			digits = int(it.ToNumber(args[0]))
		}
		s := strconv.FormatFloat(thisNum(this), 'e', digits, 64)
		return runtime.String(normalizeJSExponent(s)), nil
	})
	it.method(proto, "toLocaleString", 0, func(this Value, _ []Value) (Value, error) {
		return runtime.String(runtime.NumberToString(thisNum(this))), nil
	})

	ctorObj := it.ctor("Number", 1, proto, func(args []Value, newTarget *Object) (Value, error) {
		n := 0.0
		if len(args) > 0 {
			n = it.ToNumber(args[0])
		}
		if newTarget == nil {
			return runtime.Number(n), nil
		}
		o := runtime.NewObject(proto)
		o.InternalKind = runtime.KindNumberWrapper
		o.PrimitiveValue = runtime.Number(n)
		return runtime.Object_(o), nil
	})
	it.staticValue(ctorObj, "MAX_SAFE_INTEGER", runtime.Number(9007199254740991))
	it.staticValue(ctorObj, "MIN_SAFE_INTEGER", runtime.Number(-9007199254740991))
	it.staticValue(ctorObj, "MAX_VALUE", runtime.Number(math.MaxFloat64))
	it.staticValue(ctorObj, "MIN_VALUE", runtime.Number(5e-324))
	it.staticValue(ctorObj, "EPSILON", runtime.Number(2.220446049250313e-16))
	it.staticValue(ctorObj, "POSITIVE_INFINITY", runtime.Number(math.Inf(1)))
	it.staticValue(ctorObj, "NEGATIVE_INFINITY", runtime.Number(math.Inf(-1)))
	it.staticValue(ctorObj, "NaN", runtime.Number(math.NaN()))
	it.method(ctorObj, "isInteger", 1, func(_ Value, args []Value) (Value, error) {
		v := arg(args, 0)
		return runtime.Bool(v.IsNumber() && !math.IsNaN(v.Float()) && !math.IsInf(v.Float(), 0) && v.Float() == math.Trunc(v.Float())), nil
	})
	it.method(ctorObj, "isSafeInteger", 1, func(_ Value, args []Value) (Value, error) {
		v := arg(args, 0)
		if !v.IsNumber() {
			return runtime.False, nil
		}
		n := v.Float()
		return runtime.Bool(!math.IsNaN(n) && !math.IsInf(n, 0) && n == math.Trunc(n) && math.Abs(n) <= 9007199254740991), nil
	})
	it.method(ctorObj, "isFinite", 1, func(_ Value, args []Value) (Value, error) {
		v := arg(args, 0)
		return runtime.Bool(v.IsNumber() && !math.IsNaN(v.Float()) && !math.IsInf(v.Float(), 0)), nil
	})
	it.method(ctorObj, "isNaN", 1, func(_ Value, args []Value) (Value, error) {
		v := arg(args, 0)
		return runtime.Bool(v.IsNumber() && math.IsNaN(v.Float())), nil
	})
	it.method(ctorObj, "parseFloat", 1, func(_ Value, args []Value) (Value, error) {
		return runtime.Number(parseFloatJS(it.ToStringValue(arg(args, 0)))), nil
	})
	it.method(ctorObj, "parseInt", 2, func(_ Value, args []Value) (Value, error) {
		return runtime.Number(parseIntJS(it.ToStringValue(arg(args, 0)), int(it.ToNumber(arg(args, 1))))), nil
	})

	it.defineGlobal("Number", runtime.Object_(ctorObj))
}

func normalizeJSExponent(s string) string {
	idx := -1
	for i, c := range s {
		if c == 'e' {
			idx = i
			break
		}
	}
	if idx < 0 {
		return s
	}
	mantissa, exp := s[:idx], s[idx+1:]
	sign := "+"
	if len(exp) > 0 && (exp[0] == '+' || exp[0] == '-') {
		if exp[0] == '-' {
			sign = "-"
		}
		exp = exp[1:]
	}
	for len(exp) > 1 && exp[0] == '0' {
		exp = exp[1:]
	}
	return mantissa + "e" + sign + exp
}

// setupBooleanBuiltins wires Boolean.prototype and the Boolean
// constructor (spec.md §4.3).
func (it *Interp) setupBooleanBuiltins() {
	proto := it.protos.boolean
	thisBool := func(this Value) bool {
		if this.IsBoolean() {
			return this.Bool()
		}
		if this.IsObject() && this.Obj().InternalKind == runtime.KindBooleanWrapper {
			return this.Obj().PrimitiveValue.Bool()
		}
		return this.ToBoolean()
	}
	it.method(proto, "toString", 0, func(this Value, _ []Value) (Value, error) {
		if thisBool(this) {
			return runtime.String("true"), nil
		}
		return runtime.String("false"), nil
	})
	it.method(proto, "valueOf", 0, func(this Value, _ []Value) (Value, error) {
		return runtime.Bool(thisBool(this)), nil
	})
	ctorObj := it.ctor("Boolean", 1, proto, func(args []Value, newTarget *Object) (Value, error) {
		b := arg(args, 0).ToBoolean()
		if newTarget == nil {
			return runtime.Bool(b), nil
		}
		o := runtime.NewObject(proto)
		o.InternalKind = runtime.KindBooleanWrapper
		o.PrimitiveValue = runtime.Bool(b)
		return runtime.Object_(o), nil
	})
	it.defineGlobal("Boolean", runtime.Object_(ctorObj))
}
