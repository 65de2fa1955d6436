package interp

import (
	"math"
	"math/big"

	"github.com/esgo-lang/esgo/internal/interp/runtime"
)

// ToPrimitive implements OrdinaryToPrimitive (spec.md §4.4.1): tries
// Symbol.toPrimitive, then valueOf/toString ("number" hint) or
// toString/valueOf ("string" hint).
func (it *Interp) ToPrimitive(v Value, hint string) (Value, Completion) {
	if !v.IsObject() {
		return v, normalC()
	}
	o := v.Obj()
	if sym := it.wellKnown("toPrimitive"); sym != nil {
		if fn, ok := it.lookupMethod(o, runtime.SymbolKey(sym)); ok {
			h := hint
			if h == "" {
				h = "default"
			}
			return it.CallFunction(fn, v, []Value{runtime.String(h)})
		}
	}
	order := []string{"valueOf", "toString"}
	if hint == "string" {
		order = []string{"toString", "valueOf"}
	}
	for _, name := range order {
		if fn, ok := it.lookupMethod(o, runtime.StringKey(name)); ok {
			res, c := it.CallFunction(fn, v, nil)
			if c.IsAbrupt() {
				return Undefined, c
			}
			if !res.IsObject() {
				return res, normalC()
			}
		}
	}
	return it.throwType("Cannot convert object to primitive value")
}

func (it *Interp) lookupMethod(o *Object, key PropertyKey) (*Object, bool) {
	for cur := o; cur != nil; cur = cur.Prototype {
		if pd, ok := cur.GetOwnProperty(key); ok && !pd.IsAccessor && pd.Value.IsCallable() {
			return pd.Value.Obj(), true
		}
	}
	return nil, false
}

// ToNumber implements ToNumber (spec.md §4.4.1).
func (it *Interp) ToNumber(v Value) float64 {
	switch v.Kind() {
	case runtime.KindUndefined:
		return math.NaN()
	case runtime.KindNull:
		return 0
	case runtime.KindBoolean:
		if v.Bool() {
			return 1
		}
		return 0
	case runtime.KindNumber:
		return v.Float()
	case runtime.KindString:
		return runtime.ToNumberFromString(v.Str())
	case runtime.KindBigInt:
		f, _ := new(big.Float).SetInt(v.Big()).Float64()
		return f
	case runtime.KindObject:
		p, c := it.ToPrimitive(v, "number")
		if c.IsAbrupt() {
			return math.NaN()
		}
		return it.ToNumber(p)
	}
	return math.NaN()
}

// ToStringValue implements ToString (spec.md §3).
func (it *Interp) ToStringValue(v Value) string {
	switch v.Kind() {
	case runtime.KindUndefined:
		return "undefined"
	case runtime.KindNull:
		return "null"
	case runtime.KindBoolean:
		if v.Bool() {
			return "true"
		}
		return "false"
	case runtime.KindNumber:
		return runtime.NumberToString(v.Float())
	case runtime.KindString:
		return v.Str()
	case runtime.KindBigInt:
		return v.Big().String()
	case runtime.KindSymbol:
		return v.Sym().String()
	case runtime.KindObject:
		if v.Obj().InternalKind == runtime.KindArray {
			return it.arrayJoin(v.Obj(), ",")
		}
		p, c := it.ToPrimitive(v, "string")
		if c.IsAbrupt() {
			return ""
		}
		return it.ToStringValue(p)
	}
	return ""
}

func (it *Interp) arrayJoin(o *Object, sep string) string {
	var sb []byte
	for i, e := range o.Elements {
		if i > 0 {
			sb = append(sb, sep...)
		}
		if e != nil && !e.IsNullish() {
			sb = append(sb, it.ToStringValue(*e)...)
		}
	}
	return string(sb)
}

func toInt32(n float64) int32 {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	u := uint32(int64(math.Trunc(n)))
	return int32(u)
}

func toUint32(n float64) uint32 {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	return uint32(int64(math.Trunc(n)))
}

// EvalBinary implements the arithmetic/comparison/bitwise operator
// contracts (spec.md §4.4.1), including BigInt rules: same-type
// arithmetic yields BigInt, mixing with Number throws, but comparisons
// against Number are allowed by mathematical value.
func (it *Interp) EvalBinary(op string, l, r Value) (Value, Completion) {
	switch op {
	case "+":
		return it.evalAdd(l, r)
	case "-", "*", "/", "%", "**":
		return it.evalArith(op, l, r)
	case "==":
		eq, c := it.abstractEquals(l, r)
		return runtime.Bool(eq), c
	case "!=":
		eq, c := it.abstractEquals(l, r)
		return runtime.Bool(!eq), c
	case "===":
		return runtime.Bool(runtime.StrictEquals(l, r)), normalC()
	case "!==":
		return runtime.Bool(!runtime.StrictEquals(l, r)), normalC()
	case "<", ">", "<=", ">=":
		return it.evalRelational(op, l, r)
	case "&", "|", "^", "<<", ">>", ">>>":
		return it.evalBitwise(op, l, r)
	case "instanceof":
		return it.evalInstanceof(l, r)
	case "in":
		return it.evalIn(l, r)
	}
	return Undefined, it.throwType("unsupported operator %q", op)
}

func (it *Interp) evalAdd(l, r Value) (Value, Completion) {
	lp, c := it.ToPrimitive(l, "")
	if c.IsAbrupt() {
		return Undefined, c
	}
	rp, c := it.ToPrimitive(r, "")
	if c.IsAbrupt() {
		return Undefined, c
	}
	if lp.IsString() || rp.IsString() {
		return runtime.String(it.ToStringValue(lp) + it.ToStringValue(rp)), normalC()
	}
	if lp.IsBigInt() || rp.IsBigInt() {
		if !lp.IsBigInt() || !rp.IsBigInt() {
			return it.throwType("Cannot mix BigInt and other types, use explicit conversions")
		}
		return runtime.BigInt(new(big.Int).Add(lp.Big(), rp.Big())), normalC()
	}
	return runtime.Number(it.ToNumber(lp) + it.ToNumber(rp)), normalC()
}

func (it *Interp) evalArith(op string, l, r Value) (Value, Completion) {
	lp, c := it.ToPrimitive(l, "number")
	if c.IsAbrupt() {
		return Undefined, c
	}
	rp, c := it.ToPrimitive(r, "number")
	if c.IsAbrupt() {
		return Undefined, c
	}
	if lp.IsBigInt() || rp.IsBigInt() {
		if !lp.IsBigInt() || !rp.IsBigInt() {
			return it.throwType("Cannot mix BigInt and other types, use explicit conversions")
		}
		return it.bigintArith(op, lp.Big(), rp.Big())
	}
	a, b := it.ToNumber(lp), it.ToNumber(rp)
	switch op {
	case "-":
		return runtime.Number(a - b), normalC()
	case "*":
		return runtime.Number(a * b), normalC()
	case "/":
		return runtime.Number(a / b), normalC()
	case "%":
		return runtime.Number(math.Mod(a, b)), normalC()
	case "**":
		return runtime.Number(math.Pow(a, b)), normalC()
	}
	return Undefined, it.throwType("unsupported operator %q", op)
}

func (it *Interp) evalRelational(op string, l, r Value) (Value, Completion) {
	lp, c := it.ToPrimitive(l, "number")
	if c.IsAbrupt() {
		return Undefined, c
	}
	rp, c := it.ToPrimitive(r, "number")
	if c.IsAbrupt() {
		return Undefined, c
	}
	if lp.IsString() && rp.IsString() {
		a, b := lp.Str(), rp.Str()
		switch op {
		case "<":
			return runtime.Bool(a < b), normalC()
		case ">":
			return runtime.Bool(a > b), normalC()
		case "<=":
			return runtime.Bool(a <= b), normalC()
		case ">=":
			return runtime.Bool(a >= b), normalC()
		}
	}
	if lp.IsBigInt() && rp.IsBigInt() {
		cmp := lp.Big().Cmp(rp.Big())
		return runtime.Bool(relCmp(op, cmp)), normalC()
	}
	a, b := it.ToNumber(lp), it.ToNumber(rp)
	if math.IsNaN(a) || math.IsNaN(b) {
		return runtime.False, normalC()
	}
	switch op {
	case "<":
		return runtime.Bool(a < b), normalC()
	case ">":
		return runtime.Bool(a > b), normalC()
	case "<=":
		return runtime.Bool(a <= b), normalC()
	case ">=":
		return runtime.Bool(a >= b), normalC()
	}
	return Undefined, it.throwType("unsupported operator %q", op)
}

func relCmp(op string, cmp int) bool {
	switch op {
	case "<":
		return cmp < 0
	case ">":
		return cmp > 0
	case "<=":
		return cmp <= 0
	case ">=":
		return cmp >= 0
	}
	return false
}

func (it *Interp) evalBitwise(op string, l, r Value) (Value, Completion) {
	lp, c := it.ToPrimitive(l, "number")
	if c.IsAbrupt() {
		return Undefined, c
	}
	rp, c := it.ToPrimitive(r, "number")
	if c.IsAbrupt() {
		return Undefined, c
	}
	if lp.IsBigInt() || rp.IsBigInt() {
		if !lp.IsBigInt() || !rp.IsBigInt() {
			return it.throwType("Cannot mix BigInt and other types, use explicit conversions")
		}
		return it.bigintArith(op, lp.Big(), rp.Big())
	}
	if op == ">>>" {
		a, b := toUint32(it.ToNumber(lp)), toUint32(it.ToNumber(rp))%32
		return runtime.Number(float64(a >> b)), normalC()
	}
	a, b := toInt32(it.ToNumber(lp)), toInt32(it.ToNumber(rp))
	switch op {
	case "&":
		return runtime.Number(float64(a & b)), normalC()
	case "|":
		return runtime.Number(float64(a | b)), normalC()
	case "^":
		return runtime.Number(float64(a ^ b)), normalC()
	case "<<":
		return runtime.Number(float64(a << (uint32(b) % 32))), normalC()
	case ">>":
		return runtime.Number(float64(a >> (uint32(b) % 32))), normalC()
	}
	return Undefined, it.throwType("unsupported operator %q", op)
}

func (it *Interp) evalInstanceof(l, r Value) (Value, Completion) {
	if !r.IsCallable() {
		return Undefined, it.throwType("Right-hand side of 'instanceof' is not callable")
	}
	if !l.IsObject() {
		return runtime.False, normalC()
	}
	protoVal, c := it.GetProperty(r, r.Obj(), runtime.StringKey("prototype"))
	if c.IsAbrupt() {
		return Undefined, c
	}
	if !protoVal.IsObject() {
		return Undefined, it.throwType("Function has non-object prototype in instanceof check")
	}
	proto := protoVal.Obj()
	for cur := l.Obj().Prototype; cur != nil; cur = cur.Prototype {
		if cur == proto {
			return runtime.True, normalC()
		}
	}
	return runtime.False, normalC()
}

func (it *Interp) evalIn(l, r Value) (Value, Completion) {
	if !r.IsObject() {
		return Undefined, it.throwType("Cannot use 'in' operator to search for '%s' in non-object", it.ToStringValue(l))
	}
	key := it.ToPropertyKey(l)
	return runtime.Bool(it.HasProperty(r.Obj(), key)), normalC()
}

// abstractEquals implements `==` (spec.md §4.4.1).
func (it *Interp) abstractEquals(l, r Value) (bool, Completion) {
	if l.Kind() == r.Kind() {
		return runtime.StrictEquals(l, r), normalC()
	}
	if l.IsNullish() && r.IsNullish() {
		return true, normalC()
	}
	if l.IsNullish() || r.IsNullish() {
		return false, normalC()
	}
	if l.IsNumber() && r.IsString() {
		return l.Float() == runtime.ToNumberFromString(r.Str()), normalC()
	}
	if l.IsString() && r.IsNumber() {
		return runtime.ToNumberFromString(l.Str()) == r.Float(), normalC()
	}
	if l.IsBigInt() && r.IsString() {
		bi, ok := new(big.Int).SetString(r.Str(), 10)
		return ok && l.Big().Cmp(bi) == 0, normalC()
	}
	if l.IsString() && r.IsBigInt() {
		return it.abstractEqualsSwap(r, l)
	}
	if l.IsBoolean() {
		return it.abstractEqualsValue(runtime.Number(boolToFloat(l.Bool())), r)
	}
	if r.IsBoolean() {
		return it.abstractEqualsValue(l, runtime.Number(boolToFloat(r.Bool())))
	}
	if (l.IsNumber() || l.IsString() || l.IsBigInt() || l.IsSymbol()) && r.IsObject() {
		p, c := it.ToPrimitive(r, "")
		if c.IsAbrupt() {
			return false, c
		}
		return it.abstractEqualsValue(l, p)
	}
	if l.IsObject() && (r.IsNumber() || r.IsString() || r.IsBigInt() || r.IsSymbol()) {
		p, c := it.ToPrimitive(l, "")
		if c.IsAbrupt() {
			return false, c
		}
		return it.abstractEqualsValue(p, r)
	}
	if l.IsNumber() && r.IsBigInt() {
		f, _ := new(big.Float).SetInt(r.Big()).Float64()
		return l.Float() == f, normalC()
	}
	if l.IsBigInt() && r.IsNumber() {
		return it.abstractEqualsSwap(r, l)
	}
	return false, normalC()
}

func (it *Interp) abstractEqualsValue(l, r Value) (bool, Completion) { return it.abstractEquals(l, r) }
func (it *Interp) abstractEqualsSwap(l, r Value) (bool, Completion)  { return it.abstractEquals(l, r) }

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
