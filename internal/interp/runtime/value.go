// Package runtime owns the value model shared by internal/interp: the
// tagged Value variant, Object records, property descriptors, and the
// lexical Environment chain (spec.md §3, §4.3), split into its own
// sub-package from the full ECMAScript value model.
package runtime

import (
	"fmt"
	"math"
	"math/big"
	"sort"
	"strconv"
	"strings"
)

// Kind tags which variant of Value is populated.
type Kind uint8

const (
	KindUndefined Kind = iota
	KindNull
	KindBoolean
	KindNumber
	KindBigInt
	KindString
	KindSymbol
	KindObject
)

// Value is the tagged variant backing every ECMAScript value (spec.md
// §3). Only the field matching Kind is meaningful.
type Value struct {
	kind   Kind
	bval   bool
	nval   float64
	bigval *big.Int
	sval   string
	symval *Symbol
	objval *Object
}

// Symbol is an opaque identity, optionally registered as a well-known.
type Symbol struct {
	Description string
	WellKnown   string // e.g. "iterator", "asyncIterator", "toStringTag"; empty for ordinary symbols
}

func (s *Symbol) String() string {
	if s.WellKnown != "" {
		return "Symbol(Symbol." + s.WellKnown + ")"
	}
	return "Symbol(" + s.Description + ")"
}

var (
	Undefined = Value{kind: KindUndefined}
	Null      = Value{kind: KindNull}
	True      = Value{kind: KindBoolean, bval: true}
	False     = Value{kind: KindBoolean, bval: false}
)

func Bool(b bool) Value {
	if b {
		return True
	}
	return False
}

func Number(n float64) Value { return Value{kind: KindNumber, nval: n} }
func Int(n int) Value        { return Value{kind: KindNumber, nval: float64(n)} }
func BigInt(b *big.Int) Value { return Value{kind: KindBigInt, bigval: b} }
func String(s string) Value  { return Value{kind: KindString, sval: s} }
func SymbolValue(s *Symbol) Value { return Value{kind: KindSymbol, symval: s} }
func Object_(o *Object) Value { return Value{kind: KindObject, objval: o} }

func (v Value) Kind() Kind         { return v.kind }
func (v Value) IsUndefined() bool  { return v.kind == KindUndefined }
func (v Value) IsNull() bool       { return v.kind == KindNull }
func (v Value) IsNullish() bool    { return v.kind == KindUndefined || v.kind == KindNull }
func (v Value) IsBoolean() bool    { return v.kind == KindBoolean }
func (v Value) IsNumber() bool     { return v.kind == KindNumber }
func (v Value) IsBigInt() bool     { return v.kind == KindBigInt }
func (v Value) IsString() bool     { return v.kind == KindString }
func (v Value) IsSymbol() bool     { return v.kind == KindSymbol }
func (v Value) IsObject() bool     { return v.kind == KindObject }

func (v Value) Bool() bool          { return v.bval }
func (v Value) Float() float64      { return v.nval }
func (v Value) Big() *big.Int       { return v.bigval }
func (v Value) Str() string         { return v.sval }
func (v Value) Sym() *Symbol        { return v.symval }
func (v Value) Obj() *Object        { return v.objval }

// IsCallable reports whether v can appear as a call/new target.
func (v Value) IsCallable() bool {
	return v.kind == KindObject && v.objval != nil && v.objval.Call != nil
}

// ToBoolean implements the ECMAScript ToBoolean abstract operation.
func (v Value) ToBoolean() bool {
	switch v.kind {
	case KindUndefined, KindNull:
		return false
	case KindBoolean:
		return v.bval
	case KindNumber:
		return v.nval != 0 && !math.IsNaN(v.nval)
	case KindBigInt:
		return v.bigval.Sign() != 0
	case KindString:
		return len(v.sval) > 0
	default:
		return true
	}
}

// TypeName implements the `typeof` operator (spec.md §4.4.1).
func (v Value) TypeName() string {
	switch v.kind {
	case KindUndefined:
		return "undefined"
	case KindNull:
		return "object"
	case KindBoolean:
		return "boolean"
	case KindNumber:
		return "number"
	case KindBigInt:
		return "bigint"
	case KindString:
		return "string"
	case KindSymbol:
		return "symbol"
	case KindObject:
		if v.objval != nil && v.objval.Call != nil {
			return "function"
		}
		return "object"
	}
	return "undefined"
}

// SameValueZero implements `===`-adjacent identity used by Map/Set keys
// and Array.prototype.includes (spec.md §3).
func SameValueZero(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindUndefined, KindNull:
		return true
	case KindBoolean:
		return a.bval == b.bval
	case KindNumber:
		if math.IsNaN(a.nval) && math.IsNaN(b.nval) {
			return true
		}
		return a.nval == b.nval
	case KindBigInt:
		return a.bigval.Cmp(b.bigval) == 0
	case KindString:
		return a.sval == b.sval
	case KindSymbol:
		return a.symval == b.symval
	case KindObject:
		return a.objval == b.objval
	}
	return false
}

// StrictEquals implements `===` (spec.md §4.4.1): like SameValueZero but
// +0 === -0 and NaN !== NaN.
func StrictEquals(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	if a.kind == KindNumber {
		return a.nval == b.nval
	}
	return SameValueZero(a, b)
}

// Is implements Object.is (spec.md §4.4.1): SameValueZero except it also
// distinguishes +0/-0.
func Is(a, b Value) bool {
	if a.kind == KindNumber && b.kind == KindNumber {
		if a.nval == 0 && b.nval == 0 {
			return math.Signbit(a.nval) == math.Signbit(b.nval)
		}
	}
	return SameValueZero(a, b)
}

// NumberToString renders a float64 per ECMAScript Number::toString
// (spec.md §3), approximated via Go's shortest round-trip formatting.
func NumberToString(n float64) string {
	if math.IsNaN(n) {
		return "NaN"
	}
	if math.IsInf(n, 1) {
		return "Infinity"
	}
	if math.IsInf(n, -1) {
		return "-Infinity"
	}
	if n == 0 {
		if math.Signbit(n) {
			return "0"
		}
		return "0"
	}
	abs := math.Abs(n)
	if abs >= 1e21 || (abs < 1e-6 && abs > 0) {
		s := strconv.FormatFloat(n, 'e', -1, 64)
		return normalizeExponent(s)
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}

func normalizeExponent(s string) string {
	parts := strings.SplitN(s, "e", 2)
	if len(parts) != 2 {
		return s
	}
	mantissa, exp := parts[0], parts[1]
	sign := "+"
	if strings.HasPrefix(exp, "-") {
		sign = "-"
		exp = exp[1:]
	} else if strings.HasPrefix(exp, "+") {
		exp = exp[1:]
	}
	exp = strings.TrimLeft(exp, "0")
	if exp == "" {
		exp = "0"
	}
	return mantissa + "e" + sign + exp
}

// ToNumberFromString implements the numeric-string-conversion grammar
// (spec.md §4.4.1): hex/binary/octal literals, signed decimals, leading
// and trailing whitespace ignored, trailing garbage yields NaN.
func ToNumberFromString(s string) float64 {
	t := strings.TrimSpace(s)
	if t == "" {
		return 0
	}
	if t == "Infinity" || t == "+Infinity" {
		return math.Inf(1)
	}
	if t == "-Infinity" {
		return math.Inf(-1)
	}
	lower := strings.ToLower(t)
	neg := false
	body := lower
	if strings.HasPrefix(body, "+") || strings.HasPrefix(body, "-") {
		neg = body[0] == '-'
		body = body[1:]
	}
	if strings.HasPrefix(body, "0x") {
		iv, err := strconv.ParseUint(body[2:], 16, 64)
		if err != nil {
			return math.NaN()
		}
		n := float64(iv)
		if neg {
			n = -n
		}
		return n
	}
	if strings.HasPrefix(body, "0o") {
		iv, err := strconv.ParseUint(body[2:], 8, 64)
		if err != nil {
			return math.NaN()
		}
		n := float64(iv)
		if neg {
			n = -n
		}
		return n
	}
	if strings.HasPrefix(body, "0b") {
		iv, err := strconv.ParseUint(body[2:], 2, 64)
		if err != nil {
			return math.NaN()
		}
		n := float64(iv)
		if neg {
			n = -n
		}
		return n
	}
	f, err := strconv.ParseFloat(t, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// Inspect renders v for debug/REPL display (not ToString), the
// convention the CLI `run` command uses to print a completion value.
func Inspect(v Value) string {
	switch v.kind {
	case KindUndefined:
		return "undefined"
	case KindNull:
		return "null"
	case KindBoolean:
		if v.bval {
			return "true"
		}
		return "false"
	case KindNumber:
		return NumberToString(v.nval)
	case KindBigInt:
		return v.bigval.String() + "n"
	case KindString:
		return strconv.Quote(v.sval)
	case KindSymbol:
		return v.symval.String()
	case KindObject:
		return inspectObject(v.objval, map[*Object]bool{})
	}
	return "undefined"
}

func inspectObject(o *Object, seen map[*Object]bool) string {
	if o == nil {
		return "null"
	}
	if seen[o] {
		return "[Circular]"
	}
	seen[o] = true
	switch o.InternalKind {
	case KindFunction, KindBoundFunction:
		name := o.FunctionName
		if name == "" {
			name = "anonymous"
		}
		return fmt.Sprintf("[Function: %s]", name)
	case KindArray:
		parts := make([]string, len(o.Elements))
		for i, e := range o.Elements {
			if e == nil {
				parts[i] = "<1 empty item>"
				continue
			}
			parts[i] = Inspect(*e)
		}
		return "[ " + strings.Join(parts, ", ") + " ]"
	case KindError:
		return o.ErrorName + ": " + o.ErrorMessage
	}
	keys := o.OwnKeys()
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		if k.IsSymbol {
			continue
		}
		pd, _ := o.GetOwnProperty(k)
		parts = append(parts, k.Str+": "+Inspect(pd.Value))
	}
	sort.Strings(parts)
	return "{ " + strings.Join(parts, ", ") + " }"
}
