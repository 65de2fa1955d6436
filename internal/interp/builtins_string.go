package interp

import (
	"math"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/esgo-lang/esgo/internal/interp/runtime"
)

// setupStringBuiltins wires String.prototype (spec.md §4.3) and the
// String constructor. Indices operate on Unicode code points rather than
// UTF-16 code units (ESGO strings are Go strings, not UTF-16 buffers). Case conversion
// and normalization go through golang.org/x/text rather than
// hand-rolled Unicode tables.
func (it *Interp) setupStringBuiltins() {
	proto := it.protos.str

	thisStr := func(this Value) string {
		if this.IsString() {
			return this.Str()
		}
		if this.IsObject() && this.Obj().InternalKind == runtime.KindStringWrapper {
			return this.Obj().PrimitiveValue.Str()
		}
		return it.ToStringValue(this)
	}

	it.method(proto, "toString", 0, func(this Value, _ []Value) (Value, error) {
		return runtime.String(thisStr(this)), nil
	})
	it.method(proto, "valueOf", 0, func(this Value, _ []Value) (Value, error) {
		return runtime.String(thisStr(this)), nil
	})
	it.method(proto, "charAt", 1, func(this Value, args []Value) (Value, error) {
		r := []rune(thisStr(this))
		i := int(it.ToNumber(arg(args, 0)))
		if i < 0 || i >= len(r) {
			return runtime.String(""), nil
		}
		return runtime.String(string(r[i])), nil
	})
	it.method(proto, "charCodeAt", 1, func(this Value, args []Value) (Value, error) {
		r := []rune(thisStr(this))
		i := int(it.ToNumber(arg(args, 0)))
		if i < 0 || i >= len(r) {
			return runtime.Number(math.NaN()), nil
		}
		return runtime.Int(int(r[i])), nil
	})
	it.method(proto, "codePointAt", 1, func(this Value, args []Value) (Value, error) {
		r := []rune(thisStr(this))
		i := int(it.ToNumber(arg(args, 0)))
		if i < 0 || i >= len(r) {
			return Undefined, nil
		}
		return runtime.Int(int(r[i])), nil
	})
	it.method(proto, "at", 1, func(this Value, args []Value) (Value, error) {
		r := []rune(thisStr(this))
		i := int(it.ToNumber(arg(args, 0)))
		if i < 0 {
			i += len(r)
		}
		if i < 0 || i >= len(r) {
			return Undefined, nil
		}
		return runtime.String(string(r[i])), nil
	})
	it.method(proto, "indexOf", 1, func(this Value, args []Value) (Value, error) {
		r := []rune(thisStr(this))
		needle := it.ToStringValue(arg(args, 0))
		start := 0
		if len(args) > 1 {
			start = clampInt(int(it.ToNumber(args[1])), 0, len(r))
		}
		idx := strings.Index(string(r[start:]), needle)
		if idx < 0 {
			return runtime.Int(-1), nil
		}
		return runtime.Int(start + len([]rune(string(r[start:])[:idx]))), nil
	})
	it.method(proto, "lastIndexOf", 1, func(this Value, args []Value) (Value, error) {
		s := thisStr(this)
		needle := it.ToStringValue(arg(args, 0))
		idx := strings.LastIndex(s, needle)
		if idx < 0 {
			return runtime.Int(-1), nil
		}
		return runtime.Int(len([]rune(s[:idx]))), nil
	})
	it.method(proto, "includes", 1, func(this Value, args []Value) (Value, error) {
		return runtime.Bool(strings.Contains(thisStr(this), it.ToStringValue(arg(args, 0)))), nil
	})
	it.method(proto, "startsWith", 1, func(this Value, args []Value) (Value, error) {
		s := thisStr(this)
		if len(args) > 1 {
			r := []rune(s)
			start := clampInt(int(it.ToNumber(args[1])), 0, len(r))
			s = string(r[start:])
		}
		return runtime.Bool(strings.HasPrefix(s, it.ToStringValue(arg(args, 0)))), nil
	})
	it.method(proto, "endsWith", 1, func(this Value, args []Value) (Value, error) {
		s := thisStr(this)
		if len(args) > 1 {
			r := []rune(s)
			end := clampInt(int(it.ToNumber(args[1])), 0, len(r))
			s = string(r[:end])
		}
		return runtime.Bool(strings.HasSuffix(s, it.ToStringValue(arg(args, 0)))), nil
	})
	it.method(proto, "slice", 2, func(this Value, args []Value) (Value, error) {
		r := []rune(thisStr(this))
		n := len(r)
		start := relativeIndex(it.ToNumber(arg(args, 0)), n, 0)
		end := n
		if len(args) > 1 && !args[1].IsUndefined() {
			end = relativeIndex(it.ToNumber(args[1]), n, n)
		}
		if start >= end {
			return runtime.String(""), nil
		}
		return runtime.String(string(r[start:end])), nil
	})
	it.method(proto, "substring", 2, func(this Value, args []Value) (Value, error) {
		r := []rune(thisStr(this))
		n := len(r)
		start := clampInt(int(it.ToNumber(arg(args, 0))), 0, n)
		end := n
		if len(args) > 1 && !args[1].IsUndefined() {
			end = clampInt(int(it.ToNumber(args[1])), 0, n)
		}
		if start > end {
			start, end = end, start
		}
		return runtime.String(string(r[start:end])), nil
	})
	it.method(proto, "substr", 2, func(this Value, args []Value) (Value, error) {
		r := []rune(thisStr(this))
		n := len(r)
		start := int(it.ToNumber(arg(args, 0)))
		if start < 0 {
			start = clampInt(n+start, 0, n)
		} else {
			start = clampInt(start, 0, n)
		}
		length := n - start
		if len(args) > 1 && !args[1].IsUndefined() {
			length = clampInt(int(it.ToNumber(args[1])), 0, n-start)
		}
		return runtime.String(string(r[start : start+length])), nil
	})
	it.method(proto, "toUpperCase", 0, func(this Value, _ []Value) (Value, error) {
		return runtime.String(cases.Upper(language.Und).String(thisStr(this))), nil
	})
	it.method(proto, "toLocaleUpperCase", 0, func(this Value, _ []Value) (Value, error) {
		return runtime.String(cases.Upper(language.Und).String(thisStr(this))), nil
	})
	it.method(proto, "toLowerCase", 0, func(this Value, _ []Value) (Value, error) {
		return runtime.String(cases.Lower(language.Und).String(thisStr(this))), nil
	})
	it.method(proto, "toLocaleLowerCase", 0, func(this Value, _ []Value) (Value, error) {
		return runtime.String(cases.Lower(language.Und).String(thisStr(this))), nil
	})
	it.method(proto, "normalize", 1, func(this Value, args []Value) (Value, error) {
		form := "NFC"
		if len(args) > 0 && !args[0].IsUndefined() {
			form = it.ToStringValue(args[0])
		}
		var f norm.Form
		switch form {
		case "NFC":
			f = norm.NFC
		case "NFD":
			f = norm.NFD
		case "NFKC":
			f = norm.NFKC
		case "NFKD":
			f = norm.NFKD
		default:
			return Undefined, it.throwErr("RangeError", "invalid normalization form %s", form)
		}
		return runtime.String(f.String(thisStr(this))), nil
	})
	it.method(proto, "trim", 0, func(this Value, _ []Value) (Value, error) {
		return runtime.String(strings.TrimSpace(thisStr(this))), nil
	})
	it.method(proto, "trimStart", 0, func(this Value, _ []Value) (Value, error) {
		return runtime.String(strings.TrimLeft(thisStr(this), " \t\n\r\v\f ﻿")), nil
	})
	it.method(proto, "trimEnd", 0, func(this Value, _ []Value) (Value, error) {
		return runtime.String(strings.TrimRight(thisStr(this), " \t\n\r\v\f ﻿")), nil
	})
	it.method(proto, "padStart", 2, func(this Value, args []Value) (Value, error) {
		return runtime.String(padString(thisStr(this), args, it, true)), nil
	})
	it.method(proto, "padEnd", 2, func(this Value, args []Value) (Value, error) {
		return runtime.String(padString(thisStr(this), args, it, false)), nil
	})
	it.method(proto, "repeat", 1, func(this Value, args []Value) (Value, error) {
		n := it.ToNumber(arg(args, 0))
		if n < 0 {
			return Undefined, it.throwErr("RangeError", "Invalid count value")
		}
		return runtime.String(strings.Repeat(thisStr(this), int(n))), nil
	})
	it.method(proto, "concat", 1, func(this Value, args []Value) (Value, error) {
		s := thisStr(this)
		for _, a := range args {
			s += it.ToStringValue(a)
		}
		return runtime.String(s), nil
	})
	it.method(proto, "split", 2, func(this Value, args []Value) (Value, error) {
		s := thisStr(this)
		sep := arg(args, 0)
		var limit = -1
		if len(args) > 1 && !args[1].IsUndefined() {
			limit = int(it.ToNumber(args[1]))
		}
		if sep.IsObject() && sep.Obj().InternalKind == runtime.KindRegex {
			return runtime.Object_(it.NewArray(it.regexSplit(sep.Obj(), s, limit))), nil
		}
		var parts []string
		if sep.IsUndefined() {
			parts = []string{s}
		} else if it.ToStringValue(sep) == "" {
			for _, r := range s {
				parts = append(parts, string(r))
			}
		} else {
			parts = strings.Split(s, it.ToStringValue(sep))
		}
		out := make([]Value, 0, len(parts))
		for i, p := range parts {
			if limit >= 0 && i >= limit {
				break
			}
			out = append(out, runtime.String(p))
		}
		return runtime.Object_(it.NewArray(out)), nil
	})
	it.method(proto, "replace", 2, func(this Value, args []Value) (Value, error) {
		v, c := it.stringReplace(thisStr(this), arg(args, 0), arg(args, 1), false)
		return v, completionToErr(c)
	})
	it.method(proto, "replaceAll", 2, func(this Value, args []Value) (Value, error) {
		v, c := it.stringReplace(thisStr(this), arg(args, 0), arg(args, 1), true)
		return v, completionToErr(c)
	})
	it.method(proto, "match", 1, func(this Value, args []Value) (Value, error) {
		v, c := it.stringMatch(thisStr(this), arg(args, 0), false)
		return v, completionToErr(c)
	})
	it.method(proto, "matchAll", 1, func(this Value, args []Value) (Value, error) {
		v, c := it.stringMatch(thisStr(this), arg(args, 0), true)
		return v, completionToErr(c)
	})
	it.method(proto, "search", 1, func(this Value, args []Value) (Value, error) {
		re := it.toRegex(arg(args, 0))
		m, err := it.regexExecAt(re, thisStr(this), 0)
		if err != nil || m == nil {
			return runtime.Int(-1), nil
		}
		return runtime.Int(len([]rune(thisStr(this)[:m.Index]))), nil
	})
	it.method(proto, "localeCompare", 1, func(this Value, args []Value) (Value, error) {
		a, b := thisStr(this), it.ToStringValue(arg(args, 0))
		switch {
		case a < b:
			return runtime.Int(-1), nil
		case a > b:
			return runtime.Int(1), nil
		default:
			return runtime.Int(0), nil
		}
	})
	it.symbolMethod(proto, it.wellKnown("iterator"), "[Symbol.iterator]", 0, func(this Value, _ []Value) (Value, error) {
		var vals []Value
		for _, r := range thisStr(this) {
			vals = append(vals, runtime.String(string(r)))
		}
		return runtime.Object_(it.newValueIterator(vals)), nil
	})

	ctorObj := it.ctor("String", 1, proto, func(args []Value, newTarget *Object) (Value, error) {
		s := ""
		if len(args) > 0 {
			if args[0].IsSymbol() && newTarget == nil {
				return runtime.String(args[0].Sym().String()), nil
			}
			s = it.ToStringValue(args[0])
		}
		if newTarget == nil {
			return runtime.String(s), nil
		}
		o := runtime.NewObject(proto)
		o.InternalKind = runtime.KindStringWrapper
		o.PrimitiveValue = runtime.String(s)
		o.Set("length", runtime.Int(len([]rune(s))))
		return runtime.Object_(o), nil
	})
	it.method(ctorObj, "fromCharCode", 1, func(_ Value, args []Value) (Value, error) {
		var sb strings.Builder
		for _, a := range args {
			sb.WriteRune(rune(int(it.ToNumber(a))))
		}
		return runtime.String(sb.String()), nil
	})
	it.method(ctorObj, "fromCodePoint", 1, func(_ Value, args []Value) (Value, error) {
		var sb strings.Builder
		for _, a := range args {
			sb.WriteRune(rune(int(it.ToNumber(a))))
		}
		return runtime.String(sb.String()), nil
	})
	it.method(ctorObj, "raw", 1, func(_ Value, args []Value) (Value, error) {
		cooked := arg(args, 0)
		if !cooked.IsObject() {
			return runtime.String(""), nil
		}
		rawV, c := it.GetProperty(cooked, cooked.Obj(), runtime.StringKey("raw"))
		if c.IsAbrupt() || !rawV.IsObject() {
			return runtime.String(""), nil
		}
		parts := it.arrayValues(rawV.Obj())
		var sb strings.Builder
		for i, p := range parts {
			sb.WriteString(it.ToStringValue(p))
			if i+1 < len(args) {
				sb.WriteString(it.ToStringValue(args[i+1]))
			}
		}
		return runtime.String(sb.String()), nil
	})

	it.defineGlobal("String", runtime.Object_(ctorObj))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func padString(s string, args []Value, it *Interp, start bool) string {
	target := int(it.ToNumber(arg(args, 0)))
	r := []rune(s)
	if target <= len(r) {
		return s
	}
	filler := " "
	if len(args) > 1 && !args[1].IsUndefined() {
		filler = it.ToStringValue(args[1])
	}
	if filler == "" {
		return s
	}
	fr := []rune(filler)
	need := target - len(r)
	var pad []rune
	for len(pad) < need {
		pad = append(pad, fr...)
	}
	pad = pad[:need]
	if start {
		return string(pad) + s
	}
	return s + string(pad)
}

