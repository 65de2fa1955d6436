package interp

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/esgo-lang/esgo/internal/interp/runtime"
)

// setupJSONBuiltins wires JSON.stringify and JSON.parse (spec.md §6),
// following the ECMA-262 textual-format algorithm: toJSON hooks,
// replacer function/array, indent/space, undefined-dropping, and an
// optional reviver walk on parse.
func (it *Interp) setupJSONBuiltins() {
	j := runtime.NewObject(it.protos.object)

	it.method(j, "stringify", 3, func(_ Value, args []Value) (Value, error) {
		value := arg(args, 0)
		replacer := arg(args, 1)
		gap := jsonGap(it, arg(args, 2))

		var allowList map[string]bool
		var replacerFn *Object
		if replacer.IsObject() {
			if replacer.Obj().InternalKind == runtime.KindArray {
				allowList = map[string]bool{}
				for _, v := range it.arrayValues(replacer.Obj()) {
					if v.IsString() {
						allowList[v.Str()] = true
					} else if v.IsNumber() {
						allowList[runtime.NumberToString(v.Float())] = true
					}
				}
			} else if replacer.IsCallable() {
				replacerFn = replacer.Obj()
			}
		}

		enc := &jsonEncoder{it: it, gap: gap, allow: allowList, replacer: replacerFn, seen: map[*runtime.Object]bool{}}
		wrapper := runtime.NewObject(it.protos.object)
		wrapper.Set("", value)
		s, ok, c := enc.str("", wrapper)
		if c.IsAbrupt() {
			return Undefined, completionToErr(c)
		}
		if !ok {
			return Undefined, nil
		}
		return runtime.String(s), nil
	})

	it.method(j, "parse", 2, func(_ Value, args []Value) (Value, error) {
		text := it.ToStringValue(arg(args, 0))
		p := &jsonParser{it: it, src: text}
		p.skipSpace()
		v, err := p.parseValue()
		if err != nil {
			return Undefined, err
		}
		p.skipSpace()
		if p.pos != len(p.src) {
			return Undefined, it.throwErr("SyntaxError", "Unexpected token in JSON at position %d", p.pos)
		}
		reviver := arg(args, 1)
		if reviver.IsCallable() {
			holder := runtime.NewObject(it.protos.object)
			holder.Set("", v)
			out, c := it.jsonRevive(holder, "", reviver.Obj())
			if c.IsAbrupt() {
				return Undefined, completionToErr(c)
			}
			return out, nil
		}
		return v, nil
	})

	it.defineGlobal("JSON", runtime.Object_(j))
}

func jsonGap(it *Interp, space Value) string {
	if space.IsNumber() {
		n := int(space.Float())
		if n > 10 {
			n = 10
		}
		if n < 1 {
			return ""
		}
		return strings.Repeat(" ", n)
	}
	if space.IsString() {
		s := space.Str()
		if len(s) > 10 {
			s = s[:10]
		}
		return s
	}
	return ""
}

type jsonEncoder struct {
	it       *Interp
	gap      string
	allow    map[string]bool
	replacer *Object
	seen     map[*runtime.Object]bool
}

// str implements the SerializeJSONProperty algorithm: returns the
// encoded value, whether it produced anything (false means "omit this
// property"), and an abrupt completion from any user callback.
func (e *jsonEncoder) str(key string, holder *Object) (string, bool, Completion) {
	value, c := e.it.GetProperty(runtime.Object_(holder), holder, runtime.StringKey(key))
	if c.IsAbrupt() {
		return "", false, c
	}

	if value.IsObject() {
		if tj, c2 := e.it.GetProperty(value, value.Obj(), runtime.StringKey("toJSON")); !c2.IsAbrupt() && tj.IsObject() && tj.IsCallable() {
			r, c3 := e.it.CallFunction(tj.Obj(), value, []Value{runtime.String(key)})
			if c3.IsAbrupt() {
				return "", false, c3
			}
			value = r
		}
	}

	if e.replacer != nil {
		r, c2 := e.it.CallFunction(e.replacer, runtime.Object_(holder), []Value{runtime.String(key), value})
		if c2.IsAbrupt() {
			return "", false, c2
		}
		value = r
	}

	if value.IsObject() {
		switch value.Obj().InternalKind {
		case runtime.KindNumberWrapper:
			value = value.Obj().PrimitiveValue
		case runtime.KindStringWrapper:
			value = value.Obj().PrimitiveValue
		case runtime.KindBooleanWrapper:
			value = value.Obj().PrimitiveValue
		}
	}

	switch {
	case value.IsNull():
		return "null", true, normalC()
	case value.IsBoolean():
		if value.Bool() {
			return "true", true, normalC()
		}
		return "false", true, normalC()
	case value.IsString():
		return jsonQuote(value.Str()), true, normalC()
	case value.IsNumber():
		n := value.Float()
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return "null", true, normalC()
		}
		return runtime.NumberToString(n), true, normalC()
	case value.IsBigInt():
		return "", false, e.it.throwType("Do not know how to serialize a BigInt")
	case value.IsObject() && !value.IsCallable():
		o := value.Obj()
		if e.seen[o] {
			return "", false, e.it.throwType("Converting circular structure to JSON")
		}
		e.seen[o] = true
		defer delete(e.seen, o)
		if o.InternalKind == runtime.KindArray {
			return e.arr(o)
		}
		return e.obj(o)
	default:
		return "", false, normalC()
	}
}

func (e *jsonEncoder) arr(o *Object) (string, bool, Completion) {
	values := e.it.arrayValues(o)
	var parts []string
	for i := range values {
		s, ok, c := e.str(strconv.Itoa(i), o)
		if c.IsAbrupt() {
			return "", false, c
		}
		if !ok {
			s = "null"
		}
		parts = append(parts, s)
	}
	return e.wrap("[", "]", parts), true, normalC()
}

func (e *jsonEncoder) obj(o *Object) (string, bool, Completion) {
	var parts []string
	for _, k := range o.OwnKeys() {
		if k.IsSymbol {
			continue
		}
		pd, ok := o.GetOwnProperty(k)
		if !ok || !pd.Enumerable {
			continue
		}
		if e.allow != nil && !e.allow[k.Str] {
			continue
		}
		s, ok2, c := e.str(k.Str, o)
		if c.IsAbrupt() {
			return "", false, c
		}
		if !ok2 {
			continue
		}
		sep := ":"
		if e.gap != "" {
			sep = ": "
		}
		parts = append(parts, jsonQuote(k.Str)+sep+s)
	}
	return e.wrap("{", "}", parts), true, normalC()
}

func (e *jsonEncoder) wrap(open, close string, parts []string) string {
	if len(parts) == 0 {
		return open + close
	}
	if e.gap == "" {
		return open + strings.Join(parts, ",") + close
	}
	indented := make([]string, len(parts))
	for i, p := range parts {
		indented[i] = e.gap + strings.ReplaceAll(p, "\n", "\n"+e.gap)
	}
	return open + "\n" + strings.Join(indented, ",\n") + "\n" + close
}

func jsonQuote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		default:
			if r < 0x20 {
				b.WriteString("\\u")
				hex := strconv.FormatInt(int64(r), 16)
				b.WriteString(strings.Repeat("0", 4-len(hex)))
				b.WriteString(hex)
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}

func (it *Interp) jsonRevive(holder *Object, key string, reviver *Object) (Value, Completion) {
	value, c := it.GetProperty(runtime.Object_(holder), holder, runtime.StringKey(key))
	if c.IsAbrupt() {
		return Undefined, c
	}
	if value.IsObject() {
		o := value.Obj()
		if o.InternalKind == runtime.KindArray {
			values := it.arrayValues(o)
			for i := range values {
				k := strconv.Itoa(i)
				nv, c2 := it.jsonRevive(o, k, reviver)
				if c2.IsAbrupt() {
					return Undefined, c2
				}
				if nv.IsUndefined() {
					it.setArrayIndex(o, i, Undefined)
				} else {
					it.setArrayIndex(o, i, nv)
				}
			}
		} else {
			for _, k := range o.OwnKeys() {
				if k.IsSymbol {
					continue
				}
				nv, c2 := it.jsonRevive(o, k.Str, reviver)
				if c2.IsAbrupt() {
					return Undefined, c2
				}
				if nv.IsUndefined() {
					o.DeleteOwnProperty(k)
				} else {
					o.Set(k.Str, nv)
				}
			}
		}
	}
	return it.CallFunction(reviver, runtime.Object_(holder), []Value{runtime.String(key), value})
}

type jsonParser struct {
	it  *Interp
	src string
	pos int
}

func (p *jsonParser) skipSpace() {
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *jsonParser) fail(msg string) error {
	return p.it.throwErr("SyntaxError", "%s in JSON at position %d", msg, p.pos)
}

func (p *jsonParser) parseValue() (Value, error) {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return Undefined, p.fail("Unexpected end of JSON input")
	}
	switch c := p.src[p.pos]; {
	case c == '{':
		return p.parseObject()
	case c == '[':
		return p.parseArray()
	case c == '"':
		s, err := p.parseString()
		if err != nil {
			return Undefined, err
		}
		return runtime.String(s), nil
	case c == 't':
		return p.parseLiteral("true", runtime.True)
	case c == 'f':
		return p.parseLiteral("false", runtime.False)
	case c == 'n':
		return p.parseLiteral("null", runtime.Null)
	case c == '-' || (c >= '0' && c <= '9'):
		return p.parseNumber()
	default:
		return Undefined, p.fail("Unexpected token")
	}
}

func (p *jsonParser) parseLiteral(lit string, v Value) (Value, error) {
	if p.pos+len(lit) > len(p.src) || p.src[p.pos:p.pos+len(lit)] != lit {
		return Undefined, p.fail("Unexpected token")
	}
	p.pos += len(lit)
	return v, nil
}

func (p *jsonParser) parseNumber() (Value, error) {
	start := p.pos
	if p.pos < len(p.src) && p.src[p.pos] == '-' {
		p.pos++
	}
	for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
		p.pos++
	}
	if p.pos < len(p.src) && p.src[p.pos] == '.' {
		p.pos++
		for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
			p.pos++
		}
	}
	if p.pos < len(p.src) && (p.src[p.pos] == 'e' || p.src[p.pos] == 'E') {
		p.pos++
		if p.pos < len(p.src) && (p.src[p.pos] == '+' || p.src[p.pos] == '-') {
			p.pos++
		}
		for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
			p.pos++
		}
	}
	n, err := strconv.ParseFloat(p.src[start:p.pos], 64)
	if err != nil {
		return Undefined, p.fail("Invalid number")
	}
	return runtime.Number(n), nil
}

func (p *jsonParser) parseString() (string, error) {
	p.pos++ // opening quote
	var b strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == '"' {
			p.pos++
			return b.String(), nil
		}
		if c == '\\' {
			p.pos++
			if p.pos >= len(p.src) {
				break
			}
			switch p.src[p.pos] {
			case '"':
				b.WriteByte('"')
			case '\\':
				b.WriteByte('\\')
			case '/':
				b.WriteByte('/')
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case 'b':
				b.WriteByte('\b')
			case 'f':
				b.WriteByte('\f')
			case 'u':
				if p.pos+4 >= len(p.src) {
					return "", p.fail("Invalid unicode escape")
				}
				hex := p.src[p.pos+1 : p.pos+5]
				n, err := strconv.ParseUint(hex, 16, 32)
				if err != nil {
					return "", p.fail("Invalid unicode escape")
				}
				r := rune(n)
				p.pos += 4
				if utf16.IsSurrogate(r) && p.pos+6 < len(p.src) && p.src[p.pos+1] == '\\' && p.src[p.pos+2] == 'u' {
					hex2 := p.src[p.pos+3 : p.pos+7]
					n2, err2 := strconv.ParseUint(hex2, 16, 32)
					if err2 == nil {
						r2 := utf16.DecodeRune(r, rune(n2))
						if r2 != utf16.ReplacementChar {
							b.WriteRune(r2)
							p.pos += 6
							p.pos++
							continue
						}
					}
				}
				b.WriteRune(r)
			default:
				return "", p.fail("Invalid escape")
			}
			p.pos++
		} else {
			b.WriteByte(c)
			p.pos++
		}
	}
	return "", p.fail("Unterminated string")
}

func (p *jsonParser) parseArray() (Value, error) {
	p.pos++ // '['
	var out []Value
	p.skipSpace()
	if p.pos < len(p.src) && p.src[p.pos] == ']' {
		p.pos++
		return runtime.Object_(p.it.NewArray(out)), nil
	}
	for {
		v, err := p.parseValue()
		if err != nil {
			return Undefined, err
		}
		out = append(out, v)
		p.skipSpace()
		if p.pos >= len(p.src) {
			return Undefined, p.fail("Unexpected end of JSON input")
		}
		if p.src[p.pos] == ',' {
			p.pos++
			continue
		}
		if p.src[p.pos] == ']' {
			p.pos++
			return runtime.Object_(p.it.NewArray(out)), nil
		}
		return Undefined, p.fail("Unexpected token")
	}
}

func (p *jsonParser) parseObject() (Value, error) {
	p.pos++ // '{'
	o := runtime.NewObject(p.it.protos.object)
	p.skipSpace()
	if p.pos < len(p.src) && p.src[p.pos] == '}' {
		p.pos++
		return runtime.Object_(o), nil
	}
	for {
		p.skipSpace()
		if p.pos >= len(p.src) || p.src[p.pos] != '"' {
			return Undefined, p.fail("Expected property name")
		}
		key, err := p.parseString()
		if err != nil {
			return Undefined, err
		}
		p.skipSpace()
		if p.pos >= len(p.src) || p.src[p.pos] != ':' {
			return Undefined, p.fail("Expected ':'")
		}
		p.pos++
		v, err := p.parseValue()
		if err != nil {
			return Undefined, err
		}
		o.Set(key, v)
		p.skipSpace()
		if p.pos >= len(p.src) {
			return Undefined, p.fail("Unexpected end of JSON input")
		}
		if p.src[p.pos] == ',' {
			p.pos++
			continue
		}
		if p.src[p.pos] == '}' {
			p.pos++
			return runtime.Object_(o), nil
		}
		return Undefined, p.fail("Unexpected token")
	}
}
