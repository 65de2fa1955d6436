package interp

import (
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/esgo-lang/esgo/internal/interp/runtime"
)

// setupRegExpBuiltins wires RegExp.prototype (spec.md §4.7) atop the
// regexp2-backed facade in regex.go.
func (it *Interp) setupRegExpBuiltins() {
	proto := it.protos.regexp

	it.method(proto, "exec", 1, func(this Value, args []Value) (Value, error) {
		v, c := it.RegExpExec(this.Obj(), it.ToStringValue(arg(args, 0)))
		return v, completionToErr(c)
	})
	it.method(proto, "test", 1, func(this Value, args []Value) (Value, error) {
		ok, c := it.RegExpTest(this.Obj(), it.ToStringValue(arg(args, 0)))
		return runtime.Bool(ok), completionToErr(c)
	})
	it.method(proto, "toString", 0, func(this Value, _ []Value) (Value, error) {
		o := this.Obj()
		return runtime.String("/" + o.RegexSource + "/" + o.RegexFlags), nil
	})

	ctorObj := it.ctor("RegExp", 2, proto, func(args []Value, _ *Object) (Value, error) {
		pattern, flags := arg(args, 0), arg(args, 1)
		if pattern.IsObject() && pattern.Obj().InternalKind == runtime.KindRegex {
			src := pattern.Obj()
			f := src.RegexFlags
			if !flags.IsUndefined() {
				f = it.ToStringValue(flags)
			}
			return runtime.Object_(it.NewRegExp(src.RegexSource, f)), nil
		}
		p := ""
		if !pattern.IsUndefined() {
			p = it.ToStringValue(pattern)
		}
		f := ""
		if !flags.IsUndefined() {
			f = it.ToStringValue(flags)
		}
		return runtime.Object_(it.NewRegExp(p, f)), nil
	})
	it.defineGlobal("RegExp", runtime.Object_(ctorObj))
}

// toRegex coerces a String.prototype.match/search/replace argument into
// a Regex object, wrapping a literal string as an exact-match pattern
// (spec.md §4.3's RegExp coercion rule).
func (it *Interp) toRegex(v Value) *Object {
	if v.IsObject() && v.Obj().InternalKind == runtime.KindRegex {
		return v.Obj()
	}
	return it.NewRegExp(regexpQuoteLiteral(it.ToStringValue(v)), "")
}

func regexpQuoteLiteral(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if strings.ContainsRune(`\.+*?()|[]{}^$`, r) {
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// stringMatch implements String.prototype.match/matchAll (spec.md §4.3):
// match returns a single result (or all matches as a plain array when
// /g is set); matchAll returns an iterator over every match.
func (it *Interp) stringMatch(input string, pattern Value, all bool) (Value, Completion) {
	re := it.toRegex(pattern)
	global := strings.Contains(re.RegexFlags, "g")
	if all && !global {
		return Undefined, it.throwType("String.prototype.matchAll called with a non-global RegExp argument")
	}
	if !all && !global {
		return it.RegExpExec(re, input)
	}
	var results []Value
	pos := 0
	for {
		m, err := it.regexExecAt(re, input, pos)
		if err != nil {
			return Undefined, it.throwSyntax("invalid regular expression: %s", err.Error())
		}
		if m == nil {
			break
		}
		if all {
			results = append(results, runtime.Object_(it.matchResultObject(re, input, m)))
		} else {
			results = append(results, runtime.String(m.String()))
		}
		if matchLen(m) == 0 {
			pos = m.Index + 1
		} else {
			pos = m.Index + matchLen(m)
		}
		if pos > len(input) {
			break
		}
	}
	if all {
		return runtime.Object_(it.newValueIterator(results)), normalC()
	}
	if results == nil {
		return Null, normalC()
	}
	return runtime.Object_(it.NewArray(results)), normalC()
}

// stringReplace implements String.prototype.replace/replaceAll (spec.md
// §4.3): pattern may be a plain string (substring replace of the first
// occurrence, or of every occurrence when all is set) or a RegExp; replacement may be a string template or a
// callback invoked per match.
func (it *Interp) stringReplace(input string, pattern, replacement Value, all bool) (Value, Completion) {
	if !pattern.IsObject() || pattern.Obj().InternalKind != runtime.KindRegex {
		needle := it.ToStringValue(pattern)
		if all {
			if needle == "" {
				return runtime.String(input), normalC()
			}
			return runtime.String(it.replaceAllLiteral(input, needle, replacement)), normalC()
		}
		idx := strings.Index(input, needle)
		if idx < 0 {
			return runtime.String(input), normalC()
		}
		rep, c := it.replacementFor(replacement, needle, idx, input, nil)
		if c.IsAbrupt() {
			return Undefined, c
		}
		return runtime.String(input[:idx] + rep + input[idx+len(needle):]), normalC()
	}
	re := pattern.Obj()
	global := all || strings.Contains(re.RegexFlags, "g")
	var sb strings.Builder
	pos, last := 0, 0
	for {
		m, err := it.regexExecAt(re, input, pos)
		if err != nil {
			return Undefined, it.throwSyntax("invalid regular expression: %s", err.Error())
		}
		if m == nil {
			break
		}
		sb.WriteString(input[last:m.Index])
		rep, c := it.replacementFor(replacement, m.String(), m.Index, input, m)
		if c.IsAbrupt() {
			return Undefined, c
		}
		sb.WriteString(rep)
		last = m.Index + matchLen(m)
		if matchLen(m) == 0 {
			pos = m.Index + 1
		} else {
			pos = last
		}
		if !global || pos > len(input) {
			break
		}
	}
	sb.WriteString(input[last:])
	return runtime.String(sb.String()), normalC()
}

func (it *Interp) replacementFor(replacement Value, matched string, index int, input string, m *regexp2.Match) (string, Completion) {
	if replacement.IsCallable() {
		args := []Value{runtime.String(matched), runtime.Int(index), runtime.String(input)}
		v, c := it.CallFunction(replacement.Obj(), Undefined, args)
		if c.IsAbrupt() {
			return "", c
		}
		return it.ToStringValue(v), normalC()
	}
	tmpl := it.ToStringValue(replacement)
	if m != nil {
		return it.replaceExpand(tmpl, input, m), normalC()
	}
	return strings.ReplaceAll(strings.ReplaceAll(tmpl, "$&", matched), "$$", "$"), normalC()
}

func (it *Interp) replaceAllLiteral(input, needle string, replacement Value) string {
	var sb strings.Builder
	rest := input
	off := 0
	for {
		idx := strings.Index(rest, needle)
		if idx < 0 {
			sb.WriteString(rest)
			break
		}
		sb.WriteString(rest[:idx])
		rep, c := it.replacementFor(replacement, needle, off+idx, input, nil)
		if c.IsAbrupt() {
			sb.WriteString(needle)
		} else {
			sb.WriteString(rep)
		}
		rest = rest[idx+len(needle):]
		off += idx + len(needle)
	}
	return sb.String()
}

// regexSplit implements String.prototype.split(regexp) (spec.md §4.3):
// splits on every non-overlapping match, folding captured groups into
// the result between segments.
func (it *Interp) regexSplit(re *Object, input string, limit int) []Value {
	var out []Value
	pos, last := 0, 0
	if input == "" {
		if m, _ := it.regexExecAt(re, input, 0); m == nil {
			return []Value{runtime.String("")}
		}
		return nil
	}
	for pos <= len(input) {
		m, err := it.regexExecAt(re, input, pos)
		if err != nil || m == nil {
			break
		}
		if m.Index == last && matchLen(m) == 0 {
			pos = m.Index + 1
			continue
		}
		if m.Index >= len(input) {
			break
		}
		out = append(out, runtime.String(input[last:m.Index]))
		for _, g := range m.Groups() {
			if g.Number == 0 {
				continue
			}
			if len(g.Captures) > 0 {
				out = append(out, runtime.String(g.Captures[len(g.Captures)-1].String()))
			} else {
				out = append(out, Undefined)
			}
		}
		last = m.Index + matchLen(m)
		pos = last
		if matchLen(m) == 0 {
			pos++
		}
		if limit >= 0 && len(out) >= limit {
			return out[:limit]
		}
	}
	out = append(out, runtime.String(input[last:]))
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
