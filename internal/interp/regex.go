package interp

import (
	"sort"
	"strconv"
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/esgo-lang/esgo/internal/interp/runtime"
)

// regexCompiled is the lazily-built matcher stashed on a Regex object's
// HostData slot (spec.md §4.7): ESGO delegates pattern matching to
// dlclark/regexp2 rather than hand-rolling a backtracking NFA, per
// Design Notes §9's "implementations may delegate to a host regex
// library" guidance — regexp2 supports named groups and sticky-style
// restart-at-index matching, the two features stdlib regexp/syntax
// lacks.
type regexCompiled struct {
	re   *regexp2.Regexp
	dot  bool // /s flag: singleline, '.' matches newlines
	multi bool
}

// NewRegExp builds a Regex-kind object from a raw pattern/flags pair
// (spec.md §3, §4.7), used by both `/pat/flags` literals and
// `new RegExp(pattern, flags)`.
func (it *Interp) NewRegExp(pattern, flags string) *Object {
	o := runtime.NewObject(it.protos.regexp)
	o.InternalKind = runtime.KindRegex
	o.RegexSource = pattern
	o.RegexFlags = flags
	o.RegexLast = 0
	o.Set("lastIndex", runtime.Int(0))
	o.Set("source", runtime.String(pattern))
	o.Set("flags", runtime.String(flags))
	o.Set("global", runtime.Bool(strings.Contains(flags, "g")))
	o.Set("ignoreCase", runtime.Bool(strings.Contains(flags, "i")))
	o.Set("multiline", runtime.Bool(strings.Contains(flags, "m")))
	o.Set("sticky", runtime.Bool(strings.Contains(flags, "y")))
	o.Set("unicode", runtime.Bool(strings.Contains(flags, "u")))
	o.Set("dotAll", runtime.Bool(strings.Contains(flags, "s")))
	o.Set("hasIndices", runtime.Bool(strings.Contains(flags, "d")))
	return o
}

func (it *Interp) compileRegex(o *Object) (*regexCompiled, error) {
	if rc, ok := o.HostData.(*regexCompiled); ok {
		return rc, nil
	}
	var opts regexp2.RegexOptions = regexp2.ECMAScript
	if strings.Contains(o.RegexFlags, "i") {
		opts |= regexp2.IgnoreCase
	}
	if strings.Contains(o.RegexFlags, "m") {
		opts |= regexp2.Multiline
	}
	if strings.Contains(o.RegexFlags, "s") {
		opts |= regexp2.Singleline
	}
	re, err := regexp2.Compile(o.RegexSource, opts)
	if err != nil {
		return nil, err
	}
	rc := &regexCompiled{re: re, dot: strings.Contains(o.RegexFlags, "s"), multi: strings.Contains(o.RegexFlags, "m")}
	o.HostData = rc
	return rc, nil
}

// regexMatchResult is the shared shape consumed by exec/test/match/
// replace/split (spec.md §4.7).
type regexMatchResult struct {
	match    *regexp2.Match
	indices  bool
}

func (it *Interp) regexExecAt(o *Object, input string, start int) (*regexp2.Match, error) {
	rc, err := it.compileRegex(o)
	if err != nil {
		return nil, err
	}
	if start > len(input) {
		return nil, nil
	}
	return rc.re.FindStringMatchStartingAt(input, start)
}

// RegExpExec implements RegExp.prototype.exec (spec.md §4.7): returns
// undefined/null behavior by Completion, or a match-result array object.
func (it *Interp) RegExpExec(o *Object, input string) (Value, Completion) {
	global := strings.Contains(o.RegexFlags, "g")
	sticky := strings.Contains(o.RegexFlags, "y")
	start := 0
	if global || sticky {
		li, _ := o.GetOwnProperty(runtime.StringKey("lastIndex"))
		start = int(li.Value.Float())
	}
	m, err := it.regexExecAt(o, input, start)
	if err != nil {
		return Undefined, it.throwSyntax("invalid regular expression: %s", err.Error())
	}
	if m == nil || (sticky && m.Index != start) {
		if global || sticky {
			o.Set("lastIndex", runtime.Int(0))
		}
		return Null, normalC()
	}
	if global || sticky {
		o.Set("lastIndex", runtime.Int(m.Index+matchLen(m)))
	}
	return runtime.Object_(it.matchResultObject(o, input, m)), normalC()
}

func matchLen(m *regexp2.Match) int {
	if m.Length == 0 {
		return 0
	}
	return m.Length
}

// matchResultObject builds the `[full, group1, ...]` array with `index`,
// `input`, `groups`, and (when /d is set) `indices` (spec.md §4.7).
func (it *Interp) matchResultObject(o *Object, input string, m *regexp2.Match) *Object {
	groups := m.Groups()
	// Group 0 is the whole match; named/numbered capture groups follow in
	// ascending group-number order, matching JS's exec() array shape.
	sort.Slice(groups, func(i, j int) bool { return groups[i].Number < groups[j].Number })
	var elems []Value
	var namedObj *Object
	var indicesElems []Value
	hasIndices := strings.Contains(o.RegexFlags, "d")
	for _, g := range groups {
		if g.Number == 0 {
			continue
		}
		var v Value = Undefined
		var iv Value = Undefined
		if len(g.Captures) > 0 {
			c := g.Captures[len(g.Captures)-1]
			v = runtime.String(c.String())
			iv = runtime.Object_(it.NewArray([]Value{runtime.Int(c.Index), runtime.Int(c.Index + c.Length)}))
		}
		elems = append(elems, v)
		if hasIndices {
			indicesElems = append(indicesElems, iv)
		}
		if g.Name != "" && !isDigits(g.Name) {
			if namedObj == nil {
				namedObj = runtime.NewObject(nil)
			}
			namedObj.Set(g.Name, v)
		}
	}
	full := append([]Value{runtime.String(m.String())}, elems...)
	arr := it.NewArray(full)
	arr.Set("index", runtime.Int(m.Index))
	arr.Set("input", runtime.String(input))
	if namedObj != nil {
		arr.Set("groups", runtime.Object_(namedObj))
	} else {
		arr.Set("groups", Undefined)
	}
	if hasIndices {
		indicesArr := it.NewArray(append([]Value{runtime.Object_(it.NewArray([]Value{runtime.Int(m.Index), runtime.Int(m.Index + matchLen(m))}))}, indicesElems...))
		if namedObj != nil {
			namedIdx := runtime.NewObject(nil)
			for _, g := range groups {
				if g.Number == 0 || g.Name == "" || isDigits(g.Name) {
					continue
				}
				if len(g.Captures) > 0 {
					c := g.Captures[len(g.Captures)-1]
					namedIdx.Set(g.Name, runtime.Object_(it.NewArray([]Value{runtime.Int(c.Index), runtime.Int(c.Index + c.Length)})))
				} else {
					namedIdx.Set(g.Name, Undefined)
				}
			}
			indicesArr.Set("groups", runtime.Object_(namedIdx))
		}
		arr.Set("indices", runtime.Object_(indicesArr))
	}
	return arr
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// RegExpTest implements RegExp.prototype.test (spec.md §4.7).
func (it *Interp) RegExpTest(o *Object, input string) (bool, Completion) {
	v, c := it.RegExpExec(o, input)
	if c.IsAbrupt() {
		return false, c
	}
	return !v.IsNull(), normalC()
}

// replaceExpand expands a `$&`/`` $` ``/`$'`/`$n`/`$<name>`/`$$`
// replacement pattern (spec.md §4.7).
func (it *Interp) replaceExpand(tmpl, input string, m *regexp2.Match) string {
	var sb strings.Builder
	groups := m.Groups()
	byNum := map[int]*regexp2.Group{}
	byName := map[string]*regexp2.Group{}
	for i := range groups {
		g := &groups[i]
		byNum[g.Number] = g
		if g.Name != "" && !isDigits(g.Name) {
			byName[g.Name] = g
		}
	}
	runes := []rune(tmpl)
	for i := 0; i < len(runes); i++ {
		if runes[i] != '$' || i == len(runes)-1 {
			sb.WriteRune(runes[i])
			continue
		}
		next := runes[i+1]
		switch {
		case next == '$':
			sb.WriteByte('$')
			i++
		case next == '&':
			sb.WriteString(m.String())
			i++
		case next == '`':
			sb.WriteString(input[:m.Index])
			i++
		case next == '\'':
			sb.WriteString(input[m.Index+matchLen(m):])
			i++
		case next == '<':
			end := strings.IndexRune(string(runes[i+2:]), '>')
			if end < 0 {
				sb.WriteRune(runes[i])
				continue
			}
			name := string(runes[i+2 : i+2+end])
			if g, ok := byName[name]; ok && len(g.Captures) > 0 {
				sb.WriteString(g.Captures[len(g.Captures)-1].String())
			}
			i += 2 + end
		case next >= '0' && next <= '9':
			j := i + 1
			for j < len(runes) && runes[j] >= '0' && runes[j] <= '9' && j < i+3 {
				j++
			}
			numStr := string(runes[i+1 : j])
			n, _ := strconv.Atoi(numStr)
			if g, ok := byNum[n]; ok && n > 0 {
				if len(g.Captures) > 0 {
					sb.WriteString(g.Captures[len(g.Captures)-1].String())
				}
				i = j - 1
			} else {
				sb.WriteRune(runes[i])
			}
		default:
			sb.WriteRune(runes[i])
		}
	}
	return sb.String()
}
