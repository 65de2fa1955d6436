package interp

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/esgo-lang/esgo/internal/interp/runtime"
)

// setupGlobals builds every intrinsic constructor/prototype and installs
// the realm's global bindings (spec.md §6's "Built-in global surface")
// via a registration-table built-in dispatcher.
func (it *Interp) setupGlobals() {
	it.setupObjectBuiltins()
	it.setupFunctionBuiltins()
	it.setupArrayBuiltins()
	it.setupStringBuiltins()
	it.setupNumberBuiltins()
	it.setupBooleanBuiltins()
	it.setupBigIntBuiltins()
	it.setupSymbolBuiltins()
	it.setupErrorBuiltins()
	it.setupMathBuiltins()
	it.setupJSONBuiltins()
	it.setupDateBuiltins()
	it.setupRegExpBuiltins()
	it.setupMapSetBuiltins()
	it.setupPromiseBuiltins()
	it.setupTypedArrayBuiltins()
	it.setupIteratorBuiltins()
	it.setupConsole()
	it.setupGlobalFunctions()
	it.setupTimers()

	it.defineGlobal("globalThis", runtime.Object_(it.GlobalObject))
	it.defineGlobal("undefined", Undefined)
	it.defineGlobal("NaN", runtime.Number(math.NaN()))
	it.defineGlobal("Infinity", runtime.Number(math.Inf(1)))
}

// setupGlobalFunctions installs the free functions of spec.md §6:
// parseInt/parseFloat/isNaN/isFinite and the URI codec quartet.
func (it *Interp) setupGlobalFunctions() {
	it.defineGlobal("parseInt", runtime.Object_(it.nativeFunc("parseInt", 2, func(_ Value, args []Value) (Value, error) {
		return runtime.Number(parseIntJS(it.ToStringValue(arg(args, 0)), int(it.ToNumber(arg(args, 1))))), nil
	})))
	it.defineGlobal("parseFloat", runtime.Object_(it.nativeFunc("parseFloat", 1, func(_ Value, args []Value) (Value, error) {
		return runtime.Number(parseFloatJS(it.ToStringValue(arg(args, 0)))), nil
	})))
	it.defineGlobal("isNaN", runtime.Object_(it.nativeFunc("isNaN", 1, func(_ Value, args []Value) (Value, error) {
		return runtime.Bool(math.IsNaN(it.ToNumber(arg(args, 0)))), nil
	})))
	it.defineGlobal("isFinite", runtime.Object_(it.nativeFunc("isFinite", 1, func(_ Value, args []Value) (Value, error) {
		n := it.ToNumber(arg(args, 0))
		return runtime.Bool(!math.IsNaN(n) && !math.IsInf(n, 0)), nil
	})))
	it.defineGlobal("encodeURIComponent", runtime.Object_(it.nativeFunc("encodeURIComponent", 1, func(_ Value, args []Value) (Value, error) {
		return runtime.String(encodeURIComponentJS(it.ToStringValue(arg(args, 0)))), nil
	})))
	it.defineGlobal("decodeURIComponent", runtime.Object_(it.nativeFunc("decodeURIComponent", 1, func(_ Value, args []Value) (Value, error) {
		s, err := url.QueryUnescape(strings.ReplaceAll(it.ToStringValue(arg(args, 0)), "+", "%2B"))
		if err != nil {
			return Undefined, it.throwErr("URIError", "URI malformed")
		}
		return runtime.String(s), nil
	})))
	it.defineGlobal("encodeURI", runtime.Object_(it.nativeFunc("encodeURI", 1, func(_ Value, args []Value) (Value, error) {
		return runtime.String(encodeURIJS(it.ToStringValue(arg(args, 0)))), nil
	})))
	it.defineGlobal("decodeURI", runtime.Object_(it.nativeFunc("decodeURI", 1, func(_ Value, args []Value) (Value, error) {
		s, err := url.QueryUnescape(strings.ReplaceAll(it.ToStringValue(arg(args, 0)), "+", "%2B"))
		if err != nil {
			return Undefined, it.throwErr("URIError", "URI malformed")
		}
		return runtime.String(s), nil
	})))
}

const uriUnreservedComponent = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_.!~*'()"
const uriUnreservedWhole = uriUnreservedComponent + ";/?:@&=+$,#"

func encodeURIComponentJS(s string) string { return encodeURIWith(s, uriUnreservedComponent) }
func encodeURIJS(s string) string          { return encodeURIWith(s, uriUnreservedWhole) }

func encodeURIWith(s, unreserved string) string {
	var sb strings.Builder
	for _, b := range []byte(s) {
		if strings.IndexByte(unreserved, b) >= 0 {
			sb.WriteByte(b)
		} else {
			fmt.Fprintf(&sb, "%%%02X", b)
		}
	}
	return sb.String()
}

// parseIntJS implements the parseInt grammar (spec.md §6): optional
// sign, optional "0x" for radix 16 (default), leading digits of the
// given radix, trailing garbage ignored.
func parseIntJS(s string, radix int) float64 {
	t := strings.TrimSpace(s)
	neg := false
	if strings.HasPrefix(t, "+") || strings.HasPrefix(t, "-") {
		neg = t[0] == '-'
		t = t[1:]
	}
	if radix == 0 {
		if strings.HasPrefix(t, "0x") || strings.HasPrefix(t, "0X") {
			radix = 16
			t = t[2:]
		} else {
			radix = 10
		}
	} else if radix == 16 && (strings.HasPrefix(t, "0x") || strings.HasPrefix(t, "0X")) {
		t = t[2:]
	}
	if radix < 2 || radix > 36 {
		return math.NaN()
	}
	end := 0
	for end < len(t) {
		d := digitVal(t[end])
		if d < 0 || d >= radix {
			break
		}
		end++
	}
	if end == 0 {
		return math.NaN()
	}
	n, err := strconv.ParseInt(t[:end], radix, 64)
	if err != nil {
		// overflow: fall back to float accumulation
		f := 0.0
		for i := 0; i < end; i++ {
			f = f*float64(radix) + float64(digitVal(t[i]))
		}
		if neg {
			f = -f
		}
		return f
	}
	v := float64(n)
	if neg {
		v = -v
	}
	return v
}

func digitVal(b byte) int {
	switch {
	case b >= '0' && b <= '9':
		return int(b - '0')
	case b >= 'a' && b <= 'z':
		return int(b-'a') + 10
	case b >= 'A' && b <= 'Z':
		return int(b-'A') + 10
	}
	return -1
}

func parseFloatJS(s string) float64 {
	t := strings.TrimSpace(s)
	if strings.HasPrefix(t, "Infinity") || strings.HasPrefix(t, "+Infinity") {
		return math.Inf(1)
	}
	if strings.HasPrefix(t, "-Infinity") {
		return math.Inf(-1)
	}
	end := 0
	seenDot, seenExp, seenDigit := false, false, false
	for end < len(t) {
		c := t[end]
		switch {
		case c >= '0' && c <= '9':
			seenDigit = true
		case c == '.' && !seenDot && !seenExp:
			seenDot = true
		case (c == 'e' || c == 'E') && seenDigit && !seenExp:
			seenExp = true
		case (c == '+' || c == '-') && (end == 0 || t[end-1] == 'e' || t[end-1] == 'E'):
		default:
			goto done
		}
		end++
	}
done:
	if !seenDigit {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(t[:end], 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// setupConsole installs `console.log/warn/error/info/debug` (spec.md
// §6), writing to Interp.Output, a buffered io.Writer the host controls.
func (it *Interp) setupConsole() {
	c := runtime.NewObject(it.protos.object)
	logFn := func(this Value, args []Value) (Value, error) {
		parts := make([]string, len(args))
		for i, a := range args {
			if a.IsString() {
				parts[i] = a.Str()
			} else {
				parts[i] = Inspect(a)
			}
		}
		fmt.Fprintln(it.Output, strings.Join(parts, " "))
		return Undefined, nil
	}
	for _, name := range []string{"log", "warn", "error", "info", "debug", "trace"} {
		it.method(c, name, 0, logFn)
	}
	it.defineGlobal("console", runtime.Object_(c))
}

// setupTimers installs setTimeout/clearTimeout/setInterval/clearInterval
// (spec.md §4.6/§6), delegating to Scheduler, which the embedder drives
// with DrainTimers against its own clock.
func (it *Interp) setupTimers() {
	setTimeout := it.nativeFunc("setTimeout", 1, func(_ Value, args []Value) (Value, error) {
		return it.scheduleTimer(args, false)
	})
	setInterval := it.nativeFunc("setInterval", 1, func(_ Value, args []Value) (Value, error) {
		return it.scheduleTimer(args, true)
	})
	clear := it.nativeFunc("clearTimeout", 1, func(_ Value, args []Value) (Value, error) {
		it.scheduler.ClearTimer(int(it.ToNumber(arg(args, 0))))
		return Undefined, nil
	})
	it.defineGlobal("setTimeout", runtime.Object_(setTimeout))
	it.defineGlobal("setInterval", runtime.Object_(setInterval))
	it.defineGlobal("clearTimeout", runtime.Object_(clear))
	it.defineGlobal("clearInterval", runtime.Object_(clear))
	it.defineGlobal("queueMicrotask", runtime.Object_(it.nativeFunc("queueMicrotask", 1, func(_ Value, args []Value) (Value, error) {
		fn := arg(args, 0)
		if !fn.IsCallable() {
			return Undefined, it.throwErr("TypeError", "queueMicrotask argument must be a function")
		}
		it.scheduler.EnqueueMicrotask(func() { it.CallFunction(fn.Obj(), Undefined, nil) })
		return Undefined, nil
	})))
}

func (it *Interp) scheduleTimer(args []Value, repeating bool) (Value, error) {
	cb := arg(args, 0)
	if !cb.IsCallable() {
		return Undefined, it.throwErr("TypeError", "callback is not a function")
	}
	delay := int64(it.ToNumber(arg(args, 1)))
	if delay < 0 {
		delay = 0
	}
	extra := append([]Value{}, args[min(len(args), 2):]...)
	var repeat int64
	if repeating {
		repeat = delay
		if repeat <= 0 {
			repeat = 1
		}
	}
	id := it.scheduler.ScheduleTimer(delay, repeat, func() {
		it.CallFunction(cb.Obj(), Undefined, extra)
	})
	return runtime.Int(id), nil
}
