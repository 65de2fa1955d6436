package interp

import (
	"math"
	"strconv"
	"time"

	"github.com/esgo-lang/esgo/internal/interp/runtime"
)

// setupDateBuiltins wires the Date constructor and Date.prototype
// (spec.md §4.6), backed by Go's time.Time, with DateValue storing epoch
// milliseconds (possibly NaN for an Invalid Date).
func (it *Interp) setupDateBuiltins() {
	proto := it.protos.date

	thisTime := func(this Value) (*Object, float64) {
		o := this.Obj()
		return o, o.DateValue
	}

	utc := func(o *Object) time.Time {
		return msToTime(o.DateValue)
	}

	getter := func(name string, fn func(t time.Time) float64) {
		it.method(proto, name, 0, func(this Value, _ []Value) (Value, error) {
			_, ms := thisTime(this)
			if math.IsNaN(ms) {
				return runtime.Number(math.NaN()), nil
			}
			return runtime.Number(fn(utc(this.Obj()))), nil
		})
	}
	getter("getFullYear", func(t time.Time) float64 { return float64(t.Year()) })
	getter("getUTCFullYear", func(t time.Time) float64 { return float64(t.Year()) })
	getter("getMonth", func(t time.Time) float64 { return float64(t.Month() - 1) })
	getter("getUTCMonth", func(t time.Time) float64 { return float64(t.Month() - 1) })
	getter("getDate", func(t time.Time) float64 { return float64(t.Day()) })
	getter("getUTCDate", func(t time.Time) float64 { return float64(t.Day()) })
	getter("getDay", func(t time.Time) float64 { return float64(t.Weekday()) })
	getter("getUTCDay", func(t time.Time) float64 { return float64(t.Weekday()) })
	getter("getHours", func(t time.Time) float64 { return float64(t.Hour()) })
	getter("getUTCHours", func(t time.Time) float64 { return float64(t.Hour()) })
	getter("getMinutes", func(t time.Time) float64 { return float64(t.Minute()) })
	getter("getUTCMinutes", func(t time.Time) float64 { return float64(t.Minute()) })
	getter("getSeconds", func(t time.Time) float64 { return float64(t.Second()) })
	getter("getUTCSeconds", func(t time.Time) float64 { return float64(t.Second()) })
	getter("getMilliseconds", func(t time.Time) float64 { return float64(t.Nanosecond() / 1e6) })
	getter("getUTCMilliseconds", func(t time.Time) float64 { return float64(t.Nanosecond() / 1e6) })

	it.method(proto, "getTime", 0, func(this Value, _ []Value) (Value, error) {
		_, ms := thisTime(this)
		return runtime.Number(ms), nil
	})
	it.method(proto, "valueOf", 0, func(this Value, _ []Value) (Value, error) {
		_, ms := thisTime(this)
		return runtime.Number(ms), nil
	})
	it.method(proto, "getTimezoneOffset", 0, func(_ Value, _ []Value) (Value, error) {
		return runtime.Number(0), nil
	})

	setter := func(name string, apply func(t time.Time, args []float64) time.Time) {
		it.method(proto, name, 1, func(this Value, args []Value) (Value, error) {
			o := this.Obj()
			base := utc(o)
			if math.IsNaN(o.DateValue) {
				base = time.Unix(0, 0).UTC()
			}
			nums := make([]float64, len(args))
			for i, a := range args {
				nums[i] = it.ToNumber(a)
			}
			nt := apply(base, nums)
			o.DateValue = timeToMs(nt)
			return runtime.Number(o.DateValue), nil
		})
	}
	setter("setFullYear", func(t time.Time, a []float64) time.Time {
		y := int(a[0])
		mo, d := int(t.Month()), t.Day()
		if len(a) > 1 {
			mo = int(a[1]) + 1
		}
		if len(a) > 2 {
			d = int(a[2])
		}
		return time.Date(y, time.Month(mo), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
	})
	setter("setMonth", func(t time.Time, a []float64) time.Time {
		d := t.Day()
		if len(a) > 1 {
			d = int(a[1])
		}
		return time.Date(t.Year(), time.Month(int(a[0])+1), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
	})
	setter("setDate", func(t time.Time, a []float64) time.Time {
		return time.Date(t.Year(), t.Month(), int(a[0]), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
	})
	setter("setHours", func(t time.Time, a []float64) time.Time {
		min, sec, ms := t.Minute(), t.Second(), t.Nanosecond()/1e6
		if len(a) > 1 {
			min = int(a[1])
		}
		if len(a) > 2 {
			sec = int(a[2])
		}
		if len(a) > 3 {
			ms = int(a[3])
		}
		return time.Date(t.Year(), t.Month(), t.Day(), int(a[0]), min, sec, ms*1e6, time.UTC)
	})
	setter("setMinutes", func(t time.Time, a []float64) time.Time {
		sec, ms := t.Second(), t.Nanosecond()/1e6
		if len(a) > 1 {
			sec = int(a[1])
		}
		if len(a) > 2 {
			ms = int(a[2])
		}
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), int(a[0]), sec, ms*1e6, time.UTC)
	})
	setter("setSeconds", func(t time.Time, a []float64) time.Time {
		ms := t.Nanosecond() / 1e6
		if len(a) > 1 {
			ms = int(a[1])
		}
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), int(a[0]), ms*1e6, time.UTC)
	})
	setter("setMilliseconds", func(t time.Time, a []float64) time.Time {
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), int(a[0])*1e6, time.UTC)
	})
	setter("setTime", func(_ time.Time, a []float64) time.Time {
		return msToTime(a[0])
	})
	for _, n := range []string{"setUTCFullYear", "setUTCMonth", "setUTCDate", "setUTCHours", "setUTCMinutes", "setUTCSeconds", "setUTCMilliseconds"} {
		name := n[:3] + n[6:]
		if m, ok := proto.GetOwnProperty(runtime.StringKey(name)); ok {
			proto.Set(n, m.Value)
		}
	}

	it.method(proto, "toISOString", 0, func(this Value, _ []Value) (Value, error) {
		_, ms := thisTime(this)
		if math.IsNaN(ms) {
			return Undefined, it.throwRange("Invalid time value")
		}
		return runtime.String(utc(this.Obj()).Format("2006-01-02T15:04:05.000Z")), nil
	})
	it.method(proto, "toJSON", 1, func(this Value, args []Value) (Value, error) {
		_, ms := thisTime(this)
		if math.IsNaN(ms) {
			return runtime.Null, nil
		}
		return runtime.String(utc(this.Obj()).Format("2006-01-02T15:04:05.000Z")), nil
	})
	toStr := func(this Value) string {
		_, ms := thisTime(this)
		if math.IsNaN(ms) {
			return "Invalid Date"
		}
		return utc(this.Obj()).Format("Mon Jan 02 2006 15:04:05 GMT+0000 (Coordinated Universal Time)")
	}
	it.method(proto, "toString", 0, func(this Value, _ []Value) (Value, error) { return runtime.String(toStr(this)), nil })
	it.method(proto, "toDateString", 0, func(this Value, _ []Value) (Value, error) {
		_, ms := thisTime(this)
		if math.IsNaN(ms) {
			return runtime.String("Invalid Date"), nil
		}
		return runtime.String(utc(this.Obj()).Format("Mon Jan 02 2006")), nil
	})
	it.method(proto, "toTimeString", 0, func(this Value, _ []Value) (Value, error) {
		_, ms := thisTime(this)
		if math.IsNaN(ms) {
			return runtime.String("Invalid Date"), nil
		}
		return runtime.String(utc(this.Obj()).Format("15:04:05 GMT+0000 (Coordinated Universal Time)")), nil
	})
	it.method(proto, "toUTCString", 0, func(this Value, _ []Value) (Value, error) {
		_, ms := thisTime(this)
		if math.IsNaN(ms) {
			return runtime.String("Invalid Date"), nil
		}
		return runtime.String(utc(this.Obj()).Format("Mon, 02 Jan 2006 15:04:05 GMT")), nil
	})
	it.method(proto, "toLocaleDateString", 0, func(this Value, _ []Value) (Value, error) {
		_, ms := thisTime(this)
		if math.IsNaN(ms) {
			return runtime.String("Invalid Date"), nil
		}
		return runtime.String(utc(this.Obj()).Format("1/2/2006")), nil
	})
	it.method(proto, "toLocaleTimeString", 0, func(this Value, _ []Value) (Value, error) {
		_, ms := thisTime(this)
		if math.IsNaN(ms) {
			return runtime.String("Invalid Date"), nil
		}
		return runtime.String(utc(this.Obj()).Format("3:04:05 PM")), nil
	})
	it.method(proto, "toLocaleString", 0, func(this Value, _ []Value) (Value, error) {
		_, ms := thisTime(this)
		if math.IsNaN(ms) {
			return runtime.String("Invalid Date"), nil
		}
		return runtime.String(utc(this.Obj()).Format("1/2/2006, 3:04:05 PM")), nil
	})

	ctorObj := it.ctor("Date", 7, proto, func(args []Value, newTarget *Object) (Value, error) {
		if newTarget == nil {
			return runtime.String(time.Now().UTC().Format("Mon Jan 02 2006 15:04:05 GMT+0000 (Coordinated Universal Time)")), nil
		}
		o := runtime.NewObject(proto)
		o.InternalKind = runtime.KindDate
		switch len(args) {
		case 0:
			o.DateValue = timeToMs(time.Now().UTC())
		case 1:
			v := args[0]
			switch {
			case v.IsString():
				o.DateValue = parseDateString(v.Str())
			case v.IsObject() && v.Obj().InternalKind == runtime.KindDate:
				o.DateValue = v.Obj().DateValue
			default:
				o.DateValue = it.ToNumber(v)
			}
		default:
			nums := make([]float64, 7)
			nums[2] = 1
			for i := 0; i < len(args) && i < 7; i++ {
				nums[i] = it.ToNumber(args[i])
			}
			y := int(nums[0])
			if y >= 0 && y <= 99 {
				y += 1900
			}
			o.DateValue = timeToMs(time.Date(y, time.Month(int(nums[1])+1), int(nums[2]), int(nums[3]), int(nums[4]), int(nums[5]), int(nums[6])*1e6, time.UTC))
		}
		return runtime.Object_(o), nil
	})
	it.method(ctorObj, "now", 0, func(_ Value, _ []Value) (Value, error) {
		return runtime.Number(timeToMs(time.Now().UTC())), nil
	})
	it.method(ctorObj, "parse", 1, func(_ Value, args []Value) (Value, error) {
		return runtime.Number(parseDateString(it.ToStringValue(arg(args, 0)))), nil
	})
	it.method(ctorObj, "UTC", 7, func(_ Value, args []Value) (Value, error) {
		nums := make([]float64, 7)
		nums[2] = 1
		for i := 0; i < len(args) && i < 7; i++ {
			nums[i] = it.ToNumber(args[i])
		}
		y := int(nums[0])
		if y >= 0 && y <= 99 {
			y += 1900
		}
		t := time.Date(y, time.Month(int(nums[1])+1), int(nums[2]), int(nums[3]), int(nums[4]), int(nums[5]), int(nums[6])*1e6, time.UTC)
		return runtime.Number(timeToMs(t)), nil
	})

	it.defineGlobal("Date", runtime.Object_(ctorObj))
}

func timeToMs(t time.Time) float64 {
	return float64(t.UnixMilli())
}

func msToTime(ms float64) time.Time {
	return time.UnixMilli(int64(ms)).UTC()
}

var dateLayouts = []string{
	"2006-01-02T15:04:05.000Z",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"Mon Jan 02 2006 15:04:05 GMT-0700 (MST)",
	"Mon, 02 Jan 2006 15:04:05 GMT",
	time.RFC1123,
	time.RFC1123Z,
}

func parseDateString(s string) float64 {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return timeToMs(t)
		}
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return n
	}
	return math.NaN()
}
