package interp

import (
	"math"
	"math/rand"

	"github.com/esgo-lang/esgo/internal/interp/runtime"
)

// setupMathBuiltins wires the Math namespace object (spec.md §4.3),
// delegating to stdlib math — every example repo in the pack treats
// plain numeric math as a standard-library concern, not a third-party
// one.
func (it *Interp) setupMathBuiltins() {
	m := runtime.NewObject(it.protos.object)

	it.staticValue(m, "PI", runtime.Number(math.Pi))
	it.staticValue(m, "E", runtime.Number(math.E))
	it.staticValue(m, "LN2", runtime.Number(math.Ln2))
	it.staticValue(m, "LN10", runtime.Number(math.Log(10)))
	it.staticValue(m, "LOG2E", runtime.Number(1/math.Ln2))
	it.staticValue(m, "LOG10E", runtime.Number(1/math.Log(10)))
	it.staticValue(m, "SQRT2", runtime.Number(math.Sqrt2))
	it.staticValue(m, "SQRT1_2", runtime.Number(math.Sqrt(0.5)))

	unary := func(name string, fn func(float64) float64) {
		it.method(m, name, 1, func(_ Value, args []Value) (Value, error) {
			return runtime.Number(fn(it.ToNumber(arg(args, 0)))), nil
		})
	}
	unary("abs", math.Abs)
	unary("floor", math.Floor)
	unary("ceil", math.Ceil)
	unary("trunc", math.Trunc)
	unary("sqrt", math.Sqrt)
	unary("cbrt", math.Cbrt)
	unary("sign", func(n float64) float64 {
		switch {
		case math.IsNaN(n):
			return math.NaN()
		case n > 0:
			return 1
		case n < 0:
			return -1
		default:
			return n
		}
	})
	unary("exp", math.Exp)
	unary("expm1", math.Expm1)
	unary("log", math.Log)
	unary("log2", math.Log2)
	unary("log10", math.Log10)
	unary("log1p", math.Log1p)
	unary("sin", math.Sin)
	unary("cos", math.Cos)
	unary("tan", math.Tan)
	unary("asin", math.Asin)
	unary("acos", math.Acos)
	unary("atan", math.Atan)
	unary("sinh", math.Sinh)
	unary("cosh", math.Cosh)
	unary("tanh", math.Tanh)
	unary("asinh", math.Asinh)
	unary("acosh", math.Acosh)
	unary("atanh", math.Atanh)
	unary("round", func(n float64) float64 {
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return n
		}
		return math.Floor(n + 0.5)
	})
	unary("fround", func(n float64) float64 { return float64(float32(n)) })
	unary("clz32", func(n float64) float64 {
		u := uint32(int64(n))
		count := 0
		for i := 31; i >= 0; i-- {
			if u&(1<<uint(i)) != 0 {
				break
			}
			count++
		}
		return float64(count)
	})

	it.method(m, "atan2", 2, func(_ Value, args []Value) (Value, error) {
		return runtime.Number(math.Atan2(it.ToNumber(arg(args, 0)), it.ToNumber(arg(args, 1)))), nil
	})
	it.method(m, "pow", 2, func(_ Value, args []Value) (Value, error) {
		return runtime.Number(math.Pow(it.ToNumber(arg(args, 0)), it.ToNumber(arg(args, 1)))), nil
	})
	it.method(m, "imul", 2, func(_ Value, args []Value) (Value, error) {
		a := int32(int64(it.ToNumber(arg(args, 0))))
		b := int32(int64(it.ToNumber(arg(args, 1))))
		return runtime.Int(int(a * b)), nil
	})
	it.method(m, "hypot", 2, func(_ Value, args []Value) (Value, error) {
		sum := 0.0
		for _, a := range args {
			n := it.ToNumber(a)
			sum += n * n
		}
		return runtime.Number(math.Sqrt(sum)), nil
	})
	it.method(m, "max", 2, func(_ Value, args []Value) (Value, error) {
		if len(args) == 0 {
			return runtime.Number(math.Inf(-1)), nil
		}
		best := math.Inf(-1)
		for _, a := range args {
			n := it.ToNumber(a)
			if math.IsNaN(n) {
				return runtime.Number(math.NaN()), nil
			}
			if n > best {
				best = n
			}
		}
		return runtime.Number(best), nil
	})
	it.method(m, "min", 2, func(_ Value, args []Value) (Value, error) {
		if len(args) == 0 {
			return runtime.Number(math.Inf(1)), nil
		}
		best := math.Inf(1)
		for _, a := range args {
			n := it.ToNumber(a)
			if math.IsNaN(n) {
				return runtime.Number(math.NaN()), nil
			}
			if n < best {
				best = n
			}
		}
		return runtime.Number(best), nil
	})
	it.method(m, "random", 0, func(_ Value, _ []Value) (Value, error) {
		return runtime.Number(rand.Float64()), nil
	})

	it.defineGlobal("Math", runtime.Object_(m))
}
