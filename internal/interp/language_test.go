package interp

import (
	"bytes"
	"strings"
	"testing"

	"github.com/esgo-lang/esgo/internal/lexer"
	"github.com/esgo-lang/esgo/internal/parser"
)

// runAsync is like run but drains the microtask queue after evaluation.
func runAsync(t *testing.T, src string, buf *bytes.Buffer) Value {
	t.Helper()
	l := lexer.New(src)
	p := parser.New(l)
	prog := p.ParseProgram()
	if len(p.Errors()) > 0 {
		t.Fatalf("parser errors for %q: %s", src, strings.Join(p.Errors(), "\n"))
	}
	it := New(WithOutput(buf))
	v, err := it.RunAsync(prog)
	if err != nil {
		t.Fatalf("evaluation error for %q: %v", src, err)
	}
	return v
}

func TestStringAtNegativeIndex(t *testing.T) {
	var buf bytes.Buffer
	v := run(t, `"hello".at(-1);`, &buf)
	if !v.IsString() || v.Str() != "o" {
		t.Fatalf("got %v, want %q", v, "o")
	}
}

func TestToReversedLeavesOriginalUntouched(t *testing.T) {
	var buf bytes.Buffer
	v := run(t, `
		const a = [1, 2, 3];
		a.toReversed().toString() + "|" + a.toString();
	`, &buf)
	want := "3,2,1|1,2,3"
	if !v.IsString() || v.Str() != want {
		t.Fatalf("got %v, want %q", v, want)
	}
}

func TestJSONStringifyOmitsUndefinedProperties(t *testing.T) {
	var buf bytes.Buffer
	v := run(t, `JSON.stringify({a: 1, b: undefined, c: 3});`, &buf)
	want := `{"a":1,"c":3}`
	if !v.IsString() || v.Str() != want {
		t.Fatalf("got %v, want %q", v, want)
	}
}

func TestAccessorPropertyGetSet(t *testing.T) {
	var buf bytes.Buffer
	v := run(t, `
		let obj = {_v: 0, get value() { return this._v; }, set value(x) { this._v = x * 2; }};
		obj.value = 10;
		obj.value;
	`, &buf)
	if !v.IsNumber() || v.Float() != 20 {
		t.Fatalf("got %v, want 20", v)
	}
}

func TestGeneratorResultSequence(t *testing.T) {
	var buf bytes.Buffer
	v := run(t, `
		function* g() { yield 1; yield 2; return 42; }
		let it = g();
		[it.next(), it.next(), it.next()].map(r => r.value + ',' + r.done).join(';');
	`, &buf)
	want := "1,false;2,false;42,true"
	if !v.IsString() || v.Str() != want {
		t.Fatalf("got %v, want %q", v, want)
	}
}

func TestFinishedGeneratorStaysDone(t *testing.T) {
	var buf bytes.Buffer
	v := run(t, `
		function* g() { yield 1; }
		const it = g();
		it.next();
		it.next();
		const a = it.next();
		const b = it.next();
		(a.value === undefined) + ',' + a.done + ',' + (b.value === undefined) + ',' + b.done;
	`, &buf)
	want := "true,true,true,true"
	if !v.IsString() || v.Str() != want {
		t.Fatalf("got %v, want %q", v, want)
	}
}

func TestPromiseAnyAdoptsFirstFulfillment(t *testing.T) {
	var buf bytes.Buffer
	runAsync(t, `
		Promise.any([Promise.reject('a'), Promise.resolve(42), Promise.reject('b')])
			.then(v => console.log(v));
	`, &buf)
	if buf.String() != "42\n" {
		t.Fatalf("console output = %q, want %q", buf.String(), "42\n")
	}
}

func TestEmptyPromiseCombinators(t *testing.T) {
	var buf bytes.Buffer
	runAsync(t, `
		Promise.all([]).then(v => console.log("all:" + v.length));
		Promise.allSettled([]).then(v => console.log("settled:" + v.length));
		Promise.any([]).catch(e => console.log("any:" + (e instanceof AggregateError)));
	`, &buf)
	want := "all:0\nsettled:0\nany:true\n"
	if buf.String() != want {
		t.Fatalf("console output = %q, want %q", buf.String(), want)
	}
}

func TestRegexMatchIndices(t *testing.T) {
	var buf bytes.Buffer
	v := run(t, `
		const r = /a(?<n>b)c/d.exec('zzabczz');
		r.indices[1][0] + ',' + r.indices[1][1];
	`, &buf)
	if !v.IsString() || v.Str() != "3,4" {
		t.Fatalf("got %v, want %q", v, "3,4")
	}
}

func TestRegexLiteralAndConstructorAgree(t *testing.T) {
	var buf bytes.Buffer
	v := run(t, `
		const lit = /a(?<n>b)c/gi;
		const ctor = new RegExp("a(?<n>b)c", "gi");
		(lit.source === ctor.source) + ',' + (lit.flags === ctor.flags);
	`, &buf)
	if !v.IsString() || v.Str() != "true,true" {
		t.Fatalf("got %v, want %q", v, "true,true")
	}
}

func TestStaticPrivateCounter(t *testing.T) {
	var buf bytes.Buffer
	v := run(t, `
		class C { static #n = 0; static inc() { return ++C.#n; } }
		C.inc();
		C.inc();
		C.inc();
	`, &buf)
	if !v.IsNumber() || v.Float() != 3 {
		t.Fatalf("got %v, want 3", v)
	}
}

func TestStrictTailRecursionDepth(t *testing.T) {
	var buf bytes.Buffer
	v := run(t, `
		"use strict";
		function f(n) { return n === 0 ? "done" : f(n - 1); }
		f(200000);
	`, &buf)
	if !v.IsString() || v.Str() != "done" {
		t.Fatalf("got %v, want %q", v, "done")
	}
}

func TestDeletePropertyThenInOperator(t *testing.T) {
	var buf bytes.Buffer
	v := run(t, `
		const o = {};
		o.k = 1;
		delete o.k;
		'k' in o;
	`, &buf)
	if !v.IsBoolean() || v.Bool() {
		t.Fatalf("got %v, want false", v)
	}
}

func TestObjectIsDistinguishesZerosAndNaN(t *testing.T) {
	var buf bytes.Buffer
	v := run(t, `
		Object.is(NaN, NaN) + ',' + Object.is(0, -0) + ',' + (0 === -0) + ',' + (NaN === NaN);
	`, &buf)
	want := "true,false,true,false"
	if !v.IsString() || v.Str() != want {
		t.Fatalf("got %v, want %q", v, want)
	}
}

func TestErrorCauseOption(t *testing.T) {
	var buf bytes.Buffer
	v := run(t, `
		let got = "";
		try {
			throw new TypeError("outer", {cause: "inner"});
		} catch (e) {
			got = e.message + "/" + e.cause;
		}
		got;
	`, &buf)
	want := "outer/inner"
	if !v.IsString() || v.Str() != want {
		t.Fatalf("got %v, want %q", v, want)
	}
}

func TestLabeledBreakAndContinue(t *testing.T) {
	var buf bytes.Buffer
	v := run(t, `
		let s = "";
		outer:
		for (let i = 0; i < 3; i = i + 1) {
			for (let j = 0; j < 3; j = j + 1) {
				if (j === 2) continue outer;
				if (i === 2) break outer;
				s = s + i + j;
			}
		}
		s;
	`, &buf)
	want := "00011011"
	if !v.IsString() || v.Str() != want {
		t.Fatalf("got %v, want %q", v, want)
	}
}

func TestTemporalDeadZoneRead(t *testing.T) {
	err := runErr(t, `{ console.log(x); let x = 1; }`)
	if !strings.Contains(err.Error(), "x") {
		t.Fatalf("expected a reference error naming x, got %v", err)
	}
}

func TestSpreadNonIterableThrows(t *testing.T) {
	runErr(t, `Math.max(...5);`)
}

func TestMatchAllRequiresGlobalFlag(t *testing.T) {
	runErr(t, `"aa".matchAll(/a/);`)
}

func TestArrayWithOutOfBoundsThrows(t *testing.T) {
	runErr(t, `[1, 2, 3].with(5, 0);`)
}
