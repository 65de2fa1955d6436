package interp

import (
	"bytes"
	"strings"
	"testing"

	"github.com/esgo-lang/esgo/internal/lexer"
	"github.com/esgo-lang/esgo/internal/parser"
)

// run parses src as a script, evaluates it against a fresh realm whose
// console output is captured in buf, and returns the completion value.
func run(t *testing.T, src string, buf *bytes.Buffer) Value {
	t.Helper()
	l := lexer.New(src)
	p := parser.New(l)
	prog := p.ParseProgram()
	if len(p.Errors()) > 0 {
		t.Fatalf("parser errors for %q: %s", src, strings.Join(p.Errors(), "\n"))
	}
	it := New(WithOutput(buf))
	v, err := it.Run(prog)
	if err != nil {
		t.Fatalf("evaluation error for %q: %v", src, err)
	}
	return v
}

// runErr is like run but expects evaluation to throw, returning the error.
func runErr(t *testing.T, src string) error {
	t.Helper()
	l := lexer.New(src)
	p := parser.New(l)
	prog := p.ParseProgram()
	if len(p.Errors()) > 0 {
		t.Fatalf("parser errors for %q: %s", src, strings.Join(p.Errors(), "\n"))
	}
	it := New(WithOutput(&bytes.Buffer{}))
	_, err := it.Run(prog)
	if err == nil {
		t.Fatalf("expected %q to throw, completed normally", src)
	}
	return err
}

func TestArithmeticExpressions(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
	}{
		{"1 + 2;", 3},
		{"10 - 4;", 6},
		{"3 * 4;", 12},
		{"10 / 4;", 2.5},
		{"10 % 3;", 1},
		{"2 ** 10;", 1024},
		{"(1 + 2) * 3;", 9},
		{"-5 + 3;", -2},
	}

	for _, tt := range tests {
		var buf bytes.Buffer
		v := run(t, tt.input, &buf)
		if !v.IsNumber() || v.Float() != tt.expected {
			t.Errorf("input %q: got %v, want %v", tt.input, v, tt.expected)
		}
	}
}

func TestStringConcatenationAndTemplate(t *testing.T) {
	var buf bytes.Buffer
	v := run(t, "const name = 'world'; `hello ${name}!`;", &buf)
	if !v.IsString() || v.Str() != "hello world!" {
		t.Fatalf("got %v, want %q", v, "hello world!")
	}
}

func TestVarLetConstScoping(t *testing.T) {
	var buf bytes.Buffer
	v := run(t, `
		let x = 1;
		{
			let x = 2;
			console.log(x);
		}
		console.log(x);
		x;
	`, &buf)
	if buf.String() != "2\n1\n" {
		t.Fatalf("console output = %q, want %q", buf.String(), "2\n1\n")
	}
	if !v.IsNumber() || v.Float() != 1 {
		t.Fatalf("completion value = %v, want 1", v)
	}
}

func TestConstReassignmentThrows(t *testing.T) {
	err := runErr(t, "const x = 1; x = 2;")
	if err == nil {
		t.Fatalf("expected assignment to const to throw")
	}
}

func TestFunctionClosures(t *testing.T) {
	var buf bytes.Buffer
	v := run(t, `
		function makeCounter() {
			let count = 0;
			return function () { count = count + 1; return count; };
		}
		const counter = makeCounter();
		counter();
		counter();
		counter();
	`, &buf)
	if !v.IsNumber() || v.Float() != 3 {
		t.Fatalf("got %v, want 3", v)
	}
}

func TestArrowFunctionLexicalThis(t *testing.T) {
	var buf bytes.Buffer
	v := run(t, `
		const obj = {
			value: 42,
			getValue: function () {
				const inner = () => this.value;
				return inner();
			},
		};
		obj.getValue();
	`, &buf)
	if !v.IsNumber() || v.Float() != 42 {
		t.Fatalf("got %v, want 42", v)
	}
}

func TestClassesAndInheritance(t *testing.T) {
	var buf bytes.Buffer
	v := run(t, `
		class Animal {
			constructor(name) { this.name = name; }
			speak() { return this.name + " makes a sound."; }
		}
		class Dog extends Animal {
			speak() { return super.speak() + " Woof!"; }
		}
		new Dog("Rex").speak();
	`, &buf)
	want := "Rex makes a sound. Woof!"
	if !v.IsString() || v.Str() != want {
		t.Fatalf("got %v, want %q", v, want)
	}
}

func TestTryCatchFinally(t *testing.T) {
	var buf bytes.Buffer
	v := run(t, `
		let result = "";
		try {
			throw new Error("boom");
		} catch (e) {
			result = e.message;
		} finally {
			result = result + " done";
		}
		result;
	`, &buf)
	want := "boom done"
	if !v.IsString() || v.Str() != want {
		t.Fatalf("got %v, want %q", v, want)
	}
}

func TestUncaughtThrowSurfacesAsError(t *testing.T) {
	err := runErr(t, `throw new TypeError("bad");`)
	tv, ok := err.(*ThrownValue)
	if !ok {
		t.Fatalf("error is not *ThrownValue, got %T", err)
	}
	if !tv.V.IsObject() {
		t.Fatalf("thrown value is not an object: %v", tv.V)
	}
}

func TestArrayMethodsMapFilterReduce(t *testing.T) {
	var buf bytes.Buffer
	v := run(t, `
		[1, 2, 3, 4, 5]
			.filter(x => x % 2 === 0)
			.map(x => x * 10)
			.reduce((acc, x) => acc + x, 0);
	`, &buf)
	if !v.IsNumber() || v.Float() != 60 {
		t.Fatalf("got %v, want 60", v)
	}
}

func TestForOfOverArray(t *testing.T) {
	var buf bytes.Buffer
	run(t, `
		let sum = 0;
		for (const x of [1, 2, 3]) {
			sum = sum + x;
		}
		console.log(sum);
	`, &buf)
	if buf.String() != "6\n" {
		t.Fatalf("console output = %q, want %q", buf.String(), "6\n")
	}
}

func TestDestructuringAssignment(t *testing.T) {
	var buf bytes.Buffer
	v := run(t, `
		const [a, , b] = [1, 2, 3];
		const {x, y: z} = {x: 10, y: 20};
		a + b + x + z;
	`, &buf)
	if !v.IsNumber() || v.Float() != 34 {
		t.Fatalf("got %v, want 34", v)
	}
}

func TestOptionalChainingShortCircuits(t *testing.T) {
	var buf bytes.Buffer
	v := run(t, `
		const obj = {};
		obj?.missing?.deep?.value;
	`, &buf)
	if !v.IsUndefined() {
		t.Fatalf("got %v, want undefined", v)
	}
}

func TestNullishCoalescing(t *testing.T) {
	var buf bytes.Buffer
	v := run(t, `
		const a = null;
		const b = 0;
		(a ?? "fallback") + "|" + (b ?? "fallback");
	`, &buf)
	if !v.IsString() || v.Str() != "fallback|0" {
		t.Fatalf("got %v, want %q", v, "fallback|0")
	}
}

func TestGeneratorYieldsValues(t *testing.T) {
	var buf bytes.Buffer
	run(t, `
		function* range(n) {
			for (let i = 0; i < n; i = i + 1) {
				yield i;
			}
		}
		let total = 0;
		for (const x of range(4)) {
			total = total + x;
		}
		console.log(total);
	`, &buf)
	if buf.String() != "6\n" {
		t.Fatalf("console output = %q, want %q", buf.String(), "6\n")
	}
}

func TestAsyncAwaitResolvesPromise(t *testing.T) {
	var buf bytes.Buffer
	l := lexer.New(`
		async function compute() {
			const value = await Promise.resolve(21);
			console.log(value * 2);
		}
		compute();
	`)
	p := parser.New(l)
	prog := p.ParseProgram()
	if len(p.Errors()) > 0 {
		t.Fatalf("parser errors: %s", strings.Join(p.Errors(), "\n"))
	}
	it := New(WithOutput(&buf))
	_, err := it.RunAsync(prog)
	if err != nil {
		t.Fatalf("evaluation error: %v", err)
	}
	if buf.String() != "42\n" {
		t.Fatalf("console output = %q, want %q", buf.String(), "42\n")
	}
}

func TestJSONStringifyAndParse(t *testing.T) {
	var buf bytes.Buffer
	v := run(t, `
		const obj = {a: 1, b: [2, 3], c: "x"};
		const encoded = JSON.stringify(obj);
		const decoded = JSON.parse(encoded);
		decoded.a + decoded.b[1];
	`, &buf)
	if !v.IsNumber() || v.Float() != 4 {
		t.Fatalf("got %v, want 4", v)
	}
}

func TestBigIntArithmetic(t *testing.T) {
	var buf bytes.Buffer
	v := run(t, "10n * 1000000000000000000n;", &buf)
	if !v.IsBigInt() {
		t.Fatalf("got %v, want a BigInt", v)
	}
	if v.Big().String() != "10000000000000000000" {
		t.Fatalf("got %s, want 10000000000000000000", v.Big().String())
	}
}

func TestTypeofOperator(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"typeof 1;", "number"},
		{"typeof 'x';", "string"},
		{"typeof true;", "boolean"},
		{"typeof undefined;", "undefined"},
		{"typeof null;", "object"},
		{"typeof {};", "object"},
		{"typeof function(){};", "function"},
		{"typeof 1n;", "bigint"},
		{"typeof Symbol();", "symbol"},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		v := run(t, tt.input, &buf)
		if !v.IsString() || v.Str() != tt.expected {
			t.Errorf("input %q: got %v, want %q", tt.input, v, tt.expected)
		}
	}
}

func TestRegexTest(t *testing.T) {
	var buf bytes.Buffer
	v := run(t, `/^[a-z]+\d+$/.test("abc123");`, &buf)
	if !v.IsBoolean() || !v.Bool() {
		t.Fatalf("got %v, want true", v)
	}
}
