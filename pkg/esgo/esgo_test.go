package esgo

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

// TestEvalSimpleExpression constructs an engine, evaluates a script, and
// checks the completion value.
func TestEvalSimpleExpression(t *testing.T) {
	engine, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	result, err := engine.Eval(`1 + 2 * 3`)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected success")
	}
	if result.Value != float64(7) {
		t.Errorf("got %v, want 7", result.Value)
	}
}

func TestEvalOutputIsRedirected(t *testing.T) {
	var buf bytes.Buffer
	engine, err := New(WithOutput(&buf))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := engine.Eval(`console.log("hello")`); err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != "hello" {
		t.Errorf("output = %q, want %q", got, "hello")
	}
}

func TestEvalUncaughtThrowReturnsError(t *testing.T) {
	engine, _ := New()
	_, err := engine.Eval(`throw new TypeError("bad value")`)
	if err == nil {
		t.Fatalf("expected error")
	}
	esErr, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *Error, got %T", err)
	}
	if esErr.Code != "TypeError" || esErr.Message != "bad value" {
		t.Errorf("got code=%q message=%q", esErr.Code, esErr.Message)
	}
}

func TestEvalSyntaxError(t *testing.T) {
	engine, _ := New()
	_, err := engine.Eval(`let = ;`)
	if err == nil {
		t.Fatalf("expected a syntax error")
	}
}

func TestRegisterSimpleFunction(t *testing.T) {
	engine, _ := New()
	if err := engine.RegisterFunction("addNumbers", func(a, b int64) int64 {
		return a + b
	}); err != nil {
		t.Fatalf("RegisterFunction: %v", err)
	}
	result, err := engine.Eval(`addNumbers(40, 2)`)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if result.Value != float64(42) {
		t.Errorf("got %v, want 42", result.Value)
	}
}

// TestRegisterFunctionWithError checks that an (T, error) Go func's
// error surfaces as a catchable JS throw.
func TestRegisterFunctionWithError(t *testing.T) {
	engine, _ := New()
	divErr := "division by zero"
	if err := engine.RegisterFunction("divide", func(a, b int64) (int64, error) {
		if b == 0 {
			return 0, errString(divErr)
		}
		return a / b, nil
	}); err != nil {
		t.Fatalf("RegisterFunction: %v", err)
	}
	result, err := engine.Eval(`
		let caught = null;
		try { divide(10, 0) } catch (e) { caught = e.message }
		caught
	`)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if result.Value != divErr {
		t.Errorf("got %v, want %q", result.Value, divErr)
	}
}

type errString string

func (e errString) Error() string { return string(e) }

func TestEvalAsyncDrainsMicrotasks(t *testing.T) {
	engine, _ := New()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	result, err := engine.EvalAsync(ctx, `
		let order = [];
		Promise.resolve().then(() => order.push("micro"));
		order.push("sync");
		order.join(",")
	`)
	if err != nil {
		t.Fatalf("EvalAsync: %v", err)
	}
	if result.Value != "sync" {
		t.Errorf("got %v, want %q (join happens before the microtask runs)", result.Value, "sync")
	}
}

func TestModuleResolverAndLoader(t *testing.T) {
	sources := map[string]string{
		"math": `export function square(n) { return n * n }`,
	}
	engine, _ := New(
		WithModuleResolver(func(specifier, importer string) (string, error) { return specifier, nil }),
		WithModuleLoader(func(id string) (string, error) { return sources[id], nil }),
	)
	if err := engine.PreloadModule("math"); err != nil {
		t.Fatalf("PreloadModule: %v", err)
	}
}
