//go:build js && wasm

// Command esgo-wasm is the WebAssembly entry point for the esgo
// interpreter. It exports Eval/EvalAsync to JavaScript and keeps the
// process alive via a blocking channel while registered callbacks are
// still reachable from JS.
//
// Build with:
//
//	GOOS=js GOARCH=wasm go build -o esgo.wasm ./cmd/esgo-wasm
//
// Usage from JavaScript:
//
//	<script src="wasm_exec.js"></script>
//	<script>
//	  const go = new Go();
//	  WebAssembly.instantiateStreaming(fetch("esgo.wasm"), go.importObject)
//	    .then((result) => {
//	      go.run(result.instance);
//	      window.Esgo.Eval("1 + 1"); // -> 2
//	    });
//	</script>
package main

import (
	"context"
	"syscall/js"

	"github.com/esgo-lang/esgo/pkg/esgo"
)

func main() {
	done := make(chan struct{})

	registerAPI()

	js.Global().Get("console").Call("log", "esgo WASM module initialized")

	<-done
}

// registerAPI installs window.Esgo.{Eval,EvalAsync}, each backed by a
// fresh Engine per call, split into synchronous and asynchronous
// entry points (spec.md §6).
func registerAPI() {
	api := js.Global().Get("Object").New()
	api.Set("Eval", js.FuncOf(jsEval))
	api.Set("EvalAsync", js.FuncOf(jsEvalAsync))
	js.Global().Set("Esgo", api)
}

func jsEval(_ js.Value, args []js.Value) any {
	if len(args) < 1 {
		return jsError("Eval requires a source string argument")
	}
	engine, err := esgo.New()
	if err != nil {
		return jsError(err.Error())
	}
	result, err := engine.Eval(args[0].String())
	if err != nil {
		return jsError(err.Error())
	}
	return jsResult(result)
}

// jsEvalAsync returns a JavaScript Promise that settles once the
// microtask/macrotask queues drain (spec.md §5/§6's asynchronous
// evaluation contract).
func jsEvalAsync(_ js.Value, args []js.Value) any {
	if len(args) < 1 {
		return jsError("EvalAsync requires a source string argument")
	}
	src := args[0].String()
	promiseCtor := js.Global().Get("Promise")
	handler := js.FuncOf(func(_ js.Value, resolvers []js.Value) any {
		resolve, reject := resolvers[0], resolvers[1]
		go func() {
			engine, err := esgo.New()
			if err != nil {
				reject.Invoke(err.Error())
				return
			}
			result, err := engine.EvalAsync(context.Background(), src)
			if err != nil {
				reject.Invoke(err.Error())
				return
			}
			resolve.Invoke(jsResult(result))
		}()
		return nil
	})
	return promiseCtor.New(handler)
}

func jsResult(result *esgo.Result) any {
	out := js.Global().Get("Object").New()
	out.Set("success", result.Success)
	out.Set("value", js.ValueOf(resultToJS(result.Value)))
	return out
}

// resultToJS converts a Result.Value (built from interp's own toGo
// projection) into a shape js.ValueOf accepts: js.ValueOf already
// handles bool/string/float64/nil/[]any/map[string]any directly, but a
// *big.Int (BigInt) has no direct JS representation, so it is rendered
// as its decimal string form instead.
func resultToJS(v any) any {
	switch t := v.(type) {
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = resultToJS(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = resultToJS(e)
		}
		return out
	case nil, bool, string, float64:
		return t
	default:
		return fmtStringer(t)
	}
}

func fmtStringer(v any) string {
	type stringer interface{ String() string }
	if s, ok := v.(stringer); ok {
		return s.String()
	}
	return ""
}

func jsError(message string) any {
	out := js.Global().Get("Object").New()
	out.Set("success", false)
	out.Set("error", message)
	return out
}
