// Package esgo is the embedding façade: host code submits source text and
// receives a value (spec.md §1's "Out of scope" callout, §6 "EXTERNAL
// INTERFACES"). It wraps internal/lexer, internal/parser, and
// internal/interp behind a small surface: New(opts...), Eval,
// RegisterFunction via reflection.
package esgo

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/esgo-lang/esgo/internal/ast"
	"github.com/esgo-lang/esgo/internal/interp"
	"github.com/esgo-lang/esgo/internal/lexer"
	"github.com/esgo-lang/esgo/internal/parser"
)

// Clock drives host timers for EvalAsync (spec.md §4.6/§5):
// the core never reads the wall clock itself, it only asks the host
// "what time is it" when pumping pending setTimeout/setInterval entries.
type Clock interface {
	Now() int64
}

// ResolveFunc resolves an import specifier against its importing module,
// the first module-loader collaborator from spec.md §4.8/§6.
type ResolveFunc func(specifier, importer string) (string, error)

// LoadFunc fetches source text for a resolved module id, the second
// module-loader collaborator from spec.md §4.8/§6.
type LoadFunc func(moduleID string) (string, error)

// Engine owns one realm: the global object, intrinsics, and the
// microtask/macrotask scheduler.
type Engine struct {
	it     *interp.Interp
	out    io.Writer
	strict bool
	clock  Clock

	resolve ResolveFunc
	load    LoadFunc
}

// Option configures a new Engine (functional-options pattern).
type Option func(*Engine)

// WithOutput directs console.log/warn/error and print-style builtins at w
// instead of os.Stdout.
func WithOutput(w io.Writer) Option { return func(e *Engine) { e.out = w } }

// WithStrict forces strict-mode semantics for scripts that never opt in
// with "use strict" (tail-call optimization, spec.md §4.4.3, only applies
// in strict mode).
func WithStrict(strict bool) Option { return func(e *Engine) { e.strict = strict } }

// WithClock supplies the host timer driver consulted by EvalAsync.
func WithClock(c Clock) Option { return func(e *Engine) { e.clock = c } }

// WithModuleResolver registers the module-loader's resolve collaborator
// (spec.md §4.8/§6) at construction time.
func WithModuleResolver(fn ResolveFunc) Option { return func(e *Engine) { e.resolve = fn } }

// WithModuleLoader registers the module-loader's source-fetch
// collaborator (spec.md §4.8/§6) at construction time.
func WithModuleLoader(fn LoadFunc) Option { return func(e *Engine) { e.load = fn } }

// New constructs an Engine with a fresh realm. It never fails today — the
// error return is kept for options that may validate configuration in
// the future.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{out: os.Stdout}
	for _, opt := range opts {
		opt(e)
	}
	interpOpts := []interp.Option{
		interp.WithOutput(e.out),
		interp.WithStrict(e.strict),
	}
	if e.resolve != nil || e.load != nil {
		interpOpts = append(interpOpts, interp.WithModuleHost(&moduleHostAdapter{resolve: e.resolve, load: e.load}))
	}
	e.it = interp.New(interpOpts...)
	return e, nil
}

// SetOutput redirects console/print output after construction.
func (e *Engine) SetOutput(w io.Writer) { e.out = w; e.it.Output = w }

// RegisterModuleResolver registers the resolve collaborator after
// construction (spec.md §6 "Register a module resolver callback").
func (e *Engine) RegisterModuleResolver(fn ResolveFunc) { e.resolve = fn; e.rewireModuleHost() }

// RegisterModuleLoader registers the load collaborator after construction
// (spec.md §6 "Register a module loader callback").
func (e *Engine) RegisterModuleLoader(fn LoadFunc) { e.load = fn; e.rewireModuleHost() }

func (e *Engine) rewireModuleHost() {
	interp.WithModuleHost(&moduleHostAdapter{resolve: e.resolve, load: e.load})(e.it)
}

// moduleHostAdapter implements interp.ModuleHost over two plain funcs so
// pkg/esgo's callers never need to see the interp package.
type moduleHostAdapter struct {
	resolve ResolveFunc
	load    LoadFunc
}

func (m *moduleHostAdapter) Resolve(specifier, importer string) (string, error) {
	if m.resolve == nil {
		return "", fmt.Errorf("no module resolver registered")
	}
	return m.resolve(specifier, importer)
}

func (m *moduleHostAdapter) Load(moduleID string) (string, error) {
	if m.load == nil {
		return "", fmt.Errorf("no module loader registered")
	}
	return m.load(moduleID)
}

// Result is the outcome of one Eval/EvalAsync call: a Success flag plus
// the produced value.
type Result struct {
	Success bool
	Value   interface{}
	raw     interp.Value
}

// Raw returns the underlying interp.Value, for embedders that need to
// pass the completion value into another RegisterFunction call or
// inspect it with the full fidelity the Go interface{} projection loses
// (e.g. distinguishing +0/-0 or a BigInt from a float64).
func (r *Result) Raw() interp.Value { return r.raw }

// parseSource runs the lexer and parser, collecting syntax diagnostics as
// a single *Error (spec.md §4.1/§4.2).
func parseSource(src string, asModule bool) (*ast.Program, error) {
	l := lexer.New(src)
	p := parser.New(l)
	var prog *ast.Program
	if asModule {
		prog = p.ParseModule()
	} else {
		prog = p.ParseProgram()
	}
	if errs := p.Errors(); len(errs) > 0 {
		return nil, &Error{Message: errs[0], Severity: SeverityError, Code: "E_SYNTAX"}
	}
	return prog, nil
}

// Eval parses and synchronously evaluates src, returning the completion
// value of its last expression statement (spec.md §6's "submit source for
// synchronous evaluation").
func (e *Engine) Eval(src string) (*Result, error) {
	return e.eval(src, false)
}

// EvalModule parses src as ES module source (allowing import/export
// declarations and top-level await, spec.md §4.8) and evaluates it
// through the same entry-module path `import` statements use.
func (e *Engine) EvalModule(src string) (*Result, error) {
	return e.eval(src, true)
}

func (e *Engine) eval(src string, asModule bool) (*Result, error) {
	prog, err := parseSource(src, asModule)
	if err != nil {
		return &Result{Success: false}, err
	}
	v, err := e.it.Run(prog)
	if err != nil {
		return &Result{Success: false}, wrapThrown(err)
	}
	return &Result{Success: true, Value: toGo(v), raw: v}, nil
}

// EvalAsync parses src, runs it, then drains the microtask queue and
// pumps any pending timers via the Engine's Clock until settled or ctx is
// cancelled (spec.md §5/§6's "submit source for asynchronous evaluation").
func (e *Engine) EvalAsync(ctx context.Context, src string) (*Result, error) {
	prog, err := parseSource(src, false)
	if err != nil {
		return &Result{Success: false}, err
	}
	v, err := e.it.Run(prog)
	if err != nil {
		return &Result{Success: false}, wrapThrown(err)
	}
	for {
		select {
		case <-ctx.Done():
			return &Result{Success: false}, ctx.Err()
		default:
		}
		e.it.Scheduler().DrainMicrotasks()
		if e.it.SchedulerIdle() {
			break
		}
		now := int64(0)
		if e.clock != nil {
			now = e.clock.Now()
		}
		if e.it.DrainTimers(now) == 0 {
			// Remaining macrotasks are due in the future; they belong to
			// the embedder's clock, not this drain.
			break
		}
	}
	return &Result{Success: true, Value: toGo(v), raw: v}, nil
}

// PreloadModule fetches, parses, instantiates and evaluates moduleID
// through the same resolver/loader collaborators `import` uses, and
// caches the result, so a later `import` of it resolves instantly
// (spec.md §6 "Pre-load a module", §4.8 step 6).
func (e *Engine) PreloadModule(moduleID string) error {
	if e.load == nil {
		return fmt.Errorf("no module loader registered")
	}
	_, c := e.it.LoadModule(moduleID, "")
	if c.IsAbrupt() {
		return wrapThrown(&interp.ThrownValue{V: c.Value})
	}
	return nil
}
