// Package interp is the tree-walking evaluator: it consumes an
// internal/ast tree directly (no intermediate bytecode, spec.md §4.2)
// and executes it against an internal/interp/runtime Value heap and
// Environment chain, implementing ECMAScript's dynamically-typed,
// prototype-based semantics.
package interp

import (
	"io"
	"os"

	"github.com/esgo-lang/esgo/internal/interp/runtime"
)

// Re-exported names so evaluator code can refer to interp.Value,
// interp.Object, etc. without importing the runtime package directly.
type (
	Value       = runtime.Value
	Object      = runtime.Object
	Environment = runtime.Environment
	Symbol      = runtime.Symbol
	PropertyKey = runtime.PropertyKey
)

var (
	Undefined = runtime.Undefined
	Null      = runtime.Null
)

// Interp owns one realm: the global environment, intrinsic prototypes,
// and the microtask/macrotask scheduler (spec.md §5).
type Interp struct {
	Global       *Environment
	GlobalObject *Object

	protos *intrinsicProtos

	Output io.Writer
	Strict bool

	scheduler *Scheduler

	moduleHost ModuleHost

	symbolRegistry map[string]*Symbol

	modules     map[string]*moduleRecord
	moduleStack []moduleFrame
	importMetas map[string]*Object
}

// ModuleHost is the narrow collaborator interface the module loader uses
// for resolution/fetch (spec.md §4.8); the loader in modules.go implements
// the graph logic and calls back into this for source text.
type ModuleHost interface {
	Resolve(specifier, importer string) (string, error)
	Load(moduleID string) (string, error)
}

// Option configures a new Interp (functional-options pattern); pkg/esgo's
// own Engine options delegate to these at construction time.
type Option func(*Interp)

func WithOutput(w io.Writer) Option { return func(i *Interp) { i.Output = w } }
func WithStrict(strict bool) Option { return func(i *Interp) { i.Strict = strict } }
func WithModuleHost(h ModuleHost) Option { return func(i *Interp) { i.moduleHost = h } }

// New constructs an Interp with a fresh global realm.
func New(opts ...Option) *Interp {
	it := &Interp{
		Global:         runtime.NewGlobal(),
		Output:         os.Stdout,
		scheduler:      NewScheduler(),
		symbolRegistry: map[string]*Symbol{},
		modules:        map[string]*moduleRecord{},
		importMetas:    map[string]*Object{},
	}
	it.protos = newIntrinsicProtos()
	it.GlobalObject = runtime.NewObject(it.protos.object)
	for _, opt := range opts {
		opt(it)
	}
	it.setupGlobals()
	return it
}

// Scheduler exposes the microtask/macrotask queues so pkg/esgo's
// EvalAsync can drive them to completion (spec.md §5).
func (it *Interp) Scheduler() *Scheduler { return it.scheduler }

// DefineGlobal installs a top-level binding, exported so pkg/esgo's
// RegisterFunction (the host-function FFI adapter, spec.md §6) can add
// host-registered callables without reaching into interp internals.
func (it *Interp) DefineGlobal(name string, v Value) { it.defineGlobal(name, v) }

// NativeFunc builds a callable Object wrapping a Go function, exported
// for the same reason as DefineGlobal.
func (it *Interp) NativeFunc(name string, length int, fn runtime.NativeFunc) *Object {
	return it.nativeFunc(name, length, fn)
}

// NewErrorValue builds an Error-kind object of the given constructor name
// ("TypeError", "RangeError", ...) carrying message, for host functions
// that need to signal a JS-visible failure (spec.md §4.5).
func (it *Interp) NewErrorValue(name, message string) Value { return it.newError(name, message) }
