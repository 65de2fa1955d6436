package runtime

import "fmt"

// EnvKind identifies the lexical role of an Environment frame (spec.md
// §3, §4.3).
type EnvKind uint8

const (
	GlobalEnv EnvKind = iota
	FunctionEnv
	BlockEnv
	ModuleEnv
	CatchEnv
)

// binding is one entry of an Environment's bindings map. initialized
// models the temporal dead zone for let/const (spec.md §3 invariant 3).
type binding struct {
	value       Value
	mutable     bool
	initialized bool
}

// Environment is one frame of the lexical scope chain (spec.md §3,
// §4.3), kept here rather than as a top-level interp type; internal/interp
// re-exports the name via a `type Environment = runtime.Environment`
// alias so evaluator code never needs to import this package directly.
type Environment struct {
	Parent *Environment
	Kind   EnvKind

	bindings map[string]*binding

	// Function-frame slots (spec.md §3's "for function frames" clause).
	ThisBinding *Value
	NewTarget   *Object
	HomeObject  *Object
	Function    *Object // backs the `arguments` identifier

	// ClassBrand is set on the class body's closure environment
	// (internal/interp/class.go), shared by every method, accessor, and
	// field initializer of that class, so private-name access anywhere
	// in the class body resolves to the same brand (spec.md §3 invariant 6).
	ClassBrand *ClassBrand

	Arguments *Object

	// GenState links a generator/async function frame to its coroutine
	// controller (internal/interp/generator.go), opaque here.
	GenState any
}

// NewGlobal creates the realm-root environment.
func NewGlobal() *Environment {
	return &Environment{Kind: GlobalEnv, bindings: map[string]*binding{}}
}

// NewEnclosed creates a block-scoped child frame.
func NewEnclosed(parent *Environment) *Environment {
	return &Environment{Parent: parent, Kind: BlockEnv, bindings: map[string]*binding{}}
}

// NewFunctionFrame creates a function-call activation frame.
func NewFunctionFrame(parent *Environment, this Value, fn *Object, newTarget *Object) *Environment {
	return &Environment{
		Parent: parent, Kind: FunctionEnv, bindings: map[string]*binding{},
		ThisBinding: &this, Function: fn, NewTarget: newTarget,
	}
}

// NewModuleFrame creates a module top-level environment.
func NewModuleFrame(parent *Environment) *Environment {
	return &Environment{Parent: parent, Kind: ModuleEnv, bindings: map[string]*binding{}}
}

// DeclareVar creates a mutable, pre-initialized `var` binding (hoisted
// to the nearest function/module/global frame by the caller).
func (e *Environment) DeclareVar(name string, v Value) {
	if b, ok := e.bindings[name]; ok {
		b.value = v
		b.initialized = true
		return
	}
	e.bindings[name] = &binding{value: v, mutable: true, initialized: true}
}

// DeclareLet creates an uninitialized (TDZ) mutable binding; Initialize
// must be called before first read.
func (e *Environment) DeclareLet(name string) {
	e.bindings[name] = &binding{mutable: true}
}

// DeclareConst creates an uninitialized immutable binding.
func (e *Environment) DeclareConst(name string) {
	e.bindings[name] = &binding{mutable: false}
}

// Initialize completes a let/const declaration's TDZ, making it
// readable.
func (e *Environment) Initialize(name string, v Value) {
	b, ok := e.bindings[name]
	if !ok {
		e.bindings[name] = &binding{value: v, initialized: true}
		return
	}
	b.value = v
	b.initialized = true
}

// HasOwn reports whether name is declared (initialized or not) in this
// frame only.
func (e *Environment) HasOwn(name string) bool {
	_, ok := e.bindings[name]
	return ok
}

// Get resolves name by walking the parent chain (spec.md §4.3).
func (e *Environment) Get(name string) (Value, error) {
	for env := e; env != nil; env = env.Parent {
		if b, ok := env.bindings[name]; ok {
			if !b.initialized {
				return Undefined, &ReferenceError{Message: fmt.Sprintf("Cannot access '%s' before initialization", name)}
			}
			return b.value, nil
		}
	}
	return Undefined, &ReferenceError{Message: name + " is not defined"}
}

// Set assigns to the nearest frame declaring name (spec.md §3 invariant
// 4: const rebind after initialization is a type error).
func (e *Environment) Set(name string, v Value) error {
	for env := e; env != nil; env = env.Parent {
		if b, ok := env.bindings[name]; ok {
			if !b.initialized {
				return &ReferenceError{Message: fmt.Sprintf("Cannot access '%s' before initialization", name)}
			}
			if !b.mutable {
				return &TypeError{Message: "Assignment to constant variable."}
			}
			b.value = v
			return nil
		}
	}
	return &ReferenceError{Message: name + " is not defined"}
}

// Resolve reports whether name is bound anywhere in the chain, without
// triggering a TDZ error — used by `typeof` on an unresolved identifier,
// which is specified to yield "undefined" rather than throw.
func (e *Environment) Resolve(name string) bool {
	for env := e; env != nil; env = env.Parent {
		if _, ok := env.bindings[name]; ok {
			return true
		}
	}
	return false
}

// NearestFunctionOrModule finds the frame that owns `var` hoisting
// (spec.md §4.3: "var declarations inside blocks attach to the nearest
// enclosing function or module frame").
func (e *Environment) NearestFunctionOrModule() *Environment {
	for env := e; env != nil; env = env.Parent {
		if env.Kind == FunctionEnv || env.Kind == ModuleEnv || env.Kind == GlobalEnv {
			return env
		}
	}
	return e
}

// NearestThis finds the `this`-binding frame, skipping arrow functions,
// which do not bind `this` (spec.md §4.3).
func (e *Environment) NearestThis() *Environment {
	for env := e; env != nil; env = env.Parent {
		if env.ThisBinding != nil {
			return env
		}
	}
	return nil
}

func (e *Environment) This() Value {
	fr := e.NearestThis()
	if fr == nil {
		return Undefined
	}
	return *fr.ThisBinding
}

func (e *Environment) NearestNewTarget() *Object {
	fr := e.NearestThis()
	if fr == nil {
		return nil
	}
	return fr.NewTarget
}

func (e *Environment) NearestHomeObject() *Object {
	for env := e; env != nil; env = env.Parent {
		if env.HomeObject != nil {
			return env.HomeObject
		}
		if env.ThisBinding != nil && env.HomeObject == nil && env.Kind == FunctionEnv {
			// non-method function frames have no home object; keep walking
			// only if this frame belongs to an arrow (Kind stays FunctionEnv
			// only for genuine function frames, so stop here).
			return nil
		}
	}
	return nil
}

// NearestClassBrand walks up to the nearest enclosing class body's
// brand, for resolving `#name` access wherever it is lexically written
// (a method, a nested arrow inside a method, or a field initializer).
func (e *Environment) NearestClassBrand() *ClassBrand {
	for env := e; env != nil; env = env.Parent {
		if env.ClassBrand != nil {
			return env.ClassBrand
		}
	}
	return nil
}

// bindingCell returns the backing cell for name, walking the parent
// chain, for live-reference aliasing between modules (spec.md §4.8).
func (e *Environment) bindingCell(name string) (*binding, bool) {
	for env := e; env != nil; env = env.Parent {
		if b, ok := env.bindings[name]; ok {
			return b, true
		}
	}
	return nil, false
}

// AliasBinding makes localName in e resolve to the exact same binding
// cell as name in target, so writes in either module are observed by
// both (spec.md §4.8's "live binding"). Reports false if target has no
// such binding.
func (e *Environment) AliasBinding(localName string, target *Environment, name string) bool {
	b, ok := target.bindingCell(name)
	if !ok {
		return false
	}
	e.bindings[localName] = b
	return true
}

// ReferenceError and TypeError are sentinel Go error wrappers so
// runtime-level code (environment resolution) can signal ECMAScript
// exception kinds without importing internal/interp (which imports
// runtime). internal/interp's evaluator converts these into thrown Error
// objects via its own exception constructors.
type ReferenceError struct{ Message string }

func (e *ReferenceError) Error() string { return e.Message }

type TypeError struct{ Message string }

func (e *TypeError) Error() string { return e.Message }
