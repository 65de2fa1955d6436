package interp

import "github.com/esgo-lang/esgo/internal/interp/runtime"

// arg returns args[i], or Undefined if the call didn't supply that many
// positional arguments — the common case for native built-in bodies
// (spec.md §4.2's out-of-core "built-in dispatcher").
func arg(args []Value, i int) Value {
	if i < len(args) {
		return args[i]
	}
	return Undefined
}

// throwErr builds a Go error carrying an ECMAScript exception, for
// returning directly from a NativeFunc body (spec.md §4.5).
func (it *Interp) throwErr(name, format string, fargs ...any) error {
	return &ThrownValue{V: it.newError(name, sprintf(format, fargs...))}
}

// method installs a non-enumerable method, matching the descriptor shape
// ECMAScript gives built-in prototype methods ({writable:true,
// enumerable:false, configurable:true}).
func (it *Interp) method(o *Object, name string, length int, fn runtime.NativeFunc) {
	f := it.nativeFunc(name, length, fn)
	o.DefineOwnProperty(runtime.StringKey(name), runtime.PropertyDescriptor{
		Value: runtime.Object_(f), Writable: true, Configurable: true,
	})
}

// symbolMethod installs a method keyed by a well-known symbol (e.g.
// Symbol.iterator), same descriptor shape as method.
func (it *Interp) symbolMethod(o *Object, sym *Symbol, name string, length int, fn runtime.NativeFunc) {
	f := it.nativeFunc(name, length, fn)
	o.DefineOwnProperty(runtime.SymbolKey(sym), runtime.PropertyDescriptor{
		Value: runtime.Object_(f), Writable: true, Configurable: true,
	})
}

// getter installs an accessor-only property (enumerable:false,
// configurable:true), the shape built-in prototype getters use (e.g.
// Map.prototype.size, RegExp.prototype.source).
func (it *Interp) getter(o *Object, name string, fn runtime.NativeFunc) {
	f := it.nativeFunc("get "+name, 0, fn)
	o.DefineOwnProperty(runtime.StringKey(name), runtime.PropertyDescriptor{
		IsAccessor: true, Get: f, Configurable: true,
	})
}

// staticValue installs a plain non-enumerable, writable, configurable data
// property, the shape constructors use for static members like
// Number.MAX_SAFE_INTEGER (enumerable:false per spec, unlike object
// literal properties).
func (it *Interp) staticValue(o *Object, name string, v Value) {
	o.DefineOwnProperty(runtime.StringKey(name), runtime.PropertyDescriptor{
		Value: v, Writable: true, Configurable: true,
	})
}

// ctor builds a constructor Object: a callable Function-kind object with
// both Call and Construct set, its "prototype" data property pointing at
// proto, and proto's "constructor" pointing back (spec.md §3's "[[Proto
// type]] = F.prototype" invariant).
func (it *Interp) ctor(name string, length int, proto *Object, construct func(args []Value, newTarget *Object) (Value, error)) *Object {
	f := runtime.NewObject(it.protos.function)
	f.InternalKind = runtime.KindFunction
	f.FunctionName = name
	f.Params = length
	f.Construct = construct
	f.Call = func(this Value, args []Value) (Value, error) { return construct(args, f) }
	f.Set("length", runtime.Int(length))
	f.Set("name", runtime.String(name))
	f.DefineOwnProperty(runtime.StringKey("prototype"), runtime.PropertyDescriptor{Value: runtime.Object_(proto)})
	if proto != nil {
		proto.DefineOwnProperty(runtime.StringKey("constructor"), runtime.PropertyDescriptor{
			Value: runtime.Object_(f), Writable: true, Configurable: true,
		})
	}
	return f
}

// defineGlobal installs a top-level binding both as a pre-initialized
// global-environment var (so plain identifier lookup finds it) and as an
// own property of the global object (so `globalThis.X` finds it too).
func (it *Interp) defineGlobal(name string, v Value) {
	it.Global.DeclareVar(name, v)
	it.GlobalObject.Set(name, v)
}
