package interp

import "github.com/esgo-lang/esgo/internal/interp/runtime"

// setupIteratorBuiltins wires the shared %IteratorPrototype% that
// generator and async-generator objects extend (spec.md §4.6): just
// `[Symbol.iterator]` returning the receiver, since concrete iterator
// objects (newValueIterator in iteration.go, generators in generator.go)
// each install their own `next`.
func (it *Interp) setupIteratorBuiltins() {
	proto := it.protos.iterator
	proto.DefineOwnProperty(runtime.SymbolKey(it.wellKnown("iterator")), runtime.PropertyDescriptor{
		Value: runtime.Object_(it.nativeFunc("[Symbol.iterator]", 0, func(this Value, _ []Value) (Value, error) {
			return this, nil
		})), Writable: true, Configurable: true,
	})
}
