package interp

import "github.com/esgo-lang/esgo/internal/interp/runtime"

// setupSymbolBuiltins wires Symbol.prototype, the Symbol function (not a
// constructor), and the well-known symbol statics (spec.md §3).
func (it *Interp) setupSymbolBuiltins() {
	proto := it.protos.symbol

	thisSym := func(this Value) *Symbol {
		if this.IsSymbol() {
			return this.Sym()
		}
		if this.IsObject() {
			return this.Obj().PrimitiveValue.Sym()
		}
		return nil
	}
	it.method(proto, "toString", 0, func(this Value, _ []Value) (Value, error) {
		return runtime.String(thisSym(this).String()), nil
	})
	it.method(proto, "valueOf", 0, func(this Value, _ []Value) (Value, error) {
		return runtime.SymbolValue(thisSym(this)), nil
	})
	it.getter(proto, "description", func(this Value, _ []Value) (Value, error) {
		return runtime.String(thisSym(this).Description), nil
	})

	ctorObj := it.nativeFunc("Symbol", 0, func(_ Value, args []Value) (Value, error) {
		desc := ""
		if len(args) > 0 && !args[0].IsUndefined() {
			desc = it.ToStringValue(args[0])
		}
		return runtime.SymbolValue(&Symbol{Description: desc}), nil
	})
	ctorObj.Set("prototype", runtime.Object_(proto))
	it.method(ctorObj, "for", 1, func(_ Value, args []Value) (Value, error) {
		return runtime.SymbolValue(it.symbolFor(it.ToStringValue(arg(args, 0)))), nil
	})
	for _, name := range []string{"iterator", "asyncIterator", "toPrimitive", "toStringTag", "hasInstance", "isConcatSpreadable", "species", "unscopables"} {
		it.staticValue(ctorObj, name, runtime.SymbolValue(it.wellKnown(name)))
	}
	it.defineGlobal("Symbol", runtime.Object_(ctorObj))
}
