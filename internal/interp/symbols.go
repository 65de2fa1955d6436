package interp

import "github.com/esgo-lang/esgo/internal/interp/runtime"

// wellKnown returns (creating once) the realm's well-known symbol for
// name — "iterator", "asyncIterator", "toPrimitive", "toStringTag",
// "hasInstance" (spec.md §3).
func (it *Interp) wellKnown(name string) *Symbol {
	if s, ok := it.symbolRegistry["@@"+name]; ok {
		return s
	}
	s := &Symbol{Description: "Symbol." + name, WellKnown: name}
	it.symbolRegistry["@@"+name] = s
	return s
}

func (it *Interp) symbolFor(key string) *Symbol {
	if s, ok := it.symbolRegistry["for:"+key]; ok {
		return s
	}
	s := &Symbol{Description: key}
	it.symbolRegistry["for:"+key] = s
	return s
}

func iteratorKey(it *Interp) PropertyKey {
	return runtime.SymbolKey(it.wellKnown("iterator"))
}

func asyncIteratorKey(it *Interp) PropertyKey {
	return runtime.SymbolKey(it.wellKnown("asyncIterator"))
}
